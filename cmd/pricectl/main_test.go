package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nursecare/internal/config"
	"nursecare/internal/modules/pricing"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Pricing.Timezone = "UTC"
	return cfg
}

func TestRun_Quote(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testConfig(), []string{
		"quote", "-service", "Elderly Care", "-distance", "5", "-duration", "2",
		"-experience", "8", "-at", "2026-02-10T12:00:00Z",
	}, &out)
	require.NoError(t, err)

	var pb pricing.PriceBreakdown
	require.NoError(t, json.Unmarshal(out.Bytes(), &pb))
	assert.Equal(t, 825.5, pb.ClientEstimate)
	assert.Equal(t, pricing.TierSenior, pb.Inputs.NurseExperienceLevel)
}

func TestRun_QuoteTierKey(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testConfig(), []string{
		"quote", "-experience", "mid", "-at", "2026-02-10T12:00:00Z",
	}, &out)
	require.NoError(t, err)

	var pb pricing.PriceBreakdown
	require.NoError(t, json.Unmarshal(out.Bytes(), &pb))
	assert.Equal(t, pricing.TierMid, pb.Inputs.NurseExperienceLevel)
}

func TestRun_QuoteBadTime(t *testing.T) {
	err := run(context.Background(), testConfig(), []string{"quote", "-at", "tomorrow"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_ExportAndCheck(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig(), []string{"export"}, &out))

	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o600))

	var checked bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig(), []string{"check", "-file", path}, &checked))
	assert.Contains(t, checked.String(), "rate table v1 ok")

	var js bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig(), []string{"export", "-format", "json"}, &js))
	var table pricing.RateTable
	require.NoError(t, json.Unmarshal(js.Bytes(), &table))
	assert.Equal(t, pricing.PricingVersion, table.Version)

	assert.Error(t, run(context.Background(), testConfig(), []string{"export", "-format", "toml"}, &bytes.Buffer{}))
}

func TestRun_CheckRejectsBadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: v1\ntaxRate: -1\n"), 0o600))
	assert.Error(t, run(context.Background(), testConfig(), []string{"check", "-file", path}, &bytes.Buffer{}))
}

func TestRun_Usage(t *testing.T) {
	assert.ErrorIs(t, run(context.Background(), testConfig(), nil, &bytes.Buffer{}), errUsage)
	assert.ErrorIs(t, run(context.Background(), testConfig(), []string{"frobnicate"}, &bytes.Buffer{}), errUsage)
}

func TestRun_AuditNeedsDatabase(t *testing.T) {
	assert.Error(t, run(context.Background(), testConfig(), []string{"audit"}, &bytes.Buffer{}))
}

type fakeLister struct {
	quotes []pricing.Quote
	err    error
}

func (f fakeLister) ListByVersion(context.Context, string, int) ([]pricing.Quote, error) {
	return f.quotes, f.err
}

func TestAudit(t *testing.T) {
	engine := pricing.NewEngine(pricing.DefaultRateTable(), pricing.WithLocation(time.UTC))
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	good := engine.Calculate(pricing.Request{ServiceType: "Wound Care", DurationHours: 1, ScheduledTime: &at})
	bad := good
	bad.ClientEstimate += 100

	var out bytes.Buffer
	require.NoError(t, audit(context.Background(), engine, fakeLister{quotes: []pricing.Quote{{ID: "q1", Pricing: good}}}, 10, &out))
	assert.Contains(t, out.String(), "checked 1 quotes under v1, 0 mismatched")

	out.Reset()
	err := audit(context.Background(), engine, fakeLister{quotes: []pricing.Quote{
		{ID: "q1", Pricing: good},
		{ID: "q2", Pricing: bad},
	}}, 10, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "q2")
	assert.Contains(t, out.String(), "1 mismatched")

	assert.Error(t, audit(context.Background(), engine, fakeLister{err: errors.New("db down")}, 10, &bytes.Buffer{}))
}
