// README: Operator CLI: price a request, export or check a rate table, audit recorded quotes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"nursecare/internal/config"
	"nursecare/internal/infra"
	"nursecare/internal/modules/pricing"
)

const usage = `usage: pricectl <command> [flags]

commands:
  quote   price one request and print the breakdown JSON
  export  print the active rate table (-format yaml|json)
  check   validate a rate table file
  audit   re-validate recorded quotes against the active table`

var errUsage = errors.New(usage)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "quote":
		return runQuote(cfg, args[1:], out)
	case "export":
		return runExport(cfg, args[1:], out)
	case "check":
		return runCheck(cfg, args[1:], out)
	case "audit":
		return runAudit(ctx, cfg, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func newEngine(cfg config.PricingConfig, tableFile string) (*pricing.Engine, error) {
	if tableFile == "" {
		tableFile = cfg.TableFile
	}
	table, err := pricing.LoadRateTable(tableFile)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return pricing.NewEngine(table, pricing.WithLocation(loc)), nil
}

func runQuote(cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.SetOutput(out)
	service := fs.String("service", pricing.ServiceGeneralCare, "service type")
	distance := fs.Float64("distance", 0, "distance in km")
	duration := fs.Float64("duration", pricing.DefaultDurationHours, "visit duration in hours")
	experience := fs.String("experience", "0", "years of experience or a tier key")
	emergency := fs.Bool("emergency", false, "emergency visit")
	at := fs.String("at", "", "scheduled time, RFC3339 (default now)")
	tableFile := fs.String("table", "", "rate table file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	engine, err := newEngine(cfg.Pricing, *tableFile)
	if err != nil {
		return err
	}
	var exp pricing.ExperienceInput
	if err := json.Unmarshal([]byte(fmt.Sprintf("%q", *experience)), &exp); err != nil {
		return fmt.Errorf("parsing -experience: %w", err)
	}
	req := pricing.Request{
		ServiceType:     *service,
		DistanceKm:      *distance,
		DurationHours:   *duration,
		NurseExperience: exp,
		IsEmergency:     *emergency,
	}
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
		req.ScheduledTime = &t
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(engine.Calculate(req.Rounded()))
}

func runExport(cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(out)
	format := fs.String("format", "yaml", "yaml or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	table, err := pricing.LoadRateTable(cfg.Pricing.TableFile)
	if err != nil {
		return err
	}
	switch *format {
	case "yaml":
		data, err := pricing.MarshalRateTable(table)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func runCheck(cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(out)
	file := fs.String("file", cfg.Pricing.TableFile, "rate table file (default: compiled-in table)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	table, err := pricing.LoadRateTable(*file)
	if err != nil {
		return err
	}
	// ParseRateTable validates already; the compiled-in table is checked here.
	if err := table.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "rate table %s ok: %d services, %d tiers, %d surge windows\n",
		table.Version, len(table.BaseFares), len(table.Tiers), len(table.SurgeWindows))
	return nil
}

// quoteLister is the part of the audit store the audit command reads.
type quoteLister interface {
	ListByVersion(ctx context.Context, version string, limit int) ([]pricing.Quote, error)
}

func runAudit(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(out)
	limit := fs.Int("limit", 100, "newest quotes to check (max 500)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.DB.DSN == "" {
		return errors.New("audit needs NURSECARE_DB_DSN")
	}
	engine, err := newEngine(cfg.Pricing, "")
	if err != nil {
		return err
	}
	pool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	return audit(ctx, engine, pricing.NewStore(pool), *limit, out)
}

func audit(ctx context.Context, engine *pricing.Engine, store quoteLister, limit int, out io.Writer) error {
	quotes, err := store.ListByVersion(ctx, engine.Table().Version, limit)
	if err != nil {
		return fmt.Errorf("listing quotes: %w", err)
	}
	failed := 0
	for _, q := range quotes {
		want, err := engine.Validate(q.Pricing)
		if err == nil {
			continue
		}
		failed++
		fmt.Fprintf(out, "%s\t%s\trecorded %.2f\trecomputed %.2f\t%v\n",
			q.ID, q.Pricing.Inputs.ServiceType, q.Pricing.ClientEstimate, want.ClientEstimate, err)
	}
	fmt.Fprintf(out, "checked %d quotes under %s, %d mismatched\n", len(quotes), engine.Table().Version, failed)
	if failed > 0 {
		return fmt.Errorf("%d recorded quotes do not match the active table", failed)
	}
	return nil
}
