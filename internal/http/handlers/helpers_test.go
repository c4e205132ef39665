package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"nursecare/internal/geo"
	"nursecare/internal/http/handlers"
	httpmiddleware "nursecare/internal/http/middleware"
	"nursecare/internal/infra"
	"nursecare/internal/modules/booking"
	"nursecare/internal/modules/location"
	"nursecare/internal/modules/pricing"
	"nursecare/internal/types"
)

// stubTokenVerifier maps bearer tokens to callers.
type stubTokenVerifier struct {
	tokens map[string]*infra.FirebaseToken
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, raw string) (*infra.FirebaseToken, error) {
	if tok, ok := s.tokens[raw]; ok {
		return tok, nil
	}
	return nil, errors.New("unknown token")
}

func makeVerifier() *stubTokenVerifier {
	caller := func(uid, role string) *infra.FirebaseToken {
		claims := map[string]interface{}{}
		if role != "" {
			claims["role"] = role
		}
		return &infra.FirebaseToken{UID: uid, Claims: claims}
	}
	return &stubTokenVerifier{tokens: map[string]*infra.FirebaseToken{
		"patient": caller("p1", "patient"),
		"other":   caller("p2", ""),
		"nurse":   caller("n1", "nurse"),
		"nurse2":  caller("n2", "nurse"),
	}}
}

// memoryIndex is an in-process NurseIndex.
type memoryIndex struct {
	mu     sync.Mutex
	nurses map[types.ID]location.NursePosition
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{nurses: map[types.ID]location.NursePosition{}}
}

func (m *memoryIndex) IndexNurse(_ context.Context, p location.NursePosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nurses[p.NurseID] = p
	return nil
}

func (m *memoryIndex) NearbyNurses(_ context.Context, _ geo.Point, _ float64, limit int) ([]location.NursePosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]location.NursePosition, 0, len(m.nurses))
	for _, p := range m.nurses {
		out = append(out, p)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryIndex) RemoveNurse(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nurses, id)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	pricing  *pricing.Service
	location *location.Service
	booking  *booking.Service
	index    *memoryIndex
}

// buildTestRouter wires the handlers the way the API router does, without
// rate limiting. A nil index leaves the proximity index unconfigured.
func buildTestRouter(t *testing.T, index *memoryIndex) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := pricing.NewEngine(pricing.DefaultRateTable(), pricing.WithLocation(time.UTC))
	pricingSvc := pricing.NewService(engine, nil, nil)
	var nurseIndex location.NurseIndex
	if index != nil {
		nurseIndex = index
	}
	locationSvc := location.NewService(engine.Table(), nurseIndex, nil, nil)
	bookingSvc := booking.NewService(booking.NewMemoryStore(), pricingSvc, locationSvc, nil)
	verifier := makeVerifier()

	r := gin.New()
	ph := handlers.NewPricingHandler(pricingSvc, locationSvc)
	r.POST("/api/pricing/quote", ph.Quote)
	r.POST("/api/pricing/validate", ph.Validate)
	r.GET("/api/pricing/config", ph.Config)
	r.GET("/api/pricing/services", ph.Services)
	r.GET("/api/pricing/quotes/:id", ph.GetQuote)

	lh := handlers.NewLocationHandler(locationSvc, location.DefaultNearbyRadiusKm, location.DefaultNearbyLimit)
	r.POST("/api/location/estimate", lh.Estimate)
	r.GET("/api/location/geohash", lh.Geohash)
	r.GET("/api/nurses/nearby", lh.Nearby)
	r.PUT("/api/nurses/:id/location", httpmiddleware.Auth(verifier), lh.UpdateNurse)

	bh := handlers.NewBookingHandler(bookingSvc)
	b := r.Group("/api/bookings", httpmiddleware.Auth(verifier))
	b.POST("", bh.Create)
	b.GET("", bh.List)
	b.GET("/watch", bh.WatchMine)
	b.GET("/:id", bh.Get)
	b.POST("/:id/status", bh.UpdateStatus)
	b.POST("/:id/cancel", bh.Cancel)
	b.GET("/:id/watch", bh.Watch)

	return &testEnv{router: r, pricing: pricingSvc, location: locationSvc, booking: bookingSvc, index: index}
}

func doRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(strings.NewReader(w.Body.String())).Decode(v); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}
