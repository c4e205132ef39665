// README: Pricing handlers: quote, re-validate, active table and service catalogue.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nursecare/internal/geo"
	"nursecare/internal/http/middleware"
	"nursecare/internal/modules/location"
	"nursecare/internal/modules/pricing"
	"nursecare/internal/types"
)

type PricingHandler struct {
	pricing  *pricing.Service
	location *location.Service
}

// NewPricingHandler builds the handler. loc is optional; without it quotes
// use the distance in the request body.
func NewPricingHandler(svc *pricing.Service, loc *location.Service) *PricingHandler {
	return &PricingHandler{pricing: svc, location: loc}
}

// quotePoints are optional coordinates sent next to the calculate input.
type quotePoints struct {
	PatientLocation *geo.Point `json:"patientLocation"`
	NurseLocation   *geo.Point `json:"nurseLocation"`
}

type quoteResponse struct {
	QuoteID   string                 `json:"quoteId"`
	Pricing   pricing.PriceBreakdown `json:"pricing"`
	LineItems []pricing.LineItem     `json:"lineItems"`
	Estimate  *location.Estimate     `json:"estimate,omitempty"`
}

func (h *PricingHandler) Quote(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable body")
		return
	}
	var req pricing.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var pts quotePoints
	if err := json.Unmarshal(raw, &pts); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	var est *location.Estimate
	if pts.PatientLocation != nil && pts.NurseLocation != nil {
		if err := pts.PatientLocation.Validate(); err != nil {
			writeLocationError(c, err)
			return
		}
		if err := pts.NurseLocation.Validate(); err != nil {
			writeLocationError(c, err)
			return
		}
		e := h.estimate(c, *pts.PatientLocation, *pts.NurseLocation, req.ServiceType)
		req.DistanceKm = e.DistanceKm
		est = &e
	}

	q := h.pricing.Quote(c.Request.Context(), req, middleware.CallerUID(c))
	writeJSON(c, http.StatusOK, quoteResponse{
		QuoteID:   q.ID.String(),
		Pricing:   q.Pricing,
		LineItems: q.Pricing.LineItems(),
		Estimate:  est,
	})
}

func (h *PricingHandler) estimate(c *gin.Context, patient, nurse geo.Point, service string) location.Estimate {
	if h.location != nil {
		return h.location.Estimate(c.Request.Context(), patient, nurse, service)
	}
	return location.EstimateDistanceAndETA(h.pricing.Engine().Table(), patient, nurse, service)
}

// Validate answers 200 with the recomputed breakdown when the submitted one
// checks out and 409 with it when it does not.
func (h *PricingHandler) Validate(c *gin.Context) {
	var pb pricing.PriceBreakdown
	if err := c.ShouldBindJSON(&pb); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	want, err := h.pricing.Validate(c.Request.Context(), pb)
	if err != nil {
		writePricingError(c, err, want)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"valid": true, "pricing": want})
}

// Config returns the active rate table, as YAML when ?format=yaml.
func (h *PricingHandler) Config(c *gin.Context) {
	table := h.pricing.Engine().Table()
	if c.Query("format") == "yaml" {
		out, err := pricing.MarshalRateTable(table)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.Data(http.StatusOK, "application/yaml", out)
		return
	}
	writeJSON(c, http.StatusOK, table)
}

func (h *PricingHandler) Services(c *gin.Context) {
	table := h.pricing.Engine().Table()
	type serviceEntry struct {
		pricing.ServiceType
		BaseFare float64 `json:"baseFare"`
	}
	catalogue := pricing.ServiceTypes()
	out := make([]serviceEntry, 0, len(catalogue))
	for _, st := range catalogue {
		out = append(out, serviceEntry{ServiceType: st, BaseFare: table.BaseFare(st.Name)})
	}
	writeJSON(c, http.StatusOK, gin.H{"pricingVersion": table.Version, "services": out})
}

func (h *PricingHandler) GetQuote(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	q, err := h.pricing.GetQuote(c.Request.Context(), types.ID(id))
	if err != nil {
		if errors.Is(err, pricing.ErrQuoteNotFound) {
			writeError(c, http.StatusNotFound, err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, q)
}
