// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nursecare/internal/geo"
	"nursecare/internal/modules/booking"
	"nursecare/internal/modules/location"
	"nursecare/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

// mismatchResponse carries the server's own breakdown so the client can
// show the corrected price.
type mismatchResponse struct {
	Error      string                 `json:"error"`
	Recomputed pricing.PriceBreakdown `json:"recomputed"`
}

// isValidID accepts Firebase UIDs and generated UUIDs.
func isValidID(v string) bool {
	if v == "" || len(v) > 128 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writePricingError(c *gin.Context, err error, recomputed pricing.PriceBreakdown) {
	switch {
	case errors.Is(err, pricing.ErrEstimateMismatch):
		writeJSON(c, http.StatusConflict, mismatchResponse{Error: err.Error(), Recomputed: recomputed})
	case errors.Is(err, pricing.ErrVersionMismatch):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrBadBreakdown):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeLocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidPoint):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrIndexUnavailable):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest), errors.Is(err, geo.ErrInvalidPoint):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrEstimateMismatch), errors.Is(err, pricing.ErrVersionMismatch):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrBadBreakdown):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
