// README: Location handlers: distance/ETA estimates, geohash, nurse positions and proximity listing.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nursecare/internal/geo"
	"nursecare/internal/http/middleware"
	"nursecare/internal/modules/location"
	"nursecare/internal/types"
)

const maxGeohashPrecision = 12

type LocationHandler struct {
	location     *location.Service
	nearbyRadius float64
	nearbyLimit  int
}

func NewLocationHandler(svc *location.Service, nearbyRadiusKm float64, nearbyLimit int) *LocationHandler {
	return &LocationHandler{location: svc, nearbyRadius: nearbyRadiusKm, nearbyLimit: nearbyLimit}
}

type estimateReq struct {
	PatientLocation geo.Point `json:"patientLocation"`
	NurseLocation   geo.Point `json:"nurseLocation"`
	ServiceType     string    `json:"serviceType"`
}

type estimateResp struct {
	location.Estimate
	DistanceText string `json:"distanceText"`
	ETAText      string `json:"etaText"`
}

func (h *LocationHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.PatientLocation.Validate(); err != nil {
		writeLocationError(c, err)
		return
	}
	if err := req.NurseLocation.Validate(); err != nil {
		writeLocationError(c, err)
		return
	}
	est := h.location.Estimate(c.Request.Context(), req.PatientLocation, req.NurseLocation, req.ServiceType)
	writeJSON(c, http.StatusOK, estimateResp{
		Estimate:     est,
		DistanceText: location.FormatDistance(est.DistanceKm),
		ETAText:      location.FormatETA(est.ETAMinutes),
	})
}

func (h *LocationHandler) Geohash(c *gin.Context) {
	p, ok := queryPoint(c)
	if !ok {
		return
	}
	precision := geo.DefaultGeohashPrecision
	if v := c.Query("precision"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxGeohashPrecision {
			writeError(c, http.StatusBadRequest, "precision must be 1..12")
			return
		}
		precision = n
	}
	writeJSON(c, http.StatusOK, gin.H{"geohash": geo.EncodeGeohash(p, precision), "precision": precision})
}

func (h *LocationHandler) Nearby(c *gin.Context) {
	p, ok := queryPoint(c)
	if !ok {
		return
	}
	radius := h.nearbyRadius
	if v := c.Query("radius_km"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			writeError(c, http.StatusBadRequest, "invalid radius_km")
			return
		}
		radius = r
	}
	nurses, err := h.location.Nearby(c.Request.Context(), p, radius, c.Query("service"), h.nearbyLimit)
	if err != nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"nurses": nurses, "count": len(nurses)})
}

type updateLocationReq struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Services  []string `json:"services"`
	Available *bool    `json:"available"`
}

// UpdateNurse indexes the caller's own position. Only nurses may call it.
func (h *LocationHandler) UpdateNurse(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid nurse id")
		return
	}
	if middleware.CallerRole(c) != middleware.RoleNurse {
		writeError(c, http.StatusForbidden, "forbidden: nurse role required")
		return
	}
	if middleware.CallerUID(c) != types.ID(id) {
		writeError(c, http.StatusForbidden, "forbidden: id does not match authenticated user")
		return
	}
	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	available := req.Available == nil || *req.Available
	pos, err := h.location.UpdateNurseLocation(c.Request.Context(), location.NurseUpdate{
		NurseID:   types.ID(id),
		Point:     geo.Point{Lat: req.Lat, Lng: req.Lng},
		Services:  req.Services,
		Available: available,
	})
	if err != nil {
		writeLocationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok", "geohash": pos.Geohash, "available": available})
}

// queryPoint reads ?lat=&lng= and writes the 400 itself.
func queryPoint(c *gin.Context) (geo.Point, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return geo.Point{}, false
	}
	p := geo.Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		writeLocationError(c, err)
		return geo.Point{}, false
	}
	return p, true
}
