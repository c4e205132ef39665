// README: Booking handlers: create, read, list, status changes and cancellation.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nursecare/internal/geo"
	"nursecare/internal/http/middleware"
	"nursecare/internal/modules/booking"
	"nursecare/internal/modules/pricing"
	"nursecare/internal/types"
)

type BookingHandler struct {
	booking *booking.Service
	watch   *watcher
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{booking: svc, watch: newWatcher(svc)}
}

type bookingLocationReq struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type createBookingReq struct {
	PatientID       string                  `json:"patientId"`
	Type            string                  `json:"type"`
	ServiceType     string                  `json:"serviceType"`
	Duration        float64                 `json:"duration"`
	EquipmentNeeded []string                `json:"equipmentNeeded"`
	Notes           string                  `json:"notes"`
	Location        bookingLocationReq      `json:"location"`
	NurseLocation   *geo.Point              `json:"nurseLocation"`
	DistanceKm      float64                 `json:"distanceKm"`
	NurseExperience pricing.ExperienceInput `json:"nurseExperience"`
	ScheduledTime   *time.Time              `json:"scheduledTime"`
	IsEmergency     bool                    `json:"isEmergency"`
	Urgency         string                  `json:"urgency"`
	Pricing         *pricing.PriceBreakdown `json:"pricing"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	uid := middleware.CallerUID(c)
	// A patient may only book for themselves.
	if req.PatientID != "" && types.ID(req.PatientID) != uid {
		writeError(c, http.StatusForbidden, "forbidden: patientId does not match authenticated user")
		return
	}
	if middleware.CallerRole(c) == middleware.RoleNurse {
		writeError(c, http.StatusForbidden, "forbidden: nurses cannot create bookings")
		return
	}

	b, err := h.booking.Create(c.Request.Context(), booking.CreateCommand{
		PatientID:       uid,
		Type:            booking.Type(req.Type),
		ServiceType:     req.ServiceType,
		DurationHours:   req.Duration,
		EquipmentNeeded: req.EquipmentNeeded,
		Notes:           req.Notes,
		Location:        geo.Point{Lat: req.Location.Lat, Lng: req.Location.Lng},
		Address:         req.Location.Address,
		NurseLocation:   req.NurseLocation,
		DistanceKm:      req.DistanceKm,
		NurseExperience: req.NurseExperience,
		ScheduledTime:   req.ScheduledTime,
		IsEmergency:     req.IsEmergency,
		Urgency:         req.Urgency,
		Pricing:         req.Pricing,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, err := h.booking.GetFor(c.Request.Context(), types.ID(id), middleware.CallerUID(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

// List returns the caller's bookings: assigned ones for nurses, own ones
// for patients. ?status= filters.
func (h *BookingHandler) List(c *gin.Context) {
	uid := middleware.CallerUID(c)
	status := booking.Status(c.Query("status"))

	var (
		list []*booking.Booking
		err  error
	)
	if middleware.CallerRole(c) == middleware.RoleNurse {
		list, err = h.booking.ListForNurse(c.Request.Context(), uid, status)
	} else {
		list, err = h.booking.ListForPatient(c.Request.Context(), uid, status)
	}
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": list, "count": len(list)})
}

type statusReq struct {
	Status  string `json:"status"`
	NurseID string `json:"nurseId"`
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		writeError(c, http.StatusBadRequest, "status is required")
		return
	}
	to := booking.Status(req.Status)
	// Only nurses accept, start and complete visits.
	switch to {
	case booking.StatusAccepted, booking.StatusInProgress, booking.StatusCompleted:
		if middleware.CallerRole(c) != middleware.RoleNurse {
			writeError(c, http.StatusForbidden, "forbidden: nurse role required")
			return
		}
	}
	b, err := h.booking.UpdateStatus(c.Request.Context(), booking.StatusCommand{
		BookingID: types.ID(id),
		To:        to,
		ActorID:   middleware.CallerUID(c),
		NurseID:   types.ID(req.NurseID),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	by := booking.CancelledByPatient
	if middleware.CallerRole(c) == middleware.RoleNurse {
		by = booking.CancelledByNurse
	}
	b, err := h.booking.Cancel(c.Request.Context(), booking.CancelCommand{
		BookingID: types.ID(id),
		ActorID:   middleware.CallerUID(c),
		By:        by,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Watch(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	h.watch.serve(c, types.ID(id), middleware.CallerUID(c))
}

// WatchMine streams the calling patient's bookings, newest first.
func (h *BookingHandler) WatchMine(c *gin.Context) {
	h.watch.servePatient(c, middleware.CallerUID(c))
}
