package doctor

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
	"github.com/jwalitptl/hms-api/internal/service/doctor"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

const dateLayout = "2006-01-02"

type Handler struct {
	doctors      *doctor.Service
	appointments *appointment.Service
}

func NewHandler(doctors *doctor.Service, appointments *appointment.Service) *Handler {
	return &Handler{doctors: doctors, appointments: appointments}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("/specialization/:name", h.ListBySpecialization)
		doctors.GET("/:id/available-slots", h.AvailableSlots)
	}

	r.POST("/admin/doctors/register", middleware.RequireRoles(model.RoleAdmin), h.Register)
}

func (h *Handler) Register(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	var req model.DoctorRegistrationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doc, err := h.doctors.Register(c.Request.Context(), req, caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Created(c, "Doctor registered successfully", doc)
}

func (h *Handler) ListBySpecialization(c *gin.Context) {
	list, err := h.doctors.ListBySpecialization(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if list == nil {
		list = []*model.Doctor{}
	}
	handler.OK(c, list)
}

// AvailableSlots expects ?date=YYYY-MM-DD, read in the clinic's time zone.
func (h *Handler) AvailableSlots(c *gin.Context) {
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	raw := c.Query("date")
	if raw == "" {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.ParseInLocation(dateLayout, raw, h.appointments.WorkingHours().Location())
	if err != nil {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
		return
	}

	slots, err := h.appointments.GetAvailableSlots(c.Request.Context(), id, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if slots == nil {
		slots = []model.TimeSlot{}
	}
	handler.OK(c, slots)
}
