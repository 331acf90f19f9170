package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
	"github.com/jwalitptl/hms-api/internal/service/medication"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	appointments *appointment.Service
	medications  *medication.Service
}

func NewHandler(appointments *appointment.Service, medications *medication.Service) *Handler {
	return &Handler{appointments: appointments, medications: medications}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patient := middleware.RequireRoles(model.RolePatient)
	doctor := middleware.RequireRoles(model.RoleDoctor)
	admin := middleware.RequireRoles(model.RoleAdmin)
	staff := middleware.RequireRoles(model.RoleDoctor, model.RoleAdmin)

	appointments := r.Group("/appointments")
	{
		appointments.POST("/book", patient, h.Book)
		appointments.GET("/my/patient", patient, h.ListMineAsPatient)
		appointments.GET("/my/patient/medications", patient, h.ListMyMedications)
		appointments.GET("/my/doctor", doctor, h.ListMineAsDoctor)
		appointments.GET("/patient/:id", admin, h.ListForPatient)
		appointments.GET("/doctor/:id", admin, h.ListForDoctor)

		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id/approve", staff, h.Approve)
		appointments.PUT("/:id/reject", staff, h.Reject)
		appointments.PUT("/:id/cancel", h.Cancel)
		appointments.PUT("/:id/complete", staff, h.Complete)
		appointments.POST("/:id/medications", staff, h.AssignMedications)
		appointments.GET("/:id/medications", h.ListMedications)
	}

	r.GET("/patients/:id/medications", h.ListPatientMedications)
}

func (h *Handler) Book(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}

	var req model.BookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appt, err := h.appointments.Book(c.Request.Context(), caller.ID(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Created(c, "Appointment requested", appt)
}

func (h *Handler) Get(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointments.Get(c.Request.Context(), id, caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.OK(c, appt)
}

func (h *Handler) ListMineAsPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	h.listForPatient(c, caller.ID())
}

func (h *Handler) ListMineAsDoctor(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	h.listForDoctor(c, caller.ID())
}

func (h *Handler) ListForPatient(c *gin.Context) {
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	h.listForPatient(c, id)
}

func (h *Handler) ListForDoctor(c *gin.Context) {
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	h.listForDoctor(c, id)
}

func (h *Handler) listForPatient(c *gin.Context, patientID uuid.UUID) {
	list, err := h.appointments.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if list == nil {
		list = []*model.Appointment{}
	}
	handler.OK(c, list)
}

func (h *Handler) listForDoctor(c *gin.Context, doctorID uuid.UUID) {
	list, err := h.appointments.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if list == nil {
		list = []*model.Appointment{}
	}
	handler.OK(c, list)
}

type transitionFunc func(*gin.Context, uuid.UUID, model.Principal) (*model.Appointment, error)

// transition runs one state change for the appointment named in the path.
func (h *Handler) transition(c *gin.Context, fn transitionFunc) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := fn(c, id, caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.OK(c, appt)
}

func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
		return h.appointments.Approve(c.Request.Context(), id, caller)
	})
}

func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
		return h.appointments.Reject(c.Request.Context(), id, caller)
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, func(c *gin.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
		return h.appointments.Cancel(c.Request.Context(), id, caller)
	})
}

func (h *Handler) Complete(c *gin.Context) {
	var req model.CompleteAppointmentRequest
	// the body is optional
	if c.Request.ContentLength != 0 && !handler.BindJSON(c, &req) {
		return
	}

	h.transition(c, func(c *gin.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
		return h.appointments.Complete(c.Request.Context(), id, req.DoctorNotes, caller)
	})
}

func (h *Handler) AssignMedications(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.AssignMedicationsRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	meds, err := h.medications.Assign(c.Request.Context(), id, req.Medications, caller)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if meds == nil {
		meds = []*model.Medication{}
	}
	handler.Created(c, "Medications assigned", meds)
}

func (h *Handler) ListMedications(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	meds, err := h.medications.ListForAppointment(c.Request.Context(), id, caller)
	h.respondMedications(c, meds, err)
}

func (h *Handler) ListMyMedications(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	meds, err := h.medications.ListForPatient(c.Request.Context(), caller.ID(), caller)
	h.respondMedications(c, meds, err)
}

func (h *Handler) ListPatientMedications(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	meds, err := h.medications.ListForPatient(c.Request.Context(), id, caller)
	h.respondMedications(c, meds, err)
}

func (h *Handler) respondMedications(c *gin.Context, meds []*model.Medication, err error) {
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if meds == nil {
		meds = []*model.Medication{}
	}
	handler.OK(c, meds)
}
