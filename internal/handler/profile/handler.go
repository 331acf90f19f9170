package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/doctor"
	"github.com/jwalitptl/hms-api/internal/service/patient"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	patients *patient.Service
	doctors  *doctor.Service
}

func NewHandler(patients *patient.Service, doctors *doctor.Service) *Handler {
	return &Handler{patients: patients, doctors: doctors}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patientOnly := middleware.RequireRoles(model.RolePatient)
	doctorOnly := middleware.RequireRoles(model.RoleDoctor)
	admin := middleware.RequireRoles(model.RoleAdmin)

	profile := r.Group("/profile")
	{
		profile.GET("/patient", patientOnly, h.GetOwnPatient)
		profile.PUT("/patient", patientOnly, h.UpdateOwnPatient)
		profile.GET("/patient/:id", admin, h.GetPatient)

		profile.GET("/doctor", doctorOnly, h.GetOwnDoctor)
		profile.PUT("/doctor", doctorOnly, h.UpdateOwnDoctor)
		profile.GET("/doctor/:id", admin, h.GetDoctor)

		profile.PUT("/change-password", h.ChangePassword)
	}
}

func (h *Handler) GetOwnPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	h.respondPatient(c)(h.patients.GetProfile(c.Request.Context(), caller.ID(), caller))
}

func (h *Handler) GetPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	h.respondPatient(c)(h.patients.GetProfile(c.Request.Context(), id, caller))
}

func (h *Handler) UpdateOwnPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.PatientUpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	h.respondPatient(c)(h.patients.UpdateProfile(c.Request.Context(), caller.ID(), req, caller))
}

func (h *Handler) GetOwnDoctor(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	h.respondDoctor(c)(h.doctors.GetProfile(c.Request.Context(), caller.ID(), caller))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	h.respondDoctor(c)(h.doctors.GetProfile(c.Request.Context(), id, caller))
}

func (h *Handler) UpdateOwnDoctor(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.DoctorUpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	h.respondDoctor(c)(h.doctors.UpdateProfile(c.Request.Context(), caller.ID(), req, caller))
}

// ChangePassword dispatches on the caller type. Admin accounts are seeded
// from configuration and cannot change their password here.
func (h *Handler) ChangePassword(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.ChangePasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	var err error
	switch caller.(type) {
	case model.PatientPrincipal:
		err = h.patients.ChangePassword(c.Request.Context(), caller.ID(), req, caller)
	case model.DoctorPrincipal:
		err = h.doctors.ChangePassword(c.Request.Context(), caller.ID(), req, caller)
	default:
		err = apperrors.AccessDenied("Password change not supported for this user type.")
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Password changed successfully.", nil)
}

func (h *Handler) respondPatient(c *gin.Context) func(*model.Patient, error) {
	return func(p *model.Patient, err error) {
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		handler.OK(c, p)
	}
}

func (h *Handler) respondDoctor(c *gin.Context) func(*model.Doctor, error) {
	return func(d *model.Doctor, err error) {
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		handler.OK(c, d)
	}
}
