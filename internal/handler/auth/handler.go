package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	"github.com/jwalitptl/hms-api/internal/service/patient"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	authService    *auth.Service
	patientService *patient.Service
}

func NewHandler(authService *auth.Service, patientService *patient.Service) *Handler {
	return &Handler{authService: authService, patientService: patientService}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.POST("/patient/register", h.RegisterPatient)
		a.POST("/patient/login", h.login(model.UserTypePatient))
		a.POST("/doctor/login", h.login(model.UserTypeDoctor))
		a.POST("/admin/login", h.login(model.UserTypeAdmin))
	}
}

type registrationResponse struct {
	UserID   string         `json:"user_id"`
	Name     string         `json:"name"`
	UserType model.UserType `json:"user_type"`
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.PatientRegistrationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.patientService.Register(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	handler.Created(c, "Patient registered successfully", registrationResponse{
		UserID:   p.ID.String(),
		Name:     p.Name,
		UserType: model.UserTypePatient,
	})
}

func (h *Handler) login(userType model.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.LoginRequest
		if !handler.BindJSON(c, &req) {
			return
		}

		token, err := h.authService.Login(c.Request.Context(), userType, req.Email, req.Password)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		handler.OK(c, token)
	}
}
