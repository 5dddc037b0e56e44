package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/domain/careplan"
	"github.com/haircarepro/server/internal/domain/reminder"
	apperrors "github.com/haircarepro/server/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc     auth.Service
	planSvc     careplan.Service
	reminderSvc reminder.Service
	cronToken   string
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(authSvc auth.Service, planSvc careplan.Service, reminderSvc reminder.Service, cronToken string, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:     authSvc,
		planSvc:     planSvc,
		reminderSvc: reminderSvc,
		cronToken:   cronToken,
		logger:      logger.With("component", "http.handler"),
	}
}

// Register creates a new account.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_error"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "email_exists"):
			status = http.StatusConflict
			code = "email_exists"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_error"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_credentials"):
			status = http.StatusUnauthorized
			code = "invalid_credentials"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh issues a new token pair from a refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_error"
		switch {
		case apperrors.IsCode(err, "invalid_token"):
			status = http.StatusUnauthorized
			code = "invalid_token"
		case apperrors.IsCode(err, "user_not_found"):
			status = http.StatusUnauthorized
			code = "invalid_token"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated account.
func (h *Handler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
		return
	}

	user, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		status := http.StatusInternalServerError
		code := "auth_error"
		if apperrors.IsCode(err, "user_not_found") {
			status = http.StatusNotFound
			code = "user_not_found"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, user)
}

type submitPlanRequest struct {
	Answers      map[string]string `json:"answers"`
	ReminderDays []int             `json:"reminderDays"`
}

// SubmitPlan runs the survey submission pipeline for the authenticated user.
func (h *Handler) SubmitPlan(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
		return
	}

	var req submitPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.planSvc.Submit(c.Request.Context(), careplan.SubmitRequest{
		OwnerID:      claims.UserID,
		Answers:      req.Answers,
		ReminderDays: req.ReminderDays,
	})
	if err != nil {
		abortWithError(c, planError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListPlans returns the authenticated user's plans, newest first.
func (h *Handler) ListPlans(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
		return
	}

	plans, err := h.planSvc.List(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "plan_error", errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetArtifact streams a stored prescription document.
func (h *Handler) GetArtifact(c *gin.Context) {
	name := c.Param("name")

	reader, err := h.planSvc.Artifact(c.Request.Context(), name)
	if err != nil {
		status := http.StatusNotFound
		code := "artifact_not_found"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Warn("artifact stream interrupted", "name", name, "error", err)
	}
}

// TriggerReminders runs one reminder batch. The endpoint is meant for an
// external scheduler and can be locked down with a shared token.
func (h *Handler) TriggerReminders(c *gin.Context) {
	if h.cronToken != "" {
		header := c.GetHeader("Authorization")
		if header != "Bearer "+h.cronToken {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid cron token", nil))
			return
		}
	}

	report, err := h.reminderSvc.Run(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "reminder_query_error", errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reminders sent",
		"count":   report.Considered,
		"report":  report,
	})
}

func planError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "plan_error"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "invalid_email"):
		status = http.StatusBadRequest
		code = "invalid_email"
	case apperrors.IsCode(err, "user_not_found"):
		status = http.StatusNotFound
		code = "user_not_found"
	case apperrors.IsCode(err, "generation_error"):
		status = http.StatusBadGateway
		code = "generation_error"
	case apperrors.IsCode(err, "delivery_error"):
		status = http.StatusBadGateway
		code = "delivery_error"
	case apperrors.IsCode(err, "render_error"):
		code = "render_error"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
