package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/thysis/room-designer-api/internal/email"
	"github.com/thysis/room-designer-api/internal/httputil"
	"github.com/thysis/room-designer-api/internal/logging"
	"github.com/thysis/room-designer-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body. Username may carry either
// a username or an email address, matching what the game client sends.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	ResetCode   string `json:"resetCode"`
	NewPassword string `json:"newPassword"`
}

// RegisterData is the payload of a successful registration response
type RegisterData struct {
	UserID uuid.UUID `json:"userId"`
}

// LoginData is the payload of a successful login response
type LoginData struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account with username, email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Validation error or duplicate username/email"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"username": req.Username})

	newUser, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			logger.Warn("registration failed: duplicate credential")
			httputil.RespondError(w, "Username or email already exists.", http.StatusBadRequest)
			return
		}
		if isValidationError(err) {
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Registration failed.", http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	httputil.RespondSuccess(w, "User registered successfully.",
		RegisterData{UserID: newUser.ID}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with a username or email plus password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Invalid request body"
// @Failure      401 {object} httputil.Envelope "Unknown account or wrong password"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	loggedInUser, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("login failed: no matching account")
			httputil.RespondError(w, "Username or email doesn't exist.", http.StatusUnauthorized)
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid password")
			httputil.RespondError(w, "Invalid password.", http.StatusUnauthorized)
			return
		}
		if isValidationError(err) {
			logger.Warn("login failed: validation error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Login failed.", http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", loggedInUser.ID)

	httputil.RespondSuccess(w, "Login successful.",
		LoginData{UserID: loggedInUser.ID, Username: loggedInUser.Username}, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request a password reset code
// @Description  Generate a 6-digit reset code and email it to the account address.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Unknown email or delivery failure"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot-password request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("forgot-password failed: no matching account")
			httputil.RespondError(w, "No account found with this email.", http.StatusBadRequest)
			return
		}
		if errors.Is(err, email.ErrDeliveryUnavailable) {
			logger.Error("forgot-password failed: email delivery unavailable")
			httputil.RespondError(w, "Unable to send reset code email. Please try again later.", http.StatusBadRequest)
			return
		}
		logger.Error("forgot-password failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Failed to request password reset.", http.StatusInternalServerError)
		return
	}

	logger.Info("password reset code dispatched")

	httputil.RespondSuccess(w, "Reset code sent to your email.", nil, http.StatusOK)
}

// ResetPassword handles password reset confirmation
// @Summary      Reset password with a code
// @Description  Replace the account password using the emailed reset code. Codes are single-use and expire after 15 minutes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Email, reset code and new password"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Unknown email, invalid or expired code"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset-password request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.ResetCode, req.NewPassword); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("reset-password failed: no matching account")
			httputil.RespondError(w, "No account found with this email.", http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidOrExpiredCode) {
			logger.Warn("reset-password failed: invalid or expired code")
			httputil.RespondError(w, "Reset code is invalid or has expired.", http.StatusBadRequest)
			return
		}
		if isValidationError(err) {
			logger.Warn("reset-password failed: validation error", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("reset-password failed: internal error", "error", err.Error())
		httputil.RespondError(w, "Failed to reset password.", http.StatusInternalServerError)
		return
	}

	logger.Info("password reset successfully")

	httputil.RespondSuccess(w, "Password reset successfully.", nil, http.StatusOK)
}

// isValidationError reports whether err is a structural validation failure.
func isValidationError(err error) bool {
	return errors.Is(err, ErrUsernameRequired) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrInvalidEmailFormat)
}
