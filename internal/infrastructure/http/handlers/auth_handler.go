package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bcg0006/plockly-core/internal/application/auth"
	"github.com/bcg0006/plockly-core/internal/application/ports"
	"github.com/bcg0006/plockly-core/internal/domain"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
	"github.com/bcg0006/plockly-core/internal/infrastructure/http/middleware"
	"github.com/bcg0006/plockly-core/internal/infrastructure/security"
)

// AuthHandler serves /auth/*: signup, login, logout, refresh, profile.
type AuthHandler struct {
	signup   *auth.Signup
	login    *auth.Login
	refresh  *auth.Refresh
	logout   *auth.Logout
	users    ports.UserRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(signup *auth.Signup, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, users ports.UserRepository, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		signup:   signup,
		login:    login,
		refresh:  refresh,
		logout:   logout,
		users:    users,
		validate: newValidator(),
		log:      log,
	}
}

// userResponse is the user JSON shape. The password hash never leaves
// the credential store boundary.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type tokensResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func newTokensResponse(t *auth.TokenPair) tokensResponse {
	return tokensResponse{Access: t.Access, Refresh: t.Refresh}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email           string `json:"email" validate:"required,email,max=254"`
		Password        string `json:"password" validate:"required,max=128"`
		PasswordConfirm string `json:"password_confirm" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	body.Email = auth.NormalizeEmail(body.Email)
	if err := h.validate.Struct(&body); err != nil {
		writeFieldErrors(w, fieldErrors(err))
		return
	}
	// Mismatch fails before the store is touched.
	if body.Password != body.PasswordConfirm {
		writeFieldErrors(w, map[string][]string{
			"password_confirm": {"Passwords do not match."},
		})
		return
	}
	result, err := h.signup.Execute(r.Context(), auth.SignupInput{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		AuditLog(h.log, r, "user.signup", "", false, err.Error())
		middleware.RecordAuthAttempt("signup", false)
		var violation *security.PolicyViolation
		switch {
		case errors.Is(err, domerrors.ErrEmailTaken):
			writeFieldErrors(w, map[string][]string{
				"email": {"A user with this email already exists."},
			})
		case errors.As(err, &violation):
			writeFieldErrors(w, map[string][]string{"password": violation.Reasons})
		case errors.Is(err, domerrors.ErrWeakPassword):
			writeFieldErrors(w, map[string][]string{"password": {err.Error()}})
		case errors.Is(err, domerrors.ErrInvalidCredentials):
			writeFieldErrors(w, map[string][]string{"email": {"Enter a valid email address."}})
		default:
			h.log.Error().Err(err).Msg("signup failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.signup", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("signup", true)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    newUserResponse(result.User),
		"tokens":  newTokensResponse(result.Tokens),
		"message": "User registered successfully!",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	body.Email = auth.NormalizeEmail(body.Email)
	if err := h.validate.Struct(&body); err != nil {
		writeFieldErrors(w, fieldErrors(err))
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		AuditLog(h.log, r, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		switch {
		case errors.Is(err, domerrors.ErrInvalidCredentials):
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials,
				"Invalid credentials. Please check your email and password.")
		case errors.Is(err, domerrors.ErrAccountDisabled):
			writeErr(w, http.StatusBadRequest, ErrCodeAccountDisabled,
				"Account is disabled. Please contact support.")
		default:
			h.log.Error().Err(err).Msg("login failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    newUserResponse(result.User),
		"tokens":  newTokensResponse(result.Tokens),
		"message": "Login successful!",
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if body.RefreshToken == "" {
		writeErr(w, http.StatusBadRequest, "", "Refresh token is required for logout.")
		return
	}
	if err := h.logout.Execute(r.Context(), auth.LogoutInput{RefreshToken: body.RefreshToken}); err != nil {
		AuditLog(h.log, r, "auth.logout", userID, false, err.Error())
		middleware.RecordAuthAttempt("logout", false)
		if errors.Is(err, domerrors.ErrInvalidToken) {
			writeErr(w, http.StatusBadRequest, ErrCodeInvalidToken, "Invalid refresh token.")
			return
		}
		h.log.Error().Err(err).Msg("logout failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditLog(h.log, r, "auth.logout", userID, true, "")
	middleware.RecordAuthAttempt("logout", true)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful!"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if body.Refresh == "" {
		writeErr(w, http.StatusBadRequest, "", "Refresh token is required.")
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{RefreshToken: body.Refresh})
	if err != nil {
		AuditLog(h.log, r, "auth.refresh", "", false, err.Error())
		middleware.RecordAuthAttempt("refresh", false)
		// Revoked, expired and malformed all render the same way; the
		// distinction lives in the audit log only.
		if errors.Is(err, domerrors.ErrInvalidToken) || errors.Is(err, domerrors.ErrTokenRevoked) {
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, "Invalid refresh token.")
			return
		}
		h.log.Error().Err(err).Msg("refresh failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditLog(h.log, r, "auth.refresh", "", true, "")
	middleware.RecordAuthAttempt("refresh", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens":  newTokensResponse(result.Tokens),
		"message": "Token refreshed successfully!",
	})
}

// GetProfile returns the caller's own record.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// UpdateProfile mutates first_name/last_name/email. PUT requires email;
// PATCH is partial. id, is_active and created_at are immutable and any
// attempt to send them is ignored by the decode shape.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Email     *string `json:"email" validate:"omitempty,email,max=254"`
		FirstName *string `json:"first_name" validate:"omitempty,max=150"`
		LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if r.Method == http.MethodPut && body.Email == nil {
		writeFieldErrors(w, map[string][]string{"email": {"This field is required."}})
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeFieldErrors(w, fieldErrors(err))
		return
	}
	if body.Email != nil {
		normalized := auth.NormalizeEmail(*body.Email)
		body.Email = &normalized
	}
	updated, err := h.users.UpdateProfile(r.Context(), user.ID, ports.ProfileUpdate{
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domerrors.ErrEmailTaken):
			writeFieldErrors(w, map[string][]string{
				"email": {"A user with this email already exists."},
			})
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, "", "user not found")
		default:
			h.log.Error().Err(err).Msg("profile update failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

// currentUser resolves the authenticated caller; writes the error
// response itself when resolution fails.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userIDStr := middleware.UserIDFromContext(r.Context())
	if userIDStr == "" {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return nil, false
	}
	user, err := h.users.GetByID(r.Context(), domain.NewUserID(userID))
	if err != nil {
		h.log.Error().Err(err).Msg("resolve current user")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return nil, false
	}
	if user == nil {
		writeErr(w, http.StatusNotFound, "", "user not found")
		return nil, false
	}
	return user, true
}
