package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bedrockchat/internal/domain"
	"bedrockchat/internal/repository"
	"bedrockchat/internal/service"
	"bedrockchat/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	dataLayer   repository.DataLayer
	jwtSecret   []byte
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, dataLayer repository.DataLayer, jwtSecret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		dataLayer:   dataLayer,
		jwtSecret:   []byte(jwtSecret),
		logger:      logger,
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User        *domain.User    `json:"user"`
	Profile     *domain.Profile `json:"profile,omitempty"`
	AccessToken string          `json:"access_token"`
}

// Login is the password-auth callback surface. A bad username and a bad
// password get the same generic 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateLogin(input.Username, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.authService.VerifyUser(r.Context(), input.Username, input.Password)
	if err != nil {
		h.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}

	// Hand back the directory profile alongside the descriptor so the chat
	// frontend sees its own user record. A missing profile is a partial
	// provisioning leftover, not a login failure.
	profile, err := h.dataLayer.GetProfile(r.Context(), user.Identifier)
	if err != nil {
		h.logger.Error("loading profile", "username", user.Identifier, "error", err)
	} else if profile == nil {
		h.logger.Warn("no profile for authenticated user", "username", user.Identifier)
	}

	token, err := h.generateToken(user)
	if err != nil {
		h.logger.Error("generating token", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{User: user, Profile: profile, AccessToken: token})
}

func (h *AuthHandler) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.Identifier,
		"role": user.Metadata["role"],
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}
