package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/models"
)

// Accounts is the account surface used by [AuthHandler].
type Accounts interface {
	Signup(name, email, password string) (string, *models.User, error)
	Login(email, password string) (string, *models.User, error)
	User(id string) (*models.User, error)
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// AuthHandler serves signup and login.
type AuthHandler struct {
	accounts Accounts
	logger   *log.Logger
}

// NewAuthHandler creates an [AuthHandler].
func NewAuthHandler(accounts Accounts, logger *log.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

func (h *AuthHandler) Routes() []string {
	return []string{"POST /auth/signup", "POST /auth/login"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if r.Pattern == "POST /auth/signup" {
		token, user, err := h.accounts.Signup(req.Name, req.Email, req.Password)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		h.logger.Info("account created", "user", user.ID())
		writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
		return
	}

	token, _, err := h.accounts.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// ProtectedHandler echoes the authenticated user. Register it behind [RequireAuth].
type ProtectedHandler struct {
	accounts Accounts
	logger   *log.Logger
}

// NewProtectedHandler creates a [ProtectedHandler].
func NewProtectedHandler(accounts Accounts, logger *log.Logger) *ProtectedHandler {
	return &ProtectedHandler{accounts: accounts, logger: logger}
}

func (h *ProtectedHandler) Routes() []string { return []string{"GET /protected"} }

func (h *ProtectedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "token not found")
		return
	}

	user, err := h.accounts.User(session.UserID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "You have access to this protected route",
		"user":    user.Profile(),
	})
}
