package handlers

import (
	"context"
	"net/http"
	"time"

	"cinelist/internal/auth"
	"cinelist/models"
	"cinelist/services/accounts"
)

type accountService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

var _ accountService = (*accounts.Service)(nil)

type tokenIssuer interface {
	Issue(userID, username string) (string, time.Time, error)
}

var _ tokenIssuer = (*auth.TokenIssuer)(nil)

// AuthHandler handles registration, login and the current-user lookup.
type AuthHandler struct {
	accounts accountService
	tokens   tokenIssuer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc accountService, tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{accounts: accountsSvc, tokens: tokens}
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful register or login.
type AuthResponse struct {
	Message   string             `json:"message"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      models.UserSummary `json:"user"`
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, "User registered successfully", user)
}

// Login authenticates a user and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, "Login successful", user)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Get(r.Context(), auth.GetUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Summary())
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, message string, user *models.User) {
	token, expiresAt, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, AuthResponse{
		Message:   message,
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Summary(),
	})
}
