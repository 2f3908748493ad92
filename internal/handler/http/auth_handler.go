package http

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/auth"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/user"
)

const maxLoginFormMemory = 1 << 16

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthHandler struct {
	users    user.Service
	sessions *auth.Manager
	validate *validator.Validate
}

func NewAuthHandler(users user.Service, sessions *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		validate: newValidator(),
	}
}

// RegisterPublicRoutes mounts the routes reachable without a session.
func (h *AuthHandler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/login", h.handleLogin)
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/logout", h.handleLogout)
	router.Get("/me", h.handleMe)
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func readLoginRequest(r *http.Request) (LoginRequest, error) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxLoginFormMemory); err != nil {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		return req, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		return req, nil
	default:
		err := decodeJSON(r, &req)
		return req, err
	}
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestPayload, err := readLoginRequest(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to decode login request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !validateStruct(w, h.validate, requestPayload) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), requestPayload.Username, requestPayload.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		respondWithServiceError(w, r, err, "Failed to log in")
		return
	}

	token, expires, err := h.sessions.Issue(auth.Identity{UserID: u.ID, Username: u.Username})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to log in")
		return
	}
	h.sessions.SetCookie(w, token, expires)

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserResponse(u),
		"token":   token,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)

	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		log.Info().Str("username", id.Username).Msg("User logged out")
	}
	respondWithSuccess(w, http.StatusOK, "", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := h.users.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// The account behind a still-valid token is gone.
			h.sessions.ClearCookie(w)
			respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		respondWithServiceError(w, r, err, "Failed to load current user")
		return
	}

	respondWithSuccess(w, http.StatusOK, "user", toUserResponse(u))
}
