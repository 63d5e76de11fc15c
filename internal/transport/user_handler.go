package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/middleware"
	"github.com/rapPayne/online-store-server/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username      string `json:"username" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	First         string `json:"first" validate:"required"`
	Last          string `json:"last" validate:"required"`
	StreetAddress string `json:"street_address"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        UserProfile `json:"user"`
}

// UserProfile is the account representation sent to clients. The password
// hash never leaves the server.
type UserProfile struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	First         string `json:"first"`
	Last          string `json:"last"`
	StreetAddress string `json:"street_address"`
	Role          string `json:"role"`
}

func profileOf(u *domain.User) UserProfile {
	return UserProfile{
		Username:      u.Username,
		Email:         u.Email,
		First:         u.First,
		Last:          u.Last,
		StreetAddress: u.StreetAddress,
		Role:          u.Role,
	}
}

// UserHandler handles HTTP requests for accounts and authentication.
type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// RegisterRoutes registers the auth and account routes.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, adminOrSelfMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(adminMiddleware).Get("/", h.List)
		r.With(adminOrSelfMiddleware).Get("/{username}", h.Get)
		r.With(adminOrSelfMiddleware).Patch("/{username}", h.Update)
		r.With(adminMiddleware).Delete("/{username}", h.Delete)
	})
}

// Register handles account creation.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		First:         req.First,
		Last:          req.Last,
		StreetAddress: req.StreetAddress,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    profileOf(user),
	})
}

// Login handles authentication and issues an access token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		User:        profileOf(user),
	})
}

// Logout acknowledges the client discarding its token. Access tokens are
// stateless, so there is nothing to revoke server-side.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the authenticated caller's account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.Get(r.Context(), caller.Username)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}

// List returns every account.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, profileOf(&users[i]))
	}
	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// Get returns one account by username.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}

// Update applies a field patch to an account.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), caller, chi.URLParam(r, "username"), patch)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, profileOf(user))
}

// Delete removes an account. Orders placed by it are left untouched.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Delete(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "User deleted successfully",
		"user":    profileOf(user),
	})
}
