package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/usecase"
	"go.uber.org/zap"
)

type userService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	AdminStats(ctx context.Context) (*usecase.AdminStats, error)
}

// CookieOptions controls the session cookie.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

type UserHandler struct {
	uc     userService
	cookie CookieOptions
	logger *logger.Logger
}

func NewUserHandler(uc userService, cookie CookieOptions, log *logger.Logger) *UserHandler {
	return &UserHandler{uc: uc, cookie: cookie, logger: log.Named("UserHandler")}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeMessageError(w, err)
		return
	}

	user, token, err := h.uc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token, Message: "User created Successfully"})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeMessageError(w, err)
		return
	}

	user, token, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token, Message: "User logged in Successfully"})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, messageResponse{Message: "User logged out Successfully"})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}

	user, err := h.uc.GetProfile(r.Context(), caller.ID)
	if err != nil {
		h.writeMessageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// AdminStats requires authentication only; there is no role check.
func (h *UserHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.uc.AdminStats(r.Context())
	if err != nil {
		h.writeMessageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeMessageError keeps the user routes' bare {message} body.
func (h *UserHandler) writeMessageError(w http.ResponseWriter, err error) {
	status, message := describeError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("User request failed", zap.Error(err))
	}
	writeJSON(w, status, messageResponse{Message: message})
}
