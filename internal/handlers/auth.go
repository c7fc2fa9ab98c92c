package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/access"
	"github.com/serroba/shortlinks/internal/account"
	"github.com/serroba/shortlinks/internal/session"
	"go.uber.org/zap"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	controller   *access.Controller
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookie marks cookies HTTPS-only.
func NewAuthHandler(controller *access.Controller, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		controller:   controller,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

func (h *AuthHandler) Register(ctx context.Context, req *CredentialsRequest) (*SignUpResponse, error) {
	user, s, err := h.controller.SignUp(ctx, req.Body.Email, req.Body.Password)
	if err != nil {
		return nil, toHTTPError(h.logger, "register", err)
	}

	h.logger.Info("user registered", zap.String("userId", user.ID))

	return &SignUpResponse{
		SetCookie: h.sessionCookie(s),
		Body:      toUserBody(user),
	}, nil
}

func (h *AuthHandler) Login(ctx context.Context, req *CredentialsRequest) (*LoginResponse, error) {
	s, err := h.controller.Login(ctx, req.Body.Email, req.Body.Password)
	if err != nil {
		return nil, toHTTPError(h.logger, "login", err)
	}

	resp := &LoginResponse{SetCookie: h.sessionCookie(s)}
	resp.Body.Token = string(s.Token)
	resp.Body.ExpiresAt = s.ExpiresAt

	return resp, nil
}

func (h *AuthHandler) Logout(ctx context.Context, req *SessionRequest) (*LogoutResponse, error) {
	token, err := h.controller.SelectToken(ctx, req.Candidates()...)
	if err != nil {
		return nil, toHTTPError(h.logger, "logout", err)
	}

	if err := h.controller.Logout(ctx, token); err != nil {
		return nil, toHTTPError(h.logger, "logout", err)
	}

	cookie := h.sessionCookie(&session.Session{})
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)

	return &LogoutResponse{SetCookie: cookie}, nil
}

func (h *AuthHandler) Me(ctx context.Context, req *SessionRequest) (*MeResponse, error) {
	token, err := h.controller.SelectToken(ctx, req.Candidates()...)
	if err != nil {
		return nil, toHTTPError(h.logger, "me", err)
	}

	user, err := h.controller.CurrentUser(ctx, token)
	if err != nil {
		return nil, toHTTPError(h.logger, "me", err)
	}

	if user == nil {
		return nil, huma.Error401Unauthorized("login required")
	}

	return &MeResponse{Body: toUserBody(user)}, nil
}

func (h *AuthHandler) sessionCookie(s *session.Session) http.Cookie {
	return http.Cookie{
		Name:     SessionCookieName,
		Value:    string(s.Token),
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func toUserBody(user *account.User) UserBody {
	return UserBody{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
