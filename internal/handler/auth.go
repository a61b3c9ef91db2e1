package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhle/coursehub-auth/internal/auth"
	"github.com/minhle/coursehub-auth/internal/middleware"
	"github.com/minhle/coursehub-auth/internal/repository"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Service *auth.AuthSessionService
}

func NewAuthHandler(s *auth.AuthSessionService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// ----- DTOs -----

type loginReq struct {
	LoginName string `json:"login_name"`
	Secret    string `json:"secret"`
}
type registerReq struct {
	LoginName   string `json:"login_name"`
	Secret      string `json:"secret"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Sex         string `json:"sex"`
}
type federatedLoginReq struct {
	IdentityToken string `json:"identity_token"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	PhotoURL      string `json:"photo_url"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type userPart struct {
	ID          uint64 `json:"id"`
	DisplayName string `json:"display_name"`
	RoleFlag    bool   `json:"role_flag"`
	Avatar      string `json:"avatar"`
}
type sessionResp struct {
	Message      string   `json:"message"`
	User         userPart `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

func sessionJSON(s *auth.Session) sessionResp {
	return sessionResp{
		Message: s.Message,
		User: userPart{
			ID:          s.User.ID,
			DisplayName: s.User.DisplayName,
			RoleFlag:    s.User.RoleFlag,
			Avatar:      s.User.Avatar,
		},
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

// Login verifies a login name and secret and returns a fresh token pair.
// A locked account answers 423 with the remaining lock time.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.LoginName == "" || req.Secret == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login_name and secret are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	session, err := h.Service.Login(ctx, req.LoginName, req.Secret)
	if err != nil {
		var locked *auth.AccountLockedError
		var invalid *auth.InvalidCredentialError
		switch {
		case errors.As(err, &locked):
			return c.JSON(http.StatusLocked, echo.Map{
				"error":                  locked.Error(),
				"remaining_time_seconds": locked.RemainingSeconds,
			})
		case errors.As(err, &invalid):
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error":         invalid.Error(),
				"attempts_left": invalid.AttemptsLeft,
			})
		case errors.Is(err, auth.ErrLoginNameNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
	}
	return c.JSON(http.StatusOK, sessionJSON(session))
}

// Register creates a new learner account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Service.Register(ctx, auth.RegisterInput{
		LoginName:   req.LoginName,
		Secret:      req.Secret,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Sex:         req.Sex,
	})
	if err != nil {
		var invalid *auth.ValidationError
		switch {
		case errors.As(err, &invalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid.Error()})
		case errors.Is(err, repository.ErrLoginNameExists),
			errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"user_id": id})
}

// FederatedLogin validates a Google identity assertion and finds or
// creates the matching local account.
func (h *AuthHandler) FederatedLogin(c echo.Context) error {
	var req federatedLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.IdentityToken == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identity_token and email are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	session, err := h.Service.FederatedLogin(ctx, req.IdentityToken, req.Email, req.DisplayName, req.PhotoURL)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailMismatch):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, auth.ErrUpstreamIdentity):
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "google verification failed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "google login failed"})
		}
	}
	return c.JSON(http.StatusOK, sessionJSON(session))
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token is not rotated on this path; reuse of a stale one revokes
// the session entirely.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, err := h.Service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		case errors.Is(err, auth.ErrTokenNotFound), errors.Is(err, auth.ErrTokenReused):
			return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": access.Token})
}

// Me returns the authenticated account's public profile.
func (h *AuthHandler) Me(c echo.Context) error {
	accountID, ok := c.Get(middleware.AccessTokenKey).(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.Service.Store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load account failed"})
	}
	display, _ := h.Service.Cipher.Decrypt(acct.DisplayName)
	return c.JSON(http.StatusOK, userPart{
		ID:          acct.ID,
		DisplayName: display,
		RoleFlag:    acct.RoleFlag,
		Avatar:      acct.AvatarURL.String,
	})
}
