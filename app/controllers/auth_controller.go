package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/dabba/app/resources"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/middleware"
	"github.com/shashiranjanraj/dabba/pkg/session"
)

// AuthController handles registration, login/logout and the profile.
// Browser clients get a cookie session; API clients can request a JWT.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register handles POST /register.
func (h *AuthController) Register(c *ctx.Context) {
	var input services.RegisterInput
	if !c.BindJSON(&input) {
		return
	}
	if input.Password != input.PasswordConfirmation {
		c.ValidationError(map[string]string{"password_confirmation": "Passwords do not match"})
		return
	}

	user, err := h.auth.Register(input)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not create the account")
		return
	}

	h.establishSession(c, user.ID, user.Role)
	c.Created(resources.User(user))
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /login for browser clients.
func (h *AuthController) Login(c *ctx.Context) {
	var input loginInput
	if !c.BindJSON(&input) {
		return
	}

	user, err := h.auth.Login(input.Email, input.Password)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Login failed")
		return
	}

	h.establishSession(c, user.ID, user.Role)
	c.Success(resources.User(user))
}

// Token handles POST /api/token: same credentials, JWT instead of a cookie.
func (h *AuthController) Token(c *ctx.Context) {
	var input loginInput
	if !c.BindJSON(&input) {
		return
	}

	token, err := h.auth.IssueToken(input.Email, input.Password)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Login failed")
		return
	}
	c.Success(map[string]string{"token": token})
}

// Logout handles POST /logout. The cart lives in the session, so it goes too.
func (h *AuthController) Logout(c *ctx.Context) {
	sess := session.FromCtx(c.R)
	sess.Invalidate()
	if err := sess.Save(c.W); err != nil {
		c.Error(http.StatusInternalServerError, "Logout failed")
		return
	}
	c.Success(map[string]string{"message": "Logged out"})
}

// Profile handles GET /profile.
func (h *AuthController) Profile(c *ctx.Context) {
	user, err := h.auth.Profile(middleware.UserID(c.Context()))
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not load the profile")
		return
	}
	c.Success(resources.User(user))
}

// UpdateProfile handles POST /profile.
func (h *AuthController) UpdateProfile(c *ctx.Context) {
	var input services.ProfileInput
	if !c.BindJSON(&input) {
		return
	}

	user, err := h.auth.UpdateProfile(middleware.UserID(c.Context()), input)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not update the profile")
		return
	}
	c.Success(resources.User(user))
}

func (h *AuthController) establishSession(c *ctx.Context, userID uint, role string) {
	sess := session.FromCtx(c.R)
	sess.Set("user_id", userID)
	sess.Set("role", role)
	if err := sess.Save(c.W); err != nil {
		logger.Warn("session not persisted after login", "user_id", userID, "error", err)
	}
}
