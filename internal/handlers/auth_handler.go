package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/middleware"
	"bukukas/internal/models"
	"bukukas/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	tokens       *middleware.TokenManager
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, tokens *middleware.TokenManager, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens, auditService: auditService}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginData is returned by a successful login.
type LoginData struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate with email and password and receive a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} Response{data=LoginData} "User authenticated and token generated"
// @Failure     401 {object} middleware.ErrorResponse "Invalid credentials"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	h.auditService.Log(user.ID, "LOGIN", "user", user.ID, c.ClientIP(), nil)
	respond(c, http.StatusOK, LoginData{User: user, Token: token}, "Login successful")
}

// Logout revokes every token issued to the caller
// @Summary     Logout user
// @Description Invalidate all outstanding tokens of the authenticated user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse
// @Failure     401 {object} middleware.ErrorResponse "Unauthorized"
// @Router      /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.RevokeTokens(actor.ID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "LOGOUT", "user", actor.ID, c.ClientIP(), nil)
	respondMessage(c, "Logged out successfully")
}

// User returns the authenticated user
// @Summary     Current user
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response{data=models.User}
// @Failure     401 {object} middleware.ErrorResponse "Unauthorized"
// @Router      /user [get]
func (h *AuthHandler) User(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(actor.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, user, "")
}
