package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
	"bukukas/internal/services"
)

const profilePictureField = "profile_picture"

// UserHandler handles user administration requests.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// UserRequest represents the create and update payload, sent as JSON or as
// multipart form data when a profile_picture file is attached.
type UserRequest struct {
	Name              string      `json:"name" form:"name" binding:"required,max=255"`
	Email             string      `json:"email" form:"email" binding:"required,email,max=255"`
	Password          string      `json:"password" form:"password" binding:"omitempty,min=8,max=128"`
	Role              models.Role `json:"role" form:"role" binding:"omitempty,role"`
	BankName          string      `json:"bank_name" form:"bank_name" binding:"max=255"`
	AccountNumber     string      `json:"account_number" form:"account_number" binding:"max=255"`
	AccountHolderName string      `json:"account_holder_name" form:"account_holder_name" binding:"max=255"`
}

func (r *UserRequest) input() services.UserInput {
	return services.UserInput{
		Name:              r.Name,
		Email:             r.Email,
		Password:          r.Password,
		Role:              r.Role,
		BankName:          r.BankName,
		AccountNumber:     r.AccountNumber,
		AccountHolderName: r.AccountHolderName,
	}
}

// ListUsers lists users, optionally by role
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       role query string false "admin, finance, user or hayabusa"
// @Success     200 {object} Response{data=[]models.User}
// @Failure     403 {object} middleware.ErrorResponse "Forbidden"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var role *models.Role
	if raw := c.Query("role"); raw != "" {
		r := models.Role(raw)
		if !r.Valid() {
			respondWithError(c, apperrors.Field("role", "The selected role is invalid."))
			return
		}
		role = &r
	}

	users, err := h.userService.ListUsers(role)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, users, "")
}

// GetUser returns one user
// @Summary     Get a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} Response{data=models.User}
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Router      /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respond(c, http.StatusOK, user, "")
}

// CreateUser creates a user
// @Summary     Create a user
// @Tags        users
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       request body UserRequest true "User data"
// @Param       profile_picture formData file false "jpeg, png or gif up to 2 MiB"
// @Success     201 {object} Response{data=models.User}
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UserRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	if req.Password == "" {
		respondWithError(c, apperrors.Field("password", "The password field is required."))
		return
	}

	var user *models.User
	err = withPicture(c, func(picture *services.Upload) error {
		var err error
		user, err = h.userService.CreateUser(req.input(), picture)
		return err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "CREATE_USER", "user", user.ID, c.ClientIP(),
		map[string]any{"email": user.Email, "role": user.Role})
	respond(c, http.StatusCreated, user, "User created successfully")
}

// UpdateUser updates a user
// @Summary     Update a user
// @Description An empty password keeps the current one. Admins cannot change their own role.
// @Tags        users
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Param       request body UserRequest true "User data"
// @Param       profile_picture formData file false "jpeg, png or gif up to 2 MiB"
// @Success     200 {object} Response{data=models.User}
// @Failure     400 {object} middleware.ErrorResponse "Own role change"
// @Failure     404 {object} middleware.ErrorResponse "Not found"
// @Failure     422 {object} middleware.ErrorResponse "Invalid input"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UserRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	var user *models.User
	err = withPicture(c, func(picture *services.Upload) error {
		var err error
		user, err = h.userService.UpdateUser(actor, c.Param("id"), req.input(), picture)
		return err
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.ID, "UPDATE_USER", "user", user.ID, c.ClientIP(),
		map[string]any{"email": user.Email, "role": user.Role})
	respond(c, http.StatusOK, user, "User updated successfully")
}

// withPicture opens the optional profile_picture upload of a multipart
// request for the duration of fn.
func withPicture(c *gin.Context, fn func(*services.Upload) error) error {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return fn(nil)
	}

	fh, err := c.FormFile(profilePictureField)
	if errors.Is(err, http.ErrMissingFile) {
		return fn(nil)
	}
	if err != nil {
		return apperrors.Field(profilePictureField, "The profile picture failed to upload.")
	}

	f, err := fh.Open()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer func() { _ = f.Close() }()

	return fn(&services.Upload{Filename: fh.Filename, Size: fh.Size, Content: f})
}
