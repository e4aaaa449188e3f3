package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/domain/services/container"
	"github.com/osmelmr/nodosiot-server/internal/error/code"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
)

// InterfaceUserController defines the user controller interface
type InterfaceUserController interface {
	GetUsers()
	GetUser()
	CreateUser()
	UpdateUser()
	DeleteUser()
}

// UserController handles platform account requests
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController creates a new user controller
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateUserRequest represents a user creation request
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email" example:"farmer@nodosiot.local"`
	Password    string `json:"password" binding:"required,min=6" example:"secret123"`
	Role        string `json:"role" example:"farmer"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UpdateUserRequest represents a partial user update. Pointer fields
// distinguish "absent" from zero values.
type UpdateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Role        *string `json:"role"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// HandleUserFunc returns a Gin handler dispatching user requests
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getUser":
			controller.GetUser()
		case "createUser":
			controller.CreateUser()
		case "updateUser":
			controller.UpdateUser()
		case "deleteUser":
			controller.DeleteUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// userService returns the user service from the container
func (c *UserController) userService() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

// can consults the permission table for a user-entity action. User records
// are admin territory; ownership never applies.
func (c *UserController) can(action services.Action) bool {
	p, ok := currentPrincipal(c.Ctx)
	if !ok {
		return false
	}
	perm := c.Container.GetService("permission").(services.InterfacePermissionService)
	if !perm.Can(p, services.EntityUser, action, 0) {
		response.Forbidden(c.Ctx)
		return false
	}
	return true
}

// GetUsers lists all user accounts
// @Summary      List users
// @Description  List every active user account (admin only)
// @Tags         User
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      403  {object}  ErrorResponse
// @Router       /users [get]
// @Security     BearerAuth
func (c *UserController) GetUsers() {
	if !c.can(services.ActionRead) {
		return
	}

	users, err := c.userService().GetAllUsers()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "listing users: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, users)
}

// GetUser fetches one user account
// @Summary      Get user
// @Description  Get a user account by ID (admin only)
// @Tags         User
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (c *UserController) GetUser() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	user, err := c.userService().GetUserByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrUserNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching user: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionRead) {
		return
	}

	response.Success(c.Ctx, user)
}

// CreateUser registers a new user account
// @Summary      Create user
// @Description  Register a new user account (admin only)
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User attributes"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users [post]
// @Security     BearerAuth
func (c *UserController) CreateUser() {
	if !c.can(services.ActionCreate) {
		return
	}

	var req CreateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	if req.Role != "" && !models.IsValidRole(req.Role) {
		response.ValidationError(c.Ctx, map[string]string{"role": "unknown role"})
		return
	}

	user := &models.User{
		Email:       req.Email,
		Role:        models.UserRole(req.Role),
		IsSuperuser: req.IsSuperuser,
	}

	if err := c.userService().CreateUser(user, req.Password); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.Fail(c.Ctx, code.ErrUserAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "creating user: "+err.Error(), nil)
		return
	}

	response.Created(c.Ctx, user)
}

// UpdateUser applies a partial update to a user account
// @Summary      Update user
// @Description  Partially update a user account (admin only)
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "Changed fields"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [patch]
// @Security     BearerAuth
func (c *UserController) UpdateUser() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	if _, err := c.userService().GetUserByID(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrUserNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching user: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionUpdate) {
		return
	}

	var req UpdateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "invalid request parameters", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		updates["password"] = *req.Password
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			response.ValidationError(c.Ctx, map[string]string{"role": "unknown role"})
			return
		}
		updates["role"] = *req.Role
	}
	if req.IsSuperuser != nil {
		updates["is_superuser"] = *req.IsSuperuser
	}

	user, err := c.userService().UpdateUser(id, updates)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.Fail(c.Ctx, code.ErrUserAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "updating user: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, user)
}

// DeleteUser soft-deletes a user account and its owned nodes
// @Summary      Delete user
// @Description  Soft-delete a user and every node it owns (admin only)
// @Tags         User
// @Produce      json
// @Param        id path int true "User ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
// @Security     BearerAuth
func (c *UserController) DeleteUser() {
	id, ok := parseIDParam(c.Ctx)
	if !ok {
		return
	}

	if _, err := c.userService().GetUserByID(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(c.Ctx, code.ErrUserNotFound)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "fetching user: "+err.Error(), nil)
		return
	}

	if !c.can(services.ActionDelete) {
		return
	}

	if err := c.userService().DeleteUser(id); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "deleting user: "+err.Error(), nil)
		return
	}

	response.NoContent(c.Ctx)
}
