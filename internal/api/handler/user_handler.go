package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackdesk/iam-service/internal/api/metrics"
	"github.com/stackdesk/iam-service/internal/api/middleware"
	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /users?search=term.
//
// @Summary      List users with their roles
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Substring match on first/last name"
// @Success      200     {array}   userListItemResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return err
	}

	out := make([]userListItemResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserListItem(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user profile with its role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  getUserResponse
// @Failure      404  {object}  messageResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGetUserResponse(user))
}

// Create handles POST /users — administrative creation with explicit role.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req addUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    req.RoleID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// Update handles PUT /users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  getUserResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Update(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    req.RoleID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toGetUserResponse(user))
}

// Delete handles DELETE /users/:id. The acting user comes from the
// authentication middleware; deleting oneself is rejected.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), actor.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted successfully"})
}

// BulkUpdateSame handles PUT /users/bulk/same — one patch for all targets.
//
// @Summary      Bulk-update users with identical data
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkSameRequest  true  "Target ids and shared patch"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Router       /users/bulk/same [put]
func (h *UserHandler) BulkUpdateSame(c echo.Context) error {
	var req bulkSameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.users.BulkUpdateSame(c.Request().Context(), req.IDs, ports.BulkUserData{
		Password:  req.Data.Password,
		FirstName: req.Data.FirstName,
		LastName:  req.Data.LastName,
		RoleID:    req.Data.RoleID,
	})
	if err != nil {
		return err
	}

	metrics.BulkUsersUpdatedTotal.WithLabelValues("same").Add(float64(len(req.IDs)))
	return c.JSON(http.StatusOK, messageResponse{Message: "users updated"})
}

// BulkUpdateEach handles PUT /users/bulk/different — per-row patches.
//
// @Summary      Bulk-update users with per-user data
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkDifferentRequest  true  "Per-user patches"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Router       /users/bulk/different [put]
func (h *UserHandler) BulkUpdateEach(c echo.Context) error {
	var req bulkDifferentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updates := make([]ports.BulkUserEntry, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, ports.BulkUserEntry{
			ID: u.ID,
			Data: ports.BulkUserData{
				Password:  u.Data.Password,
				FirstName: u.Data.FirstName,
				LastName:  u.Data.LastName,
				RoleID:    u.Data.RoleID,
			},
		})
	}

	if err := h.users.BulkUpdateEach(c.Request().Context(), updates); err != nil {
		return err
	}

	metrics.BulkUsersUpdatedTotal.WithLabelValues("per_user").Add(float64(len(updates)))
	return c.JSON(http.StatusOK, messageResponse{Message: "users updated"})
}

// CheckAccess handles GET /users/:id/access/:module. Reports raw module
// membership in the user's role, regardless of the default-role rule applied
// by the request authorization gate.
//
// @Summary      Check whether a user's role grants a module
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "User id"
// @Param        module  path      string  true  "Access module name"
// @Success      200     {object}  checkAccessResponse
// @Failure      404     {object}  messageResponse
// @Router       /users/{id}/access/{module} [get]
func (h *UserHandler) CheckAccess(c echo.Context) error {
	hasAccess, err := h.users.CheckAccess(
		c.Request().Context(),
		c.Param("id"),
		domain.AccessModule(c.Param("module")),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkAccessResponse{HasAccess: hasAccess})
}
