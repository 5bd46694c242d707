package controllers

import (
	"log/slog"
	"net/http"

	"meetingscheduler/internal/delivery/http/helpers"
	"meetingscheduler/internal/domain"
)

// DirectoryController serves the read-only organization directory used to
// build booking forms: the eligible participant pool and the department list.
type DirectoryController struct {
	Logger      *slog.Logger
	Users       domain.UserRepository
	Departments domain.DepartmentRepository
}

func NewDirectoryController(logger *slog.Logger, users domain.UserRepository, departments domain.DepartmentRepository) *DirectoryController {
	return &DirectoryController{
		Logger:      logger,
		Users:       users,
		Departments: departments,
	}
}

// ListUsersSuccessResponse is the success response envelope for GET /users (200).
type ListUsersSuccessResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListUsers godoc
// @Summary List users eligible as meeting participants
// @Description Returns all non-admin users ordered by name. Admin accounts never appear in the participant pool.
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListUsersSuccessResponse "data is an array of users"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [get]
func (c *DirectoryController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Users.ListEligible(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// ListDepartmentsSuccessResponse is the success response envelope for GET /departments (200).
type ListDepartmentsSuccessResponse struct {
	Data  []*domain.Department `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListDepartments godoc
// @Summary List departments
// @Description Returns all departments ordered by name.
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListDepartmentsSuccessResponse "data is an array of departments"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /departments [get]
func (c *DirectoryController) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := c.Departments.List(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if departments == nil {
		departments = []*domain.Department{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, departments)
}
