package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"userapp/internal/adapter/http/helper"
	"userapp/internal/core/apperror"
	"userapp/internal/core/domain"
	"userapp/internal/core/model/request"
	"userapp/internal/core/model/response"
	"userapp/internal/core/port"
	"userapp/internal/core/query"
	"userapp/internal/core/telemetry"
	"userapp/internal/core/util"
)

const QueryWarningsHeader = "X-Query-Warnings"

type UserHandler struct {
	svc       port.UserService
	validator port.Validator
	responder *helper.Responder
	metrics   *telemetry.AppMetrics
}

func NewUserHandler(svc port.UserService, validator port.Validator, responder *helper.Responder, metrics *telemetry.AppMetrics) *UserHandler {
	return &UserHandler{
		svc:       svc,
		validator: validator,
		responder: responder,
		metrics:   metrics,
	}
}

// GetUsers godoc
// @Summary      List users
// @Description  One page of users, optionally filtered by a search term and ordered by an allow-listed column.
// @Tags         users
// @Produce      json
// @Param        limit          query  int     false  "page size (default 5)"
// @Param        pageNumber     query  int     false  "1-based page number (default 1)"
// @Param        orderByKey     query  string  false  "userName, email, phoneNumber, createdAt, updatedAt or id"
// @Param        orderByMethod  query  string  false  "ASC or DESC"
// @Param        search         query  string  false  "case-insensitive substring"
// @Success      200  {object}  response.UserList
// @Router       /api/v1/users [get]
func (h *UserHandler) GetUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var params query.Params
	_ = c.ShouldBindQuery(&params)

	pageQuery, warnings := query.BuildQuery(params, domain.SearchableColumns, domain.SortableColumns)

	if len(warnings) > 0 {
		messages := make([]string, 0, len(warnings))
		for _, warning := range warnings {
			messages = append(messages, warning.String())

			if h.metrics != nil {
				h.metrics.RecordQueryWarning(ctx, warning.Param)
			}
		}

		slog.WarnContext(ctx, "Ignoring list parameters", "warnings", messages)
		c.Header(QueryWarningsHeader, strings.Join(messages, "; "))
	}

	page, err := h.svc.FindAllWithQuery(ctx, pageQuery)
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewUserList(page))
}

// GetUserByID godoc
// @Summary  Get a user
// @Tags     users
// @Produce  json
// @Param    id   path      string  true  "user id (UUID)"
// @Success  200  {object}  response.UserDetail
// @Failure  404  {object}  response.ErrorResponse
// @Router   /api/v1/users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	user, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewUserDetail(user))
}

// CreateUser godoc
// @Summary  Create a user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    user  body      request.UserCreateRequest  true  "new user"
// @Success  201   {object}  response.UserDetail
// @Failure  400   {object}  response.ErrorResponse
// @Failure  422   {object}  response.ErrorResponse
// @Router   /api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.UserCreateRequest](c)
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	if err := h.validator.ValidateStruct(ctx, params); err != nil {
		h.responder.SendError(c, err)
		return
	}

	user, err := h.svc.Create(ctx, params.ToEntity())
	if err != nil {
		slog.ErrorContext(ctx, "Error creating user", "error", err)
		h.responder.SendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, response.NewUserDetail(user))
}

// UpdateUser godoc
// @Summary      Update a user
// @Description  Overwrites every field. The body id must match the path id.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "user id (UUID)"
// @Param        user  body      request.UserUpdateRequest  true  "user fields"
// @Success      200   {object}  response.UserDetail
// @Failure      404   {object}  response.ErrorResponse
// @Failure      409   {object}  response.ErrorResponse
// @Failure      422   {object}  response.ErrorResponse
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := pathID(c)
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	params, err := util.ParamsToMap[request.UserUpdateRequest](c)
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	if params.SelfID() != id {
		slog.WarnContext(ctx, "Request conflict with id", "id", id, "body_id", params.ID)
		h.responder.SendError(c, apperror.Conflict("body id does not match the path id"))
		return
	}

	if err := h.validator.ValidateStruct(ctx, params); err != nil {
		h.responder.SendError(c, err)
		return
	}

	user, err := h.svc.Update(ctx, params.ToEntity())
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewUserDetail(user))
}

// DeleteUser godoc
// @Summary  Delete a user
// @Tags     users
// @Produce  json
// @Param    id   path      string  true  "user id (UUID)"
// @Success  200  {object}  response.MessageResponse
// @Failure  404  {object}  response.ErrorResponse
// @Router   /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.responder.SendError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.responder.SendError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.MessageResponse{Message: "User deleted successfully"})
}

// pathID rejects ids that are not UUIDs as NotFound: no such user can exist.
func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("user " + c.Param("id") + " not found")
	}

	return id, nil
}
