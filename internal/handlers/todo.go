package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biey-root/serverless-rest-api/internal/auth"
	"github.com/biey-root/serverless-rest-api/internal/httperr"
	"github.com/biey-root/serverless-rest-api/internal/service"
	"github.com/biey-root/serverless-rest-api/internal/store"
	"github.com/biey-root/serverless-rest-api/internal/validate"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "title (required), dueDate (optional)"
// @Success      201   {object}  domain.Todo
// @Failure      400   {object}  httperr.Body
// @Security     BearerAuth
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	fields, verr := readBody(c)
	if verr != nil {
		httperr.Write(c, http.StatusBadRequest, verr.Code, verr.Message)
		return
	}

	title, verr := validate.Title(fields["title"], true)
	if verr != nil {
		httperr.Write(c, http.StatusBadRequest, verr.Code, verr.Message)
		return
	}
	dueDate, verr := validate.DueDate(fields["dueDate"])
	if verr != nil {
		httperr.Write(c, http.StatusBadRequest, verr.Code, verr.Message)
		return
	}

	principal, _ := auth.PrincipalFromContext(c)
	t, err := h.svc.Create(c.Request.Context(), store.CreateFields{
		Title:         title,
		DueDate:       dueDate,
		OwnerSub:      principal.Sub,
		OwnerUsername: principal.Username,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "todo created",
		slog.String("requestId", RequestIDFromContext(c)),
		slog.String("op", "create"),
		slog.String("id", t.ID),
		slog.String("by", principal.Sub),
	)
	c.JSON(http.StatusCreated, t)
}

// GetByID godoc
// @Summary      Get a todo by id
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo id"
// @Success      200  {object}  domain.Todo
// @Failure      404  {object}  httperr.Body
// @Security     BearerAuth
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// List godoc
// @Summary      List todos, paginated
// @Tags         todos
// @Produce      json
// @Param        limit   query     int     false  "Page size, 1-100 (default 20)"
// @Param        cursor  query     string  false  "Opaque cursor from a previous page"
// @Success      200     {object}  store.Page
// @Failure      400     {object}  httperr.Body
// @Security     BearerAuth
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	limit, verr := validate.PageLimit(c.Query("limit"))
	if verr != nil {
		httperr.Write(c, http.StatusBadRequest, verr.Code, verr.Message)
		return
	}
	cursor := c.Query("cursor")

	page, err := h.svc.List(c.Request.Context(), limit, cursor)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	nextCursor := ""
	if page.NextCursor != nil {
		nextCursor = *page.NextCursor
	}
	slog.InfoContext(c.Request.Context(), "todos listed",
		slog.String("requestId", RequestIDFromContext(c)),
		slog.String("op", "list"),
		slog.Int("count", len(page.Items)),
		slog.String("nextCursor", nextCursor),
	)
	c.JSON(http.StatusOK, page)
}

// Update godoc
// @Summary      Partially update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      string  true  "Todo id"
// @Param        body  body      object  true  "title and/or dueDate"
// @Success      200   {object}  domain.Todo
// @Failure      400   {object}  httperr.Body
// @Failure      404   {object}  httperr.Body
// @Security     BearerAuth
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	fields, verr := readBody(c)
	if verr != nil {
		httperr.Write(c, http.StatusBadRequest, verr.Code, verr.Message)
		return
	}

	var patch store.Patch
	if raw, ok := fields["title"]; ok {
		title, verr := validate.Title(raw, false)
		if verr != nil {
			httperr.Write(c, http.StatusBadRequest, verr.Code, verr.Message)
			return
		}
		patch.Title = &title
	}
	if raw, ok := fields["dueDate"]; ok {
		dueDate, verr := validate.DueDate(raw)
		if verr != nil {
			httperr.Write(c, http.StatusBadRequest, verr.Code, verr.Message)
			return
		}
		patch.DueDate = dueDate
		patch.DueDateSet = true
	}

	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(c)
	slog.InfoContext(c.Request.Context(), "todo updated",
		slog.String("requestId", RequestIDFromContext(c)),
		slog.String("op", "update"),
		slog.String("id", t.ID),
		slog.String("by", principal.Sub),
	)
	c.JSON(http.StatusOK, t)
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Param        id   path  string  true  "Todo id"
// @Success      204
// @Failure      404  {object}  httperr.Body
// @Security     BearerAuth
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(c)
	slog.InfoContext(c.Request.Context(), "todo deleted",
		slog.String("requestId", RequestIDFromContext(c)),
		slog.String("op", "delete"),
		slog.String("id", id),
		slog.String("by", principal.Sub),
	)
	c.Status(http.StatusNoContent)
}

// readBody parses and validates the JSON request body into a field map.
func readBody(c *gin.Context) (map[string]json.RawMessage, *validate.Error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, &validate.Error{Code: "INVALID_JSON", Message: "Request body is not valid JSON"}
	}
	return validate.ParseBody(c.GetHeader("Content-Type"), body)
}
