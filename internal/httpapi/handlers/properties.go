package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/housing-predictor/internal/httpapi/response"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/store"
)

type PropertyHandler struct {
	repo store.PropertyRepo
}

func NewPropertyHandler(repo store.PropertyRepo) *PropertyHandler {
	return &PropertyHandler{repo: repo}
}

// GET /properties?limit=&offset=
func (h *PropertyHandler) List(c *gin.Context) {
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	total, err := h.repo.Count(c.Request.Context(), nil)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	items, err := h.repo.List(c.Request.Context(), nil, limit, offset)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"total": total, "items": items})
}

// GET /properties/:id
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.repo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{id})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if len(rows) == 0 {
		response.RespondError(c, fmt.Errorf("property %s: %w", id, pkgerrors.ErrNotFound))
		return
	}
	response.RespondOK(c, rows[0])
}

// DELETE /properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.repo.DeleteByIDs(c.Request.Context(), nil, []uuid.UUID{id}); err != nil {
		response.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, response.New(http.StatusUnprocessableEntity, "validation_error", "id", fmt.Errorf("id must be a uuid"))
	}
	return id, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, response.New(http.StatusUnprocessableEntity, "validation_error", key, fmt.Errorf("%s must be a non-negative integer", key))
	}
	return n, nil
}
