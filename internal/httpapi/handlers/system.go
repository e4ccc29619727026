package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/httpapi/response"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/serving"
)

const APIVersion = "1.0.0"

type SystemHandler struct {
	model *serving.Handle
	now   func() time.Time
}

func NewSystemHandler(model *serving.Handle) *SystemHandler {
	return &SystemHandler{model: model, now: time.Now}
}

// GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Real Estate Price Predictor API",
		"version": APIVersion,
		"metrics": "/metrics",
	})
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}

// GET /health. A health check also triggers the first model load.
func (h *SystemHandler) Health(c *gin.Context) {
	_, err := h.model.Get(c.Request.Context())
	out := HealthResponse{Status: "healthy", ModelLoaded: err == nil, Timestamp: h.now().Format(time.RFC3339)}
	if err != nil {
		out.Status = "degraded"
	}
	c.JSON(http.StatusOK, out)
}

type ModelInfo struct {
	ModelName string             `json:"model_name"`
	ModelType string             `json:"model_type"`
	Version   string             `json:"version"`
	Metrics   map[string]float64 `json:"metrics"`
	NFeatures int                `json:"n_features"`
	Features  []string           `json:"features"`
}

// GET /model-info
func (h *SystemHandler) ModelInfo(c *gin.Context) {
	meta, err := h.model.Metadata()
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.RespondError(c, response.New(http.StatusNotFound, "not_found", "", errors.New("model metadata not found")))
			return
		}
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, ModelInfo{
		ModelName: meta.ModelName,
		ModelType: meta.ModelType,
		Version:   meta.Version(),
		Metrics:   meta.Metrics,
		NFeatures: meta.NFeatures,
		Features:  meta.Features,
	})
}

// GET /features lists the raw inputs and engineered columns with descriptions.
func (h *SystemHandler) Features(c *gin.Context) {
	desc := housing.Descriptions()
	entry := func(names []string) []gin.H {
		out := make([]gin.H, 0, len(names))
		for _, n := range names {
			out = append(out, gin.H{"name": n, "description": desc[n]})
		}
		return out
	}
	c.JSON(http.StatusOK, gin.H{
		"raw":        entry(housing.RawColumns()),
		"engineered": entry(housing.EngineeredColumns()),
		"target":     gin.H{"name": housing.Target, "description": desc[housing.Target]},
	})
}
