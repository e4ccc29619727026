package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/httpapi/response"
	"github.com/yungbote/housing-predictor/internal/pipeline/features"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	"github.com/yungbote/housing-predictor/internal/serving"
	"github.com/yungbote/housing-predictor/internal/store"
)

type PredictionResponse struct {
	serving.Prediction
	FeaturesUsed housing.Record `json:"features_used"`
}

type BatchItem struct {
	serving.Prediction
	Features housing.Record `json:"features"`
}

type BatchResponse struct {
	Count       int         `json:"count"`
	Predictions []BatchItem `json:"predictions"`
}

type PredictHandler struct {
	log      *logger.Logger
	model    *serving.Handle
	repo     store.PropertyRepo
	maxBatch int
}

// NewPredictHandler returns a handler for /predict and /predict-batch. repo may be nil,
// in which case requests are not stored.
func NewPredictHandler(log *logger.Logger, model *serving.Handle, repo store.PropertyRepo, maxBatch int) *PredictHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &PredictHandler{log: log.With("handler", "PredictHandler"), model: model, repo: repo, maxBatch: maxBatch}
}

// POST /predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var in HouseFeatures
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	rec := in.Record()
	preds, err := h.model.Predict(c.Request.Context(), []housing.Record{rec})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	h.persist(c.Request.Context(), []housing.Record{rec}, preds)
	response.RespondOK(c, PredictionResponse{Prediction: preds[0], FeaturesUsed: rec})
}

// POST /predict-batch
func (h *PredictHandler) PredictBatch(c *gin.Context) {
	var in []HouseFeatures
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	if len(in) == 0 {
		response.RespondError(c, response.New(http.StatusUnprocessableEntity, "validation_error", "", fmt.Errorf("batch is empty")))
		return
	}
	if h.maxBatch > 0 && len(in) > h.maxBatch {
		response.RespondError(c, response.New(http.StatusUnprocessableEntity, "batch_too_large", "",
			fmt.Errorf("batch of %d exceeds the limit of %d", len(in), h.maxBatch)))
		return
	}
	records := make([]housing.Record, len(in))
	for i, f := range in {
		records[i] = f.Record()
	}
	preds, err := h.model.Predict(c.Request.Context(), records)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	h.persist(c.Request.Context(), records, preds)

	out := BatchResponse{Count: len(preds), Predictions: make([]BatchItem, len(preds))}
	for i, p := range preds {
		out.Predictions[i] = BatchItem{Prediction: p, Features: records[i]}
	}
	response.RespondOK(c, out)
}

// persist stores the request rows with their predictions. Failures are
// logged; they never fail the request.
func (h *PredictHandler) persist(ctx context.Context, records []housing.Record, preds []serving.Prediction) {
	if h.repo == nil {
		return
	}
	version := ""
	if l, err := h.model.Get(ctx); err == nil {
		version = l.Version
	}
	rows := make([]*store.PropertyRecord, 0, len(records))
	for i, rec := range records {
		eng, err := features.AugmentRecord(rec)
		if err != nil {
			h.log.Warn("skip storing prediction", "error", err)
			continue
		}
		v := preds[i].Value
		row, err := store.NewPropertyRecord(store.SourceAPI, rec, eng, &v)
		if err != nil {
			h.log.Warn("skip storing prediction", "error", err)
			continue
		}
		row.ModelVersion = version
		rows = append(rows, row)
	}
	if _, err := h.repo.Create(ctx, nil, rows); err != nil {
		h.log.Error("store predictions failed", "rows", len(rows), "error", err)
	}
}
