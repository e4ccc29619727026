package app

import (
	"github.com/yungbote/housing-predictor/internal/config"
	"github.com/yungbote/housing-predictor/internal/httpapi/handlers"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	"github.com/yungbote/housing-predictor/internal/serving"
)

type Handlers struct {
	System   *handlers.SystemHandler
	Predict  *handlers.PredictHandler
	Property *handlers.PropertyHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, model *serving.Handle, cl Clients) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		System:  handlers.NewSystemHandler(model),
		Predict: handlers.NewPredictHandler(log, model, cl.Repo, cfg.HTTP.MaxBatchSize),
	}
	if cl.Repo != nil {
		h.Property = handlers.NewPropertyHandler(cl.Repo)
	}
	return h
}
