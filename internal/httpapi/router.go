// Package httpapi wires the prediction API onto a gin engine.
package httpapi

import (
	"github.com/gin-gonic/gin"
	ginzap "github.com/gin-contrib/zap"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/housing-predictor/internal/httpapi/handlers"
	httpMW "github.com/yungbote/housing-predictor/internal/httpapi/middleware"
	"github.com/yungbote/housing-predictor/internal/observability"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	MaxBody     int64

	SystemHandler   *httpH.SystemHandler
	PredictHandler  *httpH.PredictHandler
	PropertyHandler *httpH.PropertyHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	r := gin.New()
	r.Use(ginzap.RecoveryWithZap(log.SugaredLogger.Desugar(), true))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxBody))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.SystemHandler != nil {
		r.GET("/", cfg.SystemHandler.Root)
		r.GET("/health", cfg.SystemHandler.Health)
		r.GET("/model-info", cfg.SystemHandler.ModelInfo)
		r.GET("/features", cfg.SystemHandler.Features)
	}

	if cfg.PredictHandler != nil {
		r.POST("/predict", cfg.PredictHandler.Predict)
		r.POST("/predict-batch", cfg.PredictHandler.PredictBatch)
	}

	// Stored properties (only with a database)
	if cfg.PropertyHandler != nil {
		props := r.Group("/properties")
		props.GET("", cfg.PropertyHandler.List)
		props.GET("/:id", cfg.PropertyHandler.Get)
		props.DELETE("/:id", cfg.PropertyHandler.Delete)
	}

	return r
}
