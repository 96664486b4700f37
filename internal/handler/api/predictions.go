package api

import (
	"errors"
	"net/http"

	"FraudSight/internal/domain/models"
	"FraudSight/internal/features"
	"FraudSight/internal/model"
	"FraudSight/internal/service/stream"
	"FraudSight/internal/usecase"
	xhttp "FraudSight/pkg/http"
	xlogger "FraudSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionsHandler exposes the scoring API over Echo.
type PredictionsHandler struct {
	logger *xlogger.Logger
	scorer *usecase.Scorer
	alerts *stream.Hub // nil when the alert stream is disabled
}

func NewPredictionsHandler(logger *xlogger.Logger, scorer *usecase.Scorer, alerts *stream.Hub) *PredictionsHandler {
	return &PredictionsHandler{logger: logger, scorer: scorer, alerts: alerts}
}

func (h *PredictionsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.POST("/predict", h.Predict)
	e.POST("/predict/batch", h.PredictBatch)
	if h.alerts != nil {
		e.GET("/ws/alerts", h.Alerts)
	}
}

// Root returns the service banner.
func (h *PredictionsHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Fraud Detection API",
		"description": "API para detecção de fraudes usando modelos de ML.",
		"endpoints": map[string]string{
			"health":        "/health",
			"predict":       "/predict",
			"predict_batch": "/predict/batch",
		},
		"model_version": h.scorer.ModelVersion(),
	})
}

// Health reports process liveness only; no dependencies are checked.
func (h *PredictionsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Predict scores a single transaction.
func (h *PredictionsHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.scorer.Score(c.Request().Context(), req.ToRecord())
	if err != nil {
		return h.scoringError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}

// PredictBatch scores multiple transactions, preserving input order.
func (h *PredictionsHandler) PredictBatch(c echo.Context) error {
	req := &models.BatchPredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs := make([]*models.TransactionRecord, 0, len(req.Transactions))
	for i := range req.Transactions {
		recs = append(recs, req.Transactions[i].ToRecord())
	}

	results, err := h.scorer.ScoreBatch(c.Request().Context(), recs)
	if err != nil {
		return h.scoringError(c, err)
	}

	return c.JSON(http.StatusOK, &models.BatchPredictionResult{
		Results: results,
		Total:   len(results),
	})
}

// Alerts upgrades to a WebSocket stream of fraud-classified scorings.
func (h *PredictionsHandler) Alerts(c echo.Context) error {
	return h.alerts.ServeWS(c.Response(), c.Request())
}

// scoringError maps domain failures to the HTTP taxonomy: encoder schema
// failures are user-correctable (400), shape mismatches mean deployment
// version skew (500).
func (h *PredictionsHandler) scoringError(c echo.Context, err error) error {
	index := -1
	var itemErr *usecase.BatchItemError
	if errors.As(err, &itemErr) {
		index = itemErr.Index
	}

	var schemaErr *features.SchemaError
	if errors.As(err, &schemaErr) {
		appErr := xhttp.SchemaError(schemaErr.Field, schemaErr.Reason).WithError(err)
		if index >= 0 {
			appErr = appErr.WithParam("index", index)
		}
		return xhttp.AppErrorResponse(c, appErr)
	}

	if errors.Is(err, model.ErrShapeMismatch) {
		h.logger.Error("inference shape mismatch", xlogger.Error(err),
			xlogger.String("model_version", h.scorer.ModelVersion()))
		return xhttp.AppErrorResponse(c,
			xhttp.InferenceError("model rejected feature vector").WithError(err))
	}

	h.logger.Error("prediction failed", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
