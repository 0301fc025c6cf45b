package api

import (
	"github.com/labstack/echo/v4"

	"UniPredict/internal/domain/models"
	"UniPredict/internal/usecase"
	xhttp "UniPredict/pkg/http"
	xlogger "UniPredict/pkg/logger"
)

// PredictHandler serves admission predictions and the university catalog.
type PredictHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.AdmissionPredictor
}

func NewPredictHandler(logger *xlogger.Logger, predictor *usecase.AdmissionPredictor) *PredictHandler {
	return &PredictHandler{logger: logger, predictor: predictor}
}

func (h *PredictHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/predict", h.Predict)
	g := e.Group("/api")
	g.POST("/predict", h.Predict)
	g.GET("/universities", h.Universities)
}

func (h *PredictHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.predictor.Predict(c.Request().Context(), req.ToInput())
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictHandler) Universities(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"target_year":  h.predictor.TargetYear(),
		"universities": h.predictor.Universities(),
	})
}
