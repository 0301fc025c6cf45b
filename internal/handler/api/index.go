package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	xhttp "UniPredict/pkg/http"
)

// IndexHandler lists the public endpoints and answers liveness probes.
type IndexHandler struct {
	metricsPath string
}

func NewIndexHandler(metricsPath string) *IndexHandler {
	return &IndexHandler{metricsPath: metricsPath}
}

func (h *IndexHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/health", h.Health)
}

func (h *IndexHandler) Index(c echo.Context) error {
	endpoints := map[string]string{
		"Admission Prediction": "/predict",
		"Universities":         "/api/universities",
		"Content Sources":      "/api/content",
		"Content":              "/api/content/:id",
		"Health":               "/health",
	}
	if h.metricsPath != "" {
		endpoints["Metrics"] = h.metricsPath
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"endpoints": endpoints,
		"note":      "All endpoints return JSON. Use /predict for admission predictions and /api/content/:id for fee structures, scholarships and events.",
	})
}

func (h *IndexHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
