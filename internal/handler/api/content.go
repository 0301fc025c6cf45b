package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	domrepo "UniPredict/internal/domain/repository"
	"UniPredict/internal/usecase"
	xhttp "UniPredict/pkg/http"
	xlogger "UniPredict/pkg/logger"
)

// ContentHandler serves scraped fee, scholarship and event pages.
type ContentHandler struct {
	logger    *xlogger.Logger
	collector *usecase.ContentCollector
}

func NewContentHandler(logger *xlogger.Logger, collector *usecase.ContentCollector) *ContentHandler {
	return &ContentHandler{logger: logger, collector: collector}
}

func (h *ContentHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/content")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

func (h *ContentHandler) List(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.collector.Sources())
}

func (h *ContentHandler) Get(c echo.Context) error {
	id := c.Param("id")
	snap, err := h.collector.Collect(c.Request().Context(), id)
	if err == nil {
		return xhttp.SuccessResponse(c, snap)
	}

	if errors.Is(err, domrepo.ErrUnknownSource) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown content source '%s'", id).WithError(err))
	}
	var unavailable *usecase.ContentUnavailableError
	if errors.As(err, &unavailable) {
		appErr := xhttp.BadGatewayErrorf("%s: %v", unavailable.Source, unavailable.Err).
			WithParam("source_id", unavailable.SourceID).
			WithError(err)
		return xhttp.AppErrorResponse(c, appErr)
	}
	h.logger.Error("content usecase error", xlogger.String("source", id), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
