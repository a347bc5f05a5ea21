package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nfhsdash/internal/charts"
	"nfhsdash/internal/config"
	"nfhsdash/internal/dataprocessing"
	apierrors "nfhsdash/internal/errors"
	"nfhsdash/internal/middleware"
	api "nfhsdash/pkg/contracts/api/v1"
)

// ChartHandler serves dashboard panels as SVG or PNG images
type ChartHandler struct {
	service      SurveyServiceInterface
	renderer     *charts.Renderer
	defaults     config.DatasetConfig
	validator    *middleware.RequestValidator
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service SurveyServiceInterface, renderer *charts.Renderer, defaults config.DatasetConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		renderer:     renderer,
		defaults:     defaults,
		validator:    middleware.NewRequestValidator(logger),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes, mounted under /api/charts
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/rounds/{round}/indicators/{indicator}", func(r chi.Router) {
		r.Get("/top", h.Top)
		r.Get("/distribution", h.Distribution)
		r.Get("/compare", h.Compare)
	})
	r.Get("/indicators/{indicator}/trend", h.Trend)

	return r
}

// request parses the selection and chart format shared by every chart
func (h *ChartHandler) request(w http.ResponseWriter, r *http.Request, withRound bool) (api.SelectionRequest, string, bool) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{charts.FormatSVG, charts.FormatPNG}, charts.FormatSVG)
	if !ok {
		return api.SelectionRequest{}, "", false
	}

	sel := api.SelectionRequest{Indicator: pathParam(r, "indicator")}
	var err error
	if withRound {
		sel.Round = pathParam(r, "round")
		err = h.validator.ValidateStruct(sel)
	} else {
		err = h.validator.ValidateStruct(api.TrendRequest{Indicator: sel.Indicator})
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return sel, "", false
	}
	return sel, format, true
}

// Top handles GET .../top?n=&format=
func (h *ChartHandler) Top(w http.ResponseWriter, r *http.Request) {
	sel, format, ok := h.request(w, r, true)
	if !ok {
		return
	}
	n, ok := h.query.ValidateInt(w, r, "n", 1, api.MaxTopN, h.defaults.TopN)
	if !ok {
		return
	}

	top, err := h.service.Top(r.Context(), sel.Round, sel.Indicator, n)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = h.renderer.TopBar(r.Context(), &buf, format, sel.Indicator, top)
	h.write(w, r, sel, format, &buf, err)
}

// Distribution handles GET .../distribution?bins=&format=
func (h *ChartHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	sel, format, ok := h.request(w, r, true)
	if !ok {
		return
	}
	bins, ok := h.query.ValidateInt(w, r, "bins", 1, api.MaxBins, h.defaults.HistogramBins)
	if !ok {
		return
	}

	hist, err := h.service.Distribution(r.Context(), sel.Round, sel.Indicator, bins)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = h.renderer.Histogram(r.Context(), &buf, format, hist)
	h.write(w, r, sel, format, &buf, err)
}

// Compare handles GET .../compare?state=A&state=B&format=
func (h *ChartHandler) Compare(w http.ResponseWriter, r *http.Request) {
	sel, format, ok := h.request(w, r, true)
	if !ok {
		return
	}
	req := api.CompareRequest{SelectionRequest: sel, States: queryList(r, "state")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	values, err := h.service.Compare(r.Context(), req.Round, req.Indicator, req.States)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = h.renderer.Compare(r.Context(), &buf, format, sel.Indicator, values)
	h.write(w, r, sel, format, &buf, err)
}

// Trend handles GET /api/charts/indicators/{indicator}/trend?format=
func (h *ChartHandler) Trend(w http.ResponseWriter, r *http.Request) {
	sel, format, ok := h.request(w, r, false)
	if !ok {
		return
	}

	trend, err := h.service.Trend(r.Context(), sel.Indicator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = h.renderer.Trend(r.Context(), &buf, format, sel.Indicator, trend)
	h.write(w, r, sel, format, &buf, err)
}

// write sends a rendered chart. A chart with nothing to plot is the same
// "no data" problem the JSON endpoints return.
func (h *ChartHandler) write(w http.ResponseWriter, r *http.Request, sel api.SelectionRequest, format string, buf *bytes.Buffer, err error) {
	switch {
	case errors.Is(err, charts.ErrNoData):
		h.errorHandler.HandleError(w, r, &dataprocessing.EmptyIndicatorError{Round: sel.Round, Indicator: sel.Indicator})
		return
	case err != nil:
		h.errorHandler.HandleError(w, r, apierrors.RenderError("chart", err))
		return
	}

	w.Header().Set("Content-Type", charts.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "chart write failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()))
	}
}
