package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"nfhsdash/internal/config"
	apierrors "nfhsdash/internal/errors"
	"nfhsdash/internal/middleware"
	"nfhsdash/internal/services"
	api "nfhsdash/pkg/contracts/api/v1"
)

// SurveyHandler serves survey queries with RFC 7807 errors
type SurveyHandler struct {
	service      SurveyServiceInterface
	defaults     config.DatasetConfig
	validator    *middleware.RequestValidator
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSurveyHandler creates a new survey handler. defaults supply n and bins
// when a request omits them.
func NewSurveyHandler(service SurveyServiceInterface, defaults config.DatasetConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SurveyHandler {
	return &SurveyHandler{
		service:      service,
		defaults:     defaults,
		validator:    middleware.NewRequestValidator(logger),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "survey_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the survey routes, mounted under /api/survey
func (h *SurveyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/dataset", h.GetDataset)
	r.Get("/rounds", h.GetRounds)

	r.Route("/rounds/{round}", func(r chi.Router) {
		r.Get("/", h.GetRoundView)
		r.Get("/indicators", h.GetIndicators)
		r.Get("/states", h.GetStates)
		r.Get("/export", h.Export)

		r.Route("/indicators/{indicator}", func(r chi.Router) {
			r.Get("/summary", h.GetSummary)
			r.Get("/top", h.GetTop)
			r.Get("/distribution", h.GetDistribution)
			r.Get("/compare", h.GetCompare)
			r.Get("/dashboard", h.GetDashboard)
		})
	})

	r.Get("/indicators/{indicator}/trend", h.GetTrend)

	return r
}

// validate runs struct validation and writes the problem on failure
func (h *SurveyHandler) validate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

func (h *SurveyHandler) selection(w http.ResponseWriter, r *http.Request) (api.SelectionRequest, bool) {
	sel := api.SelectionRequest{
		Round:     pathParam(r, "round"),
		Indicator: pathParam(r, "indicator"),
	}
	return sel, h.validate(w, r, sel)
}

func (h *SurveyHandler) round(w http.ResponseWriter, r *http.Request) (string, bool) {
	round := pathParam(r, "round")
	return round, h.validate(w, r, api.RoundRequest{Round: round})
}

// GetDataset handles GET /api/survey/dataset
func (h *SurveyHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(info))
}

// GetRounds handles GET /api/survey/rounds
func (h *SurveyHandler) GetRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.service.Rounds(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.List(rounds, len(rounds)))
}

// GetRoundView handles GET /api/survey/rounds/{round}
func (h *SurveyHandler) GetRoundView(w http.ResponseWriter, r *http.Request) {
	round, ok := h.round(w, r)
	if !ok {
		return
	}
	view, err := h.service.RoundView(r.Context(), round)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(view))
}

// GetIndicators handles GET /api/survey/rounds/{round}/indicators
func (h *SurveyHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	round, ok := h.round(w, r)
	if !ok {
		return
	}
	indicators, err := h.service.Indicators(r.Context(), round)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.List(indicators, len(indicators)))
}

// GetStates handles GET /api/survey/rounds/{round}/states
func (h *SurveyHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	round, ok := h.round(w, r)
	if !ok {
		return
	}
	states, err := h.service.States(r.Context(), round)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.List(states, len(states)))
}

// GetSummary handles GET .../indicators/{indicator}/summary. An indicator
// with no data in the round is a 422 "no data" problem.
func (h *SurveyHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), sel.Round, sel.Indicator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(summary))
}

// GetTop handles GET .../indicators/{indicator}/top?n=
func (h *SurveyHandler) GetTop(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
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
	render.JSON(w, r, api.List(top, len(top)))
}

// GetDistribution handles GET .../indicators/{indicator}/distribution?bins=
func (h *SurveyHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
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
	render.JSON(w, r, api.Success(hist))
}

// GetCompare handles GET .../indicators/{indicator}/compare?state=A&state=B
func (h *SurveyHandler) GetCompare(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	req := api.CompareRequest{SelectionRequest: sel, States: queryList(r, "state")}
	if !h.validate(w, r, req) {
		return
	}

	values, err := h.service.Compare(r.Context(), req.Round, req.Indicator, req.States)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.List(values, len(values)))
}

// GetDashboard handles GET .../indicators/{indicator}/dashboard
func (h *SurveyHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	n, ok := h.query.ValidateInt(w, r, "n", 1, api.MaxTopN, h.defaults.TopN)
	if !ok {
		return
	}
	bins, ok := h.query.ValidateInt(w, r, "bins", 1, api.MaxBins, h.defaults.HistogramBins)
	if !ok {
		return
	}
	req := api.DashboardRequest{SelectionRequest: sel, States: queryList(r, "state"), N: n, Bins: bins}
	if !h.validate(w, r, req) {
		return
	}

	dash, err := h.service.Dashboard(r.Context(), services.DashboardQuery{
		Round:     req.Round,
		Indicator: req.Indicator,
		States:    req.States,
		N:         req.N,
		Bins:      req.Bins,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(dash))
}

// GetTrend handles GET /api/survey/indicators/{indicator}/trend
func (h *SurveyHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	req := api.TrendRequest{Indicator: pathParam(r, "indicator")}
	if !h.validate(w, r, req) {
		return
	}

	trend, err := h.service.Trend(r.Context(), req.Indicator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.List(trend, len(trend)))
}

// Export handles GET /api/survey/rounds/{round}/export?format=&indicator=
func (h *SurveyHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{services.FormatCSV, services.FormatXLSX}, services.FormatCSV)
	if !ok {
		return
	}
	req := api.ExportRequest{
		Round:      pathParam(r, "round"),
		Indicators: queryList(r, "indicator"),
		Format:     format,
	}
	if !h.validate(w, r, req) {
		return
	}

	// Buffer so a failed export still gets a problem response.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, req.Format, req.Round, req.Indicators); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if req.Format == services.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(req.Round, req.Format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()))
	}
}

func exportFilename(round, format string) string {
	safe := []rune(round)
	for i, c := range safe {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c == '.') {
			safe[i] = '_'
		}
	}
	return fmt.Sprintf("nfhs-round-%s.%s", string(safe), format)
}
