// Package server exposes the detour calculator, the province price lookup
// and the advisory text over a small JSON API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"
	"github.com/rubiojr/fueldetour/internal/advice"
	"github.com/rubiojr/fueldetour/internal/config"
	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/province"
	"github.com/rubiojr/fueldetour/internal/report"
	"github.com/rubiojr/fueldetour/internal/translations"
	"github.com/rubiojr/fueldetour/pkg/api"
	"golang.org/x/text/language"
)

const shutdownTimeout = 5 * time.Second

// queryParams maps every field to its query string parameter.
var queryParams = map[detour.Field]string{
	detour.PriceOnRoad:    "on",
	detour.PriceOffRoad:   "off",
	detour.LitersToRefuel: "liters",
	detour.ConsumptionKmL: "consumption",
}

var (
	supportedLangs = []string{"es", "en"}
	langMatcher    = language.NewMatcher([]language.Tag{language.Spanish, language.English})
)

// Options holds the collaborators of the API.
type Options struct {
	Locator  *province.Locator
	Geocoder *province.Geocoder
	// Advisor replaces the local advisor when set.
	Advisor advice.Advisor
}

type Server struct {
	cfg    *config.Config
	opts   Options
	t      translations.Translations
	logger *httplog.Logger
	router chi.Router
}

// NewLogger returns the request logger used by the server.
func NewLogger(level slog.Level) *httplog.Logger {
	return httplog.NewLogger("fueldetour", httplog.Options{
		JSON:            false,
		LogLevel:        level,
		Concise:         true,
		QuietDownPeriod: 10 * time.Second,
	})
}

func New(cfg *config.Config, opts Options, logger *httplog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		opts:   opts,
		t:      translations.GetTranslations(cfg.Lang),
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(s.cfg.Server.RateLimit, time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Get("/calculate", s.calculate)
		r.Post("/validate", s.validate)
		r.Get("/province", s.province)
		r.Post("/advice", s.advice)
		r.Get("/report.pdf", s.report)
	})
	return r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the API on the configured address until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server on", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	}
}

// calculation is the answer of /api/calculate. Message explains why a
// form without field errors has no result.
type calculation struct {
	Data    detour.FuelData         `json:"data"`
	Errors  map[detour.Field]string `json:"errors"`
	Valid   bool                    `json:"valid"`
	Message string                  `json:"message,omitempty"`
	Result  *detour.Result          `json:"result,omitempty"`
	Series  []detour.ChartPoint     `json:"series,omitempty"`
}

func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	t := s.translations(r)
	form, err := s.formFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, newCalculation(form, t))
}

func newCalculation(form *detour.Form, t translations.Translations) calculation {
	c := calculation{
		Data:   form.Data(),
		Errors: t.Messages(form.Errors()),
		Valid:  form.Valid(),
	}
	if !c.Valid {
		return c
	}

	result := form.Result()
	if !result.Finite() {
		c.Valid = false
		c.Message = t.OutOfRange
		return c
	}
	c.Result = &result
	c.Series = detour.Series(result, true)
	return c
}

// formFromQuery starts from the configured defaults and types every
// field present in q, in display order.
func (s *Server) formFromQuery(q url.Values) (*detour.Form, error) {
	form := s.cfg.NewForm()
	for _, field := range detour.Fields {
		param := queryParams[field]
		if !q.Has(param) {
			continue
		}
		if !form.SetText(field, q.Get(param)) {
			return nil, fmt.Errorf("invalid %s value %q", param, q.Get(param))
		}
	}
	return form, nil
}

type validateRequest struct {
	Field detour.Field    `json:"field"`
	Text  string          `json:"text"`
	Data  detour.FuelData `json:"data"`
}

type validation struct {
	Accepted bool                    `json:"accepted"`
	Data     detour.FuelData         `json:"data"`
	Issue    detour.Issue            `json:"issue,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Errors   map[detour.Field]string `json:"errors"`
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	t := s.translations(r)

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Field.Valid() {
		http.Error(w, fmt.Sprintf("Unknown field %q", req.Field), http.StatusBadRequest)
		return
	}

	form := detour.NewForm(req.Data, s.cfg.StepMap())
	accepted := form.SetText(req.Field, req.Text)
	issue := form.Issue(req.Field)

	s.writeJSON(w, http.StatusOK, validation{
		Accepted: accepted,
		Data:     form.Data(),
		Issue:    issue,
		Message:  t.Issue(issue),
		Errors:   t.Messages(form.Errors()),
	})
}

type failure struct {
	Kind   detour.FailureKind `json:"kind"`
	Status string             `json:"status"`
}

type provinceResponse struct {
	*province.Report
	Place string `json:"place,omitempty"`
	Price string `json:"price,omitempty"`
}

func (s *Server) province(w http.ResponseWriter, r *http.Request) {
	t := s.translations(r)
	q := r.URL.Query()

	var (
		resp provinceResponse
		err  error
	)
	switch {
	case q.Get("location") != "":
		var place province.Place
		resp.Report, place, err = province.LookupPlace(r.Context(), s.opts.Geocoder, s.opts.Locator, q.Get("location"))
		resp.Place = place.Name
	case q.Get("lat") != "" && q.Get("lng") != "":
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			http.Error(w, "Invalid latitude or longitude value", http.StatusBadRequest)
			return
		}
		resp.Report, err = s.opts.Locator.Lookup(r.Context(), lat, lng)
	default:
		http.Error(w, "lat and lng, or location, are required", http.StatusBadRequest)
		return
	}

	if err != nil {
		f := detour.NewFailure(err)
		s.logger.Warn("Province lookup failed", "kind", f.Kind, "error", err)
		s.writeJSON(w, failureStatus(f.Kind), failure{Kind: f.Kind, Status: t.Failure(f.Kind)})
		return
	}

	if fuel := q.Get("fuel"); fuel != "" {
		resp.Price, _ = resp.Report.Price(api.ParseFuelType(fuel))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// failureStatus maps a collaborator failure to an HTTP status.
func failureStatus(kind detour.FailureKind) int {
	switch kind {
	case detour.FailurePermissionDenied:
		return http.StatusForbidden
	case detour.FailureTimeout:
		return http.StatusGatewayTimeout
	case detour.FailureUnsupported:
		return http.StatusNotImplemented
	case detour.FailureParse:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

type adviceRequest struct {
	Data detour.FuelData `json:"data"`
}

type adviceResponse struct {
	Text   string             `json:"text,omitempty"`
	Kind   detour.FailureKind `json:"kind,omitempty"`
	Status string             `json:"status,omitempty"`
}

// advice always answers 200: a missing advisory text is shown as a
// status next to the result, never as an error.
func (s *Server) advice(w http.ResponseWriter, r *http.Request) {
	t := s.translations(r)

	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !detour.ValidateAll(req.Data).Valid() {
		s.writeJSON(w, http.StatusOK, adviceResponse{Status: t.FixErrors})
		return
	}

	advisor := s.opts.Advisor
	if advisor == nil {
		advisor = advice.Local{T: t}
	}

	out := advice.Request(r.Context(), advisor, s.cfg.Advice.Timeout, req.Data, detour.Compute(req.Data))
	if !out.OK() {
		s.logger.Warn("Advice request failed", "kind", out.Failure.Kind, "error", out.Failure.Err)
		s.writeJSON(w, http.StatusOK, adviceResponse{Kind: out.Failure.Kind, Status: out.Status(t)})
		return
	}
	s.writeJSON(w, http.StatusOK, adviceResponse{Text: out.Text})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	t := s.translations(r)
	form, err := s.formFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	calc := newCalculation(form, t)
	if !calc.Valid {
		s.writeJSON(w, http.StatusUnprocessableEntity, calc)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, t, calc.Data, *calc.Result, calc.Series); err != nil {
		s.logger.Error("Error generating report", "error", err)
		http.Error(w, "Error generating report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="fuel-detour.pdf"`)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("Error writing report", "error", err)
	}
}

// translations picks the language from the lang parameter, then the
// Accept-Language header, then the configuration.
func (s *Server) translations(r *http.Request) translations.Translations {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return translations.GetTranslations(lang)
	}

	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err == nil && len(tags) > 0 {
		if _, idx, conf := langMatcher.Match(tags...); conf != language.No {
			return translations.GetTranslations(supportedLangs[idx])
		}
	}
	return s.t
}

// writeJSON encodes v before writing the header so an encoding error
// still reaches the client as a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("Error encoding response", "error", err)
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("Error writing response", "error", err)
	}
}
