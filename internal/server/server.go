// Package server exposes the journal over HTTP for a presentation layer.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trade-journal/internal/filter"
	"trade-journal/internal/interfaces"
	"trade-journal/internal/logger"
	"trade-journal/internal/telemetry"
	"trade-journal/internal/trace"
	"trade-journal/internal/tradeview"
	"trade-journal/internal/types"
)

type Options struct {
	ServiceName    string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

type Server struct {
	journal interfaces.Journal
	opts    Options
}

func New(j interfaces.Journal, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "trade-journal"
	}
	return &Server{journal: j, opts: opts}
}

// Routes builds the router. /health and /metrics sit outside /api.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	r.Use(telemetry.Middleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/trades", s.handleLoad)
		r.Delete("/trades", s.handleClear)
		r.Get("/trades", s.handleLog)
		r.Get("/trades/export", s.handleExport)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/instruments", s.handleInstruments)
	})
	return r
}

// requestLogger opens a span per request and logs the outcome with its IDs.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := trace.StartSpan(r.Context(), "http "+r.Method+" "+r.URL.Path)
		defer span.End()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if logger.IsDebugEnabled() {
			fields = append(fields,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}
		if status >= http.StatusInternalServerError {
			logger.Warn(ctx, "Request failed", fields...)
			return
		}
		logger.Debug(ctx, "Request served", fields...)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": s.opts.ServiceName})
}

// handleLoad accepts the CSV either as the raw body or as the "file" field
// of a multipart form.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeLoadError(w, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("missing upload field 'file': %v", err))
			return
		}
		defer f.Close()
		body = f
	}

	report, err := s.journal.Load(r.Context(), body)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := s.criteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := s.journal.Dashboard(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type logResponse struct {
	Sort   types.SortConfig `json:"sort"`
	Count  int              `json:"count"`
	Trades []types.Trade    `json:"trades"`
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	f, q, err := s.view(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := s.journal.LogView(r.Context(), f, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, logResponse{Sort: q.Sort, Count: len(rows), Trades: rows})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, q, err := s.view(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.journal.Export(r.Context(), f, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	name := fmt.Sprintf("trades-%s.csv", time.Now().In(s.journal.Location()).Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out)
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.journal.Instruments(r.Context()))
}

// criteria reads from, to (YYYY-MM-DD), direction and instrument.
func (s *Server) criteria(r *http.Request) (types.FilterCriteria, error) {
	v := r.URL.Query()
	return filter.Criteria(v.Get("from"), v.Get("to"), v.Get("direction"), v.Get("instrument"), s.journal.Location())
}

// view reads the filter plus q, sort and order. select=<key> applies a column
// click to the current sort and order.
func (s *Server) view(r *http.Request) (types.FilterCriteria, types.LogQuery, error) {
	f, err := s.criteria(r)
	if err != nil {
		return types.FilterCriteria{}, types.LogQuery{}, err
	}
	v := r.URL.Query()
	q, err := tradeview.Query(v.Get("q"), v.Get("sort"), v.Get("order"))
	if err != nil {
		return types.FilterCriteria{}, types.LogQuery{}, err
	}
	if sel := v.Get("select"); sel != "" {
		key, err := tradeview.ParseSortKey(sel)
		if err != nil {
			return types.FilterCriteria{}, types.LogQuery{}, err
		}
		q.Sort = q.Sort.Select(key)
	}
	return f, q, nil
}
