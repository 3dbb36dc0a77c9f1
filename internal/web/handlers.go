package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/cookielog/internal/activity"
	"github.com/JonMunkholm/cookielog/internal/core"
	"github.com/JonMunkholm/cookielog/internal/logging"
	"github.com/JonMunkholm/cookielog/internal/schema"
	"github.com/JonMunkholm/cookielog/internal/store"
)

// schemaInfo is the listing form of a registered schema.
type schemaInfo struct {
	Name    string            `json:"name"`
	Header  string            `json:"header"`
	Columns []core.ColumnInfo `json:"columns"`
}

// handleHealth reports liveness and parse slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"schemas":  core.Count(),
		"parses":   s.limiter.Status(),
		"database": s.store != nil,
	})
}

// handleListSchemas lists every registered schema with its columns.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	all := core.All()
	infos := make([]schemaInfo, 0, len(all))
	for _, d := range all {
		infos = append(infos, schemaInfo{Name: d.Name(), Header: d.Header(), Columns: d.Columns()})
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleParse parses the request body with the named schema and returns its
// records.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "schema")
	d, ok := core.Get(name)
	if !ok {
		respondError(w, r, fmt.Errorf("unknown schema %q", name), http.StatusNotFound)
		return
	}

	var (
		records any
		rows    int
	)
	err := s.withDocument(r, name, func(text string) (int, error) {
		var err error
		records, rows, err = d.Decode(text)
		return rows, err
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"schema":  name,
		"rows":    rows,
		"records": records,
	})
}

// mostActiveResponse is the body returned by handleMostActive.
type mostActiveResponse struct {
	Date    schema.Date            `json:"date"`
	Cookies []schema.Cookie        `json:"cookies"`
	Counts  []activity.CookieCount `json:"counts"`
	Upload  *store.Upload          `json:"upload,omitempty"`
	Stored  bool                   `json:"stored"`
}

// handleMostActive parses a cookie log body and returns the most active
// cookies on the date query parameter. With store=true the log is also
// persisted.
func (s *Server) handleMostActive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	day, err := schema.ParseDate(q.Get("date"))
	if err != nil {
		respondError(w, r, fmt.Errorf("invalid date %q: %w", q.Get("date"), err), http.StatusBadRequest)
		return
	}

	persist := q.Get("store") == "true"
	if persist && s.store == nil {
		respondError(w, r, errStoreDisabled, statusFor(errStoreDisabled))
		return
	}

	var (
		text    string
		entries []schema.LogEntry
	)
	err = s.withDocument(r, schema.Log.Name(), func(doc string) (int, error) {
		parsed, err := schema.ParseLog(doc)
		text, entries = doc, parsed
		return len(parsed), err
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	counts := activity.Count(entries, day)
	resp := mostActiveResponse{
		Date:    day,
		Cookies: activity.Max(counts),
		Counts:  counts,
	}
	if resp.Cookies == nil {
		resp.Cookies = []schema.Cookie{}
	}
	if resp.Counts == nil {
		resp.Counts = []activity.CookieCount{}
	}

	if persist {
		up, err := s.store.SaveLog(r.Context(), fileName(r), text, entries)
		switch {
		case err == nil:
			resp.Stored = true
		case errors.Is(err, store.ErrDuplicateUpload):
			logging.FromContext(r.Context()).Info("log already stored", "upload_id", up.ID)
		default:
			respondError(w, r, err, statusFor(err))
			return
		}
		resp.Upload = &up
	}

	writeJSON(w, http.StatusOK, resp)
}

// withDocument reads the request body under a parse slot and runs parse on
// it, recording the outcome against schemaName.
func (s *Server) withDocument(r *http.Request, schemaName string, parse func(text string) (int, error)) error {
	ctx := r.Context()

	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()

	text, err := core.ReadDocument(r.Body, s.cfg.Parse.MaxDocumentSize)
	if err != nil {
		return err
	}

	logger := logging.WithFields(ctx, "schema", schemaName, "bytes", len(text))
	start := time.Now()
	rows, err := parse(text)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveParse(schemaName, rows, err, elapsed)
	}

	if err != nil {
		logger.Warn("parse failed", "error", err, "duration", elapsed)
		return err
	}
	logger.Info("parse complete", "rows", rows, "duration", elapsed)
	return nil
}

// fileName names a posted document: the X-File-Name header, or "request".
func fileName(r *http.Request) string {
	if name := r.Header.Get("X-File-Name"); name != "" {
		return name
	}
	return "request"
}
