package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dataclassification/logger"
	"dataclassification/query"
)

const (
	defaultRecordLimit = 100

	// maxRangeDays bounds explicit start/end ranges to the "year" period.
	maxRangeDays = 366
)

// Server exposes the result store as a read-only JSON API.
type Server struct {
	db  *query.Database
	log zerolog.Logger
	now func() time.Time
}

func NewServer(db *query.Database) *Server {
	return &Server{db: db, log: logger.WithComponent("web"), now: time.Now}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/series", s.handleSeries)
	mux.HandleFunc("/api/records", s.handleRecords)
	return mux
}

// StartServer serves the API on addr until ctx is done.
func StartServer(ctx context.Context, db *query.Database, addr string) error {
	s := NewServer(db)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", addr).Msg("report API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// dateRange reads start/end from the request, defaulting to the named
// period (week when absent).
func (s *Server) dateRange(r *http.Request) (string, string, error) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		period := r.URL.Query().Get("period")
		if period == "" {
			period = "week"
		}
		start, end = query.PeriodRange(period, s.now())
	}

	startT, err1 := time.Parse(time.DateOnly, start)
	endT, err2 := time.Parse(time.DateOnly, end)
	if err1 != nil || err2 != nil || endT.Before(startT) {
		return "", "", errors.New("invalid date range")
	}
	if endT.Sub(startT) > maxRangeDays*24*time.Hour {
		return "", "", fmt.Errorf("date range longer than %d days", maxRangeDays)
	}
	return start, end, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start, end, err := s.dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := s.db.GetCategorySummary(start, end)
	if err != nil {
		s.log.Error().Err(err).Msg("summary query failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	byAccess := map[string]float64{}
	for _, it := range items {
		byAccess[it.AccessType] += it.Seconds
	}

	writeJSON(w, map[string]any{"start": start, "end": end, "items": items, "access_types": byAccess})
}

// handleSeries returns one dataset per access type with a value for every
// day between start and end, biggest total first.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start, end, err := s.dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.db.GetDailySeries(start, end)
	if err != nil {
		s.log.Error().Err(err).Msg("series query failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	startT, _ := time.Parse(time.DateOnly, start)
	endT, _ := time.Parse(time.DateOnly, end)
	var labels []string
	for cur := startT; !cur.After(endT); cur = cur.AddDate(0, 0, 1) {
		labels = append(labels, cur.Format(time.DateOnly))
	}
	indexByLabel := make(map[string]int, len(labels))
	for i, lb := range labels {
		indexByLabel[lb] = i
	}

	totals := map[string]float64{}
	for _, row := range rows {
		totals[row.Name] += row.Seconds
	}
	names := make([]string, 0, len(totals))
	for n := range totals {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	indexByName := make(map[string]int, len(names))
	for i, n := range names {
		indexByName[n] = i
	}

	matrix := make([][]float64, len(names))
	for i := range matrix {
		matrix[i] = make([]float64, len(labels))
	}
	for _, row := range rows {
		li, ok := indexByLabel[row.Bucket]
		if !ok {
			continue
		}
		matrix[indexByName[row.Name]][li] = row.Seconds
	}

	writeJSON(w, map[string]any{
		"start":  start,
		"end":    end,
		"labels": labels,
		"names":  names,
		"matrix": matrix,
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		http.Error(w, "category is required", http.StatusBadRequest)
		return
	}

	limit := defaultRecordLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	items, err := s.db.GetRecordsByCategory(category, limit)
	if err != nil {
		s.log.Error().Err(err).Str("category", category).Msg("records query failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []query.StoredActivity{}
	}
	writeJSON(w, items)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
