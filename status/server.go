// Package status serves the practice metrics and a small read-only JSON
// API over HTTP.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"drum-practice/debug"
	"drum-practice/history"
	"drum-practice/metrics"
	"drum-practice/practice"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 500
)

// RunLister reads stored runs
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

type sessionView struct {
	State        string   `json:"state"`
	Tempo        int      `json:"tempo"`
	Beat         int      `json:"beat"`
	Notes        int      `json:"notes"`
	Source       string   `json:"source,omitempty"`
	Port         string   `json:"port,omitempty"`
	Kit          string   `json:"kit"`
	Performed    int      `json:"performed"`
	CaptureError string   `json:"capture_error,omitempty"`
	Last         *runView `json:"last,omitempty"`
}

type runView struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Port      string    `json:"port,omitempty"`
	Tempo     int       `json:"tempo"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Completed bool      `json:"completed"`
	Hits      int       `json:"hits"`
	Total     int       `json:"total"`
	Performed int       `json:"performed"`
	Accuracy  float64   `json:"accuracy"`
}

// NewHandler routes /healthz, /metrics, /api/session and /api/runs.
// session and runs may be nil; their routes then answer 404.
func NewHandler(m *metrics.Manager, session *practice.Session, runs RunLister) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if session != nil {
		api.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, viewSession(session.Snapshot()))
		}).Methods(http.MethodGet)
	}
	if runs != nil {
		api.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
			handleRuns(w, r, runs)
		}).Methods(http.MethodGet)
	}

	return cors.Default().Handler(router)
}

func handleRuns(w http.ResponseWriter, r *http.Request, runs RunLister) {
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunLimit)
	}

	list, err := runs.Recent(r.Context(), limit)
	if err != nil {
		debug.Log("status", "list runs: %v", err)
		http.Error(w, "could not list runs", http.StatusInternalServerError)
		return
	}

	views := make([]runView, 0, len(list))
	for _, run := range list {
		views = append(views, runView{
			ID:        run.ID.String(),
			Source:    run.Source,
			Port:      run.Port,
			Tempo:     run.Tempo,
			Started:   run.Started,
			Finished:  run.Finished,
			Completed: run.Completed,
			Hits:      run.Hits,
			Total:     run.Total,
			Performed: run.Performed,
			Accuracy:  run.Accuracy,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func viewSession(snap practice.Snapshot) sessionView {
	v := sessionView{
		State:     snap.State.String(),
		Tempo:     snap.Tempo,
		Beat:      snap.Position.Index,
		Notes:     len(snap.Notes),
		Source:    snap.Source,
		Port:      snap.Port,
		Kit:       snap.Kit,
		Performed: snap.Performed,
	}
	if snap.CaptureErr != nil {
		v.CaptureError = snap.CaptureErr.Error()
	}
	if last := snap.Last; last != nil {
		v.Last = &runView{
			ID:        last.RunID.String(),
			Source:    last.Source,
			Port:      last.Port,
			Tempo:     last.Tempo,
			Started:   last.Started,
			Finished:  last.Finished,
			Completed: last.Completed,
			Hits:      last.Hits,
			Total:     last.Total,
			Performed: len(last.Performed),
			Accuracy:  last.Accuracy,
		}
	}
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Log("status", "encode response: %v", err)
	}
}

// Serve runs the handler on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
