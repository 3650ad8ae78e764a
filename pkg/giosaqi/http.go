package giosaqi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ghalamif/giosaqi/internal/logger"
)

// EntityState is the JSON view of one sensor served on /sensors.
type EntityState struct {
	UniqueID    string         `json:"unique_id,omitempty"`
	Name        string         `json:"name"`
	State       string         `json:"state"`
	Unit        string         `json:"unit_of_measurement"`
	Icon        string         `json:"icon"`
	Attributes  map[string]any `json:"attributes"`
	LastRefresh *time.Time     `json:"last_refresh,omitempty"`
}

// States snapshots every discovered sensor.
func (e *Runtime) States() []EntityState {
	sensors := e.Sensors()
	out := make([]EntityState, 0, len(sensors))
	for _, s := range sensors {
		uid, _ := s.UniqueID()
		st := EntityState{
			UniqueID:   uid,
			Name:       s.Name(),
			State:      s.StateString(),
			Unit:       s.Unit(),
			Icon:       s.Icon(),
			Attributes: s.Attributes(),
		}
		if ts := s.LastRefresh(); !ts.IsZero() {
			st.LastRefresh = &ts
		}
		out = append(out, st)
	}
	return out
}

// Handler serves /metrics, /healthz and /sensors.
func (e *Runtime) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/sensors", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(e.States()); err != nil {
			logger.Warn("sensors_encode_failed", "error", err)
		}
	})
	return mux
}

func (e *Runtime) startHTTP() {
	srv := &http.Server{
		Addr:              e.cfg.Metrics.Addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	e.mu.Lock()
	e.httpSrv = srv
	e.mu.Unlock()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_exited", "addr", srv.Addr, "error", err)
		}
	}()
}
