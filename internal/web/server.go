// Package web provides an HTTP status server for the boiler daemon.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/sweeney/steamboiler/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/pumps.json", s.handlePumpsJSON)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// pumpInfo is the per-pump shape served by /pumps.json: the commanded state
// plus both physical units' handshake status, shaped for a dashboard to
// poll a single pump without parsing the full index.json envelope.
type pumpInfo struct {
	Index   int             `json:"index"`
	On      bool            `json:"on"`
	Pump    status.UnitJSON `json:"pump"`
	Control status.UnitJSON `json:"control"`
}

// handlePumpsJSON serves the controller's per-pump diagnostic state,
// optionally narrowed to a single pump via ?pump=N.
func (s *Server) handlePumpsJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()

	if q := r.URL.Query().Get("pump"); q != "" {
		i, err := strconv.Atoi(q)
		if err != nil || i < 0 || i >= snap.Pumps {
			http.Error(w, "unknown pump", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pumpInfoOf(snap, i))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	pumps := make([]pumpInfo, snap.Pumps)
	for i := range pumps {
		pumps[i] = pumpInfoOf(snap, i)
	}
	json.NewEncoder(w).Encode(pumps)
}

func pumpInfoOf(snap status.Snapshot, i int) pumpInfo {
	return pumpInfo{
		Index:   i,
		On:      snap.PumpOn[i],
		Pump:    status.UnitJSON{FailState: snap.PumpUnits[i].FailState, FailureType: snap.PumpUnits[i].FailureType},
		Control: status.UnitJSON{FailState: snap.CtrlUnits[i].FailState, FailureType: snap.CtrlUnits[i].FailureType},
	}
}

// handleHealthz reports 503 while the controller is in EmergencyStop and
// 200 otherwise, for use as a container/process liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	if snap.Mode == boiler.ModeEmergencyStop.String() {
		http.Error(w, "emergency_stop", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}
