package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
	"github.com/alphonsez1/ARSmoothDesk/internal/config"
	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
	"github.com/alphonsez1/ARSmoothDesk/internal/output"
	"github.com/alphonsez1/ARSmoothDesk/internal/pump"
)

// Server exposes the preview stream, pipeline stats and a status
// websocket over HTTP.
type Server struct {
	router    *mux.Router
	configMgr *config.Manager
	mjpeg     *output.MJPEGOutput
	pipeline  *pump.Pump
	feed      *StatusFeed
	upgrader  websocket.Upgrader
}

// NewServer creates the HTTP server around a running pipeline.
func NewServer(configMgr *config.Manager, mjpeg *output.MJPEGOutput, pipeline *pump.Pump, feed *StatusFeed) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		configMgr: configMgr,
		mjpeg:     mjpeg,
		pipeline:  pipeline,
		feed:      feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local preview tool, any origin is fine
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/displays", s.handleDisplays).Methods("GET")
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/status/stream", s.handleStatusStream)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/stream", s.mjpeg.StreamHandler()).Methods("GET")
	s.router.HandleFunc("/", s.mjpeg.ViewerHandler()).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logger.WithComponent("api").Info().
		Str("addr", "http://localhost"+addr).
		Msg("HTTP server starting")
	return http.ListenAndServe(addr, s.enableCORS(s.router))
}

// enableCORS adds CORS headers
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := struct {
		Pipeline pump.Stats `json:"pipeline"`
		Stream   struct {
			Clients int    `json:"clients"`
			Frames  uint64 `json:"frames"`
		} `json:"stream"`
	}{
		Pipeline: s.pipeline.Snapshot(),
	}
	stats.Stream.Clients = s.mjpeg.ClientCount()
	stats.Stream.Frames = s.mjpeg.FrameCount()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleDisplays(w http.ResponseWriter, r *http.Request) {
	displays, err := capture.ListDisplays()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(displays)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.configMgr.Get()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api").Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	id, events := s.feed.Subscribe()
	defer s.feed.Unsubscribe(id)

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			logger.WithComponent("api").Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
