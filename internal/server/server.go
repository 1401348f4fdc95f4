package server

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vigorakbar/trading-dashboard-mock/internal/service"
)

// Server hosts the HTTP snapshot endpoints and the WebSocket upgrade route
// over one market service.
type Server struct {
	svc        *service.MarketService
	upgrader   websocket.Upgrader
	sendBuffer int
}

// New builds a Server over svc. sendBuffer sets the per-connection outbound
// queue length; <= 0 selects the default.
func New(svc *service.MarketService, sendBuffer int) *Server {
	return &Server{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from a different origin in every
			// deployment; access control is out of scope here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sendBuffer: sendBuffer,
	}
}

// Handler returns the fully-routed HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/initialCandles", s.handleInitialCandles)
	mux.HandleFunc("/api/initialTickers", s.handleInitialTickers)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/", s.handleNotFound)
	return corsMiddleware(mux)
}

// corsMiddleware applies the allow-all CORS headers on every response and
// terminates preflight requests with an empty 204.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleInitialCandles serves GET /api/initialCandles?symbols=a,b as a JSON
// object mapping symbol to its historical candle tuples. An omitted symbols
// parameter means every known instrument.
func (s *Server) handleInitialCandles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.handleNotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.HistoricalBatch(querySymbols(r)))
}

// handleInitialTickers serves GET /api/initialTickers?symbols=a,b as a JSON
// array of starter quotes, with the same symbols defaulting rule.
func (s *Server) handleInitialTickers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.handleNotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.TickerSnapshot(querySymbols(r)))
}

// handleWebSocket upgrades the connection and hands it to a Client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(conn, s.svc, s.sendBuffer)
	s.svc.Connect(client)
	client.Start()
}

// handleNotFound answers every unmatched route with the JSON 404 body the
// dashboard expects.
func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
}

// querySymbols extracts the comma-separated symbols parameter. A missing or
// empty parameter yields nil, which downstream means "all instruments".
func querySymbols(r *http.Request) []string {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// writeJSON renders v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response body")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Debug().Err(err).Msg("failed to write response body")
	}
}
