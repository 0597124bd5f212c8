package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/normlap/pkg/analysis"
	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/pubsub"
)

// maxBodyBytes bounds the size of a comparison request
const maxBodyBytes = 32 << 20

// Node is a node name in a request. JSON numbers are accepted and kept in
// their literal form, so [[1,2]] and [["1","2"]] name the same edge.
type Node string

func (n *Node) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = Node(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("node must be a string or a number, got %s", data)
	}
	*n = Node(num.String())
	return nil
}

// CompareRequest is the body of POST /api/compare. Pool is optional and
// defaults to the union of A and B; the tuning parameters default to the
// server's.
type CompareRequest struct {
	A        [][2]Node          `json:"a"`
	B        [][2]Node          `json:"b"`
	Pool     [][2]Node          `json:"pool,omitempty"`
	Negative *maxent.TuneParams `json:"negative,omitempty"`
	Positive *maxent.TuneParams `json:"positive,omitempty"`
}

func (req CompareRequest) validate() error {
	if req.A == nil || req.B == nil {
		return errors.New(`both "a" and "b" are required`)
	}
	for name, p := range map[string]*maxent.TuneParams{"negative": req.Negative, "positive": req.Positive} {
		if p == nil {
			continue
		}
		if p.ItersStart < 0 || p.IterSpacing < 0 || p.MaxIterations < 0 || p.ChangeLimit < 0 {
			return fmt.Errorf("%s: parameters must not be negative (%s)", name, p.String())
		}
	}
	return nil
}

func pairs(edges [][2]Node) [][2]string {
	if edges == nil {
		return nil
	}
	out := make([][2]string, len(edges))
	for i, e := range edges {
		out[i] = [2]string{string(e[0]), string(e[1])}
	}
	return out
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	runner    *analysis.Runner
	publisher pubsub.Publisher
}

// NewServer creates a web server that scores comparisons with runner and
// streams progress from publisher
func NewServer(runner *analysis.Runner, publisher pubsub.Publisher) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		runner:    runner,
		publisher: publisher,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RunIDMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/status", s.handleSubscribe(pubsub.TopicStatus)).Methods("GET")
	s.router.HandleFunc("/api/subscribe/score", s.handleSubscribe(pubsub.TopicScore)).Methods("GET")

	s.router.HandleFunc("/api/compare", s.handleCompare).Methods("POST")
	s.router.HandleFunc("/api/report", s.handleReport).Methods("GET")
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Set SSE headers
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer sub.Close()

		// Initial comment establishes the stream before the first event
		fmt.Fprintf(w, ": connected\n\n")
		flush(w)

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "SSE client went away", "topic", topic, "error", err)
				return
			}
			flush(w)
		}
	}
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	run := analysis.Request{
		A:        analysis.Edges{Label: "a", Pairs: pairs(req.A)},
		B:        analysis.Edges{Label: "b", Pairs: pairs(req.B)},
		Reason:   "api request",
		Negative: req.Negative,
		Positive: req.Positive,
	}
	if req.Pool != nil {
		run.Pool = analysis.Edges{Label: "pool", Pairs: pairs(req.Pool)}
	}

	res, err := s.runner.Run(r.Context(), run)
	switch {
	case errors.Is(err, context.Canceled):
		// Client disconnected; nobody reads the response
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(r.Context(), w, res)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Last()
	if errors.Is(err, analysis.ErrNoResult) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(r.Context(), w, res)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Start serves the API on port until ctx is done, then shuts down
// gracefully
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open SSE streams end with ctx instead of stalling Shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("web server shutdown", "error", err)
		}
	}()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}
