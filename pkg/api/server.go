// ------------------------------------------------------
// simjoin - REST API Server
// Synchronous join execution over HTTP
// ------------------------------------------------------

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/qgramjoin/simjoin/pkg/config"
	"github.com/qgramjoin/simjoin/pkg/join"
	"github.com/qgramjoin/simjoin/pkg/result"
	"github.com/qgramjoin/simjoin/pkg/table"
	"github.com/qgramjoin/simjoin/pkg/tokenizer"
)

// Server wraps a gorilla/mux router exposing the join engine over HTTP.
type Server struct {
	server *http.Server
}

// JoinRequest is the wire format for POST /api/v1/join: CSV paths for
// both sides plus the join options of config.JoinConfig. The output
// prefixes are not part of the request and keep their l_/r_ defaults.
type JoinRequest struct {
	LeftPath  string `json:"left_path"`
	RightPath string `json:"right_path"`

	LKeyAttr  string `json:"l_key_attr"`
	RKeyAttr  string `json:"r_key_attr"`
	LJoinAttr string `json:"l_join_attr"`
	RJoinAttr string `json:"r_join_attr"`

	Threshold    float64  `json:"threshold"`
	CompOp       string   `json:"comp_op,omitempty"`
	AllowMissing bool     `json:"allow_missing,omitempty"`
	LOutAttrs    []string `json:"l_out_attrs,omitempty"`
	ROutAttrs    []string `json:"r_out_attrs,omitempty"`
	OutSimScore  *bool    `json:"out_sim_score,omitempty"`
	NJobs        int      `json:"n_jobs,omitempty"`
	QVal         int      `json:"qval,omitempty"`
}

// JoinResponse carries the assembled output table as JSON records.
type JoinResponse struct {
	Success bool                `json:"success"`
	Header  []string            `json:"header"`
	Rows    []map[string]string `json:"rows"`
}

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewServer creates an API server bound to no listener yet; call Start
// to begin serving.
func NewServer() *Server {
	return &Server{}
}

// Start builds the router and blocks serving on the given port.
func (s *Server) Start(port int) error {
	router := mux.NewRouter()

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/join", s.handleJoin).Methods(http.MethodPost)
	v1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	router.Use(loggingMiddleware)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleJoin loads both tables, runs the join synchronously, and
// returns the assembled result table. It never returns a partial
// result: any error from validation or the core aborts the whole
// request with a non-2xx response.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cfg := config.DefaultConfig()
	cfg.LKeyAttr, cfg.RKeyAttr = req.LKeyAttr, req.RKeyAttr
	cfg.LJoinAttr, cfg.RJoinAttr = req.LJoinAttr, req.RJoinAttr
	cfg.Threshold = req.Threshold
	cfg.AllowMissing = req.AllowMissing
	cfg.LOutAttrs, cfg.ROutAttrs = req.LOutAttrs, req.ROutAttrs
	cfg.Output = config.OutputJSON
	if req.CompOp != "" {
		cfg.CompOp = config.CompOp(req.CompOp)
	}
	if req.OutSimScore != nil {
		cfg.OutSimScore = *req.OutSimScore
	}
	if req.NJobs != 0 {
		cfg.NJobs = req.NJobs
	}
	if req.QVal != 0 {
		cfg.QVal = req.QVal
	}

	if err := cfg.Validate(); err != nil {
		sendError(w, http.StatusBadRequest, "invalid join options", err.Error())
		return
	}

	left, err := table.LoadCSV(req.LeftPath, cfg.LKeyAttr, cfg.LJoinAttr, cfg.LOutAttrs)
	if err != nil {
		sendError(w, http.StatusBadRequest, "failed to load left table", err.Error())
		return
	}
	right, err := table.LoadCSV(req.RightPath, cfg.RKeyAttr, cfg.RJoinAttr, cfg.ROutAttrs)
	if err != nil {
		sendError(w, http.StatusBadRequest, "failed to load right table", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	tk := tokenizer.NewQGramTokenizer(cfg.QVal)
	res, err := join.Join(ctx, left, right, tk, cfg)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "join failed", err.Error())
		return
	}

	tbl := result.Assemble(res, left, right, cfg)
	rows := make([]map[string]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		rec := make(map[string]string, len(tbl.Header))
		for j, h := range tbl.Header {
			rec[h] = row[j]
		}
		rows[i] = rec
	}

	sendJSON(w, http.StatusOK, JoinResponse{Success: true, Header: tbl.Header, Rows: rows})
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// loggingMiddleware logs each request's method, path, status, and
// duration via logrus.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.status,
			"duration": time.Since(start),
		}).Info("request handled")
	})
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("encode response: %v", err)
	}
}

func sendError(w http.ResponseWriter, status int, errMsg, message string) {
	sendJSON(w, status, ErrorResponse{Error: errMsg, Message: message})
}

// responseWriter wraps http.ResponseWriter to capture the status code
// for logging.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
