// Package server exposes one shared day log over HTTP.
//
// Routes:
//
//	GET  /        today's list
//	POST /add     body is the item name, responds with its ordinal
//	POST /done    body is an ordinal
//	POST /remove  body is an ordinal
//	GET  /all     merged view of every day in the journal
//	GET  /health  liveness
//	GET  /ws      websocket feed of the list after every change
//
// Every request that touches the list holds the shared log for its whole
// read, mutate and save sequence.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jamzrob/todoer/internal/model"
	"github.com/jamzrob/todoer/internal/store/daylog"
)

const maxBody = 64 << 10

// Options configures a Server.
type Options struct {
	// Shared is the log every request operates on.
	Shared *daylog.Shared
	// Journal backs the merged /all view. Optional.
	Journal *daylog.Journal
	Mode    model.RenderMode
	// Token, when set, is required as a bearer token on POST routes.
	Token string
	// Reload, when set, is used to re-read the shared log after the file
	// changes on disk.
	Reload func() (*daylog.DayLog, error)
	Logger *log.Logger
}

// Server serves the shared log.
type Server struct {
	shared  *daylog.Shared
	journal *daylog.Journal
	mode    model.RenderMode
	token   string
	reload  func() (*daylog.DayLog, error)
	logger  *log.Logger
	hub     *Hub

	// lastSaved is the file content of the last successful save. It is
	// guarded by the shared log's lock.
	lastSaved string
}

// New returns a server for opts.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		shared:  opts.Shared,
		journal: opts.Journal,
		mode:    opts.Mode,
		token:   opts.Token,
		reload:  opts.Reload,
		logger:  logger,
		hub:     NewHub(logger),
	}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleList)
	mux.HandleFunc("POST /add", s.requireToken(s.handleAdd))
	mux.HandleFunc("POST /done", s.requireToken(s.handleDone))
	mux.HandleFunc("POST /remove", s.requireToken(s.handleRemove))
	mux.HandleFunc("GET /all", s.handleAll)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)
	return s.logRequests(mux)
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.watch(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "file", s.logPath())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.hub.Close()
	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, s.render())
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(body)
	if name == "" || strings.ContainsAny(name, "\r\n") {
		http.Error(w, "item name must be a single non-empty line", http.StatusBadRequest)
		return
	}

	var idx int
	s.mutate(w, r, func(l *daylog.DayLog) error {
		idx = l.Store.Append(name)
		return nil
	}, func() string { return strconv.Itoa(idx) + "\n" })
}

func (s *Server) handleDone(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, func(l *daylog.DayLog, i int) error { return l.Store.MarkDone(i) })
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, func(l *daylog.DayLog, i int) error { return l.Store.Remove(i) })
}

func (s *Server) withIndex(w http.ResponseWriter, r *http.Request, op func(*daylog.DayLog, int) error) {
	body, err := readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	idx, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		http.Error(w, fmt.Sprintf("not a number: %q", strings.TrimSpace(body)), http.StatusBadRequest)
		return
	}
	s.mutate(w, r, func(l *daylog.DayLog) error { return op(l, idx) }, nil)
}

// mutate applies op and saves, all under the shared lock, then notifies
// websocket clients. If op or the save fails the log is left as it was.
// reply, if set, builds the response body.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(*daylog.DayLog) error, reply func() string) {
	var snapshot string
	err := s.shared.Do(func(l *daylog.DayLog) error {
		before := l.Store.Clone()
		if err := op(l); err != nil {
			l.Store = before
			return err
		}
		if err := l.Save(); err != nil {
			// The client sees a failure, so the list must not change.
			l.Store = before
			return err
		}
		s.lastSaved = daylog.Format(l.Key, l.Store)
		snapshot = l.Render(s.mode)
		return nil
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.hub.Broadcast(snapshot)

	body := ""
	if reply != nil {
		body = reply()
	}
	writeText(w, http.StatusOK, body)
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "no journal configured", http.StatusNotFound)
		return
	}
	agg, err := s.journal.Scan()
	if err != nil {
		s.logger.Error("scan failed", "dir", s.journal.Dir, "err", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	for _, skipped := range agg.Skipped {
		s.logger.Warn("skipping unreadable log", "err", skipped)
	}
	writeText(w, http.StatusOK, agg.RenderMerged(s.mode))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok\n")
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.Serve(w, r, s.render())
}

func (s *Server) render() string {
	var out string
	_ = s.shared.Do(func(l *daylog.DayLog) error {
		out = l.Render(s.mode)
		return nil
	})
	return out
}

func (s *Server) logPath() string {
	var p string
	_ = s.shared.Do(func(l *daylog.DayLog) error {
		p = l.Path
		return nil
	})
	return filepath.Clean(p)
}

// statusFor maps engine errors to HTTP status codes. An ordinal that names
// no item is the client's fault; malformed files and i/o failures are not.
func statusFor(err error) int {
	if errors.Is(err, model.ErrOutOfRange) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func readBody(r *http.Request) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(b) > maxBody {
		return "", errors.New("request body too large")
	}
	return string(b), nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer, which
// the websocket upgrade needs.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
