package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vadiminshakov/btccmon/config"
	"github.com/vadiminshakov/btccmon/internal/logbuffer"
)

const (
	defaultStreamPollInterval = time.Second
	heartbeatInterval         = 30 * time.Second
)

type logStore interface {
	Render() []string
	Entries() []logbuffer.Entry
	EntriesAfter(seq uint64) []logbuffer.Entry
	Clear()
	Capacity() int
}

type configDumper interface {
	Sections() []config.Section
}

// Server exposes the diagnostic log page, its JSON and SSE feeds, and the
// effective configuration.
type Server struct {
	Addr string

	logs   logStore
	conf   configDumper
	l      *zap.Logger
	router *mux.Router

	// StreamPollInterval is how often an open stream checks the buffer for new entries.
	StreamPollInterval time.Duration
}

// NewServer creates a new web server instance.
func NewServer(addr string, logs logStore, conf configDumper, l *zap.Logger) *Server {
	s := &Server{
		Addr:               addr,
		logs:               logs,
		conf:               conf,
		l:                  l,
		StreamPollInterval: defaultStreamPollInterval,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/logs", s.handleLogs).Methods(http.MethodGet)
	r.HandleFunc("/logs/stream", s.handleLogStream).Methods(http.MethodGet)
	r.HandleFunc("/logs/clear", s.handleClear).Methods(http.MethodPost)
	r.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.l.Info("Web server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "web server")
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with ACME certificates for domains.
// An HTTP server on :80 answers the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Warn("ACME challenge server shutdown failed", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Warn("HTTPS server shutdown failed", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("ACME challenge server failed", zap.Error(err))
		}
	}()

	s.l.Info("Web server listening with automatic TLS", zap.String("addr", s.Addr), zap.Strings("domains", domains))
	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "https server")
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	entries := s.logs.Entries()
	var lastSeq uint64
	if len(entries) > 0 {
		lastSeq = entries[len(entries)-1].Seq
	}

	fmt.Fprint(w, indexHead)
	fmt.Fprintf(w, `<div id="log" data-capacity="%d" data-last-seq="%d">`, s.logs.Capacity(), lastSeq)
	for _, entry := range entries {
		fmt.Fprintln(w, entry.Render())
	}
	fmt.Fprint(w, `</div>`)
	fmt.Fprint(w, indexTail)
}

type logsResponse struct {
	Capacity int      `json:"capacity"`
	Lines    []string `json:"lines"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, logsResponse{Capacity: s.logs.Capacity(), Lines: s.logs.Render()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.logs.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if s.conf == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "configuration not available")
		return
	}
	writeJSON(w, s.conf.Sections())
}

type streamEvent struct {
	Seq      uint64             `json:"seq"`
	Severity logbuffer.Severity `json:"severity"`
	HTML     string             `json:"html"`
}

func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastSeq, err := lastEventID(r)
	if err != nil {
		http.Error(w, "invalid Last-Event-ID", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat keeps proxies from closing an idle stream
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(s.StreamPollInterval)
	defer pollTicker.Stop()

	sendEntries := func() error {
		for _, entry := range s.logs.EntriesAfter(lastSeq) {
			payload, err := json.Marshal(streamEvent{Seq: entry.Seq, Severity: entry.Severity, HTML: entry.Render()})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", entry.Seq)
			fmt.Fprintf(w, "event: log\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			lastSeq = entry.Seq
		}
		flusher.Flush()
		return nil
	}

	if err := sendEntries(); err != nil {
		s.l.Error("Log stream initial load failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendEntries(); err != nil {
				s.l.Error("Log stream poll failed", zap.Error(err))
				return
			}
		}
	}
}

// lastEventID reads the resume point from the Last-Event-ID header, falling back
// to the lastEventId query parameter for clients that cannot set headers.
func lastEventID(r *http.Request) (uint64, error) {
	raw := strings.TrimSpace(r.Header.Get("Last-Event-ID"))
	if raw == "" {
		raw = r.URL.Query().Get("lastEventId")
	}
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

const indexHead = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>btccmon</title>
  <style>
    body { margin:0; padding:2rem; background:#fff; color:#111; font-family:'Space Mono','JetBrains Mono',monospace; }
    header { display:flex; justify-content:space-between; align-items:center; margin-bottom:1rem; }
    h1 { font-size:1rem; letter-spacing:.2em; text-transform:uppercase; margin:0; }
    button { font-family:inherit; border:2px solid #111; background:#fff; padding:.4rem .9rem; cursor:pointer; box-shadow:4px 4px 0 rgba(0,0,0,.15); }
    #log { border:3px solid #111; padding:1rem; background:#f6f6f6; max-height:80vh; overflow-y:auto; font-size:.75rem; }
    .log-entry { padding:.2rem 0; border-bottom:1px dashed rgba(0,0,0,.1); white-space:pre-wrap; }
    .log-entry.warning { color:#a36b00; }
    .log-entry.error { color:#b00020; font-weight:700; }
  </style>
</head>
<body>
<header>
  <h1>btccmon diagnostic log</h1>
  <div><a href="/config">config</a> <button id="clear">clear</button></div>
</header>
`

const indexTail = `
<script>
  const log = document.getElementById('log');
  const capacity = parseInt(log.dataset.capacity, 10) || 0;
  const lastSeq = log.dataset.lastSeq || '0';

  function append(html) {
    log.insertAdjacentHTML('beforeend', html);
    while (capacity > 0 && log.children.length > capacity) {
      log.removeChild(log.firstElementChild);
    }
    log.scrollTop = log.scrollHeight;
  }

  const source = new EventSource('/logs/stream?lastEventId=' + lastSeq);
  source.addEventListener('log', (ev) => {
    append(JSON.parse(ev.data).html);
  });

  document.getElementById('clear').addEventListener('click', () => {
    fetch('/logs/clear', { method: 'POST' }).then(() => { log.innerHTML = ''; });
  });
</script>
</body>
</html>
`
