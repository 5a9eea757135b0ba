// Package server serves the viewer frontend, the WebSocket feed and a small
// JSON API.
package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/soar/padview/internal/gamepad"
	"github.com/soar/padview/internal/hub"
)

// Players is what the server needs from the gamepad reader.
type Players interface {
	hub.PlayerController
	Frames() []gamepad.Frame
}

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	players     Players
	frontendFS  fs.FS
	addr        string
	logger      *slog.Logger
	baseCtx     context.Context
	stop        context.CancelFunc

	mu         sync.Mutex
	httpServer *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, p Players, frontendFS fs.FS, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Server{
		hub:         h,
		broadcaster: b,
		players:     p,
		frontendFS:  frontendFS,
		addr:        addr,
		logger:      logger,
		baseCtx:     ctx,
		stop:        stop,
	}
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return m
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/players", s.handlePlayers)
	mux.Handle("/", newMinifier().Middleware(http.FileServer(http.FS(s.frontendFS))))
	return mux
}

// ListenAndServe blocks until the server stops. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and ends client sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("shutting down HTTP server")
	return srv.Shutdown(ctx)
}
