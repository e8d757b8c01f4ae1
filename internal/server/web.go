package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/wakesync/wakesync/pkg/logger"
)

// WebServer hosts the WebSocket JSON-RPC endpoint for browser-based UI
// surfaces. Each accepted connection runs its own jrpc2 server over a
// wsChannel and is registered with the notifier for push broadcasts.
type WebServer struct {
	port     int
	secret   string
	log      logger.Logger
	rpc      *RPCServer
	notifier *RPCNotifier
	server   *http.Server
	mu       sync.Mutex
}

func NewWebServer(l logger.Logger, rpc *RPCServer, notifier *RPCNotifier, cfg *RPCConfig) *WebServer {
	return &WebServer{
		port:     cfg.Port,
		secret:   cfg.Secret,
		log:      l,
		rpc:      rpc,
		notifier: notifier,
	}
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("websocket accept: %v", err)
		return
	}

	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(ch)
	s.notifier.Register(srv)
	defer s.notifier.Unregister(srv)

	// Block until the client disconnects or the server stops.
	if err := srv.Wait(); err != nil {
		s.log.Info("websocket client session ended: %v", err)
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", requireToken(s.secret, http.HandlerFunc(s.handleWS)))
	return mux
}

func (s *WebServer) addr() string {
	return fmt.Sprintf("localhost:%d", s.port)
}

func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
