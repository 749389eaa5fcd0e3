package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

const shutdownTimeout = 5 * time.Second

// WebsocketListener serves game sessions on /ws and the room status on /status.
type WebsocketListener struct {
	addr     string
	cm       *ConnectionManager
	upgrader websocket.Upgrader

	wg sync.WaitGroup
}

func NewWebsocketListener(addr string, cm *ConnectionManager) *WebsocketListener {
	return &WebsocketListener{
		addr: addr,
		cm:   cm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use (another server running?)", l.addr)
		}
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	slog.InfoContext(ctx, "listening for websocket", "addr", ln.Addr().String())

	// Sessions outlive ctx so they can leave the room cleanly on shutdown.
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()

	svr := &http.Server{
		Handler:           l.Handler(connCtx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := svr.Shutdown(sctx); err != nil {
				slog.WarnContext(ctx, "shutting down websocket server", "error", err)
			}
			cancelConns()
		case <-done:
		}
	}()

	err = svr.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		l.wg.Wait()
		return nil
	}
	return fmt.Errorf("serving websocket on %s: %w", l.addr, err)
}

// Handler routes the session and status endpoints. Sessions run under ctx.
func (l *WebsocketListener) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		l.wg.Add(1)
		defer l.wg.Done()

		conn, err := l.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.DebugContext(ctx, "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer func() {
			if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				slog.DebugContext(ctx, "closing websocket connection", "error", err)
			}
		}()

		l.cm.AcceptConnection(ctx, conn)
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(l.cm.room.Status()); err != nil {
			slog.WarnContext(r.Context(), "writing status", "error", err)
		}
	})
	return mux
}
