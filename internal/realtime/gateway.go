// Package realtime owns the client WebSocket connections: the handshake,
// their lifecycle in the presence registry, and frame delivery.
package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Verifier resolves a connection credential to a user identity.
type Verifier interface {
	VerifyConnectionCredential(token string) (string, error)
}

// Gateway accepts socket connections and implements hub.Transport over them.
//
// A connection is registered in the presence registry exactly once, after a
// successful upgrade, and unregistered exactly once when its read pump exits.
// Rejected handshakes never touch the registry.
type Gateway struct {
	verifier Verifier
	registry *hub.Registry
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	conns   map[string]*Connection
	closing bool
	active  sync.WaitGroup
}

func NewGateway(verifier Verifier, registry *hub.Registry, logger *zap.Logger) *Gateway {
	return &Gateway{
		verifier: verifier,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(zap.String("component", "gateway")),
		conns:  make(map[string]*Connection),
	}
}

var _ hub.Transport = (*Gateway)(nil)

// ServeWS godoc
// @Summary      Open the event socket
// @Description  Upgrades to a WebSocket that receives pushed events as {"event": name, "data": payload} frames.
// @Tags         realtime
// @Param        token query string false "JWT socket token (or Authorization: Bearer header)"
// @Success      101 {string} string "Switching Protocols"
// @Failure      401 {object} handler.ErrorResponse
// @Failure      503 {object} handler.ErrorResponse
// @Router       /socket [get]
func (g *Gateway) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = auth.BearerToken(c.GetHeader("Authorization"))
	}

	userID, err := g.verifier.VerifyConnectionCredential(token)
	if err != nil {
		g.logger.Debug("rejected socket handshake", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	g.mu.RLock()
	closing := g.closing
	g.mu.RUnlock()
	if closing {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server is shutting down"})
		return
	}

	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("failed to upgrade connection", zap.String("userId", userID), zap.Error(err))
		return
	}

	conn := newConnection(userID, ws, g.logger)
	if !g.activate(conn) {
		conn.Close()
		return
	}

	go conn.writePump()
	go conn.readPump(g.deactivate)
}

func (g *Gateway) activate(conn *Connection) bool {
	g.mu.Lock()
	if g.closing {
		g.mu.Unlock()
		return false
	}
	g.conns[conn.ID] = conn
	g.active.Add(1)
	g.mu.Unlock()

	g.registry.Register(conn.UserID, conn.ID)
	g.logger.Info("connection active", zap.String("userId", conn.UserID), zap.String("connId", conn.ID))
	return true
}

// deactivate runs once per activated connection, from its read pump.
func (g *Gateway) deactivate(conn *Connection) {
	g.registry.Unregister(conn.UserID, conn.ID)

	g.mu.Lock()
	delete(g.conns, conn.ID)
	g.mu.Unlock()
	g.active.Done()

	g.logger.Info("connection closed", zap.String("userId", conn.UserID), zap.String("connId", conn.ID))
}

// Send hands frame to the connection without blocking.
func (g *Gateway) Send(connID string, frame []byte) error {
	g.mu.RLock()
	conn, ok := g.conns[connID]
	g.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, connID)
	}
	return conn.Send(frame)
}

// ConnectionCount returns the number of live connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// Shutdown refuses new connections, closes the live ones and waits until each
// has been unregistered or ctx expires.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	conns := make([]*Connection, 0, len(g.conns))
	for _, conn := range g.conns {
		conns = append(conns, conn)
	}
	g.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}

	done := make(chan struct{})
	go func() {
		g.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
