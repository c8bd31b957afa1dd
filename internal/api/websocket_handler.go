package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

const (
	websocketReadBufferSize        = 1024
	websocketWriteBufferSize       = 1024
	websocketSendChannelBufferSize = 256
	websocketWriteWait             = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  websocketReadBufferSize,
	WriteBufferSize: websocketWriteBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

//go:generate mockery --name EventSubscriber --output ../mocks
type EventSubscriber interface {
	Subscribe(ctx context.Context, tenantID string, callback func(*dto.ExpenseEvent)) error
}

// Client is one websocket connection streaming a single tenant's events.
type Client struct {
	conn     *websocket.Conn
	tenantID string
	send     chan []byte
	ctx      context.Context
	cancel   context.CancelFunc
}

// WebSocketHandler streams expense events to clients. Each client is fixed to
// the tenant its upgrade request was bound to.
type WebSocketHandler struct {
	*BaseHandler
	subscriber EventSubscriber
	tenants    TenantReporter
	logger     *logger.Logger

	mutex   sync.RWMutex
	clients map[*Client]struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewWebSocketHandler(subscriber EventSubscriber, tenants TenantReporter, logger *logger.Logger) *WebSocketHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketHandler{
		subscriber: subscriber,
		tenants:    tenants,
		logger:     logger,
		clients:    make(map[*Client]struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// HandleWebSocket godoc
// @Summary Stream expense events
// @Description Upgrade to a websocket receiving the bound tenant's expense events
// @Tags expenses
// @Param X-Tenant header string false "Tenant identifier, defaults to public"
// @Success 101
// @Failure 400 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router /expenses/stream [get]
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	tenantID := h.tenants.CurrentTenant(h.RequestCtx(c))
	if err := domain.ValidateTenantID(tenantID); err != nil {
		h.WriteError(c, err)
		return
	}

	// The hijacked connection outlives the request context.
	ctx, cancel := context.WithCancel(h.ctx)
	client := &Client{
		tenantID: tenantID,
		send:     make(chan []byte, websocketSendChannelBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	if err := h.subscriber.Subscribe(ctx, tenantID, h.deliver(client)); err != nil {
		cancel()
		h.logger.Error("Failed to subscribe websocket client", err, zap.String("tenant", tenantID))
		c.JSON(http.StatusServiceUnavailable, dto.Error{Error: "event stream unavailable"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		h.logger.Warn("Failed to upgrade websocket connection", zap.String("tenant", tenantID), zap.Error(err))
		return
	}
	client.conn = conn
	h.register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Stop disconnects every client and ends their subscriptions.
func (h *WebSocketHandler) Stop() {
	h.cancel()
}

func (h *WebSocketHandler) register(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[client] = struct{}{}
}

func (h *WebSocketHandler) unregister(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, client)
}

// deliver queues an event for client, dropping it when the client is too slow.
func (h *WebSocketHandler) deliver(client *Client) func(*dto.ExpenseEvent) {
	return func(event *dto.ExpenseEvent) {
		if event.TenantID != client.tenantID {
			return
		}
		message, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal expense event", err, zap.String("tenant", client.tenantID))
			return
		}

		select {
		case client.send <- message:
		case <-client.ctx.Done():
		default:
			h.logger.Warn("Dropping event for slow websocket client", zap.String("tenant", client.tenantID))
		}
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	defer client.conn.Close()

	for {
		select {
		case message := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(websocketWriteWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				client.cancel()
				return
			}
		case <-client.ctx.Done():
			_ = client.conn.SetWriteDeadline(time.Now().Add(websocketWriteWait))
			_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		client.cancel()
		h.unregister(client)
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Unexpected websocket close", zap.String("tenant", client.tenantID), zap.Error(err))
			}
			return
		}
	}
}
