package stream

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "race:"
	channelSuffix = ":frames"
)

// Hub fans race frames out to the websocket clients watching a session.
// With Redis configured, frames are published to race:{session}:frames and
// every replica delivers them from its pattern subscription; otherwise they
// go straight to local clients.
type Hub struct {
	redis   *redis.Client
	logger  *log.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	cancel  context.CancelFunc
	done    chan struct{}
}

type Client struct {
	SessionID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	h := &Hub{
		logger:  logger,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		pubsub := redisClient.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
		if _, err := pubsub.Receive(ctx); err != nil {
			logger.Warn("redis subscribe failed, serving local clients only", "err", err)
			_ = pubsub.Close()
			cancel()
			return h
		}
		h.redis = redisClient
		h.cancel = cancel
		h.done = make(chan struct{})
		go h.relay(ctx, pubsub)
	}
	return h
}

func (h *Hub) Register(sessionID string) *Client {
	client := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessionClients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := sessionClients[client]; !ok {
		return
	}
	delete(sessionClients, client)
	if len(sessionClients) == 0 {
		delete(h.clients, client.SessionID)
	}
	close(client.Send)
}

// Clients reports how many websocket clients watch sessionID on this replica.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) Broadcast(sessionID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(sessionID), payload).Err()
		if err == nil {
			return
		}
		h.logger.Error("redis publish failed, delivering locally", "session", sessionID, "err", err)
	}
	h.deliver(sessionID, payload)
}

// Close stops the Redis relay. Registered clients are left to their handlers.
func (h *Hub) Close() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[sessionID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Debug("dropping frame for slow client", "session", sessionID)
		}
	}
}

func (h *Hub) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer close(h.done)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			sessionID := sessionIDFromChannel(msg.Channel)
			if sessionID == "" {
				continue
			}
			h.deliver(sessionID, []byte(msg.Payload))
		case <-ctx.Done():
			return
		}
	}
}

func redisChannel(sessionID string) string {
	return channelPrefix + sessionID + channelSuffix
}

func sessionIDFromChannel(ch string) string {
	// race:{session}:frames
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
