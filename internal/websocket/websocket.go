package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/ldtab/internal/auth"
	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
	"github.com/abrezinsky/ldtab/internal/services"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second
	loadTimeout = 5 * time.Second
	sendBuffer  = 256
)

// Message types pushed to clients
const (
	TypeSnapshot  = "snapshot"
	TypeStandings = "standings"
	TypeError     = "error"
)

// Message types accepted from clients
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the JSON API
	},
}

// Snapshots reads whole collections for a tournament
type Snapshots interface {
	Snapshot(ctx context.Context, tournamentID, userID string, collection repository.Collection) (interface{}, error)
	All(ctx context.Context, tournamentID, userID string) (map[repository.Collection]interface{}, error)
}

// Standings recomputes a tournament's standings
type Standings interface {
	StandingsFor(ctx context.Context, tournamentID string) ([]models.DebaterStats, error)
}

// Profiles resolves the session's profile, whose tournament is the only one it may follow
type Profiles interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Gauge tracks connected clients
type Gauge interface {
	ClientConnected()
	ClientDisconnected()
}

// SnapshotPayload carries the full current member set of one collection
type SnapshotPayload struct {
	TournamentID string                `json:"tournament_id"`
	Collection   repository.Collection `json:"collection"`
	Records      interface{}           `json:"records"`
}

// StandingsPayload carries recomputed standings
type StandingsPayload struct {
	TournamentID string                `json:"tournament_id"`
	Standings    []models.DebaterStats `json:"standings"`
}

type subscribePayload struct {
	TournamentID string `json:"tournament_id"`
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of active clients. Each client follows at most one tournament.
type Hub struct {
	log        logger.Logger
	watcher    repository.Watcher
	profiles   Profiles
	snapshots  Snapshots
	standings  Standings
	gauge      Gauge
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan models.WSMessage
	userID string

	mu     sync.Mutex
	sub    *repository.Subscription
	closed bool
}

// New creates a new Hub instance with injected dependencies. gauge may be nil.
func New(log logger.Logger, watcher repository.Watcher, profiles Profiles, snapshots Snapshots, standings Standings, gauge Gauge) *Hub {
	return &Hub{
		log:        log,
		watcher:    watcher,
		profiles:   profiles,
		snapshots:  snapshots,
		standings:  standings,
		gauge:      gauge,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start begins the hub's main loop in a goroutine. Cancelling ctx disconnects every client.
func (h *Hub) Start(ctx context.Context) {
	go h.run(ctx)
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			if h.gauge != nil {
				h.gauge.ClientConnected()
			}
			h.log.Debug("Client connected", "user", client.userID, "total_clients", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			if ok {
				client.shutdown()
				if h.gauge != nil {
					h.gauge.ClientDisconnected()
				}
				h.log.Debug("Client disconnected", "user", client.userID, "total_clients", total)
			}

		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.shutdown()
				if h.gauge != nil {
					h.gauge.ClientDisconnected()
				}
			}
			h.mutex.Unlock()
			h.log.Info("WebSocket hub stopped")
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// shutdown cancels the subscription and closes the send channel exactly once
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	close(c.send)
}

// subscribe replaces the client's subscription and starts pushing the new tournament.
// A tournament the client's profile does not belong to leaves it unsubscribed.
func (c *Client) subscribe(tournamentID string) {
	tournamentID = services.NormalizeCode(tournamentID)
	allowed := tournamentID != "" && c.member(tournamentID)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	if tournamentID == "" {
		c.mu.Unlock()
		return
	}
	if !allowed {
		c.mu.Unlock()
		c.hub.log.Warn("Subscription rejected", "user", c.userID, "tournament", tournamentID)
		c.push(nil, models.WSMessage{
			Type:    TypeError,
			Payload: map[string]string{"tournament_id": tournamentID, "message": "not a member of this tournament"},
		})
		return
	}
	sub := c.hub.watcher.Subscribe(tournamentID)
	c.sub = sub
	c.mu.Unlock()

	c.hub.log.Debug("Client subscribed", "user", c.userID, "tournament", tournamentID)
	go c.follow(sub)
}

// member reports whether the client's profile belongs to tournamentID
func (c *Client) member(tournamentID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	p, err := c.hub.profiles.Get(ctx, c.userID)
	if err != nil {
		return false
	}
	return p.TournamentID == tournamentID
}

// follow sends the initial state, then one snapshot per change until sub is closed
func (c *Client) follow(sub *repository.Subscription) {
	tid := sub.TournamentID()
	c.pushInitial(sub, tid)
	for change := range sub.C() {
		c.pushCollection(sub, tid, change.Collection)
		switch change.Collection {
		case repository.CollectionDebates, repository.CollectionResults, repository.CollectionProfiles:
			c.pushStandings(sub, tid)
		}
	}
}

func (c *Client) pushInitial(sub *repository.Subscription, tid string) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	all, err := c.hub.snapshots.All(ctx, tid, c.userID)
	if err != nil {
		c.pushError(sub, tid, err)
		return
	}
	for _, col := range repository.AllCollections {
		c.push(sub, models.WSMessage{
			Type:    TypeSnapshot,
			Payload: SnapshotPayload{TournamentID: tid, Collection: col, Records: all[col]},
		})
	}
	c.pushStandings(sub, tid)
}

func (c *Client) pushCollection(sub *repository.Subscription, tid string, col repository.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	records, err := c.hub.snapshots.Snapshot(ctx, tid, c.userID, col)
	if err != nil {
		c.pushError(sub, tid, err)
		return
	}
	c.push(sub, models.WSMessage{
		Type:    TypeSnapshot,
		Payload: SnapshotPayload{TournamentID: tid, Collection: col, Records: records},
	})
}

func (c *Client) pushStandings(sub *repository.Subscription, tid string) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	rows, err := c.hub.standings.StandingsFor(ctx, tid)
	if err != nil {
		c.pushError(sub, tid, err)
		return
	}
	c.push(sub, models.WSMessage{
		Type:    TypeStandings,
		Payload: StandingsPayload{TournamentID: tid, Standings: rows},
	})
}

func (c *Client) pushError(sub *repository.Subscription, tid string, err error) {
	c.hub.log.Warn("Snapshot load failed", "tournament", tid, "user", c.userID, "error", err)
	c.push(sub, models.WSMessage{
		Type:    TypeError,
		Payload: map[string]string{"tournament_id": tid, "message": "could not load tournament data"},
	})
}

// push queues msg if sub is still the client's current subscription.
// A client that cannot keep up is disconnected.
func (c *Client) push(sub *repository.Subscription, msg models.WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.sub != sub {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.hub.log.Warn("Client send buffer full, disconnecting", "user", c.userID)
		c.conn.Close()
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debug("Ignoring malformed message", "user", c.userID, "error", err)
			continue
		}
		switch msg.Type {
		case TypeSubscribe:
			var p subscribePayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				c.hub.log.Debug("Ignoring malformed subscribe", "user", c.userID, "error", err)
				continue
			}
			c.subscribe(p.TournamentID)
		case TypeUnsubscribe:
			c.subscribe("")
		default:
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Encoding websocket message", "type", message.Type, "error", err)
				w.Close()
				continue
			}
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades an authenticated request. A tournament query parameter
// subscribes the client straight away.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan models.WSMessage, sendBuffer),
		userID: claims.UserID(),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	if tid := r.URL.Query().Get("tournament"); tid != "" {
		client.subscribe(tid)
	}
}
