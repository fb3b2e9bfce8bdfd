package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TTRSQ/gdax/domains/exchange"
	"github.com/TTRSQ/gdax/domains/feed"
	iexchange "github.com/TTRSQ/gdax/interface/exchange"
	"github.com/TTRSQ/gdax/src/auth"
	"github.com/gorilla/websocket"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
	verifyPath          = "/users/self/verify"
)

var (
	// ErrNotConnected is returned by writes on a closed client.
	ErrNotConnected = errors.New("websocket not connected")
	// ErrAlreadyConnected is returned by Connect on an open client.
	ErrAlreadyConnected = errors.New("websocket already connected")
)

// FeedError is an error message sent by the feed.
type FeedError struct {
	Message string
	Reason  string
}

func (e *FeedError) Error() string {
	if e.Reason == "" {
		return "feed error: " + e.Message
	}
	return fmt.Sprintf("feed error: %s (%s)", e.Message, e.Reason)
}

// Options of a Client. Zero values take defaults.
type Options struct {
	// Channels to subscribe on connect. Defaults to full; heartbeat is always added.
	Channels     []string
	Logger       *slog.Logger
	Dialer       *websocket.Dialer
	PingInterval time.Duration
	Clock        func() time.Time
}

// Client is a streaming feed client. Handlers run on the read goroutine, one
// message at a time, in arrival order.
type Client struct {
	uri          string
	productIDs   []string
	channels     []string
	signer       *auth.HMACSigner
	dialer       *websocket.Dialer
	logger       *slog.Logger
	pingInterval time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	closing bool

	onMessage []func(feed.Message)
	onError   []func(error)
	onOpen    []func()
	onClose   []func()

	writeMu sync.Mutex
}

// New builds a client for productIDs on uri (production when empty). A nil
// key subscribes unauthenticated.
func New(productIDs []string, uri string, key *iexchange.Key, opts Options) (*Client, error) {
	if len(productIDs) == 0 {
		return nil, errors.New("at least one product id required")
	}
	if uri == "" {
		uri = exchange.DefaultWebsocket()
	}

	c := &Client{
		uri:          uri,
		productIDs:   append([]string(nil), productIDs...),
		channels:     withHeartbeat(opts.Channels),
		dialer:       opts.Dialer,
		logger:       opts.Logger,
		pingInterval: opts.PingInterval,
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("exchange", exchange.Name, "feed", uri)
	if c.pingInterval <= 0 {
		c.pingInterval = defaultPingInterval
	}

	if key != nil {
		signer, err := auth.NewHMACSigner(*key)
		if err != nil {
			return nil, err
		}
		if opts.Clock != nil {
			signer.SetClock(opts.Clock)
		}
		c.signer = signer
	}
	return c, nil
}

func withHeartbeat(channels []string) []string {
	if len(channels) == 0 {
		channels = []string{feed.Full}
	}
	ret := append([]string(nil), channels...)
	for _, ch := range ret {
		if ch == feed.Heartbeat {
			return ret
		}
	}
	return append(ret, feed.Heartbeat)
}

// Channels returns the channels subscribed on connect.
func (c *Client) Channels() []string {
	return append([]string(nil), c.channels...)
}

// OnMessage registers a message handler.
func (c *Client) OnMessage(handler func(feed.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = append(c.onMessage, handler)
}

// OnError registers an error handler.
func (c *Client) OnError(handler func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, handler)
}

// OnOpen registers a handler called after the subscribe request is sent.
func (c *Client) OnOpen(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOpen = append(c.onOpen, handler)
}

// OnClose registers a handler called once per connection when it ends.
func (c *Client) OnClose(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = append(c.onClose, handler)
}

// Connected reports whether a connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect dials the feed and subscribes to the configured products and channels.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.uri, nil)
	if err != nil {
		return fmt.Errorf("[ws][Connect] dial %s: %w", c.uri, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.closing = false
	c.mu.Unlock()

	if err := c.write(ctx, c.request("subscribe", c.productIDs, c.channels)); err != nil {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("[ws][Connect] subscribe: %w", err)
	}
	c.logger.Info("feed connected", "product_ids", c.productIDs, "channels", c.channels, "authenticated", c.signer != nil)

	for _, h := range c.openHandlers() {
		h()
	}

	done := make(chan struct{})
	go c.readLoop(conn, done)
	go c.pingLoop(conn, done)
	return nil
}

// Subscribe adds products/channels on the open connection.
func (c *Client) Subscribe(ctx context.Context, productIDs, channels []string) error {
	return c.write(ctx, c.request("subscribe", productIDs, channels))
}

// Unsubscribe removes products/channels on the open connection.
func (c *Client) Unsubscribe(ctx context.Context, productIDs, channels []string) error {
	return c.write(ctx, c.request("unsubscribe", productIDs, channels))
}

// Disconnect sends a close frame and closes the connection. Close handlers
// run on the read goroutine once it exits.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.closing = true
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	if closeErr := conn.Close(); err == nil {
		err = closeErr
	}
	c.logger.Info("feed disconnected")
	return err
}

func (c *Client) request(typ string, productIDs, channels []string) feed.Request {
	req := feed.Request{
		Type:       typ,
		ProductIDs: productIDs,
		Channels:   channels,
	}
	if c.signer != nil {
		req.Timestamp = c.signer.Timestamp()
		req.Signature = c.signer.Sign(req.Timestamp, "GET", verifyPath, nil)
		req.Key = c.signer.Key()
		req.Passphrase = c.signer.Passphrase()
	}
	return req
}

func (c *Client) write(ctx context.Context, v interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	deadline := time.Now().Add(writeWait)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	conn.SetWriteDeadline(deadline)
	return conn.WriteJSON(v)
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		close(done)
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close()
		for _, h := range c.closeHandlers() {
			h()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !c.isClosing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.emitError(fmt.Errorf("[ws][read] %w", err))
			}
			return
		}

		msg, err := feed.Decode(data)
		if err != nil {
			c.emitError(fmt.Errorf("[ws][decode] %w [raw: %s]", err, string(data)))
			continue
		}
		if msg.Type == feed.TypeError {
			c.emitError(&FeedError{Message: msg.Message, Reason: msg.Reason})
			continue
		}
		for _, h := range c.messageHandlers() {
			h(msg)
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("keepalive ping failed", "error", err)
			}
		}
	}
}

func (c *Client) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

func (c *Client) emitError(err error) {
	handlers := c.errorHandlers()
	if len(handlers) == 0 {
		c.logger.Error("feed error", "error", err)
		return
	}
	for _, h := range handlers {
		h(err)
	}
}

func (c *Client) messageHandlers() []func(feed.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(([]func(feed.Message))(nil), c.onMessage...)
}

func (c *Client) errorHandlers() []func(error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(([]func(error))(nil), c.onError...)
}

func (c *Client) openHandlers() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(([]func())(nil), c.onOpen...)
}

func (c *Client) closeHandlers() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(([]func())(nil), c.onClose...)
}

var _ iexchange.Stream = (*Client)(nil)
