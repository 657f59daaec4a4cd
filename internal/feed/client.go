// Package feed streams face and body predictions from a landmark detector
// service over WebSocket.
package feed

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/hologram/internal/body"
)

// ErrNotConnected is returned by Detect while the stream is down.
var ErrNotConnected = errors.New("detector not connected")

var (
	_ body.Detector  = (*Client)(nil)
	_ body.Connector = (*Client)(nil)
)

const (
	defaultBackoff    = 3 * time.Second
	defaultMaxBackoff = 60 * time.Second
)

type bodyResult struct {
	pred *body.Prediction
	err  error
}

// Client connects to the detector's WebSocket stream. Face predictions are
// pushed by the detector; body predictions are requested with Detect.
type Client struct {
	url    string
	logger zerolog.Logger

	backoff    time.Duration
	maxBackoff time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	sequence  int64
	pending   map[int64]chan bodyResult
	cancel    context.CancelFunc

	writeMu sync.Mutex

	// Callbacks
	onFace       func(*FaceEvent)
	onFaceLost   func()
	onConnection func(connected bool)
}

// NewClient creates a new detector stream client. rawURL may use the ws,
// wss, http or https scheme.
func NewClient(rawURL string, logger zerolog.Logger) *Client {
	return &Client{
		url:        rawURL,
		logger:     logger.With().Str("component", "feed").Logger(),
		backoff:    defaultBackoff,
		maxBackoff: defaultMaxBackoff,
		pending:    make(map[int64]chan bodyResult),
	}
}

// SetBackoff sets the reconnect delay range.
func (c *Client) SetBackoff(initial, maxDelay time.Duration) {
	c.backoff = initial
	c.maxBackoff = maxDelay
}

// SetFaceCallback sets the callback for face predictions. It runs on the
// read goroutine and must not block.
func (c *Client) SetFaceCallback(cb func(*FaceEvent)) {
	c.onFace = cb
}

// SetFaceLostCallback sets the callback for lost face tracking
func (c *Client) SetFaceLostCallback(cb func()) {
	c.onFaceLost = cb
}

// SetConnectionCallback sets the callback for connection changes
func (c *Client) SetConnectionCallback(cb func(connected bool)) {
	c.onConnection = cb
}

// Connect starts connecting in the background and keeps reconnecting until
// ctx is done or Disconnect is called.
func (c *Client) Connect(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.connectLoop(ctx)
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Detect requests body landmarks for frame and waits for the answer.
func (c *Client) Detect(ctx context.Context, frame body.Frame) (*body.Prediction, error) {
	c.mu.Lock()
	if !c.connected || c.conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn := c.conn
	c.sequence++
	seq := c.sequence
	ch := make(chan bodyResult, 1)
	c.pending[seq] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, seq)
		c.mu.Unlock()
	}()

	msg := WSBodyRequest{Type: TypeBodyRequest, Sequence: seq}
	if len(frame.Image) > 0 {
		msg.Data = base64.StdEncoding.EncodeToString(frame.Image)
		msg.MimeType = "image/jpeg"
	}
	if !frame.Timestamp.IsZero() {
		msg.Timestamp = frame.Timestamp.Format(time.RFC3339Nano)
	}

	c.writeMu.Lock()
	err := conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write body request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.pred, r.err
	}
}

// connectLoop maintains the WebSocket connection with reconnection
func (c *Client) connectLoop(ctx context.Context) {
	backoff := c.backoff
	consecutiveFailures := 0

	for {
		if ctx.Err() != nil {
			return
		}
		connected, err := c.connectWS(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			// Reset backoff after a session that got through the dial
			backoff = c.backoff
			consecutiveFailures = 0
			c.logger.Warn().Err(err).Msg("Detector stream closed, reconnecting")
		} else {
			consecutiveFailures++
			if consecutiveFailures == 3 {
				c.logger.Warn().
					Err(err).
					Int("failures", consecutiveFailures).
					Msg("Detector not available, will retry less frequently")
				backoff = c.maxBackoff
			} else if consecutiveFailures > 3 {
				c.logger.Debug().Int("failures", consecutiveFailures).Msg("Detector still unavailable")
			} else {
				c.logger.Warn().Err(err).Msg("Detector connection failed, reconnecting...")
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if !connected && backoff < c.maxBackoff {
			backoff = min(backoff*2, c.maxBackoff)
		}
	}
}

func (c *Client) streamURL() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// connectWS dials and reads until the connection fails. It reports whether
// the dial succeeded.
func (c *Client) connectWS(ctx context.Context) (bool, error) {
	target, err := c.streamURL()
	if err != nil {
		return false, err
	}

	c.logger.Info().Str("url", target).Msg("Connecting to detector")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}

	c.setConnected(conn)
	defer c.setDisconnected(conn)

	c.logger.Info().Msg("Connected to detector")

	// Unblock the read when ctx ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		c.handleMessage(msg)
	}
}

func (c *Client) setConnected(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if c.onConnection != nil {
		c.onConnection(true)
	}
}

func (c *Client) setDisconnected(conn *websocket.Conn) {
	conn.Close()

	c.mu.Lock()
	c.conn = nil
	c.connected = false
	pending := c.pending
	c.pending = make(map[int64]chan bodyResult)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- bodyResult{err: ErrNotConnected}
	}
	if c.onConnection != nil {
		c.onConnection(false)
	}
}

// handleMessage processes incoming WebSocket messages
func (c *Client) handleMessage(raw json.RawMessage) {
	// First parse to determine message type
	var typeMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &typeMsg); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to parse message type")
		return
	}

	switch typeMsg.Type {
	case TypeFace:
		var msg WSFaceMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse face message")
			return
		}
		if c.onFace != nil {
			c.onFace(decodeFace(&msg, time.Now()))
		}

	case TypeFaceLost:
		if c.onFaceLost != nil {
			c.onFaceLost()
		}

	case TypeBody:
		var msg WSBodyMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse body message")
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[msg.Sequence]
		delete(c.pending, msg.Sequence)
		c.mu.Unlock()
		if !ok {
			c.logger.Debug().Int64("sequence", msg.Sequence).Msg("Unexpected body result")
			return
		}
		if msg.Error != "" {
			ch <- bodyResult{err: fmt.Errorf("detector: %s", msg.Error)}
			return
		}
		ch <- bodyResult{pred: decodeBody(&msg)}

	case TypeError:
		var msg WSErrorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse error message")
			return
		}
		c.logger.Warn().Str("message", msg.Message).Msg("Detector error")

	default:
		c.logger.Debug().Str("type", typeMsg.Type).Msg("Unknown message type")
	}
}
