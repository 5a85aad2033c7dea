package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	messageBufferSize = 16
)

// ErrSendBufferFull is returned when a client cannot keep up with broadcasts.
var ErrSendBufferFull = errors.New("client send buffer full")

// ErrConnClosed is returned when sending on a closed connection.
var ErrConnClosed = errors.New("connection closed")

// Conn is a live client connection as seen by the session layer. Send must
// not block on a slow client and Close must be safe to call more than once
// and concurrently with client-side disconnects.
type Conn interface {
	Send(data []byte) error
	Close(reason string)
}

// Client wraps a gorilla websocket connection with a buffered writer
// goroutine, so broadcasts never block on a single slow client.
type Client struct {
	connection  *websocket.Conn
	clock       clockwork.Clock
	sendChannel chan []byte
	doneChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewClient starts the writer goroutine for a freshly upgraded connection.
func NewClient(connection *websocket.Conn, clock clockwork.Clock) *Client {
	c := &Client{
		connection:  connection,
		clock:       clock,
		sendChannel: make(chan []byte, messageBufferSize),
		doneChannel: make(chan struct{}),
	}
	c.configurePongHandler()
	c.wg.Add(1)
	go c.run()
	return c
}

func (c *Client) run() {
	ticker := c.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.wg.Done()

	for {
		select {
		case msg, ok := <-c.sendChannel:
			if !ok {
				return
			}
			c.updateWriteDeadline()
			if err := c.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.Chan():
			c.updateWriteDeadline()
			if err := c.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.doneChannel:
			return
		}
	}
}

// Send queues a message for delivery. It never blocks; a full buffer means
// the client is too slow and the caller decides what to do with it.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.doneChannel:
		return ErrConnClosed
	default:
	}

	select {
	case c.sendChannel <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close sends a close frame with the given reason and tears the connection
// down. Safe to call multiple times and tolerates connections already closed
// from the client side.
func (c *Client) Close(reason string) {
	c.stopOnce.Do(func() {
		// Signal the run goroutine to exit first and wait for it, so the
		// close frame is not written concurrently with a broadcast.
		close(c.doneChannel)
		c.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		c.updateWriteDeadline()
		_ = c.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = c.connection.Close()
	})
}

func (c *Client) configurePongHandler() {
	c.updateReadDeadline()
	c.connection.SetPongHandler(func(string) error {
		c.updateReadDeadline()
		return nil
	})
}

func (c *Client) updateWriteDeadline() {
	_ = c.connection.SetWriteDeadline(c.clock.Now().Add(writeDeadline))
}

func (c *Client) updateReadDeadline() {
	_ = c.connection.SetReadDeadline(c.clock.Now().Add(pongDeadline))
}
