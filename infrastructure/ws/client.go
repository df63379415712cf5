package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"personal-chat/domain"
	"personal-chat/domain/event"
	"personal-chat/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client owns one websocket session: a read pump decoding inbound
// frames into chat service calls, and a write pump draining the
// connection's sink. The connection id lives exactly as long as the
// session and is never persisted.
type Client struct {
	log     *slog.Logger
	conn    *websocket.Conn
	connID  domain.ConnectionID
	sink    *Sink
	service services.IChatService
}

func NewClient(log *slog.Logger, conn *websocket.Conn, service services.IChatService, bufferSize int) *Client {
	connID := domain.ConnectionID(uuid.NewString())
	return &Client{
		log:     log.With("connection", connID),
		conn:    conn,
		connID:  connID,
		sink:    NewSink(log, bufferSize),
		service: service,
	}
}

// Run drives both pumps and blocks until the connection dies. Cleanup
// of presence and room memberships happens exactly once, on the way
// out, regardless of how the connection ended.
func (c *Client) Run(ctx context.Context) {
	defer c.service.Disconnect(c.connID)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(sessionCtx)
	c.readPump(sessionCtx)
}

func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadEnd(err)
			return
		}

		var frame Frame
		if err = json.Unmarshal(data, &frame); err != nil {
			c.log.Warn("dropping malformed frame", "error", err)
			continue
		}
		c.dispatch(ctx, frame)
	}
}

// dispatch routes one inbound frame. Invalid events are dropped after
// logging; the core never sends explicit error events back.
func (c *Client) dispatch(ctx context.Context, frame Frame) {
	switch frame.Event {
	case EventAnnouncePresence:
		var payload announcePayload
		if !c.decode(frame, &payload) {
			return
		}
		c.service.AnnouncePresence(c.connID, payload.Identity, payload.DisplayName, c.sink)

	case EventWatchPresence:
		snapshot := c.service.WatchPresence(c.connID, c.sink)
		// The new watcher gets the current snapshot immediately,
		// without waiting for the next presence change.
		_ = c.sink.Consume(ctx, event.PresenceChanged{Entries: snapshot})

	case EventLogout:
		c.service.Logout(c.connID)

	case EventJoinConversation:
		var payload joinPayload
		if !c.decode(frame, &payload) {
			return
		}
		c.service.JoinConversation(c.connID, payload.IdentityA, payload.IdentityB, c.sink)

	case EventSendMessage:
		var payload sendPayload
		if !c.decode(frame, &payload) {
			return
		}
		if _, err := c.service.Send(ctx, payload.Sender, payload.Recipient, payload.Body, payload.File); err != nil {
			c.log.Debug("send rejected", "error", err)
		}

	case EventDeleteMessage:
		var payload deletePayload
		if !c.decode(frame, &payload) {
			return
		}
		messageID, err := uuid.Parse(payload.MessageID)
		if err != nil {
			c.log.Warn("dropping delete with malformed message id", "error", err)
			return
		}
		if err = c.service.Delete(ctx, messageID, payload.RequesterIdentity); err != nil {
			c.log.Debug("delete rejected", "error", err)
		}

	default:
		c.log.Warn(fmt.Sprintf("Unknown event %q, dropping frame", frame.Event))
	}
}

func (c *Client) decode(frame Frame, target any) bool {
	if err := json.Unmarshal(frame.Payload, target); err != nil {
		c.log.Warn("dropping frame with malformed payload", "event", frame.Event, "error", err)
		return false
	}
	return true
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case evt := <-c.sink.Events():
			data, err := EncodeEvent(evt)
			if err != nil {
				c.log.Error("failed to encode outbound event", "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("write failed, closing connection", "error", err)
				_ = c.conn.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (c *Client) logReadEnd(err error) {
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Debug("client disconnected", "reason", err)
	case errors.Is(err, io.EOF):
		c.log.Debug("connection closed")
	default:
		c.log.Warn("websocket read error", "error", err)
	}
}
