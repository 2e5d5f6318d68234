package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/social-hub/backend/internal/models"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/anonto42/social-hub/backend/pkg/realtime"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	maxFrameSize   = 64 << 10
	replyQueueSize = 16
)

// inboundFrame is a client event; Data is decoded per event name
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SocketHandler serves realtime sessions. Inbound events run the same
// RelationService operations as the REST routes; results reach every
// session through the hub, failures go back to the sender only.
type SocketHandler struct {
	service  *services.RelationService
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewSocketHandler creates a new SocketHandler
func NewSocketHandler(service *services.RelationService, hub *realtime.Hub, logger zerolog.Logger) *SocketHandler {
	return &SocketHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logger.With().Str("component", "socket").Logger(),
	}
}

// RegisterSocketRoutes registers the websocket endpoint at the root
func (h *SocketHandler) RegisterSocketRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) {
	e.GET("/ws", h.Serve, m...)
}

// Serve upgrades the request and runs the session until the client leaves
func (h *SocketHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	s := &socketSession{
		id:      uuid.NewString(),
		conn:    conn,
		replies: make(chan realtime.Event, replyQueueSize),
		done:    make(chan struct{}),
	}
	s.observer = h.hub.Subscribe(s.id)
	log := h.log.With().Str("session", s.id).Logger()
	log.Info().Int("observers", h.hub.Count()).Msg("client connected")

	s.reply(realtime.Event{Name: "connected", Data: echo.Map{"session_id": s.id}})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(log)
	}()

	s.readLoop(c.Request().Context(), h, log)

	h.hub.Unsubscribe(s.observer)
	close(s.done)
	<-writerDone
	conn.Close()
	log.Info().Msg("client disconnected")
	return nil
}

type socketSession struct {
	id       string
	conn     *websocket.Conn
	observer *realtime.Observer
	replies  chan realtime.Event
	done     chan struct{}
}

// reply queues an event for this session only
func (s *socketSession) reply(ev realtime.Event) {
	select {
	case s.replies <- ev:
	case <-s.done:
	default:
	}
}

// writeLoop is the only goroutine writing to the connection
func (s *socketSession) writeLoop(log zerolog.Logger) {
	for {
		var ev realtime.Event
		select {
		case e, ok := <-s.observer.Events():
			if !ok {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			ev = e
		case e := <-s.replies:
			ev = e
		case <-s.done:
			return
		}

		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(ev); err != nil {
			// a broken observer never affects the mutation that produced ev
			log.Debug().Err(err).Str("event", ev.Name).Msg("write failed")
			s.conn.Close() // unblocks readLoop
			return
		}
	}
}

func (s *socketSession) readLoop(ctx context.Context, h *SocketHandler, log zerolog.Logger) {
	s.conn.SetReadLimit(maxFrameSize)
	for {
		var frame inboundFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		if err := h.dispatch(ctx, frame); err != nil {
			log.Info().Err(err).Str("event", frame.Event).Msg("realtime event rejected")
			s.reply(realtime.Event{Name: "error", Data: echo.Map{"event": frame.Event, "message": err.Error()}})
		}
	}
}

var errUnknownEvent = errors.New("unknown event")

// dispatch runs the operation named by frame. Success is broadcast by the service.
func (h *SocketHandler) dispatch(ctx context.Context, frame inboundFrame) error {
	switch frame.Event {
	case "join", "joinGroup":
		var req struct {
			UserID  string `json:"user_id"`
			GroupID string `json:"group_id"`
		}
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := h.service.JoinGroup(ctx, req.UserID, req.GroupID)
		return err

	case "like", "likePost":
		var req struct {
			UserID string `json:"user_id"`
			PostID string `json:"post_id"`
		}
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := h.service.LikePost(ctx, req.UserID, req.PostID)
		return err

	case "postMessage", "sendMessage":
		var req struct {
			GroupID string `json:"group_id"`
			models.CreateGroupMessageRequest
		}
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := h.service.CreateMessage(ctx, models.CreateMessageRequest{
			Kind:    models.MessageKindGroup,
			Target:  req.GroupID,
			Author:  req.Sender,
			Content: req.Content,
		})
		return err

	case "newPost":
		var req models.CreatePostRequest
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := h.service.CreatePost(ctx, req)
		return err

	case "newComment":
		var req struct {
			PostID string `json:"post_id"`
			models.CreateCommentRequest
		}
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := h.service.CreateMessage(ctx, models.CreateMessageRequest{
			Kind:    models.MessageKindComment,
			Target:  req.PostID,
			Author:  req.Author,
			Content: req.Text,
		})
		return err
	}
	return fmt.Errorf("%w %q", errUnknownEvent, frame.Event)
}

func decodeFrame(frame inboundFrame, v any) error {
	if len(frame.Data) == 0 {
		return fmt.Errorf("%s: missing data", frame.Event)
	}
	if err := json.Unmarshal(frame.Data, v); err != nil {
		return fmt.Errorf("%s: invalid data: %w", frame.Event, err)
	}
	return nil
}
