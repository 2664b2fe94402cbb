package conversation

import (
	"context"
	"net/http"
	"time"

	"claridx/internal/common"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	outboundBuffer = 64
)

type clientFrame struct {
	Type      string `json:"type"`
	PatientID string `json:"patient_id,omitempty"`
}

type stateFrame struct {
	Type      string `json:"type"`
	State     State  `json:"state"`
	PatientID string `json:"patient_id,omitempty"`
}

type messagesFrame struct {
	Type      string             `json:"type"`
	PatientID string             `json:"patient_id"`
	Messages  []ProjectedMessage `json:"messages"`
}

type errorFrame struct {
	Type      string `json:"type"`
	PatientID string `json:"patient_id,omitempty"`
	Error     string `json:"error"`
}

// Stream upgrades to a WebSocket and drives a View for the caller. The
// client selects a conversation with {"type":"select","patient_id":...},
// re-reads it with {"type":"refresh"} and drops it with {"type":"clear"}.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	principal, ok := common.PrincipalFrom(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("authorization required"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("account_id", principal.AccountID), zap.Error(err))
		return
	}

	if h.sessions != nil && principal.SessionID != "" {
		stop, err := h.sessions.WatchSession(principal.SessionID, func() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended"),
				time.Now().Add(writeWait))
			_ = conn.Close()
		})
		if err != nil {
			h.log.Warn("cannot watch session, socket will outlive sign-out", zap.Error(err))
		} else {
			defer stop()
		}
	}

	s := &streamSession{
		conn:      conn,
		principal: principal,
		access:    h.access,
		log:       h.log.With(zap.String("account_id", principal.AccountID)),
		out:       make(chan interface{}, outboundBuffer),
		revoked:   make(chan string, 1),
	}
	s.run(h.svc)
}

type streamSession struct {
	conn      *websocket.Conn
	principal *common.Principal
	access    AccessChecker
	log       *zap.Logger
	out       chan interface{}
	revoked   chan string
}

// guardedSource re-checks access before every read, so a viewer who loses
// a conversation stops receiving it on the next refresh or change.
type guardedSource struct {
	Source
	access AccessChecker
	viewer *common.Principal
}

func (g guardedSource) Fetch(ctx context.Context, conversationID, viewerID string) ([]ProjectedMessage, error) {
	if _, err := g.access.CanAccess(ctx, g.viewer, conversationID); err != nil {
		return nil, err
	}
	return g.Source.Fetch(ctx, conversationID, viewerID)
}

func (s *streamSession) run(src Source) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guarded := guardedSource{Source: src, access: s.access, viewer: s.principal}
	view := NewView(ctx, guarded, s.principal.AccountID, s, s.log)

	done := make(chan struct{})
	go s.writeLoop(done)

	cleared := make(chan struct{})
	go s.clearRevoked(view, cleared)

	s.readLoop(ctx, view)

	// the view stops calling the sink once Close returns
	view.Close()
	close(s.revoked)
	<-cleared
	close(s.out)
	<-done
	_ = s.conn.Close()
	s.log.Debug("websocket closed")
}

// clearRevoked drops a selection whose access was withdrawn. It runs apart
// from the sink because a sink must not call back into its View.
func (s *streamSession) clearRevoked(view *View, done chan<- struct{}) {
	defer close(done)
	for conversationID := range s.revoked {
		if _, selected := view.State(); selected == conversationID {
			s.log.Info("access withdrawn, clearing selection", zap.String("conversation_id", conversationID))
			view.Clear()
		}
	}
}

func (s *streamSession) readLoop(ctx context.Context, view *View) {
	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame clientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		switch frame.Type {
		case "select":
			if _, err := s.access.CanAccess(ctx, s.principal, frame.PatientID); err != nil {
				s.push(errorFrame{Type: "error", PatientID: frame.PatientID, Error: common.PublicMessage(err)})
				continue
			}
			view.Select(frame.PatientID)
		case "refresh":
			view.Refresh()
		case "clear":
			view.Clear()
		default:
			s.push(errorFrame{Type: "error", Error: "unknown frame type"})
		}
	}
}

func (s *streamSession) writeLoop(done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	broken := false
	for {
		select {
		case frame, ok := <-s.out:
			if !ok {
				if !broken {
					_ = s.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(writeWait))
				}
				return
			}
			if broken {
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(frame); err != nil {
				s.log.Warn("websocket write failed", zap.Error(err))
				broken = true
				// unblocks readLoop
				_ = s.conn.Close()
			}
		case <-ticker.C:
			if broken {
				continue
			}
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.log.Warn("websocket ping failed", zap.Error(err))
				broken = true
				_ = s.conn.Close()
			}
		}
	}
}

// push never blocks; a slow client loses frames rather than stalling the
// View. The next change or refresh sends the full list again.
func (s *streamSession) push(frame interface{}) {
	select {
	case s.out <- frame:
	default:
		s.log.Warn("websocket outbound buffer full, dropping frame")
	}
}

func (s *streamSession) StateChanged(state State, conversationID string) {
	s.push(stateFrame{Type: "state", State: state, PatientID: conversationID})
}

func (s *streamSession) MessagesChanged(conversationID string, messages []ProjectedMessage) {
	if messages == nil {
		messages = []ProjectedMessage{}
	}
	s.push(messagesFrame{Type: "messages", PatientID: conversationID, Messages: messages})
}

func (s *streamSession) FetchFailed(conversationID string, err error) {
	s.push(errorFrame{Type: "error", PatientID: conversationID, Error: common.PublicMessage(err)})
	if !common.IsForbidden(err) {
		return
	}
	select {
	case s.revoked <- conversationID:
	default:
	}
}
