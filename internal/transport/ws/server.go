package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blockworld.dev/internal/protocol"
	"blockworld.dev/internal/sim/sandbox"
)

// Host is the side of sandbox.Host the transport needs.
type Host interface {
	Inbox() chan<- sandbox.ActionEnvelope
	Join() chan<- sandbox.JoinRequest
	Leave() chan<- string
}

type Server struct {
	host Host
	log  *log.Logger

	upgrader websocket.Upgrader
	// QueueSize is the per-session outbound buffer, in messages.
	QueueSize int
}

func NewServer(h Host, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		host: h,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		QueueSize: 16,
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAct {
				continue
			}
			var act protocol.ActMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				continue
			}
			if act.ProtocolVersion != protocol.Version {
				s.rejectAct(out, act.ActID, protocol.ErrProtoVersion, "protocol_version must be "+protocol.Version)
				continue
			}
			if err := protocol.Validate(protocol.TypeAct, msg); err != nil {
				s.rejectAct(out, act.ActID, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			select {
			case s.host.Inbox() <- sandbox.ActionEnvelope{SessionID: sessionID, Act: act}:
			case <-ctx.Done():
			}
		}

		s.host.Leave() <- sessionID
		s.log.Printf("session %s closed", sessionID)
	}
}

func (s *Server) rejectAct(out chan []byte, actID, code, message string) {
	b, err := json.Marshal(protocol.ActResultMsg{
		Type:            protocol.TypeActResult,
		ProtocolVersion: protocol.Version,
		ActID:           actID,
		OK:              false,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", nil
	}
	if base.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", nil
	}
	if err := protocol.Validate(protocol.TypeHello, msg); err != nil {
		closeWith(conn, "bad HELLO")
		return "", nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}

	queue := s.QueueSize
	if queue <= 0 {
		queue = 16
	}
	out = make(chan []byte, queue)
	sessionID = uuid.NewString()

	respCh := make(chan sandbox.JoinResponse, 1)
	s.host.Join() <- sandbox.JoinRequest{
		SessionID: sessionID,
		Name:      strings.TrimSpace(hello.ClientName),
		Role:      hello.Role,
		Out:       out,
		Resp:      respCh,
	}
	var resp sandbox.JoinResponse
	select {
	case resp = <-respCh:
	case <-time.After(5 * time.Second):
		closeWith(conn, "join timeout")
		s.host.Leave() <- sessionID
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.host.Leave() <- sessionID
		return "", nil
	}
	s.log.Printf("session %s joined name=%q role=%s", sessionID, hello.ClientName, resp.Welcome.Role)
	return sessionID, out
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
