package http

import (
	"encoding/json"
	"log"
	"net/http"

	"entalk-deck-service/internal/app"
	"entalk-deck-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams live feedback tallies for a deck: participants send
// swipes over the socket, organizers watching the same deck receive updated
// tallies after every swipe.
type WSHandler struct {
	service  *app.DeckService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.DeckService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type feedbackPayload struct {
	QuestionID string `json:"questionId"`
	Kind       string `json:"kind"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the deck
// feedback use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	accessCode := r.URL.Query().Get("accessCode")
	participantID := r.URL.Query().Get("participantId")
	locationID := r.URL.Query().Get("locationId")
	if accessCode == "" {
		http.Error(w, "missing accessCode", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	deck, questions, err := h.service.GetDeck(r.Context(), accessCode)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), accessCode)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// A single writer goroutine owns the connection; everything else goes
	// through send to avoid concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// The deck goes out before any tally snapshot.
	send <- outboundMessage[any]{Type: "deck", Payload: deckResponse{
		AccessCode: deck.AccessCode,
		EventID:    deck.EventID,
		Questions:  questions,
		CreatedAt:  deck.CreatedAt,
	}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "tallies", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "feedback":
			var payload feedbackPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid feedback payload"}}
				continue
			}
			summary, err := h.service.RecordFeedback(r.Context(), accessCode, domain.Feedback{
				QuestionID:    payload.QuestionID,
				LocationID:    locationID,
				Kind:          domain.FeedbackKind(payload.Kind),
				ParticipantID: participantID,
			})
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "feedbackResult", Payload: summary}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
