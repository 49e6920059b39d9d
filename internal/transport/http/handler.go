package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"entalk-deck-service/internal/app"
	"entalk-deck-service/internal/domain"
)

// Handler exposes the deck and feedback use cases over REST.
type Handler struct {
	service *app.DeckService
}

func NewHandler(service *app.DeckService) *Handler {
	return &Handler{service: service}
}

// Register wires the REST routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/decks/generate/{locationId}", h.generateDeck)
	mux.HandleFunc("GET /api/decks/{accessCode}", h.getDeck)
	mux.HandleFunc("POST /api/feedback", h.recordFeedback)
	mux.HandleFunc("GET /api/feedback/{eventId}", h.eventStats)
}

type deckResponse struct {
	AccessCode string            `json:"accessCode"`
	EventID    string            `json:"eventId"`
	Questions  []domain.Question `json:"questions"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func (h *Handler) generateDeck(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("locationId")
	var body struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.EventID == "" {
		writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}

	deck, questions, err := h.service.GenerateDeck(r.Context(), body.EventID, locationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deckResponse{
		AccessCode: deck.AccessCode,
		EventID:    deck.EventID,
		Questions:  questions,
		CreatedAt:  deck.CreatedAt,
	})
}

func (h *Handler) getDeck(w http.ResponseWriter, r *http.Request) {
	deck, questions, err := h.service.GetDeck(r.Context(), r.PathValue("accessCode"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deckResponse{
		AccessCode: deck.AccessCode,
		EventID:    deck.EventID,
		Questions:  questions,
		CreatedAt:  deck.CreatedAt,
	})
}

func (h *Handler) recordFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccessCode    string `json:"accessCode"`
		QuestionID    string `json:"questionId"`
		LocationID    string `json:"locationId"`
		Kind          string `json:"kind"`
		ParticipantID string `json:"participantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.AccessCode == "" || body.QuestionID == "" || body.Kind == "" {
		writeError(w, http.StatusBadRequest, "accessCode, questionId, and kind are required")
		return
	}

	summary, err := h.service.RecordFeedback(r.Context(), body.AccessCode, domain.Feedback{
		QuestionID:    body.QuestionID,
		LocationID:    body.LocationID,
		Kind:          domain.FeedbackKind(body.Kind),
		ParticipantID: body.ParticipantID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *Handler) eventStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.EventStats(r.Context(), r.PathValue("eventId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDeckNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidFeedback):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
