package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"entalk-deck-service/internal/domain"
)

const (
	defaultModel    = "gpt-3.5-turbo"
	defaultTimeout  = 15 * time.Second
	completionsURL  = "https://api.openai.com/v1/chat/completions"
	systemPrompt    = "You are a helpful assistant that generates engaging conversation questions."
	maxOutputTokens = 1000
)

// OpenAIGenerator produces questions through the chat completions API and
// degrades to deterministic templates on any failure, so Generate never
// blocks deck generation on the network and never fails.
type OpenAIGenerator struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback *TemplateGenerator
}

func NewOpenAIGenerator(apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIGenerator{
		apiKey:   apiKey,
		model:    model,
		baseURL:  completionsURL,
		client:   &http.Client{Timeout: timeout},
		fallback: NewTemplateGenerator(),
	}
}

// Generate implements app.QuestionGenerator. Categories and phases are the
// missing sets the gap filler computed; output texts are tagged round-robin
// across them so every missing slot receives a candidate.
func (g *OpenAIGenerator) Generate(ctx context.Context, categories []domain.Category, phases []domain.DeckPhase, count int) []domain.GeneratedQuestion {
	if count <= 0 {
		return nil
	}
	if len(categories) == 0 {
		categories = domain.Categories()
	}
	if len(phases) == 0 {
		phases = domain.DeckPhases()
	}
	if g.apiKey == "" {
		log.Printf("[generator] no API key configured, using template fallback")
		return g.fallback.Generate(ctx, categories, phases, count)
	}

	content, err := g.complete(ctx, buildPrompt(categories, phases, count))
	if err != nil {
		log.Printf("[generator] completion failed, using template fallback: %v", err)
		return g.fallback.Generate(ctx, categories, phases, count)
	}

	result := parseQuestions(content)
	if result.FellBack {
		log.Printf("[generator] response was not a JSON array (%s), extracted %d questions line by line",
			result.Reason, len(result.Questions))
	}
	if len(result.Questions) == 0 {
		log.Printf("[generator] no usable questions in response, using template fallback")
		return g.fallback.Generate(ctx, categories, phases, count)
	}

	out := make([]domain.GeneratedQuestion, 0, count)
	for i, text := range result.Questions {
		if i >= count {
			break
		}
		out = append(out, domain.GeneratedQuestion{
			Text:      text,
			Category:  categories[i%len(categories)],
			DeckPhase: phases[i%len(phases)],
		})
	}
	// Top up from templates when the model returned fewer than asked.
	if len(out) < count {
		out = append(out, g.fallback.Generate(ctx, categories, phases, count-len(out))...)
	}
	return out
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.8,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completions returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildPrompt(categories []domain.Category, phases []domain.DeckPhase, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d engaging conversation questions for English language practice.\n", count)
	b.WriteString("Categories to cover:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "- %s (%s)\n", cat, categoryDescription(cat))
	}
	b.WriteString("Deck phases to cover:\n")
	for _, phase := range phases {
		fmt.Fprintf(&b, "- %s (%s)\n", phase, phaseDescription(phase))
	}
	b.WriteString("Make the questions creative, thought-provoking, and suitable for adult English learners.\n")
	b.WriteString("Return only the questions as a JSON array of strings.")
	return b.String()
}

func categoryDescription(cat domain.Category) string {
	switch cat {
	case domain.CategoryIcebreaker:
		return "Simple questions to start conversations and make people comfortable"
	case domain.CategoryPersonal:
		return "Questions about personal experiences, preferences, and life"
	case domain.CategoryOpinion:
		return "Questions asking for thoughts on various topics or issues"
	case domain.CategoryHypothetical:
		return "What-if scenarios that encourage creative thinking"
	case domain.CategoryReflective:
		return "Questions that encourage deeper thinking about oneself"
	case domain.CategoryCultural:
		return "Questions about traditions, customs, and cultural experiences"
	}
	return ""
}

func phaseDescription(phase domain.DeckPhase) string {
	switch phase {
	case domain.PhaseWarmUp:
		return "Easy questions to start the conversation"
	case domain.PhasePersonal:
		return "Questions about personal experiences and preferences"
	case domain.PhaseReflective:
		return "Questions that encourage deeper thinking"
	case domain.PhaseChallenge:
		return "More complex or thought-provoking questions"
	}
	return ""
}
