// Package tutor proxies chat conversations to a Gemini model.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"kidslearning/internal/models"
)

var (
	// ErrDisabled is returned when no API key is configured
	ErrDisabled = errors.New("chat tutor is disabled")
	// ErrInvalidConversation covers empty conversations and unknown roles
	ErrInvalidConversation = errors.New("invalid conversation")
	// ErrUpstream wraps failures of the model API
	ErrUpstream = errors.New("chat tutor upstream failure")
)

const basePrompt = "You are a friendly, patient tutor for children from kindergarten to 6th grade. " +
	"Explain ideas in short, simple sentences, encourage the learner, and guide them toward the " +
	"answer instead of giving it away. Keep every reply safe and appropriate for kids."

const maxMessages = 50

// contentGenerator is the part of the genai client the tutor uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Service answers tutor conversations
type Service struct {
	models contentGenerator
	model  string
}

// NewService creates a tutor backed by the Gemini API. An empty apiKey
// returns a disabled service.
func NewService(ctx context.Context, apiKey, model string) (*Service, error) {
	if apiKey == "" {
		log.Println("Chat tutor disabled (no GEMINI_API_KEY)")
		return &Service{model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	log.Printf("Chat tutor initialized (model: %s)", model)
	return &Service{models: client.Models, model: model}, nil
}

// Enabled reports whether the tutor can answer
func (s *Service) Enabled() bool {
	return s != nil && s.models != nil
}

// Reply sends the conversation to the model and returns its answer
func (s *Service) Reply(ctx context.Context, messages []models.ChatMessage) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	contents, system, err := buildContents(messages)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	}

	result, err := s.models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUpstream)
	}
	return text, nil
}

// buildContents maps chat roles onto Gemini roles. System messages are folded
// into the system instruction.
func buildContents(messages []models.ChatMessage) ([]*genai.Content, string, error) {
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	system := []string{basePrompt}
	var contents []*genai.Content
	for i, msg := range messages {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}
		switch msg.Role {
		case models.ChatRoleUser:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		case models.ChatRoleAssistant:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		case models.ChatRoleSystem:
			system = append(system, text)
		default:
			return nil, "", fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidConversation, i, msg.Role)
		}
	}

	if len(contents) == 0 {
		return nil, "", fmt.Errorf("%w: no messages", ErrInvalidConversation)
	}
	return contents, strings.Join(system, "\n\n"), nil
}
