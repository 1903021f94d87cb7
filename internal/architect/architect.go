package architect

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxeldragons/siteapi/internal/config"
	"google.golang.org/genai"
)

// ProjectFile is one uploaded source file held as conversation context.
type ProjectFile struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// Service creates architect chat sessions against the Gemini API.
type Service struct {
	client *genai.Client
	model  string
}

// NewService builds a Service from relay configuration.
func NewService(ctx context.Context, cfg config.ArchitectConfig) (*Service, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("architect: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("architect: create client: %w", err)
	}
	return &Service{client: client, model: cfg.Model}, nil
}

// Session is one architect conversation. It is created by StartSession and
// threaded explicitly by the caller; the service keeps no current session.
type Session struct {
	chat *genai.Chat
}

// StartSession opens a new chat whose system instruction embeds every
// provided file's path and content. The blob is not chunked or filtered;
// the upstream input limit is the only cap.
func (s *Service) StartSession(ctx context.Context, files []ProjectFile) (*Session, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildSystemInstruction(files), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](4000),
		},
	}
	chat, err := s.client.Chats.Create(ctx, s.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("architect: create chat: %w", err)
	}
	return &Session{chat: chat}, nil
}

// SendMessage sends one user message and returns the full model reply.
func (sess *Session) SendMessage(ctx context.Context, message string) (string, error) {
	resp, err := sess.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("architect: send message: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "No response from the model.", nil
	}
	return text, nil
}

// SendMessageStream sends one user message and forwards each incremental
// text fragment to emit. A mid-stream failure ends the stream with that
// error; there is no recovery or retry.
func (sess *Session) SendMessageStream(ctx context.Context, message string, emit func(fragment string) error) error {
	for resp, err := range sess.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
		if err != nil {
			return fmt.Errorf("architect: stream: %w", err)
		}
		fragment := resp.Text()
		if fragment == "" {
			continue
		}
		if errEmit := emit(fragment); errEmit != nil {
			return errEmit
		}
	}
	return nil
}

// BuildSystemInstruction concatenates the project files into the architect
// system prompt.
func BuildSystemInstruction(files []ProjectFile) string {
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, fmt.Sprintf("File: %s\n```%s\n%s\n```", f.Path, f.Language, f.Content))
	}
	context := strings.Join(parts, "\n\n")

	var b strings.Builder
	b.WriteString("You are a world-class senior full-stack engineer and software architect.\n")
	b.WriteString("Your goal is to help the user modify, improve, and understand their project code.\n\n")
	b.WriteString("CRITICAL INSTRUCTIONS:\n")
	b.WriteString("1. When proposing code changes, provide the full file content or clear patches.\n")
	b.WriteString("2. Be concise but technically accurate.\n")
	b.WriteString("3. Use professional developer terminology.\n")
	b.WriteString("4. If the user asks to \"do something\", analyze the existing code first to ensure architectural consistency.\n\n")
	b.WriteString("PROJECT CONTEXT:\n")
	b.WriteString(context)
	return b.String()
}
