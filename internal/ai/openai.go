package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"alcyxob/gym-dashboard/internal/config"
	"alcyxob/gym-dashboard/internal/domain"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// chatCompleter is the part of *openai.Client the assistant needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIAssistant talks to any OpenAI-compatible chat completion endpoint.
type OpenAIAssistant struct {
	client  chatCompleter
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewOpenAIAssistant builds an assistant from config. An empty API key yields
// ErrNotConfigured so the caller can run without AI features.
func NewOpenAIAssistant(cfg config.AIConfig, logger *zap.Logger) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	logger.Info("initializing AI assistant", zap.String("model", model))
	return newOpenAIAssistant(openai.NewClientWithConfig(clientCfg), model, cfg.Timeout, logger), nil
}

func newOpenAIAssistant(client chatCompleter, model string, timeout time.Duration, logger *zap.Logger) *OpenAIAssistant {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIAssistant{client: client, model: model, timeout: timeout, log: logger}
}

// Coach implements Assistant.
func (a *OpenAIAssistant) Coach(ctx context.Context, history []domain.CoachTurn, message string) (string, error) {
	msgs := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: CoachInstruction}}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.CoachRoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	return a.complete(ctx, openai.ChatCompletionRequest{Model: a.model, Messages: msgs})
}

// AnalyzeMeal implements Assistant.
func (a *OpenAIAssistant) AnalyzeMeal(ctx context.Context, in MealInput) (domain.MealAnalysis, error) {
	text := in.Text
	if text == "" {
		text = "Analyze the meal in this photo."
	}
	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(in.Image) > 0 {
		contentType := in.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(in.Image))
		user.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: text},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto}},
		}
	} else {
		user.Content = text
	}

	content, err := a.complete(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: MealInstruction},
			user,
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return domain.MealAnalysis{}, err
	}
	return ParseMealAnalysis(content)
}

func (a *OpenAIAssistant) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.log.Error("AI completion failed", zap.String("model", a.model), zap.Error(err))
		return "", fmt.Errorf("AI completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		a.log.Warn("AI completion returned no content", zap.String("model", a.model))
		return "", ErrEmptyResponse
	}
	a.log.Debug("AI completion received", zap.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}
