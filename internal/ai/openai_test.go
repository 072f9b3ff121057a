package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"alcyxob/gym-dashboard/internal/config"
	"alcyxob/gym-dashboard/internal/domain"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	reply string
	err   error
	got   openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if f.reply == "" {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func TestNewOpenAIAssistant_RequiresKey(t *testing.T) {
	_, err := NewOpenAIAssistant(config.AIConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCoach_SendsInstructionAndHistory(t *testing.T) {
	fake := &fakeCompleter{reply: "Rest 90 seconds."}
	a := newOpenAIAssistant(fake, "test-model", 0, zap.NewNop())

	history := []domain.CoachTurn{
		{Role: domain.CoachRoleUser, Text: "hi"},
		{Role: domain.CoachRoleModel, Text: "hello!"},
	}
	reply, err := a.Coach(context.Background(), history, "how long between sets?")
	require.NoError(t, err)
	assert.Equal(t, "Rest 90 seconds.", reply)

	msgs := fake.got.Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, CoachInstruction, msgs[0].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)
	assert.Equal(t, "how long between sets?", msgs[3].Content)
}

func TestCoach_Failures(t *testing.T) {
	a := newOpenAIAssistant(&fakeCompleter{err: errors.New("connection reset")}, "m", 0, zap.NewNop())
	_, err := a.Coach(context.Background(), nil, "hi")
	assert.Error(t, err)

	a = newOpenAIAssistant(&fakeCompleter{}, "m", 0, zap.NewNop())
	_, err = a.Coach(context.Background(), nil, "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnalyzeMeal_WithImage(t *testing.T) {
	fake := &fakeCompleter{reply: `{"estimatedCalories":"520 kcal","estimatedMacros":{"protein":"35g","carbs":"50g","fat":"18g"},"suggestion":"More greens"}`}
	a := newOpenAIAssistant(fake, "m", 0, zap.NewNop())

	got, err := a.AnalyzeMeal(context.Background(), MealInput{Text: "lunch", Image: []byte{0xff, 0xd8}, ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "520 kcal", got.EstimatedCalories)
	assert.Equal(t, "35g", got.EstimatedMacros.Protein)

	require.Len(t, fake.got.Messages, 2)
	parts := fake.got.Messages[1].MultiContent
	require.Len(t, parts, 2)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
	require.NotNil(t, fake.got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, fake.got.ResponseFormat.Type)
}

func TestAnalyzeMeal_TextOnly(t *testing.T) {
	fake := &fakeCompleter{reply: `{"estimatedCalories":"300","estimatedMacros":{},"suggestion":""}`}
	a := newOpenAIAssistant(fake, "m", 0, zap.NewNop())

	_, err := a.AnalyzeMeal(context.Background(), MealInput{Text: "two eggs"})
	require.NoError(t, err)
	assert.Equal(t, "two eggs", fake.got.Messages[1].Content)
	assert.Empty(t, fake.got.Messages[1].MultiContent)
}

func TestParseMealAnalysis(t *testing.T) {
	fenced := "```json\n{\"estimatedCalories\":\"410\",\"estimatedMacros\":{\"protein\":\"20g\",\"carbs\":\"45g\",\"fat\":\"12g\"},\"suggestion\":\"ok\"}\n```"
	got, err := ParseMealAnalysis(fenced)
	require.NoError(t, err)
	assert.Equal(t, "410", got.EstimatedCalories)

	for _, bad := range []string{"not json", `{"suggestion":"no calories"}`, `[]`} {
		_, err := ParseMealAnalysis(bad)
		assert.ErrorIs(t, err, ErrMalformedResponse, bad)
	}
}
