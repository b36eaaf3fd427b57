package llmservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"scholar-chat/internal/config"
	"scholar-chat/internal/models"
)

type recordingModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	reply    string
	err      error
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangchainGeneratorSendsSystemAndHuman(t *testing.T) {
	model := &recordingModel{reply: "Paris."}
	g := NewLangchainGenerator(model, "gpt-test", 0.2)

	answer, err := g.Generate(context.Background(), "use the context", "capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	assert.Equal(t, "gpt-test", g.ModelID())

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, []llms.ContentPart{llms.TextContent{Text: "use the context"}}, model.messages[0].Parts)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, []llms.ContentPart{llms.TextContent{Text: "capital of France?"}}, model.messages[1].Parts)
	assert.InDelta(t, 0.2, model.options.Temperature, 1e-9)
}

func TestLangchainGeneratorWrapsErrors(t *testing.T) {
	upstream := errors.New("rate limited")
	g := NewLangchainGenerator(&recordingModel{err: upstream}, "gpt-test", 0)

	_, err := g.Generate(context.Background(), "sys", "q")
	assert.True(t, errors.Is(err, models.ErrGenerationService))
	assert.True(t, errors.Is(err, upstream))
}

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(context.Background(), config.LLMConfig{Provider: "bard", Model: "x"})
	assert.ErrorContains(t, err, `unknown chat provider "bard"`)

	g, err := NewGenerator(context.Background(), config.LLMConfig{
		Provider: config.ProviderOpenAI,
		Key:      "sk-test",
		Model:    "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", g.ModelID())

	g, err = NewGenerator(context.Background(), config.LLMConfig{
		Provider: config.ProviderGemini,
		Key:      "test-key",
		Model:    "gemini-2.0-flash",
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", g.ModelID())
}
