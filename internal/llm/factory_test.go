package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		wantType any
		config   Config
		wantErr  bool
	}{
		{name: "huggingface by default", config: Config{APIKey: "hf"}, wantType: &openAIClient{}},
		{name: "openai", config: Config{Provider: "OpenAI", APIKey: "sk"}, wantType: &openAIClient{}},
		{name: "ollama needs no key", config: Config{Provider: "ollama"}, wantType: &ollamaClient{}},
		{name: "unknown provider", config: Config{Provider: "bogus", APIKey: "x"}, wantErr: true},
		{name: "huggingface without key", config: Config{Provider: "huggingface"}, wantErr: true},
		{name: "gemini without key", config: Config{Provider: "gemini"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, client)
		})
	}
}

func TestHuggingFaceDefaults(t *testing.T) {
	client, err := NewClient(context.Background(), Config{APIKey: "hf"})
	require.NoError(t, err)

	oc, ok := client.(*openAIClient)
	require.True(t, ok)
	assert.Equal(t, defaultHuggingFaceModel, oc.model)
	assert.Equal(t, "huggingface", oc.provider)
	assert.Equal(t, DefaultMaxTokens, oc.maxTokens)
}

func TestZeroTemperatureIsKept(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		want        float32
	}{
		{name: "zero", temperature: 0, want: 0},
		{name: "configured", temperature: 0.7, want: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), Config{APIKey: "hf", Temperature: tt.temperature})
			require.NoError(t, err)

			oc, ok := client.(*openAIClient)
			require.True(t, ok)
			assert.InDelta(t, tt.want, oc.temperature, 1e-6)
		})
	}
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient(func(prompt string) (string, error) {
		if prompt == "fail" {
			return "", errors.New("boom")
		}
		return "ok:" + prompt, nil
	})

	text, err := mock.Complete(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "ok:a", text)

	_, err = mock.Complete(context.Background(), "fail")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = mock.Complete(ctx, "b")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"a", "fail", "b"}, mock.Calls())
}
