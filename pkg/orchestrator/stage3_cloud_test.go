package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	llmmock "github.com/kr0ner/multistage-assist/pkg/clients/llm/mock"
	"github.com/kr0ner/multistage-assist/pkg/host"
	hostmock "github.com/kr0ner/multistage-assist/pkg/host/mock"
)

func TestStage3_NilProviderReturnsNotConfigured(t *testing.T) {
	s3 := NewStage3(nil, &hostmock.Registry{}, nil, nil, nil)
	result, err := s3.Process(context.Background(), types.Utterance{Text: "hallo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Contains(t, result.Response, "nicht konfiguriert")
}

func TestStage3_ChatModeRepliesAndRemembersHistory(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "Mir geht's gut, danke!"}}
	s3 := NewStage3(provider, &hostmock.Registry{}, nil, nil, nil)

	result, err := s3.Process(context.Background(), types.Utterance{Text: "Wie geht es dir?", ConversationID: "c1"}, map[string]any{"chat_mode": true})
	require.NoError(t, err)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Equal(t, "Mir geht's gut, danke!", result.Response)
	assert.Len(t, s3.history.Turns("c1"), 2)
}

func TestStage3_ChatModeProviderErrorReturnsApology(t *testing.T) {
	provider := &llmmock.Provider{CompleteErr: errBoom}
	s3 := NewStage3(provider, &hostmock.Registry{}, nil, nil, nil)

	result, err := s3.Process(context.Background(), types.Utterance{Text: "huh"}, map[string]any{"chat_mode": true})
	require.NoError(t, err)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Equal(t, "Entschuldigung, ein Fehler ist aufgetreten.", result.Response)
}

func TestStage3_IntentModeChatReplyIsSurfacedAsError(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{
		Content: `{"mode": "chat", "response": "Klar, erzähl mal."}`,
	}}
	registry := &hostmock.Registry{AreasResult: []host.Area{{Name: "Büro"}}}
	s3 := NewStage3(provider, registry, nil, nil, nil)

	result, err := s3.Process(context.Background(), types.Utterance{Text: "magst du mich?"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Equal(t, "Klar, erzähl mal.", result.Response)
}

func TestStage3_IntentModeUnparsableContentIsTreatedAsChat(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "Das verstehe ich leider nicht."}}
	s3 := NewStage3(provider, &hostmock.Registry{}, nil, nil, nil)

	result, err := s3.Process(context.Background(), types.Utterance{Text: "???"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Equal(t, "Das verstehe ich leider nicht.", result.Response)
}
