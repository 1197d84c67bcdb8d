package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("Engine.CreateAgentFromPrompt", ErrInvalidInput, "blank prompt")
	want := "Engine.CreateAgentFromPrompt: blank prompt: invalid input"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("chatstore.FromContext", ErrMissingProvider, "")
	want := "chatstore.FromContext: chat store requested outside its provider scope"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("chatstore.FromContext", ErrMissingProvider, "")
	if !errors.Is(err, ErrMissingProvider) {
		t.Error("errors.Is should match ErrMissingProvider")
	}
}

func TestDomainErrorAs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewDomainError("Gateway.Dispatch", ErrRPCMethodNotFound, "foo.bar"))
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("errors.As should match *DomainError")
	}
	if de.Op != "Gateway.Dispatch" {
		t.Errorf("Op = %q, want %q", de.Op, "Gateway.Dispatch")
	}
}

func TestWrapOp(t *testing.T) {
	assert.Nil(t, WrapOp("op", nil))

	err := WrapOp("config.Load", ErrConfigLoad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigLoad)
	assert.Equal(t, "config.Load: failed to load configuration", err.Error())
}

// --- ErrorCode tests ---

func TestErrorCodeOf_DirectSentinel(t *testing.T) {
	assert.Equal(t, CodeMissingProvider, ErrorCodeOf(ErrMissingProvider))
	assert.Equal(t, CodeRPCMethodNotFound, ErrorCodeOf(ErrRPCMethodNotFound))
	assert.Equal(t, CodeRateLimit, ErrorCodeOf(ErrRateLimit))
	assert.Equal(t, CodeNotFound, ErrorCodeOf(ErrNotFound))
}

func TestErrorCodeOf_Nil(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(nil))
}

func TestErrorCodeOf_Unknown(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(errors.New("something else")))
}

func TestErrorCodeOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("startup: %w", ErrMissingProvider)
	assert.Equal(t, CodeMissingProvider, ErrorCodeOf(err))
}

func TestErrorCodeOf_GatewayAuthPrefersSpecific(t *testing.T) {
	err := fmt.Errorf("connect: %w", ErrGatewayAuthFailed)
	assert.Equal(t, CodeGatewayAuth, ErrorCodeOf(err))
	assert.ErrorIs(t, err, ErrAuthInvalid)
}

func TestErrorCodeOf_SubSystem(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"agent not found", NewSubSystemError("agent", "Engine.SelectAgent", ErrNotFound, "agent_9"), CodeAgentNotFound},
		{"conversation not found", NewSubSystemError("conversation", "op", ErrNotFound, ""), CodeConversationNotFound},
		{"unknown action", NewSubSystemError("action", "DecodeAction", ErrNotFound, "NOPE"), CodeActionUnknown},
		{"empty prompt", NewSubSystemError("prompt", "op", ErrInvalidInput, ""), CodePromptEmpty},
		{"cancelled task", NewSubSystemError("task", "op", ErrCancelled, ""), CodeTaskCancelled},
		{"unmapped subsystem falls back", NewSubSystemError("other", "op", ErrNotFound, ""), CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeOf(tt.err))
			var de *DomainError
			require.True(t, errors.As(tt.err, &de))
			assert.Equal(t, tt.want, de.Code())
		})
	}
}
