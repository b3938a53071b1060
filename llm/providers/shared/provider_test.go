package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCompletionRequest(t *testing.T) {
	valid := &CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		Options:  CompletionOptions{Model: "gemma3n"},
	}
	assert.NoError(t, ValidateCompletionRequest(valid))

	tests := []struct {
		name string
		req  *CompletionRequest
	}{
		{"nil request", nil},
		{
			"no messages",
			&CompletionRequest{Options: CompletionOptions{Model: "gemma3n"}},
		},
		{
			"empty role",
			&CompletionRequest{
				Messages: []Message{{Content: "hello"}},
				Options:  CompletionOptions{Model: "gemma3n"},
			},
		},
		{
			"invalid role",
			&CompletionRequest{
				Messages: []Message{{Role: "robot", Content: "hello"}},
				Options:  CompletionOptions{Model: "gemma3n"},
			},
		},
		{
			"missing model",
			&CompletionRequest{
				Messages: []Message{{Role: RoleUser, Content: "hello"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCompletionRequest(tt.req)
			assert.Error(t, err)

			var pe *ProviderError
			assert.ErrorAs(t, err, &pe)
			assert.Equal(t, ErrInvalidRequest, pe.Code)
		})
	}
}

func TestNormalizeError(t *testing.T) {
	assert.Nil(t, NormalizeError(nil))

	pe := &ProviderError{Code: ErrRateLimited, Message: "slow down"}
	assert.Same(t, pe, NormalizeError(pe))

	normalized := NormalizeError(errors.New("boom"))
	assert.Equal(t, ErrUnknown, normalized.Code)
	assert.Equal(t, "boom", normalized.Message)
}
