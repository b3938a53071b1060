package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestInteractionIsMultimodal(t *testing.T) {
	tests := []struct {
		name      string
		inputType InputType
		want      bool
	}{
		{"text input", InputTypeText, false},
		{"voice input", InputTypeVoice, true},
		{"image input", InputTypeImage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Interaction{InputType: tt.inputType}
			assert.Equal(t, tt.want, i.IsMultimodal())
		})
	}
}

func TestLearningProgressIsCompleted(t *testing.T) {
	assert.False(t, (&LearningProgress{CompletionPercentage: 99.9}).IsCompleted())
	assert.True(t, (&LearningProgress{CompletionPercentage: 100}).IsCompleted())
	assert.True(t, (&LearningProgress{CompletionPercentage: 100.5}).IsCompleted())
}

func TestCurriculumContentIsAdvanced(t *testing.T) {
	assert.False(t, (&CurriculumContent{DifficultyLevel: 7}).IsAdvanced())
	assert.True(t, (&CurriculumContent{DifficultyLevel: 8}).IsAdvanced())
}

func TestStudentUpdatePreferences(t *testing.T) {
	s := &Student{LearningPreferences: "visual"}
	before := s.UpdatedAt
	s.UpdatePreferences("auditory")

	assert.Equal(t, "auditory", s.LearningPreferences)
	assert.True(t, s.UpdatedAt.After(before) || before.IsZero())
	assert.WithinDuration(t, time.Now().UTC(), s.UpdatedAt, time.Second)
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		inputType InputType
		content   string
		want      bool
	}{
		{"valid text", InputTypeText, "what is photosynthesis", true},
		{"empty text", InputTypeText, "", false},
		{"whitespace text", InputTypeText, "   \n\t", false},
		{"voice payload", InputTypeVoice, "audio-bytes", true},
		{"empty voice", InputTypeVoice, "", false},
		{"image payload", InputTypeImage, "image-bytes", true},
		{"unknown type", InputType("video"), "something", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateInput(tt.inputType, tt.content))
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Run("strips control characters", func(t *testing.T) {
		got := Sanitize("hello\x00world\x07", 100)
		assert.Equal(t, "helloworld", got)
	})

	t.Run("keeps newlines and tabs", func(t *testing.T) {
		got := Sanitize("line one\n\tline two", 100)
		assert.Equal(t, "line one\n\tline two", got)
	})

	t.Run("truncates long input", func(t *testing.T) {
		long := make([]byte, 50)
		for i := range long {
			long[i] = 'a'
		}
		got := Sanitize(string(long), 10)
		assert.Equal(t, "aaaaaaaaaa...", got)
	})

	t.Run("zero max uses default", func(t *testing.T) {
		got := Sanitize("short", 0)
		assert.Equal(t, "short", got)
	})

	t.Run("truncates multi-byte text by characters", func(t *testing.T) {
		got := Sanitize(strings.Repeat("अ", 400), 100)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, strings.Repeat("अ", 100)+"...", got)
	})

	t.Run("short multi-byte text is untouched", func(t *testing.T) {
		got := Sanitize("गणित और विज्ञान", 100)
		assert.Equal(t, "गणित और विज्ञान", got)
	})
}
