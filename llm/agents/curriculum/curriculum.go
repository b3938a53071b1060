package curriculum

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
)

// levelSpread is how far above the student's working level content may sit
// before it is excluded from the sequence.
const levelSpread = 2

// SequenceItem is one step of a paced content sequence.
type SequenceItem struct {
	ContentID  int64  `json:"content_id"`
	Title      string `json:"title"`
	Difficulty int    `json:"difficulty"`
	Subject    string `json:"subject"`
}

// Curriculum sequences content for a student at an appropriate pace.
type Curriculum struct {
	store store.DataStore
	model string
}

// NewCurriculum creates the curriculum agent.
func NewCurriculum(dataStore store.DataStore, model string) *Curriculum {
	return &Curriculum{
		store: dataStore,
		model: model,
	}
}

// Name returns the agent name
func (c *Curriculum) Name() string { return "curriculum" }

// Description returns the agent description
func (c *Curriculum) Description() string {
	return "Builds a difficulty-ordered content sequence matched to the student's current level in a subject."
}

// Capabilities lists what the agent can do
func (c *Curriculum) Capabilities() []string {
	return []string{"content sequencing", "pacing"}
}

// Execute builds a paced sequence for the subject in input.Data (falling
// back to the most active subject in the student's progress).
func (c *Curriculum) Execute(ctx context.Context, input *agents.AgentInput, llm shared.LLMProvider) (*agents.AgentResult, error) {
	if input.StudentID == 0 {
		return &agents.AgentResult{
			Success:  false,
			Metadata: map[string]any{"error": "student_id is required for curriculum sequencing"},
		}, nil
	}

	subject := ""
	if input.Data != nil {
		subject, _ = input.Data["subject"].(string)
	}

	progress, err := c.store.ListProgressByStudent(ctx, input.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if subject == "" {
		subject = dominantSubject(progress)
	}
	if subject == "" {
		return &agents.AgentResult{
			Success:  false,
			Metadata: map[string]any{"error": "no subject given and no progress to infer one from"},
		}, nil
	}

	level := workingLevel(progress, subject)

	candidates, err := c.store.ListContentByDifficulty(ctx, level, level+levelSpread)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}

	sequence := BuildSequence(candidates, subject)
	if len(sequence) == 0 {
		return &agents.AgentResult{
			Content: fmt.Sprintf("No %s content available at difficulty %d-%d yet.", subject, level, level+levelSpread),
			Success: true,
			Metadata: map[string]any{
				"subject": subject,
				"level":   level,
			},
		}, nil
	}

	rationale := c.explain(ctx, subject, level, sequence, llm)

	return &agents.AgentResult{
		Content: rationale,
		Success: true,
		Metadata: map[string]any{
			"subject":  subject,
			"level":    level,
			"sequence": sequence,
		},
	}, nil
}

// BuildSequence filters candidates to the subject and orders them easiest
// first, breaking difficulty ties by title.
func BuildSequence(candidates []models.CurriculumContent, subject string) []SequenceItem {
	var sequence []SequenceItem
	for _, content := range candidates {
		if content.Subject != subject {
			continue
		}
		sequence = append(sequence, SequenceItem{
			ContentID:  content.ID,
			Title:      content.Title,
			Difficulty: content.DifficultyLevel,
			Subject:    content.Subject,
		})
	}

	sort.Slice(sequence, func(i, j int) bool {
		if sequence[i].Difficulty != sequence[j].Difficulty {
			return sequence[i].Difficulty < sequence[j].Difficulty
		}
		return sequence[i].Title < sequence[j].Title
	})
	return sequence
}

// workingLevel estimates the student's level in a subject from average
// completion: each full 20% of average completion advances one level.
func workingLevel(progress []models.LearningProgress, subject string) int {
	var total float64
	var count int
	for _, p := range progress {
		if p.Subject == subject {
			total += p.CompletionPercentage
			count++
		}
	}
	if count == 0 {
		return 1
	}

	level := 1 + int(total/float64(count)/20)
	if level > 10 {
		level = 10
	}
	return level
}

// dominantSubject returns the subject with the most progress records.
func dominantSubject(progress []models.LearningProgress) string {
	counts := make(map[string]int)
	for _, p := range progress {
		counts[p.Subject]++
	}

	best := ""
	for subject, count := range counts {
		if best == "" || count > counts[best] || (count == counts[best] && subject < best) {
			best = subject
		}
	}
	return best
}

func (c *Curriculum) explain(ctx context.Context, subject string, level int, sequence []SequenceItem, llm shared.LLMProvider) string {
	var titles []string
	for _, item := range sequence {
		titles = append(titles, fmt.Sprintf("%s (difficulty %d)", item.Title, item.Difficulty))
	}
	fallback := fmt.Sprintf("Suggested %s sequence for level %d: %s", subject, level, strings.Join(titles, ", "))

	resp, err := llm.Complete(ctx, &shared.CompletionRequest{
		System: agents.CurriculumSystemPrompt,
		Messages: []shared.Message{
			{Role: shared.RoleUser, Content: fallback},
		},
		Options: shared.CompletionOptions{
			Model: c.model,
		},
	})
	if err != nil || resp.Content == "" {
		return fallback
	}
	return resp.Content
}
