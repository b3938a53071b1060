package response

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/VarunStarz/sahayak-edu-local/internal/embeddings"
	"github.com/VarunStarz/sahayak-edu-local/internal/flow"
	"github.com/VarunStarz/sahayak-edu-local/internal/models"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
)

const retrieveLimit = 5

// Shared store keys used by the response flow.
const (
	keyQuery        = "query"
	keyRefinedQuery = "refined_query"
	keyContext      = "context"
	keySources      = "sources"
	keyAnswer       = "answer"
)

// Responder answers subject questions with retrieval-augmented generation.
// It runs a three-node flow: refine the query, retrieve matching curriculum
// chunks, and compose an answer grounded in them.
type Responder struct {
	embedder embeddings.Embedder
	store    vectorstore.VectorStore
	model    string
	retry    flow.RetryPolicy
}

// NewResponder creates the response agent.
func NewResponder(embedder embeddings.Embedder, store vectorstore.VectorStore, model string, retry flow.RetryPolicy) *Responder {
	return &Responder{
		embedder: embedder,
		store:    store,
		model:    model,
		retry:    retry,
	}
}

// Name returns the agent name
func (r *Responder) Name() string { return "response" }

// Description returns the agent description
func (r *Responder) Description() string {
	return "Answers subject questions using indexed curriculum content, citing the sources it drew from."
}

// Capabilities lists what the agent can do
func (r *Responder) Capabilities() []string {
	return []string{"question answering", "curriculum retrieval", "multimodal input annotation"}
}

// Execute runs the refine-retrieve-compose flow.
func (r *Responder) Execute(ctx context.Context, input *agents.AgentInput, llm shared.LLMProvider) (*agents.AgentResult, error) {
	store := flow.NewSharedStore()
	store.Set(keyQuery, input.Query)

	refine := r.refineNode(llm)
	retrieve := r.retrieveNode(input.Data)
	compose := r.composeNode(llm, input.InputType)

	f := flow.New(refine).
		Then(refine, retrieve).
		Then(retrieve, compose).
		WithRetry(r.retry)

	if err := f.Run(ctx, store); err != nil {
		return nil, err
	}

	answer := store.GetString(keyAnswer, "")
	sources, _ := store.Get(keySources)

	return &agents.AgentResult{
		Content: answer,
		Success: true,
		Metadata: map[string]any{
			"refined_query": store.GetString(keyRefinedQuery, input.Query),
			"sources":       sources,
		},
	}, nil
}

// refineNode rewrites the student question into a search phrasing.
func (r *Responder) refineNode(llm shared.LLMProvider) flow.Node {
	return &flow.NodeFunc{
		NodeName: "refine_query",
		PrepFn: func(ctx context.Context, store *flow.SharedStore) (any, error) {
			return store.GetString(keyQuery, ""), nil
		},
		ExecFn: func(ctx context.Context, prepResult any) (any, error) {
			query := prepResult.(string)

			resp, err := llm.Complete(ctx, &shared.CompletionRequest{
				System: agents.RefineQuerySystemPrompt,
				Messages: []shared.Message{
					{Role: shared.RoleUser, Content: query},
				},
				Options: shared.CompletionOptions{
					Model:          r.model,
					Temperature:    0,
					ResponseFormat: shared.ResponseFormatJSON,
				},
			})
			if err != nil {
				// A failed rewrite is not fatal; search with the raw query.
				return query, nil
			}

			var parsed struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil || parsed.Query == "" {
				return query, nil
			}
			return parsed.Query, nil
		},
		PostFn: func(ctx context.Context, store *flow.SharedStore, prepResult, execResult any) (flow.Action, error) {
			store.Set(keyRefinedQuery, execResult.(string))
			return flow.ActionDefault, nil
		},
	}
}

// retrieveNode searches the vector store with the refined query.
func (r *Responder) retrieveNode(data map[string]any) flow.Node {
	subject := ""
	if data != nil {
		subject, _ = data["subject"].(string)
	}

	return &flow.NodeFunc{
		NodeName: "retrieve",
		PrepFn: func(ctx context.Context, store *flow.SharedStore) (any, error) {
			return store.GetString(keyRefinedQuery, ""), nil
		},
		ExecFn: func(ctx context.Context, prepResult any) (any, error) {
			query := prepResult.(string)

			embedding, err := r.embedder.Embed(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("failed to embed query: %w", err)
			}

			hits, err := r.store.Search(ctx, embedding, retrieveLimit, subject)
			if err != nil {
				return nil, fmt.Errorf("failed to search content: %w", err)
			}
			return hits, nil
		},
		PostFn: func(ctx context.Context, store *flow.SharedStore, prepResult, execResult any) (flow.Action, error) {
			hits := execResult.([]vectorstore.SearchResult)

			var contextParts []string
			var sources []string
			for _, hit := range hits {
				contextParts = append(contextParts, hit.Document.Text)
				sources = append(sources, hit.Document.Source)
			}
			store.Set(keyContext, strings.Join(contextParts, "\n\n"))
			store.Set(keySources, sources)
			return flow.ActionDefault, nil
		},
	}
}

// composeNode answers strictly from the retrieved context.
func (r *Responder) composeNode(llm shared.LLMProvider, inputType models.InputType) flow.Node {
	return &flow.NodeFunc{
		NodeName: "compose_answer",
		PrepFn: func(ctx context.Context, store *flow.SharedStore) (any, error) {
			return [2]string{
				store.GetString(keyQuery, ""),
				store.GetString(keyContext, ""),
			}, nil
		},
		ExecFn: func(ctx context.Context, prepResult any) (any, error) {
			pair := prepResult.([2]string)
			query, contextText := pair[0], pair[1]

			prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query)
			resp, err := llm.Complete(ctx, &shared.CompletionRequest{
				System: agents.ComposeAnswerSystemPrompt,
				Messages: []shared.Message{
					{Role: shared.RoleUser, Content: prompt},
				},
				Options: shared.CompletionOptions{
					Model: r.model,
				},
			})
			if err != nil {
				return nil, err
			}
			return resp.Content, nil
		},
		PostFn: func(ctx context.Context, store *flow.SharedStore, prepResult, execResult any) (flow.Action, error) {
			answer := execResult.(string)
			store.Set(keyAnswer, annotateForInputType(answer, inputType))
			return flow.ActionDone, nil
		},
	}
}

// annotateForInputType tags answers to voice and image queries so the
// client can render them appropriately.
func annotateForInputType(answer string, inputType models.InputType) string {
	switch inputType {
	case models.InputTypeVoice:
		return "[spoken response] " + answer
	case models.InputTypeImage:
		return "[image explanation] " + answer
	default:
		return answer
	}
}
