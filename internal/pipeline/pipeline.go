// Package pipeline holds the request orchestration: moderation, structured
// query synthesis, the Open Library search, and the streamed narration. Each
// request runs the four collaborator calls strictly in sequence; there is no
// state shared between runs.
package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"

	"book-scout/internal/model"
	"book-scout/internal/moderation"
	"book-scout/internal/prompt"
)

// TextGenerator abstracts the generation model calls.
type TextGenerator interface {
	// Generate runs a non-streaming JSON-mode completion.
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateStream runs a streaming completion; the returned body is
	// line-delimited and owned by the caller.
	GenerateStream(ctx context.Context, prompt string) (io.ReadCloser, error)
}

// BookSearcher abstracts the book search collaborator.
type BookSearcher interface {
	Search(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error)
}

// Moderator abstracts the profanity filter.
type Moderator interface {
	ContainsProfanity(text string) bool
}

// Outcome is a successful pipeline result: a line-delimited body the handler
// forwards to the client one line at a time.
type Outcome struct {
	ContentType string
	Body        io.ReadCloser
	// Moderated is set when the run short-circuited on the profanity check.
	Moderated bool
}

// Pipeline wires the three collaborators together.
type Pipeline struct {
	generator TextGenerator
	searcher  BookSearcher
	moderator Moderator
	prompts   *prompt.Builder
}

// New creates a Pipeline.
func New(generator TextGenerator, searcher BookSearcher, moderator Moderator) *Pipeline {
	return &Pipeline{
		generator: generator,
		searcher:  searcher,
		moderator: moderator,
		prompts:   prompt.NewBuilder(),
	}
}

type moderationChunk struct {
	Response string `json:"response"`
}

// Run executes the full sequence for one user query. It returns either an
// Outcome whose body is ready to stream, or a StageError the handler maps to
// an HTTP response. Once the caller starts reading the Outcome body, failures
// are no longer translated; partial output stands.
func (p *Pipeline) Run(ctx context.Context, userQuery string) (*Outcome, *StageError) {
	query := strings.TrimSpace(userQuery)
	if query == "" {
		return nil, invalidInput()
	}

	if p.moderator.ContainsProfanity(query) {
		log.Printf("[MODERATION] Query flagged, short-circuiting")
		chunk, err := json.Marshal(moderationChunk{Response: moderation.Message})
		if err != nil {
			return nil, &StageError{Kind: KindUnexpected, Err: err}
		}
		return &Outcome{
			ContentType: "application/json",
			Body:        io.NopCloser(strings.NewReader(string(chunk))),
			Moderated:   true,
		}, nil
	}

	spec, stageErr := p.synthesizeSpec(ctx, query)
	if stageErr != nil {
		return nil, stageErr
	}

	result, err := p.searcher.Search(ctx, spec)
	if err != nil {
		log.Printf("[PIPELINE] Search failed: %v", err)
		return nil, searchFailed(err)
	}
	log.Printf("[PIPELINE] Search returned %d doc(s)", len(result.Docs))

	stream, err := p.generator.GenerateStream(ctx, p.prompts.BuildRefinePrompt(query, result.Docs))
	if err != nil {
		log.Printf("[PIPELINE] Refinement failed: %v", err)
		return nil, refinementFailed(err)
	}

	return &Outcome{ContentType: "text/plain", Body: stream}, nil
}

// synthesizeSpec asks the model for a structured query, retrying exactly once
// when the result is unparseable or missing required keys. After the retry
// the spec is used as-is, valid or not.
func (p *Pipeline) synthesizeSpec(ctx context.Context, query string) (model.SearchSpec, *StageError) {
	queryPrompt := p.prompts.BuildQueryPrompt(query)

	raw, err := p.generator.Generate(ctx, queryPrompt)
	if err != nil {
		log.Printf("[PIPELINE] Query synthesis failed: %v", err)
		return model.SearchSpec{}, generationFailed(err)
	}

	spec, valid := ParseSearchSpec(raw)
	if valid {
		return spec, nil
	}

	log.Printf("[RETRY] Structured query invalid, regenerating once")
	raw, err = p.generator.Generate(ctx, queryPrompt)
	if err != nil {
		log.Printf("[PIPELINE] Query synthesis failed on retry: %v", err)
		return model.SearchSpec{}, generationFailed(err)
	}

	spec, valid = ParseSearchSpec(raw)
	if !valid {
		log.Printf("[PIPELINE] Structured query still invalid after retry, proceeding with partial spec")
	}
	return spec, nil
}
