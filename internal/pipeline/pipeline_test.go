package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"book-scout/internal/model"
)

var errSentinel = errors.New("boom")

// mockGenerator is a func-field mock for the TextGenerator interface.
type mockGenerator struct {
	GenerateFunc       func(ctx context.Context, prompt string) (string, error)
	GenerateStreamFunc func(ctx context.Context, prompt string) (io.ReadCloser, error)

	generateCalls int
	streamCalls   int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.generateCalls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return `{"query_type": "q", "query_value": "test", "limit": "3"}`, nil
}

func (m *mockGenerator) GenerateStream(ctx context.Context, prompt string) (io.ReadCloser, error) {
	m.streamCalls++
	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, prompt)
	}
	return io.NopCloser(strings.NewReader("chunk\n")), nil
}

type mockSearcher struct {
	SearchFunc func(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error)

	calls    int
	lastSpec model.SearchSpec
}

func (m *mockSearcher) Search(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
	m.calls++
	m.lastSpec = spec
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, spec)
	}
	return &model.SearchResult{}, nil
}

type mockModerator struct {
	flagged bool
}

func (m *mockModerator) ContainsProfanity(text string) bool {
	return m.flagged
}

func newTestPipeline(gen *mockGenerator, search *mockSearcher, mod *mockModerator) *Pipeline {
	if gen == nil {
		gen = &mockGenerator{}
	}
	if search == nil {
		search = &mockSearcher{}
	}
	if mod == nil {
		mod = &mockModerator{}
	}
	return New(gen, search, mod)
}

func readAll(t *testing.T, body io.ReadCloser) string {
	t.Helper()
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading outcome body: %v", err)
	}
	return string(data)
}

func TestRunRejectsBlankQuery(t *testing.T) {
	gen := &mockGenerator{}
	p := newTestPipeline(gen, nil, nil)

	_, stageErr := p.Run(context.Background(), "   ")
	if stageErr == nil {
		t.Fatal("expected a stage error for blank query")
	}
	if stageErr.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want KindInvalidInput", stageErr.Kind)
	}
	if gen.generateCalls != 0 {
		t.Errorf("generator called %d times for invalid input", gen.generateCalls)
	}
}

func TestRunModerationShortCircuit(t *testing.T) {
	gen := &mockGenerator{}
	search := &mockSearcher{}
	p := newTestPipeline(gen, search, &mockModerator{flagged: true})

	outcome, stageErr := p.Run(context.Background(), "some flagged query")
	if stageErr != nil {
		t.Fatalf("unexpected stage error: %v", stageErr)
	}
	if !outcome.Moderated {
		t.Error("outcome should be marked moderated")
	}
	if outcome.ContentType != "application/json" {
		t.Errorf("ContentType = %q, want application/json", outcome.ContentType)
	}
	body := readAll(t, outcome.Body)
	if !strings.Contains(body, "The Book Search service is moderated") {
		t.Errorf("moderation chunk missing notice, got %q", body)
	}
	if gen.generateCalls != 0 || search.calls != 0 {
		t.Error("no collaborator should run after moderation short-circuit")
	}
}

func TestRunGenerationFailureSkipsSearch(t *testing.T) {
	gen := &mockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errSentinel
		},
	}
	search := &mockSearcher{}
	p := newTestPipeline(gen, search, nil)

	_, stageErr := p.Run(context.Background(), "best sci-fi books")
	if stageErr == nil || stageErr.Kind != KindGeneration {
		t.Fatalf("stageErr = %v, want KindGeneration", stageErr)
	}
	if !errors.Is(stageErr, errSentinel) {
		t.Error("stage error should wrap the transport cause")
	}
	if gen.generateCalls != 1 {
		t.Errorf("generator called %d times, want 1 (no retry on transport failure)", gen.generateCalls)
	}
	if search.calls != 0 {
		t.Error("search must not run after generation failure")
	}
}

func TestRunRetriesOnceOnInvalidSpec(t *testing.T) {
	responses := []string{
		`{"limit": "3"}`,
		`{"query_type": "author", "query_value": "Herbert", "limit": "2"}`,
	}
	gen := &mockGenerator{}
	gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return responses[gen.generateCalls-1], nil
	}
	search := &mockSearcher{}
	p := newTestPipeline(gen, search, nil)

	_, stageErr := p.Run(context.Background(), "books by Herbert")
	if stageErr != nil {
		t.Fatalf("unexpected stage error: %v", stageErr)
	}
	if gen.generateCalls != 2 {
		t.Errorf("generator called %d times, want 2", gen.generateCalls)
	}
	if search.lastSpec.QueryType != "author" || search.lastSpec.QueryValue != "Herbert" {
		t.Errorf("search used spec %+v, want the retried result", search.lastSpec)
	}
}

func TestRunRetryTransportFailure(t *testing.T) {
	gen := &mockGenerator{}
	gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		if gen.generateCalls == 1 {
			return `not json`, nil
		}
		return "", errSentinel
	}
	search := &mockSearcher{}
	p := newTestPipeline(gen, search, nil)

	_, stageErr := p.Run(context.Background(), "anything")
	if stageErr == nil || stageErr.Kind != KindGeneration {
		t.Fatalf("stageErr = %v, want KindGeneration", stageErr)
	}
	if search.calls != 0 {
		t.Error("search must not run when the retry fails at transport level")
	}
}

func TestRunProceedsWithInvalidSpecAfterRetry(t *testing.T) {
	gen := &mockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"limit": "7"}`, nil
		},
	}
	search := &mockSearcher{}
	p := newTestPipeline(gen, search, nil)

	_, stageErr := p.Run(context.Background(), "anything")
	if stageErr != nil {
		t.Fatalf("unexpected stage error: %v", stageErr)
	}
	if gen.generateCalls != 2 {
		t.Errorf("generator called %d times, want exactly 2 attempts", gen.generateCalls)
	}
	if search.calls != 1 {
		t.Fatal("search should still run with the partial spec")
	}
	if search.lastSpec.Limit != "7" {
		t.Errorf("partial spec not carried through, got %+v", search.lastSpec)
	}
}

func TestRunSearchFailureSkipsRefinement(t *testing.T) {
	gen := &mockGenerator{}
	search := &mockSearcher{
		SearchFunc: func(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
			return nil, errSentinel
		},
	}
	p := newTestPipeline(gen, search, nil)

	_, stageErr := p.Run(context.Background(), "anything")
	if stageErr == nil || stageErr.Kind != KindSearch {
		t.Fatalf("stageErr = %v, want KindSearch", stageErr)
	}
	if gen.streamCalls != 0 {
		t.Error("refinement must not run after search failure")
	}
}

func TestRunRefinementFailure(t *testing.T) {
	gen := &mockGenerator{
		GenerateStreamFunc: func(ctx context.Context, prompt string) (io.ReadCloser, error) {
			return nil, errSentinel
		},
	}
	p := newTestPipeline(gen, nil, nil)

	_, stageErr := p.Run(context.Background(), "anything")
	if stageErr == nil || stageErr.Kind != KindRefinement {
		t.Fatalf("stageErr = %v, want KindRefinement", stageErr)
	}
}

func TestRunEndToEnd(t *testing.T) {
	var refinePrompt string
	gen := &mockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"query_type": "q", "query_value": "sci-fi", "limit": "3"}`, nil
		},
		GenerateStreamFunc: func(ctx context.Context, prompt string) (io.ReadCloser, error) {
			refinePrompt = prompt
			return io.NopCloser(strings.NewReader("Here are two great reads.\n")), nil
		},
	}
	search := &mockSearcher{
		SearchFunc: func(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
			return &model.SearchResult{
				NumFound: 2,
				Docs: []model.Document{
					{Title: "Dune", AuthorName: []string{"Frank Herbert"}},
					{Title: "Hyperion", AuthorName: []string{"Dan Simmons"}},
				},
			}, nil
		},
	}
	p := newTestPipeline(gen, search, nil)

	outcome, stageErr := p.Run(context.Background(), "best sci-fi books")
	if stageErr != nil {
		t.Fatalf("unexpected stage error: %v", stageErr)
	}
	if outcome.ContentType != "text/plain" {
		t.Errorf("ContentType = %q, want text/plain", outcome.ContentType)
	}
	if search.lastSpec.QueryValue != "sci-fi" {
		t.Errorf("search spec = %+v", search.lastSpec)
	}

	for _, want := range []string{"best sci-fi books", "'Dune' by Frank Herbert", "'Hyperion' by Dan Simmons"} {
		if !strings.Contains(refinePrompt, want) {
			t.Errorf("refine prompt missing %q", want)
		}
	}

	body := readAll(t, outcome.Body)
	if body != "Here are two great reads.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestRunNarratesAtMostThreeDocs(t *testing.T) {
	var refinePrompt string
	gen := &mockGenerator{
		GenerateStreamFunc: func(ctx context.Context, prompt string) (io.ReadCloser, error) {
			refinePrompt = prompt
			return io.NopCloser(strings.NewReader("ok\n")), nil
		},
	}
	search := &mockSearcher{
		SearchFunc: func(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
			return &model.SearchResult{
				Docs: []model.Document{
					{Title: "One"}, {Title: "Two"}, {Title: "Three"}, {Title: "Four"}, {Title: "Five"},
				},
			}, nil
		},
	}
	p := newTestPipeline(gen, search, nil)

	if _, stageErr := p.Run(context.Background(), "anything"); stageErr != nil {
		t.Fatalf("unexpected stage error: %v", stageErr)
	}
	for _, want := range []string{"'One'", "'Two'", "'Three'"} {
		if !strings.Contains(refinePrompt, want) {
			t.Errorf("refine prompt missing %q", want)
		}
	}
	for _, banned := range []string{"'Four'", "'Five'"} {
		if strings.Contains(refinePrompt, banned) {
			t.Errorf("refine prompt should not include %q", banned)
		}
	}
}
