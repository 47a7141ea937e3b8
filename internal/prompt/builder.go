package prompt

import (
	"fmt"
	"strings"

	"book-scout/internal/model"
)

const (
	// MaxNarratedBooks caps how many search results are handed to the model
	// for narration, regardless of how many the search returned.
	MaxNarratedBooks = 3

	unknownTitle  = "Unknown Title"
	unknownAuthor = "Unknown Author"
)

// Builder constructs the prompts sent to the generation model.
type Builder struct{}

// NewBuilder creates a new prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildQueryPrompt creates the prompt that asks the model to emit a
// structured search spec for the given user query.
func (b *Builder) BuildQueryPrompt(userQuery string) string {
	return fmt.Sprintf(QueryPromptTemplate, userQuery)
}

// BuildRefinePrompt creates the prompt that asks the model to narrate the
// search results. Only the first MaxNarratedBooks documents are included.
func (b *Builder) BuildRefinePrompt(userQuery string, docs []model.Document) string {
	return fmt.Sprintf(RefinePromptTemplate, userQuery, BuildBookDetails(docs))
}

// BuildBookDetails renders up to MaxNarratedBooks documents as bullet lines,
// one book per line, applying Unknown Title/Unknown Author defaults.
func BuildBookDetails(docs []model.Document) string {
	if len(docs) > MaxNarratedBooks {
		docs = docs[:MaxNarratedBooks]
	}

	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = unknownTitle
		}
		authors := doc.AuthorName
		if len(authors) == 0 {
			authors = []string{unknownAuthor}
		}
		lines = append(lines, fmt.Sprintf("• '%s' by %s", title, strings.Join(authors, ", ")))
	}
	return strings.Join(lines, "\n")
}
