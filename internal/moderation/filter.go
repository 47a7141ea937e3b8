// Package moderation wraps the profanity filter applied to incoming queries
// before any model call is made.
package moderation

import (
	goaway "github.com/TwiN/go-away"
)

// Message is the single chunk streamed back when a query is flagged.
const Message = "The Book Search service is moderated, and does now allow for profanity"

// Filter checks free-text queries against a pre-loaded word list.
// It is created once at startup and shared across requests; detection is
// purely in-memory, no network calls.
type Filter struct {
	detector *goaway.ProfanityDetector
}

// NewFilter creates a Filter with leetspeak and accent sanitization enabled,
// so trivial obfuscations ("sh1t", "shït") are still caught.
func NewFilter() *Filter {
	return &Filter{
		detector: goaway.NewProfanityDetector().
			WithSanitizeLeetSpeak(true).
			WithSanitizeAccents(true),
	}
}

// ContainsProfanity reports whether the text trips the word list.
func (f *Filter) ContainsProfanity(text string) bool {
	return f.detector.IsProfane(text)
}
