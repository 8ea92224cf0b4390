// internal/speech/speech.go

// Package speech adapts the conversation to voice: transcription of audio
// turns, synthesis of replies and the text cleanup done before synthesis.
package speech

import (
	"context"
	"regexp"
	"strings"
)

// Transcript is the recognised text of one audio turn.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (Transcript, error)
}

type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

var (
	boldRE          = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	markdownRE      = regexp.MustCompile(`[*#]+`)
	markerEmojiRE   = regexp.MustCompile(`[🌐📍🎤✔❌]`)
	bulletRE        = regexp.MustCompile(`(?m)^\s*[-•]\s+`)
	latinParenRE    = regexp.MustCompile(`\s*\([^)]*[a-zA-Z][^)]*\)`)
	latinWordRE     = regexp.MustCompile(`\b[a-zA-Z]+\b`)
	whitespaceRunRE = regexp.MustCompile(`\s+`)
)

// CleanForSpeech removes what a synthesiser would read out literally:
// markdown, marker emoji and list bullets. With dropLatin set, parenthesised
// Latin-script asides and standalone Latin words go too, so a Telugu voice
// does not spell them out.
func CleanForSpeech(text string, dropLatin bool) string {
	text = boldRE.ReplaceAllString(text, "$1")
	text = markdownRE.ReplaceAllString(text, "")
	text = markerEmojiRE.ReplaceAllString(text, "")
	text = bulletRE.ReplaceAllString(text, "")
	if dropLatin {
		text = latinParenRE.ReplaceAllString(text, "")
		text = latinWordRE.ReplaceAllString(text, "")
	}
	text = whitespaceRunRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
