// internal/render/prompt.go
package render

import (
	"strings"
)

// Language selects the reply language of rendered and fixed text.
type Language string

const (
	Telugu  Language = "te"
	English Language = "en"
)

// ParseLanguage defaults to Telugu for anything unrecognised.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(English)) {
		return English
	}
	return Telugu
}

func Apology(lang Language) string {
	if lang == English {
		return "Sorry, something went wrong. Please try again."
	}
	return "క్షమించండి, సమస్య వచ్చింది. మళ్లీ ప్రయత్నించండి."
}

type framing struct {
	persona  string
	rules    []string
	language string
}

var framings = map[Language]framing{
	Telugu: {
		persona:  "You are a friendly government scheme assistant helping citizens of Telangana and Andhra Pradesh find welfare schemes they qualify for.",
		language: "Telugu",
		rules: []string{
			"Respond ONLY in Telugu script.",
			"Do not use honorific titles such as garu, sir or madam.",
			"Keep the reply to 3-4 short, conversational sentences.",
			"Never spell out website addresses; say the website is available instead.",
			"Use only facts present in the context.",
		},
	},
	English: {
		persona:  "You are a friendly government scheme assistant helping citizens of Telangana and Andhra Pradesh find welfare schemes they qualify for.",
		language: "English",
		rules: []string{
			"Respond ONLY in simple English.",
			"Do not use honorific titles such as sir or madam.",
			"Keep the reply to 3-4 short, conversational sentences.",
			"Never spell out website addresses; say the website is available instead.",
			"Use only facts present in the context.",
		},
	},
}

// BuildPrompt frames the engine's request for a text generation model.
func BuildPrompt(lang Language, p Prompt) string {
	f, ok := framings[lang]
	if !ok {
		f = framings[Telugu]
	}

	var b strings.Builder
	b.WriteString(f.persona)
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(strings.TrimSpace(p.Context))
	b.WriteString("\n\nTASK:\n")
	b.WriteString(strings.TrimSpace(p.Instruction))
	if in := strings.TrimSpace(p.Input); in != "" {
		b.WriteString("\n\nUSER INPUT:\n")
		b.WriteString(in)
	}
	b.WriteString("\n\nRULES:\n")
	for _, r := range f.rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteString("\nReply in ")
	b.WriteString(f.language)
	b.WriteString(":")
	return b.String()
}
