// internal/dialogue/messages.go
package dialogue

import (
	"fmt"
	"strings"

	"scheme-assistant/internal/models"
	"scheme-assistant/internal/render"
)

// Messages are the fixed texts of a conversation language.
type Messages struct {
	Greeting                string
	AskAge                  string
	AskRegion               string
	AskOccupation           string
	AskOccupationForMatches string
	NoMatches               string
	SpecifyScheme           string

	// NoRecords is keyed by occupation; NoRecordsDefault covers the rest.
	NoRecords        map[models.Occupation]string
	NoRecordsDefault string

	StepsUnavailable string // %s: scheme name
	StepsHeader      string // %s: scheme name
	OnlinePointer    string
	OfflinePointer   string // %s: location
	StepsClosing     string

	EnglishNames bool
}

// tasks are the renderer instructions of a conversation language.
type tasks struct {
	present string
	explain string
	answer  string
}

var messageSets = map[render.Language]Messages{
	render.Telugu: {
		Greeting:                "నమస్కారం! మీకు సరిపోయే ప్రభుత్వ పథకాలను కనుగొనడంలో నేను సహాయం చేస్తాను. మీ వయస్సు ఎంత?",
		AskAge:                  "మీ వయస్సు ఎంత?",
		AskRegion:               "మీరు ఏ రాష్ట్రం నుండి? తెలంగాణ లేదా ఆంధ్రప్రదేశ్?",
		AskOccupation:           "మీ వృత్తి ఏమిటి? రైతు, నేత కార్మికుడు, కూలీ, వ్యాపారం లేదా విద్యార్థి?",
		AskOccupationForMatches: "మెరుగైన పథకాలను కనుగొనడానికి మీ వృత్తి గురించి చెప్పండి.",
		NoMatches:               "క్షమించండి, ప్రస్తుతం మీకు సరిపోయే పథకాలు కనుగొనలేకపోయాను.",
		SpecifyScheme:           "దయచేసి మొదట మీకు ఏ పథకం గురించి తెలుసుకోవాలో చెప్పండి.",
		NoRecords: map[models.Occupation]string{
			models.OccupationStudent: "క్షమించండి, మీ వయస్సు మరియు విద్యార్థి స్థితికి సరిపోయే పథకాలు ప్రస్తుతం మా డేటాబేస్‌లో లేవు. దయచేసి మీ స్థానిక విద్యా శాఖ లేదా పాఠశాలను సంప్రదించండి.",
		},
		NoRecordsDefault: "క్షమించండి, మీ వృత్తికి సరిపోయే పథకాలు ప్రస్తుతం మా డేటాబేస్‌లో లేవు.",
		StepsUnavailable: "%s కోసం దరఖాస్తు ప్రక్రియ సమాచారం ప్రస్తుతం అందుబాటులో లేదు.",
		StepsHeader:      "%s కోసం దరఖాస్తు చేయడానికి:",
		OnlinePointer:    "🌐 ఆన్‌లైన్‌లో కూడా దరఖాస్తు చేయవచ్చు",
		OfflinePointer:   "📍 ఆఫ్‌లైన్: %s",
		StepsClosing:     "ఇంకా ఏమైనా సహాయం కావాలా?",
	},
	render.English: {
		Greeting:                "Hello! I will help you find government schemes that suit you. How old are you?",
		AskAge:                  "How old are you?",
		AskRegion:               "Which state are you from? Telangana or Andhra Pradesh?",
		AskOccupation:           "What is your occupation? Farmer, weaver, labourer, business or student?",
		AskOccupationForMatches: "Tell me about your occupation so I can find better schemes.",
		NoMatches:               "Sorry, I could not find any schemes that suit you right now.",
		SpecifyScheme:           "Please tell me first which scheme you are interested in.",
		NoRecords: map[models.Occupation]string{
			models.OccupationStudent: "Sorry, there are currently no schemes in our database for your age and student status. Please contact your local education department or school.",
		},
		NoRecordsDefault: "Sorry, there are currently no schemes in our database for your occupation.",
		StepsUnavailable: "Application details for %s are not available right now.",
		StepsHeader:      "To apply for %s:",
		OnlinePointer:    "🌐 You can also apply online",
		OfflinePointer:   "📍 Offline: %s",
		StepsClosing:     "Can I help you with anything else?",
		EnglishNames:     true,
	},
}

var taskSets = map[render.Language]tasks{
	render.Telugu: {
		present: "Present these schemes to the user in natural Telugu:\n" +
			"- Start with \"మీకు ఈ పథకాలు సరిపోతాయి:\"\n" +
			"- List each scheme with a bullet (•) and ONLY the Telugu name and a one-line benefit\n" +
			"- Keep it short and clear\n" +
			"- End by asking \"ఏ పథకం గురించి తెలుసుకోవాలనుకుంటున్నారు?\"\n" +
			"Maximum 5 sentences total.",
		explain: "Explain this scheme naturally in Telugu:\n" +
			"- Start with the scheme name\n" +
			"- Explain what it provides in 2 simple sentences\n" +
			"- Mention the main benefit with numbers\n" +
			"- End by asking \"దరఖాస్తు ఎలా చేయాలో తెలుసుకోవాలా?\"\n" +
			"Maximum 4 sentences.",
		answer: "Answer the user's question helpfully in natural Telugu. Keep it short and clear. Maximum 3 sentences.",
	},
	render.English: {
		present: "Present these schemes to the user in plain English:\n" +
			"- Start with \"These schemes suit you:\"\n" +
			"- List each scheme with a bullet (•) and ONLY the name and a one-line benefit\n" +
			"- Keep it short and clear\n" +
			"- End by asking \"Which scheme would you like to know about?\"\n" +
			"Maximum 5 sentences total.",
		explain: "Explain this scheme in plain English:\n" +
			"- Start with the scheme name\n" +
			"- Explain what it provides in 2 simple sentences\n" +
			"- Mention the main benefit with numbers\n" +
			"- End by asking \"Would you like to know how to apply?\"\n" +
			"Maximum 4 sentences.",
		answer: "Answer the user's question helpfully in plain English. Keep it short and clear. Maximum 3 sentences.",
	},
}

// MessagesFor returns the message set of lang, falling back to Telugu.
func MessagesFor(lang render.Language) Messages {
	if m, ok := messageSets[lang]; ok {
		return m
	}
	return messageSets[render.Telugu]
}

func tasksFor(lang render.Language) tasks {
	if t, ok := taskSets[lang]; ok {
		return t
	}
	return taskSets[render.Telugu]
}

func (m Messages) question(f models.Field) string {
	if f == models.FieldRegion {
		return m.AskRegion
	}
	return m.AskAge
}

func (m Messages) noRecords(o models.Occupation) string {
	if msg, ok := m.NoRecords[o]; ok {
		return msg
	}
	return m.NoRecordsDefault
}

// SchemeName is the display name of s in this language.
func (m Messages) SchemeName(s *models.Scheme) string {
	if m.EnglishNames && s.NameEnglish != "" {
		return s.NameEnglish
	}
	return s.Name
}

// ApplicationSteps formats the application guide of s: a header, numbered
// steps, optional online and offline pointers and a closing line.
func (m Messages) ApplicationSteps(s *models.Scheme) string {
	name := m.SchemeName(s)
	app := s.Application
	if len(app.Steps) == 0 {
		return fmt.Sprintf(m.StepsUnavailable, name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, m.StepsHeader, name)
	b.WriteString("\n\n")
	for i, step := range app.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	if app.OnlineURL != "" {
		b.WriteString("\n")
		b.WriteString(m.OnlinePointer)
		b.WriteString(": ")
		b.WriteString(app.OnlineURL)
	}
	if app.OfflineLocation != "" {
		b.WriteString("\n")
		fmt.Fprintf(&b, m.OfflinePointer, app.OfflineLocation)
	}
	b.WriteString("\n\n")
	b.WriteString(m.StepsClosing)
	return b.String()
}
