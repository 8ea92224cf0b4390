// internal/extraction/extractor.go

// Package extraction pulls profile attributes and intent cues out of free
// text using keyword tables and patterns. Nothing here ever fails: a miss is
// reported as absence.
package extraction

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"scheme-assistant/internal/models"
)

// Age finds an age next to a unit keyword. While the conversation is still
// collecting information a bare 1-3 digit number is accepted as well.
func Age(text string, collecting bool) (int, bool) {
	lower := strings.ToLower(text)

	if m := ageWithUnitRE.FindStringSubmatch(lower); m != nil {
		if age, ok := validAge(m[1]); ok {
			return age, true
		}
	}

	if collecting {
		for _, loc := range bareNumberRE.FindAllStringSubmatchIndex(lower, -1) {
			start, end := loc[2], loc[3]
			if partOfAmount(lower, start, end) {
				continue
			}
			if age, ok := validAge(lower[start:end]); ok {
				return age, true
			}
		}
	}
	return 0, false
}

// partOfAmount reports whether the digits at s[start:end] are one group of a
// comma separated figure or are followed by an income keyword.
func partOfAmount(s string, start, end int) bool {
	if start >= 2 && s[start-1] == ',' && isDigit(s[start-2]) {
		return true
	}
	if end+1 < len(s) && s[end] == ',' && isDigit(s[end+1]) {
		return true
	}
	rest := strings.TrimLeft(s[end:], " \t")
	for _, k := range incomeKeywords {
		if strings.HasPrefix(rest, k) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func validAge(digits string) (int, bool) {
	age, err := strconv.Atoi(digits)
	if err != nil || age < MinAge || age > MaxAge {
		return 0, false
	}
	return age, true
}

func Region(text string) (models.Region, bool) {
	lower := strings.ToLower(text)
	for _, e := range regionVocabulary {
		if containsAny(lower, e.keywords) {
			return e.region, true
		}
	}
	return "", false
}

func Occupation(text string) (models.Occupation, bool) {
	lower := strings.ToLower(text)
	for _, e := range occupationVocabulary {
		if containsAny(lower, e.keywords) {
			return e.occupation, true
		}
	}
	return "", false
}

// Income reads a number directly followed by a currency or income keyword.
// Digit grouping commas are ignored.
func Income(text string) (int, bool) {
	m := incomeRE.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

func Gender(text string) (models.Gender, bool) {
	lower := strings.ToLower(text)
	for _, e := range genderVocabulary {
		if containsAny(lower, e.keywords) {
			return e.gender, true
		}
	}
	return "", false
}

// All runs every field extractor over the same utterance and returns a
// partial profile holding only what was found.
func All(text string, collecting bool) models.Profile {
	var p models.Profile
	if v, ok := Age(text, collecting); ok {
		p.Age = models.IntPtr(v)
	}
	if v, ok := Region(text); ok {
		p.Region = models.RegionPtr(v)
	}
	if v, ok := Occupation(text); ok {
		p.Occupation = models.OccupationPtr(v)
	}
	if v, ok := Income(text); ok {
		p.Income = models.IntPtr(v)
	}
	if v, ok := Gender(text); ok {
		p.Gender = models.GenderPtr(v)
	}
	return p
}

// WantsApplication reports an application-procedure request. With
// acceptAffirmation, a plain "yes" also counts.
func WantsApplication(text string, acceptAffirmation bool) bool {
	lower := strings.ToLower(text)
	if containsAny(lower, applicationCues) {
		return true
	}
	return acceptAffirmation && containsAny(lower, affirmationCues)
}

// minNameWordLen is the rune length a name word must exceed to count as a
// partial mention.
const minNameWordLen = 2

// MentionsScheme reports whether the utterance names the scheme, either in
// full (local or English name) or through any sufficiently long word of the
// local name.
func MentionsScheme(text string, s *models.Scheme) bool {
	if s == nil {
		return false
	}
	lower := strings.ToLower(text)

	if name := strings.ToLower(strings.TrimSpace(s.Name)); name != "" && strings.Contains(lower, name) {
		return true
	}
	if name := strings.ToLower(strings.TrimSpace(s.NameEnglish)); name != "" && strings.Contains(lower, name) {
		return true
	}
	for _, word := range strings.Fields(s.Name) {
		if utf8.RuneCountInString(word) <= minNameWordLen {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
