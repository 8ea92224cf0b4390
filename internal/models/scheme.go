// internal/models/scheme.go
package models

import (
	"encoding/json"
	"fmt"
)

// Scheme is one eligibility rule record from the catalog. It is never
// mutated after load.
type Scheme struct {
	ID          string             `json:"id"`
	Name        string             `json:"name_telugu"`
	NameEnglish string             `json:"name_english"`
	Category    string             `json:"category"`
	Description string             `json:"description_telugu"`
	Benefits    string             `json:"benefits"`
	Eligibility Constraints        `json:"eligibility"`
	Application ApplicationProcess `json:"application_process"`
}

// Constraints are the optional eligibility conditions of a scheme.
type Constraints struct {
	AgeMin      *int       `json:"age_min,omitempty"`
	AgeMax      *int       `json:"age_max,omitempty"`
	Region      string     `json:"state,omitempty"`
	Occupations StringList `json:"occupation,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	IncomeMax   *int       `json:"income_max,omitempty"`
}

// ApplicationProcess holds the ordered steps shown to the citizen.
type ApplicationProcess struct {
	Steps           []string `json:"steps_telugu"`
	OnlineURL       string   `json:"online_url,omitempty"`
	OfflineLocation string   `json:"offline_location,omitempty"`
}

// StringList accepts either a JSON array of strings or a single string.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = StringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("occupation must be a string or list of strings: %w", err)
	}
	*s = many
	return nil
}

// MatchResult is a scored scheme produced by a catalog query.
type MatchResult struct {
	Scheme  *Scheme  `json:"scheme"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
