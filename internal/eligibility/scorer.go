// internal/eligibility/scorer.go

// Package eligibility scores a citizen profile against one scheme's
// constraints. Scoring is pure: no I/O and no hidden state.
package eligibility

import (
	"math"
	"strings"

	"scheme-assistant/internal/models"
)

const (
	WeightAgeMin     = 25
	WeightAgeMax     = 25
	WeightRegion     = 25
	WeightOccupation = 25
	WeightGender     = 10
	WeightIncome     = 15

	// PresentationThreshold is the minimum score a scheme needs to be shown.
	PresentationThreshold = 75

	// Nationwide is the region value of schemes open to every state.
	Nationwide = "all india"
)

const (
	ReasonAgeTooLow          = "age too low"
	ReasonAgeExceeded        = "age exceeded"
	ReasonRegionMismatch     = "region mismatch"
	ReasonOccupationNeeded   = "occupation info needed"
	ReasonOccupationMismatch = "occupation mismatch"
	ReasonGenderMismatch     = "gender mismatch"

	ReasonAgeEligible        = "age eligible"
	ReasonRegionEligible     = "region eligible"
	ReasonOccupationEligible = "occupation eligible"
	ReasonGenderEligible     = "gender eligible"
	ReasonIncomeWithinLimit  = "income within limit"
)

// Score evaluates mandatory constraints in a fixed order and stops at the
// first failure with a score of 0 and that single reason. Constraints the
// scheme does not declare are skipped. Income is a soft bonus that only
// counts when the profile carries an income.
func Score(s *models.Scheme, p models.Profile) (int, []string) {
	c := s.Eligibility
	score, maxScore := 0, 0
	var reasons []string

	if p.Age != nil {
		age := *p.Age
		if c.AgeMin != nil {
			maxScore += WeightAgeMin
			if age < *c.AgeMin {
				return 0, []string{ReasonAgeTooLow}
			}
			score += WeightAgeMin
		}
		if c.AgeMax != nil {
			maxScore += WeightAgeMax
			if age > *c.AgeMax {
				return 0, []string{ReasonAgeExceeded}
			}
			score += WeightAgeMax
		}
		if c.AgeMin != nil || c.AgeMax != nil {
			reasons = append(reasons, ReasonAgeEligible)
		}
	}

	if c.Region != "" {
		maxScore += WeightRegion
		if p.Region != nil {
			if !regionMatches(c.Region, string(*p.Region)) {
				return 0, []string{ReasonRegionMismatch}
			}
			score += WeightRegion
			reasons = append(reasons, ReasonRegionEligible)
		}
	}

	if len(c.Occupations) > 0 {
		maxScore += WeightOccupation
		if p.Occupation == nil {
			return 0, []string{ReasonOccupationNeeded}
		}
		if !occupationAllowed(c.Occupations, string(*p.Occupation)) {
			return 0, []string{ReasonOccupationMismatch}
		}
		score += WeightOccupation
		reasons = append(reasons, ReasonOccupationEligible)
	}

	if c.Gender != "" {
		maxScore += WeightGender
		if p.Gender != nil {
			if !strings.EqualFold(c.Gender, string(*p.Gender)) {
				return 0, []string{ReasonGenderMismatch}
			}
			score += WeightGender
			reasons = append(reasons, ReasonGenderEligible)
		}
	}

	if c.IncomeMax != nil && p.Income != nil {
		maxScore += WeightIncome
		if *p.Income <= *c.IncomeMax {
			score += WeightIncome
			reasons = append(reasons, ReasonIncomeWithinLimit)
		}
	}

	if maxScore == 0 {
		return 0, reasons
	}
	return int(math.Round(100 * float64(score) / float64(maxScore))), reasons
}

// Evaluate wraps Score into a match result.
func Evaluate(s *models.Scheme, p models.Profile) models.MatchResult {
	score, reasons := Score(s, p)
	return models.MatchResult{Scheme: s, Score: score, Reasons: reasons}
}

func regionMatches(schemeRegion, userRegion string) bool {
	scheme := strings.ToLower(strings.TrimSpace(schemeRegion))
	if scheme == Nationwide {
		return true
	}
	return strings.Contains(scheme, strings.ToLower(userRegion))
}

func occupationAllowed(allowed []string, occupation string) bool {
	for _, o := range allowed {
		if strings.EqualFold(strings.TrimSpace(o), occupation) {
			return true
		}
	}
	return false
}
