// internal/catalog/catalog.go

// Package catalog holds the immutable set of schemes loaded at startup and
// answers eligibility queries against it.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"scheme-assistant/internal/eligibility"
	"scheme-assistant/internal/models"
)

// Matcher returns the schemes a profile qualifies for, best first.
type Matcher interface {
	Match(ctx context.Context, p models.Profile) []models.MatchResult
}

// Catalog is read-only after construction and safe to share across sessions.
type Catalog struct {
	schemes []models.Scheme
	byID    map[string]int
}

// New checks cross-record invariants the document schema cannot express.
func New(schemes []models.Scheme) (*Catalog, error) {
	if len(schemes) == 0 {
		return nil, fmt.Errorf("catalog has no schemes")
	}

	c := &Catalog{
		schemes: make([]models.Scheme, len(schemes)),
		byID:    make(map[string]int, len(schemes)),
	}
	copy(c.schemes, schemes)

	for i, s := range c.schemes {
		if s.ID == "" {
			return nil, fmt.Errorf("scheme at position %d has no id", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scheme id %q", s.ID)
		}
		e := s.Eligibility
		if e.AgeMin != nil && e.AgeMax != nil && *e.AgeMin > *e.AgeMax {
			return nil, fmt.Errorf("scheme %q: age_min %d exceeds age_max %d", s.ID, *e.AgeMin, *e.AgeMax)
		}
		c.byID[s.ID] = i
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.schemes)
}

// Find returns the scheme with the given id. The pointer must not be mutated.
func (c *Catalog) Find(id string) (*models.Scheme, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.schemes[i], true
}

// All returns every scheme in catalog order.
func (c *Catalog) All() []*models.Scheme {
	out := make([]*models.Scheme, len(c.schemes))
	for i := range c.schemes {
		out[i] = &c.schemes[i]
	}
	return out
}

// Query scores every scheme, keeps those at or above the presentation
// threshold and orders them by score. Ties keep catalog order.
func (c *Catalog) Query(p models.Profile) []models.MatchResult {
	var results []models.MatchResult
	for i := range c.schemes {
		res := eligibility.Evaluate(&c.schemes[i], p)
		if res.Score >= eligibility.PresentationThreshold {
			results = append(results, res)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Match lets the catalog serve as a Matcher without a cache in front.
func (c *Catalog) Match(_ context.Context, p models.Profile) []models.MatchResult {
	return c.Query(p)
}
