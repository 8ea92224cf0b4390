// internal/profile/store.go

// Package profile owns the partial citizen profile of one conversation and
// the set of fields that have already been asked for.
package profile

import (
	"scheme-assistant/internal/models"
)

// Store is not safe for concurrent use; a session serialises its turns.
type Store struct {
	profile   models.Profile
	solicited map[models.Field]struct{}
}

func NewStore() *Store {
	return &Store{solicited: make(map[models.Field]struct{})}
}

// Apply merges every set field of update into the profile. A field is only
// written when it is unset or holds a different value; each write is
// returned as a change event.
func (s *Store) Apply(update models.Profile) []models.FieldChange {
	p := &s.profile
	steps := []struct {
		field  models.Field
		assign func() bool
	}{
		{models.FieldAge, func() bool { return assign(&p.Age, update.Age) }},
		{models.FieldRegion, func() bool { return assign(&p.Region, update.Region) }},
		{models.FieldOccupation, func() bool { return assign(&p.Occupation, update.Occupation) }},
		{models.FieldIncome, func() bool { return assign(&p.Income, update.Income) }},
		{models.FieldGender, func() bool { return assign(&p.Gender, update.Gender) }},
		{models.FieldHasLand, func() bool { return assign(&p.HasLand, update.HasLand) }},
		{models.FieldHasChildren, func() bool { return assign(&p.HasChildren, update.HasChildren) }},
	}

	var changes []models.FieldChange
	for _, st := range steps {
		wasSet := p.IsSet(st.field)
		old := p.Value(st.field)
		if !st.assign() {
			continue
		}
		changes = append(changes, models.FieldChange{
			Field:     st.field,
			Old:       old,
			New:       p.Value(st.field),
			Overwrite: wasSet,
		})
	}
	return changes
}

func assign[T comparable](dst **T, src *T) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// Snapshot returns a deep copy of the current profile.
func (s *Store) Snapshot() models.Profile {
	return s.profile.Clone()
}

func (s *Store) MarkSolicited(f models.Field) {
	s.solicited[f] = struct{}{}
}

func (s *Store) WasSolicited(f models.Field) bool {
	_, ok := s.solicited[f]
	return ok
}

// Solicited lists asked-for fields in canonical field order.
func (s *Store) Solicited() []models.Field {
	order := []models.Field{
		models.FieldAge, models.FieldRegion, models.FieldOccupation, models.FieldIncome,
		models.FieldGender, models.FieldHasLand, models.FieldHasChildren,
	}
	var out []models.Field
	for _, f := range order {
		if s.WasSolicited(f) {
			out = append(out, f)
		}
	}
	return out
}

// Reset clears the profile and the solicited set.
func (s *Store) Reset() {
	s.profile = models.Profile{}
	s.solicited = make(map[models.Field]struct{})
}
