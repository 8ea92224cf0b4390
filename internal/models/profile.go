// internal/models/profile.go
package models

import (
	"strconv"
)

// Region is a supported state. The empty value is never a valid region.
type Region string

const (
	RegionTelangana     Region = "Telangana"
	RegionAndhraPradesh Region = "Andhra Pradesh"
)

type Occupation string

const (
	OccupationStudent  Occupation = "student"
	OccupationFarmer   Occupation = "farmer"
	OccupationWeaver   Occupation = "weaver"
	OccupationLabor    Occupation = "labor"
	OccupationBusiness Occupation = "business"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Field names a profile attribute.
type Field string

const (
	FieldAge         Field = "age"
	FieldRegion      Field = "region"
	FieldOccupation  Field = "occupation"
	FieldIncome      Field = "income"
	FieldGender      Field = "gender"
	FieldHasLand     Field = "hasLand"
	FieldHasChildren Field = "hasChildren"
)

// RequiredFields are asked for, in order, before any matching happens.
var RequiredFields = []Field{FieldAge, FieldRegion}

// Profile is the partial set of citizen attributes collected so far.
// A nil pointer means the attribute has not been provided.
type Profile struct {
	Age         *int        `json:"age"`
	Region      *Region     `json:"region"`
	Occupation  *Occupation `json:"occupation"`
	Income      *int        `json:"income"`
	Gender      *Gender     `json:"gender"`
	HasLand     *bool       `json:"hasLand"`
	HasChildren *bool       `json:"hasChildren"`
}

// FieldChange records one attribute transition caused by an update.
type FieldChange struct {
	Field     Field  `json:"field"`
	Old       string `json:"old,omitempty"`
	New       string `json:"new"`
	Overwrite bool   `json:"overwrite"`
}

func IntPtr(v int) *int { return &v }

func RegionPtr(v Region) *Region { return &v }

func OccupationPtr(v Occupation) *Occupation { return &v }

func GenderPtr(v Gender) *Gender { return &v }

func BoolPtr(v bool) *bool { return &v }

// Clone returns a deep copy so snapshots never alias session state.
func (p Profile) Clone() Profile {
	out := Profile{}
	if p.Age != nil {
		out.Age = IntPtr(*p.Age)
	}
	if p.Region != nil {
		out.Region = RegionPtr(*p.Region)
	}
	if p.Occupation != nil {
		out.Occupation = OccupationPtr(*p.Occupation)
	}
	if p.Income != nil {
		out.Income = IntPtr(*p.Income)
	}
	if p.Gender != nil {
		out.Gender = GenderPtr(*p.Gender)
	}
	if p.HasLand != nil {
		out.HasLand = BoolPtr(*p.HasLand)
	}
	if p.HasChildren != nil {
		out.HasChildren = BoolPtr(*p.HasChildren)
	}
	return out
}

// IsSet reports whether the named field carries a value.
func (p Profile) IsSet(f Field) bool {
	switch f {
	case FieldAge:
		return p.Age != nil
	case FieldRegion:
		return p.Region != nil
	case FieldOccupation:
		return p.Occupation != nil
	case FieldIncome:
		return p.Income != nil
	case FieldGender:
		return p.Gender != nil
	case FieldHasLand:
		return p.HasLand != nil
	case FieldHasChildren:
		return p.HasChildren != nil
	}
	return false
}

// Value renders a field for logs and change events; empty when unset.
func (p Profile) Value(f Field) string {
	switch f {
	case FieldAge:
		if p.Age != nil {
			return strconv.Itoa(*p.Age)
		}
	case FieldRegion:
		if p.Region != nil {
			return string(*p.Region)
		}
	case FieldOccupation:
		if p.Occupation != nil {
			return string(*p.Occupation)
		}
	case FieldIncome:
		if p.Income != nil {
			return strconv.Itoa(*p.Income)
		}
	case FieldGender:
		if p.Gender != nil {
			return string(*p.Gender)
		}
	case FieldHasLand:
		if p.HasLand != nil {
			return strconv.FormatBool(*p.HasLand)
		}
	case FieldHasChildren:
		if p.HasChildren != nil {
			return strconv.FormatBool(*p.HasChildren)
		}
	}
	return ""
}

// MissingRequired lists unset required fields in asking order.
func (p Profile) MissingRequired() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if !p.IsSet(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (p Profile) HasRequired() bool {
	return len(p.MissingRequired()) == 0
}

// HasSufficient is true once the optional occupation is known as well.
func (p Profile) HasSufficient() bool {
	return p.HasRequired() && p.Occupation != nil
}

// Fingerprint is a stable key over every attribute that influences scoring.
func (p Profile) Fingerprint() string {
	fields := []Field{FieldAge, FieldRegion, FieldOccupation, FieldIncome, FieldGender}
	out := make([]byte, 0, 64)
	for i, f := range fields {
		if i > 0 {
			out = append(out, '|')
		}
		out = append(out, p.Value(f)...)
	}
	return string(out)
}
