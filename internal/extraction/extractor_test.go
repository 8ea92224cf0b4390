// internal/extraction/extractor_test.go
package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scheme-assistant/internal/models"
)

func TestAge(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		collecting bool
		want       int
		found      bool
	}{
		{"english unit", "I am 45 years old", false, 45, true},
		{"singular unit", "1 year", false, 1, true},
		{"telugu unit", "నా వయస్సు 30 సంవత్సరాలు", false, 30, true},
		{"telugu short unit", "25 ఏళ్ళు", false, 25, true},
		{"uppercase unit", "60 YEARS", false, 60, true},
		{"bare number while collecting", "45", true, 45, true},
		{"bare number outside collecting", "45", false, 0, false},
		{"zero rejected", "0 years", true, 0, false},
		{"above range rejected", "150 years", false, 0, false},
		{"four digits not an age", "2024", true, 0, false},
		{"no number", "నేను రైతును", true, 0, false},
		{"grouped amount not an age", "1,00,000 rupees", true, 0, false},
		{"grouped amount without unit", "my income is 1,50,000", true, 0, false},
		{"amount before income keyword", "100 rupees", true, 0, false},
		{"amount before telugu income keyword", "500 ఆదాయం", true, 0, false},
		{"age after an amount", "income 2,00,000 and I am 45", true, 45, true},
		{"comma after age", "45, farmer", true, 45, true},
		{"unit age wins over amount", "1,00,000 rupees and 30 years", true, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Age(tt.text, tt.collecting)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegion(t *testing.T) {
	tests := []struct {
		text  string
		want  models.Region
		found bool
	}{
		{"Telangana", models.RegionTelangana, true},
		{"నేను తెలంగాణ నుండి", models.RegionTelangana, true},
		{"andhra pradesh", models.RegionAndhraPradesh, true},
		{"ఆంధ్రప్రదేశ్", models.RegionAndhraPradesh, true},
		{"Karnataka", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := Region(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOccupation(t *testing.T) {
	tests := []struct {
		text  string
		want  models.Occupation
		found bool
	}{
		{"I am a farmer", models.OccupationFarmer, true},
		{"నేను రైతు", models.OccupationFarmer, true},
		{"handloom weaver", models.OccupationWeaver, true},
		{"daily labour", models.OccupationLabor, true},
		{"small business", models.OccupationBusiness, true},
		{"college student", models.OccupationStudent, true},
		// student is checked before labor
		{"student worker", models.OccupationStudent, true},
		// farmer is checked before labor
		{"farm worker in agriculture", models.OccupationFarmer, true},
		{"retired", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := Occupation(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIncome(t *testing.T) {
	tests := []struct {
		text  string
		want  int
		found bool
	}{
		{"1,50,000 rupees", 150000, true},
		{"50000 income", 50000, true},
		{"2,00,000 రూపాయలు", 200000, true},
		{"ఆదాయం 50000", 0, false},
		{"45 years", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := Income(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGender(t *testing.T) {
	tests := []struct {
		text  string
		want  models.Gender
		found bool
	}{
		{"I am a boy", models.GenderMale, true},
		{"నేను మహిళ", models.GenderFemale, true},
		{"girl", models.GenderFemale, true},
		{"FEMALE", models.GenderFemale, true},
		{"male", models.GenderMale, true},
		{"nothing here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := Gender(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAll(t *testing.T) {
	p := All("I am 45 years old farmer from Telangana", false)

	if assert.NotNil(t, p.Age) {
		assert.Equal(t, 45, *p.Age)
	}
	if assert.NotNil(t, p.Region) {
		assert.Equal(t, models.RegionTelangana, *p.Region)
	}
	if assert.NotNil(t, p.Occupation) {
		assert.Equal(t, models.OccupationFarmer, *p.Occupation)
	}
	assert.Nil(t, p.Income)
	assert.Nil(t, p.Gender)

	empty := All("hello", true)
	assert.Equal(t, models.Profile{}, empty)

	amount := All("1,00,000 rupees", true)
	assert.Nil(t, amount.Age)
	if assert.NotNil(t, amount.Income) {
		assert.Equal(t, 100000, *amount.Income)
	}
}

func TestWantsApplication(t *testing.T) {
	assert.True(t, WantsApplication("how to apply?", false))
	assert.True(t, WantsApplication("దరఖాస్తు ఎలా చేయాలి", false))
	assert.False(t, WantsApplication("yes", false))
	assert.True(t, WantsApplication("yes", true))
	assert.True(t, WantsApplication("అవును", true))
	assert.False(t, WantsApplication("tell me more", true))
}

func TestMentionsScheme(t *testing.T) {
	s := &models.Scheme{ID: "rythu_bandhu", Name: "రైతు బంధు పథకం", NameEnglish: "Rythu Bandhu"}

	assert.True(t, MentionsScheme("రైతు బంధు పథకం గురించి చెప్పండి", s))
	assert.True(t, MentionsScheme("tell me about rythu bandhu", s))
	assert.True(t, MentionsScheme("బంధు", s))
	assert.False(t, MentionsScheme("something else", s))
	assert.False(t, MentionsScheme("anything", nil))

	// two-rune words do not count as partial mentions
	short := &models.Scheme{Name: "ఆ పథకం"}
	assert.False(t, MentionsScheme("ఆ", short))
}
