// internal/extraction/vocabulary.go
package extraction

import (
	"regexp"

	"scheme-assistant/internal/models"
)

// ---------- package-level compiled regexes ----------

var (
	// number followed by an age unit in English or Telugu
	ageWithUnitRE = regexp.MustCompile(`(\d{1,3})\s*(?:years|సంవత్సరాల|ఏళ్ళు|year|సంవత్సరం|ఏళ్ల)`)
	bareNumberRE  = regexp.MustCompile(`\b(\d{1,3})\b`)
	incomeRE      = regexp.MustCompile(`(\d+(?:,\d+)*)\s*(?:rupees|రూపాయల|income|ఆదాయం)`)
)

// incomeKeywords mirror the alternatives of incomeRE.
var incomeKeywords = []string{"rupees", "రూపాయల", "income", "ఆదాయం"}

const (
	MinAge = 1
	MaxAge = 120
)

// ---------- keyword tables ----------
// Tables are ordered: the first entry with a matching keyword wins.

type regionEntry struct {
	region   models.Region
	keywords []string
}

var regionVocabulary = []regionEntry{
	{models.RegionTelangana, []string{"telangana", "తెలంగాణ", "తెలంగాణా"}},
	{models.RegionAndhraPradesh, []string{"andhra", "ఆంధ్ర", "ఆంధ్రప్రదేశ్", "ఆంధ్రప్రదేశ"}},
}

type occupationEntry struct {
	occupation models.Occupation
	keywords   []string
}

var occupationVocabulary = []occupationEntry{
	{models.OccupationStudent, []string{"విద్యార్థి", "student", "చదువు", "స్కూల్", "కాలేజీ", "college", "school"}},
	{models.OccupationFarmer, []string{"రైతు", "rythu", "farmer", "agriculture", "వ్యవసాయం", "వ్యవసాయ"}},
	{models.OccupationWeaver, []string{"చేనేత", "weaver", "handloom"}},
	{models.OccupationLabor, []string{"కూలీ", "labor", "worker", "labour", "కార్మికుడు"}},
	{models.OccupationBusiness, []string{"వ్యాపారి", "business", "trader", "వ్యాపారం"}},
}

type genderEntry struct {
	gender   models.Gender
	keywords []string
}

// "male" is a substring of "female", so the female table is checked first.
var genderVocabulary = []genderEntry{
	{models.GenderFemale, []string{"అమ్మాయి", "girl", "female", "మహిళ", "స్త్రీ"}},
	{models.GenderMale, []string{"అబ్బాయి", "boy", "male", "పురుషుడు"}},
}

// applicationCues signal that the citizen wants to know how to apply.
var applicationCues = []string{"దరఖాస్తు", "apply", "ఎలా", "how", "process", "చేయాలి"}

// affirmationCues are accepted as "yes, tell me how to apply" after a scheme
// has been explained.
var affirmationCues = []string{"yes", "avunu", "అవును", "విస్తరంగా", "vivaranga"}
