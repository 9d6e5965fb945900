package models

// Subject is the closed set of UPSC subjects a question can be filed under.
type Subject string

const (
	SubjectHistory           Subject = "history"
	SubjectGeography         Subject = "geography"
	SubjectPolity            Subject = "polity"
	SubjectEconomy           Subject = "economy"
	SubjectEnvironment       Subject = "environment"
	SubjectScienceTechnology Subject = "science-and-technology"
	SubjectArtCulture        Subject = "art-and-culture"
	SubjectSociety           Subject = "society"
	SubjectInternationalRel  Subject = "international-relations"
	SubjectInternalSecurity  Subject = "internal-security"
	SubjectEthics            Subject = "ethics"
	SubjectCurrentAffairs    Subject = "current-affairs"
	SubjectCSAT              Subject = "csat"
	SubjectEssay             Subject = "essay"
	SubjectOptional          Subject = "optional"
	SubjectOther             Subject = "other"
)

// Subjects lists every subject in display order.
var Subjects = []Subject{
	SubjectHistory,
	SubjectGeography,
	SubjectPolity,
	SubjectEconomy,
	SubjectEnvironment,
	SubjectScienceTechnology,
	SubjectArtCulture,
	SubjectSociety,
	SubjectInternationalRel,
	SubjectInternalSecurity,
	SubjectEthics,
	SubjectCurrentAffairs,
	SubjectCSAT,
	SubjectEssay,
	SubjectOptional,
	SubjectOther,
}

// ParseSubject returns the subject for s and whether it is a known value.
func ParseSubject(s string) (Subject, bool) {
	for _, sub := range Subjects {
		if string(sub) == s {
			return sub, true
		}
	}
	return "", false
}
