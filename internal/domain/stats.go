package domain

// AgeGroups lists the age-group labels in display order.
var AgeGroups = []string{"0-20", "21-40", "41-60", "60+"}

// Stats is the gender and age-group tally shown on the statistics page.
type Stats struct {
	Total     int
	Male      int
	Female    int
	Other     int
	AgeGroups map[string]int
}

// Tally counts records by gender and age group in a single pass.
func Tally(records []ParticipationRecord) Stats {
	stats := Stats{AgeGroups: make(map[string]int, len(AgeGroups))}
	for _, label := range AgeGroups {
		stats.AgeGroups[label] = 0
	}
	for _, rec := range records {
		stats.Total++
		switch rec.Gender {
		case GenderMale:
			stats.Male++
		case GenderFemale:
			stats.Female++
		case GenderOther:
			stats.Other++
		}
		stats.AgeGroups[ageGroup(rec.Age)]++
	}
	return stats
}

func ageGroup(age int) string {
	switch {
	case age <= 20:
		return "0-20"
	case age <= 40:
		return "21-40"
	case age <= 60:
		return "41-60"
	default:
		return "60+"
	}
}
