package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTally(t *testing.T) {
	records := []ParticipationRecord{
		{ID: "1", Gender: GenderMale, Age: 20},
		{ID: "2", Gender: GenderFemale, Age: 21},
		{ID: "3", Gender: GenderFemale, Age: 60},
		{ID: "4", Gender: GenderOther, Age: 61},
		{ID: "5", Age: 0},
	}

	stats := Tally(records)

	require.Equal(t, 5, stats.Total)
	require.Equal(t, 1, stats.Male)
	require.Equal(t, 2, stats.Female)
	require.Equal(t, 1, stats.Other)
	require.Equal(t, map[string]int{"0-20": 2, "21-40": 1, "41-60": 1, "60+": 1}, stats.AgeGroups)
}

func TestParseGender(t *testing.T) {
	require.Equal(t, GenderMale, ParseGender(" Male "))
	require.Equal(t, GenderFemale, ParseGender("F"))
	require.Equal(t, GenderOther, ParseGender("non-binary"))
	require.Equal(t, Gender(""), ParseGender(""))
}
