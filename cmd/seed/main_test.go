package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
)

func TestFixturesCoverEveryIncomeType(t *testing.T) {
	var subs []application.Submission
	require.NoError(t, json.Unmarshal(fixtures, &subs))
	require.NotEmpty(t, subs)

	seen := map[application.IncomeType]bool{}
	for _, s := range subs {
		if s.IncomeInfo == nil {
			continue
		}
		for _, src := range s.IncomeInfo.Sources {
			seen[src.Type] = true
		}
	}
	for _, want := range []application.IncomeType{
		application.IncomeEmployedSalary,
		application.IncomeEmployedHourly,
		application.IncomeSelfEmployedProprietor,
		application.IncomeSelfEmployedPartnership,
		application.IncomeOther,
	} {
		assert.True(t, seen[want], "missing %s", want)
	}
}
