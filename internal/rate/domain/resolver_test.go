package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(t *testing.T, raws ...string) []*Entry {
	t.Helper()
	out := make([]*Entry, 0, len(raws))
	for _, raw := range raws {
		e, failure := Validate(record(t, raw), denver)
		require.Nil(t, failure, "fixture %s", raw)
		out = append(out, e)
	}
	return out
}

func spans(list []*Entry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = fmt.Sprintf("%s..%s@%s", e.Period.StartDate(), e.Period.EndDate(), e.Rate)
	}
	return out
}

func TestSortChronologically_IsStable(t *testing.T) {
	list := entries(t,
		`{"periodStart":"2021-03-01","rate":"1"}`,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-05","rate":"2"}`,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-02","rate":"3"}`,
		`{"periodStart":"2021-02-01","rate":"4"}`,
	)

	SortChronologically(list)

	assert.Equal(t, []string{
		"2021-01-01..2021-01-05@2",
		"2021-01-01..2021-01-02@3",
		"2021-02-01..2021-02-01@4",
		"2021-03-01..2021-03-01@1",
	}, spans(list))
}

func TestResolve_MergesSameRateOverlaps(t *testing.T) {
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"}`,
		`{"periodStart":"2021-01-05","periodEnd":"2021-01-15","rate":"5"}`,
	)

	resolved, conflicts := Resolve(list)

	assert.Empty(t, conflicts)
	assert.Equal(t, []string{"2021-01-01..2021-01-15@5"}, spans(resolved))
	assert.Len(t, list, 2, "input slice keeps its length")
}

func TestResolve_TouchingEndpointsMerge(t *testing.T) {
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-05","rate":"5.00"}`,
		`{"periodStart":"2021-01-05","periodEnd":"2021-01-09","rate":"5"}`,
		`{"periodStart":"2021-01-10","periodEnd":"2021-01-12","rate":"5"}`,
	)

	resolved, conflicts := Resolve(list)

	assert.Empty(t, conflicts)
	assert.Equal(t, []string{"2021-01-01..2021-01-09@5", "2021-01-10..2021-01-12@5"}, spans(resolved))
}

func TestResolve_ChainRestartsScan(t *testing.T) {
	// The third entry only overlaps the first once the first has absorbed
	// the second, and the fourth only after the third. The cursor entry
	// grows during the pass, so later entries see the extended period.
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-05","rate":"5"}`,
		`{"periodStart":"2021-01-04","periodEnd":"2021-01-10","rate":"5"}`,
		`{"periodStart":"2021-01-08","periodEnd":"2021-01-20","rate":"5"}`,
		`{"periodStart":"2021-01-19","periodEnd":"2021-01-25","rate":"5"}`,
		`{"periodStart":"2021-02-01","periodEnd":"2021-02-02","rate":"5"}`,
	)

	resolved, conflicts := Resolve(list)

	assert.Empty(t, conflicts)
	assert.Equal(t, []string{"2021-01-01..2021-01-25@5", "2021-02-01..2021-02-02@5"}, spans(resolved))
}

func TestResolve_ReportsConflicts(t *testing.T) {
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"}`,
		`{"periodStart":"2021-01-05","periodEnd":"2021-01-15","rate":"7"}`,
	)

	_, conflicts := Resolve(list)

	require.Len(t, conflicts, 1)
	wire := conflicts[0].BatchError()
	assert.Equal(t, "Data found with overlapping dates but different rates.", wire.Msg)
	assert.Equal(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"},{"periodStart":"2021-01-05","periodEnd":"2021-01-15","rate":"7"}`,
		wire.Data)
}

func TestResolve_ConflictRepeatedByRestartedPass(t *testing.T) {
	// Pass 1 for the first entry: conflict with the second, merge with the
	// third. The merge restarts the pass, which reports the conflict again.
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"}`,
		`{"periodStart":"2021-01-03","periodEnd":"2021-01-04","rate":"7"}`,
		`{"periodStart":"2021-01-08","periodEnd":"2021-01-12","rate":"5"}`,
	)

	resolved, conflicts := Resolve(list)

	assert.Equal(t, []string{"2021-01-01..2021-01-12@5", "2021-01-03..2021-01-04@7"}, spans(resolved))
	require.Len(t, conflicts, 2)
	assert.Equal(t, conflicts[0], conflicts[1])
}

func TestResolve_ConflictCitesOriginalRecordAfterMerge(t *testing.T) {
	// The first entry grows by merging the second; the conflict it then
	// finds with the third still cites the first entry's own raw record.
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-05","rate":"5","row":1}`,
		`{"periodStart":"2021-01-05","periodEnd":"2021-01-20","rate":"5","row":2}`,
		`{"periodStart":"2021-01-15","periodEnd":"2021-01-16","rate":"9","row":3}`,
	)

	_, conflicts := Resolve(list)

	require.NotEmpty(t, conflicts)
	for _, c := range conflicts {
		assert.Contains(t, c.First.JSON(), `"row":1`)
		assert.Contains(t, c.Second.JSON(), `"row":3`)
	}
}

func TestResolve_NoSameRateOverlapsRemain(t *testing.T) {
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-31","rate":"1"}`,
		`{"periodStart":"2021-01-02","periodEnd":"2021-01-03","rate":"1"}`,
		`{"periodStart":"2021-02-01","periodEnd":"2021-02-10","rate":"2"}`,
		`{"periodStart":"2021-02-05","periodEnd":"2021-03-01","rate":"2"}`,
		`{"periodStart":"2021-03-02","periodEnd":"2021-03-02","rate":"1"}`,
	)
	SortChronologically(list)

	resolved, conflicts := Resolve(list)

	assert.Empty(t, conflicts)
	assert.Empty(t, SameRateOverlaps(resolved))
	for i := range resolved {
		for j := i + 1; j < len(resolved); j++ {
			if resolved[i].SameRate(resolved[j]) {
				assert.False(t, resolved[i].Period.Overlaps(resolved[j].Period), "%v vs %v", resolved[i].Period, resolved[j].Period)
			}
		}
	}
}

func TestResolve_Empty(t *testing.T) {
	resolved, conflicts := Resolve(nil)

	assert.Empty(t, resolved)
	assert.Empty(t, conflicts)
}

func TestSameRateOverlaps_FlagsUnmergedPairs(t *testing.T) {
	list := entries(t,
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"4"}`,
		`{"periodStart":"2021-01-10","periodEnd":"2021-01-11","rate":"4.0"}`,
	)

	found := SameRateOverlaps(list)

	assert.Equal(t, []string{"rate 4: [2021-01-01, 2021-01-10] overlaps with [2021-01-10, 2021-01-11]"}, found)
}
