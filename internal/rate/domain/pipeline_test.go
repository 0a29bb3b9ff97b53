package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func process(t *testing.T, body string) (Result, string) {
	t.Helper()
	res := NewPipeline(denver).ProcessBody([]byte(body))
	out, err := json.Marshal(res)
	require.NoError(t, err)
	return res, string(out)
}

func TestProcess_ScenarioA_MissingEndBecomesPointPeriod(t *testing.T) {
	res, out := process(t, `[{"periodStart":"2021-01-01","rate":"10"}]`)

	require.True(t, res.Succeeded())
	assert.Equal(t, StageSucceeded, res.Stage)
	assert.JSONEq(t,
		`{"data":[{"periodStart":"2021-01-01","periodEnd":"2021-01-01","rate":"10.00","colorCode":"c0b3c9"}]}`,
		out)
}

func TestProcess_ScenarioB_Merge(t *testing.T) {
	res, out := process(t, `[
		{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"},
		{"periodStart":"2021-01-05","periodEnd":"2021-01-15","rate":"5"}
	]`)

	require.True(t, res.Succeeded())
	assert.Equal(t, 1, res.Stats.Merged)
	assert.Equal(t, 1, res.Stats.Entries)
	assert.JSONEq(t,
		`{"data":[{"periodStart":"2021-01-01","periodEnd":"2021-01-15","rate":"5.00","colorCode":"dec773"}]}`,
		out)
}

func TestProcess_ScenarioC_Conflict(t *testing.T) {
	res, out := process(t, `[
		{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"},
		{"periodStart":"2021-01-05","periodEnd":"2021-01-15","rate":"7"}
	]`)

	require.False(t, res.Succeeded())
	assert.Equal(t, StageMerging, res.Stage)
	assert.Nil(t, res.Data)
	assert.Equal(t, map[Reason]int{ReasonOverlapConflict: 1}, res.Reasons())
	assert.NotContains(t, out, `"data":[`)
	assert.JSONEq(t, `{"errors":[{
		"msg":"Data found with overlapping dates but different rates.",
		"data":"{\"periodStart\":\"2021-01-01\",\"periodEnd\":\"2021-01-10\",\"rate\":\"5\"},{\"periodStart\":\"2021-01-05\",\"periodEnd\":\"2021-01-15\",\"rate\":\"7\"}"
	}]}`, out)
}

func TestProcess_SharedDayWithTimeOfDayConflicts(t *testing.T) {
	res, _ := process(t, `[
		{"periodStart":"2021-01-01 10:00","periodEnd":"2021-01-05 08:00","rate":"5"},
		{"periodStart":"2021-01-05 09:00","periodEnd":"2021-01-09","rate":"7"}
	]`)

	require.False(t, res.Succeeded())
	assert.Equal(t, map[Reason]int{ReasonOverlapConflict: 1}, res.Reasons())
}

func TestProcess_SharedDayWithTimeOfDayMerges(t *testing.T) {
	res, out := process(t, `[
		{"periodStart":"2021-01-01 10:00","periodEnd":"2021-01-05 08:00","rate":"5"},
		{"periodStart":"2021-01-05 09:00","periodEnd":"2021-01-09","rate":"5"}
	]`)

	require.True(t, res.Succeeded())
	assert.Equal(t, 1, res.Stats.Merged)
	assert.JSONEq(t,
		`{"data":[{"periodStart":"2021-01-01","periodEnd":"2021-01-09","rate":"5.00","colorCode":"dec773"}]}`,
		out)
}

func TestProcess_ZonedDateKeepsWrittenDay(t *testing.T) {
	_, out := process(t, `[{"periodStart":"2021-01-01T00:00:00Z","rate":"5"}]`)

	assert.JSONEq(t,
		`{"data":[{"periodStart":"2021-01-01","periodEnd":"2021-01-01","rate":"5.00","colorCode":"dec773"}]}`,
		out)
}

func TestProcess_ScenarioD_NegativeRate(t *testing.T) {
	res, out := process(t, `[{"periodStart":"2021-01-01","periodEnd":"2021-01-02","rate":"-3"}]`)

	require.False(t, res.Succeeded())
	assert.Equal(t, StageValidating, res.Stage)
	assert.JSONEq(t, `{"errors":[{
		"msg":"Negative rate.",
		"data":"{\"periodStart\":\"2021-01-01\",\"periodEnd\":\"2021-01-02\",\"rate\":\"-3\"}"
	}]}`, out)
}

func TestProcess_ScenarioE_MalformedBatch(t *testing.T) {
	for _, body := range []string{`not json`, ``, `null`, `{"periodStart":"2021-01-01"}`, `"still not json"`, `"\"[]\""`} {
		t.Run(body, func(t *testing.T) {
			res, out := process(t, body)

			assert.Equal(t, StageDecoding, res.Stage)
			assert.Equal(t, `{"errors":[{"msg":"Invalid JSON string."}]}`, out)
		})
	}
}

func TestProcess_NoPartialSuccess(t *testing.T) {
	res, _ := process(t, `[
		{"periodStart":"2021-01-01","rate":"1"},
		{"periodStart":"2021-01-02","rate":"2"},
		{"periodStart":"2021-01-03"}
	]`)

	require.False(t, res.Succeeded())
	assert.Empty(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Missing rate.", res.Errors[0].Msg)
	assert.Equal(t, 2, res.Stats.Valid)
}

func TestProcess_ValidationErrorsHideConflicts(t *testing.T) {
	res, _ := process(t, `[
		{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"},
		{"periodStart":"2021-01-05","periodEnd":"2021-01-15","rate":"7"},
		{"rate":"7"}
	]`)

	assert.Equal(t, StageValidating, res.Stage)
	assert.Equal(t, map[Reason]int{ReasonMissingDatePeriod: 1}, res.Reasons())
}

func TestProcess_EmptyBatch(t *testing.T) {
	res, out := process(t, `[]`)

	assert.True(t, res.Succeeded())
	assert.Equal(t, `{"data":[]}`, out)
}

func TestProcess_DoublyEncodedBatch(t *testing.T) {
	_, out := process(t, `"[{\"periodEnd\":\"2021-06-30\",\"rate\":\"1\"}]"`)

	assert.JSONEq(t,
		`{"data":[{"periodStart":"2021-06-30","periodEnd":"2021-06-30","rate":"1.00","colorCode":"6e23b"}]}`,
		out)
}

func TestProcess_ChronologicalOutput(t *testing.T) {
	res, _ := process(t, `[
		{"periodStart":"2021-03-01","periodEnd":"2021-03-31","rate":"3"},
		{"periodStart":"2021-01-01","periodEnd":"2021-01-31","rate":"1"},
		{"periodStart":"2021-02-01","periodEnd":"2021-02-28","rate":"2"}
	]`)

	require.True(t, res.Succeeded())
	require.Len(t, res.Data, 3)
	assert.Equal(t, "2021-01-01", res.Data[0].PeriodStart)
	assert.Equal(t, "2021-02-01", res.Data[1].PeriodStart)
	assert.Equal(t, "2021-03-01", res.Data[2].PeriodStart)
	for _, d := range res.Data {
		assert.LessOrEqual(t, d.PeriodStart, d.PeriodEnd)
	}
}

func TestFormat_Rounding(t *testing.T) {
	tests := []struct {
		rate string
		want string
	}{
		{"12.5", "12.50"},
		{"12.345", "12.35"},
		{"2.675", "2.68"},
		{"0.004", "0.00"},
		{"1234567.891", "1234567.89"},
		{"1e3", "1000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			list := entries(t, `{"periodStart":"2021-01-01","rate":"`+tt.rate+`"}`)
			assert.Equal(t, tt.want, Format(list[0]).Rate)
		})
	}
}

func TestProcess_RoundTripIsIdempotent(t *testing.T) {
	first, firstOut := process(t, `[
		{"periodStart":"2021-01-20","periodEnd":"2021-01-05","rate":"4.5"},
		{"periodStart":"2021-01-15","periodEnd":"2021-02-01","rate":"4.50"},
		{"periodEnd":"2021-03-01","rate":"12"},
		{"periodStart":"2021-04-01T10:00:00","periodEnd":"2021-04-03","rate":"0"},
		{"periodStart":"2021-05-01 10:00","periodEnd":"2021-05-05 08:00","rate":"3"},
		{"periodStart":"2021-05-05 09:00","periodEnd":"2021-05-09","rate":"3"}
	]`)
	require.True(t, first.Succeeded())

	records := make([]RawRecord, len(first.Data))
	for i, d := range first.Data {
		records[i] = d.Record()
	}
	second := NewPipeline(denver).Process(records)
	secondOut, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, firstOut, string(secondOut))
}

func TestProcess_InputOrderDoesNotChangeOutput(t *testing.T) {
	rows := []string{
		`{"periodStart":"2021-01-01","periodEnd":"2021-01-10","rate":"5"}`,
		`{"periodStart":"2021-01-08","periodEnd":"2021-01-12","rate":"5"}`,
		`{"periodStart":"2021-02-01","periodEnd":"2021-02-03","rate":"6"}`,
		`{"periodStart":"2021-01-13","periodEnd":"2021-01-31","rate":"2"}`,
	}
	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}

	var want string
	for _, order := range orders {
		body := "["
		for k, idx := range order {
			if k > 0 {
				body += ","
			}
			body += rows[idx]
		}
		body += "]"

		_, out := process(t, body)
		if want == "" {
			want = out
			continue
		}
		assert.Equal(t, want, out, "order %v", order)
	}
}

func TestProcess_Deterministic(t *testing.T) {
	body := `[{"periodStart":"2021-05-01","periodEnd":"2021-05-09","rate":"7.25","id":3}]`

	_, a := process(t, body)
	_, b := process(t, body)

	assert.Equal(t, a, b)
}
