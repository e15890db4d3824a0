package counters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numera/internal/core/apperror"
)

func fc(date time.Time, scope, complement string, sequence int64) formatContext {
	return formatContext{
		date:       date,
		scope:      scope,
		complement: complement,
		sequence:   sequence,
		padRune:    '_',
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	def := &Definition{
		Code: "ZREC",
		Kind: KindAlphanumeric,
		Segments: []Segment{
			{Kind: SegConstant, Constant: "ZR"},
			{Kind: SegYear, Length: 4},
			{Kind: SegMonth, Length: 2},
			{Kind: SegSequence, Length: 4},
		},
	}

	got, err := assemble(def, fc(date(2025, time.March, 15), "", "", 7))
	require.NoError(t, err)
	assert.Equal(t, "ZR2025030007", got)

	// Same inputs, same output.
	again, err := assemble(def, fc(date(2025, time.March, 15), "", "", 7))
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFormatYear(t *testing.T) {
	d := date(2025, time.March, 15)

	assert.Equal(t, "5", formatYear(Segment{Kind: SegYear, Length: 1}, d))
	assert.Equal(t, "25", formatYear(Segment{Kind: SegYear, Length: 2}, d))
	assert.Equal(t, "2025", formatYear(Segment{Kind: SegYear, Length: 4}, d))
	assert.Equal(t, "", formatYear(Segment{Kind: SegYear, Length: 3}, d))
}

func TestFormatMonth(t *testing.T) {
	d := date(2025, time.March, 15)

	assert.Equal(t, "03", formatMonth(Segment{Kind: SegMonth, Length: 2}, d))
	assert.Equal(t, "MAR", formatMonth(Segment{Kind: SegMonth, Length: 3}, d))
	assert.Equal(t, "", formatMonth(Segment{Kind: SegMonth, Length: 5}, d))
}

func TestFormatWeek(t *testing.T) {
	// 2025-03-15 falls in ISO week 11.
	assert.Equal(t, "11", formatWeek(date(2025, time.March, 15)))
	// First ISO week of 2021 starts in the previous calendar year.
	assert.Equal(t, "53", formatWeek(date(2021, time.January, 1)))
}

func TestFormatDay(t *testing.T) {
	d := date(2025, time.March, 15) // Saturday, day-of-year 74

	assert.Equal(t, "06", formatDay(Segment{Kind: SegDay, Length: 1}, d))
	assert.Equal(t, "15", formatDay(Segment{Kind: SegDay, Length: 2}, d))
	assert.Equal(t, "074", formatDay(Segment{Kind: SegDay, Length: 3}, d))
	assert.Equal(t, "", formatDay(Segment{Kind: SegDay, Length: 4}, d))
}

func TestIsoWeekday_SundayIsSeven(t *testing.T) {
	assert.Equal(t, 7, isoWeekday(date(2025, time.March, 16)))
	assert.Equal(t, 1, isoWeekday(date(2025, time.March, 17)))
}

func TestFormatScope(t *testing.T) {
	seg := Segment{Kind: SegSite, Length: 3}

	assert.Equal(t, "AB_", formatScope(seg, "AB", true, '_'), "short scope padded when flag set")
	assert.Equal(t, "AB", formatScope(seg, "AB", false, '_'), "short scope kept when flag unset")
	assert.Equal(t, "ABC", formatScope(seg, "ABCDE", true, '_'), "long scope truncated either way")
	assert.Equal(t, "ABC", formatScope(seg, "ABC", true, '_'))
}

func TestFormatSequence(t *testing.T) {
	seg := Segment{Kind: SegSequence, Length: 4}

	got, err := formatSequence("ZREC", seg, 1)
	require.NoError(t, err)
	assert.Equal(t, "0001", got)

	got, err = formatSequence("ZREC", seg, 9999)
	require.NoError(t, err)
	assert.Equal(t, "9999", got)
}

func TestFormatSequence_Exhausted(t *testing.T) {
	seg := Segment{Kind: SegSequence, Length: 4}

	_, err := formatSequence("ZREC", seg, 10000)
	require.Error(t, err)
	assert.True(t, apperror.IsCounterExhausted(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "ZREC", appErr.Details["counter"])
	assert.Equal(t, int64(10000), appErr.Details["value"])
}

func TestFormatComplement(t *testing.T) {
	assert.Equal(t, "LOT-42", formatComplement(Segment{Kind: SegComplement, Length: 0}, "LOT-42"))
	assert.Equal(t, "LOT", formatComplement(Segment{Kind: SegComplement, Length: 3}, "LOT-42"))
	assert.Equal(t, "", formatComplement(Segment{Kind: SegComplement, Length: 3}, ""))
}

func TestAssemble_NumericCoercion(t *testing.T) {
	def := &Definition{
		Code: "NUM",
		Kind: KindNumeric,
		Segments: []Segment{
			{Kind: SegConstant, Constant: "000"},
			{Kind: SegSequence, Length: 5},
		},
	}

	got, err := assemble(def, fc(date(2025, time.March, 15), "", "", 42))
	require.NoError(t, err)
	assert.Equal(t, "42", got, "leading zeros stripped for numeric counters")
}

func TestAssemble_NumericCoercionFails(t *testing.T) {
	def := &Definition{
		Code: "NUM",
		Kind: KindNumeric,
		Segments: []Segment{
			{Kind: SegConstant, Constant: "FT"},
			{Kind: SegSequence, Length: 5},
		},
	}

	_, err := assemble(def, fc(date(2025, time.March, 15), "", "", 42))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeFormatAssembly))
}

func TestAssemble_UnsupportedSegment(t *testing.T) {
	for _, kind := range []SegmentKind{SegFiscalYear, SegPeriod, SegFormula} {
		def := &Definition{
			Code: "BAD",
			Kind: KindAlphanumeric,
			Segments: []Segment{
				{Kind: kind, Length: 2},
				{Kind: SegSequence, Length: 4},
			},
		}

		_, err := assemble(def, fc(date(2025, time.March, 15), "", "", 1))
		require.Error(t, err, "kind %s", kind)
		assert.True(t, apperror.HasCode(err, apperror.CodeUnsupported), "kind %s", kind)
	}
}

func TestAssemble_ScopeSegments(t *testing.T) {
	def := &Definition{
		Code:     "SFACT",
		Kind:     KindAlphanumeric,
		PadScope: true,
		Segments: []Segment{
			{Kind: SegConstant, Constant: "FT"},
			{Kind: SegYear, Length: 2},
			{Kind: SegSite, Length: 4},
			{Kind: SegSequence, Length: 6},
		},
	}

	got, err := assemble(def, fc(date(2025, time.March, 15), "LI1", "", 123))
	require.NoError(t, err)
	assert.Equal(t, "FT25LI1_000123", got)
}

func TestDefinitionValidate(t *testing.T) {
	valid := &Definition{
		Code:        "OK",
		ResetPolicy: ResetAnnual,
		Level:       LevelSite,
		Kind:        KindAlphanumeric,
		Segments: []Segment{
			{Kind: SegConstant, Constant: "OK"},
			{Kind: SegSequence, Length: 4},
		},
	}
	require.NoError(t, valid.Validate(context.Background()))

	tests := []struct {
		name string
		def  Definition
	}{
		{"missing code", Definition{ResetPolicy: ResetNone, Level: LevelFolder, Kind: KindAlphanumeric}},
		{"bad policy", Definition{Code: "X", ResetPolicy: 9, Level: LevelFolder, Kind: KindAlphanumeric}},
		{"bad level", Definition{Code: "X", ResetPolicy: ResetNone, Level: 0, Kind: KindAlphanumeric}},
		{"bad kind", Definition{Code: "X", ResetPolicy: ResetNone, Level: LevelFolder, Kind: 3}},
		{"negative length", Definition{
			Code: "X", ResetPolicy: ResetNone, Level: LevelFolder, Kind: KindAlphanumeric,
			Segments: []Segment{{Kind: SegSequence, Length: -1}},
		}},
		{"two sequence segments", Definition{
			Code: "X", ResetPolicy: ResetNone, Level: LevelFolder, Kind: KindAlphanumeric,
			Segments: []Segment{{Kind: SegSequence, Length: 4}, {Kind: SegSequence, Length: 4}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate(context.Background())
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
		})
	}
}
