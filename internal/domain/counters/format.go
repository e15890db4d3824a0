package counters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"numera/internal/core/apperror"
)

// formatContext carries everything the segment formatters need for one
// allocation: the resolved scope key, the sanctioned complement, the
// reference date and the raw allocated sequence value.
type formatContext struct {
	date       time.Time
	scope      string
	complement string
	sequence   int64
	padRune    rune
}

// assemble formats the allocated value through every segment of the
// definition in index order and applies the numeric coercion.
func assemble(def *Definition, fc formatContext) (string, error) {
	var b strings.Builder

	for i, seg := range def.Segments {
		frag, err := formatSegment(def, i, seg, fc)
		if err != nil {
			return "", err
		}
		b.WriteString(frag)
	}

	out := b.String()

	if def.Kind == KindNumeric {
		n, err := strconv.ParseInt(out, 10, 64)
		if err != nil {
			return "", apperror.NewFormatAssembly(def.Code, out).WithCause(err)
		}
		out = strconv.FormatInt(n, 10)
	}

	return out, nil
}

func formatSegment(def *Definition, index int, seg Segment, fc formatContext) (string, error) {
	switch seg.Kind {
	case SegConstant:
		return seg.Constant, nil
	case SegYear:
		return formatYear(seg, fc.date), nil
	case SegMonth:
		return formatMonth(seg, fc.date), nil
	case SegWeek:
		return formatWeek(fc.date), nil
	case SegDay:
		return formatDay(seg, fc.date), nil
	case SegCompany, SegSite:
		return formatScope(seg, fc.scope, def.PadScope, fc.padRune), nil
	case SegSequence:
		return formatSequence(def.Code, seg, fc.sequence)
	case SegComplement:
		return formatComplement(seg, fc.complement), nil
	case SegFiscalYear, SegPeriod, SegFormula:
		return "", apperror.NewUnsupported("segment kind").
			WithDetail("counter", def.Code).
			WithDetail("segment", index).
			WithDetail("kind", seg.Kind.String())
	default:
		return "", apperror.NewValidation("unknown segment kind").
			WithDetail("counter", def.Code).
			WithDetail("segment", index).
			WithDetail("kind", int(seg.Kind))
	}
}

// formatYear renders the year fragment. Width 1 is the decade digit,
// width 2 the annual period key, width 4 the full year. Other widths
// produce nothing, matching the legacy behaviour.
func formatYear(seg Segment, date time.Time) string {
	switch seg.Length {
	case 1:
		return strconv.Itoa(decadeKey(date))
	case 2:
		return fmt.Sprintf("%02d", date.Year()%100)
	case 4:
		return fmt.Sprintf("%04d", date.Year())
	default:
		return ""
	}
}

// formatMonth renders the month fragment: zero-padded numeric at width 2,
// 3-letter uppercase abbreviation at width 3.
func formatMonth(seg Segment, date time.Time) string {
	switch seg.Length {
	case 2:
		return fmt.Sprintf("%02d", int(date.Month()))
	case 3:
		return strings.ToUpper(date.Month().String()[:3])
	default:
		return ""
	}
}

// formatWeek renders the ISO week-of-year, always two digits regardless of
// the configured segment width.
func formatWeek(date time.Time) string {
	_, week := date.ISOWeek()
	return fmt.Sprintf("%02d", week)
}

// formatDay renders the day fragment: ISO weekday at width 1 (still padded
// to two digits), day-of-month at width 2, day-of-year at width 3.
func formatDay(seg Segment, date time.Time) string {
	switch seg.Length {
	case 1:
		return fmt.Sprintf("%02d", isoWeekday(date))
	case 2:
		return fmt.Sprintf("%02d", date.Day())
	case 3:
		return fmt.Sprintf("%03d", date.YearDay())
	default:
		return ""
	}
}

// isoWeekday maps Go's Sunday-based weekday onto ISO 8601 (Mon=1..Sun=7).
func isoWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// formatScope renders the site/company fragment. A scope key shorter than
// the segment width is right-padded with the filler rune when the
// definition's control flag asks for padding; otherwise the fragment keeps
// the leftmost Length characters.
func formatScope(seg Segment, scope string, pad bool, padRune rune) string {
	if len(scope) < seg.Length && pad {
		return scope + strings.Repeat(string(padRune), seg.Length-len(scope))
	}
	return leftmost(scope, seg.Length)
}

// formatSequence zero-pads the allocated value to the declared segment
// width. A value wider than the segment means the counter is exhausted:
// truncating here would mint colliding identifiers.
func formatSequence(counterCode string, seg Segment, value int64) (string, error) {
	s := fmt.Sprintf("%0*d", seg.Length, value)
	if len(s) > seg.Length {
		return "", apperror.NewCounterExhausted(counterCode, value, seg.Length)
	}
	return s, nil
}

// formatComplement keeps the complement verbatim at width 0, otherwise the
// leftmost Length characters.
func formatComplement(seg Segment, complement string) string {
	if seg.Length == 0 {
		return complement
	}
	return leftmost(complement, seg.Length)
}

func leftmost(s string, n int) string {
	if n >= len(s) {
		return s
	}
	return s[:n]
}
