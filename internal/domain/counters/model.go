// Package counters provides sequential number (counter) allocation.
// A counter mints formatted, gap-free-per-key identifiers from a persisted
// value table, driven by a declarative definition row (format segments,
// reset policy, scoping level).
package counters

import (
	"context"

	"numera/internal/core/apperror"
)

// ResetPolicy controls when a counter's sequence restarts at 1.
// Wire values match the legacy chapter 48 enumeration.
type ResetPolicy int

const (
	ResetNone       ResetPolicy = 1 // never resets, single period bucket
	ResetAnnual     ResetPolicy = 2 // new bucket per 2-digit year
	ResetMonthly    ResetPolicy = 3 // new bucket per calendar month
	ResetFiscalYear ResetPolicy = 4 // declared in legacy data, not supported
	ResetPeriod     ResetPolicy = 5 // declared in legacy data, not supported
)

// String implements fmt.Stringer.
func (p ResetPolicy) String() string {
	switch p {
	case ResetNone:
		return "none"
	case ResetAnnual:
		return "annual"
	case ResetMonthly:
		return "monthly"
	case ResetFiscalYear:
		return "fiscal_year"
	case ResetPeriod:
		return "period"
	default:
		return "unknown"
	}
}

// Valid reports whether p is a declared policy value.
func (p ResetPolicy) Valid() bool {
	return p >= ResetNone && p <= ResetPeriod
}

// DefinitionLevel determines how a counter's sequence space is scoped.
// Wire values match the legacy chapter 45 enumeration.
type DefinitionLevel int

const (
	LevelFolder  DefinitionLevel = 1 // global, unscoped
	LevelCompany DefinitionLevel = 2 // scoped by the site's owning company
	LevelSite    DefinitionLevel = 3 // scoped by the caller's site code
)

// String implements fmt.Stringer.
func (l DefinitionLevel) String() string {
	switch l {
	case LevelFolder:
		return "folder"
	case LevelCompany:
		return "company"
	case LevelSite:
		return "site"
	default:
		return "unknown"
	}
}

// Valid reports whether l is a declared level value.
func (l DefinitionLevel) Valid() bool {
	return l >= LevelFolder && l <= LevelSite
}

// NumberKind determines whether the assembled identifier is kept as-is or
// coerced to an integer-valued string.
// Wire values match the legacy chapter 46 enumeration.
type NumberKind int

const (
	KindAlphanumeric NumberKind = 1
	KindNumeric      NumberKind = 2
)

// String implements fmt.Stringer.
func (k NumberKind) String() string {
	switch k {
	case KindAlphanumeric:
		return "alphanumeric"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a declared kind value.
func (k NumberKind) Valid() bool {
	return k == KindAlphanumeric || k == KindNumeric
}

// SegmentKind identifies one piece of a counter's output format.
// Wire values match the legacy chapter 47 enumeration.
type SegmentKind int

const (
	SegConstant   SegmentKind = 1
	SegYear       SegmentKind = 2
	SegMonth      SegmentKind = 3
	SegWeek       SegmentKind = 4
	SegDay        SegmentKind = 5
	SegCompany    SegmentKind = 6
	SegSite       SegmentKind = 7
	SegSequence   SegmentKind = 8
	SegComplement SegmentKind = 9
	SegFiscalYear SegmentKind = 10 // declared in legacy data, not supported
	SegPeriod     SegmentKind = 11 // declared in legacy data, not supported
	SegFormula    SegmentKind = 12 // declared in legacy data, not supported
)

// String implements fmt.Stringer.
func (k SegmentKind) String() string {
	switch k {
	case SegConstant:
		return "constant"
	case SegYear:
		return "year"
	case SegMonth:
		return "month"
	case SegWeek:
		return "week"
	case SegDay:
		return "day"
	case SegCompany:
		return "company"
	case SegSite:
		return "site"
	case SegSequence:
		return "sequence"
	case SegComplement:
		return "complement"
	case SegFiscalYear:
		return "fiscal_year"
	case SegPeriod:
		return "period"
	case SegFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a declared segment kind.
func (k SegmentKind) Valid() bool {
	return k >= SegConstant && k <= SegFormula
}

// Supported reports whether the formatter pipeline implements k.
// FiscalYear, Period and Formula exist in legacy definition rows but have
// no formatting semantics; allocations against them fail explicitly.
func (k SegmentKind) Supported() bool {
	return k >= SegConstant && k <= SegComplement
}

// Segment is one ordered piece of a counter's output format.
type Segment struct {
	// Kind selects the formatter for this position.
	Kind SegmentKind `db:"kind" json:"kind"`

	// Length is the target width of the formatted fragment.
	// Constant segments ignore it; complement treats 0 as "verbatim".
	Length int `db:"length" json:"length"`

	// Constant is the literal text for Kind == SegConstant.
	Constant string `db:"constant_value" json:"constant,omitempty"`
}

// Definition is the read-only configuration row describing one counter.
type Definition struct {
	// Code identifies the counter (primary key).
	Code string `db:"code" json:"code"`

	// Description is free operator text.
	Description string `db:"description" json:"description,omitempty"`

	// ResetPolicy selects the period bucketing for the sequence space.
	ResetPolicy ResetPolicy `db:"reset_policy" json:"resetPolicy"`

	// Level selects the scope key (folder/company/site).
	Level DefinitionLevel `db:"definition_level" json:"definitionLevel"`

	// Kind selects alphanumeric vs numeric output.
	Kind NumberKind `db:"number_kind" json:"numberKind"`

	// TotalLength is the character length of a fully formatted identifier.
	TotalLength int `db:"total_length" json:"totalLength"`

	// PadScope pads short site/company fragments with the filler rune
	// instead of leaving them shorter than the segment width.
	PadScope bool `db:"pad_scope" json:"padScope"`

	// Segments in index order. Position in the slice is the legacy
	// segment index.
	Segments []Segment `json:"segments"`
}

// SequenceIndex returns the position of the sequence segment.
// ok is false when the definition carries none; such a definition cannot
// embed the allocated value and is rejected before the store is touched.
func (d *Definition) SequenceIndex() (int, bool) {
	for i, s := range d.Segments {
		if s.Kind == SegSequence {
			return i, true
		}
	}
	return 0, false
}

// HasComplement reports whether the definition sanctions a caller-supplied
// complement. Without it, caller complements are discarded.
func (d *Definition) HasComplement() bool {
	for _, s := range d.Segments {
		if s.Kind == SegComplement {
			return true
		}
	}
	return false
}

// SequenceWidth returns the declared width of the sequence segment,
// or 0 when the definition has none.
func (d *Definition) SequenceWidth() int {
	if i, ok := d.SequenceIndex(); ok {
		return d.Segments[i].Length
	}
	return 0
}

// Validate checks definition invariants (no database access).
func (d *Definition) Validate(ctx context.Context) error {
	if d.Code == "" {
		return apperror.NewValidation("counter code is required").
			WithDetail("field", "code")
	}
	if !d.ResetPolicy.Valid() {
		return apperror.NewValidation("unknown reset policy").
			WithDetail("field", "resetPolicy").
			WithDetail("value", int(d.ResetPolicy))
	}
	if !d.Level.Valid() {
		return apperror.NewValidation("unknown definition level").
			WithDetail("field", "definitionLevel").
			WithDetail("value", int(d.Level))
	}
	if !d.Kind.Valid() {
		return apperror.NewValidation("unknown number kind").
			WithDetail("field", "numberKind").
			WithDetail("value", int(d.Kind))
	}

	seqCount := 0
	for i, s := range d.Segments {
		if !s.Kind.Valid() {
			return apperror.NewValidation("unknown segment kind").
				WithDetail("segment", i).
				WithDetail("value", int(s.Kind))
		}
		if s.Length < 0 {
			return apperror.NewValidation("segment length must not be negative").
				WithDetail("segment", i).
				WithDetail("length", s.Length)
		}
		if s.Kind == SegSequence {
			seqCount++
		}
	}
	if seqCount > 1 {
		return apperror.NewValidation("definition must carry at most one sequence segment").
			WithDetail("count", seqCount)
	}

	return nil
}
