// Package profile describes bank export formats as data. A Definition is
// the declarative form (Go literal or YAML); Build validates it and
// compiles it into a Profile the pipeline can run.
package profile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cleared-dev/stmtconv/internal/matcher"
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/normalize"
)

// SourceField names a value sliced out of a raw statement row.
type SourceField string

const (
	SourceDate        SourceField = "date"
	SourceDescription SourceField = "description"
	SourceAmount      SourceField = "amount"
)

// Encoding is the character set of a bank export.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingISO88591    Encoding = "iso-8859-1"
	EncodingWindows1252 Encoding = "windows-1252"
)

// Valid reports whether e is supported.
func (e Encoding) Valid() bool {
	switch e {
	case EncodingUTF8, EncodingISO88591, EncodingWindows1252:
		return true
	}
	return false
}

// LookupMode says whether a profile merges the master code table.
type LookupMode string

const (
	LookupNone     LookupMode = "none"     // any table is ignored
	LookupOptional LookupMode = "optional" // enriched when a table is loaded
	LookupRequired LookupMode = "required" // a table must be loaded
)

// Valid reports whether m is a known mode.
func (m LookupMode) Valid() bool {
	switch m {
	case LookupNone, LookupOptional, LookupRequired:
		return true
	}
	return false
}

// ColumnMapping maps a source column index to a field.
type ColumnMapping struct {
	Field SourceField `yaml:"field"`
	Index int         `yaml:"index"`
}

// RuleDefinition is a pattern rule in compact shape notation.
type RuleDefinition struct {
	ID        string         `yaml:"id"`
	Shape     string         `yaml:"shape"`
	Anchor    matcher.Anchor `yaml:"anchor,omitempty"` // default start
	Unbounded bool           `yaml:"unbounded,omitempty"`
}

// ColumnDefinition is one output column.
type ColumnDefinition struct {
	Header string      `yaml:"header"`
	Field  model.Field `yaml:"field"`
}

// FeeTrailer describes exports that end in two summary rows: the first
// carries a date and description, the last the total fees. They are
// replaced by a single debit row for the fees.
type FeeTrailer struct {
	DateColumn        int `yaml:"date_column"`
	DescriptionColumn int `yaml:"description_column"`
	FeeColumn         int `yaml:"fee_column"`
}

// ActivityRule derives an activity code from the character at Offset in
// the description.
type ActivityRule struct {
	Offset int               `yaml:"offset"`
	Codes  map[string]string `yaml:"codes"`
}

// Definition is the declarative form of a bank profile.
type Definition struct {
	Name            string             `yaml:"name"`
	DisplayName     string             `yaml:"display_name,omitempty"`
	Delimiter       string             `yaml:"delimiter,omitempty"` // default ","
	Encoding        Encoding           `yaml:"encoding,omitempty"`  // default utf-8
	SkipRows        int                `yaml:"skip_rows,omitempty"`
	MinColumns      int                `yaml:"min_columns,omitempty"`
	Columns         []ColumnMapping    `yaml:"columns"`
	TrimDescription bool               `yaml:"trim_description,omitempty"`
	StripPrefix     int                `yaml:"strip_prefix,omitempty"`
	Rules           []RuleDefinition   `yaml:"rules,omitempty"`
	Suppress        bool               `yaml:"suppress_annotated,omitempty"`
	DateFormat      string             `yaml:"date_format,omitempty"`
	Sign            string             `yaml:"sign"`
	Lookup          LookupMode         `yaml:"lookup,omitempty"`          // default none
	RequiresLookup  bool               `yaml:"requires_lookup,omitempty"` // same as lookup: required
	Schema          []ColumnDefinition `yaml:"schema"`
	Trailer         *FeeTrailer        `yaml:"trailer,omitempty"`
	Activity        *ActivityRule      `yaml:"activity,omitempty"`
	DebitPrefix     string             `yaml:"debit_prefix,omitempty"`
}

// Profile is a validated, compiled bank profile. Profiles are immutable
// and shared across files of a run.
type Profile struct {
	Name            string
	DisplayName     string
	Delimiter       rune
	Encoding        Encoding
	SkipRows        int
	MinColumns      int
	Columns         []ColumnMapping
	TrimDescription bool
	StripPrefix     int
	Rules           []matcher.Rule
	Suppress        bool
	DateFormat      normalize.DateFormat
	Sign            normalize.SignConvention
	Lookup          LookupMode
	RequiresLookup  bool // Lookup == LookupRequired
	Schema          []model.Column
	Trailer         *FeeTrailer
	Activity        *ActivityRule
	DebitPrefix     string

	matcher *matcher.Matcher
}

// Build validates def and compiles its pattern cascade.
func Build(def Definition) (*Profile, error) {
	name := strings.ToLower(strings.TrimSpace(def.Name))
	if name == "" {
		return nil, fmt.Errorf("profile name is required")
	}
	fail := func(format string, args ...any) (*Profile, error) {
		return nil, fmt.Errorf("profile %s: %s", name, fmt.Sprintf(format, args...))
	}

	p := &Profile{
		Name:            name,
		DisplayName:     def.DisplayName,
		Delimiter:       ',',
		Encoding:        EncodingUTF8,
		SkipRows:        def.SkipRows,
		TrimDescription: def.TrimDescription,
		StripPrefix:     def.StripPrefix,
		Suppress:        def.Suppress,
		DateFormat:      normalize.DateFormat(def.DateFormat),
		Sign:            normalize.SignConvention(def.Sign),
		Lookup:          LookupMode(strings.ToLower(string(def.Lookup))),
		Trailer:         def.Trailer,
		Activity:        def.Activity,
		DebitPrefix:     def.DebitPrefix,
	}
	if p.DisplayName == "" {
		p.DisplayName = name
	}

	if def.Delimiter != "" {
		if utf8.RuneCountInString(def.Delimiter) != 1 {
			return fail("delimiter %q must be a single character", def.Delimiter)
		}
		p.Delimiter, _ = utf8.DecodeRuneInString(def.Delimiter)
	}
	if def.Encoding != "" {
		p.Encoding = Encoding(strings.ToLower(string(def.Encoding)))
	}
	if !p.Encoding.Valid() {
		return fail("unsupported encoding %q", def.Encoding)
	}
	switch {
	case p.Lookup == "" && def.RequiresLookup:
		p.Lookup = LookupRequired
	case p.Lookup == "":
		p.Lookup = LookupNone
	case !p.Lookup.Valid():
		return fail("lookup must be none, optional or required, got %q", def.Lookup)
	case def.RequiresLookup && p.Lookup != LookupRequired:
		return fail("requires_lookup conflicts with lookup %q", p.Lookup)
	}
	p.RequiresLookup = p.Lookup == LookupRequired

	if p.SkipRows < 0 || p.StripPrefix < 0 {
		return fail("skip_rows and strip_prefix must not be negative")
	}

	widest := -1
	seen := make(map[SourceField]bool)
	for _, c := range def.Columns {
		switch c.Field {
		case SourceDate, SourceDescription, SourceAmount:
		default:
			return fail("unknown source field %q", c.Field)
		}
		if seen[c.Field] {
			return fail("source field %q mapped twice", c.Field)
		}
		if c.Index < 0 {
			return fail("negative column index for %q", c.Field)
		}
		seen[c.Field] = true
		widest = max(widest, c.Index)
	}
	for _, f := range []SourceField{SourceDate, SourceDescription, SourceAmount} {
		if !seen[f] {
			return fail("no column mapped to %q", f)
		}
	}
	p.Columns = append([]ColumnMapping(nil), def.Columns...)

	if t := def.Trailer; t != nil {
		if t.DateColumn < 0 || t.DescriptionColumn < 0 || t.FeeColumn < 0 {
			return fail("negative trailer column")
		}
		widest = max(widest, t.DateColumn, t.DescriptionColumn, t.FeeColumn)
	}
	p.MinColumns = max(def.MinColumns, widest+1)

	if !p.DateFormat.Valid() {
		return fail("unsupported date format %q", def.DateFormat)
	}
	if !p.Sign.Valid() {
		return fail("sign convention must be %q or %q, got %q", normalize.PositiveCredit, normalize.PositiveDebit, def.Sign)
	}

	if len(def.Schema) == 0 {
		return fail("output schema is empty")
	}
	for _, c := range def.Schema {
		if !c.Field.Valid() {
			return fail("unknown output field %q", c.Field)
		}
		header := c.Header
		if header == "" {
			header = strings.ToUpper(string(c.Field))
		}
		p.Schema = append(p.Schema, model.Column{Header: header, Field: c.Field})
	}

	if a := def.Activity; a != nil && a.Offset < 0 {
		return fail("negative activity offset")
	}

	for _, rd := range def.Rules {
		anchor := rd.Anchor
		if anchor == "" {
			anchor = matcher.AnchorStart
		}
		r, err := matcher.NewRule(rd.ID, rd.Shape, anchor)
		if err != nil {
			return fail("%v", err)
		}
		r.Unbounded = rd.Unbounded
		p.Rules = append(p.Rules, r)
	}

	var opts []matcher.Option
	if p.Suppress {
		opts = append(opts, matcher.WithSuppression())
	}
	m, err := matcher.New(p.Rules, opts...)
	if err != nil {
		return fail("%v", err)
	}
	p.matcher = m

	return p, nil
}

// MustBuild is Build for built-in definitions. Panics on error.
func MustBuild(def Definition) *Profile {
	p, err := Build(def)
	if err != nil {
		panic(err)
	}
	return p
}

// Matcher returns the compiled pattern cascade.
func (p *Profile) Matcher() *matcher.Matcher {
	return p.matcher
}

// UsesLookup reports whether rows are enriched from a loaded code table.
func (p *Profile) UsesLookup() bool {
	return p.Lookup == LookupOptional || p.Lookup == LookupRequired
}

// Column returns the source column index mapped to f.
func (p *Profile) Column(f SourceField) int {
	for _, c := range p.Columns {
		if c.Field == f {
			return c.Index
		}
	}
	return -1
}

// MatchText returns the part of a description the cascade runs over,
// with the profile's fixed-width prefix removed.
func (p *Profile) MatchText(description string) string {
	if p.StripPrefix == 0 {
		return description
	}
	runes := []rune(description)
	if len(runes) <= p.StripPrefix {
		return ""
	}
	return string(runes[p.StripPrefix:])
}

// ActivityFor returns the activity code for a description, or "".
func (p *Profile) ActivityFor(description string) string {
	if p.Activity == nil {
		return ""
	}
	runes := []rune(description)
	if p.Activity.Offset >= len(runes) {
		return ""
	}
	return p.Activity.Codes[string(runes[p.Activity.Offset])]
}
