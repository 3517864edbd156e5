// Package matcher extracts accounting codes from free-text transaction
// descriptions using an ordered cascade of fixed-shape rules.
//
// Rules are tried in the order given and the first rule that matches wins,
// even when a later rule would match a longer code. A rule is either
// anchored to the start of the text or may match anywhere; unless marked
// Unbounded it may not match inside a longer alphanumeric token.
package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

// Anchor controls where in the text a rule may match.
type Anchor string

const (
	AnchorStart    Anchor = "start"
	AnchorAnywhere Anchor = "anywhere"
)

// Rule is one entry in a pattern cascade.
type Rule struct {
	ID        string
	Shape     Shape
	Anchor    Anchor
	Unbounded bool // allow the code to touch adjacent letters and digits
}

// NewRule builds a rule from the compact shape notation. See ParseShape.
func NewRule(id, shape string, anchor Anchor) (Rule, error) {
	s, err := ParseShape(shape)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", id, err)
	}
	return Rule{ID: id, Shape: s, Anchor: anchor}, nil
}

// MustRule is NewRule for static rule tables. Panics on a bad shape.
func MustRule(id, shape string, anchor Anchor) Rule {
	r, err := NewRule(id, shape, anchor)
	if err != nil {
		panic(err)
	}
	return r
}

// Match is a successful extraction.
type Match struct {
	Code      string
	PatternID string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSuppression discards a match when the matched code followed by a
// colon appears in the text, e.g. "12ABC3456: reference". Such text
// mentions a code rather than carrying one.
func WithSuppression() Option {
	return func(m *Matcher) { m.suppress = true }
}

// Matcher applies a compiled cascade. It is safe for concurrent use.
type Matcher struct {
	rules    []compiledRule
	suppress bool
}

type compiledRule struct {
	id string
	re *regexp.Regexp
}

// nonWord matches one character that cannot be part of a code token.
const nonWord = `[^\p{L}\p{N}_]`

// New compiles rules into a Matcher.
func New(rules []Rule, opts ...Option) (*Matcher, error) {
	m := &Matcher{rules: make([]compiledRule, 0, len(rules))}
	for _, opt := range opts {
		opt(m)
	}

	for _, r := range rules {
		if len(r.Shape) == 0 {
			return nil, fmt.Errorf("rule %s: empty shape", r.ID)
		}

		body := "(" + r.Shape.expr() + ")"
		var pattern string
		switch r.Anchor {
		case AnchorStart:
			pattern = "^" + body
		case AnchorAnywhere:
			pattern = body
			if !r.Unbounded {
				pattern = "(?:^|" + nonWord + ")" + body
			}
		default:
			return nil, fmt.Errorf("rule %s: unknown anchor %q", r.ID, r.Anchor)
		}
		if !r.Unbounded {
			pattern += "(?:" + nonWord + "|$)"
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		m.rules = append(m.rules, compiledRule{id: r.ID, re: re})
	}
	return m, nil
}

// Match runs the cascade over text and returns the first rule's match.
// A suppressed match ends the cascade with no result.
func (m *Matcher) Match(text string) (Match, bool) {
	line := strings.TrimSpace(text)
	for _, r := range m.rules {
		sub := r.re.FindStringSubmatch(line)
		if sub == nil {
			continue
		}
		code := sub[1]
		if m.suppress && strings.Contains(line, code+":") {
			return Match{}, false
		}
		return Match{Code: code, PatternID: r.id}, true
	}
	return Match{}, false
}

// Len returns the number of rules in the cascade.
func (m *Matcher) Len() int {
	return len(m.rules)
}
