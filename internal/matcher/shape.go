package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Class is the character class of one shape segment.
type Class int

const (
	Digit   Class = iota // ASCII 0-9
	Upper                // ASCII A-Z
	Literal              // fixed text
)

// Segment is a fixed-length run of one character class, or literal text.
type Segment struct {
	Class Class
	Len   int
	Text  string // Literal only
}

// Shape is the ordered list of segments a code must consist of.
type Shape []Segment

// ParseShape reads the compact notation used in profile definitions:
// space-separated tokens "d<n>" (digits), "u<n>" (uppercase letters) and
// "=TEXT" (literal). "d2 u3 d4" matches codes like 12ABC3456.
func ParseShape(s string) (Shape, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty shape")
	}

	shape := make(Shape, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "=") {
			if len(f) == 1 {
				return nil, fmt.Errorf("empty literal in shape %q", s)
			}
			shape = append(shape, Segment{Class: Literal, Text: f[1:]})
			continue
		}

		var class Class
		switch f[0] {
		case 'd':
			class = Digit
		case 'u':
			class = Upper
		default:
			return nil, fmt.Errorf("unknown segment %q in shape %q", f, s)
		}
		n, err := strconv.Atoi(f[1:])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad length in segment %q of shape %q", f, s)
		}
		shape = append(shape, Segment{Class: class, Len: n})
	}
	return shape, nil
}

// String renders the shape back into its compact notation.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, seg := range s {
		switch seg.Class {
		case Digit:
			parts[i] = "d" + strconv.Itoa(seg.Len)
		case Upper:
			parts[i] = "u" + strconv.Itoa(seg.Len)
		case Literal:
			parts[i] = "=" + seg.Text
		}
	}
	return strings.Join(parts, " ")
}

// expr returns the regular expression body for the shape.
func (s Shape) expr() string {
	var b strings.Builder
	for _, seg := range s {
		switch seg.Class {
		case Digit:
			fmt.Fprintf(&b, "[0-9]{%d}", seg.Len)
		case Upper:
			fmt.Fprintf(&b, "[A-Z]{%d}", seg.Len)
		case Literal:
			b.WriteString(regexp.QuoteMeta(seg.Text))
		}
	}
	return b.String()
}
