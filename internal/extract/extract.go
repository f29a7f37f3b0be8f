// Package extract pulls named fields out of loosely structured markup using
// ordered regular-expression rules.
//
// Each field has a list of rules tried in order; the first rule whose first
// capture group yields a usable value wins. Pages change shape without notice,
// so tables usually carry a precise rule first and looser fallbacks after it.
package extract

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Kind selects how a captured value is normalized.
type Kind int

const (
	// Number strips every non-digit and parses the rest as a base-10 integer.
	Number Kind = iota
	// Text removes markup and collapses whitespace.
	Text
)

// Rule is one pattern. Its first capture group holds the value.
type Rule struct {
	re *regexp.Regexp
}

// Patterns compiles exprs into rules, preserving order. It panics on an invalid
// expression, so tables are built at package initialization.
func Patterns(exprs ...string) []Rule {
	rules := make([]Rule, len(exprs))
	for i, expr := range exprs {
		re := regexp.MustCompile(expr)
		if re.NumSubexp() < 1 {
			panic("extract: pattern has no capture group: " + expr)
		}
		rules[i] = Rule{re: re}
	}
	return rules
}

func (r Rule) capture(markup string) (string, bool) {
	m := r.re.FindStringSubmatch(markup)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Field is one named entry of a Table.
type Field struct {
	Name  string
	Kind  Kind
	Rules []Rule
}

// Table is a declarative rule table for one page type.
type Table []Field

// Values holds what Apply found. Fields that matched nothing are absent.
type Values struct {
	numbers map[string]int
	texts   map[string]string
}

// Int returns a numeric field.
func (v Values) Int(name string) (int, bool) {
	n, ok := v.numbers[name]
	return n, ok
}

// IntPtr returns a numeric field as a pointer, nil when absent.
func (v Values) IntPtr(name string) *int {
	n, ok := v.numbers[name]
	if !ok {
		return nil
	}
	return &n
}

// Text returns a text field.
func (v Values) Text(name string) (string, bool) {
	s, ok := v.texts[name]
	return s, ok
}

// TextPtr returns a text field as a pointer, nil when absent.
func (v Values) TextPtr(name string) *string {
	s, ok := v.texts[name]
	if !ok {
		return nil
	}
	return &s
}

// Len is the number of fields extracted.
func (v Values) Len() int {
	return len(v.numbers) + len(v.texts)
}

// Names lists the extracted field names in sorted order.
func (v Values) Names() []string {
	names := make([]string, 0, v.Len())
	for k := range v.numbers {
		names = append(names, k)
	}
	for k := range v.texts {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Apply evaluates every field of the table against markup.
func (t Table) Apply(markup string) Values {
	v := Values{numbers: map[string]int{}, texts: map[string]string{}}
	for _, f := range t {
		switch f.Kind {
		case Number:
			if n, ok := Int(markup, f.Rules); ok {
				v.numbers[f.Name] = n
			}
		case Text:
			if s, ok := String(markup, f.Rules); ok {
				v.texts[f.Name] = s
			}
		}
	}
	return v
}

// Int returns the first rule's capture that contains at least one digit.
func Int(markup string, rules []Rule) (int, bool) {
	for _, r := range rules {
		raw, ok := r.capture(markup)
		if !ok {
			continue
		}
		if n, ok := Digits(raw); ok {
			return n, true
		}
	}
	return 0, false
}

// String returns the first rule's capture that is non-empty once cleaned.
func String(markup string, rules []Rule) (string, bool) {
	for _, r := range rules {
		raw, ok := r.capture(markup)
		if !ok {
			continue
		}
		if s := CleanText(raw); s != "" {
			return s, true
		}
	}
	return "", false
}

// Digits keeps only ASCII digits of s and parses them. "1,847" yields 1847 and
// "#12 345" yields 12345. It reports false when no digit is present or the
// value overflows int.
func Digits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
