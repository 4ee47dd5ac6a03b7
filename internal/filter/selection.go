// Package filter keeps the question filter selection in sync with URL query
// parameters and builds the query string sent to the questions API.
package filter

import (
	"net/url"
	"slices"
	"strings"
)

// Query parameter keys shared by the address bar and the API.
const (
	KeyExams    = "exams"
	KeySubjects = "subjects"
	KeyYears    = "years"
	KeyQuery    = "q"
)

// Fallback selection used when the URL carries no structured filter.
const (
	DefaultExam = "CSE"
	DefaultYear = "2022"
)

// Selection is the set of active filters. Each list is ordered for display
// and holds unique, non-empty members.
type Selection struct {
	Query    string
	Exams    []string
	Subjects []string
	Years    []string
}

// Default returns the fallback selection for an unfiltered visit.
func Default() Selection {
	return Selection{Exams: []string{DefaultExam}, Years: []string{DefaultYear}}
}

// ParseFromURL rebuilds a selection from query parameters. Values are comma
// separated; repeated keys are accepted too. Exams are upper-cased, subjects
// title-cased and years kept as given. When no exam, subject or year is
// present the default selection is used.
func ParseFromURL(params url.Values) Selection {
	sel := Selection{
		Query:    params.Get(KeyQuery),
		Exams:    splitValues(params[KeyExams], Upper),
		Subjects: splitValues(params[KeySubjects], Title),
		Years:    splitValues(params[KeyYears], nil),
	}
	if sel.IsEmpty() {
		def := Default()
		sel.Exams = def.Exams
		sel.Years = def.Years
	}
	return sel
}

// IsEmpty reports whether no exam, subject or year is selected. The free-text
// query does not count.
func (s Selection) IsEmpty() bool {
	return len(s.Exams) == 0 && len(s.Subjects) == 0 && len(s.Years) == 0
}

// QueryString serializes the selection for the questions API: one repeated
// key per member in the order exams, subjects, years, then q. The result is
// lower-cased so equivalent selections map to the same request.
func (s Selection) QueryString() string {
	parts := make([]string, 0, len(s.Exams)+len(s.Subjects)+len(s.Years)+1)
	appendAll := func(key string, values []string) {
		for _, v := range values {
			parts = append(parts, key+"="+url.QueryEscape(Lower(v)))
		}
	}
	appendAll(KeyExams, s.Exams)
	appendAll(KeySubjects, s.Subjects)
	appendAll(KeyYears, s.Years)
	if s.Query != "" {
		parts = append(parts, KeyQuery+"="+url.QueryEscape(Lower(s.Query)))
	}
	return strings.Join(parts, "&")
}

// URLParams returns the address-bar form of the selection: comma-joined
// values, with empty filters omitted.
func (s Selection) URLParams() url.Values {
	values := url.Values{}
	if len(s.Exams) > 0 {
		values.Set(KeyExams, strings.Join(s.Exams, ","))
	}
	if len(s.Subjects) > 0 {
		values.Set(KeySubjects, strings.Join(s.Subjects, ","))
	}
	if len(s.Years) > 0 {
		values.Set(KeyYears, strings.Join(s.Years, ","))
	}
	if s.Query != "" {
		values.Set(KeyQuery, s.Query)
	}
	return values
}

// Apply merges the selection into existing query parameters. Filter keys that
// are no longer active are removed; unrelated keys are kept.
func Apply(current url.Values, s Selection) url.Values {
	out := url.Values{}
	for key, values := range current {
		switch key {
		case KeyExams, KeySubjects, KeyYears, KeyQuery:
			continue
		}
		out[key] = slices.Clone(values)
	}
	for key, values := range s.URLParams() {
		out[key] = values
	}
	return out
}

// Has reports whether value is selected under key.
func (s Selection) Has(key, value string) bool {
	switch key {
	case KeyExams:
		return slices.Contains(s.Exams, value)
	case KeySubjects:
		return slices.Contains(s.Subjects, value)
	case KeyYears:
		return slices.Contains(s.Years, value)
	}
	return false
}

// Equal compares two selections with set semantics per field.
func (s Selection) Equal(other Selection) bool {
	return s.Query == other.Query &&
		sameSet(s.Exams, other.Exams) &&
		sameSet(s.Subjects, other.Subjects) &&
		sameSet(s.Years, other.Years)
}

// SameParams reports whether two queries carry the same filter parameters,
// value for value.
func SameParams(a, b url.Values) bool {
	for _, key := range []string{KeyExams, KeySubjects, KeyYears, KeyQuery} {
		if !slices.Equal(a[key], b[key]) {
			return false
		}
	}
	return true
}

func splitValues(raw []string, transform func(string) string) []string {
	var out []string
	for _, joined := range raw {
		for _, v := range strings.Split(joined, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if transform != nil {
				v = transform(v)
			}
			if !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	return true
}
