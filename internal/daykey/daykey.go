// Package daykey maps calendar days to the keys that name their log files.
package daykey

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DefaultLayout is the time layout of a day key (YYYY-MM-DD).
const DefaultLayout = "2006-01-02"

// Today returns the key for the calendar day containing now.
func Today(now time.Time, layout string) string {
	return now.Format(layoutOr(layout))
}

// Parse reports the day a key names, if it names one.
func Parse(key, layout string) (time.Time, bool) {
	t, err := time.ParseInLocation(layoutOr(layout), key, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Previous returns the key of the day before key. It reports false for
// override keys that do not name a day.
func Previous(key, layout string) (string, bool) {
	t, ok := Parse(key, layout)
	if !ok {
		return "", false
	}
	return t.AddDate(0, 0, -1).Format(layoutOr(layout)), true
}

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// Resolve turns a user supplied day expression into a key.
//
// An empty expression or "today" is today. A key already in layout form is
// returned as is. Natural language such as "yesterday" or "last friday" is
// resolved relative to now. Anything else is taken literally as an override
// key, as long as it is a single file name.
//
// Single words such as "may" or "sun" are read as dates. A leading "="
// forces the rest to be taken literally, so "=may" names a list "may".
func Resolve(expr string, now time.Time, layout string) (string, error) {
	expr = strings.TrimSpace(expr)
	if lit, ok := strings.CutPrefix(expr, "="); ok {
		return literal(lit)
	}
	switch strings.ToLower(expr) {
	case "", "today":
		return Today(now, layout), nil
	}
	if _, ok := Parse(expr, layout); ok {
		return expr, nil
	}
	if r, err := parser.Parse(expr, now); err == nil && r != nil && strings.TrimSpace(r.Text) == expr {
		return r.Time.Format(layoutOr(layout)), nil
	}
	return literal(expr)
}

func literal(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid day %q: must be a date or a plain name", key)
	}
	return key, nil
}

// IsPast reports whether key names anything other than today. Past logs
// never roll over.
func IsPast(key string, now time.Time, layout string) bool {
	return key != Today(now, layout)
}

func layoutOr(layout string) string {
	if layout == "" {
		return DefaultLayout
	}
	return layout
}
