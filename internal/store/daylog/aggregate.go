package daylog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jamzrob/todoer/internal/model"
)

// Aggregate is a read-only view over every log in a journal.
type Aggregate struct {
	Logs []*DayLog
	// Skipped holds the errors of files that could not be read or parsed.
	// Each of them still appears in Logs as an empty log.
	Skipped []error
}

// Scan loads every log file in the journal directory in file name order.
// Logs are loaded as past days, so nothing rolls over. A file that cannot
// be loaded is kept as an empty log; only a failure to list the directory
// is returned as an error.
func (j *Journal) Scan() (*Aggregate, error) {
	entries, err := os.ReadDir(j.Dir)
	if err != nil {
		return nil, &IOError{Op: "list", Path: j.Dir, Err: err}
	}

	agg := &Aggregate{}
	for _, entry := range entries {
		if entry.IsDir() || !j.owns(entry.Name()) {
			continue
		}
		path := filepath.Join(j.Dir, entry.Name())
		l, err := readFile(path)
		if err != nil {
			agg.Skipped = append(agg.Skipped, err)
			l = Empty(keyOf(path), path)
		}
		agg.Logs = append(agg.Logs, l)
	}
	return agg, nil
}

func (j *Journal) owns(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return j.Ext == "" || filepath.Ext(name) == j.Ext
}

// Keys returns the day keys of the scanned logs in scan order.
func (a *Aggregate) Keys() []string {
	keys := make([]string, 0, len(a.Logs))
	for _, l := range a.Logs {
		keys = append(keys, l.Key)
	}
	return keys
}

// RenderMerged lists the pending items of every log, then the done items,
// as if they were one day. Each section is numbered from zero on its own;
// the numbers are for display only.
func (a *Aggregate) RenderMerged(mode model.RenderMode) string {
	var b strings.Builder
	b.WriteString("\nTodo\n")
	n := 0
	for _, l := range a.Logs {
		for _, it := range l.Store.All() {
			if !it.Done {
				b.WriteString(mode.Line(n, it.Name))
				n++
			}
		}
	}
	b.WriteString("\nDone\n")
	n = 0
	for _, l := range a.Logs {
		for _, it := range l.Store.All() {
			if it.Done {
				b.WriteString(mode.Line(n, it.Name))
				n++
			}
		}
	}
	return b.String()
}

// RenderEach renders every log under its own key.
func (a *Aggregate) RenderEach(mode model.RenderMode) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, l := range a.Logs {
		b.WriteString("\n")
		b.WriteString(l.Key)
		b.WriteString(l.Render(mode))
	}
	return b.String()
}
