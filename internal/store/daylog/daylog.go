// Package daylog persists one day's todo list per text file and loads it
// back, carrying yesterday's unfinished items into a new day.
package daylog

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/jamzrob/todoer/internal/daykey"
	"github.com/jamzrob/todoer/internal/model"
)

// DefaultExtension is appended to a day key to form its file name.
const DefaultExtension = ".md"

// DayLog is one day's store together with the file it lives in.
type DayLog struct {
	Key   string
	Path  string
	Store *model.Store
}

// Empty returns a log with no items anchored at path.
func Empty(key, path string) *DayLog {
	return &DayLog{Key: key, Path: path, Store: model.NewStore()}
}

// Save writes the whole log to its path, creating the directory first.
// The file is replaced atomically so readers see either the old or the
// new contents.
func (l *DayLog) Save() error {
	if dir := filepath.Dir(l.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if err := atomic.WriteFile(l.Path, strings.NewReader(Format(l.Key, l.Store))); err != nil {
		return &IOError{Op: "write", Path: l.Path, Err: err}
	}
	return nil
}

// Render is shorthand for l.Store.Render.
func (l *DayLog) Render(mode model.RenderMode) string {
	return l.Store.Render(mode)
}

// Journal is a directory of day logs.
type Journal struct {
	Dir    string
	Ext    string
	Layout string
}

// Option configures a Journal.
type Option func(*Journal)

// WithExtension sets the file extension used for day logs.
func WithExtension(ext string) Option {
	return func(j *Journal) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		j.Ext = ext
	}
}

// WithLayout sets the time layout that day keys follow.
func WithLayout(layout string) Option {
	return func(j *Journal) {
		if layout != "" {
			j.Layout = layout
		}
	}
}

// NewJournal returns a journal rooted at dir.
func NewJournal(dir string, opts ...Option) *Journal {
	j := &Journal{Dir: dir, Ext: DefaultExtension, Layout: daykey.DefaultLayout}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Path returns the file that holds the log for key.
func (j *Journal) Path(key string) string {
	return filepath.Join(j.Dir, key+j.Ext)
}

// Load returns the log for key.
//
// An existing file is parsed as is. Otherwise, unless past is set, the
// previous day's pending items are carried over into a fresh store. When
// there is nothing to carry the log is empty. Nothing is written; callers
// persist with Save.
func (j *Journal) Load(key string, past bool) (*DayLog, error) {
	path := j.Path(key)
	l, err := readFile(path)
	if err == nil {
		l.Key = key
		return l, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if !past {
		if prev, ok := daykey.Previous(key, j.Layout); ok {
			y, err := readFile(j.Path(prev))
			switch {
			case err == nil:
				return &DayLog{Key: key, Path: path, Store: y.Store.Carry()}, nil
			case !errors.Is(err, fs.ErrNotExist):
				return nil, err
			}
		}
	}
	return Empty(key, path), nil
}

// OpenFile loads the log at an explicit path. A missing file yields an
// empty log; there is no rollover.
func OpenFile(path string) (*DayLog, error) {
	l, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(keyOf(path), path), nil
	}
	return l, err
}

// readFile parses the log at path. A missing file is reported with an
// error matching fs.ErrNotExist.
func readFile(path string) (*DayLog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	_, store, err := Parse(bytes.NewReader(b))
	if err != nil {
		var he *HeaderError
		if errors.As(err, &he) {
			he.Path = path
			return nil, he
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return &DayLog{Key: keyOf(path), Path: path, Store: store}, nil
}

// keyOf derives a day key from a file name by dropping its extension.
func keyOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
