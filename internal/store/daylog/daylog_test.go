package daylog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamzrob/todoer/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readString(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestFormat(t *testing.T) {
	s := model.NewStore()
	s.Append("foo")
	s.Append("bar")
	require.NoError(t, s.MarkDone(0))

	assert.Equal(t, "2026-10-17\n1/2\n- [x] foo\n- [ ] bar\n", Format("2026-10-17", s))
	assert.Equal(t, "k\n0/0\n", Format("k", model.NewStore()))
}

func TestParse(t *testing.T) {
	key, s, err := Parse(strings.NewReader("2026-10-17\n1/2\n- [x] foo\n- [ ] bar\n"))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", key)
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, 1, s.DoneCount())
	assert.Equal(t, []model.Item{{Name: "foo", Done: true}, {Name: "bar"}}, s.All())
}

func TestParsePermissiveBody(t *testing.T) {
	body := "k\n0/4\nplain line\r\n- [ ] has [x] inside\n\n- [x] a - [ ] b\n"
	_, s, err := Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []model.Item{
		{Name: "plain line"},
		{Name: "has [x] inside", Done: true},
		{Name: ""},
		{Name: "a b", Done: true},
	}, s.All())
}

func TestParseKeepsHeaderCounts(t *testing.T) {
	_, s, err := Parse(strings.NewReader("k\n5/9\n- [ ] only\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, s.DoneCount())
	assert.Equal(t, 9, s.Size())
	assert.Equal(t, 1, s.Len())
}

func TestParseMalformedHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{name: "empty", in: "", line: 1},
		{name: "key only", in: "2026-10-17\n", line: 2},
		{name: "no slash", in: "k\n12\n", line: 2},
		{name: "non numeric done", in: "k\nx/2\n", line: 2},
		{name: "non numeric size", in: "k\n1/two\n", line: 2},
		{name: "negative", in: "k\n-1/2\n", line: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedHeader)
			var he *HeaderError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, tt.line, he.Line)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	s := model.NewStore()
	for _, n := range []string{"write report", "call mom", "a [ ] bracket", "unicode ✔ ok"} {
		s.Append(n)
	}
	require.NoError(t, s.MarkDone(1))
	require.NoError(t, s.MarkDone(3))

	first := Format("2026-10-17", s)
	key, parsed, err := Parse(strings.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, first, Format(key, parsed))
}

func TestLoadExisting(t *testing.T) {
	j := NewJournal(t.TempDir())
	writeFile(t, j.Path("2026-10-17"), "2026-10-17\n1/2\n- [x] foo\n- [ ] bar\n")

	l, err := j.Load("2026-10-17", false)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", l.Key)
	assert.Equal(t, j.Path("2026-10-17"), l.Path)
	assert.Equal(t, []string{"foo", "bar"}, l.Store.Names())
}

func TestLoadRollsOverPendingItems(t *testing.T) {
	j := NewJournal(t.TempDir())
	writeFile(t, j.Path("2026-10-16"),
		"2026-10-16\n1/3\n- [x] buy milk\n- [ ] call mom\n- [ ] write report\n")

	l, err := j.Load("2026-10-17", false)
	require.NoError(t, err)

	assert.Equal(t, j.Path("2026-10-17"), l.Path)
	assert.Equal(t, 2, l.Store.Size())
	assert.Equal(t, 0, l.Store.DoneCount())
	assert.Equal(t, []model.Item{{Name: "call mom"}, {Name: "write report"}}, l.Store.All())

	_, err = os.Stat(j.Path("2026-10-17"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "load must not write today's file")
}

func TestLoadPastDoesNotRollOver(t *testing.T) {
	j := NewJournal(t.TempDir())
	writeFile(t, j.Path("2026-10-16"), "2026-10-16\n0/1\n- [ ] call mom\n")

	l, err := j.Load("2026-10-17", true)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Store.Size())
}

func TestLoadEmpty(t *testing.T) {
	j := NewJournal(t.TempDir())

	l, err := j.Load("2026-10-17", false)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Store.Size())
	assert.Equal(t, 0, l.Store.DoneCount())

	l, err = j.Load("groceries", false)
	require.NoError(t, err)
	assert.Equal(t, "groceries", l.Key)
	assert.Equal(t, 0, l.Store.Size())
}

func TestLoadOnlyLooksBackOneDay(t *testing.T) {
	j := NewJournal(t.TempDir())
	writeFile(t, j.Path("2026-10-15"), "2026-10-15\n0/1\n- [ ] old\n")

	l, err := j.Load("2026-10-17", false)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Store.Size())
}

func TestLoadMalformed(t *testing.T) {
	j := NewJournal(t.TempDir())
	path := j.Path("2026-10-17")
	content := "2026-10-17\nnot/numbers\n- [ ] foo\n"
	writeFile(t, path, content)

	_, err := j.Load("2026-10-17", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedHeader)
	assert.Contains(t, err.Error(), path)
	assert.Equal(t, content, readString(t, path))
}

func TestLoadMalformedYesterday(t *testing.T) {
	j := NewJournal(t.TempDir())
	writeFile(t, j.Path("2026-10-16"), "2026-10-16\n")

	_, err := j.Load("2026-10-17", false)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestLoadUnreadable(t *testing.T) {
	j := NewJournal(t.TempDir())
	require.NoError(t, os.MkdirAll(j.Path("2026-10-17"), 0o755))

	_, err := j.Load("2026-10-17", false)
	assert.ErrorIs(t, err, ErrIO)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "todo")
	j := NewJournal(dir)

	l, err := j.Load("2026-10-17", false)
	require.NoError(t, err)
	l.Store.Append("foo")
	l.Store.Append("bar")
	require.NoError(t, l.Store.MarkDone(1))
	require.NoError(t, l.Save())

	assert.Equal(t, "2026-10-17\n1/2\n- [ ] foo\n- [x] bar\n", readString(t, j.Path("2026-10-17")))

	again, err := j.Load("2026-10-17", false)
	require.NoError(t, err)
	assert.Equal(t, l.Store.All(), again.Store.All())
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	j := NewJournal(t.TempDir())
	path := j.Path("k")
	writeFile(t, path, "k\n0/3\n- [ ] a\n- [ ] b\n- [ ] c\n")

	l, err := j.Load("k", true)
	require.NoError(t, err)
	require.NoError(t, l.Store.Remove(0))
	require.NoError(t, l.Save())

	assert.Equal(t, "k\n0/2\n- [ ] b\n- [ ] c\n", readString(t, path))
}

func TestSaveFailsWhenDirIsFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	writeFile(t, blocker, "x")

	l := Empty("k", filepath.Join(blocker, "k.md"))
	assert.ErrorIs(t, l.Save(), ErrIO)
}

func TestWithExtension(t *testing.T) {
	j := NewJournal("/tmp/todo", WithExtension("txt"), WithLayout("06-01-02"))
	assert.Equal(t, filepath.Join("/tmp/todo", "26-10-17.txt"), j.Path("26-10-17"))
	assert.Equal(t, "06-01-02", j.Layout)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "work.md")

	l, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "work", l.Key)
	assert.Equal(t, 0, l.Store.Size())

	l.Store.Append("ship it")
	require.NoError(t, l.Save())

	l, err = OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ship it"}, l.Store.Names())
}
