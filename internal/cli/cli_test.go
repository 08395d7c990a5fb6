package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamzrob/todoer/internal/model"
	"github.com/jamzrob/todoer/internal/store/daylog"
)

var now = time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)

type harness struct {
	dir      string
	out, err bytes.Buffer
	env      map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	h := &harness{dir: filepath.Join(home, "todo")}
	h.env = map[string]string{"HOME": home}
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.err.Reset()
	return Run(args,
		WithGetenv(func(k string) string { return h.env[k] }),
		WithClock(func() time.Time { return now }),
		WithOutput(&h.out, &h.err),
	)
}

func (h *harness) write(t *testing.T, key, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(h.dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, key+".md"), []byte(body), 0o644))
}

func (h *harness) read(t *testing.T, key string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(h.dir, key+".md"))
	require.NoError(t, err)
	return string(b)
}

func TestAddDoneRemove(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitOK, h.run("add", "buy", "milk"))
	assert.Equal(t, "✔ added 0). buy milk\n", h.out.String())
	require.Equal(t, ExitOK, h.run("add", "call mom"))
	require.Equal(t, ExitOK, h.run("add", "write report"))

	require.Equal(t, ExitOK, h.run("done", "0"))
	assert.Equal(t, "✔ done 0 buy milk\n", h.out.String())
	require.Equal(t, ExitOK, h.run("rm", "1"))

	assert.Equal(t, "2026-10-17\n1/2\n- [x] buy milk\n- [ ] write report\n", h.read(t, "2026-10-17"))

	require.Equal(t, ExitOK, h.run("ls"))
	assert.Equal(t, "\nTodo\n1). write report\n\nDone\n0). buy milk\n\n", h.out.String())
}

func TestDefaultCommandLists(t *testing.T) {
	h := newHarness(t)
	h.write(t, "2026-10-17", "2026-10-17\n0/1\n- [ ] z\n")

	require.Equal(t, ExitOK, h.run())
	assert.Equal(t, "\nTodo\n0). z\n\nDone\n\n", h.out.String())
}

func TestListRollsOverWithoutSaving(t *testing.T) {
	h := newHarness(t)
	h.write(t, "2026-10-16", "2026-10-16\n1/3\n- [x] buy milk\n- [ ] call mom\n- [ ] write report\n")

	require.Equal(t, ExitOK, h.run("ls"))
	assert.Equal(t, "\nTodo\n0). call mom\n1). write report\n\nDone\n\n", h.out.String())
	assert.NoFileExists(t, filepath.Join(h.dir, "2026-10-17.md"))

	require.Equal(t, ExitOK, h.run("add", "new"))
	assert.Equal(t, "2026-10-17\n0/3\n- [ ] call mom\n- [ ] write report\n- [ ] new\n", h.read(t, "2026-10-17"))
}

func TestPastDayDoesNotRollOver(t *testing.T) {
	h := newHarness(t)
	h.write(t, "2026-10-15", "2026-10-15\n0/1\n- [ ] old\n")

	require.Equal(t, ExitOK, h.run("--day", "yesterday", "add", "late entry"))
	assert.Equal(t, "2026-10-16\n0/1\n- [ ] late entry\n", h.read(t, "2026-10-16"))

	require.Equal(t, ExitOK, h.run("--day", "2026-10-15", "ls"))
	assert.Equal(t, "\nTodo\n0). old\n\nDone\n\n", h.out.String())
}

func TestCustomDayKey(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitOK, h.run("--day", "groceries", "add", "eggs"))
	assert.Equal(t, "groceries\n0/1\n- [ ] eggs\n", h.read(t, "groceries"))

	assert.Equal(t, ExitUsage, h.run("--day", "../escape", "ls"))

	// "may" alone is a date; "=may" is the name
	require.Equal(t, ExitOK, h.run("--day", "=may", "add", "flowers"))
	assert.Equal(t, "may\n0/1\n- [ ] flowers\n", h.read(t, "may"))
}

func TestExplicitFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "list.md")

	require.Equal(t, ExitOK, h.run("--file", path, "add", "one"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "list\n0/1\n- [ ] one\n", string(b))
}

func TestBulletRender(t *testing.T) {
	h := newHarness(t)
	h.write(t, "2026-10-17", "2026-10-17\n1/2\n- [ ] a\n- [x] b\n")

	require.Equal(t, ExitOK, h.run("--render", "bullet"))
	assert.Equal(t, "\nTodo\n- a\n\nDone\n- b\n\n", h.out.String())

	assert.Equal(t, ExitUsage, h.run("--render", "fancy"))
}

func TestExitCodes(t *testing.T) {
	h := newHarness(t)
	h.write(t, "2026-10-17", "2026-10-17\n0/1\n- [ ] only\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"out of range", []string{"done", "1"}, ExitUsage},
		{"negative", []string{"rm", "-1"}, ExitUsage},
		{"not a number", []string{"done", "one"}, ExitUsage},
		{"missing argument", []string{"rm"}, ExitUsage},
		{"extra argument", []string{"done", "0", "1"}, ExitUsage},
		{"empty name", []string{"add", "  "}, ExitUsage},
		{"unknown command", []string{"frobnicate"}, ExitUsage},
		{"unknown flag", []string{"ls", "--nope"}, ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.run(tt.args...), h.err.String())
			assert.NotEmpty(t, h.err.String())
		})
	}

	// none of the failures touched the file
	assert.Equal(t, "2026-10-17\n0/1\n- [ ] only\n", h.read(t, "2026-10-17"))
}

func TestOutOfRangeHint(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ExitUsage, h.run("done", "3"))
	assert.Contains(t, h.err.String(), "out of range")
	assert.Contains(t, h.err.String(), "todo ls")
}

func TestMalformedHeaderFails(t *testing.T) {
	h := newHarness(t)
	h.write(t, "2026-10-17", "2026-10-17\nnot counts\n")

	assert.Equal(t, ExitError, h.run("add", "x"))
	assert.Contains(t, h.err.String(), "2026-10-17")
	assert.Equal(t, "2026-10-17\nnot counts\n", h.read(t, "2026-10-17"))
}

func TestAllAndDays(t *testing.T) {
	h := newHarness(t)
	h.write(t, "2026-10-16", "2026-10-16\n1/2\n- [ ] x\n- [x] y\n")
	h.write(t, "2026-10-17", "2026-10-17\n0/1\n- [ ] z\n")

	require.Equal(t, ExitOK, h.run("all"))
	assert.Equal(t, "\nTodo\n0). x\n1). z\n\nDone\n0). y\n\n", h.out.String())

	require.Equal(t, ExitOK, h.run("days"))
	assert.Contains(t, h.out.String(), "\n2026-10-16\nTodo\n0). x\n")
	assert.Contains(t, h.out.String(), "\n2026-10-17\nTodo\n0). z\n")
}

func TestAllWithoutDirectory(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitError, h.run("all"))
}

func TestConfigDirFromEnvAndFlag(t *testing.T) {
	h := newHarness(t)
	envDir := t.TempDir()
	flagDir := t.TempDir()
	h.env["TODOER_DIR"] = envDir

	require.Equal(t, ExitOK, h.run("add", "env"))
	assert.FileExists(t, filepath.Join(envDir, "2026-10-17.md"))

	require.Equal(t, ExitOK, h.run("--dir", flagDir, "add", "flag"))
	assert.FileExists(t, filepath.Join(flagDir, "2026-10-17.md"))
}

func TestPanelLines(t *testing.T) {
	a := &app{mode: model.Numbered}
	s := model.NewStore()
	s.Append("a")
	s.Append("b")
	require.NoError(t, s.MarkDone(1))

	var buf bytes.Buffer
	lines := a.panelLines(&buf, &daylog.DayLog{Key: "2026-10-17", Store: s})
	assert.Contains(t, lines[0], "2026-10-17")
	assert.Contains(t, lines, "0). ☐ a")
	assert.Contains(t, lines, "1). ☑ b")
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, ExitOK, exitCode(nil))
	assert.Equal(t, ExitUsage, exitCode(fmt.Errorf("done: %w", &model.RangeError{Index: 4, Size: 1})))
	assert.Equal(t, ExitUsage, exitCode(usage("bad")))
	assert.Equal(t, ExitError, exitCode(errors.New("disk")))
	assert.Equal(t, ExitError, exitCode(&daylog.IOError{Op: "write", Err: os.ErrPermission}))
}
