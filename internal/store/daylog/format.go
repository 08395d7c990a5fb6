package daylog

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/jamzrob/todoer/internal/model"
)

const (
	markPending = "- [ ] "
	markDone    = "- [x] "
	doneToken   = "[x]"
)

// Format renders a store in the on-disk text form:
//
//	<key>
//	<done>/<size>
//	- [x] done item
//	- [ ] pending item
func Format(key string, s *model.Store) string {
	var b strings.Builder
	b.WriteString(key)
	b.WriteByte('\n')
	b.WriteString(strconv.Itoa(s.DoneCount()))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(s.Size()))
	b.WriteByte('\n')
	for _, it := range s.All() {
		if it.Done {
			b.WriteString(markDone)
		} else {
			b.WriteString(markPending)
		}
		b.WriteString(it.Name)
		b.WriteByte('\n')
	}
	return b.String()
}

// Parse reads the text form back. The header is strict; body lines are
// taken as items whatever they look like. The returned store keeps the
// counters from the header even if the body disagrees with them.
func Parse(r io.Reader) (key string, s *model.Store, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", nil, err
		}
		return "", nil, &HeaderError{Line: 1, Reason: "missing date key"}
	}
	key = sc.Text()

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", nil, err
		}
		return "", nil, &HeaderError{Line: 2, Reason: "missing done/size counts"}
	}
	done, size, err := parseCounts(sc.Text())
	if err != nil {
		return "", nil, err
	}

	var items []model.Item
	for sc.Scan() {
		items = append(items, parseItem(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return "", nil, err
	}
	return key, model.Restore(items, done, size), nil
}

func parseCounts(line string) (done, size int, err error) {
	d, sz, ok := strings.Cut(line, "/")
	if !ok {
		return 0, 0, &HeaderError{Line: 2, Reason: "expected <done>/<size>, got " + strconv.Quote(line)}
	}
	if done, err = parseCount(d); err != nil {
		return 0, 0, &HeaderError{Line: 2, Reason: "done count: " + err.Error()}
	}
	if size, err = parseCount(sz); err != nil {
		return 0, 0, &HeaderError{Line: 2, Reason: "size: " + err.Error()}
	}
	return done, size, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func parseItem(line string) model.Item {
	return model.Item{
		Name: strings.ReplaceAll(strings.ReplaceAll(line, markPending, ""), markDone, ""),
		Done: strings.Contains(line, doneToken),
	}
}
