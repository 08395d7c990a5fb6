package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderMode selects how each rendered line is prefixed.
type RenderMode int

const (
	// Numbered prefixes each line with its ordinal: "3). name".
	Numbered RenderMode = iota
	// Bullet prefixes each line with a plain bullet: "- name".
	Bullet
)

func (m RenderMode) String() string {
	switch m {
	case Bullet:
		return "bullet"
	default:
		return "numbered"
	}
}

// ParseRenderMode maps a config or flag value to a RenderMode.
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "numbered", "number", "numbers":
		return Numbered, nil
	case "bullet", "bullets":
		return Bullet, nil
	}
	return Numbered, fmt.Errorf("unknown render mode %q (expected numbered or bullet)", s)
}

// Line formats one rendered line for the given mode.
func (m RenderMode) Line(ordinal int, name string) string {
	if m == Bullet {
		return "- " + name + "\n"
	}
	return strconv.Itoa(ordinal) + "). " + name + "\n"
}

// Store holds one day's items addressed by dense zero-based ordinals.
//
// size and done are bookkeeping counters. They are kept in step by every
// mutation but are not recomputed from the items: a store restored from a
// file carries whatever counts the file header declared.
type Store struct {
	items []Item
	size  int
	done  int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Restore builds a store from parsed items and the counters recorded
// alongside them.
func Restore(items []Item, done, size int) *Store {
	return &Store{items: items, size: size, done: done}
}

// Size is the number of items according to the store's bookkeeping.
func (s *Store) Size() int { return s.size }

// DoneCount is the number of completed items according to the store's
// bookkeeping. Marking the same item done twice counts it twice.
func (s *Store) DoneCount() int { return s.done }

// Len is the number of items actually held.
func (s *Store) Len() int { return len(s.items) }

// Append adds a new pending item at the end and returns its ordinal.
func (s *Store) Append(name string) int {
	s.items = append(s.items, Item{Name: name})
	s.size++
	return len(s.items) - 1
}

// Remove deletes the item at index and shifts every later item down one
// ordinal. Ordinals held by callers are invalid afterwards.
func (s *Store) Remove(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	if s.items[index].Done && s.done > 0 {
		s.done--
	}
	copy(s.items[index:], s.items[index+1:])
	s.items[len(s.items)-1] = Item{}
	s.items = s.items[:len(s.items)-1]
	s.size--
	return nil
}

// MarkDone flags the item at index as done and bumps the done counter,
// whether or not the item was already done.
func (s *Store) MarkDone(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.items[index].Done = true
	s.done++
	return nil
}

func (s *Store) check(index int) error {
	if index < 0 || index >= s.size || index >= len(s.items) {
		return &RangeError{Index: index, Size: s.size}
	}
	return nil
}

// Names returns item names in ordinal order.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Name)
	}
	return out
}

// All returns a copy of the items in ordinal order.
func (s *Store) All() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Pending returns the not-done items with their ordinals.
func (s *Store) Pending() []Entry {
	var out []Entry
	for i, it := range s.items {
		if !it.Done {
			out = append(out, Entry{Ordinal: i, Item: it})
		}
	}
	return out
}

// Stats counts done and pending items from the items themselves.
func (s *Store) Stats() (done, pending int) {
	for _, it := range s.items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// Clone returns an independent copy of s, counters included.
func (s *Store) Clone() *Store {
	return Restore(s.All(), s.done, s.size)
}

// Carry returns a fresh store holding only the pending items, renumbered
// from zero, with nothing done.
func (s *Store) Carry() *Store {
	next := NewStore()
	for _, it := range s.items {
		if !it.Done {
			next.Append(it.Name)
		}
	}
	return next
}

// Render lists pending items under "Todo" and completed items under
// "Done", each in ordinal order.
func (s *Store) Render(mode RenderMode) string {
	var b strings.Builder
	b.WriteString("\nTodo\n")
	for i, it := range s.items {
		if !it.Done {
			b.WriteString(mode.Line(i, it.Name))
		}
	}
	b.WriteString("\nDone\n")
	for i, it := range s.items {
		if it.Done {
			b.WriteString(mode.Line(i, it.Name))
		}
	}
	return b.String()
}
