package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/jamzrob/todoer/internal/model"
)

// ErrNothingToPick is returned when a picker has no options to offer.
var ErrNothingToPick = errors.New("nothing to pick")

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = huh.ErrUserAborted

// Operation is a single prompted change to a list.
type Operation string

const (
	OpAdd    Operation = "add"
	OpDone   Operation = "done"
	OpRemove Operation = "remove"
	OpQuit   Operation = "quit"
)

func operationOptions(withQuit bool) []huh.Option[Operation] {
	opts := []huh.Option[Operation]{
		huh.NewOption("add", OpAdd),
		huh.NewOption("done", OpDone),
		huh.NewOption("remove", OpRemove),
	}
	if withQuit {
		opts = append(opts, huh.NewOption("quit", OpQuit))
	}
	return opts
}

// PickOperation asks which change to make. withQuit adds a way out for
// prompt loops.
func PickOperation(withQuit bool) (Operation, error) {
	op := OpAdd
	err := huh.NewSelect[Operation]().
		Title("What now?").
		Options(operationOptions(withQuit)...).
		Value(&op).
		Run()
	return op, err
}

// InputName asks for a new item name.
func InputName() (string, error) {
	var name string
	err := huh.NewInput().
		Title("add").
		Placeholder("item name").
		Value(&name).
		Validate(validateName).
		Run()
	return strings.TrimSpace(name), err
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name cannot be empty")
	}
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("name must be a single line")
	}
	return nil
}

// itemOptions lists entries by name, each carrying its ordinal.
func itemOptions(entries []model.Entry) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(entries))
	for _, e := range entries {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d). %s", e.Ordinal, e.Name), e.Ordinal))
	}
	return opts
}

// entries numbers every item in s.
func entries(s *model.Store) []model.Entry {
	all := s.All()
	out := make([]model.Entry, 0, len(all))
	for i, it := range all {
		out = append(out, model.Entry{Ordinal: i, Item: it})
	}
	return out
}

// PickItem asks for one item of s and returns its ordinal. For OpDone
// only pending items are offered.
func PickItem(s *model.Store, op Operation) (int, error) {
	list := entries(s)
	if op == OpDone {
		list = s.Pending()
	}
	if len(list) == 0 {
		return 0, ErrNothingToPick
	}
	idx := list[0].Ordinal
	err := huh.NewSelect[int]().
		Title(string(op)).
		Options(itemOptions(list)...).
		Filtering(true).
		Value(&idx).
		Run()
	return idx, err
}

// PickDay asks for one of keys, newest first.
func PickDay(keys []string) (string, error) {
	if len(keys) == 0 {
		return "", ErrNothingToPick
	}
	opts := dayOptions(keys)
	day := opts[0].Value
	err := huh.NewSelect[string]().
		Title("Which day?").
		Options(opts...).
		Filtering(true).
		Value(&day).
		Run()
	return day, err
}

func dayOptions(keys []string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		opts = append(opts, huh.NewOption(keys[i], keys[i]))
	}
	return opts
}

// Apply performs op on s, prompting for whatever argument it needs. It
// reports whether s changed.
func Apply(s *model.Store, op Operation) (bool, error) {
	switch op {
	case OpAdd:
		name, err := InputName()
		if err != nil {
			return false, err
		}
		s.Append(name)
		return true, nil
	case OpDone, OpRemove:
		idx, err := PickItem(s, op)
		if err != nil {
			return false, err
		}
		if op == OpDone {
			err = s.MarkDone(idx)
		} else {
			err = s.Remove(idx)
		}
		return err == nil, err
	}
	return false, nil
}
