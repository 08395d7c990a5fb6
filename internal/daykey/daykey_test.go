package daykey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.Local)

func TestToday(t *testing.T) {
	assert.Equal(t, "2026-10-17", Today(now, ""))
	assert.Equal(t, "26-10-17", Today(now, "06-01-02"))
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{key: "2026-10-17", want: "2026-10-16", wantOK: true},
		{key: "2026-03-01", want: "2026-02-28", wantOK: true},
		{key: "2026-01-01", want: "2025-12-31", wantOK: true},
		{key: "groceries", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Previous(tt.key, DefaultLayout)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    string
		wantErr bool
	}{
		{name: "empty", expr: "", want: "2026-10-17"},
		{name: "today", expr: "Today", want: "2026-10-17"},
		{name: "explicit", expr: "2026-09-01", want: "2026-09-01"},
		{name: "yesterday", expr: "yesterday", want: "2026-10-16"},
		{name: "override", expr: "groceries", want: "groceries"},
		{name: "path", expr: "../etc/passwd", wantErr: true},
		{name: "dotdot", expr: "..", wantErr: true},
		{name: "literal", expr: "=may", want: "may"},
		{name: "literal date word", expr: "=yesterday", want: "yesterday"},
		{name: "literal empty", expr: "=", wantErr: true},
		{name: "literal path", expr: "=../x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.expr, now, DefaultLayout)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBareMonthIsADate(t *testing.T) {
	got, err := Resolve("may", now, DefaultLayout)
	require.NoError(t, err)
	assert.NotEqual(t, "may", got)
	_, ok := Parse(got, DefaultLayout)
	assert.True(t, ok, got)
}

func TestIsPast(t *testing.T) {
	assert.False(t, IsPast("2026-10-17", now, DefaultLayout))
	assert.True(t, IsPast("2026-10-16", now, DefaultLayout))
	assert.True(t, IsPast("groceries", now, DefaultLayout))
}
