package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedListCapacity(t *testing.T) {
	l := boundedList{name: "whitelist"}

	for i := 0; i < ListMax; i++ {
		require.NoError(t, l.append(strings.Repeat("x", i+1)))
	}
	require.Len(t, l.entries, ListMax)

	// The extra entry is rejected and existing ones stay put.
	err := l.append("one-too-many")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds entry count")
	assert.Len(t, l.entries, ListMax)
	assert.Equal(t, "x", l.entries[0])
}

func TestBoundedListLengthBound(t *testing.T) {
	l := boundedList{name: "blacklist"}

	// Exactly ValueMax bytes would leave no room for a terminator.
	err := l.append(strings.Repeat("a", ValueMax))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds length limit")
	assert.Empty(t, l.entries)

	assert.NoError(t, l.append(strings.Repeat("a", ValueMax-1)))
	assert.Len(t, l.entries, 1)
}

func TestBoundedListRejectsNUL(t *testing.T) {
	l := boundedList{name: "start"}
	assert.Error(t, l.append("bad\x00value"))
	assert.Empty(t, l.entries)
}

func TestBoundedListClearAndSnapshot(t *testing.T) {
	l := boundedList{name: "end"}
	require.NoError(t, l.append("first"))
	require.NoError(t, l.append("second"))

	snap := l.snapshot()
	assert.Equal(t, []string{"first", "second"}, snap)

	// Snapshot is independent of the backing storage.
	snap[0] = "mutated"
	assert.Equal(t, "first", l.entries[0])

	l.clear()
	assert.Empty(t, l.entries)
	assert.Empty(t, l.snapshot())
}

func TestBoundedListMatches(t *testing.T) {
	l := boundedList{name: "whitelist"}
	require.NoError(t, l.append("steam"))
	require.NoError(t, l.append("lutris"))

	assert.True(t, l.matches("/usr/bin/steam"))
	assert.True(t, l.matches("/opt/lutris/bin/lutris-wrapper"))
	assert.False(t, l.matches("/usr/bin/wine"))
	// Case-sensitive, no anchoring.
	assert.False(t, l.matches("/usr/bin/Steam"))
	assert.False(t, l.matches(""))
}

func TestParsePositiveInt(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want int64
		ok   bool
	}{
		{name: "positive", text: "10", want: 10, ok: true},
		{name: "one", text: "1", want: 1, ok: true},
		{name: "zero", text: "0"},
		{name: "negative", text: "-3"},
		{name: "empty", text: ""},
		{name: "trailing garbage", text: "5s"},
		{name: "not a number", text: "five"},
		{name: "overflow", text: "99999999999999999999999999"},
		{name: "leading space", text: " 5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parsePositiveInt("reaper_freq", tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
