package config

import (
	"fmt"
	"strings"
)

const (
	// ListMax is the maximum number of entries a config list holds.
	ListMax = 32
	// ValueMax bounds the encoded length of a single list entry. A value
	// of ValueMax-1 bytes is the longest accepted; ValueMax or more is
	// rejected, mirroring a fixed buffer that needs room for a terminator.
	ValueMax = 256
)

// boundedList is an append-only-per-load ordered collection of bounded
// strings. Capacity and per-entry length are enforced on append; the list is
// only ever rebuilt wholesale during a reload, so there is no removal API.
// Not safe for concurrent use on its own; the owning Store's lock guards it.
type boundedList struct {
	name    string
	entries []string
}

// append adds value to the first free slot. A full list or an oversized
// value rejects just that value with a descriptive error and leaves existing
// entries untouched.
func (l *boundedList) append(value string) error {
	if len(l.entries) >= ListMax {
		return fmt.Errorf("could not add [%s] to [%s]: exceeds entry count of %d", value, l.name, ListMax)
	}
	if len(value) >= ValueMax {
		return fmt.Errorf("could not add [%s] to [%s]: exceeds length limit of %d", value, l.name, ValueMax)
	}
	if strings.IndexByte(value, 0) >= 0 {
		return fmt.Errorf("could not add value to [%s]: contains NUL byte", l.name)
	}
	l.entries = append(l.entries, value)
	return nil
}

// clear wipes all entries while keeping the backing storage.
func (l *boundedList) clear() {
	l.entries = l.entries[:0]
}

// snapshot returns an independent copy of the entries.
func (l *boundedList) snapshot() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// matches reports whether any entry is a substring of client.
func (l *boundedList) matches(client string) bool {
	for _, e := range l.entries {
		if strings.Contains(client, e) {
			return true
		}
	}
	return false
}
