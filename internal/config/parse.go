package config

import (
	"errors"
	"strconv"

	"github.com/gamemode/gamemoded/internal/log"
)

// parsePositiveInt converts text into a strictly positive base-10 integer.
// The entire text must be consumed; empty text, trailing garbage, zero,
// negatives and overflow all fail. Failures log the offending field name and
// raw text so the caller can keep its previous value untouched.
func parsePositiveInt(name, text string) (int64, bool) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			log.Errorf("config: %s overflowed, given [%s]", name, text)
		} else {
			log.Errorf("config: %s was invalid, given [%s]", name, text)
		}
		return 0, false
	}
	if v <= 0 {
		log.Errorf("config: %s was invalid, given [%s]", name, text)
		return 0, false
	}
	return v, true
}
