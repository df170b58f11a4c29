// Package ini implements the line-oriented INI reader the configuration
// reload path streams files through. It delivers one (section, key, value)
// triple per key=value line and reports the position of the first malformed
// line instead of failing the whole file.
package ini

import (
	"bufio"
	"io"
	"strings"
)

// Handler receives one parsed (section, key, value) triple per key=value
// line. The return value tells the parser whether to keep going; handlers
// that never abort simply return true.
type Handler func(section, key, value string) bool

// Parse reads INI-formatted text from r and invokes h once per non-comment,
// non-blank key=value line. It returns 0 on full success, or the 1-based
// line number of the first fatal syntax error. Triples delivered before a
// syntax error stand; nothing after it is read.
//
// Recognized syntax: [section] headers, key=value pairs with surrounding
// whitespace trimmed, and full-line comments starting with ';' or '#'.
// Keys seen before any section header belong to the empty section.
func Parse(r io.Reader, h Handler) int {
	scanner := bufio.NewScanner(r)

	section := ""
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "["):
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return lineno
			}
			section = strings.TrimSpace(line[1:end])
		default:
			eq := strings.IndexByte(line, '=')
			if eq < 0 {
				return lineno
			}
			key := strings.TrimSpace(line[:eq])
			value := strings.TrimSpace(line[eq+1:])
			if key == "" {
				return lineno
			}
			if !h(section, key, value) {
				return lineno
			}
		}
	}
	// Read errors surface as a syntax error on the line after the last
	// one successfully scanned; callers treat any non-zero result as a
	// non-fatal partial load.
	if err := scanner.Err(); err != nil {
		return lineno + 1
	}
	return 0
}
