package ini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type triple struct {
	section, key, value string
}

func collect(t *testing.T, input string) ([]triple, int) {
	t.Helper()
	var got []triple
	errLine := Parse(strings.NewReader(input), func(section, key, value string) bool {
		got = append(got, triple{section, key, value})
		return true
	})
	return got, errLine
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    []triple
		errLine int
	}{
		{
			name:  "sections and keys",
			input: "[filter]\nwhitelist=steam\nwhitelist=lutris\n[general]\nreaper_freq=10\n",
			want: []triple{
				{"filter", "whitelist", "steam"},
				{"filter", "whitelist", "lutris"},
				{"general", "reaper_freq", "10"},
			},
		},
		{
			name:  "comments and blank lines skipped",
			input: "; leading comment\n\n[custom]\n# another comment\nstart=notify-send start\n",
			want:  []triple{{"custom", "start", "notify-send start"}},
		},
		{
			name:  "whitespace trimmed",
			input: "  [ general ]  \n  reaper_freq  =  7  \n",
			want:  []triple{{"general", "reaper_freq", "7"}},
		},
		{
			name:  "key before any section uses empty section",
			input: "orphan=1\n",
			want:  []triple{{"", "orphan", "1"}},
		},
		{
			name:  "empty value allowed",
			input: "[filter]\nwhitelist=\n",
			want:  []triple{{"filter", "whitelist", ""}},
		},
		{
			name:    "unterminated section header",
			input:   "[filter\nwhitelist=steam\n",
			errLine: 1,
		},
		{
			name:    "line without equals",
			input:   "[filter]\nwhitelist=steam\nthis is not a pair\nblacklist=wine\n",
			want:    []triple{{"filter", "whitelist", "steam"}},
			errLine: 3,
		},
		{
			name:    "missing key",
			input:   "[general]\n=5\n",
			errLine: 2,
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, errLine := collect(t, tc.input)
			assert.Equal(t, tc.errLine, errLine)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseHandlerAbort(t *testing.T) {
	input := "[filter]\nwhitelist=a\nwhitelist=b\n"
	calls := 0
	errLine := Parse(strings.NewReader(input), func(_, _, _ string) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, errLine)
}
