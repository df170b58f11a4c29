package daemoncfg_test

import (
	"io"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gamemode/gamemoded/internal/daemoncfg"
)

type mockFS struct {
	files map[string]string
}

func (m mockFS) Open(path string) (io.ReadCloser, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (m mockFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; !ok {
		return nil, os.ErrNotExist
	}
	return nil, nil
}

func (m mockFS) MkdirAll(string, os.FileMode) error { return nil }

func (m mockFS) WriteFile(path string, content []byte, _ os.FileMode) error {
	m.files[path] = string(content)
	return nil
}

type SettingsTestSuite struct {
	suite.Suite
	fs       mockFS
	provider daemoncfg.Provider
}

func (s *SettingsTestSuite) SetupTest() {
	s.fs = mockFS{files: make(map[string]string)}
	s.provider = daemoncfg.NewWithPath(s.fs, "test/config.yaml")
}

func (s *SettingsTestSuite) TestLoadDefaultWhenNoFile() {
	set, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(daemoncfg.DefaultSocketPath, set.Socket.Path)
	s.Equal(daemoncfg.DefaultWatchDebounce, set.Watch.Debounce)
}

func (s *SettingsTestSuite) TestLoadValidSettings() {
	s.fs.files["test/config.yaml"] = `
socket:
  path: /custom/socket
watch:
  debounce: 250ms
`
	set, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal("/custom/socket", set.Socket.Path)
	s.Equal(250*time.Millisecond, set.Watch.Debounce)
}

func (s *SettingsTestSuite) TestValidation() {
	testCases := []struct {
		name        string
		settings    daemoncfg.Settings
		expectedErr string
	}{
		{
			name: "empty socket path",
			settings: daemoncfg.Settings{
				Socket: daemoncfg.SocketSettings{Path: ""},
				Watch:  daemoncfg.WatchSettings{Debounce: time.Second},
			},
			expectedErr: "socket path cannot be empty",
		},
		{
			name: "whitespace socket path",
			settings: daemoncfg.Settings{
				Socket: daemoncfg.SocketSettings{Path: "  \t"},
				Watch:  daemoncfg.WatchSettings{Debounce: time.Second},
			},
			expectedErr: "socket path cannot be empty",
		},
		{
			name: "debounce too small",
			settings: daemoncfg.Settings{
				Socket: daemoncfg.SocketSettings{Path: "/tmp/socket"},
				Watch:  daemoncfg.WatchSettings{Debounce: time.Millisecond},
			},
			expectedErr: "watch debounce must be at least 10ms",
		},
		{
			name: "valid minimums",
			settings: daemoncfg.Settings{
				Socket: daemoncfg.SocketSettings{Path: "/tmp/socket"},
				Watch:  daemoncfg.WatchSettings{Debounce: 10 * time.Millisecond},
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.settings.Validate()
			if tc.expectedErr == "" {
				s.NoError(err)
			} else {
				s.Require().Error(err)
				s.Contains(err.Error(), tc.expectedErr)
			}
		})
	}
}

func (s *SettingsTestSuite) TestLoadInvalidYAML() {
	s.fs.files["test/config.yaml"] = "socket:\n  path: [not: valid]\n"

	_, err := s.provider.Load()

	s.Require().Error(err)
	s.Contains(err.Error(), "decoding settings file")
}

func TestSettingsSuite(t *testing.T) {
	suite.Run(t, new(SettingsTestSuite))
}
