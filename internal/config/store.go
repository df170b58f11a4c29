package config

import (
	"io"
	"sync"

	"go.uber.org/atomic"

	"github.com/gamemode/gamemoded/internal/filesys"
	"github.com/gamemode/gamemoded/internal/ini"
	"github.com/gamemode/gamemoded/internal/log"
)

const (
	// DefaultReaperFrequency is the reaper wakeup interval, in seconds,
	// used when the config file is absent or carries an invalid value.
	DefaultReaperFrequency = 5

	configName = "gamemode.ini"
	configDir  = "/usr/share/gamemode/"
)

// Store holds the daemon configuration behind a single reader/writer lock.
// Reload is the sole writer; any number of readers may call the accessors
// concurrently and each observes one complete configuration generation.
type Store struct {
	mu    sync.RWMutex
	fs    filesys.ReadFS
	paths []string

	whitelist    boundedList
	blacklist    boundedList
	startScripts boundedList
	endScripts   boundedList
	reaperFreq   int64

	generation atomic.Int64
}

// New returns a Store reading from the default search paths: gamemode.ini
// in the working directory, then under /usr/share/gamemode/. The store is
// empty until Load is called.
func New() *Store {
	return NewWithPaths(filesys.OS(), configName, configDir+configName)
}

// NewWithPaths returns a Store that tries the given paths in order on every
// load, using fs for file access. Tests inject an in-memory filesystem here.
func NewWithPaths(fs filesys.ReadFS, paths ...string) *Store {
	return &Store{
		fs:           fs,
		paths:        paths,
		whitelist:    boundedList{name: "whitelist"},
		blacklist:    boundedList{name: "blacklist"},
		startScripts: boundedList{name: "start"},
		endScripts:   boundedList{name: "end"},
		reaperFreq:   DefaultReaperFrequency,
	}
}

// Load performs the initial read of the config file. It must be called once
// before the store is shared; afterwards Reload is safe from any goroutine.
func (s *Store) Load() {
	s.reload()
}

// Reload re-reads the config file in place. The whole reset-and-repopulate
// runs under the write lock, so readers see either the previous or the new
// configuration in full. A missing file leaves the store at defaults and a
// syntax error keeps whatever was ingested before the offending line;
// neither is fatal.
func (s *Store) Reload() {
	s.reload()
}

func (s *Store) reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.whitelist.clear()
	s.blacklist.clear()
	s.startScripts.clear()
	s.endScripts.clear()
	s.reaperFreq = DefaultReaperFrequency

	f, path := s.openFirst()
	if f == nil {
		log.Infof("config: no config file found at %v, using defaults", s.paths)
	} else {
		if errLine := ini.Parse(f, s.ingest); errLine != 0 {
			log.Errorf("config: failed to parse %s: syntax error on line %d", path, errLine)
		}
		if err := f.Close(); err != nil {
			log.Warnf("config: closing %s: %v", path, err)
		}
	}

	gen := s.generation.Inc()
	log.Debugf("config: loaded generation %d from %q", gen, path)
}

// openFirst tries each candidate path in order and returns the first one
// that opens, or nil if none do.
func (s *Store) openFirst() (io.ReadCloser, string) {
	for _, p := range s.paths {
		if f, err := s.fs.Open(p); err == nil {
			return f, p
		}
	}
	return nil, ""
}

// ingest routes one parsed (section, key, value) triple into the matching
// list or scalar. Unrecognized pairs and per-entry failures are logged and
// skipped; ingestion always continues so one bad value cannot abort the
// rest of the file. Called with the write lock held.
func (s *Store) ingest(section, key, value string) bool {
	var err error
	recognized := true

	switch section {
	case "filter":
		switch key {
		case "whitelist":
			err = s.whitelist.append(value)
		case "blacklist":
			err = s.blacklist.append(value)
		default:
			recognized = false
		}
	case "general":
		if key == "reaper_freq" {
			if v, ok := parsePositiveInt(key, value); ok {
				s.reaperFreq = v
			} else {
				recognized = false
			}
		} else {
			recognized = false
		}
	case "custom":
		switch key {
		case "start":
			err = s.startScripts.append(value)
		case "end":
			err = s.endScripts.append(value)
		default:
			recognized = false
		}
	default:
		recognized = false
	}

	if err != nil {
		log.Errorf("config: %v", err)
		recognized = false
	}
	if !recognized {
		log.Infof("config: value ignored [%s] %s=%s", section, key, value)
	}
	return true
}

// IsWhitelisted reports whether client passes the whitelist. An empty
// whitelist admits everything; otherwise client must contain at least one
// entry as a substring.
func (s *Store) IsWhitelisted(client string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.whitelist.entries) == 0 {
		return true
	}
	return s.whitelist.matches(client)
}

// IsBlacklisted reports whether client matches any blacklist entry. An
// empty blacklist denies nothing.
func (s *Store) IsBlacklisted(client string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blacklist.matches(client)
}

// ReaperFrequency returns the current reaper wakeup interval in seconds.
func (s *Store) ReaperFrequency() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reaperFreq
}

// StartScripts returns an independent copy of the configured start scripts,
// usable after the lock is released without racing a concurrent reload.
func (s *Store) StartScripts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.startScripts.snapshot()
}

// EndScripts returns an independent copy of the configured end scripts.
func (s *Store) EndScripts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.endScripts.snapshot()
}

// WhitelistEntries returns an independent copy of the whitelist.
func (s *Store) WhitelistEntries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.whitelist.snapshot()
}

// BlacklistEntries returns an independent copy of the blacklist.
func (s *Store) BlacklistEntries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blacklist.snapshot()
}

// Generation returns how many loads have completed, counting the initial
// one. It only ever increases, so observers can tell reloads apart.
func (s *Store) Generation() int64 {
	return s.generation.Load()
}

// Paths returns the candidate config file locations in search order. The
// set is fixed at construction; external reload triggers watch these.
func (s *Store) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}
