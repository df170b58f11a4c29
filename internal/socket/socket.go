// Package socket provides the Unix domain socket plumbing over which the
// CLI talks to the gamemoded daemon.
package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var (
	// ErrAddressInUse is returned when the socket path already has a live listener.
	ErrAddressInUse = errors.New("address already in use")
	// ErrNotRunning is returned when the daemon process cannot be reached.
	ErrNotRunning = errors.New("daemon not running")
)

// Config controls connection retry behavior, socket file permissions, and
// the daemon process name used for liveness detection.
type Config struct {
	// StartupTimeout is the maximum time to wait for the daemon to come up.
	StartupTimeout time.Duration
	// RetryInterval is the pause between connection attempts.
	RetryInterval time.Duration
	// Permissions defines the socket file permissions.
	Permissions os.FileMode
	// ProcessName is the daemon executable name to look for.
	ProcessName string
}

// DefaultConfig returns the defaults: 5s startup timeout, 250ms retries,
// OS-appropriate permissions, and "gamemoded" as the process name.
func DefaultConfig() *Config {
	return &Config{
		StartupTimeout: 5 * time.Second,
		RetryInterval:  250 * time.Millisecond,
		Permissions:    defaultPermissions(),
		ProcessName:    "gamemoded",
	}
}

// Socket bundles the configuration and process checker used for connecting
// to or listening on the daemon's control socket.
type Socket struct {
	config    *Config
	procCheck ProcessChecker
	startTime time.Time
}

// New creates a Socket. A nil cfg uses DefaultConfig.
func New(cfg *Config, checker ProcessChecker) *Socket {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Socket{
		config:    cfg,
		procCheck: checker,
		startTime: time.Now(),
	}
}

// ConnectContext dials the daemon socket with default configuration.
func ConnectContext(ctx context.Context, path string) (net.Conn, error) {
	s := New(nil, &DefaultProcessChecker{})
	return s.Connect(ctx, path)
}

// Listen creates a listener at path with default configuration.
func Listen(path string) (net.Listener, error) {
	s := New(nil, &DefaultProcessChecker{})
	return s.Listen(path)
}

// Connect dials the socket, retrying until the context is cancelled, the
// startup timeout passes, or the daemon stops looking alive. Returns
// ErrNotRunning when it gives up.
func (s *Socket) Connect(ctx context.Context, path string) (net.Conn, error) {
	deadline := time.Now().Add(s.config.StartupTimeout)

	for {
		conn, err := (&net.Dialer{}).DialContext(ctx, "unix", path)
		if err == nil {
			return conn, nil
		}

		if !s.shouldRetry(deadline) {
			return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.config.RetryInterval):
		}
	}
}

// Listen creates a Unix domain socket listener at path: the parent directory
// is created if needed, a stale socket file from a dead daemon is removed,
// and permissions are applied. A live listener at path returns
// ErrAddressInUse.
func (s *Socket) Listen(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating socket directory: %w", err)
	}

	if err := s.clearStaleSocket(path); err != nil {
		return nil, err
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("creating socket listener: %w", err)
	}

	if err := os.Chmod(path, s.config.Permissions); err != nil {
		listener.Close()
		return nil, fmt.Errorf("setting socket permissions: %w", err)
	}

	return listener, nil
}

func (s *Socket) shouldRetry(deadline time.Time) bool {
	if time.Now().After(deadline) {
		return false
	}
	// Grace window right after our own start, before the process table
	// check becomes meaningful.
	if time.Since(s.startTime) < 2*time.Second {
		return true
	}
	return s.procCheck.IsRunning(s.config.ProcessName)
}

func (s *Socket) clearStaleSocket(path string) error {
	conn, err := net.Dial("unix", path)
	if err == nil {
		_ = conn.Close()
		return ErrAddressInUse
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket: %w", err)
	}
	return nil
}

func defaultPermissions() os.FileMode {
	// Group/world access is acceptable where peer credentials exist.
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd":
		return 0o666
	default:
		return 0o600
	}
}
