package inspect

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// State is the daemon availability tri-state. It transitions away from
// StateUnknown exactly once per process and never back.
type State int

const (
	StateUnknown State = iota
	StateEnabled
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Probe lazily determines whether the scanning daemon is usable. The
// first call to Enabled performs a single ping; the result is cached for
// every subsequent caller regardless of goroutine.
type Probe struct {
	mu     sync.Mutex
	state  State
	daemon Daemon
	log    zerolog.Logger
}

// NewProbe creates an unresolved probe for the given daemon.
func NewProbe(daemon Daemon, log zerolog.Logger) *Probe {
	return &Probe{daemon: daemon, log: log}
}

// Enabled reports whether scanning is permitted, resolving the daemon
// state on first use. All access is serialized through one mutex, so no
// caller ever observes a partially resolved state and the underlying
// ping runs at most once.
func (p *Probe) Enabled(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateUnknown {
		p.state = p.resolve(ctx)
	}
	return p.state == StateEnabled
}

// CurrentState returns the probe state without triggering resolution.
func (p *Probe) CurrentState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Probe) resolve(ctx context.Context) State {
	if _, err := p.daemon.Ping(ctx); err != nil {
		p.log.Error().
			Err(err).
			Str("socket", p.daemon.SocketPath()).
			Msg("failed to connect to clamd, scanning disabled for this run; verify the socket path and that clamav-daemon is running")
		return StateDisabled
	}

	version, err := p.daemon.Version(ctx)
	if err != nil {
		// Daemon answered the ping; a failed VERSION only costs the log line.
		version = "unknown version"
	}
	p.log.Info().
		Str("version", version).
		Msg("using clamd for scanning HTTP response bodies")
	return StateEnabled
}
