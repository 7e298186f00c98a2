package inspect

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rmello/clamtap/pkg/types"
)

var errConnRefused = errors.New("dial unix /tmp/clamd.sock: connection refused")

// fakeDaemon records calls and serves canned replies.
type fakeDaemon struct {
	mu         sync.Mutex
	pingCalls  int
	scanCalls  int
	scanBodies [][]byte

	pingErr    error
	versionErr error
	scanErr    error
	scanReply  string
	scanDelay  time.Duration
}

func (d *fakeDaemon) Ping(ctx context.Context) (string, error) {
	d.mu.Lock()
	d.pingCalls++
	d.mu.Unlock()
	if d.pingErr != nil {
		return "", d.pingErr
	}
	return "PONG", nil
}

func (d *fakeDaemon) Version(ctx context.Context) (string, error) {
	if d.versionErr != nil {
		return "", d.versionErr
	}
	return "ClamAV 1.3.1/test", nil
}

func (d *fakeDaemon) ScanStream(ctx context.Context, body []byte) (string, error) {
	if d.scanDelay > 0 {
		time.Sleep(d.scanDelay)
	}
	d.mu.Lock()
	d.scanCalls++
	d.scanBodies = append(d.scanBodies, body)
	d.mu.Unlock()
	if d.scanErr != nil {
		return "", d.scanErr
	}
	if d.scanReply == "" {
		return "stream: OK", nil
	}
	return d.scanReply, nil
}

func (d *fakeDaemon) SocketPath() string { return "/tmp/clamd.sock" }

func (d *fakeDaemon) pingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pingCalls
}

func (d *fakeDaemon) scanCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scanCalls
}

// exactFilter is a zero-false-positive stand-in for the bloom filter.
// Seen marks the id as a side effect, closing the check-then-mark window
// so concurrent-caller tests can assert exact dispatch counts.
type exactFilter struct {
	mu   sync.Mutex
	seen map[string]struct{}

	seenCalls int
}

func newExactFilter() *exactFilter {
	return &exactFilter{seen: make(map[string]struct{})}
}

func (f *exactFilter) Seen(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seenCalls++
	_, ok := f.seen[id]
	if !ok {
		f.seen[id] = struct{}{}
	}
	return ok
}

func (f *exactFilter) MarkSeen(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[id] = struct{}{}
}

func (f *exactFilter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenCalls
}

// captureSink records appended findings.
type captureSink struct {
	mu       sync.Mutex
	appended []appendedFinding
}

type appendedFinding struct {
	category string
	finding  types.Finding
}

func (s *captureSink) Append(category string, f types.Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, appendedFinding{category: category, finding: f})
}

func (s *captureSink) all() []appendedFinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appendedFinding(nil), s.appended...)
}
