// Package inspect is the scan-dispatch and deduplication engine. For
// every HTTP exchange observed by the traffic source it decides, cheaply
// and without blocking the caller, whether the response body should be
// submitted to clamd, and records confirmed detections as findings.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rmello/clamtap/internal/clamd"
	"github.com/rmello/clamtap/internal/findings"
	"github.com/rmello/clamtap/pkg/types"
)

const (
	findingTitle    = "Malware identified"
	reporterName    = "clamav"
	malwareCategory = "malware"
)

// Daemon abstracts the clamd operations the engine needs.
type Daemon interface {
	Ping(ctx context.Context) (string, error)
	Version(ctx context.Context) (string, error)
	ScanStream(ctx context.Context, body []byte) (string, error)
	SocketPath() string
}

// Filter is the dedup membership test over resource URLs.
type Filter interface {
	Seen(id string) bool
	MarkSeen(id string)
}

// Options configures the coordinator's gates and dispatch pool.
type Options struct {
	// Methods and StatusCodes gate which exchanges are eligible for
	// scanning. Empty slices select the defaults (GET, 200).
	Methods     []string
	StatusCodes []int

	// Workers is the scan worker count, QueueSize the dispatch buffer.
	Workers   int
	QueueSize int
}

// Stats is a snapshot of coordinator counters.
type Stats struct {
	Submitted uint64 `json:"submitted"`
	Scanned   uint64 `json:"scanned"`
	Deduped   uint64 `json:"deduped"`
	Dropped   uint64 `json:"dropped"`
	Findings  uint64 `json:"findings"`
	Daemon    string `json:"daemon"`
}

// Coordinator orchestrates probe, dedup, scan, parse, and report for
// each observed exchange. It is stateless across invocations apart from
// the shared filter and probe, and is safe for concurrent use.
type Coordinator struct {
	methods     map[string]struct{}
	statusCodes map[int]struct{}

	probe      *Probe
	filter     Filter
	daemon     Daemon
	sink       findings.Sink
	dispatcher *dispatcher
	log        zerolog.Logger

	submitted atomic.Uint64
	scanned   atomic.Uint64
	deduped   atomic.Uint64
	found     atomic.Uint64
}

// NewCoordinator wires the engine together and starts its scan workers.
// Call Drain before process exit to flush outstanding scans.
func NewCoordinator(daemon Daemon, filter Filter, sink findings.Sink, opts Options, log zerolog.Logger) *Coordinator {
	methods := opts.Methods
	if len(methods) == 0 {
		methods = []string{"GET"}
	}
	statusCodes := opts.StatusCodes
	if len(statusCodes) == 0 {
		statusCodes = []int{200}
	}

	c := &Coordinator{
		methods:     make(map[string]struct{}, len(methods)),
		statusCodes: make(map[int]struct{}, len(statusCodes)),
		probe:       NewProbe(daemon, log),
		filter:      filter,
		daemon:      daemon,
		sink:        sink,
		log:         log,
	}
	for _, m := range methods {
		c.methods[m] = struct{}{}
	}
	for _, sc := range statusCodes {
		c.statusCodes[sc] = struct{}{}
	}

	c.dispatcher = newDispatcher(opts.Workers, opts.QueueSize, c.scan, log)
	return c
}

// OnResponse is the per-exchange entry point. It never blocks on the
// daemon and never returns an error to the pipeline: every failure mode
// degrades to skipping the resource's scan.
func (c *Coordinator) OnResponse(ctx context.Context, ex types.Exchange) {
	if _, ok := c.methods[ex.Method]; !ok {
		return
	}
	if _, ok := c.statusCodes[ex.StatusCode]; !ok {
		return
	}

	// Cheapest checks first: a disabled daemon costs one state read,
	// a known URL one filter probe.
	if !c.probe.Enabled(ctx) {
		return
	}
	if c.filter.Seen(ex.URL) {
		c.deduped.Add(1)
		return
	}
	c.filter.MarkSeen(ex.URL)

	c.submitted.Add(1)
	if !c.dispatcher.submit(ex) {
		c.log.Warn().Str("url", ex.URL).Msg("scan queue full, dropping submission")
	}
}

// scan runs on a dispatcher worker: one daemon round trip, classify,
// report. Transport and parse failures are logged and swallowed.
func (c *Coordinator) scan(ctx context.Context, ex types.Exchange) {
	reply, err := c.daemon.ScanStream(ctx, ex.Body)
	if err != nil {
		c.log.Warn().Err(err).Str("url", ex.URL).Msg("scan dispatch failed, skipping resource")
		return
	}
	c.scanned.Add(1)

	verdict, err := clamd.ParseScanReply(reply)
	if err != nil {
		if errors.Is(err, clamd.ErrMalformedResponse) {
			c.log.Warn().Str("url", ex.URL).Str("raw", reply).Msg("unparseable clamd reply, treating as no verdict")
		} else {
			c.log.Warn().Err(err).Str("url", ex.URL).Msg("classifying clamd reply failed")
		}
		return
	}

	if !verdict.Found {
		return
	}

	desc := fmt.Sprintf("ClamAV identified malware at URL: %q, the matched signature name is %q.",
		ex.URL, verdict.Signature)
	f := types.NewFinding(findingTitle, desc, ex.URL, ex.ID, reporterName)
	f.Metadata = map[string]string{"signature": verdict.Signature}

	c.sink.Append(malwareCategory, f)
	c.found.Add(1)
	c.log.Info().Str("url", ex.URL).Str("signature", verdict.Signature).Msg("malware identified")
}

// Drain stops intake and waits for outstanding scans to finish, or for
// ctx to expire, whichever comes first. Call once at pipeline shutdown.
func (c *Coordinator) Drain(ctx context.Context) error {
	return c.dispatcher.drain(ctx)
}

// DaemonState reports the probe's current tri-state without resolving it.
func (c *Coordinator) DaemonState() State { return c.probe.CurrentState() }

// Stats returns a snapshot of the engine counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Submitted: c.submitted.Load(),
		Scanned:   c.scanned.Load(),
		Deduped:   c.deduped.Load(),
		Dropped:   c.dispatcher.droppedCount(),
		Findings:  c.found.Load(),
		Daemon:    c.probe.CurrentState().String(),
	}
}
