package pingsweep

import (
	"context"
	"fmt"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/command"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/prescan"
	syncutil "github.com/projectdiscovery/utils/sync"
)

const (
	DefaultTimeout    = 400 * time.Millisecond
	DefaultMaxWorkers = 64
)

// Options configures a sweep
type Options struct {
	// Timeout is the per probe reply wait
	Timeout time.Duration
	// MaxWorkers bounds concurrent probes
	MaxWorkers int
}

func (o *Options) applyDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = DefaultMaxWorkers
	}
}

// Prober sends a single reachability probe to host
type Prober interface {
	Probe(ctx context.Context, host string, timeout time.Duration) error
}

// CommandProber probes with the platform ping tool
type CommandProber struct {
	Executor command.Executor
}

// Probe runs one ping. The process is bounded by the reply wait plus a
// second of startup slack.
func (p *CommandProber) Probe(ctx context.Context, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, command.InvocationTimeout(timeout))
	defer cancel()

	result, err := p.Executor.Ping(ctx, host, timeout)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("ping %s exited with status %d", host, result.ExitCode)
	}
	return nil
}

// NewProber returns an ICMP prober when preferICMP is set and the process
// holds the privileges raw sockets need, and a command prober otherwise.
func NewProber(executor command.Executor, preferICMP bool) Prober {
	if preferICMP {
		if IsPrivileged() {
			gologger.Verbose().Msgf("using raw ICMP prober")
			return NewICMPProber()
		}
		gologger.Verbose().Msgf("raw ICMP needs elevated privileges, using ping tool")
	}
	return &CommandProber{Executor: executor}
}

// Sweeper fans probes out over a bounded worker pool
type Sweeper struct {
	prober  Prober
	options Options
}

// NewSweeper returns a sweeper; zero option values take the defaults
func NewSweeper(prober Prober, options Options) *Sweeper {
	options.applyDefaults()
	return &Sweeper{prober: prober, options: options}
}

// Sweep probes every host once and blocks until all probes finished.
// Scheduling stops when ctx is cancelled. Probe results are discarded.
func (s *Sweeper) Sweep(ctx context.Context, hosts []string) {
	if len(hosts) == 0 {
		return
	}

	workers := min(s.options.MaxWorkers, len(hosts))
	awg, err := syncutil.New(syncutil.WithSize(workers))
	if err != nil {
		gologger.Debug().Msgf("could not create sweep pool: %s", err)
		return
	}

	started := time.Now()
	for _, host := range hosts {
		if ctx.Err() != nil {
			break
		}

		awg.Add()
		go func(host string) {
			defer awg.Done()

			if err := s.prober.Probe(ctx, host, s.options.Timeout); err != nil {
				gologger.Debug().Msgf("probe %s: %s", host, err)
			}
		}(host)
	}
	awg.Wait()

	gologger.Verbose().Msgf("swept %d hosts with %d workers in %s", len(hosts), workers, time.Since(started).Round(time.Millisecond))
}

// SweepRange sweeps the hosts of r, gateways and early leases first
func (s *Sweeper) SweepRange(ctx context.Context, r *common.NetworkRange) {
	s.Sweep(ctx, prescan.Order(r.Network, r.Hosts))
}
