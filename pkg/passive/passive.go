// Package passive checks a target with a single echo request when richer
// telemetry is unavailable.
package passive

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/command"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
)

// DefaultTimeout is the reply wait of a passive probe
const DefaultTimeout = time.Second

// latencyPattern matches "time=0.42 ms", "time<1ms" and "Zeit=3ms"
var latencyPattern = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)?)\s*ms\b`)

// Prober runs passive probes
type Prober struct {
	Executor command.Executor
	Timeout  time.Duration
}

// New returns a prober with the default timeout
func New(executor command.Executor) *Prober {
	return &Prober{Executor: executor, Timeout: DefaultTimeout}
}

// Probe pings address once. It never fails: invocation problems are
// reported as an unreachable target without latency.
func (p *Prober) Probe(ctx context.Context, address, reason string) *types.PassiveResult {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, command.InvocationTimeout(timeout))
	defer cancel()

	result := &types.PassiveResult{Reason: reason}

	output, err := p.Executor.Ping(ctx, address, timeout)
	switch {
	case err != nil:
		gologger.Debug().Msgf("passive probe of %s failed: %s", address, err)
	case output.Success():
		result.Reachable = true
		if latency, ok := ParseLatency(output.Stdout); ok {
			result.SetLatency(latency)
		}
	}

	result.Status = types.Liveness(result.Reachable)
	result.CollectedAt = time.Now().UTC()
	return result
}

// ParseLatency returns the first millisecond value in ping output
func ParseLatency(output string) (float64, bool) {
	match := latencyPattern.FindStringSubmatch(output)
	if match == nil {
		return 0, false
	}
	latency, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return latency, true
}
