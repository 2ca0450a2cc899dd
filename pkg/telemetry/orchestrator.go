// Package telemetry decides how a monitoring target is measured and always
// produces a result: protocol telemetry when it is configured and works,
// a passive reachability probe otherwise.
package telemetry

import (
	"context"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
	"github.com/rs/xid"
)

// ProtocolClient collects a snapshot over the monitoring protocol
type ProtocolClient interface {
	Collect(ctx context.Context, address, community string, port int) (*types.ProtocolSnapshot, error)
}

// PassiveProber runs a single reachability probe. It never fails.
type PassiveProber interface {
	Probe(ctx context.Context, address, reason string) *types.PassiveResult
}

// Orchestrator combines the protocol client and the passive prober
type Orchestrator struct {
	protocol ProtocolClient
	passive  PassiveProber
}

// New returns an orchestrator
func New(protocol ProtocolClient, passive PassiveProber) *Orchestrator {
	return &Orchestrator{protocol: protocol, passive: passive}
}

// GetMetrics measures target once.
//
// With protocol monitoring enabled and a community configured the protocol
// snapshot is returned, cross-checked by a passive probe. A failed protocol
// collection degrades to a passive result carrying the error text. Without
// protocol monitoring the passive result is returned directly.
func (o *Orchestrator) GetMetrics(ctx context.Context, target *types.MonitoringTarget) *types.Metrics {
	metrics := o.measure(ctx, target)
	metrics.RunID = xid.New().String()
	return metrics
}

func (o *Orchestrator) measure(ctx context.Context, target *types.MonitoringTarget) *types.Metrics {
	address := target.Address

	if !target.ProtocolEnabled || !target.HasCommunity() || o.protocol == nil {
		return types.NewPassiveMetrics(address, o.passive.Probe(ctx, address, types.ReasonProtocolDisabled))
	}

	snapshot, err := o.protocol.Collect(ctx, address, *target.Community, target.SNMPPort())
	if err != nil {
		gologger.Warning().Msgf("protocol telemetry for %s failed, falling back to passive probe: %s", address, err)

		result := o.passive.Probe(ctx, address, types.ReasonProtocolError)
		result.SetError(err.Error())
		return types.NewPassiveMetrics(address, result)
	}

	snapshot.MergeLiveness(o.passive.Probe(ctx, address, types.ReasonProtocolEnabled))
	return types.NewProtocolMetrics(address, snapshot)
}
