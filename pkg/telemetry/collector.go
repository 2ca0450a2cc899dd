package telemetry

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "netmon"

// Source yields one telemetry result per call
type Source func(ctx context.Context) *types.Metrics

// Collector exposes telemetry results as Prometheus metrics
type Collector struct {
	source  Source
	timeout time.Duration

	reachable     *prometheus.Desc
	latency       *prometheus.Desc
	protocolMode  *prometheus.Desc
	uptime        *prometheus.Desc
	limited       *prometheus.Desc
	interfacesUp  *prometheus.Desc
	ifUp          *prometheus.Desc
	ifInOctets    *prometheus.Desc
	ifOutOctets   *prometheus.Desc
	totalInOctets *prometheus.Desc
	totalOutOctet *prometheus.Desc
}

// NewCollector exposes a fixed result
func NewCollector(metrics *types.Metrics) *Collector {
	return newCollector(func(context.Context) *types.Metrics { return metrics }, 0)
}

// NewLiveCollector measures target on every scrape, bounded by timeout
func NewLiveCollector(orchestrator *Orchestrator, target *types.MonitoringTarget, timeout time.Duration) *Collector {
	return newCollector(func(ctx context.Context) *types.Metrics {
		return orchestrator.GetMetrics(ctx, target)
	}, timeout)
}

func newCollector(source Source, timeout time.Duration) *Collector {
	targetLabels := []string{"target"}
	ifLabels := []string{"target", "index", "interface"}

	return &Collector{
		source:  source,
		timeout: timeout,

		reachable:     prometheus.NewDesc(namespace+"_reachable", "Whether the target answered the passive probe", targetLabels, nil),
		latency:       prometheus.NewDesc(namespace+"_latency_milliseconds", "Echo round trip time of the passive probe", targetLabels, nil),
		protocolMode:  prometheus.NewDesc(namespace+"_protocol_mode", "Whether telemetry came from the monitoring protocol (1) or a passive probe (0)", []string{"target", "reason"}, nil),
		uptime:        prometheus.NewDesc(namespace+"_uptime_seconds", "Target system uptime", targetLabels, nil),
		limited:       prometheus.NewDesc(namespace+"_limited", "Whether the target exposes no interface table", targetLabels, nil),
		interfacesUp:  prometheus.NewDesc(namespace+"_interfaces_up", "Number of interfaces with operational status up", targetLabels, nil),
		ifUp:          prometheus.NewDesc(namespace+"_interface_up", "Whether the interface operational status is up", ifLabels, nil),
		ifInOctets:    prometheus.NewDesc(namespace+"_interface_in_octets_total", "Octets received on the interface", append(ifLabels, "bits"), nil),
		ifOutOctets:   prometheus.NewDesc(namespace+"_interface_out_octets_total", "Octets sent on the interface", append(ifLabels, "bits"), nil),
		totalInOctets: prometheus.NewDesc(namespace+"_in_octets_total", "Octets received across all interfaces", targetLabels, nil),
		totalOutOctet: prometheus.NewDesc(namespace+"_out_octets_total", "Octets sent across all interfaces", targetLabels, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.reachable
	ch <- c.latency
	ch <- c.protocolMode
	ch <- c.uptime
	ch <- c.limited
	ch <- c.interfacesUp
	ch <- c.ifUp
	ch <- c.ifInOctets
	ch <- c.ifOutOctets
	ch <- c.totalInOctets
	ch <- c.totalOutOctet
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	metrics := c.source(ctx)
	if metrics == nil {
		return
	}
	target := labelValue(metrics.Target)

	switch metrics.Mode {
	case types.ModeProtocol:
		snap := metrics.Protocol
		c.send(ch, c.protocolMode, prometheus.GaugeValue, 1, target, types.ReasonProtocolEnabled)
		if snap.Reachable != nil {
			c.send(ch, c.reachable, prometheus.GaugeValue, boolValue(*snap.Reachable), target)
		}
		if snap.LatencyMs != nil {
			c.send(ch, c.latency, prometheus.GaugeValue, *snap.LatencyMs, target)
		}
		c.send(ch, c.uptime, prometheus.GaugeValue, float64(snap.UptimeSeconds), target)
		c.send(ch, c.limited, prometheus.GaugeValue, boolValue(snap.Limited), target)
		c.send(ch, c.interfacesUp, prometheus.GaugeValue, float64(snap.InterfacesUp), target)
		c.send(ch, c.totalInOctets, prometheus.CounterValue, float64(snap.TotalInOctets), target)
		c.send(ch, c.totalOutOctet, prometheus.CounterValue, float64(snap.TotalOutOctets), target)

		for _, stat := range snap.Interfaces {
			index := labelValue(string(stat.Index))
			name := labelValue(stat.Name)
			c.send(ch, c.ifUp, prometheus.GaugeValue, boolValue(stat.Status == types.StatusUp), target, index, name)
			bits := counterBitsLabel(stat.CounterBits)
			if stat.InOctets != nil {
				c.send(ch, c.ifInOctets, prometheus.CounterValue, float64(*stat.InOctets), target, index, name, bits)
			}
			if stat.OutOctets != nil {
				c.send(ch, c.ifOutOctets, prometheus.CounterValue, float64(*stat.OutOctets), target, index, name, bits)
			}
		}
	case types.ModePassive:
		result := metrics.Passive
		c.send(ch, c.protocolMode, prometheus.GaugeValue, 0, target, result.Reason)
		c.send(ch, c.reachable, prometheus.GaugeValue, boolValue(result.Reachable), target)
		if result.LatencyMs != nil {
			c.send(ch, c.latency, prometheus.GaugeValue, *result.LatencyMs, target)
		}
	}
}

// send emits one series. A series whose labels are rejected is dropped so a
// single bad value cannot fail the whole scrape.
func (c *Collector) send(ch chan<- prometheus.Metric, desc *prometheus.Desc, valueType prometheus.ValueType, value float64, labels ...string) {
	metric, err := prometheus.NewConstMetric(desc, valueType, value, labels...)
	if err != nil {
		gologger.Debug().Msgf("dropping series %s: %s", desc, err)
		return
	}
	ch <- metric
}

// labelValue replaces byte sequences that are not valid UTF-8
func labelValue(value string) string {
	return strings.ToValidUTF8(value, "\uFFFD")
}

// WriteText gathers collector and writes the text exposition format to w
func WriteText(w io.Writer, collector prometheus.Collector) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return err
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func counterBitsLabel(bits int) string {
	if bits == 64 {
		return "64"
	}
	return "32"
}
