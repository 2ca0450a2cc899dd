package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/command"
	"github.com/projectdiscovery/netmon-agent/pkg/discovery"
	"github.com/projectdiscovery/netmon-agent/pkg/inventory"
	"github.com/projectdiscovery/netmon-agent/pkg/passive"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/netmon-agent/pkg/snmp"
	"github.com/projectdiscovery/netmon-agent/pkg/telemetry"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
	errorutil "github.com/projectdiscovery/utils/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrapeTimeout bounds one measurement made for a metrics scrape
const scrapeTimeout = 10 * time.Second

// Runner contains the internal logic of the program
type Runner struct {
	options      *Options
	coordinator  *discovery.Coordinator
	orchestrator *telemetry.Orchestrator
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	executor := command.New()

	reader := arp.NewReader(executor)
	reader.Timeout = options.NeighborTimeout

	sweeper := pingsweep.NewSweeper(pingsweep.NewProber(executor, options.ICMP), pingsweep.Options{
		Timeout:    options.SweepTimeout,
		MaxWorkers: options.SweepWorkers,
	})

	version, err := snmp.ParseVersion(options.SNMPVersion)
	if err != nil {
		return nil, err
	}
	client := snmp.NewClient(snmp.UDPDialer{}, snmp.Options{
		Timeout: options.SNMPTimeout,
		Retries: options.SNMPRetries,
		Version: version,
	})

	prober := passive.New(executor)
	prober.Timeout = options.PassiveTimeout

	return &Runner{
		options:      options,
		coordinator:  discovery.New(reader, sweeper),
		orchestrator: telemetry.New(client, prober),
	}, nil
}

// Run the instance
func (r *Runner) Run(ctx context.Context) error {
	if r.options.Discover {
		if err := r.runDiscovery(ctx); err != nil {
			return err
		}
	}

	if !r.options.Metrics && r.options.Listen == "" {
		return nil
	}

	target, err := r.options.Target()
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not build monitoring target")
	}

	if r.options.Metrics {
		if err := r.runMetrics(ctx, target); err != nil {
			return err
		}
	}

	if r.options.Listen != "" {
		return r.serveMetrics(ctx, target)
	}
	return nil
}

// Close the runner instance
func (r *Runner) Close() {}

func (r *Runner) requests(ctx context.Context) ([]discovery.Request, error) {
	if !r.options.AutoSubnet {
		return []discovery.Request{{
			RouterIP:   r.options.RouterIP,
			SubnetCIDR: r.options.Subnet,
			Mode:       r.options.Mode,
		}}, nil
	}

	networks, err := common.GetLocalNetworks24(ctx)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not list local networks")
	}
	if len(networks) == 0 {
		return nil, errors.New("no private IPv4 network found on the local interfaces")
	}

	requests := make([]discovery.Request, 0, len(networks))
	for _, network := range networks {
		requests = append(requests, discovery.Request{SubnetCIDR: network.String(), Mode: r.options.Mode})
	}
	return requests, nil
}

func (r *Runner) runDiscovery(ctx context.Context) error {
	requests, err := r.requests(ctx)
	if err != nil {
		return err
	}

	var devices []types.DiscoveredDevice
	for _, req := range requests {
		found, err := r.coordinator.Discover(ctx, req)
		if err != nil {
			return errorutil.NewWithErr(err).Msgf("discovery of %s%s failed", req.SubnetCIDR, req.RouterIP)
		}
		devices = append(devices, found...)
	}
	gologger.Info().Msgf("Discovered %s devices", humanize.Comma(int64(len(devices))))

	if r.options.InventoryFile != "" {
		if err := r.updateInventory(devices); err != nil {
			return err
		}
	}

	if devices == nil {
		devices = []types.DiscoveredDevice{}
	}
	data, err := json.Marshal(devices)
	if err != nil {
		return err
	}
	return r.write(data)
}

func (r *Runner) updateInventory(devices []types.DiscoveredDevice) error {
	inv, err := inventory.Load(r.options.InventoryFile)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not load inventory %s", r.options.InventoryFile)
	}

	result := inv.Upsert(devices)
	for _, skipped := range result.Skipped {
		gologger.Warning().Msgf("Skipping %s (%s): address and hardware address belong to different devices", skipped.IP, skipped.MAC)
	}
	gologger.Info().Msgf("Inventory: %s new, %s updated, %s skipped",
		humanize.Comma(int64(len(result.Created))),
		humanize.Comma(int64(len(result.Updated))),
		humanize.Comma(int64(len(result.Skipped))))

	if err := inv.Save(r.options.InventoryFile); err != nil {
		return errorutil.NewWithErr(err).Msgf("could not save inventory %s", r.options.InventoryFile)
	}
	return nil
}

func (r *Runner) runMetrics(ctx context.Context, target *types.MonitoringTarget) error {
	metrics := r.orchestrator.GetMetrics(ctx, target)
	if metrics.Protocol != nil {
		gologger.Info().Msgf("Collected %s telemetry from %s (%d interfaces, %s in, %s out)",
			metrics.Mode, target.Address, len(metrics.Protocol.Interfaces),
			humanize.Bytes(metrics.Protocol.TotalInOctets), humanize.Bytes(metrics.Protocol.TotalOutOctets))
	} else {
		gologger.Info().Msgf("Collected %s telemetry from %s (%s)", metrics.Mode, target.Address, metrics.Passive.Reason)
	}

	switch r.options.Output {
	case OutputProm:
		var buf bytes.Buffer
		if err := telemetry.WriteText(&buf, telemetry.NewCollector(metrics)); err != nil {
			return err
		}
		return r.write(buf.Bytes())
	default:
		data, err := json.Marshal(metrics)
		if err != nil {
			return err
		}
		return r.write(data)
	}
}

func (r *Runner) serveMetrics(ctx context.Context, target *types.MonitoringTarget) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(telemetry.NewLiveCollector(r.orchestrator, target, scrapeTimeout))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              r.options.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	gologger.Info().Msgf("Serving metrics for %s on http://%s/metrics", target.Address, r.options.Listen)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errorutil.NewWithErr(err).Msgf("metrics server failed")
	}
	return nil
}

// write prints data to stdout or appends it to the output file
func (r *Runner) write(data []byte) error {
	if r.options.OutputFile == "" {
		gologger.Silent().Msgf("%s", bytes.TrimRight(data, "\n"))
		return nil
	}

	file, err := os.OpenFile(r.options.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := file.Write(append(bytes.TrimRight(data, "\n"), '\n')); err != nil {
		return err
	}
	return nil
}
