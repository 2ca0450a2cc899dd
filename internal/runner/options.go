package runner

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/netmon-agent/pkg/discovery"
	"github.com/projectdiscovery/netmon-agent/pkg/passive"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/netmon-agent/pkg/snmp"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
	"github.com/projectdiscovery/netmon-agent/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"
)

var (
	RouterIPEnv      = envutil.GetEnvOrDefault("NETMON_ROUTER_IP", "")
	SubnetEnv        = envutil.GetEnvOrDefault("NETMON_SUBNET", "")
	DiscoveryModeEnv = envutil.GetEnvOrDefault("NETMON_DISCOVERY_MODE", string(discovery.ModePingSweep))
	CommunityEnv     = envutil.GetEnvOrDefault("NETMON_SNMP_COMMUNITY", "")
	VerboseEnv       = envutil.GetEnvOrDefault("NETMON_VERBOSE", "")
)

// Output formats
const (
	OutputJSON = "json"
	OutputProm = "prom"
)

// Options contains the configuration options for a run
type Options struct {
	// discovery
	Discover        bool
	RouterIP        string
	Subnet          string
	Mode            string
	AutoSubnet      bool
	ICMP            bool
	SweepTimeout    time.Duration
	SweepWorkers    int
	NeighborTimeout time.Duration
	InventoryFile   string

	// telemetry
	Metrics        bool
	TargetConfig   string
	TargetJSON     string
	SNMP           bool
	Community      string
	SNMPPort       int
	SNMPVersion    string
	SNMPTimeout    time.Duration
	SNMPRetries    int
	PassiveTimeout time.Duration
	Listen         string

	// output
	Output     string
	OutputFile string

	Verbose bool
	Debug   bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`netmon-agent discovers the devices of a local network and collects router telemetry over SNMP, falling back to ping`)

	flagSet.CreateGroup("discovery", "Discovery",
		flagSet.BoolVarP(&options.Discover, "discover", "d", false, "discover devices of the local network"),
		flagSet.StringVarP(&options.RouterIP, "router-ip", "r", RouterIPEnv, "router address, the /24 around it is discovered"),
		flagSet.StringVarP(&options.Subnet, "subnet", "s", SubnetEnv, "subnet to discover in CIDR notation (overrides -router-ip)"),
		flagSet.StringVarP(&options.Mode, "mode", "m", DiscoveryModeEnv, "discovery mode (arp_only, ping_sweep)"),
		flagSet.BoolVarP(&options.AutoSubnet, "auto-subnet", "as", false, "discover the private /24 networks of the local interfaces"),
		flagSet.BoolVar(&options.ICMP, "icmp", false, "sweep with raw ICMP sockets when privileged"),
		flagSet.DurationVarP(&options.SweepTimeout, "sweep-timeout", "st", pingsweep.DefaultTimeout, "reply wait of each sweep probe"),
		flagSet.IntVarP(&options.SweepWorkers, "sweep-workers", "sw", pingsweep.DefaultMaxWorkers, "maximum concurrent sweep probes"),
		flagSet.DurationVarP(&options.NeighborTimeout, "neighbor-timeout", "nt", arp.DefaultTimeout, "neighbor table query timeout"),
		flagSet.StringVarP(&options.InventoryFile, "inventory", "inv", "", "merge discovered devices into this inventory file"),
	)

	flagSet.CreateGroup("telemetry", "Telemetry",
		flagSet.BoolVarP(&options.Metrics, "metrics", "M", false, "collect telemetry from the router"),
		flagSet.StringVarP(&options.TargetConfig, "target-config", "tc", "", "router configuration file (yaml)"),
		flagSet.StringVarP(&options.TargetJSON, "target-json", "tj", "", "router configuration record (json file)"),
		flagSet.BoolVar(&options.SNMP, "snmp", false, "enable snmp telemetry"),
		flagSet.StringVarP(&options.Community, "community", "c", CommunityEnv, "snmp community"),
		flagSet.IntVarP(&options.SNMPPort, "snmp-port", "sp", 0, "snmp port (default 161)"),
		flagSet.StringVarP(&options.SNMPVersion, "snmp-version", "sv", string(snmp.Version2c), "snmp version (v1, v2c)"),
		flagSet.DurationVar(&options.SNMPTimeout, "snmp-timeout", snmp.DefaultTimeout, "timeout of each snmp request"),
		flagSet.IntVar(&options.SNMPRetries, "snmp-retries", snmp.DefaultRetries, "retries of each snmp request"),
		flagSet.DurationVarP(&options.PassiveTimeout, "passive-timeout", "pt", passive.DefaultTimeout, "reply wait of the passive probe"),
		flagSet.StringVarP(&options.Listen, "listen", "l", "", "serve prometheus metrics on this address, measuring on every scrape"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output-format", "of", OutputJSON, "output format (json, prom)"),
		flagSet.StringVarP(&options.OutputFile, "output", "o", "", "file to write output to"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show debug output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	if enabled, err := strconv.ParseBool(VerboseEnv); err == nil && enabled {
		options.Verbose = true
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) validate() error {
	if !options.Discover && !options.Metrics && options.Listen == "" {
		return errors.New("nothing to do, use -discover, -metrics or -listen")
	}
	switch options.Output {
	case OutputJSON, OutputProm:
	default:
		return errors.New("output format must be json or prom")
	}
	if options.Discover {
		if _, err := discovery.ParseMode(options.Mode); err != nil {
			return err
		}
	}
	if _, err := snmp.ParseVersion(options.SNMPVersion); err != nil {
		return err
	}
	return nil
}

// Target builds the monitoring target: the configuration file first, then
// the command line values that were set.
func (options *Options) Target() (*types.MonitoringTarget, error) {
	target := &types.MonitoringTarget{AccessMode: types.DefaultAccessMode}

	switch {
	case options.TargetConfig != "":
		if err := fileutil.Unmarshal(fileutil.YAML, []byte(options.TargetConfig), target); err != nil {
			return nil, err
		}
	case options.TargetJSON != "":
		data, err := os.ReadFile(options.TargetJSON)
		if err != nil {
			return nil, err
		}
		if target, err = types.ParseTargetJSON(data); err != nil {
			return nil, err
		}
	}

	if options.RouterIP != "" {
		target.Address = strings.TrimSpace(options.RouterIP)
	}
	if options.SNMP {
		target.ProtocolEnabled = true
	}
	if options.Community != "" {
		target.SetCommunity(options.Community)
	}
	if options.SNMPPort != 0 {
		target.SetPort(options.SNMPPort)
	}
	if target.AccessMode == "" {
		target.AccessMode = types.DefaultAccessMode
	}

	if err := target.Validate(); err != nil {
		return nil, err
	}
	return target, nil
}
