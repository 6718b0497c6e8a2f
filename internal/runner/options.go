package runner

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/probe"
	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/tcpsweep"
	"github.com/projectdiscovery/peerscan/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"
)

var au = aurora.New(aurora.WithColors(true))

const DefaultPort = 7946

var (
	PortEnv        = envutil.GetEnvOrDefault("PEERSCAN_PORT", strconv.Itoa(DefaultPort))
	TimeoutEnv     = envutil.GetEnvOrDefault("PEERSCAN_TIMEOUT", probe.DefaultTimeout.String())
	ConcurrencyEnv = envutil.GetEnvOrDefault("PEERSCAN_CONCURRENCY", strconv.Itoa(tcpsweep.DefaultConcurrency))
	NodeIDEnv      = envutil.GetEnvOrDefault("PEERSCAN_NODE_ID", "")
)

// Options contains the configuration options for a discovery run.
type Options struct {
	ConfigFile string

	// input
	Networks        goflags.StringSlice
	Include         goflags.StringSlice
	Exclude         goflags.StringSlice
	PrivateOnly     bool
	IncludeLoopback bool

	// scan
	Port          int
	Timeout       time.Duration
	Concurrency   int
	Deadline      time.Duration
	MaxCandidates int
	Prioritize    bool
	SamplePercent int
	IncludeSelf   bool
	ARPHints      bool
	Interval      time.Duration

	// listener
	Listen     bool
	ListenHost string
	ListenPort int
	ReusePort  bool
	MaxConns   int
	Stay       bool

	// output
	Output   string
	JSON     bool
	Previous string
	NodeID   string

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// defaultOptions returns the values the flags start from. The config file
// only overrides fields still holding these values.
func defaultOptions() *Options {
	return &Options{
		Port:          envInt(PortEnv, DefaultPort),
		Timeout:       envDuration(TimeoutEnv, probe.DefaultTimeout),
		Concurrency:   envInt(ConcurrencyEnv, tcpsweep.DefaultConcurrency),
		MaxCandidates: tcpsweep.DefaultMaxCandidates,
		MaxConns:      64,
		NodeID:        NodeIDEnv,
	}
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	defaults := defaultOptions()
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`peerscan finds peer nodes on the local IPv4 subnets by probing a TCP port`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringSliceVarP(&options.Networks, "networks", "n", nil, "interface addresses to scan from in cidr notation instead of the host interfaces (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringSliceVarP(&options.Include, "include", "in", nil, "only use interface addresses inside these prefixes (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringSliceVarP(&options.Exclude, "exclude", "ex", nil, "skip interface addresses inside these prefixes (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.BoolVarP(&options.PrivateOnly, "private-only", "po", false, "only use private (rfc1918) interface addresses"),
		flagSet.BoolVarP(&options.IncludeLoopback, "loopback", "lo", false, "include loopback interfaces"),
	)

	flagSet.CreateGroup("scan", "Scan",
		flagSet.IntVarP(&options.Port, "port", "p", defaults.Port, "port peers listen on"),
		flagSet.DurationVarP(&options.Timeout, "timeout", "t", defaults.Timeout, "timeout of a single connection attempt"),
		flagSet.IntVarP(&options.Concurrency, "concurrency", "c", defaults.Concurrency, "number of concurrent probes"),
		flagSet.DurationVarP(&options.Deadline, "deadline", "d", 0, "maximum duration of a scan pass (0 = none)"),
		flagSet.IntVarP(&options.MaxCandidates, "max-candidates", "mc", defaults.MaxCandidates, "maximum number of addresses probed in a pass"),
		flagSet.BoolVarP(&options.Prioritize, "prioritize", "pr", false, "probe likely hosts (gateways, early dhcp leases) first"),
		flagSet.IntVarP(&options.SamplePercent, "sample", "sp", 0, "only probe this percentage of each subnet, most likely hosts first (0 = all)"),
		flagSet.BoolVarP(&options.IncludeSelf, "include-self", "is", false, "also probe the local interface addresses"),
		flagSet.BoolVarP(&options.ARPHints, "arp-hints", "ah", false, "probe hosts from the local arp cache first"),
		flagSet.DurationVarP(&options.Interval, "interval", "i", 0, "repeat the scan at this interval until interrupted"),
	)

	flagSet.CreateGroup("listener", "Listener",
		flagSet.BoolVarP(&options.Listen, "listen", "l", false, "accept probes from other peers while scanning"),
		flagSet.StringVarP(&options.ListenHost, "listen-host", "lh", "", "host to bind the listener to"),
		flagSet.IntVarP(&options.ListenPort, "listen-port", "lp", 0, "port to bind the listener to (default: scan port)"),
		flagSet.BoolVarP(&options.ReusePort, "reuse-port", "rp", false, "set SO_REUSEPORT on the listener"),
		flagSet.IntVarP(&options.MaxConns, "max-conns", "mx", defaults.MaxConns, "maximum connections handled by the listener at once"),
		flagSet.BoolVarP(&options.Stay, "stay", "s", false, "keep the listener running after the scan until interrupted"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to write peers to as json lines"),
		flagSet.BoolVarP(&options.JSON, "json", "j", false, "write peers to stdout as json lines"),
		flagSet.StringVarP(&options.Previous, "previous", "pv", "", "report of an earlier run to compare against"),
		flagSet.StringVar(&options.NodeID, "node-id", defaults.NodeID, "id of this node in reports (default: random)"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "json configuration file"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only peers in output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if options.ConfigFile != "" {
		if err := options.loadConfigFrom(options.ConfigFile, defaults); err != nil {
			gologger.Fatal().Msgf("Could not read config file: %s\n", err)
		}
	}

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) validate() error {
	if err := probe.ValidatePort(options.Port); err != nil {
		return err
	}
	if options.ListenPort != 0 {
		if err := probe.ValidatePort(options.ListenPort); err != nil {
			return fmt.Errorf("listener: %w", err)
		}
	}
	if options.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", options.Timeout)
	}
	if options.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", options.Concurrency)
	}
	if options.MaxCandidates <= 0 {
		return fmt.Errorf("max-candidates must be positive, got %d", options.MaxCandidates)
	}
	if options.SamplePercent < 0 || options.SamplePercent > 100 {
		return fmt.Errorf("sample must be within 0 and 100, got %d", options.SamplePercent)
	}
	if options.Stay && !options.Listen {
		return fmt.Errorf("stay requires the listener to be enabled")
	}
	if options.Output != "" && fileutil.FolderExists(options.Output) {
		return fmt.Errorf("output %s is a directory", options.Output)
	}
	return nil
}

func envInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envDuration(value string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(value); err == nil && v > 0 {
		return v
	}
	return fallback
}
