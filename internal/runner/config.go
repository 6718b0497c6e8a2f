package runner

import (
	"fmt"
	"os"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/tidwall/gjson"
)

// loadConfigFrom reads a json config file. A value from the file is applied
// only where the option still holds its default, so command line flags win.
func (options *Options) loadConfigFrom(location string, defaults *Options) error {
	data, err := os.ReadFile(location)
	if err != nil {
		return err
	}
	return options.applyConfig(data, defaults)
}

func (options *Options) applyConfig(data []byte, defaults *Options) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("config is not valid json")
	}
	cfg := gjson.ParseBytes(data)

	setStrings(&options.Networks, cfg.Get("networks"))
	setStrings(&options.Include, cfg.Get("include"))
	setStrings(&options.Exclude, cfg.Get("exclude"))
	setBool(&options.PrivateOnly, cfg.Get("private_only"))
	setBool(&options.IncludeLoopback, cfg.Get("loopback"))

	setInt(&options.Port, defaults.Port, cfg.Get("port"))
	if err := setDuration(&options.Timeout, defaults.Timeout, cfg.Get("timeout")); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	setInt(&options.Concurrency, defaults.Concurrency, cfg.Get("concurrency"))
	if err := setDuration(&options.Deadline, 0, cfg.Get("deadline")); err != nil {
		return fmt.Errorf("deadline: %w", err)
	}
	setInt(&options.MaxCandidates, defaults.MaxCandidates, cfg.Get("max_candidates"))
	setBool(&options.Prioritize, cfg.Get("prioritize"))
	setInt(&options.SamplePercent, 0, cfg.Get("sample"))
	setBool(&options.IncludeSelf, cfg.Get("include_self"))
	setBool(&options.ARPHints, cfg.Get("arp_hints"))
	if err := setDuration(&options.Interval, 0, cfg.Get("interval")); err != nil {
		return fmt.Errorf("interval: %w", err)
	}

	setBool(&options.Listen, cfg.Get("listener.enabled"))
	setString(&options.ListenHost, cfg.Get("listener.host"))
	setInt(&options.ListenPort, 0, cfg.Get("listener.port"))
	setBool(&options.ReusePort, cfg.Get("listener.reuse_port"))
	setInt(&options.MaxConns, defaults.MaxConns, cfg.Get("listener.max_conns"))
	setBool(&options.Stay, cfg.Get("listener.stay"))

	setString(&options.Output, cfg.Get("output"))
	setBool(&options.JSON, cfg.Get("json"))
	setString(&options.Previous, cfg.Get("previous"))
	if options.NodeID == defaults.NodeID {
		setString(&options.NodeID, cfg.Get("node_id"))
	}
	return nil
}

func setString(dst *string, v gjson.Result) {
	if v.Exists() && *dst == "" {
		*dst = v.String()
	}
}

func setBool(dst *bool, v gjson.Result) {
	if v.Exists() && !*dst {
		*dst = v.Bool()
	}
}

func setInt(dst *int, def int, v gjson.Result) {
	if v.Exists() && *dst == def {
		*dst = int(v.Int())
	}
}

func setDuration(dst *time.Duration, def time.Duration, v gjson.Result) error {
	if !v.Exists() || *dst != def {
		return nil
	}
	if v.Type == gjson.Number {
		// bare numbers are seconds
		*dst = time.Duration(v.Float() * float64(time.Second))
		return nil
	}
	d, err := time.ParseDuration(v.String())
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setStrings(dst *goflags.StringSlice, v gjson.Result) {
	if !v.Exists() || len(*dst) > 0 {
		return
	}
	if !v.IsArray() {
		*dst = goflags.StringSlice{v.String()}
		return
	}
	var values goflags.StringSlice
	for _, item := range v.Array() {
		values = append(values, item.String())
	}
	*dst = values
}
