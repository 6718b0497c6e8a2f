package scanlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/projectdiscovery/peerscan/pkg/types"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// ParseReport reads a JSON lines report. Lines that are not valid results
// are skipped.
func ParseReport(r io.Reader) ([]types.PeerResult, error) {
	var results []types.PeerResult
	scanner := bufio.NewScanner(r)

	const maxCapacityStr = "1MB"
	maxCapacity, err := humanize.ParseBytes(maxCapacityStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse buffer size %s: %w", maxCapacityStr, err)
	}
	scanner.Buffer(make([]byte, 0, 64*1024), int(maxCapacity))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var result types.PeerResult
		if err := json.Unmarshal([]byte(line), &result); err != nil {
			continue
		}
		if err := result.Validate(); err != nil {
			continue
		}
		results = append(results, result)
	}

	if err := scanner.Err(); err != nil {
		return results, fmt.Errorf("error scanning report: %w", err)
	}
	return results, nil
}

// ParseReportFile reads a report written by a previous run. A missing file
// yields no results and no error.
func ParseReportFile(path string) ([]types.PeerResult, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening report %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseReport(f)
}

// Diff compares the peer IPs of two passes. added holds IPs present only in
// current and removed those present only in previous.
func Diff(previous, current []types.PeerResult) (added, removed []string) {
	prev := make(map[string]struct{}, len(previous))
	for _, r := range previous {
		prev[r.IP] = struct{}{}
	}
	cur := make(map[string]struct{}, len(current))
	for _, r := range current {
		cur[r.IP] = struct{}{}
		if _, ok := prev[r.IP]; !ok {
			added = append(added, r.IP)
		}
	}
	for _, r := range previous {
		if _, ok := cur[r.IP]; !ok {
			removed = append(removed, r.IP)
		}
	}
	return sliceutil.Dedupe(added), sliceutil.Dedupe(removed)
}
