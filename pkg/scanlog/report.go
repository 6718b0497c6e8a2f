package scanlog

import (
	"encoding/json"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
	"github.com/projectdiscovery/peerscan/pkg/types"
)

// Report collects the results of one scan pass.
type Report struct {
	mu      sync.Mutex
	context *ScanContext
	results []types.PeerResult
}

func NewReport(scanContext *ScanContext) *Report {
	return &Report{context: scanContext}
}

// Context returns the scan context the report was created with.
func (r *Report) Context() *ScanContext { return r.context }

// Add records a discovered peer and returns the stored entry.
func (r *Report) Add(peer address.IPv4) (types.PeerResult, error) {
	result, err := BuildPeerResult(peer, r.context)
	if err != nil {
		return types.PeerResult{}, err
	}
	r.mu.Lock()
	r.results = append(r.results, *result)
	r.mu.Unlock()
	return *result, nil
}

func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// Results returns a copy of the entries ordered by peer address.
func (r *Report) Results() []types.PeerResult {
	r.mu.Lock()
	out := slices.Clone(r.results)
	r.mu.Unlock()
	slices.SortFunc(out, compareResults)
	return out
}

// WriteTo writes the entries as JSON lines.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	enc := json.NewEncoder(cw)
	for _, result := range r.Results() {
		if err := enc.Encode(result); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

func compareResults(a, b types.PeerResult) int {
	pa, errA := address.ParseCIDR(a.Peer)
	pb, errB := address.ParseCIDR(b.Peer)
	if errA != nil || errB != nil {
		return strings.Compare(a.Peer, b.Peer)
	}
	if c := pa.Compare(pb); c != 0 {
		return c
	}
	return strings.Compare(a.Peer, b.Peer)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
