package scanlog

import (
	"time"

	"github.com/rs/xid"
)

// ScanContext contains metadata about the scan execution
type ScanContext struct {
	ScanID    string
	NodeID    string
	Port      int
	StartTime time.Time
}

// NewScanContext creates a scan context with a fresh scan id. An empty
// nodeID is replaced by a generated one.
func NewScanContext(nodeID string, port int) *ScanContext {
	if nodeID == "" {
		nodeID = xid.New().String()
	}
	return &ScanContext{
		ScanID:    xid.New().String(),
		NodeID:    nodeID,
		Port:      port,
		StartTime: time.Now(),
	}
}
