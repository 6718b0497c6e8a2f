package scanlog

import (
	"fmt"
	"time"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
	"github.com/projectdiscovery/peerscan/pkg/types"
)

// BuildPeerResult converts a discovered peer into a report entry
func BuildPeerResult(peer address.IPv4, scanContext *ScanContext) (*types.PeerResult, error) {
	if scanContext == nil {
		return nil, fmt.Errorf("scan context is required")
	}

	result := &types.PeerResult{
		ScanID: scanContext.ScanID,
		NodeID: scanContext.NodeID,
		Peer:   peer.String(),
		IP:     peer.Addr().String(),
		Port:   scanContext.Port,
	}
	result.SetTimestamp(time.Now())

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid peer result: %w", err)
	}
	return result, nil
}
