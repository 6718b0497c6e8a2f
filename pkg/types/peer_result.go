package types

import (
	"fmt"
	"time"
)

// PeerResult is a single discovered peer as written to the scan report
type PeerResult struct {
	// Required fields
	ScanID    string `json:"scan_id"`
	NodeID    string `json:"node_id"`
	Peer      string `json:"peer"` // address with prefix length, e.g. 192.168.1.2/24
	IP        string `json:"ip"`
	Port      int    `json:"port"`
	Timestamp string `json:"timestamp"` // RFC3339 format date-time

	// Optional fields
	Interface *string `json:"interface,omitempty"` // local interface address the peer was found from
	Error     *string `json:"error,omitempty"`
}

// Validate checks if the result has all required fields populated
func (r *PeerResult) Validate() error {
	if r.ScanID == "" {
		return &ValidationError{Field: "scan_id", Message: "scan_id is required"}
	}
	if r.Peer == "" {
		return &ValidationError{Field: "peer", Message: "peer is required"}
	}
	if r.IP == "" {
		return &ValidationError{Field: "ip", Message: "ip is required"}
	}
	if r.Port < 1 || r.Port > 65535 {
		return &ValidationError{Field: "port", Message: fmt.Sprintf("port %d out of range", r.Port)}
	}
	if r.Timestamp == "" {
		return &ValidationError{Field: "timestamp", Message: "timestamp is required"}
	}
	return nil
}

// SetTimestamp sets the timestamp from a time.Time value
func (r *PeerResult) SetTimestamp(t time.Time) {
	r.Timestamp = t.Format(time.RFC3339)
}

// SetInterface records the local interface address used for the scan
func (r *PeerResult) SetInterface(iface string) {
	r.Interface = &iface
}

// SetError sets the error field
func (r *PeerResult) SetError(err string) {
	r.Error = &err
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
