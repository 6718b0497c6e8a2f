// Package probe implements the TCP liveness probe used by peer discovery:
// a connect with a bounded timeout, closed as soon as it is established.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
)

// DefaultTimeout bounds a single connection attempt.
const DefaultTimeout = time.Second

// ErrInvalidPort is returned for ports outside [1,65535].
var ErrInvalidPort = errors.New("invalid port")

// Prober reports whether target accepts TCP connections on port.
// Network failures are a negative result, not an error; only invalid
// arguments produce an error.
type Prober interface {
	Attempt(ctx context.Context, target address.IPv4, port int) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, target address.IPv4, port int) (bool, error)

func (f ProberFunc) Attempt(ctx context.Context, target address.IPv4, port int) (bool, error) {
	return f(ctx, target, port)
}

// TCPProber dials targets with a per-attempt timeout.
type TCPProber struct {
	Timeout time.Duration
	dialer  *net.Dialer
}

// NewTCPProber returns a prober using timeout, or DefaultTimeout when
// timeout is not positive.
func NewTCPProber(timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCPProber{
		Timeout: timeout,
		dialer:  &net.Dialer{Timeout: timeout},
	}
}

// Attempt opens a TCP connection to target:port and closes it right away.
func (p *TCPProber) Attempt(ctx context.Context, target address.IPv4, port int) (bool, error) {
	if err := ValidatePort(port); err != nil {
		return false, err
	}
	dialer := p.dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: DefaultTimeout}
	}

	ctx, cancel := context.WithTimeout(ctx, dialer.Timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", target.HostPort(port))
	if err != nil {
		return false, nil
	}
	_ = conn.Close()
	return true, nil
}

// Attempt probes target once with the given timeout.
func Attempt(ctx context.Context, target address.IPv4, port int, timeout time.Duration) (bool, error) {
	return NewTCPProber(timeout).Attempt(ctx, target, port)
}

// ValidatePort checks that port is a usable TCP port.
func ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return nil
}
