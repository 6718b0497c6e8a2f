// Package beacon implements the passive side of peer discovery: a TCP
// listener that accepts and immediately closes every connection, so that
// probing peers can find this node. No payload is exchanged.
package beacon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/gologger"
	"golang.org/x/net/netutil"
)

const (
	DefaultMaxConns     = 64
	DefaultAnnouncers   = 1024
	DefaultAnnouncerTTL = time.Hour
)

// Options configures a Beacon.
type Options struct {
	// Host to bind, empty for all interfaces.
	Host string
	// Port to bind, 0 picks a free port.
	Port int
	// MaxConns caps connections being handled at once.
	MaxConns int
	// ReusePort sets SO_REUSEPORT so several nodes on one host can share
	// the port. Only supported on unix systems.
	ReusePort bool
	// Announcers is the number of recent probing peers remembered.
	Announcers int
	// AnnouncerTTL is how long a probing peer is remembered.
	AnnouncerTTL time.Duration
	Logger       *gologger.Logger

	// handleHook runs before an accepted connection is closed.
	handleHook func()
}

// Announcer is a remote host that connected to the beacon.
type Announcer struct {
	IP       string
	LastSeen time.Time
}

// Beacon is a running presence listener.
type Beacon struct {
	listener   net.Listener
	announcers gcache.Cache[string, time.Time]
	logger     *gologger.Logger
	handleHook func()

	handlers  sync.WaitGroup
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Listen opens the beacon and serves it in the background until ctx is
// cancelled or Close is called.
func Listen(ctx context.Context, options Options) (*Beacon, error) {
	if options.Port < 0 || options.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", options.Port)
	}
	if options.MaxConns <= 0 {
		options.MaxConns = DefaultMaxConns
	}
	if options.Announcers <= 0 {
		options.Announcers = DefaultAnnouncers
	}
	if options.AnnouncerTTL <= 0 {
		options.AnnouncerTTL = DefaultAnnouncerTTL
	}
	logger := options.Logger
	if logger == nil {
		logger = gologger.DefaultLogger
	}

	lc := net.ListenConfig{}
	if options.ReusePort {
		lc.Control = reusePortControl
	}
	addr := net.JoinHostPort(options.Host, strconv.Itoa(options.Port))
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	b := &Beacon{
		listener: netutil.LimitListener(ln, options.MaxConns),
		announcers: gcache.New[string, time.Time](options.Announcers).
			LRU().
			Expiration(options.AnnouncerTTL).
			Build(),
		logger:     logger,
		handleHook: options.handleHook,
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	go b.serve()
	go func() {
		select {
		case <-ctx.Done():
			_ = b.Close()
		case <-b.done:
		}
	}()

	logger.Verbose().Msgf("beacon listening on %s", ln.Addr())
	return b, nil
}

func (b *Beacon) serve() {
	defer close(b.stopped)
	defer b.handlers.Wait()

	var backoff time.Duration
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			select {
			case <-b.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// transient accept failure such as EMFILE
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff < time.Second {
				backoff *= 2
			}
			b.logger.Warning().Msgf("beacon accept failed, retrying in %v: %v", backoff, err)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		// the limit listener only frees a slot once conn is closed
		b.handlers.Add(1)
		go func() {
			defer b.handlers.Done()
			b.handle(conn)
		}()
	}
}

func (b *Beacon) handle(conn net.Conn) {
	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		ip := tcpAddr.IP.String()
		_ = b.announcers.Set(ip, time.Now())
		b.logger.Debug().Msgf("presence probe from %s", ip)
	}
	if b.handleHook != nil {
		b.handleHook()
	}
	_ = conn.Close()
}

// Addr returns the bound address.
func (b *Beacon) Addr() net.Addr { return b.listener.Addr() }

// Port returns the bound port.
func (b *Beacon) Port() int {
	if tcpAddr, ok := b.listener.Addr().(*net.TCPAddr); ok {
		return tcpAddr.Port
	}
	return 0
}

// Announcers returns the remembered probing peers, most recent first.
func (b *Beacon) Announcers() []Announcer {
	all := b.announcers.GetALL(true)
	out := make([]Announcer, 0, len(all))
	for ip, seen := range all {
		out = append(out, Announcer{IP: ip, LastSeen: seen})
	}
	slices.SortFunc(out, func(x, y Announcer) int {
		return y.LastSeen.Compare(x.LastSeen)
	})
	return out
}

// Done is closed once the beacon stopped accepting and every accepted
// connection was closed.
func (b *Beacon) Done() <-chan struct{} { return b.stopped }

// Close stops the beacon. It is safe to call more than once.
func (b *Beacon) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.closeErr = b.listener.Close()
	})
	return b.closeErr
}
