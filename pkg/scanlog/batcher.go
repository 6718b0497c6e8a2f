package scanlog

import (
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerscan/pkg/types"
	"github.com/projectdiscovery/utils/batcher"
	envutil "github.com/projectdiscovery/utils/env"
)

var (
	// Default number of results buffered before a write
	DefaultBatchSize = 100
	// Default interval after which buffered results are written anyway
	DefaultFlushInterval = 5 * time.Second
)

// GetBatchSize returns the batch size from environment or default
func GetBatchSize() int {
	envVal := envutil.GetEnvOrDefault("PEERSCAN_REPORT_BATCH_SIZE", "")
	if envVal != "" {
		if size, err := strconv.Atoi(envVal); err == nil && size > 0 {
			return size
		}
	}
	return DefaultBatchSize
}

// GetFlushInterval returns the flush interval from environment or default
func GetFlushInterval() time.Duration {
	envVal := envutil.GetEnvOrDefault("PEERSCAN_REPORT_FLUSH_INTERVAL", "")
	if envVal != "" {
		if interval, err := strconv.Atoi(envVal); err == nil && interval > 0 {
			return time.Duration(interval) * time.Second
		}
	}
	return DefaultFlushInterval
}

// Stream writes results as JSON lines while a scan is still running.
// Results are buffered and written in batches.
type Stream struct {
	batcher *batcher.Batcher[types.PeerResult]
	logger  *gologger.Logger

	mu      sync.Mutex
	encoder *json.Encoder
	written int
	err     error

	closeOnce sync.Once
}

// NewStream starts a stream writing to w. A nil logger uses the default one.
func NewStream(w io.Writer, logger *gologger.Logger) *Stream {
	if logger == nil {
		logger = gologger.DefaultLogger
	}
	s := &Stream{
		encoder: json.NewEncoder(w),
		logger:  logger,
	}
	s.batcher = batcher.New(
		batcher.WithMaxCapacity[types.PeerResult](GetBatchSize()),
		batcher.WithFlushInterval[types.PeerResult](GetFlushInterval()),
		batcher.WithFlushCallback[types.PeerResult](s.flush),
	)

	go s.batcher.Run()

	return s
}

// Append queues a result for writing
func (s *Stream) Append(result types.PeerResult) {
	s.batcher.Append(result)
}

func (s *Stream) flush(results []types.PeerResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return
	}
	for _, result := range results {
		if err := s.encoder.Encode(result); err != nil {
			s.err = err
			s.logger.Error().Msgf("could not write %d peer results: %v", len(results), err)
			return
		}
		s.written++
	}
	s.logger.Debug().Msgf("wrote %d peer results", len(results))
}

// Close flushes pending results and stops the stream. It returns the first
// write error, if any.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.batcher.Stop()
		s.batcher.WaitDone()
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Written returns how many results reached the underlying writer.
func (s *Stream) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}
