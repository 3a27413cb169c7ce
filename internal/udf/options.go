package udf

import (
	"go.uber.org/zap"

	"github.com/aitch25/lib-mysqludf-str/internal/random"
)

// DefaultMaxRandomBytes is the largest byte count str_srand accepts unless
// configured otherwise.
const DefaultMaxRandomBytes = 255

type settings struct {
	log            *zap.Logger
	ids            IDGenerator
	maxRandomBytes int
	entropy        func() (*random.State, error)
}

func newSettings(opts []Option) *settings {
	s := &settings{
		log:            zap.NewNop(),
		ids:            UUIDv7Generator{},
		maxRandomBytes: DefaultMaxRandomBytes,
		entropy:        random.NewFromEntropy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures the functions built by Catalog and Builtin.
type Option func(*settings)

// WithLogger sets the logger bind events are reported to. The default
// discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator sets the source of instance ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithMaxRandomBytes sets the largest byte count str_srand may be bound
// with.
func WithMaxRandomBytes(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxRandomBytes = n
		}
	}
}

// WithEntropy sets how unseeded random states are created at bind time.
// Tests use it to make unseeded shuffles reproducible.
func WithEntropy(f func() (*random.State, error)) Option {
	return func(s *settings) {
		if f != nil {
			s.entropy = f
		}
	}
}
