// Package backoff implements the fibonacci-shaped retry delay policy used by
// the token exchange cycle.
//
// A Backoff instance is ephemeral: it is created for a single
// exchange-with-retry cycle and discarded afterwards. It is not safe for
// concurrent use.
package backoff

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	// DefaultInitialDelay is the delay before the first retry.
	DefaultInitialDelay = 100 * time.Millisecond

	// DefaultMaxDelay caps the delay between retries.
	DefaultMaxDelay = 10 * time.Second

	// DefaultCallRetryMax is the maximum number of exchange attempts.
	DefaultCallRetryMax = 10
)

// Config controls the shape of the retry delay sequence.
type Config struct {
	RandomisationFactor float64       `yaml:"randomisationFactor,omitempty" json:"randomisationFactor,omitempty" long:"randomisation-factor" description:"retry delay jitter fraction (0..1)"`
	InitialDelay        time.Duration `yaml:"initialDelay,omitempty" json:"initialDelay,omitempty" long:"initial-delay" description:"delay before the first retry"`
	MaxDelay            time.Duration `yaml:"maxDelay,omitempty" json:"maxDelay,omitempty" long:"max-delay" description:"upper bound on retry delay"`
	CallRetryMax        int           `yaml:"callRetryMax,omitempty" json:"callRetryMax,omitempty" long:"call-retry-max" description:"maximum number of exchange attempts"`
}

// Init fills zero values with defaults.
func (c *Config) Init() {
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.CallRetryMax <= 0 {
		c.CallRetryMax = DefaultCallRetryMax
	}
}

// Validate checks config consistency.
func (c *Config) Validate() error {
	if c.RandomisationFactor < 0 || c.RandomisationFactor >= 1 {
		return fmt.Errorf("backoff: randomisationFactor must be in [0,1), got %v", c.RandomisationFactor)
	}
	if c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("backoff: maxDelay %v is below initialDelay %v", c.MaxDelay, c.InitialDelay)
	}
	return nil
}

// Backoff yields the delays between attempts of one exchange cycle.
// Delays follow the fibonacci sequence scaled by InitialDelay and are capped
// at MaxDelay before the optional jitter is applied; jitter never pushes a
// delay above MaxDelay.
type Backoff struct {
	config Config
	tries  int
	prev   time.Duration
	curr   time.Duration
	rnd    *rand.Rand
}

// New returns a Backoff for one exchange cycle.
func New(config Config) *Backoff {
	config.Init()
	return &Backoff{
		config: config,
		tries:  1, // the caller's first attempt needs no delay
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Attempts returns the number of attempts granted so far, the initial
// delay-free attempt included.
func (b *Backoff) Attempts() int {
	return b.tries
}

// Next reports whether the attempt budget allows one more try and, when it
// does, the delay to observe before it.
func (b *Backoff) Next() (time.Duration, bool) {
	if b.tries >= b.config.CallRetryMax {
		return 0, false
	}
	b.tries++
	if b.curr == 0 {
		b.prev, b.curr = 0, b.config.InitialDelay
	} else {
		b.prev, b.curr = b.curr, b.prev+b.curr
	}
	if b.curr > b.config.MaxDelay {
		b.curr = b.config.MaxDelay
	}
	delay := b.curr
	if b.config.RandomisationFactor > 0 {
		jitter := time.Duration(float64(delay) * b.config.RandomisationFactor * (2*b.rnd.Float64() - 1))
		delay += jitter
		if delay > b.config.MaxDelay {
			delay = b.config.MaxDelay
		}
		if delay < 0 {
			delay = 0
		}
	}
	return delay, true
}
