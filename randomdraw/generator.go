package randomdraw

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"racemaster-go/utils"
)

var (
	ErrInvalidRange = errors.New("invalid range")
	// ErrRetryBudget means the range is nearly full and the sampler gave up
	// before hitting a free value; a later draw may still succeed.
	ErrRetryBudget = errors.New("could not find an unused value, try again")
)

// ExhaustedError means every representable value in the range was already
// drawn within the window; the caller must widen the range or wait.
type ExhaustedError struct {
	Total int64
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d possible values were drawn in the last hour", e.Total)
}

// Result is a successful draw.
type Result struct {
	Value string
	Low   float64
	High  float64
	Total int64
}

// bucket remembers which quantized values were emitted and when, so the
// same value is not drawn twice within the window.
type bucket struct {
	emitted map[int64]time.Time
}

// Generator produces no-repeat random values per (scope, range). Buckets
// are purged lazily on every draw.
type Generator struct {
	window  time.Duration
	retries int

	mutex   sync.Mutex
	buckets map[string]*bucket

	// Injection points for tests.
	now     func() time.Time
	randInt func(lo, hi int64) (int64, error)
}

// NewGenerator creates a generator with the given no-repeat window.
func NewGenerator(window time.Duration) *Generator {
	return &Generator{
		window:  window,
		retries: utils.DrawRetryBudget,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		randInt: utils.SecureInt,
	}
}

// quantize converts a decimal bound to integer units of 10^precision.
func quantize(v float64, precision int) int64 {
	return int64(math.Round(v * math.Pow10(precision)))
}

// Draw returns a random value in the inclusive range, formatted to
// precision decimals, that has not been drawn for this scope + range within
// the window. Bounds are order-independent.
func (g *Generator) Draw(scope string, lo, hi float64, precision int) (*Result, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, ErrInvalidRange
	}

	qlo := quantize(lo, precision)
	qhi := quantize(hi, precision)
	if qhi < qlo {
		qlo, qhi = qhi, qlo
	}

	total := qhi - qlo + 1
	unit := math.Pow10(precision)

	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := g.now()
	g.purge(now)

	key := fmt.Sprintf("%s:%d:%d:%d", scope, qlo, qhi, precision)
	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{emitted: make(map[int64]time.Time)}
		g.buckets[key] = b
	}

	if int64(len(b.emitted)) >= total {
		return nil, &ExhaustedError{Total: total}
	}

	// Rejection sampling: draw until an unused value turns up or the
	// budget runs out.
	for attempt := 0; attempt < g.retries; attempt++ {
		v, err := g.randInt(qlo, qhi)
		if err != nil {
			return nil, err
		}
		if _, used := b.emitted[v]; used {
			continue
		}
		b.emitted[v] = now
		return &Result{
			Value: strconv.FormatFloat(float64(v)/unit, 'f', precision, 64),
			Low:   float64(qlo) / unit,
			High:  float64(qhi) / unit,
			Total: total,
		}, nil
	}

	return nil, ErrRetryBudget
}

// purge drops expired values from every bucket and removes buckets that end
// up empty, so ranges drawn once don't accumulate forever. Caller holds the
// mutex.
func (g *Generator) purge(now time.Time) {
	cutoff := now.Add(-g.window)
	for key, b := range g.buckets {
		for v, at := range b.emitted {
			if at.Before(cutoff) {
				delete(b.emitted, v)
			}
		}
		if len(b.emitted) == 0 {
			delete(g.buckets, key)
		}
	}
}
