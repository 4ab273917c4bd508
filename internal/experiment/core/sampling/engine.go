// Package sampling is the Monte Carlo substrate shared by both analyzers:
// seedable Beta and Binomial draws plus resampling with replacement.
package sampling

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/domain"
)

// Engine produces i.i.d. draws from the distributions the analyzers need.
// It holds no state between calls beyond its random source; the source is
// guarded so a single engine is safe for concurrent use, at the cost of
// serializing draws. Callers that want concurrent reproducible streams fork
// one engine per stream instead.
type Engine struct {
	mu     sync.Mutex
	src    *rand.Rand
	seed   uint64
	seeded bool
}

// Unseeded engines draw their seeds from a process-global splitmix64 chain
// rather than the clock: engines created in the same clock tick must still
// get distinct, decorrelated streams.
var (
	seedMu    sync.Mutex
	seedState = uint64(time.Now().UnixNano())
)

func nextSeed() uint64 {
	seedMu.Lock()
	defer seedMu.Unlock()
	seedState = splitmix64(seedState)
	return seedState
}

// NewEngine returns a non-deterministic engine. Sequences differ across runs
// but remain correct i.i.d. draws from the requested distributions.
func NewEngine() *Engine {
	seed := nextSeed()
	return &Engine{src: rand.New(rand.NewSource(seed)), seed: seed}
}

// NewSeededEngine returns an engine whose sequences are reproducible for the
// given seed.
func NewSeededEngine(seed uint64) *Engine {
	return &Engine{src: rand.New(rand.NewSource(seed)), seed: seed, seeded: true}
}

// Fork derives an independent engine for the given stream number. Forks of a
// seeded engine are themselves deterministic, so independent streams (one per
// arm, one for the bootstrap, ...) can run concurrently without losing
// reproducibility. Forks of an unseeded engine are independent and random.
func (e *Engine) Fork(stream uint64) *Engine {
	if !e.seeded {
		return NewEngine()
	}
	s := splitmix64(e.seed + stream)
	return &Engine{src: rand.New(rand.NewSource(s)), seed: s, seeded: true}
}

// Seeded reports whether the engine produces reproducible sequences.
func (e *Engine) Seeded() bool { return e.seeded }

// DrawBeta returns count independent draws from Beta(alpha, beta).
func (e *Engine) DrawBeta(alpha, beta float64, count int) ([]float64, error) {
	if !(alpha > 0) || !(beta > 0) {
		return nil, fmt.Errorf("%w: beta shape parameters must be positive, got alpha=%v beta=%v",
			domain.ErrInvalidParameter, alpha, beta)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: draw count must be nonnegative, got %d", domain.ErrInvalidParameter, count)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	dist := distuv.Beta{Alpha: alpha, Beta: beta, Src: e.src}
	out := make([]float64, count)
	for i := range out {
		x := dist.Rand()
		if math.IsNaN(x) {
			return nil, fmt.Errorf("%w: beta(%v, %v) draw is NaN", domain.ErrSamplingFailure, alpha, beta)
		}
		out[i] = x
	}
	return out, nil
}

// DrawBinomial returns one draw from Binomial(n, p), an integer in [0, n].
func (e *Engine) DrawBinomial(n int64, p float64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: binomial n must be nonnegative, got %d", domain.ErrInvalidParameter, n)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: binomial p must be in [0,1], got %v", domain.ErrInvalidParameter, p)
	}
	if n == 0 || p == 0 {
		return 0, nil
	}
	if p == 1 {
		return n, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	dist := distuv.Binomial{N: float64(n), P: p, Src: e.src}
	x := dist.Rand()
	if math.IsNaN(x) {
		return 0, fmt.Errorf("%w: binomial(%d, %v) draw is NaN", domain.ErrSamplingFailure, n, p)
	}
	k := int64(x)
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}
	return k, nil
}

// Resample returns size elements drawn with replacement from data.
func (e *Engine) Resample(data []float64, size int) ([]float64, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: cannot resample empty data", domain.ErrInvalidParameter)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: resample size must be nonnegative, got %d", domain.ErrInvalidParameter, size)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]float64, size)
	for i := range out {
		out[i] = data[e.src.Intn(len(data))]
	}
	return out, nil
}

// PercentileInterval returns the central empirical interval of the samples at
// the given level, e.g. level 0.95 spans the 2.5th to 97.5th percentiles.
// The input is not modified.
func PercentileInterval(samples []float64, level float64) (lower, upper float64) {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	tail := (1 - level) / 2
	lower = stat.Quantile(tail, stat.LinInterp, sorted, nil)
	upper = stat.Quantile(1-tail, stat.LinInterp, sorted, nil)
	return lower, upper
}

// splitmix64 is the standard seed mixer; it keeps forked streams decorrelated
// even when stream numbers are consecutive.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
