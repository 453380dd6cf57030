// Package sampler draws Thompson samples from principle posteriors.
// The sampler is stateless over the store: callers hand it a read snapshot
// of arms so a draw never observes a torn (alpha, beta) pair.
package sampler

import (
	"math"
	"math/rand"
	"sync"

	"minds/internal/types"
)

// ContextualMinPulls is the pull count a contextual arm needs before it is
// trusted over the global arm.
const ContextualMinPulls = 5

// feelGoodPullCap is the global pull count past which the exploration bonus
// stops applying.
const feelGoodPullCap = 100

// Snapshot is a consistent read of posteriors for one request.
type Snapshot struct {
	Global     map[string]types.ArmPosterior
	Contextual map[string]types.ArmPosterior // keyed by principle id, single domain
}

// Arm resolves the posterior used for a principle: the contextual arm when
// it has enough pulls, the global arm otherwise, Beta(1,1) when neither
// exists.
func (s Snapshot) Arm(principleID string) types.ArmPosterior {
	if arm, ok := s.Contextual[principleID]; ok && arm.Pulls >= ContextualMinPulls {
		return arm
	}
	if arm, ok := s.Global[principleID]; ok {
		return arm
	}
	return types.UniformArm(principleID)
}

// GlobalPulls returns the global pull count for a principle.
func (s Snapshot) GlobalPulls(principleID string) int64 {
	if arm, ok := s.Global[principleID]; ok {
		return arm.Pulls
	}
	return 0
}

// Sampler draws Beta posterior samples with a feel-good exploration bonus
// for under-sampled arms.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a sampler. A nil source is seeded from the default source;
// tests inject a fixed seed.
func New(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &Sampler{rng: rand.New(src)}
}

// Draw samples a score for a principle from the snapshot. The draw is the
// Beta sample plus the feel-good bonus while the global arm has fewer than
// 100 pulls, clamped to [0, 1+bonus].
func (s *Sampler) Draw(snap Snapshot, principleID string) float64 {
	arm := snap.Arm(principleID)

	s.mu.Lock()
	draw := s.betaSample(arm.Alpha, arm.Beta)
	s.mu.Unlock()

	bonus := FeelGoodBonus(snap.GlobalPulls(principleID))
	draw += bonus

	if draw < 0 {
		return 0
	}
	if max := 1 + bonus; draw > max {
		return max
	}
	return draw
}

// FeelGoodBonus is the additive exploration term for under-sampled arms:
// 2*sqrt(ln(1000)/(pulls+1)) while pulls < 100, else 0.
func FeelGoodBonus(globalPulls int64) float64 {
	if globalPulls >= feelGoodPullCap {
		return 0
	}
	return 2 * math.Sqrt(math.Log(1000)/float64(globalPulls+1))
}

// betaSample draws from Beta(a, b) via two Gamma draws. Callers hold s.mu.
func (s *Sampler) betaSample(a, b float64) float64 {
	if a <= 0 {
		a = 1
	}
	if b <= 0 {
		b = 1
	}
	x := s.gammaSample(a)
	y := s.gammaSample(b)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// gammaSample draws from Gamma(shape, 1) using Marsaglia-Tsang, with the
// standard boost for shape < 1.
func (s *Sampler) gammaSample(shape float64) float64 {
	if shape < 1 {
		u := s.rng.Float64()
		return s.gammaSample(shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := s.rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
