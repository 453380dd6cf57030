package sampler

import (
	"math"
	"math/rand"
	"testing"

	"minds/internal/types"
)

func arm(pid string, alpha, beta float64, pulls int64) types.ArmPosterior {
	return types.ArmPosterior{PrincipleID: pid, Alpha: alpha, Beta: beta, Pulls: pulls}
}

func TestSnapshotPrefersMatureContextualArm(t *testing.T) {
	snap := Snapshot{
		Global: map[string]types.ArmPosterior{
			"yagni": arm("yagni", 10, 2, 12),
		},
		Contextual: map[string]types.ArmPosterior{
			"yagni": arm("yagni", 2, 10, 6), // >= 5 pulls: trusted
		},
	}
	got := snap.Arm("yagni")
	if got.Alpha != 2 || got.Beta != 10 {
		t.Errorf("expected contextual arm, got %+v", got)
	}
}

func TestSnapshotIgnoresColdContextualArm(t *testing.T) {
	snap := Snapshot{
		Global: map[string]types.ArmPosterior{
			"yagni": arm("yagni", 10, 2, 12),
		},
		Contextual: map[string]types.ArmPosterior{
			"yagni": arm("yagni", 2, 10, 3), // < 5 pulls: ignored
		},
	}
	got := snap.Arm("yagni")
	if got.Alpha != 10 {
		t.Errorf("expected global arm, got %+v", got)
	}
}

func TestSnapshotDefaultsToUniform(t *testing.T) {
	snap := Snapshot{}
	got := snap.Arm("unseen")
	if got.Alpha != 1 || got.Beta != 1 {
		t.Errorf("expected Beta(1,1), got %+v", got)
	}
}

func TestFeelGoodBonus(t *testing.T) {
	// Zero pulls: maximum exploration pressure.
	b0 := FeelGoodBonus(0)
	want := 2 * math.Sqrt(math.Log(1000))
	if math.Abs(b0-want) > 1e-9 {
		t.Errorf("bonus(0) = %f, want %f", b0, want)
	}
	if FeelGoodBonus(50) >= b0 {
		t.Error("bonus must decay with pulls")
	}
	if FeelGoodBonus(100) != 0 {
		t.Error("bonus must vanish at 100 pulls")
	}
	if FeelGoodBonus(5000) != 0 {
		t.Error("bonus must stay zero past 100 pulls")
	}
}

func TestDrawClamped(t *testing.T) {
	s := New(rand.NewSource(42))
	snap := Snapshot{Global: map[string]types.ArmPosterior{
		"hot": arm("hot", 200, 1, 500), // near-certain winner, no bonus
	}}
	for i := 0; i < 100; i++ {
		d := s.Draw(snap, "hot")
		if d < 0 || d > 1 {
			t.Fatalf("draw %f outside [0,1] for mature arm", d)
		}
	}
}

func TestDrawBonusHeadroom(t *testing.T) {
	s := New(rand.NewSource(7))
	snap := Snapshot{} // cold arm: full bonus applies
	bonus := FeelGoodBonus(0)
	for i := 0; i < 100; i++ {
		d := s.Draw(snap, "cold")
		if d < 0 || d > 1+bonus {
			t.Fatalf("draw %f outside [0, %f]", d, 1+bonus)
		}
	}
}

func TestDrawSeparatesGoodFromBadArms(t *testing.T) {
	s := New(rand.NewSource(99))
	snap := Snapshot{Global: map[string]types.ArmPosterior{
		"good": arm("good", 50, 5, 200),
		"bad":  arm("bad", 5, 50, 200),
	}}

	var goodSum, badSum float64
	const n = 500
	for i := 0; i < n; i++ {
		goodSum += s.Draw(snap, "good")
		badSum += s.Draw(snap, "bad")
	}
	if goodSum/n <= badSum/n {
		t.Errorf("good arm mean %f should beat bad arm mean %f", goodSum/n, badSum/n)
	}
}

func TestBetaSampleMeanConverges(t *testing.T) {
	s := New(rand.NewSource(1234))
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		sum += s.betaSample(3, 7)
	}
	mean := sum / n
	if math.Abs(mean-0.3) > 0.02 {
		t.Errorf("Beta(3,7) sample mean = %f, want ~0.3", mean)
	}
}
