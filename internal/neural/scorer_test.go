package neural

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeModel(t *testing.T, m map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validModel() map[string]interface{} {
	return map[string]interface{}{
		"feature_dim": 7,
		"domains":     []string{"architecture", "performance"},
		"principles":  map[string]int{"yagni": 0, "strangler-fig": 1},
		"mu":          map[string]interface{}{"weights": []float64{2, 1, 0, 0, 0, 0.5, -0.5}, "bias": 0},
		"sigma":       map[string]interface{}{"weights": []float64{0, 0, -1, 0, 0, 0, 0}, "bias": -1},
	}
}

func TestLoadMissingPathIsNil(t *testing.T) {
	m, err := Load("")
	if err != nil || m != nil {
		t.Fatalf("Load(\"\") = %v, %v; want nil, nil", m, err)
	}
	m, err = Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || m != nil {
		t.Fatalf("Load(absent) = %v, %v; want nil, nil", m, err)
	}
}

func TestLoadValidatesShape(t *testing.T) {
	bad := validModel()
	bad["feature_dim"] = 3 // does not fit 5 base features + 2 domains
	if _, err := Load(writeModel(t, bad)); err == nil {
		t.Error("mismatched feature_dim should fail validation")
	}

	bad = validModel()
	bad["mu"] = map[string]interface{}{"weights": []float64{1}, "bias": 0}
	if _, err := Load(writeModel(t, bad)); err == nil {
		t.Error("short weight vector should fail validation")
	}
}

func TestScoreKnownPrinciple(t *testing.T) {
	m, err := Load(writeModel(t, validModel()))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Available() {
		t.Fatal("loaded model should be available")
	}

	mu, sigma, ok := m.Score("yagni", Features{Similarity: 0.8, Rho: 0.6, Domain: "architecture"})
	if !ok {
		t.Fatal("known principle should score")
	}
	if mu <= 0 || mu >= 1 || sigma <= 0 || sigma >= 1 {
		t.Errorf("outputs outside (0,1): mu=%f sigma=%f", mu, sigma)
	}

	// Higher similarity must not lower the success probability given the
	// positive weight on the similarity feature.
	mu2, _, _ := m.Score("yagni", Features{Similarity: 0.1, Rho: 0.6, Domain: "architecture"})
	if mu2 >= mu {
		t.Errorf("mu should grow with similarity: %f vs %f", mu2, mu)
	}
}

func TestScoreUnknownPrincipleDeclines(t *testing.T) {
	m, err := Load(writeModel(t, validModel()))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := m.Score("never-seen", Features{}); ok {
		t.Error("unknown principle must decline so the sampler takes over")
	}
}

func TestNopScorer(t *testing.T) {
	var s Scorer = Nop{}
	if s.Available() {
		t.Error("Nop must report unavailable")
	}
	if _, _, ok := s.Score("yagni", Features{}); ok {
		t.Error("Nop must decline")
	}
}

func TestCombined(t *testing.T) {
	if got := Combined(0.6, 0.2, 0.5); got != 0.7 {
		t.Errorf("Combined = %f, want 0.7", got)
	}
	if got := Combined(0.6, 0.2, 0); got != 0.6 {
		t.Errorf("explore weight 0 must return mu, got %f", got)
	}
}
