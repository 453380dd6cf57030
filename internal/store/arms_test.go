package store

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"minds/internal/types"
)

func bumpArm(t *testing.T, s *Store, pid string, success bool) types.ArmPosterior {
	t.Helper()
	ctx := context.Background()
	var arm types.ArmPosterior
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		arm, err = s.BumpArmTx(ctx, tx, pid, success, 0.05, 0.10)
		return err
	})
	if err != nil {
		t.Fatalf("BumpArmTx: %v", err)
	}
	return arm
}

func TestArmDefaultsToUniform(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)

	arm, err := s.GetArm(context.Background(), "strangler-fig")
	if err != nil {
		t.Fatal(err)
	}
	if arm.Alpha != 1 || arm.Beta != 1 || arm.Pulls != 0 {
		t.Errorf("fresh arm = %+v, want Beta(1,1) with 0 pulls", arm)
	}
	if arm.Rho() != 0.5 {
		t.Errorf("fresh rho = %f", arm.Rho())
	}
}

func TestAsymmetricBump(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)

	arm := bumpArm(t, s, "strangler-fig", true)
	if math.Abs(arm.Alpha-1.05) > 1e-9 || arm.Beta != 1 {
		t.Errorf("after success arm = %+v, want alpha=1.05 beta=1", arm)
	}
	if arm.Pulls != 1 {
		t.Errorf("pulls = %d, want 1", arm.Pulls)
	}

	arm = bumpArm(t, s, "strangler-fig", false)
	if math.Abs(arm.Beta-1.10) > 1e-9 {
		t.Errorf("after failure beta = %f, want 1.10 (failures punished twice as hard)", arm.Beta)
	}
	if arm.Pulls != 2 {
		t.Errorf("pulls = %d, want 2", arm.Pulls)
	}
}

func TestContextualArm(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)
	ctx := context.Background()

	_, exists, err := s.GetContextualArm(ctx, "strangler-fig", "architecture")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("contextual arm should not exist before any outcome")
	}

	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.BumpContextualArmTx(ctx, tx, "strangler-fig", "architecture", true, 0.05, 0.10)
	})
	if err != nil {
		t.Fatal(err)
	}

	arm, exists, err := s.GetContextualArm(ctx, "strangler-fig", "architecture")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("contextual arm should exist after outcome")
	}
	if math.Abs(arm.Alpha-1.05) > 1e-9 || arm.Pulls != 1 {
		t.Errorf("contextual arm = %+v", arm)
	}
}

func TestArmSnapshot(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)
	ctx := context.Background()

	bumpArm(t, s, "strangler-fig", true)
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		return s.BumpContextualArmTx(ctx, tx, "premature-optimization", "performance", false, 0.05, 0.10)
	})
	if err != nil {
		t.Fatal(err)
	}

	global, contextual, err := s.ArmSnapshot(ctx, "performance")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := global["strangler-fig"]; !ok {
		t.Error("global snapshot missing pulled arm")
	}
	if arm, ok := contextual["premature-optimization"]; !ok || arm.Beta <= 1 {
		t.Errorf("contextual snapshot = %+v", contextual)
	}
}

func TestBatchRollback(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.BumpArmTx(ctx, tx, "strangler-fig", true, 0.05, 0.10); err != nil {
			return err
		}
		_, err := s.SetOutcomeTx(ctx, tx, "no-such-decision", true, "")
		return err
	})
	if err == nil {
		t.Fatal("expected batch to fail on unknown decision")
	}

	arm, _ := s.GetArm(ctx, "strangler-fig")
	if arm.Pulls != 0 {
		t.Errorf("rollback must undo arm bump, pulls = %d", arm.Pulls)
	}
}
