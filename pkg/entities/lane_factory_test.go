package entities

import (
	"math"
	"testing"

	"github.com/qscasino/bolosspirita/pkg/components"
	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
)

func TestNewLane(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultLaneConfig()

	lane, err := NewLane(em, cfg)
	if err != nil {
		t.Fatalf("NewLane failed: %v", err)
	}

	if len(lane.Pins) != config.PinCount {
		t.Fatalf("expected %d pins, got %d", config.PinCount, len(lane.Pins))
	}
	if got := len(lane.World.Bodies()); got != config.PinCount+1 {
		t.Errorf("expected %d bodies, got %d", config.PinCount+1, got)
	}
	if got := len(lane.World.Boxes()); got != 3 {
		t.Errorf("expected 2 gutters and a back wall, got %d boxes", got)
	}

	for i, id := range lane.Pins {
		pin, ok := ecs.GetComponent[*components.PinComponent](em, id)
		if !ok {
			t.Fatalf("pin %d missing PinComponent", i)
		}
		if pin.Index != i || pin.IsKnocked || pin.IsRemoved {
			t.Errorf("pin %d bad initial state: %+v", i, pin)
		}
		rb, ok := ecs.GetComponent[*components.RigidBodyComponent](em, id)
		if !ok {
			t.Fatalf("pin %d missing body", i)
		}
		if !rb.Body.IsSleeping() {
			t.Errorf("pin %d should start asleep", i)
		}
		want := cfg.Lane.PinPositions[i]
		p := rb.Body.Position
		if math.Abs(p.X()-want[0]) > 1e-9 || math.Abs(p.Z()-want[2]) > 1e-9 ||
			math.Abs(p.Y()-(want[1]+cfg.Lane.PinStandEpsilon)) > 1e-9 {
			t.Errorf("pin %d at %v, want %v (+eps)", i, p, want)
		}
		if rb.Body.Tilt() != 0 {
			t.Errorf("pin %d should be upright", i)
		}
	}

	ball, ok := ecs.GetComponent[*components.BallComponent](em, lane.Ball)
	if !ok || !ball.Visible || ball.HasThrown {
		t.Errorf("unexpected ball state %+v", ball)
	}
}

func TestNewPinEntity_OutOfRange(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultLaneConfig()
	world := NewLaneWorld(cfg)

	if _, err := NewPinEntity(em, world, cfg, 10); err == nil {
		t.Error("expected error for pin index 10")
	}
	if em.EntityCount() != 0 {
		t.Errorf("failed creation must not leave entities, got %d", em.EntityCount())
	}
}

func TestNewLaneWorld_Materials(t *testing.T) {
	cfg := config.DefaultLaneConfig()
	w := NewLaneWorld(cfg)

	if m := w.ContactMaterialFor(config.MaterialPin, config.MaterialBall); m.Friction != 0.25 || m.Restitution != 0.1 {
		t.Errorf("unexpected ball-pin material %+v", m)
	}
	if w.DefaultMaterial.Friction != 0.75 {
		t.Errorf("expected default friction 0.75, got %v", w.DefaultMaterial.Friction)
	}
	if w.Iterations != cfg.Physics.SolverIterations {
		t.Errorf("expected %d solver iterations, got %d", cfg.Physics.SolverIterations, w.Iterations)
	}
}
