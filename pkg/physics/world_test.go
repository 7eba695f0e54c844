package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newPin(x, z float64) *Body {
	pin := NewCapsule(0.1, 0.31, 1.6)
	pin.FootRadius = 0.05
	pin.LinearDamping = 0.45
	pin.AngularDamping = 0.45
	pin.SleepSpeedLimit = 0.12
	pin.SleepTimeLimit = 0.45
	pin.Material = "pin"
	pin.Position = mgl64.Vec3{x, 0.41 + 0.003, z}
	return pin
}

func newTestWorld() *World {
	w := NewWorld()
	w.Iterations = 14
	w.FloorMaterial = "floor"
	w.SetContactMaterial("ball", "floor", ContactMaterial{Friction: 0.18, Restitution: 0.03})
	w.SetContactMaterial("pin", "floor", ContactMaterial{Friction: 0.55, Restitution: 0.05})
	w.SetContactMaterial("ball", "pin", ContactMaterial{Friction: 0.25, Restitution: 0.1})
	return w
}

func TestWorld_SleepingPinStaysPut(t *testing.T) {
	w := newTestWorld()
	pin := newPin(0, -15)
	pin.Sleep()
	w.AddBody(pin)

	start := pin.Position
	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60.0)
	}
	if pin.Position != start {
		t.Errorf("sleeping pin moved from %v to %v", start, pin.Position)
	}
}

func TestWorld_AwakeUprightPinSettles(t *testing.T) {
	w := newTestWorld()
	pin := newPin(0.23, -15.42)
	w.AddBody(pin)

	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60.0)
	}

	if tilt := pin.Tilt(); tilt > 1e-6 {
		t.Errorf("upright pin tilted by %v", tilt)
	}
	if math.Abs(pin.Position.Y()-0.41) > 0.01 {
		t.Errorf("expected pin center near 0.41, got %v", pin.Position.Y())
	}
	if !pin.IsSleeping() {
		t.Error("resting pin should fall asleep")
	}
}

func TestWorld_BallDropRestsOnFloor(t *testing.T) {
	w := newTestWorld()
	ball := NewSphere(0.25, 6)
	ball.Material = "ball"
	ball.Position = mgl64.Vec3{0, 1.0, 7}
	w.AddBody(ball)

	for i := 0; i < 180; i++ {
		w.Step(1.0 / 60.0)
	}
	if y := ball.Position.Y(); y < 0.24 || y > 0.26 {
		t.Errorf("expected ball resting at radius height, got y=%v", y)
	}
}

func TestWorld_BallHitsPinEmitsContact(t *testing.T) {
	w := newTestWorld()
	ball := NewSphere(0.25, 6)
	ball.Material = "ball"
	ball.Position = mgl64.Vec3{0, 0.25, -14.5}
	ball.Velocity = mgl64.Vec3{0, 0, -10}
	w.AddBody(ball)

	pin := newPin(0, -15)
	pin.Sleep()
	w.AddBody(pin)

	var events []ContactEvent
	w.OnContact(func(e ContactEvent) { events = append(events, e) })

	for i := 0; i < 3; i++ {
		w.Step(1.0 / 60.0)
	}

	if len(events) == 0 {
		t.Fatal("expected a ball-pin contact event")
	}
	e := events[0]
	if e.A != ball || e.B != pin {
		t.Errorf("expected event ordered (ball, pin), got ids (%d, %d)", e.A.ID(), e.B.ID())
	}
	if e.ImpactSpeed < 5 {
		t.Errorf("expected impact speed near 10, got %v", e.ImpactSpeed)
	}
	if pin.IsSleeping() {
		t.Error("pin should be woken by the ball")
	}
	if pin.Velocity.Z() >= 0 {
		t.Errorf("pin should be pushed away from the bowler, vz=%v", pin.Velocity.Z())
	}
}

func TestWorld_NoCollisionResponse(t *testing.T) {
	w := newTestWorld()
	ball := NewSphere(0.25, 6)
	ball.Position = mgl64.Vec3{0, 0.25, -15}
	ball.CollisionResponse = false
	w.AddBody(ball)

	pin := newPin(0, -15)
	w.AddBody(pin)

	fired := false
	w.OnContact(func(ContactEvent) { fired = true })
	w.Step(1.0 / 60.0)

	if fired {
		t.Error("body without collision response must not produce contacts")
	}
}

func TestWorld_AddRemoveBody(t *testing.T) {
	w := NewWorld()
	b := NewSphere(0.25, 6)

	if w.HasBody(b) {
		t.Fatal("body should not be in world before AddBody")
	}
	w.AddBody(b)
	w.AddBody(b)
	if !w.HasBody(b) || len(w.Bodies()) != 1 {
		t.Fatalf("expected exactly one body, got %d", len(w.Bodies()))
	}

	w.RemoveBody(b)
	w.RemoveBody(b)
	if w.HasBody(b) || len(w.Bodies()) != 0 {
		t.Error("body should be removed")
	}
}

func TestWorld_ContactMaterialLookup(t *testing.T) {
	w := newTestWorld()
	m := w.ContactMaterialFor("pin", "ball")
	if m.Friction != 0.25 || m.Restitution != 0.1 {
		t.Errorf("material lookup should be order independent, got %+v", m)
	}
	if got := w.ContactMaterialFor("pin", "pin"); got != w.DefaultMaterial {
		t.Errorf("expected default material, got %+v", got)
	}
}

func TestWorld_WallStopsBall(t *testing.T) {
	w := newTestWorld()
	w.AddBox(Box{Center: mgl64.Vec3{1.15, 0.25, -5}, Half: mgl64.Vec3{0.05, 0.6, 32}})

	ball := NewSphere(0.25, 6)
	ball.Position = mgl64.Vec3{0.5, 0.25, 0}
	ball.Velocity = mgl64.Vec3{4, 0, 0}
	w.AddBody(ball)

	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60.0)
	}
	if x := ball.Position.X(); x > 1.15-0.05-0.25+0.01 {
		t.Errorf("ball passed through the gutter wall, x=%v", x)
	}
}
