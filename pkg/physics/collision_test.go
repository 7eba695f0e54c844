package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestClosestPointsSegments(t *testing.T) {
	tests := []struct {
		name         string
		p1, q1       mgl64.Vec3
		p2, q2       mgl64.Vec3
		wantDistance float64
	}{
		{
			name:         "parallel vertical pins",
			p1:           mgl64.Vec3{0, 0.1, 0},
			q1:           mgl64.Vec3{0, 0.72, 0},
			p2:           mgl64.Vec3{0.46, 0.1, 0},
			q2:           mgl64.Vec3{0.46, 0.72, 0},
			wantDistance: 0.46,
		},
		{
			name:         "crossing segments",
			p1:           mgl64.Vec3{-1, 0, 0},
			q1:           mgl64.Vec3{1, 0, 0},
			p2:           mgl64.Vec3{0, 0.3, -1},
			q2:           mgl64.Vec3{0, 0.3, 1},
			wantDistance: 0.3,
		},
		{
			name:         "point against segment",
			p1:           mgl64.Vec3{0, 0.25, 0.5},
			q1:           mgl64.Vec3{0, 0.25, 0.5},
			p2:           mgl64.Vec3{0, 0.1, 0},
			q2:           mgl64.Vec3{0, 0.72, 0},
			wantDistance: 0.5,
		},
		{
			name:         "two points",
			p1:           mgl64.Vec3{0, 0, 0},
			q1:           mgl64.Vec3{0, 0, 0},
			p2:           mgl64.Vec3{3, 4, 0},
			q2:           mgl64.Vec3{3, 4, 0},
			wantDistance: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c1, c2 := closestPointsSegments(tt.p1, tt.q1, tt.p2, tt.q2)
			if d := c1.Sub(c2).Len(); math.Abs(d-tt.wantDistance) > 1e-9 {
				t.Errorf("distance = %v, want %v", d, tt.wantDistance)
			}
		})
	}
}

func TestSphereBox(t *testing.T) {
	box := Box{Center: mgl64.Vec3{0, 0.6, -19.5}, Half: mgl64.Vec3{3, 1.2, 0.2}}

	n, depth, ok := sphereBox(mgl64.Vec3{0, 0.25, -19.1}, 0.25, box)
	if !ok {
		t.Fatal("expected contact with the back wall")
	}
	if n != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("expected normal toward bowler, got %v", n)
	}
	if math.Abs(depth-0.05) > 1e-9 {
		t.Errorf("expected depth 0.05, got %v", depth)
	}

	if _, _, ok := sphereBox(mgl64.Vec3{0, 0.25, -18}, 0.25, box); ok {
		t.Error("sphere far from wall should not touch")
	}

	// 球心在盒内时沿最浅轴推出
	n, _, ok = sphereBox(mgl64.Vec3{0, 0.6, -19.35}, 0.25, box)
	if !ok || n != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("expected push out along +z, got %v (ok=%v)", n, ok)
	}
}

func TestEulerXYZ(t *testing.T) {
	tests := []struct {
		name          string
		q             mgl64.Quat
		wantX, wantZ  float64
		wantTiltRange [2]float64
	}{
		{"identity", mgl64.QuatIdent(), 0, 0, [2]float64{0, 1e-9}},
		{"pitch", mgl64.QuatRotate(0.5, mgl64.Vec3{1, 0, 0}), 0.5, 0, [2]float64{0.5 - 1e-9, 0.5 + 1e-9}},
		{"roll", mgl64.QuatRotate(-0.3, mgl64.Vec3{0, 0, 1}), 0, -0.3, [2]float64{0.3 - 1e-9, 0.3 + 1e-9}},
		{"yaw only", mgl64.QuatRotate(1.2, mgl64.Vec3{0, 1, 0}), 0, 0, [2]float64{0, 1e-9}},
		{"lying down", mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}), math.Pi / 2, 0, [2]float64{math.Pi/2 - 1e-9, math.Pi/2 + 1e-9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, _, z := EulerXYZ(tt.q)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(z-tt.wantZ) > 1e-9 {
				t.Errorf("EulerXYZ = (%v, _, %v), want (%v, _, %v)", x, z, tt.wantX, tt.wantZ)
			}
			b := NewCapsule(0.1, 0.31, 1.6)
			b.Orientation = tt.q
			if tilt := b.Tilt(); tilt < tt.wantTiltRange[0] || tilt > tt.wantTiltRange[1] {
				t.Errorf("Tilt = %v, want in %v", tilt, tt.wantTiltRange)
			}
		})
	}
}

func TestBody_ApplyImpulseWakes(t *testing.T) {
	b := NewCapsule(0.1, 0.31, 1.6)
	b.Sleep()
	b.ApplyImpulse(mgl64.Vec3{0, 0, -3.2}, mgl64.Vec3{})

	if b.IsSleeping() {
		t.Error("impulse should wake the body")
	}
	if math.Abs(b.Velocity.Z()+2) > 1e-9 {
		t.Errorf("expected vz = -2, got %v", b.Velocity.Z())
	}
	if b.AngularVelocity.Len() != 0 {
		t.Errorf("central impulse should not spin, got %v", b.AngularVelocity)
	}
}
