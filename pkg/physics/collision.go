package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box 静态轴对齐盒（边沟挡板、后墙）
type Box struct {
	Center   mgl64.Vec3
	Half     mgl64.Vec3
	Material string
}

const epsilon = 1e-9

// closestPointsSegments 计算两条线段之间的最近点
// 参数:
//   - p1, q1: 线段 1
//   - p2, q2: 线段 2
//
// 返回:
//   - c1, c2: 两条线段上的最近点
func closestPointsSegments(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= epsilon && e <= epsilon:
		return p1, p2
	case a <= epsilon:
		s = 0
		t = mgl64.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= epsilon {
			t = 0
			s = mgl64.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > epsilon {
				s = mgl64.Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = mgl64.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = mgl64.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// closestPointBox 盒子上距离 p 最近的点
func closestPointBox(box Box, p mgl64.Vec3) mgl64.Vec3 {
	lo := box.Center.Sub(box.Half)
	hi := box.Center.Add(box.Half)
	return mgl64.Vec3{
		mgl64.Clamp(p[0], lo[0], hi[0]),
		mgl64.Clamp(p[1], lo[1], hi[1]),
		mgl64.Clamp(p[2], lo[2], hi[2]),
	}
}

// sphereBox 球与盒子的接触
// 返回法线（指向球）、穿透深度和是否接触
func sphereBox(center mgl64.Vec3, radius float64, box Box) (mgl64.Vec3, float64, bool) {
	closest := closestPointBox(box, center)
	diff := center.Sub(closest)
	dist := diff.Len()
	if dist > epsilon {
		if dist >= radius {
			return mgl64.Vec3{}, 0, false
		}
		return diff.Mul(1 / dist), radius - dist, true
	}

	// 球心在盒子内部：沿穿透最浅的轴推出
	local := center.Sub(box.Center)
	bestAxis, bestDepth, sign := 0, math.Inf(1), 1.0
	for i := 0; i < 3; i++ {
		d := box.Half[i] - math.Abs(local[i])
		if d < bestDepth {
			bestAxis, bestDepth = i, d
			sign = 1
			if local[i] < 0 {
				sign = -1
			}
		}
	}
	n := mgl64.Vec3{}
	n[bestAxis] = sign
	return n, bestDepth + radius, true
}

// floorSupportPoints 与地面/盒子做接触检测的采样点（球心）
// 球体只有球心；胶囊为两端点和中点，设置了 FootRadius 时两端再加四个边缘点
func floorSupportPoints(b *Body, withFeet bool) []mgl64.Vec3 {
	if b.HalfLength == 0 {
		return []mgl64.Vec3{b.Position}
	}
	p0, p1 := b.Segment()
	pts := []mgl64.Vec3{p0, p1, b.Position}
	if withFeet && b.FootRadius > 0 {
		ax := b.Orientation.Rotate(mgl64.Vec3{b.FootRadius, 0, 0})
		az := b.Orientation.Rotate(mgl64.Vec3{0, 0, b.FootRadius})
		for _, end := range []mgl64.Vec3{p0, p1} {
			pts = append(pts, end.Add(ax), end.Sub(ax), end.Add(az), end.Sub(az))
		}
	}
	return pts
}
