package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contact 单个接触点
// normal 从 b 指向 a；b 为 nil 时表示与静态几何（地面或盒子）接触
type contact struct {
	a, b     *Body
	point    mgl64.Vec3
	normal   mgl64.Vec3
	depth    float64
	material ContactMaterial

	// correct 是否参与位置修正
	correct bool

	ra, rb mgl64.Vec3
	kn     float64

	// approach 检测时沿法线的相对速度（负值为接近）
	approach float64
	target   float64
	accN     float64
	accT     mgl64.Vec3
}

// 休眠刚体在求解中视为静止
func inverseMass(b *Body) float64 {
	if b == nil || b.sleeping {
		return 0
	}
	return b.invMass
}

func inverseInertia(b *Body) float64 {
	if b == nil || b.sleeping {
		return 0
	}
	return b.invInertia
}

// prepare 计算力臂、法向有效质量和反弹目标速度
func (c *contact) prepare() {
	c.ra = c.point.Sub(c.a.Position)
	if c.b != nil {
		c.rb = c.point.Sub(c.b.Position)
	}
	c.kn = c.effectiveMass(c.normal)
	c.approach = c.relativeVelocity().Dot(c.normal)
	if c.approach < -restitutionThreshold {
		c.target = -c.material.Restitution * c.approach
	}
}

// effectiveMass 沿方向 d 的有效质量倒数
func (c *contact) effectiveMass(d mgl64.Vec3) float64 {
	raxd := c.ra.Cross(d)
	k := inverseMass(c.a) + raxd.Dot(raxd)*inverseInertia(c.a)
	if c.b != nil {
		rbxd := c.rb.Cross(d)
		k += inverseMass(c.b) + rbxd.Dot(rbxd)*inverseInertia(c.b)
	}
	return k
}

// relativeVelocity 接触点处 a 相对 b 的速度
func (c *contact) relativeVelocity() mgl64.Vec3 {
	v := c.a.Velocity.Add(c.a.AngularVelocity.Cross(c.ra))
	if c.b != nil {
		v = v.Sub(c.b.Velocity.Add(c.b.AngularVelocity.Cross(c.rb)))
	}
	return v
}

// applyImpulse 对 a 施加 j，对 b 施加 -j
func (c *contact) applyImpulse(j mgl64.Vec3) {
	if !c.a.sleeping {
		c.a.Velocity = c.a.Velocity.Add(j.Mul(c.a.invMass))
		c.a.AngularVelocity = c.a.AngularVelocity.Add(c.ra.Cross(j).Mul(c.a.invInertia))
	}
	if c.b != nil && !c.b.sleeping {
		c.b.Velocity = c.b.Velocity.Sub(j.Mul(c.b.invMass))
		c.b.AngularVelocity = c.b.AngularVelocity.Sub(c.rb.Cross(j).Mul(c.b.invInertia))
	}
}

// solve 一次顺序冲量迭代：累计法向冲量钳制为非负，累计摩擦冲量限制在库仑锥内
func (c *contact) solve() {
	if c.kn <= 0 {
		return
	}

	vn := c.relativeVelocity().Dot(c.normal)
	jn := (c.target - vn) / c.kn
	old := c.accN
	c.accN = math.Max(old+jn, 0)
	jn = c.accN - old
	if jn != 0 {
		c.applyImpulse(c.normal.Mul(jn))
	}

	if c.material.Friction <= 0 || c.accN <= 0 {
		return
	}
	vrel := c.relativeVelocity()
	vt := vrel.Sub(c.normal.Mul(vrel.Dot(c.normal)))
	speed := vt.Len()
	if speed <= epsilon {
		return
	}
	t := vt.Mul(1 / speed)
	kt := c.effectiveMass(t)
	if kt <= 0 {
		return
	}
	acc := c.accT.Add(t.Mul(-speed / kt))
	limit := c.material.Friction * c.accN
	if l := acc.Len(); l > limit {
		acc = acc.Mul(limit / l)
	}
	delta := acc.Sub(c.accT)
	c.accT = acc
	c.applyImpulse(delta)
}

// correctPosition 按逆质量比例把穿透部分推开
func (c *contact) correctPosition() {
	if !c.correct {
		return
	}
	excess := c.depth - contactSlop
	if excess <= 0 {
		return
	}
	wa := inverseMass(c.a)
	wb := inverseMass(c.b)
	sum := wa + wb
	if sum == 0 {
		return
	}
	push := c.normal.Mul(excess * correctionFactor / sum)
	c.a.Position = c.a.Position.Add(push.Mul(wa))
	if c.b != nil {
		c.b.Position = c.b.Position.Sub(push.Mul(wb))
	}
}
