package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body 刚体
//
// 所有动态刚体都用胶囊体表示：以局部 Y 轴为轴线、两端各有一个半径为 Radius 的半球。
// HalfLength 为 0 时退化为球体（保龄球）。
// 转动惯量使用标量近似，足以表现球瓶的倾倒和球的滚动。
type Body struct {
	id int

	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Radius     float64
	HalfLength float64

	// FootRadius 底座支撑半径
	// 大于 0 时，胶囊两端额外用四个边缘点与地面接触，让竖直放置的球瓶能稳定站立
	FootRadius float64

	LinearDamping  float64
	AngularDamping float64

	// Material 接触材质名称，用于在 World 的材质表中查找摩擦和弹性
	Material string

	// SleepSpeedLimit / SleepTimeLimit 为 0 时使用世界默认值
	SleepSpeedLimit float64
	SleepTimeLimit  float64

	// CollisionResponse 为 false 时刚体不参与任何碰撞（被捕获的球）
	CollisionResponse bool

	mass       float64
	invMass    float64
	invInertia float64

	sleeping bool
	idleTime float64
	inWorld  bool
}

// NewSphere 创建球形刚体
func NewSphere(radius, mass float64) *Body {
	b := &Body{
		Orientation:       mgl64.QuatIdent(),
		Radius:            radius,
		CollisionResponse: true,
	}
	// 实心球 I = 2/5 m r²
	b.setMass(mass, 0.4*mass*radius*radius)
	return b
}

// NewCapsule 创建胶囊刚体
// 参数:
//   - radius: 端部半球半径
//   - halfLength: 轴线半长（不含半球）
//   - mass: 质量
func NewCapsule(radius, halfLength, mass float64) *Body {
	b := &Body{
		Orientation:       mgl64.QuatIdent(),
		Radius:            radius,
		HalfLength:        halfLength,
		CollisionResponse: true,
	}
	// 按圆柱体的横向转动惯量近似：I = m(3r² + h²)/12
	h := 2 * (halfLength + radius)
	b.setMass(mass, mass*(3*radius*radius+h*h)/12)
	return b
}

func (b *Body) setMass(mass, inertia float64) {
	b.mass = mass
	if mass > 0 {
		b.invMass = 1 / mass
	}
	if inertia > 0 {
		b.invInertia = 1 / inertia
	}
}

// ID 返回刚体在所属世界中的编号（未加入世界时为 0）
func (b *Body) ID() int { return b.id }

// Mass 质量
func (b *Body) Mass() float64 { return b.mass }

// InWorld 是否仍在世界中
func (b *Body) InWorld() bool { return b.inWorld }

// IsSleeping 是否处于休眠
func (b *Body) IsSleeping() bool { return b.sleeping }

// Wake 唤醒刚体
func (b *Body) Wake() {
	b.sleeping = false
	b.idleTime = 0
}

// Sleep 立即休眠并清零速度
func (b *Body) Sleep() {
	b.sleeping = true
	b.idleTime = 0
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
}

// SetPose 硬设置位姿并清零速度（不改变休眠状态）
func (b *Body) SetPose(pos mgl64.Vec3, q mgl64.Quat) {
	b.Position = pos
	b.Orientation = q.Normalize()
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
}

// Speed 线速度大小
func (b *Body) Speed() float64 {
	return b.Velocity.Len()
}

// ApplyImpulse 在相对质心 offset 处施加冲量，并唤醒刚体
func (b *Body) ApplyImpulse(impulse, offset mgl64.Vec3) {
	b.Wake()
	b.Velocity = b.Velocity.Add(impulse.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(offset.Cross(impulse).Mul(b.invInertia))
}

// Axis 胶囊轴线方向（世界坐标）
func (b *Body) Axis() mgl64.Vec3 {
	return b.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
}

// Segment 胶囊轴线的两个端点（世界坐标）；球体两端点重合于球心
func (b *Body) Segment() (mgl64.Vec3, mgl64.Vec3) {
	if b.HalfLength == 0 {
		return b.Position, b.Position
	}
	d := b.Axis().Mul(b.HalfLength)
	return b.Position.Sub(d), b.Position.Add(d)
}

// Euler 按 XYZ 顺序分解姿态，返回 (x, y, z) 欧拉角（弧度）
func (b *Body) Euler() (float64, float64, float64) {
	return EulerXYZ(b.Orientation)
}

// Tilt 倾斜量 |x| + |z|（XYZ 欧拉角），竖直时为 0
func (b *Body) Tilt() float64 {
	x, _, z := b.Euler()
	return math.Abs(x) + math.Abs(z)
}

// EulerXYZ 把四元数转换为 XYZ 顺序的欧拉角
// 返回:
//   - x, y, z: 绕各轴旋转角（弧度）
func EulerXYZ(q mgl64.Quat) (float64, float64, float64) {
	qx, qy, qz, qw := q.V[0], q.V[1], q.V[2], q.W

	m11 := 1 - 2*(qy*qy+qz*qz)
	m12 := 2 * (qx*qy - qz*qw)
	m13 := 2 * (qx*qz + qy*qw)
	m22 := 1 - 2*(qx*qx+qz*qz)
	m23 := 2 * (qy*qz - qx*qw)
	m32 := 2 * (qy*qz + qx*qw)
	m33 := 1 - 2*(qx*qx+qy*qy)

	y := math.Asin(mgl64.Clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		return math.Atan2(-m23, m33), y, math.Atan2(-m12, m11)
	}
	return math.Atan2(m32, m22), y, 0
}

// sleepLimits 返回刚体生效的休眠阈值
func (b *Body) sleepLimits(w *World) (float64, float64) {
	speed, t := b.SleepSpeedLimit, b.SleepTimeLimit
	if speed <= 0 {
		speed = w.SleepSpeedLimit
	}
	if t <= 0 {
		t = w.SleepTimeLimit
	}
	return speed, t
}

// integrate 阻尼 + 显式积分（线速度和四元数）
func (b *Body) integrate(dt float64) {
	b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))

	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	if b.AngularVelocity.Len() > 0 {
		// q += 0.5 * ω * q * dt
		spin := mgl64.Quat{W: 0, V: b.AngularVelocity.Mul(0.5 * dt)}
		b.Orientation = b.Orientation.Add(spin.Mul(b.Orientation)).Normalize()
	}
}
