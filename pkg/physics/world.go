package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// contactSlop 允许的穿透深度，超出部分才做位置修正
	contactSlop = 0.002

	// correctionFactor 每步修正的穿透比例
	correctionFactor = 0.8

	// restitutionThreshold 接近速度低于该值时不反弹
	restitutionThreshold = 0.3
)

// ContactMaterial 一对材质的接触参数
type ContactMaterial struct {
	Friction    float64
	Restitution float64
}

// ContactEvent 两个动态刚体之间的接触事件
// 每个物理步、每对刚体最多产生一个事件，在该步结束后按检测顺序派发
type ContactEvent struct {
	A, B *Body

	// Normal 从 B 指向 A
	Normal mgl64.Vec3

	// ImpactSpeed 检测时沿法线的接近速度（>= 0）
	ImpactSpeed float64
}

// ContactListener 接触事件监听器
type ContactListener func(ContactEvent)

// World 刚体世界
//
// 包含 y = FloorY 的无限地面、若干静态盒子和动态刚体。
// Step 的流程：重力 → 接触检测 → 迭代冲量求解 → 位置修正 → 积分 → 休眠 → 派发接触事件。
type World struct {
	Gravity    mgl64.Vec3
	Iterations int

	// SleepSpeedLimit / SleepTimeLimit 刚体未单独设置时的休眠阈值
	SleepSpeedLimit float64
	SleepTimeLimit  float64

	FloorY        float64
	FloorMaterial string

	// DefaultMaterial 材质表中找不到时使用
	DefaultMaterial ContactMaterial

	bodies    []*Body
	boxes     []Box
	materials map[[2]string]ContactMaterial
	listeners []ContactListener

	contacts []*contact
	events   []ContactEvent
	nextID   int
}

// NewWorld 创建刚体世界
func NewWorld() *World {
	return &World{
		Gravity:         mgl64.Vec3{0, -9.81, 0},
		Iterations:      10,
		SleepSpeedLimit: 0.1,
		SleepTimeLimit:  0.5,
		DefaultMaterial: ContactMaterial{Friction: 0.3, Restitution: 0},
		materials:       make(map[[2]string]ContactMaterial),
	}
}

// AddBody 把刚体加入世界（重复加入无效）
func (w *World) AddBody(b *Body) {
	if b.inWorld {
		return
	}
	w.nextID++
	b.id = w.nextID
	b.inWorld = true
	w.bodies = append(w.bodies, b)
}

// RemoveBody 从世界移除刚体；不在世界中时无操作
func (w *World) RemoveBody(b *Body) {
	if !b.inWorld {
		return
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.inWorld = false
}

// HasBody 刚体是否在世界中
func (w *World) HasBody(b *Body) bool {
	return b != nil && b.inWorld
}

// Bodies 返回世界中的刚体（只读）
func (w *World) Bodies() []*Body {
	return w.bodies
}

// AddBox 添加静态盒子
func (w *World) AddBox(box Box) {
	w.boxes = append(w.boxes, box)
}

// Boxes 返回静态盒子（只读）
func (w *World) Boxes() []Box {
	return w.boxes
}

// SetContactMaterial 设置一对材质的接触参数（与顺序无关）
func (w *World) SetContactMaterial(a, b string, m ContactMaterial) {
	w.materials[materialKey(a, b)] = m
}

// ContactMaterialFor 查询一对材质的接触参数
func (w *World) ContactMaterialFor(a, b string) ContactMaterial {
	if m, ok := w.materials[materialKey(a, b)]; ok {
		return m
	}
	return w.DefaultMaterial
}

func materialKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// OnContact 注册接触事件监听器
func (w *World) OnContact(l ContactListener) {
	w.listeners = append(w.listeners, l)
}

// Step 推进一个固定步长
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	for _, b := range w.bodies {
		if b.sleeping {
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Mul(dt))
	}

	w.contacts = w.contacts[:0]
	w.events = w.events[:0]
	for _, b := range w.bodies {
		if b.sleeping || !b.CollisionResponse {
			continue
		}
		w.detectStatic(b)
	}
	w.detectPairs()

	iterations := w.Iterations
	if iterations < 1 {
		iterations = 1
	}
	for i := 0; i < iterations; i++ {
		for _, c := range w.contacts {
			c.solve()
		}
	}

	for _, c := range w.contacts {
		c.correctPosition()
	}

	for _, b := range w.bodies {
		if b.sleeping {
			continue
		}
		b.integrate(dt)
		w.updateSleep(b, dt)
	}

	for _, e := range w.events {
		for _, l := range w.listeners {
			l(e)
		}
	}
}

// detectStatic 刚体与地面、静态盒子的接触
// 同一几何体上的多个接触点只让最深的一个参与位置修正
func (w *World) detectStatic(b *Body) {
	up := mgl64.Vec3{0, 1, 0}
	mat := w.ContactMaterialFor(b.Material, w.FloorMaterial)

	var deepest *contact
	for _, p := range floorSupportPoints(b, true) {
		depth := b.Radius - (p[1] - w.FloorY)
		if depth <= -contactSlop {
			continue
		}
		c := w.newContact(b, nil, p.Sub(up.Mul(b.Radius)), up, depth, mat)
		if deepest == nil || depth > deepest.depth {
			deepest = c
		}
	}
	if deepest != nil {
		deepest.correct = true
	}

	for _, box := range w.boxes {
		mat := w.ContactMaterialFor(b.Material, box.Material)
		deepest = nil
		for _, p := range floorSupportPoints(b, false) {
			n, depth, ok := sphereBox(p, b.Radius, box)
			if !ok {
				continue
			}
			c := w.newContact(b, nil, p.Sub(n.Mul(b.Radius)), n, depth, mat)
			if deepest == nil || depth > deepest.depth {
				deepest = c
			}
		}
		if deepest != nil {
			deepest.correct = true
		}
	}
}

// detectPairs 动态刚体两两之间的接触
func (w *World) detectPairs() {
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		if !a.CollisionResponse {
			continue
		}
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if !b.CollisionResponse || (a.sleeping && b.sleeping) {
				continue
			}

			a0, a1 := a.Segment()
			b0, b1 := b.Segment()
			ca, cb := closestPointsSegments(a0, a1, b0, b1)
			diff := ca.Sub(cb)
			dist := diff.Len()
			reach := a.Radius + b.Radius
			if dist >= reach {
				continue
			}

			n := mgl64.Vec3{0, 1, 0}
			if dist > epsilon {
				n = diff.Mul(1 / dist)
			}
			depth := reach - dist

			w.wakeOnContact(a, b)
			w.wakeOnContact(b, a)

			point := cb.Add(n.Mul(b.Radius - depth/2))
			c := w.newContact(a, b, point, n, depth, w.ContactMaterialFor(a.Material, b.Material))
			c.correct = true

			w.events = append(w.events, ContactEvent{
				A:           a,
				B:           b,
				Normal:      n,
				ImpactSpeed: math.Max(0, -c.approach),
			})
		}
	}
}

// wakeOnContact 休眠刚体被足够快的刚体碰到时唤醒
func (w *World) wakeOnContact(sleeper, other *Body) {
	if !sleeper.sleeping || other.sleeping {
		return
	}
	limit, _ := sleeper.sleepLimits(w)
	rel := other.Velocity.Sub(sleeper.Velocity).Len()
	if rel >= limit {
		sleeper.Wake()
	}
}

func (w *World) newContact(a, b *Body, point, normal mgl64.Vec3, depth float64, mat ContactMaterial) *contact {
	c := &contact{
		a:        a,
		b:        b,
		point:    point,
		normal:   normal,
		depth:    depth,
		material: mat,
	}
	c.prepare()
	w.contacts = append(w.contacts, c)
	return c
}

// updateSleep 速度持续低于阈值一段时间后进入休眠
func (w *World) updateSleep(b *Body, dt float64) {
	speedLimit, timeLimit := b.sleepLimits(w)
	v2 := b.Velocity.Dot(b.Velocity) + b.AngularVelocity.Dot(b.AngularVelocity)
	if v2 < speedLimit*speedLimit {
		b.idleTime += dt
		if b.idleTime > timeLimit {
			b.Sleep()
		}
		return
	}
	b.idleTime = 0
}
