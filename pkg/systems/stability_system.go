package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/qscasino/bolosspirita/pkg/components"
	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/physics"
)

// PinState 冲量模型读取的球瓶状态
type PinState struct {
	Entity   ecs.EntityID
	Index    int
	Position mgl64.Vec3
}

// ImpulseDirective 冲量模型的输出：对某个球瓶施加的冲量
type ImpulseDirective struct {
	Entity ecs.EntityID
	Index  int

	Impulse mgl64.Vec3

	// Offset 作用点相对瓶心的偏移
	Offset mgl64.Vec3
}

// ImpactModel 球撞瓶的冲击冲量模型
//
// 输入只有球的位置/速度、出手力度和球瓶位置，不依赖物理引擎的事件结构。
// 冲量大小 = (Base + 球速*SpeedGain) * (PowerBase + 力度*PowerGain) * (CenterBase + 居中*CenterGain)，
// 主瓶沿 -Z 方向受力，半径内的其他球瓶按 (1 - d/r) 衰减。
type ImpactModel struct {
	cfg       config.ImpulseConfig
	lastShock float64
}

// NewImpactModel 创建冲量模型
func NewImpactModel(cfg config.ImpulseConfig) *ImpactModel {
	return &ImpactModel{
		cfg:       cfg,
		lastShock: math.Inf(-1),
	}
}

// CenterFactor 球的居中系数：球在中线时为 1，横向偏移达到 CenterHalfWidth 时为 0
func (m *ImpactModel) CenterFactor(ballX float64) float64 {
	return 1 - clampFloat(math.Abs(ballX)/m.cfg.CenterHalfWidth, 0, 1)
}

// Magnitude 主瓶冲量大小
func (m *ImpactModel) Magnitude(ballSpeed, power, center float64) float64 {
	c := m.cfg
	return (c.Base + ballSpeed*c.SpeedGain) * (c.PowerBase + power*c.PowerGain) * (c.CenterBase + center*c.CenterGain)
}

// Directives 计算一次球-瓶接触产生的冲量
//
// 参数:
//   - now: 当前时刻（秒）
//   - ballPos, ballVel: 球的位置和速度
//   - power: 出手力度（0..1）
//   - primary: 被撞的球瓶
//   - pins: 仍在球道上的全部球瓶（可包含 primary）
//
// 返回:
//   - []ImpulseDirective: 第一项为主瓶；处于全局冷却或球速过低时为 nil
func (m *ImpactModel) Directives(now float64, ballPos, ballVel mgl64.Vec3, power float64, primary PinState, pins []PinState) []ImpulseDirective {
	c := m.cfg
	if now-m.lastShock < c.ShockCooldown {
		return nil
	}
	m.lastShock = now

	speed := ballVel.Len()
	if speed < c.MinBallSpeed {
		return nil
	}

	center := m.CenterFactor(ballPos.X())
	mag := m.Magnitude(speed, power, center)
	offset := mgl64.Vec3{0, c.Lever, 0}

	dx := clampFloat(primary.Position.X()-ballPos.X(), -c.LateralClamp, c.LateralClamp)
	dir := mgl64.Vec3{dx * c.LateralGain, c.Lift, -1}.Normalize()

	out := []ImpulseDirective{{
		Entity:  primary.Entity,
		Index:   primary.Index,
		Impulse: dir.Mul(mag),
		Offset:  offset,
	}}

	radius := c.NeighborRadius + center*c.NeighborCenterGain
	for _, p := range pins {
		if p.Entity == primary.Entity {
			continue
		}
		dxn := p.Position.X() - primary.Position.X()
		dzn := p.Position.Z() - primary.Position.Z()
		dist := math.Hypot(dxn, dzn)
		if dist > radius {
			continue
		}

		t := 1 - dist/radius
		ndir := mgl64.Vec3{
			clampFloat(dxn*c.NeighborLateralGain, -c.NeighborLateralClamp, c.NeighborLateralClamp),
			c.NeighborLift,
			-1,
		}.Normalize()

		out = append(out, ImpulseDirective{
			Entity:  p.Entity,
			Index:   p.Index,
			Impulse: ndir.Mul(mag * c.NeighborScale * t),
			Offset:  offset,
		})
	}
	return out
}

// StabilitySystem 物理稳定系统
//
// 职责：
// - 每个物理步之后钳制球瓶的线速度和角速度
// - 监听球-瓶接触，按冲量模型补充冲击冲量，并触发撞击音效
//
// 冷却时间使用模拟时钟（累计的物理步长）。
type StabilitySystem struct {
	entityManager *ecs.EntityManager
	session       *game.Session
	ball          ecs.EntityID

	clamp config.ClampConfig
	cfg   config.ImpulseConfig
	model *ImpactModel

	simTime float64
}

// NewStabilitySystem 创建物理稳定系统
//
// 参数:
//   - em: 实体管理器
//   - session: 球道会话
//   - ball: 球实体
func NewStabilitySystem(em *ecs.EntityManager, session *game.Session, ball ecs.EntityID) *StabilitySystem {
	cfg := session.Config()
	return &StabilitySystem{
		entityManager: em,
		session:       session,
		ball:          ball,
		clamp:         cfg.Clamp,
		cfg:           cfg.Impulse,
		model:         NewImpactModel(cfg.Impulse),
	}
}

// Register 在物理世界上注册接触监听
func (s *StabilitySystem) Register(world *physics.World) {
	world.OnContact(s.HandleContact)
}

// SimTime 累计模拟时间（秒）
func (s *StabilitySystem) SimTime() float64 {
	return s.simTime
}

// AfterStep 每个物理步之后调用
func (s *StabilitySystem) AfterStep(dt float64) {
	s.simTime += dt
	s.ClampPins()
}

// ClampPins 钳制所有在场球瓶的速度
func (s *StabilitySystem) ClampPins() {
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.RigidBodyComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		if pin.IsRemoved {
			continue
		}
		ClampBody(rb.Body, s.clamp)
	}
}

// ClampBody 按配置钳制单个刚体的速度
func ClampBody(b *physics.Body, c config.ClampConfig) {
	v := b.Velocity
	b.Velocity = mgl64.Vec3{
		clampFloat(v.X(), c.VelX.Min, c.VelX.Max),
		clampFloat(v.Y(), c.VelY.Min, c.VelY.Max),
		clampFloat(v.Z(), c.VelZ.Min, c.VelZ.Max),
	}
	w := b.AngularVelocity
	b.AngularVelocity = mgl64.Vec3{
		clampFloat(w.X(), -c.AngularMax, c.AngularMax),
		clampFloat(w.Y(), -c.AngularMax, c.AngularMax),
		clampFloat(w.Z(), -c.AngularMax, c.AngularMax),
	}
}

// HandleContact 处理接触事件：只关心球与在场球瓶的接触
func (s *StabilitySystem) HandleContact(ev physics.ContactEvent) {
	rbBall, ok := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, s.ball)
	if !ok {
		return
	}
	ballBody := rbBall.Body

	var other *physics.Body
	switch ballBody {
	case ev.A:
		other = ev.B
	case ev.B:
		other = ev.A
	default:
		return
	}

	primaryID, pin, ok := s.pinForBody(other)
	if !ok || pin.IsRemoved {
		return
	}

	now := s.simTime
	if pin.LastImpact >= 0 && now-pin.LastImpact < s.cfg.PinCooldown {
		return
	}
	pin.LastImpact = now

	impact := ev.ImpactSpeed
	if impact == 0 {
		impact = ballBody.Speed()
	}
	s.session.PlayHit(impact)

	power := 0.0
	if t := s.session.Throw(); t != nil {
		power = t.Power
	}

	pins := s.pinStates()
	primary := PinState{Entity: primaryID, Index: pin.Index, Position: other.Position}
	for _, d := range s.model.Directives(now, ballBody.Position, ballBody.Velocity, power, primary, pins) {
		rb, ok := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, d.Entity)
		if !ok {
			continue
		}
		rb.Body.ApplyImpulse(d.Impulse, d.Offset)
	}
}

func (s *StabilitySystem) pinForBody(body *physics.Body) (ecs.EntityID, *components.PinComponent, bool) {
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.RigidBodyComponent](s.entityManager) {
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		if rb.Body != body {
			continue
		}
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		return id, pin, true
	}
	return 0, nil, false
}

// pinStates 仍在球道上的球瓶（包括已倒下但尚未移除的）
func (s *StabilitySystem) pinStates() []PinState {
	ids := ecs.GetEntitiesWith2[*components.PinComponent, *components.RigidBodyComponent](s.entityManager)
	out := make([]PinState, 0, len(ids))
	for _, id := range ids {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		if pin.IsRemoved {
			continue
		}
		out = append(out, PinState{Entity: id, Index: pin.Index, Position: rb.Body.Position})
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
