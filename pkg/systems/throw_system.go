package systems

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/qscasino/bolosspirita/pkg/components"
	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
	"github.com/qscasino/bolosspirita/pkg/entities"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/physics"
)

// ThrowSystem 投球状态机
//
// 状态流转：
//
//	aiming → charging → throwing → waiting → aiming | locked | resetting
//	resetting → aiming（延迟后）
//
// 用户意图（方向、蓄力、出手、重置）在不合法的状态下都是静默的空操作。
// 账本锁定后 Session.SetState 会把任何切换强制为 locked。
type ThrowSystem struct {
	entityManager *ecs.EntityManager
	session       *game.Session
	world         *physics.World
	knock         *KnockDetectionSystem

	ball ecs.EntityID
	cfg  *config.LaneConfig
}

// NewThrowSystem 创建投球状态机
//
// 参数:
//   - em: 实体管理器
//   - session: 球道会话
//   - world: 物理世界
//   - knock: 倒瓶检测系统
//   - ball: 球实体
//
// 返回:
//   - *ThrowSystem: 系统实例
func NewThrowSystem(em *ecs.EntityManager, session *game.Session, world *physics.World, knock *KnockDetectionSystem, ball ecs.EntityID) *ThrowSystem {
	return &ThrowSystem{
		entityManager: em,
		session:       session,
		world:         world,
		knock:         knock,
		ball:          ball,
		cfg:           session.Config(),
	}
}

// Start 把球放到瞄准位置（会话开始时调用一次）
func (s *ThrowSystem) Start() {
	s.placeBallForAiming(s.session.Direction())
}

// SetDirection 设置方向（-1..1）；瞄准中会同步移动球
func (s *ThrowSystem) SetDirection(d float64) {
	if !s.session.SetDirection(d) {
		return
	}
	if s.session.State() == game.StateAiming {
		s.placeBallForAiming(s.session.Direction())
	}
}

// AdjustDirection 方向键微调，只在瞄准时生效
func (s *ThrowSystem) AdjustDirection(delta float64) {
	if s.session.Locked() || s.session.State() != game.StateAiming {
		return
	}
	s.SetDirection(s.session.Direction() + delta)
}

// StartCharge 开始蓄力（aiming → charging）
func (s *ThrowSystem) StartCharge() {
	if s.session.Locked() || s.session.State() != game.StateAiming {
		return
	}
	s.session.PlaySound(game.SoundCharge, 0.9)
	s.session.SetState(game.StateCharging)
	s.session.StartChargeOscillation()
}

// ReleaseCharge 松开蓄力并出手（charging → throwing）
// 非蓄力状态下调用是空操作，松开和离开按钮都可以安全地调用它
func (s *ThrowSystem) ReleaseCharge() {
	if s.session.Locked() || s.session.State() != game.StateCharging {
		return
	}
	s.session.StopChargeOscillation()
	s.session.PlaySound(game.SoundThrow, 0.95)
	s.doThrow()
}

// RequestReset 请求完整重置
// 锁定时无效；进行中的投球会被放弃，球立即停放到场外，
// ResetDelay 后球瓶和球回到初始位置，倒瓶集合、分数和尝试次数在同一时刻清空
func (s *ThrowSystem) RequestReset() {
	if s.session.Locked() {
		log.Printf("[ThrowSystem] Reset rejected: %v", game.ErrLedgerLocked)
		return
	}

	sched := s.session.Scheduler()
	sched.CancelNamed(game.TaskCharge)
	sched.CancelNamed(game.TaskResolve)
	s.session.EndThrow()
	s.session.ClearHUD()
	s.session.Metrics().GameReset()

	if ball, body, ok := s.ballParts(); ok {
		s.park(ball, body)
	}

	s.session.SetState(game.StateResetting)
	sched.AfterNamed(game.TaskReset, s.cfg.Timing.ResetDelay, func() {
		s.resetPins()
		if err := s.session.Ledger().Reset(); err != nil {
			log.Printf("[ThrowSystem] Ledger reset rejected: %v", err)
		}
		s.resetBall(true)
		s.session.SetState(game.StateAiming)
		s.placeBallForAiming(s.session.Direction())
		log.Printf("[ThrowSystem] Game reset complete")
	})
}

// doThrow 以当前力度和方向出手
func (s *ThrowSystem) doThrow() {
	state := s.session.State()
	if s.session.Locked() || (state != game.StateCharging && state != game.StateAiming) {
		return
	}
	ball, body, ok := s.ballParts()
	if !ok || ball.HasThrown {
		return
	}
	if !s.session.Ledger().CanThrow() {
		return
	}

	s.session.SetState(game.StateThrowing)
	throw := s.session.BeginThrow()

	ball.HasThrown = true
	ball.Captured = false
	ball.Visible = true
	body.CollisionResponse = true

	for _, b := range s.world.Bodies() {
		b.Wake()
	}

	velocity, spin := LaunchVelocity(s.cfg.Throw, throw.Power, throw.Direction)
	body.Velocity = velocity
	body.AngularVelocity = spin

	s.session.Metrics().ThrowReleased(s.session.Ledger().NextAttempt())
	log.Printf("[ThrowSystem] Ball released: power=%.2f direction=%.2f speed=%.2f", throw.Power, throw.Direction, velocity.Len())
}

// LaunchVelocity 出手速度和旋转
//
// 参数:
//   - cfg: 出手参数
//   - power: 力度（0..1）
//   - direction: 方向（-1..1）
//
// 返回:
//   - velocity: 线速度，主要沿 -Z
//   - spin: 角速度
func LaunchVelocity(cfg config.ThrowConfig, power, direction float64) (mgl64.Vec3, mgl64.Vec3) {
	speed := cfg.BaseSpeed + power*cfg.PowerSpeed
	side := math.Sin(direction * cfg.MaxAngle)

	velocity := mgl64.Vec3{side * speed * cfg.LateralFactor, 0, -speed}
	spin := mgl64.Vec3{-speed * cfg.SpinFactor, side * cfg.SpinYaw, 0}
	return velocity, spin
}

// Update 每帧在物理步进之后调用
// 顺序：出界捕获 → 倒瓶采样 → 停球判定
func (s *ThrowSystem) Update(dt float64) {
	ball, body, ok := s.ballParts()
	if !ok {
		return
	}

	if s.inFlight(ball) && ShouldCapture(s.cfg.Capture, body.Position) {
		s.capture(ball, body)
		s.completeThrow()
	}

	// 重置期间球瓶位姿即将作废
	if s.session.State() != game.StateResetting {
		s.knock.Sample()
	}

	if s.inFlight(ball) && s.ballStopped(body) {
		s.completeThrow()
	}
}

func (s *ThrowSystem) inFlight(ball *components.BallComponent) bool {
	return s.session.State() == game.StateThrowing && ball.HasThrown && !ball.Captured
}

// ShouldCapture 球是否离开了捕获包络（远端、横向或纵向越界）
func ShouldCapture(cfg config.CaptureConfig, p mgl64.Vec3) bool {
	return p.Z() < cfg.Z || math.Abs(p.X()) > cfg.X || p.Y() > cfg.YHigh || p.Y() < cfg.YLow
}

// ballStopped 出手足够久、已经前进，且速度过低或已远离瓶区
func (s *ThrowSystem) ballStopped(body *physics.Body) bool {
	throw := s.session.Throw()
	if throw == nil {
		return false
	}
	t := s.cfg.Throw
	elapsed := s.session.Now() - throw.LaunchTime
	movedForward := body.Position.Z() < t.ForwardZ
	return elapsed > t.MinElapsed && movedForward && (body.Speed() < t.StopSpeed || body.Position.Z() < t.FarZ)
}

// capture 隐藏球、清零速度、关闭碰撞并停放到场景之外
func (s *ThrowSystem) capture(ball *components.BallComponent, body *physics.Body) {
	if ball.Captured {
		return
	}
	s.park(ball, body)
	log.Printf("[ThrowSystem] Ball captured out of bounds")
}

// park 把球移出碰撞并停放到场景之外
func (s *ThrowSystem) park(ball *components.BallComponent, body *physics.Body) {
	ball.Captured = true
	ball.Visible = false
	body.CollisionResponse = false
	body.SetPose(vec3(s.cfg.Capture.ParkPosition), mgl64.QuatIdent())
	body.Sleep()
}

// completeThrow throwing → waiting，SettleDelay 后结算
// 捕获和停球两条路径可能在同一帧先后触发，只有第一次生效
func (s *ThrowSystem) completeThrow() {
	if s.session.State() != game.StateThrowing {
		return
	}
	throw := s.session.Throw()
	if throw == nil || throw.Completed {
		return
	}
	throw.Completed = true

	s.session.SetState(game.StateWaiting)
	s.session.Scheduler().AfterNamed(game.TaskResolve, s.cfg.Timing.SettleDelay, s.resolveThrow)
}

// resolveThrow 结算一次投球
func (s *ThrowSystem) resolveThrow() {
	throw := s.session.Throw()
	if throw == nil || throw.Resolved {
		return
	}
	throw.Resolved = true

	s.knock.Finalize()

	ledger := s.session.Ledger()
	total := ledger.KnockedCount()
	thisThrow := total - throw.Baseline
	if thisThrow < 0 {
		thisThrow = 0
	}
	attempt := ledger.NextAttempt()

	ledger.AddPins(thisThrow)
	s.session.Metrics().PinsKnocked(thisThrow)
	log.Printf("[ThrowSystem] Throw resolved: attempt=%d knocked=%d total=%d score=%d", attempt, thisThrow, total, ledger.Score())

	if total >= config.PinCount {
		s.grantReward(attempt)
		s.session.EndThrow()
		return
	}

	exhausted := ledger.ConsumeAttempt()
	s.retireKnockedPins()
	s.session.EndThrow()

	if exhausted {
		s.session.SetState(game.StateResetting)
		s.session.PlaySound(game.SoundFail, 0.95)
		s.session.Metrics().AttemptsExhausted()

		str := s.session.Strings()
		s.session.ShowModal(game.Modal{
			Title:        str.GetString(game.StrModalExhaustedTitle),
			Message:      str.GetString(game.StrModalExhaustedMessage),
			ConfirmLabel: str.GetString(game.StrModalExhaustedConfirm),
			OnConfirm:    s.RequestReset,
		})
		log.Printf("[ThrowSystem] Attempts exhausted")
		return
	}

	s.session.SetState(game.StateAiming)
	s.resetBall(false)
	s.placeBallForAiming(s.session.Direction())
}

func (s *ThrowSystem) grantReward(attempt int) {
	if attempt == 1 {
		s.session.ShowOverlay(game.OverlayStrike)
		s.session.PlaySound(game.SoundStrike, 1)
	} else {
		s.session.ShowOverlay(game.OverlaySpare)
		s.session.PlaySound(game.SoundSpare, 1)
	}
	s.session.PlaySound(game.SoundReward, 0.95)

	record := s.session.GrantReward(attempt)

	str := s.session.Strings()
	s.session.ShowModal(game.Modal{
		Title:        str.GetString(game.StrModalSuccessTitle),
		Message:      str.Format(game.StrModalSuccessMessage, record.Bonus),
		ConfirmLabel: str.GetString(game.StrModalConfirm),
	})
	log.Printf("[ThrowSystem] Reward granted: bonus=%d attempt=%d", record.Bonus, attempt)
}

// retireKnockedPins 把已倒下的球瓶移出物理世界并隐藏
// 仍站立的球瓶保持原样
func (s *ThrowSystem) retireKnockedPins() {
	retired := 0
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.RigidBodyComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		if !pin.IsKnocked || pin.IsRemoved {
			continue
		}
		pin.IsRemoved = true
		s.world.RemoveBody(rb.Body)
		retired++
	}
	if retired > 0 {
		log.Printf("[ThrowSystem] Retired %d knocked pin(s)", retired)
	}
}

// resetPins 所有球瓶回到初始站立位姿并重新加入物理世界
func (s *ThrowSystem) resetPins() {
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.RigidBodyComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)

		pin.IsKnocked = false
		pin.IsRemoved = false
		pin.LastImpact = -1

		if !s.world.HasBody(rb.Body) {
			s.world.AddBody(rb.Body)
		}
		entities.StandPin(rb.Body, pin.InitialPosition, s.cfg.Lane.PinStandEpsilon)
	}
}

// resetBall 清除出手标记并恢复碰撞；hard 为 true 时回到起点并把方向归零
func (s *ThrowSystem) resetBall(hard bool) {
	ball, body, ok := s.ballParts()
	if !ok {
		return
	}
	ball.HasThrown = false
	ball.Captured = false
	ball.Visible = true
	body.CollisionResponse = true

	pos := body.Position
	if hard {
		pos = vec3(s.cfg.Lane.BallStart)
		s.session.SetDirection(0)
	}
	body.SetPose(pos, mgl64.QuatIdent())
}

// placeBallForAiming 把球放到瞄准位置 (dir*AimLateralScale, y, z) 并休眠
func (s *ThrowSystem) placeBallForAiming(dir float64) {
	if s.session.Locked() || s.session.State() != game.StateAiming {
		return
	}
	ball, body, ok := s.ballParts()
	if !ok {
		return
	}
	ball.Visible = true
	body.CollisionResponse = true

	start := s.cfg.Lane.BallStart
	body.SetPose(mgl64.Vec3{dir * s.cfg.Lane.AimLateralScale, start[1], start[2]}, mgl64.QuatIdent())
	body.Sleep()
}

func (s *ThrowSystem) ballParts() (*components.BallComponent, *physics.Body, bool) {
	ball, ok := ecs.GetComponent[*components.BallComponent](s.entityManager, s.ball)
	if !ok {
		return nil, nil, false
	}
	rb, ok := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, s.ball)
	if !ok {
		return nil, nil, false
	}
	return ball, rb.Body, true
}

func vec3(v config.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}
