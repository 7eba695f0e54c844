package game

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/qscasino/bolosspirita/pkg/config"
)

// State 投球状态机的状态
type State string

const (
	// StateAiming 瞄准：可以调整方向、开始蓄力
	StateAiming State = "aiming"

	// StateCharging 蓄力：力度在 0..100 之间往返振荡
	StateCharging State = "charging"

	// StateThrowing 球已出手，等待出界捕获或停球
	StateThrowing State = "throwing"

	// StateWaiting 投球已结束，等待球瓶静止后结算
	StateWaiting State = "waiting"

	// StateResetting 尝试用尽或正在完整重置
	StateResetting State = "resetting"

	// StateLocked 已获得奖励，终止状态
	StateLocked State = "locked"
)

// 调度器中的命名任务
const (
	TaskCharge       = "charge"
	TaskResolve      = "resolve"
	TaskReset        = "reset"
	TaskLockedNotice = "locked-notice"
	taskOverlay      = "overlay:"
)

// Overlay 短暂显示的提示
type Overlay string

const (
	OverlayStrike Overlay = "strike"
	OverlaySpare  Overlay = "spare"
)

// PowerTier 力度颜色档位
type PowerTier string

const (
	PowerTierLow  PowerTier = "low"
	PowerTierMid  PowerTier = "mid"
	PowerTierHigh PowerTier = "high"
)

// 音效事件名称
const (
	SoundCharge  = "charge"
	SoundThrow   = "throw"
	SoundHit     = "hit"
	SoundStrike  = "strike"
	SoundSpare   = "spare"
	SoundReward  = "reward"
	SoundFail    = "fail"
	SoundAmbient = "ambient"
)

// SoundPlayer 音效播放（即发即忘，失败静默）
type SoundPlayer interface {
	PlaySound(name string, volume float64)
}

// ThrowSession 一次出手到结算的过程
type ThrowSession struct {
	// Power 出手力度（0..1）
	Power float64

	// Direction 出手方向（-1..1）
	Direction float64

	// LaunchTime 出手时刻（会话时钟）
	LaunchTime float64

	// Baseline 出手前累计倒瓶数
	Baseline int

	// Completed 已进入等待结算（throwing → waiting 只发生一次）
	Completed bool

	// Resolved 已结算（结算逻辑只执行一次）
	Resolved bool
}

// Modal 弹窗请求
type Modal struct {
	Title        string
	Message      string
	ConfirmLabel string

	// OnConfirm 确认回调，可为 nil
	OnConfirm func()
}

// Session 一个球道会话
//
// 持有状态机状态、方向、蓄力、当前投球、账本、调度器以及 HUD 状态。
// 所有子系统通过显式传入的 *Session 共享这些数据，不使用全局变量。
type Session struct {
	cfg     *config.LaneConfig
	strings *LaneStrings

	state     State
	direction float64

	// power 显示用的蓄力值（0..100）
	power     float64
	powerStep float64

	throw *ThrowSession

	ledger    *Ledger
	scheduler *Scheduler
	store     RewardStore
	sound     SoundPlayer
	metrics   *Metrics

	overlays     map[Overlay]bool
	modal        *Modal
	lastHitSound float64

	// Clock 奖励时间戳来源（测试可替换）
	Clock func() time.Time
}

// SessionOptions 会话的外部协作者，均可为零值
type SessionOptions struct {
	Store   RewardStore
	Sound   SoundPlayer
	Metrics *Metrics
	Strings *LaneStrings
}

// NewSession 创建会话并读取已保存的奖励
//
// 存储中有合法记录时，会话直接进入锁定状态，并在短暂延迟后弹出"奖励已获得"提示。
// 记录缺失、损坏或读取失败都视为无记录。
//
// 参数:
//   - cfg: 球道配置
//   - opts: 存储、音效、指标等协作者
func NewSession(cfg *config.LaneConfig, opts SessionOptions) *Session {
	s := &Session{
		cfg:          cfg,
		strings:      opts.Strings,
		state:        StateAiming,
		ledger:       NewLedger(cfg.Reward),
		scheduler:    NewScheduler(),
		store:        opts.Store,
		sound:        opts.Sound,
		metrics:      opts.Metrics,
		overlays:     make(map[Overlay]bool),
		lastHitSound: math.Inf(-1),
		Clock:        time.Now,
	}
	if s.strings == nil {
		s.strings = DefaultLaneStrings()
	}
	if s.store == nil {
		s.store = NewMemoryRewardStore(nil)
	}

	s.loadReward()
	return s
}

func (s *Session) loadReward() {
	record, err := s.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoReward) {
			log.Printf("[Session] Warning: ignoring saved reward: %v", err)
		}
		return
	}

	s.ledger.Lock(record)
	s.state = StateLocked
	log.Printf("[Session] Saved reward found: bonus=%d attempt=%d, starting locked", record.Bonus, record.AttemptNumber)

	s.scheduler.AfterNamed(TaskLockedNotice, s.cfg.Timing.LockedNoticeDelay, func() {
		s.ShowModal(Modal{
			Title:        s.strings.GetString(StrModalReloadTitle),
			Message:      s.strings.Format(StrModalReloadMessage, record.Bonus),
			ConfirmLabel: s.strings.GetString(StrModalConfirm),
		})
	})
}

// Config 球道配置
func (s *Session) Config() *config.LaneConfig { return s.cfg }

// Strings 界面文本
func (s *Session) Strings() *LaneStrings { return s.strings }

// Ledger 账本
func (s *Session) Ledger() *Ledger { return s.ledger }

// Scheduler 延迟任务调度器
func (s *Session) Scheduler() *Scheduler { return s.scheduler }

// Metrics 计数器（可能为 nil）
func (s *Session) Metrics() *Metrics { return s.metrics }

// Now 会话时钟（秒）
func (s *Session) Now() float64 { return s.scheduler.Now() }

// Update 推进会话时钟并执行到期任务
func (s *Session) Update(dt float64) {
	s.scheduler.Advance(dt)
}

// State 当前状态
func (s *Session) State() State { return s.state }

// Locked 是否已锁定
func (s *Session) Locked() bool { return s.ledger.Locked() }

// SetState 切换状态；账本锁定后任何切换都被强制为 locked
func (s *Session) SetState(next State) {
	if s.ledger.Locked() {
		next = StateLocked
	}
	if next != s.state {
		log.Printf("[Session] State %s -> %s", s.state, next)
	}
	s.state = next
}

// Direction 当前方向（-1..1）
func (s *Session) Direction() float64 { return s.direction }

// SetDirection 设置方向（钳制到 -1..1）；锁定时无操作
// 返回: 是否生效
func (s *Session) SetDirection(d float64) bool {
	if s.ledger.Locked() {
		return false
	}
	s.direction = clamp(d, -1, 1)
	return true
}

// Power 显示用的蓄力百分比（0..100）
func (s *Session) Power() float64 { return s.power }

// PowerFraction 蓄力比例（0..1）
func (s *Session) PowerFraction() float64 { return s.power / 100 }

// PowerTier 蓄力颜色档位：<30 低，<70 中，其余高
func (s *Session) PowerTier() PowerTier {
	return PowerTierFor(s.power)
}

// PowerTierFor 返回蓄力百分比对应的档位
func PowerTierFor(percent float64) PowerTier {
	switch {
	case percent < 30:
		return PowerTierLow
	case percent < 70:
		return PowerTierMid
	default:
		return PowerTierHigh
	}
}

// StartChargeOscillation 开始蓄力振荡
// 力度从 0 开始，每个间隔前进一步，到 100 或 0 时反向；旧的振荡任务会被取代
func (s *Session) StartChargeOscillation() {
	s.power = 0
	s.powerStep = s.cfg.Timing.ChargeStep
	s.scheduler.EveryNamed(TaskCharge, s.cfg.Timing.ChargeInterval, s.stepCharge)
}

// StopChargeOscillation 停止蓄力振荡，保留当前力度
func (s *Session) StopChargeOscillation() {
	s.scheduler.CancelNamed(TaskCharge)
}

func (s *Session) stepCharge() {
	s.power += s.powerStep
	if s.power >= 100 {
		s.power = 100
		s.powerStep = -math.Abs(s.powerStep)
	} else if s.power <= 0 {
		s.power = 0
		s.powerStep = math.Abs(s.powerStep)
	}
}

// Throw 当前投球（未出手时为 nil）
func (s *Session) Throw() *ThrowSession { return s.throw }

// BeginThrow 以当前力度和方向开始一次投球
func (s *Session) BeginThrow() *ThrowSession {
	s.throw = &ThrowSession{
		Power:      s.PowerFraction(),
		Direction:  s.direction,
		LaunchTime: s.Now(),
		Baseline:   s.ledger.KnockedCount(),
	}
	return s.throw
}

// EndThrow 丢弃当前投球
func (s *Session) EndThrow() {
	s.throw = nil
}

// GrantReward 锁定账本、写入奖励记录并进入 locked
// 存储失败只记日志
func (s *Session) GrantReward(attemptNumber int) RewardRecord {
	record := RewardRecord{
		Bonus:         s.ledger.Bonus(attemptNumber),
		AttemptNumber: attemptNumber,
		Timestamp:     s.Clock().UnixMilli(),
	}
	s.ledger.Lock(record)
	if err := s.store.Save(record); err != nil {
		log.Printf("[Session] Warning: failed to persist reward: %v", err)
	}
	s.metrics.RewardGranted(record.Bonus, attemptNumber)
	s.SetState(StateLocked)
	return record
}

// ShowOverlay 显示提示，OverlayDuration 后自动隐藏
func (s *Session) ShowOverlay(o Overlay) {
	s.overlays[o] = true
	s.scheduler.AfterNamed(taskOverlay+string(o), s.cfg.Timing.OverlayDuration, func() {
		s.overlays[o] = false
	})
}

// OverlayVisible 提示是否显示中
func (s *Session) OverlayVisible(o Overlay) bool {
	return s.overlays[o]
}

// ShowModal 显示弹窗（替换当前弹窗）
func (s *Session) ShowModal(m Modal) {
	mm := m
	s.modal = &mm
}

// Modal 当前弹窗
func (s *Session) Modal() (Modal, bool) {
	if s.modal == nil {
		return Modal{}, false
	}
	return *s.modal, true
}

// ConfirmModal 关闭弹窗并执行确认回调
func (s *Session) ConfirmModal() {
	if s.modal == nil {
		return
	}
	m := s.modal
	s.modal = nil
	if m.OnConfirm != nil {
		m.OnConfirm()
	}
}

// PlaySound 播放音效（无播放器时忽略）
func (s *Session) PlaySound(name string, volume float64) {
	if s.sound == nil {
		return
	}
	s.sound.PlaySound(name, volume)
}

// PlayHit 播放撞击音效，按 HitSoundInterval 节流，音量随冲击速度变化
func (s *Session) PlayHit(impactSpeed float64) {
	now := s.Now()
	if now-s.lastHitSound <= s.cfg.Timing.HitSoundInterval {
		return
	}
	s.lastHitSound = now
	s.PlaySound(SoundHit, clamp(impactSpeed/10, 0.12, 0.85))
}

// ClearHUD 清除提示和弹窗
func (s *Session) ClearHUD() {
	for o := range s.overlays {
		s.overlays[o] = false
		s.scheduler.CancelNamed(taskOverlay + string(o))
	}
	s.modal = nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
