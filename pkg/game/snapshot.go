package game

// ModalView 弹窗的显示数据
type ModalView struct {
	Title        string
	Message      string
	ConfirmLabel string
}

// Snapshot 展示层读取的显示状态
// 展示层只读这份数据并把用户意图写回状态机，不直接接触物理世界
type Snapshot struct {
	State State

	Score        int
	Frame        int
	Ball         int
	AttemptsUsed int
	AttemptsLeft int
	KnockedPins  int

	// PowerPercent 蓄力百分比（0..100），PowerTier 为颜色档位
	PowerPercent int
	PowerTier    PowerTier

	// Direction 方向（-1..1）；DirectionPercent 为指示器左偏移百分比
	Direction        float64
	DirectionPercent float64

	StrikeVisible bool
	SpareVisible  bool

	Modal *ModalView

	LaunchLabel   string
	LaunchEnabled bool

	InstructionsVisible bool
	DirectionEnabled    bool
	AimIndicatorVisible bool

	Reward *RewardRecord
}

// Snapshot 生成当前显示状态
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:            s.state,
		Score:            s.ledger.Score(),
		Frame:            1,
		Ball:             s.ledger.NextAttempt(),
		AttemptsUsed:     s.ledger.AttemptsUsed(),
		AttemptsLeft:     s.ledger.AttemptsRemaining(),
		KnockedPins:      s.ledger.KnockedCount(),
		PowerPercent:     int(s.power + 0.5),
		PowerTier:        s.PowerTier(),
		Direction:        s.direction,
		DirectionPercent: 50 + s.direction*40,
		StrikeVisible:    s.OverlayVisible(OverlayStrike),
		SpareVisible:     s.OverlayVisible(OverlaySpare),

		InstructionsVisible: s.state == StateAiming,
		DirectionEnabled:    s.state != StateLocked,
		AimIndicatorVisible: s.state == StateAiming && !s.ledger.Locked(),
	}

	switch s.state {
	case StateLocked:
		snap.LaunchLabel = s.strings.GetString(StrLaunchLocked)
	case StateCharging:
		snap.LaunchLabel = s.strings.GetString(StrLaunchCharging)
		snap.LaunchEnabled = true
	case StateAiming:
		snap.LaunchLabel = s.strings.GetString(StrLaunchAiming)
		snap.LaunchEnabled = true
	default:
		snap.LaunchLabel = s.strings.GetString(StrLaunchWait)
	}

	if m, ok := s.Modal(); ok {
		snap.Modal = &ModalView{Title: m.Title, Message: m.Message, ConfirmLabel: m.ConfirmLabel}
	}
	if r, ok := s.ledger.Reward(); ok {
		snap.Reward = &r
	}
	return snap
}
