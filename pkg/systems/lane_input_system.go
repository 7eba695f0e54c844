package systems

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/utils"
)

// InputFrame 一帧的输入快照
// 由 ReadInputFrame 从 ebiten 读取，测试中可直接构造
type InputFrame struct {
	// Pointer 鼠标左键或第一个触点
	Pointer  utils.PointerPhase
	PointerX float64
	PointerY float64

	// DirectionSteps 方向键步数：左 -1，右 +1（按住连发）
	DirectionSteps int

	LaunchPressed  bool
	LaunchReleased bool
	ResetPressed   bool
	ConfirmPressed bool
}

// ReadInputFrame 从 ebiten 读取本帧输入
func ReadInputFrame(pointer *utils.PointerTracker) InputFrame {
	pointer.Update()
	x, y := pointer.Position()

	f := InputFrame{
		Pointer:        pointer.Phase(),
		PointerX:       float64(x),
		PointerY:       float64(y),
		LaunchPressed:  utils.IsAnyKeyJustPressed(ebiten.KeySpace, ebiten.KeyEnter),
		LaunchReleased: utils.IsAnyKeyJustReleased(ebiten.KeySpace, ebiten.KeyEnter),
		ResetPressed:   utils.IsAnyKeyJustPressed(ebiten.KeyR),
		ConfirmPressed: utils.IsAnyKeyJustPressed(ebiten.KeyEnter, ebiten.KeyEscape),
	}
	if utils.IsKeyRepeating(ebiten.KeyArrowLeft) {
		f.DirectionSteps--
	}
	if utils.IsKeyRepeating(ebiten.KeyArrowRight) {
		f.DirectionSteps++
	}
	return f
}

// LaneInputSystem 把输入快照翻译为投球意图
//
// 控件：
//   - 方向条：按下或拖动时按横向位置设置方向（-1..1）
//   - 发射按钮：按下开始蓄力，松开或移出按钮时出手
//   - 键盘：←/→ 微调方向，空格/回车按住蓄力、松开出手，R 重置
//   - 弹窗：确认按钮或回车关闭
//
// 锁定后在这里直接丢弃所有修改性输入（状态机内部也会再次拦截）。
type LaneInputSystem struct {
	session *game.Session
	throw   *ThrowSystem
	step    float64

	draggingDirection bool
	holdingLaunch     bool
}

// NewLaneInputSystem 创建输入系统
func NewLaneInputSystem(session *game.Session, throw *ThrowSystem) *LaneInputSystem {
	return &LaneInputSystem{
		session: session,
		throw:   throw,
		step:    session.Config().Input.DirectionStep,
	}
}

// Apply 处理一帧输入
func (s *LaneInputSystem) Apply(f InputFrame) {
	if f.Pointer == utils.PointerReleased || f.Pointer == utils.PointerIdle {
		s.draggingDirection = false
	}

	if _, open := s.session.Modal(); open {
		s.holdingLaunch = false
		s.draggingDirection = false
		if f.ConfirmPressed || (f.Pointer == utils.PointerPressed && InModalButton(f.PointerX, f.PointerY)) {
			s.session.ConfirmModal()
		}
		return
	}

	if s.session.Locked() {
		s.holdingLaunch = false
		s.draggingDirection = false
		return
	}

	if f.ResetPressed {
		s.throw.RequestReset()
		return
	}

	s.applyPointer(f)
	s.applyKeys(f)
}

func (s *LaneInputSystem) applyPointer(f InputFrame) {
	switch f.Pointer {
	case utils.PointerPressed:
		if InDirectionBar(f.PointerX, f.PointerY) {
			s.draggingDirection = true
			s.throw.SetDirection(DirectionFromScreenX(f.PointerX))
		}
		if InLaunchButton(f.PointerX, f.PointerY) {
			s.holdingLaunch = true
			s.throw.StartCharge()
		}

	case utils.PointerHeld:
		if s.draggingDirection {
			s.throw.SetDirection(DirectionFromScreenX(f.PointerX))
		}
		// 按住时移出按钮等同于松开
		if s.holdingLaunch && !InLaunchButton(f.PointerX, f.PointerY) {
			s.holdingLaunch = false
			s.throw.ReleaseCharge()
		}

	case utils.PointerReleased:
		if s.holdingLaunch {
			s.holdingLaunch = false
			s.throw.ReleaseCharge()
		}
	}
}

func (s *LaneInputSystem) applyKeys(f InputFrame) {
	if f.DirectionSteps != 0 {
		s.throw.AdjustDirection(float64(f.DirectionSteps) * s.step)
	}
	if f.LaunchPressed {
		s.throw.StartCharge()
	}
	if f.LaunchReleased && !s.holdingLaunch {
		s.throw.ReleaseCharge()
	}
}

// DirectionFromScreenX 方向条上的横坐标到方向（-1..1）
func DirectionFromScreenX(x float64) float64 {
	half := config.PowerBarWidth / 2
	center := config.PowerBarX + half
	return clampFloat((x-center)/half, -1, 1)
}

// InDirectionBar 点是否在方向条内
func InDirectionBar(x, y float64) bool {
	return inRect(x, y, config.PowerBarX, config.DirectionBarY, config.PowerBarWidth, config.DirectionBarHeight)
}

// InLaunchButton 点是否在发射按钮内
func InLaunchButton(x, y float64) bool {
	return inRect(x, y, config.LaunchButtonX, config.LaunchButtonY, config.LaunchButtonWidth, config.LaunchButtonHeight)
}

// InModalButton 点是否在弹窗确认按钮内
func InModalButton(x, y float64) bool {
	return inRect(x, y, config.ModalButtonX, config.ModalButtonY, config.ModalButtonWidth, config.ModalButtonHeight)
}

func inRect(x, y, left, top, w, h float64) bool {
	return x >= left && x <= left+w && y >= top && y <= top+h
}
