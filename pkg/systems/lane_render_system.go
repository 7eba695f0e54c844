package systems

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/qscasino/bolosspirita/pkg/components"
	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/utils"
)

// 球道配色
var (
	colorBackground  = color.RGBA{R: 18, G: 20, B: 28, A: 255}
	colorLaneWood    = color.RGBA{R: 196, G: 150, B: 96, A: 255}
	colorGutter      = color.RGBA{R: 60, G: 62, B: 70, A: 255}
	colorFoulLine    = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	colorPinDeck     = color.RGBA{R: 170, G: 128, B: 80, A: 255}
	colorPin         = color.RGBA{R: 245, G: 245, B: 240, A: 255}
	colorPinKnocked  = color.RGBA{R: 190, G: 190, B: 185, A: 255}
	colorPinStripe   = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	colorBall        = color.RGBA{R: 40, G: 70, B: 160, A: 255}
	colorBarTrack    = color.RGBA{R: 50, G: 52, B: 64, A: 255}
	colorPowerLow    = color.RGBA{R: 76, G: 175, B: 80, A: 255}
	colorPowerMid    = color.RGBA{R: 255, G: 193, B: 7, A: 255}
	colorPowerHigh   = color.RGBA{R: 244, G: 67, B: 54, A: 255}
	colorIndicator   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorButton      = color.RGBA{R: 33, G: 150, B: 243, A: 255}
	colorButtonOff   = color.RGBA{R: 90, G: 92, B: 104, A: 255}
	colorText        = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	colorTextDim     = color.RGBA{R: 170, G: 172, B: 180, A: 255}
	colorOverlayText = color.RGBA{R: 255, G: 215, B: 64, A: 255}
	colorModalShade  = color.RGBA{A: 160}
	colorModalPanel  = color.RGBA{R: 36, G: 38, B: 50, A: 255}
)

// foulLineZ 犯规线位置（世界坐标）
const foulLineZ = 5.5

// 弹窗正文排版
const (
	modalTextPadding = 20.0
	modalLineHeight  = 22.0
)

// LaneFonts 渲染用字体，任一字段为 nil 时退回调试字体
type LaneFonts struct {
	Body  *text.GoTextFace
	Title *text.GoTextFace
	Large *text.GoTextFace
}

// PinShape 一个球瓶在俯视图中的投影：两端点之间的粗线
type PinShape struct {
	X1, Y1, X2, Y2 float64
	Radius         float64
	Knocked        bool
}

// LaneRenderSystem 绘制俯视球道、球瓶、球和 HUD
//
// 只读取实体位姿、会话快照和提示动画，不修改任何状态。
type LaneRenderSystem struct {
	entityManager *ecs.EntityManager
	session       *game.Session
	overlay       *OverlaySystem
	fonts         LaneFonts
}

// NewLaneRenderSystem 创建球道渲染系统
//
// 参数:
//   - em: 实体管理器
//   - session: 球道会话
//   - overlay: 提示动画系统（透明度、指示器位置）
//   - fonts: 字体，可为零值
func NewLaneRenderSystem(em *ecs.EntityManager, session *game.Session, overlay *OverlaySystem, fonts LaneFonts) *LaneRenderSystem {
	return &LaneRenderSystem{
		entityManager: em,
		session:       session,
		overlay:       overlay,
		fonts:         fonts,
	}
}

// Draw 绘制一帧
func (s *LaneRenderSystem) Draw(screen *ebiten.Image) {
	snap := s.session.Snapshot()

	screen.Fill(colorBackground)
	s.drawLane(screen)
	s.drawPins(screen)
	s.drawBall(screen)
	s.drawHUD(screen, snap)
	s.drawPowerBar(screen, snap)
	s.drawDirectionBar(screen, snap)
	s.drawLaunchButton(screen, snap)
	s.drawOverlays(screen)
	if snap.Modal != nil {
		s.drawModal(screen, snap.Modal)
	}
}

func (s *LaneRenderSystem) drawLane(screen *ebiten.Image) {
	cfg := s.session.Config().Lane
	edge := cfg.GutterX - cfg.GutterHalfExtents[0]

	gx1, top := config.LaneToScreen(-config.LaneWorldHalfWidth, config.LaneWorldFarZ)
	gx2, bottom := config.LaneToScreen(config.LaneWorldHalfWidth, config.LaneWorldNearZ)
	fillRect(screen, gx1, top, gx2-gx1, bottom-top, colorGutter)

	lx1, _ := config.LaneToScreen(-edge, 0)
	lx2, _ := config.LaneToScreen(edge, 0)
	fillRect(screen, lx1, top, lx2-lx1, bottom-top, colorLaneWood)

	// 瓶区
	if len(cfg.PinPositions) > 0 {
		_, deckTop := config.LaneToScreen(0, config.LaneWorldFarZ)
		_, deckBottom := config.LaneToScreen(0, cfg.PinPositions[0][2]+0.6)
		fillRect(screen, lx1, deckTop, lx2-lx1, deckBottom-deckTop, colorPinDeck)
	}

	_, fy := config.LaneToScreen(0, foulLineZ)
	vector.StrokeLine(screen, float32(lx1), float32(fy), float32(lx2), float32(fy), 2, colorFoulLine, true)
}

// PinShapes 计算所有可见球瓶的俯视投影（已移除的球瓶不绘制）
func (s *LaneRenderSystem) PinShapes() []PinShape {
	radius := config.LaneMetersToPixels(s.session.Config().Lane.PinRadius)

	var shapes []PinShape
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.RigidBodyComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		if pin.IsRemoved || rb.Body == nil {
			continue
		}
		a, b := rb.Body.Segment()
		x1, y1 := projectTopDown(a)
		x2, y2 := projectTopDown(b)
		shapes = append(shapes, PinShape{X1: x1, Y1: y1, X2: x2, Y2: y2, Radius: radius, Knocked: pin.IsKnocked})
	}
	return shapes
}

func (s *LaneRenderSystem) drawPins(screen *ebiten.Image) {
	for _, p := range s.PinShapes() {
		clr := colorPin
		if p.Knocked {
			clr = colorPinKnocked
		}
		r := float32(p.Radius)
		vector.StrokeLine(screen, float32(p.X1), float32(p.Y1), float32(p.X2), float32(p.Y2), 2*r, clr, true)
		vector.DrawFilledCircle(screen, float32(p.X1), float32(p.Y1), r, clr, true)
		vector.DrawFilledCircle(screen, float32(p.X2), float32(p.Y2), r, clr, true)

		// 瓶颈的红色条纹画在上端
		vector.DrawFilledCircle(screen, float32(p.X2), float32(p.Y2), r*0.45, colorPinStripe, true)
	}
}

func (s *LaneRenderSystem) drawBall(screen *ebiten.Image) {
	for _, id := range ecs.GetEntitiesWith2[*components.BallComponent, *components.RigidBodyComponent](s.entityManager) {
		ball, _ := ecs.GetComponent[*components.BallComponent](s.entityManager, id)
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		if !ball.Visible || rb.Body == nil {
			continue
		}
		x, y := projectTopDown(rb.Body.Position)
		r := config.LaneMetersToPixels(s.session.Config().Lane.BallRadius)
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(r), colorBall, true)
	}
}

func (s *LaneRenderSystem) drawHUD(screen *ebiten.Image, snap game.Snapshot) {
	strs := s.session.Strings()
	s.drawText(screen, strs.Format(game.StrHUDScore, snap.Score, snap.Frame, snap.Ball),
		config.HUDMarginX, config.HUDScoreY, s.fonts.Body, colorText, text.AlignStart)
	s.drawText(screen, strs.Format(game.StrHUDAttempts, snap.AttemptsLeft),
		config.HUDMarginX, config.HUDAttemptsY, s.fonts.Body, colorTextDim, text.AlignStart)

	if snap.InstructionsVisible {
		_, y := config.LaneToScreen(0, config.LaneWorldNearZ)
		s.drawText(screen, strs.GetString(game.StrInstructions),
			config.GameWindowWidth/2, y+2, s.fonts.Body, colorTextDim, text.AlignCenter)
	}
}

func (s *LaneRenderSystem) drawPowerBar(screen *ebiten.Image, snap game.Snapshot) {
	fillRect(screen, config.PowerBarX, config.PowerBarY, config.PowerBarWidth, config.PowerBarHeight, colorBarTrack)
	if w := PowerFillWidth(snap.PowerPercent); w > 0 {
		fillRect(screen, config.PowerBarX, config.PowerBarY, w, config.PowerBarHeight, TierColor(snap.PowerTier))
	}
}

func (s *LaneRenderSystem) drawDirectionBar(screen *ebiten.Image, snap game.Snapshot) {
	track := colorBarTrack
	if !snap.DirectionEnabled {
		track = colorButtonOff
	}
	fillRect(screen, config.PowerBarX, config.DirectionBarY, config.PowerBarWidth, config.DirectionBarHeight, track)

	cx := config.PowerBarX + config.PowerBarWidth/2
	vector.StrokeLine(screen, float32(cx), float32(config.DirectionBarY),
		float32(cx), float32(config.DirectionBarY+config.DirectionBarHeight), 1, colorTextDim, true)

	x := config.PowerBarX + config.PowerBarWidth*s.overlay.IndicatorPercent()/100
	fillRect(screen, x-3, config.DirectionBarY-2, 6, config.DirectionBarHeight+4, colorIndicator)

	// 瞄准时在球道上画出预计出手方向
	if snap.AimIndicatorVisible {
		s.drawAimLine(screen, snap.Direction)
	}
}

func (s *LaneRenderSystem) drawAimLine(screen *ebiten.Image, direction float64) {
	cfg := s.session.Config()
	start := cfg.Lane.BallStart
	x0 := start[0] + direction*cfg.Lane.AimLateralScale
	v, _ := LaunchVelocity(cfg.Throw, 0.5, direction)
	if v.Z() >= 0 {
		return
	}
	// 沿出手速度方向延伸 6 米
	t := -6 / v.Z()
	sx, sy := config.LaneToScreen(x0, start[2])
	ex, ey := config.LaneToScreen(x0+v.X()*t, start[2]+v.Z()*t)
	vector.StrokeLine(screen, float32(sx), float32(sy), float32(ex), float32(ey), 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 120}, true)
}

func (s *LaneRenderSystem) drawLaunchButton(screen *ebiten.Image, snap game.Snapshot) {
	bg := colorButton
	if !snap.LaunchEnabled {
		bg = colorButtonOff
	}
	fillRect(screen, config.LaunchButtonX, config.LaunchButtonY, config.LaunchButtonWidth, config.LaunchButtonHeight, bg)
	s.drawText(screen, snap.LaunchLabel,
		config.LaunchButtonX+config.LaunchButtonWidth/2, config.LaunchButtonY+config.LaunchButtonHeight/2-8,
		s.fonts.Title, colorText, text.AlignCenter)
}

func (s *LaneRenderSystem) drawOverlays(screen *ebiten.Image) {
	strs := s.session.Strings()
	keys := []struct {
		overlay game.Overlay
		str     string
	}{
		{game.OverlayStrike, game.StrOverlayStrike},
		{game.OverlaySpare, game.StrOverlaySpare},
	}
	for _, k := range keys {
		alpha := s.overlay.Alpha(k.overlay)
		if alpha <= 0 {
			continue
		}
		s.drawText(screen, strs.GetString(k.str), config.GameWindowWidth/2, config.OverlayY, s.fonts.Large, fadeColor(colorOverlayText, alpha), text.AlignCenter)
	}
}

func (s *LaneRenderSystem) drawModal(screen *ebiten.Image, m *game.ModalView) {
	fillRect(screen, 0, 0, config.GameWindowWidth, config.GameWindowHeight, colorModalShade)
	fillRect(screen, config.ModalX, config.ModalY, config.ModalWidth, config.ModalHeight, colorModalPanel)

	cx := config.ModalX + config.ModalWidth/2
	s.drawText(screen, m.Title, cx, config.ModalY+24, s.fonts.Title, colorText, text.AlignCenter)
	for i, line := range utils.WrapText(m.Message, s.fonts.Body, config.ModalWidth-modalTextPadding*2) {
		s.drawText(screen, line, cx, config.ModalY+76+float64(i)*modalLineHeight, s.fonts.Body, colorTextDim, text.AlignCenter)
	}

	fillRect(screen, config.ModalButtonX, config.ModalButtonY, config.ModalButtonWidth, config.ModalButtonHeight, colorButton)
	s.drawText(screen, m.ConfirmLabel,
		config.ModalButtonX+config.ModalButtonWidth/2, config.ModalButtonY+config.ModalButtonHeight/2-8,
		s.fonts.Body, colorText, text.AlignCenter)
}

// drawText 绘制文本；没有字体时使用 ebitenutil 调试字体（只支持左对齐的近似位置）
func (s *LaneRenderSystem) drawText(screen *ebiten.Image, str string, x, y float64, face *text.GoTextFace, clr color.RGBA, align text.Align) {
	if face == nil {
		if align == text.AlignCenter {
			x -= float64(len(str)) * 3
		}
		ebitenutil.DebugPrintAt(screen, str, int(x), int(y))
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LayoutOptions.PrimaryAlign = align
	text.Draw(screen, str, face, op)
}

// PowerFillWidth 蓄力条填充宽度（像素）
func PowerFillWidth(percent int) float64 {
	return clampFloat(float64(percent), 0, 100) / 100 * config.PowerBarWidth
}

// TierColor 力度档位对应的颜色
func TierColor(tier game.PowerTier) color.RGBA {
	switch tier {
	case game.PowerTierHigh:
		return colorPowerHigh
	case game.PowerTierMid:
		return colorPowerMid
	default:
		return colorPowerLow
	}
}

// fadeColor 按透明度缩放颜色（预乘 alpha）
func fadeColor(c color.RGBA, alpha float64) color.RGBA {
	a := clampFloat(alpha, 0, 1)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

// projectTopDown 世界坐标投影到俯视视口（忽略高度）
func projectTopDown(p mgl64.Vec3) (float64, float64) {
	return config.LaneToScreen(p.X(), p.Z())
}

func fillRect(screen *ebiten.Image, x, y, w, h float64, clr color.Color) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), clr, true)
}
