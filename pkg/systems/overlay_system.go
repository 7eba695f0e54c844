package systems

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/qscasino/bolosspirita/pkg/game"
)

const (
	overlayFadeIn  = 0.2
	overlayFadeOut = 0.35

	// indicatorGlide 方向指示器滑向新位置的时长
	indicatorGlide = 0.12
)

// overlayFade 单个提示的淡入淡出
type overlayFade struct {
	visible bool
	alpha   float32
	tween   *gween.Tween
}

// update 推进补间；返回当前透明度
func (f *overlayFade) update(dt float32) float32 {
	if f.tween == nil {
		return f.alpha
	}
	val, done := f.tween.Update(dt)
	f.alpha = val
	if done {
		f.tween = nil
	}
	return f.alpha
}

// OverlaySystem 提示淡入淡出与方向指示器动画
//
// 只读取会话的显示状态，把显隐切换转换成透明度补间，渲染系统按透明度绘制。
type OverlaySystem struct {
	session *game.Session

	fades map[game.Overlay]*overlayFade

	indicator       float32
	indicatorTarget float32
	indicatorTween  *gween.Tween
}

// NewOverlaySystem 创建提示动画系统
func NewOverlaySystem(session *game.Session) *OverlaySystem {
	target := float32(directionPercent(session.Direction()))
	return &OverlaySystem{
		session: session,
		fades: map[game.Overlay]*overlayFade{
			game.OverlayStrike: {},
			game.OverlaySpare:  {},
		},
		indicator:       target,
		indicatorTarget: target,
	}
}

// Update 推进补间
//
// 参数:
//   - dt: 帧间隔时间（秒）
func (s *OverlaySystem) Update(dt float64) {
	step := float32(dt)

	for o, f := range s.fades {
		visible := s.session.OverlayVisible(o)
		if visible != f.visible {
			f.visible = visible
			if visible {
				f.tween = gween.New(f.alpha, 1, overlayFadeIn, ease.OutQuad)
			} else {
				f.tween = gween.New(f.alpha, 0, overlayFadeOut, ease.InQuad)
			}
		}
		f.update(step)
	}

	target := float32(directionPercent(s.session.Direction()))
	if target != s.indicatorTarget {
		s.indicatorTarget = target
		s.indicatorTween = gween.New(s.indicator, target, indicatorGlide, ease.OutCubic)
	}
	if s.indicatorTween != nil {
		val, done := s.indicatorTween.Update(step)
		s.indicator = val
		if done {
			s.indicatorTween = nil
		}
	}
}

// Alpha 提示当前透明度（0..1）
func (s *OverlaySystem) Alpha(o game.Overlay) float64 {
	f, ok := s.fades[o]
	if !ok {
		return 0
	}
	return float64(f.alpha)
}

// IndicatorPercent 方向指示器当前左偏移百分比
func (s *OverlaySystem) IndicatorPercent() float64 {
	return float64(s.indicator)
}

// directionPercent 方向（-1..1）到指示器百分比（10..90）
func directionPercent(dir float64) float64 {
	return 50 + dir*40
}
