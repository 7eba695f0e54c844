// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerPhase 指针在本帧的阶段
type PointerPhase int

const (
	// PointerIdle 未按下
	PointerIdle PointerPhase = iota
	// PointerPressed 本帧刚按下
	PointerPressed
	// PointerHeld 持续按住
	PointerHeld
	// PointerReleased 本帧刚抬起（位置为抬起前最后一次的位置）
	PointerReleased
)

// PointerTracker 统一跟踪鼠标左键和第一个触点
//
// 触摸优先；触点抬起时 ebiten 已无法读取其位置，因此保留最后一次位置。
// 每帧调用一次 Update。
type PointerTracker struct {
	phase   PointerPhase
	x, y    int
	touchID ebiten.TouchID
	touch   bool
}

// NewPointerTracker 创建指针跟踪器
func NewPointerTracker() *PointerTracker {
	return &PointerTracker{touchID: -1}
}

// Update 读取本帧的鼠标/触摸状态
func (p *PointerTracker) Update() {
	if p.touch {
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == p.touchID {
				x, y := ebiten.TouchPosition(id)
				p.track(true, x, y)
				return
			}
		}
		p.track(false, p.x, p.y)
		p.touch = false
		p.touchID = -1
		return
	}

	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		p.touch = true
		p.touchID = ids[0]
		x, y := ebiten.TouchPosition(ids[0])
		p.track(true, x, y)
		return
	}

	x, y := ebiten.CursorPosition()
	p.track(ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), x, y)
}

// track 根据本帧是否按下推进阶段
func (p *PointerTracker) track(down bool, x, y int) {
	p.x, p.y = x, y
	switch {
	case down && (p.phase == PointerIdle || p.phase == PointerReleased):
		p.phase = PointerPressed
	case down:
		p.phase = PointerHeld
	case p.phase == PointerPressed || p.phase == PointerHeld:
		p.phase = PointerReleased
	default:
		p.phase = PointerIdle
	}
}

// Phase 本帧阶段
func (p *PointerTracker) Phase() PointerPhase {
	return p.phase
}

// Position 指针位置（屏幕坐标）
func (p *PointerTracker) Position() (int, int) {
	return p.x, p.y
}

// IsTouch 当前指针是否来自触摸
func (p *PointerTracker) IsTouch() bool {
	return p.touch
}

// RepeatTick 按住按键时的重复节奏
// 第 1 帧立即响应，按住 30 帧后每 3 帧响应一次
func RepeatTick(duration int) bool {
	return duration == 1 || (duration >= 30 && duration%3 == 0)
}

// IsKeyRepeating 按键本帧是否应响应（含按住连发）
func IsKeyRepeating(key ebiten.Key) bool {
	return RepeatTick(inpututil.KeyPressDuration(key))
}

// IsAnyKeyJustPressed 任一按键本帧刚按下
func IsAnyKeyJustPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

// IsAnyKeyJustReleased 任一按键本帧刚松开
func IsAnyKeyJustReleased(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustReleased(k) {
			return true
		}
	}
	return false
}
