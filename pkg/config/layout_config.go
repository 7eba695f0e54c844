package config

// 布局配置常量
// 本文件定义了球道画面的布局参数，包括窗口尺寸、俯视球道视口和 HUD 元素位置

// 窗口配置
const (
	// GameWindowWidth 逻辑窗口宽度（竖屏）
	GameWindowWidth = 540

	// GameWindowHeight 逻辑窗口高度
	GameWindowHeight = 900
)

// Lane View Configuration (俯视球道视口)
// 世界坐标 X 向右，Z 沿球道向远处为负；屏幕上远端瓶区在上方，投球区在下方
const (
	// LaneViewLeft / LaneViewTop 是球道视口左上角的屏幕坐标
	LaneViewLeft = 120.0
	LaneViewTop  = 150.0

	// LaneViewWidth / LaneViewHeight 是球道视口尺寸（像素）
	LaneViewWidth  = 300.0
	LaneViewHeight = 600.0

	// LaneWorldHalfWidth 视口覆盖的世界横向半宽（包含两侧边沟）
	LaneWorldHalfWidth = 1.25

	// LaneWorldNearZ / LaneWorldFarZ 视口覆盖的世界纵向范围
	LaneWorldNearZ = 8.0
	LaneWorldFarZ  = -19.5
)

// HUD Configuration (HUD 布局)
const (
	// HUDMarginX 左侧文字起点
	HUDMarginX = 16

	// HUDScoreY 分数、局数、球数行
	HUDScoreY = 16

	// HUDAttemptsY 剩余尝试次数行
	HUDAttemptsY = 36

	// PowerBarX / PowerBarY 蓄力条位置；宽高单位为像素
	PowerBarX      = 40.0
	PowerBarY      = 770.0
	PowerBarWidth  = 460.0
	PowerBarHeight = 14.0

	// DirectionBarY 方向控制条纵坐标（与蓄力条等宽）
	DirectionBarY      = 794.0
	DirectionBarHeight = 22.0

	// 发射按钮
	LaunchButtonX      = 170.0
	LaunchButtonY      = 828.0
	LaunchButtonWidth  = 200.0
	LaunchButtonHeight = 44.0

	// OverlayY STRIKE / 清台提示的纵坐标
	OverlayY = 110

	// 弹窗面板与确认按钮
	ModalX            = 60.0
	ModalY            = 340.0
	ModalWidth        = 420.0
	ModalHeight       = 200.0
	ModalButtonX      = 190.0
	ModalButtonY      = 480.0
	ModalButtonWidth  = 160.0
	ModalButtonHeight = 40.0
)

// LaneToScreen 把世界坐标 (x, z) 转换为俯视视口中的屏幕坐标
//
// 参数：
//   - x: 世界横向坐标
//   - z: 世界纵向坐标（投球区为正，瓶区为负）
//
// 返回：
//   - sx, sy: 屏幕坐标；瓶区在视口上方，投球区在下方
func LaneToScreen(x, z float64) (sx, sy float64) {
	sx = LaneViewLeft + (x+LaneWorldHalfWidth)/(2*LaneWorldHalfWidth)*LaneViewWidth
	sy = LaneViewTop + (z-LaneWorldFarZ)/(LaneWorldNearZ-LaneWorldFarZ)*LaneViewHeight
	return sx, sy
}

// LaneMetersToPixels 把世界长度换算为视口像素（按横向比例）
func LaneMetersToPixels(m float64) float64 {
	return m / (2 * LaneWorldHalfWidth) * LaneViewWidth
}

// DirectionIndicatorX 方向指示器的屏幕横坐标
// 指示器位置 = 50% + direction*40%（相对蓄力条宽度）
func DirectionIndicatorX(direction float64) float64 {
	percent := 50 + direction*40
	return PowerBarX + PowerBarWidth*percent/100
}
