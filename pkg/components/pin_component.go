package components

import "github.com/go-gl/mathgl/mgl64"

// PinComponent 球瓶组件
//
// 十个球瓶在加载时创建一次，初始位姿固定（始终竖直）。
// 状态流转：
//   - 站立 → 倒下：由倒瓶检测系统设置 IsKnocked
//   - 倒下 → 移除：投球结算后从物理世界移出并隐藏（实体保留）
//   - 完整重置：恢复站立位姿并重新加入物理世界
//
// 约束：IsRemoved 为 true 时 IsKnocked 必为 true
type PinComponent struct {
	// Index 球瓶编号（0-9）
	Index int

	// InitialPosition 初始站立位置（世界坐标）
	InitialPosition mgl64.Vec3

	// IsKnocked 是否已判定倒下
	// 同一局内单调：一旦倒下，只有完整重置才会恢复
	IsKnocked bool

	// IsRemoved 是否已从物理世界移除
	IsRemoved bool

	// LastImpact 上次施加冲击冲量的时间（StabilitySystem 的模拟时钟，秒）
	// 用于单瓶冲量冷却；负值表示尚未受过冲击
	LastImpact float64
}

// Standing 是否仍然站立（未倒下）
func (p *PinComponent) Standing() bool {
	return !p.IsKnocked
}
