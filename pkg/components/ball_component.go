package components

// BallComponent 保龄球组件（单例）
//
// 同一时间最多只有一个球在飞行；被捕获的球不参与碰撞并停放在场景外。
type BallComponent struct {
	// HasThrown 本次投球是否已出手
	// 出手后到结算前禁止再次出手
	HasThrown bool

	// Captured 是否已被出界捕获
	Captured bool

	// Visible 是否可见
	Visible bool
}
