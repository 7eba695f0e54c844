package components

import "github.com/qscasino/bolosspirita/pkg/physics"

// RigidBodyComponent 把实体绑定到物理世界中的刚体
//
// 刚体的位姿由物理世界推进，渲染和倒瓶检测只读取。
type RigidBodyComponent struct {
	Body *physics.Body
}
