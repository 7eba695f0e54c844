package entities

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/qscasino/bolosspirita/pkg/components"
	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
	"github.com/qscasino/bolosspirita/pkg/physics"
)

// Lane 一条球道：物理世界、球和十个球瓶
type Lane struct {
	World *physics.World
	Ball  ecs.EntityID

	// Pins 按编号排列的球瓶实体
	Pins []ecs.EntityID
}

// vec 把配置中的坐标转换为 mgl64 向量
func vec(v config.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// NewLaneWorld 按配置创建物理世界
// 包含地面、两侧边沟挡板、后墙和接触材质表
func NewLaneWorld(cfg *config.LaneConfig) *physics.World {
	w := physics.NewWorld()
	w.Gravity = mgl64.Vec3{0, cfg.Physics.Gravity, 0}
	w.Iterations = cfg.Physics.SolverIterations
	w.SleepSpeedLimit = cfg.Physics.SleepSpeedLimit
	w.SleepTimeLimit = cfg.Physics.SleepTimeLimit
	w.FloorMaterial = config.MaterialFloor

	for _, m := range cfg.Physics.Materials {
		cm := physics.ContactMaterial{Friction: m.Friction, Restitution: m.Restitution}
		if m.A == config.MaterialFloor && m.B == config.MaterialFloor {
			w.DefaultMaterial = cm
		}
		w.SetContactMaterial(m.A, m.B, cm)
	}

	lane := cfg.Lane
	half := vec(lane.GutterHalfExtents)
	for _, side := range []float64{-1, 1} {
		w.AddBox(physics.Box{
			Center:   mgl64.Vec3{side * lane.GutterX, 0.25, -5},
			Half:     half,
			Material: config.MaterialFloor,
		})
	}
	w.AddBox(physics.Box{
		Center:   vec(lane.BackWallCenter),
		Half:     vec(lane.BackWallHalf),
		Material: config.MaterialFloor,
	})
	return w
}

// NewBallEntity 创建保龄球实体并加入物理世界
//
// 参数:
//   - em: 实体管理器
//   - world: 物理世界
//   - cfg: 球道配置
//
// 返回:
//   - ecs.EntityID: 球实体ID
func NewBallEntity(em *ecs.EntityManager, world *physics.World, cfg *config.LaneConfig) ecs.EntityID {
	lane := cfg.Lane

	body := physics.NewSphere(lane.BallRadius, lane.BallMass)
	body.Material = config.MaterialBall
	body.LinearDamping = lane.BallLinearDamping
	body.AngularDamping = lane.BallAngularDamping
	body.SleepSpeedLimit = lane.BallSleepSpeed
	body.SleepTimeLimit = lane.BallSleepTime
	body.Position = vec(lane.BallStart)
	world.AddBody(body)

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.BallComponent{Visible: true})
	ecs.AddComponent(em, id, &components.RigidBodyComponent{Body: body})
	return id
}

// NewPinEntity 创建一个站立的球瓶实体并加入物理世界（初始休眠）
//
// 参数:
//   - em: 实体管理器
//   - world: 物理世界
//   - cfg: 球道配置
//   - index: 球瓶编号（0-9）
//
// 返回:
//   - ecs.EntityID: 球瓶实体ID
//   - error: 编号超出配置范围时返回错误
func NewPinEntity(em *ecs.EntityManager, world *physics.World, cfg *config.LaneConfig, index int) (ecs.EntityID, error) {
	lane := cfg.Lane
	if index < 0 || index >= len(lane.PinPositions) {
		return 0, fmt.Errorf("pin index %d out of range (0-%d)", index, len(lane.PinPositions)-1)
	}

	// 胶囊总高 = 2*(halfLength + radius)
	halfLength := lane.PinHeight/2 - lane.PinRadius
	body := physics.NewCapsule(lane.PinRadius, halfLength, lane.PinMass)
	body.FootRadius = lane.PinRadius * 0.5
	body.Material = config.MaterialPin
	body.LinearDamping = lane.PinDamping
	body.AngularDamping = lane.PinDamping
	body.SleepSpeedLimit = lane.PinSleepSpeed
	body.SleepTimeLimit = lane.PinSleepTime

	initial := vec(lane.PinPositions[index])
	StandPin(body, initial, lane.PinStandEpsilon)
	world.AddBody(body)

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PinComponent{
		Index:           index,
		InitialPosition: initial,
		LastImpact:      -1,
	})
	ecs.AddComponent(em, id, &components.RigidBodyComponent{Body: body})
	return id, nil
}

// StandPin 把球瓶竖直放回初始位置（略微抬高），清零速度并休眠
func StandPin(body *physics.Body, initial mgl64.Vec3, standEpsilon float64) {
	body.SetPose(initial.Add(mgl64.Vec3{0, standEpsilon, 0}), mgl64.QuatIdent())
	body.Sleep()
}

// NewLane 创建完整球道
func NewLane(em *ecs.EntityManager, cfg *config.LaneConfig) (*Lane, error) {
	world := NewLaneWorld(cfg)
	lane := &Lane{
		World: world,
		Ball:  NewBallEntity(em, world, cfg),
		Pins:  make([]ecs.EntityID, 0, len(cfg.Lane.PinPositions)),
	}

	for i := range cfg.Lane.PinPositions {
		id, err := NewPinEntity(em, world, cfg, i)
		if err != nil {
			return nil, fmt.Errorf("failed to create pin: %w", err)
		}
		lane.Pins = append(lane.Pins, id)
	}

	log.Printf("[LaneFactory] Lane created: ball=%d pins=%d bodies=%d", lane.Ball, len(lane.Pins), len(world.Bodies()))
	return lane, nil
}
