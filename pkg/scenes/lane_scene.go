package scenes

import (
	"fmt"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
	"github.com/qscasino/bolosspirita/pkg/entities"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/systems"
	"github.com/qscasino/bolosspirita/pkg/utils"
)

// LaneSceneOptions 球道场景的依赖，除 Config 外均可为零值
type LaneSceneOptions struct {
	Config   *config.LaneConfig
	Store    game.RewardStore
	Sound    game.SoundPlayer
	Metrics  *game.Metrics
	Strings  *game.LaneStrings
	Fonts    systems.LaneFonts
	Settings *game.SettingsManager
}

// LaneScene 保龄球道场景
//
// 每帧的顺序：
//  1. 读取输入并转换为投球意图
//  2. 固定步长推进物理世界，每步之后钳制球瓶速度
//  3. 推进会话时钟（调度器任务：蓄力振荡、结算、重置、提示隐藏）
//  4. 投球状态机检查出界捕获、采样倒瓶、判定停球
//  5. 推进提示动画
type LaneScene struct {
	entityManager *ecs.EntityManager
	lane          *entities.Lane
	session       *game.Session
	settings      *game.SettingsManager

	knock     *systems.KnockDetectionSystem
	stability *systems.StabilitySystem
	throw     *systems.ThrowSystem
	overlay   *systems.OverlaySystem
	input     *systems.LaneInputSystem
	render    *systems.LaneRenderSystem

	pointer *utils.PointerTracker

	// acc 物理累计时间（秒）
	acc float64

	// lastSubsteps 上一帧执行的物理步数（调试显示）
	lastSubsteps int
}

// NewLaneScene 创建球道场景：实体、物理世界、会话和所有系统
//
// 参数:
//   - opts: 场景依赖
//
// 返回:
//   - *LaneScene: 场景实例
//   - error: 配置缺失或球道创建失败
func NewLaneScene(opts LaneSceneOptions) (*LaneScene, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("lane scene requires a config")
	}

	em := ecs.NewEntityManager()
	lane, err := entities.NewLane(em, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create lane: %w", err)
	}

	session := game.NewSession(opts.Config, game.SessionOptions{
		Store:   opts.Store,
		Sound:   opts.Sound,
		Metrics: opts.Metrics,
		Strings: opts.Strings,
	})

	knock := systems.NewKnockDetectionSystem(em, session.Ledger(), opts.Config.Knock)
	stability := systems.NewStabilitySystem(em, session, lane.Ball)
	stability.Register(lane.World)
	throw := systems.NewThrowSystem(em, session, lane.World, knock, lane.Ball)
	overlay := systems.NewOverlaySystem(session)

	scene := &LaneScene{
		entityManager: em,
		lane:          lane,
		session:       session,
		settings:      opts.Settings,
		knock:         knock,
		stability:     stability,
		throw:         throw,
		overlay:       overlay,
		input:         systems.NewLaneInputSystem(session, throw),
		render:        systems.NewLaneRenderSystem(em, session, overlay, opts.Fonts),
		pointer:       utils.NewPointerTracker(),
	}
	throw.Start()

	log.Printf("[LaneScene] Scene ready (profile=%s, state=%s)", opts.Config.Profile, session.State())
	return scene, nil
}

// Update 读取本帧输入并推进一帧
func (s *LaneScene) Update(deltaTime float64) {
	s.ApplyInput(systems.ReadInputFrame(s.pointer))
	s.Step(deltaTime)
}

// ApplyInput 处理一帧输入
func (s *LaneScene) ApplyInput(f systems.InputFrame) {
	s.input.Apply(f)
}

// Step 推进一帧（不读取输入）
//
// 帧时间先限制在 ClampAccMax 以内；物理以 FixedDt 推进，
// 每帧最多 MaxSubsteps 步，剩余累计时间最多保留一步。
//
// 参数:
//   - deltaTime: 距上一帧的时间（秒）
//
// 返回:
//   - int: 本帧执行的物理步数
func (s *LaneScene) Step(deltaTime float64) int {
	phys := s.session.Config().Physics
	dt := math.Min(math.Max(deltaTime, 0), phys.ClampAccMax)

	s.acc += dt
	steps := 0
	for s.acc >= phys.FixedDt && steps < phys.MaxSubsteps {
		s.lane.World.Step(phys.FixedDt)
		s.stability.AfterStep(phys.FixedDt)
		s.acc -= phys.FixedDt
		steps++
	}
	s.acc = math.Min(s.acc, phys.FixedDt)
	s.lastSubsteps = steps

	s.session.Update(dt)
	s.throw.Update(dt)
	s.overlay.Update(dt)
	return steps
}

// Draw 绘制场景
func (s *LaneScene) Draw(screen *ebiten.Image) {
	s.render.Draw(screen)
}

// SaveOnExit 退出时保存设备设置（奖励记录在获得时已立即写入）
func (s *LaneScene) SaveOnExit() bool {
	if s.settings == nil {
		return true
	}
	if err := s.settings.Save(); err != nil {
		log.Printf("[LaneScene] Warning: Failed to save settings on exit: %v", err)
		return false
	}
	return true
}

// Session 场景的会话
func (s *LaneScene) Session() *game.Session { return s.session }

// Throw 投球状态机
func (s *LaneScene) Throw() *systems.ThrowSystem { return s.throw }

// Lane 物理世界与实体
func (s *LaneScene) Lane() *entities.Lane { return s.lane }

// EntityManager 实体管理器
func (s *LaneScene) EntityManager() *ecs.EntityManager { return s.entityManager }

// LastSubsteps 上一帧执行的物理步数
func (s *LaneScene) LastSubsteps() int { return s.lastSubsteps }

// Accumulator 当前物理累计时间
func (s *LaneScene) Accumulator() float64 { return s.acc }
