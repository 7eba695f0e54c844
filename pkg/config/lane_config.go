package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PinCount 球道上的球瓶数量
const PinCount = 10

// 性能档位
const (
	// ProfileDesktop 桌面档位（默认）
	ProfileDesktop = "desktop"

	// ProfileMobile 移动端档位：更大的物理步长、更少的子步和求解迭代
	ProfileMobile = "mobile"
)

// Vec3 YAML 中的三维坐标 [x, y, z]
// 坐标系：Y 轴向上，球道沿 -Z 方向延伸（投球手在 +Z 一侧）
type Vec3 [3]float64

// LaneConfig 球道调校配置
//
// 包含物理世界、球道几何、投球、出界捕获、倒瓶判定、稳定性钳制、
// 冲击冲量模型、计时和奖励规则等全部调校常量。
// 这些常量没有推导依据，只作为配置保留。
//
// 配置文件位置: data/lane.yaml（可选，缺省字段使用 DefaultLaneConfig 的值）
type LaneConfig struct {
	// Profile 性能档位（"desktop" / "mobile"）
	Profile string `yaml:"profile"`

	Physics PhysicsConfig `yaml:"physics"`
	Lane    LaneGeometry  `yaml:"lane"`
	Throw   ThrowConfig   `yaml:"throw"`
	Capture CaptureConfig `yaml:"capture"`
	Knock   KnockConfig   `yaml:"knock"`
	Clamp   ClampConfig   `yaml:"clamp"`
	Impulse ImpulseConfig `yaml:"impulse"`
	Timing  TimingConfig  `yaml:"timing"`
	Reward  RewardConfig  `yaml:"reward"`
	Input   InputConfig   `yaml:"input"`
}

// PhysicsConfig 物理世界与固定步长循环配置
type PhysicsConfig struct {
	// FixedDt 固定物理步长（秒）
	FixedDt float64 `yaml:"fixedDt"`

	// MaxSubsteps 每个渲染帧最多执行的物理步数（防止死亡螺旋）
	MaxSubsteps int `yaml:"maxSubsteps"`

	// ClampAccMax 单帧累计时间上限（秒）
	ClampAccMax float64 `yaml:"clampAccMax"`

	// Gravity 重力加速度（Y 分量，负值向下）
	Gravity float64 `yaml:"gravity"`

	// SolverIterations 接触求解迭代次数
	SolverIterations int `yaml:"solverIterations"`

	// SleepSpeedLimit / SleepTimeLimit 世界默认休眠阈值
	SleepSpeedLimit float64 `yaml:"sleepSpeedLimit"`
	SleepTimeLimit  float64 `yaml:"sleepTimeLimit"`

	// Materials 接触材质表
	Materials []ContactMaterialConfig `yaml:"materials"`
}

// ContactMaterialConfig 一对材质之间的摩擦和弹性
type ContactMaterialConfig struct {
	A           string  `yaml:"a"`
	B           string  `yaml:"b"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// 材质名称
const (
	MaterialFloor = "floor"
	MaterialBall  = "ball"
	MaterialPin   = "pin"
)

// LaneGeometry 球道几何、球和球瓶的刚体参数
type LaneGeometry struct {
	BallRadius         float64 `yaml:"ballRadius"`
	BallMass           float64 `yaml:"ballMass"`
	BallLinearDamping  float64 `yaml:"ballLinearDamping"`
	BallAngularDamping float64 `yaml:"ballAngularDamping"`
	BallSleepSpeed     float64 `yaml:"ballSleepSpeed"`
	BallSleepTime      float64 `yaml:"ballSleepTime"`

	// BallStart 球的初始位置（瞄准区中心）
	BallStart Vec3 `yaml:"ballStart"`

	// AimLateralScale 方向 (-1..1) 到瞄准横向偏移的缩放
	AimLateralScale float64 `yaml:"aimLateralScale"`

	PinHeight         float64 `yaml:"pinHeight"`
	PinRadius         float64 `yaml:"pinRadius"`
	PinMass           float64 `yaml:"pinMass"`
	PinDamping        float64 `yaml:"pinDamping"`
	PinSleepSpeed     float64 `yaml:"pinSleepSpeed"`
	PinSleepTime      float64 `yaml:"pinSleepTime"`
	PinStandEpsilon   float64 `yaml:"pinStandEpsilon"`
	PinPositions      []Vec3  `yaml:"pinPositions"`
	GutterX           float64 `yaml:"gutterX"`
	GutterHalfExtents Vec3    `yaml:"gutterHalfExtents"`
	BackWallCenter    Vec3    `yaml:"backWallCenter"`
	BackWallHalf      Vec3    `yaml:"backWallHalf"`
}

// ThrowConfig 出手速度与投球结束判定
type ThrowConfig struct {
	// BaseSpeed + power*PowerSpeed 为出手线速度
	BaseSpeed  float64 `yaml:"baseSpeed"`
	PowerSpeed float64 `yaml:"powerSpeed"`

	// MaxAngle 方向 ±1 对应的出手角（弧度）
	MaxAngle float64 `yaml:"maxAngle"`

	// LateralFactor 横向速度系数
	LateralFactor float64 `yaml:"lateralFactor"`

	// SpinFactor / SpinYaw 出手旋转
	SpinFactor float64 `yaml:"spinFactor"`
	SpinYaw    float64 `yaml:"spinYaw"`

	// MinElapsed 出手后多久才允许判定"停球"（秒）
	MinElapsed float64 `yaml:"minElapsed"`

	// ForwardZ 球需越过该 Z 才算已前进
	ForwardZ float64 `yaml:"forwardZ"`

	// StopSpeed 低于该速度视为停球
	StopSpeed float64 `yaml:"stopSpeed"`

	// FarZ 越过该 Z 视为已远离瓶区
	FarZ float64 `yaml:"farZ"`
}

// CaptureConfig 出界捕获包络
type CaptureConfig struct {
	Z     float64 `yaml:"z"`
	X     float64 `yaml:"x"`
	YHigh float64 `yaml:"yHigh"`
	YLow  float64 `yaml:"yLow"`

	// ParkPosition 被捕获的球停放位置（场景之外）
	ParkPosition Vec3 `yaml:"parkPosition"`
}

// KnockConfig 倒瓶判定阈值
type KnockConfig struct {
	// Tilt |pitch| + |roll| 超过该值（弧度）即判定倒瓶
	Tilt float64 `yaml:"tilt"`

	// Height 球瓶中心高度低于该值即判定倒瓶
	Height float64 `yaml:"height"`
}

// Range 闭区间
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ClampConfig 每步物理后对球瓶速度的钳制
// Z 区间不对称：球瓶可以被推离投球手（-Z），但只允许很小的回弹（+Z）
type ClampConfig struct {
	VelX       Range   `yaml:"velX"`
	VelY       Range   `yaml:"velY"`
	VelZ       Range   `yaml:"velZ"`
	AngularMax float64 `yaml:"angularMax"`
}

// ImpulseConfig 球-瓶接触的冲击冲量模型
type ImpulseConfig struct {
	// ShockCooldown 全局冲量最小间隔（秒）
	ShockCooldown float64 `yaml:"shockCooldown"`

	// PinCooldown 单个球瓶的冲量最小间隔（秒）
	PinCooldown float64 `yaml:"pinCooldown"`

	// MinBallSpeed 球速低于该值不施加冲量
	MinBallSpeed float64 `yaml:"minBallSpeed"`

	// 冲量大小 = (Base + speed*SpeedGain) * (PowerBase + power*PowerGain) * (CenterBase + center*CenterGain)
	Base       float64 `yaml:"base"`
	SpeedGain  float64 `yaml:"speedGain"`
	PowerBase  float64 `yaml:"powerBase"`
	PowerGain  float64 `yaml:"powerGain"`
	CenterBase float64 `yaml:"centerBase"`
	CenterGain float64 `yaml:"centerGain"`

	// CenterHalfWidth 球横向偏移达到该值时居中系数为 0
	CenterHalfWidth float64 `yaml:"centerHalfWidth"`

	// 主瓶方向：(clamp(dx, ±LateralClamp)*LateralGain, Lift, -1) 归一化
	LateralGain  float64 `yaml:"lateralGain"`
	LateralClamp float64 `yaml:"lateralClamp"`
	Lift         float64 `yaml:"lift"`

	// 相邻瓶：半径 NeighborRadius + center*NeighborCenterGain 内按 (1 - d/r) 衰减
	NeighborRadius       float64 `yaml:"neighborRadius"`
	NeighborCenterGain   float64 `yaml:"neighborCenterGain"`
	NeighborScale        float64 `yaml:"neighborScale"`
	NeighborLateralGain  float64 `yaml:"neighborLateralGain"`
	NeighborLateralClamp float64 `yaml:"neighborLateralClamp"`
	NeighborLift         float64 `yaml:"neighborLift"`

	// Lever 冲量作用点在瓶心上方的高度（米），产生向后倾倒的力矩
	Lever float64 `yaml:"lever"`
}

// TimingConfig 延迟与节奏（秒）
type TimingConfig struct {
	SettleDelay       float64 `yaml:"settleDelay"`
	ResetDelay        float64 `yaml:"resetDelay"`
	OverlayDuration   float64 `yaml:"overlayDuration"`
	ChargeInterval    float64 `yaml:"chargeInterval"`
	ChargeStep        float64 `yaml:"chargeStep"`
	LockedNoticeDelay float64 `yaml:"lockedNoticeDelay"`
	HitSoundInterval  float64 `yaml:"hitSoundInterval"`
}

// RewardConfig 尝试次数与奖励档位
type RewardConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`

	// BonusTiers 第 1、2 次清台的奖励；之后的尝试使用最后一档
	BonusTiers []int `yaml:"bonusTiers"`

	PointsPerPin int `yaml:"pointsPerPin"`

	// StorageKey 奖励记录的存储键
	StorageKey string `yaml:"storageKey"`
}

// InputConfig 输入调校
type InputConfig struct {
	// DirectionStep 方向键每次调整的幅度
	DirectionStep float64 `yaml:"directionStep"`
}

// DefaultLaneConfig 返回桌面档位的默认配置
func DefaultLaneConfig() *LaneConfig {
	pinY := 0.82 / 2
	return &LaneConfig{
		Profile: ProfileDesktop,
		Physics: PhysicsConfig{
			FixedDt:          1.0 / 60.0,
			MaxSubsteps:      4,
			ClampAccMax:      0.033,
			Gravity:          -9.81,
			SolverIterations: 14,
			SleepSpeedLimit:  0.1,
			SleepTimeLimit:   0.45,
			Materials: []ContactMaterialConfig{
				{A: MaterialFloor, B: MaterialFloor, Friction: 0.75, Restitution: 0.05},
				{A: MaterialBall, B: MaterialFloor, Friction: 0.18, Restitution: 0.03},
				{A: MaterialPin, B: MaterialFloor, Friction: 0.55, Restitution: 0.05},
				{A: MaterialBall, B: MaterialPin, Friction: 0.25, Restitution: 0.1},
				{A: MaterialPin, B: MaterialPin, Friction: 0.45, Restitution: 0.12},
			},
		},
		Lane: LaneGeometry{
			BallRadius:         0.25,
			BallMass:           6,
			BallLinearDamping:  0.25,
			BallAngularDamping: 0.35,
			BallSleepSpeed:     0.1,
			BallSleepTime:      0.4,
			BallStart:          Vec3{0, 0.25, 7},
			AimLateralScale:    0.8,
			PinHeight:          0.82,
			PinRadius:          0.1,
			PinMass:            1.6,
			PinDamping:         0.45,
			PinSleepSpeed:      0.12,
			PinSleepTime:       0.45,
			PinStandEpsilon:    0.003,
			PinPositions: []Vec3{
				{0.0, pinY, -15.0},
				{-0.23, pinY, -15.42},
				{0.23, pinY, -15.42},
				{-0.46, pinY, -15.84},
				{0.0, pinY, -15.84},
				{0.46, pinY, -15.84},
				{-0.69, pinY, -16.26},
				{-0.23, pinY, -16.26},
				{0.23, pinY, -16.26},
				{0.69, pinY, -16.26},
			},
			GutterX:           1.15,
			GutterHalfExtents: Vec3{0.05, 0.6, 32},
			BackWallCenter:    Vec3{0, 0.6, -19.5},
			BackWallHalf:      Vec3{3, 1.2, 0.2},
		},
		Throw: ThrowConfig{
			BaseSpeed:     18,
			PowerSpeed:    12,
			MaxAngle:      0.35,
			LateralFactor: 0.25,
			SpinFactor:    3,
			SpinYaw:       5,
			MinElapsed:    0.25,
			ForwardZ:      6.6,
			StopSpeed:     0.35,
			FarZ:          -20,
		},
		Capture: CaptureConfig{
			Z:            -18.2,
			X:            3.0,
			YHigh:        3.2,
			YLow:         -2.0,
			ParkPosition: Vec3{0, -50, -30},
		},
		Knock: KnockConfig{
			Tilt:   0.75,
			Height: 0.18,
		},
		Clamp: ClampConfig{
			VelX:       Range{Min: -6, Max: 6},
			VelY:       Range{Min: -4, Max: 6},
			VelZ:       Range{Min: -22, Max: 1.6},
			AngularMax: 22,
		},
		Impulse: ImpulseConfig{
			ShockCooldown:        0.07,
			PinCooldown:          0.12,
			MinBallSpeed:         2.0,
			Base:                 2.0,
			SpeedGain:            0.22,
			PowerBase:            0.85,
			PowerGain:            0.55,
			CenterBase:           0.75,
			CenterGain:           0.65,
			CenterHalfWidth:      0.95,
			LateralGain:          0.55,
			LateralClamp:         0.55,
			Lift:                 0.09,
			NeighborRadius:       0.95,
			NeighborCenterGain:   0.35,
			NeighborScale:        0.55,
			NeighborLateralGain:  0.22,
			NeighborLateralClamp: 0.25,
			NeighborLift:         0.06,
			Lever:                0.2,
		},
		Timing: TimingConfig{
			SettleDelay:       1.5,
			ResetDelay:        0.6,
			OverlayDuration:   2.5,
			ChargeInterval:    0.025,
			ChargeStep:        3,
			LockedNoticeDelay: 0.95,
			HitSoundInterval:  0.055,
		},
		Reward: RewardConfig{
			MaxAttempts:  3,
			BonusTiers:   []int{200, 150, 100},
			PointsPerPin: 10,
			StorageKey:   "qs_bowling_reward_v2",
		},
		Input: InputConfig{
			DirectionStep: 0.08,
		},
	}
}

// MobileLaneConfig 返回移动端档位的默认配置
// 仅物理参数不同：步长更大、子步和迭代更少、更容易休眠
func MobileLaneConfig() *LaneConfig {
	cfg := DefaultLaneConfig()
	cfg.Profile = ProfileMobile
	cfg.Physics.FixedDt = 1.0 / 40.0
	cfg.Physics.MaxSubsteps = 2
	cfg.Physics.ClampAccMax = 0.05
	cfg.Physics.SolverIterations = 10
	cfg.Physics.SleepSpeedLimit = 0.15
	cfg.Physics.SleepTimeLimit = 0.7
	cfg.Lane.BallSleepSpeed = 0.16
	cfg.Lane.BallSleepTime = 0.7
	cfg.Lane.PinDamping = 0.55
	cfg.Lane.PinSleepSpeed = 0.16
	cfg.Lane.PinSleepTime = 0.75
	return cfg
}

// LoadLaneConfig 加载球道配置
//
// 先读取 profile 字段选择档位默认值，再把文件内容覆盖到默认值之上，
// 因此 YAML 文件只需写出要修改的字段。
//
// 参数:
//   - path: 配置文件路径（如 "data/lane.yaml"）
//
// 返回:
//   - *LaneConfig: 合并后的配置
//   - error: 读取、解析或验证失败时返回错误
func LoadLaneConfig(path string) (*LaneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lane config: %w", err)
	}
	return ParseLaneConfig(data)
}

// ParseLaneConfig 从 YAML 数据解析球道配置（见 LoadLaneConfig）
func ParseLaneConfig(data []byte) (*LaneConfig, error) {
	var head struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to parse lane config: %w", err)
	}

	var cfg *LaneConfig
	switch head.Profile {
	case "", ProfileDesktop:
		cfg = DefaultLaneConfig()
	case ProfileMobile:
		cfg = MobileLaneConfig()
	default:
		return nil, fmt.Errorf("unknown lane profile %q", head.Profile)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse lane config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lane config: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置有效性
//
// 只检查会让模拟或状态机失效的取值，不对奖励档位的"公平性"做假设。
func (c *LaneConfig) Validate() error {
	if c.Physics.FixedDt <= 0 {
		return fmt.Errorf("physics.fixedDt must be > 0, got %v", c.Physics.FixedDt)
	}
	if c.Physics.MaxSubsteps < 1 {
		return fmt.Errorf("physics.maxSubsteps must be >= 1, got %d", c.Physics.MaxSubsteps)
	}
	if c.Physics.SolverIterations < 1 {
		return fmt.Errorf("physics.solverIterations must be >= 1, got %d", c.Physics.SolverIterations)
	}
	if len(c.Lane.PinPositions) != PinCount {
		return fmt.Errorf("lane.pinPositions must list %d pins, got %d", PinCount, len(c.Lane.PinPositions))
	}
	if c.Lane.BallRadius <= 0 || c.Lane.BallMass <= 0 {
		return fmt.Errorf("lane ball radius and mass must be > 0")
	}
	if c.Lane.PinRadius <= 0 || c.Lane.PinMass <= 0 || c.Lane.PinHeight <= 2*c.Lane.PinRadius {
		return fmt.Errorf("lane pin geometry invalid: height=%.3f radius=%.3f mass=%.3f",
			c.Lane.PinHeight, c.Lane.PinRadius, c.Lane.PinMass)
	}
	if c.Knock.Tilt <= 0 {
		return fmt.Errorf("knock.tilt must be > 0, got %v", c.Knock.Tilt)
	}
	for name, r := range map[string]Range{"velX": c.Clamp.VelX, "velY": c.Clamp.VelY, "velZ": c.Clamp.VelZ} {
		if r.Min > r.Max {
			return fmt.Errorf("clamp.%s invalid: min(%.2f) > max(%.2f)", name, r.Min, r.Max)
		}
	}
	if c.Clamp.AngularMax <= 0 {
		return fmt.Errorf("clamp.angularMax must be > 0, got %v", c.Clamp.AngularMax)
	}
	if c.Timing.ChargeInterval <= 0 || c.Timing.ChargeStep <= 0 {
		return fmt.Errorf("timing.chargeInterval and timing.chargeStep must be > 0")
	}
	if c.Timing.SettleDelay < 0 || c.Timing.ResetDelay < 0 {
		return fmt.Errorf("timing delays must be >= 0")
	}
	if c.Reward.MaxAttempts < 1 {
		return fmt.Errorf("reward.maxAttempts must be >= 1, got %d", c.Reward.MaxAttempts)
	}
	if len(c.Reward.BonusTiers) == 0 {
		return fmt.Errorf("reward.bonusTiers must not be empty")
	}
	for i, b := range c.Reward.BonusTiers {
		if b <= 0 {
			return fmt.Errorf("reward.bonusTiers[%d] must be > 0, got %d", i, b)
		}
	}
	if c.Reward.StorageKey == "" {
		return fmt.Errorf("reward.storageKey must not be empty")
	}
	return nil
}
