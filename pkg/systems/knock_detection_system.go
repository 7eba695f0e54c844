package systems

import (
	"log"

	"github.com/qscasino/bolosspirita/pkg/components"
	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/physics"
)

// IsKnocked 倒瓶判定规则
// 倾斜量 |x|+|z|（XYZ 欧拉角）超过阈值，或瓶心高度低于阈值，即为倒下
func IsKnocked(body *physics.Body, cfg config.KnockConfig) bool {
	return body.Tilt() > cfg.Tilt || body.Position.Y() < cfg.Height
}

// KnockDetectionSystem 倒瓶检测系统
//
// Sample 每帧调用一次，Finalize 在投球结算时调用；两者使用同一判定规则。
// 新倒下的球瓶同时写入 PinComponent 和账本的倒瓶集合（集合为准，不会重复计数）。
type KnockDetectionSystem struct {
	entityManager *ecs.EntityManager
	ledger        *game.Ledger
	cfg           config.KnockConfig
}

// NewKnockDetectionSystem 创建倒瓶检测系统
//
// 参数:
//   - em: 实体管理器
//   - ledger: 账本
//   - cfg: 倒瓶阈值
func NewKnockDetectionSystem(em *ecs.EntityManager, ledger *game.Ledger, cfg config.KnockConfig) *KnockDetectionSystem {
	return &KnockDetectionSystem{
		entityManager: em,
		ledger:        ledger,
		cfg:           cfg,
	}
}

// Sample 每帧的倒瓶采样
// 返回: 本次新判定倒下的球瓶数
func (s *KnockDetectionSystem) Sample() int {
	return s.detect()
}

// Finalize 投球结算前的完整检测
// 覆盖上一帧采样之后才越过阈值的球瓶
// 返回: 本次新判定倒下的球瓶数
func (s *KnockDetectionSystem) Finalize() int {
	n := s.detect()
	if n > 0 {
		log.Printf("[KnockDetectionSystem] Finalize caught %d more pin(s), total=%d", n, s.ledger.KnockedCount())
	}
	return n
}

func (s *KnockDetectionSystem) detect() int {
	// 锁定后倒瓶集合冻结
	if s.ledger.Locked() {
		return 0
	}

	newly := 0
	for _, id := range ecs.GetEntitiesWith2[*components.PinComponent, *components.RigidBodyComponent](s.entityManager) {
		pin, _ := ecs.GetComponent[*components.PinComponent](s.entityManager, id)
		rb, _ := ecs.GetComponent[*components.RigidBodyComponent](s.entityManager, id)
		if pin.IsRemoved || pin.IsKnocked {
			continue
		}
		if !IsKnocked(rb.Body, s.cfg) {
			continue
		}

		pin.IsKnocked = true
		if s.ledger.MarkKnocked(pin.Index) {
			newly++
		}
	}
	return newly
}
