package game

import (
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/quasilyte/gdata/v2"
)

// RewardStore 奖励记录的持久化接口（单键）
type RewardStore interface {
	// Load 读取奖励记录
	// 无记录返回 ErrNoReward，格式错误返回包装了 ErrInvalidReward 的错误
	Load() (RewardRecord, error)

	// Save 写入奖励记录
	Save(record RewardRecord) error
}

// 存储路径常量
const rewardObject = "reward"

// GdataRewardStore 基于 gdata 的奖励存储
// gdataManager 可为 nil（降级模式：读取总是无记录，写入静默忽略）
type GdataRewardStore struct {
	gdataManager *gdata.Manager
	key          string
}

// NewRewardStore 创建奖励存储
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil
//   - key: 存储键（如 "qs_bowling_reward_v2"）
func NewRewardStore(gdataManager *gdata.Manager, key string) *GdataRewardStore {
	return &GdataRewardStore{
		gdataManager: gdataManager,
		key:          key,
	}
}

// Load 从 gdata 读取奖励记录
func (s *GdataRewardStore) Load() (RewardRecord, error) {
	if s.gdataManager == nil {
		return RewardRecord{}, ErrNoReward
	}
	if !s.gdataManager.ObjectPropExists(rewardObject, s.key) {
		return RewardRecord{}, ErrNoReward
	}

	data, err := s.gdataManager.LoadObjectProp(rewardObject, s.key)
	if err != nil {
		return RewardRecord{}, fmt.Errorf("failed to load reward record: %w", err)
	}
	return DecodeRewardRecord(data)
}

// Save 把奖励记录写入 gdata
func (s *GdataRewardStore) Save(record RewardRecord) error {
	if s.gdataManager == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal reward record: %w", err)
	}
	if err := s.gdataManager.SaveObjectProp(rewardObject, s.key, data); err != nil {
		return fmt.Errorf("failed to save reward record: %w", err)
	}

	log.Printf("[RewardStore] Reward saved: bonus=%d attempt=%d", record.Bonus, record.AttemptNumber)
	return nil
}

// storedReward 存储中的原始字段；只有 bonus 是必需的数字
type storedReward struct {
	Bonus         *float64 `json:"bonus"`
	AttemptNumber *float64 `json:"attemptNumber"`
	Timestamp     *float64 `json:"ts"`
}

// DecodeRewardRecord 解析 JSON 奖励记录
//
// 只要 bonus 是数字就视为已获得奖励；attemptNumber 和 ts 缺失时为 0。
// 解析失败或 bonus 缺失时返回包装了 ErrInvalidReward 的错误
func DecodeRewardRecord(data []byte) (RewardRecord, error) {
	var raw storedReward
	if err := json.Unmarshal(data, &raw); err != nil {
		return RewardRecord{}, fmt.Errorf("%w: %v", ErrInvalidReward, err)
	}
	if raw.Bonus == nil {
		return RewardRecord{}, fmt.Errorf("%w: missing bonus", ErrInvalidReward)
	}

	record := RewardRecord{Bonus: int(math.Round(*raw.Bonus))}
	if raw.AttemptNumber != nil && *raw.AttemptNumber > 0 {
		record.AttemptNumber = int(*raw.AttemptNumber)
	}
	if raw.Timestamp != nil {
		record.Timestamp = int64(*raw.Timestamp)
	}
	return record, nil
}

// MemoryRewardStore 内存中的奖励存储（无窗口验证工具和测试使用）
type MemoryRewardStore struct {
	record *RewardRecord
	saves  int
}

// NewMemoryRewardStore 创建内存奖励存储；initial 为 nil 表示无记录
func NewMemoryRewardStore(initial *RewardRecord) *MemoryRewardStore {
	return &MemoryRewardStore{record: initial}
}

// Load 读取记录
func (m *MemoryRewardStore) Load() (RewardRecord, error) {
	if m.record == nil {
		return RewardRecord{}, ErrNoReward
	}
	if !m.record.Valid() {
		return RewardRecord{}, ErrInvalidReward
	}
	return *m.record, nil
}

// Save 写入记录
func (m *MemoryRewardStore) Save(record RewardRecord) error {
	r := record
	m.record = &r
	m.saves++
	return nil
}

// Saves 写入次数
func (m *MemoryRewardStore) Saves() int {
	return m.saves
}
