package game

import (
	"errors"
	"sort"

	"github.com/qscasino/bolosspirita/pkg/config"
)

var (
	// ErrLedgerLocked 账本已锁定（奖励已获得），拒绝修改
	ErrLedgerLocked = errors.New("ledger is locked")

	// ErrNoReward 存储中没有奖励记录
	ErrNoReward = errors.New("no reward record")

	// ErrInvalidReward 奖励记录格式错误
	ErrInvalidReward = errors.New("invalid reward record")
)

// RewardRecord 持久化的奖励记录
// JSON 格式: {"bonus": 200, "attemptNumber": 1, "ts": 1712345678901}
type RewardRecord struct {
	// Bonus 奖励百分比
	Bonus int `json:"bonus"`

	// AttemptNumber 清台发生在第几次尝试（从 1 开始），0 表示旧记录未写入
	AttemptNumber int `json:"attemptNumber"`

	// Timestamp 获得时间（Unix 毫秒）
	Timestamp int64 `json:"ts"`
}

// Valid 记录是否可用：任何奖励值都视为已获得，尝试次数可以缺失
func (r RewardRecord) Valid() bool {
	return r.AttemptNumber >= 0
}

// BonusByAttempt 根据尝试次数查奖励档位
//
// 第 1 次清台取第一档，第 2 次取第二档，之后的尝试都取最后一档。
// 与分数无关，是一个固定查表。
//
// 参数:
//   - tiers: 奖励档位（按尝试顺序）
//   - attemptNumber: 清台发生的尝试编号（从 1 开始）
//
// 返回:
//   - int: 奖励百分比；tiers 为空时返回 0
func BonusByAttempt(tiers []int, attemptNumber int) int {
	if len(tiers) == 0 {
		return 0
	}
	i := attemptNumber - 1
	if i < 0 || i >= len(tiers) {
		i = len(tiers) - 1
	}
	return tiers[i]
}

// Ledger 尝试与奖励账本
//
// 记录本局累计倒瓶集合、分数、已用尝试次数和锁定状态。
// 倒瓶集合以球瓶编号为键，是唯一权威来源，重复标记同一个球瓶不会重复计数。
// 一旦锁定，所有修改操作都被拒绝，且不能重置。
type Ledger struct {
	cfg config.RewardConfig

	knocked      map[int]struct{}
	score        int
	attemptsUsed int
	locked       bool
	reward       *RewardRecord
}

// NewLedger 创建空账本
func NewLedger(cfg config.RewardConfig) *Ledger {
	return &Ledger{
		cfg:     cfg,
		knocked: make(map[int]struct{}),
	}
}

// MarkKnocked 把球瓶加入累计倒瓶集合
// 返回: 是否是新加入的球瓶
func (l *Ledger) MarkKnocked(index int) bool {
	if l.locked {
		return false
	}
	if _, ok := l.knocked[index]; ok {
		return false
	}
	l.knocked[index] = struct{}{}
	return true
}

// IsKnocked 球瓶是否在累计倒瓶集合中
func (l *Ledger) IsKnocked(index int) bool {
	_, ok := l.knocked[index]
	return ok
}

// KnockedCount 累计倒瓶数
func (l *Ledger) KnockedCount() int {
	return len(l.knocked)
}

// KnockedPins 累计倒瓶编号（升序）
func (l *Ledger) KnockedPins() []int {
	out := make([]int, 0, len(l.knocked))
	for i := range l.knocked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// AddPins 按本次击倒数加分
func (l *Ledger) AddPins(count int) {
	if l.locked || count <= 0 {
		return
	}
	l.score += count * l.cfg.PointsPerPin
}

// Score 当前分数
func (l *Ledger) Score() int {
	return l.score
}

// AttemptsUsed 已用尝试次数
func (l *Ledger) AttemptsUsed() int {
	return l.attemptsUsed
}

// MaxAttempts 最大尝试次数
func (l *Ledger) MaxAttempts() int {
	return l.cfg.MaxAttempts
}

// AttemptsRemaining 剩余尝试次数
func (l *Ledger) AttemptsRemaining() int {
	if r := l.cfg.MaxAttempts - l.attemptsUsed; r > 0 {
		return r
	}
	return 0
}

// NextAttempt 下一次（或正在进行的）尝试编号，从 1 开始
func (l *Ledger) NextAttempt() int {
	return l.attemptsUsed + 1
}

// CanThrow 是否允许出手：未锁定且仍有尝试次数
func (l *Ledger) CanThrow() bool {
	return !l.locked && l.attemptsUsed < l.cfg.MaxAttempts
}

// ConsumeAttempt 消耗一次尝试（不会超过上限）
// 返回: 是否已用完全部尝试
func (l *Ledger) ConsumeAttempt() bool {
	if l.locked {
		return false
	}
	if l.attemptsUsed < l.cfg.MaxAttempts {
		l.attemptsUsed++
	}
	return l.attemptsUsed >= l.cfg.MaxAttempts
}

// Exhausted 是否已用完全部尝试
func (l *Ledger) Exhausted() bool {
	return l.attemptsUsed >= l.cfg.MaxAttempts
}

// Bonus 本账本配置下某次尝试的奖励
func (l *Ledger) Bonus(attemptNumber int) int {
	return BonusByAttempt(l.cfg.BonusTiers, attemptNumber)
}

// Lock 锁定账本并记录奖励；已锁定时保留首次记录
func (l *Ledger) Lock(record RewardRecord) {
	if l.locked {
		return
	}
	l.locked = true
	r := record
	l.reward = &r
}

// Locked 是否已锁定
func (l *Ledger) Locked() bool {
	return l.locked
}

// Reward 已获得的奖励记录
func (l *Ledger) Reward() (RewardRecord, bool) {
	if l.reward == nil {
		return RewardRecord{}, false
	}
	return *l.reward, true
}

// Reset 清空倒瓶集合、分数和尝试次数
// 返回: 已锁定时返回 ErrLedgerLocked
func (l *Ledger) Reset() error {
	if l.locked {
		return ErrLedgerLocked
	}
	l.knocked = make(map[int]struct{})
	l.score = 0
	l.attemptsUsed = 0
	return nil
}
