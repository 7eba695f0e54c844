package game

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/qscasino/bolosspirita/pkg/game"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics 球道计数器
// 使用全局 OTel provider；未配置时为 no-op。
// nil *Metrics 的所有方法都是空操作。
type Metrics struct {
	throws    metric.Int64Counter
	pins      metric.Int64Counter
	rewards   metric.Int64Counter
	exhausted metric.Int64Counter
	resets    metric.Int64Counter
}

// NewMetrics 创建计数器
func NewMetrics() (*Metrics, error) {
	m := meter()
	out := &Metrics{}

	var err error
	out.throws, err = m.Int64Counter(
		"lane.throws",
		metric.WithDescription("Total balls released"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating throws counter: %w", err)
	}

	out.pins, err = m.Int64Counter(
		"lane.pins.knocked",
		metric.WithDescription("Total pins knocked, counted at throw resolution"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pins counter: %w", err)
	}

	out.rewards, err = m.Int64Counter(
		"lane.rewards.granted",
		metric.WithDescription("Total rewards granted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rewards counter: %w", err)
	}

	out.exhausted, err = m.Int64Counter(
		"lane.attempts.exhausted",
		metric.WithDescription("Total games that ran out of attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exhausted counter: %w", err)
	}

	out.resets, err = m.Int64Counter(
		"lane.resets",
		metric.WithDescription("Total full game resets"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resets counter: %w", err)
	}

	return out, nil
}

// ThrowReleased 记录一次出手
func (m *Metrics) ThrowReleased(attempt int) {
	if m == nil {
		return
	}
	m.throws.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("attempt", attempt)))
}

// PinsKnocked 记录一次结算的击倒数
func (m *Metrics) PinsKnocked(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.pins.Add(context.Background(), int64(count))
}

// RewardGranted 记录一次奖励
func (m *Metrics) RewardGranted(bonus, attempt int) {
	if m == nil {
		return
	}
	m.rewards.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Int("bonus", bonus),
		attribute.Int("attempt", attempt),
	))
}

// AttemptsExhausted 记录一次尝试用尽
func (m *Metrics) AttemptsExhausted() {
	if m == nil {
		return
	}
	m.exhausted.Add(context.Background(), 1)
}

// GameReset 记录一次完整重置
func (m *Metrics) GameReset() {
	if m == nil {
		return
	}
	m.resets.Add(context.Background(), 1)
}
