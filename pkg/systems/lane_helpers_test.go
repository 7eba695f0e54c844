package systems

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/qscasino/bolosspirita/pkg/components"
	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/ecs"
	"github.com/qscasino/bolosspirita/pkg/entities"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/physics"
)

// recordingSound 记录播放过的音效
type recordingSound struct {
	played []string
}

func (r *recordingSound) PlaySound(name string, volume float64) {
	r.played = append(r.played, name)
}

func (r *recordingSound) count(name string) int {
	n := 0
	for _, p := range r.played {
		if p == name {
			n++
		}
	}
	return n
}

// testLane 无窗口的完整球道：实体、物理世界、会话和系统
type testLane struct {
	cfg       *config.LaneConfig
	em        *ecs.EntityManager
	lane      *entities.Lane
	session   *game.Session
	store     *game.MemoryRewardStore
	sound     *recordingSound
	knock     *KnockDetectionSystem
	stability *StabilitySystem
	throw     *ThrowSystem
}

func newTestLane(t *testing.T, saved *game.RewardRecord) *testLane {
	t.Helper()
	cfg := config.DefaultLaneConfig()
	em := ecs.NewEntityManager()
	lane, err := entities.NewLane(em, cfg)
	if err != nil {
		t.Fatalf("NewLane failed: %v", err)
	}

	store := game.NewMemoryRewardStore(saved)
	sound := &recordingSound{}
	session := game.NewSession(cfg, game.SessionOptions{Store: store, Sound: sound})
	session.Clock = func() time.Time { return time.UnixMilli(1712345678901) }

	knock := NewKnockDetectionSystem(em, session.Ledger(), cfg.Knock)
	stability := NewStabilitySystem(em, session, lane.Ball)
	stability.Register(lane.World)
	throw := NewThrowSystem(em, session, lane.World, knock, lane.Ball)
	throw.Start()

	return &testLane{
		cfg:       cfg,
		em:        em,
		lane:      lane,
		session:   session,
		store:     store,
		sound:     sound,
		knock:     knock,
		stability: stability,
		throw:     throw,
	}
}

func (l *testLane) body(id ecs.EntityID) *physics.Body {
	rb, ok := ecs.GetComponent[*components.RigidBodyComponent](l.em, id)
	if !ok {
		return nil
	}
	return rb.Body
}

func (l *testLane) ballBody() *physics.Body {
	return l.body(l.lane.Ball)
}

func (l *testLane) ball() *components.BallComponent {
	b, _ := ecs.GetComponent[*components.BallComponent](l.em, l.lane.Ball)
	return b
}

func (l *testLane) pin(index int) *components.PinComponent {
	p, _ := ecs.GetComponent[*components.PinComponent](l.em, l.lane.Pins[index])
	return p
}

// dropPin 把球瓶放低到倒瓶高度以下
func (l *testLane) dropPin(index int) {
	b := l.body(l.lane.Pins[index])
	p := b.Position
	b.Position = mgl64.Vec3{p.X(), 0.05, p.Z()}
}

// launch 蓄力 0.1 秒后出手
func (l *testLane) launch(t *testing.T) {
	t.Helper()
	l.throw.StartCharge()
	l.session.Update(0.1)
	l.throw.ReleaseCharge()
	if got := l.session.State(); got != game.StateThrowing {
		t.Fatalf("state after release = %s, want throwing", got)
	}
}

// throwKnocking 完成一次投球：指定的球瓶倒下，球越过远端被捕获，等待结算
func (l *testLane) throwKnocking(t *testing.T, pins ...int) {
	t.Helper()
	l.launch(t)
	for _, i := range pins {
		l.dropPin(i)
	}
	l.ballBody().Position = mgl64.Vec3{0, 0.25, -19}
	l.throw.Update(0)
	l.session.Update(l.cfg.Timing.SettleDelay + 0.1)
}

// step 一帧完整推进：物理步、速度钳制、会话时钟、投球状态机
func (l *testLane) step() {
	dt := l.cfg.Physics.FixedDt
	l.lane.World.Step(dt)
	l.stability.AfterStep(dt)
	l.session.Update(dt)
	l.throw.Update(dt)
}
