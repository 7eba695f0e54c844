// verify_lane 无窗口地运行若干次脚本化投球并打印结果
//
// 使用真实的物理世界、倒瓶检测、稳定性钳制和投球状态机，
// 用于调校 data/lane.yaml 之后快速检查结算是否符合预期。
//
// 用法：
//
//	go run ./cmd/verify_lane -throws 3 -power 0.8 -direction 0
//	go run ./cmd/verify_lane -config data/lane.yaml -power 1 -direction 0.1 -verbose
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/qscasino/bolosspirita/pkg/app"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/scenes"
)

var (
	throws     = flag.Int("throws", 3, "投球次数")
	power      = flag.Float64("power", 0.8, "出手力度（0..1）")
	direction  = flag.Float64("direction", 0, "出手方向（-1..1）")
	configPath = flag.String("config", "", "球道配置文件（默认 data/lane.yaml 或内置默认值）")
	verbose    = flag.Bool("verbose", false, "显示详细日志")
)

// frameDt 模拟的帧间隔
const frameDt = 1.0 / 60.0

// maxThrowFrames 单次投球最多模拟的帧数
const maxThrowFrames = 60 * 20

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := app.LoadLaneConfig(*configPath, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	store := game.NewMemoryRewardStore(nil)
	scene, err := scenes.NewLaneScene(scenes.LaneSceneOptions{Config: cfg, Store: store})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create lane: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("profile=%s power=%.2f direction=%.2f\n", cfg.Profile, *power, *direction)

	session := scene.Session()
	for i := 1; i <= *throws; i++ {
		if session.Locked() {
			fmt.Printf("throw %d: skipped, lane locked\n", i)
			continue
		}
		before := session.Ledger().KnockedCount()

		released, frames := throwOnce(scene, *power, *direction)
		if !released {
			fmt.Printf("throw %d: rejected in state %s\n", i, session.State())
			continue
		}
		ledger := session.Ledger()
		fmt.Printf("throw %d: knocked %d (total %d/%d) score=%d attempts=%d/%d state=%s frames=%d\n",
			i, ledger.KnockedCount()-before, ledger.KnockedCount(), len(cfg.Lane.PinPositions),
			ledger.Score(), ledger.AttemptsUsed(), ledger.MaxAttempts(), session.State(), frames)

		if m, open := session.Modal(); open {
			fmt.Printf("  modal: %s / %s\n", m.Title, m.Message)
			session.ConfirmModal()
			settle(scene, session)
		}
	}

	if r, ok := session.Ledger().Reward(); ok {
		fmt.Printf("reward: bonus=%d%% attempt=%d saves=%d\n", r.Bonus, r.AttemptNumber, store.Saves())
	} else {
		fmt.Println("reward: none")
	}
}

// throwOnce 蓄力到目标力度后出手，并模拟到结算完成
func throwOnce(scene *scenes.LaneScene, power, direction float64) (bool, int) {
	session := scene.Session()
	throw := scene.Throw()

	throw.SetDirection(direction)
	throw.StartCharge()
	for i := 0; i < 240 && session.State() == game.StateCharging; i++ {
		if session.PowerFraction() >= power {
			break
		}
		scene.Step(frameDt)
	}
	throw.ReleaseCharge()
	if session.State() != game.StateThrowing {
		return false, 0
	}

	frames := 0
	for ; frames < maxThrowFrames; frames++ {
		scene.Step(frameDt)
		switch session.State() {
		case game.StateAiming, game.StateLocked, game.StateResetting:
			return true, frames
		}
	}
	return true, frames
}

// settle 模拟到重置完成
func settle(scene *scenes.LaneScene, session *game.Session) {
	for i := 0; i < 120 && session.State() == game.StateResetting; i++ {
		scene.Step(frameDt)
	}
}
