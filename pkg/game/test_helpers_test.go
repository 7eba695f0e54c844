package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"

	"github.com/qscasino/bolosspirita/pkg/config"
)

// createTestGdataManager 创建用于测试的 gdata Manager
// 数据目录指向 t.TempDir()，测试结束自动清理
func createTestGdataManager(t *testing.T, testName string) *gdata.Manager {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", home)

	appName := fmt.Sprintf("bolos_test_%s_%d", testName, time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		t.Skipf("Cannot create gdata manager for testing: %v", err)
	}
	return manager
}

// recordingSound 记录播放过的音效
type recordingSound struct {
	played  []string
	volumes []float64
}

func (r *recordingSound) PlaySound(name string, volume float64) {
	r.played = append(r.played, name)
	r.volumes = append(r.volumes, volume)
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

func newTestSession(t *testing.T, store RewardStore) (*Session, *recordingSound) {
	t.Helper()
	sound := &recordingSound{}
	s := NewSession(config.DefaultLaneConfig(), SessionOptions{Store: store, Sound: sound})
	s.Clock = func() time.Time { return time.UnixMilli(1712345678901) }
	return s, sound
}
