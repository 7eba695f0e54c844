package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene 记录 Update/Draw 调用
type MockScene struct {
	updateCalled bool
	drawCalled   bool
	deltaTime    float64
}

func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

// saveableScene 记录 SaveOnExit 调用
type saveableScene struct {
	MockScene
	saved  int
	result bool
}

func (s *saveableScene) SaveOnExit() bool {
	s.saved++
	return s.result
}

func TestSceneManagerSwitchTo(t *testing.T) {
	sm := NewSceneManager()
	if sm.GetCurrentScene() != nil {
		t.Fatal("expected no scene initially")
	}

	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)
	if sm.GetCurrentScene() != mockScene {
		t.Error("SwitchTo did not set the current scene correctly")
	}
}

func TestSceneManagerUpdateAndDraw(t *testing.T) {
	sm := NewSceneManager()

	// 没有场景时不应 panic
	sm.Update(0.016)
	sm.Draw(nil)

	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)
	sm.Update(0.016)
	sm.Draw(nil)

	if !mockScene.updateCalled || mockScene.deltaTime != 0.016 {
		t.Errorf("Update not forwarded: %+v", mockScene)
	}
	if !mockScene.drawCalled {
		t.Error("Draw not forwarded")
	}
}

func TestSceneManagerSaveOnExit(t *testing.T) {
	tests := []struct {
		name  string
		scene Scene
		want  bool
	}{
		{"no scene", nil, true},
		{"scene without save", &MockScene{}, true},
		{"save succeeds", &saveableScene{result: true}, true},
		{"save fails", &saveableScene{result: false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewSceneManager()
			sm.SwitchTo(tt.scene)
			if got := sm.SaveOnExit(); got != tt.want {
				t.Errorf("SaveOnExit() = %v, want %v", got, tt.want)
			}
			if s, ok := tt.scene.(*saveableScene); ok && s.saved != 1 {
				t.Errorf("SaveOnExit called %d times, want 1", s.saved)
			}
		})
	}
}

func TestSceneManagerSwitchSavesOutgoingScene(t *testing.T) {
	sm := NewSceneManager()
	first := &saveableScene{result: true}
	sm.SwitchTo(first)

	sm.SwitchTo(first)
	if first.saved != 0 {
		t.Error("switching to the same scene should not save")
	}

	sm.SwitchTo(&MockScene{})
	if first.saved != 1 {
		t.Errorf("outgoing scene saved %d times, want 1", first.saved)
	}
}
