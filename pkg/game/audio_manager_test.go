package game

import (
	"math"
	"testing"
)

func TestSoundVolume(t *testing.T) {
	tests := []struct {
		name     string
		settings *GameSettings
		volume   float64
		want     float64
	}{
		{"defaults full event", DefaultSettings(), 1, 0.9 * 0.95},
		{"defaults hit", DefaultSettings(), 0.5, 0.9 * 0.95 * 0.5},
		{"event above 1 clamps", DefaultSettings(), 3, 0.9 * 0.95},
		{"muted master", &GameSettings{MasterVolume: 0, SoundVolume: 1}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SoundVolume(tt.settings, tt.volume); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SoundVolume = %v, want %v", got, tt.want)
			}
		})
	}

	if got := MusicVolume(DefaultSettings()); math.Abs(got-0.9*0.35) > 1e-9 {
		t.Errorf("MusicVolume = %v, want %v", got, 0.9*0.35)
	}
}

func TestAudioManager_MissingSoundsDegradeSilently(t *testing.T) {
	chdirTemp(t)
	am := NewAudioManager(NewResourceManager(testAudioContext), nil)

	am.PlaySound(SoundHit, 0.5)
	am.PlaySound(SoundHit, 0.5)
	if !am.missing[SoundHit] {
		t.Error("missing hit sound should be remembered")
	}
	if len(am.soundPlayers) != 0 {
		t.Errorf("no players should be cached, got %d", len(am.soundPlayers))
	}

	am.PlaySound("unknown-event", 1)
	if !am.missing["unknown-event"] {
		t.Error("unmapped event should be marked missing")
	}

	if am.StartAmbient() {
		t.Error("ambient should not start without a file")
	}
	am.StopAmbient()
}

func TestAudioManager_DisabledSoundSkipsLoading(t *testing.T) {
	chdirTemp(t)
	sm, _ := NewSettingsManager(nil)
	sm.SetSoundEnabled(false)
	sm.SetMusicEnabled(false)
	am := NewAudioManager(NewResourceManager(testAudioContext), sm)

	am.PlaySound(SoundReward, 1)
	if am.missing[SoundReward] {
		t.Error("disabled sound should not even try to load")
	}
	if am.StartAmbient() {
		t.Error("disabled music should not start")
	}
}

func TestAudioManager_SetSoundFileClearsFailure(t *testing.T) {
	chdirTemp(t)
	am := NewAudioManager(NewResourceManager(nil), nil)

	am.PlaySound(SoundStrike, 1)
	if !am.missing[SoundStrike] {
		t.Fatal("strike should be missing")
	}
	am.SetSoundFile(SoundStrike, "assets/audio/other.ogg")
	if am.missing[SoundStrike] {
		t.Error("SetSoundFile should clear the failure mark")
	}
	if am.files[SoundStrike] != "assets/audio/other.ogg" {
		t.Errorf("file = %s", am.files[SoundStrike])
	}
}

func TestAudioManager_ImplementsSoundPlayer(t *testing.T) {
	var _ SoundPlayer = NewAudioManager(NewResourceManager(nil), nil)
}
