package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// AudioDir 音效文件目录，事件 name 对应 AudioDir/name.mp3
const AudioDir = "assets/audio/"

// AudioManager 音频管理器
// 职责：
//   - 把会话发出的音效事件（charge、throw、hit ...）映射到音频文件并播放
//   - 播放循环的环境音乐
//   - 按 SettingsManager 的总音量、分组音量和开关计算实际音量
//
// 音频不可用（没有音频上下文、文件缺失或解码失败）时静默降级：
// 每个缺失的事件只记录一次警告，之后直接忽略，玩法不受影响。
type AudioManager struct {
	resourceManager *ResourceManager         // 资源管理器（用于加载音频）
	settingsManager *SettingsManager         // 设置管理器（音量与开关，可为 nil）
	files           map[string]string        // 事件名 -> 文件路径
	soundPlayers    map[string]*audio.Player // 音效播放器缓存（事件名 -> 播放器）
	missing         map[string]bool          // 加载失败过的事件
	ambient         *audio.Player            // 当前环境音乐
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - rm: ResourceManager 实例（用于加载音频文件）
//   - sm: SettingsManager 实例（用于读取音量设置，可为 nil）
//
// 返回：
//   - *AudioManager: 音频管理器实例
func NewAudioManager(rm *ResourceManager, sm *SettingsManager) *AudioManager {
	am := &AudioManager{
		resourceManager: rm,
		settingsManager: sm,
		files:           make(map[string]string),
		soundPlayers:    make(map[string]*audio.Player),
		missing:         make(map[string]bool),
	}
	for _, name := range []string{SoundCharge, SoundThrow, SoundHit, SoundStrike, SoundSpare, SoundReward, SoundFail, SoundAmbient} {
		am.files[name] = AudioDir + name + ".mp3"
	}
	return am
}

// SetSoundFile 替换某个事件的音频文件（清除该事件的缓存和失败标记）
func (am *AudioManager) SetSoundFile(name, path string) {
	am.files[name] = path
	delete(am.soundPlayers, name)
	delete(am.missing, name)
}

// PlaySound 播放一次音效（实现 SoundPlayer）
//
// 参数：
//   - name: 音效事件名
//   - volume: 事件音量 (0.0 ~ 1.0)，再乘以总音量和音效音量
func (am *AudioManager) PlaySound(name string, volume float64) {
	settings := am.settings()
	if !settings.SoundEnabled {
		return
	}

	player := am.getSoundPlayer(name)
	if player == nil {
		return
	}

	player.SetVolume(SoundVolume(settings, volume))
	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to rewind sound %s: %v", name, err)
	}
	player.Play()
}

// StartAmbient 开始循环播放环境音乐；已在播放时不重复
//
// 返回：
//   - bool: 环境音乐是否在播放
func (am *AudioManager) StartAmbient() bool {
	settings := am.settings()
	if !settings.MusicEnabled {
		return false
	}
	if am.ambient != nil && am.ambient.IsPlaying() {
		return true
	}
	if am.missing[SoundAmbient] {
		return false
	}

	player, err := am.resourceManager.LoadAudio(am.files[SoundAmbient])
	if err != nil {
		am.missing[SoundAmbient] = true
		log.Printf("[AudioManager] Warning: Ambient loop unavailable: %v", err)
		return false
	}

	player.SetVolume(MusicVolume(settings))
	player.Play()
	am.ambient = player
	log.Printf("[AudioManager] Playing ambient loop (volume: %.2f)", MusicVolume(settings))
	return true
}

// StopAmbient 停止环境音乐
func (am *AudioManager) StopAmbient() {
	if am.ambient != nil {
		am.ambient.Pause()
		am.ambient = nil
	}
}

// ApplySettings 把当前设置应用到正在播放的环境音乐
func (am *AudioManager) ApplySettings() {
	settings := am.settings()
	if !settings.MusicEnabled {
		am.StopAmbient()
		return
	}
	if am.ambient != nil {
		am.ambient.SetVolume(MusicVolume(settings))
	}
}

// Preload 预加载所有音效，避免首次播放时的解码延迟
func (am *AudioManager) Preload() {
	loaded := 0
	for name := range am.files {
		if name == SoundAmbient {
			continue
		}
		if am.getSoundPlayer(name) != nil {
			loaded++
		}
	}
	log.Printf("[AudioManager] Preloaded %d/%d sounds", loaded, len(am.files)-1)
}

// getSoundPlayer 获取或加载音效播放器；失败的事件只尝试一次
func (am *AudioManager) getSoundPlayer(name string) *audio.Player {
	if player, exists := am.soundPlayers[name]; exists {
		return player
	}
	if am.missing[name] {
		return nil
	}

	path, ok := am.files[name]
	if !ok {
		am.missing[name] = true
		return nil
	}

	player, err := am.resourceManager.LoadSoundEffect(path)
	if err != nil {
		am.missing[name] = true
		log.Printf("[AudioManager] Warning: Sound %s unavailable: %v", name, err)
		return nil
	}
	am.soundPlayers[name] = player
	return player
}

func (am *AudioManager) settings() *GameSettings {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings()
	}
	return DefaultSettings()
}

// SoundVolume 音效的实际音量：总音量 × 音效音量 × 事件音量
func SoundVolume(s *GameSettings, volume float64) float64 {
	return clampVolume(s.MasterVolume * s.SoundVolume * clampVolume(volume))
}

// MusicVolume 环境音乐的实际音量：总音量 × 音乐音量
func MusicVolume(s *GameSettings) float64 {
	return clampVolume(s.MasterVolume * s.MusicVolume)
}
