package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 设备级设置（音量、全屏），与奖励记录分开保存
//
// 实际音量 = MasterVolume × 分组音量（SoundVolume 或 MusicVolume）× 事件音量
type GameSettings struct {
	MasterVolume float64 `yaml:"masterVolume"`
	MusicVolume  float64 `yaml:"musicVolume"`
	SoundVolume  float64 `yaml:"soundVolume"`
	MusicEnabled bool    `yaml:"musicEnabled"`
	SoundEnabled bool    `yaml:"soundEnabled"`
	Fullscreen   bool    `yaml:"fullscreen"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		MasterVolume: 0.9,
		MusicVolume:  0.35,
		SoundVolume:  0.95,
		MusicEnabled: true,
		SoundEnabled: true,
	}
}

// normalize 把音量限制在 0.0 ~ 1.0
func (s *GameSettings) normalize() {
	s.MasterVolume = clampVolume(s.MasterVolume)
	s.MusicVolume = clampVolume(s.MusicVolume)
	s.SoundVolume = clampVolume(s.SoundVolume)
}

// Muted 音效和音乐是否都已关闭
func (s *GameSettings) Muted() bool {
	return !s.SoundEnabled && !s.MusicEnabled
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "lane"
)

// SettingsManager 设置管理器
//
// 修改只作用于内存并标记为 dirty；Save 只在有未保存的修改时写入 gdata。
// gdataManager 为 nil 时处于降级模式：设置只存在于内存中。
type SettingsManager struct {
	gdataManager *gdata.Manager
	settings     *GameSettings
	dirty        bool
}

// NewSettingsManager 创建设置管理器并尝试读取已保存的设置
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留给调用方的错误位；读取失败只记录警告并使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return sm, nil
}

// Load 从 gdata 读取设置，缺省字段保留默认值
//
// 没有存储或没有记录时使用默认设置；数据损坏时使用默认设置并返回错误。
func (sm *SettingsManager) Load() error {
	sm.settings = DefaultSettings()
	sm.dirty = false

	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.normalize()

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded (master=%.2f, muted=%v)", loaded.MasterVolume, loaded.Muted())
	return nil
}

// Save 写入未保存的修改
//
// 降级模式或没有修改时直接返回 nil。
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil || !sm.dirty {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.dirty = false
	log.Printf("[SettingsManager] Settings saved")
	return nil
}

// GetSettings 获取当前设置（只读使用）
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// Dirty 是否有未保存的修改
func (sm *SettingsManager) Dirty() bool {
	return sm.dirty
}

// Update 修改设置；修改后音量会被重新限制
func (sm *SettingsManager) Update(fn func(s *GameSettings)) {
	before := *sm.settings
	fn(sm.settings)
	sm.settings.normalize()
	if *sm.settings != before {
		sm.dirty = true
	}
}

// SetMasterVolume 设置总音量
func (sm *SettingsManager) SetMasterVolume(volume float64) {
	sm.Update(func(s *GameSettings) { s.MasterVolume = volume })
}

// SetMusicVolume 设置音乐音量
func (sm *SettingsManager) SetMusicVolume(volume float64) {
	sm.Update(func(s *GameSettings) { s.MusicVolume = volume })
}

// SetSoundVolume 设置音效音量
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.Update(func(s *GameSettings) { s.SoundVolume = volume })
}

// SetMusicEnabled 设置音乐开关
func (sm *SettingsManager) SetMusicEnabled(enabled bool) {
	sm.Update(func(s *GameSettings) { s.MusicEnabled = enabled })
}

// SetSoundEnabled 设置音效开关
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.Update(func(s *GameSettings) { s.SoundEnabled = enabled })
}

// SetFullscreen 设置启动全屏
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.Update(func(s *GameSettings) { s.Fullscreen = enabled })
}

// ToggleMute 静音键：任一声音开着时全部关闭，否则全部打开
//
// 返回:
//   - bool: 切换后声音是否开启
func (sm *SettingsManager) ToggleMute() bool {
	enable := sm.settings.Muted()
	sm.Update(func(s *GameSettings) {
		s.SoundEnabled = enable
		s.MusicEnabled = enable
	})
	return enable
}

func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
