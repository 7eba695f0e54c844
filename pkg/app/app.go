// Package app 提供球道应用的核心包装器
//
// 该包把初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/game"
	"github.com/qscasino/bolosspirita/pkg/scenes"
	"github.com/qscasino/bolosspirita/pkg/systems"
	"github.com/qscasino/bolosspirita/pkg/utils"
)

// AppName gdata 存储使用的应用名
const AppName = "bolos_spirita"

// DefaultConfigPath 内置或磁盘上的球道配置
const DefaultConfigPath = "data/lane.yaml"

// 字号
const (
	fontSizeBody  = 16
	fontSizeTitle = 22
	fontSizeLarge = 56
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool

	// ConfigPath 球道配置文件；为空时使用内置 data/lane.yaml 或默认值
	ConfigPath string

	// Profile 没有配置文件时选择的性能档位（"desktop" / "mobile"）
	Profile string

	// Fullscreen 强制全屏启动（否则按保存的设置）
	Fullscreen bool
}

// App 是球道应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager    *game.SceneManager
	audioManager    *game.AudioManager
	settingsManager *game.SettingsManager
	verbose         bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化球道应用
//
// 调用此函数前，应先调用 embedded.Init() 注册内置资源。
// 存储、音频、字体和指标的初始化失败都只记录警告，应用仍以降级模式启动。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	profile := cfg.Profile
	if profile == "" && utils.IsMobile() {
		profile = config.ProfileMobile
	}
	laneConfig, err := LoadLaneConfig(cfg.ConfigPath, profile)
	if err != nil {
		return nil, fmt.Errorf("球道配置加载失败: %w", err)
	}
	log.Printf("[App] Lane config loaded (profile=%s)", laneConfig.Profile)

	// 跨平台存储
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: Failed to prepare storage dir: %v", err)
	}
	gdataManager, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: Storage unavailable, rewards will not persist: %v", err)
		gdataManager = nil
	} else if path := utils.GetStoragePath(); path != "" {
		log.Printf("[App] Storage path: %s", path)
	}

	settingsManager, _ := game.NewSettingsManager(gdataManager)
	if cfg.Fullscreen {
		settingsManager.SetFullscreen(true)
	}

	// 音频
	audioContext := audio.NewContext(48000)
	resourceManager := game.NewResourceManager(audioContext)
	audioManager := game.NewAudioManager(resourceManager, settingsManager)
	audioManager.Preload()
	audioManager.StartAmbient()
	log.Printf("[App] AudioManager initialized")

	metrics, err := game.NewMetrics()
	if err != nil {
		log.Printf("[App] Warning: Metrics disabled: %v", err)
		metrics = nil
	}

	scene, err := scenes.NewLaneScene(scenes.LaneSceneOptions{
		Config:   laneConfig,
		Store:    game.NewRewardStore(gdataManager, laneConfig.Reward.StorageKey),
		Sound:    audioManager,
		Metrics:  metrics,
		Fonts:    loadFonts(resourceManager),
		Settings: settingsManager,
	})
	if err != nil {
		return nil, fmt.Errorf("球道场景创建失败: %w", err)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scene)

	return &App{
		sceneManager:    sceneManager,
		audioManager:    audioManager,
		settingsManager: settingsManager,
		verbose:         cfg.Verbose,
	}, nil
}

// LoadLaneConfig 选择球道配置
//
// 优先级：显式路径 > 移动端档位 > 内置或磁盘上的 data/lane.yaml > 桌面默认值
func LoadLaneConfig(path, profile string) (*config.LaneConfig, error) {
	if path != "" {
		return config.LoadLaneConfig(path)
	}
	if profile == config.ProfileMobile {
		return config.MobileLaneConfig(), nil
	}
	if data, err := game.ReadResource(DefaultConfigPath); err == nil {
		return config.ParseLaneConfig(data)
	}
	return config.DefaultLaneConfig(), nil
}

// loadFonts 加载内置字体；失败时返回零值（渲染退回调试字体）
func loadFonts(rm *game.ResourceManager) systems.LaneFonts {
	var fonts systems.LaneFonts
	var err error
	if fonts.Body, err = rm.LoadDefaultFont(fontSizeBody); err != nil {
		log.Printf("[App] Warning: Failed to load font: %v", err)
		return systems.LaneFonts{}
	}
	fonts.Title, _ = rm.LoadDefaultFont(fontSizeTitle)
	fonts.Large, _ = rm.LoadDefaultFont(fontSizeLarge)
	return fonts
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		a.sceneManager.SaveOnExit()
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	// M 静音 / 取消静音
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.toggleMute()
	}

	deltaTime := 1.0 / 60.0
	a.sceneManager.Update(deltaTime)
	return nil
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settingsManager.SetFullscreen(false)
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		return
	}
	ebiten.SetFullscreen(true)
	a.settingsManager.SetFullscreen(true)
}

func (a *App) toggleMute() {
	enabled := a.settingsManager.ToggleMute()
	a.audioManager.ApplySettings()
	if enabled {
		a.audioManager.StartAmbient()
	}
	log.Printf("[App] Sound enabled: %v", enabled)
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸（竖屏），Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Fullscreen 启动时是否应进入全屏
func (a *App) Fullscreen() bool {
	return a.settingsManager.GetSettings().Fullscreen
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
