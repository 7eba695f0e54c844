//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译：
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.qscasino.bolos -o build/android/bolos.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Bolos.xcframework -v ./mobile
//
// 移动端不嵌入资源：使用 mobile 性能档位的内置配置，音效缺失时静默运行。
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/qscasino/bolosspirita/pkg/app"
	"github.com/qscasino/bolosspirita/pkg/config"
)

func init() {
	gameApp, err := app.NewApp(app.Config{
		Verbose: true,
		Profile: config.ProfileMobile,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
