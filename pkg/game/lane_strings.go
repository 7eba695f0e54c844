package game

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
)

//go:embed lane_strings.txt
var defaultLaneStrings []byte

// 文本键
const (
	StrModalSuccessTitle     = "MODAL_SUCCESS_TITLE"
	StrModalSuccessMessage   = "MODAL_SUCCESS_MESSAGE"
	StrModalExhaustedTitle   = "MODAL_EXHAUSTED_TITLE"
	StrModalExhaustedMessage = "MODAL_EXHAUSTED_MESSAGE"
	StrModalExhaustedConfirm = "MODAL_EXHAUSTED_CONFIRM"
	StrModalReloadTitle      = "MODAL_RELOAD_TITLE"
	StrModalReloadMessage    = "MODAL_RELOAD_MESSAGE"
	StrModalConfirm          = "MODAL_CONFIRM"
	StrLaunchAiming          = "LAUNCH_AIMING"
	StrLaunchCharging        = "LAUNCH_CHARGING"
	StrLaunchLocked          = "LAUNCH_LOCKED"
	StrLaunchWait            = "LAUNCH_WAIT"
	StrOverlayStrike         = "OVERLAY_STRIKE"
	StrOverlaySpare          = "OVERLAY_SPARE"
	StrInstructions          = "INSTRUCTIONS"
	StrHUDScore              = "HUD_SCORE"
	StrHUDAttempts           = "HUD_ATTEMPTS"
)

// LaneStrings 界面文本管理器
// 从 [KEY] + 文本行 格式的数据加载，支持通过键快速查询
type LaneStrings struct {
	strings map[string]string // 键 -> 文本映射
}

// DefaultLaneStrings 返回内置的界面文本
func DefaultLaneStrings() *LaneStrings {
	ls, err := NewLaneStrings(bytes.NewReader(defaultLaneStrings))
	if err != nil {
		// 内置数据解析失败只可能是构建问题
		panic(fmt.Sprintf("builtin lane strings: %v", err))
	}
	return ls
}

// NewLaneStrings 从 reader 加载文本
//
// 文件格式：
//
//	[KEY]
//	文本内容
//
// 示例：
//
//	[LAUNCH_AIMING]
//	LANZAR
func NewLaneStrings(r io.Reader) (*LaneStrings, error) {
	ls := &LaneStrings{
		strings: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentKey = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		if currentKey != "" {
			ls.strings[currentKey] = line
			currentKey = ""
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lane strings: %w", err)
	}
	return ls, nil
}

// GetString 根据键获取文本；键不存在时返回 "[key]"（调试用）
func (ls *LaneStrings) GetString(key string) string {
	if text, ok := ls.strings[key]; ok {
		return text
	}
	return "[" + key + "]"
}

// Format 取文本并按 fmt 占位符格式化
func (ls *LaneStrings) Format(key string, args ...interface{}) string {
	return fmt.Sprintf(ls.GetString(key), args...)
}
