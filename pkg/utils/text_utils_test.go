package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

func testFace(t *testing.T) *text.GoTextFace {
	t.Helper()
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		t.Fatalf("无法创建字体源: %v", err)
	}
	return &text.GoTextFace{Source: source, Size: 16}
}

// TestWrapText 测试文本换行功能
func TestWrapText(t *testing.T) {
	font := testFace(t)

	tests := []struct {
		name      string
		input     string
		maxWidth  float64
		expectMin int
	}{
		{"短文本不换行", "Bien hecho", 1000, 1},
		{"长文本自动换行", "Derribaste todos los bolos y ganaste el bono de bienvenida de la casa", 200, 2},
		{"显式换行", "Premio: 150\nIntento 2", 1000, 2},
		{"超长单词强制断行", strings.Repeat("W", 80), 120, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := WrapText(tt.input, font, tt.maxWidth)
			if len(lines) < tt.expectMin {
				t.Errorf("期望至少 %d 行，实际得到 %d 行: %q", tt.expectMin, len(lines), lines)
			}
			for i, line := range lines {
				if strings.ContainsRune(line, ' ') && measureTextWidth(line, font) > tt.maxWidth {
					t.Errorf("第 %d 行超宽: %q", i+1, line)
				}
			}
		})
	}
}

func TestWrapText_KeepsAllWords(t *testing.T) {
	font := testFace(t)
	input := "Te quedan dos intentos para derribar los diez bolos"
	lines := WrapText(input, font, 150)
	if got := strings.Join(lines, " "); got != input {
		t.Errorf("joined = %q, want %q", got, input)
	}
}

// TestWrapTextEdgeCases 测试边界情况
func TestWrapTextEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		font     *text.GoTextFace
		maxWidth float64
		wantLen  int
	}{
		{"nil font", "hola", nil, 100, 1},
		{"zero maxWidth", "hola", &text.GoTextFace{Size: 22}, 0, 1},
		{"negative maxWidth", "hola", &text.GoTextFace{Size: 22}, -100, 1},
		{"empty text", "", &text.GoTextFace{Size: 22}, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := WrapText(tt.input, tt.font, tt.maxWidth)
			if len(lines) != tt.wantLen {
				t.Errorf("期望 %d 行，实际得到 %d 行", tt.wantLen, len(lines))
			}
		})
	}
}
