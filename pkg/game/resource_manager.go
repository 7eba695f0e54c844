package game

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/qscasino/bolosspirita/pkg/embedded"
)

// DefaultFontPath is the cache key used for the built-in Go Regular face.
const DefaultFontPath = "builtin:goregular"

// ResourceManager is responsible for centralized management of lane resources.
// It loads and caches audio players and font faces so that each file is
// decoded only once.
//
// Resources are looked up in the embedded file systems first (see package
// embedded) and then on disk relative to the working directory, so sound
// files can be dropped next to the binary without rebuilding.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. The caches are plain maps and are
// only touched from the game loop.
//
// Usage:
//
//	audioContext := audio.NewContext(48000)
//	rm := NewResourceManager(audioContext)
//	player, err := rm.LoadSoundEffect("assets/audio/hit.mp3")
//	if err != nil {
//	    log.Printf("Failed to load sound: %v", err)
//	}
type ResourceManager struct {
	audioCache    map[string]*audio.Player    // Cache for loaded audio players: path -> Player
	audioContext  *audio.Context              // Global audio context for audio decoding, may be nil
	fontFaceCache map[string]*text.GoTextFace // Cache for Ebitengine v2 text faces
	fontSources   map[string]*text.GoTextFaceSource
}

// NewResourceManager creates and initializes a new ResourceManager instance.
//
// Parameters:
//   - audioContext: The global audio context used for decoding. May be nil,
//     in which case every audio load fails and the lane runs silently.
//
// Returns:
//   - A pointer to a newly initialized ResourceManager with empty caches.
func NewResourceManager(audioContext *audio.Context) *ResourceManager {
	return &ResourceManager{
		audioCache:    make(map[string]*audio.Player),
		audioContext:  audioContext,
		fontFaceCache: make(map[string]*text.GoTextFace),
		fontSources:   make(map[string]*text.GoTextFaceSource),
	}
}

// ReadResource reads a resource file, preferring the embedded copy.
//
// Parameters:
//   - path: A slash separated path starting with "assets/" or "data/".
//
// Returns:
//   - The file content.
//   - An error if neither the embedded file systems nor the disk have the file.
func ReadResource(path string) ([]byte, error) {
	if data, err := embedded.ReadFile(path); err == nil {
		return data, nil
	}
	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read resource %s: %w", path, err)
	}
	return data, nil
}

// decodeAudio decodes an MP3 or OGG Vorbis file by its extension.
func decodeAudio(path string, data []byte) (interface {
	io.ReadSeeker
	Length() int64
}, error) {
	reader := bytes.NewReader(data)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		stream, err := mp3.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", path, err)
		}
		return stream, nil
	case ".ogg":
		stream, err := vorbis.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", path, err)
		}
		return stream, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg)", ext)
	}
}

// LoadAudio loads a looping audio track (the ambient loop) and caches it.
// Supported formats: MP3 (.mp3) and OGG Vorbis (.ogg).
//
// Parameters:
//   - path: The resource path (e.g., "assets/audio/ambient.mp3").
//
// Returns:
//   - A pointer to the audio player (ready to play, but not started).
//   - An error if there is no audio context, or the file cannot be read or decoded.
func (rm *ResourceManager) LoadAudio(path string) (*audio.Player, error) {
	return rm.loadPlayer(path, true)
}

// LoadSoundEffect loads a one-shot sound effect and caches it.
// Unlike LoadAudio, the stream is NOT wrapped in an infinite loop.
//
// Parameters:
//   - path: The resource path (e.g., "assets/audio/hit.mp3").
//
// Returns:
//   - A pointer to the audio player (ready to play, but not started).
//   - An error if there is no audio context, or the file cannot be read or decoded.
func (rm *ResourceManager) LoadSoundEffect(path string) (*audio.Player, error) {
	return rm.loadPlayer(path, false)
}

func (rm *ResourceManager) loadPlayer(path string, loop bool) (*audio.Player, error) {
	if cachedPlayer, exists := rm.audioCache[path]; exists {
		return cachedPlayer, nil
	}
	if rm.audioContext == nil {
		return nil, fmt.Errorf("no audio context for %s", path)
	}

	data, err := ReadResource(path)
	if err != nil {
		return nil, err
	}
	stream, err := decodeAudio(path, data)
	if err != nil {
		return nil, err
	}

	var src io.Reader = stream
	if loop {
		src = audio.NewInfiniteLoop(stream, stream.Length())
	}

	player, err := rm.audioContext.NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", path, err)
	}

	rm.audioCache[path] = player
	return player, nil
}

// GetAudioPlayer retrieves a previously loaded audio player from the cache.
// It returns nil if the audio has not been loaded yet.
func (rm *ResourceManager) GetAudioPlayer(path string) *audio.Player {
	return rm.audioCache[path]
}

// LoadFont loads a TrueType/OpenType font and creates a text face with the given size.
// The face is cached under a key combining path and size.
//
// Parameters:
//   - path: The resource path of the font (e.g., "assets/fonts/lane.ttf").
//   - size: The font size in pixels.
//
// Returns:
//   - A pointer to the text.GoTextFace ready for rendering.
//   - An error if the file cannot be read or parsed.
func (rm *ResourceManager) LoadFont(path string, size float64) (*text.GoTextFace, error) {
	cacheKey := fontCacheKey(path, size)
	if cachedFace, exists := rm.fontFaceCache[cacheKey]; exists {
		return cachedFace, nil
	}

	source, ok := rm.fontSources[path]
	if !ok {
		var fontData []byte
		if path == DefaultFontPath {
			fontData = goregular.TTF
		} else {
			data, err := ReadResource(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read font file %s: %w", path, err)
			}
			fontData = data
		}

		src, err := text.NewGoTextFaceSource(bytes.NewReader(fontData))
		if err != nil {
			return nil, fmt.Errorf("failed to create font source for %s: %w", path, err)
		}
		source = src
		rm.fontSources[path] = source
	}

	goTextFace := &text.GoTextFace{
		Source:    source,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}
	rm.fontFaceCache[cacheKey] = goTextFace
	return goTextFace, nil
}

// LoadDefaultFont returns the built-in Go Regular face at the given size.
func (rm *ResourceManager) LoadDefaultFont(size float64) (*text.GoTextFace, error) {
	return rm.LoadFont(DefaultFontPath, size)
}

// GetFont retrieves a previously loaded font face from the cache, or nil.
func (rm *ResourceManager) GetFont(path string, size float64) *text.GoTextFace {
	return rm.fontFaceCache[fontCacheKey(path, size)]
}

func fontCacheKey(path string, size float64) string {
	return fmt.Sprintf("%s:%.1f", path, size)
}
