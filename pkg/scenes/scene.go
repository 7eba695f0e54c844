package scenes

import (
	"github.com/qscasino/bolosspirita/pkg/game"
)

// Scene is a type alias for game.Scene.
// All scene implementations should implement the game.Scene interface.
type Scene = game.Scene

var (
	_ Scene         = (*LaneScene)(nil)
	_ game.Saveable = (*LaneScene)(nil)
)
