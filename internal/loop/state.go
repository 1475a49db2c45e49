package loop

import "github.com/tomz197/tetris/internal/game"

// Reason tells why a session ended.
type Reason int

const (
	ReasonNone       Reason = iota
	ReasonQuit              // player pressed q or Ctrl-C
	ReasonGameOver          // the next piece could not spawn
	ReasonDisconnect        // key source closed
	ReasonShutdown          // context cancelled, e.g. server stopping
)

var reasonNames = [...]string{"none", "quit", "game-over", "disconnect", "shutdown"}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Message is the text shown when the session ends for this reason.
func (r Reason) Message() string {
	if r == ReasonShutdown {
		return "Server is shutting down. Game over!"
	}
	return "Game over!"
}

// Result is the outcome of a finished session.
type Result struct {
	Reason Reason
	Score  game.Score
}
