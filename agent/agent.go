package agent

import (
	"liarsdice/game"
)

// Agent is the single policy contract shared by every search engine
// and heuristic: given a position, return a move. Implementations are
// freely interchangeable in simulated matchups.
type Agent interface {
	FindMove(info game.InformationSet) (game.Move, error)
}
