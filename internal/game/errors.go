package game

import "errors"

// Sentinel errors returned by the deal engine. ErrOutOfPhase and
// ErrNotYourTurn mark stale commands that arrive after a phase change or
// out of turn; the room drops those silently. The remainder are rule
// violations reported privately to the offending seat, whose turn is
// retained.
var (
	ErrOutOfPhase        = errors.New("command does not apply in this phase")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNotBigEnough      = errors.New("does not beat the last hand")
	ErrCardNotHeld       = errors.New("card not in hand")
	ErrCannotPass        = errors.New("cannot pass on a free lead")
	ErrNotLargestTribute = errors.New("tribute must be the largest card in hand")
)

// IsStale reports whether err marks a command that should be dropped
// without a reply (wrong phase or wrong turn, typically a replay after
// reconnect).
func IsStale(err error) bool {
	return errors.Is(err, ErrOutOfPhase) || errors.Is(err, ErrNotYourTurn)
}
