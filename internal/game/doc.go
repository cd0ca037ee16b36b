// Package game implements the core Guandan game logic.
//
// The main types are Deal, which runs one round from dealing through
// tribute and trick play to the Score phase, and Match, which chains deals,
// applies level-up steps and decides overall victory.
//
// # Basic Usage
//
// Create a match and drive its deals:
//
//	m := game.NewMatch(rng)
//	d := m.StartDeal()
//	// Apply seat commands...
//	err := d.PlayHand(0, cardIDs)
//	// When the deal reaches Score, conclude it
//	if d.Phase() == game.Score {
//	    outcome := m.ConcludeDeal(d.FinishOrder())
//	}
//
// A Deal is synchronous and single-threaded: all methods must be called
// from one goroutine. The room actor in internal/server provides that
// serialisation; timers and bot decisions re-enter through the same queue.
//
// # Architecture
//
// Deal delegates to specialised components:
//   - deck.Deck: the 108-card two-pack stack with seeded shuffling
//   - rules.Classify / rules.Compare: hand shapes and the bomb ladder
//   - TributeState: tribute and return-tribute bookkeeping
//
// Match owns the Deal it started; the Deal never calls back into the
// Match. The caller watches for the Score phase and concludes the deal
// itself, which keeps ownership one-way.
package game
