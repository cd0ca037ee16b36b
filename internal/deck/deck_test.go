package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/guandan/internal/randutil"
)

func TestNewDeckComposition(t *testing.T) {
	d := New(nil)
	cards := d.Cards()
	require.Len(t, cards, Size)

	ids := make(map[string]bool, Size)
	suitCounts := make(map[Suit]int)
	rankCounts := make(map[Rank]int)
	for _, c := range cards {
		assert.False(t, ids[c.ID()], "duplicate identity tag %s", c.ID())
		ids[c.ID()] = true
		suitCounts[c.Suit]++
		rankCounts[c.Rank]++
	}

	for suit := Diamonds; suit <= Spades; suit++ {
		assert.Equal(t, 26, suitCounts[suit], "suit %s", suit)
	}
	assert.Equal(t, 4, suitCounts[Jokers])
	for rank := Two; rank <= Ace; rank++ {
		assert.Equal(t, 8, rankCounts[rank], "rank %s", rank)
	}
	assert.Equal(t, 2, rankCounts[SmallJoker])
	assert.Equal(t, 2, rankCounts[BigJoker])
}

func TestShuffleIsPermutation(t *testing.T) {
	d := New(randutil.New(42))
	before := make(map[string]bool, Size)
	for _, c := range d.Cards() {
		before[c.ID()] = true
	}

	d.Shuffle()

	after := make(map[string]bool, Size)
	for _, c := range d.Cards() {
		after[c.ID()] = true
	}
	assert.Equal(t, before, after, "shuffle must not create or drop cards")
	assert.Len(t, d.Cards(), Size)
}

func TestShuffleDeterministicForSeed(t *testing.T) {
	a := New(randutil.New(7))
	a.Shuffle()
	b := New(randutil.New(7))
	b.Shuffle()
	assert.Equal(t, a.Cards(), b.Cards())

	c := New(randutil.New(8))
	c.Shuffle()
	assert.NotEqual(t, a.Cards(), c.Cards())
}

func TestDealHands(t *testing.T) {
	d := New(randutil.New(1))
	d.Shuffle()
	hands := d.DealHands()

	ids := make(map[string]bool, Size)
	for seat, hand := range hands {
		require.Len(t, hand, HandSize, "seat %d", seat)
		for _, c := range hand {
			assert.False(t, ids[c.ID()], "card %s dealt twice", c.ID())
			ids[c.ID()] = true
		}
	}
	assert.Len(t, ids, Size)

	// Round-robin: consecutive stack cards land on consecutive seats.
	unshuffled := New(nil)
	rr := unshuffled.DealHands()
	assert.Equal(t, unshuffled.Cards()[0], rr[0][0])
	assert.Equal(t, unshuffled.Cards()[1], rr[1][0])
	assert.Equal(t, unshuffled.Cards()[4], rr[0][1])
}

func TestPromoteForLevel(t *testing.T) {
	cards := MustParseCards("5h 5s 6h SJ")
	promoted := PromoteForLevel(cards, Five)

	assert.True(t, promoted[0].LevelCard)
	assert.True(t, promoted[0].Wild)
	assert.True(t, promoted[1].LevelCard)
	assert.False(t, promoted[1].Wild)
	assert.False(t, promoted[2].LevelCard)
	assert.False(t, promoted[3].LevelCard)

	// Purely functional: the input keeps its zero flags.
	assert.False(t, cards[0].LevelCard)

	// Idempotent.
	assert.Equal(t, promoted, PromoteForLevel(promoted, Five))

	// Re-promoting at a new level clears stale flags.
	repromoted := PromoteForLevel(promoted, Six)
	assert.False(t, repromoted[0].LevelCard)
	assert.False(t, repromoted[0].Wild)
	assert.True(t, repromoted[2].LevelCard)
}

func TestSortDescending(t *testing.T) {
	cards := MustParseCards("3d As 5h SJ BJ 5c Kh")

	sorted := SortDescending(cards, Five)

	var values []int
	for _, c := range sorted {
		values = append(values, c.LogicValue(Five))
	}
	assert.Equal(t, []int{21, 20, 19, 19, 14, 13, 3}, values)

	// The two level cards tie on logic value; hearts outranks clubs.
	assert.Equal(t, Hearts, sorted[2].Suit)
	assert.Equal(t, Clubs, sorted[3].Suit)

	// Idempotent and non-mutating.
	assert.Equal(t, sorted, SortDescending(sorted, Five))
	assert.Equal(t, Diamonds, cards[0].Suit, "input order untouched")
}

func TestIndexByID(t *testing.T) {
	cards := MustParseCards("3d 4c 5h")
	assert.Equal(t, 1, IndexByID(cards, "Clubs-4-0"))
	assert.Equal(t, -1, IndexByID(cards, "Clubs-9-0"))
}
