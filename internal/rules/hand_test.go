package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/guandan/internal/deck"
)

func TestCompareSameType(t *testing.T) {
	level := deck.Seven

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"higher single wins", "Kc", "9d", 1},
		{"level single beats ace", "7s", "Ad", 1},
		{"big joker beats small", "BJ", "SJ", 1},
		{"equal singles tie", "9c", "9d", 0},
		{"higher pair wins", "Ac Ad", "Kc Kd", 1},
		{"trip with pair compares by trip", "9c 9d 9s 3c 3d", "8c 8d 8s Ac Ad", 1},
		{"longer straight high wins", "4c 5d 6s 7c 8d", "3c 4d 5s 6c 7d", 1},
		{"ace low straight loses", "2c 3d 4s 5c 6d", "Ac 2d 3s 4c 5d", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := classify(t, tt.a, level)
			b := classify(t, tt.b, level)
			assert.Equal(t, tt.want, Compare(a, b))
			assert.Equal(t, -tt.want, Compare(b, a))
		})
	}
}

func TestCompareIncomparable(t *testing.T) {
	level := deck.Two

	pair := classify(t, "9c 9d", level)
	single := classify(t, "Kc", level)
	straight := classify(t, "3c 4d 5s 6c 7d", level)
	tube := classify(t, "4c 4d 5s 5c 6d 6s", level)

	assert.Zero(t, Compare(pair, single))
	assert.Zero(t, Compare(straight, pair))
	assert.Zero(t, Compare(tube, straight))
	assert.Zero(t, Compare(single, tube))
}

func TestCompareBombLadder(t *testing.T) {
	level := deck.Two

	four := classify(t, "6c 6d 6s 6h", level)
	fourHigher := classify(t, "Jc Jd Js Jh", level)
	five := classify(t, "4c 4d 4s 4h 4c", level)
	flush := classify(t, "3h 4h 5h 6h 7h", level)
	six := classify(t, "3c 3d 3s 3h 3c 3d", level)
	kings := classify(t, "SJ SJ BJ BJ", level)

	t.Run("beats any non-bomb", func(t *testing.T) {
		aces := classify(t, "Ac Ad", level)
		assert.Equal(t, 1, Compare(four, aces))
		assert.Equal(t, -1, Compare(aces, four))
	})

	t.Run("more cards outrank value", func(t *testing.T) {
		assert.Equal(t, 1, Compare(five, fourHigher))
	})

	t.Run("same size compares value", func(t *testing.T) {
		assert.Equal(t, 1, Compare(fourHigher, four))
	})

	t.Run("straight flush between five and six", func(t *testing.T) {
		assert.Equal(t, 1, Compare(flush, five))
		assert.Equal(t, -1, Compare(flush, six))
	})

	t.Run("straight flushes compare by run", func(t *testing.T) {
		higher := classify(t, "5s 6s 7s 8s 9s", level)
		assert.Equal(t, 1, Compare(higher, flush))
		assert.Zero(t, Compare(flush, flush))
	})

	t.Run("four kings beat everything", func(t *testing.T) {
		for _, h := range []Hand{four, five, flush, six} {
			assert.Equal(t, 1, Compare(kings, h))
			assert.Equal(t, -1, Compare(h, kings))
		}
	})
}

func TestLargest(t *testing.T) {
	cards := deck.MustParseCards("3d Kh 7c As")

	assert.Equal(t, deck.Ace, Largest(cards, deck.Two).Rank)
	assert.Equal(t, deck.Seven, Largest(cards, deck.Seven).Rank)

	withJoker := deck.MustParseCards("As BJ 7c")
	assert.Equal(t, deck.BigJoker, Largest(withJoker, deck.Seven).Rank)
}
