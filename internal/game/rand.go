package game

import "math"

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// SeededRandom is a small linear-congruential generator. It is not
// cryptographically secure; identical seeds replay identical matches.
type SeededRandom struct {
	seed int64
}

// NewSeededRandom returns a generator positioned at seed.
func NewSeededRandom(seed int64) *SeededRandom {
	seed %= lcgModulus
	if seed < 0 {
		seed += lcgModulus
	}
	return &SeededRandom{seed: seed}
}

// Next advances the generator and returns a value in [0, 1).
func (r *SeededRandom) Next() float64 {
	r.seed = (r.seed*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.seed) / lcgModulus
}

// NextInt returns an integer in [min, max], both inclusive.
func (r *SeededRandom) NextInt(min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

// NextFloat returns a float in [min, max).
func (r *SeededRandom) NextFloat(min, max float64) float64 {
	return r.Next()*(max-min) + min
}

// Chance reports whether a roll lands under p.
func (r *SeededRandom) Chance(p float64) bool {
	return r.Next() < p
}

// Shuffle permutes n elements in place via swap (Fisher-Yates, from the end).
func (r *SeededRandom) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.NextInt(0, i)
		swap(i, j)
	}
}

// Choice returns a random index in [0, n), or -1 when n is zero.
func (r *SeededRandom) Choice(n int) int {
	if n <= 0 {
		return -1
	}
	return r.NextInt(0, n-1)
}

// State returns the current internal seed.
func (r *SeededRandom) State() int64 {
	return r.seed
}

// MixSeed derives an independent, non-zero seed from base and salt
// (splitmix64 finalizer). Different salts give unrelated generators.
func MixSeed(base int64, salt int) int64 {
	x := uint64(base) + uint64(salt) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	if x == 0 {
		return 1
	}
	return int64(x)
}

// ShuffleCards shuffles a card slice in place.
func ShuffleCards(rng *SeededRandom, cards []*Card) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
