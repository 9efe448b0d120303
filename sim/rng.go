package sim

// defaultInc is the standard PCG32 stream selector (must be odd).
const defaultInc uint64 = 1442695040888963407

const pcgMult uint64 = 6364136223846793005

// RNG is a seeded PCG32 generator. All randomness in a match flows through
// one RNG instance so that identical seeds reproduce identical matches.
// The draw counter is kept so a snapshot can restore the stream position.
type RNG struct {
	state uint64
	inc   uint64
	seed  uint64
	draws uint64
}

// NewRNG creates a generator seeded with the given value.
func NewRNG(seed uint64) *RNG {
	r := &RNG{inc: defaultInc | 1, seed: seed}
	r.state = 0
	r.step()
	r.state += seed
	r.step()
	return r
}

func (r *RNG) step() {
	r.state = r.state*pcgMult + r.inc
}

// Uint32 returns the next value in the stream.
func (r *RNG) Uint32() uint32 {
	old := r.state
	r.step()
	r.draws++
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((32 - rot) & 31))
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// IntRange returns a value in [min, max). Returns min when the range is empty.
func (r *RNG) IntRange(min, max int) int {
	if min >= max {
		return min
	}
	span := uint32(max - min)
	return min + int(r.Uint32()%span)
}

// Seed returns the seed this generator was created with.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// Draws returns how many values have been drawn, for snapshot restore.
func (r *RNG) Draws() uint64 {
	return r.draws
}

// RestoreRNG rebuilds a generator at a given stream position.
func RestoreRNG(seed, draws uint64) *RNG {
	r := NewRNG(seed)
	for i := uint64(0); i < draws; i++ {
		r.Uint32()
	}
	return r
}
