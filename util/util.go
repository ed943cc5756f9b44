package util

func BoolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Bit reports whether bit n of v is set.
func Bit(v uint8, n uint) bool {
	return (v>>n)&1 != 0
}

// SetBit returns v with bit n forced to b.
func SetBit(v uint8, n uint, b bool) uint8 {
	if b {
		return v | (1 << n)
	}
	return v &^ (1 << n)
}

type TickCounter struct {
	current, target uint
}

func NewTickCounter(target uint) *TickCounter {
	return &TickCounter{target: target}
}

func (tc *TickCounter) Tick(tick uint) bool {
	posedge := false
	tc.current += tick
	if tc.current >= tc.target {
		tc.current -= tc.target
		posedge = true
	}
	return posedge
}
