package wire

import (
	"math"
	"strconv"
)

// Fixed is a signed 24.8 fixed-point number. The core wire format has
// no floating point type and uses these wherever fractional values
// are needed.
type Fixed int32

// FixedInt returns the fixed-point representation of v.
func FixedInt(v int) Fixed {
	return Fixed(v << 8)
}

// FixedFloat returns the fixed-point number closest to v.
func FixedFloat(v float64) Fixed {
	i, frac := math.Modf(v)
	return Fixed((int(i) << 8) | int(math.Abs(frac)*math.Exp2(8)))
}

// Int returns the integer part of f.
func (f Fixed) Int() int {
	return int(f >> 8)
}

// Frac returns the raw low 8 bits of f, the fractional part in units
// of 1/256.
func (f Fixed) Frac() int {
	return int(uint32(f) & 0xFF)
}

func (f Fixed) Float() float64 {
	return float64(f.Int()) + math.Abs(float64(f.Frac())*math.Exp2(-8))
}

func (f Fixed) String() string {
	s := strconv.Itoa(f.Int())
	if frac := f.Frac(); frac != 0 {
		s += "." + strconv.Itoa(frac)
	}
	return s
}
