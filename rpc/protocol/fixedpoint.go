package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dTT/rpc/common"
)

// FractionScale is the factor between a fraction and its wire representation
const FractionScale = 10_000_000_000

// fractionDigits is the number of decimal digits carried by the fractional part
const fractionDigits = 10

// FixedPoint is the wire representation of a real number: an integral part and
// the fraction multiplied by 10^10. Both parts carry the sign of the number.
type FixedPoint struct {
	Integral   int64
	Fractional int64
}

// NewFixedPoint converts v using its shortest decimal representation. Fraction
// digits beyond the tenth are truncated, not rounded.
func NewFixedPoint(v float64) (FixedPoint, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FixedPoint{}, common.NewError(common.CodeInvalidOperation, fmt.Sprintf("cannot encode %v as fixed point", v))
	}

	text := strconv.FormatFloat(v, 'f', -1, 64)
	negative := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")

	intPart, fracPart, _ := strings.Cut(text, ".")

	integral, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return FixedPoint{}, common.WrapError(common.CodeInvalidOperation, err, "integral part out of range")
	}

	if len(fracPart) > fractionDigits {
		fracPart = fracPart[:fractionDigits]
	}
	fracPart += strings.Repeat("0", fractionDigits-len(fracPart))
	fractional, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return FixedPoint{}, common.WrapError(common.CodeInvalidOperation, err, "invalid fractional part")
	}

	if negative {
		integral, fractional = -integral, -fractional
	}
	return FixedPoint{Integral: integral, Fractional: fractional}, nil
}

// String renders the number as "integral.fraction" with trailing zeros removed
func (f FixedPoint) String() string {
	integral, fractional := f.Integral, f.Fractional
	sign := ""
	if integral < 0 || fractional < 0 {
		sign = "-"
	}
	if integral < 0 {
		integral = -integral
	}
	if fractional < 0 {
		fractional = -fractional
	}

	// a server value outside the scale is rendered verbatim
	frac := strconv.FormatInt(fractional, 10)
	if fractional < FractionScale {
		frac = fmt.Sprintf("%010d", fractional)
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return sign + strconv.FormatInt(integral, 10)
	}
	return sign + strconv.FormatInt(integral, 10) + "." + frac
}

// Float64 returns the number as float64
func (f FixedPoint) Float64() float64 {
	v, err := strconv.ParseFloat(f.String(), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
