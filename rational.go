package avcodec

import (
	"fmt"
	"math"
	"math/big"
)

// Rational is a numerator/denominator pair used for time bases and aspect
// ratios. Comparisons are exact integer operations. Arithmetic is exact
// whenever the reduced result fits in int32; otherwise it returns the closest
// Rational whose terms are within math.MaxInt32, as av_reduce does.
// The zero value 0/0 means "unset".
type Rational struct {
	Num int32
	Den int32
}

// NewRational returns num/den without reducing it.
func NewRational(num, den int32) Rational {
	return Rational{Num: num, Den: den}
}

// IsZero reports whether r is the unset value 0/0.
func (r Rational) IsZero() bool { return r.Num == 0 && r.Den == 0 }

// Valid reports whether r has a non-zero denominator.
func (r Rational) Valid() bool { return r.Den != 0 }

// Equal reports whether r and o denote the same value. Rationals with a zero
// denominator are only equal when both components match.
func (r Rational) Equal(o Rational) bool {
	if r.Den == 0 || o.Den == 0 {
		return r == o
	}
	return int64(r.Num)*int64(o.Den) == int64(o.Num)*int64(r.Den)
}

// Compare returns -1, 0 or 1. Both operands must be valid.
func (r Rational) Compare(o Rational) int {
	a := int64(r.Num) * int64(o.Den)
	b := int64(o.Num) * int64(r.Den)
	// Cross-multiplying by a negative denominator flips the order.
	if (r.Den < 0) != (o.Den < 0) {
		a, b = b, a
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Reduce returns r in lowest terms with a positive denominator. Rationals
// with a zero denominator are returned unchanged.
func (r Rational) Reduce() Rational {
	if r.Den == 0 {
		return r
	}
	return reduce64(int64(r.Num), int64(r.Den))
}

// Invert returns d/n.
func (r Rational) Invert() Rational { return Rational{Num: r.Den, Den: r.Num} }

// Mul returns r*o in lowest terms.
func (r Rational) Mul(o Rational) Rational {
	return reduce64(int64(r.Num)*int64(o.Num), int64(r.Den)*int64(o.Den))
}

// Div returns r/o in lowest terms.
func (r Rational) Div(o Rational) Rational {
	return reduce64(int64(r.Num)*int64(o.Den), int64(r.Den)*int64(o.Num))
}

// Add returns r+o in lowest terms.
func (r Rational) Add(o Rational) Rational {
	return approximate(crossTerms(r, o, false), big.NewInt(int64(r.Den)*int64(o.Den)))
}

// Sub returns r-o in lowest terms.
func (r Rational) Sub(o Rational) Rational {
	return approximate(crossTerms(r, o, true), big.NewInt(int64(r.Den)*int64(o.Den)))
}

// Float64 is for display only.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Rescale converts ts from the from time base to the to time base, rounding
// to nearest with halves away from zero. NoPTS is passed through unchanged.
// A result that does not fit in int64 is reported as NoPTS, like
// av_rescale_rnd's INT64_MIN.
func Rescale(ts int64, from, to Rational) int64 {
	if ts == NoPTS || from.Den == 0 || to.Num == 0 {
		return ts
	}
	// ts * from.Num * to.Den / (from.Den * to.Num)
	num := new(big.Int).Mul(big.NewInt(ts), big.NewInt(int64(from.Num)*int64(to.Den)))
	den := big.NewInt(int64(from.Den) * int64(to.Num))
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	half := new(big.Int).Rsh(den, 1)
	if num.Sign() >= 0 {
		num.Add(num, half)
	} else {
		num.Sub(num, half)
	}
	num.Quo(num, den)
	if !num.IsInt64() {
		return NoPTS
	}
	return num.Int64()
}

// crossTerms returns r.Num*o.Den ± o.Num*r.Den, which can exceed int64.
func crossTerms(r, o Rational, sub bool) *big.Int {
	a := big.NewInt(int64(r.Num) * int64(o.Den))
	b := big.NewInt(int64(o.Num) * int64(r.Den))
	if sub {
		return a.Sub(a, b)
	}
	return a.Add(a, b)
}

func reduce64(n, d int64) Rational {
	return approximate(big.NewInt(n), big.NewInt(d))
}

// approximate reduces n/d and, when a term still exceeds math.MaxInt32, walks
// the continued fraction expansion to the closest convergent or semiconvergent
// that fits. It follows av_reduce with max = INT_MAX.
func approximate(num, den *big.Int) Rational {
	neg := num.Sign()*den.Sign() < 0
	n := new(big.Int).Abs(num)
	d := new(big.Int).Abs(den)
	if g := new(big.Int).GCD(nil, nil, n, d); g.Sign() > 0 {
		n.Quo(n, g)
		d.Quo(d, g)
	}

	limit := big.NewInt(math.MaxInt32)
	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	if n.Cmp(limit) <= 0 && d.Cmp(limit) <= 0 {
		p1, q1 = n, d
	} else {
		for d.Sign() != 0 {
			x, rem := new(big.Int).QuoRem(n, d, new(big.Int))
			p2 := new(big.Int).Add(new(big.Int).Mul(x, p1), p0)
			q2 := new(big.Int).Add(new(big.Int).Mul(x, q1), q0)
			if p2.Cmp(limit) > 0 || q2.Cmp(limit) > 0 {
				// Largest partial quotient that keeps both terms in range.
				if p1.Sign() != 0 {
					x.Quo(new(big.Int).Sub(limit, p0), p1)
				}
				if q1.Sign() != 0 {
					if y := new(big.Int).Quo(new(big.Int).Sub(limit, q0), q1); y.Cmp(x) < 0 {
						x = y
					}
				}
				// Use the semiconvergent only when it is closer than p1/q1.
				lhs := new(big.Int).Mul(d, new(big.Int).Add(new(big.Int).Lsh(new(big.Int).Mul(x, q1), 1), q0))
				rhs := new(big.Int).Mul(n, q1)
				if lhs.Cmp(rhs) > 0 {
					p1 = new(big.Int).Add(new(big.Int).Mul(x, p1), p0)
					q1 = new(big.Int).Add(new(big.Int).Mul(x, q1), q0)
				}
				break
			}
			p0, q0, p1, q1 = p1, q1, p2, q2
			n, d = d, rem
		}
	}

	r := Rational{Num: int32(p1.Int64()), Den: int32(q1.Int64())}
	if neg {
		r.Num = -r.Num
	}
	return r
}
