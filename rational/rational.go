// Package rational implements the minimal normalized-fraction type the core
// needs at exactly two call sites that are otherwise out of the OCR core's
// scope: Control.Threshold (a 0..1 fraction) and PageImage.Cut's relative
// ltwh box. CLI-side parsing of rational flag syntax stays external; this
// package only carries the value type.
package rational

// Rational is always kept normalized: gcd(num,den)==1 and den>0, except in
// the error state (den<=0) which represents +INF/-INF/NaN depending on the
// sign of num, mirroring the original's overflow-detection design.
type Rational struct {
	num, den int
}

// New builds num/den in lowest terms.
func New(num, den int) Rational {
	r := Rational{num: num, den: den}
	r.normalize()
	return r
}

// FromInt builds the rational n/1.
func FromInt(n int) Rational { return Rational{num: n, den: 1} }

func gcd(n, m int) int {
	if n < 0 {
		n = -n
	}
	if m < 0 {
		m = -m
	}
	for {
		if m != 0 {
			n %= m
		} else {
			return n
		}
		if n != 0 {
			m %= n
		} else {
			return m
		}
	}
}

func (r *Rational) normalize() {
	if r.den == 0 {
		r.num = overflowValue(r.num)
		r.den = 0
		return
	}
	if r.num == 0 {
		r.den = 1
		return
	}
	if r.den != 1 {
		g := gcd(r.num, r.den)
		if g != 0 {
			r.num /= g
			r.den /= g
		}
	}
	if r.den < 0 {
		r.num = -r.num
		r.den = -r.den
	}
}

func overflowValue(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// Error reports whether this value is in the +INF/-INF/NaN error state.
func (r Rational) Error() bool { return r.den <= 0 }

func (r Rational) Numerator() int   { return r.num }
func (r Rational) Denominator() int { return r.den }

func (r Rational) Sign() int {
	switch {
	case r.num > 0:
		return 1
	case r.num < 0:
		return -1
	default:
		return 0
	}
}

// Trunc is the integer part, truncating toward zero.
func (r Rational) Trunc() int {
	if r.den > 0 {
		return r.num / r.den
	}
	return r.num
}

// Round is the nearest integer, with .5 rounding away from zero.
func (r Rational) Round() int {
	if r.den <= 0 {
		return r.num
	}
	n, d := r.num, r.den
	if n >= 0 {
		return (2*n + d) / (2 * d)
	}
	return -((-2*n + d) / (2 * d))
}

func (r Rational) Add(o Rational) Rational {
	if r.Error() || o.Error() {
		return Rational{num: overflowValue(r.num + o.num), den: 0}
	}
	return New(r.num*o.den+o.num*r.den, r.den*o.den)
}

func (r Rational) Mul(o Rational) Rational {
	if r.Error() || o.Error() {
		return Rational{num: overflowValue(1), den: 0}
	}
	return New(r.num*o.num, r.den*o.den)
}

// Neg returns -r.
func (r Rational) Neg() Rational { return Rational{num: -r.num, den: r.den} }

// Sub returns r-o.
func (r Rational) Sub(o Rational) Rational { return r.Add(o.Neg()) }

// MulInt returns r*n.
func (r Rational) MulInt(n int) Rational { return r.Mul(FromInt(n)) }

// DivInt returns r/n.
func (r Rational) DivInt(n int) Rational { return New(r.num, r.den*n) }

// Cmp returns -1, 0 or 1 as r is less than, equal to, or greater than o.
// Values in the error state never compare equal or ordered to anything,
// mirroring the original's "relational operators return false" rule.
func (r Rational) Cmp(o Rational) int {
	if r.Error() || o.Error() {
		return 2
	}
	lhs := int64(r.num) * int64(o.den)
	rhs := int64(o.num) * int64(r.den)
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

func (r Rational) Less(o Rational) bool      { return r.Cmp(o) == -1 }
func (r Rational) LessEq(o Rational) bool    { c := r.Cmp(o); return c == -1 || c == 0 }
func (r Rational) Greater(o Rational) bool   { return r.Cmp(o) == 1 }
func (r Rational) GreaterEq(o Rational) bool { c := r.Cmp(o); return c == 1 || c == 0 }

func (r Rational) LessInt(n int) bool      { return r.Less(FromInt(n)) }
func (r Rational) LessEqInt(n int) bool    { return r.LessEq(FromInt(n)) }
func (r Rational) GreaterInt(n int) bool   { return r.Greater(FromInt(n)) }
func (r Rational) GreaterEqInt(n int) bool { return r.GreaterEq(FromInt(n)) }

// Float64 returns a float approximation, useful only for display; all
// decisions in the core use Trunc/Round on exact fractions.
func (r Rational) Float64() float64 {
	if r.den == 0 {
		return 0
	}
	return float64(r.num) / float64(r.den)
}
