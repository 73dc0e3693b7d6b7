// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Relative error accepted when turning decimal text into a fraction.
	ratioTolerance = 1e-3
	// Largest denominator considered for decimal approximation.
	maxDenominator = 1001
)

var errNotPositive = errors.New("must be positive")

// rational is a positive fraction kept in lowest terms.
type rational struct {
	num, den int64
}

func newRational(num, den int64) (rational, error) {
	if num <= 0 || den <= 0 {
		return rational{}, errNotPositive
	}
	g := gcd(num, den)
	return rational{num: num / g, den: den / g}, nil
}

func (r rational) float() float64 {
	return float64(r.num) / float64(r.den)
}

// aspect renders r the way aspect ratios are written, e.g. "16:9".
func (r rational) aspect() string {
	return fmt.Sprintf("%d:%d", r.num, r.den)
}

// rate renders r the way frame rates are written, e.g. "25/1".
func (r rational) rate() string {
	return fmt.Sprintf("%d/%d", r.num, r.den)
}

// parseRatio parses "W:H", "W/H" or decimal text.
func parseRatio(s string) (rational, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ":/"); i >= 0 {
		num, err := strconv.ParseInt(strings.TrimSpace(s[:i]), 10, 64)
		if err != nil {
			return rational{}, fmt.Errorf("numerator: %w", err)
		}
		den, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
		if err != nil {
			return rational{}, fmt.Errorf("denominator: %w", err)
		}
		return newRational(num, den)
	}

	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return rational{}, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return rational{}, errNotPositive
	}
	return approximate(x), nil
}

// parseFrameRate is parseRatio with knowledge of NTSC rates: decimal "29.970" yields
// 30000/1001 rather than the closest small fraction.
func parseFrameRate(s string) (rational, error) {
	if strings.ContainsAny(s, ":/") {
		return parseRatio(s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return rational{}, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return rational{}, errNotPositive
	}
	if n := math.Round(x); math.Abs(x-n) < ratioTolerance && n > 0 {
		return rational{num: int64(n), den: 1}, nil
	}
	if n := math.Round(x * 1.001); n > 0 && math.Abs(x-n/1.001)/x < ratioTolerance/10 {
		return newRational(int64(n)*1000, 1001)
	}
	return approximate(x), nil
}

// approximate returns the first continued fraction convergent of x within
// ratioTolerance, or the last one with denominator not above maxDenominator.
func approximate(x float64) rational {
	// Convergents h/k are built with the usual recurrence.
	h0, h1 := int64(1), int64(math.Floor(x))
	k0, k1 := int64(0), int64(1)
	frac := x - math.Floor(x)
	for {
		if h1 > 0 && math.Abs(float64(h1)/float64(k1)-x)/x <= ratioTolerance {
			break
		}
		if frac < 1e-12 {
			break
		}
		y := 1 / frac
		a := int64(math.Floor(y))
		frac = y - math.Floor(y)
		h2, k2 := a*h1+h0, a*k1+k0
		if k2 > maxDenominator {
			break
		}
		h0, h1, k0, k1 = h1, h2, k1, k2
	}
	if h1 <= 0 {
		// x below 1/maxDenominator.
		h1, k1 = 1, maxDenominator
	}
	r, _ := newRational(h1, k1)
	return r
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
