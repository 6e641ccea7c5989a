package arima

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// lagPoly represents a lag polynomial 1 + c[0]B + c[1]B^2 + ... where index i holds the
// coefficient of B^(i+1). The constant term is implicit.
type lagPoly []float64

// expand builds the lag polynomial of a factor with coefficients spaced every step lags,
// e.g. 1 + c1 B^s + c2 B^2s for a seasonal factor. sign is -1 for autoregressive factors
// written as 1 - phi1 B - ... and +1 for moving average factors.
func expand(coef []float64, step int, sign float64) lagPoly {
	if len(coef) == 0 {
		return nil
	}
	p := make(lagPoly, len(coef)*step)
	for i, c := range coef {
		p[(i+1)*step-1] = sign * c
	}
	return p
}

// mul multiplies two lag polynomials
func mul(a, b lagPoly) lagPoly {
	if len(a) == 0 {
		return append(lagPoly(nil), b...)
	}
	if len(b) == 0 {
		return append(lagPoly(nil), a...)
	}
	out := make(lagPoly, len(a)+len(b))
	// constant term of each factor is 1
	for i, c := range a {
		out[i] += c
	}
	for j, c := range b {
		out[j] += c
	}
	for i, ca := range a {
		for j, cb := range b {
			out[i+j+1] += ca * cb
		}
	}
	return out
}

// differencing returns the lag polynomial (1-B)^d (1-B^s)^D
func differencing(d, sd, period int) lagPoly {
	var p lagPoly
	for i := 0; i < d; i++ {
		p = mul(p, lagPoly{-1})
	}
	for i := 0; i < sd; i++ {
		seas := make(lagPoly, period)
		seas[period-1] = -1
		p = mul(p, seas)
	}
	return p
}

// inUnitCircle reports whether every root of z^k - c1 z^(k-1) - ... - ck lies strictly inside
// the unit circle, i.e. the recursion x_t = c1 x_(t-1) + ... + ck x_(t-k) is stable. This is
// checked through the eigenvalues of the companion matrix.
func inUnitCircle(c []float64) bool {
	k := len(c)
	for k > 0 && c[k-1] == 0 {
		k--
	}
	switch k {
	case 0:
		return true
	case 1:
		return c[0] > -1 && c[0] < 1
	}

	companion := mat.NewDense(k, k, nil)
	for j := 0; j < k; j++ {
		companion.Set(0, j, c[j])
	}
	for i := 1; i < k; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return false
	}
	for _, v := range eig.Values(nil) {
		if cmplx.Abs(v) >= 1 {
			return false
		}
	}
	return true
}

// stationary checks an autoregressive factor 1 - phi1 B - ... - phip B^p
func stationary(phi []float64) bool {
	return inUnitCircle(phi)
}

// invertible checks a moving average factor 1 + theta1 B + ... + thetaq B^q
func invertible(theta []float64) bool {
	neg := make([]float64, len(theta))
	for i, t := range theta {
		neg[i] = -t
	}
	return inUnitCircle(neg)
}

// psiWeights computes the first n coefficients of the infinite moving average representation
// theta(B)/phi(B) where phi is written as 1 + phi[0]B + ...
func psiWeights(phi, theta lagPoly, n int) []float64 {
	psi := make([]float64, n)
	if n == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < n; j++ {
		var v float64
		if j-1 < len(theta) {
			v = theta[j-1]
		}
		for i := 1; i <= j && i-1 < len(phi); i++ {
			v -= phi[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}
