/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package support

/*
NearestFraction finds the best rational approximation num/den ≈ a/b with
den <= maxDen. It returns num, den and the residual a/b - num/den.

The RP2040 has no floating point unit, so converting ADC counts to millivolts
on every wake is done as raw * num / den in integer arithmetic. The constant
factor (reference voltage times divider ratio over full scale) is a real
number, but a good fraction with a small denominator reproduces it to well
under one count.

The method walks the convergents of the continued fraction of a/b,

	h[n] = t[n]*h[n-1] + h[n-2]
	k[n] = t[n]*k[n-1] + k[n-2]

where t[n] are the continued fraction terms, stopping before k[n] would
exceed maxDen. Convergents are the best approximations for their size of
denominator, so the last one that fits is the answer.
*/
func NearestFraction(a, b, maxDen uint64) (num, den uint64, eps float64) {
	num, den = convergent(a, b, maxDen)
	eps = float64(a)/float64(b) - float64(num)/float64(den)
	return num, den, eps
}

func convergent(a, b, maxDen uint64) (num, den uint64) {
	// h[-1]/k[-1] = 1/0, h[-2]/k[-2] = 0/1
	h1, k1 := uint64(1), uint64(0)
	h2, k2 := uint64(0), uint64(1)
	for b != 0 {
		term := a / b
		h, k := term*h1+h2, term*k1+k2
		if k > maxDen {
			break
		}
		h1, h2 = h, h1
		k1, k2 = k, k1
		a, b = b, a-term*b
	}
	if k1 == 0 {
		// even the integer part alone does not fit
		return 0, 1
	}
	return h1, k1
}
