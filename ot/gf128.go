//
// gf128.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

// vectorInnPrdtSumNoRed computes the GF(2^128) inner product of
// vectors a and b without modular reduction. It returns the 256-bit
// result as two 128-bit blocks.
func vectorInnPrdtSumNoRed(a, b []Label) (Label, Label) {
	var r1, r2 Label

	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		lo, hi := mul128(a[i], b[i])
		r1.Xor(lo)
		r2.Xor(hi)
	}
	return r1, r2
}

// mul128 computes the 256-bit carry-less product of a and b.
func mul128(a, b Label) (lo, hi Label) {
	p00lo, p00hi := clmul64(a.D0, b.D0)
	p01lo, p01hi := clmul64(a.D0, b.D1)
	p10lo, p10hi := clmul64(a.D1, b.D0)
	p11lo, p11hi := clmul64(a.D1, b.D1)

	midLo := p01lo ^ p10lo
	midHi := p01hi ^ p10hi

	lo.D0 = p00lo
	lo.D1 = p00hi ^ midLo

	hi.D0 = midHi ^ p11lo
	hi.D1 = p11hi

	return
}

func clmul64(a, b uint64) (lo, hi uint64) {
	for i := 0; i < 64; i++ {
		if (b>>i)&1 != 0 {
			if i == 0 {
				lo ^= a
			} else {
				lo ^= a << i
				hi ^= a >> (64 - i)
			}
		}
	}
	return
}
