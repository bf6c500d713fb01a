//
// gf128_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"math/rand"
	"testing"
)

func TestMul128Basic(t *testing.T) {
	zero := Label{0, 0}
	one := Label{1, 0}

	// 0 * x = 0
	lo, hi := mul128(zero, Label{0xdeadbeef, 0x12345678})
	if lo != zero || hi != zero {
		t.Fatal("0*x != 0")
	}

	// 1 * x = x
	x := Label{0xabcdef, 0x1234}
	lo, hi = mul128(one, x)
	if lo != x || hi != zero {
		t.Fatal("1*x != x")
	}

	// x * x = x^2
	a := Label{2, 0}
	lo, hi = mul128(a, a)
	if lo.D0 != 4 || lo.D1 != 0 || hi != zero {
		t.Fatal("x*x != x^2")
	}
}

func TestMul128Cross(t *testing.T) {
	// x^63 * x^63 = x^126
	a := Label{D0: 1 << 63}

	lo, hi := mul128(a, a)

	expLo := Label{D1: 1 << 62}
	expHi := Label{}

	if lo != expLo || hi != expHi {
		t.Fatalf("got lo=%v hi=%v, expected lo=%v hi=%v", lo, hi, expLo, expHi)
	}
}

func TestMul128Random(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := Label{rng.Uint64(), rng.Uint64()}
		b := Label{rng.Uint64(), rng.Uint64()}

		lo1, hi1 := mul128(a, b)
		lo2, hi2 := mul128Ref(a, b)

		if lo1 != lo2 || hi1 != hi2 {
			t.Fatalf("mismatch on %v * %v", a, b)
		}
	}
	all := Label{^uint64(0), ^uint64(0)}
	lo1, hi1 := mul128(all, all)
	lo2, hi2 := mul128Ref(all, all)
	if lo1 != lo2 || hi1 != hi2 {
		t.Fatal("all-ones mismatch")
	}
}

func TestInnerProductLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var a, b, c [16]Label
	for i := range a {
		a[i] = Label{rng.Uint64(), rng.Uint64()}
		b[i] = Label{rng.Uint64(), rng.Uint64()}
		c[i] = b[i]
		c[i].Xor(Label{rng.Uint64(), rng.Uint64()})
	}
	// <a,b> ⊕ <a,c> == <a,b⊕c>
	r0, r1 := vectorInnPrdtSumNoRed(a[:], b[:])
	s0, s1 := vectorInnPrdtSumNoRed(a[:], c[:])
	r0.Xor(s0)
	r1.Xor(s1)

	var bc [16]Label
	for i := range bc {
		bc[i] = b[i]
		bc[i].Xor(c[i])
	}
	t0, t1 := vectorInnPrdtSumNoRed(a[:], bc[:])
	if !r0.Equal(t0) || !r1.Equal(t1) {
		t.Fatal("inner product is not linear")
	}
}

// mul128Ref multiplies a and b bit by bit.
func mul128Ref(a, b Label) (lo, hi Label) {
	var r [256]bool

	get := func(x Label, i int) bool {
		if i < 64 {
			return (x.D0>>i)&1 == 1
		}
		return (x.D1>>(i-64))&1 == 1
	}

	for i := 0; i < 128; i++ {
		if !get(a, i) {
			continue
		}
		for j := 0; j < 128; j++ {
			if get(b, j) {
				r[i+j] = !r[i+j]
			}
		}
	}

	for i := 0; i < 128; i++ {
		if r[i] {
			if i < 64 {
				lo.D0 |= 1 << i
			} else {
				lo.D1 |= 1 << (i - 64)
			}
		}
	}
	for i := 128; i < 256; i++ {
		if r[i] {
			if i < 192 {
				hi.D0 |= 1 << (i - 128)
			} else {
				hi.D1 |= 1 << (i - 192)
			}
		}
	}
	return
}

func BenchmarkMul128(b *testing.B) {
	b0 := Label{0x0123456789abcdef, 0xfedcba9876543210}
	b1 := b0

	for b.Loop() {
		lo, hi := mul128(b0, b1)
		_ = lo
		_ = hi
	}
}
