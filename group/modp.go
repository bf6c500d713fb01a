//
// modp.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package group

import (
	"fmt"
	"io"
	"math/big"
)

var (
	_ Group   = &ModP{}
	_ Element = modpElement{}

	bigOne = big.NewInt(1)
)

// ModP implements the order-q subgroup of the multiplicative group
// Z_p^* where q divides p-1.
type ModP struct {
	name string
	p    *big.Int
	q    *big.Int
	g    modpElement
	size int
}

// NewModP creates a new Schnorr group with modulus p, order q, and
// generator g. The function checks that p and q are primes, q divides
// p-1, and g generates the order-q subgroup.
func NewModP(name string, p, q, g *big.Int) (*ModP, error) {
	if p == nil || q == nil || g == nil {
		return nil, fmt.Errorf("%w: nil parameter", ErrInvalidParams)
	}
	if !p.ProbablyPrime(32) {
		return nil, fmt.Errorf("%w: p is not prime", ErrInvalidParams)
	}
	if !q.ProbablyPrime(32) {
		return nil, fmt.Errorf("%w: q is not prime", ErrInvalidParams)
	}
	pm1 := new(big.Int).Sub(p, bigOne)
	if new(big.Int).Mod(pm1, q).Sign() != 0 {
		return nil, fmt.Errorf("%w: q does not divide p-1", ErrInvalidParams)
	}
	if g.Cmp(bigOne) <= 0 || g.Cmp(p) >= 0 {
		return nil, fmt.Errorf("%w: generator out of range", ErrInvalidParams)
	}
	if new(big.Int).Exp(g, q, p).Cmp(bigOne) != 0 {
		return nil, fmt.Errorf("%w: generator order is not q", ErrInvalidParams)
	}
	return &ModP{
		name: name,
		p:    new(big.Int).Set(p),
		q:    new(big.Int).Set(q),
		g:    modpElement{v: new(big.Int).Set(g), size: (p.BitLen() + 7) / 8},
		size: (p.BitLen() + 7) / 8,
	}, nil
}

// Toy returns a small Schnorr group with p=2039, q=1019, and g=4. The
// group is useful for test vectors; it provides no security.
func Toy() *ModP {
	g, err := NewModP("toy", big.NewInt(2039), big.NewInt(1019),
		big.NewInt(4))
	if err != nil {
		panic(err)
	}
	return g
}

// Modulus returns the group modulus p.
func (g *ModP) Modulus() *big.Int {
	return g.p
}

// Name implements Group.Name.
func (g *ModP) Name() string {
	return g.name
}

// Order implements Group.Order.
func (g *ModP) Order() *big.Int {
	return g.q
}

// Generator implements Group.Generator.
func (g *ModP) Generator() Element {
	return g.g
}

// Identity implements Group.Identity.
func (g *ModP) Identity() Element {
	return g.element(bigOne)
}

// Element creates a group element from the integer v. The function
// does not check group membership.
func (g *ModP) Element(v *big.Int) Element {
	return g.element(new(big.Int).Mod(v, g.p))
}

func (g *ModP) element(v *big.Int) modpElement {
	return modpElement{
		v:    v,
		size: g.size,
	}
}

// Exp implements Group.Exp.
func (g *ModP) Exp(e Element, k *big.Int) Element {
	return g.element(new(big.Int).Exp(e.(modpElement).v, reduce(k, g.q), g.p))
}

// Mul implements Group.Mul.
func (g *ModP) Mul(a, b Element) Element {
	v := new(big.Int).Mul(a.(modpElement).v, b.(modpElement).v)
	return g.element(v.Mod(v, g.p))
}

// Inv implements Group.Inv.
func (g *ModP) Inv(e Element) Element {
	return g.element(new(big.Int).ModInverse(e.(modpElement).v, g.p))
}

// IsMember implements Group.IsMember.
func (g *ModP) IsMember(e Element) bool {
	el, ok := e.(modpElement)
	if !ok || el.v == nil || el.size != g.size {
		return false
	}
	if el.v.Sign() <= 0 || el.v.Cmp(g.p) >= 0 {
		return false
	}
	return new(big.Int).Exp(el.v, g.q, g.p).Cmp(bigOne) == 0
}

// RandomExponent implements Group.RandomExponent.
func (g *ModP) RandomExponent(rand io.Reader) (*big.Int, error) {
	return randomExponent(rand, g.q)
}

// Decode implements Group.Decode.
func (g *ModP) Decode(data []byte) (Element, error) {
	if len(data) != g.size {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d",
			ErrInvalidEncoding, len(data), g.size)
	}
	e := g.element(new(big.Int).SetBytes(data))
	if !g.IsMember(e) {
		return nil, ErrNotMember
	}
	return e, nil
}

type modpElement struct {
	v    *big.Int
	size int
}

func (e modpElement) Bytes() []byte {
	buf := make([]byte, e.size)
	return e.v.FillBytes(buf)
}

func (e modpElement) Equal(o Element) bool {
	oe, ok := o.(modpElement)
	if !ok {
		return false
	}
	return e.v.Cmp(oe.v) == 0
}

func (e modpElement) String() string {
	return e.v.String()
}
