//
// ed25519.go
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

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
)

var (
	_ Group   = &Ed25519{}
	_ Element = edElement{}
)

// Ed25519 implements the prime-order subgroup of the edwards25519
// curve. Points are encoded in the standard 32-byte compressed form.
type Ed25519 struct {
	suite *edwards25519.SuiteEd25519
	order *big.Int
	qm1   kyber.Scalar
	g     edElement
}

// Edwards25519 returns the edwards25519 group.
func Edwards25519() *Ed25519 {
	suite := edwards25519.NewBlakeSHA256Ed25519()

	// l = 2^252 + 27742317777372353535851937790883648493
	order, _ := new(big.Int).SetString(
		"7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

	g := &Ed25519{
		suite: suite,
		order: order,
		g: edElement{
			p: suite.Point().Base(),
		},
	}
	g.qm1 = g.scalar(new(big.Int).Sub(order, bigOne))
	return g
}

// Name implements Group.Name.
func (g *Ed25519) Name() string {
	return "ed25519"
}

// Order implements Group.Order.
func (g *Ed25519) Order() *big.Int {
	return g.order
}

// Generator implements Group.Generator.
func (g *Ed25519) Generator() Element {
	return g.g
}

// Identity implements Group.Identity.
func (g *Ed25519) Identity() Element {
	return edElement{
		p: g.suite.Point().Null(),
	}
}

// scalar converts the exponent k into a kyber scalar. Kyber scalars
// are little-endian.
func (g *Ed25519) scalar(k *big.Int) kyber.Scalar {
	var buf [32]byte
	reduce(k, g.order).FillBytes(buf[:])
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return g.suite.Scalar().SetBytes(buf[:])
}

// Exp implements Group.Exp.
func (g *Ed25519) Exp(e Element, k *big.Int) Element {
	return edElement{
		p: g.suite.Point().Mul(g.scalar(k), e.(edElement).p),
	}
}

// Mul implements Group.Mul.
func (g *Ed25519) Mul(a, b Element) Element {
	return edElement{
		p: g.suite.Point().Add(a.(edElement).p, b.(edElement).p),
	}
}

// Inv implements Group.Inv.
func (g *Ed25519) Inv(e Element) Element {
	return edElement{
		p: g.suite.Point().Neg(e.(edElement).p),
	}
}

// IsMember implements Group.IsMember. The curve has cofactor 8 so the
// function checks that l·e is the identity.
func (g *Ed25519) IsMember(e Element) bool {
	el, ok := e.(edElement)
	if !ok || el.p == nil {
		return false
	}
	lp := g.suite.Point().Mul(g.qm1, el.p)
	lp.Add(lp, el.p)
	return lp.Equal(g.suite.Point().Null())
}

// RandomExponent implements Group.RandomExponent.
func (g *Ed25519) RandomExponent(rand io.Reader) (*big.Int, error) {
	return randomExponent(rand, g.order)
}

// Decode implements Group.Decode.
func (g *Ed25519) Decode(data []byte) (Element, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes, expected 32",
			ErrInvalidEncoding, len(data))
	}
	p := g.suite.Point()
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	e := edElement{
		p: p,
	}
	if !g.IsMember(e) {
		return nil, ErrNotMember
	}
	return e, nil
}

type edElement struct {
	p kyber.Point
}

func (e edElement) Bytes() []byte {
	data, err := e.p.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return data
}

func (e edElement) Equal(o Element) bool {
	oe, ok := o.(edElement)
	if !ok {
		return false
	}
	return e.p.Equal(oe.p)
}

func (e edElement) String() string {
	return e.p.String()
}
