//
// curve.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package group

import (
	"crypto/elliptic"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

var (
	_ Group   = &Curve{}
	_ Element = ecElement{}
)

// Curve implements a prime-order elliptic curve group. The point at
// infinity is the identity and it is encoded as a single zero byte;
// other points use the compressed SEC 1 encoding.
type Curve struct {
	name      string
	curve     elliptic.Curve
	g         ecElement
	size      int
	decompose func(data []byte) (x, y *big.Int, err error)
}

// P256 returns the NIST P-256 group.
func P256() *Curve {
	curve := elliptic.P256()
	return newCurve("p256", curve,
		func(data []byte) (*big.Int, *big.Int, error) {
			x, y := elliptic.UnmarshalCompressed(curve, data)
			if x == nil {
				return nil, nil, ErrInvalidEncoding
			}
			return x, y, nil
		})
}

// Secp256k1 returns the secp256k1 group.
func Secp256k1() *Curve {
	return newCurve("secp256k1", btcec.S256(),
		func(data []byte) (*big.Int, *big.Int, error) {
			pub, err := btcec.ParsePubKey(data)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
			}
			return pub.X(), pub.Y(), nil
		})
}

func newCurve(name string, curve elliptic.Curve,
	decompose func(data []byte) (*big.Int, *big.Int, error)) *Curve {

	params := curve.Params()
	return &Curve{
		name:  name,
		curve: curve,
		g: ecElement{
			x:     params.Gx,
			y:     params.Gy,
			curve: curve,
		},
		size:      1 + (params.BitSize+7)/8,
		decompose: decompose,
	}
}

// Name implements Group.Name.
func (c *Curve) Name() string {
	return c.name
}

// Order implements Group.Order.
func (c *Curve) Order() *big.Int {
	return c.curve.Params().N
}

// Generator implements Group.Generator.
func (c *Curve) Generator() Element {
	return c.g
}

// Identity implements Group.Identity.
func (c *Curve) Identity() Element {
	return ecElement{}
}

// Exp implements Group.Exp.
func (c *Curve) Exp(e Element, k *big.Int) Element {
	p := e.(ecElement)
	k = reduce(k, c.Order())
	if p.isIdentity() || k.Sign() == 0 {
		return ecElement{}
	}
	return c.point(c.curve.ScalarMult(p.x, p.y, k.Bytes()))
}

// Mul implements Group.Mul.
func (c *Curve) Mul(a, b Element) Element {
	pa := a.(ecElement)
	pb := b.(ecElement)
	if pa.isIdentity() {
		return pb
	}
	if pb.isIdentity() {
		return pa
	}
	if pa.x.Cmp(pb.x) == 0 {
		if pa.y.Cmp(pb.y) == 0 {
			return c.point(c.curve.Double(pa.x, pa.y))
		}
		// pb = pa^-1
		return ecElement{}
	}
	return c.point(c.curve.Add(pa.x, pa.y, pb.x, pb.y))
}

// Inv implements Group.Inv.
func (c *Curve) Inv(e Element) Element {
	p := e.(ecElement)
	if p.isIdentity() {
		return p
	}
	return ecElement{
		x:     p.x,
		y:     new(big.Int).Sub(c.curve.Params().P, p.y),
		curve: c.curve,
	}
}

// IsMember implements Group.IsMember. Both curves have cofactor 1 so
// all curve points are in the prime-order group.
func (c *Curve) IsMember(e Element) bool {
	p, ok := e.(ecElement)
	if !ok {
		return false
	}
	if p.isIdentity() {
		return true
	}
	if p.x == nil || p.y == nil {
		return false
	}
	return c.curve.IsOnCurve(p.x, p.y)
}

// RandomExponent implements Group.RandomExponent.
func (c *Curve) RandomExponent(rand io.Reader) (*big.Int, error) {
	return randomExponent(rand, c.Order())
}

// Decode implements Group.Decode.
func (c *Curve) Decode(data []byte) (Element, error) {
	if len(data) == 1 && data[0] == 0 {
		return ecElement{}, nil
	}
	if len(data) != c.size {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d",
			ErrInvalidEncoding, len(data), c.size)
	}
	x, y, err := c.decompose(data)
	if err != nil {
		return nil, err
	}
	e := ecElement{
		x:     x,
		y:     y,
		curve: c.curve,
	}
	if !c.IsMember(e) {
		return nil, ErrNotMember
	}
	return e, nil
}

func (c *Curve) point(x, y *big.Int) ecElement {
	if x.Sign() == 0 && y.Sign() == 0 {
		return ecElement{}
	}
	return ecElement{
		x:     x,
		y:     y,
		curve: c.curve,
	}
}

type ecElement struct {
	x, y  *big.Int
	curve elliptic.Curve
}

func (e ecElement) isIdentity() bool {
	return e.x == nil && e.y == nil
}

func (e ecElement) Bytes() []byte {
	if e.isIdentity() {
		return []byte{0}
	}
	return elliptic.MarshalCompressed(e.curve, e.x, e.y)
}

func (e ecElement) Equal(o Element) bool {
	oe, ok := o.(ecElement)
	if !ok {
		return false
	}
	if e.isIdentity() || oe.isIdentity() {
		return e.isIdentity() && oe.isIdentity()
	}
	return e.x.Cmp(oe.x) == 0 && e.y.Cmp(oe.y) == 0
}

func (e ecElement) String() string {
	if e.isIdentity() {
		return "O"
	}
	return fmt.Sprintf("(%x,%x)", e.x, e.y)
}
