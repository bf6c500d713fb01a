//
// group.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package group implements prime-order cyclic groups for
// discrete-log based protocols.
package group

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
)

var (
	// ErrNotMember is returned when an element is not a member of
	// the prime-order group.
	ErrNotMember = errors.New("group: element is not a group member")

	// ErrInvalidEncoding is returned when an element encoding can't
	// be parsed.
	ErrInvalidEncoding = errors.New("group: invalid element encoding")

	// ErrInvalidParams is returned for invalid group parameters.
	ErrInvalidParams = errors.New("group: invalid group parameters")

	// ErrUnknownGroup is returned by ByName for unknown group names.
	ErrUnknownGroup = errors.New("group: unknown group")
)

// Element is an immutable group element. Elements can be shared
// freely between goroutines.
type Element interface {
	// Bytes returns the canonical encoding of the element.
	Bytes() []byte

	// Equal tests if the element is equal to the argument element.
	Equal(o Element) bool

	String() string
}

// Group defines a cyclic group of prime order q. All operations are
// read-only and the group can be shared between concurrent sessions.
// The arithmetic operations expect elements that were created by the
// same group; callers must check foreign input with IsMember before
// using it.
type Group interface {
	// Name returns the group name.
	Name() string

	// Order returns the group order q. The caller must not modify
	// the returned value.
	Order() *big.Int

	// Generator returns the group generator.
	Generator() Element

	// Identity returns the identity element.
	Identity() Element

	// Exp computes e^k. The exponent is reduced modulo q.
	Exp(e Element, k *big.Int) Element

	// Mul computes a·b.
	Mul(a, b Element) Element

	// Inv computes e^-1.
	Inv(e Element) Element

	// IsMember tests if e is an element of the prime-order group.
	IsMember(e Element) bool

	// RandomExponent samples a uniformly random exponent from [0,q).
	RandomExponent(rand io.Reader) (*big.Int, error)

	// Decode decodes an element from its canonical encoding. The
	// function returns ErrInvalidEncoding or ErrNotMember if the
	// data does not encode a group member.
	Decode(data []byte) (Element, error)
}

// Registry of named groups.
var groups = map[string]func() Group{
	"p256":      func() Group { return P256() },
	"secp256k1": func() Group { return Secp256k1() },
	"ed25519":   func() Group { return Edwards25519() },
	"toy":       func() Group { return Toy() },
}

// ByName returns the named group.
func ByName(name string) (Group, error) {
	f, ok := groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, name)
	}
	return f(), nil
}

// Names returns the names of the registered groups.
func Names() []string {
	var names []string
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// randomExponent samples a uniform value from [0,q) with rejection
// sampling. The output is a deterministic function of the bytes read
// from r.
func randomExponent(r io.Reader, q *big.Int) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	bits := q.BitLen()
	buf := make([]byte, (bits+7)/8)
	mask := byte(0xff >> (uint(len(buf)*8 - bits)))

	k := new(big.Int)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		buf[0] &= mask
		k.SetBytes(buf)
		if k.Cmp(q) < 0 {
			return k, nil
		}
	}
}

func reduce(k, q *big.Int) *big.Int {
	if k.Sign() >= 0 && k.Cmp(q) < 0 {
		return k
	}
	return new(big.Int).Mod(k, q)
}
