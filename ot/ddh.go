//
// ddh.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Full-simulation DDH OT in the style of Peikert, Vaikuntanathan,
// and Waters:
//  - A Framework for Efficient and Composable Oblivious Transfer
//  - https://eprint.iacr.org/2007/348.pdf
//
// The receiver's one-time setup (g0, g1, h0, h1) is proven well-formed
// with the DH-Extended sigma protocol: (g0,h0) and (g1,h1/g1) share
// the exponent alpha0, so (g0,g1,h0,h1) is not a DH tuple and the
// receiver can learn at most one element of each pair.

package ot

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"runtime"
	"sync/atomic"

	"github.com/markkurossi/sigmaot/group"
	"github.com/markkurossi/sigmaot/logging"
	"github.com/markkurossi/sigmaot/prg"
	"github.com/markkurossi/sigmaot/sigma"
	"golang.org/x/crypto/hkdf"
)

var (
	_ BatchSender   = &DDHSender{}
	_ BatchReceiver = &DDHReceiver{}
)

// DDHSender implements the DDH batch OT sender.
type DDHSender struct {
	grp            group.Group
	g0, g1, h0, h1 group.Element
	rand           *prg.Stream
	ids            transferIDs
	Log            logging.Logger
}

// NewDDHSender creates a new DDH OT sender. The function receives the
// receiver's setup message over io and verifies its proof with the
// soundness parameter t. The function returns ErrCheatAttempt if the
// proof is rejected.
func NewDDHSender(io IO, grp group.Group, t int, rand io.Reader) (
	*DDHSender, error) {

	stream, err := prg.NewFrom(rand)
	if err != nil {
		return nil, err
	}
	verifier, err := sigma.NewDHExtendedVerifier(grp, t, stream.Fork())
	if err != nil {
		return nil, err
	}

	name, err := ReceiveString(io)
	if err != nil {
		return nil, err
	}
	if name != grp.Name() {
		return nil, fmt.Errorf("%w: invalid group %s, expected %s",
			ErrInvalidInput, name, grp.Name())
	}

	s := &DDHSender{
		grp:  grp,
		g0:   grp.Generator(),
		rand: stream,
		Log:  logging.Discard(),
	}
	for _, e := range []*group.Element{&s.g1, &s.h0, &s.h1} {
		*e, err = receiveElement(io, grp)
		if err != nil {
			return nil, err
		}
	}
	if s.g1.Equal(grp.Identity()) {
		return nil, fmt.Errorf("%w: g1 is identity", ErrCheatAttempt)
	}

	ok, err := sigma.VerifyProof(io, verifier, s.statement())
	if err != nil {
		return nil, fmt.Errorf("%w: setup proof: %v", ErrCheatAttempt, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: setup proof rejected", ErrCheatAttempt)
	}
	return s, nil
}

func (s *DDHSender) statement() *sigma.DHExtendedCommonInput {
	return &sigma.DHExtendedCommonInput{
		G: []group.Element{s.g0, s.g1},
		H: []group.Element{s.h0, s.grp.Mul(s.h1, s.grp.Inv(s.g1))},
	}
}

// Transfer implements BatchSender.Transfer. The function supports
// only GeneralSInput.
func (s *DDHSender) Transfer(io IO, in SenderInput) (SenderOutput, error) {
	input, ok := in.(*GeneralSInput)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrTypeMismatch, in)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	n := input.NumOTs
	size := input.ElementSize()

	h, err := senderHandshake(io, &s.ids, variantGeneral, n, size)
	if err != nil {
		return nil, err
	}
	log := s.Log.With("id", h.id)
	log.Debug("transfer", "n", n, "size", size)

	gs := make([]group.Element, n)
	hs := make([]group.Element, n)
	for i := 0; i < n; i++ {
		gs[i], err = receiveElement(io, s.grp)
		if err != nil {
			return nil, err
		}
		hs[i], err = receiveElement(io, s.grp)
		if err != nil {
			return nil, err
		}
	}

	elSize := size / 8
	bases := [2][2]group.Element{
		{s.g0, s.h0},
		{s.g1, s.h1},
	}
	xs := [2][]byte{input.X0, input.X1}

	for i := 0; i < n; i++ {
		for b := 0; b < 2; b++ {
			// RAND(g_b, h_b, g, h) = (u, v) = (g_b^s·h_b^t, g^s·h^t)
			u, v, err := s.rand2(bases[b][0], bases[b][1], gs[i], hs[i])
			if err != nil {
				return nil, err
			}
			c := make([]byte, elSize)
			kdf(v, h.id, i, b, c)
			xor(c, xs[b][i*elSize:(i+1)*elSize])

			if err := io.SendData(u.Bytes()); err != nil {
				return nil, err
			}
			if err := io.SendData(c); err != nil {
				return nil, err
			}
		}
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}
	log.Debug("transfer done")

	return nil, nil
}

func (s *DDHSender) rand2(gb, hb, g, h group.Element) (
	group.Element, group.Element, error) {

	es, err := s.grp.RandomExponent(s.rand)
	if err != nil {
		return nil, nil, err
	}
	et, err := s.grp.RandomExponent(s.rand)
	if err != nil {
		return nil, nil, err
	}
	u := s.grp.Mul(s.grp.Exp(gb, es), s.grp.Exp(hb, et))
	v := s.grp.Mul(s.grp.Exp(g, es), s.grp.Exp(h, et))

	clearInt(es)
	clearInt(et)

	return u, v, nil
}

// DDHReceiver implements the DDH batch OT receiver.
type DDHReceiver struct {
	grp     group.Group
	g       [2]group.Element
	h       [2]group.Element
	rand    *prg.Stream
	counter atomic.Uint64
	Log     logging.Logger
}

// NewDDHReceiver creates a new DDH OT receiver. The function sends the
// setup message over io and proves it well-formed with the soundness
// parameter t.
func NewDDHReceiver(io IO, grp group.Group, t int, rand io.Reader) (
	*DDHReceiver, error) {

	stream, err := prg.NewFrom(rand)
	if err != nil {
		return nil, err
	}
	prover, err := sigma.NewDHExtendedProver(grp, t, stream.Fork())
	if err != nil {
		return nil, err
	}

	var y *big.Int
	for {
		y, err = grp.RandomExponent(stream)
		if err != nil {
			return nil, err
		}
		if y.Sign() != 0 {
			break
		}
	}
	alpha0, err := grp.RandomExponent(stream)
	if err != nil {
		return nil, err
	}
	alpha1 := new(big.Int).Add(alpha0, big.NewInt(1))

	r := &DDHReceiver{
		grp:  grp,
		rand: stream,
		Log:  logging.Discard(),
	}
	r.g[0] = grp.Generator()
	r.g[1] = grp.Exp(r.g[0], y)
	r.h[0] = grp.Exp(r.g[0], alpha0)
	r.h[1] = grp.Exp(r.g[1], alpha1)

	clearInt(y)
	clearInt(alpha1)

	if err := SendString(io, grp.Name()); err != nil {
		return nil, err
	}
	for _, e := range []group.Element{r.g[1], r.h[0], r.h[1]} {
		if err := io.SendData(e.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}

	input := &sigma.DHExtendedProverInput{
		DHExtendedCommonInput: sigma.DHExtendedCommonInput{
			G: []group.Element{r.g[0], r.g[1]},
			H: []group.Element{r.h[0], grp.Mul(r.h[1], grp.Inv(r.g[1]))},
		},
		W: alpha0,
	}
	err = sigma.Prove(io, prover, input)
	clearInt(alpha0)
	if err != nil {
		return nil, fmt.Errorf("setup proof: %w", err)
	}
	return r, nil
}

// Transfer implements BatchReceiver.Transfer. The function supports
// only GeneralRInput.
func (r *DDHReceiver) Transfer(io IO, in ReceiverInput) (
	*ByteArrayROutput, error) {

	input, ok := in.(*GeneralRInput)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrTypeMismatch, in)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	n, err := numOTs(input.Sigma, input.NumOTs)
	if err != nil {
		return nil, err
	}
	size := input.ElementSize

	h, err := receiverHandshake(io, &r.counter, variantGeneral, n, size)
	if err != nil {
		return nil, err
	}
	log := r.Log.With("id", h.id)
	log.Debug("transfer", "n", n, "size", size)

	rs := make([]*big.Int, n)
	defer func() {
		for _, ri := range rs {
			clearInt(ri)
		}
	}()

	// (g, h) = (g_σ^r, h_σ^r)
	for i := 0; i < n; i++ {
		var bit int
		if SelectionBit(input.Sigma, i) {
			bit = 1
		}
		rs[i], err = r.grp.RandomExponent(r.rand)
		if err != nil {
			return nil, err
		}
		g := r.grp.Exp(r.g[bit], rs[i])
		hh := r.grp.Exp(r.h[bit], rs[i])
		if err := io.SendData(g.Bytes()); err != nil {
			return nil, err
		}
		if err := io.SendData(hh.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}

	elSize := size / 8
	result := make([]byte, n*elSize)

	for i := 0; i < n; i++ {
		for b := 0; b < 2; b++ {
			u, err := receiveElement(io, r.grp)
			if err != nil {
				return nil, err
			}
			c, err := io.ReceiveData()
			if err != nil {
				return nil, err
			}
			if len(c) != elSize {
				return nil, fmt.Errorf("%w: invalid ciphertext length %d",
					ErrCheatAttempt, len(c))
			}
			if SelectionBit(input.Sigma, i) != (b == 1) {
				continue
			}
			x := result[i*elSize : (i+1)*elSize]
			kdf(r.grp.Exp(u, rs[i]), h.id, i, b, x)
			xor(x, c)
		}
	}
	log.Debug("transfer done")

	return &ByteArrayROutput{
		XSigma: result,
	}, nil
}

func receiveElement(io IO, grp group.Group) (group.Element, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, err
	}
	e, err := grp.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheatAttempt, err)
	}
	return e, nil
}

// kdf derives the pad for the OT index i and the sender bit b from
// the group element e. The pad fills buf.
func kdf(e group.Element, id uint64, i, b int, buf []byte) {
	var info [17]byte
	bo.PutUint64(info[0:8], id)
	bo.PutUint64(info[8:16], uint64(i))
	info[16] = byte(b)

	var seed [prg.SeedSize]byte
	prk := hkdf.Extract(sha256.New, e.Bytes(), nil)
	_, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info[:]), seed[:])
	if err != nil {
		panic(err)
	}
	prg.New(seed[:]).Read(buf)
}

func clearInt(v *big.Int) {
	if v == nil {
		return
	}
	words := v.Bits()
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	v.SetInt64(0)
}
