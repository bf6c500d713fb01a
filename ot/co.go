//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

/*

This implementation is derived from the EMP Toolkit's co.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/co.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

package ot

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"github.com/markkurossi/sigmaot/group"
)

var (
	_ OT = &CO{}
)

// CO implements the Chou-Orlandi OT as the OT interface. The protocol
// runs over any prime-order group:
//
//	S: a <- Z_q, A = g^a                    S -> R: A
//	R: b <- Z_q, B = g^b or A·g^b           R -> S: B
//	S: k0 = H(B^a), k1 = H((B/A)^a)         S -> R: e0 = k0⊕m0, e1 = k1⊕m1
//	R: k = H(A^b), m = k⊕e_flag
type CO struct {
	grp  group.Group
	rand io.Reader
	hash hash.Hash
	io   IO
}

// NewCO creates a new CO OT over the group. The rand is the source of
// randomness; if nil, crypto/rand is used.
func NewCO(grp group.Group, rand io.Reader) *CO {
	return &CO{
		grp:  grp,
		rand: rand,
		hash: sha256.New(),
	}
}

// InitSender implements OT.InitSender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := SendString(io, co.grp.Name()); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver implements OT.InitReceiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != co.grp.Name() {
		return fmt.Errorf("%w: invalid group %s, expected %s",
			ErrInvalidInput, name, co.grp.Name())
	}
	return nil
}

// Send implements OT.Send.
func (co *CO) Send(wires []Wire) error {
	if co.io == nil {
		return fmt.Errorf("CO: sender not initialized")
	}
	a, err := co.grp.RandomExponent(co.rand)
	if err != nil {
		return err
	}

	// A = g^a
	A := co.grp.Exp(co.grp.Generator(), a)
	if err := co.io.SendData(A.Bytes()); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	// (A^a)^-1
	AaInv := co.grp.Inv(co.grp.Exp(A, a))

	k0 := make([]group.Element, len(wires))
	k1 := make([]group.Element, len(wires))

	for i := 0; i < len(wires); i++ {
		data, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		B, err := co.grp.Decode(data)
		if err != nil {
			return fmt.Errorf("%w: CO: B[%d]: %v", ErrCheatAttempt, i, err)
		}
		Ba := co.grp.Exp(B, a)
		k0[i] = Ba
		k1[i] = co.grp.Mul(Ba, AaInv)
	}

	var labelData LabelData
	for i := 0; i < len(wires); i++ {
		wires[i].L0.GetData(&labelData)
		e0 := xor(co.kdf(k0[i], uint64(i)), labelData[:])
		if err := co.io.SendData(e0); err != nil {
			return err
		}
		wires[i].L1.GetData(&labelData)
		e1 := xor(co.kdf(k1[i], uint64(i)), labelData[:])
		if err := co.io.SendData(e1); err != nil {
			return err
		}
	}
	return co.io.Flush()
}

// Receive implements OT.Receive.
func (co *CO) Receive(flags []bool, result []Label) error {
	if co.io == nil {
		return fmt.Errorf("CO: receiver not initialized")
	}
	data, err := co.io.ReceiveData()
	if err != nil {
		return err
	}
	A, err := co.grp.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: CO: A: %v", ErrCheatAttempt, err)
	}

	bs := make([]group.Element, len(flags))
	for i := 0; i < len(flags); i++ {
		b, err := co.grp.RandomExponent(co.rand)
		if err != nil {
			return err
		}
		B := co.grp.Exp(co.grp.Generator(), b)
		if flags[i] {
			B = co.grp.Mul(A, B)
		}
		if err := co.io.SendData(B.Bytes()); err != nil {
			return err
		}
		bs[i] = co.grp.Exp(A, b)
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	for i := 0; i < len(flags); i++ {
		e0, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		e1, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		e := e0
		if flags[i] {
			e = e1
		}
		if len(e) != len(LabelData{}) {
			return fmt.Errorf("%w: CO: invalid ciphertext length %d",
				ErrCheatAttempt, len(e))
		}
		result[i].SetBytes(xor(co.kdf(bs[i], uint64(i)), e))
	}
	return nil
}

func (co *CO) kdf(e group.Element, id uint64) []byte {
	co.hash.Reset()
	co.hash.Write(e.Bytes())

	var tmp [8]byte
	bo.PutUint64(tmp[:], id)
	co.hash.Write(tmp[:])

	return co.hash.Sum(nil)[:len(LabelData{})]
}
