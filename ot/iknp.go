//
// iknp.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf
//
// Better Concrete Security for Half-Gates Garbling (in the
// Multi-Instance Setting)
//  - https://eprint.iacr.org/2019/1168.pdf
//
// Actively Secure OT Extension with Optimal Overhead
//  - https://eprint.iacr.org/2015/546.pdf

/*

This implementation is derived from the EMP Toolkit's ikmp.h and cot.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/{ikmp,cot}.h)
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
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

const (
	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 128

	// Chunk size. Must be multiple of 16 (K-bits).
	chunkSize = 2 * 1024

	// The maximum number of byte-rows in a chunk.
	chunkByteRows = chunkSize / K

	// The number of label rows in a chunk.
	chunkRows = chunkByteRows * 8

	// The number of extra OTs for the consistency check.
	checkOTs = 2 * K
)

// IKNPSender implements the random correlated OT sender. The base OTs
// are run once in NewIKNPSender. After that, the sender can run any
// number of concurrent extensions, each with its own IO and a unique
// extension ID.
type IKNPSender struct {
	// Delta defines the correlation delta: b1 = b0 ⊕ Δ
	Delta Label
	k0    [K]Label
}

// NewIKNPSender creates a new sender. The base OT must be initialized
// as a receiver. The d is an optional delta. If unset, the function
// creates a random delta.
func NewIKNPSender(base OT, r io.Reader, d *Label) (*IKNPSender, error) {
	var delta Label
	var err error
	if d == nil {
		delta, err = NewLabel(r)
		if err != nil {
			return nil, err
		}
	} else {
		delta = *d
	}

	s := &IKNPSender{
		Delta: delta,
	}

	var flags [K]bool
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}
	err = base.Receive(flags[:], s.k0[:])
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Send extends n labels using the extension ID id. The function
// returns the b0 labels. The b1 labels are b0[i] ⊕ s.Delta. The same
// id must not be used twice with the same sender.
func (s *IKNPSender) Send(io IO, id uint64, n int, malicious bool) (
	[]Label, error) {

	var g0 [K]cipher.Stream
	var err error
	for i := 0; i < K; i++ {
		g0[i], err = newPrg(s.k0[i], id)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.send(io, &g0, n)
	if err != nil {
		return nil, err
	}
	if !malicious {
		return result, nil
	}

	// Choice vector.
	choiceVector, err := s.send(io, &g0, checkOTs)
	if err != nil {
		return nil, err
	}

	// Verify the receiver's checksum and correlation tags.

	var seed2 Label
	var ld LabelData
	if err := io.ReceiveLabel(&seed2, &ld); err != nil {
		return nil, err
	}
	chiPrg, err := newPrg(seed2, id)
	if err != nil {
		return nil, err
	}

	var q0, q1 Label
	var chi [1024]Label

	for i := 0; i < len(result); i += len(chi) {
		count := len(result) - i
		if count > len(chi) {
			count = len(chi)
		}
		prgLabels(chiPrg, chi[:count])
		r0, r1 := vectorInnPrdtSumNoRed(chi[:count], result[i:])
		q0.Xor(r0)
		q1.Xor(r1)
	}

	// Random choice vector.
	prgLabels(chiPrg, chi[:len(choiceVector)])
	r0, r1 := vectorInnPrdtSumNoRed(chi[:len(choiceVector)], choiceVector)
	q0.Xor(r0)
	q1.Xor(r1)

	var x, t0, t1 Label
	if err := io.ReceiveLabel(&x, &ld); err != nil {
		return nil, err
	}
	if err := io.ReceiveLabel(&t0, &ld); err != nil {
		return nil, err
	}
	if err := io.ReceiveLabel(&t1, &ld); err != nil {
		return nil, err
	}
	r0, r1 = mul128(x, s.Delta)
	q0.Xor(r0)
	q1.Xor(r1)

	if !q0.Equal(t0) || !q1.Equal(t1) {
		return nil, fmt.Errorf("%w: OT extension check failed",
			ErrCheatAttempt)
	}

	return result, nil
}

func (s *IKNPSender) send(io IO, g0 *[K]cipher.Stream, n int) (
	[]Label, error) {

	result := make([]Label, n)

	var t [chunkSize]byte

	// The receiver sends the K*n-byte columns.
	var ofs int
	for ofs < n {
		chunk, err := io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 || len(chunk)%K != 0 || len(chunk) > chunkSize {
			return nil, fmt.Errorf("%w: invalid chunk size: %v",
				ErrCheatAttempt, len(chunk))
		}
		byteRows := len(chunk) / K

		for i := 0; i < K; i++ {
			prgFill(g0[i], t[i*byteRows:(i+1)*byteRows])
			if s.Delta.Bit(i) == 1 {
				xor(t[i*byteRows:(i+1)*byteRows], chunk[i*byteRows:])
			}
		}
		createLabels(result[ofs:], t[:], byteRows)

		ofs += byteRows * 8
	}

	return result, nil
}

// IKNPReceiver implements the random correlated OT receiver. Like
// IKNPSender, the receiver can run concurrent extensions after the
// base OTs.
type IKNPReceiver struct {
	rand  io.Reader
	seeds [K]Wire
}

// NewIKNPReceiver creates a new receiver. The base OT must be
// initialized as a sender. The rand is used for the base OT seeds and
// for the consistency check randomness; it must be safe for concurrent
// use if the receiver runs concurrent extensions.
func NewIKNPReceiver(base OT, rand io.Reader) (*IKNPReceiver, error) {
	r := &IKNPReceiver{
		rand: rand,
	}
	for i := 0; i < K; i++ {
		l0, err := NewLabel(rand)
		if err != nil {
			return nil, err
		}
		l1, err := NewLabel(rand)
		if err != nil {
			return nil, err
		}
		r.seeds[i] = Wire{
			L0: l0,
			L1: l1,
		}
	}
	err := base.Send(r.seeds[:])
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Receive labels based on the selection flags b, using the extension
// ID id. The returned labels implement the correlation: br[i] = b0[i]
// ⊕ b[i]*s.Delta. The function panics if b and result have different
// lengths.
func (r *IKNPReceiver) Receive(io IO, id uint64, b []bool, result []Label,
	malicious bool) error {

	var g0, g1 [K]cipher.Stream
	var err error
	for i := 0; i < K; i++ {
		g0[i], err = newPrg(r.seeds[i].L0, id)
		if err != nil {
			return err
		}
		g1[i], err = newPrg(r.seeds[i].L1, id)
		if err != nil {
			return err
		}
	}

	err = r.receive(io, &g0, &g1, b, result)
	if err != nil {
		return err
	}
	if !malicious {
		return nil
	}

	// Create random choice flags.
	b0, err := NewLabel(r.rand)
	if err != nil {
		return err
	}
	b1, err := NewLabel(r.rand)
	if err != nil {
		return err
	}
	bcv := make([]bool, checkOTs)
	for i := 0; i < checkOTs; i++ {
		if i < K {
			bcv[i] = b0.Bit(i) == 1
		} else {
			bcv[i] = b1.Bit(i-K) == 1
		}
	}
	choiceVector := make([]Label, checkOTs)
	err = r.receive(io, &g0, &g1, bcv, choiceVector)
	if err != nil {
		return err
	}

	// Compute the receiver checksum and correlation tags.

	var select0 Label // zero label
	select1 := Label{ // all-one label
		D0: 0xffffffffffffffff,
		D1: 0xffffffffffffffff,
	}
	seed2, err := NewLabel(r.rand)
	if err != nil {
		return err
	}
	var ld LabelData
	if err := io.SendLabel(seed2, &ld); err != nil {
		return err
	}
	chiPrg, err := newPrg(seed2, id)
	if err != nil {
		return err
	}

	var t0, t1, x Label
	var chi [1024]Label

	for i := 0; i < len(b); i += len(chi) {
		count := len(b) - i
		if count > len(chi) {
			count = len(chi)
		}
		prgLabels(chiPrg, chi[:count])
		r0, r1 := vectorInnPrdtSumNoRed(chi[:count], result[i:])
		t0.Xor(r0)
		t1.Xor(r1)

		for j := 0; j < count; j++ {
			if b[i+j] {
				chi[j].And(select1)
			} else {
				chi[j].And(select0)
			}
			x.Xor(chi[j])
		}
	}

	// Random choice vector.
	prgLabels(chiPrg, chi[:len(choiceVector)])
	r0, r1 := vectorInnPrdtSumNoRed(chi[:len(choiceVector)], choiceVector)
	t0.Xor(r0)
	t1.Xor(r1)
	for j := 0; j < len(choiceVector); j++ {
		if bcv[j] {
			chi[j].And(select1)
		} else {
			chi[j].And(select0)
		}
		x.Xor(chi[j])
	}

	if err := io.SendLabel(x, &ld); err != nil {
		return err
	}
	if err := io.SendLabel(t0, &ld); err != nil {
		return err
	}
	if err := io.SendLabel(t1, &ld); err != nil {
		return err
	}
	return io.Flush()
}

func (r *IKNPReceiver) receive(io IO, g0, g1 *[K]cipher.Stream, b []bool,
	result []Label) error {

	if len(b) != len(result) {
		panic("len(b) != len(result)")
	}
	bbuf := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			bbuf[i/8] |= 1 << (i % 8)
		}
	}

	var chunk, out [chunkSize]byte
	var tmp [chunkByteRows]byte

	for ofs := 0; ofs < len(b); {
		rows := chunkRows
		avail := len(b) - ofs
		if rows > avail {
			rows = avail
		}
		byteRows := (rows + 7) / 8

		for i := 0; i < K; i++ {
			prgFill(g0[i], chunk[i*byteRows:(i+1)*byteRows])
			prgFill(g1[i], tmp[:byteRows])

			xor(tmp[:byteRows], chunk[i*byteRows:])
			xor(tmp[:byteRows], bbuf[ofs/8:])

			copy(out[i*byteRows:], tmp[:byteRows])
		}
		if err := io.SendData(out[:byteRows*K]); err != nil {
			return err
		}
		createLabels(result[ofs:], chunk[:], byteRows)

		ofs += rows
	}
	return io.Flush()
}

// newPrg creates an AES-CTR stream keyed with key. The id is placed
// in the high half of the initial counter block so that extensions
// with different IDs never share keystream.
func newPrg(key Label, id uint64) (cipher.Stream, error) {
	var ld LabelData
	block, err := aes.NewCipher(key.Bytes(&ld))
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	bo.PutUint64(iv[:8], id)
	return cipher.NewCTR(block, iv[:]), nil
}

func prgFill(c cipher.Stream, buf []byte) {
	// Clear buffer as it is shared between different caller's
	// iterations.
	for i := 0; i < len(buf); i++ {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
}

func prgLabels(c cipher.Stream, labels []Label) {
	var buf [16]byte
	for i := range labels {
		prgFill(c, buf[:])
		labels[i].SetBytes(buf[:])
	}
}

func createLabels(l []Label, buf []byte, w int) {
	end := w * 8
	if end > len(l) {
		end = len(l)
	}
	for i := 0; i < end; i++ {
		row := i / 8
		bit := i % 8
		for j := 0; j < K; j++ {
			v := uint((buf[j*w+row] >> bit) & 1)
			l[i].SetBit(j, v)
		}
	}
}
