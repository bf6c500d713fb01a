//
// batch.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// SenderInput defines the batch OT sender input variants. The
// variants are GeneralSInput and RandomSInput.
type SenderInput interface {
	isSenderInput()
}

// SenderOutput defines the batch OT sender output variants. Protocols
// that take the sender's values as input return nil output; random
// OTs return RandomSOutput.
type SenderOutput interface {
	isSenderOutput()
}

// ReceiverInput defines the batch OT receiver input variants. The
// variants are GeneralRInput and RandomRInput.
type ReceiverInput interface {
	isReceiverInput()
}

// GeneralSInput defines the sender input for the general batch OT:
// NumOTs pairs of equal-sized elements. The element i of X0 is
// X0[i*size:(i+1)*size] where size is len(X0)/NumOTs.
type GeneralSInput struct {
	X0     []byte
	X1     []byte
	NumOTs int
}

func (in *GeneralSInput) isSenderInput() {}

// ElementSize returns the element size in bits.
func (in *GeneralSInput) ElementSize() int {
	if in.NumOTs <= 0 {
		return 0
	}
	return len(in.X0) / in.NumOTs * 8
}

// Validate checks that the input is well-formed.
func (in *GeneralSInput) Validate() error {
	if in.NumOTs <= 0 {
		return fmt.Errorf("%w: invalid number of OTs: %d",
			ErrInvalidInput, in.NumOTs)
	}
	if len(in.X0) != len(in.X1) {
		return fmt.Errorf("%w: len(X0)=%d != len(X1)=%d",
			ErrInvalidInput, len(in.X0), len(in.X1))
	}
	if len(in.X0) == 0 || len(in.X0)%in.NumOTs != 0 {
		return fmt.Errorf("%w: len(X0)=%d is not a multiple of %d",
			ErrInvalidInput, len(in.X0), in.NumOTs)
	}
	return nil
}

// RandomSInput defines the sender input for the random batch OT. The
// protocol chooses the sender's elements and returns them in
// RandomSOutput.
type RandomSInput struct {
	NumOTs int
	// ElementSize defines the element size in bits.
	ElementSize int
}

func (in *RandomSInput) isSenderInput() {}

// Validate checks that the input is well-formed.
func (in *RandomSInput) Validate() error {
	if in.NumOTs <= 0 {
		return fmt.Errorf("%w: invalid number of OTs: %d",
			ErrInvalidInput, in.NumOTs)
	}
	return checkElementSize(in.ElementSize)
}

// RandomSOutput holds the random elements the protocol chose for the
// sender.
type RandomSOutput struct {
	X0 []byte
	X1 []byte
}

func (out *RandomSOutput) isSenderOutput() {}

// GeneralRInput defines the receiver input for the general batch
// OT. Bit i of Sigma is bit i%8 of byte i/8.
type GeneralRInput struct {
	Sigma []byte
	// ElementSize defines the element size in bits.
	ElementSize int
	// NumOTs defines the number of OTs. If zero, the number of OTs
	// is 8*len(Sigma).
	NumOTs int
}

func (in *GeneralRInput) isReceiverInput() {}

// Validate checks that the input is well-formed.
func (in *GeneralRInput) Validate() error {
	_, err := numOTs(in.Sigma, in.NumOTs)
	if err != nil {
		return err
	}
	return checkElementSize(in.ElementSize)
}

// RandomRInput defines the receiver input for the random batch OT.
type RandomRInput struct {
	Sigma []byte
	// ElementSize defines the element size in bits.
	ElementSize int
	// NumOTs defines the number of OTs. If zero, the number of OTs
	// is 8*len(Sigma).
	NumOTs int
}

func (in *RandomRInput) isReceiverInput() {}

// Validate checks that the input is well-formed.
func (in *RandomRInput) Validate() error {
	_, err := numOTs(in.Sigma, in.NumOTs)
	if err != nil {
		return err
	}
	return checkElementSize(in.ElementSize)
}

// ByteArrayROutput holds the receiver's output: the concatenation of
// the selected elements in index order.
type ByteArrayROutput struct {
	XSigma []byte
}

// BatchSender defines the sender of a batch OT. The sender is
// constructed once with the protocol's one-time setup. After that,
// Transfer can be called concurrently, each call with its own IO.
type BatchSender interface {
	Transfer(io IO, in SenderInput) (SenderOutput, error)
}

// BatchReceiver defines the receiver of a batch OT.
type BatchReceiver interface {
	Transfer(io IO, in ReceiverInput) (*ByteArrayROutput, error)
}

// SelectionBit returns the selection bit i from sigma.
func SelectionBit(sigma []byte, i int) bool {
	return (sigma[i/8]>>(i%8))&1 == 1
}

// SelectionBits packs the boolean flags into a selection byte array.
func SelectionBits(flags []bool) []byte {
	result := make([]byte, (len(flags)+7)/8)
	for i, f := range flags {
		if f {
			result[i/8] |= 1 << (i % 8)
		}
	}
	return result
}

func numOTs(sigma []byte, n int) (int, error) {
	if n == 0 {
		n = len(sigma) * 8
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: invalid number of OTs: %d",
			ErrInvalidInput, n)
	}
	if len(sigma) != (n+7)/8 {
		return 0, fmt.Errorf("%w: len(Sigma)=%d, expected %d",
			ErrInvalidInput, len(sigma), (n+7)/8)
	}
	return n, nil
}

func checkElementSize(bits int) error {
	if bits <= 0 || bits%8 != 0 {
		return fmt.Errorf("%w: invalid element size: %d bits",
			ErrInvalidInput, bits)
	}
	return nil
}

// Transfer variants on the wire.
const (
	variantGeneral byte = iota + 1
	variantRandom
)

// Transfer header status codes.
const (
	statusOK byte = iota
	statusVariant
	statusSize
	statusDuplicate
)

// transferHeader is sent by the receiver at the start of each
// transfer. The sender checks it against its own input.
type transferHeader struct {
	variant     byte
	id          uint64
	n           int
	elementSize int
}

func (h transferHeader) send(io IO) error {
	if err := io.SendByte(h.variant); err != nil {
		return err
	}
	if err := SendUint64(io, h.id); err != nil {
		return err
	}
	if err := io.SendUint32(h.n); err != nil {
		return err
	}
	if err := io.SendUint32(h.elementSize); err != nil {
		return err
	}
	return io.Flush()
}

func receiveHeader(io IO) (transferHeader, error) {
	var h transferHeader
	var err error

	h.variant, err = io.ReceiveByte()
	if err != nil {
		return h, err
	}
	h.id, err = ReceiveUint64(io)
	if err != nil {
		return h, err
	}
	h.n, err = io.ReceiveUint32()
	if err != nil {
		return h, err
	}
	h.elementSize, err = io.ReceiveUint32()
	if err != nil {
		return h, err
	}
	return h, nil
}

// transferIDs tracks the transfer IDs the sender has seen.
type transferIDs struct {
	m    sync.Mutex
	used map[uint64]bool
}

func (ids *transferIDs) claim(id uint64) bool {
	ids.m.Lock()
	defer ids.m.Unlock()

	if ids.used == nil {
		ids.used = make(map[uint64]bool)
	}
	if ids.used[id] {
		return false
	}
	ids.used[id] = true
	return true
}

// senderHandshake receives the transfer header and checks it against
// the sender's expected parameters. It replies with the status so that
// both peers fail on mismatches.
func senderHandshake(io IO, ids *transferIDs, variant byte, n,
	elementSize int) (transferHeader, error) {

	h, err := receiveHeader(io)
	if err != nil {
		return h, err
	}

	var status byte
	switch {
	case h.variant != variant:
		status = statusVariant
	case h.n != n || h.elementSize != elementSize:
		status = statusSize
	case !ids.claim(h.id):
		status = statusDuplicate
	}
	if err := io.SendByte(status); err != nil {
		return h, err
	}
	if err := io.Flush(); err != nil {
		return h, err
	}
	if err := statusError(status, h); err != nil {
		return h, err
	}
	return h, nil
}

// receiverHandshake sends the transfer header and waits for the
// sender's status.
func receiverHandshake(io IO, counter *atomic.Uint64, variant byte, n,
	elementSize int) (transferHeader, error) {

	h := transferHeader{
		variant:     variant,
		id:          counter.Add(1),
		n:           n,
		elementSize: elementSize,
	}
	if err := h.send(io); err != nil {
		return h, err
	}
	status, err := io.ReceiveByte()
	if err != nil {
		return h, err
	}
	if err := statusError(status, h); err != nil {
		return h, err
	}
	return h, nil
}

func statusError(status byte, h transferHeader) error {
	switch status {
	case statusOK:
		return nil
	case statusVariant:
		return fmt.Errorf("%w: sender and receiver input variants differ",
			ErrInvalidInput)
	case statusSize:
		return fmt.Errorf("%w: transfer size mismatch: n=%d, size=%d",
			ErrInvalidInput, h.n, h.elementSize)
	case statusDuplicate:
		return fmt.Errorf("%w: transfer ID %d reused", ErrCheatAttempt, h.id)
	default:
		return fmt.Errorf("%w: invalid transfer status %d",
			ErrCheatAttempt, status)
	}
}
