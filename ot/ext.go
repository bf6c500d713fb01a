//
// ext.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/markkurossi/sigmaot/logging"
	"github.com/markkurossi/sigmaot/prg"
)

var (
	_ BatchSender   = &ExtSender{}
	_ BatchReceiver = &ExtReceiver{}
)

// The number of MITCCRH keys per hash call.
const hashBatch = 8

// ExtSender implements the batch OT sender with the IKNP OT
// extension. In the malicious mode, each extension is verified with
// the KOS consistency check.
type ExtSender struct {
	iknp      *IKNPSender
	malicious bool
	rand      *prg.Stream
	ids       transferIDs
	Log       logging.Logger
}

// NewExtSender creates a new batch OT sender. The function runs the
// base OTs with base over io. The base OT must not be initialized. The
// rand seeds the sender's randomness; if nil, crypto/rand is used.
func NewExtSender(io IO, base OT, malicious bool, rand io.Reader) (
	*ExtSender, error) {

	stream, err := prg.NewFrom(rand)
	if err != nil {
		return nil, err
	}
	peer, err := io.ReceiveByte()
	if err != nil {
		return nil, err
	}
	var status byte
	if (peer == 1) != malicious {
		status = statusVariant
	}
	if err := io.SendByte(status); err != nil {
		return nil, err
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}
	if status != statusOK {
		return nil, fmt.Errorf("%w: malicious mode mismatch", ErrInvalidInput)
	}

	if err := base.InitReceiver(io); err != nil {
		return nil, err
	}
	iknp, err := NewIKNPSender(base, stream, nil)
	if err != nil {
		return nil, err
	}
	return &ExtSender{
		iknp:      iknp,
		malicious: malicious,
		rand:      stream,
		Log:       logging.Discard(),
	}, nil
}

// Transfer implements BatchSender.Transfer. The function supports
// GeneralSInput and RandomSInput.
func (s *ExtSender) Transfer(io IO, in SenderInput) (SenderOutput, error) {
	var variant byte
	var n, size int

	switch input := in.(type) {
	case *GeneralSInput:
		if err := input.Validate(); err != nil {
			return nil, err
		}
		variant = variantGeneral
		n = input.NumOTs
		size = input.ElementSize()

	case *RandomSInput:
		if err := input.Validate(); err != nil {
			return nil, err
		}
		variant = variantRandom
		n = input.NumOTs
		size = input.ElementSize

	default:
		return nil, fmt.Errorf("%w: %T", ErrTypeMismatch, in)
	}

	h, err := senderHandshake(io, &s.ids, variant, n, size)
	if err != nil {
		return nil, err
	}
	log := s.Log.With("id", h.id)
	log.Debug("transfer", "n", n, "size", size, "malicious", s.malicious)

	labels, err := s.iknp.Send(io, h.id, n, s.malicious)
	if err != nil {
		return nil, err
	}

	seed, err := NewLabel(s.rand)
	if err != nil {
		return nil, err
	}
	var ld LabelData
	if err := io.SendLabel(seed, &ld); err != nil {
		return nil, err
	}

	// Break the correlation: pad0 = H(b0), pad1 = H(b0 ⊕ Δ).
	crh := NewMITCCRH(seed, uint32(h.id), hashBatch)
	var blks [2 * hashBatch]Label
	pads := make([]Wire, n)

	for i := 0; i < n; i += hashBatch {
		count := n - i
		if count > hashBatch {
			count = hashBatch
		}
		for j := 0; j < hashBatch; j++ {
			if j < count {
				blks[2*j] = labels[i+j]
				blks[2*j+1] = labels[i+j]
				blks[2*j+1].Xor(s.iknp.Delta)
			} else {
				blks[2*j] = Label{}
				blks[2*j+1] = Label{}
			}
		}
		crh.Hash(blks[:], hashBatch, 2)
		for j := 0; j < count; j++ {
			pads[i+j].L0 = blks[2*j]
			pads[i+j].L1 = blks[2*j+1]
		}
	}

	elSize := size / 8
	x0 := make([]byte, n*elSize)
	x1 := make([]byte, n*elSize)
	for i := 0; i < n; i++ {
		if err := expand(pads[i].L0, x0[i*elSize:(i+1)*elSize]); err != nil {
			return nil, err
		}
		if err := expand(pads[i].L1, x1[i*elSize:(i+1)*elSize]); err != nil {
			return nil, err
		}
	}

	input, ok := in.(*GeneralSInput)
	if !ok {
		if err := io.Flush(); err != nil {
			return nil, err
		}
		log.Debug("transfer done")
		return &RandomSOutput{
			X0: x0,
			X1: x1,
		}, nil
	}

	xor(x0, input.X0)
	xor(x1, input.X1)
	if err := io.SendData(x0); err != nil {
		return nil, err
	}
	if err := io.SendData(x1); err != nil {
		return nil, err
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}
	log.Debug("transfer done")

	return nil, nil
}

// ExtReceiver implements the batch OT receiver with the IKNP OT
// extension.
type ExtReceiver struct {
	iknp      *IKNPReceiver
	malicious bool
	counter   atomic.Uint64
	Log       logging.Logger
}

// NewExtReceiver creates a new batch OT receiver. The function runs
// the base OTs with base over io. The base OT must not be
// initialized. The rand seeds the receiver's randomness; if nil,
// crypto/rand is used.
func NewExtReceiver(io IO, base OT, malicious bool, rand io.Reader) (
	*ExtReceiver, error) {

	stream, err := prg.NewFrom(rand)
	if err != nil {
		return nil, err
	}
	var flag byte
	if malicious {
		flag = 1
	}
	if err := io.SendByte(flag); err != nil {
		return nil, err
	}
	if err := io.Flush(); err != nil {
		return nil, err
	}
	status, err := io.ReceiveByte()
	if err != nil {
		return nil, err
	}
	if status != statusOK {
		return nil, fmt.Errorf("%w: malicious mode mismatch", ErrInvalidInput)
	}

	if err := base.InitSender(io); err != nil {
		return nil, err
	}
	iknp, err := NewIKNPReceiver(base, stream)
	if err != nil {
		return nil, err
	}
	return &ExtReceiver{
		iknp:      iknp,
		malicious: malicious,
		Log:       logging.Discard(),
	}, nil
}

// Transfer implements BatchReceiver.Transfer. The function supports
// GeneralRInput and RandomRInput.
func (r *ExtReceiver) Transfer(io IO, in ReceiverInput) (
	*ByteArrayROutput, error) {

	var variant byte
	var sigma []byte
	var n, size int
	var err error

	switch input := in.(type) {
	case *GeneralRInput:
		if err := input.Validate(); err != nil {
			return nil, err
		}
		variant = variantGeneral
		sigma = input.Sigma
		n, err = numOTs(input.Sigma, input.NumOTs)
		size = input.ElementSize

	case *RandomRInput:
		if err := input.Validate(); err != nil {
			return nil, err
		}
		variant = variantRandom
		sigma = input.Sigma
		n, err = numOTs(input.Sigma, input.NumOTs)
		size = input.ElementSize

	default:
		return nil, fmt.Errorf("%w: %T", ErrTypeMismatch, in)
	}
	if err != nil {
		return nil, err
	}

	h, err := receiverHandshake(io, &r.counter, variant, n, size)
	if err != nil {
		return nil, err
	}
	log := r.Log.With("id", h.id)
	log.Debug("transfer", "n", n, "size", size, "malicious", r.malicious)

	flags := make([]bool, n)
	for i := 0; i < n; i++ {
		flags[i] = SelectionBit(sigma, i)
	}
	labels := make([]Label, n)
	err = r.iknp.Receive(io, h.id, flags, labels, r.malicious)
	if err != nil {
		return nil, err
	}

	var seed Label
	var ld LabelData
	if err := io.ReceiveLabel(&seed, &ld); err != nil {
		return nil, err
	}

	crh := NewMITCCRH(seed, uint32(h.id), hashBatch)
	var blks [hashBatch]Label

	for i := 0; i < n; i += hashBatch {
		count := n - i
		if count > hashBatch {
			count = hashBatch
		}
		for j := 0; j < hashBatch; j++ {
			if j < count {
				blks[j] = labels[i+j]
			} else {
				blks[j] = Label{}
			}
		}
		crh.Hash(blks[:], hashBatch, 1)
		copy(labels[i:i+count], blks[:count])
	}

	elSize := size / 8
	result := make([]byte, n*elSize)
	for i := 0; i < n; i++ {
		if err := expand(labels[i], result[i*elSize:(i+1)*elSize]); err != nil {
			return nil, err
		}
	}

	if variant == variantGeneral {
		e0, err := io.ReceiveData()
		if err != nil {
			return nil, err
		}
		e1, err := io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(e0) != len(result) || len(e1) != len(result) {
			return nil, fmt.Errorf("%w: invalid ciphertext length",
				ErrCheatAttempt)
		}
		for i := 0; i < n; i++ {
			e := e0
			if flags[i] {
				e = e1
			}
			xor(result[i*elSize:(i+1)*elSize], e[i*elSize:])
		}
	}
	log.Debug("transfer done")

	return &ByteArrayROutput{
		XSigma: result,
	}, nil
}

// expand fills buf with the AES-CTR keystream keyed with the label.
func expand(key Label, buf []byte) error {
	stream, err := newPrg(key, 0)
	if err != nil {
		return err
	}
	prgFill(stream, buf)
	return nil
}
