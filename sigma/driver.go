//
// driver.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sigma

import (
	"errors"
	"fmt"
)

const (
	verdictReject byte = 0
	verdictAccept byte = 1
)

// Channel defines the message channel between the prover and the
// verifier.
type Channel interface {
	// SendData sends binary data.
	SendData(val []byte) error

	// ReceiveData receives binary data.
	ReceiveData() ([]byte, error)

	// Flush flushes any pending data in the channel.
	Flush() error
}

// Prove runs the prover side of an interactive proof over the
// channel. The function returns nil if the verifier accepted the
// proof and ErrRejected if it rejected the proof. If the challenge is
// invalid, the function aborts the session with an empty second
// message.
func Prove(ch Channel, p Prover, in ProverInput) error {
	session, err := p.ComputeFirstMessage(in)
	if err != nil {
		return err
	}
	data, err := session.FirstMessage().MarshalBinary()
	if err != nil {
		return err
	}
	if err := ch.SendData(data); err != nil {
		return err
	}
	if err := ch.Flush(); err != nil {
		return err
	}

	e, err := ch.ReceiveData()
	if err != nil {
		return err
	}
	if len(e) == 0 {
		return ErrRejected
	}
	z, err := session.ComputeSecondMessage(Challenge(e))
	if err != nil {
		// An empty second message aborts the session.
		return abort(ch, err)
	}
	data, err = z.MarshalBinary()
	if err != nil {
		return err
	}
	if err := ch.SendData(data); err != nil {
		return err
	}
	if err := ch.Flush(); err != nil {
		return err
	}

	verdict, err := ch.ReceiveData()
	if err != nil {
		return err
	}
	if len(verdict) != 1 {
		return fmt.Errorf("%w: invalid verdict", ErrInvalidEncoding)
	}
	if verdict[0] != verdictAccept {
		return ErrRejected
	}
	return nil
}

// VerifyProof runs the verifier side of an interactive proof over the
// channel. The function samples a fresh challenge for the session and
// sends the verdict to the prover. If the first message is invalid,
// the function sends an empty challenge which aborts the session. An
// empty second message from the prover returns ErrAborted.
// Membership and encoding failures of the prover's messages reject
// the proof and they are returned as errors.
func VerifyProof(ch Channel, v Verifier, in CommonInput) (bool, error) {
	data, err := ch.ReceiveData()
	if err != nil {
		return false, err
	}
	a, err := v.DecodeFirstMessage(data)
	if err != nil {
		// An empty challenge aborts the session.
		return false, abort(ch, err)
	}

	session, err := v.SampleChallenge()
	if err != nil {
		return false, err
	}
	if err := ch.SendData(session.Challenge()); err != nil {
		return false, err
	}
	if err := ch.Flush(); err != nil {
		return false, err
	}

	data, err = ch.ReceiveData()
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, ErrAborted
	}
	z, err := v.DecodeSecondMessage(data)
	if err != nil {
		return false, sendVerdict(ch, false, err)
	}
	ok, err := session.Verify(in, a, z)
	return ok, sendVerdict(ch, ok, err)
}

// abort sends an empty message to the peer and returns err joined
// with any I/O error from the send.
func abort(ch Channel, err error) error {
	if serr := ch.SendData(nil); serr != nil {
		return errors.Join(err, serr)
	}
	if ferr := ch.Flush(); ferr != nil {
		return errors.Join(err, ferr)
	}
	return err
}

func sendVerdict(ch Channel, ok bool, verr error) error {
	verdict := verdictReject
	if ok {
		verdict = verdictAccept
	}
	if err := ch.SendData([]byte{verdict}); err != nil {
		return errors.Join(verr, err)
	}
	if err := ch.Flush(); err != nil {
		return errors.Join(verr, err)
	}
	return verr
}
