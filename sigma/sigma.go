//
// sigma.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// On Σ-protocols:
//  - https://www.cs.au.dk/~ivan/Sigma.pdf

// Package sigma implements three-move honest-verifier zero-knowledge
// proofs (Σ-protocols). A protocol session runs as follows:
//
//	P -> V: a = first message
//	V -> P: e = random t-bit challenge
//	P -> V: z = second message
//
// and the verifier accepts or rejects the transcript (a, e, z). Each
// protocol also provides a simulator that produces accepting
// transcripts without the witness.
//
// Role objects are long-lived and they can run any number of
// concurrent sessions. The per-session secrets are kept in session
// objects that are returned by the first step of the protocol and
// that are consumed by the last step.
package sigma

import (
	"encoding"
	"fmt"
	"math/big"
)

// CommonInput defines the public statement of a proof.
type CommonInput interface {
	isCommonInput()
}

// ProverInput defines the prover's input: the statement and its
// witness.
type ProverInput interface {
	// CommonInput returns the public part of the input.
	CommonInput() CommonInput
	isProverInput()
}

// Message defines a protocol message.
type Message interface {
	encoding.BinaryMarshaler
	fmt.Stringer
	isMessage()
}

// Challenge holds the verifier's t-bit challenge as t/8 bytes. The
// challenge is interpreted as a big-endian unsigned integer.
type Challenge []byte

// Int returns the challenge as an integer.
func (e Challenge) Int() *big.Int {
	return new(big.Int).SetBytes(e)
}

func (e Challenge) String() string {
	return fmt.Sprintf("%x", []byte(e))
}

// Transcript holds a protocol transcript (a, e, z).
type Transcript struct {
	A Message
	E Challenge
	Z Message
}

func (t *Transcript) String() string {
	return fmt.Sprintf("a=%v, e=%v, z=%v", t.A, t.E, t.Z)
}

// Prover implements the prover role.
type Prover interface {
	// SoundnessParam returns the soundness parameter t in bits.
	SoundnessParam() int

	// ComputeFirstMessage starts a new proof session for the input.
	// The returned session holds the first message a.
	ComputeFirstMessage(in ProverInput) (ProverSession, error)

	// Simulator returns a simulator for the prover's protocol. The
	// simulator has its own randomness source.
	Simulator() Simulator
}

// ProverSession implements one prover session.
type ProverSession interface {
	// FirstMessage returns the session's first message a.
	FirstMessage() Message

	// ComputeSecondMessage computes the second message z for the
	// challenge e. The function can be called once per session;
	// subsequent calls return ErrProtocolOrder.
	ComputeSecondMessage(e Challenge) (Message, error)
}

// Verifier implements the verifier role.
type Verifier interface {
	// SoundnessParam returns the soundness parameter t in bits.
	SoundnessParam() int

	// SampleChallenge starts a new verifier session with a random
	// challenge.
	SampleChallenge() (VerifierSession, error)

	// SetChallenge starts a new verifier session with the challenge
	// e. This allows an outer protocol to derive the challenge.
	SetChallenge(e Challenge) (VerifierSession, error)

	// DecodeFirstMessage decodes the first message a.
	DecodeFirstMessage(data []byte) (Message, error)

	// DecodeSecondMessage decodes the second message z.
	DecodeSecondMessage(data []byte) (Message, error)
}

// VerifierSession implements one verifier session.
type VerifierSession interface {
	// Challenge returns the session's challenge.
	Challenge() Challenge

	// Verify verifies the transcript (a, e, z) for the common input.
	// The function consumes the session challenge and it can be
	// called once per session.
	Verify(in CommonInput, a, z Message) (bool, error)
}

// Simulator implements the protocol simulator.
type Simulator interface {
	// SoundnessParam returns the soundness parameter t in bits.
	SoundnessParam() int

	// Simulate creates an accepting transcript for the input and the
	// challenge e.
	Simulate(in CommonInput, e Challenge) (*Transcript, error)

	// SimulateRandom creates an accepting transcript for the input
	// and a random challenge.
	SimulateRandom(in CommonInput) (*Transcript, error)
}

// CheckSoundnessParam checks that the soundness parameter t is valid
// for a group of order q. The challenge is t/8 bytes so t must be a
// positive multiple of 8. The t must also be smaller than the bit
// length of q so that 2^t <= q and all challenges are valid
// exponents.
func CheckSoundnessParam(t int, q *big.Int) error {
	if t <= 0 {
		return fmt.Errorf("%w: t=%d is not positive",
			ErrInvalidSoundnessParameter, t)
	}
	if t%8 != 0 {
		return fmt.Errorf("%w: t=%d is not a multiple of 8",
			ErrInvalidSoundnessParameter, t)
	}
	if t >= q.BitLen() {
		return fmt.Errorf("%w: t=%d too large for %d-bit group order",
			ErrInvalidSoundnessParameter, t, q.BitLen())
	}
	return nil
}
