//
// errors.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sigma

import (
	"errors"
)

var (
	// ErrInvalidSoundnessParameter is returned when a role is
	// constructed with a soundness parameter that is not positive,
	// not a multiple of 8, or too large for the group order.
	ErrInvalidSoundnessParameter = errors.New("sigma: invalid soundness parameter")

	// ErrCheatAttempt is returned when the peer sends a challenge of
	// wrong length. Honest peers never do that.
	ErrCheatAttempt = errors.New("sigma: cheat attempt")

	// ErrProtocolOrder is returned when a session method is called
	// out of order or a session is reused.
	ErrProtocolOrder = errors.New("sigma: protocol order violation")

	// ErrTypeMismatch is returned when an input or a message has a
	// type the protocol does not support.
	ErrTypeMismatch = errors.New("sigma: type mismatch")

	// ErrGroupMembership is returned when a group element fails the
	// membership check.
	ErrGroupMembership = errors.New("sigma: group membership check failed")

	// ErrInvalidInput is returned for malformed statements.
	ErrInvalidInput = errors.New("sigma: invalid input")

	// ErrInvalidEncoding is returned when a message can't be decoded.
	ErrInvalidEncoding = errors.New("sigma: invalid message encoding")

	// ErrRejected is returned by Prove when the verifier rejected the
	// proof.
	ErrRejected = errors.New("sigma: proof rejected")

	// ErrAborted is returned by VerifyProof when the prover aborted
	// the session instead of sending its second message.
	ErrAborted = errors.New("sigma: prover aborted the session")
)
