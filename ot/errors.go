//
// errors.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"errors"

	"github.com/markkurossi/sigmaot/sigma"
)

var (
	// ErrTypeMismatch is returned when a batch OT is given an input
	// variant it does not support.
	ErrTypeMismatch = sigma.ErrTypeMismatch

	// ErrInvalidInput is returned when the input sizes are
	// inconsistent or when the peers disagree on the transfer
	// parameters.
	ErrInvalidInput = errors.New("ot: invalid input")

	// ErrCheatAttempt is returned when the peer's messages fail a
	// consistency check.
	ErrCheatAttempt = errors.New("ot: cheat attempt")
)
