//
// driver_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sigma_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markkurossi/sigmaot/group"
	"github.com/markkurossi/sigmaot/p2p"
	"github.com/markkurossi/sigmaot/sigma"
)

func statement(t *testing.T, grp group.Group, m int) *sigma.DHExtendedProverInput {
	w, err := grp.RandomExponent(nil)
	require.NoError(t, err)

	in := &sigma.DHExtendedProverInput{
		W: w,
	}
	for i := 0; i < m; i++ {
		k, err := grp.RandomExponent(nil)
		require.NoError(t, err)
		g := grp.Exp(grp.Generator(), k)
		in.G = append(in.G, g)
		in.H = append(in.H, grp.Exp(g, w))
	}
	return in
}

func runProof(t *testing.T, grp group.Group, soundness int,
	in *sigma.DHExtendedProverInput, common sigma.CommonInput) (
	ok bool, verr, perr error) {

	prover, err := sigma.NewDHExtendedProver(grp, soundness, nil)
	require.NoError(t, err)
	verifier, err := sigma.NewDHExtendedVerifier(grp, soundness, nil)
	require.NoError(t, err)

	pc, vc := p2p.Pipe()
	done := make(chan error)

	go func() {
		done <- sigma.Prove(pc, prover, in)
	}()

	ok, verr = sigma.VerifyProof(vc, verifier, common)
	perr = <-done

	pc.Close()
	vc.Close()

	return
}

func TestProveVerify(t *testing.T) {
	for _, name := range []string{"p256", "secp256k1", "ed25519"} {
		grp, err := group.ByName(name)
		require.NoError(t, err)

		t.Run(name, func(t *testing.T) {
			in := statement(t, grp, 3)
			ok, verr, perr := runProof(t, grp, 128, in, in.CommonInput())
			assert.NoError(t, perr)
			assert.NoError(t, verr)
			assert.True(t, ok)
		})
	}
}

func TestProveReject(t *testing.T) {
	grp := group.P256()
	in := statement(t, grp, 2)

	// The verifier's statement differs from the prover's.
	common := &sigma.DHExtendedCommonInput{
		G: in.G,
		H: []group.Element{in.H[0], grp.Generator()},
	}
	ok, verr, perr := runProof(t, grp, 128, in, common)
	assert.True(t, errors.Is(perr, sigma.ErrRejected))
	assert.NoError(t, verr)
	assert.False(t, ok)
}

func TestProveWrongGroup(t *testing.T) {
	// The prover's first message encodes P-256 points which are not
	// valid encodings in the toy group.
	p256 := group.P256()
	in := statement(t, p256, 1)

	prover, err := sigma.NewDHExtendedProver(p256, 8, nil)
	require.NoError(t, err)
	verifier, err := sigma.NewDHExtendedVerifier(group.Toy(), 8, nil)
	require.NoError(t, err)

	pc, vc := p2p.Pipe()
	done := make(chan error)
	go func() {
		done <- sigma.Prove(pc, prover, in)
	}()

	ok, verr := sigma.VerifyProof(vc, verifier, in.CommonInput())
	perr := <-done
	pc.Close()
	vc.Close()

	assert.False(t, ok)
	assert.Error(t, verr)
	assert.True(t, errors.Is(perr, sigma.ErrRejected))
}

func TestProveInvalidChallenge(t *testing.T) {
	// The verifier's challenges are shorter than the prover expects.
	grp := group.P256()
	in := statement(t, grp, 2)

	prover, err := sigma.NewDHExtendedProver(grp, 128, nil)
	require.NoError(t, err)
	verifier, err := sigma.NewDHExtendedVerifier(grp, 64, nil)
	require.NoError(t, err)

	pc, vc := p2p.Pipe()
	done := make(chan error)
	go func() {
		done <- sigma.Prove(pc, prover, in)
	}()

	ok, verr := sigma.VerifyProof(vc, verifier, in.CommonInput())
	perr := <-done
	pc.Close()
	vc.Close()

	assert.False(t, ok)
	assert.True(t, errors.Is(verr, sigma.ErrAborted))
	assert.True(t, errors.Is(perr, sigma.ErrCheatAttempt))
}

// flushFailChannel delivers a malformed first message and fails all
// flushes.
type flushFailChannel struct {
	flushErr error
}

func (ch *flushFailChannel) SendData(val []byte) error {
	return nil
}

func (ch *flushFailChannel) ReceiveData() ([]byte, error) {
	return []byte{1, 2, 3}, nil
}

func (ch *flushFailChannel) Flush() error {
	return ch.flushErr
}

func TestVerifyProofFlushError(t *testing.T) {
	verifier, err := sigma.NewDHExtendedVerifier(group.P256(), 128, nil)
	require.NoError(t, err)

	flushErr := errors.New("flush failed")
	ch := &flushFailChannel{
		flushErr: flushErr,
	}
	in := statement(t, group.P256(), 1)

	// The first message is invalid so the verifier aborts the session.
	ok, err := sigma.VerifyProof(ch, verifier, in.CommonInput())
	assert.False(t, ok)
	assert.True(t, errors.Is(err, sigma.ErrInvalidEncoding))
	assert.True(t, errors.Is(err, flushErr))
}
