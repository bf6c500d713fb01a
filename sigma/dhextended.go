//
// dhextended.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// DH-Extended proves that the pairs (g[i], h[i]), i=1...m, have the
// same discrete logarithm w: h[i] = g[i]^w for all i.
//
//	P: r <- Z_q, a[i] = g[i]^r              P -> V: a
//	V: e <- {0,1}^t                         V -> P: e
//	P: z = r + e·w mod q                    P -> V: z
//	V: accept iff g[i]^z == a[i]·h[i]^e for all i

package sigma

import (
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/markkurossi/sigmaot/group"
	"github.com/markkurossi/sigmaot/logging"
	"github.com/markkurossi/sigmaot/prg"
)

var (
	_ Prover          = &DHExtendedProver{}
	_ ProverSession   = &DHExtendedProverSession{}
	_ Verifier        = &DHExtendedVerifier{}
	_ VerifierSession = &DHExtendedVerifierSession{}
	_ Simulator       = &DHExtendedSimulator{}
)

// DHExtendedCommonInput defines the statement h[i] = g[i]^w for
// i=1...m.
type DHExtendedCommonInput struct {
	G []group.Element
	H []group.Element
}

func (in *DHExtendedCommonInput) isCommonInput() {}

// Validate checks that the statement is well formed.
func (in *DHExtendedCommonInput) Validate() error {
	if len(in.G) == 0 {
		return fmt.Errorf("%w: empty statement", ErrInvalidInput)
	}
	if len(in.G) != len(in.H) {
		return fmt.Errorf("%w: len(g)=%d != len(h)=%d",
			ErrInvalidInput, len(in.G), len(in.H))
	}
	for i := range in.G {
		if in.G[i] == nil || in.H[i] == nil {
			return fmt.Errorf("%w: nil element %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// DHExtendedProverInput defines the prover's statement and witness.
// The prover does not check that the witness matches the statement.
type DHExtendedProverInput struct {
	DHExtendedCommonInput
	W *big.Int
}

// CommonInput implements ProverInput.CommonInput.
func (in *DHExtendedProverInput) CommonInput() CommonInput {
	return &in.DHExtendedCommonInput
}

func (in *DHExtendedProverInput) isProverInput() {}

func dhCommonInput(in CommonInput) (*DHExtendedCommonInput, error) {
	switch input := in.(type) {
	case *DHExtendedCommonInput:
		if input != nil {
			return input, nil
		}
	case *DHExtendedProverInput:
		if input != nil {
			return &input.DHExtendedCommonInput, nil
		}
	}
	return nil, fmt.Errorf("%w: expected DH-Extended input, got %T",
		ErrTypeMismatch, in)
}

// dhParams holds the parameters shared by all DH-Extended roles.
type dhParams struct {
	grp group.Group
	q   *big.Int
	t   int
}

func newDHParams(grp group.Group, t int) (dhParams, error) {
	if grp == nil {
		return dhParams{}, fmt.Errorf("%w: nil group", ErrInvalidInput)
	}
	if err := CheckSoundnessParam(t, grp.Order()); err != nil {
		return dhParams{}, err
	}
	return dhParams{
		grp: grp,
		q:   grp.Order(),
		t:   t,
	}, nil
}

// SoundnessParam returns the soundness parameter t.
func (p dhParams) SoundnessParam() int {
	return p.t
}

// Group returns the role's group.
func (p dhParams) Group() group.Group {
	return p.grp
}

func (p dhParams) checkChallenge(e Challenge) error {
	if len(e) != p.t/8 {
		return fmt.Errorf("%w: challenge length %d, expected %d",
			ErrCheatAttempt, len(e), p.t/8)
	}
	return nil
}

// DHExtendedProver implements the DH-Extended prover.
type DHExtendedProver struct {
	dhParams
	rand *prg.Stream
	Log  logging.Logger
}

// NewDHExtendedProver creates a new prover for the group with the
// soundness parameter t. The prover's randomness stream is seeded
// from rand. If rand is nil, the seed is read from crypto/rand.
func NewDHExtendedProver(grp group.Group, t int, rand io.Reader) (
	*DHExtendedProver, error) {

	params, err := newDHParams(grp, t)
	if err != nil {
		return nil, err
	}
	stream, err := prg.NewFrom(rand)
	if err != nil {
		return nil, err
	}
	return &DHExtendedProver{
		dhParams: params,
		rand:     stream,
		Log:      logging.Discard(),
	}, nil
}

// ComputeFirstMessage implements Prover.ComputeFirstMessage.
func (p *DHExtendedProver) ComputeFirstMessage(in ProverInput) (
	ProverSession, error) {

	input, ok := in.(*DHExtendedProverInput)
	if !ok || input == nil {
		return nil, fmt.Errorf("%w: expected DH-Extended prover input, got %T",
			ErrTypeMismatch, in)
	}
	if input.W == nil {
		return nil, fmt.Errorf("%w: nil witness", ErrInvalidInput)
	}
	r, err := p.grp.RandomExponent(p.rand)
	if err != nil {
		return nil, err
	}
	return p.firstMessage(input, r)
}

func (p *DHExtendedProver) firstMessage(input *DHExtendedProverInput,
	r *big.Int) (*DHExtendedProverSession, error) {

	if err := input.Validate(); err != nil {
		zeroizeInt(r)
		return nil, err
	}
	for i, g := range input.G {
		if !p.grp.IsMember(g) {
			zeroizeInt(r)
			return nil, fmt.Errorf("%w: g[%d]", ErrGroupMembership, i)
		}
	}

	a := make([]group.Element, len(input.G))
	for i, g := range input.G {
		a[i] = p.grp.Exp(g, r)
	}
	p.Log.Debug("first message", "group", p.grp.Name(), "m", len(a),
		logging.Redacted("r"))

	return &DHExtendedProverSession{
		prover: p,
		a: &DHExtendedMsg{
			A: a,
		},
		r: r,
		w: new(big.Int).Set(input.W),
	}, nil
}

// Simulator implements Prover.Simulator. The simulator's randomness
// is forked from the prover's stream.
func (p *DHExtendedProver) Simulator() Simulator {
	return &DHExtendedSimulator{
		dhParams: p.dhParams,
		rand:     p.rand.Fork(),
		Log:      p.Log,
	}
}

// DHExtendedProverSession implements a DH-Extended prover session.
// The zero value is an unstarted session.
type DHExtendedProverSession struct {
	m      sync.Mutex
	prover *DHExtendedProver
	a      *DHExtendedMsg
	r      *big.Int
	w      *big.Int
}

// FirstMessage implements ProverSession.FirstMessage.
func (s *DHExtendedProverSession) FirstMessage() Message {
	return s.a
}

// ComputeSecondMessage implements ProverSession.ComputeSecondMessage.
func (s *DHExtendedProverSession) ComputeSecondMessage(e Challenge) (
	Message, error) {

	s.m.Lock()
	defer s.m.Unlock()

	if s.prover == nil || s.r == nil {
		return nil, fmt.Errorf("%w: first message not computed",
			ErrProtocolOrder)
	}
	defer s.clear()

	if err := s.prover.checkChallenge(e); err != nil {
		s.prover.Log.Warn("invalid challenge", "length", len(e))
		return nil, err
	}

	// z = r + e·w mod q
	z := e.Int()
	z.Mul(z, s.w)
	z.Add(z, s.r)
	z.Mod(z, s.prover.q)

	s.prover.Log.Debug("second message", "e", e)

	return &BIMsg{
		Z: z,
	}, nil
}

func (s *DHExtendedProverSession) clear() {
	zeroizeInt(s.r)
	zeroizeInt(s.w)
	s.r = nil
	s.w = nil
}

// DHExtendedVerifier implements the DH-Extended verifier.
type DHExtendedVerifier struct {
	dhParams
	rand *prg.Stream
	Log  logging.Logger
}

// NewDHExtendedVerifier creates a new verifier for the group with the
// soundness parameter t. The verifier's randomness stream is seeded
// from rand. If rand is nil, the seed is read from crypto/rand.
func NewDHExtendedVerifier(grp group.Group, t int, rand io.Reader) (
	*DHExtendedVerifier, error) {

	params, err := newDHParams(grp, t)
	if err != nil {
		return nil, err
	}
	stream, err := prg.NewFrom(rand)
	if err != nil {
		return nil, err
	}
	return &DHExtendedVerifier{
		dhParams: params,
		rand:     stream,
		Log:      logging.Discard(),
	}, nil
}

// SampleChallenge implements Verifier.SampleChallenge.
func (v *DHExtendedVerifier) SampleChallenge() (VerifierSession, error) {
	e := make(Challenge, v.t/8)
	if _, err := io.ReadFull(v.rand, e); err != nil {
		return nil, err
	}
	return &DHExtendedVerifierSession{
		verifier: v,
		e:        e,
	}, nil
}

// SetChallenge implements Verifier.SetChallenge.
func (v *DHExtendedVerifier) SetChallenge(e Challenge) (
	VerifierSession, error) {

	if err := v.checkChallenge(e); err != nil {
		return nil, err
	}
	return &DHExtendedVerifierSession{
		verifier: v,
		e:        append(Challenge(nil), e...),
	}, nil
}

// DecodeFirstMessage implements Verifier.DecodeFirstMessage.
func (v *DHExtendedVerifier) DecodeFirstMessage(data []byte) (
	Message, error) {
	return UnmarshalDHExtendedMsg(v.grp, data)
}

// DecodeSecondMessage implements Verifier.DecodeSecondMessage.
func (v *DHExtendedVerifier) DecodeSecondMessage(data []byte) (
	Message, error) {
	return UnmarshalBIMsg(data)
}

// DHExtendedVerifierSession implements a DH-Extended verifier
// session. The zero value is an unstarted session.
type DHExtendedVerifierSession struct {
	m        sync.Mutex
	verifier *DHExtendedVerifier
	e        Challenge
}

// Challenge implements VerifierSession.Challenge. The function
// returns nil after the session is verified.
func (s *DHExtendedVerifierSession) Challenge() Challenge {
	s.m.Lock()
	defer s.m.Unlock()
	if s.e == nil {
		return nil
	}
	return append(Challenge(nil), s.e...)
}

// Verify implements VerifierSession.Verify.
func (s *DHExtendedVerifierSession) Verify(in CommonInput, a, z Message) (
	bool, error) {

	s.m.Lock()
	defer s.m.Unlock()

	if s.verifier == nil || s.e == nil {
		return false, fmt.Errorf("%w: challenge not set", ErrProtocolOrder)
	}
	e := s.e
	s.e = nil
	defer zeroizeBytes(e)

	input, err := dhCommonInput(in)
	if err != nil {
		return false, err
	}
	first, ok := a.(*DHExtendedMsg)
	if !ok || first == nil {
		return false, fmt.Errorf("%w: first message %T", ErrTypeMismatch, a)
	}
	second, ok := z.(*BIMsg)
	if !ok || second == nil {
		return false, fmt.Errorf("%w: second message %T", ErrTypeMismatch, z)
	}
	return s.verifier.verify(input, e, first, second)
}

func (v *DHExtendedVerifier) verify(in *DHExtendedCommonInput, e Challenge,
	a *DHExtendedMsg, z *BIMsg) (bool, error) {

	if err := in.Validate(); err != nil {
		return false, err
	}
	m := len(in.G)
	if len(a.A) != m {
		v.Log.Info("reject", "reason", "length mismatch",
			"len(a)", len(a.A), "m", m)
		return false, nil
	}
	if z.Z == nil || z.Z.Sign() < 0 || z.Z.Cmp(v.q) >= 0 {
		v.Log.Info("reject", "reason", "z out of range")
		return false, nil
	}
	for i := 0; i < m; i++ {
		if !v.grp.IsMember(in.G[i]) {
			return false, fmt.Errorf("%w: g[%d]", ErrGroupMembership, i)
		}
		if !v.grp.IsMember(in.H[i]) {
			return false, fmt.Errorf("%w: h[%d]", ErrGroupMembership, i)
		}
		if a.A[i] == nil || !v.grp.IsMember(a.A[i]) {
			return false, fmt.Errorf("%w: a[%d]", ErrGroupMembership, i)
		}
	}

	eInt := e.Int()
	for i := 0; i < m; i++ {
		// g[i]^z == a[i]·h[i]^e
		lhs := v.grp.Exp(in.G[i], z.Z)
		rhs := v.grp.Mul(a.A[i], v.grp.Exp(in.H[i], eInt))
		if !lhs.Equal(rhs) {
			v.Log.Info("reject", "reason", "equation", "index", i)
			return false, nil
		}
	}
	v.Log.Debug("accept", "m", m)
	return true, nil
}

// DHExtendedSimulator implements the DH-Extended simulator.
type DHExtendedSimulator struct {
	dhParams
	rand *prg.Stream
	Log  logging.Logger
}

// NewDHExtendedSimulator creates a new simulator for the group with
// the soundness parameter t. The simulator's randomness stream is
// seeded from rand. If rand is nil, the seed is read from
// crypto/rand.
func NewDHExtendedSimulator(grp group.Group, t int, rand io.Reader) (
	*DHExtendedSimulator, error) {

	params, err := newDHParams(grp, t)
	if err != nil {
		return nil, err
	}
	stream, err := prg.NewFrom(rand)
	if err != nil {
		return nil, err
	}
	return &DHExtendedSimulator{
		dhParams: params,
		rand:     stream,
		Log:      logging.Discard(),
	}, nil
}

// Simulate implements Simulator.Simulate.
func (sim *DHExtendedSimulator) Simulate(in CommonInput, e Challenge) (
	*Transcript, error) {

	if err := sim.checkChallenge(e); err != nil {
		return nil, err
	}
	input, err := dhCommonInput(in)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	for i := range input.G {
		if !sim.grp.IsMember(input.G[i]) {
			return nil, fmt.Errorf("%w: g[%d]", ErrGroupMembership, i)
		}
		if !sim.grp.IsMember(input.H[i]) {
			return nil, fmt.Errorf("%w: h[%d]", ErrGroupMembership, i)
		}
	}
	z, err := sim.grp.RandomExponent(sim.rand)
	if err != nil {
		return nil, err
	}

	// a[i] = g[i]^z · h[i]^(q-e)
	negE := new(big.Int).Sub(sim.q, e.Int())
	negE.Mod(negE, sim.q)

	a := make([]group.Element, len(input.G))
	for i := range input.G {
		a[i] = sim.grp.Mul(sim.grp.Exp(input.G[i], z),
			sim.grp.Exp(input.H[i], negE))
	}
	sim.Log.Debug("simulate", "m", len(a), "e", e)

	return &Transcript{
		A: &DHExtendedMsg{
			A: a,
		},
		E: append(Challenge(nil), e...),
		Z: &BIMsg{
			Z: z,
		},
	}, nil
}

// SimulateRandom implements Simulator.SimulateRandom.
func (sim *DHExtendedSimulator) SimulateRandom(in CommonInput) (
	*Transcript, error) {

	e := make(Challenge, sim.t/8)
	if _, err := io.ReadFull(sim.rand, e); err != nil {
		return nil, err
	}
	return sim.Simulate(in, e)
}
