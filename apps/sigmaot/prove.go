//
// prove.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/markkurossi/sigmaot/group"
	"github.com/markkurossi/sigmaot/logging"
	"github.com/markkurossi/sigmaot/p2p"
	"github.com/markkurossi/sigmaot/sigma"
	"github.com/markkurossi/sigmaot/timing"
)

const maxStatement = 1 << 16

func runProver(conn *p2p.Conn, params *Params, rand io.Reader,
	log logging.Logger) (*Result, error) {

	tm := timing.New()
	grp := params.Group

	prover, err := sigma.NewDHExtendedProver(grp, params.T, rand)
	if err != nil {
		return nil, err
	}
	prover.Log = log

	w, err := grp.RandomExponent(rand)
	if err != nil {
		return nil, err
	}
	input := &sigma.DHExtendedProverInput{
		W: w,
	}
	for i := 0; i < params.M; i++ {
		k, err := grp.RandomExponent(rand)
		if err != nil {
			return nil, err
		}
		g := grp.Exp(grp.Generator(), k)
		input.G = append(input.G, g)
		input.H = append(input.H, grp.Exp(g, w))
	}
	if err := sendStatement(conn, &input.DHExtendedCommonInput); err != nil {
		return nil, err
	}
	tm.Sample("Statement", []string{fmt.Sprintf("m=%d", params.M)})
	log.Debug("statement sent", "m", params.M, logging.Redacted("w"))

	result := &Result{
		Timing: tm,
		OK:     true,
	}
	err = sigma.Prove(conn, prover, input)
	if err != nil {
		if !errors.Is(err, sigma.ErrRejected) {
			return nil, err
		}
		result.OK = false
	}
	tm.Sample("Proof", nil)
	log.Debug("proof done", "accepted", result.OK)

	return result, nil
}

func runVerifier(conn *p2p.Conn, params *Params, rand io.Reader,
	log logging.Logger) (*Result, error) {

	tm := timing.New()
	grp := params.Group

	verifier, err := sigma.NewDHExtendedVerifier(grp, params.T, rand)
	if err != nil {
		return nil, err
	}
	verifier.Log = log

	input, err := receiveStatement(conn, grp)
	if err != nil {
		return nil, err
	}
	tm.Sample("Statement", []string{fmt.Sprintf("m=%d", len(input.G))})

	ok, err := sigma.VerifyProof(conn, verifier, input)
	if err != nil {
		log.Warn("proof rejected", "err", err)
		return nil, err
	}
	tm.Sample("Proof", nil)
	log.Debug("proof verified", "accepted", ok)

	return &Result{
		Timing: tm,
		OK:     ok,
	}, nil
}

func sendStatement(conn *p2p.Conn, in *sigma.DHExtendedCommonInput) error {
	if err := conn.SendUint32(len(in.G)); err != nil {
		return err
	}
	for i := range in.G {
		if err := conn.SendData(in.G[i].Bytes()); err != nil {
			return err
		}
		if err := conn.SendData(in.H[i].Bytes()); err != nil {
			return err
		}
	}
	return conn.Flush()
}

func receiveStatement(conn *p2p.Conn, grp group.Group) (
	*sigma.DHExtendedCommonInput, error) {

	m, err := conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if m <= 0 || m > maxStatement {
		return nil, fmt.Errorf("invalid statement size %d", m)
	}
	in := &sigma.DHExtendedCommonInput{}
	for i := 0; i < m; i++ {
		for _, arr := range []*[]group.Element{&in.G, &in.H} {
			data, err := conn.ReceiveData()
			if err != nil {
				return nil, err
			}
			e, err := grp.Decode(data)
			if err != nil {
				return nil, fmt.Errorf("statement element %d: %w", i, err)
			}
			*arr = append(*arr, e)
		}
	}
	return in, nil
}
