//
// transfer.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/sigmaot/logging"
	"github.com/markkurossi/sigmaot/ot"
	"github.com/markkurossi/sigmaot/p2p"
	"github.com/markkurossi/sigmaot/timing"
)

func runOTSender(conn *p2p.Conn, params *Params, r io.Reader,
	log logging.Logger) (*Result, error) {

	tm := timing.New()

	var sender ot.BatchSender
	switch params.OT {
	case "ext":
		s, err := ot.NewExtSender(conn, ot.NewCO(params.Group, r),
			params.Malicious, r)
		if err != nil {
			return nil, err
		}
		s.Log = log
		sender = s

	case "ddh":
		s, err := ot.NewDDHSender(conn, params.Group, params.T, r)
		if err != nil {
			return nil, err
		}
		s.Log = log
		sender = s

	default:
		return nil, fmt.Errorf("invalid OT: %s", params.OT)
	}
	tm.Sample("Setup", nil)

	numBytes := params.N * params.Size / 8
	x0, err := randomBytes(r, numBytes)
	if err != nil {
		return nil, err
	}
	x1, err := randomBytes(r, numBytes)
	if err != nil {
		return nil, err
	}
	inputs := time.Now()
	_, err = sender.Transfer(conn, &ot.GeneralSInput{
		X0:     x0,
		X1:     x1,
		NumOTs: params.N,
	})
	if err != nil {
		return nil, err
	}
	sample := tm.Sample("Transfer", []string{
		timing.FileSize(2 * numBytes).String(),
	})
	sample.SubSample("Inputs", inputs)
	sample.SubSample("OT", sample.End)

	return &Result{
		Timing: tm,
		Inputs: [][]byte{x0, x1},
		OK:     true,
	}, nil
}

func runOTReceiver(conn *p2p.Conn, params *Params, r io.Reader,
	log logging.Logger) (*Result, error) {

	tm := timing.New()

	var receiver ot.BatchReceiver
	switch params.OT {
	case "ext":
		rcv, err := ot.NewExtReceiver(conn, ot.NewCO(params.Group, r),
			params.Malicious, r)
		if err != nil {
			return nil, err
		}
		rcv.Log = log
		receiver = rcv

	case "ddh":
		rcv, err := ot.NewDDHReceiver(conn, params.Group, params.T, r)
		if err != nil {
			return nil, err
		}
		rcv.Log = log
		receiver = rcv

	default:
		return nil, fmt.Errorf("invalid OT: %s", params.OT)
	}
	tm.Sample("Setup", nil)

	sigma, err := randomBytes(r, (params.N+7)/8)
	if err != nil {
		return nil, err
	}
	inputs := time.Now()
	out, err := receiver.Transfer(conn, &ot.GeneralRInput{
		Sigma:       sigma,
		ElementSize: params.Size,
		NumOTs:      params.N,
	})
	if err != nil {
		return nil, err
	}
	sample := tm.Sample("Transfer", []string{
		timing.FileSize(len(out.XSigma)).String(),
	})
	sample.SubSample("Inputs", inputs)
	sample.SubSample("OT", sample.End)

	return &Result{
		Timing: tm,
		Output: out.XSigma,
		Inputs: [][]byte{sigma},
		OK:     true,
	}, nil
}

// checkTransfer checks that the receiver's output matches the
// sender's inputs for the receiver's selection bits.
func checkTransfer(sender, receiver *Result, params *Params) error {
	x0 := sender.Inputs[0]
	x1 := sender.Inputs[1]
	sigma := receiver.Inputs[0]
	size := params.Size / 8

	var expected []byte
	for i := 0; i < params.N; i++ {
		x := x0
		if ot.SelectionBit(sigma, i) {
			x = x1
		}
		expected = append(expected, x[i*size:(i+1)*size]...)
	}
	if !bytes.Equal(expected, receiver.Output) {
		return fmt.Errorf("transfer output mismatch")
	}
	return nil
}

func randomBytes(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
