//
// ot_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"github.com/markkurossi/sigmaot/group"
)

func testOT(sender, receiver OT, t *testing.T) {
	const size int = 64

	wires := make([]Wire, size)
	flags := make([]bool, size)
	labels := make([]Label, size)

	done := make(chan error)

	for i := 0; i < len(wires); i++ {
		var data LabelData
		_, err := rand.Read(data[:])
		if err != nil {
			t.Fatal(err)
		}
		wires[i].L0.SetData(&data)

		_, err = rand.Read(data[:])
		if err != nil {
			t.Fatal(err)
		}
		wires[i].L1.SetData(&data)

		flags[i] = i%2 == 0
	}

	pipe, rPipe := NewPipe()

	go func(pipe *Pipe) {
		err := receiver.InitReceiver(pipe)
		if err != nil {
			pipe.Close()
			done <- err
			return
		}
		err = receiver.Receive(flags, labels)
		if err != nil {
			pipe.Close()
			done <- err
			return
		}
		for i := 0; i < len(flags); i++ {
			var expected Label
			if flags[i] {
				expected = wires[i].L1
			} else {
				expected = wires[i].L0
			}
			if !labels[i].Equal(expected) {
				err := fmt.Errorf("label %d mismatch %v %v,%v", i,
					labels[i], wires[i].L0, wires[i].L1)
				pipe.Close()
				done <- err
				return
			}
		}

		done <- nil
	}(rPipe)

	err := sender.InitSender(pipe)
	if err != nil {
		t.Fatalf("InitSender: %v", err)
	}
	err = sender.Send(wires)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	err = <-done
	if err != nil {
		t.Errorf("receiver failed: %v", err)
	}
}

func TestOTCO(t *testing.T) {
	for _, name := range group.Names() {
		t.Run(name, func(t *testing.T) {
			grp, err := group.ByName(name)
			if err != nil {
				t.Fatal(err)
			}
			testOT(NewCO(grp, nil), NewCO(grp, nil), t)
		})
	}
}

func TestOTCOGroupMismatch(t *testing.T) {
	pipe, rPipe := NewPipe()
	done := make(chan error)

	go func() {
		err := NewCO(group.P256(), nil).InitReceiver(rPipe)
		rPipe.Close()
		done <- err
	}()

	err := NewCO(group.Secp256k1(), nil).InitSender(pipe)
	if err != nil {
		t.Fatalf("InitSender: %v", err)
	}
	err = <-done
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("InitReceiver: expected ErrInvalidInput, got %v", err)
	}
}

func TestOTCOUninitialized(t *testing.T) {
	co := NewCO(group.P256(), nil)
	if err := co.Send(make([]Wire, 1)); err == nil {
		t.Errorf("Send succeeded without InitSender")
	}
	if err := co.Receive(make([]bool, 1), make([]Label, 1)); err == nil {
		t.Errorf("Receive succeeded without InitReceiver")
	}
}

func benchmarkOT(sender, receiver OT, batchSize int, b *testing.B) {
	wires := make([]Wire, batchSize)
	flags := make([]bool, batchSize)
	labels := make([]Label, batchSize)

	done := make(chan error)

	for i := 0; i < len(wires); i++ {
		var data LabelData
		_, err := rand.Read(data[:])
		if err != nil {
			b.Fatal(err)
		}
		wires[i].L0.SetData(&data)

		_, err = rand.Read(data[:])
		if err != nil {
			b.Fatal(err)
		}
		wires[i].L1.SetData(&data)

		flags[i] = i%2 == 0
	}

	pipe, rPipe := NewPipe()

	go func(pipe *Pipe) {
		err := receiver.InitReceiver(pipe)
		if err != nil {
			done <- err
			pipe.Close()
			return
		}
		for i := 0; i < b.N; i++ {
			err = receiver.Receive(flags, labels)
			if err != nil {
				done <- err
				pipe.Close()
				return
			}
		}
		done <- nil
	}(rPipe)

	err := sender.InitSender(pipe)
	if err != nil {
		b.Fatalf("InitSender: %v", err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		err = sender.Send(wires)
		if err != nil {
			b.Fatalf("Send: %v", err)
		}
	}

	err = <-done
	if err != nil {
		b.Errorf("receiver failed: %v", err)
	}
}

func BenchmarkOTCO_P256_8(b *testing.B) {
	benchmarkOT(NewCO(group.P256(), nil), NewCO(group.P256(), nil), 8, b)
}

func BenchmarkOTCO_P256_64(b *testing.B) {
	benchmarkOT(NewCO(group.P256(), nil), NewCO(group.P256(), nil), 64, b)
}

func BenchmarkOTCO_Ed25519_64(b *testing.B) {
	benchmarkOT(NewCO(group.Edwards25519(), nil),
		NewCO(group.Edwards25519(), nil), 64, b)
}
