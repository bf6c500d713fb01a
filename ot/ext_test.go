//
// ext_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/markkurossi/sigmaot/group"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extSetup(t testing.TB, malicious bool) (*ExtSender, *ExtReceiver) {
	c0, c1 := NewPipe()

	var receiver *ExtReceiver
	var rerr error
	done := make(chan struct{})

	go func() {
		receiver, rerr = NewExtReceiver(c1, NewCO(group.P256(), nil),
			malicious, nil)
		if rerr != nil {
			c1.Close()
		}
		close(done)
	}()

	sender, err := NewExtSender(c0, NewCO(group.P256(), nil), malicious, nil)
	if err != nil {
		c0.Close()
	}
	<-done
	require.NoError(t, err)
	require.NoError(t, rerr)

	return sender, receiver
}

func TestExtGeneral(t *testing.T) {
	for _, malicious := range []bool{false, true} {
		sender, receiver := extSetup(t, malicious)

		for _, n := range []int{1, 7, 8, 9, 100, 1000} {
			for _, size := range []int{1, 16, 32} {
				name := fmt.Sprintf("malicious=%v/n=%d/size=%d",
					malicious, n, size)
				t.Run(name, func(t *testing.T) {
					sin := &GeneralSInput{
						X0:     randomBytes(t, n*size),
						X1:     randomBytes(t, n*size),
						NumOTs: n,
					}
					rin := &GeneralRInput{
						Sigma:       randomBytes(t, (n+7)/8),
						ElementSize: size * 8,
						NumOTs:      n,
					}
					sout, rout, serr, rerr := runTransfer(sender, receiver,
						sin, rin)
					require.NoError(t, serr)
					require.NoError(t, rerr)
					assert.Nil(t, sout)
					assert.Equal(t, selected(sin.X0, sin.X1, rin.Sigma, n),
						rout.XSigma)
				})
			}
		}
	}
}

func TestExtRandom(t *testing.T) {
	sender, receiver := extSetup(t, true)

	const n = 333
	const size = 16

	rin := &RandomRInput{
		Sigma:       randomBytes(t, (n+7)/8),
		ElementSize: size * 8,
		NumOTs:      n,
	}
	sout, rout, serr, rerr := runTransfer(sender, receiver,
		&RandomSInput{
			NumOTs:      n,
			ElementSize: size * 8,
		}, rin)
	require.NoError(t, serr)
	require.NoError(t, rerr)

	out, ok := sout.(*RandomSOutput)
	require.True(t, ok)
	require.Len(t, out.X0, n*size)
	require.Len(t, out.X1, n*size)
	assert.NotEqual(t, out.X0, out.X1)
	assert.Equal(t, selected(out.X0, out.X1, rin.Sigma, n), rout.XSigma)
}

func TestExtConcurrent(t *testing.T) {
	sender, receiver := extSetup(t, false)

	type transfer struct {
		sin *GeneralSInput
		rin *GeneralRInput
		err error
	}
	transfers := make([]transfer, 8)
	for i := range transfers {
		n := 50 + 31*i
		transfers[i].sin = &GeneralSInput{
			X0:     randomBytes(t, n*16),
			X1:     randomBytes(t, n*16),
			NumOTs: n,
		}
		transfers[i].rin = &GeneralRInput{
			Sigma:       randomBytes(t, (n+7)/8),
			ElementSize: 128,
			NumOTs:      n,
		}
	}

	var wg sync.WaitGroup
	for i := range transfers {
		wg.Add(1)
		go func(x *transfer) {
			defer wg.Done()

			_, rout, serr, rerr := runTransfer(sender, receiver, x.sin, x.rin)
			if serr != nil {
				x.err = serr
				return
			}
			if rerr != nil {
				x.err = rerr
				return
			}
			expected := selected(x.sin.X0, x.sin.X1, x.rin.Sigma,
				x.sin.NumOTs)
			if !bytes.Equal(expected, rout.XSigma) {
				x.err = fmt.Errorf("output mismatch")
			}
		}(&transfers[i])
	}
	wg.Wait()

	for i, x := range transfers {
		assert.NoErrorf(t, x.err, "transfer %d", i)
	}
}

func TestExtTypeMismatch(t *testing.T) {
	sender, receiver := extSetup(t, false)

	_, err := sender.Transfer(nil, nil)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = receiver.Transfer(nil, nil)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	// The peers use different variants.
	_, _, serr, rerr := runTransfer(sender, receiver,
		&RandomSInput{
			NumOTs:      8,
			ElementSize: 8,
		},
		&GeneralRInput{
			Sigma:       []byte{0x55},
			ElementSize: 8,
		})
	assert.True(t, errors.Is(serr, ErrInvalidInput))
	assert.True(t, errors.Is(rerr, ErrInvalidInput))
}

func TestExtInvalidInput(t *testing.T) {
	sender, receiver := extSetup(t, false)

	_, err := sender.Transfer(nil, &GeneralSInput{
		X0:     make([]byte, 16),
		X1:     make([]byte, 8),
		NumOTs: 1,
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = receiver.Transfer(nil, &GeneralRInput{
		Sigma:       []byte{0},
		ElementSize: 8,
		NumOTs:      16,
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	// The peers disagree on the element size.
	_, _, serr, rerr := runTransfer(sender, receiver,
		&GeneralSInput{
			X0:     make([]byte, 16),
			X1:     make([]byte, 16),
			NumOTs: 8,
		},
		&GeneralRInput{
			Sigma:       []byte{0xff},
			ElementSize: 8,
		})
	assert.True(t, errors.Is(serr, ErrInvalidInput))
	assert.True(t, errors.Is(rerr, ErrInvalidInput))
}

func TestExtDuplicateID(t *testing.T) {
	sender, receiver := extSetup(t, false)

	sin := &GeneralSInput{
		X0:     make([]byte, 8),
		X1:     make([]byte, 8),
		NumOTs: 8,
	}
	rin := &GeneralRInput{
		Sigma:       []byte{0x0f},
		ElementSize: 8,
	}
	_, _, serr, rerr := runTransfer(sender, receiver, sin, rin)
	require.NoError(t, serr)
	require.NoError(t, rerr)

	receiver.counter.Store(0)

	_, _, serr, rerr = runTransfer(sender, receiver, sin, rin)
	assert.True(t, errors.Is(serr, ErrCheatAttempt))
	assert.True(t, errors.Is(rerr, ErrCheatAttempt))
}

func TestExtModeMismatch(t *testing.T) {
	c0, c1 := NewPipe()

	var rerr error
	done := make(chan struct{})

	go func() {
		_, rerr = NewExtReceiver(c1, NewCO(group.P256(), nil), false, nil)
		c1.Close()
		close(done)
	}()

	_, err := NewExtSender(c0, NewCO(group.P256(), nil), true, nil)
	c0.Close()
	<-done

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(rerr, ErrInvalidInput))
}

func BenchmarkExtGeneral1K(b *testing.B) {
	benchmarkExt(b, 1000, false)
}

func BenchmarkExtGeneralMalicious1K(b *testing.B) {
	benchmarkExt(b, 1000, true)
}

func benchmarkExt(b *testing.B, n int, malicious bool) {
	sender, receiver := extSetup(b, malicious)
	sin := &GeneralSInput{
		X0:     randomBytes(b, n*16),
		X1:     randomBytes(b, n*16),
		NumOTs: n,
	}
	rin := &GeneralRInput{
		Sigma:       randomBytes(b, (n+7)/8),
		ElementSize: 128,
		NumOTs:      n,
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _, serr, rerr := runTransfer(sender, receiver, sin, rin)
		if serr != nil || rerr != nil {
			b.Fatalf("transfer failed: %v, %v", serr, rerr)
		}
	}
}
