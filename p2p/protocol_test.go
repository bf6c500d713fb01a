//
// protocol_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/markkurossi/sigmaot/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tests = []interface{}{
	byte(42),
	uint16(43),
	uint32(44),
	"Hello, world!",
	ot.Label{D0: 1, D1: 2},
	make([]byte, 0),
	pattern(1024),
	pattern(writeBufSize + 17),
	pattern(2*1024*1024 + 3),
}

func pattern(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	return buf
}

func writer(c *Conn) error {
	var ld ot.LabelData
	for _, test := range tests {
		var err error
		switch d := test.(type) {
		case byte:
			err = c.SendByte(d)
		case uint16:
			err = c.SendUint16(int(d))
		case uint32:
			err = c.SendUint32(int(d))
		case string:
			err = c.SendString(d)
		case ot.Label:
			err = c.SendLabel(d, &ld)
		case []byte:
			err = c.SendData(d)
		default:
			err = fmt.Errorf("invalid data: %v(%T)", test, test)
		}
		if err != nil {
			return fmt.Errorf("send %T: %w", test, err)
		}
	}
	return c.Flush()
}

func TestProtocol(t *testing.T) {
	cw, c := Pipe()
	defer c.Close()

	done := make(chan error, 1)
	go func() {
		done <- writer(cw)
	}()

	for _, test := range tests {
		switch d := test.(type) {
		case byte:
			v, err := c.ReceiveByte()
			if err != nil {
				t.Fatalf("ReceiveByte: %v", err)
			}
			if v != d {
				t.Errorf("ReceiveByte: got %v, expected %v", v, d)
			}

		case uint16:
			v, err := c.ReceiveUint16()
			if err != nil {
				t.Fatalf("ReceiveUint16: %v", err)
			}
			if v != int(d) {
				t.Errorf("ReceiveUint16: got %v, expected %v", v, d)
			}

		case uint32:
			v, err := c.ReceiveUint32()
			if err != nil {
				t.Fatalf("ReceiveUint32: %v", err)
			}
			if v != int(d) {
				t.Errorf("ReceiveUint32: got %v, expected %v", v, d)
			}

		case string:
			v, err := c.ReceiveString()
			if err != nil {
				t.Fatalf("ReceiveString: %v", err)
			}
			if v != d {
				t.Errorf("ReceiveString: got %v, expected %v", v, d)
			}

		case ot.Label:
			var v ot.Label
			var ld ot.LabelData
			if err := c.ReceiveLabel(&v, &ld); err != nil {
				t.Fatalf("ReceiveLabel: %v", err)
			}
			if !v.Equal(d) {
				t.Errorf("ReceiveLabel: got %v, expected %v", v, d)
			}

		case []byte:
			v, err := c.ReceiveData()
			if err != nil {
				t.Fatalf("ReceiveData: %v", err)
			}
			if !bytes.Equal(v, d) {
				t.Errorf("ReceiveData: got [%v]byte, expected [%v]byte",
					len(v), len(d))
			}

		default:
			t.Errorf("invalid value: %v(%T)", test, test)
		}
	}
	require.NoError(t, <-done)

	assert.True(t, cw.Stats.Sent.Load() > 2*1024*1024)
	assert.Equal(t, cw.Stats.Sent.Load(), c.Stats.Recvd.Load())

	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := cw.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPipeClose(t *testing.T) {
	c0, c1 := Pipe()
	require.NoError(t, c0.Close())

	_, err := c1.ReceiveByte()
	assert.Equal(t, io.EOF, err)

	err = c1.SendData(pattern(100))
	if err == nil {
		err = c1.Flush()
	}
	assert.True(t, errors.Is(err, ErrPeerClosed), "%v", err)
	c1.Close()
}

func TestStatsAdd(t *testing.T) {
	a := NewIOStats()
	b := NewIOStats()
	a.Sent.Store(10)
	b.Recvd.Store(5)
	b.Flushed.Store(1)

	sum := a.Add(b)
	assert.Equal(t, uint64(15), sum.Sum())
	assert.Equal(t, uint64(1), sum.Flushed.Load())
}

func TestTCP(t *testing.T) {
	l, err := Listen("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer l.Close()

	done := make(chan error)
	go func() {
		conn, id, err := l.Accept()
		if err != nil {
			done <- err
			return
		}
		if id != 7 {
			done <- fmt.Errorf("unexpected id %d", id)
			return
		}
		data, err := conn.ReceiveData()
		if err != nil {
			done <- err
			return
		}
		if err := conn.SendData(data); err != nil {
			done <- err
			return
		}
		done <- conn.Flush()
	}()

	conn, err := Dial(l.Addr().String(), 7, time.Second, nil)
	require.NoError(t, err)

	msg := pattern(100000)
	require.NoError(t, conn.SendData(msg))
	require.NoError(t, conn.Flush())

	echo, err := conn.ReceiveData()
	require.NoError(t, err)
	assert.Equal(t, msg, echo)

	require.NoError(t, <-done)
	conn.Close()
}
