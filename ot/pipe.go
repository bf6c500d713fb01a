//
// pipe.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"bufio"
	"fmt"
	"io"
)

var (
	_ IO = &Pipe{}
)

const maxPipeData = 1 << 30

// Pipe implements the IO interface with in-memory io.Pipe. The writes
// are buffered until Flush.
type Pipe struct {
	r   *bufio.Reader
	w   *bufio.Writer
	pr  *io.PipeReader
	pw  *io.PipeWriter
	buf [4]byte
}

// NewPipe creates a new in-memory pipe.
func NewPipe() (*Pipe, *Pipe) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	return newPipe(ar, bw), newPipe(br, aw)
}

func newPipe(r *io.PipeReader, w *io.PipeWriter) *Pipe {
	return &Pipe{
		r:  bufio.NewReaderSize(r, 64*1024),
		w:  bufio.NewWriterSize(w, 64*1024),
		pr: r,
		pw: w,
	}
}

// SendByte sends a byte value.
func (p *Pipe) SendByte(val byte) error {
	return p.w.WriteByte(val)
}

// SendUint32 sends an uint32 value.
func (p *Pipe) SendUint32(val int) error {
	bo.PutUint32(p.buf[:], uint32(val))
	_, err := p.w.Write(p.buf[:])
	return err
}

// SendData sends binary data.
func (p *Pipe) SendData(val []byte) error {
	if len(val) > maxPipeData {
		return fmt.Errorf("pipe: data too large: %d", len(val))
	}
	if err := p.SendUint32(len(val)); err != nil {
		return err
	}
	_, err := p.w.Write(val)
	return err
}

// SendLabel sends a label.
func (p *Pipe) SendLabel(val Label, data *LabelData) error {
	_, err := p.w.Write(val.Bytes(data))
	return err
}

// Flush flushed any pending data in the connection.
func (p *Pipe) Flush() error {
	return p.w.Flush()
}

// Close closes the pipe. The function stops reading input so the
// peer's pending writes fail, flushes pending output, and signals EOF
// to the peer.
func (p *Pipe) Close() error {
	p.pr.Close()
	err := p.w.Flush()
	if cerr := p.pw.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReceiveByte receives a byte value.
func (p *Pipe) ReceiveByte() (byte, error) {
	return p.r.ReadByte()
}

// ReceiveUint32 receives an uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return 0, err
	}
	return int(bo.Uint32(buf[:])), nil
}

// ReceiveData receives binary data.
func (p *Pipe) ReceiveData() ([]byte, error) {
	l, err := p.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if l > maxPipeData {
		return nil, fmt.Errorf("pipe: data too large: %d", l)
	}
	result := make([]byte, l)
	if _, err := io.ReadFull(p.r, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiveLabel receives a label.
func (p *Pipe) ReceiveLabel(val *Label, data *LabelData) error {
	if _, err := io.ReadFull(p.r, data[:]); err != nil {
		return err
	}
	val.SetData(data)
	return nil
}
