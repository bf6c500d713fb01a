//
// pipe.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"errors"
	"io"
)

// ErrPeerClosed is returned when writing to a pipe connection whose
// peer has closed.
var ErrPeerClosed = errors.New("p2p: peer closed connection")

// Pipe creates an in-memory connection pair for running both protocol
// roles in one process. Closing one endpoint makes the peer's reads
// return io.EOF and its writes ErrPeerClosed, so a role that aborts
// never leaves its peer blocked.
func Pipe() (*Conn, *Conn) {
	r0, w1 := io.Pipe()
	r1, w0 := io.Pipe()

	return NewConn(&pipeEnd{r: r0, w: w0}), NewConn(&pipeEnd{r: r1, w: w1})
}

type pipeEnd struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeEnd) Read(data []byte) (int, error) {
	return p.r.Read(data)
}

func (p *pipeEnd) Write(data []byte) (int, error) {
	return p.w.Write(data)
}

func (p *pipeEnd) Close() error {
	p.r.CloseWithError(ErrPeerClosed)
	return p.w.Close()
}
