//
// prg.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prg implements seeded pseudorandom streams. The streams
// implement io.Reader and they can be shared between goroutines.
package prg

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// SeedSize defines the seed size in bytes.
const SeedSize = chacha20.KeySize

var (
	_ io.Reader = &Stream{}
)

// Stream implements a ChaCha20 keystream generator.
type Stream struct {
	m     sync.Mutex
	c     *chacha20.Cipher
	forks uint64
}

// New creates a new stream from the seed. Seeds that are not
// SeedSize bytes long are compressed with SHA-256.
func New(seed []byte) *Stream {
	var key [SeedSize]byte
	if len(seed) == SeedSize {
		copy(key[:], seed)
	} else {
		key = sha256.Sum256(seed)
	}
	var nonce [chacha20.NonceSize]byte

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(err)
	}
	return &Stream{
		c: c,
	}
}

// NewRandom creates a new stream seeded from crypto/rand.
func NewRandom() (*Stream, error) {
	return NewFrom(nil)
}

// NewFrom creates a new stream seeded from the reader r. If r is
// nil, the seed is read from crypto/rand.
func NewFrom(r io.Reader) (*Stream, error) {
	if r == nil {
		r = rand.Reader
	}
	var seed [SeedSize]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, fmt.Errorf("prg: failed to read seed: %w", err)
	}
	return New(seed[:]), nil
}

// Read implements io.Reader.Read. The function always fills the
// buffer p.
func (s *Stream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.m.Lock()
	s.c.XORKeyStream(p, p)
	s.m.Unlock()

	return len(p), nil
}

// Fork derives a new independent stream from s. The child stream's
// seed is drawn from s so the parent and child never produce the
// same output.
func (s *Stream) Fork() *Stream {
	var seed [SeedSize]byte
	s.Read(seed[:])

	s.m.Lock()
	s.forks++
	s.m.Unlock()

	return New(seed[:])
}

// Forks returns the number of streams forked from s.
func (s *Stream) Forks() uint64 {
	s.m.Lock()
	defer s.m.Unlock()
	return s.forks
}
