//
// ot.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

// Package ot implements oblivious transfer protocols: base OT, the
// IKNP OT extension, and batch OTs built on top of them.
package ot

// OT defines the base 1-out-of-2 OT that seeds the IKNP extension.
// The extension runs it exactly once per role with K label pairs: the
// IKNP receiver acts as the base OT sender and the IKNP sender as the
// base OT receiver. CO implements it over any group.Group.
//
// InitSender and InitReceiver bind the OT to the setup IO and agree
// on the protocol parameters with the peer. Send and Receive must
// then be called with matching lengths; Receive stores the label
// selected by flags[i] into result[i].
type OT interface {
	InitSender(io IO) error
	InitReceiver(io IO) error
	Send(wires []Wire) error
	Receive(flags []bool, result []Label) error
}
