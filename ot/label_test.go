//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"testing"
)

func TestLabel(t *testing.T) {
	label := &Label{
		D0: 0xffffffffffffffff,
		D1: 0xffffffffffffffff,
	}

	label.SetBit(63, 0)
	if label.D0 != 0x7fffffffffffffff {
		t.Fatalf("Failed to clear bit 63: %x", label.D0)
	}
	label.SetBit(63, 1)
	if label.D0 != 0xffffffffffffffff {
		t.Fatal("Failed to set bit 63")
	}

	label.SetBit(64, 0)
	if label.D1 != 0xfffffffffffffffe {
		t.Fatalf("Failed to clear bit 64: %x", label.D1)
	}
	if label.Bit(64) != 0 || label.Bit(65) != 1 || label.Bit(0) != 1 {
		t.Fatalf("Bit: unexpected values in %v", label)
	}
}

func TestLabelAndXor(t *testing.T) {
	a := Label{D0: 0xff00ff00ff00ff00, D1: 0x0f0f0f0f0f0f0f0f}
	b := Label{D0: 0x0ff00ff00ff00ff0, D1: 0xffffffff00000000}

	x := a
	x.Xor(b)
	if !x.Equal(Label{D0: 0xf0f0f0f0f0f0f0f0, D1: 0xf0f0f0f00f0f0f0f}) {
		t.Errorf("Xor: got %v", x)
	}
	x = a
	x.And(b)
	if !x.Equal(Label{D0: 0x0f000f000f000f00, D1: 0x0f0f0f0f00000000}) {
		t.Errorf("And: got %v", x)
	}
}

func TestLabelData(t *testing.T) {
	label := Label{D0: 0x0102030405060708, D1: 0x090a0b0c0d0e0f10}

	var ld LabelData
	data := label.Bytes(&ld)
	expected := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
	}
	if !bytes.Equal(data, expected) {
		t.Fatalf("Bytes: got %x, expected %x", data, expected)
	}

	var l2 Label
	l2.SetBytes(data)
	if !l2.Equal(label) {
		t.Errorf("SetBytes: got %v, expected %v", l2, label)
	}
	if label.String() != "0102030405060708090a0b0c0d0e0f10" {
		t.Errorf("String: got %v", label)
	}
}

func TestNewLabelShortRead(t *testing.T) {
	_, err := NewLabel(bytes.NewReader(make([]byte, 15)))
	if err == nil {
		t.Errorf("NewLabel succeeded with a short reader")
	}
}
