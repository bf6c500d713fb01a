//
// io.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

// IO defines an I/O interface to communicate between peers.
type IO interface {
	// SendByte sends a byte value.
	SendByte(val byte) error

	// SendUint32 sends an uint32 value.
	SendUint32(val int) error

	// SendData sends binary data.
	SendData(val []byte) error

	// SendLabel sends a label.
	SendLabel(val Label, data *LabelData) error

	// Flush flushes any pending data in the connection.
	Flush() error

	// ReceiveByte receives a byte value.
	ReceiveByte() (byte, error)

	// ReceiveUint32 receives an uint32 value.
	ReceiveUint32() (int, error)

	// ReceiveData receives binary data.
	ReceiveData() ([]byte, error)

	// ReceiveLabel receives a label.
	ReceiveLabel(val *Label, data *LabelData) error
}

// SendString sends a string value.
func SendString(io IO, str string) error {
	return io.SendData([]byte(str))
}

// ReceiveString receives a string value.
func ReceiveString(io IO) (string, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SendUint64 sends an uint64 value as two uint32 values.
func SendUint64(io IO, val uint64) error {
	if err := io.SendUint32(int(val >> 32)); err != nil {
		return err
	}
	return io.SendUint32(int(val & 0xffffffff))
}

// ReceiveUint64 receives an uint64 value.
func ReceiveUint64(io IO) (uint64, error) {
	hi, err := io.ReceiveUint32()
	if err != nil {
		return 0, err
	}
	lo, err := io.ReceiveUint32()
	if err != nil {
		return 0, err
	}
	return uint64(uint32(hi))<<32 | uint64(uint32(lo)), nil
}
