//
// msg.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sigma

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/markkurossi/sigmaot/group"
)

var (
	bo = binary.BigEndian

	_ Message = &DHExtendedMsg{}
	_ Message = &BIMsg{}
)

// DHExtendedMsg implements the DH-Extended first message a.
type DHExtendedMsg struct {
	A []group.Element
}

func (m *DHExtendedMsg) isMessage() {}

// MarshalBinary encodes the message as the element count followed by
// length-prefixed element encodings. All integers are 32-bit
// big-endian values.
func (m *DHExtendedMsg) MarshalBinary() ([]byte, error) {
	size := 4
	encoded := make([][]byte, len(m.A))
	for idx, a := range m.A {
		if a == nil {
			return nil, fmt.Errorf("%w: nil element %d", ErrInvalidEncoding, idx)
		}
		encoded[idx] = a.Bytes()
		size += 4 + len(encoded[idx])
	}
	buf := make([]byte, size)
	bo.PutUint32(buf, uint32(len(m.A)))
	ofs := 4
	for _, data := range encoded {
		bo.PutUint32(buf[ofs:], uint32(len(data)))
		ofs += 4
		ofs += copy(buf[ofs:], data)
	}
	return buf, nil
}

func (m *DHExtendedMsg) String() string {
	var sb strings.Builder
	sb.WriteRune('[')
	for idx, a := range m.A {
		if idx > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(hex.EncodeToString(a.Bytes()))
	}
	sb.WriteRune(']')
	return sb.String()
}

// UnmarshalDHExtendedMsg decodes a DH-Extended first message. The
// function checks that all decoded elements are members of the group.
func UnmarshalDHExtendedMsg(grp group.Group, data []byte) (
	*DHExtendedMsg, error) {

	if len(data) < 4 {
		return nil, fmt.Errorf("%w: truncated count", ErrInvalidEncoding)
	}
	count := int(bo.Uint32(data))
	data = data[4:]

	// Each element takes at least 5 bytes.
	if count > len(data)/5 {
		return nil, fmt.Errorf("%w: invalid element count %d",
			ErrInvalidEncoding, count)
	}

	msg := &DHExtendedMsg{
		A: make([]group.Element, count),
	}
	for i := 0; i < count; i++ {
		if len(data) < 4 {
			return nil, fmt.Errorf("%w: truncated element %d",
				ErrInvalidEncoding, i)
		}
		l := int(bo.Uint32(data))
		data = data[4:]
		if l > len(data) {
			return nil, fmt.Errorf("%w: truncated element %d",
				ErrInvalidEncoding, i)
		}
		el, err := grp.Decode(data[:l])
		if err != nil {
			if errors.Is(err, group.ErrNotMember) {
				return nil, fmt.Errorf("%w: element %d: %v",
					ErrGroupMembership, i, err)
			}
			return nil, fmt.Errorf("%w: element %d: %v",
				ErrInvalidEncoding, i, err)
		}
		msg.A[i] = el
		data = data[l:]
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d bytes of trailing data",
			ErrInvalidEncoding, len(data))
	}
	return msg, nil
}

// BIMsg implements a second message z that is a single integer.
type BIMsg struct {
	Z *big.Int
}

func (m *BIMsg) isMessage() {}

// MarshalBinary encodes the message as a length-prefixed big-endian
// integer.
func (m *BIMsg) MarshalBinary() ([]byte, error) {
	if m.Z == nil || m.Z.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid integer", ErrInvalidEncoding)
	}
	z := m.Z.Bytes()
	buf := make([]byte, 4+len(z))
	bo.PutUint32(buf, uint32(len(z)))
	copy(buf[4:], z)
	return buf, nil
}

func (m *BIMsg) String() string {
	if m.Z == nil {
		return "nil"
	}
	return m.Z.Text(16)
}

// UnmarshalBIMsg decodes an integer second message.
func UnmarshalBIMsg(data []byte) (*BIMsg, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: truncated length", ErrInvalidEncoding)
	}
	l := int(bo.Uint32(data))
	if l != len(data)-4 {
		return nil, fmt.Errorf("%w: length %d, got %d bytes",
			ErrInvalidEncoding, l, len(data)-4)
	}
	return &BIMsg{
		Z: new(big.Int).SetBytes(data[4:]),
	}, nil
}
