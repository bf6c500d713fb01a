//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"crypto/aes"
	"encoding/hex"
	"testing"
)

// mitccrhRef computes H(x) = AES_k(x) ⊕ x with the key k = (tweak,0) ⊕
// seed.
func mitccrhRef(t *testing.T, seed Label, tweak uint64, x Label) Label {
	key := Label{
		D0: tweak,
	}
	key.Xor(seed)

	var kd, in, out LabelData
	block, err := aes.NewCipher(key.Bytes(&kd))
	if err != nil {
		t.Fatal(err)
	}
	x.GetData(&in)
	block.Encrypt(out[:], in[:])

	var result Label
	result.SetData(&out)
	result.Xor(x)
	return result
}

func TestMITCCRH(t *testing.T) {
	const (
		batchSize = 8
		k         = 8
		h         = 2
	)

	// AES with the all-zero key over the all-zero block.
	var zero Label
	var ld LabelData
	expected, err := hex.DecodeString("66e94bd4ef8a2c3b884cfa59ca342b2e")
	if err != nil {
		t.Fatal(err)
	}
	if r := mitccrhRef(t, zero, 0, zero); !bytes.Equal(expected, r.Bytes(&ld)) {
		t.Fatalf("reference: %x != %x", r.Bytes(&ld), expected)
	}

	seeds := []Label{
		{},
		{D0: 0x0123456789abcdef, D1: 0xfedcba9876543210},
	}
	for idx, seed := range seeds {
		for _, id := range []uint32{0, 7} {
			mitccrh := NewMITCCRH(seed, id, batchSize)

			// Two batches to cover the key renewal.
			for batch := 0; batch < 2; batch++ {
				blks := make([]Label, k*h)
				inputs := make([]Label, k*h)
				for i := range blks {
					blks[i] = Label{
						D0: uint64(i),
						D1: uint64(batch),
					}
					inputs[i] = blks[i]
				}
				mitccrh.Hash(blks, k, h)

				for i := 0; i < k; i++ {
					tweak := uint64(id)<<32 + uint64(batch*batchSize+i)
					for j := 0; j < h; j++ {
						want := mitccrhRef(t, seed, tweak, inputs[i*h+j])
						if !want.Equal(blks[i*h+j]) {
							t.Errorf("seed-%d/id=%d/batch=%d: %02d,%02d: %v != %v",
								idx, id, batch, i, j, blks[i*h+j], want)
						}
					}
				}
			}
		}
	}
}

func TestMITCCRHTweak(t *testing.T) {
	var s Label
	a := NewMITCCRH(s, 1, 8)
	b := NewMITCCRH(s, 2, 8)

	var ba, bb [8]Label
	a.Hash(ba[:], 8, 1)
	b.Hash(bb[:], 8, 1)

	for i := range ba {
		if ba[i].Equal(bb[i]) {
			t.Errorf("hash %d equal for different ids: %v", i, ba[i])
		}
	}
}

func BenchmarkMITCCRH(b *testing.B) {
	const (
		batchSize = 8
		k         = 8
		h         = 2
	)
	var s Label
	mitccrh := NewMITCCRH(s, 0, batchSize)

	var pad [2 * batchSize]Label

	for b.Loop() {
		mitccrh.Hash(pad[:], batchSize, 2)
	}
}
