//
// zeroize.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sigma

import (
	"math/big"
	"runtime"
)

// zeroizeBytes overwrites buf with zeros.
func zeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

// zeroizeInt overwrites the words of v with zeros and sets v to 0.
func zeroizeInt(v *big.Int) {
	if v == nil {
		return
	}
	words := v.Bits()
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	v.SetInt64(0)
}
