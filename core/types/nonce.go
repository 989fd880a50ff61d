// Copyright 2026 The go-aa Authors
// This file is part of the go-aa library.
//
// The go-aa library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-aa library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-aa library. If not, see <http://www.gnu.org/licenses/>.

package types

import "math/big"

const (
	// NonceKeyBits is the width of the nonce key space.
	NonceKeyBits = 192

	// NonceSeqBits is the width of the sequence within one key.
	NonceSeqBits = 64
)

var maxNonceKey = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), NonceKeyBits), big.NewInt(1))

// EncodeNonce packs a 192-bit key and a 64-bit sequence into one 256-bit nonce.
func EncodeNonce(key *big.Int, seq uint64) *big.Int {
	if key == nil {
		return new(big.Int).SetUint64(seq)
	}
	nonce := new(big.Int).And(key, maxNonceKey)
	nonce.Lsh(nonce, NonceSeqBits)
	return nonce.Or(nonce, new(big.Int).SetUint64(seq))
}

// DecodeNonce splits a 256-bit nonce into its key and sequence.
func DecodeNonce(nonce *big.Int) (key *big.Int, seq uint64) {
	if nonce == nil {
		return new(big.Int), 0
	}
	mask := new(big.Int).SetUint64(^uint64(0))
	seq = new(big.Int).And(nonce, mask).Uint64()
	key = new(big.Int).Rsh(nonce, NonceSeqBits)
	return key, seq
}
