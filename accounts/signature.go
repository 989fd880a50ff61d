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

package accounts

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ECDSARecoverer recovers secp256k1 signers from 65 byte [R || S || V]
// signatures, V being 0/1 or 27/28.
type ECDSARecoverer struct{}

// Recover returns the address that signed hash. Signatures of the wrong length,
// with out of range or high-s values, or that do not recover are malformed.
func (ECDSARecoverer) Recover(hash common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrMalformedSignature, len(sig))
	}
	cpy := common.CopyBytes(sig)
	if cpy[crypto.RecoveryIDOffset] >= 27 {
		cpy[crypto.RecoveryIDOffset] -= 27
	}
	r, s := new(big.Int).SetBytes(cpy[:32]), new(big.Int).SetBytes(cpy[32:64])
	if !crypto.ValidateSignatureValues(cpy[crypto.RecoveryIDOffset], r, s, true) {
		return common.Address{}, fmt.Errorf("%w: invalid signature values", ErrMalformedSignature)
	}
	pub, err := crypto.SigToPub(hash[:], cpy)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignHash signs hash with key, returning the signature with V as 27/28.
func SignHash(hash common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
