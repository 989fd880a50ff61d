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

package standard

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/ethereum/go-ethereum/common"
)

var errNoKey = errors.New("no signing key")

// SignUserOperation signs op for the given entry point and chain, the way an
// owner authorizes a standard account operation, and stores the signature in
// the operation.
func SignUserOperation(op *types.UserOperation, entryPoint common.Address, chainID *big.Int, key *ecdsa.PrivateKey) error {
	if key == nil {
		return errNoKey
	}
	hash, err := op.Hash(entryPoint, chainID)
	if err != nil {
		return err
	}
	sig, err := accounts.SignHash(common.BytesToHash(accounts.TextHash(hash[:])), key)
	if err != nil {
		return err
	}
	op.Signature = sig
	return nil
}
