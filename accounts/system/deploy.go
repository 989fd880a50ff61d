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

package system

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/contracts/zksync"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/bsi-ethereum/go-aa/core/types"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// AccountCodeHash is the code hash system accounts are deployed under through
// the contract deployer.
var AccountCodeHash = host.CodeHash("zksync.SystemAccount")

var (
	addressT, _      = ethabi.NewType("address", "", nil)
	constructorInput = ethabi.Arguments{{Name: "owner", Type: addressT}}
)

// ConstructorInput encodes the deployment input of an account for owner.
func ConstructorInput(owner common.Address) ([]byte, error) {
	return constructorInput.Pack(owner)
}

// Register makes system accounts deployable on h by AccountCodeHash.
func Register(h *host.Host) {
	h.RegisterCode(AccountCodeHash, func(h *host.Host, addr common.Address, input []byte) (host.Contract, error) {
		args, err := constructorInput.Unpack(input)
		if err != nil {
			return nil, err
		}
		a := New(h, addr)
		if err := a.Initialize(args[0].(common.Address)); err != nil {
			return nil, err
		}
		return a, nil
	})
}

// Deploy creates an account for owner at self, outside of the deployer.
func Deploy(h *host.Host, self, owner common.Address) (*Account, error) {
	a := New(h, self)
	err := h.Atomic(func() error {
		if err := a.Initialize(owner); err != nil {
			return err
		}
		return h.Deploy(self, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create2Address returns where the contract deployer places the account of
// owner deployed by sender with salt.
func Create2Address(sender common.Address, salt common.Hash, owner common.Address) (common.Address, error) {
	input, err := ConstructorInput(owner)
	if err != nil {
		return common.Address{}, err
	}
	return zksync.Create2Address(sender, AccountCodeHash, salt, input), nil
}

var errNoKey = errors.New("no signing key")

// SignTransaction signs the canonical hash of tx for the given chain and
// stores the signature in the transaction.
func SignTransaction(tx *types.Transaction, chainID *big.Int, key *ecdsa.PrivateKey) error {
	if key == nil {
		return errNoKey
	}
	hash, err := tx.SignedHash(chainID)
	if err != nil {
		return err
	}
	sig, err := accounts.SignHash(hash, key)
	if err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}
