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
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/contracts/entrypoint"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// AccountCodeHash identifies the standard account code. It seeds the
// counterfactual addresses handed out by the factory.
var AccountCodeHash = host.CodeHash("erc4337.StandardAccount")

// Factory deploys standard accounts at addresses derived with CREATE2 from the
// owner and a salt, so an account's address is known before it exists.
type Factory struct {
	host       *host.Host
	self       common.Address
	entryPoint common.Address
	logger     log.Logger
}

// NewFactory creates a factory bound at self, deploying accounts for the given
// entry point.
func NewFactory(h *host.Host, self, entryPoint common.Address) *Factory {
	return &Factory{
		host:       h,
		self:       self,
		entryPoint: entryPoint,
		logger:     log.New("factory", self),
	}
}

// Address returns the address the factory is bound to.
func (f *Factory) Address() common.Address { return f.self }

// GetAddress computes the address CreateAccount deploys to for owner and salt.
func (f *Factory) GetAddress(owner common.Address, salt *big.Int) common.Address {
	if salt == nil {
		salt = new(big.Int)
	}
	initHash := crypto.Keccak256(
		AccountCodeHash.Bytes(),
		common.LeftPadBytes(f.entryPoint.Bytes(), 32),
		common.LeftPadBytes(owner.Bytes(), 32),
	)
	return crypto.CreateAddress2(f.self, common.BigToHash(salt), initHash)
}

// CreateAccount deploys an account for owner, or returns the existing one if it
// was deployed before.
func (f *Factory) CreateAccount(owner common.Address, salt *big.Int) (*Account, error) {
	addr := f.GetAddress(owner, salt)
	if contract, ok := f.host.ContractAt(addr); ok {
		if acc, ok := contract.(*Account); ok {
			return acc, nil
		}
		return nil, fmt.Errorf("%w: %s", host.ErrContractExists, addr)
	}
	acc := New(f.host, addr, entrypoint.NewBinding(f.host, f.entryPoint))
	err := f.host.Atomic(func() error {
		if err := acc.Initialize(owner); err != nil {
			return err
		}
		return f.host.Deploy(addr, acc)
	})
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Deployed standard account", "address", addr, "owner", owner, "salt", salt)
	return acc, nil
}

// Run serves createAccount and getAddress.
func (f *Factory) Run(frame *host.Frame, input []byte) ([]byte, error) {
	method, args, err := abi.Decode(abi.FactoryABI, input)
	if err != nil {
		return nil, err
	}
	owner, salt := args[0].(common.Address), args[1].(*big.Int)
	switch method.Name {
	case "createAccount":
		acc, err := f.CreateAccount(owner, salt)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(acc.Address())
	case "getAddress":
		return method.Outputs.Pack(f.GetAddress(owner, salt))
	}
	return nil, abi.ErrUnknownMethod
}

// InitCode returns the user operation initCode deploying the account of owner
// and salt through the factory.
func (f *Factory) InitCode(owner common.Address, salt *big.Int) ([]byte, error) {
	if salt == nil {
		salt = new(big.Int)
	}
	input, err := abi.FactoryABI.Pack("createAccount", owner, salt)
	if err != nil {
		return nil, err
	}
	return append(f.self.Bytes(), input...), nil
}
