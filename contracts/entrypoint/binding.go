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

package entrypoint

import (
	"math/big"

	"github.com/bsi-ethereum/go-aa"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Binding talks to an entry point deployed on a host through ABI encoded
// calls, the way an account contract does.
type Binding struct {
	caller  aa.ContractCaller
	address common.Address
}

var _ aa.EntryPoint = (*Binding)(nil)

// NewBinding creates a binding to the entry point at address.
func NewBinding(caller aa.ContractCaller, address common.Address) *Binding {
	return &Binding{caller: caller, address: address}
}

// Address returns the address of the bound entry point.
func (b *Binding) Address() common.Address { return b.address }

// GetNonce returns the next nonce of sender in the key space key.
func (b *Binding) GetNonce(sender common.Address, key *big.Int) (*big.Int, error) {
	if key == nil {
		key = new(big.Int)
	}
	input, err := abi.EntryPointABI.Pack("getNonce", sender, key)
	if err != nil {
		return nil, err
	}
	out, err := b.caller.StaticCall(sender, b.address, input)
	if err != nil {
		return nil, err
	}
	return abi.UnpackUint256(abi.EntryPointABI, "getNonce", out)
}

// BalanceOf returns the deposit held for account.
func (b *Binding) BalanceOf(account common.Address) (*big.Int, error) {
	input, err := abi.EntryPointABI.Pack("balanceOf", account)
	if err != nil {
		return nil, err
	}
	out, err := b.caller.StaticCall(account, b.address, input)
	if err != nil {
		return nil, err
	}
	return abi.UnpackUint256(abi.EntryPointABI, "balanceOf", out)
}

// DepositTo sends amount from from to the entry point, credited to account.
func (b *Binding) DepositTo(from, account common.Address, amount *uint256.Int) error {
	input, err := abi.EntryPointABI.Pack("depositTo", account)
	if err != nil {
		return err
	}
	_, err = b.caller.Call(from, b.address, amount, input)
	return err
}

// WithdrawTo withdraws amount of account's deposit to the address to. Only the
// account itself can withdraw.
func (b *Binding) WithdrawTo(account, to common.Address, amount *big.Int) error {
	input, err := abi.EntryPointABI.Pack("withdrawTo", to, amount)
	if err != nil {
		return err
	}
	_, err = b.caller.Call(account, b.address, nil, input)
	return err
}

// GetUserOpHash asks the entry point for the hash of op.
func (b *Binding) GetUserOpHash(op *types.UserOperation) (common.Hash, error) {
	input, err := abi.EntryPointABI.Pack("getUserOpHash", *op.WithDefaults())
	if err != nil {
		return common.Hash{}, err
	}
	out, err := b.caller.StaticCall(common.Address{}, b.address, input)
	if err != nil {
		return common.Hash{}, err
	}
	res, err := abi.EntryPointABI.Unpack("getUserOpHash", out)
	if err != nil {
		return common.Hash{}, err
	}
	return common.Hash(res[0].([32]byte)), nil
}

// HandleOps submits a bundle from bundler, paying out to beneficiary.
func (b *Binding) HandleOps(bundler common.Address, ops []*types.UserOperation, beneficiary common.Address) error {
	input, err := abi.PackHandleOps(ops, beneficiary)
	if err != nil {
		return err
	}
	_, err = b.caller.Call(bundler, b.address, nil, input)
	return err
}
