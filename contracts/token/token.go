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

// Package token implements a minimal fungible token: the kind of contract
// account owners drive through execute and the approval based paymaster flow.
package token

import (
	"errors"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the balance.
	ErrInsufficientBalance = errors.New("ERC20: transfer amount exceeds balance")

	// ErrInsufficientAllowance is returned when a transferFrom exceeds the
	// allowance.
	ErrInsufficientAllowance = errors.New("ERC20: insufficient allowance")

	// ErrZeroAddress is returned for transfers and approvals involving the
	// zero address.
	ErrZeroAddress = errors.New("ERC20: zero address")
)

// Storage layout.
var (
	balancesSlot    = host.SlotIndex(0) // holder => balance
	allowancesSlot  = host.SlotIndex(1) // owner => spender => allowance
	totalSupplySlot = host.SlotIndex(2)
)

// Token is a fungible token anyone may mint.
type Token struct {
	host   *host.Host
	self   common.Address
	logger log.Logger
}

// New creates a token bound at self.
func New(h *host.Host, self common.Address) *Token {
	return &Token{host: h, self: self, logger: log.New("module", "token", "address", self)}
}

// Deploy creates a token and binds it at self.
func Deploy(h *host.Host, self common.Address) (*Token, error) {
	t := New(h, self)
	if err := h.Deploy(self, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Address returns the token address.
func (t *Token) Address() common.Address { return t.self }

func (t *Token) balanceSlot(holder common.Address) common.Hash {
	return host.MappingSlot(host.AddressKey(holder), balancesSlot)
}

func (t *Token) allowanceSlot(owner, spender common.Address) common.Hash {
	return host.MappingSlot(host.AddressKey(spender), host.MappingSlot(host.AddressKey(owner), allowancesSlot))
}

// TotalSupply returns the amount of tokens in existence.
func (t *Token) TotalSupply() *big.Int {
	return t.host.GetStateBig(t.self, totalSupplySlot)
}

// BalanceOf returns the tokens held by holder.
func (t *Token) BalanceOf(holder common.Address) *big.Int {
	return t.host.GetStateBig(t.self, t.balanceSlot(holder))
}

// Allowance returns what spender may still move on behalf of owner.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	return t.host.GetStateBig(t.self, t.allowanceSlot(owner, spender))
}

// Mint creates amount tokens for to.
func (t *Token) Mint(to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	supply := t.TotalSupply()
	t.host.SetStateBig(t.self, totalSupplySlot, supply.Add(supply, amount))
	balance := t.BalanceOf(to)
	t.host.SetStateBig(t.self, t.balanceSlot(to), balance.Add(balance, amount))
	t.emit("Transfer", common.Address{}, to, amount)
	return nil
}

// Transfer moves amount tokens from from to to.
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	balance := t.BalanceOf(from)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	t.host.SetStateBig(t.self, t.balanceSlot(from), balance.Sub(balance, amount))
	received := t.BalanceOf(to)
	t.host.SetStateBig(t.self, t.balanceSlot(to), received.Add(received, amount))
	t.emit("Transfer", from, to, amount)
	return nil
}

// Approve sets the allowance of spender over the tokens of owner.
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return ErrZeroAddress
	}
	t.host.SetStateBig(t.self, t.allowanceSlot(owner, spender), amount)
	t.emit("Approval", owner, spender, amount)
	return nil
}

// TransferFrom moves amount tokens from from to to, spending the allowance
// from granted spender.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	allowance := t.Allowance(from, spender)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	return t.host.Atomic(func() error {
		t.host.SetStateBig(t.self, t.allowanceSlot(from, spender), allowance.Sub(allowance, amount))
		return t.Transfer(from, to, amount)
	})
}

func (t *Token) emit(name string, from, to common.Address, amount *big.Int) {
	event := abi.TokenABI.Events[name]
	data, err := event.Inputs.NonIndexed().Pack(amount)
	if err != nil {
		t.logger.Error("Failed to encode event", "event", name, "err", err)
		return
	}
	t.host.EmitLog(t.self, []common.Hash{event.ID, host.AddressKey(from), host.AddressKey(to)}, data)
}

// Run serves the token interface.
func (t *Token) Run(frame *host.Frame, input []byte) ([]byte, error) {
	method, args, err := abi.Decode(abi.TokenABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "totalSupply":
		return method.Outputs.Pack(t.TotalSupply())
	case "balanceOf":
		return method.Outputs.Pack(t.BalanceOf(args[0].(common.Address)))
	case "allowance":
		return method.Outputs.Pack(t.Allowance(args[0].(common.Address), args[1].(common.Address)))
	case "mint":
		return nil, t.Mint(args[0].(common.Address), args[1].(*big.Int))
	case "transfer":
		if err := t.Transfer(frame.Caller, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "approve":
		if err := t.Approve(frame.Caller, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "transferFrom":
		if err := t.TransferFrom(frame.Caller, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	}
	return nil, abi.ErrUnknownMethod
}
