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

// Package zksync implements the zkSync Era system contracts a system account
// interacts with: the nonce holder, the contract deployer and the bootloader
// that drives transactions through the account.
package zksync

import (
	"math/big"

	"github.com/bsi-ethereum/go-aa"
	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var nonceIncrementsCounter = metrics.NewRegisteredCounter("zksync/nonceholder/increments", nil)

var minNoncesSlot = host.SlotIndex(0) // account => min nonce

// NonceHolder keeps the minimal nonce of every account. Only system calls
// may advance it, and only the account itself advances its own nonce.
type NonceHolder struct {
	host   *host.Host
	self   common.Address
	logger log.Logger
}

var _ aa.NonceRegistry = (*NonceHolder)(nil)

// NewNonceHolder creates a nonce holder bound at self.
func NewNonceHolder(h *host.Host, self common.Address) *NonceHolder {
	return &NonceHolder{host: h, self: self, logger: log.New("module", "nonceholder")}
}

func (n *NonceHolder) slot(account common.Address) common.Hash {
	return host.MappingSlot(host.AddressKey(account), minNoncesSlot)
}

// GetMinNonce returns the next nonce account must use.
func (n *NonceHolder) GetMinNonce(account common.Address) (*big.Int, error) {
	return n.host.GetStateBig(n.self, n.slot(account)), nil
}

// IncrementMinNonceIfEquals advances the nonce of account by one if it equals
// expected and fails with *accounts.NonceMismatchError otherwise. A nil
// expected nonce stands for zero.
func (n *NonceHolder) IncrementMinNonceIfEquals(account common.Address, expected *big.Int) error {
	if expected == nil {
		expected = new(big.Int)
	}
	current := n.host.GetStateBig(n.self, n.slot(account))
	if current.Cmp(expected) != 0 {
		return &accounts.NonceMismatchError{Expected: expected, Actual: current}
	}
	n.host.SetStateBig(n.self, n.slot(account), current.Add(current, common.Big1))
	nonceIncrementsCounter.Inc(1)
	n.logger.Trace("Incremented min nonce", "account", account, "nonce", current)
	return nil
}

// Run serves the nonce holder interface.
func (n *NonceHolder) Run(frame *host.Frame, input []byte) ([]byte, error) {
	method, args, err := abi.Decode(abi.NonceHolderABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "getMinNonce":
		nonce, _ := n.GetMinNonce(args[0].(common.Address))
		return method.Outputs.Pack(nonce)
	case "incrementMinNonceIfEquals":
		if !frame.System {
			return nil, accounts.ErrSystemCallRequired
		}
		return nil, n.IncrementMinNonceIfEquals(frame.Caller, args[0].(*big.Int))
	}
	return nil, abi.ErrUnknownMethod
}

// NonceHolderBinding reaches a deployed nonce holder on behalf of an account,
// raising the system flag where the holder requires it.
type NonceHolderBinding struct {
	backend interface {
		aa.ContractCaller
		aa.SystemCaller
	}
	address common.Address
}

var _ aa.NonceRegistry = (*NonceHolderBinding)(nil)

// NewNonceHolderBinding creates a binding to the nonce holder at address.
func NewNonceHolderBinding(backend aa.Backend, address common.Address) *NonceHolderBinding {
	return &NonceHolderBinding{backend: backend, address: address}
}

// GetMinNonce implements aa.NonceRegistry.
func (b *NonceHolderBinding) GetMinNonce(account common.Address) (*big.Int, error) {
	input, err := abi.NonceHolderABI.Pack("getMinNonce", account)
	if err != nil {
		return nil, err
	}
	out, err := b.backend.StaticCall(account, b.address, input)
	if err != nil {
		return nil, err
	}
	return abi.UnpackUint256(abi.NonceHolderABI, "getMinNonce", out)
}

// IncrementMinNonceIfEquals implements aa.NonceRegistry. The typed nonce
// holder error is recovered from the revert data.
func (b *NonceHolderBinding) IncrementMinNonceIfEquals(account common.Address, expected *big.Int) error {
	if expected == nil {
		expected = new(big.Int)
	}
	input, err := abi.NonceHolderABI.Pack("incrementMinNonceIfEquals", expected)
	if err != nil {
		return err
	}
	_, err = b.backend.SystemCall(account, b.address, nil, input)
	return accounts.DecodeError(err)
}
