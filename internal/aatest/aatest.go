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

// Package aatest builds in-memory hosts with the privileged collaborators of
// smart accounts deployed, for use in tests.
package aatest

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/bsi-ethereum/go-aa/contracts/entrypoint"
	"github.com/bsi-ethereum/go-aa/contracts/token"
	"github.com/bsi-ethereum/go-aa/contracts/zksync"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// TokenAddress is where the test token is deployed.
var TokenAddress = common.HexToAddress("0x00000000000000000000000000000000000070ce")

// Env is an in-memory host with the entry point, the zkSync system contracts
// and a token deployed.
type Env struct {
	Host        *host.Host
	EntryPoint  *entrypoint.EntryPoint
	NonceHolder *zksync.NonceHolder
	Deployer    *zksync.ContractDeployer
	Bootloader  *zksync.Bootloader
	Token       *token.Token
}

// NewEnv creates a test environment on the dev chain.
func NewEnv(t testing.TB) *Env {
	t.Helper()
	h, err := host.NewMemory(host.Config{ChainID: params.DevChainID, BlockNumber: 1, Time: 1_700_000_000})
	if err != nil {
		t.Fatalf("failed to create host: %v", err)
	}
	env := &Env{
		Host:        h,
		NonceHolder: zksync.NewNonceHolder(h, params.NonceHolderAddress),
		Deployer:    zksync.NewContractDeployer(h, params.ContractDeployerAddress),
		Bootloader:  zksync.NewBootloader(h, params.BootloaderAddress),
	}
	if env.EntryPoint, err = entrypoint.Deploy(h, params.EntryPointAddress); err != nil {
		t.Fatalf("failed to deploy entry point: %v", err)
	}
	if env.Token, err = token.Deploy(h, TokenAddress); err != nil {
		t.Fatalf("failed to deploy token: %v", err)
	}
	for addr, contract := range map[common.Address]host.Contract{
		params.NonceHolderAddress:      env.NonceHolder,
		params.ContractDeployerAddress: env.Deployer,
	} {
		if err := h.Deploy(addr, contract); err != nil {
			t.Fatalf("failed to deploy system contract %s: %v", addr, err)
		}
	}
	return env
}

// Fund credits addr with amount wei.
func (e *Env) Fund(addr common.Address, amount *big.Int) {
	e.Host.AddBalance(addr, uint256.MustFromBig(amount))
}

// Balance returns the native balance of addr.
func (e *Env) Balance(addr common.Address) *big.Int {
	return e.Host.GetBalance(addr).ToBig()
}

// DeployReverter binds a contract at addr that reverts every call with data.
func (e *Env) DeployReverter(t testing.TB, addr common.Address, data []byte) {
	t.Helper()
	reverter := host.ContractFunc(func(*host.Frame, []byte) ([]byte, error) {
		return nil, host.NewRevertError(data)
	})
	if err := e.Host.Deploy(addr, reverter); err != nil {
		t.Fatalf("failed to deploy reverter: %v", err)
	}
}

// NewKey generates a key and returns it with its address.
func NewKey(t testing.TB) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

// Ether converts whole ether to wei.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}
