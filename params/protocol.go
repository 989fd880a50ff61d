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

// Package params holds the well-known addresses and protocol constants shared by
// the account implementations and their privileged callers.
package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Addresses reserved by the zkSync system contract space.
var (
	BootloaderAddress       = common.HexToAddress("0x0000000000000000000000000000000000008001")
	NonceHolderAddress      = common.HexToAddress("0x0000000000000000000000000000000000008003")
	ContractDeployerAddress = common.HexToAddress("0x0000000000000000000000000000000000008006")
)

// EntryPointAddress is the canonical ERC-4337 v0.6 entry point deployment.
var EntryPointAddress = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")

// FactoryAddress is where the standard account factory is bound by default.
var FactoryAddress = common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")

var (
	MainnetChainID   = big.NewInt(1)
	SepoliaChainID   = big.NewInt(11155111)
	ZkSyncEraChainID = big.NewInt(324)
	DevChainID       = big.NewInt(1337)
)

const (
	// CallDepthLimit is the maximum nesting of host calls.
	CallDepthLimit = 1024

	// MaxCallGas is passed as the gas budget where a call forwards all remaining gas.
	MaxCallGas = ^uint64(0)
)

// EIP-712 domain of zkSync transactions.
const (
	ZkSyncDomainName    = "zkSync"
	ZkSyncDomainVersion = "2"
)

// Transaction types understood by the system account.
const (
	LegacyTxType   = 0x00
	EIP712TxType   = 0x71
	PriorityTxType = 0xff
)
