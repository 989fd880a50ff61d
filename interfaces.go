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

// 版权所有 2026 The go-aa Authors
// 此文件是 go-aa 库的一部分。
//
// go-aa 库是免费软件：您可以根据自由软件基金会发布的 GNU 宽通用公共许可证的条款重新分发和/或修改它，
// 可以是许可证的第 3 版，也可以是（由您选择）任何更高版本。
//
// go-aa 库的发布是希望它能有用，但没有任何保证；甚至没有对适销性或特定用途适用性的默示保证。
// 有关更多详细信息，请参阅 GNU 宽通用公共许可证。
//
// 您应该已经随 go-aa 库收到一份 GNU 宽通用公共许可证的副本。如果没有，请参阅 <http://www.gnu.org/licenses/>。

// Package aa defines the interfaces through which smart accounts reach the
// environment they run in and the privileged collaborators they depend on.
// package aa 定义了智能账户访问其运行环境及其依赖的特权协作者所用的接口。
package aa

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// CallMsg contains the parameters of a call into a contract.
// CallMsg 包含调用合约的参数。
type CallMsg struct {
	From   common.Address // the immediate caller
	To     common.Address // the callee
	Value  *uint256.Int   // native value transferred with the call
	Data   []byte         // calldata
	System bool           // route through the system call mechanism
}

// ContractCaller performs calls between contracts. A failing call reverts all of
// its own state changes and reports the callee's revert data in the error.
// ContractCaller 执行合约之间的调用。失败的调用会回滚自身的全部状态变更，并在错误中报告被调用者的回滚数据。
type ContractCaller interface {
	Call(caller, to common.Address, value *uint256.Int, input []byte) ([]byte, error)
	StaticCall(caller, to common.Address, input []byte) ([]byte, error)
}

// SystemCaller routes a call through the host's privileged system call
// mechanism, propagating the callee's revert data unchanged.
// SystemCaller 通过宿主的特权系统调用机制路由调用，原样传播被调用者的回滚数据。
type SystemCaller interface {
	SystemCall(caller, to common.Address, value *uint256.Int, input []byte) ([]byte, error)
}

// StateReader gives access to balances and contract storage.
// StateReader 提供对余额和合约存储的访问。
type StateReader interface {
	GetBalance(addr common.Address) *uint256.Int
	GetState(addr common.Address, key common.Hash) common.Hash
}

// StateWriter mutates contract storage and emits logs.
// StateWriter 修改合约存储并发出日志。
type StateWriter interface {
	SetState(addr common.Address, key, value common.Hash)
	EmitLog(addr common.Address, topics []common.Hash, data []byte)
}

// Transactor runs a unit of work all-or-nothing.
// Transactor 以全有或全无的方式执行一个工作单元。
type Transactor interface {
	Atomic(fn func() error) error
}

// ChainContext exposes the block context.
// ChainContext 提供区块上下文。
type ChainContext interface {
	ChainID() *big.Int
	Time() uint64
}

// Backend is everything an account needs from its execution environment.
// Backend 是账户从其执行环境中需要的全部能力。
type Backend interface {
	ContractCaller
	SystemCaller
	StateReader
	StateWriter
	Transactor
	ChainContext
}

// NonceReader exposes the entry point's nonce bookkeeping, keyed by account and
// a 192-bit key space.
// NonceReader 提供入口点的 nonce 记账，按账户和 192 位键空间索引。
type NonceReader interface {
	GetNonce(sender common.Address, key *big.Int) (*big.Int, error)
}

// DepositManager exposes the entry point's per-account deposit bookkeeping.
// DepositManager 提供入口点按账户的存款记账。
type DepositManager interface {
	BalanceOf(account common.Address) (*big.Int, error)
	DepositTo(from, account common.Address, amount *uint256.Int) error
	WithdrawTo(account, to common.Address, amount *big.Int) error
}

// EntryPoint is the privileged caller of standard accounts.
// EntryPoint 是标准账户的特权调用者。
type EntryPoint interface {
	NonceReader
	DepositManager
	Address() common.Address
}

// NonceRegistry is the system nonce holder. IncrementMinNonceIfEquals advances
// the caller's nonce by one if it currently equals expected and fails otherwise.
// NonceRegistry 是系统 nonce 持有者。
type NonceRegistry interface {
	GetMinNonce(account common.Address) (*big.Int, error)
	IncrementMinNonceIfEquals(account common.Address, expected *big.Int) error
}

// SignatureRecoverer recovers the address that produced sig over hash.
// SignatureRecoverer 恢复对 hash 生成 sig 的地址。
type SignatureRecoverer interface {
	Recover(hash common.Hash, sig []byte) (common.Address, error)
}

// LogFilterer gives access to the logs emitted while processing a transaction.
// LogFilterer 提供对处理交易期间发出的日志的访问。
type LogFilterer interface {
	Logs(txHash common.Hash) []*types.Log
}
