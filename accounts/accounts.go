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

// Package accounts implements smart contract accounts: wallets whose operations
// are authorized by contract logic checking the owner's signature, processed
// on behalf of the owner by a single privileged caller.
// package accounts 实现了智能合约账户：由合约逻辑校验所有者签名来授权操作，并由唯一的特权调用者代表所有者处理。
package accounts

import (
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Kind identifies an account variant.
// Kind 标识账户的变体。
type Kind string

const (
	// KindStandard accounts are driven by an ERC-4337 entry point.
	// KindStandard 账户由 ERC-4337 入口点驱动。
	KindStandard Kind = "erc4337"

	// KindSystem accounts are driven by the zkSync bootloader.
	// KindSystem 账户由 zkSync 引导程序驱动。
	KindSystem Kind = "zksync"
)

// Account represents a smart account deployed at a specific address, located
// by the URL field.
// Account 代表部署在特定地址上的智能账户，由 URL 字段定位。
type Account struct {
	Address common.Address `json:"address"`
	URL     URL            `json:"url"`
}

// NewAccount returns the account descriptor of a deployed smart account.
// NewAccount 返回已部署智能账户的账户描述符。
func NewAccount(kind Kind, chainID *big.Int, addr common.Address) Account {
	return Account{
		Address: addr,
		URL:     URL{Scheme: string(kind), Path: fmt.Sprintf("%v/%s", chainID, addr.Hex())},
	}
}

// SmartAccount is the protocol both account variants implement. Every
// protected entry point takes the identity of its immediate caller explicitly
// and runs the caller gate before touching state.
// SmartAccount 是两种账户变体都实现的协议。每个受保护的入口点都显式接收直接调用者的身份，并在修改状态之前执行调用者检查。
type SmartAccount interface {
	// Contract dispatches ABI encoded calls arriving through the host.
	// Contract 分发通过宿主到达的 ABI 编码调用。
	host.Contract

	// Account returns the descriptor of this account.
	// Account 返回此账户的描述符。
	Account() Account

	// Kind reports which variant the account is.
	// Kind 报告账户属于哪种变体。
	Kind() Kind

	// Owner returns the current owner.
	// Owner 返回当前所有者。
	Owner() common.Address

	// PrivilegedCaller returns the immutable entry point or bootloader address.
	// PrivilegedCaller 返回不可变的入口点或引导程序地址。
	PrivilegedCaller() common.Address

	// Execute performs a call to target on behalf of the account. Only the
	// privileged caller and the owner may request it. A failing call is
	// reported as *ExecutionFailedError carrying the target's revert data.
	// Execute 代表账户调用目标。只有特权调用者和所有者可以请求。失败的调用以携带目标回滚数据的 *ExecutionFailedError 报告。
	Execute(caller, target common.Address, value *big.Int, data []byte) ([]byte, error)

	// TransferOwnership hands the account to newOwner. The zero address is
	// rejected.
	// TransferOwnership 将账户移交给 newOwner。零地址会被拒绝。
	TransferOwnership(caller, newOwner common.Address) error
}

// TextHash is a helper function that calculates a hash for the given message that can be
// safely used to calculate a signature from.
//
// The hash is calculated as
//
//	keccak256("\x19Ethereum Signed Message:\n"${message length}${message}).
//
// Standard accounts expect their owner to sign the text hash of the operation hash.
// TextHash 是一个辅助函数，用于计算给定消息的哈希值，该哈希值可安全地用于计算签名。标准账户要求所有者对操作哈希的文本哈希进行签名。
func TextHash(data []byte) []byte {
	hash, _ := TextAndHash(data)
	return hash
}

// TextAndHash is a helper function that calculates a hash for the given message that can be
// safely used to calculate a signature from.
//
// The hash is calculated as
//
//	keccak256("\x19Ethereum Signed Message:\n"${message length}${message}).
//
// TextAndHash 是一个辅助函数，计算给定消息的哈希值及其被哈希的消息文本。
func TextAndHash(data []byte) ([]byte, string) {
	msg := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(data), data)
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(msg))
	return hasher.Sum(nil), msg
}

// AccountEventType represents the different event types that can be fired by
// the account subscription subsystem.
// AccountEventType 表示账户订阅子系统可以触发的不同事件类型。
type AccountEventType int

const (
	// AccountDeployed is fired when a new smart account is registered with the
	// manager.
	// AccountDeployed 在新的智能账户注册到管理器时触发。
	AccountDeployed AccountEventType = iota

	// OwnershipTransferred is fired when a processed transaction moved an
	// account to a new owner.
	OwnershipTransferred
)

// AccountEvent is an event fired by the account manager.
// AccountEvent 是账户管理器触发的事件。
type AccountEvent struct {
	Account       SmartAccount
	Kind          AccountEventType
	PreviousOwner common.Address
	NewOwner      common.Address
}
