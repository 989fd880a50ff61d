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

package accounts

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownAccount is returned for any requested operation for which no
// smart account is registered.
// ErrUnknownAccount 在请求的操作没有对应已注册的智能账户时返回。
var ErrUnknownAccount = errors.New("unknown account")

// ErrAccountExists is returned when registering an account twice.
// ErrAccountExists 在重复注册账户时返回。
var ErrAccountExists = errors.New("account already registered")

// ErrUnauthorizedCaller is returned when an entry point is invoked by an
// identity its gate does not admit.
// ErrUnauthorizedCaller 在入口点被其检查不允许的身份调用时返回。
var ErrUnauthorizedCaller = errors.New("unauthorized caller")

// ErrNotOwner is returned when an owner-only operation is requested by anyone
// else.
// ErrNotOwner 在仅限所有者的操作被其他人请求时返回。
var ErrNotOwner = errors.New("caller is not the owner")

// ErrInvalidOwner is returned when the zero address is proposed as owner.
// ErrInvalidOwner 在提议零地址作为所有者时返回。
var ErrInvalidOwner = errors.New("invalid owner")

// ErrAlreadyInitialized is returned when an account's owner is set twice.
// ErrAlreadyInitialized 在账户所有者被设置两次时返回。
var ErrAlreadyInitialized = errors.New("account already initialized")

// ErrInsufficientBalance is returned when an account cannot fund a transaction.
// ErrInsufficientBalance 在账户无法支付交易费用时返回。
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrNonceMismatch is returned by the nonce holder when the expected nonce is
// not the current one.
// ErrNonceMismatch 由 nonce 持有者在期望的 nonce 不是当前值时返回。
var ErrNonceMismatch = errors.New("nonce mismatch")

// ErrExecutionFailed is returned when the call requested by an operation fails.
// ErrExecutionFailed 在操作请求的调用失败时返回。
var ErrExecutionFailed = errors.New("execution failed")

// Errors with a fixed custom revert encoding.
var (
	ErrMalformedSignature  error = &revertError{"malformed signature", "InvalidSignature"}
	ErrArrayLengthMismatch error = &revertError{"wrong array lengths", "ArrayLengthMismatch"}
	ErrFailedToPayOperator error = &revertError{"failed to pay the fee to the operator", "FailedToPayOperator"}
	ErrSystemCallRequired  error = &revertError{"this method requires the system call flag", "SystemCallFlagRequired"}
)

// revertError is a sentinel error that reverts with an argument-less custom
// error.
// revertError 是以无参数自定义错误回滚的哨兵错误。
type revertError struct {
	msg  string
	name string
}

func (e *revertError) Error() string      { return e.msg }
func (e *revertError) RevertData() []byte { return abi.PackError(e.name) }

// UnauthorizedCallerError is returned by the caller gate.
// UnauthorizedCallerError 由调用者检查返回。
type UnauthorizedCallerError struct {
	Caller common.Address
	Mode   GateMode
}

// Error implements the standard error interface.
func (err *UnauthorizedCallerError) Error() string {
	return fmt.Sprintf("unauthorized caller %s (%v gate)", err.Caller, err.Mode)
}

// Unwrap returns ErrUnauthorizedCaller.
func (err *UnauthorizedCallerError) Unwrap() error { return ErrUnauthorizedCaller }

// RevertData encodes UnauthorizedCaller(address,uint8), the gate mode kept so
// the rejection decodes unchanged on the far side of a call.
// RevertData 编码 UnauthorizedCaller(address,uint8)，保留检查模式以便在调用另一侧原样解码。
func (err *UnauthorizedCallerError) RevertData() []byte {
	return abi.PackError("UnauthorizedCaller", err.Caller, uint8(err.Mode))
}

// NotOwnerError is returned when a non-owner attempts an owner-only operation.
// NotOwnerError 在非所有者尝试仅限所有者的操作时返回。
type NotOwnerError struct {
	Caller common.Address
}

// Error implements the standard error interface.
func (err *NotOwnerError) Error() string {
	return fmt.Sprintf("caller %s is not the owner", err.Caller)
}

// Unwrap returns ErrNotOwner.
func (err *NotOwnerError) Unwrap() error { return ErrNotOwner }

// RevertData encodes NotOwner(address).
func (err *NotOwnerError) RevertData() []byte { return abi.PackError("NotOwner", err.Caller) }

// InvalidOwnerError is returned when a transfer names an unusable owner.
// InvalidOwnerError 在转移指定了不可用的所有者时返回。
type InvalidOwnerError struct {
	Owner common.Address
}

// Error implements the standard error interface.
func (err *InvalidOwnerError) Error() string {
	return fmt.Sprintf("invalid owner %s", err.Owner)
}

// Unwrap returns ErrInvalidOwner.
func (err *InvalidOwnerError) Unwrap() error { return ErrInvalidOwner }

// RevertData encodes InvalidOwner(address).
func (err *InvalidOwnerError) RevertData() []byte { return abi.PackError("InvalidOwner", err.Owner) }

// InsufficientBalanceError is returned when an account's balance is below the
// total a transaction requires.
// InsufficientBalanceError 在账户余额低于交易所需总额时返回。
type InsufficientBalanceError struct {
	Required *big.Int
	Actual   *big.Int
}

// Error implements the standard error interface.
func (err *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %v, actual %v", err.Required, err.Actual)
}

// Unwrap returns ErrInsufficientBalance.
func (err *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// RevertData encodes InsufficientBalance(uint256,uint256).
func (err *InsufficientBalanceError) RevertData() []byte {
	return abi.PackError("InsufficientBalance", err.Required, err.Actual)
}

// NonceMismatchError is returned when an operation does not carry the
// account's next nonce.
// NonceMismatchError 在操作未携带账户的下一个 nonce 时返回。
type NonceMismatchError struct {
	Expected *big.Int
	Actual   *big.Int
}

// Error implements the standard error interface.
func (err *NonceMismatchError) Error() string {
	return fmt.Sprintf("nonce mismatch: expected %v, current %v", err.Expected, err.Actual)
}

// Unwrap returns ErrNonceMismatch.
func (err *NonceMismatchError) Unwrap() error { return ErrNonceMismatch }

// RevertData encodes NonceMismatch(uint256,uint256).
func (err *NonceMismatchError) RevertData() []byte {
	return abi.PackError("NonceMismatch", err.Expected, err.Actual)
}

// UnsupportedPaymasterFlowError is returned for unknown paymaster inputs.
// UnsupportedPaymasterFlowError 针对未知的 paymaster 输入返回。
type UnsupportedPaymasterFlowError struct {
	Selector [4]byte
}

// Error implements the standard error interface.
func (err *UnsupportedPaymasterFlowError) Error() string {
	return fmt.Sprintf("unsupported paymaster flow %#x", err.Selector)
}

// RevertData encodes UnsupportedPaymasterFlow(bytes4).
func (err *UnsupportedPaymasterFlowError) RevertData() []byte {
	return abi.PackError("UnsupportedPaymasterFlow", err.Selector)
}

// ExecutionFailedError is returned when the call an account was asked to make
// fails. Reason holds the target's revert data unmodified, and reverting with
// the error propagates exactly those bytes.
// ExecutionFailedError 在账户被要求进行的调用失败时返回。Reason 原样保存目标的回滚数据。
type ExecutionFailedError struct {
	Target common.Address
	Reason []byte
}

// Error implements the standard error interface.
func (err *ExecutionFailedError) Error() string {
	if reason := err.ReasonString(); reason != "" {
		return fmt.Sprintf("execution failed: call to %s reverted: %s", err.Target, reason)
	}
	if len(err.Reason) > 0 {
		return fmt.Sprintf("execution failed: call to %s reverted with %#x", err.Target, err.Reason)
	}
	return fmt.Sprintf("execution failed: call to %s reverted", err.Target)
}

// Unwrap returns ErrExecutionFailed.
func (err *ExecutionFailedError) Unwrap() error { return ErrExecutionFailed }

// RevertData returns the raw revert data of the failed call.
func (err *ExecutionFailedError) RevertData() []byte { return err.Reason }

// ReasonString decodes an Error(string) reason from the revert data, if any.
// ReasonString 从回滚数据中解码 Error(string) 原因（如果有）。
func (err *ExecutionFailedError) ReasonString() string {
	return host.NewRevertError(err.Reason).Reason()
}

// NewExecutionFailedError wraps the failure of a call to target.
// NewExecutionFailedError 包装对 target 调用的失败。
func NewExecutionFailedError(target common.Address, err error) *ExecutionFailedError {
	var reason []byte
	var revert *host.RevertError
	if errors.As(err, &revert) {
		reason = revert.RevertData()
	}
	return &ExecutionFailedError{Target: target, Reason: reason}
}

// ParseRevert turns revert data carrying one of the account errors back into
// the typed error. It returns nil for any other payload.
// ParseRevert 将携带账户错误的回滚数据还原为类型化错误。对于其他数据返回 nil。
func ParseRevert(data []byte) error {
	name, args, ok := abi.UnpackError(data)
	if !ok {
		return nil
	}
	switch name {
	case "UnauthorizedCaller":
		return &UnauthorizedCallerError{Caller: args[0].(common.Address), Mode: GateMode(args[1].(uint8))}
	case "NotOwner":
		return &NotOwnerError{Caller: args[0].(common.Address)}
	case "InvalidOwner":
		return &InvalidOwnerError{Owner: args[0].(common.Address)}
	case "InsufficientBalance":
		return &InsufficientBalanceError{Required: args[0].(*big.Int), Actual: args[1].(*big.Int)}
	case "NonceMismatch":
		return &NonceMismatchError{Expected: args[0].(*big.Int), Actual: args[1].(*big.Int)}
	case "UnsupportedPaymasterFlow":
		return &UnsupportedPaymasterFlowError{Selector: args[0].([4]byte)}
	case "InvalidSignature":
		return ErrMalformedSignature
	case "ArrayLengthMismatch":
		return ErrArrayLengthMismatch
	case "FailedToPayOperator":
		return ErrFailedToPayOperator
	case "SystemCallFlagRequired":
		return ErrSystemCallRequired
	}
	return nil
}

// DecodeError resolves a call failure into the typed account error its revert
// data carries. Errors that carry no known payload are returned unchanged.
// DecodeError 将调用失败解析为其回滚数据携带的类型化账户错误。
func DecodeError(err error) error {
	var revert *host.RevertError
	if !errors.As(err, &revert) {
		return err
	}
	if typed := ParseRevert(revert.RevertData()); typed != nil {
		return typed
	}
	return err
}
