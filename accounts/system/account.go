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

// Package system implements the zkSync Era system account: an account driven
// by the bootloader that keeps its nonce in the system nonce holder, settles
// its own fees and reaches the contract deployer through system calls.
package system

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa"
	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/contracts/zksync"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
)

var (
	approvedMeter        = metrics.NewRegisteredMeter("accounts/system/validation/approved", nil)
	notApprovedMeter     = metrics.NewRegisteredMeter("accounts/system/validation/rejected", nil)
	deployerCallsCounter = metrics.NewRegisteredCounter("accounts/system/execution/deployer", nil)
	executionFailedMeter = metrics.NewRegisteredMeter("accounts/system/execution/failed", nil)
	feesPaidCounter      = metrics.NewRegisteredCounter("accounts/system/fees/paid", nil)
)

// ErrValidationFailed is returned when a transaction submitted from outside is
// not signed by the owner.
var ErrValidationFailed = errors.New("transaction validation failed")

var (
	// ValidationSuccessMagic is returned by ValidateTransaction for approved
	// transactions: the selector of validateTransaction.
	ValidationSuccessMagic = abi.Selector(abi.SystemAccountABI, "validateTransaction")

	// EIP1271SuccessMagic is returned by IsValidSignature for owner signatures.
	EIP1271SuccessMagic = [4]byte{0x16, 0x26, 0xba, 0x7e}
)

// Account is a zkSync system account.
type Account struct {
	backend   aa.Backend
	self      common.Address
	nonces    aa.NonceRegistry
	recoverer aa.SignatureRecoverer

	owner  *accounts.Ownable
	gate   accounts.Gate
	logger log.Logger
}

var _ accounts.SmartAccount = (*Account)(nil)

// New binds a system account at self. The bootloader and nonce holder are the
// reserved system contracts.
func New(backend aa.Backend, self common.Address) *Account {
	a := &Account{
		backend:   backend,
		self:      self,
		nonces:    zksync.NewNonceHolderBinding(backend, params.NonceHolderAddress),
		recoverer: accounts.ECDSARecoverer{},
		owner:     accounts.NewOwnable(backend, self),
		logger:    log.New("account", self, "kind", accounts.KindSystem),
	}
	a.gate = accounts.NewGate(params.BootloaderAddress, a.owner.Owner)
	return a
}

// Initialize sets the first owner of the account.
func (a *Account) Initialize(owner common.Address) error {
	return a.owner.Initialize(owner)
}

// Account implements accounts.SmartAccount.
func (a *Account) Account() accounts.Account {
	return accounts.NewAccount(accounts.KindSystem, a.backend.ChainID(), a.self)
}

// Kind implements accounts.SmartAccount.
func (a *Account) Kind() accounts.Kind { return accounts.KindSystem }

// Address returns the address the account is bound to.
func (a *Account) Address() common.Address { return a.self }

// Owner returns the current owner.
func (a *Account) Owner() common.Address { return a.owner.Owner() }

// PrivilegedCaller returns the bootloader address.
func (a *Account) PrivilegedCaller() common.Address { return a.gate.Privileged() }

// ValidateTransaction consumes the transaction's nonce, checks the account can
// fund it and reports whether the owner signed it. Only the bootloader may
// call it.
//
// A nonce mismatch or insufficient balance fails the call. A signature by
// anyone else yields a zero magic value without an error, the consumed nonce
// staying consumed.
func (a *Account) ValidateTransaction(caller common.Address, txHash, suggestedSignedHash common.Hash, tx *types.Transaction) ([4]byte, error) {
	if err := a.gate.Authorize(caller, accounts.Strict); err != nil {
		return [4]byte{}, err
	}
	return a.validate(txHash, suggestedSignedHash, tx)
}

func (a *Account) validate(txHash, suggestedSignedHash common.Hash, tx *types.Transaction) ([4]byte, error) {
	if err := a.nonces.IncrementMinNonceIfEquals(a.self, tx.Nonce); err != nil {
		return [4]byte{}, err
	}
	required := tx.TotalRequiredBalance()
	if balance := a.backend.GetBalance(a.self).ToBig(); balance.Cmp(required) < 0 {
		return [4]byte{}, &accounts.InsufficientBalanceError{Required: required, Actual: balance}
	}
	hash := suggestedSignedHash
	if hash == (common.Hash{}) {
		var err error
		if hash, err = tx.SignedHash(a.backend.ChainID()); err != nil {
			return [4]byte{}, err
		}
	}
	ok, err := a.checkSignature(hash, tx.Signature)
	if err != nil {
		return [4]byte{}, err
	}
	a.logger.Trace("Validated transaction", "hash", txHash, "signed", hash, "nonce", tx.Nonce, "ok", ok)
	if !ok {
		notApprovedMeter.Mark(1)
		return [4]byte{}, nil
	}
	approvedMeter.Mark(1)
	return ValidationSuccessMagic, nil
}

func (a *Account) checkSignature(hash common.Hash, sig []byte) (bool, error) {
	signer, err := a.recoverer.Recover(hash, sig)
	if err != nil {
		return false, err
	}
	return signer == a.owner.Owner(), nil
}

// ExecuteTransaction runs the call of a validated transaction. The bootloader
// and the owner may call it.
func (a *Account) ExecuteTransaction(caller common.Address, txHash, suggestedSignedHash common.Hash, tx *types.Transaction) error {
	if err := a.gate.Authorize(caller, accounts.OwnerOrPrivileged); err != nil {
		return err
	}
	_, err := a.execute(tx.ToAddress(), tx.Value, tx.Data)
	return err
}

// ExecuteTransactionFromOutside lets anyone submit a transaction the owner
// signed. It is validated like a bootloader transaction, its nonce included,
// and must be approved before it runs.
func (a *Account) ExecuteTransactionFromOutside(tx *types.Transaction) error {
	return a.backend.Atomic(func() error {
		magic, err := a.validate(common.Hash{}, common.Hash{}, tx)
		if err != nil {
			return err
		}
		if magic != ValidationSuccessMagic {
			return ErrValidationFailed
		}
		_, err = a.execute(tx.ToAddress(), tx.Value, tx.Data)
		return err
	})
}

// Execute calls target with value and data on behalf of the account. The
// bootloader and the owner may request it. Calls to the contract deployer go
// through the system call mechanism.
func (a *Account) Execute(caller, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if err := a.gate.Authorize(caller, accounts.OwnerOrPrivileged); err != nil {
		return nil, err
	}
	return a.execute(target, value, data)
}

func (a *Account) execute(target common.Address, value *big.Int, data []byte) ([]byte, error) {
	amount, err := toValue(value)
	if err != nil {
		return nil, err
	}
	var ret []byte
	if target == params.ContractDeployerAddress {
		deployerCallsCounter.Inc(1)
		ret, err = a.backend.SystemCall(a.self, target, amount, data)
	} else {
		ret, err = a.backend.Call(a.self, target, amount, data)
	}
	if err != nil {
		executionFailedMeter.Mark(1)
		a.logger.Debug("Execution failed", "target", target, "value", value, "err", err)
		return nil, accounts.NewExecutionFailedError(target, err)
	}
	return ret, nil
}

// PayForTransaction pays the transaction fee, maxFeePerGas * gasLimit, to the
// bootloader. Only the bootloader may call it.
func (a *Account) PayForTransaction(caller common.Address, txHash, suggestedSignedHash common.Hash, tx *types.Transaction) error {
	if err := a.gate.Authorize(caller, accounts.Strict); err != nil {
		return err
	}
	fee, overflow := uint256.FromBig(tx.Fee())
	if overflow {
		return accounts.ErrFailedToPayOperator
	}
	if _, err := a.backend.Call(a.self, a.gate.Privileged(), fee, nil); err != nil {
		a.logger.Debug("Fee payment failed", "fee", fee, "err", err)
		return accounts.ErrFailedToPayOperator
	}
	feesPaidCounter.Inc(1)
	return nil
}

// TransferOwnership hands the account to newOwner. The owner may call it
// directly or through a transaction the account executes on itself.
func (a *Account) TransferOwnership(caller, newOwner common.Address) error {
	return a.owner.TransferOwnership(caller, newOwner, a.self)
}

// IsValidSignature implements EIP-1271: it returns EIP1271SuccessMagic if sig
// is the owner's signature over hash, zero otherwise.
func (a *Account) IsValidSignature(hash common.Hash, sig []byte) ([4]byte, error) {
	ok, err := a.checkSignature(hash, sig)
	if err != nil {
		return [4]byte{}, err
	}
	if !ok {
		return [4]byte{}, nil
	}
	return EIP1271SuccessMagic, nil
}

func toValue(value *big.Int) (*uint256.Int, error) {
	if value == nil {
		return new(uint256.Int), nil
	}
	amount, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid call value %v", value)
	}
	return amount, nil
}
