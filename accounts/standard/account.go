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

// Package standard implements the ERC-4337 smart account: an account validated
// and driven by an entry point, whose owner signs the hash of each user
// operation.
package standard

import (
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa"
	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
)

var (
	validationSucceededMeter = metrics.NewRegisteredMeter("accounts/standard/validation/succeeded", nil)
	validationFailedMeter    = metrics.NewRegisteredMeter("accounts/standard/validation/failed", nil)
	prefundFailedCounter     = metrics.NewRegisteredCounter("accounts/standard/prefund/failed", nil)
	executionFailedMeter     = metrics.NewRegisteredMeter("accounts/standard/execution/failed", nil)
)

var accountInitializedTopic = abi.AccountABI.Events["AccountInitialized"].ID

// Account is an ERC-4337 smart account. Its entry point is fixed at
// construction, its owner is kept in the account's storage.
type Account struct {
	backend    aa.Backend
	self       common.Address
	entryPoint aa.EntryPoint
	recoverer  aa.SignatureRecoverer

	owner  *accounts.Ownable
	gate   accounts.Gate
	logger log.Logger
}

var _ accounts.SmartAccount = (*Account)(nil)

// New binds an account at self to its entry point. The owner is whatever the
// account's storage holds; fresh accounts are set up with Initialize.
func New(backend aa.Backend, self common.Address, entryPoint aa.EntryPoint) *Account {
	a := &Account{
		backend:    backend,
		self:       self,
		entryPoint: entryPoint,
		recoverer:  accounts.ECDSARecoverer{},
		owner:      accounts.NewOwnable(backend, self),
		logger:     log.New("account", self, "kind", accounts.KindStandard),
	}
	a.gate = accounts.NewGate(entryPoint.Address(), a.owner.Owner)
	return a
}

// Initialize sets the first owner of the account.
func (a *Account) Initialize(owner common.Address) error {
	if err := a.owner.Initialize(owner); err != nil {
		return err
	}
	a.backend.EmitLog(a.self, []common.Hash{
		accountInitializedTopic,
		common.BytesToHash(a.entryPoint.Address().Bytes()),
		common.BytesToHash(owner.Bytes()),
	}, nil)
	return nil
}

// Account implements accounts.SmartAccount.
func (a *Account) Account() accounts.Account {
	return accounts.NewAccount(accounts.KindStandard, a.backend.ChainID(), a.self)
}

// Kind implements accounts.SmartAccount.
func (a *Account) Kind() accounts.Kind { return accounts.KindStandard }

// Address returns the address the account is bound to.
func (a *Account) Address() common.Address { return a.self }

// Owner returns the current owner.
func (a *Account) Owner() common.Address { return a.owner.Owner() }

// PrivilegedCaller returns the entry point address.
func (a *Account) PrivilegedCaller() common.Address { return a.gate.Privileged() }

// EntryPoint returns the entry point address.
func (a *Account) EntryPoint() common.Address { return a.entryPoint.Address() }

// ValidateUserOp checks that op was signed by the owner and pays the entry
// point what it is missing to cover the operation. Only the entry point may
// call it.
//
// A signature by anyone else is reported through the returned validation data
// (types.SigValidationFailed) rather than an error. Malformed signatures fail
// the call.
func (a *Account) ValidateUserOp(caller common.Address, op *types.UserOperation, opHash common.Hash, missingFunds *big.Int) (*big.Int, error) {
	if err := a.gate.Authorize(caller, accounts.Strict); err != nil {
		return nil, err
	}
	ok, err := a.checkSignature(opHash, op.Signature)
	if err != nil {
		return nil, err
	}
	if ok {
		validationSucceededMeter.Mark(1)
	} else {
		validationFailedMeter.Mark(1)
	}
	a.logger.Trace("Validated user operation", "hash", opHash, "nonce", op.Nonce, "ok", ok)

	a.payPrefund(caller, missingFunds)
	return types.SigValidation(ok), nil
}

// checkSignature reports whether sig is the owner's signature over the
// Ethereum signed message of hash.
func (a *Account) checkSignature(hash common.Hash, sig []byte) (bool, error) {
	signer, err := a.recoverer.Recover(common.BytesToHash(accounts.TextHash(hash[:])), sig)
	if err != nil {
		return false, err
	}
	return signer == a.owner.Owner(), nil
}

// payPrefund sends the missing funds to the entry point. A failed transfer is
// not an error: the entry point checks the deposit it received on its own.
func (a *Account) payPrefund(to common.Address, missingFunds *big.Int) {
	if missingFunds == nil || missingFunds.Sign() <= 0 {
		return
	}
	amount, overflow := uint256.FromBig(missingFunds)
	if overflow {
		prefundFailedCounter.Inc(1)
		a.logger.Warn("Prefund exceeds value range, not paid", "to", to, "amount", missingFunds)
		return
	}
	if _, err := a.backend.Call(a.self, to, amount, nil); err != nil {
		prefundFailedCounter.Inc(1)
		a.logger.Warn("Prefund transfer failed", "to", to, "amount", missingFunds, "err", err)
		return
	}
	a.logger.Trace("Paid prefund", "to", to, "amount", missingFunds)
}

// Execute calls target with value and data on behalf of the account. The
// entry point and the owner may request it.
func (a *Account) Execute(caller, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if err := a.gate.Authorize(caller, accounts.OwnerOrPrivileged); err != nil {
		return nil, err
	}
	return a.call(target, value, data)
}

// ExecuteBatch runs a sequence of calls, all of them or none. Values may be
// omitted entirely, otherwise every call needs one.
func (a *Account) ExecuteBatch(caller common.Address, targets []common.Address, values []*big.Int, data [][]byte) error {
	if err := a.gate.Authorize(caller, accounts.OwnerOrPrivileged); err != nil {
		return err
	}
	if len(targets) != len(data) || (len(values) != 0 && len(values) != len(targets)) {
		return accounts.ErrArrayLengthMismatch
	}
	return a.backend.Atomic(func() error {
		for i, target := range targets {
			var value *big.Int
			if len(values) != 0 {
				value = values[i]
			}
			if _, err := a.call(target, value, data[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *Account) call(target common.Address, value *big.Int, data []byte) ([]byte, error) {
	amount, err := toValue(value)
	if err != nil {
		return nil, err
	}
	ret, err := a.backend.Call(a.self, target, amount, data)
	if err != nil {
		executionFailedMeter.Mark(1)
		a.logger.Debug("Execution failed", "target", target, "value", value, "err", err)
		return nil, accounts.NewExecutionFailedError(target, err)
	}
	return ret, nil
}

// TransferOwnership hands the account to newOwner. The owner may call it
// directly or through the account's own execution.
func (a *Account) TransferOwnership(caller, newOwner common.Address) error {
	return a.owner.TransferOwnership(caller, newOwner, a.self)
}

// GetNonce returns the account's next nonce in the given key space, as
// tracked by the entry point.
func (a *Account) GetNonce(key *big.Int) (*big.Int, error) {
	return a.entryPoint.GetNonce(a.self, key)
}

// GetDeposit returns the deposit the entry point holds for the account.
func (a *Account) GetDeposit() (*big.Int, error) {
	return a.entryPoint.BalanceOf(a.self)
}

// AddDeposit sends amount from from to the account and on to its entry point
// deposit.
func (a *Account) AddDeposit(from common.Address, amount *uint256.Int) error {
	return a.backend.Atomic(func() error {
		if from != a.self {
			if _, err := a.backend.Call(from, a.self, amount, nil); err != nil {
				return err
			}
		}
		return a.entryPoint.DepositTo(a.self, a.self, amount)
	})
}

// WithdrawDepositTo moves amount of the account's deposit to the address to.
// Only the owner, directly or through the account, may withdraw.
func (a *Account) WithdrawDepositTo(caller, to common.Address, amount *big.Int) error {
	if caller != a.owner.Owner() && caller != a.self {
		return &accounts.NotOwnerError{Caller: caller}
	}
	return a.entryPoint.WithdrawTo(a.self, to, amount)
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
