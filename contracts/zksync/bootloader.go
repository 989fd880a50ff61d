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

package zksync

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	aatypes "github.com/bsi-ethereum/go-aa/core/types"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	processedTxMeter = metrics.NewRegisteredMeter("zksync/bootloader/processed", nil)
	rejectedTxMeter  = metrics.NewRegisteredMeter("zksync/bootloader/rejected", nil)
	revertedTxMeter  = metrics.NewRegisteredMeter("zksync/bootloader/reverted", nil)
)

var (
	// ErrNotAccount is returned for transactions from addresses without code.
	ErrNotAccount = errors.New("sender is not an account")

	// ErrNotApproved is returned when the account declines a transaction.
	ErrNotApproved = errors.New("transaction not approved by account")

	// ErrFeeNotPaid is returned when the account did not pay the fee.
	ErrFeeNotPaid = errors.New("account did not pay the transaction fee")
)

// ValidationMagic is returned by accounts that approve a transaction.
var ValidationMagic = abi.Selector(abi.SystemAccountABI, "validateTransaction")

// Receipt is the outcome of a transaction the bootloader accepted.
type Receipt struct {
	TxHash       common.Hash
	Status       uint64 // types.ReceiptStatusSuccessful or types.ReceiptStatusFailed
	Fee          *big.Int
	RevertReason []byte
	Logs         []*types.Log
}

// Bootloader drives transactions through system accounts: validate, pay the
// fee and execute, each step a call from the bootloader address.
type Bootloader struct {
	host   *host.Host
	self   common.Address
	logger log.Logger
}

// NewBootloader creates a bootloader calling from self.
func NewBootloader(h *host.Host, self common.Address) *Bootloader {
	return &Bootloader{host: h, self: self, logger: log.New("module", "bootloader")}
}

// Address returns the address the bootloader calls from.
func (b *Bootloader) Address() common.Address { return b.self }

// ProcessTransaction runs tx. A transaction failing validation or payment is
// rejected and leaves no trace. A transaction whose execution fails is still
// included: its nonce and fee stay spent and the receipt reports the failure.
func (b *Bootloader) ProcessTransaction(tx *aatypes.Transaction) (*Receipt, error) {
	chainID := b.host.ChainID()
	from := tx.FromAddress()
	if !b.host.IsContract(from) {
		return nil, fmt.Errorf("%w: %s", ErrNotAccount, from)
	}
	suggested, err := tx.SignedHash(chainID)
	if err != nil {
		return nil, err
	}
	txHash, err := tx.Hash(chainID)
	if err != nil {
		return nil, err
	}
	b.host.BeginTx(txHash)
	logger := b.logger.New("hash", txHash, "from", from)

	receipt := &Receipt{TxHash: txHash, Status: types.ReceiptStatusSuccessful, Fee: new(big.Int)}
	err = b.host.Atomic(func() error {
		if err := b.validate(from, txHash, suggested, tx); err != nil {
			return err
		}
		fee, err := b.collectFee(from, txHash, suggested, tx)
		if err != nil {
			return err
		}
		receipt.Fee = fee
		return nil
	})
	if err != nil {
		rejectedTxMeter.Mark(1)
		logger.Debug("Rejected transaction", "err", err)
		return nil, err
	}
	input, err := abi.PackTransactionCall("executeTransaction", txHash, suggested, tx)
	if err != nil {
		return nil, err
	}
	if _, err := b.host.Call(b.self, from, nil, input); err != nil {
		revertedTxMeter.Mark(1)
		receipt.Status = types.ReceiptStatusFailed
		receipt.RevertReason = host.RevertData(err)
		logger.Debug("Transaction execution reverted", "err", err)
	}
	receipt.Logs = b.host.Logs(txHash)
	processedTxMeter.Mark(1)
	logger.Trace("Processed transaction", "status", receipt.Status, "fee", receipt.Fee)
	return receipt, nil
}

func (b *Bootloader) validate(from common.Address, txHash, suggested common.Hash, tx *aatypes.Transaction) error {
	input, err := abi.PackTransactionCall("validateTransaction", txHash, suggested, tx)
	if err != nil {
		return err
	}
	ret, err := b.host.Call(b.self, from, nil, input)
	if err != nil {
		return accounts.DecodeError(err)
	}
	magic, err := abi.UnpackBytes4(abi.SystemAccountABI, "validateTransaction", ret)
	if err != nil {
		return err
	}
	if magic != ValidationMagic {
		return ErrNotApproved
	}
	return nil
}

// collectFee has the account pay for the transaction, or prepare its
// paymaster when one sponsors it.
func (b *Bootloader) collectFee(from common.Address, txHash, suggested common.Hash, tx *aatypes.Transaction) (*big.Int, error) {
	if tx.PaymasterAddress() != (common.Address{}) {
		input, err := abi.PackTransactionCall("prepareForPaymaster", txHash, suggested, tx)
		if err != nil {
			return nil, err
		}
		if _, err := b.host.Call(b.self, from, nil, input); err != nil {
			return nil, accounts.DecodeError(err)
		}
		return new(big.Int), nil
	}
	before := b.host.GetBalance(b.self).ToBig()
	input, err := abi.PackTransactionCall("payForTransaction", txHash, suggested, tx)
	if err != nil {
		return nil, err
	}
	if _, err := b.host.Call(b.self, from, nil, input); err != nil {
		return nil, accounts.DecodeError(err)
	}
	fee := tx.Fee()
	paid := new(big.Int).Sub(b.host.GetBalance(b.self).ToBig(), before)
	if paid.Cmp(fee) < 0 {
		return nil, fmt.Errorf("%w: paid %v, fee %v", ErrFeeNotPaid, paid, fee)
	}
	return paid, nil
}

// DefaultBootloader creates a bootloader at the reserved bootloader address.
func DefaultBootloader(h *host.Host) *Bootloader {
	return NewBootloader(h, params.BootloaderAddress)
}
