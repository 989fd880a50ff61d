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

// Package entrypoint implements the ERC-4337 v0.6 entry point: the singleton
// that validates and executes bundles of user operations against standard
// accounts and keeps their nonces and deposits.
package entrypoint

import (
	"errors"
	"math"
	"math/big"

	"github.com/bsi-ethereum/go-aa"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/bsi-ethereum/go-aa/core/types"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
)

var (
	handledOpsMeter    = metrics.NewRegisteredMeter("entrypoint/ops/handled", nil)
	failedOpsMeter     = metrics.NewRegisteredMeter("entrypoint/ops/failed", nil)
	revertedOpsMeter   = metrics.NewRegisteredMeter("entrypoint/ops/reverted", nil)
	collectedFeesCount = metrics.NewRegisteredCounter("entrypoint/fees/collected", nil)
)

// Storage roots of the entry point's mappings.
var (
	depositsSlot = host.SlotIndex(0) // account => deposit
	noncesSlot   = host.SlotIndex(1) // sender => key => sequence
)

// EntryPoint is a native rendition of the v0.6 entry point. Gas is not
// metered: every operation is charged its full required prefund.
type EntryPoint struct {
	host   *host.Host
	self   common.Address
	logger log.Logger
}

var _ aa.EntryPoint = (*EntryPoint)(nil)

// New creates an entry point bound at self.
func New(h *host.Host, self common.Address) *EntryPoint {
	return &EntryPoint{host: h, self: self, logger: log.New("module", "entrypoint", "address", self)}
}

// Deploy creates an entry point and binds it at self.
func Deploy(h *host.Host, self common.Address) (*EntryPoint, error) {
	ep := New(h, self)
	if err := h.Deploy(self, ep); err != nil {
		return nil, err
	}
	return ep, nil
}

// Address returns the entry point address.
func (ep *EntryPoint) Address() common.Address { return ep.self }

func (ep *EntryPoint) depositSlot(account common.Address) common.Hash {
	return host.MappingSlot(host.AddressKey(account), depositsSlot)
}

func (ep *EntryPoint) nonceSlot(sender common.Address, key *big.Int) common.Hash {
	inner := host.MappingSlot(host.AddressKey(sender), noncesSlot)
	return host.MappingSlot(common.BigToHash(key), inner)
}

// GetNonce returns the next nonce of sender in the key space key, the key in
// the high 192 bits and the sequence in the low 64.
func (ep *EntryPoint) GetNonce(sender common.Address, key *big.Int) (*big.Int, error) {
	if key == nil {
		key = new(big.Int)
	}
	seq := ep.host.GetStateBig(ep.self, ep.nonceSlot(sender, key))
	return types.EncodeNonce(key, seq.Uint64()), nil
}

// IncrementNonce burns the next nonce of sender in the key space key.
func (ep *EntryPoint) IncrementNonce(sender common.Address, key *big.Int) {
	slot := ep.nonceSlot(sender, key)
	seq := ep.host.GetStateBig(ep.self, slot)
	ep.host.SetStateBig(ep.self, slot, seq.Add(seq, common.Big1))
}

// validateAndUpdateNonce consumes nonce for sender if it is the next one.
func (ep *EntryPoint) validateAndUpdateNonce(sender common.Address, nonce *big.Int) bool {
	key, seq := types.DecodeNonce(nonce)
	slot := ep.nonceSlot(sender, key)
	current := ep.host.GetStateBig(ep.self, slot)
	ep.host.SetStateBig(ep.self, slot, new(big.Int).Add(current, common.Big1))
	return current.IsUint64() && current.Uint64() == seq
}

// BalanceOf returns the deposit held for account.
func (ep *EntryPoint) BalanceOf(account common.Address) (*big.Int, error) {
	return ep.host.GetStateBig(ep.self, ep.depositSlot(account)), nil
}

func (ep *EntryPoint) deposit(account common.Address) *big.Int {
	return ep.host.GetStateBig(ep.self, ep.depositSlot(account))
}

// credit adds amount, which already reached the entry point, to the deposit
// of account.
func (ep *EntryPoint) credit(account common.Address, amount *uint256.Int) {
	total := ep.deposit(account)
	total.Add(total, amount.ToBig())
	ep.host.SetStateBig(ep.self, ep.depositSlot(account), total)
	ep.emit("Deposited", []common.Hash{host.AddressKey(account)}, total)
}

// DepositTo moves amount from from into the deposit of account.
func (ep *EntryPoint) DepositTo(from, account common.Address, amount *uint256.Int) error {
	return ep.host.Atomic(func() error {
		if err := ep.host.Transfer(from, ep.self, amount); err != nil {
			return err
		}
		ep.credit(account, amount)
		return nil
	})
}

// WithdrawTo pays amount of account's deposit out to the address to.
func (ep *EntryPoint) WithdrawTo(account, to common.Address, amount *big.Int) error {
	if amount == nil {
		amount = new(big.Int)
	}
	value, overflow := uint256.FromBig(amount)
	if overflow || amount.Sign() < 0 {
		return errWithdrawTooLarge
	}
	return ep.host.Atomic(func() error {
		total := ep.deposit(account)
		if total.Cmp(amount) < 0 {
			return errWithdrawTooLarge
		}
		ep.host.SetStateBig(ep.self, ep.depositSlot(account), total.Sub(total, amount))
		ep.emit("Withdrawn", []common.Hash{host.AddressKey(account)}, to, amount)
		if _, err := ep.host.Call(ep.self, to, value, nil); err != nil {
			return errWithdrawFailed
		}
		return nil
	})
}

// GetUserOpHash returns the hash the sender of op signs.
func (ep *EntryPoint) GetUserOpHash(op *types.UserOperation) (common.Hash, error) {
	return op.Hash(ep.self, ep.host.ChainID())
}

// opInfo is what the validation phase hands to the execution phase.
type opInfo struct {
	op       *types.UserOperation
	hash     common.Hash
	prefund  *big.Int
	gasLimit *big.Int
}

// HandleOps validates every operation of the bundle, then executes them and
// pays the collected fees to beneficiary. A validation failure aborts the
// whole bundle with *FailedOpError; a failed execution is recorded and the
// bundle carries on.
func (ep *EntryPoint) HandleOps(ops []*types.UserOperation, beneficiary common.Address) error {
	return ep.host.Atomic(func() error {
		infos := make([]opInfo, len(ops))
		senders := mapset.NewThreadUnsafeSetWithSize[common.Address](len(ops))
		for i, op := range ops {
			if !senders.Add(op.Sender) {
				return failedOp(i, "duplicate sender in bundle")
			}
			info, err := ep.validate(i, op)
			if err != nil {
				failedOpsMeter.Mark(1)
				ep.logger.Debug("User operation failed validation", "index", i, "sender", op.Sender, "err", err)
				return err
			}
			infos[i] = info
		}
		ep.emit("BeforeExecution", nil)

		collected := new(big.Int)
		for _, info := range infos {
			collected.Add(collected, ep.execute(info))
		}
		if err := ep.compensate(beneficiary, collected); err != nil {
			return err
		}
		handledOpsMeter.Mark(int64(len(ops)))
		return nil
	})
}

// compensate pays the fees collected from a bundle to beneficiary.
func (ep *EntryPoint) compensate(beneficiary common.Address, collected *big.Int) error {
	amount, overflow := uint256.FromBig(collected)
	if overflow {
		return errBeneficiaryFailed
	}
	if err := ep.host.Transfer(ep.self, beneficiary, amount); err != nil {
		return errBeneficiaryFailed
	}
	collectedFeesCount.Inc(saturateInt64(collected))
	return nil
}

// saturateInt64 clamps x into the int64 range of metric counters.
func saturateInt64(x *big.Int) int64 {
	switch {
	case x.IsInt64():
		return x.Int64()
	case x.Sign() < 0:
		return math.MinInt64
	}
	return math.MaxInt64
}

// validate runs the validation phase of one operation: deploy the sender if
// asked to, let the account validate and pay, then check the deposit, nonce,
// signature result and validity window.
func (ep *EntryPoint) validate(index int, op *types.UserOperation) (opInfo, error) {
	op = op.WithDefaults()
	if _, ok := op.Paymaster(); ok {
		return opInfo{}, failedOp(index, "AA30 paymaster not supported")
	}
	hash, err := ep.GetUserOpHash(op)
	if err != nil {
		return opInfo{}, err
	}
	if err := ep.createSenderIfNeeded(index, op, hash); err != nil {
		return opInfo{}, err
	}
	required := op.RequiredPrefund()
	missing := new(big.Int).Sub(required, ep.deposit(op.Sender))
	if missing.Sign() < 0 {
		missing.SetUint64(0)
	}
	input, err := abi.PackValidateUserOp(op, hash, missing)
	if err != nil {
		return opInfo{}, err
	}
	ret, err := ep.host.Call(ep.self, op.Sender, nil, input)
	if err != nil {
		var revert *host.RevertError
		if errors.As(err, &revert) && revert.Reason() != "" {
			return opInfo{}, failedOp(index, "AA23 reverted: "+revert.Reason())
		}
		return opInfo{}, failedOp(index, "AA23 reverted (or OOG)")
	}
	validationData, err := abi.UnpackUint256(abi.AccountABI, "validateUserOp", ret)
	if err != nil {
		return opInfo{}, failedOp(index, "AA23 reverted (or OOG)")
	}
	deposit := ep.deposit(op.Sender)
	if deposit.Cmp(required) < 0 {
		return opInfo{}, failedOp(index, "AA21 didn't pay prefund")
	}
	ep.host.SetStateBig(ep.self, ep.depositSlot(op.Sender), deposit.Sub(deposit, required))

	if !ep.validateAndUpdateNonce(op.Sender, op.Nonce) {
		return opInfo{}, failedOp(index, "AA25 invalid account nonce")
	}
	data := types.ParseValidationData(validationData)
	if data.Aggregator != (common.Address{}) {
		return opInfo{}, failedOp(index, "AA24 signature error")
	}
	if !data.InTimeRange(ep.host.Time()) {
		return opInfo{}, failedOp(index, "AA22 expired or not due")
	}
	gasLimit := new(big.Int).Add(op.CallGasLimit, op.VerificationGasLimit)
	gasLimit.Add(gasLimit, op.PreVerificationGas)
	return opInfo{op: op, hash: hash, prefund: required, gasLimit: gasLimit}, nil
}

// createSenderIfNeeded runs the initCode of an operation whose sender does not
// exist yet.
func (ep *EntryPoint) createSenderIfNeeded(index int, op *types.UserOperation, hash common.Hash) error {
	if len(op.InitCode) == 0 {
		if !ep.host.IsContract(op.Sender) {
			return failedOp(index, "AA20 account not deployed")
		}
		return nil
	}
	if ep.host.IsContract(op.Sender) {
		return failedOp(index, "AA10 sender already constructed")
	}
	if len(op.InitCode) < common.AddressLength {
		return failedOp(index, "AA13 initCode failed or OOG")
	}
	factory := common.BytesToAddress(op.InitCode[:common.AddressLength])
	ret, err := ep.host.Call(ep.self, factory, nil, op.InitCode[common.AddressLength:])
	if err != nil || len(ret) < 32 {
		return failedOp(index, "AA13 initCode failed or OOG")
	}
	if sender := common.BytesToAddress(ret[:32]); sender != op.Sender {
		return failedOp(index, "AA14 initCode must return sender")
	}
	if !ep.host.IsContract(op.Sender) {
		return failedOp(index, "AA15 initCode must create sender")
	}
	ep.emit("AccountDeployed", []common.Hash{hash, host.AddressKey(op.Sender)}, factory, common.Address{})
	return nil
}

// execute runs the call data of a validated operation and returns what it is
// charged.
func (ep *EntryPoint) execute(info opInfo) *big.Int {
	op := info.op
	success := true
	if len(op.CallData) > 0 {
		if _, err := ep.host.Call(ep.self, op.Sender, nil, op.CallData); err != nil {
			success = false
			revertedOpsMeter.Mark(1)
			ep.logger.Debug("User operation reverted", "hash", info.hash, "sender", op.Sender, "err", err)
			ep.emit("UserOperationRevertReason", []common.Hash{info.hash, host.AddressKey(op.Sender)}, op.Nonce, host.RevertData(err))
		}
	}
	ep.emit("UserOperationEvent", []common.Hash{info.hash, host.AddressKey(op.Sender), {}},
		op.Nonce, success, info.prefund, info.gasLimit)
	return info.prefund
}

func (ep *EntryPoint) emit(name string, topics []common.Hash, args ...interface{}) {
	event := abi.EntryPointABI.Events[name]
	data, err := event.Inputs.NonIndexed().Pack(args...)
	if err != nil {
		ep.logger.Error("Failed to encode event", "event", name, "err", err)
		return
	}
	ep.host.EmitLog(ep.self, append([]common.Hash{event.ID}, topics...), data)
}
