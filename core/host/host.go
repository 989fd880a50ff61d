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

// Package host implements the execution environment accounts run in: a ledger
// of balances and storage backed by a go-ethereum StateDB, native contracts
// bound to addresses, and calls that either complete or roll back every state
// change they made.
package host

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var (
	// ErrContractExists is returned when binding code to an occupied address.
	ErrContractExists = errors.New("contract already deployed at address")

	// ErrUnknownCode is returned when deploying a code hash nobody registered.
	ErrUnknownCode = errors.New("unknown code hash")
)

// Contract is native code bound to an address.
type Contract interface {
	// Run executes one call into the contract. Returning an error reverts every
	// state change made during the call.
	Run(frame *Frame, input []byte) ([]byte, error)
}

// ContractFunc adapts an ordinary function to the Contract interface.
type ContractFunc func(frame *Frame, input []byte) ([]byte, error)

// Run implements Contract.
func (f ContractFunc) Run(frame *Frame, input []byte) ([]byte, error) { return f(frame, input) }

// Factory instantiates a contract from constructor input at a fresh address.
type Factory func(h *Host, addr common.Address, input []byte) (Contract, error)

// Frame describes the call a contract is currently serving.
type Frame struct {
	Host   *Host
	Caller common.Address
	Self   common.Address
	Value  *uint256.Int
	System bool // the call was made through the system call mechanism
	Depth  int
}

// Config holds the block context visible to contracts.
type Config struct {
	ChainID     *big.Int
	BlockNumber uint64
	Time        uint64
}

// Host is a single-threaded execution environment. It is not safe for
// concurrent use; callers serialize access the way a block processor would.
type Host struct {
	config    Config
	state     *state.StateDB
	contracts map[common.Address]Contract
	codes     map[common.Hash]Factory
	bound     []common.Address // bindings in order, unwound with reverted calls
	depth     int
	txHash    common.Hash
	txIndex   int
	logger    log.Logger
}

// New creates a host on top of an existing state database.
func New(statedb *state.StateDB, config Config) *Host {
	if config.ChainID == nil {
		config.ChainID = new(big.Int).Set(params.DevChainID)
	}
	return &Host{
		config:    config,
		state:     statedb,
		contracts: make(map[common.Address]Contract),
		codes:     make(map[common.Hash]Factory),
		logger:    log.New("module", "host"),
	}
}

// NewMemory creates a host over an empty in-memory state.
func NewMemory(config Config) (*Host, error) {
	statedb, err := state.New(types.EmptyRootHash, state.NewDatabaseForTesting())
	if err != nil {
		return nil, err
	}
	return New(statedb, config), nil
}

// ChainID returns the chain the host simulates.
func (h *Host) ChainID() *big.Int { return new(big.Int).Set(h.config.ChainID) }

// Time returns the current block timestamp.
func (h *Host) Time() uint64 { return h.config.Time }

// SetTime moves the block timestamp.
func (h *Host) SetTime(t uint64) { h.config.Time = t }

// BlockNumber returns the current block number.
func (h *Host) BlockNumber() uint64 { return h.config.BlockNumber }

// StateDB exposes the underlying state.
func (h *Host) StateDB() *state.StateDB { return h.state }

// Deploy binds a contract to addr.
func (h *Host) Deploy(addr common.Address, contract Contract) error {
	if _, ok := h.contracts[addr]; ok {
		return fmt.Errorf("%w: %s", ErrContractExists, addr)
	}
	h.contracts[addr] = contract
	h.bound = append(h.bound, addr)
	h.logger.Debug("Bound native contract", "address", addr, "type", fmt.Sprintf("%T", contract))
	return nil
}

// ContractAt returns the contract bound to addr, if any.
func (h *Host) ContractAt(addr common.Address) (Contract, bool) {
	c, ok := h.contracts[addr]
	return c, ok
}

// IsContract reports whether code is bound to addr.
func (h *Host) IsContract(addr common.Address) bool {
	_, ok := h.contracts[addr]
	return ok
}

// RegisterCode makes a contract kind deployable by code hash.
func (h *Host) RegisterCode(codeHash common.Hash, factory Factory) {
	h.codes[codeHash] = factory
}

// CodeHash derives the code hash a contract kind is registered under.
func CodeHash(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// Instantiate runs the factory registered for codeHash and binds the result
// to addr.
func (h *Host) Instantiate(codeHash common.Hash, addr common.Address, input []byte) error {
	factory, ok := h.codes[codeHash]
	if !ok {
		return fmt.Errorf("%w: %x", ErrUnknownCode, codeHash)
	}
	if h.IsContract(addr) {
		return fmt.Errorf("%w: %s", ErrContractExists, addr)
	}
	contract, err := factory(h, addr, input)
	if err != nil {
		return err
	}
	return h.Deploy(addr, contract)
}

// GetBalance returns the native balance of addr.
func (h *Host) GetBalance(addr common.Address) *uint256.Int {
	return h.state.GetBalance(addr)
}

// AddBalance credits addr, used for funding from outside the ledger.
func (h *Host) AddBalance(addr common.Address, amount *uint256.Int) {
	h.state.AddBalance(addr, amount, tracing.BalanceChangeUnspecified)
}

// GetState reads a storage slot of addr.
func (h *Host) GetState(addr common.Address, key common.Hash) common.Hash {
	return h.state.GetState(addr, key)
}

// SetState writes a storage slot of addr.
func (h *Host) SetState(addr common.Address, key, value common.Hash) {
	h.state.SetState(addr, key, value)
}

// Transfer moves value between two accounts, failing if the sender cannot
// cover it.
func (h *Host) Transfer(from, to common.Address, value *uint256.Int) error {
	if value == nil || value.IsZero() {
		return nil
	}
	if h.state.GetBalance(from).Lt(value) {
		return fmt.Errorf("%w: address %s have %v want %v", vm.ErrInsufficientBalance, from, h.state.GetBalance(from), value)
	}
	h.state.SubBalance(from, value, tracing.BalanceChangeTransfer)
	h.state.AddBalance(to, value, tracing.BalanceChangeTransfer)
	return nil
}

// Atomic runs fn and reverts every state change it made if it fails.
func (h *Host) Atomic(fn func() error) error {
	snapshot, bound := h.state.Snapshot(), len(h.bound)
	if err := fn(); err != nil {
		h.revert(snapshot, bound)
		return err
	}
	return nil
}

// revert rolls state back to snapshot and unbinds contracts deployed since.
func (h *Host) revert(snapshot int, bound int) {
	h.state.RevertToSnapshot(snapshot)
	for _, addr := range h.bound[bound:] {
		delete(h.contracts, addr)
	}
	h.bound = h.bound[:bound]
}

// IntermediateRoot returns the state root of the current ledger.
func (h *Host) IntermediateRoot() common.Hash {
	return h.state.IntermediateRoot(false)
}
