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

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

var create2Prefix = crypto.Keccak256([]byte("zksyncCreate2"))

var (
	// ErrUnknownCodeHash is returned when deploying code nobody registered.
	ErrUnknownCodeHash = errors.New("unknown bytecode hash")

	// ErrAddressOccupied is returned when the derived address already holds code.
	ErrAddressOccupied = errors.New("address occupied")
)

// UnknownCodeHashError reports a create2 for code that is not registered.
type UnknownCodeHashError struct {
	BytecodeHash common.Hash
}

func (err *UnknownCodeHashError) Error() string {
	return fmt.Sprintf("unknown bytecode hash %x", err.BytecodeHash)
}

func (err *UnknownCodeHashError) Unwrap() error { return ErrUnknownCodeHash }

// RevertData encodes UnknownCodeHash(bytes32).
func (err *UnknownCodeHashError) RevertData() []byte {
	return packDeployerError("UnknownCodeHash", [32]byte(err.BytecodeHash))
}

// AddressOccupiedError reports a create2 onto an address holding code.
type AddressOccupiedError struct {
	Address common.Address
}

func (err *AddressOccupiedError) Error() string {
	return fmt.Sprintf("address %s occupied", err.Address)
}

func (err *AddressOccupiedError) Unwrap() error { return ErrAddressOccupied }

// RevertData encodes AddressOccupied(address).
func (err *AddressOccupiedError) RevertData() []byte {
	return packDeployerError("AddressOccupied", err.Address)
}

func packDeployerError(name string, args ...interface{}) []byte {
	e := abi.ContractDeployerABI.Errors[name]
	enc, err := e.Inputs.Pack(args...)
	if err != nil {
		return nil
	}
	return append(common.CopyBytes(e.ID[:4]), enc...)
}

// ContractDeployer deploys registered native contract kinds at deterministic
// addresses. Deployment is reserved to system calls.
type ContractDeployer struct {
	host   *host.Host
	self   common.Address
	logger log.Logger
}

// NewContractDeployer creates a deployer bound at self.
func NewContractDeployer(h *host.Host, self common.Address) *ContractDeployer {
	return &ContractDeployer{host: h, self: self, logger: log.New("module", "deployer")}
}

// Create2Address derives the address a create2 by sender deploys to:
//
//	keccak256(keccak256("zksyncCreate2") ‖ sender ‖ salt ‖ bytecodeHash ‖ keccak256(input))[12:]
func Create2Address(sender common.Address, bytecodeHash, salt common.Hash, input []byte) common.Address {
	hash := crypto.Keccak256(
		create2Prefix,
		common.LeftPadBytes(sender.Bytes(), 32),
		salt[:],
		bytecodeHash[:],
		crypto.Keccak256(input),
	)
	return common.BytesToAddress(hash[12:])
}

// Create2 instantiates the contract registered under bytecodeHash for sender,
// forwarding value that already reached the deployer.
func (d *ContractDeployer) Create2(sender common.Address, salt, bytecodeHash common.Hash, input []byte, value *uint256.Int) (common.Address, error) {
	addr := Create2Address(sender, bytecodeHash, salt, input)
	if d.host.IsContract(addr) {
		return common.Address{}, &AddressOccupiedError{Address: addr}
	}
	if err := d.host.Instantiate(bytecodeHash, addr, input); err != nil {
		if errors.Is(err, host.ErrUnknownCode) {
			return common.Address{}, &UnknownCodeHashError{BytecodeHash: bytecodeHash}
		}
		return common.Address{}, err
	}
	if err := d.host.Transfer(d.self, addr, value); err != nil {
		return common.Address{}, err
	}
	event := abi.ContractDeployerABI.Events["ContractDeployed"]
	d.host.EmitLog(d.self, []common.Hash{event.ID, host.AddressKey(sender), bytecodeHash, host.AddressKey(addr)}, nil)
	d.logger.Debug("Deployed contract", "deployer", sender, "address", addr, "codehash", bytecodeHash)
	return addr, nil
}

// Run serves the deployer interface.
func (d *ContractDeployer) Run(frame *host.Frame, input []byte) ([]byte, error) {
	method, args, err := abi.Decode(abi.ContractDeployerABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "create2":
		if !frame.System {
			return nil, accounts.ErrSystemCallRequired
		}
		addr, err := d.Create2(frame.Caller, args[0].([32]byte), args[1].([32]byte), args[2].([]byte), frame.Value)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(addr)
	case "getNewAddressCreate2":
		addr := Create2Address(args[0].(common.Address), args[1].([32]byte), args[2].([32]byte), args[3].([]byte))
		return method.Outputs.Pack(addr)
	}
	return nil, abi.ErrUnknownMethod
}
