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

// Package abi holds the contract interfaces of smart accounts and their
// privileged collaborators, and helpers to encode calls against them.
package abi

import (
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

const userOperationTuple = `{"name":"%s","type":"tuple","internalType":"struct UserOperation","components":[` +
	`{"name":"sender","type":"address"},{"name":"nonce","type":"uint256"},` +
	`{"name":"initCode","type":"bytes"},{"name":"callData","type":"bytes"},` +
	`{"name":"callGasLimit","type":"uint256"},{"name":"verificationGasLimit","type":"uint256"},` +
	`{"name":"preVerificationGas","type":"uint256"},{"name":"maxFeePerGas","type":"uint256"},` +
	`{"name":"maxPriorityFeePerGas","type":"uint256"},{"name":"paymasterAndData","type":"bytes"},` +
	`{"name":"signature","type":"bytes"}]}`

const transactionTuple = `{"name":"%s","type":"tuple","internalType":"struct Transaction","components":[` +
	`{"name":"txType","type":"uint256"},{"name":"from","type":"uint256"},{"name":"to","type":"uint256"},` +
	`{"name":"gasLimit","type":"uint256"},{"name":"gasPerPubdataByteLimit","type":"uint256"},` +
	`{"name":"maxFeePerGas","type":"uint256"},{"name":"maxPriorityFeePerGas","type":"uint256"},` +
	`{"name":"paymaster","type":"uint256"},{"name":"nonce","type":"uint256"},{"name":"value","type":"uint256"},` +
	`{"name":"reserved","type":"uint256[4]"},{"name":"data","type":"bytes"},{"name":"signature","type":"bytes"},` +
	`{"name":"factoryDeps","type":"bytes32[]"},{"name":"paymasterInput","type":"bytes"},` +
	`{"name":"reservedDynamic","type":"bytes"}]}`

// tuple renders a struct parameter definition under the given name.
func tuple(def, name string) string {
	return strings.Replace(def, "%s", name, 1)
}

// Errors shared by both account variants.
const accountErrors = `
	{"type":"error","name":"UnauthorizedCaller","inputs":[{"name":"caller","type":"address"},{"name":"mode","type":"uint8"}]},
	{"type":"error","name":"NotOwner","inputs":[{"name":"caller","type":"address"}]},
	{"type":"error","name":"InvalidOwner","inputs":[{"name":"owner","type":"address"}]},
	{"type":"error","name":"InvalidSignature","inputs":[]},
	{"type":"error","name":"ArrayLengthMismatch","inputs":[]},
	{"type":"error","name":"InsufficientBalance","inputs":[{"name":"required","type":"uint256"},{"name":"actual","type":"uint256"}]},
	{"type":"error","name":"NonceMismatch","inputs":[{"name":"expected","type":"uint256"},{"name":"actual","type":"uint256"}]},
	{"type":"error","name":"FailedToPayOperator","inputs":[]},
	{"type":"error","name":"UnsupportedPaymasterFlow","inputs":[{"name":"selector","type":"bytes4"}]},
	{"type":"error","name":"SystemCallFlagRequired","inputs":[]},
	{"type":"error","name":"FailedOp","inputs":[{"name":"opIndex","type":"uint256"},{"name":"reason","type":"string"}]}`

const ownershipEvents = `
	{"type":"event","name":"OwnershipTransferred","anonymous":false,"inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"execute","stateMutability":"nonpayable","inputs":[{"name":"dest","type":"address"},{"name":"value","type":"uint256"},{"name":"func","type":"bytes"}],"outputs":[]}`

// AccountJSON is the interface of the ERC-4337 standard account.
var AccountJSON = `[` + accountErrors + `,` + ownershipEvents + `,
	{"type":"event","name":"AccountInitialized","anonymous":false,"inputs":[{"name":"entryPoint","type":"address","indexed":true},{"name":"owner","type":"address","indexed":true}]},
	{"type":"function","name":"validateUserOp","stateMutability":"nonpayable","inputs":[` + tuple(userOperationTuple, "userOp") + `,{"name":"userOpHash","type":"bytes32"},{"name":"missingAccountFunds","type":"uint256"}],"outputs":[{"name":"validationData","type":"uint256"}]},
	{"type":"function","name":"executeBatch","stateMutability":"nonpayable","inputs":[{"name":"dest","type":"address[]"},{"name":"value","type":"uint256[]"},{"name":"func","type":"bytes[]"}],"outputs":[]},
	{"type":"function","name":"entryPoint","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getNonce","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getDeposit","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"addDeposit","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"withdrawDepositTo","stateMutability":"nonpayable","inputs":[{"name":"withdrawAddress","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// SystemAccountJSON is the interface of the zkSync system account.
var SystemAccountJSON = `[` + accountErrors + `,` + ownershipEvents + `,
	{"type":"function","name":"validateTransaction","stateMutability":"payable","inputs":[{"name":"_txHash","type":"bytes32"},{"name":"_suggestedSignedHash","type":"bytes32"},` + tuple(transactionTuple, "_transaction") + `],"outputs":[{"name":"magic","type":"bytes4"}]},
	{"type":"function","name":"executeTransaction","stateMutability":"payable","inputs":[{"name":"_txHash","type":"bytes32"},{"name":"_suggestedSignedHash","type":"bytes32"},` + tuple(transactionTuple, "_transaction") + `],"outputs":[]},
	{"type":"function","name":"executeTransactionFromOutside","stateMutability":"payable","inputs":[` + tuple(transactionTuple, "_transaction") + `],"outputs":[]},
	{"type":"function","name":"payForTransaction","stateMutability":"payable","inputs":[{"name":"_txHash","type":"bytes32"},{"name":"_suggestedSignedHash","type":"bytes32"},` + tuple(transactionTuple, "_transaction") + `],"outputs":[]},
	{"type":"function","name":"prepareForPaymaster","stateMutability":"payable","inputs":[{"name":"_txHash","type":"bytes32"},{"name":"_possibleSignedHash","type":"bytes32"},` + tuple(transactionTuple, "_transaction") + `],"outputs":[]},
	{"type":"function","name":"isValidSignature","stateMutability":"view","inputs":[{"name":"_hash","type":"bytes32"},{"name":"_signature","type":"bytes"}],"outputs":[{"name":"magic","type":"bytes4"}]},
	{"type":"function","name":"bootloader","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

// EntryPointJSON is the interface of the ERC-4337 v0.6 entry point.
var EntryPointJSON = `[` + accountErrors + `,
	{"type":"event","name":"UserOperationEvent","anonymous":false,"inputs":[{"name":"userOpHash","type":"bytes32","indexed":true},{"name":"sender","type":"address","indexed":true},{"name":"paymaster","type":"address","indexed":true},{"name":"nonce","type":"uint256","indexed":false},{"name":"success","type":"bool","indexed":false},{"name":"actualGasCost","type":"uint256","indexed":false},{"name":"actualGasUsed","type":"uint256","indexed":false}]},
	{"type":"event","name":"UserOperationRevertReason","anonymous":false,"inputs":[{"name":"userOpHash","type":"bytes32","indexed":true},{"name":"sender","type":"address","indexed":true},{"name":"nonce","type":"uint256","indexed":false},{"name":"revertReason","type":"bytes","indexed":false}]},
	{"type":"event","name":"AccountDeployed","anonymous":false,"inputs":[{"name":"userOpHash","type":"bytes32","indexed":true},{"name":"sender","type":"address","indexed":true},{"name":"factory","type":"address","indexed":false},{"name":"paymaster","type":"address","indexed":false}]},
	{"type":"event","name":"Deposited","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"totalDeposit","type":"uint256","indexed":false}]},
	{"type":"event","name":"Withdrawn","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"withdrawAddress","type":"address","indexed":false},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"BeforeExecution","anonymous":false,"inputs":[]},
	{"type":"function","name":"handleOps","stateMutability":"nonpayable","inputs":[{"name":"ops","type":"tuple[]","internalType":"struct UserOperation[]","components":[` +
	`{"name":"sender","type":"address"},{"name":"nonce","type":"uint256"},{"name":"initCode","type":"bytes"},{"name":"callData","type":"bytes"},` +
	`{"name":"callGasLimit","type":"uint256"},{"name":"verificationGasLimit","type":"uint256"},{"name":"preVerificationGas","type":"uint256"},` +
	`{"name":"maxFeePerGas","type":"uint256"},{"name":"maxPriorityFeePerGas","type":"uint256"},{"name":"paymasterAndData","type":"bytes"},` +
	`{"name":"signature","type":"bytes"}]},{"name":"beneficiary","type":"address"}],"outputs":[]},
	{"type":"function","name":"getNonce","stateMutability":"view","inputs":[{"name":"sender","type":"address"},{"name":"key","type":"uint192"}],"outputs":[{"name":"nonce","type":"uint256"}]},
	{"type":"function","name":"incrementNonce","stateMutability":"nonpayable","inputs":[{"name":"key","type":"uint192"}],"outputs":[]},
	{"type":"function","name":"getUserOpHash","stateMutability":"view","inputs":[` + tuple(userOperationTuple, "userOp") + `],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"depositTo","stateMutability":"payable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"withdrawTo","stateMutability":"nonpayable","inputs":[{"name":"withdrawAddress","type":"address"},{"name":"withdrawAmount","type":"uint256"}],"outputs":[]}
]`

// FactoryJSON is the interface of the standard account factory.
var FactoryJSON = `[
	{"type":"function","name":"createAccount","stateMutability":"nonpayable","inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],"outputs":[{"name":"ret","type":"address"}]},
	{"type":"function","name":"getAddress","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],"outputs":[{"name":"","type":"address"}]}
]`

// NonceHolderJSON is the interface of the zkSync nonce holder.
var NonceHolderJSON = `[` + accountErrors + `,
	{"type":"function","name":"getMinNonce","stateMutability":"view","inputs":[{"name":"_address","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"incrementMinNonceIfEquals","stateMutability":"nonpayable","inputs":[{"name":"_expectedNonce","type":"uint256"}],"outputs":[]}
]`

// ContractDeployerJSON is the interface of the zkSync contract deployer.
var ContractDeployerJSON = `[` + accountErrors + `,
	{"type":"error","name":"UnknownCodeHash","inputs":[{"name":"bytecodeHash","type":"bytes32"}]},
	{"type":"error","name":"AddressOccupied","inputs":[{"name":"newAddress","type":"address"}]},
	{"type":"event","name":"ContractDeployed","anonymous":false,"inputs":[{"name":"deployerAddress","type":"address","indexed":true},{"name":"bytecodeHash","type":"bytes32","indexed":true},{"name":"contractAddress","type":"address","indexed":true}]},
	{"type":"function","name":"create2","stateMutability":"payable","inputs":[{"name":"_salt","type":"bytes32"},{"name":"_bytecodeHash","type":"bytes32"},{"name":"_input","type":"bytes"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getNewAddressCreate2","stateMutability":"view","inputs":[{"name":"_sender","type":"address"},{"name":"_bytecodeHash","type":"bytes32"},{"name":"_salt","type":"bytes32"},{"name":"_input","type":"bytes"}],"outputs":[{"name":"newAddress","type":"address"}]}
]`

// TokenJSON is the interface of the fungible token used in account flows.
var TokenJSON = `[
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

// PaymasterFlowJSON describes the paymaster input encodings.
var PaymasterFlowJSON = `[
	{"type":"function","name":"general","stateMutability":"nonpayable","inputs":[{"name":"input","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"approvalBased","stateMutability":"nonpayable","inputs":[{"name":"_token","type":"address"},{"name":"_minAllowance","type":"uint256"},{"name":"_innerInput","type":"bytes"}],"outputs":[]}
]`

// ErrorsJSON lists every custom error an account flow can revert with.
var ErrorsJSON = `[` + accountErrors + `]`

// Parsed interfaces.
var (
	AccountABI          = mustParse(AccountJSON)
	SystemAccountABI    = mustParse(SystemAccountJSON)
	EntryPointABI       = mustParse(EntryPointJSON)
	FactoryABI          = mustParse(FactoryJSON)
	NonceHolderABI      = mustParse(NonceHolderJSON)
	ContractDeployerABI = mustParse(ContractDeployerJSON)
	TokenABI            = mustParse(TokenJSON)
	PaymasterFlowABI    = mustParse(PaymasterFlowJSON)
	ErrorsABI           = mustParse(ErrorsJSON)
)

func mustParse(def string) ethabi.ABI {
	parsed, err := ethabi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
