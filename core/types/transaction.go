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

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ErrUnsupportedTxType is returned when hashing a transaction of unknown type.
var ErrUnsupportedTxType = errors.New("unsupported transaction type")

// Transaction is the transaction shape the zkSync bootloader hands to accounts.
// Addresses are carried as uint256 words, as on chain.
type Transaction struct {
	TxType                 *big.Int
	From                   *big.Int
	To                     *big.Int
	GasLimit               *big.Int
	GasPerPubdataByteLimit *big.Int
	MaxFeePerGas           *big.Int
	MaxPriorityFeePerGas   *big.Int
	Paymaster              *big.Int
	Nonce                  *big.Int
	Value                  *big.Int
	Reserved               [4]*big.Int
	Data                   []byte
	Signature              []byte
	FactoryDeps            [][32]byte
	PaymasterInput         []byte
	ReservedDynamic        []byte
}

// NewTransaction creates an EIP-712 typed transaction with zero fee fields.
func NewTransaction(from, to common.Address, nonce uint64, value *big.Int, data []byte) *Transaction {
	tx := &Transaction{
		TxType: big.NewInt(params.EIP712TxType),
		From:   AddressToWord(from),
		To:     AddressToWord(to),
		Nonce:  new(big.Int).SetUint64(nonce),
		Value:  value,
		Data:   data,
	}
	return tx.WithDefaults()
}

// AddressToWord widens an address to the uint256 form used in Transaction.
func AddressToWord(addr common.Address) *big.Int {
	return new(big.Int).SetBytes(addr.Bytes())
}

// FromAddress returns the sending account.
func (tx *Transaction) FromAddress() common.Address { return common.BigToAddress(bigOrZero(tx.From)) }

// ToAddress returns the call target.
func (tx *Transaction) ToAddress() common.Address { return common.BigToAddress(bigOrZero(tx.To)) }

// PaymasterAddress returns the paymaster, the zero address meaning none.
func (tx *Transaction) PaymasterAddress() common.Address {
	return common.BigToAddress(bigOrZero(tx.Paymaster))
}

// Fee is the most the operator can charge: maxFeePerGas * gasLimit.
func (tx *Transaction) Fee() *big.Int {
	return new(big.Int).Mul(bigOrZero(tx.MaxFeePerGas), bigOrZero(tx.GasLimit))
}

// TotalRequiredBalance is the balance the account must hold for the
// transaction to be processable. A paymaster covers the fee, leaving only the
// value to be funded by the account itself.
func (tx *Transaction) TotalRequiredBalance() *big.Int {
	if tx.PaymasterAddress() != (common.Address{}) {
		return new(big.Int).Set(bigOrZero(tx.Value))
	}
	return new(big.Int).Add(tx.Fee(), bigOrZero(tx.Value))
}

// WithDefaults returns a copy with every nil numeric field set to zero, which
// the ABI encoder requires.
func (tx *Transaction) WithDefaults() *Transaction {
	cpy := &Transaction{
		TxType:                 copyOrZero(tx.TxType),
		From:                   copyOrZero(tx.From),
		To:                     copyOrZero(tx.To),
		GasLimit:               copyOrZero(tx.GasLimit),
		GasPerPubdataByteLimit: copyOrZero(tx.GasPerPubdataByteLimit),
		MaxFeePerGas:           copyOrZero(tx.MaxFeePerGas),
		MaxPriorityFeePerGas:   copyOrZero(tx.MaxPriorityFeePerGas),
		Paymaster:              copyOrZero(tx.Paymaster),
		Nonce:                  copyOrZero(tx.Nonce),
		Value:                  copyOrZero(tx.Value),
		Data:                   common.CopyBytes(tx.Data),
		Signature:              common.CopyBytes(tx.Signature),
		PaymasterInput:         common.CopyBytes(tx.PaymasterInput),
		ReservedDynamic:        common.CopyBytes(tx.ReservedDynamic),
	}
	for i := range tx.Reserved {
		cpy.Reserved[i] = copyOrZero(tx.Reserved[i])
	}
	if tx.FactoryDeps != nil {
		cpy.FactoryDeps = make([][32]byte, len(tx.FactoryDeps))
		copy(cpy.FactoryDeps, tx.FactoryDeps)
	}
	if cpy.Data == nil {
		cpy.Data = []byte{}
	}
	if cpy.Signature == nil {
		cpy.Signature = []byte{}
	}
	if cpy.FactoryDeps == nil {
		cpy.FactoryDeps = [][32]byte{}
	}
	if cpy.PaymasterInput == nil {
		cpy.PaymasterInput = []byte{}
	}
	if cpy.ReservedDynamic == nil {
		cpy.ReservedDynamic = []byte{}
	}
	return cpy
}

var eip712TxTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	"Transaction": {
		{Name: "txType", Type: "uint256"},
		{Name: "from", Type: "uint256"},
		{Name: "to", Type: "uint256"},
		{Name: "gasLimit", Type: "uint256"},
		{Name: "gasPerPubdataByteLimit", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "paymaster", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
		{Name: "factoryDeps", Type: "bytes32[]"},
		{Name: "paymasterInput", Type: "bytes"},
	},
}

// SignedHash returns the hash the owner signs for this transaction on the
// given chain. EIP-712 typed transactions use the zkSync typed-data domain,
// Ethereum transaction types use their regular signing hash.
func (tx *Transaction) SignedHash(chainID *big.Int) (common.Hash, error) {
	tx = tx.WithDefaults()
	switch tx.TxType.Uint64() {
	case params.EIP712TxType:
		return tx.eip712Hash(chainID)
	case gethtypes.LegacyTxType, gethtypes.AccessListTxType, gethtypes.DynamicFeeTxType:
		return tx.ethereumHash(chainID)
	default:
		return common.Hash{}, fmt.Errorf("%w: %d", ErrUnsupportedTxType, tx.TxType)
	}
}

func (tx *Transaction) eip712Hash(chainID *big.Int) (common.Hash, error) {
	deps := make([]interface{}, len(tx.FactoryDeps))
	for i, dep := range tx.FactoryDeps {
		deps[i] = common.CopyBytes(dep[:])
	}
	typed := apitypes.TypedData{
		Types:       eip712TxTypes,
		PrimaryType: "Transaction",
		Domain: apitypes.TypedDataDomain{
			Name:    params.ZkSyncDomainName,
			Version: params.ZkSyncDomainVersion,
			ChainId: (*math.HexOrDecimal256)(bigOrZero(chainID)),
		},
		Message: apitypes.TypedDataMessage{
			"txType":                 tx.TxType,
			"from":                   tx.From,
			"to":                     tx.To,
			"gasLimit":               tx.GasLimit,
			"gasPerPubdataByteLimit": tx.GasPerPubdataByteLimit,
			"maxFeePerGas":           tx.MaxFeePerGas,
			"maxPriorityFeePerGas":   tx.MaxPriorityFeePerGas,
			"paymaster":              tx.Paymaster,
			"nonce":                  tx.Nonce,
			"value":                  tx.Value,
			"data":                   tx.Data,
			"factoryDeps":            deps,
			"paymasterInput":         tx.PaymasterInput,
		},
	}
	hash, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(hash), nil
}

func (tx *Transaction) ethereumHash(chainID *big.Int) (common.Hash, error) {
	if !tx.Nonce.IsUint64() || !tx.GasLimit.IsUint64() {
		return common.Hash{}, errors.New("nonce or gas limit exceeds 64 bits")
	}
	to := tx.ToAddress()
	var inner gethtypes.TxData
	switch tx.TxType.Uint64() {
	case gethtypes.LegacyTxType:
		inner = &gethtypes.LegacyTx{
			Nonce: tx.Nonce.Uint64(), GasPrice: tx.MaxFeePerGas, Gas: tx.GasLimit.Uint64(),
			To: &to, Value: tx.Value, Data: tx.Data,
		}
		// reserved[0] marks an EIP-155 replay protected legacy transaction
		if tx.Reserved[0].Sign() == 0 {
			return gethtypes.HomesteadSigner{}.Hash(gethtypes.NewTx(inner)), nil
		}
	case gethtypes.AccessListTxType:
		inner = &gethtypes.AccessListTx{
			ChainID: chainID, Nonce: tx.Nonce.Uint64(), GasPrice: tx.MaxFeePerGas,
			Gas: tx.GasLimit.Uint64(), To: &to, Value: tx.Value, Data: tx.Data,
		}
	default:
		inner = &gethtypes.DynamicFeeTx{
			ChainID: chainID, Nonce: tx.Nonce.Uint64(), GasTipCap: tx.MaxPriorityFeePerGas,
			GasFeeCap: tx.MaxFeePerGas, Gas: tx.GasLimit.Uint64(), To: &to, Value: tx.Value, Data: tx.Data,
		}
	}
	return gethtypes.LatestSignerForChainID(chainID).Hash(gethtypes.NewTx(inner)), nil
}

// Hash is the identifier the bootloader tracks the transaction by. It binds
// the signed hash to the exact signature bytes.
func (tx *Transaction) Hash(chainID *big.Int) (common.Hash, error) {
	signed, err := tx.SignedHash(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(signed[:], crypto.Keccak256(tx.Signature)), nil
}

type transactionJSON struct {
	TxType                 *hexutil.Big    `json:"txType"`
	From                   *common.Address `json:"from"`
	To                     *common.Address `json:"to"`
	GasLimit               *hexutil.Big    `json:"gasLimit"`
	GasPerPubdataByteLimit *hexutil.Big    `json:"gasPerPubdataByteLimit"`
	MaxFeePerGas           *hexutil.Big    `json:"maxFeePerGas"`
	MaxPriorityFeePerGas   *hexutil.Big    `json:"maxPriorityFeePerGas"`
	Paymaster              *common.Address `json:"paymaster,omitempty"`
	Nonce                  *hexutil.Big    `json:"nonce"`
	Value                  *hexutil.Big    `json:"value"`
	Data                   hexutil.Bytes   `json:"data"`
	Signature              hexutil.Bytes   `json:"signature"`
	FactoryDeps            []common.Hash   `json:"factoryDeps,omitempty"`
	PaymasterInput         hexutil.Bytes   `json:"paymasterInput,omitempty"`
}

// MarshalJSON encodes the transaction with addresses in their 20 byte form.
func (tx Transaction) MarshalJSON() ([]byte, error) {
	d := tx.WithDefaults()
	enc := transactionJSON{
		TxType:                 (*hexutil.Big)(d.TxType),
		GasLimit:               (*hexutil.Big)(d.GasLimit),
		GasPerPubdataByteLimit: (*hexutil.Big)(d.GasPerPubdataByteLimit),
		MaxFeePerGas:           (*hexutil.Big)(d.MaxFeePerGas),
		MaxPriorityFeePerGas:   (*hexutil.Big)(d.MaxPriorityFeePerGas),
		Nonce:                  (*hexutil.Big)(d.Nonce),
		Value:                  (*hexutil.Big)(d.Value),
		Data:                   d.Data,
		Signature:              d.Signature,
		PaymasterInput:         d.PaymasterInput,
	}
	from, to := d.FromAddress(), d.ToAddress()
	enc.From, enc.To = &from, &to
	if pm := d.PaymasterAddress(); pm != (common.Address{}) {
		enc.Paymaster = &pm
	}
	for _, dep := range d.FactoryDeps {
		enc.FactoryDeps = append(enc.FactoryDeps, common.Hash(dep))
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON decodes a transaction. The sender and target are required.
func (tx *Transaction) UnmarshalJSON(input []byte) error {
	var dec transactionJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.From == nil {
		return errors.New("missing required field 'from' for Transaction")
	}
	if dec.To == nil {
		return errors.New("missing required field 'to' for Transaction")
	}
	out := Transaction{
		TxType:                 (*big.Int)(dec.TxType),
		From:                   AddressToWord(*dec.From),
		To:                     AddressToWord(*dec.To),
		GasLimit:               (*big.Int)(dec.GasLimit),
		GasPerPubdataByteLimit: (*big.Int)(dec.GasPerPubdataByteLimit),
		MaxFeePerGas:           (*big.Int)(dec.MaxFeePerGas),
		MaxPriorityFeePerGas:   (*big.Int)(dec.MaxPriorityFeePerGas),
		Nonce:                  (*big.Int)(dec.Nonce),
		Value:                  (*big.Int)(dec.Value),
		Data:                   dec.Data,
		Signature:              dec.Signature,
		PaymasterInput:         dec.PaymasterInput,
	}
	if out.TxType == nil {
		out.TxType = big.NewInt(params.EIP712TxType)
	}
	if dec.Paymaster != nil {
		out.Paymaster = AddressToWord(*dec.Paymaster)
	}
	for _, dep := range dec.FactoryDeps {
		out.FactoryDeps = append(out.FactoryDeps, dep)
	}
	*tx = *out.WithDefaults()
	return nil
}

func copyOrZero(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b)
}
