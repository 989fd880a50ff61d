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

package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/accounts/abi"
	"github.com/bsi-ethereum/go-aa/accounts/standard"
	"github.com/bsi-ethereum/go-aa/accounts/system"
	"github.com/bsi-ethereum/go-aa/contracts/entrypoint"
	"github.com/bsi-ethereum/go-aa/contracts/token"
	"github.com/bsi-ethereum/go-aa/contracts/zksync"
	"github.com/bsi-ethereum/go-aa/core/host"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/bsi-ethereum/go-aa/params"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var simulateCommand = &cli.Command{
	Action: runSimulate,
	Name:   "simulate",
	Usage:  "Deploy an account and run one token mint through it",
	Flags:  append(networkFlags, ownerKeyFlag, saltFlag),
	Description: `
The simulate command deploys an account of the configured kind on an in-memory
ledger, funds it and submits an operation minting tokens to it: a user
operation through the entry point for erc4337 accounts, a transaction through
the bootloader for zksync accounts.`,
}

var (
	tokenAddress = common.HexToAddress("0x00000000000000000000000000000000000070ce")
	beneficiary  = common.HexToAddress("0x000000000000000000000000000000000000bEEF")
)

// Gas figures of simulated operations. Gas is not metered; they only size the
// prefund and fee.
const (
	callGasLimit         = 100_000
	verificationGasLimit = 150_000
	preVerificationGas   = 21_000
	gasPerPubdataByte    = 800
)

// chain is the in-memory ledger a simulation runs on.
type chain struct {
	host        *host.Host
	entryPoint  *entrypoint.EntryPoint
	nonceHolder *zksync.NonceHolder
	deployer    *zksync.ContractDeployer
	bootloader  *zksync.Bootloader
	token       *token.Token
	manager     *accounts.Manager
}

func newChain(cfg *aaConfig) (*chain, error) {
	now := cfg.Network.Time
	if now == 0 {
		now = uint64(time.Now().Unix())
	}
	h, err := host.NewMemory(host.Config{
		ChainID:     cfg.chainID(),
		BlockNumber: 1,
		Time:        now,
	})
	if err != nil {
		return nil, err
	}
	c := &chain{
		host:        h,
		nonceHolder: zksync.NewNonceHolder(h, params.NonceHolderAddress),
		deployer:    zksync.NewContractDeployer(h, params.ContractDeployerAddress),
		bootloader:  zksync.DefaultBootloader(h),
		manager:     accounts.NewManager(),
	}
	if c.entryPoint, err = entrypoint.Deploy(h, cfg.Network.EntryPoint); err != nil {
		return nil, err
	}
	if c.token, err = token.Deploy(h, tokenAddress); err != nil {
		return nil, err
	}
	if err := h.Deploy(params.NonceHolderAddress, c.nonceHolder); err != nil {
		return nil, err
	}
	if err := h.Deploy(params.ContractDeployerAddress, c.deployer); err != nil {
		return nil, err
	}
	system.Register(h)
	c.manager.Track(h)
	return c, nil
}

// simulation is the outcome of one simulated operation.
type simulation struct {
	Account accounts.Account
	Owner   common.Address
	Hash    common.Hash
	Success bool
	Reason  string   // revert reason of a failed execution
	Fee     *big.Int // paid to the beneficiary or the bootloader
	Balance *big.Int // token balance of the account afterwards
}

func simulate(cfg *aaConfig, key *ecdsa.PrivateKey) (*simulation, error) {
	c, err := newChain(cfg)
	if err != nil {
		return nil, err
	}
	switch accounts.Kind(cfg.Network.Kind) {
	case accounts.KindStandard:
		return c.simulateStandard(cfg, key)
	case accounts.KindSystem:
		return c.simulateSystem(cfg, key)
	}
	return nil, fmt.Errorf("unknown account kind %q", cfg.Network.Kind)
}

func (c *chain) simulateStandard(cfg *aaConfig, key *ecdsa.PrivateKey) (*simulation, error) {
	owner := crypto.PubkeyToAddress(key.PublicKey)
	salt := new(big.Int).SetUint64(cfg.Account.Salt)
	factory := standard.NewFactory(c.host, params.FactoryAddress, c.entryPoint.Address())
	if err := c.host.Deploy(factory.Address(), factory); err != nil {
		return nil, err
	}
	sender := factory.GetAddress(owner, salt)
	c.host.AddBalance(sender, uint256.MustFromBig(cfg.Account.Funding))
	if cfg.Account.Deposit.Sign() > 0 {
		deposit := uint256.MustFromBig(cfg.Account.Deposit)
		c.host.AddBalance(sender, deposit)
		if err := c.entryPoint.DepositTo(sender, sender, deposit); err != nil {
			return nil, err
		}
	}

	initCode, err := factory.InitCode(owner, salt)
	if err != nil {
		return nil, err
	}
	mint, err := abi.TokenABI.Pack("mint", sender, cfg.Account.Mint)
	if err != nil {
		return nil, err
	}
	callData, err := abi.AccountABI.Pack("execute", tokenAddress, new(big.Int), mint)
	if err != nil {
		return nil, err
	}
	nonce, err := c.entryPoint.GetNonce(sender, nil)
	if err != nil {
		return nil, err
	}
	op := &types.UserOperation{
		Sender:               sender,
		Nonce:                nonce,
		InitCode:             initCode,
		CallData:             callData,
		CallGasLimit:         big.NewInt(callGasLimit),
		VerificationGasLimit: big.NewInt(verificationGasLimit),
		PreVerificationGas:   big.NewInt(preVerificationGas),
		MaxFeePerGas:         big.NewInt(params.GWei),
		MaxPriorityFeePerGas: big.NewInt(params.GWei),
	}
	if err := standard.SignUserOperation(op, c.entryPoint.Address(), c.host.ChainID(), key); err != nil {
		return nil, err
	}
	hash, err := c.entryPoint.GetUserOpHash(op)
	if err != nil {
		return nil, err
	}
	log.Info("Submitting user operation", "hash", hash, "sender", sender, "nonce", nonce)

	c.host.BeginTx(hash)
	before := c.host.GetBalance(beneficiary).ToBig()
	if err := c.entryPoint.HandleOps([]*types.UserOperation{op}, beneficiary); err != nil {
		return nil, err
	}
	logs := c.host.Logs(hash)
	c.manager.Sync(logs)

	sim := &simulation{
		Owner:   owner,
		Hash:    hash,
		Success: true,
		Fee:     new(big.Int).Sub(c.host.GetBalance(beneficiary).ToBig(), before),
		Balance: c.token.BalanceOf(sender),
	}
	revertReason := abi.EntryPointABI.Events["UserOperationRevertReason"]
	for _, l := range logs {
		if l.Address != c.entryPoint.Address() || len(l.Topics) == 0 || l.Topics[0] != revertReason.ID {
			continue
		}
		sim.Success = false
		if fields, err := revertReason.Inputs.NonIndexed().Unpack(l.Data); err == nil {
			sim.Reason = host.NewRevertError(fields[1].([]byte)).Reason()
		}
	}
	return c.finish(sim, sender)
}

func (c *chain) simulateSystem(cfg *aaConfig, key *ecdsa.PrivateKey) (*simulation, error) {
	owner := crypto.PubkeyToAddress(key.PublicKey)
	salt := common.BigToHash(new(big.Int).SetUint64(cfg.Account.Salt))
	input, err := system.ConstructorInput(owner)
	if err != nil {
		return nil, err
	}
	addr := zksync.Create2Address(owner, system.AccountCodeHash, salt, input)
	c.host.BeginTx(crypto.Keccak256Hash(addr.Bytes()))
	if _, err := c.deployer.Create2(owner, salt, system.AccountCodeHash, input, nil); err != nil {
		return nil, err
	}
	c.manager.Sync(c.host.Logs(c.host.CurrentTx()))
	c.host.AddBalance(addr, uint256.MustFromBig(cfg.Account.Funding))

	mint, err := abi.TokenABI.Pack("mint", addr, cfg.Account.Mint)
	if err != nil {
		return nil, err
	}
	nonce, err := c.nonceHolder.GetMinNonce(addr)
	if err != nil {
		return nil, err
	}
	tx := types.NewTransaction(addr, tokenAddress, nonce.Uint64(), nil, mint)
	tx.GasLimit = big.NewInt(callGasLimit + verificationGasLimit)
	tx.GasPerPubdataByteLimit = big.NewInt(gasPerPubdataByte)
	tx.MaxFeePerGas = big.NewInt(params.GWei)
	tx.MaxPriorityFeePerGas = big.NewInt(params.GWei)
	if err := system.SignTransaction(tx, c.host.ChainID(), key); err != nil {
		return nil, err
	}
	log.Info("Submitting transaction", "from", addr, "nonce", nonce)

	receipt, err := c.bootloader.ProcessTransaction(tx)
	if err != nil {
		return nil, err
	}
	c.manager.Sync(receipt.Logs)
	sim := &simulation{
		Owner:   owner,
		Hash:    receipt.TxHash,
		Success: receipt.Status == gethtypes.ReceiptStatusSuccessful,
		Fee:     receipt.Fee,
		Balance: c.token.BalanceOf(addr),
	}
	if !sim.Success {
		sim.Reason = host.NewRevertError(receipt.RevertReason).Reason()
	}
	return c.finish(sim, addr)
}

// finish attaches the descriptor of the account the manager picked up.
func (c *chain) finish(sim *simulation, addr common.Address) (*simulation, error) {
	acc, err := c.manager.Get(addr)
	if err != nil {
		return nil, fmt.Errorf("account %s was not registered: %w", addr, err)
	}
	sim.Account = acc.Account()
	return sim, nil
}

func ownerKey(cfg *aaConfig) (*ecdsa.PrivateKey, error) {
	if cfg.Account.OwnerKey == "" {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		log.Warn("Using a generated owner key", "owner", crypto.PubkeyToAddress(key.PublicKey))
		return key, nil
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Account.OwnerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid owner key: %w", err)
	}
	return key, nil
}

func runSimulate(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	key, err := ownerKey(&cfg)
	if err != nil {
		return err
	}
	sim, err := simulate(&cfg, key)
	if err != nil {
		var failed *entrypoint.FailedOpError
		if errors.As(err, &failed) {
			return fmt.Errorf("operation rejected: %s", failed.Reason)
		}
		return fmt.Errorf("operation rejected: %w", err)
	}
	printReport(os.Stdout, sim)
	return nil
}

func printReport(w io.Writer, sim *simulation) {
	bold := color.New(color.Bold).SprintFunc()
	status := color.New(color.FgGreen, color.Bold).Sprint("success")
	if !sim.Success {
		status = color.New(color.FgRed, color.Bold).Sprint("reverted")
	}
	fmt.Fprintf(w, "%s %s\n", bold("Account:"), sim.Account.URL)
	fmt.Fprintf(w, "%s   %s\n", bold("Owner:"), sim.Owner.Hex())
	fmt.Fprintf(w, "%s    %s\n", bold("Hash:"), sim.Hash.Hex())
	fmt.Fprintf(w, "%s  %s\n", bold("Status:"), status)
	if sim.Reason != "" {
		fmt.Fprintf(w, "%s  %s\n", bold("Reason:"), color.YellowString(sim.Reason))
	}
	fmt.Fprintf(w, "%s     %v wei\n", bold("Fee:"), sim.Fee)
	fmt.Fprintf(w, "%s  %v\n", bold("Tokens:"), sim.Balance)
}
