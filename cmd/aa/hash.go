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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bsi-ethereum/go-aa/accounts"
	"github.com/bsi-ethereum/go-aa/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var hashCommand = &cli.Command{
	Name:  "hash",
	Usage: "Compute the hashes owners sign",
	Subcommands: []*cli.Command{
		{
			Name:      "userop",
			Usage:     "Hash a user operation for an entry point",
			ArgsUsage: "<file>",
			Action:    hashUserOp,
			Flags:     []cli.Flag{chainIDFlag, entryPointFlag},
			Description: `
Reads a user operation in bundler JSON form from file, or from standard input
when file is "-", and prints its hash together with the message hash a
standard account owner signs.`,
		},
		{
			Name:      "tx",
			Usage:     "Hash a zkSync transaction",
			ArgsUsage: "<file>",
			Action:    hashTransaction,
			Flags:     []cli.Flag{chainIDFlag},
			Description: `
Reads a transaction in JSON form from file, or from standard input when file
is "-", and prints the EIP-712 hash its owner signs together with the hash
binding the signature.`,
		},
	},
}

func readInput(ctx *cli.Context) ([]byte, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("expected exactly one input file")
	}
	if file := ctx.Args().First(); file != "-" {
		return os.ReadFile(file)
	}
	return io.ReadAll(os.Stdin)
}

func hashUserOp(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	input, err := readInput(ctx)
	if err != nil {
		return err
	}
	var op types.UserOperation
	if err := json.Unmarshal(input, &op); err != nil {
		return fmt.Errorf("invalid user operation: %w", err)
	}
	hash, err := op.Hash(cfg.Network.EntryPoint, cfg.chainID())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "userOpHash:  %s\n", hash.Hex())
	fmt.Fprintf(ctx.App.Writer, "signingHash: %s\n", common.BytesToHash(accounts.TextHash(hash.Bytes())).Hex())
	return nil
}

func hashTransaction(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	input, err := readInput(ctx)
	if err != nil {
		return err
	}
	var tx types.Transaction
	if err := json.Unmarshal(input, &tx); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	signed, err := tx.SignedHash(cfg.chainID())
	if err != nil {
		return err
	}
	hash, err := tx.Hash(cfg.chainID())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "signedHash: %s\n", signed.Hex())
	fmt.Fprintf(ctx.App.Writer, "txHash:     %s\n", hash.Hex())
	return nil
}
