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

// aa drives smart accounts on an in-memory ledger: it deploys an account,
// submits an operation through its privileged caller and reports the outcome.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	kindFlag = &cli.StringFlag{
		Name:  "kind",
		Usage: "Account variant to simulate (erc4337 or zksync)",
	}
	chainIDFlag = &cli.Uint64Flag{
		Name:  "chainid",
		Usage: "Chain ID operations are bound to",
	}
	entryPointFlag = &cli.StringFlag{
		Name:  "entrypoint",
		Usage: "Entry point address operations are bound to",
	}
	ownerKeyFlag = &cli.StringFlag{
		Name:  "ownerkey",
		Usage: "Hex encoded private key of the account owner (random if unset)",
	}
	saltFlag = &cli.Uint64Flag{
		Name:  "salt",
		Usage: "Salt of the counterfactual account address",
	}
)

var networkFlags = []cli.Flag{kindFlag, chainIDFlag, entryPointFlag}

func newApp() *cli.App {
	return &cli.App{
		Name:  "aa",
		Usage: "smart account protocol simulator",
		Flags: []cli.Flag{configFileFlag, verbosityFlag},
		Before: func(ctx *cli.Context) error {
			setupLogging(ctx.Int(verbosityFlag.Name))
			return nil
		},
		Commands: []*cli.Command{
			simulateCommand,
			hashCommand,
			dumpConfigCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
