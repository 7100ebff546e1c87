// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/mwcd/mempool"
	"github.com/btcsuite/mwcd/wire"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultNumTxs             = 500
	defaultChainPercent       = 25
	defaultDoubleSpendPercent = 5
	defaultMaxFee             = 20000
	defaultNumBlocks          = 2
	defaultFeeBuckets         = 5
	defaultLogLevel           = "warn"

	// maxMaxFee bounds the maxfee option so generated fees stay well
	// within the range of the generator and of block fee totals.
	maxMaxFee uint64 = 21e6 * wire.MicroPerCoin
)

// config defines the configuration options for poolsim.
//
// See loadConfig for details on the configuration load process.
type config struct {
	NumTxs             int    `short:"n" long:"numtxs" description:"Number of transactions to generate and submit"`
	ChainPercent       int    `long:"chainpercent" description:"Percentage of transactions that spend an unconfirmed output {0-100}"`
	DoubleSpendPercent int    `long:"doublespendpercent" description:"Percentage of transactions that spend an output already spent by another transaction {0-100}"`
	MaxFee             uint64 `long:"maxfee" description:"Maximum fee of a generated transaction in micro-units"`
	NumBlocks          int    `short:"b" long:"blocks" description:"Number of block templates to mine"`
	Reorg              bool   `long:"reorg" description:"Disconnect the last mined block and restore its transactions"`
	FeeBuckets         uint64 `long:"feebuckets" description:"Number of block sized buckets in the fee statistics"`
	MaxPoolTxs         int    `long:"maxpooltxs" description:"Maximum number of transactions kept in the unconfirmed pool"`
	Seed               int64  `long:"seed" description:"Seed of the transaction generator"`
	DebugLevel         string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

// defaultConfig returns a config with sane settings for every option.
func defaultConfig() config {
	return config{
		NumTxs:             defaultNumTxs,
		ChainPercent:       defaultChainPercent,
		DoubleSpendPercent: defaultDoubleSpendPercent,
		MaxFee:             defaultMaxFee,
		NumBlocks:          defaultNumBlocks,
		FeeBuckets:         defaultFeeBuckets,
		MaxPoolTxs:         mempool.DefaultStorageCapacity,
		Seed:               1,
		DebugLevel:         defaultLogLevel,
	}
}

// validate ensures the option values are usable.
func (cfg *config) validate() error {
	funcName := "loadConfig"
	switch {
	case cfg.NumTxs <= 0:
		return fmt.Errorf("%s: the numtxs option must be positive -- "+
			"parsed [%d]", funcName, cfg.NumTxs)

	case cfg.ChainPercent < 0 || cfg.ChainPercent > 100:
		return fmt.Errorf("%s: the chainpercent option must be in range "+
			"0 to 100 -- parsed [%d]", funcName, cfg.ChainPercent)

	case cfg.DoubleSpendPercent < 0 || cfg.DoubleSpendPercent > 100:
		return fmt.Errorf("%s: the doublespendpercent option must be in "+
			"range 0 to 100 -- parsed [%d]", funcName,
			cfg.DoubleSpendPercent)

	case cfg.MaxFee == 0 || cfg.MaxFee > maxMaxFee:
		return fmt.Errorf("%s: the maxfee option must be in range 1 to "+
			"%d -- parsed [%d]", funcName, maxMaxFee, cfg.MaxFee)

	case cfg.NumBlocks < 0:
		return fmt.Errorf("%s: the blocks option may not be negative -- "+
			"parsed [%d]", funcName, cfg.NumBlocks)

	case cfg.Reorg && cfg.NumBlocks == 0:
		return fmt.Errorf("%s: the reorg option requires at least one "+
			"block", funcName)

	case cfg.MaxPoolTxs <= 0:
		return fmt.Errorf("%s: the maxpooltxs option must be positive -- "+
			"parsed [%d]", funcName, cfg.MaxPoolTxs)
	}

	if _, ok := btclog.LevelFromString(cfg.DebugLevel); !ok {
		return fmt.Errorf("%s: the specified debug level [%v] is invalid",
			funcName, cfg.DebugLevel)
	}
	return nil
}

// loadConfig initializes and parses the config using command line options.
func loadConfig(args []string) (*config, []string, error) {
	cfg := defaultConfig()

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
