// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/mwcd/blockchain"
	"github.com/btcsuite/mwcd/internal/log"
	"github.com/btcsuite/mwcd/mempool"
	"github.com/btcsuite/mwcd/mining"

	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultConfigFilename   = "mwcd.conf"
	defaultLogDirname       = "logs"
	defaultLogFilename      = "mwcd.log"
	defaultLogLevel         = "info"
	defaultTemplateInterval = time.Second * 5
)

var (
	defaultHomeDir    = mwcdHomeDir()
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

// config defines the configuration options for mwcd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion       bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile        string        `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir            string        `long:"logdir" description:"Directory to log output"`
	DebugLevel        string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	MetricsListen     string        `long:"metricslisten" description:"Serve prometheus metrics on this interface/port (eg. 127.0.0.1:9330) -- NOTE: Metrics are disabled when empty"`
	MaxPoolTxs        int           `long:"maxpooltxs" description:"Maximum number of transactions kept in the unconfirmed pool"`
	WeightTxSkipCount int           `long:"weighttxskipcount" description:"Number of transactions a block template may skip because they do not fit before selection stops"`
	ReorgPoolSize     int           `long:"reorgpoolsize" description:"Maximum number of mined transactions kept to restore after a reorganization"`
	ReorgPoolExpiry   uint64        `long:"reorgpoolexpiry" description:"Number of blocks a mined transaction stays in the reorg pool"`
	MinedKernelCache  uint          `long:"minedkernelcache" description:"Number of recently mined kernels remembered to reject replays"`
	BlockMaxWeight    uint64        `long:"blockmaxweight" description:"Maximum block weight to be used when creating a block template"`
	TemplateInterval  time.Duration `long:"templateinterval" description:"How often the block template is refreshed when the pool changes.  Valid time units are {s, m, h}.  Minimum 1 second"`
}

// mwcdHomeDir returns an OS appropriate home directory for mwcd.
func mwcdHomeDir() string {
	// Search for Windows APPDATA first.  This won't exist on POSIX OSes.
	appData := os.Getenv("APPDATA")
	if appData != "" {
		return filepath.Join(appData, "Mwcd")
	}

	// Fall back to standard HOME directory that works for most POSIX OSes.
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".mwcd")
	}

	// In the worst case, use the current directory.
	return "."
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !log.ValidLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return errors.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		log.SetLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "the specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return errors.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := log.SubsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsystems %v"
			return errors.Errorf(str, subsysID, log.SupportedSubsystems())
		}

		// Validate log level.
		if !log.ValidLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return errors.Errorf(str, logLevel)
		}

		log.SetLogLevel(subsysID, logLevel)
	}

	return nil
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// mempoolPolicy returns the mempool policy described by the configuration.
func (cfg *config) mempoolPolicy() mempool.Policy {
	return mempool.Policy{
		StorageCapacity:       cfg.MaxPoolTxs,
		WeightTxSkipCount:     cfg.WeightTxSkipCount,
		ReorgPoolCapacity:     cfg.ReorgPoolSize,
		ReorgPoolExpiryHeight: cfg.ReorgPoolExpiry,
		MinedKernelCacheSize:  cfg.MinedKernelCache,
	}
}

// miningPolicy returns the block template policy described by the
// configuration.
func (cfg *config) miningPolicy() mining.Policy {
	policy := mining.DefaultPolicy()
	policy.BlockMaxWeight = cfg.BlockMaxWeight
	return policy
}

// defaultConfig returns a config with sane settings for every option.
func defaultConfig() config {
	poolPolicy := mempool.DefaultPolicy()
	return config{
		ConfigFile:        defaultConfigFile,
		LogDir:            defaultLogDir,
		DebugLevel:        defaultLogLevel,
		MaxPoolTxs:        poolPolicy.StorageCapacity,
		WeightTxSkipCount: poolPolicy.WeightTxSkipCount,
		ReorgPoolSize:     poolPolicy.ReorgPoolCapacity,
		ReorgPoolExpiry:   poolPolicy.ReorgPoolExpiryHeight,
		MinedKernelCache:  poolPolicy.MinedKernelCacheSize,
		BlockMaxWeight:    mining.DefaultPolicy().BlockMaxWeight,
		TemplateInterval:  defaultTemplateInterval,
	}
}

// validate ensures the option values are usable, normalizing them where it
// can.
func (cfg *config) validate() error {
	if cfg.MaxPoolTxs <= 0 {
		return errors.Errorf("the maxpooltxs option must be positive "+
			"-- parsed [%d]", cfg.MaxPoolTxs)
	}
	if cfg.WeightTxSkipCount < 0 {
		return errors.Errorf("the weighttxskipcount option may not be "+
			"negative -- parsed [%d]", cfg.WeightTxSkipCount)
	}
	if cfg.ReorgPoolSize <= 0 {
		return errors.Errorf("the reorgpoolsize option must be positive "+
			"-- parsed [%d]", cfg.ReorgPoolSize)
	}
	if cfg.MinedKernelCache == 0 {
		return errors.New("the minedkernelcache option must be positive")
	}

	// The template must leave room for transactions after the coinbase.
	minWeight := uint64(mining.DefaultCoinbaseWeight + blockchain.DefaultKernelWeight)
	if cfg.BlockMaxWeight < minWeight ||
		cfg.BlockMaxWeight > blockchain.MaxBlockWeight {

		return errors.Errorf("the blockmaxweight option must be in range "+
			"%d to %d -- parsed [%d]", minWeight,
			blockchain.MaxBlockWeight, cfg.BlockMaxWeight)
	}

	if cfg.TemplateInterval < time.Second {
		return errors.Errorf("the templateinterval option may not be "+
			"less than 1s -- parsed [%v]", cfg.TemplateInterval)
	}

	if cfg.MetricsListen != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsListen); err != nil {
			return errors.Wrapf(err, "invalid metricslisten address %q",
				cfg.MetricsListen)
		}
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	return nil
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in mwcd functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.
func loadConfig(args []string) (*config, []string, error) {
	cfg := defaultConfig()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil, nil, err
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", versionString())
		os.Exit(0)
	}

	// Load additional config from file.
	parser := newConfigParser(&cfg, flags.Default)
	if preCfg.ConfigFile != defaultConfigFile || fileExists(defaultConfigFile) {
		err := flags.NewIniParser(parser).ParseFile(
			cleanAndExpandPath(preCfg.ConfigFile))
		if err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n",
					err)
				fmt.Fprintln(os.Stderr, usageMessage)
				return nil, nil, err
			}
			if preCfg.ConfigFile != defaultConfigFile {
				return nil, nil, errors.Wrap(err, "unable to open "+
					"config file")
			}
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", log.SupportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := errors.Wrap(err, "loadConfig")
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	if err := cfg.validate(); err != nil {
		err := errors.Wrap(err, "loadConfig")
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
