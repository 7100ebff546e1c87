// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/btcsuite/mwcd/blockchain"
	"github.com/btcsuite/mwcd/internal/log"
	"github.com/btcsuite/mwcd/internal/version"
)

// versionString returns the version of the running binary.
func versionString() string {
	return version.String()
}

// mwcdMain is the real main function for mwcd.  It is necessary to work around
// the fact that deferred functions do not run when os.Exit() is called.
func mwcdMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	cfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	log.InitLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	defer func() {
		if log.LogRotator != nil {
			log.LogRotator.Close()
		}
	}()

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem.
	interrupt := interruptListener()
	defer mwcdLog.Info("Shutdown complete")

	// Show version at startup.
	mwcdLog.Infof("Version %s", versionString())

	// Return now if an interrupt signal was triggered.
	if interruptRequested(interrupt) {
		return nil
	}

	// The pool tracks the chain from genesis until the first block is
	// connected.
	server, err := newServer(cfg, blockchain.BestState{})
	if err != nil {
		mwcdLog.Errorf("Unable to create server: %v", err)
		return err
	}
	defer func() {
		mwcdLog.Infof("Gracefully shutting down the server...")
		server.Stop()
		server.WaitForShutdown()
		srvrLog.Infof("Server shutdown complete")
	}()
	if err := server.Start(); err != nil {
		mwcdLog.Errorf("Unable to start server: %v", err)
		return err
	}

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems.
	<-interrupt
	return nil
}

func main() {
	// Block and transaction processing can cause bursty allocations.  This
	// limits the garbage collector from excessively overallocating during
	// bursts.
	debug.SetGCPercent(20)

	// Work around defer not working after os.Exit()
	if err := mwcdMain(); err != nil {
		os.Exit(1)
	}
}
