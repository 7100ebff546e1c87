// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/blockchain"
	"github.com/btcsuite/mwcd/mempool"
	"github.com/btcsuite/mwcd/mining"
	"github.com/btcsuite/mwcd/wire"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// metricsNamespace prefixes every metric the server exports.
	metricsNamespace = "mwcd"

	// metricsShutdownTimeout bounds how long the metrics server may take to
	// drain its connections on shutdown.
	metricsShutdownTimeout = time.Second * 5
)

// server houses the transaction pool of a base node together with the
// services built around it.  Chain events arrive through its notifier and
// drive the pool, and block templates are refreshed from the pool in the
// background.
type server struct {
	started  int32
	shutdown int32

	cfg       *config
	chain     *blockchain.Notifier
	tip       *blockchain.TipTracker
	weight    blockchain.TransactionWeight
	txMemPool *mempool.TxPool
	tmplGen   *mining.BlkTmplGenerator

	registry      *prometheus.Registry
	metricsServer *http.Server

	tmplMtx      sync.Mutex
	template     *mining.BlockTemplate
	tmplPoolTime time.Time

	quit chan struct{}
	wg   sync.WaitGroup
}

// revalidateTx checks a transaction that lost an unconfirmed input before it
// is returned to the pool.
func revalidateTx(tx *wire.MsgTx) error {
	for i, kernel := range tx.Kernels {
		if err := kernel.Verify(); err != nil {
			return errors.Wrapf(err, "kernel %d", i)
		}
	}
	return nil
}

// handleBlockchainNotification handles notifications from blockchain.  It does
// things such as removing mined transactions from the pool and restoring the
// transactions of disconnected blocks.
func (s *server) handleBlockchainNotification(notification *blockchain.Notification) {
	switch notification.Type {
	case blockchain.NTBlockConnected:
		block, ok := notification.Data.(*wire.MsgBlock)
		if !ok {
			srvrLog.Warnf("Chain connected notification is not a block.")
			break
		}
		s.txMemPool.ProcessPublishedBlock(block)

	case blockchain.NTBlockDisconnected:
		block, ok := notification.Data.(*wire.MsgBlock)
		if !ok {
			srvrLog.Warnf("Chain disconnected notification is not a " +
				"block.")
			break
		}
		s.txMemPool.ProcessReorg([]*wire.MsgBlock{block}, nil)

	case blockchain.NTReorganization:
		data, ok := notification.Data.(*blockchain.ReorganizationNtfnsData)
		if !ok {
			srvrLog.Warnf("Chain reorganization notification has " +
				"unexpected data.")
			break
		}
		s.txMemPool.ProcessReorg(data.Removed, data.Added)
	}
}

// bestTip returns the height and hash of the current best chain tip.
func (s *server) bestTip() (uint64, chainhash.Hash) {
	best := s.tip.BestSnapshot()
	return best.Height, best.Hash
}

// refreshTemplate generates a new block template when the pool changed since
// the current one was built.  It returns whether a new template was made.
func (s *server) refreshTemplate() (bool, error) {
	s.tmplMtx.Lock()
	defer s.tmplMtx.Unlock()

	lastUpdated := s.txMemPool.LastUpdated()
	if s.template != nil && !lastUpdated.After(s.tmplPoolTime) {
		return false, nil
	}

	template, err := s.tmplGen.NewBlockTemplate()
	if err != nil {
		return false, err
	}
	s.template = template
	s.tmplPoolTime = lastUpdated
	return true, nil
}

// BlockTemplate returns the most recent block template, if any.
func (s *server) BlockTemplate() *mining.BlockTemplate {
	s.tmplMtx.Lock()
	defer s.tmplMtx.Unlock()
	return s.template
}

// templateHandler refreshes the block template on every tick of the template
// interval.  It must be run as a goroutine.
func (s *server) templateHandler() {
	ticker := time.NewTicker(s.cfg.TemplateInterval)
	defer ticker.Stop()

out:
	for {
		select {
		case <-ticker.C:
			updated, err := s.refreshTemplate()
			if err != nil {
				srvrLog.Errorf("Unable to create block template: %v",
					err)
				continue
			}
			if updated {
				stats := s.txMemPool.Stats()
				srvrLog.Debugf("Block template refreshed (%d "+
					"unconfirmed, %d reorg pool)",
					stats.UnconfirmedTxs, stats.ReorgTxs)
			}

		case <-s.quit:
			break out
		}
	}

	s.wg.Done()
	srvrLog.Tracef("Template handler done")
}

// metricsHandler serves the metrics endpoint until the server is stopped.  It
// must be run as a goroutine.
func (s *server) metricsHandler(listener net.Listener) {
	srvrLog.Infof("Metrics server listening on %s", listener.Addr())
	err := s.metricsServer.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		srvrLog.Errorf("Metrics server: %v", err)
	}
	s.wg.Done()
}

// Start begins the background services of the server.
func (s *server) Start() error {
	// Already started?
	if atomic.AddInt32(&s.started, 1) != 1 {
		return nil
	}

	srvrLog.Trace("Starting server")

	if s.cfg.MetricsListen != "" {
		listener, err := net.Listen("tcp", s.cfg.MetricsListen)
		if err != nil {
			return errors.Wrap(err, "unable to listen for metrics")
		}
		s.wg.Add(1)
		go s.metricsHandler(listener)
	}

	s.wg.Add(1)
	go s.templateHandler()
	return nil
}

// Stop gracefully shuts down the server by stopping and disconnecting all
// background services.
func (s *server) Stop() error {
	// Make sure this only happens once.
	if atomic.AddInt32(&s.shutdown, 1) != 1 {
		srvrLog.Infof("Server is already in the process of shutting down")
		return nil
	}

	srvrLog.Warnf("Server shutting down")

	if s.cfg.MetricsListen != "" {
		ctx, cancel := context.WithTimeout(context.Background(),
			metricsShutdownTimeout)
		defer cancel()
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			srvrLog.Errorf("Unable to shut down metrics server: %v", err)
		}
	}

	close(s.quit)
	return nil
}

// WaitForShutdown blocks until the background services are stopped.
func (s *server) WaitForShutdown() {
	s.wg.Wait()
}

// newServer returns a new mwcd server configured to track the chain from the
// passed best tip.
func newServer(cfg *config, best blockchain.BestState) (*server, error) {
	s := server{
		cfg:      cfg,
		chain:    new(blockchain.Notifier),
		tip:      blockchain.NewTipTracker(best),
		weight:   blockchain.DefaultTransactionWeight(),
		registry: prometheus.NewRegistry(),
		quit:     make(chan struct{}),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	txMemPool, err := mempool.New(&mempool.Config{
		Policy:     cfg.mempoolPolicy(),
		Weight:     s.weight.Calculate,
		BestHeight: s.tip.BestHeight,
		Revalidate: revalidateTx,
		Metrics:    mempool.NewMetrics(metricsNamespace, s.registry),
	})
	if err != nil {
		return nil, err
	}
	s.txMemPool = txMemPool

	miningPolicy := cfg.miningPolicy()
	s.tmplGen = mining.NewBlkTmplGenerator(&miningPolicy,
		s.weight.Calculate, s.txMemPool, s.bestTip)

	// The tip must move before the pool reacts so that restored
	// transactions are checked against the new chain.
	s.chain.Subscribe(s.tip.HandleNotification)
	s.chain.Subscribe(s.handleBlockchainNotification)

	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry,
			promhttp.HandlerOpts{}))
		s.metricsServer = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: time.Second * 10,
		}
	}

	return &s, nil
}
