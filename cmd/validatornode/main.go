// Command validatornode runs the datagram batch receiver and write stage
// described by the node's configuration file: DBR-received packets become
// entries for the write stage, which commits them to the ledger and cluster
// state. The vote responder is started when configured, but no VoteSender
// is wired, so the write stage enqueues no leader votes.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/xpz-network/validatorcore/clusterstate"
	"github.com/xpz-network/validatorcore/fincontract"
	"github.com/xpz-network/validatorcore/internal/config"
	"github.com/xpz-network/validatorcore/internal/metrics"
	"github.com/xpz-network/validatorcore/ledger"
	"github.com/xpz-network/validatorcore/recvbatch"
	"github.com/xpz-network/validatorcore/votes"
	"github.com/xpz-network/validatorcore/writestage"
)

var configFileFlag = &cli.StringFlag{
	Name:     "config",
	Usage:    "TOML configuration file",
	Required: true,
}

func main() {
	app := &cli.App{
		Name:  "validatornode",
		Usage: "run a validator node's datagram receiver and write stage",
		Flags: []cli.Flag{configFileFlag},
		Action: func(ctx *cli.Context) error {
			return run(ctx.String(configFileFlag.Name))
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error("validatornode: fatal", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
		log.Info(fmt.Sprintf(format, a...))
	})); err != nil {
		log.Warn("validatornode: maxprocs.Set failed", "err", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	self := clusterstate.Pubkey(cfg.Self)
	validators := make([]clusterstate.Pubkey, len(cfg.Validators))
	for i, v := range cfg.Validators {
		validators[i] = clusterstate.Pubkey(v)
	}
	cluster, err := clusterstate.New(self, cfg.RotationInterval, validators)
	if err != nil {
		return fmt.Errorf("validatornode: cluster state: %w", err)
	}

	var lw *ledger.Writer
	if cfg.LedgerPath == "" {
		log.Warn("validatornode: no ledger path configured, running with an in-memory ledger")
		lw, err = ledger.RecoverMemory()
	} else {
		lw, err = ledger.Recover(cfg.LedgerPath)
	}
	if err != nil {
		return fmt.Errorf("validatornode: ledger: %w", err)
	}
	defer lw.Close()

	var responder *votes.Responder
	if cfg.VoteResponderAddr != "" {
		dest, err := net.ResolveUDPAddr("udp", cfg.VoteResponderAddr)
		if err != nil {
			return fmt.Errorf("validatornode: vote responder addr: %w", err)
		}
		responder, err = votes.NewResponder(dest, cfg.VoteQueueCapacity)
		if err != nil {
			return fmt.Errorf("validatornode: vote responder: %w", err)
		}
		defer responder.Close()
		go responder.Run()
	}

	listenAddr, err := net.ResolveUDPAddr("udp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("validatornode: listen addr: %w", err)
	}
	receiver, err := recvbatch.Listen(listenAddr)
	if err != nil {
		return fmt.Errorf("validatornode: dbr listen: %w", err)
	}
	defer receiver.Close()

	m := &metrics.Counters{}
	entries := make(chan []writestage.Entry, 64)
	forward := make(chan []writestage.Entry, 64)

	go runReceiver(receiver, entries)
	go drainForward(forward)

	svc := writestage.NewService(self, cluster, lw, entries, forward, nil, responder, m, lw.Height())
	result := svc.Run()
	log.Info("validatornode: write stage terminated", "reason", result)
	return nil
}

// runReceiver pulls batches of raw datagrams off the DBR and turns each
// packet into one Entry for the write stage. Decoding a wire datagram into
// a fincontract.Transaction (signature verification, account resolution)
// belongs to the transaction-processing pipeline this binary stands in for;
// here each Entry carries no transactions and the packet payload is not
// used.
func runReceiver(r *recvbatch.Receiver, out chan<- []writestage.Entry) {
	packets := recvbatch.NewPackets(recvbatch.NumRcvMmsgs)
	for {
		n, err := r.Recv(packets)
		if err != nil && n == 0 {
			log.Warn("validatornode: dbr recv failed", "err", err)
			continue
		}
		if n == 0 {
			continue
		}
		batch := make([]writestage.Entry, n)
		for i := 0; i < n; i++ {
			batch[i] = writestage.Entry{
				Transactions: []fincontract.Transaction{},
			}
		}
		out <- batch
	}
}

// drainForward consumes the write stage's forwarded batches. A real
// deployment would hand these to a downstream replication stage; this
// binary only logs throughput.
func drainForward(in <-chan []writestage.Entry) {
	for batch := range in {
		log.Debug("validatornode: forwarded batch", "entries", len(batch))
	}
}
