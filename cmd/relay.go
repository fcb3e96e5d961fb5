// Relay server = source-side scanner + destination-side simulated minter
// + db/state + http reporter.
// All components are configured via a config file / environment (strings!).

package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"github.com/forge-cli/bridge-relay/etherman"
	"github.com/forge-cli/bridge-relay/ethsync"
	"github.com/forge-cli/bridge-relay/processor"
	"github.com/forge-cli/bridge-relay/reporter"
	"github.com/forge-cli/bridge-relay/state"
)

// Default params for the relay.
// More often we don't recommend users to tweak those.
// So we list them here.
const (
	// rpc retry config
	rpcRequestTimeout  = 10 * time.Second
	rpcRetryAttempts   = 3
	rpcInitialInterval = 500 * time.Millisecond
	rpcMaxInterval     = 8 * time.Second
)

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type RelayServerConfig struct {
	// source chain side
	SourceRpcUrl       string // json rpc url of the source chain node
	BridgeContractAddr string // bridge contract address (hex)
	Confirmations      uint64 // blocks a lock event must be buried under
	MaxRangeSize       uint64 // widest single log query
	PollIntervalSec    uint64 // seconds between scan cycles

	// state side
	DbFilePath string // db file path

	// destination side (simulated)
	DestRpcUrl  string // json rpc url of the destination chain node
	PriceApiUrl string // external validation quote endpoint

	// Http side
	HttpIp   string // eg. 0.0.0.0
	HttpPort string // eg. 8080
}

// RelayServer holds the objects that consist of the relay.
type RelayServer struct {
	MyEtherman     *etherman.Etherman
	MyDestEtherman *etherman.Etherman
	MyStateDb      *state.StateDB
	MyMinter       *processor.SimulatedMinter
	MyScanner      *ethsync.Scanner
	MyReporter     *reporter.HttpReporter
}

// NewRelayServer creates a new relay server.
// ctx is the parental context that cancels the relay's loops.
// wg waits for the goroutines inside the server (scanner) to finish.
func NewRelayServer(rsc *RelayServerConfig, ctx context.Context, wg *sync.WaitGroup) (*RelayServer, error) {
	// 1) Ledger client over the source chain.
	myEtherman, err := etherman.NewEtherman(&etherman.Config{
		URL:                   rsc.SourceRpcUrl,
		BridgeContractAddress: ethcommon.HexToAddress(rsc.BridgeContractAddr),
		RequestTimeout:        rpcRequestTimeout,
		Retry: etherman.RetryConfig{
			MaxAttempts:     rpcRetryAttempts,
			InitialInterval: rpcInitialInterval,
			MaxInterval:     rpcMaxInterval,
		},
	})
	if err != nil {
		logger.Fatalf("failed to create etherman: %v", err)
		return nil, err
	}

	// 2) Ledger client over the destination chain (read-only: the mint
	// itself is simulated). Check it answers before going live.
	myDestEtherman, err := etherman.NewEtherman(&etherman.Config{
		URL:            rsc.DestRpcUrl,
		RequestTimeout: rpcRequestTimeout,
		Retry: etherman.RetryConfig{
			MaxAttempts:     rpcRetryAttempts,
			InitialInterval: rpcInitialInterval,
			MaxInterval:     rpcMaxInterval,
		},
	})
	if err != nil {
		logger.Fatalf("failed to create destination etherman: %v", err)
		return nil, err
	}

	destHead, err := myDestEtherman.GetHead(ctx)
	if err != nil {
		logger.Fatalf("destination chain unreachable: %v", err)
		return nil, err
	}
	logger.WithField("destHead", destHead).Info("destination chain reachable")

	// 3) Create sql db and the state db over it.
	sqldb, err := state.OpenDB(rsc.DbFilePath)
	if err != nil {
		logger.Fatalf("failed to open db file: %v", err)
		return nil, err
	}

	myStateDb, err := state.NewStateDB(sqldb)
	if err != nil {
		logger.Fatalf("failed to create state db: %v", err)
		return nil, err
	}

	// 4) Simulated destination minter with the external price check.
	myMinter := processor.NewSimulatedMinter(
		myStateDb,
		myDestEtherman,
		processor.NewGeckoPriceSource(rsc.PriceApiUrl),
	)

	// 5) The scanner over ledger + decoder + checkpoint + minter.
	myScanner, err := ethsync.New(
		myEtherman,
		etherman.NewEventDecoder(myEtherman.BridgeAddress()),
		myStateDb,
		myMinter,
		&ethsync.Config{
			PollInterval:  time.Duration(rsc.PollIntervalSec) * time.Second,
			Confirmations: rsc.Confirmations,
			MaxRangeSize:  rsc.MaxRangeSize,
		},
	)
	if err != nil {
		logger.Fatalf("failed to create scanner: %v", err)
		return nil, err
	}

	// Important: turn on the scan loop!
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := myScanner.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Fatalf("scan loop stopped: %v", err)
		}
	}()
	// Don't forget to call wg.Wait() in the main routine.

	// 6) Http reporter over the state db.
	myReporter := reporter.NewHttpReporter(rsc.HttpIp, rsc.HttpPort, myStateDb)
	go myReporter.Run()

	return &RelayServer{
		MyEtherman:     myEtherman,
		MyDestEtherman: myDestEtherman,
		MyStateDb:      myStateDb,
		MyMinter:       myMinter,
		MyScanner:      myScanner,
		MyReporter:     myReporter,
	}, nil
}

// StartRelayServerAndWait starts the relay and blocks until SIGINT/SIGTERM.
func StartRelayServerAndWait(rsc *RelayServerConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	server, err := NewRelayServer(rsc, ctx, &wg)
	if err != nil {
		logger.Fatalf("failed to start relay server: %v", err)
		return
	}
	defer server.MyStateDb.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.WithField("signal", sig.String()).Info("shutting down relay server")

	cancel()
	wg.Wait()
}
