// Simulated destination side of the bridge: receives decoded lock events,
// validates against an external quote, and records a simulated mint in the
// durable mint ledger. Real signing/broadcast would slot in behind the same
// contract.

package processor

import (
	"context"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/forge-cli/bridge-relay/common"
	"github.com/forge-cli/bridge-relay/etherman"
	"github.com/forge-cli/bridge-relay/state"
	logger "github.com/sirupsen/logrus"
)

// MintLedger is the durable per-nonce record the minter uses for
// idempotency. state.StateDB satisfies it.
type MintLedger interface {
	GetMint(nonce *big.Int) (*state.MintRecord, bool, error)
	InsertPendingMint(m *state.MintRecord) error
	MarkMinted(nonce *big.Int, simTxID ethcommon.Hash) error
}

// DestinationLedger is the read-only view of the destination chain the
// minter consults before submitting. etherman.Etherman satisfies it.
type DestinationLedger interface {
	GetHead(ctx context.Context) (uint64, error)
}

// SimulatedMinter implements the scanner's Processor contract. Process is
// idempotent keyed on the event nonce: redelivery of an already-minted
// transfer is acknowledged without a second mint.
type SimulatedMinter struct {
	mintdb MintLedger
	dest   DestinationLedger
	price  PriceSource
}

func NewSimulatedMinter(mintdb MintLedger, dest DestinationLedger, price PriceSource) *SimulatedMinter {
	return &SimulatedMinter{
		mintdb: mintdb,
		dest:   dest,
		price:  price,
	}
}

func (p *SimulatedMinter) Process(ctx context.Context, ev *etherman.BridgeEvent) error {
	rec, found, err := p.mintdb.GetMint(ev.Nonce)
	if err != nil {
		return fmt.Errorf("mint ledger lookup failed: %w", err)
	}

	if found && rec.Status == state.MintStatusMinted {
		logger.WithFields(logger.Fields{
			"nonce": ev.Nonce,
			"tx":    ev.SourceTxHash,
		}).Info("nonce already minted, skipping redelivery")
		return nil
	}

	// External validation step. A failed lookup rejects the event; the
	// scanner retries the whole window next cycle.
	ethPrice, err := p.price.EthUSD(ctx)
	if err != nil {
		return fmt.Errorf("external validation failed: %w", err)
	}
	logger.WithField("ethUsd", ethPrice).Debug("external check passed")

	// The destination chain must be answering before anything is recorded;
	// an unreachable destination rejects the event and the scanner retries
	// the window next cycle.
	destHead, err := p.dest.GetHead(ctx)
	if err != nil {
		return fmt.Errorf("destination chain unreachable: %w", err)
	}

	if !found {
		pending := &state.MintRecord{
			Nonce:       ev.Nonce,
			LockTxHash:  ev.SourceTxHash,
			Sender:      ev.Sender,
			Amount:      ev.Amount,
			DestChainID: ev.DestinationChainID,
			Status:      state.MintStatusPending,
		}
		if err := p.mintdb.InsertPendingMint(pending); err != nil {
			return fmt.Errorf("cannot record pending mint: %w", err)
		}
	}

	// Simulated destination action. A real minter would build, sign and
	// broadcast the mint transaction here and wait for its receipt.
	simTxID := common.RandEthHash()
	logger.WithFields(logger.Fields{
		"nonce":       ev.Nonce,
		"receiver":    ev.Sender,
		"amount":      ev.Amount,
		"destChainId": ev.DestinationChainID,
		"destHead":    destHead,
		"sourceTx":    ev.SourceTxHash,
		"simTx":       simTxID,
	}).Info("simulated mint submitted")

	if err := p.mintdb.MarkMinted(ev.Nonce, simTxID); err != nil {
		return fmt.Errorf("cannot complete mint for nonce %v: %w", ev.Nonce, err)
	}

	return nil
}
