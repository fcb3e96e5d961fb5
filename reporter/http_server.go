// This is a http type of reporter.
// It fetches data from the relay's state db
// and publishes on the http routes.

package reporter

import (
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forge-cli/bridge-relay/state"
)

const (
	ROUTE_HELLO      = "/hello"
	ROUTE_CHECKPOINT = "/checkpoint"
	ROUTE_MINT       = "/mint"
)

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream data source
	statedb *state.StateDB
}

func NewHttpReporter(serverIP string, serverPort string, statedb *state.StateDB) *HttpReporter {
	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		statedb:    statedb,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_CHECKPOINT, h.Checkpoint)
	router.GET(ROUTE_MINT, h.Mint)

	return router
}

// Hook up router & ip:port
func (h *HttpReporter) Run() {
	router := h.SetupRouter()
	address := h.serverIP + ":" + h.serverPort
	if err := router.Run(address); err != nil {
		panic(err)
	}
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

// Publishes the last fully scanned block number.
func (h *HttpReporter) Checkpoint(c *gin.Context) {
	checkpoint, ok, err := h.statedb.LoadCheckpoint()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No checkpoint yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastScannedBlock": checkpoint})
}

// Publishes mint ledger rows: a single transfer by ?nonce=, or all rows in
// a status by ?status=.
func (h *HttpReporter) Mint(c *gin.Context) {
	nonceStr := c.Query("nonce")
	status := c.Query("status")

	if nonceStr == "" && status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either nonce or status must be provided"})
		return
	}

	if nonceStr != "" {
		nonce, ok := new(big.Int).SetString(nonceStr, 10)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nonce"})
			return
		}
		rec, found, err := h.statedb.GetMint(nonce)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "No mint found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": mintView(rec)})
		return
	}

	recs, err := h.statedb.GetMintsByStatus(state.MintStatus(status))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		views = append(views, mintView(rec))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func mintView(m *state.MintRecord) gin.H {
	view := gin.H{
		"nonce":       m.Nonce.Text(10),
		"lockTxHash":  m.LockTxHash.String(),
		"sender":      m.Sender.String(),
		"amount":      m.Amount.Text(10),
		"destChainId": m.DestChainID.Text(10),
		"status":      string(m.Status),
	}
	// The column is NULL until the mint completes; don't render a zero hash.
	if m.Status == state.MintStatusMinted {
		view["simTxId"] = m.SimTxID.String()
	}
	return view
}
