package reporter

import (
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forge-cli/bridge-relay/common"
	"github.com/forge-cli/bridge-relay/state"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReporter(t *testing.T) (*HttpReporter, *state.StateDB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := state.OpenDB(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.NewStateDB(db)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	return NewHttpReporter("127.0.0.1", "0", st), st
}

func get(t *testing.T, router *gin.Engine, route string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, route, nil)
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String()
}

func TestHelloRoute(t *testing.T) {
	h, _ := newTestReporter(t)
	code, body := get(t, h.SetupRouter(), ROUTE_HELLO)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"world"}`, body)
}

func TestCheckpointRoute(t *testing.T) {
	h, st := newTestReporter(t)
	router := h.SetupRouter()

	code, _ := get(t, router, ROUTE_CHECKPOINT)
	assert.Equal(t, http.StatusNotFound, code)

	require.NoError(t, st.SaveCheckpoint(994))
	code, body := get(t, router, ROUTE_CHECKPOINT)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"lastScannedBlock":994}`, body)
}

func TestMintRoute(t *testing.T) {
	h, st := newTestReporter(t)
	router := h.SetupRouter()

	code, _ := get(t, router, ROUTE_MINT)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = get(t, router, ROUTE_MINT+"?nonce=42")
	assert.Equal(t, http.StatusNotFound, code)

	m := &state.MintRecord{
		Nonce:       big.NewInt(42),
		LockTxHash:  common.RandEthHash(),
		Sender:      common.RandEthAddress(),
		Amount:      big.NewInt(500),
		DestChainID: big.NewInt(137),
		Status:      state.MintStatusPending,
	}
	require.NoError(t, st.InsertPendingMint(m))

	code, body := get(t, router, ROUTE_MINT+"?nonce=42")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"pending"`)
	assert.Contains(t, body, `"42"`)
	assert.NotContains(t, body, "simTxId", "pending rows have no sim tx yet")

	code, body = get(t, router, ROUTE_MINT+"?status=pending")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"42"`)

	simTx := common.RandEthHash()
	require.NoError(t, st.MarkMinted(m.Nonce, simTx))

	code, body = get(t, router, ROUTE_MINT+"?nonce=42")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"minted"`)
	assert.Contains(t, body, simTx.String())
}

func TestHttpReader(t *testing.T) {
	h, st := newTestReporter(t)
	require.NoError(t, st.SaveCheckpoint(994))

	srv := httptest.NewServer(h.SetupRouter())
	defer srv.Close()

	ip, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	reader := NewHttpReader(ip, port)

	body, err := reader.GetHello()
	require.NoError(t, err)
	assert.Contains(t, body, "world")

	body, err = reader.GetCheckpoint()
	require.NoError(t, err)
	assert.Contains(t, body, "994")
}
