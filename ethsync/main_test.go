package ethsync

import (
	"os"
	"testing"

	"github.com/forge-cli/bridge-relay/logconfig"
)

func TestMain(m *testing.M) {
	logconfig.ConfigDebugLogger()
	os.Exit(m.Run())
}
