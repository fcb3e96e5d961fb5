package etherman

import (
	"os"
	"testing"

	"github.com/forge-cli/bridge-relay/logconfig"
)

// The retry tests produce warn lines on purpose; the info preset keeps them
// readable without caller annotations.
func TestMain(m *testing.M) {
	logconfig.ConfigInfoLogger()
	os.Exit(m.Run())
}
