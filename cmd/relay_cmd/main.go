package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/forge-cli/bridge-relay/cmd"
	"github.com/forge-cli/bridge-relay/logconfig"
)

const (
	ENV_CONFIG_FILE_PATH = "RELAY_CONFIG"

	defaultConfirmations   = 6
	defaultMaxRangeSize    = 1000
	defaultPollIntervalSec = 15
)

func main() {
	logconfig.ConfigProductionLogger()

	// Tool to read environment variables
	viper.AutomaticEnv()

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	fmt.Printf("Relay server configuration file = %s\n", _config_file)

	// See if file exists
	if !cmd.FileExists(_config_file) {
		fmt.Printf("Relay server configuration file not found: %s\n", _config_file)
		return
	}

	// Read from config file.
	if !initializeViper(_config_file) {
		return
	}

	// Make the configuration
	rsc := PrepareRelayServerConfig()
	if rsc == nil {
		fmt.Printf("Error loading relay server configuration\n")
		return
	}

	fmt.Println("Starting relay server... press Ctrl+C to kill the server")
	// Start server and block.
	cmd.StartRelayServerAndWait(rsc)
}

func initializeViper(filePath string) bool {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Error reading configuration file, %s", err)
		return false
	}
	return true
}

// PrepareRelayServerConfig reads configuration variables and returns a
// RelayServerConfig. Presence/shape validation happens here, outside the
// relay core.
func PrepareRelayServerConfig() *cmd.RelayServerConfig {
	sourceRpcUrl := viper.GetString("SOURCE_RPC_URL")
	destRpcUrl := viper.GetString("DEST_RPC_URL")
	bridgeAddr := viper.GetString("BRIDGE_CONTRACT_ADDR")
	dbFilePath := viper.GetString("DB_FILE_PATH")
	if sourceRpcUrl == "" || destRpcUrl == "" || bridgeAddr == "" || dbFilePath == "" {
		fmt.Printf("SOURCE_RPC_URL, DEST_RPC_URL, BRIDGE_CONTRACT_ADDR and DB_FILE_PATH are required\n")
		return nil
	}

	confirmations := viper.GetUint64("CONFIRMATIONS_REQUIRED")
	if confirmations == 0 {
		confirmations = defaultConfirmations
	}
	maxRangeSize := viper.GetUint64("MAX_RANGE_SIZE")
	if maxRangeSize == 0 {
		maxRangeSize = defaultMaxRangeSize
	}
	pollIntervalSec := viper.GetUint64("POLL_INTERVAL_SECONDS")
	if pollIntervalSec == 0 {
		pollIntervalSec = defaultPollIntervalSec
	}

	return &cmd.RelayServerConfig{
		// source chain side
		SourceRpcUrl:       sourceRpcUrl,
		BridgeContractAddr: bridgeAddr,
		Confirmations:      confirmations,
		MaxRangeSize:       maxRangeSize,
		PollIntervalSec:    pollIntervalSec,
		// state side
		DbFilePath: dbFilePath,
		// destination side
		DestRpcUrl:  destRpcUrl,
		PriceApiUrl: viper.GetString("PRICE_API_URL"),
		// Http side
		HttpIp:   viper.GetString("HTTP_IP"),
		HttpPort: viper.GetString("HTTP_PORT"),
	}
}
