package state

var (
	// kv stores single named values; the scanner checkpoint lives here.
	kvTable = `CREATE TABLE IF NOT EXISTS kv (
		key VARCHAR(32) PRIMARY KEY NOT NULL,
		value TEXT NOT NULL
	);`

	// mint records the life cycle of each simulated destination mint,
	// keyed on the bridge nonce. This is the downstream idempotency record.
	mintTable = `CREATE TABLE IF NOT EXISTS mint (
		nonce TEXT PRIMARY KEY NOT NULL,
		lockTxHash CHAR(64) NOT NULL,
		sender CHAR(40) NOT NULL,
		amount TEXT NOT NULL,
		destChainId TEXT NOT NULL,
		simTxId CHAR(64),
		status VARCHAR(10) NOT NULL,
		CONSTRAINT chk_status CHECK (status IN ('pending', 'minted')),
		CONSTRAINT chk_simTxId CHECK (status != 'minted' OR simTxId IS NOT NULL)
	);`
)

const checkpointKey = "lastScannedBlock"
