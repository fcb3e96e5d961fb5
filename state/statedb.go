package state

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// StateDB is the relay's durable state: the scan checkpoint plus the mint
// ledger. Both live in one sqlite file so they commit atomically.
type StateDB struct {
	db        *sql.DB
	stmtCache *stmtCache
}

// OpenDB opens (or creates) the relay's sqlite file.
func OpenDB(filePath string) (*sql.DB, error) {
	return sql.Open("sqlite3", filePath)
}

func NewStateDB(db *sql.DB) (*StateDB, error) {
	if _, err := db.Exec(kvTable + mintTable); err != nil {
		return nil, err
	}

	return &StateDB{
		db:        db,
		stmtCache: newStmtCache(db),
	}, nil
}

func (st *StateDB) Close() {
	st.stmtCache.clear()
}

// LoadCheckpoint returns the last fully scanned block number. The second
// return is false on first run, before any checkpoint has been written.
func (st *StateDB) LoadCheckpoint() (uint64, bool, error) {
	query := `SELECT value FROM kv WHERE key = ?`
	stmt, err := st.stmtCache.prepare(query)
	if err != nil {
		return 0, false, err
	}

	var value string
	if err := stmt.QueryRow(checkpointKey).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}

	h, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt checkpoint value %q: %w", value, err)
	}
	return h, true, nil
}

// SaveCheckpoint durably replaces the checkpoint. The write happens inside a
// transaction so an interrupted save leaves the previous value intact.
func (st *StateDB) SaveCheckpoint(h uint64) error {
	tx, err := st.db.Begin()
	if err != nil {
		return err
	}

	query := `INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`
	if _, err := tx.Exec(query, checkpointKey, strconv.FormatUint(h, 10)); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
