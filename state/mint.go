package state

import (
	"database/sql"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/forge-cli/bridge-relay/common"
)

type MintStatus string

const (
	MintStatusPending MintStatus = "pending"
	MintStatusMinted  MintStatus = "minted"
)

// MintRecord tracks one logical bridge transfer through the simulated
// destination mint. Nonce is the primary key.
type MintRecord struct {
	Nonce       *big.Int
	LockTxHash  ethcommon.Hash
	Sender      ethcommon.Address
	Amount      *big.Int
	DestChainID *big.Int
	SimTxID     ethcommon.Hash
	Status      MintStatus
}

func (m *MintRecord) String() string {
	return fmt.Sprintf("%+v", *m)
}

type sqlMint struct {
	Nonce       string
	LockTxHash  string
	Sender      string
	Amount      string
	DestChainID string
	SimTxID     sql.NullString
	Status      string
}

func (s *sqlMint) encode(m *MintRecord) *sqlMint {
	s.Nonce = m.Nonce.Text(10)
	s.LockTxHash = common.Trim0xPrefix(m.LockTxHash.String())
	s.Sender = common.Trim0xPrefix(m.Sender.String())
	s.Amount = m.Amount.Text(10)
	s.DestChainID = m.DestChainID.Text(10)
	if m.Status == MintStatusMinted {
		s.SimTxID = sql.NullString{String: common.Trim0xPrefix(m.SimTxID.String()), Valid: true}
	}
	s.Status = string(m.Status)
	return s
}

func (s *sqlMint) decode() (*MintRecord, error) {
	nonce, ok := new(big.Int).SetString(s.Nonce, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt nonce %q", s.Nonce)
	}
	amount, ok := new(big.Int).SetString(s.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt amount %q", s.Amount)
	}
	destChainID, ok := new(big.Int).SetString(s.DestChainID, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt destChainId %q", s.DestChainID)
	}

	m := &MintRecord{
		Nonce:       nonce,
		LockTxHash:  ethcommon.HexToHash(s.LockTxHash),
		Sender:      ethcommon.HexToAddress(s.Sender),
		Amount:      amount,
		DestChainID: destChainID,
		Status:      MintStatus(s.Status),
	}
	if s.SimTxID.Valid {
		m.SimTxID = ethcommon.HexToHash(s.SimTxID.String)
	}
	return m, nil
}

// InsertPendingMint records a transfer before its simulated mint runs.
// Inserting a nonce that already exists is an error; callers check GetMint
// first.
func (st *StateDB) InsertPendingMint(m *MintRecord) error {
	query := `INSERT INTO mint (nonce, lockTxHash, sender, amount, destChainId, status)
		VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := st.stmtCache.prepare(query)
	if err != nil {
		return err
	}

	s := new(sqlMint).encode(m)
	_, err = stmt.Exec(s.Nonce, s.LockTxHash, s.Sender, s.Amount, s.DestChainID, string(MintStatusPending))
	return err
}

// MarkMinted completes a pending mint with the simulated destination tx id.
func (st *StateDB) MarkMinted(nonce *big.Int, simTxID ethcommon.Hash) error {
	query := `UPDATE mint SET status = ?, simTxId = ? WHERE nonce = ? AND status = ?`
	stmt, err := st.stmtCache.prepare(query)
	if err != nil {
		return err
	}

	res, err := stmt.Exec(string(MintStatusMinted), common.Trim0xPrefix(simTxID.String()),
		nonce.Text(10), string(MintStatusPending))
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no pending mint for nonce %v", nonce)
	}
	return nil
}

func (st *StateDB) GetMint(nonce *big.Int) (*MintRecord, bool, error) {
	query := `SELECT nonce, lockTxHash, sender, amount, destChainId, simTxId, status
		FROM mint WHERE nonce = ?`
	stmt, err := st.stmtCache.prepare(query)
	if err != nil {
		return nil, false, err
	}

	var s sqlMint
	err = stmt.QueryRow(nonce.Text(10)).Scan(
		&s.Nonce, &s.LockTxHash, &s.Sender, &s.Amount, &s.DestChainID, &s.SimTxID, &s.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	m, err := s.decode()
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// GetMintsByStatus lists ledger rows in a given status, for the reporter.
func (st *StateDB) GetMintsByStatus(status MintStatus) ([]*MintRecord, error) {
	query := `SELECT nonce, lockTxHash, sender, amount, destChainId, simTxId, status
		FROM mint WHERE status = ?`
	stmt, err := st.stmtCache.prepare(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mints := []*MintRecord{}
	for rows.Next() {
		var s sqlMint
		if err := rows.Scan(&s.Nonce, &s.LockTxHash, &s.Sender, &s.Amount,
			&s.DestChainID, &s.SimTxID, &s.Status); err != nil {
			return nil, err
		}
		m, err := s.decode()
		if err != nil {
			return nil, err
		}
		mints = append(mints, m)
	}
	return mints, rows.Err()
}
