package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgersift/ledgersift/internal/common"
	"github.com/ledgersift/ledgersift/internal/model"
)

const transactionColumns = `id, account_id, user_id, hash, date, description, merchant_name,
	amount, external_id, reference_number, source, type, status, transfer_group_id,
	reviewed, created_at`

// GetTransactionsByDateRange retrieves transactions for an account within
// [start, end], optionally scoped to a user.
func (s *SQLiteStorage) GetTransactionsByDateRange(ctx context.Context, accountID, userID string, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE account_id = ? AND date >= ? AND date <= ?
		AND (? = '' OR user_id = ?)
		ORDER BY date, id
	`, transactionColumns)

	rows, err := s.db.QueryContext(ctx, query, accountID, start, end, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = ?`, transactionColumns)

	row := s.db.QueryRowContext(ctx, query, id)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &txn, nil
}

// CreateTransaction persists a new transaction.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.Hash == "" {
		txn.Hash = txn.GenerateHash()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, account_id, user_id, hash, date, description, merchant_name,
			amount, external_id, reference_number, source, type, status,
			transfer_group_id, reviewed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		txn.AccountID,
		txn.UserID,
		txn.Hash,
		txn.Date,
		txn.Description,
		txn.MerchantName,
		txn.Amount.String(),
		txn.ExternalID,
		txn.ReferenceNumber,
		string(txn.Source),
		string(txn.Type),
		string(txn.Status),
		txn.TransferGroupID,
		txn.Reviewed,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

// UpdateTransaction overwrites the mutable fields of an existing transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET
			date = ?, description = ?, merchant_name = ?, amount = ?,
			external_id = ?, reference_number = ?, source = ?, type = ?,
			status = ?, transfer_group_id = ?, reviewed = ?
		WHERE id = ?
	`,
		txn.Date,
		txn.Description,
		txn.MerchantName,
		txn.Amount.String(),
		txn.ExternalID,
		txn.ReferenceNumber,
		string(txn.Source),
		string(txn.Type),
		string(txn.Status),
		txn.TransferGroupID,
		txn.Reviewed,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrNotFound)
	}
	return nil
}

// SaveTransactions persists a batch of transactions, ignoring duplicates by
// hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, account_id, user_id, hash, date, description, merchant_name,
			amount, external_id, reference_number, source, type, status,
			transfer_group_id, reviewed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := transactions[i]
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = time.Now().UTC()
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.AccountID,
			txn.UserID,
			txn.Hash,
			txn.Date,
			txn.Description,
			txn.MerchantName,
			txn.Amount.String(),
			txn.ExternalID,
			txn.ReferenceNumber,
			string(txn.Source),
			string(txn.Type),
			string(txn.Status),
			txn.TransferGroupID,
			txn.Reviewed,
			txn.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// scanner abstracts sql.Row and sql.Rows for scanTransaction.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var txn model.Transaction
	var userID, merchantName, externalID, referenceNumber sql.NullString
	var transferGroupID sql.NullString
	var amount string

	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&userID,
		&txn.Hash,
		&txn.Date,
		&txn.Description,
		&merchantName,
		&amount,
		&externalID,
		&referenceNumber,
		&txn.Source,
		&txn.Type,
		&txn.Status,
		&transferGroupID,
		&txn.Reviewed,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return txn, err
		}
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.UserID = userID.String
	txn.MerchantName = merchantName.String
	txn.ExternalID = externalID.String
	txn.ReferenceNumber = referenceNumber.String
	if transferGroupID.Valid && transferGroupID.String != "" {
		groupID := transferGroupID.String
		txn.TransferGroupID = &groupID
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return txn, fmt.Errorf("failed to parse amount %q for transaction %s: %w", amount, txn.ID, err)
	}

	return txn, nil
}
