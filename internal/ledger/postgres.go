package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/payroll_escrow/internal/balance"
)

// PostgresLedger persists escrow balances in PostgreSQL. Each account row
// carries its current balance as jsonb; every posting also writes an entry
// row with the balance after the posting.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

type lockedAccount struct {
	id      uuid.UUID
	denom   balance.Denom
	balance balance.WrappedBalance
}

// EnsureAccount guarantees an account exists for the provided code.
func (l *PostgresLedger) EnsureAccount(ctx context.Context, code string, denom balance.Denom) error {
	denomJSON, err := json.Marshal(denom)
	if err != nil {
		return err
	}
	zeroJSON, err := json.Marshal(balance.Zero(denom))
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, `INSERT INTO accounts (id, code, denom, balance) VALUES ($1, $2, $3, $4)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), code, denomJSON, zeroJSON); err != nil {
		return err
	}

	var stored []byte
	if err := l.db.QueryRow(ctx, `SELECT denom FROM accounts WHERE code = $1`, code).Scan(&stored); err != nil {
		return err
	}
	var existing balance.Denom
	if err := json.Unmarshal(stored, &existing); err != nil {
		return fmt.Errorf("decode denom of %s: %w", code, err)
	}
	if existing != denom {
		return ErrDenomMismatch
	}
	return nil
}

// Balance returns the current balance for the specified account code.
func (l *PostgresLedger) Balance(ctx context.Context, code string) (balance.WrappedBalance, error) {
	var raw []byte
	if err := l.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE code = $1`, code).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return balance.WrappedBalance{}, fmt.Errorf("%w: %s", ErrAccountNotFound, code)
		}
		return balance.WrappedBalance{}, err
	}
	var b balance.WrappedBalance
	if err := json.Unmarshal(raw, &b); err != nil {
		return balance.WrappedBalance{}, fmt.Errorf("decode balance of %s: %w", code, err)
	}
	return b, nil
}

// Deposit credits funds to the account.
func (l *PostgresLedger) Deposit(ctx context.Context, code, clientTxID string, funds balance.WrappedBalance) (PostingResult, error) {
	return l.post(ctx, KindDeposit, code, clientTxID, funds, credit)
}

// Withdraw debits funds from the account.
func (l *PostgresLedger) Withdraw(ctx context.Context, code, clientTxID string, funds balance.WrappedBalance) (PostingResult, error) {
	return l.post(ctx, KindWithdrawal, code, clientTxID, funds, debit)
}

func (l *PostgresLedger) post(ctx context.Context, kind, code, clientTxID string, funds balance.WrappedBalance, apply applyFunc) (PostingResult, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PostingResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	acc, err := lockAccount(ctx, tx, code)
	if err != nil {
		return PostingResult{}, err
	}

	existing, found, err := existingTransaction(ctx, tx, kind, clientTxID)
	if err != nil {
		return PostingResult{}, err
	}
	if found {
		return PostingResult{TransactionID: existing.id.String(), Balance: acc.balance, Status: existing.status}, ErrDuplicateTransaction
	}

	next, err := apply(acc.balance, acc.denom, funds)
	if err != nil {
		return PostingResult{}, err
	}

	txID := uuid.New()
	if err := insertTransaction(ctx, tx, txID, kind, clientTxID); err != nil {
		return PostingResult{}, err
	}
	direction := "credit"
	if kind == KindWithdrawal {
		direction = "debit"
	}
	if err := writeBalance(ctx, tx, txID, acc.id, direction, funds, next); err != nil {
		return PostingResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PostingResult{}, err
	}
	return PostingResult{TransactionID: txID.String(), Balance: next, Status: StatusCompleted}, nil
}

// Transfer debits one account and credits another in one database transaction.
func (l *PostgresLedger) Transfer(ctx context.Context, fromCode, toCode, clientTxID string, funds balance.WrappedBalance) (TransferResult, error) {
	if fromCode == toCode {
		return TransferResult{}, ErrSameAccount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// lock in code order so concurrent opposite transfers cannot deadlock
	firstCode, secondCode := fromCode, toCode
	if secondCode < firstCode {
		firstCode, secondCode = secondCode, firstCode
	}
	first, err := lockAccount(ctx, tx, firstCode)
	if err != nil {
		return TransferResult{}, err
	}
	second, err := lockAccount(ctx, tx, secondCode)
	if err != nil {
		return TransferResult{}, err
	}
	from, to := first, second
	if firstCode != fromCode {
		from, to = second, first
	}

	existing, found, err := existingTransaction(ctx, tx, KindTransfer, clientTxID)
	if err != nil {
		return TransferResult{}, err
	}
	if found {
		return TransferResult{TransactionID: existing.id.String(), FromBalance: from.balance, ToBalance: to.balance}, ErrDuplicateTransaction
	}

	fromNext, err := debit(from.balance, from.denom, funds)
	if err != nil {
		return TransferResult{}, err
	}
	toNext, err := credit(to.balance, to.denom, funds)
	if err != nil {
		return TransferResult{}, err
	}

	txID := uuid.New()
	if err := insertTransaction(ctx, tx, txID, KindTransfer, clientTxID); err != nil {
		return TransferResult{}, err
	}
	if err := writeBalance(ctx, tx, txID, from.id, "debit", funds, fromNext); err != nil {
		return TransferResult{}, err
	}
	if err := writeBalance(ctx, tx, txID, to.id, "credit", funds, toNext); err != nil {
		return TransferResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, err
	}
	return TransferResult{TransactionID: txID.String(), FromBalance: fromNext, ToBalance: toNext}, nil
}

// Reverse credits back a withdrawal (or debits back a deposit) and marks the
// original transaction reversed, all in one database transaction.
func (l *PostgresLedger) Reverse(ctx context.Context, code, kind, clientTxID string) (PostingResult, error) {
	apply, direction, err := undo(kind)
	if err != nil {
		return PostingResult{}, err
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PostingResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	acc, err := lockAccount(ctx, tx, code)
	if err != nil {
		return PostingResult{}, err
	}

	orig, found, err := existingTransaction(ctx, tx, kind, clientTxID)
	if err != nil {
		return PostingResult{}, err
	}
	if !found {
		return PostingResult{}, ErrTransactionNotFound
	}
	if orig.status == StatusReversed {
		prior, _, err := existingTransaction(ctx, tx, KindReversal, orig.id.String())
		if err != nil {
			return PostingResult{}, err
		}
		return PostingResult{TransactionID: prior.id.String(), Balance: acc.balance, Status: prior.status}, ErrDuplicateTransaction
	}

	var fundsRaw []byte
	if err := tx.QueryRow(ctx, `SELECT funds FROM entries WHERE transaction_id = $1 AND account_id = $2`,
		orig.id, acc.id).Scan(&fundsRaw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostingResult{}, ErrTransactionNotFound
		}
		return PostingResult{}, err
	}
	var funds balance.WrappedBalance
	if err := json.Unmarshal(fundsRaw, &funds); err != nil {
		return PostingResult{}, fmt.Errorf("decode funds of %s: %w", orig.id, err)
	}

	next, err := apply(acc.balance, acc.denom, funds)
	if err != nil {
		return PostingResult{}, err
	}

	revID := uuid.New()
	if err := insertTransaction(ctx, tx, revID, KindReversal, orig.id.String()); err != nil {
		return PostingResult{}, err
	}
	if err := writeBalance(ctx, tx, revID, acc.id, direction, funds, next); err != nil {
		return PostingResult{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE transactions SET status = $2 WHERE id = $1`, orig.id, StatusReversed); err != nil {
		return PostingResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PostingResult{}, err
	}
	return PostingResult{TransactionID: revID.String(), Balance: next, Status: StatusCompleted}, nil
}

func lockAccount(ctx context.Context, tx pgx.Tx, code string) (lockedAccount, error) {
	const query = `SELECT id, denom, balance FROM accounts WHERE code = $1 FOR UPDATE`
	var (
		acc        lockedAccount
		denomRaw   []byte
		balanceRaw []byte
	)
	if err := tx.QueryRow(ctx, query, code).Scan(&acc.id, &denomRaw, &balanceRaw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lockedAccount{}, fmt.Errorf("%w: %s", ErrAccountNotFound, code)
		}
		return lockedAccount{}, err
	}
	if err := json.Unmarshal(denomRaw, &acc.denom); err != nil {
		return lockedAccount{}, fmt.Errorf("decode denom of %s: %w", code, err)
	}
	if err := json.Unmarshal(balanceRaw, &acc.balance); err != nil {
		return lockedAccount{}, fmt.Errorf("decode balance of %s: %w", code, err)
	}
	return acc, nil
}

type storedTransaction struct {
	id     uuid.UUID
	status string
}

func existingTransaction(ctx context.Context, tx pgx.Tx, kind, clientTxID string) (storedTransaction, bool, error) {
	const query = `SELECT id, status FROM transactions WHERE client_tx_id = $1 AND kind = $2`
	var st storedTransaction
	if err := tx.QueryRow(ctx, query, clientTxID, kind).Scan(&st.id, &st.status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storedTransaction{}, false, nil
		}
		return storedTransaction{}, false, err
	}
	return st, true, nil
}

// uniqueViolation is the SQLSTATE raised by the (kind, client_tx_id) constraint
// when a concurrent posting commits the same client transaction first.
const uniqueViolation = "23505"

func insertTransaction(ctx context.Context, tx pgx.Tx, id uuid.UUID, kind, clientTxID string) error {
	_, err := tx.Exec(ctx, `INSERT INTO transactions (id, client_tx_id, kind, status) VALUES ($1, $2, $3, $4)`,
		id, clientTxID, kind, StatusCompleted)
	return duplicateOnConflict(err)
}

func duplicateOnConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, pgErr.ConstraintName)
	}
	return err
}

func writeBalance(ctx context.Context, tx pgx.Tx, txID, accountID uuid.UUID, direction string, funds, after balance.WrappedBalance) error {
	fundsJSON, err := json.Marshal(funds)
	if err != nil {
		return err
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO entries (id, transaction_id, account_id, direction, funds, balance_after)
        VALUES ($1, $2, $3, $4, $5, $6)`, uuid.New(), txID, accountID, direction, fundsJSON, afterJSON); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE accounts SET balance = $2, updated_at = now() WHERE id = $1`, accountID, afterJSON)
	return err
}
