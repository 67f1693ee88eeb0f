package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no wallet matches the lookup.
	ErrNotFound = errors.New("wallet not found")
	// ErrWalletExists is returned when creating a wallet with a taken ID.
	ErrWalletExists = errors.New("wallet exists")
)

// Repository persists wallet metadata.
type Repository interface {
	Create(ctx context.Context, wallet Wallet) error
	Get(ctx context.Context, id string) (Wallet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record.
func (r *PostgresRepository) Create(ctx context.Context, wallet Wallet) error {
	walletID, err := uuid.Parse(wallet.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(wallet.OwnerID)
	if err != nil {
		return err
	}
	denom, err := json.Marshal(wallet.Denom)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, account_code, denom, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, walletID, ownerID, wallet.AccountCode, denom, wallet.Status, wallet.CreatedAt.UTC())
	return err
}

// Get fetches wallet metadata by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Wallet, error) {
	walletUUID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, account_code, denom, status, created_at
        FROM wallets WHERE id = $1`, walletUUID)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrNotFound
	}
	return w, err
}

// ListByOwner returns every wallet of the owner, oldest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, account_code, denom, status, created_at
        FROM wallets WHERE owner_id = $1 ORDER BY created_at`, ownerUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w         Wallet
		idVal     uuid.UUID
		ownerID   uuid.UUID
		denom     []byte
		createdAt time.Time
	)
	if err := row.Scan(&idVal, &ownerID, &w.AccountCode, &denom, &w.Status, &createdAt); err != nil {
		return Wallet{}, err
	}
	if err := json.Unmarshal(denom, &w.Denom); err != nil {
		return Wallet{}, fmt.Errorf("decode wallet denom: %w", err)
	}
	w.ID = idVal.String()
	w.OwnerID = ownerID.String()
	w.CreatedAt = createdAt.UTC()
	return w, nil
}

func sortByCreated(ws []Wallet) {
	slices.SortFunc(ws, func(a, b Wallet) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
