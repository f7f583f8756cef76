package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-auction/internal/domain"
)

// AccountRepository defines persistence access for participant accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByAddress(ctx context.Context, address string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (address, email, display_name, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		account.Address,
		account.Email,
		account.DisplayName,
		account.PasswordHash,
	).Scan(&account.CreatedAt)
}

func (r *accountRepository) GetByAddress(ctx context.Context, address string) (*domain.Account, error) {
	const query = `
        SELECT address, email, display_name, password_hash, created_at
        FROM accounts WHERE address=$1`
	return r.fetchSingle(ctx, query, address)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT address, email, display_name, password_hash, created_at
        FROM accounts WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.Address,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// memoryAccountRepository backs deployments without Postgres and tests.
type memoryAccountRepository struct {
	mu       sync.RWMutex
	byAddr   map[string]domain.Account
	byEmail  map[string]string
}

// NewMemoryAccountRepository returns an in-memory implementation.
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		byAddr:  make(map[string]domain.Account),
		byEmail: make(map[string]string),
	}
}

func (r *memoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[account.Email]; ok {
		return domain.ErrEmailTaken
	}
	r.byAddr[account.Address] = *account
	r.byEmail[account.Email] = account.Address
	return nil
}

func (r *memoryAccountRepository) GetByAddress(_ context.Context, address string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byAddr[address]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

func (r *memoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	address, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	account := r.byAddr[address]
	return &account, nil
}
