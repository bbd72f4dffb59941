// Package sqlite provides a SQLite-backed identity reference store for
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"profileguard/internal/platform/sqlitemigrate"
	"profileguard/internal/profile/models"
	"profileguard/internal/profile/store"
	"profileguard/internal/profile/store/sqlite/migrations"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/sentinel"
	txcontext "profileguard/pkg/platform/tx"
)

// Store persists reference sets and quota in SQLite. Writes take the
// database lock up front (BEGIN IMMEDIATE), which makes create-if-absent
// atomic across connections.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) GetReferenceSet(ctx context.Context, accountID id.AccountID) (models.ReferenceSet, error) {
	var shape string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT reference_shape FROM profile_accounts WHERE account_id = ?`, accountID.String(),
	).Scan(&shape)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Empty(), nil
	}
	if err != nil {
		return nil, wrapErr(err, "get reference shape")
	}

	refs, err := loadReferences(ctx, s.sqlDB, accountID)
	if err != nil {
		return nil, err
	}
	return models.FromShape(models.SetKind(shape), refs), nil
}

func (s *Store) GetQuotaInfo(ctx context.Context, accountID id.AccountID) (models.AccountQuotaInfo, error) {
	var (
		tier  string
		slots int
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT plan_tier, purchased_slots FROM profile_accounts WHERE account_id = ?`, accountID.String(),
	).Scan(&tier, &slots)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultQuotaInfo(), nil
	}
	if err != nil {
		return models.AccountQuotaInfo{}, wrapErr(err, "get quota info")
	}
	return models.AccountQuotaInfo{PlanTier: models.PlanTierFromStore(tier), PurchasedSlots: max(slots, 0)}, nil
}

func (s *Store) CreateReferenceIfAbsent(ctx context.Context, accountID id.AccountID, ref models.IdentityReference) (models.CreateResult, error) {
	if err := ctx.Err(); err != nil {
		return models.CreateResult{}, err
	}

	var result models.CreateResult
	err := txcontext.Run(ctx, s.sqlDB, 0, wrapErr, func(ctx context.Context, q txcontext.Querier) error {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO profile_accounts (account_id, updated_at) VALUES (?, ?) ON CONFLICT (account_id) DO NOTHING`,
			accountID.String(), toMillis(time.Now()),
		); err != nil {
			return wrapErr(err, "ensure account")
		}

		var (
			tier  string
			slots int
			shape string
		)
		if err := q.QueryRowContext(ctx,
			`SELECT plan_tier, purchased_slots, reference_shape FROM profile_accounts WHERE account_id = ?`,
			accountID.String(),
		).Scan(&tier, &slots, &shape); err != nil {
			return wrapErr(err, "load account")
		}

		refs, err := loadReferences(ctx, q, accountID)
		if err != nil {
			return err
		}
		current := models.FromShape(models.SetKind(shape), refs)
		info := models.AccountQuotaInfo{PlanTier: models.PlanTierFromStore(tier), PurchasedSlots: max(slots, 0)}

		_, result = store.Admit(current, info, ref)
		if !result.Created {
			return nil
		}

		refID := ref.ID
		if refID.IsNil() {
			refID = id.NewReferenceID()
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO identity_references (id, account_id, position, name, normalized_name, email, phone, source, stored_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			refID.String(), accountID.String(), len(refs), ref.Name, ref.NormalizedName(),
			ref.Email, ref.Phone, ref.Source.String(), toMillis(ref.StoredAt),
		); err != nil {
			return wrapErr(err, "insert identity reference")
		}
		if _, err := q.ExecContext(ctx,
			`UPDATE profile_accounts SET reference_shape = ?, updated_at = ? WHERE account_id = ?`,
			string(models.SetKindCollection), toMillis(time.Now()), accountID.String(),
		); err != nil {
			return wrapErr(err, "update reference shape")
		}
		return nil
	})
	if err != nil {
		return models.CreateResult{}, err
	}
	return result, nil
}

// SetQuotaInfo upserts the plan and purchased slots of an account.
func (s *Store) SetQuotaInfo(ctx context.Context, accountID id.AccountID, info models.AccountQuotaInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO profile_accounts (account_id, plan_tier, purchased_slots, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			plan_tier = excluded.plan_tier,
			purchased_slots = excluded.purchased_slots,
			updated_at = excluded.updated_at`,
		accountID.String(), info.PlanTier.String(), info.PurchasedSlots, toMillis(time.Now()),
	)
	if err != nil {
		return wrapErr(err, "set quota info")
	}
	return nil
}

func loadReferences(ctx context.Context, q txcontext.Querier, accountID id.AccountID) ([]models.IdentityReference, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, email, phone, source, stored_at
		FROM identity_references
		WHERE account_id = ?
		ORDER BY position`,
		accountID.String(),
	)
	if err != nil {
		return nil, wrapErr(err, "list identity references")
	}
	defer rows.Close()

	var refs []models.IdentityReference
	for rows.Next() {
		var (
			rawID    string
			source   string
			storedAt int64
			ref      models.IdentityReference
		)
		if err := rows.Scan(&rawID, &ref.Name, &ref.Email, &ref.Phone, &source, &storedAt); err != nil {
			return nil, wrapErr(err, "scan identity reference")
		}
		if refID, err := id.ParseReferenceID(rawID); err == nil {
			ref.ID = refID
		}
		ref.Source = id.Source(source)
		ref.StoredAt = fromMillis(storedAt)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "iterate identity references")
	}
	return refs, nil
}

func wrapErr(err error, op string) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
