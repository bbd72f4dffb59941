package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"profileguard/internal/profile/models"
	"profileguard/internal/profile/store"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/sentinel"
	txcontext "profileguard/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

const defaultTxTimeout = 5 * time.Second

// PostgresStore persists reference sets and quota in PostgreSQL.
// Create-if-absent locks the account row so the dedupe, the capacity check
// and the append run as one step across instances.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func New(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultTxTimeout}
}

// Migrate creates the tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply profile schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReferenceSet(ctx context.Context, accountID id.AccountID) (models.ReferenceSet, error) {
	q := txcontext.QuerierFrom(ctx, s.db)

	var shape string
	err := q.QueryRowContext(ctx,
		`SELECT reference_shape FROM profile_accounts WHERE account_id = $1`,
		accountID.String(),
	).Scan(&shape)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Empty(), nil
	}
	if err != nil {
		return nil, wrapErr(err, "get reference shape")
	}

	refs, err := loadReferences(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	return models.FromShape(models.SetKind(shape), refs), nil
}

func (s *PostgresStore) GetQuotaInfo(ctx context.Context, accountID id.AccountID) (models.AccountQuotaInfo, error) {
	var (
		tier  string
		slots int
	)
	err := txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT plan_tier, purchased_slots FROM profile_accounts WHERE account_id = $1`,
		accountID.String(),
	).Scan(&tier, &slots)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultQuotaInfo(), nil
	}
	if err != nil {
		return models.AccountQuotaInfo{}, wrapErr(err, "get quota info")
	}
	return models.AccountQuotaInfo{PlanTier: models.PlanTierFromStore(tier), PurchasedSlots: max(slots, 0)}, nil
}

func (s *PostgresStore) CreateReferenceIfAbsent(ctx context.Context, accountID id.AccountID, ref models.IdentityReference) (models.CreateResult, error) {
	var result models.CreateResult
	err := txcontext.Run(ctx, s.db, s.timeout, wrapErr, func(ctx context.Context, q txcontext.Querier) error {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO profile_accounts (account_id) VALUES ($1) ON CONFLICT (account_id) DO NOTHING`,
			accountID.String(),
		); err != nil {
			return wrapErr(err, "ensure account")
		}

		var (
			tier  string
			slots int
			shape string
		)
		if err := q.QueryRowContext(ctx,
			`SELECT plan_tier, purchased_slots, reference_shape FROM profile_accounts WHERE account_id = $1 FOR UPDATE`,
			accountID.String(),
		).Scan(&tier, &slots, &shape); err != nil {
			return wrapErr(err, "lock account")
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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.UUID(refID), accountID.String(), len(refs), ref.Name, ref.NormalizedName(),
			ref.Email, ref.Phone, ref.Source.String(), ref.StoredAt,
		); err != nil {
			return wrapErr(err, "insert identity reference")
		}
		if _, err := q.ExecContext(ctx,
			`UPDATE profile_accounts SET reference_shape = $2, updated_at = now() WHERE account_id = $1`,
			accountID.String(), string(models.SetKindCollection),
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
func (s *PostgresStore) SetQuotaInfo(ctx context.Context, accountID id.AccountID, info models.AccountQuotaInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	_, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO profile_accounts (account_id, plan_tier, purchased_slots)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET
			plan_tier = EXCLUDED.plan_tier,
			purchased_slots = EXCLUDED.purchased_slots,
			updated_at = now()`,
		accountID.String(), info.PlanTier.String(), info.PurchasedSlots,
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
		WHERE account_id = $1
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
			refID  uuid.UUID
			ref    models.IdentityReference
			source string
		)
		if err := rows.Scan(&refID, &ref.Name, &ref.Email, &ref.Phone, &source, &ref.StoredAt); err != nil {
			return nil, wrapErr(err, "scan identity reference")
		}
		ref.ID = id.ReferenceID(refID)
		ref.Source = id.Source(source)
		ref.StoredAt = ref.StoredAt.UTC()
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "iterate identity references")
	}
	return refs, nil
}

// wrapErr marks connection-class failures as unavailable so callers can tell
// them apart from data errors.
func wrapErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, sql.ErrConnDone) || sentinel.IsConnectionFailure(err) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
