package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

const profileColumns = `id, name, email, mobile, alt_mobile, age, weight, blood_group, last_donation_date, village, block, pin, district, state, created_at, updated_at`

// searchableColumns guards the columns a donor search predicate may reference.
var searchableColumns = map[string]bool{
	"blood_group": true,
	"state":       true,
	"district":    true,
	"block":       true,
}

// ProfileRepository persists donor profiles and the blood group change log.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns the profile owned by the given user.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

// Upsert registers a donor or replaces every editable field of an existing profile.
// The blood group is never touched on conflict; it only changes through UpdateWithBloodGroupChange.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO profiles (` + profileColumns + `)
        VALUES (:id, :name, :email, :mobile, :alt_mobile, :age, :weight, :blood_group, :last_donation_date, :village, :block, :pin, :district, :state, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, mobile = EXCLUDED.mobile, alt_mobile = EXCLUDED.alt_mobile,
        age = EXCLUDED.age, weight = EXCLUDED.weight, last_donation_date = EXCLUDED.last_donation_date, village = EXCLUDED.village,
        block = EXCLUDED.block, pin = EXCLUDED.pin, district = EXCLUDED.district, state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

const updateProfileQuery = `UPDATE profiles SET name = :name, mobile = :mobile, alt_mobile = :alt_mobile, age = :age, weight = :weight,
        blood_group = :blood_group, last_donation_date = :last_donation_date, village = :village, block = :block, pin = :pin,
        district = :district, state = :state, updated_at = :updated_at WHERE id = :id`

// Update replaces the profile's editable fields, blood group included.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, updateProfileQuery, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectOneRow(res, "update profile")
}

// UpdateWithBloodGroupChange writes the change-log row and the profile in one transaction.
// The unique index on blood_group_changes.user_id rejects a second change even under races.
func (r *ProfileRepository) UpdateWithBloodGroupChange(ctx context.Context, profile *models.Profile, change *models.BloodGroupChange) (err error) {
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}
	profile.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertChange = `INSERT INTO blood_group_changes (id, user_id, old_blood_group, new_blood_group, created_at)
        VALUES (:id, :user_id, :old_blood_group, :new_blood_group, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertChange, change); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert blood group change: %w", err)
	}
	var res sql.Result
	if res, err = tx.NamedExecContext(ctx, updateProfileQuery, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if err = expectOneRow(res, "update profile"); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit profile update: %w", err)
	}
	return nil
}

// FindBloodGroupChange returns the user's change-log row, or sql.ErrNoRows.
func (r *ProfileRepository) FindBloodGroupChange(ctx context.Context, userID string) (*models.BloodGroupChange, error) {
	const query = `SELECT id, user_id, old_blood_group, new_blood_group, created_at FROM blood_group_changes WHERE user_id = $1 LIMIT 1`
	var change models.BloodGroupChange
	if err := r.db.GetContext(ctx, &change, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find blood group change: %w", err)
	}
	return &change, nil
}

// Search runs one query ANDing every predicate. Order is left to the database.
func (r *ProfileRepository) Search(ctx context.Context, predicates []models.Predicate) ([]models.Profile, error) {
	query, args, err := buildSearchQuery(predicates)
	if err != nil {
		return nil, err
	}
	profiles := []models.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return profiles, nil
}

func buildSearchQuery(predicates []models.Predicate) (string, []interface{}, error) {
	conditions := []string{"1=1"}
	args := make([]interface{}, 0, len(predicates))
	for _, p := range predicates {
		if !searchableColumns[p.Column] {
			return "", nil, fmt.Errorf("search profiles: column %q not searchable", p.Column)
		}
		args = append(args, p.Value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", p.Column, len(args)))
	}
	return fmt.Sprintf("SELECT %s FROM profiles WHERE %s", profileColumns, strings.Join(conditions, " AND ")), args, nil
}

// List pages every profile newest first, for moderation.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM profiles ORDER BY created_at DESC LIMIT %d OFFSET %d`, profileColumns, size, (page-1)*size)

	profiles := []models.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles`); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	return profiles, total, nil
}
