package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

const donationColumns = `id, donor_id, request_id, donation_date, status, created_at, updated_at`

// DonationRepository persists scheduled donations.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository constructs a DonationRepository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts a donation.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == "" {
		donation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = now
	}
	donation.UpdatedAt = now

	const query = `INSERT INTO donations (` + donationColumns + `) VALUES (:id, :donor_id, :request_id, :donation_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, donation); err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	return nil
}

// FindByID returns a donation or sql.ErrNoRows.
func (r *DonationRepository) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	var donation models.Donation
	if err := r.db.GetContext(ctx, &donation, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find donation: %w", err)
	}
	return &donation, nil
}

// UpdateStatus writes a single status change.
func (r *DonationRepository) UpdateStatus(ctx context.Context, id string, status models.DonationStatus) error {
	const query = `UPDATE donations SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	return expectOneRow(res, "update donation status")
}

// ListUpcoming returns the donor's scheduled donations on or after from, soonest first.
func (r *DonationRepository) ListUpcoming(ctx context.Context, donorID string, from time.Time, limit int) ([]models.UpcomingDonation, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT d.id, d.donor_id, d.request_id, d.donation_date, d.status, d.created_at, d.updated_at,
        br.patient_name, br.blood_group AS request_blood_group, br.receiving_address
        FROM donations d LEFT JOIN blood_requests br ON br.id = d.request_id
        WHERE d.donor_id = $1 AND d.status = $2 AND d.donation_date >= $3
        ORDER BY d.donation_date ASC LIMIT %d`, limit)
	donations := []models.UpcomingDonation{}
	if err := r.db.SelectContext(ctx, &donations, query, donorID, models.DonationStatusScheduled, from); err != nil {
		return nil, fmt.Errorf("list upcoming donations: %w", err)
	}
	return donations, nil
}

// CountByDonor counts the donor's donations, optionally restricted to one status.
func (r *DonationRepository) CountByDonor(ctx context.Context, donorID string, status *models.DonationStatus) (int, error) {
	query := `SELECT COUNT(*) FROM donations WHERE donor_id = $1`
	args := []interface{}{donorID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return total, nil
}
