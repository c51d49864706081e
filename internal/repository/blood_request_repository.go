package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

const bloodRequestColumns = `id, patient_name, guardian_name, mobile, alt_mobile, age, units_needed, blood_group, urgency_level, village, block, pin, district, state, receiving_address, status, requester_id, created_at, updated_at`

// BloodRequestRepository persists blood requests.
type BloodRequestRepository struct {
	db *sqlx.DB
}

// NewBloodRequestRepository constructs a BloodRequestRepository.
func NewBloodRequestRepository(db *sqlx.DB) *BloodRequestRepository {
	return &BloodRequestRepository{db: db}
}

// Create inserts a request.
func (r *BloodRequestRepository) Create(ctx context.Context, req *models.BloodRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO blood_requests (` + bloodRequestColumns + `)
        VALUES (:id, :patient_name, :guardian_name, :mobile, :alt_mobile, :age, :units_needed, :blood_group, :urgency_level, :village, :block, :pin, :district, :state, :receiving_address, :status, :requester_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create blood request: %w", err)
	}
	return nil
}

// FindByID returns a request or sql.ErrNoRows.
func (r *BloodRequestRepository) FindByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	const query = `SELECT ` + bloodRequestColumns + ` FROM blood_requests WHERE id = $1`
	var req models.BloodRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find blood request: %w", err)
	}
	return &req, nil
}

// List returns requests matching the filter, newest first.
func (r *BloodRequestRepository) List(ctx context.Context, filter models.BloodRequestFilter) ([]models.BloodRequest, error) {
	var conditions []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		conditions = append(conditions, fmt.Sprintf("requester_id = $%d", len(args)))
	}

	query := `SELECT ` + bloodRequestColumns + ` FROM blood_requests WHERE 1=1`
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	requests := []models.BloodRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list blood requests: %w", err)
	}
	return requests, nil
}

// CountByStatus counts the requester's requests in the given status.
func (r *BloodRequestRepository) CountByStatus(ctx context.Context, requesterID string, status models.RequestStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM blood_requests WHERE requester_id = $1 AND status = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, requesterID, status); err != nil {
		return 0, fmt.Errorf("count blood requests: %w", err)
	}
	return total, nil
}

// UpdateStatus moves the request from one status to another. It matches no row, and returns
// sql.ErrNoRows, when the request is gone or no longer in the from status.
func (r *BloodRequestRepository) UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus) error {
	const query = `UPDATE blood_requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update blood request status: %w", err)
	}
	return expectOneRow(res, "update blood request status")
}

// DeleteWithDonations removes every donation referencing the request and then the request,
// committing both or neither.
func (r *BloodRequestRepository) DeleteWithDonations(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM donations WHERE request_id = $1`, id); err != nil {
		return fmt.Errorf("delete request donations: %w", err)
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, `DELETE FROM blood_requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete blood request: %w", err)
	}
	if err = expectOneRow(res, "delete blood request"); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	return nil
}

// ListWithDonations returns every request, newest first, each with its donations and donor contacts.
func (r *BloodRequestRepository) ListWithDonations(ctx context.Context) ([]models.BloodRequestDetail, error) {
	requests, err := r.List(ctx, models.BloodRequestFilter{})
	if err != nil {
		return nil, err
	}
	details := make([]models.BloodRequestDetail, len(requests))
	if len(requests) == 0 {
		return details, nil
	}

	ids := make([]string, len(requests))
	index := make(map[string]int, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
		index[req.ID] = i
		details[i] = models.BloodRequestDetail{BloodRequest: req, Donations: []models.DonationWithDonor{}}
	}

	const query = `SELECT d.id, d.donor_id, d.request_id, d.donation_date, d.status, d.created_at, d.updated_at,
        p.name AS donor_name, p.mobile AS donor_mobile, p.blood_group AS donor_blood_group
        FROM donations d LEFT JOIN profiles p ON p.id = d.donor_id
        WHERE d.request_id = ANY($1) ORDER BY d.donation_date ASC`
	var donations []models.DonationWithDonor
	if err := r.db.SelectContext(ctx, &donations, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list request donations: %w", err)
	}
	for _, d := range donations {
		if d.RequestID == nil {
			continue
		}
		if i, ok := index[*d.RequestID]; ok {
			details[i].Donations = append(details[i].Donations, d)
		}
	}
	return details, nil
}
