package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meetcrm/internal/model"
	"meetcrm/internal/util"
)

type MeetRepository struct {
	db *pgxpool.Pool
}

func NewMeetRepository(db *pgxpool.Pool) *MeetRepository {
	return &MeetRepository{db: db}
}

// meetColumns joins the admin's display name; every read goes through it.
const meetColumns = `
    m.id, m.event_name, m.customer_name, m.email, m.phone, m.location,
    m.platform, m.devices, m.url, m.short_url, m.status, m.description,
    m.admin_id, u.name, m.start_at, m.end_at, m.created_at, m.updated_at
`

// MeetFilter narrows and orders paginated listings.
type MeetFilter struct {
	Status *model.MeetStatus
	SortBy string
	Order  string
	Offset int
	Limit  int
}

// MeetUpdate carries the patchable fields; nil means "keep".
type MeetUpdate struct {
	EventName    *string
	CustomerName *string
	Email        *string
	Phone        *string
	Location     *string
	Platform     *string
	Devices      *string
	URL          *string
	ShortURL     *string
	Status       *model.MeetStatus
	Description  *string
	AdminID      *uuid.UUID
	Start        *time.Time
	End          *time.Time
}

var meetSortColumns = map[string]string{
	"start":     "m.start_at",
	"createdAt": "m.created_at",
	"eventName": "m.event_name",
	"status":    "m.status",
}

// Create inserts a new meet request.
func (r *MeetRepository) Create(ctx context.Context, m *model.Meet) error {
	query := `
        INSERT INTO meets (
            id, event_name, customer_name, email, phone, location, platform,
            devices, url, short_url, status, description, admin_id,
            start_at, end_at, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
        RETURNING created_at
    `
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = model.MeetStatusNew
	}
	return r.db.QueryRow(ctx, query,
		m.ID, m.EventName, m.CustomerName, m.Email, m.Phone, m.Location,
		m.Platform, m.Devices, m.URL, m.ShortURL, m.Status, m.Description,
		m.AdminID, m.Start, m.End,
	).Scan(&m.CreatedAt)
}

// GetByID returns one meet with its admin name.
func (r *MeetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Meet, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM meets m
        LEFT JOIN users u ON u.id = m.admin_id
        WHERE m.id = $1
    `, meetColumns)

	m, err := scanMeet(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns a page of meets plus the unpaginated total.
func (r *MeetRepository) List(ctx context.Context, f MeetFilter) ([]model.Meet, int, error) {
	sortCol := util.SortColumn(f.SortBy, meetSortColumns, "m.created_at")
	order := "ASC"
	if f.Order == "desc" {
		order = "DESC"
	}

	query := fmt.Sprintf(`
        SELECT %s FROM meets m
        LEFT JOIN users u ON u.id = m.admin_id
        WHERE ($1::text IS NULL OR m.status = $1)
        ORDER BY %s %s
        OFFSET $2 LIMIT $3
    `, meetColumns, sortCol, order)

	rows, err := r.db.Query(ctx, query, f.Status, f.Offset, f.Limit)
	if err != nil {
		return nil, 0, err
	}
	meets, err := collectMeets(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM meets m WHERE ($1::text IS NULL OR m.status = $1)`,
		f.Status,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return meets, total, nil
}

// Search matches the free-text fields case-insensitively.
func (r *MeetRepository) Search(ctx context.Context, term string, offset, limit int) ([]model.Meet, int, error) {
	pattern := util.LikePattern(term)

	where := `
        m.event_name ILIKE $1 OR m.customer_name ILIKE $1 OR m.short_url ILIKE $1
        OR m.url ILIKE $1 OR m.description ILIKE $1 OR m.email ILIKE $1 OR m.phone ILIKE $1
    `

	query := fmt.Sprintf(`
        SELECT %s FROM meets m
        LEFT JOIN users u ON u.id = m.admin_id
        WHERE %s
        ORDER BY m.created_at DESC
        OFFSET $2 LIMIT $3
    `, meetColumns, where)

	rows, err := r.db.Query(ctx, query, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	meets, err := collectMeets(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM meets m WHERE %s`, where),
		pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return meets, total, nil
}

// Update patches the non-nil fields and returns the updated row.
func (r *MeetRepository) Update(ctx context.Context, id uuid.UUID, upd MeetUpdate) (*model.Meet, error) {
	query := `
        UPDATE meets m SET
            event_name = COALESCE($2, event_name),
            customer_name = COALESCE($3, customer_name),
            email = COALESCE($4, email),
            phone = COALESCE($5, phone),
            location = COALESCE($6, location),
            platform = COALESCE($7, platform),
            devices = COALESCE($8, devices),
            url = COALESCE($9, url),
            short_url = COALESCE($10, short_url),
            status = COALESCE($11, status),
            description = COALESCE($12, description),
            admin_id = COALESCE($13, admin_id),
            start_at = COALESCE($14, start_at),
            end_at = COALESCE($15, end_at),
            updated_at = NOW()
        WHERE m.id = $1
        RETURNING m.id
    `
	var returned uuid.UUID
	err := r.db.QueryRow(ctx, query,
		id, upd.EventName, upd.CustomerName, upd.Email, upd.Phone, upd.Location,
		upd.Platform, upd.Devices, upd.URL, upd.ShortURL, upd.Status,
		upd.Description, upd.AdminID, upd.Start, upd.End,
	).Scan(&returned)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a meet.
func (r *MeetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListCompletedRange returns completed meets that start inside the
// range, for exports.
func (r *MeetRepository) ListCompletedRange(ctx context.Context, start, end time.Time) ([]model.Meet, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM meets m
        LEFT JOIN users u ON u.id = m.admin_id
        WHERE m.start_at >= $1 AND m.start_at <= $2 AND m.status = $3
        ORDER BY m.start_at
    `, meetColumns)

	rows, err := r.db.Query(ctx, query, start, end, model.MeetStatusCompleted)
	if err != nil {
		return nil, err
	}
	return collectMeets(rows)
}

// ListUpcoming returns meets starting after the given instant, used by
// the reminder reconciler.
func (r *MeetRepository) ListUpcoming(ctx context.Context, from time.Time) ([]model.Meet, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM meets m
        LEFT JOIN users u ON u.id = m.admin_id
        WHERE m.start_at > $1
        ORDER BY m.start_at
    `, meetColumns)

	rows, err := r.db.Query(ctx, query, from)
	if err != nil {
		return nil, err
	}
	return collectMeets(rows)
}

func scanMeet(row pgx.Row) (*model.Meet, error) {
	var m model.Meet
	err := row.Scan(
		&m.ID, &m.EventName, &m.CustomerName, &m.Email, &m.Phone, &m.Location,
		&m.Platform, &m.Devices, &m.URL, &m.ShortURL, &m.Status, &m.Description,
		&m.AdminID, &m.AdminName, &m.Start, &m.End, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMeets(rows pgx.Rows) ([]model.Meet, error) {
	defer rows.Close()

	var meets []model.Meet
	for rows.Next() {
		m, err := scanMeet(rows)
		if err != nil {
			return nil, err
		}
		meets = append(meets, *m)
	}
	return meets, rows.Err()
}
