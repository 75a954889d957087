package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"meetcrm/internal/model"
)

type LectureRepository struct {
	db *pgxpool.Pool
}

func NewLectureRepository(db *pgxpool.Pool) *LectureRepository {
	return &LectureRepository{db: db}
}

const lectureColumns = `
    l.id, l.group_name, l.lector, l.platform, l.unit, l.location, l.url,
    l.short_url, l.stream_key, l.description, l.admin_id, u.name,
    l.date, l.start_at, l.end_at, l.abnormal_time, l.created_at, l.updated_at
`

// LectureUpdate carries the patchable fields; nil means "keep".
type LectureUpdate struct {
	Group        *string
	Lector       *string
	Platform     *string
	Unit         *string
	Location     *string
	URL          *string
	ShortURL     *string
	StreamKey    *string
	Description  *string
	AdminID      *uuid.UUID
	Date         *time.Time
	Start        *time.Time
	End          *time.Time
	AbnormalTime *string
}

// ScheduleMonth is one year/month pair that has lectures.
type ScheduleMonth struct {
	Year   int
	Months []int
}

// Create inserts one lecture.
func (r *LectureRepository) Create(ctx context.Context, l *model.Lecture) error {
	query := `
        INSERT INTO lectures (
            id, group_name, lector, platform, unit, location, url, short_url,
            stream_key, description, admin_id, date, start_at, end_at,
            abnormal_time, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
        RETURNING created_at
    `
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return r.db.QueryRow(ctx, query,
		l.ID, l.Group, l.Lector, l.Platform, l.Unit, l.Location, l.URL,
		l.ShortURL, l.StreamKey, l.Description, l.AdminID, l.Date,
		l.Start, l.End, l.AbnormalTime,
	).Scan(&l.CreatedAt)
}

// CreateBulk inserts a batch of lectures in one round trip.
func (r *LectureRepository) CreateBulk(ctx context.Context, lectures []model.Lecture) error {
	batch := &pgx.Batch{}
	query := `
        INSERT INTO lectures (
            id, group_name, lector, platform, unit, location, url, short_url,
            stream_key, description, admin_id, date, start_at, end_at,
            abnormal_time, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
    `
	for i := range lectures {
		l := &lectures[i]
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		batch.Queue(query,
			l.ID, l.Group, l.Lector, l.Platform, l.Unit, l.Location, l.URL,
			l.ShortURL, l.StreamKey, l.Description, l.AdminID, l.Date,
			l.Start, l.End, l.AbnormalTime,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range lectures {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("bulk insert lectures: %w", err)
		}
	}
	return nil
}

// GetByID returns one lecture with its admin name.
func (r *LectureRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lecture, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lectures l
        LEFT JOIN users u ON u.id = l.admin_id
        WHERE l.id = $1
    `, lectureColumns)

	return scanLecture(r.db.QueryRow(ctx, query, id))
}

// Months returns, per year, the months that have at least one lecture.
func (r *LectureRepository) Months(ctx context.Context) ([]ScheduleMonth, error) {
	query := `
        SELECT EXTRACT(YEAR FROM date)::int AS year,
               array_agg(DISTINCT EXTRACT(MONTH FROM date)::int) AS months
        FROM lectures
        GROUP BY 1
        ORDER BY 1
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScheduleMonth
	for rows.Next() {
		var sm ScheduleMonth
		if err := rows.Scan(&sm.Year, &sm.Months); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// ListByYearMonth returns all lectures in a calendar month.
func (r *LectureRepository) ListByYearMonth(ctx context.Context, year, month int) ([]model.Lecture, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lectures l
        LEFT JOIN users u ON u.id = l.admin_id
        WHERE EXTRACT(YEAR FROM l.date) = $1 AND EXTRACT(MONTH FROM l.date) = $2
        ORDER BY l.date, l.start_at
    `, lectureColumns)

	rows, err := r.db.Query(ctx, query, year, month)
	if err != nil {
		return nil, err
	}
	return collectLectures(rows)
}

// ListByDate returns the schedule for one calendar day.
func (r *LectureRepository) ListByDate(ctx context.Context, date time.Time) ([]model.Lecture, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lectures l
        LEFT JOIN users u ON u.id = l.admin_id
        WHERE l.date::date = $1::date
        ORDER BY l.start_at
    `, lectureColumns)

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	return collectLectures(rows)
}

// ListRange returns assigned lectures within a day range, for exports.
func (r *LectureRepository) ListRange(ctx context.Context, start, end time.Time) ([]model.Lecture, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lectures l
        LEFT JOIN users u ON u.id = l.admin_id
        WHERE l.date >= $1 AND l.date <= $2 AND l.admin_id IS NOT NULL
        ORDER BY l.date, l.start_at
    `, lectureColumns)

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	return collectLectures(rows)
}

// ListUpcoming returns lectures on or after the given day, used by the
// reminder reconciler.
func (r *LectureRepository) ListUpcoming(ctx context.Context, from time.Time) ([]model.Lecture, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM lectures l
        LEFT JOIN users u ON u.id = l.admin_id
        WHERE l.date >= $1::date
        ORDER BY l.date, l.start_at
    `, lectureColumns)

	rows, err := r.db.Query(ctx, query, from)
	if err != nil {
		return nil, err
	}
	return collectLectures(rows)
}

// Update patches the non-nil fields and returns the updated row.
func (r *LectureRepository) Update(ctx context.Context, id uuid.UUID, upd LectureUpdate) (*model.Lecture, error) {
	query := `
        UPDATE lectures SET
            group_name = COALESCE($2, group_name),
            lector = COALESCE($3, lector),
            platform = COALESCE($4, platform),
            unit = COALESCE($5, unit),
            location = COALESCE($6, location),
            url = COALESCE($7, url),
            short_url = COALESCE($8, short_url),
            stream_key = COALESCE($9, stream_key),
            description = COALESCE($10, description),
            admin_id = COALESCE($11, admin_id),
            date = COALESCE($12, date),
            start_at = COALESCE($13, start_at),
            end_at = COALESCE($14, end_at),
            abnormal_time = COALESCE($15, abnormal_time),
            updated_at = NOW()
        WHERE id = $1
        RETURNING id
    `
	var returned uuid.UUID
	err := r.db.QueryRow(ctx, query,
		id, upd.Group, upd.Lector, upd.Platform, upd.Unit, upd.Location,
		upd.URL, upd.ShortURL, upd.StreamKey, upd.Description, upd.AdminID,
		upd.Date, upd.Start, upd.End, upd.AbnormalTime,
	).Scan(&returned)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a lecture.
func (r *LectureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanLecture(row pgx.Row) (*model.Lecture, error) {
	var l model.Lecture
	err := row.Scan(
		&l.ID, &l.Group, &l.Lector, &l.Platform, &l.Unit, &l.Location, &l.URL,
		&l.ShortURL, &l.StreamKey, &l.Description, &l.AdminID, &l.AdminName,
		&l.Date, &l.Start, &l.End, &l.AbnormalTime, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLectures(rows pgx.Rows) ([]model.Lecture, error) {
	defer rows.Close()

	var lectures []model.Lecture
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, *l)
	}
	return lectures, rows.Err()
}
