package recce

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Items are stored as a JSONB body.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL recce repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectRecce = `
	SELECT id, project_id, title, recce_date, meeting_point, content, created_at, updated_at
	FROM recces
`

// Get retrieves a recce by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Document, error) {
	row := r.pool.QueryRow(ctx, selectRecce+`WHERE id = $1`, id)

	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecceNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByProject retrieves the recces of a project ordered by ID.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string, opts ListOptions) (*ListResult, error) {
	limit := listLimit(opts)
	rows, err := r.pool.Query(ctx,
		selectRecce+`WHERE project_id = $1 AND id > $2 ORDER BY id LIMIT $3`,
		projectID, opts.Cursor, limit+1,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, limit)
}

// Scan pages through all recces ordered by ID.
func (r *PostgresRepository) Scan(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := listLimit(opts)
	rows, err := r.pool.Query(ctx,
		selectRecce+`WHERE id > $1 ORDER BY id LIMIT $2`,
		opts.Cursor, limit+1,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, limit)
}

// Create stores a new recce.
func (r *PostgresRepository) Create(ctx context.Context, d *Document) error {
	content, err := EncodeContent(d.Items)
	if err != nil {
		return fmt.Errorf("encode recce content: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO recces (id, project_id, title, recce_date, meeting_point, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.ID, d.ProjectID, d.Title, d.Date, d.MeetingPoint, content, d.CreatedAt, d.UpdatedAt)
	return err
}

// Update rewrites an existing recce in the current layout.
func (r *PostgresRepository) Update(ctx context.Context, d *Document) error {
	content, err := EncodeContent(d.Items)
	if err != nil {
		return fmt.Errorf("encode recce content: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE recces
		SET title = $2, recce_date = $3, meeting_point = $4, content = $5, updated_at = $6
		WHERE id = $1
	`, d.ID, d.Title, d.Date, d.MeetingPoint, content, d.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecceNotFound
	}
	return nil
}

// Delete deletes a recce by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecceNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	d, content, err := scanRow(row)
	if err != nil {
		return nil, err
	}
	if err := d.decode(content); err != nil {
		return nil, &DecodeError{ID: d.ID, Err: err}
	}
	return d, nil
}

func scanRow(row pgx.Row) (*Document, []byte, error) {
	var (
		d       Document
		content []byte
	)
	err := row.Scan(
		&d.ID,
		&d.ProjectID,
		&d.Title,
		&d.Date,
		&d.MeetingPoint,
		&content,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, nil, err
	}
	return &d, content, nil
}

func (d *Document) decode(content []byte) error {
	c, err := DecodeContent(content)
	if err != nil {
		return err
	}
	d.Items = c.Items
	d.Legacy = c.Legacy
	return nil
}

type storedRow struct {
	doc     *Document
	content []byte
}

// collect reads up to limit+1 rows. Rows whose body does not decode are
// reported in Skipped and still count toward the page.
func collect(rows pgx.Rows, limit int) (*ListResult, error) {
	defer rows.Close()

	var page []storedRow
	for rows.Next() {
		d, content, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		page = append(page, storedRow{doc: d, content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{}
	if len(page) > limit {
		page = page[:limit]
		result.NextCursor = page[limit-1].doc.ID
	}
	for _, row := range page {
		if err := row.doc.decode(row.content); err != nil {
			result.Skipped = append(result.Skipped, &DecodeError{ID: row.doc.ID, Err: err})
			continue
		}
		result.Items = append(result.Items, row.doc)
	}
	return result, nil
}

func listLimit(opts ListOptions) int {
	if opts.Limit <= 0 {
		return 50
	}
	return opts.Limit
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
