package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danisampedro/locationapp/internal/spatial"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Objects and the work area are JSONB columns.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL map repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectMap = `
	SELECT id, project_id, location_id, name, image_url, image_width, image_height,
	       scale, objects, work_area, created_at, updated_at
	FROM location_maps
`

// Get retrieves a map by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Map, error) {
	row := r.pool.QueryRow(ctx, selectMap+`WHERE id = $1`, id)

	m, err := scanMap(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMapNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListByProject retrieves the maps of a project ordered by ID.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string, opts ListOptions) (*ListResult, error) {
	limit := listLimit(opts)
	rows, err := r.pool.Query(ctx,
		selectMap+`WHERE project_id = $1 AND id > $2 ORDER BY id LIMIT $3`,
		projectID, opts.Cursor, limit+1,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, limit)
}

// Scan pages through all maps ordered by ID.
func (r *PostgresRepository) Scan(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := listLimit(opts)
	rows, err := r.pool.Query(ctx,
		selectMap+`WHERE id > $1 ORDER BY id LIMIT $2`,
		opts.Cursor, limit+1,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, limit)
}

// Create stores a new map.
func (r *PostgresRepository) Create(ctx context.Context, m *Map) error {
	objects, workArea, err := encodeColumns(m)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO location_maps (
			id, project_id, location_id, name, image_url, image_width, image_height,
			scale, objects, work_area, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, m.ID, m.ProjectID, m.LocationID, m.Name, m.ImageURL, m.ImageWidth, m.ImageHeight,
		m.Scale, objects, workArea, m.CreatedAt, m.UpdatedAt)
	return err
}

// Update rewrites an existing map.
func (r *PostgresRepository) Update(ctx context.Context, m *Map) error {
	objects, workArea, err := encodeColumns(m)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE location_maps
		SET name = $2, image_url = $3, image_width = $4, image_height = $5,
		    scale = $6, objects = $7, work_area = $8, updated_at = $9
		WHERE id = $1
	`, m.ID, m.Name, m.ImageURL, m.ImageWidth, m.ImageHeight,
		m.Scale, objects, workArea, m.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMapNotFound
	}
	return nil
}

// Delete deletes a map by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM location_maps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMapNotFound
	}
	return nil
}

// encodeColumns returns the JSONB values of a map. A missing work area is
// written as SQL NULL.
func encodeColumns(m *Map) ([]byte, []byte, error) {
	objects := m.Objects
	if objects == nil {
		objects = []spatial.Object{}
	}
	objectsJSON, err := json.Marshal(objects)
	if err != nil {
		return nil, nil, fmt.Errorf("encode objects: %w", err)
	}

	var workAreaJSON []byte
	if m.WorkArea.Kind == spatial.WorkAreaPolygon {
		workAreaJSON, err = json.Marshal(m.WorkArea)
		if err != nil {
			return nil, nil, fmt.Errorf("encode work area: %w", err)
		}
	}
	return objectsJSON, workAreaJSON, nil
}

func scanMap(row pgx.Row) (*Map, error) {
	r, err := scanRow(row)
	if err != nil {
		return nil, err
	}
	if err := r.decode(); err != nil {
		return nil, &DecodeError{ID: r.m.ID, Err: err}
	}
	return r.m, nil
}

type storedRow struct {
	m        *Map
	objects  []byte
	workArea []byte
}

func scanRow(row pgx.Row) (storedRow, error) {
	var (
		m        Map
		objects  []byte
		workArea []byte
	)
	err := row.Scan(
		&m.ID,
		&m.ProjectID,
		&m.LocationID,
		&m.Name,
		&m.ImageURL,
		&m.ImageWidth,
		&m.ImageHeight,
		&m.Scale,
		&objects,
		&workArea,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return storedRow{}, err
	}
	return storedRow{m: &m, objects: objects, workArea: workArea}, nil
}

func (r storedRow) decode() error {
	if len(r.objects) > 0 {
		if err := json.Unmarshal(r.objects, &r.m.Objects); err != nil {
			return fmt.Errorf("objects: %w", err)
		}
	}

	wa, err := spatial.NormalizeWorkArea(r.workArea)
	if err != nil {
		return fmt.Errorf("work area: %w", err)
	}
	r.m.WorkArea = wa
	return nil
}

// collect reads up to limit+1 rows. Rows that do not decode are reported in
// Skipped and still count toward the page.
func collect(rows pgx.Rows, limit int) (*ListResult, error) {
	defer rows.Close()

	var page []storedRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		page = append(page, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{}
	if len(page) > limit {
		page = page[:limit]
		result.NextCursor = page[limit-1].m.ID
	}
	for _, r := range page {
		if err := r.decode(); err != nil {
			result.Skipped = append(result.Skipped, &DecodeError{ID: r.m.ID, Err: err})
			continue
		}
		result.Items = append(result.Items, r.m)
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
