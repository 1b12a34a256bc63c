package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proprio/propertyhub/internal/domain/property"
	"github.com/proprio/propertyhub/internal/observability"
)

type PropertiesRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewPropertiesRepo(pool *pgxpool.Pool, metrics *observability.Prom) *PropertiesRepo {
	return &PropertiesRepo{pool: pool, metrics: metrics}
}

// access set aggregated per row; the cast keeps the result a text[] so it
// scans straight into []string.
const propertySelect = `
	SELECT p.id, p.name, p.url, p.address, p.city, p.zip_code, p.country, p.image, p.area,
	       COALESCE(array_agg(pu.user_id::text) FILTER (WHERE pu.user_id IS NOT NULL), '{}'),
	       p.created_at, p.updated_at
	FROM properties p
	LEFT JOIN property_users pu ON pu.property_id = p.id
`

func scanProperty(row pgx.Row) (property.Property, error) {
	var p property.Property

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.URL,
		&p.Address,
		&p.City,
		&p.ZipCode,
		&p.Country,
		&p.Image,
		&p.Area,
		&p.Users,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

// Create inserts the property and grants the creator access in one
// transaction; the creator is always the first member of the access set.
func (r *PropertiesRepo) Create(ctx context.Context, req property.CreatePropertyRequest, creatorID string) (property.Property, error) {
	p := property.FromCreateRequest(req)

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.Users = []string{creatorID}
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.metrics.ObserveDB("properties.create", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx,
			`INSERT INTO properties (id, name, url, address, city, zip_code, country, image, area, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			p.ID, p.Name, p.URL, p.Address, p.City, p.ZipCode, p.Country, p.Image, p.Area, p.CreatedAt, p.UpdatedAt,
		)

		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO property_users (property_id, user_id) VALUES ($1,$2)`,
			p.ID, creatorID,
		)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return property.Property{}, err
	}

	return p, nil
}

func (r *PropertiesRepo) GetByID(ctx context.Context, id string) (property.Property, error) {
	var p property.Property

	err := r.metrics.ObserveDB("properties.get_by_id", func() error {
		var err error
		p, err = scanProperty(r.pool.QueryRow(ctx, propertySelect+` WHERE p.id = $1 GROUP BY p.id`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return property.Property{}, property.ErrNotFound
		}

		return property.Property{}, err
	}

	return p, nil
}

func (r *PropertiesRepo) List(ctx context.Context) ([]property.Property, error) {
	var output []property.Property

	err := r.metrics.ObserveDB("properties.list", func() error {
		rows, err := r.pool.Query(ctx, propertySelect+` GROUP BY p.id ORDER BY p.created_at ASC, p.id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]property.Property, 0)

		for rows.Next() {
			p, err := scanProperty(rows)

			if err != nil {
				return err
			}

			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Update overwrites only the fields present in req (partial merge). The
// access set is untouched; membership changes are not part of this surface.
func (r *PropertiesRepo) Update(ctx context.Context, id string, req property.UpdatePropertyRequest) (property.Property, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	argsPosition := 2

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if req.Name != nil {
		appendSet("name", *req.Name)
	}
	if req.URL != nil {
		appendSet("url", *req.URL)
	}
	if req.Address != nil {
		appendSet("address", *req.Address)
	}
	if req.City != nil {
		appendSet("city", *req.City)
	}
	if req.ZipCode != nil {
		appendSet("zip_code", *req.ZipCode)
	}
	if req.Country != nil {
		appendSet("country", *req.Country)
	}
	if req.Image != nil {
		appendSet("image", *req.Image)
	}
	if req.Area != nil {
		appendSet("area", *req.Area)
	}

	if len(sets) == 1 {
		return r.GetByID(ctx, id)
	}

	err := r.metrics.ObserveDB("properties.update", func() error {
		tag, err := r.pool.Exec(ctx, `UPDATE properties SET `+joinSets(sets)+` WHERE id = $1`, args...)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return property.Property{}, property.ErrNotFound
		}

		return property.Property{}, err
	}

	// re-read to serialize the merged row with its access set
	return r.GetByID(ctx, id)
}

func (r *PropertiesRepo) Delete(ctx context.Context, id string) error {
	err := r.metrics.ObserveDB("properties.delete", func() error {
		// property_users rows go with the property via ON DELETE CASCADE
		tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return nil
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return property.ErrNotFound
	}

	return err
}
