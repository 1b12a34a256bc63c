package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proprio/propertyhub/internal/domain/user"
	"github.com/proprio/propertyhub/internal/observability"
)

type UsersRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, metrics: metrics}
}

const userColumns = `id, email, password_hash, first_name, last_name, roles, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Roles,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, firstName, lastName string, roles []string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.metrics.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, first_name, last_name, roles, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Roles, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.metrics.ObserveDB("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.metrics.ObserveDB("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var output []user.User

	err := r.metrics.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]user.User, 0)

		for rows.Next() {
			u, err := scanUser(rows)

			if err != nil {
				return err
			}

			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Update overwrites only the fields present in upd; everything else keeps
// its stored value. An empty payload is a no-op read.
func (r *UsersRepo) Update(ctx context.Context, id string, upd user.Update) (user.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	argsPosition := 2

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if upd.Email != nil {
		appendSet("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		appendSet("password_hash", *upd.PasswordHash)
	}
	if upd.FirstName != nil {
		appendSet("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		appendSet("last_name", *upd.LastName)
	}

	if len(sets) == 1 {
		return r.GetByID(ctx, id)
	}

	query := `UPDATE users SET ` + joinSets(sets) + ` WHERE id = $1 RETURNING ` + userColumns

	var u user.User

	err := r.metrics.ObserveDB("users.update", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	err := r.metrics.ObserveDB("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return nil
	})

	// a second delete of the same id must surface as not found
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}

	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func joinSets(sets []string) string {
	out := sets[0]

	for _, s := range sets[1:] {
		out += ", " + s
	}

	return out
}
