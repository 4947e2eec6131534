package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

const userColumns = `id, name, surname, birth_date, email`

type userRepo struct{ pool *pgxpool.Pool }

func scanUser(row pgx.Row) (repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.BirthDate, &u.Email)
	return u, err
}

// loadUsers ejecuta query y adjunta las tarjetas de cada usuario.
func loadUsers(ctx context.Context, q querier, query string, args ...any) ([]repository.User, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	users := []repository.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	byUser, err := cardsByUsers(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Cards = byUser[users[i].ID]
		if users[i].Cards == nil {
			users[i].Cards = []repository.Card{}
		}
	}
	return users, nil
}

func getUser(ctx context.Context, q querier, id int64) (*repository.User, error) {
	users, err := loadUsers(ctx, q, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrNotFound
	}
	return &users[0], nil
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	var id int64
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `
			INSERT INTO app_user (name, surname, birth_date, email)
			VALUES ($1, $2, $3, $4)
			RETURNING id`
		if err := tx.QueryRow(ctx, q, in.Name, in.Surname, in.BirthDate, strings.TrimSpace(in.Email)).Scan(&id); err != nil {
			return mapErr(err)
		}
		for _, c := range in.Cards {
			c.UserID = id
			if _, err := insertCard(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return getUser(ctx, r.pool, id)
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*repository.User, error) {
	return getUser(ctx, r.pool, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	users, err := loadUsers(ctx, r.pool,
		`SELECT `+userColumns+` FROM app_user WHERE lower(email) = lower($1) LIMIT 1`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrNotFound
	}
	return &users[0], nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []int64) ([]repository.User, error) {
	if len(ids) == 0 {
		return []repository.User{}, nil
	}
	return loadUsers(ctx, r.pool, `SELECT `+userColumns+` FROM app_user WHERE id = ANY($1) ORDER BY id`, ids)
}

func (r *userRepo) List(ctx context.Context, filter repository.PageFilter) ([]repository.User, error) {
	return loadUsers(ctx, r.pool,
		`SELECT `+userColumns+` FROM app_user ORDER BY id LIMIT $1 OFFSET $2`, filter.Size, filter.Offset())
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM app_user`).Scan(&n)
	return n, err
}

func (r *userRepo) EmailByID(ctx context.Context, id int64) (string, error) {
	var email string
	if err := r.pool.QueryRow(ctx, `SELECT email FROM app_user WHERE id = $1`, id).Scan(&email); err != nil {
		return "", mapErr(err)
	}
	return email, nil
}

// SaveProfile aplica la actualización en una transacción. La fila del usuario
// se bloquea (FOR UPDATE) para serializar updates concurrentes del mismo perfil.
// Los borrados se acotan a user_id, así un id ajeno nunca se toca.
func (r *userRepo) SaveProfile(ctx context.Context, up repository.ProfileUpdate) (*repository.User, error) {
	var out *repository.User
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `SELECT id FROM app_user WHERE id = $1 FOR UPDATE`, up.UserID).Scan(&id); err != nil {
			return mapErr(err)
		}

		const qUser = `
			UPDATE app_user SET name = $2, surname = $3, birth_date = $4, updated_at = now()
			WHERE id = $1`
		if _, err := tx.Exec(ctx, qUser, up.UserID, up.Name, up.Surname, up.BirthDate); err != nil {
			return mapErr(err)
		}

		if up.ReplaceCards {
			if len(up.DeleteCardIDs) > 0 {
				if _, err := tx.Exec(ctx, `DELETE FROM card WHERE user_id = $1 AND id = ANY($2)`,
					up.UserID, up.DeleteCardIDs); err != nil {
					return err
				}
			}
			for _, c := range up.Cards {
				c.UserID = up.UserID
				var err error
				if c.ID > 0 {
					_, err = updateCard(ctx, tx, c, up.UserID)
					err = staleCard(err, c.ID)
				} else {
					_, err = insertCard(ctx, tx, c)
				}
				if err != nil {
					return err
				}
			}
		}

		u, err := getUser(ctx, tx, up.UserID)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// staleCard: una tarjeta a conservar que ya no está (o cambió de dueño) no es
// un usuario inexistente.
func staleCard(err error, cardID int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: card %d", repository.ErrStaleCard, cardID)
	}
	return err
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	// card.user_id tiene ON DELETE CASCADE
	tag, err := r.pool.Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
