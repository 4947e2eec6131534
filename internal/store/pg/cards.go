package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

const cardColumns = `id, user_id, number, holder, expiration_date`

type cardRepo struct{ pool *pgxpool.Pool }

func scanCard(row pgx.Row) (repository.Card, error) {
	var c repository.Card
	err := row.Scan(&c.ID, &c.UserID, &c.Number, &c.Holder, &c.ExpirationDate)
	return c, err
}

func collectCards(rows pgx.Rows) ([]repository.Card, error) {
	defer rows.Close()
	out := []repository.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertCard(ctx context.Context, q querier, c repository.Card) (repository.Card, error) {
	const query = `
		INSERT INTO card (user_id, number, holder, expiration_date)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + cardColumns
	out, err := scanCard(q.QueryRow(ctx, query, c.UserID, c.Number, c.Holder, c.ExpirationDate))
	return out, mapErr(err)
}

func updateCard(ctx context.Context, q querier, c repository.Card, ownerID int64) (repository.Card, error) {
	query := `
		UPDATE card SET number = $2, holder = $3, expiration_date = $4, updated_at = now()
		WHERE id = $1`
	args := []any{c.ID, c.Number, c.Holder, c.ExpirationDate}
	if ownerID > 0 {
		query += ` AND user_id = $5`
		args = append(args, ownerID)
	}
	query += ` RETURNING ` + cardColumns
	out, err := scanCard(q.QueryRow(ctx, query, args...))
	return out, mapErr(err)
}

func cardsByUsers(ctx context.Context, q querier, userIDs []int64) (map[int64][]repository.Card, error) {
	const query = `SELECT ` + cardColumns + ` FROM card WHERE user_id = ANY($1) ORDER BY id`
	rows, err := q.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	cards, err := collectCards(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]repository.Card, len(userIDs))
	for _, c := range cards {
		out[c.UserID] = append(out[c.UserID], c)
	}
	return out, nil
}

func (r *cardRepo) Create(ctx context.Context, card repository.Card) (*repository.Card, error) {
	c, err := insertCard(ctx, r.pool, card)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cardRepo) GetByID(ctx context.Context, id int64) (*repository.Card, error) {
	const query = `SELECT ` + cardColumns + ` FROM card WHERE id = $1`
	c, err := scanCard(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *cardRepo) ListByUser(ctx context.Context, userID int64) ([]repository.Card, error) {
	const query = `SELECT ` + cardColumns + ` FROM card WHERE user_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectCards(rows)
}

func (r *cardRepo) List(ctx context.Context, filter repository.PageFilter) ([]repository.Card, error) {
	const query = `SELECT ` + cardColumns + ` FROM card ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, filter.Size, filter.Offset())
	if err != nil {
		return nil, err
	}
	return collectCards(rows)
}

func (r *cardRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM card`).Scan(&n)
	return n, err
}

func (r *cardRepo) Update(ctx context.Context, card repository.Card) (*repository.Card, error) {
	c, err := updateCard(ctx, r.pool, card, 0)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cardRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM card WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *cardRepo) OwnerEmail(ctx context.Context, cardID int64) (string, error) {
	const query = `
		SELECT u.email FROM card c
		JOIN app_user u ON u.id = c.user_id
		WHERE c.id = $1`
	var email string
	if err := r.pool.QueryRow(ctx, query, cardID).Scan(&email); err != nil {
		return "", mapErr(err)
	}
	return email, nil
}
