package storage

import (
	"context"
	"fmt"
	"log/slog"

	"domus/internal/core"
)

// HouseUpdate carries the fields of a partial house update. Nil means
// "leave untouched".
type HouseUpdate struct {
	Name    *string
	Address *string
}

func (r *SQLiteRepository) CreateHouse(ctx context.Context, h core.House) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO houses (name, address, created_at) VALUES (?, ?, ?)`,
		h.Name, h.Address, now())
	if err != nil {
		return 0, fmt.Errorf("create house: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("house insert id: %w", err)
	}

	slog.InfoContext(ctx, "House created", "id", id, "name", h.Name)
	return id, nil
}

func (r *SQLiteRepository) GetHouse(ctx context.Context, id int64) (core.House, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, created_at FROM houses WHERE id = ?`, id)
	h, err := scanHouse(row)
	if err != nil {
		return core.House{}, fmt.Errorf("get house %d: %w", id, mapRowErr(err))
	}
	return h, nil
}

// ListHouses returns all houses, newest first.
func (r *SQLiteRepository) ListHouses(ctx context.Context) ([]core.House, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, created_at FROM houses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list houses: %w", err)
	}
	defer rows.Close()

	var houses []core.House
	for rows.Next() {
		h, err := scanHouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan house: %w", err)
		}
		houses = append(houses, h)
	}
	return houses, rows.Err()
}

func (r *SQLiteRepository) UpdateHouse(ctx context.Context, id int64, u HouseUpdate) error {
	var cols []string
	var args []any
	if u.Name != nil {
		cols = append(cols, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Address != nil {
		cols = append(cols, "address = ?")
		args = append(args, *u.Address)
	}

	set, args := buildUpdate(cols, args)
	if set == "" {
		return nil
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE houses SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update house %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update house %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteHouse removes the house; rooms, tenants, and payments follow via
// foreign-key cascade.
func (r *SQLiteRepository) DeleteHouse(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM houses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete house %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete house %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "House deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) CountHouses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM houses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count houses: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHouse(row rowScanner) (core.House, error) {
	var h core.House
	var createdAt string
	if err := row.Scan(&h.ID, &h.Name, &h.Address, &createdAt); err != nil {
		return core.House{}, err
	}
	h.CreatedAt = parseTime(createdAt)
	return h, nil
}
