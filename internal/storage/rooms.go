package storage

import (
	"context"
	"database/sql"
	"fmt"

	"domus/internal/core"
)

// RoomUpdate carries the fields of a partial room update.
type RoomUpdate struct {
	HouseID *int64
	Name    *string
	Type    *string
}

func (r *SQLiteRepository) CreateRoom(ctx context.Context, room core.Room) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (house_id, name, type) VALUES (?, ?, ?)`,
		room.HouseID, room.Name, nullString(room.Type))
	if err != nil {
		return 0, fmt.Errorf("create room: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("room insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetRoom(ctx context.Context, id int64) (core.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, house_id, name, type FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		return core.Room{}, fmt.Errorf("get room %d: %w", id, mapRowErr(err))
	}
	return room, nil
}

// RoomsByHouse returns the house's rooms ordered by name.
func (r *SQLiteRepository) RoomsByHouse(ctx context.Context, houseID int64) ([]core.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, house_id, name, type FROM rooms WHERE house_id = ? ORDER BY name`, houseID)
	if err != nil {
		return nil, fmt.Errorf("rooms by house %d: %w", houseID, err)
	}
	defer rows.Close()
	return collectRooms(rows)
}

func (r *SQLiteRepository) ListRooms(ctx context.Context) ([]core.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, house_id, name, type FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()
	return collectRooms(rows)
}

func (r *SQLiteRepository) UpdateRoom(ctx context.Context, id int64, u RoomUpdate) error {
	var cols []string
	var args []any
	if u.HouseID != nil {
		cols = append(cols, "house_id = ?")
		args = append(args, *u.HouseID)
	}
	if u.Name != nil {
		cols = append(cols, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Type != nil {
		cols = append(cols, "type = ?")
		args = append(args, nullString(*u.Type))
	}

	set, args := buildUpdate(cols, args)
	if set == "" {
		return nil
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update room %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update room %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRoom(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete room %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CountRooms(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return n, nil
}

func collectRooms(rows *sql.Rows) ([]core.Room, error) {
	var rooms []core.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func scanRoom(row rowScanner) (core.Room, error) {
	var room core.Room
	var typ sql.NullString
	if err := row.Scan(&room.ID, &room.HouseID, &room.Name, &typ); err != nil {
		return core.Room{}, err
	}
	room.Type = typ.String
	return room, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
