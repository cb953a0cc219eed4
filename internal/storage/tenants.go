package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"domus/internal/core"
)

// TenantUpdate carries the fields of a partial tenant update.
type TenantUpdate struct {
	HouseID   *int64
	RoomID    *int64
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	EntryDate *core.Date
	Frequency *core.PaymentFrequency
	RentCents *int64
}

const tenantColumns = `id, house_id, room_id, first_name, last_name, phone, email,
	entry_date, payment_frequency, rent_cents`

func (r *SQLiteRepository) CreateTenant(ctx context.Context, t core.Tenant) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (house_id, room_id, first_name, last_name, phone, email,
			entry_date, payment_frequency, rent_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.HouseID, t.RoomID, t.FirstName, t.LastName, t.Phone, nullString(t.Email),
		t.EntryDate.String(), string(t.Frequency), t.Rent.Cents)
	if err != nil {
		return 0, fmt.Errorf("create tenant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("tenant insert id: %w", err)
	}

	slog.InfoContext(ctx, "Tenant created",
		"id", id, "house_id", t.HouseID, "room_id", t.RoomID)
	return id, nil
}

// CreateTenantWithRoom creates a room and its tenant in one transaction, so
// a failure on either side leaves no orphan room behind.
func (r *SQLiteRepository) CreateTenantWithRoom(ctx context.Context, room core.Room, t core.Tenant) (roomID, tenantID int64, err error) {
	err = r.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (house_id, name, type) VALUES (?, ?, ?)`,
			room.HouseID, room.Name, nullString(room.Type))
		if err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		roomID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("room insert id: %w", err)
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO tenants (house_id, room_id, first_name, last_name, phone, email,
				entry_date, payment_frequency, rent_cents)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.HouseID, roomID, t.FirstName, t.LastName, t.Phone, nullString(t.Email),
			t.EntryDate.String(), string(t.Frequency), t.Rent.Cents)
		if err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		tenantID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("tenant insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	slog.InfoContext(ctx, "Tenant created with room",
		"tenant_id", tenantID, "room_id", roomID, "house_id", t.HouseID)
	return roomID, tenantID, nil
}

func (r *SQLiteRepository) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err != nil {
		return core.Tenant{}, fmt.Errorf("get tenant %d: %w", id, mapRowErr(err))
	}
	return t, nil
}

// ListTenants returns all tenants, most recent entry first.
func (r *SQLiteRepository) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY entry_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	return collectTenants(rows)
}

func (r *SQLiteRepository) TenantsByHouse(ctx context.Context, houseID int64) ([]core.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE house_id = ? ORDER BY entry_date DESC, id DESC`,
		houseID)
	if err != nil {
		return nil, fmt.Errorf("tenants by house %d: %w", houseID, err)
	}
	defer rows.Close()
	return collectTenants(rows)
}

func (r *SQLiteRepository) UpdateTenant(ctx context.Context, id int64, u TenantUpdate) error {
	var cols []string
	var args []any
	if u.HouseID != nil {
		cols = append(cols, "house_id = ?")
		args = append(args, *u.HouseID)
	}
	if u.RoomID != nil {
		cols = append(cols, "room_id = ?")
		args = append(args, *u.RoomID)
	}
	if u.FirstName != nil {
		cols = append(cols, "first_name = ?")
		args = append(args, *u.FirstName)
	}
	if u.LastName != nil {
		cols = append(cols, "last_name = ?")
		args = append(args, *u.LastName)
	}
	if u.Phone != nil {
		cols = append(cols, "phone = ?")
		args = append(args, *u.Phone)
	}
	if u.Email != nil {
		cols = append(cols, "email = ?")
		args = append(args, nullString(*u.Email))
	}
	if u.EntryDate != nil {
		cols = append(cols, "entry_date = ?")
		args = append(args, u.EntryDate.String())
	}
	if u.Frequency != nil {
		cols = append(cols, "payment_frequency = ?")
		args = append(args, string(*u.Frequency))
	}
	if u.RentCents != nil {
		cols = append(cols, "rent_cents = ?")
		args = append(args, *u.RentCents)
	}

	set, args := buildUpdate(cols, args)
	if set == "" {
		return nil
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE tenants SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update tenant %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tenant %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTenant removes the tenant; payments follow via cascade.
func (r *SQLiteRepository) DeleteTenant(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tenant %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete tenant %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Tenant deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) CountTenants(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return n, nil
}

// SumRent totals rent over a house's tenants, in cents.
func (r *SQLiteRepository) SumRent(ctx context.Context, houseID int64) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(rent_cents) FROM tenants WHERE house_id = ?`, houseID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum rent for house %d: %w", houseID, err)
	}
	return total.Int64, nil
}

func collectTenants(rows *sql.Rows) ([]core.Tenant, error) {
	var tenants []core.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func scanTenant(row rowScanner) (core.Tenant, error) {
	var t core.Tenant
	var email sql.NullString
	var entryDate, frequency string
	var rentCents int64
	err := row.Scan(&t.ID, &t.HouseID, &t.RoomID, &t.FirstName, &t.LastName,
		&t.Phone, &email, &entryDate, &frequency, &rentCents)
	if err != nil {
		return core.Tenant{}, err
	}
	t.Email = email.String
	d, err := core.ParseDate(entryDate)
	if err != nil {
		return core.Tenant{}, fmt.Errorf("tenant %d entry date %q: %w", t.ID, entryDate, err)
	}
	t.EntryDate = d
	t.Frequency = core.PaymentFrequency(frequency)
	t.Rent = core.Money{Cents: rentCents}
	return t, nil
}
