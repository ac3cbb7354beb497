// Package fleet is the SQLite-backed store for transit entities: stops,
// paths, routes, vehicles, drivers, daily trips and deployments. Every
// method is one bounded statement or transaction; nothing holds the
// database across a pipeline suspension.
package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/moviops/movi/pkg/domain"
)

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and ensures the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite is single-writer. One shared connection lets database/sql
	// serialize callers instead of them fighting for the write lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying handle.
func (s *Store) Close() error { return s.db.Close() }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS stops (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT    NOT NULL,
	latitude  REAL    NOT NULL,
	longitude REAL    NOT NULL
);

CREATE TABLE IF NOT EXISTS paths (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT    NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS path_stops (
	path_id    INTEGER NOT NULL REFERENCES paths(id),
	stop_id    INTEGER NOT NULL REFERENCES stops(id),
	stop_order INTEGER NOT NULL,
	PRIMARY KEY (path_id, stop_order)
);

CREATE TABLE IF NOT EXISTS routes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path_id    INTEGER NOT NULL REFERENCES paths(id),
	name       TEXT    NOT NULL,
	shift_time TEXT    NOT NULL,
	direction  TEXT    NOT NULL CHECK (direction IN ('UP','DOWN')),
	active     INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS vehicles (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	license_plate TEXT    NOT NULL UNIQUE,
	type          TEXT    NOT NULL,
	capacity      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS drivers (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT    NOT NULL,
	license_number TEXT    NOT NULL UNIQUE,
	phone          TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS daily_trips (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	route_id           INTEGER NOT NULL REFERENCES routes(id),
	display_name       TEXT    NOT NULL,
	booking_percentage INTEGER NOT NULL DEFAULT 0,
	live_status        TEXT    NOT NULL DEFAULT 'scheduled',
	trip_date          TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS deployments (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id     INTEGER NOT NULL UNIQUE REFERENCES daily_trips(id),
	vehicle_id  INTEGER NOT NULL REFERENCES vehicles(id),
	driver_id   INTEGER NOT NULL REFERENCES drivers(id),
	deployed_at TEXT    NOT NULL DEFAULT (datetime('now'))
);
`

// --- reads ---

func (s *Store) TripByID(ctx context.Context, id int64) (*domain.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, route_id, display_name, booking_percentage, live_status, trip_date
		 FROM daily_trips WHERE id = ?`, id)
	return scanTrip(row)
}

func (s *Store) TripByName(ctx context.Context, name string) (*domain.Trip, error) {
	// Exact match first, then a single unambiguous substring match so
	// operators can say "Morning Loop" for "Morning Loop 08:00".
	row := s.db.QueryRowContext(ctx,
		`SELECT id, route_id, display_name, booking_percentage, live_status, trip_date
		 FROM daily_trips WHERE display_name = ?`, name)
	trip, err := scanTrip(row)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return trip, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, route_id, display_name, booking_percentage, live_status, trip_date
		 FROM daily_trips WHERE display_name LIKE ? LIMIT 2`, "%"+name+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.Trip
	for rows.Next() {
		t := &domain.Trip{}
		if err := rows.Scan(&t.ID, &t.RouteID, &t.DisplayName, &t.BookingPercentage, &t.LiveStatus, &t.TripDate); err != nil {
			return nil, err
		}
		matches = append(matches, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: %q matches multiple trips", domain.ErrNotFound, name)
	}
}

func (s *Store) RouteByID(ctx context.Context, id int64) (*domain.Route, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, path_id, name, shift_time, direction, active FROM routes WHERE id = ?`, id)
	return scanRoute(row)
}

func (s *Store) RouteByName(ctx context.Context, name string) (*domain.Route, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, path_id, name, shift_time, direction, active FROM routes WHERE name = ?`, name)
	return scanRoute(row)
}

func (s *Store) PathByName(ctx context.Context, name string) (*domain.Path, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM paths WHERE name = ?`, name)
	p := &domain.Path{}
	if err := row.Scan(&p.ID, &p.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT stop_id FROM path_stops WHERE path_id = ? ORDER BY stop_order`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		p.StopIDs = append(p.StopIDs, id)
	}
	return p, rows.Err()
}

func (s *Store) Paths(ctx context.Context) ([]domain.Path, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM paths ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []domain.Path
	for rows.Next() {
		var p domain.Path
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *Store) VehicleByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, license_plate, type, capacity FROM vehicles WHERE id = ?`, id)
	v := &domain.Vehicle{}
	if err := row.Scan(&v.ID, &v.LicensePlate, &v.Type, &v.Capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *Store) DriverByID(ctx context.Context, id int64) (*domain.Driver, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, license_number, phone FROM drivers WHERE id = ?`, id)
	d := &domain.Driver{}
	if err := row.Scan(&d.ID, &d.Name, &d.LicenseNumber, &d.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *Store) DeploymentForTrip(ctx context.Context, tripID int64) (*domain.Deployment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, vehicle_id, driver_id, deployed_at
		 FROM deployments WHERE trip_id = ?`, tripID)
	return scanDeployment(row)
}

func (s *Store) UnassignedVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.id, v.license_plate, v.type, v.capacity
		 FROM vehicles v
		 WHERE v.id NOT IN (SELECT vehicle_id FROM deployments)
		 ORDER BY v.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.LicensePlate, &v.Type, &v.Capacity); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) StopsForPath(ctx context.Context, pathID int64) ([]domain.Stop, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT st.id, st.name, st.latitude, st.longitude
		 FROM path_stops ps JOIN stops st ON st.id = ps.stop_id
		 WHERE ps.path_id = ? ORDER BY ps.stop_order`, pathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Stop
	for rows.Next() {
		var st domain.Stop
		if err := rows.Scan(&st.ID, &st.Name, &st.Latitude, &st.Longitude); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) RoutesForPath(ctx context.Context, pathID int64) ([]domain.Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path_id, name, shift_time, direction, active
		 FROM routes WHERE path_id = ? ORDER BY shift_time`, pathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Route
	for rows.Next() {
		var r domain.Route
		if err := rows.Scan(&r.ID, &r.PathID, &r.Name, &r.ShiftTime, &r.Direction, &r.Active); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- mutations ---

func (s *Store) CreateStop(ctx context.Context, stop *domain.Stop) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stops (name, latitude, longitude) VALUES (?, ?, ?)`,
		stop.Name, stop.Latitude, stop.Longitude)
	if err != nil {
		return err
	}
	stop.ID, err = res.LastInsertId()
	return err
}

func (s *Store) CreatePath(ctx context.Context, path *domain.Path) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stopID := range path.StopIDs {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM stops WHERE id = ?`, stopID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: stop %d", domain.ErrNotFound, stopID)
			}
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO paths (name) VALUES (?)`, path.Name)
	if err != nil {
		return err
	}
	if path.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	for order, stopID := range path.StopIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO path_stops (path_id, stop_id, stop_order) VALUES (?, ?, ?)`,
			path.ID, stopID, order+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) CreateRoute(ctx context.Context, route *domain.Route) error {
	var pathName string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM paths WHERE id = ?`, route.PathID).Scan(&pathName)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: path %d", domain.ErrNotFound, route.PathID)
	}
	if err != nil {
		return err
	}
	if route.Name == "" {
		route.Name = fmt.Sprintf("%s %s %s", pathName, route.ShiftTime, route.Direction)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO routes (path_id, name, shift_time, direction, active) VALUES (?, ?, ?, ?, ?)`,
		route.PathID, route.Name, route.ShiftTime, route.Direction, route.Active)
	if err != nil {
		return err
	}
	route.ID, err = res.LastInsertId()
	return err
}

func (s *Store) CreateTrip(ctx context.Context, trip *domain.Trip) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_trips (route_id, display_name, booking_percentage, live_status, trip_date)
		 VALUES (?, ?, ?, ?, ?)`,
		trip.RouteID, trip.DisplayName, trip.BookingPercentage, trip.LiveStatus, trip.TripDate)
	if err != nil {
		return err
	}
	trip.ID, err = res.LastInsertId()
	return err
}

func (s *Store) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (license_plate, type, capacity) VALUES (?, ?, ?)`,
		v.LicensePlate, v.Type, v.Capacity)
	if err != nil {
		return err
	}
	v.ID, err = res.LastInsertId()
	return err
}

func (s *Store) CreateDriver(ctx context.Context, d *domain.Driver) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO drivers (name, license_number, phone) VALUES (?, ?, ?)`,
		d.Name, d.LicenseNumber, d.Phone)
	if err != nil {
		return err
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (s *Store) CreateDeployment(ctx context.Context, d *domain.Deployment) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO deployments (trip_id, vehicle_id, driver_id) VALUES (?, ?, ?)`,
		d.TripID, d.VehicleID, d.DriverID)
	if err != nil {
		return err
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (s *Store) DeleteDeploymentForTrip(ctx context.Context, tripID int64) (*domain.Deployment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, trip_id, vehicle_id, driver_id, deployed_at FROM deployments WHERE trip_id = ?`, tripID)
	dep, err := scanDeployment(row)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM deployments WHERE id = ?`, dep.ID); err != nil {
		return nil, err
	}
	return dep, tx.Commit()
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	t := &domain.Trip{}
	err := row.Scan(&t.ID, &t.RouteID, &t.DisplayName, &t.BookingPercentage, &t.LiveStatus, &t.TripDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	r := &domain.Route{}
	err := row.Scan(&r.ID, &r.PathID, &r.Name, &r.ShiftTime, &r.Direction, &r.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanDeployment(row rowScanner) (*domain.Deployment, error) {
	d := &domain.Deployment{}
	var deployedAt string
	err := row.Scan(&d.ID, &d.TripID, &d.VehicleID, &d.DriverID, &deployedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.DeployedAt = parseSQLiteTime(deployedAt)
	return d, nil
}
