package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS flights (
	id             BIGINT PRIMARY KEY,
	flight_number  TEXT NOT NULL,
	origin         TEXT NOT NULL,
	destination    TEXT NOT NULL,
	departure_date DATE NOT NULL,
	base_price     DOUBLE PRECISION NOT NULL,
	deleted        BOOLEAN NOT NULL DEFAULT false
);
CREATE TABLE IF NOT EXISTS flight_seats (
	flight_id  BIGINT NOT NULL REFERENCES flights (id),
	seat_class TEXT NOT NULL,
	capacity   INTEGER NOT NULL,
	remaining  INTEGER NOT NULL CHECK (remaining >= 0),
	PRIMARY KEY (flight_id, seat_class)
);
CREATE TABLE IF NOT EXISTS flight_passengers (
	flight_id   BIGINT NOT NULL REFERENCES flights (id),
	customer_id BIGINT NOT NULL,
	PRIMARY KEY (flight_id, customer_id)
);
CREATE TABLE IF NOT EXISTS customers (
	id      BIGINT PRIMARY KEY,
	name    TEXT NOT NULL,
	phone   TEXT NOT NULL,
	email   TEXT NOT NULL,
	deleted BOOLEAN NOT NULL DEFAULT false
);
CREATE TABLE IF NOT EXISTS bookings (
	id           BIGINT PRIMARY KEY,
	customer_id  BIGINT NOT NULL REFERENCES customers (id),
	flight_id    BIGINT NOT NULL REFERENCES flights (id),
	booking_date DATE NOT NULL,
	seat_class   TEXT NOT NULL,
	food_option  TEXT NOT NULL,
	price        DOUBLE PRECISION NOT NULL,
	fee          DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS ledger_meta (
	id          SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	system_date DATE NOT NULL
);
ALTER TABLE ledger_meta ADD COLUMN IF NOT EXISTS last_flight_id BIGINT NOT NULL DEFAULT 0;
ALTER TABLE ledger_meta ADD COLUMN IF NOT EXISTS last_customer_id BIGINT NOT NULL DEFAULT 0;
ALTER TABLE ledger_meta ADD COLUMN IF NOT EXISTS last_booking_id BIGINT NOT NULL DEFAULT 0;`

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PGStore keeps the ledger in PostgreSQL. Store rewrites every table inside
// one transaction.
type PGStore struct {
	db DB
}

func NewPGStore(db DB) *PGStore {
	return &PGStore{db: db}
}

// Migrate creates the tables when they do not exist yet.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *PGStore) Store(ctx context.Context, reg *ledger.Registry) error {
	d := NewDataset(reg)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE bookings, flight_passengers, flight_seats, customers, flights`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO ledger_meta (id, system_date, last_flight_id, last_customer_id, last_booking_id)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET system_date = EXCLUDED.system_date,
			last_flight_id = EXCLUDED.last_flight_id,
			last_customer_id = EXCLUDED.last_customer_id,
			last_booking_id = EXCLUDED.last_booking_id`,
		d.SystemDate, d.LastIDs.Flight, d.LastIDs.Customer, d.LastIDs.Booking); err != nil {
		return err
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flights"},
		[]string{"id", "flight_number", "origin", "destination", "departure_date", "base_price", "deleted"},
		pgx.CopyFromSlice(len(d.Flights), func(i int) ([]any, error) {
			f := d.Flights[i]
			return []any{f.ID, f.FlightNumber, f.Origin, f.Destination, f.DepartureDate, f.BasePrice, f.Deleted}, nil
		})); err != nil {
		return fmt.Errorf("copy flights: %w", err)
	}

	var seats, passengers [][]any
	for _, f := range d.Flights {
		for class, capacity := range f.Capacity {
			seats = append(seats, []any{f.ID, string(class), capacity, f.Remaining[class]})
		}
		for _, customerID := range f.Passengers {
			passengers = append(passengers, []any{f.ID, customerID})
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flight_seats"},
		[]string{"flight_id", "seat_class", "capacity", "remaining"}, pgx.CopyFromRows(seats)); err != nil {
		return fmt.Errorf("copy flight seats: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flight_passengers"},
		[]string{"flight_id", "customer_id"}, pgx.CopyFromRows(passengers)); err != nil {
		return fmt.Errorf("copy flight passengers: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"customers"},
		[]string{"id", "name", "phone", "email", "deleted"},
		pgx.CopyFromSlice(len(d.Customers), func(i int) ([]any, error) {
			c := d.Customers[i]
			return []any{c.ID, c.Name, c.Phone, c.Email, c.Deleted}, nil
		})); err != nil {
		return fmt.Errorf("copy customers: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"bookings"},
		[]string{"id", "customer_id", "flight_id", "booking_date", "seat_class", "food_option", "price", "fee"},
		pgx.CopyFromSlice(len(d.Bookings), func(i int) ([]any, error) {
			b := d.Bookings[i]
			return []any{b.ID, b.CustomerID, b.FlightID, b.BookingDate, string(b.SeatClass), string(b.FoodOption), b.Price, b.Fee}, nil
		})); err != nil {
		return fmt.Errorf("copy bookings: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PGStore) Load(ctx context.Context) (*ledger.Registry, error) {
	var d Dataset

	err := s.db.QueryRow(ctx, `SELECT system_date, last_flight_id, last_customer_id, last_booking_id FROM ledger_meta WHERE id = 1`).
		Scan(&d.SystemDate, &d.LastIDs.Flight, &d.LastIDs.Customer, &d.LastIDs.Booking)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT id, flight_number, origin, destination, departure_date, base_price, deleted FROM flights ORDER BY id`)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]int)
	for rows.Next() {
		f := FlightRecord{
			Capacity:  make(map[domain.SeatClass]int),
			Remaining: make(map[domain.SeatClass]int),
		}
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Origin, &f.Destination, &f.DepartureDate, &f.BasePrice, &f.Deleted); err != nil {
			rows.Close()
			return nil, err
		}
		index[f.ID] = len(d.Flights)
		d.Flights = append(d.Flights, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `SELECT flight_id, seat_class, capacity, remaining FROM flight_seats`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			flightID            int64
			class               string
			capacity, remaining int
		)
		if err := rows.Scan(&flightID, &class, &capacity, &remaining); err != nil {
			rows.Close()
			return nil, err
		}
		if i, ok := index[flightID]; ok {
			d.Flights[i].Capacity[domain.SeatClass(class)] = capacity
			d.Flights[i].Remaining[domain.SeatClass(class)] = remaining
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `SELECT flight_id, customer_id FROM flight_passengers ORDER BY flight_id, customer_id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var flightID, customerID int64
		if err := rows.Scan(&flightID, &customerID); err != nil {
			rows.Close()
			return nil, err
		}
		if i, ok := index[flightID]; ok {
			d.Flights[i].Passengers = append(d.Flights[i].Passengers, customerID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `SELECT id, name, phone, email, deleted FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c CustomerRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Deleted); err != nil {
			rows.Close()
			return nil, err
		}
		d.Customers = append(d.Customers, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `SELECT id, customer_id, flight_id, booking_date, seat_class, food_option, price, fee FROM bookings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			b           BookingRecord
			class, food string
		)
		if err := rows.Scan(&b.ID, &b.CustomerID, &b.FlightID, &b.BookingDate, &class, &food, &b.Price, &b.Fee); err != nil {
			return nil, err
		}
		b.SeatClass = domain.SeatClass(class)
		b.FoodOption = domain.FoodOption(food)
		d.Bookings = append(d.Bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return d.Registry()
}

var _ DB = (*pgxpool.Pool)(nil)
