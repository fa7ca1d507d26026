package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/Domenick1991/flightledger/internal/ledger"
)

var (
	flightsBucket   = []byte("flights")
	customersBucket = []byte("customers")
	bookingsBucket  = []byte("bookings")
	metaBucket      = []byte("meta")

	systemDateKey = []byte("system_date")
	lastIDsKey    = []byte("last_ids")
)

// BoltStore keeps the ledger in a single BoltDB file, one bucket per entity
// kind with records keyed by big-endian id.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{flightsBucket, customersBucket, bookingsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(ctx context.Context) (*ledger.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var d Dataset
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(metaBucket).Get(systemDateKey); v != nil {
			if err := d.SystemDate.UnmarshalText(v); err != nil {
				return err
			}
		}
		if v := tx.Bucket(metaBucket).Get(lastIDsKey); v != nil {
			if err := json.Unmarshal(v, &d.LastIDs); err != nil {
				return err
			}
		}
		if err := tx.Bucket(flightsBucket).ForEach(func(_, v []byte) error {
			var r FlightRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			d.Flights = append(d.Flights, r)
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(customersBucket).ForEach(func(_, v []byte) error {
			var r CustomerRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			d.Customers = append(d.Customers, r)
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bookingsBucket).ForEach(func(_, v []byte) error {
			var r BookingRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			d.Bookings = append(d.Bookings, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return d.Registry()
}

// Store replaces every bucket with the registry's current content in a single
// write transaction.
func (s *BoltStore) Store(ctx context.Context, reg *ledger.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d := NewDataset(reg)
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{flightsBucket, customersBucket, bookingsBucket} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		date, err := d.SystemDate.MarshalText()
		if err != nil {
			return err
		}
		if err := tx.Bucket(metaBucket).Put(systemDateKey, date); err != nil {
			return err
		}
		marks, err := json.Marshal(d.LastIDs)
		if err != nil {
			return err
		}
		if err := tx.Bucket(metaBucket).Put(lastIDsKey, marks); err != nil {
			return err
		}

		for _, r := range d.Flights {
			if err := putJSON(tx.Bucket(flightsBucket), r.ID, r); err != nil {
				return err
			}
		}
		for _, r := range d.Customers {
			if err := putJSON(tx.Bucket(customersBucket), r.ID, r); err != nil {
				return err
			}
		}
		for _, r := range d.Bookings {
			if err := putJSON(tx.Bucket(bookingsBucket), r.ID, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func putJSON(b *bolt.Bucket, id int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(itob(id), data)
}

func itob(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}
