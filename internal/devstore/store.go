package devstore

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/logging"
)

const (
	bucketName = "announcements"

	// openTimeout bounds the wait for another process's file lock
	openTimeout = time.Second
)

// ErrNotFound is returned when no announcement is cached for an id
var ErrNotFound = errors.New("device not in store")

// record is the stored form of one announcement
type record struct {
	Headers map[string]string `yaml:"headers"`
	SeenAt  time.Time         `yaml:"seen_at"`
}

// Store caches the last announcement of each device in a bbolt file, so a
// known light can be controlled without running discovery first.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the store at path
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open device store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize device store: %w", err)
	}

	return &Store{db: db}, nil
}

// Put stores the announcement a descriptor was parsed from, replacing any
// earlier one for the same id.
func (s *Store) Put(d *device.Descriptor) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("device %s has no announcement headers to store", d.ID)
	}

	seenAt := d.DiscoveredAt
	if seenAt.IsZero() {
		seenAt = time.Now()
	}

	data, err := yaml.Marshal(record{Headers: d.Headers, SeenAt: seenAt})
	if err != nil {
		return fmt.Errorf("failed to encode device %s: %w", d.ID, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(d.ID), data)
	})
}

// Get re-parses the stored announcement for id
func (s *Store) Get(id string) (*device.Descriptor, error) {
	var data []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if value == nil {
			return ErrNotFound
		}
		// value is only valid inside the transaction
		data = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decode(id, data)
}

// List returns every stored device sorted by id. Records that no longer
// parse are skipped.
func (s *Store) List() ([]*device.Descriptor, error) {
	var devices []*device.Descriptor

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			d, err := decode(string(k), v)
			if err != nil {
				logging.Warn("Skipping unreadable device record",
					zap.String("device_id", string(k)),
					zap.Error(err),
				)
				return nil
			}
			devices = append(devices, d)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].ID < devices[j].ID
	})
	return devices, nil
}

// Remove deletes the record for id. Removing an unknown id is not an error.
func (s *Store) Remove(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(id))
	})
}

// Close releases the file lock
func (s *Store) Close() error {
	return s.db.Close()
}

func decode(id string, data []byte) (*device.Descriptor, error) {
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode device %s: %w", id, err)
	}

	d, ok := device.Parse(rec.Headers)
	if !ok {
		return nil, fmt.Errorf("stored announcement for %s is no longer valid", id)
	}
	d.DiscoveredAt = rec.SeenAt
	return d, nil
}
