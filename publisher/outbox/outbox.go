/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package outbox implements publisher.Channel that stores sealed messages in a local BoltDB file.
// Stored messages are forwarded later to another channel with Drain, which allows to seal and
// accept messages while the broker is unavailable.
package outbox

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cossacklabs/privatepublisher/logging"
	"github.com/cossacklabs/privatepublisher/publisher"
	"github.com/cossacklabs/privatepublisher/publisher/envelope"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// ErrRecordNotFound returned by Delete for unknown sequence
var ErrRecordNotFound = errors.New("outbox record not found")

// default open mode with which to initialize BoltDB file
const boltDBOpenMode = os.FileMode(0600)

const openTimeout = time.Second

var outboxBucket = []byte("outbox")

// Record is stored envelope with its sequence number
type Record struct {
	Sequence uint64
	Envelope *envelope.Envelope
}

// Outbox stores envelopes ordered by sequence number
type Outbox struct {
	db *bolt.DB
}

// Open opens or creates BoltDB file at path. File is locked until Close
func Open(path string) (*Outbox, error) {
	db, err := bolt.Open(path, boltDBOpenMode, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, err
	}
	outbox, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return outbox, nil
}

// New returns Outbox using already opened db
func New(db *bolt.DB) (*Outbox, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(outboxBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func sequenceToKey(sequence uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, sequence)
	return key
}

// Publish stores body with metadata as the next record
func (o *Outbox) Publish(ctx context.Context, body []byte, contentType string, headers publisher.Headers) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := envelope.New(body, contentType, headers)
	data, err := message.Encode()
	if err != nil {
		return err
	}
	var sequence uint64
	err = o.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(outboxBucket)
		sequence, err = bucket.NextSequence()
		if err != nil {
			return err
		}
		return bucket.Put(sequenceToKey(sequence), data)
	})
	if err != nil {
		return err
	}
	logging.GetLoggerFromContext(ctx).WithFields(log.Fields{"envelope_id": message.ID, "sequence": sequence}).Debugln("Envelope stored")
	return nil
}

// ForEach calls fn for every record in sequence order until fn returns error
func (o *Outbox) ForEach(fn func(record Record) error) error {
	return o.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(outboxBucket).ForEach(func(k, v []byte) error {
			record, err := decodeRecord(k, v)
			if err != nil {
				return err
			}
			return fn(record)
		})
	})
}

func decodeRecord(k, v []byte) (Record, error) {
	if len(k) != 8 {
		return Record{}, fmt.Errorf("invalid outbox key %x", k)
	}
	sequence := binary.BigEndian.Uint64(k)
	e, err := envelope.Decode(v)
	if err != nil {
		return Record{}, fmt.Errorf("can't decode outbox record %d: %w", sequence, err)
	}
	return Record{Sequence: sequence, Envelope: e}, nil
}

// first returns record with the lowest sequence, nil if outbox is empty
func (o *Outbox) first() (*Record, error) {
	var record *Record
	err := o.db.View(func(tx *bolt.Tx) error {
		k, v := tx.Bucket(outboxBucket).Cursor().First()
		if k == nil {
			return nil
		}
		decoded, err := decodeRecord(k, v)
		if err != nil {
			return err
		}
		record = &decoded
		return nil
	})
	return record, err
}

// Delete removes record with sequence
func (o *Outbox) Delete(sequence uint64) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(outboxBucket)
		key := sequenceToKey(sequence)
		if bucket.Get(key) == nil {
			return ErrRecordNotFound
		}
		return bucket.Delete(key)
	})
}

// Len returns count of stored records
func (o *Outbox) Len() (int, error) {
	var count int
	err := o.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(outboxBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Drain forwards records to channel in sequence order and deletes every forwarded record.
// It stops on the first failed forward, keeping that record, and returns count of forwarded records.
func (o *Outbox) Drain(ctx context.Context, channel publisher.Channel) (int, error) {
	forwarded := 0
	for {
		if err := ctx.Err(); err != nil {
			return forwarded, err
		}
		record, err := o.first()
		if err != nil {
			return forwarded, err
		}
		if record == nil {
			return forwarded, nil
		}
		e := record.Envelope
		if err := channel.Publish(ctx, e.Body, e.ContentType, e.Headers); err != nil {
			return forwarded, fmt.Errorf("can't forward outbox record %d: %w", record.Sequence, err)
		}
		if err := o.Delete(record.Sequence); err != nil {
			return forwarded, err
		}
		forwarded++
	}
}

// Close closes BoltDB file
func (o *Outbox) Close() error {
	return o.db.Close()
}
