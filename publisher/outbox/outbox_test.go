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

package outbox

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cossacklabs/privatepublisher/publisher"
	"github.com/cossacklabs/privatepublisher/publisher/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestOutbox(t *testing.T) *Outbox {
	outbox, err := Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { outbox.Close() })
	return outbox
}

func publishN(t *testing.T, outbox *Outbox, n int) {
	for i := 0; i < n; i++ {
		err := outbox.Publish(context.Background(), []byte(fmt.Sprintf("token%d", i)), "text/plain", publisher.Headers{"n": fmt.Sprint(i)})
		require.NoError(t, err)
	}
}

func TestPublishAndForEach(t *testing.T) {
	outbox := openTestOutbox(t)
	publishN(t, outbox, 3)

	count, err := outbox.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var records []Record
	require.NoError(t, outbox.ForEach(func(record Record) error {
		records = append(records, record)
		return nil
	}))
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, uint64(i+1), record.Sequence)
		assert.Equal(t, []byte(fmt.Sprintf("token%d", i)), record.Envelope.Body)
		assert.Equal(t, "text/plain", record.Envelope.ContentType)
		assert.Equal(t, map[string]string{"n": fmt.Sprint(i)}, record.Envelope.Headers)
	}

	stop := errors.New("stop")
	visited := 0
	err = outbox.ForEach(func(Record) error {
		visited++
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 1, visited)
}

func TestPublishCanceledContext(t *testing.T) {
	outbox := openTestOutbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, outbox.Publish(ctx, []byte("token"), "", nil))
	count, err := outbox.Len()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete(t *testing.T) {
	outbox := openTestOutbox(t)
	publishN(t, outbox, 2)

	require.NoError(t, outbox.Delete(1))
	assert.Equal(t, ErrRecordNotFound, outbox.Delete(1))
	assert.Equal(t, ErrRecordNotFound, outbox.Delete(100))

	count, err := outbox.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDrain(t *testing.T) {
	outbox := openTestOutbox(t)
	publishN(t, outbox, 3)

	var bodies []string
	forwarded, err := outbox.Drain(context.Background(), publisher.ChannelFunc(func(ctx context.Context, body []byte, contentType string, headers publisher.Headers) error {
		bodies = append(bodies, string(body))
		assert.Equal(t, "text/plain", contentType)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, forwarded)
	assert.Equal(t, []string{"token0", "token1", "token2"}, bodies)

	count, err := outbox.Len()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDrainStopsOnFirstFailure(t *testing.T) {
	outbox := openTestOutbox(t)
	publishN(t, outbox, 3)

	channelErr := errors.New("broker unavailable")
	channel := mocks.NewChannel(t)
	channel.On("Publish", mock.Anything, []byte("token0"), "text/plain", mock.Anything).Return(nil).Once()
	channel.On("Publish", mock.Anything, []byte("token1"), "text/plain", mock.Anything).Return(channelErr).Once()

	forwarded, err := outbox.Drain(context.Background(), channel)
	assert.ErrorIs(t, err, channelErr)
	assert.Equal(t, 1, forwarded)

	var sequences []uint64
	require.NoError(t, outbox.ForEach(func(record Record) error {
		sequences = append(sequences, record.Sequence)
		return nil
	}))
	assert.Equal(t, []uint64{2, 3}, sequences)
}

func TestDrainCanceledContext(t *testing.T) {
	outbox := openTestOutbox(t)
	publishN(t, outbox, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	forwarded, err := outbox.Drain(ctx, mocks.NewChannel(t))
	assert.Equal(t, context.Canceled, err)
	assert.Zero(t, forwarded)
}

func TestCorruptedRecord(t *testing.T) {
	outbox := openTestOutbox(t)
	require.NoError(t, outbox.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(outboxBucket).Put(sequenceToKey(1), []byte{0xc1})
	}))
	assert.Error(t, outbox.ForEach(func(Record) error { return nil }))
	_, err := outbox.Drain(context.Background(), mocks.NewChannel(t))
	assert.Error(t, err)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.db")
	outbox, err := Open(path)
	require.NoError(t, err)
	publishN(t, outbox, 2)
	require.NoError(t, outbox.Close())

	outbox, err = Open(path)
	require.NoError(t, err)
	defer outbox.Close()
	publishN(t, outbox, 1)
	var sequences []uint64
	require.NoError(t, outbox.ForEach(func(record Record) error {
		sequences = append(sequences, record.Sequence)
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3}, sequences)
}

func TestConcurrentPublish(t *testing.T) {
	outbox := openTestOutbox(t)
	const workers, perWorker = 4, 10
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				assert.NoError(t, outbox.Publish(context.Background(), []byte("token"), "", nil))
			}
		}()
	}
	wg.Wait()
	count, err := outbox.Len()
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, count)
}
