package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amp-labs/secflow/hashing"
	"github.com/neilotoole/slogt"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batch struct {
	CIKs []string `json:"ciks"`
}

func newTestConnection(t *testing.T, kind ConnectorKind, opts ...Option) (*Connection, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	conn := NewConnection(client, kind, append([]Option{WithLogger(slogt.New(t))}, opts...)...)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, mr
}

func TestConnectorKind(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"batch-extractor", "batch-transformer", "batch-loader"} {
		kind, err := ParseConnectorKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, kind.String())
	}

	_, err := ParseConnectorKind("batch-indexer")
	require.ErrorIs(t, err, ErrInvalidTopology)

	var kind ConnectorKind
	require.NoError(t, kind.UnmarshalText([]byte("batch-loader")))
	assert.Equal(t, BatchLoader, kind)

	assert.Equal(t, "batch_transformer_queue", BatchTransformerQueue.Name())
	assert.Equal(t, "producer on batch_extractor_queue", ChannelConfig{Type: Producer, Queue: BatchExtractorQueue}.String())
}

func TestDefaultTopology(t *testing.T) {
	t.Parallel()

	topology := DefaultTopology()

	assert.Equal(t, []ChannelConfig{{Type: Producer, Queue: BatchExtractorQueue}}, topology.Channels(BatchExtractor))
	assert.Equal(t, []ChannelConfig{
		{Type: Consumer, Queue: BatchExtractorQueue},
		{Type: Producer, Queue: BatchTransformerQueue},
	}, topology.Channels(BatchTransformer))
	assert.Equal(t, []ChannelConfig{{Type: Consumer, Queue: BatchTransformerQueue}}, topology.Channels(BatchLoader))

	assert.Equal(t, []Identifier{BatchExtractorQueue, BatchTransformerQueue}, topology.Queues(BatchTransformer))
	assert.Equal(t, []ChannelType{Consumer}, topology.Permissions(BatchLoader, BatchTransformerQueue))
	assert.Empty(t, topology.Permissions(BatchLoader, BatchExtractorQueue))
	assert.Empty(t, topology.Channels(ConnectorKind(42)))

	assert.Equal(t, []string{"batch-extractor", "batch-loader", "batch-transformer"}, topology.Connectors())

	// Callers get a copy.
	channels := topology.Channels(BatchExtractor)
	channels[0].Queue = BatchLoaderQueue
	assert.Equal(t, BatchExtractorQueue, topology.Channels(BatchExtractor)[0].Queue)
}

func TestParseTopologyRejects(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown connector": "connectors:\n  batch-indexer: []\n",
		"unknown direction": "connectors:\n  batch-loader:\n    - {type: both, queue: batch_loader_queue}\n",
		"unknown queue":     "connectors:\n  batch-loader:\n    - {type: consumer, queue: nowhere}\n",
		"not yaml":          "connectors: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseTopology([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidTopology)
		})
	}
}

func TestOpenRespectsTopology(t *testing.T) {
	t.Parallel()

	conn, _ := newTestConnection(t, BatchLoader)

	_, err := conn.Producer(BatchTransformerQueue)

	var misuse *ChannelMisuse
	require.ErrorAs(t, err, &misuse)
	assert.Equal(t, "[ChannelMisuse] Connector 'batch-loader' may not use a producer on batch_transformer_queue.",
		err.Error())

	channels, err := conn.OpenAll()
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, ChannelConfig{Type: Consumer, Queue: BatchTransformerQueue}, channels[0].Config())

	_, err = channels[0].Publish(t.Context(), Message{})
	require.ErrorAs(t, err, &misuse)
}

func TestPublishConsume(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	extractor := NewConnection(client, BatchExtractor, WithLogger(slogt.New(t)))
	transformer := NewConnection(client, BatchTransformer, WithLogger(slogt.New(t)))

	producer, err := extractor.Producer(BatchExtractorQueue)
	require.NoError(t, err)

	consumer, err := transformer.Consumer(BatchExtractorQueue)
	require.NoError(t, err)

	for _, ciks := range [][]string{{"1067983"}, {"320193", "789019"}} {
		msg, err := NewMessage(batch{CIKs: ciks})
		require.NoError(t, err)

		published, err := producer.Publish(t.Context(), msg)
		require.NoError(t, err)
		assert.True(t, published)
	}

	n, err := producer.Len(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	first, err := consumer.Consume(t.Context(), time.Second)
	require.NoError(t, err)
	assert.False(t, first.Published.IsZero())

	var got batch
	require.NoError(t, first.Decode(&got))
	assert.Equal(t, []string{"1067983"}, got.CIKs, "oldest message first")

	second, err := consumer.Consume(t.Context(), time.Second)
	require.NoError(t, err)
	require.NoError(t, second.Decode(&got))
	assert.Equal(t, []string{"320193", "789019"}, got.CIKs)
}

func TestConsumeEmpty(t *testing.T) {
	t.Parallel()

	conn, _ := newTestConnection(t, BatchLoader)

	consumer, err := conn.Consumer(BatchTransformerQueue)
	require.NoError(t, err)

	_, err = consumer.Consume(t.Context(), 50*time.Millisecond)
	require.ErrorIs(t, err, ErrNoMessage)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = consumer.Consume(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConsumeMalformed(t *testing.T) {
	t.Parallel()

	conn, mr := newTestConnection(t, BatchLoader)

	_, err := mr.Lpush(DefaultPrefix+"queue:batch_transformer_queue", "not json")
	require.NoError(t, err)

	consumer, err := conn.Consumer(BatchTransformerQueue)
	require.NoError(t, err)

	_, err = consumer.Consume(t.Context(), time.Second)
	require.ErrorIs(t, err, ErrMalformedMessage)

	_, err = consumer.Consume(t.Context(), 50*time.Millisecond)
	require.ErrorIs(t, err, ErrNoMessage, "the malformed entry was removed")
}

func TestPublishDeduplicates(t *testing.T) {
	t.Parallel()

	conn, mr := newTestConnection(t, BatchExtractor, WithDedupWindow(time.Minute))

	producer, err := conn.Producer(BatchExtractorQueue)
	require.NoError(t, err)

	publish := func() bool {
		msg, err := NewMessage(batch{CIKs: []string{"1067983"}})
		require.NoError(t, err)

		published, err := producer.Publish(t.Context(), msg)
		require.NoError(t, err)

		return published
	}

	assert.True(t, publish())
	assert.False(t, publish(), "identical payload within the window is dropped")

	mr.FastForward(2 * time.Minute)
	assert.True(t, publish(), "window expired")

	n, err := producer.Len(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	fingerprint, err := hashing.XXH3(hashing.HashableBytes(`{"ciks":["1067983"]}`))
	require.NoError(t, err)
	assert.True(t, mr.Exists(DefaultPrefix+"dedup:batch_extractor_queue:"+fingerprint))
}

func TestPublishFailureKeepsPayloadPublishable(t *testing.T) {
	t.Parallel()

	conn, mr := newTestConnection(t, BatchExtractor, WithDedupWindow(time.Minute))

	producer, err := conn.Producer(BatchExtractorQueue)
	require.NoError(t, err)

	msg, err := NewMessage(batch{CIKs: []string{"1067983"}})
	require.NoError(t, err)

	// A string under the queue key makes LPUSH fail with WRONGTYPE.
	queueKey := DefaultPrefix + "queue:batch_extractor_queue"
	require.NoError(t, mr.Set(queueKey, "occupied"))

	published, err := producer.Publish(t.Context(), msg)
	require.Error(t, err)
	assert.False(t, published)
	assert.Contains(t, err.Error(), "queue: publish to batch_extractor_queue")

	fingerprint, err := hashing.XXH3(hashing.HashableBytes(msg.Payload))
	require.NoError(t, err)
	assert.False(t, mr.Exists(DefaultPrefix+"dedup:batch_extractor_queue:"+fingerprint),
		"a failed push releases its fingerprint")

	mr.Del(queueKey)

	published, err = producer.Publish(t.Context(), msg)
	require.NoError(t, err)
	assert.True(t, published)

	n, err := producer.Len(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRequeue(t *testing.T) {
	t.Parallel()

	extractor, mr := newTestConnection(t, BatchExtractor)

	transformer := NewConnection(redis.NewClient(&redis.Options{Addr: mr.Addr()}), BatchTransformer,
		WithLogger(slogt.New(t)))
	t.Cleanup(func() { _ = transformer.Close() })

	producer, err := extractor.Producer(BatchExtractorQueue)
	require.NoError(t, err)

	consumer, err := transformer.Consumer(BatchExtractorQueue)
	require.NoError(t, err)

	first, err := NewMessage(batch{CIKs: []string{"1"}})
	require.NoError(t, err)

	second, err := NewMessage(batch{CIKs: []string{"2"}})
	require.NoError(t, err)

	for _, msg := range []Message{first, second} {
		_, err := producer.Publish(t.Context(), msg)
		require.NoError(t, err)
	}

	got, err := consumer.Consume(t.Context(), time.Second)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	require.NoError(t, consumer.Requeue(t.Context(), got))

	for _, want := range []Message{first, second} {
		got, err := consumer.Consume(t.Context(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID, "a requeued message is consumed next")
	}

	var misuse *ChannelMisuse
	require.ErrorAs(t, producer.Requeue(t.Context(), first), &misuse)

	require.NoError(t, transformer.Close())
	require.ErrorIs(t, consumer.Requeue(t.Context(), first), ErrClosed)
}

func TestPublishCustomFingerprint(t *testing.T) {
	t.Parallel()

	conn, mr := newTestConnection(t, BatchExtractor, WithFingerprint(hashing.XXHash64), WithPrefix("test:"))

	producer, err := conn.Producer(BatchExtractorQueue)
	require.NoError(t, err)

	msg, err := NewMessage(batch{CIKs: []string{"1"}})
	require.NoError(t, err)

	_, err = producer.Publish(t.Context(), msg)
	require.NoError(t, err)

	fingerprint, err := hashing.XXHash64(hashing.HashableBytes(msg.Payload))
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:dedup:batch_extractor_queue:"+fingerprint))
	assert.True(t, mr.Exists("test:queue:batch_extractor_queue"))
}

func TestDedupDisabled(t *testing.T) {
	t.Parallel()

	conn, _ := newTestConnection(t, BatchExtractor, WithDedupWindow(0))

	producer, err := conn.Producer(BatchExtractorQueue)
	require.NoError(t, err)

	msg, err := NewMessage(batch{CIKs: []string{"1"}})
	require.NoError(t, err)

	for range 2 {
		published, err := producer.Publish(t.Context(), msg)
		require.NoError(t, err)
		assert.True(t, published)
	}
}

func TestDial(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	conn, err := Dial(t.Context(), "redis://"+mr.Addr()+"/0", BatchExtractor)
	require.NoError(t, err)
	assert.Equal(t, BatchExtractor, conn.Connector())

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	producer, err := conn.Producer(BatchExtractorQueue)
	require.NoError(t, err)

	_, err = producer.Publish(t.Context(), Message{})
	require.ErrorIs(t, err, ErrClosed)
}

func TestDialFailure(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	_, err := Dial(ctx, "redis://"+addr, BatchExtractor)

	var failed *ConnectionFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, addr, failed.Addr)

	_, err = Dial(ctx, "not a url", BatchExtractor)
	require.ErrorAs(t, err, &failed)
}
