package zen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSKVConfig configures a NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server, nats.DefaultURL when empty.
	URL string

	// Bucket is the KV bucket name, "zen-cache" when empty.
	Bucket string

	// TTL is the bucket-wide maximum age of an entry. Zero keeps entries until deleted.
	TTL time.Duration

	// Credentials is an optional path to a NATS credentials file.
	Credentials string

	// Token is an optional NATS auth token.
	Token string

	// Conn reuses an existing connection instead of dialing URL.
	Conn *nats.Conn
}

const defaultNATSBucket = "zen-cache"

// NATSKVCache is a Cache backed by a JetStream KV bucket, which lets several
// processes share entries.
type NATSKVCache struct {
	kv    jetstream.KeyValue
	conn  *nats.Conn
	owned bool
}

// NewNATSKVCache connects to NATS and creates or binds the configured bucket.
func NewNATSKVCache(ctx context.Context, config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	owned := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		opts := []nats.Option{nats.Name("zen-client-cache")}
		if config.Credentials != "" {
			opts = append(opts, nats.UserCredentials(config.Credentials))
		}

		if config.Token != "" {
			opts = append(opts, nats.Token(config.Token))
		}

		var err error

		conn, err = nats.Connect(url, opts...)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		owned = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		closeIfOwned(conn, owned)

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = defaultNATSBucket
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "zen client shared cache",
		TTL:         config.TTL,
	})
	if err != nil {
		closeIfOwned(conn, owned)

		return nil, fmt.Errorf("creating KV bucket %s: %w", bucket, err)
	}

	return &NATSKVCache{kv: kv, conn: conn, owned: owned}, nil
}

func closeIfOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

// Get retrieves an entry.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kve, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrCacheKeyNotFound
		}

		return nil, fmt.Errorf("getting %s from NATS KV: %w", key, err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kve.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.Expired() {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheEntryExpired
	}

	return &entry, nil
}

// Set stores an entry.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.kv.Put(ctx, key, data)
	if err != nil {
		return fmt.Errorf("putting %s into NATS KV: %w", key, err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from NATS KV: %w", key, err)
	}

	return nil
}

// Clear purges every key of the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing NATS KV keys: %w", err)
	}

	for _, key := range keys {
		err = c.kv.Purge(ctx, key)
		if err != nil {
			return fmt.Errorf("purging %s from NATS KV: %w", key, err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the connection when the cache dialed it.
func (c *NATSKVCache) Close() {
	closeIfOwned(c.conn, c.owned)
}
