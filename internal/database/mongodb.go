package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotConfigured is returned by Handle when no connection URI was given.
var ErrNotConfigured = errors.New("mongo: not configured")

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Handle is the process-wide store handle. The first call to Database connects;
// a failed attempt is retried on the next call. Safe for concurrent use.
type Handle struct {
	uri     string
	name    string
	timeout time.Duration

	mu     sync.Mutex
	client *mongo.Client
	// connect is swapped in tests.
	connect func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error)
}

// NewHandle returns an unconnected handle for the given URI and database name.
func NewHandle(uri, name string, timeout time.Duration) *Handle {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handle{uri: uri, name: name, timeout: timeout, connect: ConnectMongo}
}

// Database returns the database, connecting first when needed.
func (h *Handle) Database(ctx context.Context) (*mongo.Database, error) {
	if h == nil || h.uri == "" {
		return nil, ErrNotConfigured
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil {
		c, err := h.connect(ctx, h.uri, h.timeout)
		if err != nil {
			return nil, err
		}
		h.client = c
	}
	return h.client.Database(h.name), nil
}

// Collection returns a resolver for the named collection that connects on first use.
func (h *Handle) Collection(name string) func(ctx context.Context) (*mongo.Collection, error) {
	return func(ctx context.Context) (*mongo.Collection, error) {
		db, err := h.Database(ctx)
		if err != nil {
			return nil, err
		}
		return db.Collection(name), nil
	}
}

// Ping checks the store is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.Database(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

// Connected reports whether a client has been established.
func (h *Handle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client != nil
}

// Disconnect closes the client if one was opened.
func (h *Handle) Disconnect(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil {
		return nil
	}
	err := h.client.Disconnect(ctx)
	h.client = nil
	return err
}
