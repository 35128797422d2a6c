package mongodb

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Database = (*Store)(nil)

// Store is a read-only connection to a polyDB database.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	limiter *RateLimiter
	timeout time.Duration
	log     logr.Logger
}

// clientOptions builds driver options from connection settings.
func clientOptions(s domain.ConnectionSettings) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(s.URI()).
		SetDirect(s.DirectConnection).
		SetAppName("polydb-cli")
	if s.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	if s.Timeout > 0 {
		opts.SetConnectTimeout(s.Timeout).SetServerSelectionTimeout(s.Timeout)
	}
	return opts
}

// Connect opens a connection to the server described by settings. The
// connection is verified lazily; call Ping to check reachability.
func Connect(ctx context.Context, settings domain.ConnectionSettings, log logr.Logger) (*Store, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	log.V(1).Info("connecting", "server", settings.Redacted(), "tls", settings.TLS)

	client, err := mongo.Connect(ctx, clientOptions(settings))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", settings.Redacted(), err)
	}
	return &Store{
		client:  client,
		db:      client.Database(settings.Database),
		limiter: NewRateLimiter(settings.RateLimit),
		timeout: settings.Timeout,
		log:     log,
	}, nil
}

// SetRateLimit changes the request rate of an open connection. A
// non-positive rate disables throttling.
func (s *Store) SetRateLimit(perSecond float64) {
	s.limiter.SetRate(perSecond)
	s.log.V(1).Info("rate limit changed", "perSecond", perSecond)
}

// begin waits for the rate limiter and bounds a single request by the
// configured timeout.
func (s *Store) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}
	if s.timeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return ctx, cancel, nil
}

// fail records network failures with the rate limiter and wraps err.
func (s *Store) fail(err error, format string, args ...any) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		s.limiter.Backoff(0)
		err = fmt.Errorf("%w: %w", domain.ErrNotConnected, err)
	}
	s.log.Error(err, "mongo request failed", "op", fmt.Sprintf(format, args...))
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Ping runs the ping command against the admin database.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	s.log.V(1).Info("mongo ping")
	if err := s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return s.fail(err, "ping")
	}
	return nil
}

// ListCollectionNames returns the names of the collections the user may read
// whose name matches the regular expression pattern.
func (s *Store) ListCollectionNames(ctx context.Context, pattern string) ([]string, error) {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	s.log.V(1).Info("mongo list collections", "pattern", pattern)

	opts := options.ListCollections().SetNameOnly(true).SetAuthorizedCollections(true)
	names, err := s.db.ListCollectionNames(ctx, nameFilter(pattern), opts)
	if err != nil {
		return nil, s.fail(err, "listing collections")
	}
	return names, nil
}

// FindOne returns the first document matching opts or domain.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, collection string, opts domain.FindOptions) (domain.Document, error) {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	s.log.V(1).Info("mongo find one", "collection", collection, "filter", opts.Filter)

	fo := options.FindOne().SetSkip(opts.Skip)
	if sort := sortOf(opts.Sort); sort != nil {
		fo.SetSort(sort)
	}
	if opts.Projection != nil {
		fo.SetProjection(opts.Projection)
	}

	var m bson.M
	err = s.db.Collection(collection).FindOne(ctx, filterOf(opts.Filter), fo).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, s.fail(err, "find one in %s", collection)
	}
	return documentFrom(m), nil
}

// Find returns a cursor over the documents matching opts. The cursor is
// not bound by the request timeout.
func (s *Store) Find(ctx context.Context, collection string, opts domain.FindOptions) (driven.Cursor, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	s.log.V(1).Info("mongo find", "collection", collection)
	s.log.V(2).Info("mongo find options", "filter", opts.Filter, "sort", opts.Sort,
		"skip", opts.Skip, "limit", opts.Limit)

	fo := options.Find().SetSkip(opts.Skip).SetLimit(opts.Limit)
	if sort := sortOf(opts.Sort); sort != nil {
		fo.SetSort(sort)
	}
	if opts.Projection != nil {
		fo.SetProjection(opts.Projection)
	}
	if opts.BatchSize > 0 {
		fo.SetBatchSize(opts.BatchSize)
	}

	cur, err := s.db.Collection(collection).Find(ctx, filterOf(opts.Filter), fo)
	if err != nil {
		return nil, s.fail(err, "find in %s", collection)
	}
	return &Cursor{cur: cur}, nil
}

// Distinct returns the distinct values of field among matching documents.
func (s *Store) Distinct(ctx context.Context, collection, field string, filter map[string]any) ([]any, error) {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	s.log.V(1).Info("mongo distinct", "collection", collection, "field", field)

	values, err := s.db.Collection(collection).Distinct(ctx, field, filterOf(filter))
	if err != nil {
		return nil, s.fail(err, "distinct %s in %s", field, collection)
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = plain(v)
	}
	return out, nil
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	ctx, cancel, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()
	s.log.V(1).Info("mongo count", "collection", collection)

	n, err := s.db.Collection(collection).CountDocuments(ctx, filterOf(filter))
	if err != nil {
		return 0, s.fail(err, "counting %s", collection)
	}
	return n, nil
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting: %w", err)
	}
	return nil
}

// Cursor adapts a driver cursor to driven.Cursor.
type Cursor struct {
	cur *mongo.Cursor
	doc domain.Document
	err error
}

// Ensure Cursor implements the interface.
var _ driven.Cursor = (*Cursor)(nil)

// Next decodes the next document.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.err != nil || !c.cur.Next(ctx) {
		return false
	}
	var m bson.M
	if err := c.cur.Decode(&m); err != nil {
		c.err = fmt.Errorf("decoding document: %w", err)
		return false
	}
	c.doc = documentFrom(m)
	return true
}

// Document returns the current document.
func (c *Cursor) Document() domain.Document {
	return c.doc
}

// Err returns the first decoding or iteration error.
func (c *Cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.cur.Err()
}

// Close releases the server-side cursor.
func (c *Cursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}
