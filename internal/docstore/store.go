package docstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"festadmin/internal/config"
	"festadmin/internal/content"
	"festadmin/internal/media"
	"festadmin/internal/services"
)

// Store is a content.Repository backed by a MongoDB database.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

var _ content.Repository = (*Store)(nil)

// Open connects to cfg.Store.MongoURI and verifies the server is reachable.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil || strings.TrimSpace(cfg.Store.MongoURI) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "docstore", "open", "store.mongo_uri is required", nil)
	}
	timeout := cfg.StoreTimeout()
	opts := options.Client().ApplyURI(cfg.Store.MongoURI).SetTimeout(timeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "docstore", "connect", "invalid mongo client options", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, services.Wrap(services.ErrTransient, "docstore", "ping", "mongo server unreachable", err)
	}

	return &Store{
		client:  client,
		db:      client.Database(cfg.Store.MongoDatabase),
		timeout: timeout,
	}, nil
}

// Each streams every document of collection in _id order.
func (s *Store) Each(ctx context.Context, collection string, fn func(content.Document) error) error {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: idField, Value: 1}}))
	if err != nil {
		return fmt.Errorf("list %s: %w", collection, err)
	}
	defer cursor.Close(context.Background())

	for cursor.Next(ctx) {
		var raw bson.D
		if err := cursor.Decode(&raw); err != nil {
			return fmt.Errorf("decode %s document: %w", collection, err)
		}
		id, rev, fields := documentFields(raw)
		if err := fn(content.Document{Collection: collection, ID: id, Fields: fields, Revision: rev}); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("list %s: %w", collection, err)
	}
	return nil
}

// Get returns one document or an ErrNotFound-marked error.
func (s *Store) Get(ctx context.Context, collection, id string) (*content.Document, error) {
	var raw bson.D
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	_, rev, fields := documentFields(raw)
	return &content.Document{Collection: collection, ID: id, Fields: fields, Revision: rev}, nil
}

// Put inserts or replaces a whole document, bumping its revision.
func (s *Store) Put(ctx context.Context, collection, id string, fields map[string]any) error {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(id) == "" {
		return services.Wrap(services.ErrValidation, "docstore", "put", "collection and id are required", nil)
	}
	coll := s.db.Collection(collection)
	var current struct {
		Revision int64 `bson:"_rev"`
	}
	err := coll.FindOne(ctx, idFilter(id), options.FindOne().SetProjection(bson.D{{Key: revisionField, Value: 1}})).Decode(&current)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("put %s/%s: read revision: %w", collection, id, err)
	}
	doc := replacement(fields, current.Revision+1)
	if err != nil {
		// Upserts through an $in filter cannot derive _id; existing documents keep theirs.
		doc = append(bson.D{{Key: idField, Value: id}}, doc...)
	}
	if _, err := coll.ReplaceOne(ctx, idFilter(id), doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// WriteMedia replaces the media keys of an existing document.
func (s *Store) WriteMedia(ctx context.Context, collection, id string, rec media.Record) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), mediaUpdate(rec))
	if err != nil {
		return fmt.Errorf("write media %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return notFound(collection, id)
	}
	return nil
}

// UpdateMedia is WriteMedia guarded by the revision the caller read.
func (s *Store) UpdateMedia(ctx context.Context, collection, id string, revision int64, rec media.Record) error {
	filter := idFilter(id)
	if revision == 0 {
		filter[revisionField] = bson.M{"$in": bson.A{nil, 0}}
	} else {
		filter[revisionField] = revision
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, mediaUpdate(rec))
	if err != nil {
		return fmt.Errorf("update media %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := s.Get(ctx, collection, id); err != nil {
		return err
	}
	return services.Wrap(services.ErrConflict, "docstore", "update media",
		fmt.Sprintf("%s/%s changed since revision %d", collection, id, revision), nil)
}

// Collections lists the non-system collections of the database.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	names = slices.DeleteFunc(names, func(name string) bool {
		return strings.HasPrefix(name, "system.")
	})
	slices.Sort(names)
	return names, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func notFound(collection, id string) error {
	return services.Wrap(services.ErrNotFound, "docstore", "get", fmt.Sprintf("%s/%s", collection, id), nil)
}
