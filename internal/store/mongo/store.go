// Package mongo stores entries in MongoDB, in the funds and expenses
// collections of a single database.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"societyfund/internal/core"
	"societyfund/internal/store"
)

const (
	fundsCollection    = "funds"
	expensesCollection = "expenses"
)

// Config holds the connection settings.
type Config struct {
	URI      string
	Database string
}

type Store struct {
	client   *mongo.Client
	funds    *mongo.Collection
	expenses *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect opens one pooled client for the lifetime of the process, verifies
// it and makes sure the indexes exist.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(10 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetSocketTimeout(45 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w: %w", core.ErrStoreUnavailable, err)
	}

	s := New(client, cfg.Database)
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", cfg.Database)
	return s, nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		funds:    db.Collection(fundsCollection),
		expenses: db.Collection(expensesCollection),
	}
}

// EnsureIndexes creates the block_flatNo and status indexes on funds.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.funds.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "block", Value: 1}, {Key: "flatNo", Value: 1}},
			Options: options.Index().SetName("block_flatNo"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status"),
		},
	})
	if err != nil {
		return unavailable("create indexes", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ListFunds(ctx context.Context) ([]core.FundEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "block", Value: 1}, {Key: "flatNo", Value: 1}})
	cursor, err := s.funds.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable("find funds", err)
	}
	var docs []fundDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode funds", err)
	}

	out := make([]core.FundEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, fundFromDocument(d))
	}
	core.SortFunds(out)
	return out, nil
}

func (s *Store) GetFund(ctx context.Context, id string) (core.FundEntry, error) {
	oid, err := objectID(id)
	if err != nil {
		return core.FundEntry{}, err
	}
	var d fundDocument
	if err := s.funds.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return core.FundEntry{}, lookupError("fund", id, err)
	}
	return fundFromDocument(d), nil
}

func (s *Store) InsertFund(ctx context.Context, e core.FundEntry) (core.FundEntry, error) {
	res, err := s.funds.InsertOne(ctx, fundToDocument(e))
	if err != nil {
		return core.FundEntry{}, unavailable("insert fund", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return e, nil
}

func (s *Store) UpdateFund(ctx context.Context, id string, p core.FundPatch) (core.FundEntry, error) {
	set := fundSet(p)
	if len(set) == 0 {
		return s.GetFund(ctx, id)
	}
	oid, err := objectID(id)
	if err != nil {
		return core.FundEntry{}, err
	}
	var d fundDocument
	err = s.funds.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return core.FundEntry{}, lookupError("fund", id, err)
	}
	return fundFromDocument(d), nil
}

func (s *Store) DeleteFund(ctx context.Context, id string) error {
	return s.deleteOne(ctx, s.funds, "fund", id)
}

func (s *Store) ListExpenses(ctx context.Context) ([]core.ExpenseEntry, error) {
	cursor, err := s.expenses.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, unavailable("find expenses", err)
	}
	var docs []expenseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode expenses", err)
	}

	out := make([]core.ExpenseEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, expenseFromDocument(d))
	}
	core.SortExpenses(out)
	return out, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (core.ExpenseEntry, error) {
	oid, err := objectID(id)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	var d expenseDocument
	if err := s.expenses.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&d); err != nil {
		return core.ExpenseEntry{}, lookupError("expense", id, err)
	}
	return expenseFromDocument(d), nil
}

func (s *Store) InsertExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	res, err := s.expenses.InsertOne(ctx, expenseToDocument(e))
	if err != nil {
		return core.ExpenseEntry{}, unavailable("insert expense", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id string, p core.ExpensePatch) (core.ExpenseEntry, error) {
	set := expenseSet(p)
	if len(set) == 0 {
		return s.GetExpense(ctx, id)
	}
	oid, err := objectID(id)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	var d expenseDocument
	err = s.expenses.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return core.ExpenseEntry{}, lookupError("expense", id, err)
	}
	return expenseFromDocument(d), nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return s.deleteOne(ctx, s.expenses, "expense", id)
}

func (s *Store) deleteOne(ctx context.Context, coll *mongo.Collection, kind, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return unavailable("delete "+kind, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

// objectID treats malformed identifiers as unknown ones.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, core.ErrNotFound)
	}
	return oid, nil
}

func lookupError(kind, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %q: %w", kind, id, core.ErrNotFound)
	}
	return unavailable("find "+kind, err)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}
