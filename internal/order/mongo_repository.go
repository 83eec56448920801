package order

import (
	"context"
	"errors"
	"time"

	"storefront-be/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const OrdersCollection = "orders"

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository stores orders as documents with ObjectID hex ids.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(OrdersCollection)}
}

func (r *mongoRepository) Create(ctx context.Context, o *Order) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	doc := toDocument(o)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return apperr.Wrap(apperr.ErrStorage, err)
	}

	o.ID = doc.ID.Hex()
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidOrderID
	}

	var doc orderDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, err)
	}
	return fromDocument(doc), nil
}

func (r *mongoRepository) SetTransactionID(ctx context.Context, id string, transactionID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidOrderID
	}

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"tranzila.transactionId": transactionID,
		"updatedAt":              time.Now().UTC(),
	}})
	if err != nil {
		return apperr.Wrap(apperr.ErrStorage, err)
	}
	return nil
}

func (r *mongoRepository) ApplyPayment(ctx context.Context, id string, u PaymentUpdate) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrInvalidOrderID
	}

	filter := bson.M{"_id": oid}
	if u.RequirePending {
		filter["status"] = string(StatusPending)
	}

	set := bson.M{
		"tranzila.rawResponse": rawText(u.RawResponse),
		"updatedAt":            time.Now().UTC(),
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.TransactionID != nil {
		set["tranzila.transactionId"] = *u.TransactionID
	}
	if u.ResponseCode != nil {
		set["tranzila.responseCode"] = *u.ResponseCode
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, apperr.Wrap(apperr.ErrStorage, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoRepository) Cancel(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrInvalidOrderID
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(StatusPending)},
		bson.M{"$set": bson.M{
			"status":    string(StatusCanceled),
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, apperr.Wrap(apperr.ErrStorage, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoRepository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := r.coll.Find(ctx, mongoFilter(f), opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, err)
	}
	defer cur.Close(ctx)

	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Wrap(apperr.ErrStorage, err)
	}

	orders := make([]*Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, fromDocument(d))
	}
	return orders, nil
}

func (r *mongoRepository) Count(ctx context.Context, f ListFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, mongoFilter(f))
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrStorage, err)
	}
	return n, nil
}

func mongoFilter(f ListFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}
