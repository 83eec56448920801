package payment

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const WebhooksCollection = "payment_webhooks"

type webhookDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	Provider       string             `bson:"provider"`
	OrderID        string             `bson:"orderId,omitempty"`
	SignatureValid bool               `bson:"signatureValid"`
	Authentic      bool               `bson:"authentic"`
	Payload        string             `bson:"payload,omitempty"`
	ProcessError   string             `bson:"processError,omitempty"`
	ReceivedAt     time.Time          `bson:"receivedAt"`
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) WebhookLog {
	return &mongoRepository{coll: db.Collection(WebhooksCollection)}
}

func (r *mongoRepository) Record(ctx context.Context, rec WebhookRecord) (string, error) {
	doc := webhookDocument{
		ID:             primitive.NewObjectID(),
		Provider:       rec.Provider,
		OrderID:        rec.OrderID,
		SignatureValid: rec.Signed,
		Authentic:      rec.Authentic,
		Payload:        string(rec.Payload),
		ProcessError:   rec.Reject,
		ReceivedAt:     time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (r *mongoRepository) MarkProcessed(ctx context.Context, id string, outcome string) error {
	return r.set(ctx, id, bson.M{"processedAt": time.Now().UTC(), "outcome": outcome})
}

func (r *mongoRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.set(ctx, id, bson.M{"processError": reason})
}

func (r *mongoRepository) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	return err
}
