package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"realty-api/internal/domain"
)

type InquiryRepo struct{ col *mongo.Collection }

type inquiryDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ListingID   primitive.ObjectID `bson:"listingId"`
	AgentID     primitive.ObjectID `bson:"agentId"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"phone,omitempty"`
	Message     string             `bson:"message"`
	EmailStatus string             `bson:"emailStatus"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *inquiryDocument) toEntity() domain.Inquiry {
	return domain.Inquiry{
		ID:          d.ID.Hex(),
		ListingID:   d.ListingID.Hex(),
		AgentID:     d.AgentID.Hex(),
		Name:        d.Name,
		Email:       d.Email,
		Phone:       d.Phone,
		Message:     d.Message,
		EmailStatus: d.EmailStatus,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *InquiryRepo) Create(ctx context.Context, in *domain.Inquiry) error {
	listing, ok1 := oid(in.ListingID)
	agent, ok2 := oid(in.AgentID)
	if !ok1 || !ok2 {
		return fmt.Errorf("invalid listing/agent id on inquiry")
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := inquiryDocument{
		ID:          primitive.NewObjectID(),
		ListingID:   listing,
		AgentID:     agent,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Message:     in.Message,
		EmailStatus: in.EmailStatus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	in.ID, in.CreatedAt, in.UpdatedAt = doc.ID.Hex(), now, now
	return nil
}

func (r *InquiryRepo) SetEmailStatus(ctx context.Context, id, status string) error {
	o, ok := oid(id)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": o},
		bson.M{"$set": bson.M{"emailStatus": status, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("update inquiry status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InquiryRepo) ListByAgent(ctx context.Context, agentID string, limit int) ([]domain.Inquiry, error) {
	agent, ok := oid(agentID)
	if !ok {
		return []domain.Inquiry{}, nil
	}
	opts := options.Find().SetSort(newestFirst())
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"agentId": agent}, opts)
	if err != nil {
		return nil, fmt.Errorf("find inquiries: %w", err)
	}
	defer cur.Close(ctx)
	var docs []inquiryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode inquiries: %w", err)
	}
	out := make([]domain.Inquiry, len(docs))
	for i := range docs {
		out[i] = docs[i].toEntity()
	}
	return out, nil
}
