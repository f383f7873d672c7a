package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"realty-api/internal/domain"
)

type CustomerRepo struct{ col *mongo.Collection }

type customerDocument struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	AgentID       primitive.ObjectID  `bson:"agentId"`
	ListingID     *primitive.ObjectID `bson:"listingId,omitempty"`
	FirstName     string              `bson:"firstName"`
	LastName      string              `bson:"lastName"`
	Email         string              `bson:"email"`
	Phone         string              `bson:"phone"`
	Address       string              `bson:"address,omitempty"`
	PurchaseDate  *time.Time          `bson:"purchaseDate,omitempty"`
	PurchasePrice *float64            `bson:"purchasePrice,omitempty"`
	Notes         string              `bson:"notes,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt"`
}

func (d *customerDocument) toEntity() domain.Customer {
	return domain.Customer{
		ID:            d.ID.Hex(),
		AgentID:       d.AgentID.Hex(),
		ListingID:     hexOrEmpty(d.ListingID),
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		Phone:         d.Phone,
		Address:       d.Address,
		PurchaseDate:  d.PurchaseDate,
		PurchasePrice: d.PurchasePrice,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	agent, ok := oid(c.AgentID)
	if !ok {
		return fmt.Errorf("invalid agent id %q", c.AgentID)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := customerDocument{
		ID:            primitive.NewObjectID(),
		AgentID:       agent,
		ListingID:     optOID(c.ListingID),
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		PurchaseDate:  c.PurchaseDate,
		PurchasePrice: c.PurchasePrice,
		Notes:         c.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID, c.CreatedAt, c.UpdatedAt = doc.ID.Hex(), now, now
	return nil
}

func ownedFilter(id, agentID string) (bson.M, bool) {
	o, ok1 := oid(id)
	agent, ok2 := oid(agentID)
	if !ok1 || !ok2 {
		return nil, false
	}
	return bson.M{"_id": o, "agentId": agent}, true
}

func (r *CustomerRepo) FindOwned(ctx context.Context, id, agentID string) (*domain.Customer, error) {
	filter, ok := ownedFilter(id, agentID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var doc customerDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	c := doc.toEntity()
	return &c, nil
}

func (r *CustomerRepo) ListByAgent(ctx context.Context, agentID, q string) ([]domain.Customer, error) {
	agent, ok := oid(agentID)
	if !ok {
		return []domain.Customer{}, nil
	}
	filter := bson.M{"agentId": agent}
	// 降序时缺失的 purchaseDate 排在最后
	opts := options.Find().SetSort(bson.D{
		{Key: "purchaseDate", Value: -1},
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	if q != "" {
		filter["$or"] = likeAny(q, "firstName", "lastName", "email", "phone")
		opts.SetLimit(domain.CustomerSearchLimit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	defer cur.Close(ctx)
	var docs []customerDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	out := make([]domain.Customer, len(docs))
	for i := range docs {
		out[i] = docs[i].toEntity()
	}
	return out, nil
}

func (r *CustomerRepo) UpdateOwned(ctx context.Context, id, agentID string, p domain.CustomerPatch) (*domain.Customer, error) {
	filter, ok := ownedFilter(id, agentID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.FirstName != nil {
		set["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		set["lastName"] = *p.LastName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.PurchaseDate != nil {
		set["purchaseDate"] = p.PurchaseDate.UTC()
	}
	if p.PurchasePrice != nil {
		set["purchasePrice"] = *p.PurchasePrice
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.ListingID != nil {
		l, ok := oid(*p.ListingID)
		if !ok {
			return nil, fmt.Errorf("invalid listing id %q", *p.ListingID)
		}
		set["listingId"] = l
	}
	var doc customerDocument
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	c := doc.toEntity()
	return &c, nil
}

func (r *CustomerRepo) DeleteOwned(ctx context.Context, id, agentID string) error {
	filter, ok := ownedFilter(id, agentID)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
