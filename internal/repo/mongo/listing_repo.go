package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"realty-api/internal/domain"
)

type ListingRepo struct{ col *mongo.Collection }

type listingDocument struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Title        string              `bson:"title"`
	Address      string              `bson:"address"`
	Neighborhood string              `bson:"neighborhood"`
	Price        float64             `bson:"price"`
	Beds         int                 `bson:"beds"`
	Baths        float64             `bson:"baths"`
	Sqft         float64             `bson:"sqft"`
	Description  string              `bson:"description"`
	ImageURLs    []string            `bson:"imageUrls"`
	Status       string              `bson:"status"`
	AgentID      primitive.ObjectID  `bson:"agentId"`
	CustomerID   *primitive.ObjectID `bson:"customerId,omitempty"`
	SoldDate     *time.Time          `bson:"soldDate,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt"`
}

func (d *listingDocument) toEntity() domain.Listing {
	imgs := d.ImageURLs
	if imgs == nil {
		imgs = []string{}
	}
	return domain.Listing{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Address:      d.Address,
		Neighborhood: d.Neighborhood,
		Price:        d.Price,
		Beds:         d.Beds,
		Baths:        d.Baths,
		Sqft:         d.Sqft,
		Description:  d.Description,
		ImageURLs:    imgs,
		Status:       d.Status,
		AgentID:      d.AgentID.Hex(),
		CustomerID:   hexOrEmpty(d.CustomerID),
		SoldDate:     d.SoldDate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	agent, ok := oid(l.AgentID)
	if !ok {
		return fmt.Errorf("invalid agent id %q", l.AgentID)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := listingDocument{
		ID:           primitive.NewObjectID(),
		Title:        l.Title,
		Address:      l.Address,
		Neighborhood: l.Neighborhood,
		Price:        l.Price,
		Beds:         l.Beds,
		Baths:        l.Baths,
		Sqft:         l.Sqft,
		Description:  l.Description,
		ImageURLs:    l.ImageURLs,
		Status:       l.Status,
		AgentID:      agent,
		CustomerID:   optOID(l.CustomerID),
		SoldDate:     l.SoldDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	l.ID, l.CreatedAt, l.UpdatedAt = doc.ID.Hex(), now, now
	return nil
}

func (r *ListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	o, ok := oid(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": o}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	l := doc.toEntity()
	return &l, nil
}

func (r *ListingRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.Listing, error) {
	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cur.Close(ctx)
	var docs []listingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	out := make([]domain.Listing, len(docs))
	for i := range docs {
		out[i] = docs[i].toEntity()
	}
	return out, nil
}

func (r *ListingRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Listing, error) {
	list := oids(ids)
	if len(list) == 0 {
		return []domain.Listing{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": list}})
}

func searchFilter(f domain.ListingFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Q != "" {
		filter["$or"] = likeAny(f.Q, "title", "address", "description")
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if f.MinBeds != nil {
		filter["beds"] = bson.M{"$gte": *f.MinBeds}
	}
	if f.Neighborhood != "" {
		filter["neighborhood"] = f.Neighborhood
	}
	return filter
}

func (r *ListingRepo) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, int64, error) {
	filter := searchFilter(f)
	opts := options.Find().SetSort(newestFirst()).SetSkip(f.Skip())
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}
	return items, total, nil
}

func (r *ListingRepo) ListByAgent(ctx context.Context, agentID string) ([]domain.Listing, error) {
	o, ok := oid(agentID)
	if !ok {
		return []domain.Listing{}, nil
	}
	return r.find(ctx, bson.M{"agentId": o}, options.Find().SetSort(newestFirst()))
}

func listingSet(p domain.ListingPatch) (bson.M, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Neighborhood != nil {
		set["neighborhood"] = *p.Neighborhood
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Beds != nil {
		set["beds"] = *p.Beds
	}
	if p.Baths != nil {
		set["baths"] = *p.Baths
	}
	if p.Sqft != nil {
		set["sqft"] = *p.Sqft
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ImageURLs != nil {
		set["imageUrls"] = slices.Clone(p.ImageURLs)
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.CustomerID != nil {
		c, ok := oid(*p.CustomerID)
		if !ok {
			return nil, fmt.Errorf("invalid customer id %q", *p.CustomerID)
		}
		set["customerId"] = c
	}
	if p.SoldDate != nil {
		set["soldDate"] = p.SoldDate.UTC()
	}
	return set, nil
}

func (r *ListingRepo) UpdateOwned(ctx context.Context, id, agentID string, p domain.ListingPatch) (*domain.Listing, error) {
	o, ok1 := oid(id)
	agent, ok2 := oid(agentID)
	if !ok1 || !ok2 {
		return nil, domain.ErrNotFound
	}
	set, err := listingSet(p)
	if err != nil {
		return nil, err
	}
	var doc listingDocument
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": o, "agentId": agent}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}
	l := doc.toEntity()
	return &l, nil
}

func (r *ListingRepo) DeleteOwned(ctx context.Context, id, agentID string) error {
	o, ok1 := oid(id)
	agent, ok2 := oid(agentID)
	if !ok1 || !ok2 {
		return domain.ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": o, "agentId": agent})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepo) Neighborhoods(ctx context.Context) ([]string, error) {
	vals, err := r.col.Distinct(ctx, "neighborhood", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct neighborhoods: %w", err)
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out, nil
}
