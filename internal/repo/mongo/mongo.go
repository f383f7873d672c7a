// Package mongo 为 db.driver=mongo 的仓储实现
package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection     = "users"
	listingsCollection  = "listings"
	inquiriesCollection = "inquiries"
	customersCollection = "customers"
)

// Repos 汇总四个集合的仓储
type Repos struct {
	Users     *UserRepo
	Listings  *ListingRepo
	Inquiries *InquiryRepo
	Customers *CustomerRepo
}

func New(db *mongo.Database) *Repos {
	return &Repos{
		Users:     &UserRepo{col: db.Collection(usersCollection)},
		Listings:  &ListingRepo{col: db.Collection(listingsCollection)},
		Inquiries: &InquiryRepo{col: db.Collection(inquiriesCollection)},
		Customers: &CustomerRepo{col: db.Collection(customersCollection)},
	}
}

// EnsureIndexes 启动时幂等创建索引
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "name", Value: 1}}},
		},
		listingsCollection: {
			{Keys: bson.D{{Key: "neighborhood", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "agentId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "neighborhood", Value: 1}, {Key: "price", Value: 1}}},
		},
		inquiriesCollection: {
			{Keys: bson.D{{Key: "listingId", Value: 1}}},
			{Keys: bson.D{{Key: "agentId", Value: 1}}},
		},
		customersCollection: {
			{Keys: bson.D{{Key: "agentId", Value: 1}, {Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}},
			{Keys: bson.D{{Key: "agentId", Value: 1}, {Key: "email", Value: 1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func oid(id string) (primitive.ObjectID, bool) {
	o, err := primitive.ObjectIDFromHex(id)
	return o, err == nil
}

// optOID 空串或非法 id 视为未设置
func optOID(id string) *primitive.ObjectID {
	if o, ok := oid(id); ok {
		return &o
	}
	return nil
}

func hexOrEmpty(o *primitive.ObjectID) string {
	if o == nil || o.IsZero() {
		return ""
	}
	return o.Hex()
}

func oids(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if o, ok := oid(id); ok {
			out = append(out, o)
		}
	}
	return out
}

// likeAny 生成对多个字段的不区分大小写子串匹配，输入按字面量处理
func likeAny(q string, fields ...string) bson.A {
	re := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	or := bson.A{}
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return or
}

func newestFirst() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}
