package utils

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID 生成 24 位十六进制 ObjectID，内存库与 Mongo 库共用同一种 ID 形态
func NewID() string { return primitive.NewObjectID().Hex() }

func IsObjectID(s string) bool { return primitive.IsValidObjectID(s) }
