package models

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	UserPrefix        = "user"
	ImagePrefix       = "img"
	TransactionPrefix = "txn"
)

func NewUserID() string        { return newID(UserPrefix) }
func NewImageID() string       { return newID(ImagePrefix) }
func NewTransactionID() string { return newID(TransactionPrefix) }

func newID(prefix string) string {
	id, err := typeid.Generate(prefix)
	if err != nil {
		// Generate only fails on an invalid prefix, and ours are constants.
		panic(fmt.Sprintf("models: generate %s id: %v", prefix, err))
	}
	return id.String()
}

// ValidID reports whether s parses as a TypeID carrying the given prefix.
func ValidID(s, prefix string) bool {
	id, err := typeid.Parse(s)
	if err != nil {
		return false
	}
	return id.Prefix() == prefix
}
