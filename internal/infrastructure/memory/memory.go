// Package memory provides in-process implementations of the repositories.
// They back STORAGE_DRIVER=memory and the HTTP and application tests.
package memory

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newID returns an id in the same format the mongo repositories use,
// so object-id validation behaves identically across drivers.
func newID() string {
	return primitive.NewObjectID().Hex()
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
