package typesystem

import (
	"github.com/google/uuid"
)

// FingerprintNamespace is the UUIDv5 namespace of type fingerprints.
var FingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/funvibe/anonsum/types"))

// Fingerprint returns a content-addressed identifier of t. Identical
// types have equal fingerprints in every process.
func Fingerprint(t Type) uuid.UUID {
	return uuid.NewSHA1(FingerprintNamespace, []byte(TypeKey(t)))
}
