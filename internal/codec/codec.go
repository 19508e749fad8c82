// Package codec defines the versioned snapshot formats a workflow tree is
// persisted in. Both formats carry the whole subtree below the encoded node.
package codec

import (
	"fmt"

	"github.com/example/wfviz/internal/domain"
)

// Version is the snapshot format version written by this package.
const Version = 1

// Codec encodes and decodes a workflow subtree.
type Codec interface {
	Name() string
	Marshal(root *domain.Node) ([]byte, error)
	Unmarshal(data []byte) (*domain.Node, error)
}

var (
	// Binary is the protobuf wire encoding described in snapshot.proto.
	Binary Codec = binaryCodec{}

	// Text is the JSON encoding.
	Text Codec = textCodec{}
)

func checkVersion(v uint64) error {
	if v != Version {
		return fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, v)
	}
	return nil
}
