package dag

import (
	"encoding/hex"
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// Kind is the CID codec used to tag what a stored object is.
type Kind uint64

const (
	KindBlob   Kind = gocid.Raw
	KindCommit Kind = gocid.DagJSON
)

func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindCommit:
		return "commit"
	default:
		return fmt.Sprintf("kind(0x%x)", uint64(k))
	}
}

// HexLen is the length of a full identity string.
const HexLen = 64

// ID identifies a stored object. The zero ID means "absent".
//
// String renders the hex SHA-256 digest; text marshalling (used inside
// stored objects) renders the base32 CID, which also carries the kind.
type ID struct {
	c gocid.Cid
}

// ComputeID computes a CIDv1 (SHA2-256) of the given kind over data.
func ComputeID(kind Kind, data []byte) (ID, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return ID{}, fmt.Errorf("multihash: %w", err)
	}
	return ID{c: gocid.NewCidV1(uint64(kind), mh)}, nil
}

// ParseID rebuilds an ID of the given kind from its 64-character hex form.
func ParseID(kind Kind, s string) (ID, error) {
	if len(s) != HexLen {
		return ID{}, fmt.Errorf("parse id %q: want %d hex characters", s, HexLen)
	}
	digest, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("parse id %q: %w", s, err)
	}
	mh, err := multihash.Encode(digest, multihash.SHA2_256)
	if err != nil {
		return ID{}, fmt.Errorf("parse id %q: %w", s, err)
	}
	return ID{c: gocid.NewCidV1(uint64(kind), multihash.Multihash(mh))}, nil
}

// IsZero reports whether id is the absent identity.
func (id ID) IsZero() bool { return !id.c.Defined() }

// Kind returns the object kind encoded in the CID.
func (id ID) Kind() Kind { return Kind(id.c.Prefix().Codec) }

// Cid returns the underlying CID.
func (id ID) Cid() gocid.Cid { return id.c }

func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	dmh, err := multihash.Decode(id.c.Hash())
	if err != nil {
		return id.c.String()
	}
	return hex.EncodeToString(dmh.Digest)
}

// Short returns the first n characters of the hex identity.
func (id ID) Short(n int) string {
	s := id.String()
	if len(s) > n {
		return s[:n]
	}
	return s
}

// CIDToFilename returns the base32lower encoding of a CID for use as a filename.
func CIDToFilename(c gocid.Cid) string {
	encoded, _ := multibase.Encode(multibase.Base32, c.Bytes())
	return encoded
}

// IDFromFilename decodes a base32 object filename back into an ID.
func IDFromFilename(name string) (ID, error) {
	_, b, err := multibase.Decode(name)
	if err != nil {
		return ID{}, fmt.Errorf("decode object name: %w", err)
	}
	c, err := gocid.Cast(b)
	if err != nil {
		return ID{}, fmt.Errorf("cast object name: %w", err)
	}
	return ID{c: c}, nil
}

func (id ID) MarshalText() ([]byte, error) {
	if id.IsZero() {
		return []byte{}, nil
	}
	return []byte(CIDToFilename(id.c)), nil
}

func (id *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ID{}
		return nil
	}
	parsed, err := IDFromFilename(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
