package dag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/systemshift/gitlet/internal/errs"
)

// ObjectStore manages CID-addressed immutable objects on disk.
type ObjectStore struct {
	dir string // path to objects/ directory
}

// NewObjectStore creates an ObjectStore at the given directory.
func NewObjectStore(dir string) (*ObjectStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	return &ObjectStore{dir: dir}, nil
}

func (s *ObjectStore) path(id ID) string {
	return filepath.Join(s.dir, CIDToFilename(id.c))
}

// Put writes data to the object store, returning its ID.
// If the object already exists, this is a no-op.
func (s *ObjectStore) Put(kind Kind, data []byte) (ID, error) {
	id, err := ComputeID(kind, data)
	if err != nil {
		return ID{}, err
	}
	path := s.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil // already exists
	}
	if err := SafeWrite(path, data, 0444); err != nil {
		return ID{}, fmt.Errorf("write object: %w", err)
	}
	return id, nil
}

// Get reads an object by ID.
func (s *ObjectStore) Get(id ID) ([]byte, error) {
	if id.IsZero() {
		return nil, errs.NotFound("No object with that id exists.")
	}
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, errs.NotFound(fmt.Sprintf("No %s with id %s exists.", id.Kind(), id))
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", id, err)
	}
	return data, nil
}

// Has checks if an object exists.
func (s *ObjectStore) Has(id ID) bool {
	if id.IsZero() {
		return false
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

// List returns the IDs of every stored object of the given kind, in store
// order (sorted by filename).
func (s *ObjectStore) List(kind Kind) ([]ID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var ids []ID
	for _, name := range names {
		id, err := IDFromFilename(name)
		if err != nil {
			continue // not one of ours
		}
		if id.Kind() == kind {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// BlobEnvelope is the on-disk wrapper for file content.
type BlobEnvelope struct {
	V       int    `json:"v"`
	Content []byte `json:"content"`
}

func encodeBlob(content []byte) ([]byte, error) {
	if content == nil {
		content = []byte{}
	}
	data, err := CanonicalJSON(&BlobEnvelope{V: 1, Content: content})
	if err != nil {
		return nil, fmt.Errorf("serialize blob: %w", err)
	}
	return data, nil
}

// BlobID computes the identity content would have as a blob, without storing it.
func BlobID(content []byte) (ID, error) {
	data, err := encodeBlob(content)
	if err != nil {
		return ID{}, err
	}
	return ComputeID(KindBlob, data)
}

// PutBlob stores file content and returns the blob ID.
func (s *ObjectStore) PutBlob(content []byte) (ID, error) {
	data, err := encodeBlob(content)
	if err != nil {
		return ID{}, err
	}
	return s.Put(KindBlob, data)
}

// GetBlob returns the file content of a blob.
func (s *ObjectStore) GetBlob(id ID) ([]byte, error) {
	if !id.IsZero() && id.Kind() != KindBlob {
		return nil, fmt.Errorf("object %s is a %s, not a blob", id, id.Kind())
	}
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var blob BlobEnvelope
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("unmarshal blob: %w", err)
	}
	return blob.Content, nil
}

// PutCommit serializes and stores a commit.
func (s *ObjectStore) PutCommit(c *Commit) (ID, error) {
	data, err := c.Encode()
	if err != nil {
		return ID{}, err
	}
	id, err := s.Put(KindCommit, data)
	if err != nil {
		return ID{}, fmt.Errorf("store commit: %w", err)
	}
	return id, nil
}

// GetCommit reads and unmarshals a commit by ID.
func (s *ObjectStore) GetCommit(id ID) (*Commit, error) {
	if id.IsZero() || id.Kind() != KindCommit {
		return nil, errs.NotFound("No commit with that id exists.")
	}
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal commit: %w", err)
	}
	if c.Tree == nil {
		c.Tree = Tree{}
	}
	return &c, nil
}

// ResolveCommit turns a full hex identity or a unique hex prefix into a
// commit ID. A prefix matching no commit is NotFound; one matching several
// commits is AmbiguousReference.
func (s *ObjectStore) ResolveCommit(ref string) (ID, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return ID{}, errs.NotFound("No commit with that id exists.")
	}
	if len(ref) == HexLen {
		id, err := ParseID(KindCommit, ref)
		if err != nil || !s.Has(id) {
			return ID{}, errs.NotFound("No commit with that id exists.")
		}
		return id, nil
	}

	ids, err := s.List(KindCommit)
	if err != nil {
		return ID{}, err
	}
	var matches []ID
	for _, id := range ids {
		if strings.HasPrefix(id.String(), ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return ID{}, errs.NotFound("No commit with that id exists.")
	case 1:
		return matches[0], nil
	default:
		return ID{}, errs.New(errs.ErrAmbiguousReference,
			fmt.Sprintf("Commit id prefix %s is ambiguous (%d matches).", ref, len(matches)))
	}
}
