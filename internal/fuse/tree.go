package fuse

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/systemshift/gitlet/internal/dag"
)

// stableIno returns a stable inode number for a given path string.
func stableIno(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return h.Sum64()
}

// entry is one name directly inside a directory of a commit tree.
type entry struct {
	name string
	dir  bool
}

func dirPrefix(dir string) string {
	if dir == "" {
		return ""
	}
	return dir + "/"
}

// listDir returns the immediate children of dir ("" is the top) in the
// flat path map tree, sorted by name.
func listDir(tree dag.Tree, dir string) []entry {
	prefix := dirPrefix(dir)
	kinds := make(map[string]bool)
	for p := range tree {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		name, _, nested := strings.Cut(rest, "/")
		kinds[name] = kinds[name] || nested
	}
	out := make([]entry, 0, len(kinds))
	for name, isDir := range kinds {
		out = append(out, entry{name: name, dir: isDir})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// lookup resolves name inside dir. A file yields its blob ID.
func lookup(tree dag.Tree, dir, name string) (id dag.ID, isDir, ok bool) {
	full := dirPrefix(dir) + name
	if id, ok := tree[full]; ok {
		return id, false, true
	}
	for p := range tree {
		if strings.HasPrefix(p, full+"/") {
			return dag.ID{}, true, true
		}
	}
	return dag.ID{}, false, false
}

// messageName is the extra file at the top of a commit directory.
const messageName = ".message"

// TreeDir is one directory level of a commit's tree.
type TreeDir struct {
	fs.Inode
	store   *dag.ObjectStore
	tree    dag.Tree
	base    string // inode namespace, e.g. "commits/<id>"
	dir     string // slash path inside the tree, "" at the top
	message []byte // formatted log entry, shown only at the top
}

var _ = (fs.NodeLookuper)((*TreeDir)(nil))
var _ = (fs.NodeReaddirer)((*TreeDir)(nil))
var _ = (fs.NodeGetattrer)((*TreeDir)(nil))

func (d *TreeDir) ino(name string) uint64 {
	return stableIno(d.base + "/" + dirPrefix(d.dir) + name)
}

func (d *TreeDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno(d.base)
	if d.dir != "" {
		out.Ino = stableIno(d.base + "/" + d.dir)
	}
	return fs.OK
}

func (d *TreeDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	if d.dir == "" && d.message != nil {
		entries = append(entries, fuse.DirEntry{Name: messageName, Mode: syscall.S_IFREG, Ino: d.ino(messageName)})
	}
	for _, e := range listDir(d.tree, d.dir) {
		mode := uint32(syscall.S_IFREG)
		if e.dir {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: e.name, Mode: mode, Ino: d.ino(e.name)})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *TreeDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id, isDir, ok := lookup(d.tree, d.dir, name)
	switch {
	case ok && isDir:
		child := &TreeDir{store: d.store, tree: d.tree, base: d.base, dir: dirPrefix(d.dir) + name}
		return d.NewInode(ctx, child, fs.StableAttr{Mode: syscall.S_IFDIR, Ino: d.ino(name)}), fs.OK
	case ok:
		f := &BlobFile{store: d.store, id: id, ino: d.ino(name)}
		return d.NewInode(ctx, f, fs.StableAttr{Mode: syscall.S_IFREG, Ino: d.ino(name)}), fs.OK
	case d.dir == "" && d.message != nil && name == messageName:
		msg := d.message
		f := &TextFile{ino: d.ino(name), data: func() ([]byte, error) { return msg, nil }}
		return d.NewInode(ctx, f, fs.StableAttr{Mode: syscall.S_IFREG, Ino: d.ino(name)}), fs.OK
	default:
		return nil, syscall.ENOENT
	}
}

// BlobFile exposes one stored file version.
type BlobFile struct {
	fs.Inode
	store *dag.ObjectStore
	id    dag.ID
	ino   uint64
}

var _ = (fs.NodeGetattrer)((*BlobFile)(nil))
var _ = (fs.NodeOpener)((*BlobFile)(nil))
var _ = (fs.NodeReader)((*BlobFile)(nil))

func (f *BlobFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	data, err := f.store.GetBlob(f.id)
	if err != nil {
		return syscall.EIO
	}
	out.Mode = 0444
	out.Size = uint64(len(data))
	out.Ino = f.ino
	return fs.OK
}

func (f *BlobFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, fs.OK
}

func (f *BlobFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.store.GetBlob(f.id)
	if err != nil {
		return nil, syscall.EIO
	}
	return readAt(data, dest, off), fs.OK
}

// TextFile is a read-only file whose content is computed on each access.
type TextFile struct {
	fs.Inode
	ino  uint64
	data func() ([]byte, error)
}

var _ = (fs.NodeGetattrer)((*TextFile)(nil))
var _ = (fs.NodeOpener)((*TextFile)(nil))
var _ = (fs.NodeReader)((*TextFile)(nil))

func (f *TextFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	data, err := f.data()
	if err != nil {
		return syscall.EIO
	}
	out.Mode = 0444
	out.Size = uint64(len(data))
	out.Ino = f.ino
	return fs.OK
}

func (f *TextFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (f *TextFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.data()
	if err != nil {
		return nil, syscall.EIO
	}
	return readAt(data, dest, off), fs.OK
}

func readAt(data, dest []byte, off int64) fuse.ReadResult {
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil)
	}
	end := min(off+int64(len(dest)), int64(len(data)))
	return fuse.ReadResultData(data[off:end])
}
