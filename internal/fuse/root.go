// Package fuse mounts a read-only view of a repository's history.
//
// Layout:
//
//	HEAD                  current branch and head commit
//	branches/<name>/...   files of the branch tip
//	commits/<id>/...      files of every commit, plus .message
package fuse

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"go.uber.org/zap"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

// RootNode is the mountpoint directory.
type RootNode struct {
	fs.Inode
	repo *repo.Repository
	log  *zap.Logger
}

var _ = (fs.NodeOnAdder)((*RootNode)(nil))
var _ = (fs.NodeGetattrer)((*RootNode)(nil))

func (r *RootNode) OnAdd(ctx context.Context) {
	head := &TextFile{ino: stableIno("HEAD"), data: r.headBytes}
	r.AddChild("HEAD", r.NewPersistentInode(ctx, head, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  stableIno("HEAD"),
	}), true)

	branches := &BranchesDir{repo: r.repo, log: r.log}
	r.AddChild("branches", r.NewPersistentInode(ctx, branches, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("branches"),
	}), true)

	commits := &CommitsDir{repo: r.repo, log: r.log}
	r.AddChild("commits", r.NewPersistentInode(ctx, commits, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("commits"),
	}), true)
}

func (r *RootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("/")
	return fs.OK
}

// headBytes re-reads the repository so HEAD follows commands run while mounted.
func (r *RootNode) headBytes() ([]byte, error) {
	cur, err := repo.Open(r.repo.Root())
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "%s %s\n", cur.CurrentBranch(), cur.Head()), nil
}

// BranchesDir lists every branch as a directory of its tip's files.
type BranchesDir struct {
	fs.Inode
	repo *repo.Repository
	log  *zap.Logger
}

var _ = (fs.NodeLookuper)((*BranchesDir)(nil))
var _ = (fs.NodeReaddirer)((*BranchesDir)(nil))
var _ = (fs.NodeGetattrer)((*BranchesDir)(nil))

func (d *BranchesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("branches")
	return fs.OK
}

func (d *BranchesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names, err := d.repo.Branches.List()
	if err != nil {
		d.log.Warn("list branches", zap.Error(err))
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, len(names))
	for i, name := range names {
		entries[i] = fuse.DirEntry{Name: name, Mode: syscall.S_IFDIR, Ino: stableIno("branches/" + name)}
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *BranchesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	tip, err := d.repo.Branches.Get(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	c, err := d.repo.Store.GetCommit(tip)
	if err != nil {
		d.log.Warn("read branch tip", zap.String("branch", name), zap.Error(err))
		return nil, syscall.EIO
	}
	dir := &TreeDir{store: d.repo.Store, tree: c.Tree, base: "branches/" + name}
	return d.NewInode(ctx, dir, fs.StableAttr{Mode: syscall.S_IFDIR, Ino: stableIno("branches/" + name)}), fs.OK
}

// CommitsDir lists every stored commit by identity.
type CommitsDir struct {
	fs.Inode
	repo *repo.Repository
	log  *zap.Logger
}

var _ = (fs.NodeLookuper)((*CommitsDir)(nil))
var _ = (fs.NodeReaddirer)((*CommitsDir)(nil))
var _ = (fs.NodeGetattrer)((*CommitsDir)(nil))

func (d *CommitsDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("commits")
	return fs.OK
}

func (d *CommitsDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	ids, err := d.repo.Store.List(dag.KindCommit)
	if err != nil {
		d.log.Warn("list commits", zap.Error(err))
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, len(ids))
	for i, id := range ids {
		entries[i] = fuse.DirEntry{Name: id.String(), Mode: syscall.S_IFDIR, Ino: stableIno("commits/" + id.String())}
	}
	return fs.NewListDirStream(entries), fs.OK
}

// Lookup accepts a full identity or a unique prefix.
func (d *CommitsDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	id, err := d.repo.Store.ResolveCommit(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	c, err := d.repo.Store.GetCommit(id)
	if err != nil {
		d.log.Warn("read commit", zap.Stringer("commit", id), zap.Error(err))
		return nil, syscall.EIO
	}
	entry := repo.LogEntry{ID: id, Parents: c.Parents, Timestamp: c.Timestamp, Message: c.Message}
	base := "commits/" + id.String()
	dir := &TreeDir{
		store:   d.repo.Store,
		tree:    c.Tree,
		base:    base,
		message: []byte(repo.FormatEntry(entry, time.Local)),
	}
	return d.NewInode(ctx, dir, fs.StableAttr{Mode: syscall.S_IFDIR, Ino: stableIno(base)}), fs.OK
}
