package fuse

import (
	"github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"
	"go.uber.org/zap"

	"github.com/systemshift/gitlet/internal/repo"
)

// MountFS mounts the read-only history view of r at mountpoint.
// Returns the server (call server.Wait() to block, server.Unmount() to stop).
func MountFS(mountpoint string, r *repo.Repository, log *zap.Logger, debug bool) (*gofuse.Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	root := &RootNode{repo: r, log: log}

	opts := &fs.Options{
		MountOptions: gofuse.MountOptions{
			FsName:        "gitlet",
			Name:          "gitlet",
			DisableXAttrs: true,
			Debug:         debug,
		},
	}

	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, err
	}
	log.Info("mounted", zap.String("mountpoint", mountpoint), zap.String("repo", r.Root()))
	return server, nil
}
