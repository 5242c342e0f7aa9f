// Package repo is the top-level facade of a gitlet repository: it ties the
// object store, branches, staging index and working directory together and
// exposes one method per user command.
package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/errs"
	"github.com/systemshift/gitlet/internal/stage"
	"github.com/systemshift/gitlet/internal/worktree"
)

// DirName is the repository metadata directory inside the working directory.
const DirName = ".gitlet"

// HeadRef names the current head commit wherever a commit reference is accepted.
const HeadRef = "head"

// Repository is an open gitlet repository.
type Repository struct {
	root     string
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
	state    state
	stage    *stage.Index
	work     *worktree.Dir
	sync     *worktree.Sync
	Store    *dag.ObjectStore
	Branches *dag.RefStore
	Graph    *dag.Graph
}

// state is the persisted pointer record: the current branch and the commit
// the working directory is based on.
type state struct {
	Branch string `json:"branch"`
	Head   dag.ID `json:"head"`
}

type options struct {
	log    *zap.Logger
	now    func() time.Time
	config *Config
}

// Option configures Init and Open.
type Option func(*options)

// WithLogger sets the logger used for debug tracing of operations.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the time source used for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithConfig sets the configuration Init writes. Open ignores it.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = &cfg }
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func metaDir(root string) string { return filepath.Join(root, DirName) }

// IsRepository reports whether root contains a gitlet repository.
func IsRepository(root string) bool {
	info, err := os.Stat(metaDir(root))
	return err == nil && info.IsDir()
}

// Init creates a repository in root with a single root commit on the default
// branch. It fails if root already holds one.
func Init(root string, opts ...Option) (*Repository, error) {
	o := buildOptions(opts)
	if IsRepository(root) {
		return nil, errs.Precondition("A Gitlet version-control system already exists in the current directory.")
	}
	cfg := DefaultConfig()
	if o.config != nil {
		cfg = *o.config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dir := metaDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	if err := cfg.Save(filepath.Join(dir, "config.yml")); err != nil {
		return nil, err
	}
	meta, err := json.MarshalIndent(map[string]any{
		"version": 1,
		"created": o.now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := dag.SafeWrite(filepath.Join(dir, "meta.json"), meta, 0644); err != nil {
		return nil, fmt.Errorf("write meta: %w", err)
	}

	r, err := open(root, cfg, o)
	if err != nil {
		return nil, err
	}
	rootID, err := r.Store.PutCommit(dag.NewRootCommit())
	if err != nil {
		return nil, err
	}
	if err := r.Branches.Set(cfg.DefaultBranch, rootID); err != nil {
		return nil, err
	}
	r.state = state{Branch: cfg.DefaultBranch, Head: rootID}
	if err := multierr.Append(r.saveState(), r.stage.Save()); err != nil {
		return nil, err
	}
	r.log.Debug("initialized repository",
		zap.String("root", root),
		zap.String("branch", cfg.DefaultBranch),
		zap.Stringer("commit", rootID))
	return r, nil
}

// Open opens the repository in root.
func Open(root string, opts ...Option) (*Repository, error) {
	if !IsRepository(root) {
		return nil, errs.NotFound("Not in an initialized Gitlet directory.")
	}
	o := buildOptions(opts)
	cfg, err := LoadConfig(filepath.Join(metaDir(root), "config.yml"))
	if err != nil {
		return nil, err
	}
	r, err := open(root, cfg, o)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.statePath())
	if err != nil {
		return nil, fmt.Errorf("read head: %w", err)
	}
	if err := json.Unmarshal(data, &r.state); err != nil {
		return nil, fmt.Errorf("parse head: %w", err)
	}
	return r, nil
}

func open(root string, cfg Config, o options) (*Repository, error) {
	dir := metaDir(root)
	store, err := dag.NewObjectStore(filepath.Join(dir, "objects"))
	if err != nil {
		return nil, err
	}
	refs, err := dag.NewRefStore(filepath.Join(dir, "refs"))
	if err != nil {
		return nil, err
	}
	idx, err := stage.Load(filepath.Join(dir, "stage.json"))
	if err != nil {
		return nil, err
	}
	work, err := worktree.NewDir(root, DirName, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	return &Repository{
		root:     root,
		cfg:      cfg,
		log:      o.log,
		now:      o.now,
		stage:    idx,
		work:     work,
		sync:     worktree.NewSync(work, store),
		Store:    store,
		Branches: refs,
		Graph:    dag.NewGraph(store),
	}, nil
}

func (r *Repository) statePath() string {
	return filepath.Join(metaDir(r.root), "HEAD.json")
}

func (r *Repository) saveState() error {
	data, err := dag.CanonicalJSON(r.state)
	if err != nil {
		return fmt.Errorf("serialize head: %w", err)
	}
	if err := dag.SafeWrite(r.statePath(), data, 0644); err != nil {
		return fmt.Errorf("write head: %w", err)
	}
	return nil
}

// Root returns the working directory root.
func (r *Repository) Root() string { return r.root }

// Config returns the loaded configuration.
func (r *Repository) Config() Config { return r.cfg }

// CurrentBranch returns the name of the checked-out branch.
func (r *Repository) CurrentBranch() string { return r.state.Branch }

// Head returns the commit the working directory is based on.
func (r *Repository) Head() dag.ID { return r.state.Head }

// HeadCommit reads the head commit.
func (r *Repository) HeadCommit() (*dag.Commit, error) {
	return r.Store.GetCommit(r.state.Head)
}

// ResolveCommit turns "head", a full identity or a unique prefix into a commit ID.
func (r *Repository) ResolveCommit(ref string) (dag.ID, error) {
	if ref == HeadRef {
		return r.state.Head, nil
	}
	return r.Store.ResolveCommit(ref)
}

// advance records a new commit on the current branch and empties the stage.
func (r *Repository) advance(id dag.ID) error {
	if err := r.Branches.Set(r.state.Branch, id); err != nil {
		return err
	}
	r.state.Head = id
	return multierr.Append(r.saveState(), r.stage.Clear())
}
