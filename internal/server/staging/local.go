package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stagebridge/stagebridge/internal/common"
	"github.com/stagebridge/stagebridge/internal/filex"
	"github.com/stagebridge/stagebridge/internal/logging"
)

const (
	repositoryFolder    = "repository_contents"
	repositoryStateFile = "repository_state"
)

// LocalRepository is the filesystem-backed staging backend. It exclusively
// owns the subtree under root for the lifetime of the process.
//
// The only shared mutable state is the index map; it is guarded by mu and the
// lock is never held across file I/O.
type LocalRepository struct {
	root string
	log  logging.Logger

	mu      sync.RWMutex
	indexes map[string]uint32
}

// NewLocalRepository creates a backend rooted at root. An empty root selects
// a fresh directory under the system temp dir.
func NewLocalRepository(root string, log logging.Logger) (*LocalRepository, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "staging-"+uuid.NewString())
	}

	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	log = log.With("module", "staging")
	log.Debug(context.Background(), "created local staging root", "root", abs)

	return &LocalRepository{
		root:    abs,
		log:     log,
		indexes: make(map[string]uint32),
	}, nil
}

func indexKey(userID, clientAddr, profileID string) string {
	return userID + "/" + clientAddr + "/" + profileID
}

// nextIndex allocates a fresh, strictly increasing index for the triple.
func (r *LocalRepository) nextIndex(userID, clientAddr, profileID string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := indexKey(userID, clientAddr, profileID)
	if current, ok := r.indexes[k]; ok {
		r.indexes[k] = current + 1
	} else {
		r.indexes[k] = 0
	}
	return r.indexes[k]
}

// currentDefaultIndex returns the current no-profile index for the pair,
// allocating 0 on first use. Repeated calls do not increment.
func (r *LocalRepository) currentDefaultIndex(userID, clientAddr string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := indexKey(userID, clientAddr, NoProfile)
	if _, ok := r.indexes[k]; !ok {
		r.indexes[k] = 0
	}
	return r.indexes[k]
}

// validate rejects keys that were never allocated or whose index exceeds the
// highest allocated index for their triple. This guards against forged or
// stale keys.
func (r *LocalRepository) validate(key RepositoryKey) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max, ok := r.indexes[indexKey(key.UserID, key.ClientAddr, key.ProfileID())]
	if !ok {
		return fmt.Errorf("%w: repository %s does not exist", common.ErrorValidation, key)
	}
	if key.Index > max {
		return fmt.Errorf("%w: repository %s exceeds index %d", common.ErrorValidation, key, max)
	}
	return nil
}

func (r *LocalRepository) repositoryDir(key RepositoryKey) (string, error) {
	dir := filepath.Join(r.root, key.UserID, key.ClientAddr, key.RepositoryID())
	dir = filepath.Clean(dir)
	if !within(r.root, dir) {
		return "", fmt.Errorf("%w: invalid repository %s", common.ErrorValidation, key)
	}
	return dir, nil
}

func (r *LocalRepository) contentsDir(key RepositoryKey) (string, error) {
	dir, err := r.repositoryDir(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, repositoryFolder), nil
}

func (r *LocalRepository) statePath(key RepositoryKey) (string, error) {
	dir, err := r.repositoryDir(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, repositoryStateFile), nil
}

// safeRelativePath normalizes relativePath for use inside a staging area and
// rejects anything that would resolve outside it. The check is on the
// normalized form, so it behaves the same regardless of which separator the
// client used.
func safeRelativePath(relativePath string) (string, error) {
	p := path.Clean(strings.ReplaceAll(relativePath, `\`, "/"))
	if p == "." || p == "" || path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: invalid path to upload: %s", common.ErrorValidation, relativePath)
	}
	return p, nil
}

// requireOpen validates the key and checks that the repository has not
// progressed past open.
func (r *LocalRepository) requireOpen(key RepositoryKey) error {
	if err := r.validate(key); err != nil {
		return err
	}
	state, err := r.readState(key)
	if err != nil {
		return err
	}
	if state != StateOpen {
		return fmt.Errorf("%w: repository %s is %s, not open", common.ErrorValidation, key, state)
	}
	return nil
}

func (r *LocalRepository) Start(ctx context.Context, userID, clientAddr, profileID string) (RepositoryKey, error) {
	index := r.nextIndex(userID, clientAddr, profileID)
	key := NewRepositoryKey(userID, clientAddr, profileID, index)
	r.log.Debug(ctx, "starting repository", "key", key.String())

	if err := r.createArea(key); err != nil {
		return RepositoryKey{}, err
	}
	return key, nil
}

func (r *LocalRepository) OpenDefault(ctx context.Context, userID, clientAddr string) (RepositoryKey, error) {
	index := r.currentDefaultIndex(userID, clientAddr)
	key := NewRepositoryKey(userID, clientAddr, "", index)
	r.log.Debug(ctx, "opening default repository", "key", key.String())

	if err := r.createArea(key); err != nil {
		return RepositoryKey{}, err
	}
	return key, nil
}

func (r *LocalRepository) createArea(key RepositoryKey) error {
	dir, err := r.contentsDir(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("%w: creating %s: %v", common.ErrorStorage, dir, err)
	}
	return r.writeState(key, StateOpen)
}

func (r *LocalRepository) AddFile(ctx context.Context, authorizedNamespaces []string, key RepositoryKey, relativePath string, contents io.Reader) error {
	r.log.Debug(ctx, "adding file to repository", "key", key.String(), "path", relativePath)

	if err := r.requireOpen(key); err != nil {
		return err
	}
	if err := r.authorizeProfile(authorizedNamespaces, key); err != nil {
		return err
	}

	rel, err := safeRelativePath(relativePath)
	if err != nil {
		return err
	}

	root, err := r.contentsDir(key)
	if err != nil {
		return err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !within(root, target) {
		return fmt.Errorf("%w: invalid path to upload: %s", common.ErrorValidation, relativePath)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o770); err != nil {
		return fmt.Errorf("%w: creating parent of %s: %v", common.ErrorStorage, target, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", common.ErrorStorage, target, err)
	}
	defer f.Close()

	// The body is consumed incrementally; an aborted upload leaves the
	// bytes flushed so far in place.
	if _, err := io.Copy(f, contents); err != nil {
		return fmt.Errorf("%w: writing %s: %v", common.ErrorStorage, target, err)
	}

	return nil
}

// authorizeProfile rejects uploads into a profile the caller is not
// authorized for. Profile-less repositories and callers without a namespace
// list are exempt.
func (r *LocalRepository) authorizeProfile(authorizedNamespaces []string, key RepositoryKey) error {
	if key.profileID == "" || len(authorizedNamespaces) == 0 {
		return nil
	}
	if !slices.Contains(authorizedNamespaces, key.profileID) {
		return fmt.Errorf("%w: namespace %s not authorized", common.ErrorValidation, key.profileID)
	}
	return nil
}

func (r *LocalRepository) Finish(ctx context.Context, key RepositoryKey) (*Archive, error) {
	r.log.Debug(ctx, "finishing repository", "key", key.String())

	if err := r.requireOpen(key); err != nil {
		return nil, err
	}

	root, err := r.contentsDir(key)
	if err != nil {
		return nil, err
	}

	archive := NewArchive()
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		return archive.AddFile(rel, f)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: packaging %s: %v", common.ErrorStorage, key, err)
	}

	if err := os.RemoveAll(root); err != nil {
		return nil, fmt.Errorf("%w: removing %s: %v", common.ErrorStorage, root, err)
	}
	if err := r.writeState(key, StateClosed); err != nil {
		return nil, err
	}

	r.log.Debug(ctx, "closed repository", "key", key.String())
	return archive, nil
}

func (r *LocalRepository) Release(ctx context.Context, key RepositoryKey) error {
	r.log.Debug(ctx, "releasing repository", "key", key.String())

	if err := r.validate(key); err != nil {
		return err
	}
	return r.writeState(key, StateReleased)
}

func (r *LocalRepository) GetState(ctx context.Context, key RepositoryKey) (RepositoryState, error) {
	if err := r.validate(key); err != nil {
		return StateNotFound, nil
	}
	return r.readState(key)
}

func (r *LocalRepository) writeState(key RepositoryKey, state RepositoryState) error {
	p, err := r.statePath(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(state.String()), 0o660); err != nil {
		return fmt.Errorf("%w: writing state of %s: %v", common.ErrorStorage, key, err)
	}
	return nil
}

func (r *LocalRepository) readState(key RepositoryKey) (RepositoryState, error) {
	p, err := r.statePath(key)
	if err != nil {
		return 0, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return StateNotFound, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading state of %s: %v", common.ErrorStorage, key, err)
	}
	state, err := ParseRepositoryState(string(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return state, nil
}

// within reports whether p is root itself or inside it. Both paths must be
// absolute and cleaned.
func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
