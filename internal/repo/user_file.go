package repo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/crucial707/studybuddy/internal/models"
	"github.com/fsnotify/fsnotify"
)

// UserStore is the two-column username → password table behind login and sign-up.
// Uniqueness is checked by the caller before SaveUser.
type UserStore interface {
	LoadUsers(ctx context.Context) (map[string]string, error)
	SaveUser(ctx context.Context, username, password string) error
}

var userFileHeader = []string{"username", "password"}

// ==========================
// FileUserRepo
// ==========================

// FileUserRepo keeps users in a CSV file with a username,password header.
// Reads load the whole table; writes append one row.
type FileUserRepo struct {
	Path string

	mu       sync.Mutex
	watching bool
	cache    map[string]string
}

var _ UserStore = (*FileUserRepo)(nil)

// NewFileUserRepo creates the file with its header when it does not exist yet.
func NewFileUserRepo(path string) (*FileUserRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create user store dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeFileAtomic(path, []byte("username,password\n"), 0o600); err != nil {
			return nil, fmt.Errorf("init user store: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat user store: %w", err)
	}
	return &FileUserRepo{Path: path}, nil
}

// LoadUsers returns every user. When a later row repeats a username it wins.
func (r *FileUserRepo) LoadUsers(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.watching && r.cache != nil {
		out := copyUsers(r.cache)
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.watching {
		r.cache = copyUsers(users)
	}
	r.mu.Unlock()
	return users, nil
}

func (r *FileUserRepo) read() (map[string]string, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	users := make(map[string]string)
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read user store: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == userFileHeader[0] {
				continue
			}
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		pass := ""
		if len(row) > 1 {
			pass = row[1]
		}
		users[row[0]] = pass
	}
	return users, nil
}

// SaveUser appends one row. Permission failures surface as ErrStoreLocked.
func (r *FileUserRepo) SaveUser(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(r.Path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %v", ErrStoreLocked, err)
		}
		return fmt.Errorf("open user store: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{username, password}); err != nil {
		f.Close()
		return fmt.Errorf("append user: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append user: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close user store: %w", err)
	}

	r.invalidate()
	return nil
}

// Watch caches the table and drops the cache whenever the file changes on disk.
// It returns once the watcher is running; the watcher stops when ctx is done.
func (r *FileUserRepo) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("user store watcher: %w", err)
	}
	// Watch the directory: editors and atomic writers replace the file.
	if err := watcher.Add(filepath.Dir(r.Path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(r.Path), err)
	}

	r.mu.Lock()
	r.watching = true
	r.cache = nil
	r.mu.Unlock()

	go func() {
		defer watcher.Close()
		target := filepath.Clean(r.Path)
		for {
			select {
			case <-ctx.Done():
				r.mu.Lock()
				r.watching = false
				r.cache = nil
				r.mu.Unlock()
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				r.handleEvent(target, ev)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("user store watcher", "error", err)
			}
		}
	}()
	return nil
}

func (r *FileUserRepo) handleEvent(target string, ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != target {
		return
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
		r.invalidate()
	}
}

func (r *FileUserRepo) invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

func copyUsers(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// SortedUsers turns a LoadUsers result into a slice ordered by username.
func SortedUsers(users map[string]string) []models.User {
	out := make([]models.User, 0, len(users))
	for u, p := range users {
		out = append(out, models.User{Username: u, Password: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
