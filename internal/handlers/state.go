package handlers

import (
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
)

// userState keeps one value per logged-in user for a single page. Nothing is shared
// between pages and nothing survives a restart.
type userState[T any] struct {
	mu   sync.Mutex
	m    map[string]T
	init func() T
}

func newUserState[T any](init func() T) *userState[T] {
	return &userState[T]{m: make(map[string]T), init: init}
}

func (s *userState[T]) Get(user string) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[user]
	if !ok && s.init != nil {
		v = s.init()
		s.m[user] = v
	}
	return v
}

func (s *userState[T]) Set(user string, v T) {
	s.mu.Lock()
	s.m[user] = v
	s.mu.Unlock()
}

// Update applies fn to the user's value under the lock and stores the result.
func (s *userState[T]) Update(user string, fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[user]
	if !ok && s.init != nil {
		v = s.init()
	}
	v = fn(v)
	s.m[user] = v
	return v
}

// lockedRand serializes access to a *rand.Rand shared by concurrent requests.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &lockedRand{rng: rng}
}

func (l *lockedRand) with(fn func(*rand.Rand)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.rng)
}

// ==========================
// Uploads
// ==========================

// maxFormMemory is how much of a multipart body is kept in memory; the rest spills to disk.
const maxFormMemory = 8 << 20

var errNoFile = errors.New("no file uploaded")

// readUpload returns the name and content of the file posted in field.
func readUpload(r *http.Request, field string) (string, []byte, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil, errNoFile
	}
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, errNoFile
	}
	return hdr.Filename, data, nil
}

// parseForm parses multipart and urlencoded bodies alike.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// currentUser is the username of the logged-in session.
func currentUser(r *http.Request) string {
	return sessionFrom(r).Username
}

// child returns an independent generator seeded from l, for long-running work that
// should not hold the lock.
func (l *lockedRand) child() *rand.Rand {
	var a, b uint64
	l.with(func(rng *rand.Rand) { a, b = rng.Uint64(), rng.Uint64() })
	return rand.New(rand.NewPCG(a, b))
}
