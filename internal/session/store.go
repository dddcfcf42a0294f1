package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/util"
)

const (
	filePrefix      = "session_"
	fileSuffix      = ".json"
	fileStampLayout = "20060102_150405"
)

// Summary describes one stored session without its turn log
type Summary struct {
	ID        string             `json:"id"`
	File      string             `json:"file"`
	StartedAt time.Time          `json:"started_at"`
	EndedAt   *time.Time         `json:"ended_at"`
	State     model.SessionState `json:"state"`
	Turns     int                `json:"turns"`
}

// Store persists sessions as JSON files in one directory
type Store struct {
	dir    string
	loaded *gocache.Cache
	logger *zap.Logger
}

// NewStore creates a store rooted at dir. A nil logger disables logging.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		loaded: gocache.New(10*time.Minute, 10*time.Minute),
		logger: logger,
	}
}

// Dir returns the store directory
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the file name a session is stored under
func FileName(sess *model.Session) string {
	return filePrefix + sess.StartedAt.UTC().Format(fileStampLayout) + "_" + sess.ID + fileSuffix
}

// Save writes sess and returns the file path
func (s *Store) Save(sess *model.Session) (string, error) {
	if sess == nil || sess.ID == "" {
		return "", derrors.Input(derrors.CodeInvalidSession, "session has no id")
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", derrors.Wrap(fmt.Errorf("create sessions dir: %w", err), derrors.CategoryIOFailure, derrors.CodeSessionWriteFailed, "check sessions.dir")
	}

	path := filepath.Join(s.dir, FileName(sess))
	if err := util.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", derrors.Wrap(fmt.Errorf("write session: %w", err), derrors.CategoryIOFailure, derrors.CodeSessionWriteFailed, "check sessions.dir")
	}

	s.loaded.Delete(path)
	s.logger.Debug("session: saved",
		zap.String("id", sess.ID),
		zap.String("path", path),
		zap.Int("turns", len(sess.Turns)),
	)
	return path, nil
}

// Load returns the session identified by ref, which may be a session id, a
// file name inside the store, or a path to a session file
func (s *Store) Load(ref string) (*model.Session, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.loadFile(path)
}

// List returns summaries of every stored session, newest first
func (s *Store) List() ([]Summary, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(paths))
	for _, path := range paths {
		sess, err := s.loadFile(path)
		if err != nil {
			s.logger.Warn("session: skipping unreadable file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, Summary{
			ID:        sess.ID,
			File:      filepath.Base(path),
			StartedAt: sess.StartedAt,
			EndedAt:   sess.EndedAt,
			State:     sess.State,
			Turns:     len(sess.Turns),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].StartedAt.Equal(summaries[j].StartedAt) {
			return summaries[i].StartedAt.After(summaries[j].StartedAt)
		}
		return summaries[i].File > summaries[j].File
	})
	return summaries, nil
}

// Latest returns the most recently started session
func (s *Store) Latest() (*model.Session, error) {
	summaries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, notFound("latest")
	}
	return s.loadFile(filepath.Join(s.dir, summaries[0].File))
}

func (s *Store) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", notFound(ref)
	}

	if strings.HasSuffix(ref, fileSuffix) {
		for _, candidate := range []string{ref, filepath.Join(s.dir, filepath.Base(ref))} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		return "", notFound(ref)
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*_"+ref+fileSuffix))
	if err != nil {
		return "", fmt.Errorf("match session files: %w", err)
	}
	if len(matches) == 0 {
		return "", notFound(ref)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func (s *Store) files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	return paths, nil
}

func (s *Store) loadFile(path string) (*model.Session, error) {
	if cached, ok := s.loaded.Get(path); ok {
		return cloneSession(cached.(*model.Session)), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filepath.Base(path), err)
	}
	if sess.Facts == nil {
		sess.Facts = model.NewFactSet()
	}

	s.loaded.SetDefault(path, &sess)
	return cloneSession(&sess), nil
}

func notFound(ref string) error {
	return derrors.Wrap(
		fmt.Errorf("session %q not found", ref),
		derrors.CategoryInvalidInput,
		derrors.CodeSessionNotFound,
		"run `docket session list` to see stored sessions",
	)
}
