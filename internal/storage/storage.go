package storage

import (
	"os"
	"path"
	"path/filepath"

	"photodrop/internal/domain"
)

// Kind selects one of the per-event artifact directories.
type Kind string

const (
	KindOriginals Kind = "originals"
	KindThumbs    Kind = "thumbs"
	KindMetadata  Kind = "metadata"
)

var kinds = []Kind{KindOriginals, KindThumbs, KindMetadata}

// Store lays the on-disk tree out as
// {base}/events/{eventID}/{originals,thumbs,metadata}. Identifiers are
// freshly generated per upload, so concurrent writers never share a path.
type Store struct {
	base string
}

func New(base string) *Store {
	return &Store{base: base}
}

func (s *Store) Base() string { return s.base }

// Init creates the base directory.
func (s *Store) Init() error {
	return os.MkdirAll(filepath.Join(s.base, "events"), 0o755)
}

func (s *Store) EventDir(eventID string) string {
	return filepath.Join(s.base, "events", eventID)
}

// InitEventDirs makes sure all artifact directories of an event exist.
func (s *Store) InitEventDirs(eventID string) error {
	for _, k := range kinds {
		if err := os.MkdirAll(filepath.Join(s.EventDir(eventID), string(k)), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// FilePath returns the absolute path of an artifact.
func (s *Store) FilePath(eventID string, kind Kind, name string) string {
	return filepath.Join(s.EventDir(eventID), string(kind), name)
}

// RelativePath returns the slash-separated storage-relative path recorded on
// Upload rows and used by all downstream readers.
func RelativePath(eventID string, kind Kind, name string) string {
	return path.Join("events", eventID, string(kind), name)
}

// Resolve turns a recorded relative path back into an absolute one.
func (s *Store) Resolve(relative string) string {
	return filepath.Join(s.base, filepath.FromSlash(relative))
}

// RemoveEvent deletes the whole storage subtree of an event.
func (s *Store) RemoveEvent(eventID string) error {
	return os.RemoveAll(s.EventDir(eventID))
}

// RemoveUploadArtifacts deletes the original, thumbnail and metadata sidecar
// of an upload. Missing files are fine, they may never have been produced.
func (s *Store) RemoveUploadArtifacts(u *domain.Upload) error {
	paths := []string{
		s.Resolve(u.RelativePath),
		s.FilePath(u.EventID, KindThumbs, u.ID+".jpg"),
		s.FilePath(u.EventID, KindMetadata, u.ID+".json"),
	}
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
