package ingest

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photodrop/internal/domain"
	"photodrop/internal/repository"
	"photodrop/internal/storage"
)

// UploadLookup is the slice of the upload repository the reconciler needs.
type UploadLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Upload, error)
}

// Reconciler sweeps the storage tree for artifacts whose row insert failed:
// originals with no uploads row, and thumbs or sidecars whose id is gone.
// Files younger than the grace window are skipped so an ingest that is still
// between disk write and row insert is never swept. Running it twice is a
// no-op the second time.
type Reconciler struct {
	uploads UploadLookup
	store   *storage.Store
	grace   time.Duration
}

type ReconcileReport struct {
	Scanned int
	Removed int
	Skipped int
}

func NewReconciler(uploads UploadLookup, store *storage.Store, grace time.Duration) *Reconciler {
	return &Reconciler{uploads: uploads, store: store, grace: grace}
}

func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	eventsDir := filepath.Join(r.store.Base(), "events")
	entries, err := os.ReadDir(eventsDir)
	if os.IsNotExist(err) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-r.grace)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		eventID := entry.Name()

		if err := r.sweepKind(ctx, eventID, storage.KindOriginals, cutoff, report); err != nil {
			return report, err
		}
		if err := r.sweepKind(ctx, eventID, storage.KindThumbs, cutoff, report); err != nil {
			return report, err
		}
		if err := r.sweepKind(ctx, eventID, storage.KindMetadata, cutoff, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (r *Reconciler) sweepKind(ctx context.Context, eventID string, kind storage.Kind, cutoff time.Time, report *ReconcileReport) error {
	dir := filepath.Join(r.store.EventDir(eventID), string(kind))
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()

		// cover image artifacts live in metadata/ but belong to the event
		if kind == storage.KindMetadata && strings.HasPrefix(name, "cover") {
			continue
		}

		report.Scanned++

		id := strings.TrimSuffix(name, filepath.Ext(name))
		_, err := r.uploads.GetByID(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrUploadNotFound) {
			return err
		}

		info, statErr := f.Info()
		if statErr == nil && info.ModTime().After(cutoff) {
			report.Skipped++
			continue
		}

		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		log.Printf("reconcile_removed event_id=%s kind=%s name=%s", eventID, kind, name)
		report.Removed++
	}

	return nil
}
