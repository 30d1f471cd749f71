package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmkhr/mpdgen/internal/lib/logger/sl"
	"github.com/dmkhr/mpdgen/internal/models"
	"github.com/dmkhr/mpdgen/internal/mpd"
)

// Manifest owns the mpd builder for the process and keeps the
// manifest file at path up to date.
type Manifest struct {
	log  *slog.Logger
	path string

	mu      sync.Mutex
	builder *mpd.Builder
}

// New returns new Manifest.
func New(
	log *slog.Logger,
	path string,
	opts mpd.Options,
	clock mpd.Clock,
	baseURLs []string,
) *Manifest {
	builder := mpd.New(log, opts, clock)
	for _, baseURL := range baseURLs {
		builder.AddBaseURL(baseURL)
	}

	return &Manifest{
		log:     log,
		path:    path,
		builder: builder,
	}
}

// AddContent appends a period describing items. Items are grouped
// into adaptation sets by content type in first-seen order, mime
// types are detected from file content when not declared, and media
// paths are rewritten relative to the manifest location.
//
// Calls must come in chronological order of the content.
func (m *Manifest) AddContent(items []models.ContentItem) error {
	const op = "Manifest.AddContent"

	log := m.log.With(slog.String("op", op))

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(items) == 0 {
		return fmt.Errorf("%s: empty content list", op)
	}

	period := m.builder.AddPeriod()

	sets := make(map[string]*mpd.AdaptationSet)

	for _, item := range items {
		info := item.MediaInfo

		if info.MimeType == "" {
			// Detect before path rewriting, while paths
			// still point at real files.
			mimeType, err := detectMimeType(info)
			if err != nil {
				log.Warn("failed to detect mime type", sl.Err(err))
			} else {
				info.MimeType = mimeType
			}
		}

		mpd.MakePathsRelativeToMpd(m.path, &info)

		set, ok := sets[info.ContentType]
		if !ok {
			set = period.AddAdaptationSet(info.ContentType)
			sets[info.ContentType] = set
		}

		repr := set.AddRepresentation(info)
		if info.MediaDuration > 0 {
			repr.AddNewSegment(item.Start, info.MediaDuration)
		}
	}

	log.Debug("added content", slog.Int("items", len(items)))

	return nil
}

// Manifest returns the serialized manifest text.
func (m *Manifest) Manifest() (string, error) {
	const op = "Manifest.Manifest"

	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := m.builder.String()
	if err != nil {
		m.log.With(slog.String("op", op)).Error("failed to assemble manifest", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Dump writes manifest to given path.
func (m *Manifest) Dump() error {
	const op = "Manifest.Dump"

	log := m.log.With(slog.String("op", op))

	out, err := m.Manifest()
	if err != nil {
		return err
	}

	if err := os.WriteFile(m.path, []byte(out), 0644); err != nil {
		log.Error("failed to write manifest", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CleanUp deletes manifest
func (m *Manifest) CleanUp() {
	const op = "Manifest.CleanUp"

	log := m.log.With(slog.String("op", op))

	if err := os.Remove(m.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("mpd not exists")
		} else {
			log.Error("failed to delete mpd", sl.Err(err))
		}
	}
}

// detectMimeType detects the mime type of the file behind info.
func detectMimeType(info models.MediaInfo) (string, error) {
	var file string
	switch {
	case info.MediaFileName != nil:
		file = *info.MediaFileName
	case info.InitSegmentName != nil:
		file = *info.InitSegmentName
	default:
		return "", errors.New("no file to detect mime type from")
	}

	mimeType, err := mimetype.DetectFile(file)
	if err != nil {
		return "", err
	}

	return mimeType.String(), nil
}
