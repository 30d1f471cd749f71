package mpd

import (
	"path"
	"strings"

	"github.com/dmkhr/mpdgen/internal/models"
)

const fileProtocol = "file://"

// MakePathsRelativeToMpd rewrites media paths present in info to be
// relative to the directory containing the manifest at mpdPath.
// Paths outside that directory stay absolute; either way separators
// are normalized to forward slashes.
func MakePathsRelativeToMpd(mpdPath string, info *models.MediaInfo) {
	mpdFilePath := strings.TrimPrefix(mpdPath, fileProtocol)
	if mpdFilePath == "" {
		return
	}

	mpdDir := path.Dir(toSlash(mpdFilePath))
	if mpdDir == "" || mpdDir == "." {
		return
	}

	if info.MediaFileName != nil {
		*info.MediaFileName = makePathRelative(*info.MediaFileName, mpdDir)
	}
	if info.InitSegmentName != nil {
		*info.InitSegmentName = makePathRelative(*info.InitSegmentName, mpdDir)
	}
	if info.SegmentTemplate != nil {
		*info.SegmentTemplate = makePathRelative(*info.SegmentTemplate, mpdDir)
	}
}

// makePathRelative returns mediaPath relative to parentDir when
// mediaPath lies under it, otherwise mediaPath unchanged.
func makePathRelative(mediaPath, parentDir string) string {
	media := toSlash(mediaPath)

	parent := toSlash(parentDir)
	if !strings.HasSuffix(parent, "/") {
		parent += "/"
	}

	if rel := strings.TrimPrefix(media, parent); rel != media {
		return rel
	}

	return media
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
