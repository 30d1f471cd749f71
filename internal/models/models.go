package models

// MediaInfo describes a single encoded variant of content. The
// three path fields are optional: a variant is addressed either by
// a single media file or by a segment template with an optional
// initialization segment.
type MediaInfo struct {
	MediaFileName   *string `json:"mediaFileName,omitempty"`
	InitSegmentName *string `json:"initSegmentName,omitempty"`
	SegmentTemplate *string `json:"segmentTemplate,omitempty"`

	ContentType string `json:"contentType"`
	MimeType    string `json:"mimeType"`
	Codecs      string `json:"codecs"`
	Bandwidth   int64  `json:"bandwidth"`

	// MediaDuration is a hint (seconds) used to derive the total
	// presentation duration of a static manifest.
	MediaDuration float64 `json:"mediaDuration"`
}

// ContentItem is one entry of the content inventory: a media
// variant plus its placement on the presentation timeline.
type ContentItem struct {
	MediaInfo
	Start float64 `json:"start"`
}
