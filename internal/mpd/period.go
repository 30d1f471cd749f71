package mpd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dmkhr/mpdgen/internal/lib/xmlnode"
	"github.com/dmkhr/mpdgen/internal/models"
)

var ErrNoMimeType = errors.New("representation mime type not set")

// Period is a time-bounded part of the presentation. Periods are
// created by Builder.AddPeriod so that adaptation set and
// representation numbering is shared across the whole manifest.
type Period struct {
	id uint32

	adaptationSets []*AdaptationSet

	adaptationSetCounter  *Counter
	representationCounter *Counter
}

func newPeriod(id uint32, adaptationSetCounter, representationCounter *Counter) *Period {
	return &Period{
		id:                    id,
		adaptationSetCounter:  adaptationSetCounter,
		representationCounter: representationCounter,
	}
}

// AddAdaptationSet adds a group of interchangeable representations
// of the same content ("audio", "video", "text").
func (p *Period) AddAdaptationSet(contentType string) *AdaptationSet {
	as := &AdaptationSet{
		id:                    p.adaptationSetCounter.Next(),
		contentType:           contentType,
		representationCounter: p.representationCounter,
	}
	p.adaptationSets = append(p.adaptationSets, as)

	return as
}

// EarliestTimestamp returns the earliest presentation timestamp in
// seconds among all representations of the period. ok is false when
// no representation has segments.
func (p *Period) EarliestTimestamp() (float64, bool) {
	var earliest float64
	found := false

	for _, as := range p.adaptationSets {
		for _, r := range as.representations {
			ts, ok := r.earliestTimestamp()
			if !ok {
				continue
			}
			if !found || ts < earliest {
				earliest = ts
				found = true
			}
		}
	}

	return earliest, found
}

// xml renders the period subtree.
func (p *Period) xml() (*xmlnode.Node, error) {
	node := xmlnode.New("Period")
	node.SetAttr("id", strconv.FormatUint(uint64(p.id), 10))

	for _, as := range p.adaptationSets {
		child, err := as.xml()
		if err != nil {
			return nil, err
		}
		if err := node.AddChild(child); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// AdaptationSet groups interchangeable encoded representations of
// the same content.
type AdaptationSet struct {
	id          uint32
	contentType string

	representations       []*Representation
	representationCounter *Counter
}

// AddRepresentation adds one encoded representation described by info.
func (as *AdaptationSet) AddRepresentation(info models.MediaInfo) *Representation {
	r := &Representation{
		id:   as.representationCounter.Next(),
		info: info,
	}
	as.representations = append(as.representations, r)

	return r
}

func (as *AdaptationSet) xml() (*xmlnode.Node, error) {
	node := xmlnode.New("AdaptationSet")
	node.SetAttr("id", strconv.FormatUint(uint64(as.id), 10))
	if as.contentType != "" {
		node.SetAttr("contentType", as.contentType)
	}
	node.SetAttr("segmentAlignment", "true")

	for _, r := range as.representations {
		child, err := r.xml()
		if err != nil {
			return nil, err
		}
		if err := node.AddChild(child); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// Representation is one specific encoding of content within an
// adaptation set.
type Representation struct {
	id   uint32
	info models.MediaInfo

	segmentStart *float64
	segmentEnd   float64
}

// AddNewSegment records timing of a produced media segment, in
// seconds. The first recorded segment defines the representation's
// earliest presentation timestamp.
func (r *Representation) AddNewSegment(startSeconds, durationSeconds float64) {
	if r.segmentStart == nil {
		r.segmentStart = &startSeconds
	}
	if end := startSeconds + durationSeconds; end > r.segmentEnd {
		r.segmentEnd = end
	}
}

func (r *Representation) earliestTimestamp() (float64, bool) {
	if r.segmentStart == nil {
		return 0, false
	}

	return *r.segmentStart, true
}

// durationHint returns the duration estimate (seconds) carried on
// the rendered element for static duration discovery.
func (r *Representation) durationHint() float64 {
	if r.info.MediaDuration > 0 {
		return r.info.MediaDuration
	}
	if r.segmentStart != nil {
		return r.segmentEnd - *r.segmentStart
	}

	return 0
}

func (r *Representation) xml() (*xmlnode.Node, error) {
	if r.info.MimeType == "" {
		return nil, fmt.Errorf("representation %d: %w", r.id, ErrNoMimeType)
	}

	node := xmlnode.New("Representation")
	node.SetAttr("id", strconv.FormatUint(uint64(r.id), 10))
	node.SetAttr("mimeType", r.info.MimeType)
	if r.info.Codecs != "" {
		node.SetAttr("codecs", r.info.Codecs)
	}
	if r.info.Bandwidth > 0 {
		node.SetAttr("bandwidth", strconv.FormatInt(r.info.Bandwidth, 10))
	}

	// Scratch attribute consumed and removed by the builder during
	// static duration discovery. Not part of the final manifest.
	if d := r.durationHint(); d > 0 {
		node.SetAttr("duration", strconv.FormatFloat(d, 'f', -1, 64))
	}

	switch {
	case r.info.SegmentTemplate != nil || r.info.InitSegmentName != nil:
		st := xmlnode.New("SegmentTemplate")
		if r.info.InitSegmentName != nil {
			st.SetAttr("initialization", *r.info.InitSegmentName)
		}
		if r.info.SegmentTemplate != nil {
			st.SetAttr("media", *r.info.SegmentTemplate)
		}
		st.SetAttr("startNumber", "1")
		if err := node.AddChild(st); err != nil {
			return nil, err
		}
	case r.info.MediaFileName != nil:
		base := xmlnode.New("BaseURL")
		base.SetContent(*r.info.MediaFileName)
		if err := node.AddChild(base); err != nil {
			return nil, err
		}
	}

	return node, nil
}
