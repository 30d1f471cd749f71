package mpd

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/beevik/etree"
	dash "github.com/zencoder/go-dash/v3/mpd"

	"github.com/dmkhr/mpdgen/internal/lib/xmlnode"
	"github.com/dmkhr/mpdgen/internal/version"
)

// Fixed namespace declarations of the MPD root element.
const (
	xmlNamespace      = "urn:mpeg:dash:schema:mpd:2011"
	xmlNamespaceXsi   = "http://www.w3.org/2001/XMLSchema-instance"
	xmlNamespaceXlink = "http://www.w3.org/1999/xlink"
	dashSchemaMpd2011 = "urn:mpeg:dash:schema:mpd:2011 DASH-MPD.xsd"
	cencNamespace     = "urn:mpeg:cenc:2013"
)

// Builder assembles an MPD document from accumulated periods.
//
// A builder is not safe for concurrent mutation: AddBaseURL and
// AddPeriod calls must be serialized externally. String calls may
// overlap with each other but not with appends.
type Builder struct {
	log   *slog.Logger
	opts  Options
	clock Clock

	baseURLs []string
	periods  []*Period

	adaptationSetCounter  *Counter
	representationCounter *Counter

	// Computed once for dynamic manifests, then reused, so the
	// value does not drift across re-serializations.
	availabilityStartTime string
}

// New returns a builder for the given options. A nil clock falls
// back to the system clock.
func New(log *slog.Logger, opts Options, clock Clock) *Builder {
	if clock == nil {
		clock = SystemClock()
	}

	return &Builder{
		log:                   log,
		opts:                  opts,
		clock:                 clock,
		adaptationSetCounter:  NewCounter(),
		representationCounter: NewCounter(),
	}
}

// AddBaseURL appends a base URL. Base URLs are emitted in insertion
// order.
func (b *Builder) AddBaseURL(baseURL string) {
	b.baseURLs = append(b.baseURLs, baseURL)
}

// AddPeriod appends a new period and returns it.
//
// Periods must be added in chronological order: the earliest
// presentation timestamp used for availabilityStartTime is taken
// from the first period only.
func (b *Builder) AddPeriod() *Period {
	p := newPeriod(uint32(len(b.periods)), b.adaptationSetCounter, b.representationCounter)
	b.periods = append(b.periods, p)

	return p
}

// String assembles the manifest and returns it as indented UTF-8
// text. Assembly is all-or-nothing: any structural failure yields
// no output.
func (b *Builder) String() (string, error) {
	const op = "Builder.String"

	doc, err := b.generate()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	out, err := doc.Serialize()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (b *Builder) generate() (*xmlnode.Document, error) {
	root := xmlnode.New("MPD")

	for _, baseURL := range b.baseURLs {
		child := xmlnode.New("BaseURL")
		child.SetContent(baseURL)
		if err := root.AddChild(child); err != nil {
			return nil, fmt.Errorf("add BaseURL: %w", err)
		}
	}

	for _, period := range b.periods {
		node, err := period.xml()
		if err != nil {
			return nil, fmt.Errorf("render period %d: %w", period.id, err)
		}
		if err := root.AddChild(node); err != nil {
			return nil, fmt.Errorf("add period %d: %w", period.id, err)
		}
	}

	addNamespaces(root)
	root.SetAttr("profiles", profileURI(b.opts.Profile))

	b.addCommonInfo(root)

	switch b.opts.Type {
	case TypeStatic:
		b.addStaticInfo(root)
	case TypeDynamic:
		b.addDynamicInfo(root)
	default:
		panic(fmt.Sprintf("unknown mpd type: %d", b.opts.Type))
	}

	doc := xmlnode.NewDocument()
	if v := version.Version(); v != "" {
		doc.AddComment(fmt.Sprintf("Generated with %s version %s", version.ProjectURL(), v))
	}
	doc.SetRoot(root)

	return doc, nil
}

func addNamespaces(root *xmlnode.Node) {
	root.SetAttr("xmlns", xmlNamespace)
	root.SetAttr("xmlns:xsi", xmlNamespaceXsi)
	root.SetAttr("xmlns:xlink", xmlNamespaceXlink)
	root.SetAttr("xsi:schemaLocation", dashSchemaMpd2011)
	root.SetAttr("xmlns:cenc", cencNamespace)
}

func profileURI(p Profile) string {
	switch p {
	case ProfileOnDemand:
		return string(dash.DASH_PROFILE_ONDEMAND)
	case ProfileLive:
		return string(dash.DASH_PROFILE_LIVE)
	default:
		panic(fmt.Sprintf("unknown dash profile: %d", p))
	}
}

// addCommonInfo sets attributes common to both manifest types.
func (b *Builder) addCommonInfo(root *xmlnode.Node) {
	const op = "Builder.addCommonInfo"

	if positive(b.opts.Params.MinBufferTime) {
		root.SetAttr("minBufferTime", SecondsToDuration(b.opts.Params.MinBufferTime))
	} else {
		// The manifest is still emitted, although non-conformant.
		b.log.With(slog.String("op", op)).Error("minBufferTime value not specified")
	}
}

func (b *Builder) addStaticInfo(root *xmlnode.Node) {
	root.SetAttr("type", "static")
	root.SetAttr("mediaPresentationDuration", SecondsToDuration(b.staticDuration(root)))
}

// staticDuration computes the total presentation duration as the
// maximum duration hint among representations of the first period,
// stripping each hint as it is visited. mediaPresentationDuration
// must be present for a static mpd, so zero is still formatted when
// there is nothing to aggregate.
func (b *Builder) staticDuration(root *xmlnode.Node) float64 {
	const op = "Builder.staticDuration"

	log := b.log.With(slog.String("op", op))

	periodNode := findPeriodNode(root)
	if periodNode == nil {
		log.Warn("no Period node found, set mpd duration to 0")
		return 0
	}

	maxDuration := 0.0
	for _, adaptationSet := range periodNode.ChildElements() {
		for _, representation := range adaptationSet.ChildElements() {
			attr := representation.SelectAttr("duration")
			if attr == nil {
				continue
			}
			if d, err := strconv.ParseFloat(attr.Value, 64); err == nil && d > maxDuration {
				maxDuration = d
			}
			representation.RemoveAttr("duration")
		}
	}

	return maxDuration
}

// findPeriodNode returns the first Period child of the root. Only
// direct children are checked.
func findPeriodNode(root *xmlnode.Node) *etree.Element {
	for _, child := range root.Element().ChildElements() {
		if child.Tag == "Period" {
			return child
		}
	}

	return nil
}

func (b *Builder) addDynamicInfo(root *xmlnode.Node) {
	const op = "Builder.addDynamicInfo"

	log := b.log.With(slog.String("op", op))

	root.SetAttr("type", "dynamic")

	// No offset from now.
	root.SetAttr("publishTime", b.xmlDateTime(0))

	// availabilityStartTime is required for the dynamic profile.
	// Calculate if not calculated yet.
	if b.availabilityStartTime == "" {
		if earliest, ok := b.earliestTimestamp(); ok {
			b.availabilityStartTime = b.xmlDateTime(-int(math.Ceil(earliest)))
		} else {
			log.Error("could not determine the earliest presentation timestamp for availabilityStartTime")
		}
	}
	if b.availabilityStartTime != "" {
		root.SetAttr("availabilityStartTime", b.availabilityStartTime)
	}

	if positive(b.opts.Params.MinimumUpdatePeriod) {
		root.SetAttr("minimumUpdatePeriod", SecondsToDuration(b.opts.Params.MinimumUpdatePeriod))
	} else {
		log.Warn("mpd type is dynamic but minimumUpdatePeriod is not specified")
	}

	setIfPositive(root, "timeShiftBufferDepth", b.opts.Params.TimeShiftBufferDepth)
	setIfPositive(root, "suggestedPresentationDelay", b.opts.Params.SuggestedPresentationDelay)
}

// earliestTimestamp returns the earliest presentation timestamp of
// the manifest, taken from the first period in insertion order.
func (b *Builder) earliestTimestamp() (float64, bool) {
	if len(b.periods) == 0 {
		return 0, false
	}

	return b.periods[0].EarliestTimestamp()
}

// xmlDateTime returns now+offset in XML dateTime format. The value
// is UTC, so the string ends with 'Z'.
func (b *Builder) xmlDateTime(offsetSeconds int) string {
	t := b.clock.Now().Add(time.Duration(offsetSeconds) * time.Second)

	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func positive(v float64) bool {
	return v > 0
}

func setIfPositive(root *xmlnode.Node, name string, seconds float64) {
	if positive(seconds) {
		root.SetAttr(name, SecondsToDuration(seconds))
	}
}
