package mpd_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ptr "github.com/dmkhr/mpdgen/internal/lib/utils/pointers"
	"github.com/dmkhr/mpdgen/internal/models"
	"github.com/dmkhr/mpdgen/internal/mpd"
	"github.com/dmkhr/mpdgen/internal/version"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseMpd(t *testing.T, out string) *etree.Element {
	t.Helper()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))

	root := doc.Root()
	require.NotNil(t, root)
	require.Equal(t, "MPD", root.Tag)

	return root
}

func audioInfo(duration float64) models.MediaInfo {
	return models.MediaInfo{
		MimeType:      "audio/mp4",
		Codecs:        "mp4a.40.2",
		Bandwidth:     96000,
		MediaDuration: duration,
	}
}

func TestNamespacesAndProfile(t *testing.T) {
	testCases := []struct {
		desc    string
		profile mpd.Profile
		expect  string
	}{
		{
			desc:    "on-demand",
			profile: mpd.ProfileOnDemand,
			expect:  "urn:mpeg:dash:profile:isoff-on-demand:2011",
		},
		{
			desc:    "live",
			profile: mpd.ProfileLive,
			expect:  "urn:mpeg:dash:profile:isoff-live:2011",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			b := mpd.New(discardLogger(), mpd.Options{
				Profile: tc.profile,
				Type:    mpd.TypeStatic,
				Params:  mpd.Params{MinBufferTime: 2},
			}, nil)

			out, err := b.String()
			require.NoError(t, err)

			root := parseMpd(t, out)

			assert.Equal(t, "urn:mpeg:dash:schema:mpd:2011", root.SelectAttrValue("xmlns", ""))
			assert.Equal(t, "http://www.w3.org/2001/XMLSchema-instance", root.SelectAttrValue("xmlns:xsi", ""))
			assert.Equal(t, "http://www.w3.org/1999/xlink", root.SelectAttrValue("xmlns:xlink", ""))
			assert.Equal(t, "urn:mpeg:dash:schema:mpd:2011 DASH-MPD.xsd", root.SelectAttrValue("xsi:schemaLocation", ""))
			assert.Equal(t, "urn:mpeg:cenc:2013", root.SelectAttrValue("xmlns:cenc", ""))
			assert.Equal(t, tc.expect, root.SelectAttrValue("profiles", ""))
		})
	}
}

func TestStaticDuration(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileOnDemand,
		Type:    mpd.TypeStatic,
		Params:  mpd.Params{MinBufferTime: 2},
	}, nil)

	period := b.AddPeriod()
	set := period.AddAdaptationSet("audio")

	for _, d := range []float64{2.5, 7.0, 3.1} {
		set.AddRepresentation(audioInfo(d))
	}

	out, err := b.String()
	require.NoError(t, err)

	root := parseMpd(t, out)
	assert.Equal(t, "static", root.SelectAttrValue("type", ""))
	assert.Equal(t, "PT7S", root.SelectAttrValue("mediaPresentationDuration", ""))

	// scratch hints must not survive into the output
	assert.NotContains(t, out, `duration="`)

	// state is unchanged, repeated serialization is byte-identical
	again, err := b.String()
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestStaticDurationNoPeriod(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileOnDemand,
		Type:    mpd.TypeStatic,
		Params:  mpd.Params{MinBufferTime: 2},
	}, nil)

	out, err := b.String()
	require.NoError(t, err)

	root := parseMpd(t, out)
	assert.Equal(t, "PT0S", root.SelectAttrValue("mediaPresentationDuration", ""))
}

func TestDynamicAvailabilityStartTime(t *testing.T) {
	clock := &fixedClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}

	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileLive,
		Type:    mpd.TypeDynamic,
		Params: mpd.Params{
			MinBufferTime:       2,
			MinimumUpdatePeriod: 5,
		},
	}, clock)

	period := b.AddPeriod()
	set := period.AddAdaptationSet("audio")
	repr := set.AddRepresentation(audioInfo(0))
	repr.AddNewSegment(5.4, 2.0)

	out, err := b.String()
	require.NoError(t, err)

	root := parseMpd(t, out)
	assert.Equal(t, "dynamic", root.SelectAttrValue("type", ""))
	assert.Equal(t, "2024-01-15T10:00:00Z", root.SelectAttrValue("publishTime", ""))

	// ceil(5.4) = 6 seconds before now
	assert.Equal(t, "2024-01-15T09:59:54Z", root.SelectAttrValue("availabilityStartTime", ""))

	// availabilityStartTime must not drift when the clock advances
	clock.now = clock.now.Add(30 * time.Second)

	out, err = b.String()
	require.NoError(t, err)

	root = parseMpd(t, out)
	assert.Equal(t, "2024-01-15T10:00:30Z", root.SelectAttrValue("publishTime", ""))
	assert.Equal(t, "2024-01-15T09:59:54Z", root.SelectAttrValue("availabilityStartTime", ""))
}

func TestDynamicNoTimestamps(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileLive,
		Type:    mpd.TypeDynamic,
		Params: mpd.Params{
			MinBufferTime:       2,
			MinimumUpdatePeriod: 5,
		},
	}, nil)

	period := b.AddPeriod()
	period.AddAdaptationSet("audio").AddRepresentation(audioInfo(0))

	out, err := b.String()
	require.NoError(t, err)

	root := parseMpd(t, out)
	assert.Nil(t, root.SelectAttr("availabilityStartTime"))
}

func TestNumericParamGate(t *testing.T) {
	testCases := []struct {
		desc   string
		params mpd.Params
		attr   string
		expect string
		absent bool
	}{
		{
			desc:   "positive minBufferTime",
			params: mpd.Params{MinBufferTime: 2},
			attr:   "minBufferTime",
			expect: "PT2S",
		},
		{
			desc:   "zero minBufferTime",
			params: mpd.Params{},
			attr:   "minBufferTime",
			absent: true,
		},
		{
			desc:   "positive minimumUpdatePeriod",
			params: mpd.Params{MinimumUpdatePeriod: 5},
			attr:   "minimumUpdatePeriod",
			expect: "PT5S",
		},
		{
			desc:   "zero minimumUpdatePeriod",
			params: mpd.Params{},
			attr:   "minimumUpdatePeriod",
			absent: true,
		},
		{
			desc:   "smallest positive timeShiftBufferDepth",
			params: mpd.Params{TimeShiftBufferDepth: 1e-9},
			attr:   "timeShiftBufferDepth",
			expect: "PT0.000000001S",
		},
		{
			desc:   "zero timeShiftBufferDepth",
			params: mpd.Params{},
			attr:   "timeShiftBufferDepth",
			absent: true,
		},
		{
			desc:   "negative suggestedPresentationDelay",
			params: mpd.Params{SuggestedPresentationDelay: -1},
			attr:   "suggestedPresentationDelay",
			absent: true,
		},
		{
			desc:   "positive suggestedPresentationDelay",
			params: mpd.Params{SuggestedPresentationDelay: 10},
			attr:   "suggestedPresentationDelay",
			expect: "PT10S",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			b := mpd.New(discardLogger(), mpd.Options{
				Profile: mpd.ProfileLive,
				Type:    mpd.TypeDynamic,
				Params:  tc.params,
			}, nil)

			out, err := b.String()
			require.NoError(t, err)

			root := parseMpd(t, out)

			if tc.absent {
				assert.Nil(t, root.SelectAttr(tc.attr))
			} else {
				assert.Equal(t, tc.expect, root.SelectAttrValue(tc.attr, ""))
			}
		})
	}
}

func TestBaseURLOrder(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileOnDemand,
		Type:    mpd.TypeStatic,
		Params:  mpd.Params{MinBufferTime: 2},
	}, nil)

	b.AddBaseURL("http://cdn-a.example.com/")
	b.AddBaseURL("http://cdn-b.example.com/")

	out, err := b.String()
	require.NoError(t, err)

	root := parseMpd(t, out)

	urls := root.SelectElements("BaseURL")
	require.Len(t, urls, 2)
	assert.Equal(t, "http://cdn-a.example.com/", urls[0].Text())
	assert.Equal(t, "http://cdn-b.example.com/", urls[1].Text())
}

func TestBaseURLInvalidContent(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileOnDemand,
		Type:    mpd.TypeStatic,
		Params:  mpd.Params{MinBufferTime: 2},
	}, nil)

	b.AddBaseURL("http://cdn.example.com/\x00broken")

	out, err := b.String()
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestRepresentationWithoutMimeTypeAborts(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileOnDemand,
		Type:    mpd.TypeStatic,
		Params:  mpd.Params{MinBufferTime: 2},
	}, nil)

	b.AddPeriod().AddAdaptationSet("audio").AddRepresentation(models.MediaInfo{})

	out, err := b.String()
	require.ErrorIs(t, err, mpd.ErrNoMimeType)
	assert.Empty(t, out)
}

func TestCountersSharedAcrossPeriods(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileLive,
		Type:    mpd.TypeDynamic,
		Params: mpd.Params{
			MinBufferTime:       2,
			MinimumUpdatePeriod: 5,
		},
	}, nil)

	first := b.AddPeriod()
	firstAudio := first.AddAdaptationSet("audio")
	firstAudio.AddRepresentation(audioInfo(0))
	firstAudio.AddRepresentation(audioInfo(0))
	first.AddAdaptationSet("video").AddRepresentation(models.MediaInfo{
		MimeType: "video/mp4",
		Codecs:   "avc1.42E01E",
	})

	second := b.AddPeriod()
	second.AddAdaptationSet("audio").AddRepresentation(audioInfo(0))

	out, err := b.String()
	require.NoError(t, err)

	root := parseMpd(t, out)

	var setIDs, reprIDs []string
	for _, period := range root.SelectElements("Period") {
		for _, set := range period.SelectElements("AdaptationSet") {
			setIDs = append(setIDs, set.SelectAttrValue("id", ""))
			for _, repr := range set.SelectElements("Representation") {
				reprIDs = append(reprIDs, repr.SelectAttrValue("id", ""))
			}
		}
	}

	assert.Equal(t, []string{"0", "1", "2"}, setIDs)
	assert.Equal(t, []string{"0", "1", "2", "3"}, reprIDs)
}

func TestVersionComment(t *testing.T) {
	defer version.SetVersion("")

	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileOnDemand,
		Type:    mpd.TypeStatic,
		Params:  mpd.Params{MinBufferTime: 2},
	}, nil)

	version.SetVersion("")
	out, err := b.String()
	require.NoError(t, err)
	assert.NotContains(t, out, "Generated with")

	version.SetVersion("0.3.1")
	out, err = b.String()
	require.NoError(t, err)
	assert.Contains(t, out, "<!--Generated with https://github.com/dmkhr/mpdgen version 0.3.1-->")
}

func TestRepresentationRendering(t *testing.T) {
	b := mpd.New(discardLogger(), mpd.Options{
		Profile: mpd.ProfileLive,
		Type:    mpd.TypeDynamic,
		Params: mpd.Params{
			MinBufferTime:       2,
			MinimumUpdatePeriod: 5,
		},
	}, nil)

	set := b.AddPeriod().AddAdaptationSet("audio")
	set.AddRepresentation(models.MediaInfo{
		InitSegmentName: ptr.Ptr("audio/init.m4s"),
		SegmentTemplate: ptr.Ptr(`audio/$Number$.m4s`),
		MimeType:        "audio/mp4",
		Codecs:          "mp4a.40.2",
		Bandwidth:       96000,
	})
	set.AddRepresentation(models.MediaInfo{
		MediaFileName: ptr.Ptr("audio/full.mp4"),
		MimeType:      "audio/mp4",
	})

	out, err := b.String()
	require.NoError(t, err)

	root := parseMpd(t, out)

	reprs := root.FindElements("./Period/AdaptationSet/Representation")
	require.Len(t, reprs, 2)

	tmpl := reprs[0].SelectElement("SegmentTemplate")
	require.NotNil(t, tmpl)
	assert.Equal(t, "audio/init.m4s", tmpl.SelectAttrValue("initialization", ""))
	assert.Equal(t, `audio/$Number$.m4s`, tmpl.SelectAttrValue("media", ""))
	assert.Equal(t, "96000", reprs[0].SelectAttrValue("bandwidth", ""))
	assert.Equal(t, "mp4a.40.2", reprs[0].SelectAttrValue("codecs", ""))

	base := reprs[1].SelectElement("BaseURL")
	require.NotNil(t, base)
	assert.Equal(t, "audio/full.mp4", base.Text())
}
