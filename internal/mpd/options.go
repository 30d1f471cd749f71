package mpd

import "fmt"

// Profile is the DASH profile declared by the manifest.
type Profile int

const (
	ProfileOnDemand Profile = iota
	ProfileLive
)

// ParseProfile parses a config profile name.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "on-demand":
		return ProfileOnDemand, nil
	case "live":
		return ProfileLive, nil
	}

	return 0, fmt.Errorf("unknown dash profile %q", s)
}

// Type tells whether the manifest describes a complete
// presentation or an ongoing one.
type Type int

const (
	TypeStatic Type = iota
	TypeDynamic
)

// ParseType parses a config manifest type name.
func ParseType(s string) (Type, error) {
	switch s {
	case "static":
		return TypeStatic, nil
	case "dynamic":
		return TypeDynamic, nil
	}

	return 0, fmt.Errorf("unknown mpd type %q", s)
}

// Params are numeric manifest parameters in seconds. A value that
// is not strictly positive means "not specified" and produces no
// attribute.
type Params struct {
	MinBufferTime              float64
	MinimumUpdatePeriod        float64
	TimeShiftBufferDepth       float64
	SuggestedPresentationDelay float64
}

// Options is immutable builder configuration. Profile and Type
// together determine which attributes are mandatory.
type Options struct {
	Profile Profile
	Type    Type
	Params  Params
}
