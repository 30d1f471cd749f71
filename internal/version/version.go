package version

// version is set at build time:
//
//	go build -ldflags "-X github.com/dmkhr/mpdgen/internal/version.version=$(git describe --tags)"
var version = ""

const projectURL = "https://github.com/dmkhr/mpdgen"

// Version returns the build version. Empty when the binary
// was built without ldflags.
func Version() string {
	return version
}

// ProjectURL returns the project page used in generated
// manifest provenance comments.
func ProjectURL() string {
	return projectURL
}

// SetVersion overrides the build version.
func SetVersion(v string) {
	version = v
}
