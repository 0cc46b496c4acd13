// pkg/platform/detect.go

package platform

import (
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	cerr "github.com/cockroachdb/errors"
)

// OSReleaseInfo represents parsed /etc/os-release information
type OSReleaseInfo struct {
	Name            string
	VersionID       string
	VersionCodename string
	ID              string
	IDLike          string
	PrettyName      string
}

// osReleasePath is swappable for tests.
var osReleasePath = "/etc/os-release"

// ParseOSRelease reads and parses /etc/os-release.
func ParseOSRelease() (*OSReleaseInfo, error) {
	data, err := os.ReadFile(osReleasePath)
	if err != nil {
		return nil, cerr.Wrap(err, "read os-release")
	}
	return parseOSReleaseContent(string(data)), nil
}

func parseOSReleaseContent(content string) *OSReleaseInfo {
	info := &OSReleaseInfo{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"`)

		switch key {
		case "NAME":
			info.Name = value
		case "VERSION_ID":
			info.VersionID = value
		case "VERSION_CODENAME":
			info.VersionCodename = value
		case "ID":
			info.ID = value
		case "ID_LIKE":
			info.IDLike = value
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}
	return info
}

// IsDebianFamily reports whether the host is Debian or a derivative.
func (i *OSReleaseInfo) IsDebianFamily() bool {
	if i.ID == "debian" || i.ID == "ubuntu" {
		return true
	}
	return strings.Contains(i.IDLike, "debian")
}

// RequireDebianFamily aborts non-Debian hosts before any mutation.
func RequireDebianFamily() (*OSReleaseInfo, error) {
	info, err := ParseOSRelease()
	if err != nil {
		return nil, err
	}
	if !info.IsDebianFamily() {
		return nil, conduit_err.NewValidationError(
			"unsupported distribution: "+info.PrettyName,
			"conduit supports Debian and Ubuntu hosts only")
	}
	return info, nil
}
