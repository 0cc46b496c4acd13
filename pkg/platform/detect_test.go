// pkg/platform/detect_test.go

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOSReleaseContent(t *testing.T) {
	t.Parallel()

	content := `PRETTY_NAME="Ubuntu 24.04.2 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
VERSION_CODENAME=noble
ID=ubuntu
ID_LIKE=debian
`
	info := parseOSReleaseContent(content)

	assert.Equal(t, "Ubuntu", info.Name)
	assert.Equal(t, "24.04", info.VersionID)
	assert.Equal(t, "noble", info.VersionCodename)
	assert.Equal(t, "ubuntu", info.ID)
	assert.Equal(t, "debian", info.IDLike)
	assert.Equal(t, "Ubuntu 24.04.2 LTS", info.PrettyName)
}

func TestIsDebianFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info OSReleaseInfo
		want bool
	}{
		{name: "debian", info: OSReleaseInfo{ID: "debian"}, want: true},
		{name: "ubuntu", info: OSReleaseInfo{ID: "ubuntu"}, want: true},
		{name: "mint via id_like", info: OSReleaseInfo{ID: "linuxmint", IDLike: "ubuntu debian"}, want: true},
		{name: "fedora", info: OSReleaseInfo{ID: "fedora"}, want: false},
		{name: "rhel id_like", info: OSReleaseInfo{ID: "rocky", IDLike: "rhel centos fedora"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.info.IsDebianFamily())
		})
	}
}
