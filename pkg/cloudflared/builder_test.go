// pkg/cloudflared/builder_test.go

package cloudflared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testID = uuid.MustParse("4f7c1e9a-2b3d-4c5e-8f90-1a2b3c4d5e6f")

func homeServerParams() Params {
	return Params{Name: "home-server", Domain: "www.example.com"}
}

func TestBuildConfigShape(t *testing.T) {
	t.Parallel()

	data, err := BuildConfig(homeServerParams(), testID)
	require.NoError(t, err)

	var cfg struct {
		Tunnel          string `yaml:"tunnel"`
		CredentialsFile string `yaml:"credentials-file"`
		Ingress         []struct {
			Hostname string `yaml:"hostname"`
			Service  string `yaml:"service"`
		} `yaml:"ingress"`
	}
	require.NoError(t, yaml.Unmarshal(data, &cfg))

	assert.Equal(t, testID.String(), cfg.Tunnel)
	assert.Equal(t, "/root/.cloudflared/"+testID.String()+".json", cfg.CredentialsFile)

	// Exactly one hostname rule plus the catch-all, in that order.
	require.Len(t, cfg.Ingress, 2)
	assert.Equal(t, "www.example.com", cfg.Ingress[0].Hostname)
	assert.Equal(t, DefaultService, cfg.Ingress[0].Service)
	assert.Empty(t, cfg.Ingress[1].Hostname)
	assert.Equal(t, "http_status:404", cfg.Ingress[1].Service)
}

func TestBuildConfigIsDeterministic(t *testing.T) {
	t.Parallel()

	a, err := BuildConfig(homeServerParams(), testID)
	require.NoError(t, err)
	b, err := BuildConfig(homeServerParams(), testID)
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical input must produce byte-identical output")
}

func TestBuildConfigCustomService(t *testing.T) {
	t.Parallel()

	p := homeServerParams()
	p.Service = "http://localhost:8080"

	data, err := BuildConfig(p, testID)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://localhost:8080")
}

func TestBuildConfigRejectsEmptyDomain(t *testing.T) {
	t.Parallel()

	p := Params{Name: "home-server", Domain: ""}
	_, err := BuildConfig(p, testID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain")
}

func TestBuildServiceUnitEmbedsTunnelNameVerbatim(t *testing.T) {
	t.Parallel()

	data, err := BuildServiceUnit(homeServerParams())
	require.NoError(t, err)

	unit := string(data)
	assert.Contains(t, unit,
		"ExecStart=/usr/bin/cloudflared --config /etc/cloudflared/config.yml tunnel run home-server")
	assert.Contains(t, unit, "Restart=on-failure")
	assert.Contains(t, unit, "RestartSec=5")
	assert.Contains(t, unit, "[Unit]")
	assert.Contains(t, unit, "[Service]")
	assert.Contains(t, unit, "[Install]")
}

func TestBuildServiceUnitValidatesParams(t *testing.T) {
	t.Parallel()

	_, err := BuildServiceUnit(Params{Name: "", Domain: "www.example.com"})
	assert.Error(t, err)
}

func TestBuildAptSource(t *testing.T) {
	t.Parallel()

	entry := string(BuildAptSource("noble"))
	assert.Equal(t,
		"deb [signed-by=/usr/share/keyrings/cloudflare-main.gpg] https://pkg.cloudflare.com/cloudflared noble main\n",
		entry)
}

func TestBuildLogrotatePolicy(t *testing.T) {
	t.Parallel()

	policy := string(BuildLogrotatePolicy())
	assert.Contains(t, policy, LogPath)
	assert.Contains(t, policy, "weekly")
	assert.Contains(t, policy, "rotate 4")
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{name: "valid", params: Params{Name: "home-server", Domain: "www.example.com"}, wantErr: false},
		{name: "empty name", params: Params{Domain: "www.example.com"}, wantErr: true},
		{name: "empty domain", params: Params{Name: "home-server"}, wantErr: true},
		{name: "bare word domain", params: Params{Name: "home-server", Domain: "localhost"}, wantErr: true},
		{name: "name with spaces", params: Params{Name: "home server", Domain: "www.example.com"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
