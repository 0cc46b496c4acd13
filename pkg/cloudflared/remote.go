// pkg/cloudflared/remote.go

package cloudflared

import (
	"encoding/json"
	"strings"

	"github.com/CodeMonkeyCybersecurity/conduit/pkg/conduit_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// RemoteResource is a tunnel identity tracked by Cloudflare. Lookups are by
// name so re-runs never create duplicates.
type RemoteResource struct {
	ID   uuid.UUID
	Name string
}

type tunnelListEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParseTunnelList parses `cloudflared tunnel list --output json`.
func ParseTunnelList(data []byte) ([]RemoteResource, error) {
	var entries []tunnelListEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, cerr.Wrap(err, "parse tunnel list output")
	}

	resources := make([]RemoteResource, 0, len(entries))
	for _, e := range entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return nil, cerr.Wrapf(err, "tunnel %q has malformed id %q", e.Name, e.ID)
		}
		resources = append(resources, RemoteResource{ID: id, Name: e.Name})
	}
	return resources, nil
}

// FindByName looks a tunnel up by exact name. A missing tunnel is reported
// as ErrRemoteNotFound, never as an empty-string sentinel.
func FindByName(resources []RemoteResource, name string) (RemoteResource, error) {
	for _, r := range resources {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return RemoteResource{}, conduit_err.ErrRemoteNotFound
}
