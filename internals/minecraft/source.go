package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultVersionManifestURL is mojang's launcher meta version index
const DefaultVersionManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"

// LocalSource reads descriptors from a versions directory laid out as
// versions/<id>/<id>.json
type LocalSource struct {
	Dir string
}

func (s *LocalSource) Descriptor(ctx context.Context, id string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(s.Dir, id, id+".json"))
	switch {
	case err == nil:
		manifest := Manifest{}
		if err := json.Unmarshal(raw, &manifest); err != nil {
			return nil, err
		}
		return &manifest, nil
	case os.IsNotExist(err):
		return nil, ErrDescriptorNotFound
	default:
		return nil, err
	}
}

// Store writes a descriptor into the local layout
func (s *LocalSource) Store(manifest *Manifest) error {
	dir := filepath.Join(s.Dir, manifest.ID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	blob, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, manifest.ID+".json"), blob, 0666)
}

// VersionInfo is one entry of the remote version index
type VersionInfo struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
}

type versionIndex struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionInfo `json:"versions"`
}

// RemoteSource fetches descriptors through mojang's version index
type RemoteSource struct {
	HTTP        *retryablehttp.Client
	ManifestURL string

	index *versionIndex
}

// NewRemoteSource returns a remote source with retrying transport
func NewRemoteSource() *RemoteSource {
	client := retryablehttp.NewClient()
	client.Logger = nil
	return &RemoteSource{
		HTTP:        client,
		ManifestURL: DefaultVersionManifestURL,
	}
}

func (s *RemoteSource) fetchJSON(ctx context.Context, url string, v interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	res, err := s.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", res.StatusCode, url)
	}
	return json.NewDecoder(res.Body).Decode(v)
}

// Versions returns the remote version index entries
func (s *RemoteSource) Versions(ctx context.Context) ([]VersionInfo, error) {
	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return s.index.Versions, nil
}

// LatestRelease returns the id of the newest release version. The index
// advertises one, but we double check against semver ordering since
// forge/fabric installers occasionally write bogus ids into local dirs.
func (s *RemoteSource) LatestRelease(ctx context.Context) (string, error) {
	if err := s.ensureIndex(ctx); err != nil {
		return "", err
	}

	best := s.index.Latest.Release
	bestVersion, err := semver.NewVersion(best)
	if err != nil {
		return best, nil
	}
	for _, v := range s.index.Versions {
		if v.Type != "release" {
			continue
		}
		parsed, err := semver.NewVersion(v.ID)
		if err != nil {
			continue
		}
		if parsed.GreaterThan(bestVersion) {
			best = v.ID
			bestVersion = parsed
		}
	}
	return best, nil
}

func (s *RemoteSource) ensureIndex(ctx context.Context) error {
	if s.index != nil {
		return nil
	}
	index := versionIndex{}
	if err := s.fetchJSON(ctx, s.ManifestURL, &index); err != nil {
		return err
	}
	s.index = &index
	return nil
}

func (s *RemoteSource) Descriptor(ctx context.Context, id string) (*Manifest, error) {
	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}

	url := ""
	for _, v := range s.index.Versions {
		if v.ID == id {
			url = v.URL
			break
		}
	}
	if url == "" {
		return nil, ErrDescriptorNotFound
	}

	manifest := Manifest{}
	if err := s.fetchJSON(ctx, url, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// CachedSource reads local descriptors first and falls back to the
// remote index, storing what it fetched. Loader installers (fabric,
// forge) drop their descriptors into the same local layout, so their
// inheritance parents resolve through the remote fallback.
type CachedSource struct {
	Local  *LocalSource
	Remote *RemoteSource
}

func (s *CachedSource) Descriptor(ctx context.Context, id string) (*Manifest, error) {
	manifest, err := s.Local.Descriptor(ctx, id)
	if err == nil {
		return manifest, nil
	}
	if err != ErrDescriptorNotFound {
		return nil, err
	}

	manifest, err = s.Remote.Descriptor(ctx, id)
	if err != nil {
		return nil, err
	}
	// cache for the next launch, a failed write is not fatal
	_ = s.Local.Store(manifest)
	return manifest, nil
}
