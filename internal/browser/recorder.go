package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ManifestName is the index file written next to recorded pages.
const ManifestName = "manifest.yaml"

type ReplayEntry struct {
	URL  string `yaml:"url"`
	File string `yaml:"file"`
}

type ReplayManifest struct {
	Pages []ReplayEntry `yaml:"pages"`
}

// Recorder dumps every listing page it is handed so a run can be replayed
// offline with LoadReplay.
type Recorder struct {
	dir      string
	manifest ReplayManifest
}

func NewRecorder(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dump dir: %w", err)
	}
	return &Recorder{dir: dir}, nil
}

func (r *Recorder) Record(s Session) error {
	content, err := s.Content()
	if err != nil {
		return fmt.Errorf("read page content: %w", err)
	}

	name := fmt.Sprintf("page-%03d.html", len(r.manifest.Pages)+1)
	if err := os.WriteFile(filepath.Join(r.dir, name), []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	r.manifest.Pages = append(r.manifest.Pages, ReplayEntry{URL: s.URL(), File: name})

	data, err := yaml.Marshal(&r.manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	log.Debug().Str("url", s.URL()).Str("file", name).Msg("💾 Page recorded")
	return nil
}

// LoadReplay builds a StaticSession from a recorded directory and returns
// it with the URL of the first recorded page.
func LoadReplay(dir string) (*StaticSession, string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, "", fmt.Errorf("read replay manifest: %w", err)
	}
	var manifest ReplayManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, "", fmt.Errorf("parse replay manifest: %w", err)
	}
	if len(manifest.Pages) == 0 {
		return nil, "", fmt.Errorf("replay manifest in %s lists no pages", dir)
	}

	pages := make(map[string]string, len(manifest.Pages))
	for _, p := range manifest.Pages {
		body, err := os.ReadFile(filepath.Join(dir, p.File))
		if err != nil {
			return nil, "", fmt.Errorf("read recorded page: %w", err)
		}
		if _, seen := pages[p.URL]; !seen {
			pages[p.URL] = string(body)
		}
	}
	return NewStaticSession(pages), manifest.Pages[0].URL, nil
}
