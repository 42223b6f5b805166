package study

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/solarscope-cli/internal/analysis"
	"github.com/KaramelBytes/solarscope-cli/internal/dataset"
	"github.com/KaramelBytes/solarscope-cli/internal/utils"
)

const (
	studyFileName = utils.StudyFile
	artifactsDir  = "artifacts"
)

// Study groups the measurement sites of one analysis and the charts and
// reports produced from them. It is persisted as study.json.
type Study struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Sites       map[string]*Site     `json:"sites"`
	Artifacts   map[string]*Artifact `json:"artifacts"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`

	// Not serialized: on-disk location of the study.json
	rootDir string `json:"-"`
}

// ErrSiteNotFound is returned when a site name is not part of the study.
var ErrSiteNotFound = errors.New("site not found")

// NewStudy constructs an in-memory study. Call Save() to persist.
func NewStudy(name, description, rootDir string) *Study {
	return &Study{
		Name:        name,
		Description: description,
		Sites:       make(map[string]*Site),
		Artifacts:   make(map[string]*Artifact),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// LoadStudy loads a study.json from the provided directory.
func LoadStudy(dir string) (*Study, error) {
	path := filepath.Join(dir, studyFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("study not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read study: %w", err)
	}
	var s Study
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse study: %w", err)
	}
	if s.Sites == nil {
		s.Sites = make(map[string]*Site)
	}
	if s.Artifacts == nil {
		s.Artifacts = make(map[string]*Artifact)
	}
	s.rootDir = dir
	return &s, nil
}

// RootDir returns the on-disk study directory path.
func (s *Study) RootDir() string { return s.rootDir }

// ArtifactsDir is where generated charts and reports are written.
func (s *Study) ArtifactsDir() string { return filepath.Join(s.rootDir, artifactsDir) }

// Save writes study.json using atomic write.
func (s *Study) Save() error {
	if s.rootDir == "" {
		return errors.New("study root directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, studyFileName), data)
}

// AddSite loads the file once to validate it and registers it under name,
// replacing a site of the same name.
func (s *Study) AddSite(name, path, description string, opt dataset.Options) (*Site, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("site name is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	t, err := dataset.Load(abs, opt)
	if err != nil {
		return nil, fmt.Errorf("load site data: %w", err)
	}
	site := &Site{
		ID:          uuid.NewString(),
		Name:        name,
		Path:        abs,
		Description: description,
		Rows:        t.Len(),
		Columns:     t.Names(),
		AddedAt:     time.Now(),
	}
	if s.Sites == nil {
		s.Sites = make(map[string]*Site)
	}
	s.Sites[name] = site
	s.UpdatedAt = time.Now()
	return site, nil
}

// RemoveSite drops a site by name.
func (s *Study) RemoveSite(name string) error {
	if _, ok := s.Sites[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrSiteNotFound)
	}
	delete(s.Sites, name)
	s.UpdatedAt = time.Now()
	return nil
}

// SiteNames returns site names in sorted order.
func (s *Study) SiteNames() []string {
	names := make([]string, 0, len(s.Sites))
	for n := range s.Sites {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadSites reads every site through the cache, in SiteNames order.
func (s *Study) LoadSites(c *dataset.Cache) ([]analysis.Site, error) {
	var out []analysis.Site
	for _, name := range s.SiteNames() {
		t, err := c.Get(s.Sites[name].Path)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", name, err)
		}
		out = append(out, analysis.Site{Name: name, Table: t})
	}
	return out, nil
}

// AddArtifact records a generated file. An artifact with the same path is
// replaced, so re-running a report does not accumulate entries.
func (s *Study) AddArtifact(kind, path, title, site string) *Artifact {
	if s.Artifacts == nil {
		s.Artifacts = make(map[string]*Artifact)
	}
	for id, a := range s.Artifacts {
		if a.Path == path {
			delete(s.Artifacts, id)
		}
	}
	a := &Artifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Path:      path,
		Title:     title,
		Site:      site,
		CreatedAt: time.Now(),
	}
	s.Artifacts[a.ID] = a
	s.UpdatedAt = time.Now()
	return a
}

// ArtifactList returns artifacts ordered by site then path.
func (s *Study) ArtifactList() []*Artifact {
	out := make([]*Artifact, 0, len(s.Artifacts))
	for _, a := range s.Artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Site != out[j].Site {
			return out[i].Site < out[j].Site
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Overview renders the study as sectioned text: description, sites and
// recorded artifacts.
func (s *Study) Overview() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[STUDY] %s\n", s.Name)
	if d := strings.TrimSpace(s.Description); d != "" {
		fmt.Fprintf(&b, "%s\n", d)
	}
	b.WriteString("\n[SITES]\n")
	if len(s.Sites) == 0 {
		b.WriteString("(none)\n")
	} else {
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for _, name := range s.SiteNames() {
			site := s.Sites[name]
			fmt.Fprintf(tw, "%s\t%d rows\t%s\n", site.Name, site.Rows, site.Path)
		}
		_ = tw.Flush()
	}
	if len(s.Artifacts) > 0 {
		b.WriteString("\n[ARTIFACTS]\n")
		for _, a := range s.ArtifactList() {
			label := a.Kind
			if a.Site != "" {
				label = a.Site + "/" + a.Kind
			}
			fmt.Fprintf(&b, "- %s: %s\n", label, a.Path)
		}
	}
	return b.String()
}
