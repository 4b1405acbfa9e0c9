// Package registry holds the catalog of known projects and their pluggable test suites.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/xicodomingues/francinette/types"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the on-disk shape of the project catalog
type Catalog struct {
	Projects []types.ProjectDescriptor `yaml:"projects"`
}

// Registry is the immutable set of known projects, built once at startup
type Registry struct {
	config   Config
	projects []types.ProjectDescriptor
}

// Config contains registry configuration
type Config struct {
	Log         log.Logger
	CatalogFile string // Optional catalog replacing the embedded one
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	data := defaultCatalog
	if cfg.CatalogFile != "" {
		var err error
		data, err = os.ReadFile(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}

	projects, err := parseCatalog(data)
	if err != nil {
		return nil, err
	}

	cfg.Log.Debug("Registry loaded", "len(projects)", len(projects), "catalog", cfg.CatalogFile)
	return &Registry{config: cfg, projects: projects}, nil
}

func parseCatalog(data []byte) ([]types.ProjectDescriptor, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(catalog.Projects) == 0 {
		return nil, fmt.Errorf("catalog defines no projects")
	}
	for i := range catalog.Projects {
		if err := validateProject(&catalog.Projects[i]); err != nil {
			return nil, err
		}
	}
	return catalog.Projects, nil
}

func validateProject(p *types.ProjectDescriptor) error {
	if p.Name == "" {
		return fmt.Errorf("project without a name")
	}
	if p.Library == "" {
		return fmt.Errorf("project %s: library is required", p.Name)
	}
	if len(p.Functions) == 0 {
		return fmt.Errorf("project %s: no functions declared", p.Name)
	}
	if p.Make.All == "" {
		p.Make.All = "all"
	}
	if p.Make.Clean == "" {
		p.Make.Clean = "fclean"
	}
	if p.Make.Bonus == "" {
		p.Make.Bonus = "bonus"
	}

	seen := make(map[string]bool)
	for i := range p.Testers {
		t := &p.Testers[i]
		if t.Name == "" || t.Folder == "" {
			return fmt.Errorf("project %s: tester %d needs a name and a folder", p.Name, i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("project %s: duplicate tester %s", p.Name, t.Name)
		}
		seen[t.Name] = true
		switch t.Format {
		case "":
			t.Format = types.FormatStatusLine
		case types.FormatStatusLine, types.FormatVerdicts:
		default:
			return fmt.Errorf("project %s: tester %s has unknown format %q", p.Name, t.Name, t.Format)
		}
	}
	return nil
}

// Projects returns all known projects
func (r *Registry) Projects() []types.ProjectDescriptor {
	return slices.Clone(r.projects)
}

// Project returns the project with the given name
func (r *Registry) Project(name string) (types.ProjectDescriptor, bool) {
	for _, p := range r.projects {
		if p.Name == name {
			return p, true
		}
	}
	return types.ProjectDescriptor{}, false
}

// DetectProject returns the first project whose markers are all present in dir
func (r *Registry) DetectProject(dir string) (types.ProjectDescriptor, error) {
	for _, p := range r.projects {
		if p.Applies(dir) {
			r.config.Log.Info("Detected project", "project", p.Name, "dir", dir)
			return p, nil
		}
	}
	return types.ProjectDescriptor{}, fmt.Errorf("%w: %s", types.ErrProjectNotFound, dir)
}

// Testers returns the suites of a project that apply to the source tree at dir
func (r *Registry) Testers(project types.ProjectDescriptor, dir string) []types.TesterDescriptor {
	var testers []types.TesterDescriptor
	for _, t := range project.Testers {
		if t.Applies(dir) {
			testers = append(testers, t)
		} else {
			r.config.Log.Debug("Tester not applicable", "tester", t.Name, "requires", t.Requires)
		}
	}
	return testers
}
