package types

import (
	"os"
	"path/filepath"
)

// OutputFormat names the grammar a suite's test binaries use for their final line
type OutputFormat string

const (
	// FormatStatusLine is "ft_<name> : <status>"
	FormatStatusLine OutputFormat = "status-line"
	// FormatVerdicts is "ft_<name>: 1.OK 2.KO ..."
	FormatVerdicts OutputFormat = "verdicts"
)

// TesterDescriptor describes one pluggable test suite
type TesterDescriptor struct {
	Name         string       `yaml:"name"`
	Folder       string       `yaml:"folder"`
	GitURL       string       `yaml:"git_url,omitempty"`
	Format       OutputFormat `yaml:"format"`
	Support      []string     `yaml:"support,omitempty"`       // Shared sources compiled into every test binary
	BonusSupport []string     `yaml:"bonus_support,omitempty"` // Extra shared sources when bonus is enabled
	Shim         string       `yaml:"shim,omitempty"`          // Memory-interception shim source
	Link         []string     `yaml:"link,omitempty"`          // Trailing linker flags
	Requires     []string     `yaml:"requires,omitempty"`      // Files the source tree must contain
}

// Applies reports whether the suite can run against the source tree at dir
func (t TesterDescriptor) Applies(dir string) bool {
	return allExist(dir, t.Requires)
}

// MakeTargets names the make targets used to build a project
type MakeTargets struct {
	Clean string `yaml:"clean"`
	All   string `yaml:"all"`
	Bonus string `yaml:"bonus"`
}

// ProjectDescriptor describes an exercise and the suites able to validate it
type ProjectDescriptor struct {
	Name      string             `yaml:"name"`
	Library   string             `yaml:"library"` // Archive produced by the candidate's Makefile, e.g. libft.a
	Markers   []string           `yaml:"markers"` // Files identifying the project in a source tree
	Make      MakeTargets        `yaml:"make"`
	Functions []string           `yaml:"functions"`
	Bonus     []string           `yaml:"bonus,omitempty"`
	Testers   []TesterDescriptor `yaml:"testers"`
}

// Applies reports whether the source tree at dir looks like this project
func (p ProjectDescriptor) Applies(dir string) bool {
	return len(p.Markers) > 0 && allExist(dir, p.Markers)
}

// Declared returns the functions the exercise defines, including bonus ones when requested
func (p ProjectDescriptor) Declared(includeBonus bool) []string {
	declared := make([]string, 0, len(p.Functions)+len(p.Bonus))
	declared = append(declared, p.Functions...)
	if includeBonus {
		declared = append(declared, p.Bonus...)
	}
	return declared
}

func allExist(dir string, files []string) bool {
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return false
		}
	}
	return true
}
