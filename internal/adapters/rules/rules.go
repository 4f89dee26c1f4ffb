// Package rules loads the optional user tuning file that layers category
// overrides, extra domains, and gap settings on top of the embedded rule pack
package rules

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"rabbithole/internal/core/insights"
	"rabbithole/internal/core/rulepack"
	perr "rabbithole/internal/platform/errors"
	"rabbithole/internal/platform/validate"
)

// File is the YAML tuning file. Every section is optional; zero values mean
// "use the built-in default"
type File struct {
	// CategoryOverrides pins a domain to a category, beating every pack rule
	CategoryOverrides map[string]string `yaml:"category_overrides" json:"category_overrides"`

	// ExtraDomains adds domains to a category's pack table before compiling
	ExtraDomains map[string][]string `yaml:"extra_domains" json:"extra_domains"`

	// Weights rebuckets categories for productivity scoring
	Weights map[string]string `yaml:"weights" json:"weights"`

	SessionGap  time.Duration `yaml:"session_gap" json:"session_gap" validate:"min=0"`
	LearningGap time.Duration `yaml:"learning_gap" json:"learning_gap" validate:"min=0"`

	LearningCategories []string `yaml:"learning_categories" json:"learning_categories"`
}

// LoadOrDefault reads and validates the tuning file at path. An empty path
// means no file was requested and yields the zero File; a path that does not
// exist is an error, since the caller asked for it explicitly
func LoadOrDefault(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, perr.NotFoundf("rules file %s does not exist", path)
		}
		return File{}, perr.Wrapf(err, perr.CodeRules, "read rules file %s", path)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, perr.Wrapf(err, perr.CodeRules, "parse rules file %s", path)
	}
	if err := validate.Struct(f); err != nil {
		return File{}, err
	}
	return f, nil
}

// LoadPack reads and compiles a full replacement rule pack from path. Unlike
// the tuning file, a pack swaps out every built-in table at once
func LoadPack(path string) (*rulepack.Pack, error) {
	raw, err := rulepack.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.NotFoundf("pack file %s does not exist", path)
		}
		return nil, perr.Wrapf(err, perr.CodeRules, "read pack %s", path)
	}
	p, err := raw.Compile()
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeRules, "compile pack %s", path)
	}
	return p, nil
}

// Apply layers the file under opts: values already set by flags or env keep
// winning, map entries merge key-wise with opts on top. Extra domains fold
// into the embedded pack and recompile it, unless the caller brought a pack
// of their own
func (f File) Apply(o insights.Options) (insights.Options, error) {
	if o.SessionGap == 0 {
		o.SessionGap = f.SessionGap
	}
	if o.LearningGap == 0 {
		o.LearningGap = f.LearningGap
	}
	if len(o.LearningCategories) == 0 {
		o.LearningCategories = f.LearningCategories
	}
	o.Overrides = mergeMap(f.CategoryOverrides, o.Overrides)
	o.Weights = mergeMap(f.Weights, o.Weights)

	if len(f.ExtraDomains) > 0 && o.Pack == nil {
		raw, err := rulepack.Embedded()
		if err != nil {
			return o, perr.Wrapf(err, perr.CodeRules, "load embedded rules")
		}
		cats := make([]string, 0, len(f.ExtraDomains))
		for c := range f.ExtraDomains {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			raw.Add(c, f.ExtraDomains[c]...)
		}
		pack, err := raw.Compile()
		if err != nil {
			return o, perr.Wrapf(err, perr.CodeRules, "compile rules with extra domains")
		}
		o.Pack = pack
	}
	return o, nil
}

// mergeMap returns base with over layered on top; nil when both are empty
func mergeMap(base, over map[string]string) map[string]string {
	if len(base) == 0 {
		return over
	}
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
