package source

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/steelwatch/newsbrief/internal/model"
	"github.com/steelwatch/newsbrief/internal/rules"
)

type targetsFile struct {
	Targets []targetEntry `yaml:"targets"`
}

type targetEntry struct {
	Label      string   `yaml:"label"`
	Kind       string   `yaml:"kind"`
	Queries    []string `yaml:"queries"`
	Feeds      []string `yaml:"feeds"`
	Enterprise bool     `yaml:"enterprise"`
	MaxPick    *int     `yaml:"max_pick"`
}

// LoadTargetsFile reads the static targets YAML. A missing file is not an
// error; the run then works from the external store alone.
func LoadTargetsFile(path string) ([]model.Target, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: read targets file %s", path)
	}

	var f targetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "source: parse targets file %s", path)
	}

	targets := make([]model.Target, 0, len(f.Targets))
	for _, e := range f.Targets {
		if e.Label == "" {
			continue
		}
		t := model.Target{
			Label:      e.Label,
			Kind:       model.KindQuery,
			Queries:    e.Queries,
			Feeds:      e.Feeds,
			Enterprise: e.Enterprise,
			MaxPick:    -1,
		}
		if e.Kind == string(model.KindFeed) {
			t.Kind = model.KindFeed
		}
		if e.MaxPick != nil {
			t.MaxPick = *e.MaxPick
		}
		if len(t.Queries) == 0 && len(t.Feeds) == 0 {
			t.Queries = []string{t.Label}
		}
		targets = append(targets, t)
	}
	return targets, nil
}

type rulesFile struct {
	Rules []model.RawRule `yaml:"rules"`
}

// LoadRulesFile reads the static rules YAML. A missing file yields no
// rules.
func LoadRulesFile(path string) ([]model.RawRule, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: read rules file %s", path)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "source: parse rules file %s", path)
	}

	out := make([]model.RawRule, 0, len(f.Rules))
	for _, r := range f.Rules {
		if r.RuleType == "" || r.TagName == "" {
			continue
		}
		r.External = false
		out = append(out, r)
	}
	return out, nil
}

// LoadScoringFile reads the static scoring tables used by the fallback
// scorer.
func LoadScoringFile(path string) (rules.ScoringConfig, error) {
	var cfg rules.ScoringConfig
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, eris.Wrapf(err, "source: read scoring file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "source: parse scoring file %s", path)
	}
	return cfg, nil
}
