// Package catalog loads the topic keyword table and the two question
// template pools from disk. Files may be JSON or YAML. A missing or malformed
// file never fails startup: the affected table falls back to built-in
// defaults and the problem is reported as a CONFIG_LOAD_ERROR warning.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"quizforge/internal/domain"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultKeywordTemplate is used whenever a keyword template cannot be
// filled in.
const DefaultKeywordTemplate = "Define {keyword} in the context of {topic}?"

// Paths locates the three table files. An empty path selects the defaults.
type Paths struct {
	Topics           string
	Templates        string
	KeywordTemplates string
}

// DefaultGenericTemplates returns the generic pool used when the template
// file cannot be loaded.
func DefaultGenericTemplates() []string {
	return []string{"What is {}?", "Explain how {} works."}
}

// DefaultTopics returns a small built-in topic table.
func DefaultTopics() []domain.Topic {
	return []domain.Topic{
		{Name: "Physics", Keywords: []string{"gravity", "force", "mass", "energy", "velocity", "acceleration", "momentum"}},
		{Name: "Biology", Keywords: []string{"cell", "photosynthesis", "chlorophyll", "DNA", "enzyme", "mitochondria", "xylem"}},
		{Name: "Chemistry", Keywords: []string{"atom", "molecule", "reaction", "catalyst", "ion", "bond"}},
		{Name: "Computer Science", Keywords: []string{"algorithm", "compiler", "database", "network", "recursion"}},
	}
}

// Load reads all tables. The returned catalog is always usable; the error
// slice lists every table that fell back to defaults.
func Load(paths Paths, logger *zap.Logger) (*domain.Catalog, []error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var warnings []error
	warn := func(path string, err error) {
		cfgErr := domain.NewConfigLoadError(path, err)
		logger.Warn("Falling back to built-in catalog table", zap.String("path", path), zap.Error(err))
		warnings = append(warnings, cfgErr)
	}

	cat := &domain.Catalog{}

	topics, err := loadTopics(paths.Topics)
	if err != nil {
		warn(paths.Topics, err)
		topics = DefaultTopics()
	}
	cat.Topics = topics

	generic, err := loadTemplates(paths.Templates)
	if err == nil && len(generic) == 0 {
		err = errors.New("template list is empty")
	}
	if err != nil {
		warn(paths.Templates, err)
		generic = DefaultGenericTemplates()
	}
	cat.GenericTemplates = generic

	// An empty keyword pool is valid: the keyword generator then always uses
	// DefaultKeywordTemplate.
	keyword, err := loadTemplates(paths.KeywordTemplates)
	if err != nil {
		warn(paths.KeywordTemplates, err)
		keyword = nil
	}
	cat.KeywordTemplates = keyword

	logger.Info("Catalog loaded",
		zap.Int("topics", len(cat.Topics)),
		zap.Int("generic_templates", len(cat.GenericTemplates)),
		zap.Int("keyword_templates", len(cat.KeywordTemplates)),
	)
	return cat, warnings
}

func readDocument(path string) (*yaml.Node, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("no path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed table: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty table")
	}
	return doc.Content[0], nil
}

// loadTopics reads a mapping of topic name to keyword list, keeping the
// file's topic order (the first matching topic wins during distractor
// selection). Topics without keywords are skipped.
func loadTopics(path string) ([]domain.Topic, error) {
	root, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("topic table must be a mapping of topic to keywords")
	}

	var topics []domain.Topic
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := strings.TrimSpace(root.Content[i].Value)
		var keywords []string
		if err := root.Content[i+1].Decode(&keywords); err != nil {
			return nil, fmt.Errorf("topic %q: %w", name, err)
		}
		keywords = compact(keywords)
		if name == "" || len(keywords) == 0 {
			continue
		}
		topics = append(topics, domain.Topic{Name: name, Keywords: keywords})
	}
	if len(topics) == 0 {
		return nil, errors.New("topic table has no usable topics")
	}
	return topics, nil
}

// templateEntry matches the {"Template": "..."} records of exported template
// sheets.
type templateEntry struct {
	Template string `yaml:"Template"`
}

// loadTemplates accepts either a list of strings or a list of
// {"Template": "..."} objects.
func loadTemplates(path string) ([]string, error) {
	root, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if root.Kind != yaml.SequenceNode {
		return nil, errors.New("template table must be a list")
	}

	templates := make([]string, 0, len(root.Content))
	for _, item := range root.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			templates = append(templates, item.Value)
		case yaml.MappingNode:
			var e templateEntry
			if err := item.Decode(&e); err != nil {
				return nil, err
			}
			templates = append(templates, e.Template)
		default:
			return nil, fmt.Errorf("unexpected template entry at line %d", item.Line)
		}
	}
	return compact(templates), nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
