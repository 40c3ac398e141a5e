package domain

import "strings"

// Topic is a named subject area and its keywords.
type Topic struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Catalog holds the static tables the engine reads: topics with their
// keywords, the generic template pool ("{}" slots filled with the topic) and
// the keyword template pool ("{keyword}" and "{topic}" slots).
// A Catalog is built once at startup and never mutated afterwards.
type Catalog struct {
	Topics           []Topic
	GenericTemplates []string
	KeywordTemplates []string
}

// Topic looks a topic up by name, case-insensitively.
func (c *Catalog) Topic(name string) (Topic, bool) {
	for _, t := range c.Topics {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Topic{}, false
}

// TopicNames returns the topic names in table order.
func (c *Catalog) TopicNames() []string {
	names := make([]string, 0, len(c.Topics))
	for _, t := range c.Topics {
		names = append(names, t.Name)
	}
	return names
}
