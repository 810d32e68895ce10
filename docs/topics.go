// Package docs holds the user manual of folio, as markdown topics embedded
// in the binary.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// readme is the index of the topics, it is not a topic itself.
const readme = "readme"

// Index returns the list of topics.
func Index() string {
	content, _ := docs.ReadFile(readme + ".md")
	return string(content)
}

// Topic returns the content of a topic. "*" is every topic.
func Topic(name string) (string, error) {
	if name == "*" {
		return Topics(All()...)
	}
	content, err := docs.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Topics returns the content of several topics, separated by a blank line.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		content, err := Topic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// All returns the name of every topic, sorted.
func All() []string {
	var topics []string
	fs.WalkDir(docs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if name := strings.TrimSuffix(path.Base(p), ".md"); name != readme {
			topics = append(topics, name)
		}
		return nil
	})
	slices.Sort(topics)
	return topics
}
