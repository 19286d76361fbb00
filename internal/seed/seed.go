// Package seed reads taxonomy and curriculum definitions from YAML and
// imports them through the authoring services.
package seed

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/lo-analysis-backend/internal/lexicon"
)

//go:embed data/*.yaml
var embedded embed.FS

type File struct {
	Taxonomies []Taxonomy   `yaml:"taxonomies"`
	Curricula  []Curriculum `yaml:"curricula"`
}

type Taxonomy struct {
	Title      string     `yaml:"title"`
	Public     bool       `yaml:"public"`
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Title string `yaml:"title"`
	Level int    `yaml:"level"`
	Verbs string `yaml:"verbs"`
}

type Curriculum struct {
	Title      string   `yaml:"title"`
	Public     bool     `yaml:"public"`
	Country    string   `yaml:"country"`
	ISCEDLevel string   `yaml:"isced_level"`
	Strands    []Strand `yaml:"strands"`
}

type Strand struct {
	Title  string `yaml:"title"`
	Colour string `yaml:"colour"`
	Text   string `yaml:"text"`
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func (f *File) validate() error {
	for i, t := range f.Taxonomies {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("taxonomies[%d]: title is required", i)
		}
		levels := map[int]string{}
		for j, c := range t.Categories {
			if strings.TrimSpace(c.Title) == "" {
				return fmt.Errorf("taxonomies[%d].categories[%d]: title is required", i, j)
			}
			if prev, ok := levels[c.Level]; ok {
				return fmt.Errorf("taxonomies[%d]: level %d used by %q and %q", i, c.Level, prev, c.Title)
			}
			levels[c.Level] = c.Title
		}
	}
	for i, c := range f.Curricula {
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("curricula[%d]: title is required", i)
		}
	}
	return nil
}

func mustEmbedded(name string) *File {
	data, err := embedded.ReadFile("data/" + name)
	if err != nil {
		panic(err)
	}
	f, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("embedded %s: %v", name, err))
	}
	return f
}

// Blooms is the six-level Bloom's taxonomy.
func Blooms() *File { return mustEmbedded("blooms.yaml") }

// StrandFixture is Bloom's taxonomy plus one curriculum with a single
// 23-outcome strand.
func StrandFixture() *File {
	f := mustEmbedded("strand_fixture.yaml")
	f.Taxonomies = Blooms().Taxonomies
	return f
}

// Lexicon builds an in-memory lexicon for t without touching storage.
// Category IDs are freshly generated.
func (t Taxonomy) Lexicon(policy lexicon.MalformedPolicy) (*lexicon.Lexicon, error) {
	cats := make([]lexicon.Category, 0, len(t.Categories))
	for _, c := range t.Categories {
		vl, err := lexicon.ParseVerbList(c.Verbs, policy)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Title, err)
		}
		cats = append(cats, lexicon.Category{
			ID:       uuid.New(),
			Title:    c.Title,
			Level:    c.Level,
			Verbs:    vl.Verbs,
			NonVerbs: vl.NonVerbs,
		})
	}
	return lexicon.New(uuid.Nil, cats), nil
}
