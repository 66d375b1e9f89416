// Package site holds the static content of the marketing pages: company
// profile, page metadata and blog posts.
package site

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var builtinContent []byte

// ErrUnknownCategory is returned when filtering by a category that does not exist.
var ErrUnknownCategory = errors.New("unknown blog category")

// AllCategories selects every post.
const AllCategories = "all"

// Company is the firm's public profile.
type Company struct {
	Name         string `yaml:"name" json:"name"`
	Tagline      string `yaml:"tagline" json:"tagline"`
	Phone        string `yaml:"phone" json:"phone"`
	Email        string `yaml:"email" json:"email"`
	Address      string `yaml:"address" json:"address"`
	WorkingHours string `yaml:"working_hours" json:"working_hours"`
	About        string `yaml:"about" json:"about,omitempty"`
}

// PageMeta is the title block of a routed page.
type PageMeta struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Category groups blog posts.
type Category struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Post is a blog article.
type Post struct {
	ID       int      `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Excerpt  string   `yaml:"excerpt" json:"excerpt"`
	Content  string   `yaml:"content" json:"content,omitempty"`
	Category string   `yaml:"category" json:"category"`
	Author   string   `yaml:"author" json:"author"`
	Date     string   `yaml:"date" json:"date"`
	ReadTime string   `yaml:"read_time" json:"read_time"`
	Image    string   `yaml:"image" json:"image"`
	Tags     []string `yaml:"tags" json:"tags"`
	Featured bool     `yaml:"featured" json:"featured,omitempty"`
}

// Catalog is the full site content.
type Catalog struct {
	Company    Company             `yaml:"company"`
	Pages      map[string]PageMeta `yaml:"pages"`
	Categories []Category          `yaml:"categories"`
	Posts      []Post              `yaml:"posts"`
}

// Builtin returns the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return parse(builtinContent)
}

// Load reads a catalog from path. An empty path returns Builtin.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if c.Pages == nil {
		c.Pages = make(map[string]PageMeta)
	}
	return &c, nil
}

// Page returns the metadata for a page name.
func (c *Catalog) Page(name string) PageMeta {
	return c.Pages[name]
}

// BlogListing is the result of filtering the blog.
type BlogListing struct {
	Featured *Post  `json:"featured,omitempty"`
	Posts    []Post `json:"posts"`
}

// FilterPosts selects posts by category and a case-insensitive search over
// title, excerpt and tags. The featured post is picked from all posts and
// never repeated in Posts.
func (c *Catalog) FilterPosts(category, search string) (BlogListing, error) {
	if category == "" {
		category = AllCategories
	}
	if !c.hasCategory(category) {
		return BlogListing{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	listing := BlogListing{Posts: []Post{}}
	for i := range c.Posts {
		if c.Posts[i].Featured {
			p := c.Posts[i]
			listing.Featured = &p
			break
		}
	}

	term := strings.ToLower(strings.TrimSpace(search))
	for _, p := range c.Posts {
		if category != AllCategories && p.Category != category {
			continue
		}
		if !p.matches(term) || p.Featured {
			continue
		}
		listing.Posts = append(listing.Posts, p)
	}
	return listing, nil
}

func (c *Catalog) hasCategory(id string) bool {
	if id == AllCategories {
		return true
	}
	for _, cat := range c.Categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func (p Post) matches(term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Excerpt), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
