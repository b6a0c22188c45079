// Package domain holds the catalog's core types.
package domain

import "strings"

// DateLayout is the format of Mod.CreatedAt.
const DateLayout = "2006-01-02"

// Mod is a catalog record for a user-submitted game modification.
type Mod struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Game        string   `json:"game"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Downloads   int      `json:"downloads"`
	Likes       int      `json:"likes"`
	Image       string   `json:"image"`
	FileURL     string   `json:"fileUrl"`
	CreatedAt   string   `json:"createdAt"`
	Tags        []string `json:"tags"`

	// Set on mods that came from an external catalog.
	Source   string `json:"source,omitempty"`
	SourceID int64  `json:"sourceId,omitempty"`
}

// Clone returns a copy that shares no slices with m.
func (m Mod) Clone() Mod {
	c := m
	c.Tags = append(make([]string, 0, len(m.Tags)), m.Tags...)
	return c
}

// HasTag reports whether the mod carries tag, ignoring case.
func (m Mod) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Draft describes a mod that has not been stored yet.
type Draft struct {
	Name        string
	Game        string
	Author      string
	Description string
	Version     string
	Downloads   int
	Likes       int
	Image       string
	FileURL     string
	Tags        []string
	Source      string
	SourceID    int64
}

// Patch is a partial update. Empty strings and zero counts leave the
// current value in place; nil Tags keeps the current tags.
type Patch struct {
	Name        string
	Game        string
	Author      string
	Description string
	Version     string
	Downloads   int
	Likes       int
	Image       string
	FileURL     string
	Tags        []string
}

// Apply merges p into m.
func (p Patch) Apply(m *Mod) {
	m.Name = orString(p.Name, m.Name)
	m.Game = orString(p.Game, m.Game)
	m.Author = orString(p.Author, m.Author)
	m.Description = orString(p.Description, m.Description)
	m.Version = orString(p.Version, m.Version)
	m.Image = orString(p.Image, m.Image)
	m.FileURL = orString(p.FileURL, m.FileURL)
	if p.Downloads != 0 {
		m.Downloads = p.Downloads
	}
	if p.Likes != 0 {
		m.Likes = p.Likes
	}
	if p.Tags != nil {
		m.Tags = append([]string{}, p.Tags...)
	}
}

// SplitTags turns "a, b,c" into [a b c]. Blank entries are dropped.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func orString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
