package domain

import (
	"errors"
	"time"
)

// ExportVersion is the format version written into exports.
const ExportVersion = "1.0.0"

var (
	ErrModNotFound        = errors.New("mod not found")
	ErrInvalidImport      = errors.New("invalid import payload")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingToken       = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUpstream           = errors.New("upstream request failed")
)

// Filter narrows a mod listing. Empty fields match everything.
type Filter struct {
	Game   string
	Tag    string
	Search string
}

// TagCount is one entry of Stats.TopTags.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GameCount is one entry of Stats.TopGames.
type GameCount struct {
	Name string `json:"name"`
	Mods int    `json:"mods"`
}

// Stats summarizes the catalog.
type Stats struct {
	TotalMods      int         `json:"totalMods"`
	TotalDownloads int         `json:"totalDownloads"`
	TotalLikes     int         `json:"totalLikes"`
	TotalGames     int         `json:"totalGames"`
	TopTags        []TagCount  `json:"topTags"`
	TopGames       []GameCount `json:"topGames"`
}

// Export is a full snapshot of the catalog.
type Export struct {
	Mods       []Mod  `json:"mods"`
	ExportTime string `json:"exportTime"`
	Version    string `json:"version"`
}

// EventType identifies a catalog activity event.
type EventType string

const (
	EventTypeModCreated      EventType = "mod.created"
	EventTypeModUpdated      EventType = "mod.updated"
	EventTypeModDeleted      EventType = "mod.deleted"
	EventTypeModLiked        EventType = "mod.liked"
	EventTypeCatalogImported EventType = "catalog.imported"
)

// Event is published after every catalog mutation.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	ModID     int                    `json:"modId,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
