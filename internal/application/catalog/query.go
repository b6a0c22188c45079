package catalog

import (
	"sort"
	"strings"

	"github.com/aescanero/modhub/internal/domain"
)

// topN bounds Stats.TopTags and Stats.TopGames
const topN = 10

func applyFilter(mods []domain.Mod, f domain.Filter) []domain.Mod {
	game := strings.ToLower(f.Game)
	search := strings.ToLower(f.Search)

	out := make([]domain.Mod, 0, len(mods))
	for _, m := range mods {
		if game != "" && !strings.Contains(strings.ToLower(m.Game), game) {
			continue
		}
		if f.Tag != "" && !m.HasTag(f.Tag) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Description), search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func distinctGames(mods []domain.Mod) []string {
	seen := make(map[string]bool)
	games := []string{}
	for _, m := range mods {
		if !seen[m.Game] {
			seen[m.Game] = true
			games = append(games, m.Game)
		}
	}
	return games
}

func distinctTags(mods []domain.Mod) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, m := range mods {
		for _, t := range m.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// counter tallies keys and remembers the order they were first seen in
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to n keys by descending count; ties keep first-seen order
func (c *counter) top(n int) []string {
	keys := append([]string(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func computeStats(mods []domain.Mod) domain.Stats {
	stats := domain.Stats{
		TotalMods: len(mods),
		TopTags:   []domain.TagCount{},
		TopGames:  []domain.GameCount{},
	}

	tags := newCounter()
	games := newCounter()
	for _, m := range mods {
		stats.TotalDownloads += m.Downloads
		stats.TotalLikes += m.Likes
		games.add(m.Game)
		for _, t := range m.Tags {
			tags.add(t)
		}
	}
	stats.TotalGames = len(games.order)

	for _, name := range tags.top(topN) {
		stats.TopTags = append(stats.TopTags, domain.TagCount{Name: name, Count: tags.counts[name]})
	}
	for _, name := range games.top(topN) {
		stats.TopGames = append(stats.TopGames, domain.GameCount{Name: name, Mods: games.counts[name]})
	}

	return stats
}
