package catalog

import "github.com/aescanero/modhub/internal/domain"

// SampleMods is the catalog a fresh install starts with.
func SampleMods() []domain.Mod {
	return []domain.Mod{
		{
			ID:          1,
			Name:        "Super Cat Pack",
			Game:        "Minecraft",
			Author:      "CatLover99",
			Description: "A super cute cat-themed mod pack with many cat skins and items",
			Version:     "1.0.0",
			Downloads:   15420,
			Likes:       892,
			Image:       "https://picsum.photos/seed/catmod1/400/300.jpg",
			FileURL:     "/uploads/cat-mod-1.zip",
			CreatedAt:   "2024-01-15",
			Tags:        []string{"Animals", "Cute", "Texture Pack"},
		},
		{
			ID:          2,
			Name:        "Cyberpunk Cat",
			Game:        "Cyberpunk 2077",
			Author:      "TechCat",
			Description: "Replaces every NPC in the game with a cyberpunk-style cat",
			Version:     "2.1.0",
			Downloads:   8756,
			Likes:       623,
			Image:       "https://picsum.photos/seed/cybercat2/400/300.jpg",
			FileURL:     "/uploads/cyber-cat-2.zip",
			CreatedAt:   "2024-02-20",
			Tags:        []string{"Characters", "Sci-Fi", "Cats"},
		},
		{
			ID:          3,
			Name:        "Magic Cat Adventure",
			Game:        "Stardew Valley",
			Author:      "WitchCat",
			Description: "Adds new magic cat characters and related magic items",
			Version:     "1.5.2",
			Downloads:   12389,
			Likes:       756,
			Image:       "https://picsum.photos/seed/magiccat3/400/300.jpg",
			FileURL:     "/uploads/magic-cat-3.zip",
			CreatedAt:   "2024-03-10",
			Tags:        []string{"Characters", "Magic", "Adventure"},
		},
	}
}
