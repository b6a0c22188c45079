package http

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/aescanero/modhub/internal/domain"
)

// TagList accepts either a comma-separated string or an array of strings.
// A null or absent value leaves the list nil.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler
func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*t = domain.SplitTags(raw)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	tags := make([]string, 0, len(list))
	for _, tag := range list {
		if s := strings.TrimSpace(tag); s != "" {
			tags = append(tags, s)
		}
	}
	*t = tags
	return nil
}

// LooseInt accepts a JSON number or a string starting with an integer, as
// in "12", "-3" or "7 downloads". Anything else reads as zero.
type LooseInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *LooseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = 0

	switch {
	case len(data) == 0:
		return nil
	case data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*n = LooseInt(leadingInt(raw))
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return nil
		}
		if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
			return nil
		}
		*n = LooseInt(int(f))
	}
	return nil
}

// leadingInt parses the integer prefix of s, returning 0 when there is none
func leadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// ModRequest is the JSON body of the public create and admin create/update
// endpoints
type ModRequest struct {
	Name        string   `json:"name"`
	Game        string   `json:"game"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Tags        TagList  `json:"tags"`
	Downloads   LooseInt `json:"downloads"`
	Likes       LooseInt `json:"likes"`
	Image       string   `json:"image"`
	FileURL     string   `json:"fileUrl"`
}

// Draft converts the request into a draft
func (r ModRequest) Draft() domain.Draft {
	return domain.Draft{
		Name:        r.Name,
		Game:        r.Game,
		Author:      r.Author,
		Description: r.Description,
		Version:     r.Version,
		Downloads:   int(r.Downloads),
		Likes:       int(r.Likes),
		Image:       r.Image,
		FileURL:     r.FileURL,
		Tags:        []string(r.Tags),
	}
}

// Patch converts the request into a partial update
func (r ModRequest) Patch() domain.Patch {
	return domain.Patch{
		Name:        r.Name,
		Game:        r.Game,
		Author:      r.Author,
		Description: r.Description,
		Version:     r.Version,
		Downloads:   int(r.Downloads),
		Likes:       int(r.Likes),
		Image:       r.Image,
		FileURL:     r.FileURL,
		Tags:        []string(r.Tags),
	}
}

// LoginRequest is the admin login body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GameBananaImportRequest names the upstream mod to import
type GameBananaImportRequest struct {
	ModID LooseInt `json:"modId"`
}
