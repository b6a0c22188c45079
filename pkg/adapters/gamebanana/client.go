// Package gamebanana bridges the GameBanana mod repository API into the
// local Mod shape.
package gamebanana

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aescanero/modhub/internal/domain"
	"github.com/aescanero/modhub/internal/ports"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// Source is stamped on every mod that came from GameBanana
	Source = "GameBanana"

	// GameName is the game the FNF listing belongs to
	GameName = "Friday Night Funkin'"

	DefaultBaseURL = "https://api.gamebanana.com"
	DefaultGameID  = 3827

	itemsPerPage    = 20
	maxResponseSize = 10 << 20
)

var (
	listTags   = []string{"FNF", "Mod", "Rhythm Game"}
	importTags = []string{"FNF", "GameBanana", "Imported"}
)

// Page is one page of the upstream mod listing
type Page struct {
	Mods       []domain.Mod `json:"mods"`
	Total      int64        `json:"total"`
	Page       int64        `json:"page"`
	TotalPages int64        `json:"totalPages"`
}

// Config holds GameBanana client configuration
type Config struct {
	BaseURL string
	GameID  int
	Doer    Doer
	Metrics ports.MetricsCollector
	Logger  *zap.Logger
}

// Client calls the GameBanana Core API
type Client struct {
	baseURL string
	gameID  int
	doer    Doer
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewClient creates a new GameBanana client
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	gameID := cfg.GameID
	if gameID == 0 {
		gameID = DefaultGameID
	}
	doer := cfg.Doer
	if doer == nil {
		doer = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		gameID:  gameID,
		doer:    doer,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// ListMods fetches one page of the game's mods reshaped as local mods
func (c *Client) ListMods(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	data, err := c.getJSON(ctx, "list", "/Core/Item/Data", url.Values{
		"itemtype":     {"Mod"},
		"gameid":       {strconv.Itoa(c.gameID)},
		"page":         {strconv.Itoa(page)},
		"itemsperpage": {strconv.Itoa(itemsPerPage)},
	})
	if err != nil {
		return nil, err
	}
	if msg := data.Get("error"); msg.Exists() {
		return nil, c.rejected("list", "upstream error: "+msg.String())
	}
	if !data.Get("records").IsArray() {
		return nil, c.rejected("list", "response has no records")
	}

	result := &Page{
		Mods:       []domain.Mod{},
		Total:      data.Get("_nTotalItems").Int(),
		Page:       data.Get("_nPage").Int(),
		TotalPages: data.Get("_nTotalPages").Int(),
	}

	data.Get("records").ForEach(func(_, record gjson.Result) bool {
		result.Mods = append(result.Mods, recordToMod(record))
		return true
	})

	return result, nil
}

// FetchMod loads one mod and its files and returns a draft ready to be
// added to the catalog
func (c *Client) FetchMod(ctx context.Context, modID int64) (*domain.Draft, error) {
	id := strconv.FormatInt(modID, 10)

	detail, err := c.getJSON(ctx, "detail", "/Core/Item/Data", url.Values{
		"itemtype": {"Mod"},
		"id":       {id},
	})
	if err != nil {
		return nil, err
	}
	if msg := detail.Get("error"); msg.Exists() {
		return nil, c.rejected("detail", "upstream error: "+msg.String())
	}
	if !detail.Get("_sName").Exists() || !detail.Get("_aSubmitter._sName").Exists() {
		return nil, c.rejected("detail", fmt.Sprintf("mod %s has no name or submitter", id))
	}

	files, err := c.getJSON(ctx, "files", "/Core/Item/Files", url.Values{
		"itemtype": {"Mod"},
		"id":       {id},
	})
	if err != nil {
		return nil, err
	}

	return &domain.Draft{
		Name:        detail.Get("_sName").String(),
		Game:        GameName,
		Author:      detail.Get("_aSubmitter._sName").String(),
		Description: orDefault(detail.Get("_sDescription").String(), "Imported from GameBanana"),
		Version:     orDefault(detail.Get("_sVersion").String(), "1.0.0"),
		Downloads:   int(detail.Get("_nDownloadCount").Int()),
		Likes:       int(detail.Get("_nLikeCount").Int()),
		Image:       orDefault(detail.Get("_sPreviewImageUrl").String(), fmt.Sprintf("https://picsum.photos/seed/gamebanana%s/400/300.jpg", id)),
		FileURL:     firstDownloadURL(files),
		Tags:        append([]string{}, importTags...),
		Source:      Source,
		SourceID:    modID,
	}, nil
}

// getJSON performs a GET and returns the parsed body
func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values) (gjson.Result, error) {
	endpoint := c.baseURL + path + "?" + query.Encode()
	start := time.Now()

	body, err := c.get(ctx, endpoint)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall(operation, status, time.Since(start))
	}
	if err != nil {
		c.logger.Error("gamebanana request failed",
			zap.String("operation", operation),
			zap.String("url", endpoint),
			zap.Error(err))
		return gjson.Result{}, fmt.Errorf("%w: %s: %v", domain.ErrUpstream, operation, err)
	}

	return gjson.ParseBytes(body), nil
}

// rejected reports a well-formed response that does not carry the
// expected payload
func (c *Client) rejected(operation, reason string) error {
	c.logger.Warn("gamebanana response rejected",
		zap.String("operation", operation),
		zap.String("reason", reason))
	return fmt.Errorf("%w: %s: %s", domain.ErrUpstream, operation, reason)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.doer.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}

	return body, nil
}

func recordToMod(record gjson.Result) domain.Mod {
	id := record.Get("_idRow").Int()

	createdAt := ""
	if ts := record.Get("_tsDateUpdated").Int(); ts > 0 {
		createdAt = time.Unix(ts, 0).UTC().Format(domain.DateLayout)
	}

	return domain.Mod{
		ID:          int(id),
		Name:        record.Get("_sName").String(),
		Game:        GameName,
		Author:      record.Get("_aSubmitter._sName").String(),
		Description: orDefault(record.Get("_sDescription").String(), "No description"),
		Downloads:   int(record.Get("_nDownloadCount").Int()),
		Likes:       int(record.Get("_nLikeCount").Int()),
		Image:       orDefault(record.Get("_sPreviewImageUrl").String(), fmt.Sprintf("https://picsum.photos/seed/fnf%d/400/300.jpg", id)),
		FileURL:     record.Get("_aDownloadUrl").String(),
		CreatedAt:   createdAt,
		Tags:        append([]string{}, listTags...),
		Source:      Source,
		SourceID:    id,
	}
}

// firstDownloadURL accepts the files payload as an array or as an
// object keyed by file id
func firstDownloadURL(files gjson.Result) string {
	var first gjson.Result
	switch {
	case files.IsArray():
		first = files.Get("0")
	case files.IsObject():
		files.ForEach(func(_, value gjson.Result) bool {
			first = value
			return false
		})
	}
	return first.Get("_sDownloadUrl").String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
