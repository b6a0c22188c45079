package gamebanana

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aescanero/modhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const listResponse = `{
	"_nTotalItems": 41,
	"_nPage": 2,
	"_nTotalPages": 3,
	"records": [
		{
			"_idRow": 501,
			"_sName": "Week 8",
			"_sDescription": "A new week",
			"_aSubmitter": {"_sName": "Kade"},
			"_nDownloadCount": 1200,
			"_nLikeCount": 33,
			"_sPreviewImageUrl": "https://images.gamebanana.com/501.png",
			"_aDownloadUrl": "https://gamebanana.com/dl/501",
			"_tsDateUpdated": 1704067200
		},
		{
			"_idRow": 502,
			"_sName": "Bare",
			"_aSubmitter": {"_sName": "Anon"}
		}
	]
}`

func writeString(t *testing.T, w http.ResponseWriter, payload string) {
	t.Helper()
	if _, err := w.Write([]byte(payload)); err != nil {
		t.Fatalf("write response: %v", err)
	}
}

func newTestClient(url string) *Client {
	return NewClient(&Config{BaseURL: url, Logger: zap.NewNop()})
}

func TestListMods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Core/Item/Data", r.URL.Path)
		assert.Equal(t, "Mod", r.URL.Query().Get("itemtype"))
		assert.Equal(t, "3827", r.URL.Query().Get("gameid"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("itemsperpage"))
		w.Header().Set("Content-Type", "application/json")
		writeString(t, w, listResponse)
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListMods(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, int64(2), page.Page)
	assert.Equal(t, int64(3), page.TotalPages)
	require.Len(t, page.Mods, 2)

	first := page.Mods[0]
	assert.Equal(t, 501, first.ID)
	assert.Equal(t, int64(501), first.SourceID)
	assert.Equal(t, "Week 8", first.Name)
	assert.Equal(t, "Kade", first.Author)
	assert.Equal(t, GameName, first.Game)
	assert.Equal(t, 1200, first.Downloads)
	assert.Equal(t, 33, first.Likes)
	assert.Equal(t, "https://gamebanana.com/dl/501", first.FileURL)
	assert.Equal(t, "2024-01-01", first.CreatedAt)
	assert.Equal(t, Source, first.Source)
	assert.Equal(t, []string{"FNF", "Mod", "Rhythm Game"}, first.Tags)

	bare := page.Mods[1]
	assert.Equal(t, "No description", bare.Description)
	assert.Equal(t, "https://picsum.photos/seed/fnf502/400/300.jpg", bare.Image)
	assert.Equal(t, "", bare.CreatedAt)
}

func TestListModsClampsPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		writeString(t, w, `{"records": []}`)
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).ListMods(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, page.Mods)
	assert.NotNil(t, page.Mods)
}

func TestFetchMod(t *testing.T) {
	tests := []struct {
		name  string
		files string
		want  string
	}{
		{"files array", `[{"_sDownloadUrl": "https://gamebanana.com/dl/f1"}, {"_sDownloadUrl": "https://gamebanana.com/dl/f2"}]`, "https://gamebanana.com/dl/f1"},
		{"files object", `{"900": {"_sDownloadUrl": "https://gamebanana.com/dl/900"}}`, "https://gamebanana.com/dl/900"},
		{"no files", `[]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "77", r.URL.Query().Get("id"))
				switch r.URL.Path {
				case "/Core/Item/Data":
					writeString(t, w, `{"_sName": "Imported Week", "_aSubmitter": {"_sName": "Bee"}, "_nDownloadCount": 9, "_nLikeCount": "4"}`)
				case "/Core/Item/Files":
					writeString(t, w, tt.files)
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
			defer server.Close()

			draft, err := newTestClient(server.URL).FetchMod(context.Background(), 77)
			require.NoError(t, err)

			assert.Equal(t, "Imported Week", draft.Name)
			assert.Equal(t, "Bee", draft.Author)
			assert.Equal(t, "Imported from GameBanana", draft.Description)
			assert.Equal(t, "1.0.0", draft.Version)
			assert.Equal(t, 9, draft.Downloads)
			assert.Equal(t, 4, draft.Likes)
			assert.Equal(t, "https://picsum.photos/seed/gamebanana77/400/300.jpg", draft.Image)
			assert.Equal(t, tt.want, draft.FileURL)
			assert.Equal(t, []string{"FNF", "GameBanana", "Imported"}, draft.Tags)
			assert.Equal(t, int64(77), draft.SourceID)
		})
	}
}

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) { writeString(t, w, "<html>") }},
		{"error object", func(w http.ResponseWriter, r *http.Request) { writeString(t, w, `{"error":"Item not found"}`) }},
		{"empty object", func(w http.ResponseWriter, r *http.Request) { writeString(t, w, `{}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestClient(server.URL).ListMods(context.Background(), 1)
			assert.ErrorIs(t, err, domain.ErrUpstream)

			_, err = newTestClient(server.URL).FetchMod(context.Background(), 1)
			assert.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}

type errorDoer struct{ err error }

func (d errorDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestTransportError(t *testing.T) {
	c := NewClient(&Config{Doer: errorDoer{errors.New("dial failed")}, Logger: zap.NewNop()})
	_, err := c.ListMods(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "dial failed")
}

func TestRateLimitedDoerHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeString(t, w, `{}`)
	}))
	defer server.Close()

	// Empty bucket that never refills
	doer := NewRateLimitedDoer(server.Client(), rate.NewLimiter(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	_, err = doer.Do(req)
	assert.Error(t, err)

	allowed := NewRateLimitedDoer(server.Client(), rate.NewLimiter(rate.Inf, 1))
	req, _ = http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := allowed.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFetchModRejectsIncompleteDetail(t *testing.T) {
	filesRequested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Core/Item/Files" {
			filesRequested = true
		}
		// records present but no submitter
		writeString(t, w, `{"_sName": "Nameless Week", "records": []}`)
	}))
	defer server.Close()

	draft, err := newTestClient(server.URL).FetchMod(context.Background(), 999999)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Nil(t, draft)
	assert.False(t, filesRequested)
}
