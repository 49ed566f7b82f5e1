package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCrawlCommandFeeds(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var detailRequests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/feed.json" {
			detailRequests.Add(1)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("per") == "1" {
			fmt.Fprint(w, `{"total_count": 2, "cards": [{"id": 1}]}`)
			return
		}
		fmt.Fprint(w, `{"total_count": 2, "cards": [
			{"id": 1, "description": "first", "keywords": ["a"], "created_at": "2022-01-01"},
			{"id": 2, "description": "second", "keywords": null}
		]}`)
	}))
	defer server.Close()

	out := filepath.Join(t.TempDir(), "feeds.yaml")
	rootCmd.SetArgs([]string{
		"crawl", "-q",
		"--type", "feeds",
		"--base-url", server.URL,
		"--insecure=false",
		"-o", out,
		"plant",
	})
	require.Equal(t, 0, Execute(context.Background()))
	assert.Zero(t, detailRequests.Load())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "plant", records[0]["query"])
	assert.Equal(t, "feeds", records[0]["type"])
	assert.Equal(t, "first", records[0]["text"])
	assert.Equal(t, []interface{}{"a"}, records[0]["keywords"])
	assert.Equal(t, "2022-01-01", records[0]["timestamp"])

	_, hasURL := records[1]["url"]
	assert.False(t, hasURL)
	assert.Nil(t, records[1]["keywords"])
	assert.Nil(t, records[1]["timestamp"])
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "ohoucrawl.yaml")

	rootCmd.SetArgs([]string{"config", "init", "--config", path, "-q"})
	require.Equal(t, 0, Execute(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# ohoucrawl configuration file"))

	rootCmd.SetArgs([]string{"config", "init", "--config", path, "-q"})
	assert.Equal(t, 1, Execute(context.Background()), "init must not overwrite")

	rootCmd.SetArgs([]string{"config", "validate", "--config", path, "-q"})
	assert.Equal(t, 0, Execute(context.Background()))
}
