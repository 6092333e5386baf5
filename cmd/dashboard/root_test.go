package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLoadSettingsPrecedence(t *testing.T) {
	t.Setenv("SURVEYBOARD_API_URL", "http://env.example/api")
	cfgFile = ""
	t.Cleanup(func() { cfgFile = "" })

	cmd := exportCmd
	s, err := loadSettings(cmd)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.APIURL != "http://env.example/api" {
		t.Fatalf("APIURL = %q, want env value", s.APIURL)
	}
	if s.Format != "json" {
		t.Fatalf("Format = %q", s.Format)
	}
}

func TestLoadSettingsConfigFile(t *testing.T) {
	t.Setenv("SURVEYBOARD_API_URL", "")
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	if err := os.WriteFile(path, []byte("api_url: http://file.example/api\nformat: csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	s, err := loadSettings(healthCmd)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.APIURL != "http://file.example/api" || s.Format != "csv" {
		t.Fatalf("settings = %+v", s)
	}
}

func TestExportCommandPostsOnce(t *testing.T) {
	var mu sync.Mutex
	var posts []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		posts = append(posts, r.Method+" "+r.URL.Path+" "+string(b))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"progressId":"ES_1"}}`))
	}))
	defer ts.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export", "SV_123", "--api-url", ts.URL + "/api"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	if err := Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(posts) != 1 || posts[0] != `POST /api/surveys/SV_123/export {"format":"json"}` {
		t.Fatalf("posts = %v", posts)
	}
	if !strings.Contains(out.String(), `"progressId": "ES_1"`) {
		t.Fatalf("output = %s", out.String())
	}
}
