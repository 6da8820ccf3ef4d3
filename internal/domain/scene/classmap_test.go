package scene

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `index,mid,display_name
0,/m/09x0r,Speech
1,/m/05zppz,"Male speech, man speaking"
2,/m/04rlf,Music
3,/m/02qldy,"Narration, monologue"
`

func TestParseClassMap(t *testing.T) {
	names, err := parseClassMap([]byte(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Speech", "Male speech, man speaking", "Music", "Narration, monologue"}, names)
}

func TestParseClassMap_Empty(t *testing.T) {
	_, err := parseClassMap([]byte("index,mid,display_name\n"))
	assert.Error(t, err)
}

func TestLoadClassMap_FromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	names, err := LoadClassMap(context.Background(), ClassMapConfig{URL: server.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Len(t, names, 4)
}

func TestLoadClassMap_FetchFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := LoadClassMap(context.Background(), ClassMapConfig{URL: server.URL, Timeout: 2 * time.Second})
	assert.Error(t, err)
}

func TestLoadClassMap_LocalPathOverridesURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "class_map.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	names, err := LoadClassMap(context.Background(), ClassMapConfig{
		URL:  "http://127.0.0.1:1/unreachable",
		Path: path,
	})
	require.NoError(t, err)
	assert.Equal(t, "Speech", names[0])
}

func TestLoadClassMap_NoSource(t *testing.T) {
	_, err := LoadClassMap(context.Background(), ClassMapConfig{})
	assert.Error(t, err)
}
