package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[id] = contents
}

func TestInstrumentClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		fmt.Fprint(w, "<html>ok</html>")
	}))
	defer server.Close()

	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, nil, output)

	_, err := client.R().
		SetHeader("Accept-Language", "ja").
		Get(server.URL + "/Pages/PublicSubjects")
	require.NoError(t, err)

	require.Len(t, output.messages, 1)
	message := output.messages["1"]
	require.Contains(t, message, "---- REQUEST ----")
	require.Contains(t, message, "GET "+server.URL+"/Pages/PublicSubjects")
	require.Contains(t, message, "Accept-Language: ja")
	require.Contains(t, message, "X-Test: yes")
	require.True(t, strings.HasSuffix(message, "<html>ok</html>"))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	output.Write("1", "contents")
	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}

func TestFormatRequestBody(t *testing.T) {
	require.Equal(t, "", formatRequestBody(nil))

	req, err := http.NewRequest(http.MethodGet, "http://localhost", nil)
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
	require.Equal(t, "", formatRequestBody(req))

	req, err = http.NewRequest(http.MethodPost, "http://localhost", strings.NewReader("year=2025"))
	require.NoError(t, err)
	require.Equal(t, "year=2025", formatRequestBody(req))
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(t, "A: 1\nA: 2\nB: 3", formatHeaders(http.Header{
		"B": {"3"},
		"A": {"1", "2"},
	}))
}
