package kosen

import (
	"context"
	"creditcounter/internal/components/telemetry"
	"creditcounter/internal/syllabus"
	"creditcounter/lib/restyutil"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const fixture = `<html><body><table><tr>
	<td><span class="mcc-hide">情報処理</span></td>
	<td>専門</td><td>必修</td><td>履修単位</td><td>2</td>
	<td class="c1m"></td><td class="c1m"></td><td class="c1m"></td><td class="c1m"></td>
	<td class="c2m">◎</td><td class="c2m"></td><td class="c2m"></td><td class="c2m"></td>
</tr></table></body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (Client, *telemetry.Recorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rec := &telemetry.Recorder{}
	client, err := NewClient(ClientOptions{
		BaseUrl:           server.URL + "/Pages/PublicSubjects",
		RequestsPerSecond: 1000,
		Timeout:           5 * time.Second,
	}, rec)
	require.NoError(t, err)
	return client, rec
}

func TestFetchPage(t *testing.T) {
	var query url.Values
	var headers http.Header
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		headers = r.Header
		fmt.Fprint(w, fixture)
	})

	dept := syllabus.DefaultDepartments[3]
	page, err := client.FetchPage(context.Background(), dept, "2025")
	require.NoError(t, err)

	require.Equal(t, "14", query.Get("school_id"))
	require.Equal(t, "14", query.Get("department_id"))
	require.Equal(t, "2025", query.Get("year"))
	require.Equal(t, "ja", query.Get("lang"))
	require.Equal(t, DefaultUserAgent, headers.Get("User-Agent"))
	require.Contains(t, headers.Get("Accept-Language"), "ja")
	require.NotEmpty(t, headers.Get("Referer"))

	records, err := syllabus.NewExtractor(telemetry.Discard{}).Extract(context.Background(), page, syllabus.ExtractOptions{
		Department: dept,
		Year:       "2025",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "J-2025-0", records[0].ID)
	require.Equal(t, 2, records[0].Grade)
	require.Equal(t, "2", records[0].CreditUnits)
}

func TestFetchPageDumpsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fixture)
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := restyutil.NewFilesystemOutput(dir)
	require.NoError(t, err)

	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL + "/Pages/PublicSubjects",
		Output:  output,
	}, telemetry.Discard{})
	require.NoError(t, err)

	dept := syllabus.DefaultDepartments[0]
	_, err = client.FetchPage(context.Background(), dept, "2025")
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "GET "+client.PageUrl(dept, "2025"))
	require.Contains(t, string(contents), "情報処理")
}

func TestFetchPageStatusError(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchPage(context.Background(), syllabus.DefaultDepartments[0], "2025")
	require.True(t, errors.Is(err, ErrUpstream))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)

	broken := rec.Reports("broken")
	require.NotEmpty(t, broken)
	require.Equal(t, "kosen_scraper: client.fetch-page", broken[len(broken)-1].ID)
}

func TestFetchPageCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fixture)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchPage(ctx, syllabus.DefaultDepartments[0], "2025")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPageUrl(t *testing.T) {
	client, err := NewClient(ClientOptions{}, telemetry.Discard{})
	require.NoError(t, err)

	require.Equal(
		t,
		"https://syllabus.kosen-k.go.jp/Pages/PublicSubjects?department_id=11&lang=ja&school_id=14&year=2024",
		client.PageUrl(syllabus.DefaultDepartments[0], "2024"),
	)

	_, err = NewClient(ClientOptions{BaseUrl: "/relative"}, telemetry.Discard{})
	require.Error(t, err)
}
