package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/hawkdove/internal/extract"
	"github.com/ppiankov/hawkdove/internal/model"
)

const calendarPage = `<html><body>
<a href="/newsevents/pressreleases/monetary20240131a.htm">Statement</a>
<a href="/newsevents/pressreleases/monetary20231213a.htm">Statement</a>
<a href="/newsevents/pressreleases/monetary20231213a.htm">HTML</a>
<a href="/newsevents/pressreleases/monetary20231213a1.pdf">Implementation Note</a>
<a href="/monetarypolicy/fomcpresconf20240131.htm">Press Conference</a>
</body></html>`

const minutesPage2024 = `<html><body>
<a href="/monetarypolicy/fomcminutes20240131.htm">Minutes</a>
<a href="/monetarypolicy/files/fomcminutes20240131.pdf">PDF</a>
<a href="/monetarypolicy/files/fomcminutes20231213.pdf">Minutes (PDF)</a>
<a href="/monetarypolicy/fomcprojtabl20240320.htm">Projection Materials</a>
<a href="/monetarypolicy/minutes.htm">Minutes (undated)</a>
</body></html>`

func TestSourcesFromLinks(t *testing.T) {
	links, err := extract.ExtractLinks(calendarPage, "https://www.federalreserve.gov/monetarypolicy/fomccalendars.htm")
	if err != nil {
		t.Fatal(err)
	}

	got := SourcesFromLinks(links, model.DocStatement)
	var urls []string
	for _, s := range got {
		urls = append(urls, s.URL)
		if s.DocType != model.DocStatement {
			t.Errorf("%s: doc type %s", s.URL, s.DocType)
		}
	}
	want := []string{
		"https://www.federalreserve.gov/newsevents/pressreleases/monetary20240131a.htm",
		"https://www.federalreserve.gov/newsevents/pressreleases/monetary20231213a.htm",
	}
	if diff := cmp.Diff(want, urls); diff != "" {
		t.Errorf("statement sources mismatch (-want +got):\n%s", diff)
	}
	if !got[0].Date.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", got[0].Date)
	}
}

func TestHrefDate(t *testing.T) {
	if _, ok := HrefDate("/monetarypolicy/fomcminutes20241399.htm"); ok {
		t.Error("invalid month should be rejected")
	}
	if d, ok := HrefDate("/files/fomcminutes20230201.pdf"); !ok || d.Format(time.DateOnly) != "2023-02-01" {
		t.Errorf("HrefDate = %v, %v", d, ok)
	}
}

func TestDiscoverer_Discover(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/monetarypolicy/fomccalendars.htm", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, calendarPage)
	})
	mux.HandleFunc("/monetarypolicy/fomchistorical2024.htm", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, minutesPage2024)
	})
	// 2023 page is missing and must not fail discovery
	server := httptest.NewServer(mux)
	defer server.Close()
	noSleep(t)

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	d := NewDiscoverer(fetcher, nil, model.FetchConfig{
		StatementsURL:      server.URL + "/monetarypolicy/fomccalendars.htm",
		MinutesURLTemplate: server.URL + "/monetarypolicy/fomchistorical%d.htm",
		YearsBack:          2,
	}, nil)
	d.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	sources, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	type entry struct {
		Date    string
		DocType model.DocType
		Path    string
	}
	var got []entry
	for _, s := range sources {
		got = append(got, entry{s.Date.Format(time.DateOnly), s.DocType, s.URL[len(server.URL):]})
	}
	want := []entry{
		{"2023-12-13", model.DocStatement, "/newsevents/pressreleases/monetary20231213a.htm"},
		{"2024-01-31", model.DocMinutes, "/monetarypolicy/fomcminutes20240131.htm"},
		{"2024-01-31", model.DocStatement, "/newsevents/pressreleases/monetary20240131a.htm"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverer_Canceled(t *testing.T) {
	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	d := NewDiscoverer(fetcher, nil, model.FetchConfig{
		StatementsURL: "http://127.0.0.1:1/calendar.htm",
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Discover(ctx); err == nil {
		t.Error("expected context error")
	}
}
