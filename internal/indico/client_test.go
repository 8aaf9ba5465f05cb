package indico

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/indico/internal/dateutil"
	"github.com/javiermolinar/indico/internal/timetable"
)

const sampleExport = `{
  "count": 1,
  "results": {
    "42": {
      "20250602": {
        "s10": {
          "entryType": "Session",
          "id": "s10",
          "title": "Kernel",
          "slotTitle": "Morning",
          "room": "Main Hall",
          "startDate": {"date": "2025-06-02", "time": "09:00:00", "tz": "UTC"},
          "endDate": {"date": "2025-06-02", "time": "12:00:00", "tz": "UTC"},
          "entries": {
            "c4051": {
              "entryType": "Contribution",
              "id": "c4051",
              "contributionId": 4051,
              "friendlyId": 7,
              "title": "Scheduler internals",
              "room": "Main Hall",
              "presenters": [{"name": "Ada Lovelace", "email": "ada@example.org"}, {"name": "Grace Hopper", "email": ""}],
              "startDate": {"date": "2025-06-02", "time": "09:00:00", "tz": "UTC"},
              "endDate": {"date": "2025-06-02", "time": "09:30:00", "tz": "UTC"}
            }
          }
        },
        "b3": {
          "entryType": "Break",
          "id": "b3",
          "title": "Coffee",
          "startDate": {"date": "2025-06-02", "time": "12:00", "tz": "UTC"},
          "endDate": {"date": "2025-06-02", "time": "12:30", "tz": "UTC"}
        }
      },
      "20250603": {
        "c4060": {
          "entryType": "Contribution",
          "id": "c4060",
          "contributionId": 4060,
          "friendlyId": 9,
          "title": "Closing",
          "startDate": {"date": "2025-06-03", "time": "16:00:00", "tz": "UTC"},
          "endDate": {"date": "2025-06-03", "time": "16:30:00", "tz": "UTC"}
        }
      }
    }
  }
}`

func byID(entries []timetable.Entry) map[string]timetable.Entry {
	result := make(map[string]timetable.Entry, len(entries))
	for _, e := range entries {
		result[e.ID] = e
	}
	return result
}

func TestParseTimetable(t *testing.T) {
	entries, err := ParseTimetable([]byte(sampleExport), "42", dateutil.DateRange{})
	if err != nil {
		t.Fatalf("ParseTimetable failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	got := byID(entries)

	s10 := got["s10"]
	if s10.Kind != timetable.KindSessionBlock || s10.Title != "Kernel: Morning" || !s10.IsTopLevel() {
		t.Errorf("unexpected session block: %+v", s10)
	}

	c := got["c4051"]
	if c.ParentID != "s10" {
		t.Errorf("c4051 parent = %q, want s10", c.ParentID)
	}
	if c.ContributionID != "4051" || c.FriendlyID != "7" || c.Room != "Main Hall" {
		t.Errorf("unexpected contribution metadata: %+v", c)
	}
	if len(c.Speakers) != 2 || c.Speakers[0] != "ada@example.org" || c.Speakers[1] != "Grace Hopper" {
		t.Errorf("speakers = %v", c.Speakers)
	}
	if want := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC); !c.Start.Equal(want) {
		t.Errorf("start = %v, want %v", c.Start, want)
	}

	b3 := got["b3"]
	if b3.Kind != timetable.KindBreak || b3.Duration() != 30*time.Minute {
		t.Errorf("unexpected break: %+v", b3)
	}

	if _, err := timetable.Build(entries); err != nil {
		t.Errorf("parsed entries do not build a tree: %v", err)
	}
}

func TestParseTimetable_SpeakersAndAuthors(t *testing.T) {
	body := `{"results": {"42": {"20250602": {"c1": {
	  "entryType": "Contribution",
	  "id": "c1",
	  "contributionId": 1,
	  "title": "Tiering",
	  "roomFullname": "Room 2 (Annex)",
	  "presenters": [{"name": "Ada Lovelace", "email": "ada@example.org"}],
	  "primaryauthors": [{"name": "Ada Lovelace", "email": "ADA@example.org"}, {"name": "Alan Turing", "email": "alan@example.org"}],
	  "coauthors": [{"name": "Grace Hopper", "email": ""}],
	  "startDate": {"date": "2025-06-02", "time": "09:00:00", "tz": "UTC"},
	  "endDate": {"date": "2025-06-02", "time": "09:30:00", "tz": "UTC"}
	}}}}}`

	entries, err := ParseTimetable([]byte(body), "42", dateutil.DateRange{})
	if err != nil {
		t.Fatalf("ParseTimetable failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	c := entries[0]
	want := []string{"ada@example.org", "alan@example.org", "Grace Hopper"}
	if !slices.Equal(c.Speakers, want) {
		t.Errorf("speakers = %v, want %v", c.Speakers, want)
	}
	if c.Room != "Room 2 (Annex)" {
		t.Errorf("room = %q", c.Room)
	}
}

func TestParseTimetable_DayRange(t *testing.T) {
	days, err := dateutil.NewDateRange("2025-06-03", "")
	if err != nil {
		t.Fatal(err)
	}
	entries, err := ParseTimetable([]byte(sampleExport), "42", days)
	if err != nil {
		t.Fatalf("ParseTimetable failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "c4060" {
		t.Errorf("expected only c4060, got %v", entries)
	}
}

func TestParseTimetable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		conf    string
		wantErr error
	}{
		{"not json", "<html>", "42", ErrInvalidResponse},
		{"unknown conference", sampleExport, "43", ErrConferenceNotFound},
		{
			name:    "unknown entry type",
			body:    `{"results":{"42":{"20250602":{"x1":{"entryType":"Poster","id":"x1","startDate":{"date":"2025-06-02","time":"09:00:00"},"endDate":{"date":"2025-06-02","time":"10:00:00"}}}}}}`,
			conf:    "42",
			wantErr: timetable.ErrMalformedTimetable,
		},
		{
			name:    "missing start",
			body:    `{"results":{"42":{"20250602":{"c1":{"entryType":"Contribution","id":"c1","endDate":{"date":"2025-06-02","time":"10:00:00"}}}}}}`,
			conf:    "42",
			wantErr: timetable.ErrMalformedTimetable,
		},
		{
			name:    "bad day key",
			body:    `{"results":{"42":{"June 2":{}}}}`,
			conf:    "42",
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTimetable([]byte(tc.body), tc.conf, dateutil.DateRange{})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "token"); !errors.Is(err, ErrMissingBaseURL) {
		t.Errorf("got %v, want ErrMissingBaseURL", err)
	}
	if _, err := New("https://events.example.org", " "); !errors.Is(err, ErrMissingToken) {
		t.Errorf("got %v, want ErrMissingToken", err)
	}
	if _, err := New("ftp://events.example.org", "token"); err == nil {
		t.Error("expected error for non-http scheme")
	}
	c, err := New("https://events.example.org/", "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.BaseURL() != "https://events.example.org" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
}

func TestClient_FetchTimetable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export/timetable/42.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Cache-Control"); got != "no-cache" {
			t.Errorf("Cache-Control = %q", got)
		}
		if got := r.URL.Query().Get("from"); got != "2025-06-02" {
			t.Errorf("from = %q", got)
		}
		if r.URL.Query().Has("to") {
			t.Error("to should not be sent for an open range")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleExport))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "secret")
	if err != nil {
		t.Fatal(err)
	}
	days, _ := dateutil.NewDateRange("2025-06-02", "")
	entries, err := c.FetchTimetable(context.Background(), "42", days)
	if err != nil {
		t.Fatalf("FetchTimetable failed: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("expected 4 entries, got %d", len(entries))
	}
}

func TestClient_TokenExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login/?next=%2Fexport", http.StatusFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "old")
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.FetchTimetable(context.Background(), "42", dateutil.DateRange{})
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("got %v, want ErrTokenExpired", err)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no access", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "secret")
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.RawTimetable(context.Background(), "42", dateutil.DateRange{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusForbidden || !strings.Contains(statusErr.Body, "no access") {
		t.Errorf("unexpected status error: %+v", statusErr)
	}
	if !strings.Contains(err.Error(), "failed with 403") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestClient_PersistEntry(t *testing.T) {
	var gotPath, gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("startDate")
		gotEnd = r.URL.Query().Get("endDate")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "secret", WithTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}

	loc := time.FixedZone("CEST", 2*60*60)
	entry := timetable.Entry{
		ID:    "c4051",
		Kind:  timetable.KindContribution,
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 6, 2, 9, 30, 0, 0, loc),
	}
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // 11:00 local
	end := start.Add(30 * time.Minute)

	updated, err := c.PersistEntry(context.Background(), "42", entry, start, end)
	if err != nil {
		t.Fatalf("PersistEntry failed: %v", err)
	}
	if gotPath != "/event/42/manage/timetable/entry/4051/edit/datetime" {
		t.Errorf("path = %s", gotPath)
	}
	if gotStart != "2025-06-02T11:00:00" || gotEnd != "2025-06-02T11:30:00" {
		t.Errorf("sent %s - %s", gotStart, gotEnd)
	}
	if !updated.Start.Equal(start) || updated.ID != "c4051" {
		t.Errorf("unexpected snapshot: %+v", updated)
	}
}

func TestClient_PersistEntryRejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "secret")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	_, err = c.PersistEntry(context.Background(), "42", timetable.Entry{ID: "c1", Start: now, End: now.Add(time.Hour)}, now, now.Add(time.Hour))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("got %v, want ErrInvalidResponse", err)
	}
}
