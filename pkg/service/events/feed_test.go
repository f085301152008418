package events_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/service/events"
)

const wpEventJSON = `{
	"date": "2024-05-20T10:30:27",
	"link": "https://mut.cl/event/feria-diseno/",
	"title": {"rendered": "Feria de Diseño &amp; Arte&#8230;"},
	"acf": {
		"informacion_destacada": {
			"event_date": "20240620",
			"organizer": "MUT",
			"hours": [{"hour": "10:00 a 20:00"}]
		},
		"informacion_tienda": [{
			"cards": [{
				"data": {
					"date": "20 de junio",
					"hour": "",
					"place": "<strong>Plaza central</strong>",
					"description": "<p>Una feria con m&aacute;s de 50 expositores.</p>"
				}
			}]
		}]
	}
}`

func TestFeedFetchPage(t *testing.T) {
	var gotQuery []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = append(gotQuery, r.URL.RawQuery)
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprintf(w, "[%s]", wpEventJSON)
		case "2":
			fmt.Fprint(w, "[]")
		default:
			// WordPress answers 400 past the last page
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	feed := events.NewFeed(srv.URL, events.WithPageSize(100))

	records, err := feed.FetchPage(ctx, 1)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1).Required()
	gt.Value(t, gotQuery[0]).Equal("page=1&per_page=100")

	rec := records[0]
	gt.Value(t, rec.Title).Equal("Feria de Diseño & Arte...")
	gt.Value(t, rec.EventDate).Equal("20240620")
	gt.Value(t, rec.DateText).Equal("20 de junio")
	gt.Value(t, rec.TimeText).Equal("10:00 a 20:00")
	gt.Value(t, rec.Place).Equal("Plaza central")
	gt.Bool(t, strings.Contains(rec.Description, "expositores")).True()
	gt.Bool(t, strings.Contains(rec.Description, "<p>")).False()
	gt.Value(t, rec.Organizer).Equal("MUT")
	gt.Value(t, rec.Link).Equal("https://mut.cl/event/feria-diseno/")

	// Empty page marks the end
	records, err = feed.FetchPage(ctx, 2)
	gt.NoError(t, err)
	gt.Array(t, records).Length(0)

	// So does a 400
	records, err = feed.FetchPage(ctx, 3)
	gt.NoError(t, err)
	gt.Array(t, records).Length(0)
}

func TestFeedNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	feed := events.NewFeed(srv.URL)
	_, err := feed.FetchPage(context.Background(), 1)
	gt.Error(t, err)
}

func TestFeedCardHourWinsOverFeaturedHours(t *testing.T) {
	body := strings.Replace(wpEventJSON, `"hour": ""`, `"hour": "11:00 a 19:00"`, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s]", body)
	}))
	defer srv.Close()

	feed := events.NewFeed(srv.URL)
	records, err := feed.FetchPage(context.Background(), 1)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1).Required()
	gt.Value(t, records[0].TimeText).Equal("11:00 a 19:00")
}

func TestFeedDescriptionTruncation(t *testing.T) {
	long := strings.Repeat("municipalidad ", 30)
	body := strings.Replace(wpEventJSON,
		"Una feria con m&aacute;s de 50 expositores.", long, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s]", body)
	}))
	defer srv.Close()

	feed := events.NewFeed(srv.URL)
	records, err := feed.FetchPage(context.Background(), 1)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1).Required()
	gt.Number(t, len([]rune(records[0].Description))).Equal(200)
}
