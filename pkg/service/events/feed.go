package events

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/utils/safe"
)

// DefaultPageSize is how many event posts are requested per feed page.
const DefaultPageSize = 100

// wpEvent is one event post as published by the WordPress feed. Only the
// fields the transformer reads are declared.
type wpEvent struct {
	Date  string `json:"date"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	ACF struct {
		InformacionDestacada struct {
			EventDate string `json:"event_date"`
			Organizer string `json:"organizer"`
			Hours     []struct {
				Hour string `json:"hour"`
			} `json:"hours"`
		} `json:"informacion_destacada"`
		InformacionTienda []struct {
			Cards []struct {
				Data struct {
					Date        string `json:"date"`
					Hour        string `json:"hour"`
					Place       string `json:"place"`
					Description string `json:"description"`
				} `json:"data"`
			} `json:"cards"`
		} `json:"informacion_tienda"`
	} `json:"acf"`
}

// Feed pages event posts out of the mall's WordPress API.
type Feed struct {
	client   *http.Client
	baseURL  string
	pageSize int
}

// FeedOption configures a Feed
type FeedOption func(*Feed)

// WithHTTPClient overrides the HTTP client used for feed requests.
func WithHTTPClient(client *http.Client) FeedOption {
	return func(x *Feed) {
		x.client = client
	}
}

// WithPageSize overrides how many posts are requested per page.
func WithPageSize(n int) FeedOption {
	return func(x *Feed) {
		if n > 0 {
			x.pageSize = n
		}
	}
}

// NewFeed creates a Feed reading from baseURL, e.g.
// "https://mut.cl/wp-json/wp/v2/event".
func NewFeed(baseURL string, options ...FeedOption) *Feed {
	feed := &Feed{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  baseURL,
		pageSize: DefaultPageSize,
	}
	for _, opt := range options {
		opt(feed)
	}
	return feed
}

// FetchPage retrieves one page of event posts, page numbering from 1, and
// transforms them into EventRecords. An empty result marks the end of the
// feed; WordPress answers HTTP 400 for a page past the last one, which is
// reported as an empty page rather than an error.
func (x *Feed) FetchPage(ctx context.Context, page int) ([]*model.EventRecord, error) {
	query := url.Values{
		"per_page": []string{strconv.Itoa(x.pageSize)},
		"page":     []string{strconv.Itoa(page)},
	}
	reqURL := x.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create feed request", goerr.V("url", reqURL))
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch events page", goerr.V("page", page))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode == http.StatusBadRequest {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("events feed returned non-success status",
			goerr.V("status", resp.StatusCode),
			goerr.V("page", page),
			goerr.V("body", string(body)))
	}

	var posts []wpEvent
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, goerr.Wrap(err, "failed to decode events page", goerr.V("page", page))
	}

	records := make([]*model.EventRecord, 0, len(posts))
	for _, post := range posts {
		records = append(records, transformEvent(&post))
	}
	return records, nil
}

// transformEvent flattens one WordPress post into an EventRecord.
func transformEvent(post *wpEvent) *model.EventRecord {
	featured := post.ACF.InformacionDestacada

	var card struct {
		Date        string
		Hour        string
		Place       string
		Description string
	}
	if tienda := post.ACF.InformacionTienda; len(tienda) > 0 && len(tienda[0].Cards) > 0 {
		data := tienda[0].Cards[0].Data
		card.Date = data.Date
		card.Hour = data.Hour
		card.Place = data.Place
		card.Description = data.Description
	}

	// Card hour wins over the featured-info hour list
	hour := card.Hour
	if hour == "" && len(featured.Hours) > 0 {
		parts := make([]string, 0, len(featured.Hours))
		for _, h := range featured.Hours {
			if h.Hour != "" {
				parts = append(parts, h.Hour)
			}
		}
		hour = strings.Join(parts, ", ")
	}

	title := cleanText(post.Title.Rendered)
	if title == "" {
		title = "Sin título"
	}

	return &model.EventRecord{
		Title:       title,
		EventDate:   featured.EventDate,
		DateText:    cleanText(card.Date),
		TimeText:    cleanText(hour),
		Place:       cleanText(card.Place),
		Description: truncate(cleanText(card.Description), model.EventDescriptionLimit),
		Organizer:   cleanText(featured.Organizer),
		Link:        post.Link,
	}
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// cleanText strips HTML tags and the entities WordPress leaves in rendered
// titles, and collapses runs of whitespace.
func cleanText(text string) string {
	if text == "" {
		return ""
	}
	text = htmlTagRe.ReplaceAllString(text, "")
	text = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&#8230;", "...",
	).Replace(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
