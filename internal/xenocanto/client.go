package xenocanto

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	xchttp "github.com/soundsafari/xenocanto-dl/internal/http"
	"github.com/soundsafari/xenocanto-dl/internal/model"
	"github.com/soundsafari/xenocanto-dl/internal/xenocanto/dto"
)

// DefaultSearchURL is the public xeno-canto search endpoint.
const DefaultSearchURL = "https://xeno-canto.org/api/2/recordings"

// SearchResult holds everything a search returned: the authoritative total
// reported by the API and the per-page record lists, in page order.
type SearchResult struct {
	// NumRecordings is the total record count reported on page 1.
	NumRecordings int

	// Pages holds one record list per page, in page order.
	Pages [][]*model.Recording
}

// Client walks the paginated xeno-canto search API.
//
// Page 1 is fetched first to learn the page and record totals; subsequent
// pages reuse the same query with a page parameter. Any failure to reach or
// parse the endpoint is fatal for the whole search, and surfaces on the
// page-1 fetch before further pages are requested.
//
// Example usage:
//
//	client := xenocanto.NewClient(httpClient, xenocanto.DefaultSearchURL)
//	result, err := client.Search(ctx, "Phaethornis anthophilus")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d recordings across %d pages\n", result.NumRecordings, len(result.Pages))
type Client struct {
	httpClient *xchttp.Client
	searchURL  string
}

// NewClient creates a search client against the given endpoint. An empty
// searchURL falls back to DefaultSearchURL.
func NewClient(httpClient *xchttp.Client, searchURL string) *Client {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &Client{
		httpClient: httpClient,
		searchURL:  searchURL,
	}
}

// Search fetches every result page for the query and returns the raw record
// lists in page order.
//
// A query matching zero recordings is not an error: the result has
// NumRecordings == 0 and no pages. Connectivity or parse failures abort the
// whole search with no partial result.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	first, err := c.fetchPage(ctx, query, 1)
	if err != nil {
		return nil, fmt.Errorf("query xeno-canto: %w", err)
	}

	result := &SearchResult{NumRecordings: int(first.NumRecordings)}
	if first.NumRecordings == 0 {
		return result, nil
	}

	result.Pages = append(result.Pages, convertPage(first))

	for page := 2; page <= int(first.NumPages); page++ {
		p, err := c.fetchPage(ctx, query, page)
		if err != nil {
			return nil, fmt.Errorf("query xeno-canto page %d: %w", page, err)
		}
		result.Pages = append(result.Pages, convertPage(p))
	}

	return result, nil
}

// fetchPage fetches and parses one result page.
func (c *Client) fetchPage(ctx context.Context, query string, page int) (*dto.Page, error) {
	var p dto.Page
	if err := c.httpClient.GetJSON(ctx, c.pageURL(query, page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// pageURL builds the request URL for one page. The query is URL-encoded
// with spaces as %20, which is what the API documents; page 1 carries no
// page parameter.
func (c *Client) pageURL(query string, page int) string {
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	u := fmt.Sprintf("%s?query=%s", c.searchURL, q)
	if page > 1 {
		u = fmt.Sprintf("%s&page=%d", u, page)
	}
	return u
}

// convertPage normalizes one page of API records into model records. Every
// record comes out with the full canonical field set: keys the payload
// omitted are nil, present values (including empty strings) are unchanged.
func convertPage(p *dto.Page) []*model.Recording {
	recs := make([]*model.Recording, 0, len(p.Recordings))
	for i := range p.Recordings {
		recs = append(recs, p.Recordings[i].ToRecording())
	}
	return recs
}
