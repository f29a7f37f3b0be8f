package platforms

import (
	"context"
	"net/http"
	"net/url"

	"github.com/janisto/codestats/internal/extract"
)

// PageAdapter scrapes a public profile page with a rule table. CodeChef,
// AtCoder and GeeksforGeeks differ only in their path, rules and mapping.
type PageAdapter struct {
	platform Platform
	req      requester
	path     func(handle string) string
	table    extract.Table
	toStats  func(extract.Values) *Stats
}

func (a *PageAdapter) Platform() Platform { return a.platform }

// Fetch downloads the page and applies the rule table. A page from which no
// field could be extracted counts as a failure: it is usually a redirect to a
// landing page, a login wall or a changed layout.
func (a *PageAdapter) Fetch(ctx context.Context, handle string) Result {
	markup, f := a.req.page(ctx, a.path(handle))
	if f != nil {
		return failed(a.platform, handle, f)
	}
	values := a.table.Apply(markup)
	if values.Len() == 0 {
		return failed(a.platform, handle, unavailable("no statistics found on profile page"))
	}
	return succeeded(a.platform, handle, a.toStats(values))
}

const (
	fieldTotalSolved   = "total_solved"
	fieldRating        = "rating"
	fieldMaxRating     = "max_rating"
	fieldStars         = "stars"
	fieldGlobalRank    = "global_rank"
	fieldCountryRank   = "country_rank"
	fieldCodingScore   = "coding_score"
	fieldInstituteRank = "institute_rank"
)

var codeChefRules = extract.Table{
	{Name: fieldRating, Kind: extract.Number, Rules: extract.Patterns(
		`class=["'][^"']*\brating-number\b[^"']*["'][^>]*>\s*([\d,]+)`,
		`"currentRating"\s*:\s*"?(\d+)`,
	)},
	{Name: fieldMaxRating, Kind: extract.Number, Rules: extract.Patterns(
		`(?s)Highest Rating\s*(?:<[^>]*>\s*)*\(?\s*([\d,]+)`,
		`"highestRating"\s*:\s*"?(\d+)`,
	)},
	{Name: fieldStars, Kind: extract.Text, Rules: extract.Patterns(
		`(?s)<span class="rating"[^>]*>(.*?)</span>`,
		`(?s)class="rating-star"[^>]*>(.*?)</div>`,
	)},
	{Name: fieldGlobalRank, Kind: extract.Number, Rules: extract.Patterns(
		`(?s)<strong>\s*([\d,]+)\s*</strong>\s*(?:</a>\s*)?Global Rank`,
		`"globalRank"\s*:\s*"?(\d+)`,
	)},
	{Name: fieldCountryRank, Kind: extract.Number, Rules: extract.Patterns(
		`(?s)<strong>\s*([\d,]+)\s*</strong>\s*(?:</a>\s*)?Country Rank`,
		`"countryRank"\s*:\s*"?(\d+)`,
	)},
	{Name: fieldTotalSolved, Kind: extract.Number, Rules: extract.Patterns(
		`Total Problems Solved:\s*([\d,]+)`,
	)},
}

// NewCodeChef creates the CodeChef profile scraper.
func NewCodeChef(client *http.Client, opts ...Option) *PageAdapter {
	return &PageAdapter{
		platform: CodeChef,
		req:      newRequester(client, "https://www.codechef.com", opts),
		path:     func(h string) string { return "/users/" + url.PathEscape(h) },
		table:    codeChefRules,
		toStats: func(v extract.Values) *Stats {
			return &Stats{
				Rating:      v.IntPtr(fieldRating),
				MaxRating:   v.IntPtr(fieldMaxRating),
				Stars:       v.TextPtr(fieldStars),
				GlobalRank:  v.IntPtr(fieldGlobalRank),
				CountryRank: v.IntPtr(fieldCountryRank),
				TotalSolved: v.IntPtr(fieldTotalSolved),
			}
		},
	}
}

var atCoderRules = extract.Table{
	{Name: fieldRating, Kind: extract.Number, Rules: extract.Patterns(
		`(?s)>Rating</th>\s*<td[^>]*>\s*(?:<[^>]*>\s*)*([\d,]+)`,
	)},
	{Name: fieldMaxRating, Kind: extract.Number, Rules: extract.Patterns(
		`(?s)>Highest Rating</th>\s*<td[^>]*>\s*(?:<[^>]*>\s*)*([\d,]+)`,
	)},
	{Name: fieldGlobalRank, Kind: extract.Number, Rules: extract.Patterns(
		`(?s)>Rank</th>\s*<td[^>]*>\s*([\d,]+)(?:st|nd|rd|th)?\s*<`,
	)},
}

// NewAtCoder creates the AtCoder profile scraper.
func NewAtCoder(client *http.Client, opts ...Option) *PageAdapter {
	return &PageAdapter{
		platform: AtCoder,
		req:      newRequester(client, "https://atcoder.jp", opts),
		path:     func(h string) string { return "/users/" + url.PathEscape(h) },
		table:    atCoderRules,
		toStats: func(v extract.Values) *Stats {
			return &Stats{
				Rating:     v.IntPtr(fieldRating),
				MaxRating:  v.IntPtr(fieldMaxRating),
				GlobalRank: v.IntPtr(fieldGlobalRank),
			}
		},
	}
}

var geeksforGeeksRules = extract.Table{
	{Name: fieldTotalSolved, Kind: extract.Number, Rules: extract.Patterns(
		`"total_problems_solved"\s*:\s*"?(\d+)`,
		`(?s)Problems?\s+Solved\s*(?:<[^>]*>\s*)*([\d,]+)`,
	)},
	{Name: fieldCodingScore, Kind: extract.Number, Rules: extract.Patterns(
		`"score"\s*:\s*"?(\d+)`,
		`(?s)Coding\s+Score\s*(?:<[^>]*>\s*)*([\d,]+)`,
	)},
	{Name: fieldInstituteRank, Kind: extract.Number, Rules: extract.Patterns(
		`"institute_rank"\s*:\s*"?(\d+)`,
		`(?s)Institute\s+Rank\s*(?:<[^>]*>\s*)*([\d,]+)`,
	)},
}

// NewGeeksforGeeks creates the GeeksforGeeks profile scraper.
func NewGeeksforGeeks(client *http.Client, opts ...Option) *PageAdapter {
	return &PageAdapter{
		platform: GeeksforGeeks,
		req:      newRequester(client, "https://www.geeksforgeeks.org", opts),
		path:     func(h string) string { return "/user/" + url.PathEscape(h) + "/" },
		table:    geeksforGeeksRules,
		toStats: func(v extract.Values) *Stats {
			return &Stats{
				TotalSolved:   v.IntPtr(fieldTotalSolved),
				CodingScore:   v.IntPtr(fieldCodingScore),
				InstituteRank: v.IntPtr(fieldInstituteRank),
			}
		},
	}
}

var _ Adapter = (*PageAdapter)(nil)
