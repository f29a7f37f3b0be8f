package platforms

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// CodeforcesAdapter reads ratings from the Codeforces REST API.
type CodeforcesAdapter struct {
	req requester
}

// NewCodeforces creates a Codeforces adapter.
func NewCodeforces(client *http.Client, opts ...Option) *CodeforcesAdapter {
	return &CodeforcesAdapter{req: newRequester(client, "https://codeforces.com", opts)}
}

type codeforcesResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  []struct {
		Handle    string `json:"handle"`
		Rating    *int   `json:"rating"`
		MaxRating *int   `json:"maxRating"`
		Rank      string `json:"rank"`
	} `json:"result"`
}

func (a *CodeforcesAdapter) Platform() Platform { return Codeforces }

// Fetch succeeds only when the API reports status "OK" with a non-empty result.
func (a *CodeforcesAdapter) Fetch(ctx context.Context, handle string) Result {
	var out codeforcesResponse
	status, f := a.req.getJSON(ctx, "/api/user.info?handles="+url.QueryEscape(handle), &out)
	if f != nil {
		return failed(Codeforces, handle, f)
	}
	if out.Status != "OK" {
		reason := strings.TrimSpace(out.Comment)
		if reason == "" {
			reason = "api returned status " + out.Status
		}
		return failed(Codeforces, handle, &Failure{Kind: SourceUnavailable, Reason: reason, Status: status})
	}
	if len(out.Result) == 0 {
		return failed(Codeforces, handle, unavailable("empty result"))
	}

	u := out.Result[0]
	stats := &Stats{Rating: u.Rating, MaxRating: u.MaxRating}
	if u.Rank != "" {
		rank := u.Rank
		stats.Rank = &rank
	}
	return succeeded(Codeforces, handle, stats)
}

var _ Adapter = (*CodeforcesAdapter)(nil)
