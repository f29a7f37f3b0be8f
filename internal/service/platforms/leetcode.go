package platforms

import (
	"context"
	"math"
	"net/http"
	"strings"
)

const leetCodeQuery = `query userProfile($username: String!) {
  matchedUser(username: $username) {
    profile { ranking }
    submitStats { acSubmissionNum { difficulty count } }
  }
  contestRanking: userContestRanking(username: $username) { rating }
}`

// LeetCodeAdapter reads solved counts through LeetCode's GraphQL endpoint.
type LeetCodeAdapter struct {
	req requester
}

// NewLeetCode creates a LeetCode adapter.
func NewLeetCode(client *http.Client, opts ...Option) *LeetCodeAdapter {
	return &LeetCodeAdapter{req: newRequester(client, "https://leetcode.com", opts)}
}

type leetCodeRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type leetCodeResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Data struct {
		MatchedUser *struct {
			Profile struct {
				Ranking *int `json:"ranking"`
			} `json:"profile"`
			SubmitStats struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
		ContestRanking *struct {
			Rating *float64 `json:"rating"`
		} `json:"contestRanking"`
	} `json:"data"`
}

func (a *LeetCodeAdapter) Platform() Platform { return LeetCode }

func (a *LeetCodeAdapter) Fetch(ctx context.Context, handle string) Result {
	var out leetCodeResponse
	extra := http.Header{}
	extra.Set("Referer", a.req.baseURL+"/u/"+handle+"/")
	payload := leetCodeRequest{Query: leetCodeQuery, Variables: map[string]string{"username": handle}}
	if f := a.req.postJSON(ctx, "/graphql", payload, &out, extra); f != nil {
		return failed(LeetCode, handle, f)
	}
	// Partial data next to query errors is not trusted.
	if len(out.Errors) > 0 {
		return failed(LeetCode, handle, unavailable("query error: %s", out.Errors[0].Message))
	}

	user := out.Data.MatchedUser
	if user == nil {
		return failed(LeetCode, handle, unavailable("user not found"))
	}

	stats := &Stats{Ranking: user.Profile.Ranking}
	for _, n := range user.SubmitStats.AcSubmissionNum {
		switch strings.ToLower(n.Difficulty) {
		case "all":
			stats.TotalSolved = intPtr(n.Count)
		case "easy":
			stats.EasySolved = intPtr(n.Count)
		case "medium":
			stats.MediumSolved = intPtr(n.Count)
		case "hard":
			stats.HardSolved = intPtr(n.Count)
		}
	}
	if cr := out.Data.ContestRanking; cr != nil && cr.Rating != nil {
		stats.Rating = intPtr(int(math.Round(*cr.Rating)))
	}
	return succeeded(LeetCode, handle, stats)
}

var _ Adapter = (*LeetCodeAdapter)(nil)
