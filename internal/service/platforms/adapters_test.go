package platforms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func html(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

func mustFail(t *testing.T, r Result, kind FailureKind, reasonPart string) {
	t.Helper()
	if r.OK() {
		t.Fatalf("expected failure, got stats %+v", r.Stats)
	}
	if r.Stats != nil {
		t.Fatal("failed result must not carry stats")
	}
	if r.Failure.Kind != kind {
		t.Fatalf("expected kind %s, got %s", kind, r.Failure.Kind)
	}
	if !strings.Contains(r.Failure.Reason, reasonPart) {
		t.Fatalf("expected reason containing %q, got %q", reasonPart, r.Failure.Reason)
	}
}

func mustInt(t *testing.T, name string, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: expected %d, got nil", name, want)
	}
	if *got != want {
		t.Fatalf("%s: expected %d, got %d", name, want, *got)
	}
}

func TestLeetCodeFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla") {
			t.Errorf("expected browser user agent, got %q", r.Header.Get("User-Agent"))
		}
		var req leetCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Variables["username"] != "alice" {
			t.Errorf("expected username alice, got %q", req.Variables["username"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{
			"matchedUser":{
				"profile":{"ranking":48213},
				"submitStats":{"acSubmissionNum":[
					{"difficulty":"All","count":412},
					{"difficulty":"Easy","count":180},
					{"difficulty":"Medium","count":190},
					{"difficulty":"Hard","count":42}]}},
			"contestRanking":{"rating":1834.6}}}`)
	})

	r := NewLeetCode(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "alice")
	if !r.OK() {
		t.Fatalf("unexpected failure %v", r.Failure)
	}
	if r.Platform != LeetCode || r.Handle != "alice" {
		t.Fatalf("unexpected identity %s/%s", r.Platform, r.Handle)
	}
	mustInt(t, "total", r.Stats.TotalSolved, 412)
	mustInt(t, "easy", r.Stats.EasySolved, 180)
	mustInt(t, "medium", r.Stats.MediumSolved, 190)
	mustInt(t, "hard", r.Stats.HardSolved, 42)
	mustInt(t, "ranking", r.Stats.Ranking, 48213)
	mustInt(t, "rating", r.Stats.Rating, 1835)
}

func TestLeetCodeWithoutContestHistory(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"matchedUser":{"profile":{"ranking":5},
			"submitStats":{"acSubmissionNum":[{"difficulty":"All","count":3}]}},"contestRanking":null}}`)
	})

	r := NewLeetCode(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "bob")
	if !r.OK() {
		t.Fatalf("unexpected failure %v", r.Failure)
	}
	if r.Stats.Rating != nil {
		t.Fatal("rating must stay absent without contest history")
	}
	if r.Stats.EasySolved != nil {
		t.Fatal("unreported difficulty must stay absent")
	}
}

func TestLeetCodeUnknownUser(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"That user does not exist."}],"data":{"matchedUser":null}}`)
	})

	r := NewLeetCode(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "ghost")
	mustFail(t, r, SourceUnavailable, "That user does not exist.")
}

func TestLeetCodeMissingUserWithoutErrors(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"matchedUser":null}}`)
	})

	r := NewLeetCode(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "ghost")
	mustFail(t, r, SourceUnavailable, "user not found")
}

func TestLeetCodeQueryErrorsWithPartialData(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"rate limited"}],"data":{"matchedUser":{
			"profile":{"ranking":5},"submitStats":{"acSubmissionNum":[]}},"contestRanking":null}}`)
	})

	r := NewLeetCode(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "alice")
	mustFail(t, r, SourceUnavailable, "rate limited")
}

func TestLeetCodeServerError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r := NewLeetCode(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "alice")
	mustFail(t, r, SourceUnavailable, "502")
	if r.Failure.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", r.Failure.Status)
	}
}

func TestCodeforcesFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user.info" || r.URL.Query().Get("handles") != "tourist" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = io.WriteString(w, `{"status":"OK","result":[{"handle":"tourist","rating":3757,"maxRating":4009,"rank":"legendary grandmaster"}]}`)
	})

	r := NewCodeforces(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "tourist")
	if !r.OK() {
		t.Fatalf("unexpected failure %v", r.Failure)
	}
	mustInt(t, "rating", r.Stats.Rating, 3757)
	mustInt(t, "maxRating", r.Stats.MaxRating, 4009)
	if r.Stats.Rank == nil || *r.Stats.Rank != "legendary grandmaster" {
		t.Fatalf("unexpected rank %v", r.Stats.Rank)
	}
	if r.Stats.TotalSolved != nil {
		t.Fatal("codeforces reports no solved count")
	}
}

func TestCodeforcesUnratedUser(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"OK","result":[{"handle":"newbie"}]}`)
	})

	r := NewCodeforces(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "newbie")
	if !r.OK() {
		t.Fatalf("unrated user is still a success: %v", r.Failure)
	}
	if r.Stats.Rating != nil || r.Stats.Rank != nil {
		t.Fatalf("expected absent rating fields, got %+v", r.Stats)
	}
}

func TestCodeforcesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"failed status", http.StatusBadRequest, `{"status":"FAILED","comment":"handles: User with handle ghost not found"}`, "not found"},
		{"empty result", http.StatusOK, `{"status":"OK","result":[]}`, "empty result"},
		{"failed without comment", http.StatusOK, `{"status":"FAILED"}`, "FAILED"},
		{"html outage", http.StatusServiceUnavailable, `<html>down</html>`, "503"},
		{"garbage", http.StatusOK, `not json`, "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			r := NewCodeforces(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "ghost")
			mustFail(t, r, SourceUnavailable, tt.reason)
		})
	}
}

const codeChefPage = `<html><body>
<div class="rating-header">
  <div class="rating-number">1,847</div>
  <div class="rating-star"><span class="rating" style="background:#3366cc">3&#9733;</span></div>
  <small>(Highest Rating 1923)</small>
</div>
<div class="rating-ranks"><ul>
  <li><a href="/ratings/all"><strong>4521</strong></a> Global Rank</li>
  <li><a href="/ratings/all?filterBy=Country"><strong>1,203</strong></a> Country Rank</li>
</ul></div>
<h3>Total Problems Solved: 156</h3>
</body></html>`

func TestCodeChefFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/chef_1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		html(w, codeChefPage)
	})

	r := NewCodeChef(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "chef_1")
	if !r.OK() {
		t.Fatalf("unexpected failure %v", r.Failure)
	}
	mustInt(t, "rating", r.Stats.Rating, 1847)
	mustInt(t, "maxRating", r.Stats.MaxRating, 1923)
	mustInt(t, "globalRank", r.Stats.GlobalRank, 4521)
	mustInt(t, "countryRank", r.Stats.CountryRank, 1203)
	mustInt(t, "totalSolved", r.Stats.TotalSolved, 156)
	if r.Stats.Stars == nil || *r.Stats.Stars != "3★" {
		t.Fatalf("unexpected stars %v", r.Stats.Stars)
	}
}

func TestCodeChefPartialPage(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		html(w, `<div class="rating-number">1500</div>`)
	})

	r := NewCodeChef(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "chef")
	if !r.OK() {
		t.Fatalf("one field is enough: %v", r.Failure)
	}
	mustInt(t, "rating", r.Stats.Rating, 1500)
	if r.Stats.MaxRating != nil || r.Stats.GlobalRank != nil {
		t.Fatal("missing fields must stay absent")
	}
}

func TestCodeChefRatingClassVariants(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"multi class", `<div class="widget-rating rating-number">1847</div>`},
		{"trailing class", `<div class="rating-number big">1847</div>`},
		{"single quotes", `<div class='rating-number'>1847</div>`},
		{"extra attributes", `<div class="rating-number" data-x="1"> 1,847 </div>`},
		{"json fallback", `<script>var u = {"currentRating":"1847"}</script>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				html(w, tt.page)
			})
			r := NewCodeChef(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "chef")
			if !r.OK() {
				t.Fatalf("unexpected failure %v", r.Failure)
			}
			mustInt(t, "rating", r.Stats.Rating, 1847)
		})
	}
}

func TestCodeChefNothingExtracted(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		html(w, `<html><body>Welcome to CodeChef</body></html>`)
	})

	r := NewCodeChef(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "ghost")
	mustFail(t, r, SourceUnavailable, "no statistics")
}

func TestScrapedPageRejectsBinaryBody(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	r := NewCodeChef(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "chef")
	mustFail(t, r, SourceUnavailable, "content type")
}

func TestScrapedPageNotFound(t *testing.T) {
	srv := serve(t, http.NotFound)

	r := NewAtCoder(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "ghost")
	mustFail(t, r, SourceUnavailable, "404")
}

func TestAtCoderFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/sugar" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		html(w, `<table class="dl-table">
<tr><th class="no-break">Rank</th><td>4015th</td></tr>
<tr><th class="no-break">Rating</th><td><span class='user-blue'>1592</span></td></tr>
<tr><th class="no-break">Highest Rating</th><td><span class='user-blue'>1650</span>
  <span class="gray">―</span></td></tr>
</table>`)
	})

	r := NewAtCoder(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "sugar")
	if !r.OK() {
		t.Fatalf("unexpected failure %v", r.Failure)
	}
	mustInt(t, "rating", r.Stats.Rating, 1592)
	mustInt(t, "maxRating", r.Stats.MaxRating, 1650)
	mustInt(t, "globalRank", r.Stats.GlobalRank, 4015)
}

func TestGeeksforGeeksFetch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "embedded json",
			body: `<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"userInfo":
				{"total_problems_solved":233,"score":612,"institute_rank":"17"}}}}</script>`,
		},
		{
			name: "score cards",
			body: `<div class="scoreCard"><span>Coding Score</span><span class="score_card_value">612</span></div>
				<div class="scoreCard"><span>Problem Solved</span><span class="score_card_value">233</span></div>
				<div class="rank">Institute Rank <b>17</b></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/user/geek/" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				html(w, tt.body)
			})
			r := NewGeeksforGeeks(srv.Client(), WithBaseURL(srv.URL)).Fetch(context.Background(), "geek")
			if !r.OK() {
				t.Fatalf("unexpected failure %v", r.Failure)
			}
			mustInt(t, "totalSolved", r.Stats.TotalSolved, 233)
			mustInt(t, "codingScore", r.Stats.CodingScore, 612)
			mustInt(t, "instituteRank", r.Stats.InstituteRank, 17)
		})
	}
}

func TestHackerRankNotImplemented(t *testing.T) {
	r := NewHackerRank().Fetch(context.Background(), "hr_user")
	mustFail(t, r, NotImplemented, "not implemented")
	if r.Handle != "hr_user" || r.Platform != HackerRank {
		t.Fatalf("unexpected identity %s/%s", r.Platform, r.Handle)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	r := NewAtCoder(srv.Client(), WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond)).
		Fetch(context.Background(), "slow")
	mustFail(t, r, SourceUnavailable, "timed out")
}

func TestFetchThrottled(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		html(w, `<div class="rating-number">1</div>`)
	})
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	a := NewCodeChef(srv.Client(), WithBaseURL(srv.URL), WithLimiter(limiter), WithTimeout(50*time.Millisecond))

	if r := a.Fetch(context.Background(), "chef"); !r.OK() {
		t.Fatalf("first call should pass: %v", r.Failure)
	}
	mustFail(t, a.Fetch(context.Background(), "chef"), SourceUnavailable, "throttled")
}

func TestFetchHonorsCancellation(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewGeeksforGeeks(srv.Client(), WithBaseURL(srv.URL)).Fetch(ctx, "geek")
	mustFail(t, r, SourceUnavailable, "request failed")
}
