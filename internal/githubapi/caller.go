// Package githubapi is the single place that talks to the GitHub REST API.
// It serves two consumers: the registrar's existence probe and the
// ingestor's paginated activity fetches. Authentication uses the access
// token from the configuration when present.

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/limiter"
	"github.com/trungle/activity-dashboard/pkg/log"
)

const perPage = 100

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	client      *http.Client
	rateLimiter *limiter.RateLimiter
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	rps := config.GithubApi.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	return &Caller{
		Logger: logger,
		Config: config,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: limiter.NewRateLimiter(rps),
	}, nil
}

// CheckRepo probes whether owner/repo exists upstream. A 404 is a clean
// "does not exist", not an error.
func (c *Caller) CheckRepo(ctx context.Context, name string) (bool, error) {
	resp, err := c.get(ctx, fmt.Sprintf("%s/repos/%s", c.Config.GithubApi.ApiUrl, name), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("cannot received response: %v", resp.Status)
	}
}

// FetchCommits pages through the commits listing of one repository.
func (c *Caller) FetchCommits(ctx context.Context, name string, since, until *time.Time) ([]CommitResponse, error) {
	var all []CommitResponse
	err := c.fetchPaginated(ctx, fmt.Sprintf("%s/repos/%s/commits", c.Config.GithubApi.ApiUrl, name), since, until, func(body []byte) (int, error) {
		var page []CommitResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for _, item := range page {
			if until != nil && item.Commit.Author.Date.After(*until) {
				continue
			}
			all = append(all, item)
		}
		return len(page), nil
	})
	return all, err
}

// FetchPulls pages through the pull request listing. The pulls endpoint
// ignores since/until, so the window is enforced client side the way the
// dashboard's ingestion always has.
func (c *Caller) FetchPulls(ctx context.Context, name string, since, until *time.Time) ([]PullResponse, error) {
	var all []PullResponse
	err := c.fetchPaginated(ctx, fmt.Sprintf("%s/repos/%s/pulls", c.Config.GithubApi.ApiUrl, name), since, until, func(body []byte) (int, error) {
		var page []PullResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for _, item := range page {
			if until != nil && item.CreatedAt.After(*until) {
				continue
			}
			all = append(all, item)
		}
		return len(page), nil
	})
	return all, err
}

// FetchIssues pages through the issues listing, pull requests included;
// callers filter those out.
func (c *Caller) FetchIssues(ctx context.Context, name string, since, until *time.Time) ([]IssueResponse, error) {
	var all []IssueResponse
	err := c.fetchPaginated(ctx, fmt.Sprintf("%s/repos/%s/issues", c.Config.GithubApi.ApiUrl, name), since, until, func(body []byte) (int, error) {
		var page []IssueResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for _, item := range page {
			if until != nil && item.CreatedAt.After(*until) {
				continue
			}
			all = append(all, item)
		}
		return len(page), nil
	})
	return all, err
}

// FetchReviews pages through the reviews of one pull request.
func (c *Caller) FetchReviews(ctx context.Context, name string, number int, since, until *time.Time) ([]ReviewResponse, error) {
	var all []ReviewResponse
	err := c.fetchPaginated(ctx, fmt.Sprintf("%s/repos/%s/pulls/%d/reviews", c.Config.GithubApi.ApiUrl, name, number), since, until, func(body []byte) (int, error) {
		var page []ReviewResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		for _, item := range page {
			if until != nil && item.SubmittedAt.After(*until) {
				continue
			}
			all = append(all, item)
		}
		return len(page), nil
	})
	return all, err
}

// fetchPaginated walks pages of per_page=100 until a short or empty page.
// decode parses one page body and reports how many raw items it held.
func (c *Caller) fetchPaginated(ctx context.Context, baseUrl string, since, until *time.Time, decode func([]byte) (int, error)) error {
	page := 1
	for {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))
		if since != nil {
			params.Set("since", since.Format(time.RFC3339))
		}
		if until != nil {
			params.Set("until", until.Format(time.RFC3339))
		}

		resp, err := c.get(ctx, baseUrl, params)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("cannot received response: %v", resp.Status)
		}

		body, err := readAll(resp)
		if err != nil {
			return err
		}

		count, err := decode(body)
		if err != nil {
			return err
		}
		if count < perPage {
			return nil
		}
		page++
	}
}

// get issues one request, gated by the per-second limiter, waiting out the
// GitHub rate limit window when the API reports exhaustion.
func (c *Caller) get(ctx context.Context, rawUrl string, params url.Values) (*http.Response, error) {
	for {
		if err := c.waitForSlot(ctx); err != nil {
			return nil, err
		}

		fullUrl := rawUrl
		if len(params) > 0 {
			fullUrl = rawUrl + "?" + params.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		if c.Config.GithubApi.AccessToken != "" {
			req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}

		limited, wait := c.rateLimitWait(ctx, resp)
		if !limited {
			return resp, nil
		}
		resp.Body.Close()
		c.Logger.Warn(ctx, "Rate limit hit, waiting %v before retrying %s", wait.Round(time.Second), rawUrl)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Caller) waitForSlot(ctx context.Context) error {
	for !c.rateLimiter.Allow() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

// rateLimitWait inspects the rate limit headers. On exhaustion it returns
// how long to sleep until the reported reset, falling back to the
// configured default when the header cannot be parsed.
func (c *Caller) rateLimitWait(ctx context.Context, resp *http.Response) (bool, time.Duration) {
	if resp.StatusCode != http.StatusForbidden || resp.Header.Get("X-RateLimit-Remaining") != "0" {
		return false, 0
	}

	fallback := time.Duration(c.Config.GithubApi.RateLimitResetMin) * time.Minute
	resetTimeStr := resp.Header.Get("X-RateLimit-Reset")
	resetTimeInt, err := strconv.ParseInt(resetTimeStr, 10, 64)
	if err != nil {
		c.Logger.Warn(ctx, "Rate limit hit with unparseable reset time, waiting %v", fallback)
		return true, fallback
	}

	wait := time.Until(time.Unix(resetTimeInt, 0))
	if wait <= 0 {
		wait = fallback
	}
	return true, wait
}

func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
