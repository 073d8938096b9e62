// Data transfer objects mapping GitHub REST API payloads.

package githubapi

import "time"

type User struct {
	Login string `json:"login"`
}

type CommitResponse struct {
	Sha    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type PullResponse struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueResponse covers the issues listing. GitHub returns pull requests in
// the same listing; those carry a non-nil pull_request block and are
// dropped by the ingestor.
type IssueResponse struct {
	Title       string    `json:"title"`
	User        User      `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type ReviewResponse struct {
	Body        string    `json:"body"`
	User        User      `json:"user"`
	SubmittedAt time.Time `json:"submitted_at"`
}
