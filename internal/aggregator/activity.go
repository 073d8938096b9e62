package aggregator

import (
	"time"

	"github.com/trungle/activity-dashboard/internal/model"
)

// Kind discriminates the four activity sources. The set is closed.
type Kind string

const (
	KindCommit      Kind = "commit"
	KindPullRequest Kind = "pull_request"
	KindIssue       Kind = "issue"
	KindReview      Kind = "review"
)

// ActivityRecord is the normalized unit the dashboard renders. Records are
// rebuilt on every refresh and never persisted. The timestamp comes from
// committed_at for commits and created_at for everything else.
type ActivityRecord struct {
	Kind           Kind      `json:"kind"`
	Headline       string    `json:"headline"`
	Author         string    `json:"author"`
	Timestamp      time.Time `json:"timestamp"`
	RepositoryName string    `json:"repositoryName"`
}

func fromCommit(c model.Commit, names map[uint]string) ActivityRecord {
	return ActivityRecord{
		Kind:           KindCommit,
		Headline:       c.Message,
		Author:         c.Author,
		Timestamp:      c.CommittedAt,
		RepositoryName: names[c.RepositoryID],
	}
}

func fromPullRequest(p model.PullRequest, names map[uint]string) ActivityRecord {
	return ActivityRecord{
		Kind:           KindPullRequest,
		Headline:       p.Title,
		Author:         p.Author,
		Timestamp:      p.CreatedAt,
		RepositoryName: names[p.RepositoryID],
	}
}

func fromIssue(i model.Issue, names map[uint]string) ActivityRecord {
	return ActivityRecord{
		Kind:           KindIssue,
		Headline:       i.Title,
		Author:         i.Author,
		Timestamp:      i.CreatedAt,
		RepositoryName: names[i.RepositoryID],
	}
}

func fromReview(r model.Review, names map[uint]string) ActivityRecord {
	return ActivityRecord{
		Kind:           KindReview,
		Headline:       r.Comment,
		Author:         r.Author,
		Timestamp:      r.CreatedAt,
		RepositoryName: names[r.RepositoryID],
	}
}
