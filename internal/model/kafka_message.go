package model

import "time"

// CommitMessage is the commit payload published to Kafka by the ingestor
type CommitMessage struct {
	RepositoryID uint      `json:"repository_id"`
	Message      string    `json:"message"`
	Author       string    `json:"author"`
	CommittedAt  time.Time `json:"committed_at"`
}

// PullRequestMessage is the pull request payload published to Kafka
type PullRequestMessage struct {
	RepositoryID uint      `json:"repository_id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
}

// IssueMessage is the issue payload published to Kafka
type IssueMessage struct {
	RepositoryID uint      `json:"repository_id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewMessage is the review payload published to Kafka
type ReviewMessage struct {
	RepositoryID uint      `json:"repository_id"`
	Comment      string    `json:"comment"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
}
