package model

import (
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/pkg/db"
	"github.com/trungle/activity-dashboard/pkg/log"
)

type PullRequest struct {
	Model
	RepositoryID uint      `json:"repository_id" gorm:"column:repository_id;index;not null"`
	Title        string    `json:"title" gorm:"column:title;type:text"`
	Author       string    `json:"author" gorm:"column:author;type:varchar(255);index"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;index;not null"`
}

func NewPullRequest(config *cfg.Config, logger log.Logger, db *db.Mysql) (*PullRequest, error) {
	pr := &PullRequest{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return pr, nil
}

func (p *PullRequest) TableName() string {
	return "pull_requests"
}
