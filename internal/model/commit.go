package model

import (
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/pkg/db"
	"github.com/trungle/activity-dashboard/pkg/log"
)

// Commit keeps its own timestamp column name, committed_at, unlike the
// other three activity tables which use created_at.
type Commit struct {
	Model
	RepositoryID uint      `json:"repository_id" gorm:"column:repository_id;index;not null"`
	Message      string    `json:"message" gorm:"column:message;type:text"`
	Author       string    `json:"author" gorm:"column:author;type:varchar(255);index"`
	CommittedAt  time.Time `json:"committed_at" gorm:"column:committed_at;index;not null"`
}

func NewCommit(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Commit, error) {
	commit := &Commit{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return commit, nil
}

func (c *Commit) TableName() string {
	return "commits"
}
