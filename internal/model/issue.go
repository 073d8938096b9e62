package model

import (
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/pkg/db"
	"github.com/trungle/activity-dashboard/pkg/log"
)

type Issue struct {
	Model
	RepositoryID uint      `json:"repository_id" gorm:"column:repository_id;index;not null"`
	Title        string    `json:"title" gorm:"column:title;type:text"`
	Author       string    `json:"author" gorm:"column:author;type:varchar(255);index"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;index;not null"`
}

func NewIssue(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Issue, error) {
	issue := &Issue{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return issue, nil
}

func (i *Issue) TableName() string {
	return "issues"
}
