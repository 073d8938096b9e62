package model

import (
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/pkg/db"
	"github.com/trungle/activity-dashboard/pkg/log"
)

type Review struct {
	Model
	RepositoryID uint      `json:"repository_id" gorm:"column:repository_id;index;not null"`
	Comment      string    `json:"comment" gorm:"column:comment;type:text"`
	Author       string    `json:"author" gorm:"column:author;type:varchar(255);index"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;index;not null"`
}

func NewReview(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Review, error) {
	review := &Review{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return review, nil
}

func (r *Review) TableName() string {
	return "reviews"
}
