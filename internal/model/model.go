package model

import (
	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/pkg/db"
	"github.com/trungle/activity-dashboard/pkg/log"
)

type Model struct {
	Config *cfg.Config `json:"-" gorm:"-"`
	Logger log.Logger  `json:"-" gorm:"-"`
	Mysql  *db.Mysql   `json:"-" gorm:"-"`
	ID     uint        `json:"id" gorm:"primaryKey"`
}
