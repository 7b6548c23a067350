package db

// ProjectHistory is one recently opened project, keyed by its tsconfig
// path. ShowLibs remembers the last view flag so a reopen can restore
// it.
type ProjectHistory struct {
	Tsconfig      string `gorm:"column:tsconfig;primaryKey"`
	ShowLibs      bool   `gorm:"column:show_libs;not null;default:false"`
	FirstOpenedAt int64  `gorm:"column:first_opened_at;not null;default:0"`
	LastOpenedAt  int64  `gorm:"column:last_opened_at;not null;default:0"`
	OpenCount     int    `gorm:"column:open_count;not null;default:0"`
}

func (ProjectHistory) TableName() string { return "project_history" }
