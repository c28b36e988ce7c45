package repo

import (
	"filepower/backend/app/models"
	"filepower/explorer"

	"gorm.io/gorm"
)

const DefaultLogLimit = 5000

type FileLogRepository struct{ db *gorm.DB }

func NewFileLogRepository(db *gorm.DB) *FileLogRepository { return &FileLogRepository{db: db} }

func (r *FileLogRepository) Create(l *models.FileLog) error { return r.db.Create(l).Error }

type LogFilter struct {
	Action explorer.Action
	Limit  int
}

// List returns the newest rows first.
func (r *FileLogRepository) List(filter LogFilter) ([]*models.FileLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLogLimit
	}
	q := r.db.Model(&models.FileLog{})
	if filter.Action != "" && filter.Action != explorer.ActionAll {
		q = q.Where("action = ?", filter.Action)
	}
	var logs []*models.FileLog
	return logs, q.Order("created_at DESC").Order("id DESC").Limit(filter.Limit).Find(&logs).Error
}

// CountByAction returns the number of rows per action.
func (r *FileLogRepository) CountByAction() (map[explorer.Action]int64, error) {
	var rows []struct {
		Action explorer.Action
		Total  int64
	}
	if err := r.db.Model(&models.FileLog{}).Select("action, COUNT(*) AS total").Group("action").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[explorer.Action]int64, len(explorer.Actions))
	for _, a := range explorer.Actions {
		out[a] = 0
	}
	for _, row := range rows {
		out[row.Action] = row.Total
	}
	return out, nil
}
