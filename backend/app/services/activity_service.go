package services

import (
	"strconv"
	"time"

	"filepower/backend/app/models"
	"filepower/backend/app/repo"
	"filepower/backend/global"
	"filepower/explorer"
)

type ActivityService struct {
	logs  *repo.FileLogRepository
	users *repo.UserRepository
}

func NewActivityService(logs *repo.FileLogRepository, users *repo.UserRepository) *ActivityService {
	return &ActivityService{logs: logs, users: users}
}

// Record appends a log row. Failures are logged and swallowed so they never
// fail the mutation that caused them.
func (s *ActivityService) Record(actor Actor, entry models.FileLog) {
	entry.UserID = actor.ID
	entry.UserEmail = actor.Email
	if err := s.logs.Create(&entry); err != nil {
		global.Logger.Warn().Err(err).Str("action", string(entry.Action)).Str("file", entry.FileName).Msg("activity log write failed")
	}
}

type ActivityQuery struct {
	Action   explorer.Action
	Query    string
	Limit    int
	Location *time.Location
}

type ActivityPage struct {
	Rows  []explorer.Activity
	Stats map[explorer.Action]int64
}

// List returns the newest activity with author names resolved, filtered by
// action and query.
func (s *ActivityService) List(q ActivityQuery) (*ActivityPage, error) {
	logs, err := s.logs.List(repo.LogFilter{Action: q.Action, Limit: q.Limit})
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(logs))
	seen := make(map[string]bool)
	for _, l := range logs {
		if !seen[l.UserEmail] {
			seen[l.UserEmail] = true
			emails = append(emails, l.UserEmail)
		}
	}
	names, err := s.users.NamesByEmail(emails)
	if err != nil {
		global.Logger.Warn().Err(err).Msg("resolve activity names")
		names = map[string]string{}
	}

	rows := make([]explorer.Activity, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, explorer.Activity{
			ID:        strconv.FormatUint(uint64(l.ID), 10),
			UserEmail: l.UserEmail,
			UserName:  explorer.DisplayName(l.UserEmail, names),
			Action:    l.Action,
			FileName:  l.FileName,
			FileType:  l.FileType,
			FilePath:  l.FilePath,
			OldName:   l.OldFileName,
			NewName:   l.NewFileName,
			CreatedAt: l.CreatedAt,
		})
	}
	rows = explorer.FilterActivity(rows, explorer.ActivityFilter{Query: q.Query, Location: q.Location})

	stats, err := s.logs.CountByAction()
	if err != nil {
		return nil, err
	}
	return &ActivityPage{Rows: rows, Stats: stats}, nil
}
