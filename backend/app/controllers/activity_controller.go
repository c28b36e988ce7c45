package controllers

import (
	"net/http"
	"strings"

	"filepower/backend/app/dto"
	"filepower/backend/app/services"
	"filepower/explorer"
)

type ActivityController struct{ Activity *services.ActivityService }

func NewActivityController(activity *services.ActivityService) *ActivityController {
	return &ActivityController{Activity: activity}
}

// List serves the activity log. action is ALL or one of the log actions; q
// searches text and dates.
func (c *ActivityController) List(w http.ResponseWriter, r *http.Request) {
	action := explorer.Action(strings.ToUpper(r.URL.Query().Get("action")))
	if action != "" && action != explorer.ActionAll && !action.Valid() {
		writeMessage(w, http.StatusBadRequest, "unknown action")
		return
	}
	page, err := c.Activity.List(services.ActivityQuery{
		Action: action,
		Query:  r.URL.Query().Get("q"),
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := dto.ActivityResponse{
		Data:  make([]dto.ActivityRow, 0, len(page.Rows)),
		Stats: make(map[string]int64, len(page.Stats)),
	}
	for _, a := range page.Rows {
		resp.Data = append(resp.Data, dto.ActivityRow{
			ID: a.ID, UserEmail: a.UserEmail, UserName: a.UserName, Action: string(a.Action),
			FileName: a.FileName, FileType: a.FileType, FilePath: a.FilePath,
			OldFileName: a.OldName, NewFileName: a.NewName, CreatedAt: a.CreatedAt.UTC(),
		})
	}
	for k, v := range page.Stats {
		resp.Stats[string(k)] = v
	}
	writeJSON(w, http.StatusOK, resp)
}
