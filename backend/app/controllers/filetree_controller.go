package controllers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"filepower/backend/app/dto"
	"filepower/backend/app/metrics"
	"filepower/backend/app/middleware"
	"filepower/backend/app/models"
	"filepower/backend/app/services"
	"filepower/backend/global"

	"github.com/go-chi/chi/v5"
)

type FileTreeController struct {
	Folders *services.FolderService
	Files   *services.FileService
}

func NewFileTreeController(folders *services.FolderService, files *services.FileService) *FileTreeController {
	return &FileTreeController{Folders: folders, Files: files}
}

func (c *FileTreeController) ListFolders(w http.ResponseWriter, r *http.Request) {
	var (
		folders []*models.Folder
		err     error
	)
	if r.URL.Query().Get("all") == "true" {
		folders, err = c.Folders.ListAll()
	} else {
		folders, err = c.Folders.List(optionalID(r, "parent_id"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := dto.ListResponse[dto.FolderResponse]{Data: make([]dto.FolderResponse, 0, len(folders))}
	for _, f := range folders {
		resp.Data = append(resp.Data, toFolderResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *FileTreeController) GetFolder(w http.ResponseWriter, r *http.Request) {
	f, err := c.Folders.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFolderResponse(f))
}

func (c *FileTreeController) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFolderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := c.Folders.Create(middleware.GetActor(r.Context()), req.Name, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.MutationResponse[dto.FolderResponse]{Data: toFolderResponse(res.Record), Affected: res.Affected})
}

func (c *FileTreeController) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := c.Folders.Rename(middleware.GetActor(r.Context()), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MutationResponse[dto.FolderResponse]{Data: toFolderResponse(res.Record), Affected: res.Affected})
}

func (c *FileTreeController) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	res, err := c.Folders.Delete(middleware.GetActor(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MutationResponse[dto.FolderResponse]{Data: toFolderResponse(res.Record), Affected: res.Affected})
}

func (c *FileTreeController) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := c.Files.List(optionalID(r, "folder_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFiles(w, files)
}

// SearchFiles looks across every folder. Dates are rendered in the caller's
// zone when tz_offset (seconds east of UTC) is given. Backend failures
// surface as 502 so the client can fall back to an empty result.
func (c *FileTreeController) SearchFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := time.Local
	if v := q.Get("tz_offset"); v != "" {
		off, err := strconv.Atoi(v)
		if err != nil || off < -14*3600 || off > 14*3600 {
			writeMessage(w, http.StatusBadRequest, "invalid tz_offset")
			return
		}
		loc = time.FixedZone("client", off)
	}
	files, err := c.Files.Search(q.Get("q"), parseIntDefault(q.Get("limit"), services.DefaultSearchLimit), loc)
	if err != nil {
		global.Logger.Error().Err(err).Msg("global search")
		writeMessage(w, http.StatusBadGateway, "search unavailable")
		return
	}
	writeFiles(w, files)
}

func writeFiles(w http.ResponseWriter, files []*models.File) {
	resp := dto.ListResponse[dto.FileResponse]{Data: make([]dto.FileResponse, 0, len(files))}
	for _, f := range files {
		resp.Data = append(resp.Data, toFileResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *FileTreeController) Exists(w http.ResponseWriter, r *http.Request) {
	ok, err := c.Files.Exists(r.URL.Query().Get("name"), optionalID(r, "folder_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ExistsResponse{Exists: ok})
}

// multipart framing allowance on top of the file size limit
const multipartSlack = 1 << 20

func (c *FileTreeController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.Files.MaxBytes()+multipartSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, services.ErrTooLarge)
			return
		}
		writeMessage(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	var folderID *string
	if v := r.FormValue("folder_id"); v != "" {
		folderID = &v
	}
	mode := services.UploadMode(r.FormValue("mode"))
	if mode == "" {
		mode = services.UploadNew
	}
	if mode != services.UploadNew && mode != services.UploadKeepBoth {
		writeMessage(w, http.StatusBadRequest, "mode must be new or keep_both")
		return
	}

	res, err := c.Files.Upload(middleware.GetActor(r.Context()), services.UploadInput{
		Name:     name,
		FolderID: folderID,
		Mode:     mode,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Body:     file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.UploadBytes.Add(float64(res.Record.Size))
	writeJSON(w, http.StatusCreated, dto.MutationResponse[dto.FileResponse]{Data: toFileResponse(res.Record), Affected: res.Affected})
}

func (c *FileTreeController) Download(w http.ResponseWriter, r *http.Request) {
	f, body, size, err := c.Files.Open(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()

	contentType := f.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	disposition := "attachment"
	if inline, _ := strconv.ParseBool(r.URL.Query().Get("inline")); inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.Name}))
	w.WriteHeader(http.StatusOK)
	n, err := io.Copy(w, body)
	metrics.DownloadBytes.Add(float64(n))
	if err != nil {
		global.Logger.Warn().Err(err).Str("file", f.ID).Int64("sent", n).Msg("download interrupted")
	}
}

func (c *FileTreeController) GetFile(w http.ResponseWriter, r *http.Request) {
	f, err := c.Files.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileResponse(f))
}

func (c *FileTreeController) RenameFile(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := c.Files.Rename(middleware.GetActor(r.Context()), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MutationResponse[dto.FileResponse]{Data: toFileResponse(res.Record), Affected: res.Affected})
}

func (c *FileTreeController) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	res, err := c.Files.Move(middleware.GetActor(r.Context()), chi.URLParam(r, "id"), req.FolderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MutationResponse[dto.FileResponse]{Data: toFileResponse(res.Record), Affected: res.Affected})
}

func (c *FileTreeController) DeleteFile(w http.ResponseWriter, r *http.Request) {
	res, err := c.Files.Delete(middleware.GetActor(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MutationResponse[dto.FileResponse]{Data: toFileResponse(res.Record), Affected: res.Affected})
}

func toFolderResponse(f *models.Folder) dto.FolderResponse {
	return dto.FolderResponse{
		ID:             f.ID,
		Name:           f.Name,
		OriginalName:   f.OriginalName,
		ParentID:       f.ParentID,
		CreatedBy:      f.CreatedBy,
		CreatedByEmail: f.CreatedByEmail,
		CreatedAt:      f.CreatedAt.UTC(),
		LastRenamedBy:  f.LastRenamedBy,
		LastRenamedAt:  utc(f.LastRenamedAt),
		FileCount:      f.FileCount,
		FolderCount:    f.FolderCount,
	}
}

func toFileResponse(f *models.File) dto.FileResponse {
	return dto.FileResponse{
		ID:            f.ID,
		Name:          f.Name,
		Path:          f.Path,
		Size:          f.Size,
		MimeType:      f.MimeType,
		FolderID:      f.FolderID,
		UploadedBy:    f.UploadedBy,
		UploaderEmail: f.UploaderEmail,
		UploadedAt:    f.UploadedAt.UTC(),
		LastRenamedBy: f.LastRenamedBy,
		LastRenamedAt: utc(f.LastRenamedAt),
		LastMovedBy:   f.LastMovedBy,
		LastMovedAt:   utc(f.LastMovedAt),
	}
}
