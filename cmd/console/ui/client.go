package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"filepower/backend/app/dto"

	"github.com/rs/zerolog/log"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
	Remaining  int // attempts left before lockout, -1 when not reported
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// StatusOf returns the HTTP status behind err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to the filepower HTTP API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
	User    dto.UserResponse
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// transferClient has no overall timeout; downloads and uploads are bounded
// by their context instead.
func (c *Client) transferClient() *http.Client {
	return &http.Client{Transport: c.HTTP.Transport}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Remaining: -1}
	var body dto.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		apiErr.RetryAfter = time.Duration(v) * time.Second
	}
	if v, err := strconv.Atoi(resp.Header.Get("X-Attempts-Remaining")); err == nil {
		apiErr.Remaining = v
	}
	return apiErr
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return err
	}
	defer resp.Body.Close()
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("api")
	if resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func withID(path, key string, id *string) string {
	if id == nil {
		return path
	}
	return path + "?" + key + "=" + url.QueryEscape(*id)
}

func (c *Client) Login(ctx context.Context, email, password string) (dto.UserResponse, error) {
	var out dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return dto.UserResponse{}, err
	}
	c.Token = out.AccessToken
	c.User = out.User
	return out.User, nil
}

func (c *Client) Logout() {
	c.Token = ""
	c.User = dto.UserResponse{}
}

func (c *Client) ListFolders(ctx context.Context, parentID *string) ([]dto.FolderResponse, error) {
	var out dto.ListResponse[dto.FolderResponse]
	return out.Data, c.do(ctx, http.MethodGet, withID("/api/folders", "parent_id", parentID), nil, &out)
}

func (c *Client) AllFolders(ctx context.Context) ([]dto.FolderResponse, error) {
	var out dto.ListResponse[dto.FolderResponse]
	return out.Data, c.do(ctx, http.MethodGet, "/api/folders?all=true", nil, &out)
}

func (c *Client) CreateFolder(ctx context.Context, name string, parentID *string) (dto.MutationResponse[dto.FolderResponse], error) {
	var out dto.MutationResponse[dto.FolderResponse]
	return out, c.do(ctx, http.MethodPost, "/api/folders", dto.CreateFolderRequest{Name: name, ParentID: parentID}, &out)
}

func (c *Client) RenameFolder(ctx context.Context, id, name string) (dto.MutationResponse[dto.FolderResponse], error) {
	var out dto.MutationResponse[dto.FolderResponse]
	return out, c.do(ctx, http.MethodPatch, "/api/folders/"+url.PathEscape(id), dto.RenameRequest{Name: name}, &out)
}

func (c *Client) DeleteFolder(ctx context.Context, id string) (dto.MutationResponse[dto.FolderResponse], error) {
	var out dto.MutationResponse[dto.FolderResponse]
	return out, c.do(ctx, http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, &out)
}

func (c *Client) ListFiles(ctx context.Context, folderID *string) ([]dto.FileResponse, error) {
	var out dto.ListResponse[dto.FileResponse]
	return out.Data, c.do(ctx, http.MethodGet, withID("/api/files", "folder_id", folderID), nil, &out)
}

// SearchFiles runs a search across every folder. Dates match as they render
// in the local zone.
func (c *Client) SearchFiles(ctx context.Context, query string) ([]dto.FileResponse, error) {
	_, offset := time.Now().Zone()
	q := url.Values{"q": {query}, "tz_offset": {strconv.Itoa(offset)}}
	var out dto.ListResponse[dto.FileResponse]
	return out.Data, c.do(ctx, http.MethodGet, "/api/files/search?"+q.Encode(), nil, &out)
}

func (c *Client) FileExists(ctx context.Context, name string, folderID *string) (bool, error) {
	q := url.Values{"name": {name}}
	if folderID != nil {
		q.Set("folder_id", *folderID)
	}
	var out dto.ExistsResponse
	return out.Exists, c.do(ctx, http.MethodGet, "/api/files/exists?"+q.Encode(), nil, &out)
}

func (c *Client) RenameFile(ctx context.Context, id, name string) (dto.MutationResponse[dto.FileResponse], error) {
	var out dto.MutationResponse[dto.FileResponse]
	return out, c.do(ctx, http.MethodPatch, "/api/files/"+url.PathEscape(id), dto.RenameRequest{Name: name}, &out)
}

func (c *Client) MoveFile(ctx context.Context, id string, folderID *string) (dto.MutationResponse[dto.FileResponse], error) {
	var out dto.MutationResponse[dto.FileResponse]
	return out, c.do(ctx, http.MethodPost, "/api/files/"+url.PathEscape(id)+"/move", dto.MoveRequest{FolderID: folderID}, &out)
}

func (c *Client) DeleteFile(ctx context.Context, id string) (dto.MutationResponse[dto.FileResponse], error) {
	var out dto.MutationResponse[dto.FileResponse]
	return out, c.do(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, &out)
}

// Upload streams the file at path into folderID. mode is "new" or
// "keep_both".
func (c *Client) Upload(ctx context.Context, path string, folderID *string, mode string) (dto.MutationResponse[dto.FileResponse], error) {
	var out dto.MutationResponse[dto.FileResponse]
	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			if folderID != nil {
				if err := mw.WriteField("folder_id", *folderID); err != nil {
					return err
				}
			}
			if err := mw.WriteField("mode", mode); err != nil {
				return err
			}
			part, err := mw.CreateFormFile("file", filepath.Base(path))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files", pr)
	if err != nil {
		pr.Close()
		return out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.transferClient().Do(req)
	if err != nil {
		pr.Close()
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return out, readAPIError(resp)
	}
	return out, json.NewDecoder(resp.Body).Decode(&out)
}

// Download copies the content of file id into w. progress is called after
// every chunk with the bytes written so far and the expected total (-1 when
// unknown).
func (c *Client) Download(ctx context.Context, id string, w io.Writer, progress func(done, total int64)) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/files/"+url.PathEscape(id)+"/content", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.transferClient().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, readAPIError(resp)
	}
	total := resp.ContentLength
	var done int64
	buf := make([]byte, 32<<10)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return done, werr
			}
			done += int64(n)
			if progress != nil {
				progress(done, total)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return done, rerr
		}
	}
	if total >= 0 && done != total {
		return done, fmt.Errorf("download ended at %d of %d bytes", done, total)
	}
	return done, nil
}

// ContentURL is the link that opens file id in a browser tab.
func (c *Client) ContentURL(id string) string {
	return c.BaseURL + "/api/files/" + url.PathEscape(id) + "/content?inline=1"
}

// Preview reads at most limit bytes of file id. total is the full size, or
// -1 when the server did not report it.
func (c *Client) Preview(ctx context.Context, id string, limit int64) (data []byte, total int64, err error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/files/"+url.PathEscape(id)+"/content?inline=1", nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.transferClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, 0, readAPIError(resp)
	}
	data, err = io.ReadAll(io.LimitReader(resp.Body, limit))
	return data, resp.ContentLength, err
}

func (c *Client) Logs(ctx context.Context, action, query string) (dto.ActivityResponse, error) {
	q := url.Values{}
	if action != "" {
		q.Set("action", action)
	}
	if query != "" {
		q.Set("q", query)
	}
	var out dto.ActivityResponse
	return out, c.do(ctx, http.MethodGet, "/api/logs?"+q.Encode(), nil, &out)
}

func (c *Client) Users(ctx context.Context, query string) ([]dto.PersonResponse, error) {
	var out dto.ListResponse[dto.PersonResponse]
	return out.Data, c.do(ctx, http.MethodGet, "/api/users?q="+url.QueryEscape(query), nil, &out)
}

func (c *Client) Lookup(ctx context.Context, email string) (dto.PersonResponse, error) {
	var out dto.PersonResponse
	return out, c.do(ctx, http.MethodGet, "/api/users/lookup?email="+url.QueryEscape(email), nil, &out)
}
