package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/check"
	"github.com/dshills/docstyle/internal/graph"
	"github.com/dshills/docstyle/internal/redact"
	"github.com/dshills/docstyle/internal/render"
	"github.com/dshills/docstyle/internal/rule"
	"github.com/dshills/docstyle/internal/validate"
)

const statusValidating = "Validating..."

// validateRequest accepts the field names sent by SharePoint flows and
// list webhooks as well as the canonical ones.
type validateRequest struct {
	FileName    string `json:"fileName"`
	FileLeafRef string `json:"FileLeafRef"`
	Name        string `json:"Name"`

	FileContent string `json:"fileContent"`

	FileURL           string `json:"fileUrl"`
	FileRef           string `json:"FileRef"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
	FileRefLower      string `json:"fileRef"`

	ItemID json.RawMessage `json:"itemId"`
	ID     json.RawMessage `json:"ID"`
}

// job is a validated request.
type job struct {
	name    string
	url     string
	itemID  string
	content []byte
	docType rule.DocType
}

type validateResponse struct {
	Status           string  `json:"status"`
	IssuesFound      int     `json:"issuesFound"`
	IssuesFixed      int     `json:"issuesFixed"`
	ReportURL        *string `json:"reportUrl"`
	FixedFileContent string  `json:"fixedFileContent,omitempty"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// rawID accepts a string or a number.
func rawID(raws ...json.RawMessage) string {
	for _, raw := range raws {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			return n.String()
		}
	}
	return ""
}

func badRequest(format string, args ...any) error {
	return apperr.Wrap("server.parse", apperr.ErrBadRequest, fmt.Errorf(format, args...))
}

// parseJob checks everything that can be checked without a collaborator.
func parseJob(body []byte) (*job, error) {
	var req validateRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, badRequest("request body is not valid JSON: %v", err)
		}
	}

	j := &job{
		name:   firstNonEmpty(req.FileName, req.FileLeafRef, req.Name),
		url:    firstNonEmpty(req.FileURL, req.FileRef, req.ServerRelativeURL, req.FileRefLower),
		itemID: rawID(req.ItemID, req.ID),
	}
	if j.name == "" {
		return nil, badRequest("fileName is required")
	}
	if req.FileContent == "" && j.url == "" {
		return nil, badRequest("either fileContent or fileUrl must be provided")
	}
	dt, err := validate.DocTypeFor(j.name)
	if err != nil {
		return nil, err
	}
	j.docType = dt
	if req.FileContent != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.FileContent))
		if err != nil {
			return nil, badRequest("fileContent is not valid base64: %v", err)
		}
		j.content = data
	}
	return j, nil
}

func (s *Server) validateDocument(c *gin.Context) {
	log := logger(c)
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, badRequest("reading body: %v", err))
		return
	}
	j, err := parseJob(body)
	if err != nil {
		s.fail(c, err)
		return
	}
	log = log.With(zap.String("file", j.name), zap.String("item_id", j.itemID))
	log.Info("validation requested", zap.Bool("has_content", j.content != nil), zap.String("url", j.url))

	ctx := c.Request.Context()
	if s.d.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.d.RequestTimeout)
		defer cancel()
	}

	resp, err := s.process(ctx, log, j)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// process runs one validation after the request has been accepted.
func (s *Server) process(ctx context.Context, log *zap.Logger, j *job) (*validateResponse, error) {
	s.setStatus(ctx, log, j.itemID, statusValidating, "")

	rules, err := s.d.Rules.FetchRules(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("rules loaded", zap.Int("count", len(rules)))

	data := j.content
	if data == nil {
		if data, err = s.d.Files.Download(ctx, j.url); err != nil {
			return nil, err
		}
	}

	res, err := s.d.Validator.Validate(ctx, data, rules, j.docType)
	if err != nil {
		return nil, err
	}

	if j.url != "" && res.Fixed() {
		if _, err := s.d.Files.Upload(ctx, res.Document, j.url); err != nil {
			return nil, err
		}
		log.Info("fixed document uploaded", zap.Int("fixes", len(res.Fixes)))
	}

	report, err := render.HTML(j.name, check.Messages(res.Issues), check.Messages(res.Fixes), s.d.Now())
	if err != nil {
		return nil, err
	}
	var reportURL string
	if j.url != "" {
		if reportURL, err = s.d.Files.Upload(ctx, []byte(report), reportPath(j.url, j.name)); err != nil {
			return nil, err
		}
	}

	status := string(res.Status)
	s.setStatus(ctx, log, j.itemID, status, reportURL)
	s.saveResult(ctx, log, j, res, reportURL)

	log.Info("validation complete",
		zap.String("status", status),
		zap.Int("issues", len(res.Issues)),
		zap.Int("fixes", len(res.Fixes)))

	out := &validateResponse{
		Status:      status,
		IssuesFound: len(res.Issues),
		IssuesFixed: len(res.Fixes),
	}
	if reportURL != "" {
		out.ReportURL = &reportURL
	}
	if res.Fixed() {
		out.FixedFileContent = base64.StdEncoding.EncodeToString(res.Document)
	}
	return out, nil
}

// reportPath places the report beside the document.
func reportPath(fileURL, fileName string) string {
	dir := path.Dir(fileURL)
	if dir == "." || dir == "/" {
		return "/" + render.ReportName(fileName)
	}
	return dir + "/" + render.ReportName(fileName)
}

func (s *Server) setStatus(ctx context.Context, log *zap.Logger, itemID, status, reportURL string) {
	if s.d.Status == nil || itemID == "" {
		return
	}
	if err := s.d.Status.UpdateStatus(ctx, itemID, status, reportURL); err != nil {
		log.Warn("status update failed", zap.String("status", status), zap.String("error", redact.Redact(err.Error())))
	}
}

func (s *Server) saveResult(ctx context.Context, log *zap.Logger, j *job, res *validate.Result, reportURL string) {
	if s.d.Results == nil {
		return
	}
	resultURL, err := s.d.Results.SaveResult(ctx, graph.Record{
		FileName:    j.name,
		Status:      string(res.Status),
		IssuesFound: len(res.Issues),
		IssuesFixed: len(res.Fixes),
		ReportURL:   reportURL,
	})
	if err != nil {
		log.Warn("saving result failed", zap.String("error", redact.Redact(err.Error())))
		return
	}
	if j.url == "" {
		return
	}
	if err := s.d.Results.LinkResult(ctx, j.url, resultURL); err != nil {
		log.Warn("linking result failed", zap.String("error", redact.Redact(err.Error())))
	}
}

func (s *Server) testSharePoint(c *gin.Context) {
	if s.d.Site == nil {
		s.fail(c, apperr.Wrap("server.TestSharePoint", apperr.ErrConfiguration, fmt.Errorf("sharepoint is not configured")))
		return
	}
	site, err := s.d.Site.Site(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	title := site.DisplayName
	if title == "" {
		title = "N/A"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"siteTitle": title,
		"siteId":    site.ID,
		"siteUrl":   s.d.SiteURL,
		"webUrl":    site.WebURL,
	})
}

func (s *Server) listDocuments(c *gin.Context) {
	if s.d.Site == nil {
		s.fail(c, apperr.Wrap("server.ListDocuments", apperr.ErrConfiguration, fmt.Errorf("sharepoint is not configured")))
		return
	}
	docs, err := s.d.Site.ListDocuments(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"documentsCount": len(docs),
		"documents":      docs,
	})
}

// fail writes the error body. Caller errors are 400; everything else is
// 500 with secrets scrubbed from the message.
func (s *Server) fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	if apperr.IsClientError(err) {
		code = http.StatusBadRequest
	}
	msg := redact.Redact(err.Error())
	logger(c).Error("request failed",
		zap.Int("code", code),
		zap.String("error_type", apperr.TypeName(err)),
		zap.String("error", msg))
	c.JSON(code, gin.H{
		"status":     "error",
		"error":      msg,
		"error_type": apperr.TypeName(err),
	})
}
