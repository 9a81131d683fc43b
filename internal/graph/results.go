package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/apperr"
)

// Record is one row of the validation results list.
type Record struct {
	FileName    string
	Status      string
	IssuesFound int
	IssuesFixed int
	ReportURL   string
}

type hyperlink struct {
	Description string `json:"Description"`
	URL         string `json:"Url"`
}

// UpdateStatus writes the validation status columns of a document item.
// reportURL is written only when non-empty.
func (c *Client) UpdateStatus(ctx context.Context, itemID, status, reportURL string) error {
	if itemID == "" {
		return fmt.Errorf("graph.UpdateStatus: empty item id")
	}
	id, err := c.siteID(ctx)
	if err != nil {
		return err
	}
	fields := map[string]any{
		"ValidationStatus": status,
		"LastValidated":    c.now().UTC().Format(time.RFC3339),
	}
	if reportURL != "" {
		fields["ValidationReport"] = reportURL
	}
	ref := "/sites/" + id + "/lists/" + url.PathEscape(c.cfg.DocumentsList) + "/items/" + url.PathEscape(itemID) + "/fields"
	return c.do(ctx, "update_status", http.MethodPatch, ref, fields, "", nil)
}

// SaveResult adds rec to the results list and returns the new item's URL.
func (c *Client) SaveResult(ctx context.Context, rec Record) (string, error) {
	id, err := c.siteID(ctx)
	if err != nil {
		return "", err
	}
	items := "/sites/" + id + "/lists/" + url.PathEscape(c.cfg.ResultsList) + "/items"
	body := map[string]any{"fields": map[string]any{
		"Title":          "Validation: " + rec.FileName,
		"FileName":       rec.FileName,
		"ValidationDate": c.now().UTC().Format(time.RFC3339),
		"Status":         rec.Status,
		"IssuesFound":    strconv.Itoa(rec.IssuesFound),
		"IssuesFixed":    strconv.Itoa(rec.IssuesFixed),
	}}
	var item struct {
		ID     string `json:"id"`
		WebURL string `json:"webUrl"`
	}
	if err := c.do(ctx, "save_result", http.MethodPost, items, body, "", &item); err != nil {
		return "", err
	}

	if rec.ReportURL != "" {
		patch := map[string]any{"fields": map[string]any{
			"ReportLink": hyperlink{Description: "View HTML Report", URL: rec.ReportURL},
		}}
		if err := c.do(ctx, "save_result", http.MethodPatch, items+"/"+url.PathEscape(item.ID), patch, "", nil); err != nil {
			return "", err
		}
	}

	if item.WebURL != "" {
		return item.WebURL, nil
	}
	s, err := c.Site(ctx)
	if err != nil {
		return "", err
	}
	return s.WebURL + "/Lists/" + url.PathEscape(c.cfg.ResultsList) + "/DispForm.aspx?ID=" + url.QueryEscape(item.ID), nil
}

// LinkResult points the ValidationResultLink column of the document at
// filePath to resultURL.
func (c *Client) LinkResult(ctx context.Context, filePath, resultURL string) error {
	id, err := c.siteID(ctx)
	if err != nil {
		return err
	}
	rel := c.DriveRelativePath(filePath)
	if rel == filePath || rel == "/" {
		return apperr.Wrap("graph.LinkResult", apperr.ErrNotFound, fmt.Errorf("%q is not inside %q", filePath, c.cfg.LibraryRoot))
	}

	var item struct {
		ListItem *struct {
			ID string `json:"id"`
		} `json:"listItem"`
	}
	if err := c.do(ctx, "link_result", http.MethodGet, "/sites/"+id+"/drive/root:"+escapePath(rel)+"?expand=listItem", nil, "", &item); err != nil {
		return err
	}
	if item.ListItem == nil || item.ListItem.ID == "" {
		return apperr.Wrap("graph.LinkResult", apperr.ErrNotFound, fmt.Errorf("no list item for %s", rel))
	}

	var list struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "link_result", http.MethodGet, "/sites/"+id+"/drive/list", nil, "", &list); err != nil {
		return err
	}

	body := map[string]any{"fields": map[string]any{
		"ValidationResultLink": hyperlink{Description: "View Validation Result", URL: resultURL},
	}}
	ref := "/sites/" + id + "/lists/" + url.PathEscape(list.ID) + "/items/" + url.PathEscape(item.ListItem.ID)
	if err := c.do(ctx, "link_result", http.MethodPatch, ref, body, "", nil); err != nil {
		return err
	}
	c.log.Info("result linked", zap.String("path", rel), zap.String("list_item", item.ListItem.ID))
	return nil
}
