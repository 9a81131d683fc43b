package graph

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DriveItem is a file in the document library root.
type DriveItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	WebURL       string    `json:"webUrl"`
	LastModified time.Time `json:"lastModified"`
}

// DriveRelativePath converts a server-relative URL such as
// "/sites/Style/Shared Documents/a/b.docx" to the drive path "/a/b.docx".
// A path naming the library folder itself maps to "/". Other paths are
// returned unchanged.
func (c *Client) DriveRelativePath(p string) string {
	root := c.cfg.LibraryRoot
	if i := strings.Index(p, root+"/"); i >= 0 {
		return "/" + p[i+len(root)+1:]
	}
	if strings.HasSuffix(p, root) {
		return "/"
	}
	return p
}

func (c *Client) contentRef(ctx context.Context, p string) (string, error) {
	id, err := c.siteID(ctx)
	if err != nil {
		return "", err
	}
	rel := c.DriveRelativePath(p)
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return "/sites/" + id + "/drive/root:" + escapePath(rel) + ":/content", nil
}

// Download returns the content of the file at p.
func (c *Client) Download(ctx context.Context, p string) ([]byte, error) {
	if p == "" {
		return nil, fmt.Errorf("graph.Download: empty path")
	}
	ref, err := c.contentRef(ctx, p)
	if err != nil {
		return nil, err
	}
	var data []byte
	if err := c.do(ctx, "download", http.MethodGet, ref, nil, "", &data); err != nil {
		return nil, err
	}
	c.log.Info("file downloaded", zap.String("path", p), zap.Int("bytes", len(data)))
	return data, nil
}

// Upload writes data to p, replacing any existing file, and returns the
// file's web URL.
func (c *Client) Upload(ctx context.Context, data []byte, p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("graph.Upload: empty path")
	}
	ref, err := c.contentRef(ctx, p)
	if err != nil {
		return "", err
	}
	var item struct {
		WebURL string `json:"webUrl"`
	}
	if err := c.do(ctx, "upload", http.MethodPut, ref, data, "application/octet-stream", &item); err != nil {
		return "", err
	}
	c.log.Info("file uploaded", zap.String("path", p), zap.String("web_url", item.WebURL))
	return item.WebURL, nil
}

// ListDocuments returns the files (not folders) in the library root.
func (c *Client) ListDocuments(ctx context.Context) ([]DriveItem, error) {
	id, err := c.siteID(ctx)
	if err != nil {
		return nil, err
	}
	var page struct {
		Value []struct {
			ID           string    `json:"id"`
			Name         string    `json:"name"`
			Size         int64     `json:"size"`
			WebURL       string    `json:"webUrl"`
			LastModified time.Time `json:"lastModifiedDateTime"`
			File         *struct{} `json:"file"`
		} `json:"value"`
	}
	if err := c.do(ctx, "list_documents", http.MethodGet, "/sites/"+id+"/drive/root/children", nil, "", &page); err != nil {
		return nil, err
	}
	docs := make([]DriveItem, 0, len(page.Value))
	for _, it := range page.Value {
		if it.File == nil {
			continue
		}
		docs = append(docs, DriveItem{ID: it.ID, Name: it.Name, Size: it.Size, WebURL: it.WebURL, LastModified: it.LastModified})
	}
	return docs, nil
}
