package clients

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type DocumentRequest struct {
	Name   string
	Markup string
	Width  int
	Height int
}

// DocumentRenderer turns markup of an explicit pixel size into a file and
// returns a reference to it.
type DocumentRenderer interface {
	RenderToFile(ctx context.Context, req DocumentRequest) (string, error)
}

type fileDocumentRenderer struct {
	dir string
	log *logrus.Logger
}

func NewFileDocumentRenderer(dir string, logger *logrus.Logger) (DocumentRenderer, error) {
	if dir == "" {
		return nil, fmt.Errorf("document output directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid document output directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("could not create document output directory %s: %w", abs, err)
	}
	return &fileDocumentRenderer{dir: abs, log: logger}, nil
}

func (r *fileDocumentRenderer) RenderToFile(ctx context.Context, req DocumentRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Name == "" || strings.ContainsAny(req.Name, `/\`) {
		r.log.Errorf("DocumentRenderer: Invalid document name '%s'", req.Name)
		return "", fmt.Errorf("invalid document name '%s'", req.Name)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return "", fmt.Errorf("invalid page size %dx%d for document %s", req.Width, req.Height, req.Name)
	}

	page := withPageSize(req.Markup, req.Width, req.Height)
	path := filepath.Join(r.dir, req.Name+".html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		r.log.Errorf("DocumentRenderer: Failed to write %s: %v", path, err)
		return "", fmt.Errorf("failed to write document %s: %w", req.Name, err)
	}

	uri := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
	r.log.Infof("DocumentRenderer: Wrote %s (%dx%d px)", uri, req.Width, req.Height)
	return uri, nil
}

// withPageSize pins the printed page to width x height pixels.
func withPageSize(markup string, width, height int) string {
	rule := fmt.Sprintf("<style>@page { size: %dpx %dpx; margin: 0; }</style>", width, height)
	if strings.Contains(markup, "<head>") {
		return strings.Replace(markup, "<head>", "<head>\n"+rule, 1)
	}
	return rule + "\n" + markup
}
