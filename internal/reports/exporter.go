// Package reports exports back-office reports. The remote exporter asks the
// backend to render the file; when that fails the CSV exporter formats the
// already-fetched rows locally so the download still succeeds.
package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"mokolo/internal/api"
)

type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

type Exporter interface {
	Export(ctx context.Context, kind string) (*Export, error)
}

// Remote downloads the rendered report (PDF) from the backend.
type Remote struct {
	Admin  *api.Admin
	Format string // pdf | csv, forwarded to the backend
}

func (r *Remote) Export(ctx context.Context, kind string) (*Export, error) {
	format := r.Format
	if format == "" {
		format = "pdf"
	}
	data, contentType, err := r.Admin.DownloadReport(ctx, kind, format)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Export{Data: data, Filename: kind + "." + format, ContentType: contentType}, nil
}

// CSV formats report rows client-side. It is the fallback when the backend
// cannot render the report.
type CSV struct {
	Admin *api.Admin
}

func (c *CSV) Export(ctx context.Context, kind string) (*Export, error) {
	rows, err := c.Admin.ReportRows(ctx, kind)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"label", "count", "amount"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rec := []string{row.Label, strconv.Itoa(row.Count), strconv.FormatFloat(row.Amount, 'f', 2, 64)}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &Export{Data: []byte(sb.String()), Filename: kind + ".csv", ContentType: "text/csv"}, nil
}

// Download tries the primary exporter and falls back to the secondary. The
// fallback's error wraps the primary's so neither failure is hidden.
func Download(ctx context.Context, primary, fallback Exporter, kind string) (*Export, error) {
	out, perr := primary.Export(ctx, kind)
	if perr == nil {
		return out, nil
	}
	if fallback == nil {
		return nil, perr
	}
	out, ferr := fallback.Export(ctx, kind)
	if ferr != nil {
		return nil, fmt.Errorf("report export failed: %w (fallback: %v)", perr, ferr)
	}
	return out, nil
}
