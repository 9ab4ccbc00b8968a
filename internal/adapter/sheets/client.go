package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meli-reconciler/internal/core/ports"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const spreadsheetMime = "application/vnd.google-apps.spreadsheet"

// Client reads cost spreadsheets through the Sheets and Drive APIs.
type Client struct {
	sheets *gsheets.Service
	drive  *drive.Service
}

// NewClient authenticates with a service-account key file.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	if credentialsFile == "" {
		return nil, ErrNotConfigured
	}
	return NewClientWithOptions(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsReadonlyScope, drive.DriveReadonlyScope),
	)
}

// NewClientWithOptions builds the client from raw client options.
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	s, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	d, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{sheets: s, drive: d}, nil
}

// ReadRows returns the cells of rng as strings. Short rows are kept short.
func (c *Client) ReadRows(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	vr, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", spreadsheetID, rng, err)
	}

	rows := make([][]string, 0, len(vr.Values))
	for _, raw := range vr.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = strings.TrimSpace(fmt.Sprint(cell))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListFiles lists the spreadsheets directly inside folderID.
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]ports.SheetFile, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false",
		strings.ReplaceAll(folderID, "'", `\'`), spreadsheetMime)

	var files []ports.SheetFile
	call := c.drive.Files.List().
		Q(q).
		Fields("nextPageToken, files(id, name)").
		PageSize(1000).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, ports.SheetFile{ID: f.Id, Name: f.Name})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}
	return files, nil
}

// ErrNotConfigured is returned by Unavailable.
var ErrNotConfigured = errors.New("sheets: credentials file is not configured")

// Unavailable stands in for the client when no credentials are configured,
// so the cost operations fail cleanly instead of at startup.
type Unavailable struct{}

func (Unavailable) ReadRows(context.Context, string, string) ([][]string, error) {
	return nil, ErrNotConfigured
}

func (Unavailable) ListFiles(context.Context, string) ([]ports.SheetFile, error) {
	return nil, ErrNotConfigured
}
