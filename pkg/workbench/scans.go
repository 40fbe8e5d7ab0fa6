package workbench

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// DefaultMaxPages is the safety valve against a server that keeps
// returning full pages forever.
const DefaultMaxPages = 10000

// ListScans walks the paginated listing endpoint and materializes the full
// scan inventory. Pagination ends at the first short or empty page. The
// returned inventory preserves the server's pagination order: numeric row
// keys ascending within a page, pages concatenated.
//
// A listing key seen on more than one page indicates a duplicate or a
// server bug; the first occurrence wins and the collision is logged.
func (c *Client) ListScans(ctx context.Context, recordsPerPage, maxPages int) (*Inventory, error) {
	if recordsPerPage <= 0 {
		return nil, fmt.Errorf("records_per_page must be positive, got %d", recordsPerPage)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	inv := NewInventory()
	c.logger.Info("fetching scan inventory", "records_per_page", recordsPerPage)

	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("scan listing exceeded %d pages, aborting", maxPages)
		}

		raw, err := c.call(ctx, "scans", "list_scans", map[string]any{
			"records_per_page": recordsPerPage,
			"page":             page,
		}, c.cfg.ListTimeout)
		if err != nil {
			return nil, err
		}

		pageRecords, err := decodeScanPage(raw)
		if err != nil {
			return nil, err
		}
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.PageListed()
		}
		if len(pageRecords) == 0 {
			break
		}

		for _, key := range sortedRowKeys(pageRecords) {
			if !inv.Add(key, pageRecords[key]) {
				c.logger.Warn("duplicate listing key across pages, keeping first occurrence",
					"key", key,
					"page", page,
				)
			}
		}

		c.logger.Info("retrieved scan page",
			"page", page,
			"page_records", len(pageRecords),
			"total", inv.Len(),
		)

		if len(pageRecords) < recordsPerPage {
			break
		}
	}

	return inv, nil
}

// GetScanInfo fetches the detail record for one scan.
func (c *Client) GetScanInfo(ctx context.Context, scanCode string) (*ScanInfo, error) {
	raw, err := c.call(ctx, "scans", "get_information", map[string]any{
		"scan_code": scanCode,
	}, c.cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}

	var info ScanInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &ParseError{Action: "get_information", Cause: err}
	}
	return &info, nil
}

// ArchiveScan archives one scan. Archiving is irreversible; success is an
// HTTP 200 from the server.
func (c *Client) ArchiveScan(ctx context.Context, scanCode string) error {
	_, err := c.call(ctx, "scans", "archive_scan", map[string]any{
		"scan_code": scanCode,
	}, c.cfg.RequestTimeout)
	return err
}

// GetServerConfig probes the server identity. Used as a pre-flight check to
// fail fast on bad credentials or URL before any expensive listing.
func (c *Client) GetServerConfig(ctx context.Context) (*ServerConfig, error) {
	raw, err := c.call(ctx, "internal", "getConfig", nil, c.cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}

	var cfg ServerConfig
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, &ParseError{Action: "getConfig", Cause: err}
		}
	}
	return &cfg, nil
}

// decodeScanPage decodes one listing page. The server encodes an empty
// page as {}, [] or null depending on version, so all three map to "no
// records".
func decodeScanPage(raw json.RawMessage) (map[string]ScanRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("[]")) {
		return nil, nil
	}

	var page map[string]ScanRecord
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, &ParseError{Action: "list_scans", Cause: err}
	}
	return page, nil
}

// sortedRowKeys orders a page's listing keys numerically where possible,
// matching the server's row ordering. Non-numeric keys sort after numeric
// ones, lexically.
func sortedRowKeys(page map[string]ScanRecord) []string {
	keys := make([]string, 0, len(page))
	for k := range page {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	return keys
}
