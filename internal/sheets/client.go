package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	oauthjwt "golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/redis"
)

// ErrNotConfigured is returned when the service-account credentials are
// missing. The server still starts so that the auth and admin surface keeps
// working; only spreadsheet-backed operations fail.
var ErrNotConfigured = errors.New("google sheets credentials not configured")

// Client is the spreadsheet access layer: service-account authentication
// plus row-level reads and appends. All higher-level semantics (header
// mapping, latest-row resolution, conflict checks) live in the callers.
//
// Reads go through an optional Redis cache keyed by (spreadsheet, range);
// appends invalidate every cached range of the touched spreadsheet. A nil
// Redis client degrades to direct API reads.
type Client struct {
	svc       *sheetsapi.Service
	defaultID string
	cacheTTL  time.Duration
	rdb       *redis.Client
	logger    *zap.Logger
}

// NewClient builds the Sheets client from the service-account credentials.
// Missing credentials are not an error: the client is returned in an
// unconfigured state and every call fails with ErrNotConfigured.
func NewClient(ctx context.Context, cfg *config.GoogleConfig, rdb *redis.Client, logger *zap.Logger) (*Client, error) {
	c := &Client{
		defaultID: cfg.SpreadsheetID,
		cacheTTL:  cfg.CacheTTL,
		rdb:       rdb,
		logger:    logger,
	}

	if cfg.ServiceAccountEmail == "" || cfg.PrivateKey == "" {
		logger.Warn("google sheets not configured, spreadsheet operations will fail",
			zap.Bool("email_set", cfg.ServiceAccountEmail != ""),
			zap.Bool("key_set", cfg.PrivateKey != ""),
		)
		return c, nil
	}

	jwtCfg := &oauthjwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("building sheets service: %w", err)
	}
	c.svc = svc

	logger.Info("google sheets client ready",
		zap.String("service_account", cfg.ServiceAccountEmail),
		zap.Bool("default_spreadsheet", cfg.SpreadsheetID != ""),
	)

	return c, nil
}

// Configured reports whether the client holds working credentials.
func (c *Client) Configured() bool {
	return c != nil && c.svc != nil
}

// DefaultSpreadsheetID returns the fallback spreadsheet for groups without
// their own document.
func (c *Client) DefaultSpreadsheetID() string {
	return c.defaultID
}

// ReadRange fetches a rectangular cell range as raw strings. The result may
// be empty and rows may be ragged (trailing empty cells are not padded).
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}

	cacheKey := cacheKey(spreadsheetID, rng)
	if c.rdb != nil {
		if cached, ok, err := c.rdb.GetCache(ctx, cacheKey); err == nil && ok {
			var rows [][]string
			if err := json.Unmarshal([]byte(cached), &rows); err == nil {
				return rows, nil
			}
		}
	}

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading range %s: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}

	if c.rdb != nil {
		if payload, err := json.Marshal(rows); err == nil {
			if err := c.rdb.SetCache(ctx, cacheKey, string(payload), c.cacheTTL); err != nil {
				c.logger.Warn("caching sheet range failed", zap.Error(err))
			}
		}
	}

	return rows, nil
}

// AppendRows appends rows after the last data row of the range, with RAW
// input semantics (no formula parsing). There is no update-in-place or
// delete anywhere in the system; every mutation is an append.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, rng string, rows [][]string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if spreadsheetID == "" {
		return fmt.Errorf("spreadsheet id is empty")
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	_, err := c.svc.Spreadsheets.Values.
		Append(spreadsheetID, rng, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending %d rows to %s: %w", len(rows), rng, err)
	}

	c.invalidate(ctx, spreadsheetID)
	return nil
}

// invalidate drops every cached range of a spreadsheet after a write.
func (c *Client) invalidate(ctx context.Context, spreadsheetID string) {
	if c.rdb == nil {
		return
	}
	if _, err := c.rdb.DeleteCachePrefix(ctx, "sheets:"+spreadsheetID); err != nil {
		c.logger.Warn("invalidating sheet cache failed",
			zap.String("spreadsheet_id", spreadsheetID),
			zap.Error(err),
		)
	}
}

func cacheKey(spreadsheetID, rng string) string {
	return "sheets:" + spreadsheetID + ":" + rng
}

func cellString(cell interface{}) string {
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprint(cell)
}
