// Package archive queries the NASA Exoplanet Archive over its TAP interface
// and correlates the answers with observation catalogues.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/patrickmn/go-cache"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/logger"
	"github.com/oxygene76/exotargets/pkg/table"
)

// Config holds the archive client settings
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	Table    string
	Columns  []string
}

// DefaultConfig points at the public TAP service
func DefaultConfig() Config {
	return Config{
		BaseURL:  "https://exoplanetarchive.ipac.caltech.edu/TAP",
		Timeout:  60 * time.Second,
		CacheTTL: 30 * time.Minute,
		Table:    DefaultTable,
		Columns:  DefaultColumns,
	}
}

// Client runs synchronous TAP queries. Answers are cached per query string.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
}

// NewClient creates a new archive client
func NewClient(config Config) *Client {
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = def.CacheTTL
	}
	if config.Table == "" {
		config.Table = def.Table
	}
	if len(config.Columns) == 0 {
		config.Columns = def.Columns
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		cache:      cache.New(config.CacheTTL, config.CacheTTL*2),
	}
}

// Search runs one ADQL query and returns the result table. There is no retry.
func (c *Client) Search(ctx context.Context, adql string) (*table.Table, error) {
	log := logger.Named("archive")

	if cached, found := c.cache.Get(adql); found {
		if t, ok := cached.(*table.Table); ok {
			log.Debug().Int("rows", t.Len()).Msg("query cache hit")
			return t.Clone(), nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("request", "doQuery")
	params.Set("lang", "ADQL")
	params.Set("format", "csv")
	params.Set("query", adql)
	endpoint := c.config.BaseURL + "/sync?" + params.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrQuery, "failed to create request: %v", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	log.Debug().Str("query", adql).Msg("querying archive")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrQuery, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrQuery, "failed to read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorsmod.Wrapf(types.ErrQuery, "archive returned status %d: %s", resp.StatusCode, snippet(body))
	}
	if trimmed := bytes.TrimSpace(body); bytes.HasPrefix(trimmed, []byte("<")) {
		return nil, errorsmod.Wrapf(types.ErrQuery, "archive returned an error document: %s", snippet(body))
	}

	t, err := table.Read(bytes.NewReader(body), table.ReadOptions{
		StringColumns: []string{ColName, ColHost},
	})
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrQuery, "malformed result table: %v", err)
	}

	log.Info().Int("rows", t.Len()).Dur("took", time.Since(start)).Msg("archive query completed")
	c.cache.Set(adql, t.Clone(), cache.DefaultExpiration)
	return t, nil
}

// QueryPlanets fetches the configured columns for the named planets. Names
// that are requested but absent from the answer, and the reverse, are logged.
func (c *Client) QueryPlanets(ctx context.Context, names []string) (*table.Table, error) {
	log := logger.Named("archive")
	log.Info().Int("targets", len(unique(names))).Strs("names", unique(names)).Msg("querying archive for targets")

	t, err := c.Search(ctx, BuildQuery(names, c.config.Columns, c.config.Table))
	if err != nil {
		return nil, err
	}

	got, err := t.Strings(ColName)
	if err != nil {
		return nil, err
	}
	if lost := SymmetricDifference(names, got); len(lost) > 0 {
		log.Warn().Int("count", len(lost)).Strs("targets", lost).Msg("targets could not be matched in the archive")
	} else {
		log.Info().Msg("all targets queried successfully")
	}
	return t, nil
}

// SymmetricDifference returns the sorted names present in exactly one of a and b
func SymmetricDifference(a, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, s := range a {
		inA[s] = true
	}
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}

	var out []string
	for s := range inA {
		if !inB[s] {
			out = append(out, s)
		}
	}
	for s := range inB {
		if !inA[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return fmt.Sprintf("%q", s)
}
