package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rliu/stock-universe/internal/model"
)

// PageMeta carries pagination metadata reported by the exchange for
// one page. The exchange's metadata is not always present or reliable;
// HasTotal/HasTotalPages distinguish "absent" from a real zero.
type PageMeta struct {
	PageNo        int
	Total         int
	HasTotal      bool
	TotalPages    int
	HasTotalPages bool
}

// QueryPage fetches one page of records (1-indexed).
//
// The request carries a fresh randomized callback identifier, the
// configured fixed query and filter parameters, and pagination
// parameters per the endpoint's pageHelp convention.
func (c *Client) QueryPage(ctx context.Context, pageNo int) ([]model.RawRecord, PageMeta, error) {
	cb := c.callbackName()
	page := strconv.Itoa(pageNo)

	params := url.Values{}
	params.Set(c.cfg.JSONP.ParamName, cb)
	params.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))
	for k, v := range c.cfg.Query {
		params.Set(k, v)
	}
	for k, v := range c.cfg.Filters {
		params.Set(k, v)
	}
	params.Set("pageHelp.pageNo", page)
	params.Set("pageHelp.pageSize", strconv.Itoa(c.cfg.Pagination.PageSize))
	params.Set("pageHelp.beginPage", page)
	params.Set("pageHelp.endPage", page)
	params.Set("pageHelp.cacheSize", strconv.Itoa(c.cfg.Pagination.CacheSize))

	body, err := c.fetchBody(ctx, params)
	if err != nil {
		return nil, PageMeta{}, err
	}

	payload, err := unwrapJSONP(string(body), cb)
	if err != nil {
		return nil, PageMeta{}, err
	}

	var env struct {
		PageHelp map[string]json.RawMessage `json:"pageHelp"`
	}
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, PageMeta{}, &APIError{
			Message: "failed to parse JSON payload: " + err.Error(),
			Snippet: snippet(payload),
		}
	}
	if env.PageHelp == nil {
		return nil, PageMeta{}, &APIError{
			Message: "response missing 'pageHelp' field",
			Snippet: snippet(payload),
		}
	}

	var records []model.RawRecord
	if raw, ok := env.PageHelp["data"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, PageMeta{}, &APIError{
				Message: "failed to parse pageHelp.data: " + err.Error(),
				Snippet: snippet(string(raw)),
			}
		}
	}

	meta := PageMeta{PageNo: pageNo}
	meta.Total, meta.HasTotal = metaInt(env.PageHelp["total"])
	meta.TotalPages, meta.HasTotalPages = metaInt(env.PageHelp["totalPages"])
	if !meta.HasTotalPages {
		meta.TotalPages, meta.HasTotalPages = metaInt(env.PageHelp["totalPage"])
	}

	return records, meta, nil
}

// metaInt parses a pagination metadata value, tolerating both numeric
// and string-typed numbers.
func metaInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		n = int(f)
	}
	return n, true
}

// SourceURL builds a compact provenance URL for a page, used in
// normalized records and the manifest.
func (c *Client) SourceURL(pageNo int) string {
	return fmt.Sprintf("%s?sqlId=%s&STOCK_TYPE=%s&pageNo=%d",
		c.cfg.Endpoint, c.cfg.Query["sqlId"], c.cfg.Filters["STOCK_TYPE"], pageNo)
}
