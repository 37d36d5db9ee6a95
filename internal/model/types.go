package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Exchange identifiers used in snapshot paths and manifests.
const (
	ExchangeShanghai = "Shanghai_Stocks"
	ExchangeShenzhen = "Shenzen_Stocks"
	ExchangeBeijing  = "Beijing_Stocks"
)

// RawRecord is one record from the exchange's paginated query endpoint.
//
// The upstream payload is loosely specified, so only the fields the
// normalizer inspects are typed; everything else is preserved verbatim
// in the underlying field map. A RawRecord is immutable once parsed.
type RawRecord struct {
	AStockCode     string // A_STOCK_CODE
	BStockCode     string // B_STOCK_CODE
	CompanyCode    string // COMPANY_CODE
	SecNameCN      string // SEC_NAME_CN
	SecNameFull    string // SEC_NAME_FULL
	CompanyAbbr    string // COMPANY_ABBR
	FullName       string // FULL_NAME
	StockType      string // STOCK_TYPE
	ListDate       string // LIST_DATE
	DelistDate     string // DELIST_DATE
	CSRCCode       string // CSRC_CODE
	CSRCCodeDesc   string // CSRC_CODE_DESC
	AreaNameDesc   string // AREA_NAME_DESC
	StateCode      string // STATE_CODE
	StateCodeStock string // STATE_CODE_STOCK

	// fields holds the complete record as received, including keys
	// not typed above.
	fields map[string]any
}

// NewRawRecord builds a RawRecord from a decoded JSON object.
func NewRawRecord(m map[string]any) RawRecord {
	r := RawRecord{fields: m}
	r.AStockCode = stringField(m, "A_STOCK_CODE")
	r.BStockCode = stringField(m, "B_STOCK_CODE")
	r.CompanyCode = stringField(m, "COMPANY_CODE")
	r.SecNameCN = stringField(m, "SEC_NAME_CN")
	r.SecNameFull = stringField(m, "SEC_NAME_FULL")
	r.CompanyAbbr = stringField(m, "COMPANY_ABBR")
	r.FullName = stringField(m, "FULL_NAME")
	r.StockType = stringField(m, "STOCK_TYPE")
	r.ListDate = stringField(m, "LIST_DATE")
	r.DelistDate = stringField(m, "DELIST_DATE")
	r.CSRCCode = stringField(m, "CSRC_CODE")
	r.CSRCCodeDesc = stringField(m, "CSRC_CODE_DESC")
	r.AreaNameDesc = stringField(m, "AREA_NAME_DESC")
	r.StateCode = stringField(m, "STATE_CODE")
	r.StateCodeStock = stringField(m, "STATE_CODE_STOCK")
	return r
}

// UnmarshalJSON decodes a raw exchange record, preserving unknown fields.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unmarshal raw record: %w", err)
	}
	*r = NewRawRecord(m)
	return nil
}

// Fields returns the complete record as received from the exchange,
// including fields the pipeline does not inspect.
func (r RawRecord) Fields() map[string]any {
	return r.fields
}

// String renders a compact description for log sampling.
func (r RawRecord) String() string {
	return fmt.Sprintf("RawRecord{A_STOCK_CODE=%q B_STOCK_CODE=%q COMPANY_CODE=%q SEC_NAME_CN=%q}",
		r.AStockCode, r.BStockCode, r.CompanyCode, r.SecNameCN)
}

// stringField coerces a JSON value to string. Upstream occasionally
// delivers numeric codes as JSON numbers.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// StockRecord is the unified, normalized schema stored in snapshots.
// Symbol and Name are always non-empty after normalization.
type StockRecord struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	FullName string `json:"full_name,omitempty"`
	Category string `json:"category"`

	ListDate string `json:"list_date,omitempty"`
	CSRCCode string `json:"csrc_code,omitempty"`
	CSRCDesc string `json:"csrc_desc,omitempty"`
	Province string `json:"province,omitempty"`
	Status   string `json:"status,omitempty"`

	SourceURL string    `json:"source_url"`
	Asof      time.Time `json:"asof"`

	// Raw carries the original exchange record when explicitly requested.
	Raw map[string]any `json:"raw,omitempty"`
}
