package normalizer

import (
	"errors"
	"testing"
	"time"

	"github.com/rliu/stock-universe/internal/model"
)

var testAsof = time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)

const testURL = "https://query.sse.com.cn/sseQuery/commonQuery.do?pageNo=1"

func rawRecord(fields map[string]any) model.RawRecord {
	return model.NewRawRecord(fields)
}

func TestNormalize(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		raw := rawRecord(map[string]any{
			"A_STOCK_CODE":     "600105",
			"SEC_NAME_CN":      "永鼎股份",
			"FULL_NAME":        "江苏永鼎股份有限公司",
			"LIST_DATE":        "19971118",
			"CSRC_CODE":        "C",
			"CSRC_CODE_DESC":   "制造业",
			"AREA_NAME_DESC":   "江苏",
			"STATE_CODE_STOCK": "2",
		})

		got, err := Normalize(raw, testURL, testAsof, Options{StockType: "1"})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}

		if got.Exchange != model.ExchangeShanghai {
			t.Errorf("Exchange = %q, want %q", got.Exchange, model.ExchangeShanghai)
		}
		if got.Symbol != "600105" {
			t.Errorf("Symbol = %q, want %q", got.Symbol, "600105")
		}
		if got.Name != "永鼎股份" {
			t.Errorf("Name = %q, want %q", got.Name, "永鼎股份")
		}
		if got.FullName != "江苏永鼎股份有限公司" {
			t.Errorf("FullName = %q, want %q", got.FullName, "江苏永鼎股份有限公司")
		}
		if got.Category != "STOCK_TYPE_1_主板A股" {
			t.Errorf("Category = %q, want %q", got.Category, "STOCK_TYPE_1_主板A股")
		}
		if got.ListDate != "19971118" {
			t.Errorf("ListDate = %q, want %q", got.ListDate, "19971118")
		}
		if got.Province != "江苏" {
			t.Errorf("Province = %q, want %q", got.Province, "江苏")
		}
		if got.Status != "2" {
			t.Errorf("Status = %q, want %q", got.Status, "2")
		}
		if got.SourceURL != testURL {
			t.Errorf("SourceURL = %q, want %q", got.SourceURL, testURL)
		}
		if !got.Asof.Equal(testAsof) {
			t.Errorf("Asof = %v, want %v", got.Asof, testAsof)
		}
		if got.Raw != nil {
			t.Error("Raw should be nil unless IncludeRaw is set")
		}
	})

	t.Run("symbol falls back to B share code", func(t *testing.T) {
		raw := rawRecord(map[string]any{
			"A_STOCK_CODE": "-",
			"B_STOCK_CODE": "900901",
			"SEC_NAME_CN":  "云赛B股",
		})

		got, err := Normalize(raw, testURL, testAsof, Options{StockType: "2"})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got.Symbol != "900901" {
			t.Errorf("Symbol = %q, want %q", got.Symbol, "900901")
		}
		if got.Category != "STOCK_TYPE_2_主板B股" {
			t.Errorf("Category = %q, want %q", got.Category, "STOCK_TYPE_2_主板B股")
		}
	})

	t.Run("symbol falls back to company code", func(t *testing.T) {
		raw := rawRecord(map[string]any{
			"A_STOCK_CODE": "",
			"B_STOCK_CODE": "-",
			"COMPANY_CODE": "688001",
		})

		got, err := Normalize(raw, testURL, testAsof, Options{StockType: "8"})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got.Symbol != "688001" {
			t.Errorf("Symbol = %q, want %q", got.Symbol, "688001")
		}
	})

	t.Run("no usable symbol fails distinctly", func(t *testing.T) {
		raw := rawRecord(map[string]any{
			"A_STOCK_CODE": "-",
			"B_STOCK_CODE": "",
			"COMPANY_CODE": "-",
			"SEC_NAME_CN":  "某公司",
		})

		_, err := Normalize(raw, testURL, testAsof, Options{StockType: "1"})
		var noSym *ErrNoSymbol
		if !errors.As(err, &noSym) {
			t.Fatalf("err = %v, want *ErrNoSymbol", err)
		}
	})

	t.Run("name falls back to symbol", func(t *testing.T) {
		raw := rawRecord(map[string]any{"A_STOCK_CODE": "600000"})

		got, err := Normalize(raw, testURL, testAsof, Options{StockType: "1"})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got.Name != "600000" {
			t.Errorf("Name = %q, want symbol fallback %q", got.Name, "600000")
		}
	})

	t.Run("name priority", func(t *testing.T) {
		raw := rawRecord(map[string]any{
			"A_STOCK_CODE":  "600000",
			"COMPANY_ABBR":  "浦发银行",
			"SEC_NAME_FULL": "上海浦东发展银行股份有限公司",
		})

		got, err := Normalize(raw, testURL, testAsof, Options{StockType: "1"})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got.Name != "浦发银行" {
			t.Errorf("Name = %q, want %q", got.Name, "浦发银行")
		}
		if got.FullName != "上海浦东发展银行股份有限公司" {
			t.Errorf("FullName = %q, want SEC_NAME_FULL fallback", got.FullName)
		}
	})

	t.Run("include raw", func(t *testing.T) {
		fields := map[string]any{
			"A_STOCK_CODE": "600105",
			"UNKNOWN_COL":  "kept",
		}

		got, err := Normalize(rawRecord(fields), testURL, testAsof, Options{StockType: "1", IncludeRaw: true})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got.Raw == nil {
			t.Fatal("Raw should be populated when IncludeRaw is set")
		}
		if got.Raw["UNKNOWN_COL"] != "kept" {
			t.Errorf("Raw[UNKNOWN_COL] = %v, want %q", got.Raw["UNKNOWN_COL"], "kept")
		}
	})
}

func TestCategory(t *testing.T) {
	tests := []struct {
		stockType string
		want      string
	}{
		{"1", "STOCK_TYPE_1_主板A股"},
		{"2", "STOCK_TYPE_2_主板B股"},
		{"8", "STOCK_TYPE_8_科创板"},
		{"9", "STOCK_TYPE_9"},
		{"", "STOCK_TYPE_"},
	}

	for _, tt := range tests {
		if got := Category(tt.stockType); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.stockType, got, tt.want)
		}
	}
}
