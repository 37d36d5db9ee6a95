package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRawRecordUnmarshal(t *testing.T) {
	t.Run("typed fields extracted", func(t *testing.T) {
		data := `{
			"A_STOCK_CODE": "600105",
			"B_STOCK_CODE": "-",
			"COMPANY_CODE": "600105",
			"SEC_NAME_CN": "永鼎股份",
			"FULL_NAME": "江苏永鼎股份有限公司",
			"LIST_DATE": "19971118",
			"CSRC_CODE": "C",
			"AREA_NAME_DESC": "江苏",
			"STATE_CODE_STOCK": "2"
		}`

		var r RawRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if r.AStockCode != "600105" {
			t.Errorf("AStockCode = %q, want %q", r.AStockCode, "600105")
		}
		if r.BStockCode != "-" {
			t.Errorf("BStockCode = %q, want %q", r.BStockCode, "-")
		}
		if r.SecNameCN != "永鼎股份" {
			t.Errorf("SecNameCN = %q, want %q", r.SecNameCN, "永鼎股份")
		}
		if r.ListDate != "19971118" {
			t.Errorf("ListDate = %q, want %q", r.ListDate, "19971118")
		}
		if r.StateCodeStock != "2" {
			t.Errorf("StateCodeStock = %q, want %q", r.StateCodeStock, "2")
		}
	})

	t.Run("unknown fields preserved", func(t *testing.T) {
		data := `{"A_STOCK_CODE": "600105", "SOME_NEW_COLUMN": "surprise", "NUM": "1"}`

		var r RawRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		fields := r.Fields()
		if fields["SOME_NEW_COLUMN"] != "surprise" {
			t.Errorf("Fields()[SOME_NEW_COLUMN] = %v, want %q", fields["SOME_NEW_COLUMN"], "surprise")
		}
		if fields["NUM"] != "1" {
			t.Errorf("Fields()[NUM] = %v, want %q", fields["NUM"], "1")
		}
	})

	t.Run("numeric codes coerced to strings", func(t *testing.T) {
		data := `{"A_STOCK_CODE": 600105, "STOCK_TYPE": 1}`

		var r RawRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if r.AStockCode != "600105" {
			t.Errorf("AStockCode = %q, want %q", r.AStockCode, "600105")
		}
		if r.StockType != "1" {
			t.Errorf("StockType = %q, want %q", r.StockType, "1")
		}
	})

	t.Run("absent fields are empty", func(t *testing.T) {
		var r RawRecord
		if err := json.Unmarshal([]byte(`{}`), &r); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if r.AStockCode != "" || r.SecNameCN != "" {
			t.Error("absent fields should decode to empty strings")
		}
	})
}

func TestStockRecordJSON(t *testing.T) {
	rec := StockRecord{
		Exchange:  ExchangeShanghai,
		Symbol:    "600105",
		Name:      "永鼎股份",
		Category:  "STOCK_TYPE_1_主板A股",
		SourceURL: "https://query.sse.com.cn/?pageNo=1",
		Asof:      time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	for _, absent := range []string{"full_name", "list_date", "csrc_code", "csrc_desc", "province", "status", "raw"} {
		if strings.Contains(s, absent) {
			t.Errorf("marshaled record contains empty optional field %q: %s", absent, s)
		}
	}
	if !strings.Contains(s, `"asof":"2026-01-30T12:00:00Z"`) {
		t.Errorf("asof not RFC 3339: %s", s)
	}

	var back StockRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Symbol != rec.Symbol || !back.Asof.Equal(rec.Asof) {
		t.Errorf("round trip mismatch: %+v", back)
	}
}
