package provider

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStartDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)

	if got := StartDate(nil, now, false); !got.Equal(time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("daily full history start = %v", got)
	}
	if got := StartDate(nil, now, true); !got.Equal(time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("intraday full history start = %v", got)
	}
	since := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	if got := StartDate(&since, now, false); !got.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("since start = %v", got)
	}
}

func TestFlexibleInt64(t *testing.T) {
	var row struct {
		A *FlexibleInt64 `json:"a"`
		B *FlexibleInt64 `json:"b"`
		C *FlexibleInt64 `json:"c"`
		D *FlexibleInt64 `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":12,"b":1.5e3,"c":"42","d":null}`), &row); err != nil {
		t.Fatal(err)
	}
	if *row.A.Volume() != 12 || *row.B.Volume() != 1500 || *row.C.Volume() != 42 {
		t.Errorf("unexpected values %d %d %d", *row.A, *row.B, *row.C)
	}
	if row.D.Volume() != nil {
		t.Error("null volume should stay absent")
	}
}
