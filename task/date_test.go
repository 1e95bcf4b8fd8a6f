package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2020, time.January, 12)

	if got := d.AddDays(-7); !got.Equal(NewDate(2020, time.January, 5)) {
		t.Errorf("AddDays(-7) = %v", got)
	}
	if got := d.AddDays(20); !got.Equal(NewDate(2020, time.February, 1)) {
		t.Errorf("AddDays(20) = %v", got)
	}
	if got := d.DaysUntil(NewDate(2020, time.January, 14)); got != 2 {
		t.Errorf("DaysUntil = %d, want 2", got)
	}
	if got := d.DaysUntil(NewDate(2020, time.January, 5)); got != -7 {
		t.Errorf("DaysUntil = %d, want -7", got)
	}
}

func TestDate_ParseAndString(t *testing.T) {
	d, err := ParseDate("2020-01-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := d.String(); got != "2020-01-05" {
		t.Errorf("String = %q", got)
	}

	if _, err := ParseDate("05/01/2020"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDate_JSON(t *testing.T) {
	var parsed struct {
		On Date `json:"on"`
	}
	if err := json.Unmarshal([]byte(`{"on":"2020-01-05"}`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.On.Equal(NewDate(2020, time.January, 5)) {
		t.Errorf("unmarshaled %v", parsed.On)
	}

	out, err := json.Marshal(parsed)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"on":"2020-01-05"}` {
		t.Errorf("marshaled %s", out)
	}
}
