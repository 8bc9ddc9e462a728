package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateStringAndShorthand(t *testing.T) {
	d := NewDate(2024, time.December, 13)
	if d.String() != "2024-12-13" {
		t.Errorf("String = %q", d.String())
	}
	if d.Shorthand() != "13/12/24" {
		t.Errorf("Shorthand = %q", d.Shorthand())
	}

	early := NewDate(2025, time.January, 5)
	if early.Shorthand() != "5/1/25" {
		t.Errorf("Shorthand = %q, want no zero padding on day/month", early.Shorthand())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if d != NewDate(2025, time.March, 10) {
		t.Errorf("got %v", d)
	}
	if _, err := ParseDate("10/03/2025"); err == nil {
		t.Error("non-ISO input accepted")
	}
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2025, time.March, 10)
	b := NewDate(2025, time.March, 20)
	if !a.Before(b) || b.Before(a) {
		t.Error("Before is wrong")
	}
	if !b.After(a) {
		t.Error("After is wrong")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare is wrong")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}
	in := wrapper{Date: NewDate(2024, time.December, 13)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"date":"2024-12-13"}` {
		t.Errorf("encoded as %s", data)
	}
	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Date != in.Date {
		t.Errorf("round trip: %v != %v", out.Date, in.Date)
	}
	if err := json.Unmarshal([]byte(`{"date":13}`), &out); err == nil {
		t.Error("numeric date accepted")
	}
}
