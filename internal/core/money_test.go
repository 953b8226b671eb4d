package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantErr   bool
	}{
		{name: "integer", input: "210", wantCents: 21000},
		{name: "two decimals dot", input: "12.34", wantCents: 1234},
		{name: "two decimals comma", input: "12,34", wantCents: 1234},
		{name: "one decimal", input: "5.5", wantCents: 550},
		{name: "leading dot", input: ".75", wantCents: 75},
		{name: "third decimal rounds up", input: "1.005", wantCents: 101},
		{name: "third decimal rounds down", input: "1.004", wantCents: 100},
		{name: "zero allowed", input: "0", wantCents: 0},
		{name: "surrounding spaces", input: "  3.50  ", wantCents: 350},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "explicit plus", input: "+5", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "trailing letters", input: "12a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) error = %v", tt.input, err)
			}
			if got.Cents != tt.wantCents {
				t.Errorf("ParseAmount(%q) = %d cents, want %d", tt.input, got.Cents, tt.wantCents)
			}
		})
	}
}

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{21000, "210.00"},
		{-350, "-3.50"},
		{5, "0.05"},
		{0, "0.00"},
		{100050, "1000.50"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Format(); got != tt.want {
			t.Errorf("Money{%d}.Format() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_Validate(t *testing.T) {
	if err := (Money{Cents: 100}).Validate(); err != nil {
		t.Errorf("Validate() positive = %v, want nil", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Error("Validate() zero = nil, want error")
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Error("Validate() negative = nil, want error")
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != "1234" {
		t.Errorf("Marshal = %s, want 1234", data)
	}

	var m Money
	if err := json.Unmarshal([]byte("-350"), &m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if m.Cents != -350 {
		t.Errorf("Unmarshal = %d, want -350", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"12.34"`), &m); err == nil {
		t.Error("Unmarshal of decimal string = nil, want error")
	}
}
