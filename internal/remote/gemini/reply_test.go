package gemini

import (
	"context"
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"plant": "Basil"}`, `{"plant": "Basil"}`},
		{"plain fence", "```\n{\"plant\": \"Basil\"}\n```", `{"plant": "Basil"}`},
		{"json fence", "```json\n{\"plant\": \"Basil\"}\n```", `{"plant": "Basil"}`},
		{"leading whitespace", "  \n```json\n{\"a\":1}\n```\n", `{"a":1}`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseVisionReply(t *testing.T) {
	res, err := parseVisionReply("```json\n{\"plant\": \"Basil\", \"disease\": \"Downy Mildew\", \"confidence\": 85}\n```")
	if err != nil {
		t.Fatalf("parseVisionReply failed: %v", err)
	}
	if res.Plant != "Basil" {
		t.Errorf("expected plant 'Basil', got %q", res.Plant)
	}
	if res.Condition != "Downy Mildew" {
		t.Errorf("expected condition 'Downy Mildew', got %q", res.Condition)
	}
	if res.Confidence != 85 {
		t.Errorf("expected confidence 85, got %v", res.Confidence)
	}
}

func TestParseVisionReply_Defaults(t *testing.T) {
	res, err := parseVisionReply(`{}`)
	if err != nil {
		t.Fatalf("parseVisionReply failed: %v", err)
	}
	if res.Plant != "Unknown" || res.Condition != "Unknown" {
		t.Errorf("expected Unknown defaults, got %+v", res)
	}
	if res.Confidence != 50 {
		t.Errorf("expected default confidence 50, got %v", res.Confidence)
	}
}

func TestParseVisionReply_QuotedConfidence(t *testing.T) {
	res, err := parseVisionReply(`{"plant": "Mint", "disease": "Rust", "confidence": "72.5"}`)
	if err != nil {
		t.Fatalf("parseVisionReply failed: %v", err)
	}
	if res.Confidence != 72.5 {
		t.Errorf("expected confidence 72.5, got %v", res.Confidence)
	}
}

func TestParseVisionReply_Malformed(t *testing.T) {
	cases := []string{
		"the leaf appears to be a tomato plant",
		"```json\nnot json at all\n```",
		`{"plant": "Basil", "confidence": "lots"}`,
		"",
	}
	for _, in := range cases {
		if _, err := parseVisionReply(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestIdentify_NilClientUnavailable(t *testing.T) {
	var c *Client
	if _, err := c.Identify(context.Background(), nil); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := c.Advise(context.Background(), "Tomato — Late Blight"); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
