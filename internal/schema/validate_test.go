package schema

import "testing"

func TestDecodeValid(t *testing.T) {
	c, errs := Decode(`{"corrected_text": "The colour.\n\nNext.", "changes": [{"issue": "color", "fix": "colour"}]}`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if c.Text != "The colour.\n\nNext." {
		t.Errorf("Text = %q", c.Text)
	}
	if len(c.Changes) != 1 || c.Changes[0].Fix != "colour" {
		t.Errorf("Changes = %+v", c.Changes)
	}
}

func TestDecodeRawNewlines(t *testing.T) {
	raw := "{\"corrected_text\": \"First para.\n\nSecond\tpara.\", \"changes\": []}"
	c, errs := Decode(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if c.Text != "First para.\n\nSecond\tpara." {
		t.Errorf("Text = %q", c.Text)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"not json", `here you go: colour`, "$"},
		{"missing text", `{"corrected_text": "", "changes": [{"issue": "a", "fix": "b"}]}`, "corrected_text"},
		{"blank issue", `{"corrected_text": "x", "changes": [{"issue": " ", "fix": "b"}]}`, "changes[0].issue"},
		{"blank fix", `{"corrected_text": "x", "changes": [{"issue": "a"}]}`, "changes[0].fix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Decode(tt.raw)
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Path != tt.path {
				t.Errorf("path = %q, want %q", errs[0].Path, tt.path)
			}
		})
	}
}

func TestNoChangesIsValid(t *testing.T) {
	if _, errs := Decode(`{"corrected_text": "", "changes": []}`); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestEscapeControlLeavesStructure(t *testing.T) {
	in := "{\n  \"a\": \"x\ny\",\n  \"b\": \"q\\\"\n\"\n}"
	want := "{\n  \"a\": \"x\\ny\",\n  \"b\": \"q\\\"\\n\"\n}"
	if got := escapeControl(in); got != want {
		t.Errorf("escapeControl = %q, want %q", got, want)
	}
}
