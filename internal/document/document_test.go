package document

import "testing"

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"0,51,153", RGB{0, 51, 153}, false},
		{" 255 , 0 ,10 ", RGB{255, 0, 10}, false},
		{"0,51", RGB{}, true},
		{"0,51,256", RGB{}, true},
		{"a,b,c", RGB{}, true},
		{"", RGB{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRGB(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRGBFormats(t *testing.T) {
	c := RGB{0, 51, 153}
	if c.Hex() != "003399" {
		t.Errorf("Hex = %q", c.Hex())
	}
	if c.String() != "(0, 51, 153)" {
		t.Errorf("String = %q", c.String())
	}
	back, err := ParseHex("#003399")
	if err != nil || back != c {
		t.Errorf("ParseHex = %v, %v", back, err)
	}
	if _, err := ParseHex("auto"); err == nil {
		t.Error("expected error for auto")
	}
}

func TestSetText(t *testing.T) {
	p := &Paragraph{Runs: []*Run{{Text: "Hello "}, {Text: "world", Font: "Arial"}}}
	p.SetText("Bonjour")
	if p.Text() != "Bonjour" {
		t.Errorf("Text = %q", p.Text())
	}
	if len(p.Runs) != 2 || p.Runs[1].Text != "" || p.Runs[1].Font != "Arial" {
		t.Errorf("later run not cleared in place: %+v", p.Runs[1])
	}

	empty := &Paragraph{}
	empty.SetText("new")
	if len(empty.Runs) != 1 || empty.Runs[0].Text != "new" {
		t.Errorf("empty paragraph runs = %+v", empty.Runs)
	}
}

func TestDocumentText(t *testing.T) {
	d := &Document{Paragraphs: []*Paragraph{
		{Style: StyleHeading1, Runs: []*Run{{Text: "Title"}}},
		{Style: "Normal", Runs: []*Run{{Text: "  "}}},
		{Style: "Normal", Runs: []*Run{{Text: "Body "}, {Text: "text"}}},
		{Style: "Normal"},
	}}
	if got := d.Text(); got != "Title\n\nBody text" {
		t.Errorf("Text = %q", got)
	}
	if len(d.NonEmpty()) != 2 {
		t.Errorf("NonEmpty = %d", len(d.NonEmpty()))
	}
	if len(d.WithStyle(StyleHeading1)) != 1 {
		t.Error("WithStyle missed heading")
	}
	n := 0
	d.Runs(func(*Paragraph, *Run) { n++ })
	if n != 4 {
		t.Errorf("Runs visited %d", n)
	}
}
