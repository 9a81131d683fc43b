package rule

// Type names the family a rule belongs to and selects its checker group.
type Type string

const (
	TypeFont           Type = "Font"
	TypeColor          Type = "Color"
	TypeLanguage       Type = "Language"
	TypeGrammar        Type = "Grammar"
	TypePunctuation    Type = "Punctuation"
	TypeCapitalisation Type = "Capitalisation"
	TypeLayout         Type = "Layout"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFont, TypeColor, TypeLanguage, TypeGrammar,
		TypePunctuation, TypeCapitalisation, TypeLayout:
		return true
	}
	return false
}

// DocType identifies which documents a rule applies to.
type DocType string

const (
	DocWord  DocType = "Word"
	DocVisio DocType = "Visio"
	DocBoth  DocType = "Both"
)

func (d DocType) Valid() bool {
	switch d {
	case DocWord, DocVisio, DocBoth:
		return true
	}
	return false
}
