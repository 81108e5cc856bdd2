package entity

import "strings"

// Value is one attribute value destined for a SPARQL update. Raw holds the
// unquoted content; Datatype, when set, is the literal datatype qname.
// Values without a datatype are treated as references: resolvable content
// is emitted as an IRI, anything else as-is (for example "id:..." qnames).
type Value struct {
	Raw      string
	Datatype string
}

// Literal builds a typed literal value.
func Literal(raw, datatype string) Value {
	return Value{Raw: raw, Datatype: datatype}
}

// Ref builds a reference value from an already normalised identifier.
func Ref(normalised string) Value {
	return Value{Raw: normalised}
}

func (v Value) format() string {
	if v.Datatype != "" {
		return QuoteString(v.Raw) + "^^" + v.Datatype
	}
	if strings.Contains(v.Raw, "/") && !strings.HasPrefix(v.Raw, "<") {
		return "<" + v.Raw + ">"
	}
	return v.Raw
}

// QuoteString escapes and quotes a string for use in SPARQL or turtle.
func QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// valuesClause binds a variable to the given values inside a WHERE block.
func valuesClause(varName string, values []Value) string {
	var b strings.Builder
	b.WriteString("VALUES (" + varName + ") {\n")
	for _, v := range values {
		b.WriteString("  (" + v.format() + ")\n")
	}
	b.WriteString("}\n")
	return b.String()
}
