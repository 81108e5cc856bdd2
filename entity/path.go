package entity

// splitPath breaks a SPARQL property path into its top-level steps.
// Alternations inside parentheses and full IRIs inside angle brackets are
// kept intact; only one level of parenthesis nesting is supported, which
// covers every path the vocabulary defines.
func splitPath(path string) []string {
	var (
		steps []string
		start int
		depth int
		inIRI bool
	)
	for i, r := range path {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '<':
			inIRI = true
		case '>':
			inIRI = false
		case '/':
			if depth == 0 && !inIRI {
				if i > start {
					steps = append(steps, path[start:i])
				}
				start = i + 1
			}
		}
	}
	if start < len(path) {
		steps = append(steps, path[start:])
	}
	return steps
}
