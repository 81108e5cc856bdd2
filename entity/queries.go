package entity

import "strings"

// Query templates use {name} placeholders filled in by expand. Every query
// sent to the store is prefixed with vocab.SPARQLPrefixes by the caller.

// checkExistsQuery asks whether an entity of the class exists, optionally
// constrained further.
const checkExistsQuery = `
ASK WHERE {
    {id} a {class} .
    BIND ( {id} as ?s ) .
    {filters}
}
`

// insertTimestampsQuery stamps one entity with the current time.
const insertTimestampsQuery = `
INSERT {
  {id} dcterm:modified ?now .
}
WHERE {
    BIND ( NOW() as ?now ) .
}
`

// listByTimeQuery pages entities of a class ordered by their most recent
// modification, with optional per-kind extra projections.
const listByTimeQuery = `
SELECT ?{id_name} {extra_query_ids} ?last_modified
WHERE {
    {
        SELECT ?{id_name} (MAX(?when) AS ?last_modified)
        WHERE {
            { SELECT ?{id_name} {
                ?{id_name} a {class} .
                OPTIONAL { ?{id_name} dcterm:modified ?when }
                {filter}
          } ORDER BY ?when
             LIMIT {page_size}
             OFFSET {offset}
         }
         OPTIONAL { ?{id_name} dcterm:modified ?when }
        }
        GROUP BY ?{id_name}
    }
    {extra_query}
}
ORDER BY ?last_modified
`

// getAttrQuery selects the values of one predicate of an entity.
const getAttrQuery = `
SELECT ?o WHERE
{
  {id} {predicate} ?o .
  {filter}
}
{pagination}
`

// matchAttrQuery asks whether an entity has a predicate with a value.
const matchAttrQuery = `
ASK WHERE
{
  {id} {predicate} {value} .
  {filter}
}
`

// getQuery reconstructs an entity subgraph. The struct subquery binds ?s to
// every subject belonging to the entity.
const getQuery = `
CONSTRUCT { ?s ?p ?o }
WHERE
{
  {id} a {class} .
  {
    {struct}
  }
  ?s ?p ?o .
}
`

const insertWhereQuery = `
INSERT {
{triples}
}
WHERE {
{where}
}
`

const deleteTriplesWhereQuery = `
DELETE {
?s ?p ?o
}
WHERE {
{where}
}
`

// bindStructQuery is the struct subquery of kinds without internal
// structure: the entity is its only subject.
const bindStructQuery = `BIND ( {id} as ?s )`

// Expand fills {name} placeholders in a query template.
func Expand(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Filter builds a SPARQL FILTER clause from constraint expressions. An
// empty constraint list yields an empty string.
func Filter(constraints ...string) string {
	if len(constraints) == 0 {
		return ""
	}
	wrapped := make([]string, len(constraints))
	for i, c := range constraints {
		wrapped[i] = "(" + c + ")"
	}
	return "FILTER(" + strings.Join(wrapped, " && ") + ")"
}

// TimeRange builds the constraint expressions bounding a variable to a
// datetime window. Either bound may be empty.
func TimeRange(varName, from, to string) []string {
	var rc []string
	if to != "" {
		rc = append(rc, "?"+varName+` < "`+to+`"^^xsd:dateTime`)
	}
	if from != "" {
		rc = append(rc, "?"+varName+` >= "`+from+`"^^xsd:dateTime`)
	}
	return rc
}
