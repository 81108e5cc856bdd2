package asset

// Extra projections joined into the generic list query: every combination
// of entity id and attached source id, which is what the index consumes.
const (
	listIDName   = "entity"
	listExtraIDs = "?source_id_value ?source_id_type"

	listExtraQuery = `
    ?{id_name} op:alsoIdentifiedBy ?alt_id .
            ?alt_id op:id_type ?source_id_type ;
                    op:value ?source_id_value .
`
)

const insertDataQuery = `
INSERT DATA {
{triples}
}
`

// appendAlsoIdentifiedQuery attaches one source id to an asset through a
// fresh blank node.
const appendAlsoIdentifiedQuery = `
   {entity_id} op:alsoIdentifiedBy  _:bnode{bnode} .
  _:bnode{bnode} op:id_type {source_id_type} .
  _:bnode{bnode} op:value {source_id_value} .
  _:bnode{bnode} rdf:type op:Id .
`

// getAlsoIdentifiedQuery lists the source ids attached to an asset.
const getAlsoIdentifiedQuery = `
SELECT ?source_id_type ?source_id WHERE {
  {entity_id} op:alsoIdentifiedBy ?id .
   ?id op:id_type ?source_id_type .
   ?id op:value ?source_id .
}
`

// selectByEntityIDQuery resolves hub-key selections into id bindings for
// the bulk policy query.
const selectByEntityIDQuery = `
SELECT ?{idname}_entity ?{idname}_id_value ?{idname}_id_type WHERE {
    VALUES (?{idname}_id_value) {
        {idlist}
    }
    BIND (?{idname}_id_value AS ?{idname}_entity)
    BIND (hub:hub_key AS ?{idname}_id_type)
}
`

// selectBySourceIDQuery resolves source-id selections into id bindings for
// the bulk policy query.
const selectBySourceIDQuery = `
SELECT ?{idname}_entity ?{idname}_id_value ?{idname}_id_type {
    VALUES ( ?{idname}_id_type ?{idname}_id_value) {
        {idlist}
    }
    ?alt_id op:value ?{idname}_id_value .
    ?alt_id op:id_type ?{idname}_id_type .
    ?{idname}_entity op:alsoIdentifiedBy ?alt_id .
}
`

// structSelect binds ?s to the asset and its attached id nodes, for use in
// the generic subgraph retrieval.
const structSelect = ` SELECT DISTINCT ?s { {id} (op:alsoIdentifiedBy)? ?s . } `

// findEntitiesQuery finds the assets carrying any of the given source ids.
const findEntitiesQuery = `
SELECT DISTINCT ?s
WHERE { ?s ?p ?o .
    ?o op:value ?id ;
       op:id_type ?idtype .
    VALUES (?id ?idtype) {
        {id_filter}
    }
}
`

// findEntitySourceIDsQuery lists the source ids attached to one asset
// through any predicate.
const findEntitySourceIDsQuery = `
SELECT DISTINCT ?id ?idtype
WHERE { {entity_id} ?p ?o .
    ?o op:value ?id ;
       op:id_type ?idtype .
}
`

// countOtherUsersQuery counts entities other than the given one using a
// source id; an id node is only deleted when nothing else references it.
const countOtherUsersQuery = `
SELECT (COUNT(?s) AS ?count)
WHERE { ?s ?p ?o .
    ?o op:value {source_id} ;
       op:id_type {source_id_type} .
    FILTER NOT EXISTS { {entity_id} ?p ?o }
}
`

// deleteIDTriplesQuery removes an id node and all its triples.
const deleteIDTriplesQuery = `
DELETE { ?s ?p ?o }
WHERE { ?s op:value {source_id} ;
           op:id_type {source_id_type} ;
        ?p ?o .
}
`

// deleteEntityQuery removes every triple of one asset.
const deleteEntityQuery = `
DELETE { {entity_id} ?p ?o }
WHERE { {entity_id} ?p ?o . }
`
