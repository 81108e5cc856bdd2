package policy

import "github.com/clearrights/repository/vocab"

// StructSelect binds ?s to every subject belonging to a policy: the nodes
// of the policy structure plus asset selectors attached as targets.
var StructSelect = ` SELECT DISTINCT ?s { { {id} ` + vocab.PolicyStructSelector + ` ?s .  } UNION { {id} (` + vocab.PolicyStructSelector + `)/odrl:target ?s . ?s a op:AssetSelector . }  } `

// targetsQuery lists a policy's targets with the selector attributes
// needed to validate asset coverage.
const targetsQuery = `
SELECT ?target ?type ?set_id ?max_items ?sel_required
WHERE
{
    {id} odrl:target ?target .
    {
        BIND (op:Asset as ?type) .
        ?target a ?type .
    }
    UNION {
        BIND (op:AssetSelector as ?type) .
        ?target a ?type .
        ?target op:fromSet ?set_id .
        OPTIONAL {
                 ?target op:count ?max_items .
        }
        OPTIONAL {
                 ?target op:selectRequired ?sel_required .
        }
    }
}
`

// policiesForAssetsQuery returns the policies attached to each selected
// asset, grouped per source id. A policy covers an asset either directly
// through odrl:target or through a set reached via an asset selector.
const policiesForAssetsQuery = `
SELECT ?{idname}_id_bundle  (GROUP_CONCAT(DISTINCT ?entity_entity; separator='|') as ?ids) (GROUP_CONCAT(DISTINCT ?policy; separator='|') as ?policies)
WHERE
{
    {subquery}

    BIND (CONCAT(STR(?{idname}_id_type), "#" , STR(?{idname}_id_value)) AS ?{idname}_id_bundle) .

    { ?policy odrl:target ?{idname}_entity  . ?policy a {policy_type} . }
    UNION
    { ?policy odrl:target/op:fromSet/op:hasElement ?{idname}_entity . ?policy a {policy_type} . }

}
GROUP BY ?{idname}_id_bundle
`
