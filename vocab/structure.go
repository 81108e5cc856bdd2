package vocab

import "strings"

// Node is one edge of a structural schema: a predicate and the sub-schema
// reachable through it. Schemas are inert data; PathExpr and the graph
// walker interpret them.
type Node struct {
	Predicate string
	Children  []Node
}

var constraintLevel = []Node{
	{Predicate: Constraint},
	{Predicate: Assigner},
	{Predicate: Assignee},
}

// PolicyStruct is the fixed shape of a policy's internal subtree. Every
// subject reachable from a policy root through these chains belongs to the
// policy and is rewritten when the policy is copied.
var PolicyStruct = []Node{
	{Predicate: Permission, Children: append([]Node{
		{Predicate: Duty, Children: constraintLevel},
	}, constraintLevel...)},
	{Predicate: Prohibition, Children: constraintLevel},
	{Predicate: Duty, Children: constraintLevel},
	{Predicate: Assigner},
	{Predicate: Assignee},
}

// AssetStruct is the structural schema of an asset: the asset node plus its
// attached alsoIdentifiedBy id-nodes.
var AssetStruct = []Node{
	{Predicate: AlsoIdentifiedBy},
}

// PathExpr emits the SPARQL property-path alternation that matches any node
// of the given schema, including the root (hence the trailing "?").
func PathExpr(nodes []Node) string {
	return pathExpr(nodes, "", "?")
}

func pathExpr(nodes []Node, prefix, suffix string) string {
	if len(nodes) == 0 {
		return suffix
	}
	var alts []string
	for _, n := range nodes {
		alts = append(alts, n.Predicate)
		if len(n.Children) > 0 {
			alts = append(alts, "("+pathExpr(n.Children, n.Predicate+"/", "")+")")
		}
	}
	return prefix + "(" + strings.Join(alts, "|") + ")" + suffix
}

// PolicyStructSelector is the precomputed path expression for PolicyStruct.
var PolicyStructSelector = PathExpr(PolicyStruct)

// DutyConstraintPath locates the constraint nodes that carry agreement
// metadata, either under a permission's duty or a top-level duty.
const DutyConstraintPath = "(odrl:permission/odrl:duty/odrl:constraint|odrl:duty/odrl:constraint)"

// DutyConstraintChains is the same path as explicit predicate chains, for
// walking an in-memory graph.
var DutyConstraintChains = [][]string{
	{Permission, Duty, Constraint},
	{Duty, Constraint},
}

// MetadataAttrs maps the recognized agreement metadata keys onto the
// predicate discriminating the constraint node that carries the value.
// Unrecognized keys are a validation error.
var MetadataAttrs = map[string]string{
	"payAmount": "odrl:payAmount",
	"host":      "op:host",
}
