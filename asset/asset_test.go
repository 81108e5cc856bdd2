package asset

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/index"
	"github.com/clearrights/repository/store/storetest"
	"github.com/clearrights/repository/vocab"
)

func decodeTurtle(t *testing.T, payload string) *graph.Graph {
	t.Helper()
	g, err := graph.Decode([]byte(vocab.TurtlePrefixes+payload), graph.FormatTurtle)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

const assetPayload = `
id:aaa111 a op:Asset ;
    op:alsoIdentifiedBy _:b0 .
_:b0 a op:Id ;
    op:id_type hub:isbn ;
    op:value "978-3-16-148410-0" .
id:bbb222 a op:Asset .
`

func TestEntityIDs(t *testing.T) {
	g := decodeTurtle(t, assetPayload)
	got := EntityIDs(g)
	if len(got) != 2 {
		t.Fatalf("expected 2 ids, got %v", got)
	}
	found := map[string]bool{}
	for _, v := range got {
		found[v] = true
	}
	if !found["aaa111"] || !found["bbb222"] {
		t.Fatalf("got %v", got)
	}
}

func TestSourceIDs(t *testing.T) {
	g := decodeTurtle(t, assetPayload)

	ids, err := SourceIDs(g, "aaa111")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 source id, got %v", ids)
	}
	if ids[0].Type != "isbn" || ids[0].Value != "978-3-16-148410-0" {
		t.Fatalf("got %+v", ids[0])
	}

	ids, err = SourceIDs(g, "bbb222")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no source ids, got %v", ids)
	}
}

func TestAddIDsValidation(t *testing.T) {
	repo := storetest.New("repo1")
	k := NewKind(index.Nop{}, slog.Default())

	err := AddIDs(context.Background(), repo, k, "aaa111", []SourceID{{Type: "isbn"}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "missing source_id for entry:1") {
		t.Fatalf("got %v", err)
	}
	if len(repo.Calls()) != 0 {
		t.Fatal("invalid ids reached the store")
	}
}

func TestAddIDsQueryShape(t *testing.T) {
	repo := storetest.New("repo1")
	k := NewKind(index.Nop{}, slog.Default())

	err := AddIDs(context.Background(), repo, k, "aaa111", []SourceID{
		{Type: "isbn", Value: "978-3-16-148410-0"},
	})
	if err != nil {
		t.Fatal(err)
	}

	updates := repo.CallsOf("update")
	if len(updates) != 2 {
		t.Fatalf("expected insert plus timestamp, got %d updates", len(updates))
	}
	q := updates[0].Body
	for _, want := range []string{"INSERT DATA", "id:aaa111 op:alsoIdentifiedBy", "hub:isbn", `"978-3-16-148410-0"`, "rdf:type op:Id"} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q:\n%s", want, q)
		}
	}
	if !strings.Contains(updates[1].Body, "dcterm:modified") {
		t.Fatalf("timestamp update missing:\n%s", updates[1].Body)
	}
}

func TestSubselectIDList(t *testing.T) {
	sub, err := SubselectIDList([]SourceID{
		{Type: HubKeyType, Value: "deadbeef"},
		{Type: "isbn", Value: "978 3"},
	}, "entity")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"(id:deadbeef)",
		"BIND (hub:hub_key AS ?entity_id_type)",
		`(hub:isbn "978+3")`,
		"?entity_entity op:alsoIdentifiedBy ?alt_id .",
		" UNION ",
	} {
		if !strings.Contains(sub, want) {
			t.Fatalf("subselect missing %q:\n%s", want, sub)
		}
	}

	if _, err := SubselectIDList(nil, "entity"); err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestPruneDeletesUnsharedIDNodes(t *testing.T) {
	repo := storetest.New("repo1")
	step := 0
	repo.QueryFn = func(query, accept string) ([]byte, error) {
		step++
		switch step {
		case 1: // matching entities
			return storetest.SelectResult(
				map[string]storetest.Binding{"s": storetest.URI(vocab.IDPrefix + "aaa111")},
			), nil
		case 2: // source ids of the entity
			return storetest.SelectResult(
				map[string]storetest.Binding{
					"id":     storetest.Literal("978-3-16-148410-0"),
					"idtype": storetest.URI(vocab.Prefixes["hub"] + "isbn"),
				},
			), nil
		default: // reference count
			return storetest.SelectResult(
				map[string]storetest.Binding{"count": storetest.TypedLiteral("0", vocab.Prefixes["xsd"]+"integer")},
			), nil
		}
	}

	err := Prune(context.Background(), repo, []SourceID{{Type: "isbn", Value: "978-3-16-148410-0"}})
	if err != nil {
		t.Fatal(err)
	}

	updates := repo.CallsOf("update")
	if len(updates) != 2 {
		t.Fatalf("expected id-node delete plus entity delete, got %d", len(updates))
	}
	if !strings.Contains(updates[0].Body, "op:id_type") {
		t.Fatalf("first delete should drop the id node:\n%s", updates[0].Body)
	}
	if !strings.Contains(updates[1].Body, "id:aaa111 ?p ?o") {
		t.Fatalf("second delete should drop the entity:\n%s", updates[1].Body)
	}
}

func TestPruneKeepsSharedIDNodes(t *testing.T) {
	repo := storetest.New("repo1")
	step := 0
	repo.QueryFn = func(query, accept string) ([]byte, error) {
		step++
		switch step {
		case 1:
			return storetest.SelectResult(
				map[string]storetest.Binding{"s": storetest.URI(vocab.IDPrefix + "aaa111")},
			), nil
		case 2:
			return storetest.SelectResult(
				map[string]storetest.Binding{
					"id":     storetest.Literal("x"),
					"idtype": storetest.URI(vocab.Prefixes["hub"] + "isbn"),
				},
			), nil
		default:
			return storetest.SelectResult(
				map[string]storetest.Binding{"count": storetest.TypedLiteral("2", vocab.Prefixes["xsd"]+"integer")},
			), nil
		}
	}

	if err := Prune(context.Background(), repo, []SourceID{{Type: "isbn", Value: "x"}}); err != nil {
		t.Fatal(err)
	}

	updates := repo.CallsOf("update")
	if len(updates) != 1 {
		t.Fatalf("expected only the entity delete, got %d", len(updates))
	}
	if !strings.Contains(updates[0].Body, "id:aaa111 ?p ?o") {
		t.Fatalf("got:\n%s", updates[0].Body)
	}
}
