package policy

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/store/storetest"
	"github.com/clearrights/repository/vocab"
)

var (
	assetType    = vocab.ResolveString(vocab.AssetClass)
	selectorType = vocab.ResolveString(vocab.AssetSelectorClass)
)

// policyStore scripts the two queries coverage validation issues: the
// target listing and set membership probes.
type policyStore struct {
	*storetest.Repo
	targets []map[string]storetest.Binding

	// members maps "id:<set> op:hasElement id:<element>" to membership
	members map[string]bool
}

func newPolicyStore(targets ...map[string]storetest.Binding) *policyStore {
	ps := &policyStore{
		Repo:    storetest.New("repo1"),
		targets: targets,
		members: map[string]bool{},
	}
	ps.Repo.QueryFn = func(query, accept string) ([]byte, error) {
		if strings.Contains(query, "ASK") {
			for probe, present := range ps.members {
				if strings.Contains(query, probe) {
					return storetest.AskResult(present), nil
				}
			}
			return storetest.AskResult(false), nil
		}
		return storetest.SelectResult(ps.targets...), nil
	}
	return ps
}

func assetTarget(shortID string) map[string]storetest.Binding {
	return map[string]storetest.Binding{
		"target": storetest.URI(vocab.IDPrefix + shortID),
		"type":   storetest.URI(assetType),
	}
}

func selectorTarget(shortID, setID string, extra map[string]storetest.Binding) map[string]storetest.Binding {
	row := map[string]storetest.Binding{
		"target": storetest.URI(vocab.IDPrefix + shortID),
		"type":   storetest.URI(selectorType),
		"set_id": storetest.URI(vocab.IDPrefix + setID),
	}
	for k, v := range extra {
		row[k] = v
	}
	return row
}

func validate(t *testing.T, ps *policyStore, requested []string, explicit, requireAll bool) ([]string, error) {
	t.Helper()
	return ValidateAssets(context.Background(), slog.Default(), ps.Repo, "feedface", requested, explicit, requireAll)
}

func TestValidateAssetsEmptyTargets(t *testing.T) {
	ps := newPolicyStore()
	_, err := validate(t, ps, []string{"a1"}, false, true)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "No default target") {
		t.Fatalf("got %v", err)
	}
}

func TestValidateAssetsDirectTargetAlwaysCovered(t *testing.T) {
	ps := newPolicyStore(assetTarget("a1"))

	got, err := validate(t, ps, nil, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a1"}) {
		t.Fatalf("got %v", got)
	}

	// requesting something else without require_all still covers a1
	got, err = validate(t, ps, []string{"b9"}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a1"}) {
		t.Fatalf("got %v", got)
	}
}

func TestValidateAssetsExplicitMode(t *testing.T) {
	ps := newPolicyStore(assetTarget("a1"))
	_, err := validate(t, ps, []string{"b9"}, true, false)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "a1") {
		t.Fatalf("error should mention the required asset: %v", err)
	}

	// an empty request list is exempt from the explicit check
	got, err := validate(t, ps, nil, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a1"}) {
		t.Fatalf("got %v", got)
	}
}

func TestValidateAssetsRequireAllMissing(t *testing.T) {
	ps := newPolicyStore(assetTarget("a1"))
	_, err := validate(t, ps, []string{"b9"}, false, true)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "b9") || !strings.Contains(err.Error(), "not covered") {
		t.Fatalf("got %v", err)
	}
}

func TestValidateAssetsSelectorNotRequiredCoversSelectorID(t *testing.T) {
	ps := newPolicyStore(selectorTarget("5e1a", "5e7a", nil))

	got, err := validate(t, ps, nil, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"5e1a"}) {
		t.Fatalf("got %v", got)
	}
}

func TestValidateAssetsSelectorConsumesMatched(t *testing.T) {
	ps := newPolicyStore(selectorTarget("5e1a", "5e7a", map[string]storetest.Binding{
		"max_items": storetest.TypedLiteral("5", vocab.Prefixes["xsd"]+"integer"),
	}))
	ps.members["id:5e7a op:hasElement id:a1"] = true

	// a1 is matched and consumed; require_all passes even though a1 is
	// not itself in the covered set
	got, err := validate(t, ps, []string{"a1"}, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"5e1a"}) {
		t.Fatalf("got %v", got)
	}
}

func TestValidateAssetsRequiredSelectorCoversMatches(t *testing.T) {
	ps := newPolicyStore(selectorTarget("5e1a", "5e7a", map[string]storetest.Binding{
		"sel_required": storetest.Literal("true"),
		"max_items":    storetest.TypedLiteral("5", vocab.Prefixes["xsd"]+"integer"),
	}))
	ps.members["id:5e7a op:hasElement id:a1"] = true
	ps.members["id:5e7a op:hasElement id:a2"] = true

	got, err := validate(t, ps, []string{"a1", "a2"}, false, true)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a1", "a2"}) {
		t.Fatalf("got %v", got)
	}
}

func TestValidateAssetsCardinality(t *testing.T) {
	ps := newPolicyStore(selectorTarget("5e1a", "5e7a", map[string]storetest.Binding{
		"sel_required": storetest.Literal("true"),
		"max_items":    storetest.TypedLiteral("1", vocab.Prefixes["xsd"]+"integer"),
	}))
	ps.members["id:5e7a op:hasElement id:a1"] = true
	ps.members["id:5e7a op:hasElement id:a2"] = true

	_, err := validate(t, ps, []string{"a1", "a2"}, false, true)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "at most 1") {
		t.Fatalf("got %v", err)
	}
}

func TestValidateAssetsRequiredSelectorNeedsEnumeration(t *testing.T) {
	ps := newPolicyStore(selectorTarget("5e1a", "5e7a", map[string]storetest.Binding{
		"sel_required": storetest.Literal("true"),
	}))

	_, err := validate(t, ps, nil, false, true)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "enumerate") {
		t.Fatalf("got %v", err)
	}
}

func TestValidateAssetsUnknownTargetTypeSkipped(t *testing.T) {
	ps := newPolicyStore(
		map[string]storetest.Binding{
			"target": storetest.URI(vocab.IDPrefix + "odd1"),
			"type":   storetest.URI("http://example.com/Strange"),
		},
		assetTarget("a1"),
	)

	got, err := validate(t, ps, nil, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a1"}) {
		t.Fatalf("got %v", got)
	}
}

// Re-running validation against an unchanged store yields identical
// results.
func TestValidateAssetsIdempotent(t *testing.T) {
	ps := newPolicyStore(
		selectorTarget("5e1a", "5e7a", map[string]storetest.Binding{
			"max_items": storetest.TypedLiteral("5", vocab.Prefixes["xsd"]+"integer"),
		}),
		assetTarget("a1"),
	)
	ps.members["id:5e7a op:hasElement id:b1"] = true

	first, err := validate(t, ps, []string{"b1"}, false, true)
	if err != nil {
		t.Fatal(err)
	}
	second, err := validate(t, ps, []string{"b1"}, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
}
