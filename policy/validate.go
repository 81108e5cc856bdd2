package policy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/set"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// ValidateAssets checks the requested assets against the policy's targets
// and returns the covered asset ids.
//
// Direct asset targets are always covered, whether requested or not; with
// explicit set, a non-empty request that omits a direct target is
// rejected instead. Selector targets match requested ids against their
// set: a required selector covers exactly its matched elements, an
// optional selector covers its own id and consumes the matched requests.
// Requested ids consumed by an optional selector are not reported as
// missing even when nothing ends up covering them.
func ValidateAssets(ctx context.Context, logger *slog.Logger, repo store.Repository, policyID string, requested []string, explicit, requireAll bool) ([]string, error) {
	targets, err := Targets(ctx, repo, policyID)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, errs.Validationf("Invalid policy - No default target")
	}

	selectorType := vocab.ResolveString(vocab.AssetSelectorClass)
	assetType := vocab.ResolveString(vocab.AssetClass)

	covered := newIDSet()
	remaining := newIDSet(requested...)

	for _, target := range targets {
		switch target.Type {
		case selectorType:
			matched, err := matchedInSelector(ctx, repo, target, remaining)
			if err != nil {
				return nil, err
			}
			if target.SelRequired {
				covered.addAll(matched)
			} else {
				covered.add(target.ID)
				remaining.removeAll(matched)
			}
			if remaining.equal(covered) {
				// every requested asset is validated; the other
				// selectors cannot change the outcome
				return finish(covered, remaining, requireAll)
			}
		case assetType:
			if explicit && remaining.len() > 0 && !remaining.has(target.ID) {
				return nil, errs.Validationf("The policy requires you to accept %s", target.ID)
			}
			// direct targets are covered even when not requested
			covered.add(target.ID)
		default:
			logger.Warn("policy target has an unexpected type", "target", target.ID, "type", target.Type)
		}
	}
	return finish(covered, remaining, requireAll)
}

func finish(covered, remaining *idSet, requireAll bool) ([]string, error) {
	missing := remaining.difference(covered)
	if len(missing) > 0 && requireAll {
		return nil, errs.Validationf("Assets (%s) are not covered by this policy", strings.Join(missing, ","))
	}
	return covered.items(), nil
}

// matchedInSelector returns the remaining requested ids that are members
// of the selector's set, in short form.
func matchedInSelector(ctx context.Context, repo store.Repository, target Target, remaining *idSet) ([]string, error) {
	if target.SetID == "" {
		return nil, nil
	}
	if remaining.len() == 0 {
		if target.SelRequired {
			return nil, errs.Validationf("This policy requires you to enumerate the elements you want to accept")
		}
		return nil, nil
	}

	var matched []string
	for _, cid := range remaining.items() {
		present, err := set.HasElement(ctx, repo, target.SetID, cid)
		if err != nil {
			return nil, err
		}
		if present {
			matched = append(matched, id.Shorten(cid))
		}
	}
	if len(matched) > target.MaxItems {
		return nil, errs.Validationf("This policy requires you to pick at most %d elements", target.MaxItems)
	}
	return matched, nil
}

// idSet is a string set preserving insertion order, so that validation
// results and membership probes are deterministic.
type idSet struct {
	order []string
	m     map[string]struct{}
}

func newIDSet(items ...string) *idSet {
	s := &idSet{m: make(map[string]struct{}, len(items))}
	s.addAll(items)
	return s
}

func (s *idSet) add(v string) {
	if _, ok := s.m[v]; ok {
		return
	}
	s.m[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *idSet) addAll(vs []string) {
	for _, v := range vs {
		s.add(v)
	}
}

func (s *idSet) removeAll(vs []string) {
	for _, v := range vs {
		if _, ok := s.m[v]; !ok {
			continue
		}
		delete(s.m, v)
		for i, o := range s.order {
			if o == v {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *idSet) has(v string) bool {
	_, ok := s.m[v]
	return ok
}

func (s *idSet) len() int { return len(s.order) }

func (s *idSet) equal(other *idSet) bool {
	if len(s.m) != len(other.m) {
		return false
	}
	for v := range s.m {
		if _, ok := other.m[v]; !ok {
			return false
		}
	}
	return true
}

func (s *idSet) difference(other *idSet) []string {
	var out []string
	for _, v := range s.order {
		if !other.has(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *idSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
