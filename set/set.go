// Package set implements named collections of assets. Policies reference
// sets through asset selectors; set membership drives which assets an
// agreement may cover.
package set

import (
	"context"
	"time"

	"github.com/clearrights/repository/entity"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// Kind is the set entity kind.
var Kind = &entity.Kind{
	Name:         "set",
	Class:        vocab.SetClass,
	ListExtraIDs: "?title",
	ListExtraQuery: `
    OPTIONAL { ?{id_name} dcterm:title ?title . }
`,
}

const newSetTemplate = `
{id} a {class} .
{id} dcterm:title {title} .
`

// New creates an empty set and returns its short id. A missing title gets
// a generated one carrying the creation time.
func New(ctx context.Context, repo store.Repository, title string) (string, error) {
	if title == "" {
		title = "new set created on " + time.Now().UTC().Format(time.RFC3339)
	}
	newID := id.New()
	payload := vocab.TurtlePrefixes + entity.Expand(newSetTemplate, map[string]string{
		"id":    "id:" + newID,
		"class": Kind.Class,
		"title": entity.QuoteString(title),
	})
	if err := repo.Store(ctx, []byte(payload), "application/x-turtle"); err != nil {
		return "", err
	}
	return newID, nil
}

// HasElement reports whether the asset is a member of the set.
func HasElement(ctx context.Context, repo store.Repository, setID, elementID string) (bool, error) {
	nid, err := id.Normalise(elementID)
	if err != nil {
		return false, err
	}
	return Kind.MatchAttr(ctx, repo, setID, vocab.HasElement, nid)
}

// Elements returns a page of the set's member ids.
func Elements(ctx context.Context, repo store.Repository, setID string, page, pageSize int) ([]string, error) {
	terms, err := Kind.GetAttr(ctx, repo, setID, vocab.HasElement, nil, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		out = append(out, id.Shorten(term.String()))
	}
	return out, nil
}

// SetElements replaces the set's membership.
func SetElements(ctx context.Context, repo store.Repository, setID string, elementIDs []string) error {
	values, err := refValues(elementIDs)
	if err != nil {
		return err
	}
	return Kind.SetAttr(ctx, repo, setID, vocab.HasElement, values, nil, true)
}

// AppendElements adds members to the set.
func AppendElements(ctx context.Context, repo store.Repository, setID string, elementIDs []string) error {
	values, err := refValues(elementIDs)
	if err != nil {
		return err
	}
	return Kind.AppendAttr(ctx, repo, setID, vocab.HasElement, values, nil, true)
}

// RemoveElements removes members from the set; absent members are ignored.
func RemoveElements(ctx context.Context, repo store.Repository, setID string, elementIDs []string) error {
	values, err := refValues(elementIDs)
	if err != nil {
		return err
	}
	return Kind.RemoveAttr(ctx, repo, setID, vocab.HasElement, values, nil, true)
}

func refValues(elementIDs []string) ([]entity.Value, error) {
	values := make([]entity.Value, 0, len(elementIDs))
	for _, e := range elementIDs {
		nid, err := id.Normalise(e)
		if err != nil {
			return nil, err
		}
		values = append(values, entity.Ref(nid))
	}
	return values, nil
}
