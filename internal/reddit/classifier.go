package reddit

import (
	"context"
	"fmt"
	"math"

	"github.com/tigerroll/graphload/pkg/batch/adapter/dgraph"
	"github.com/tigerroll/graphload/pkg/batch/component/item/processor"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// LinkedPostsQuery lists the link_id of every stored comment.
const LinkedPostsQuery = `{
  data(func: has(link_id)) {
    link_id
  }
}`

// kindPrefixLen is the length of a fullname kind prefix such as "t3_".
const kindPrefixLen = 3

// Querier runs a read-only query. *dgraph.Adapter satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, vars map[string]interface{}) dgraph.QueryResult
}

// IDSet is a set of post ids.
type IDSet map[string]struct{}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// ExistingPostIDs collects the ids of posts that already have comments in the
// database, taken from each comment's link_id with its kind prefix removed.
func ExistingPostIDs(ctx context.Context, q Querier) (IDSet, error) {
	res := q.Query(ctx, LinkedPostsQuery, nil)
	if !res.OK() {
		return nil, fmt.Errorf("querying linked posts: %w", res.Err)
	}
	ids := IDSet{}
	rows, _ := res.Data["data"].([]interface{})
	for _, row := range rows {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		linkID, ok := m["link_id"].(string)
		if !ok || len(linkID) < kindPrefixLen {
			continue
		}
		ids[linkID[kindPrefixLen:]] = struct{}{}
	}
	logger.Infof("Found %d posts referenced by stored comments.", len(ids))
	return ids, nil
}

// LinkableContentClassifier admits posts that can anchor a discussion and
// every comment.
//
// A post is admitted when it has a domain, is not a crosspost, is not marked
// over_18 and has at least one comment. When existing is non-empty the post
// id must also be in it. A record that is not an admitted post is admitted
// when it carries a link_id.
func LinkableContentClassifier(existing IDSet) processor.Classifier {
	return func(rec model.Record) bool {
		if isLinkablePost(rec, existing) {
			return true
		}
		_, isComment := rec.String("link_id")
		return isComment
	}
}

func isLinkablePost(rec model.Record, existing IDSet) bool {
	if _, ok := rec.String("domain"); !ok {
		return false
	}
	if truthy(rec["crosspost_parent"]) {
		return false
	}
	if truthy(rec["over_18"]) {
		return false
	}
	if n, ok := rec.Float("num_comments"); !ok || !(n > 0) {
		return false
	}
	if len(existing) == 0 {
		return true
	}
	id, _ := rec.String("id")
	return existing.Contains(id)
}

// truthy treats null, false, zero, NaN and the empty string as unset.
// Any other value, including "0" and "false", is set.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		n, ok := model.Record{"v": v}.Float("v")
		return !ok || (n != 0 && !math.IsNaN(n))
	}
}
