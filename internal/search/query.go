// query.go composes the boolean clause tree sent to the search backend from
// normalized filters and the caller's role.
package search

import (
	"time"

	"github.com/log-dashboard/log-dashboard/internal/auth"
)

// Compose combines filter criteria with the role's mandatory restrictions
// into one predicate tree. All clauses are ANDed; the role clauses are
// appended unconditionally so no combination of caller filters can widen a
// viewer's slice beyond INFO/WARN within the last three hours. With no
// clauses at all the result is match_all.
//
// now anchors the viewer lookback window so that composition is a pure
// function of its inputs.
func Compose(f FilterCriteria, role auth.Role, now time.Time) map[string]interface{} {
	clauses := make([]interface{}, 0, 5)

	// Free text may hit the message body or one of the structured fields;
	// prefix semantics on message let operators type partial sentences.
	if f.Query != "" {
		clauses = append(clauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"match_phrase_prefix": map[string]interface{}{"message": f.Query}},
					map[string]interface{}{"match": map[string]interface{}{"service": f.Query}},
					map[string]interface{}{"match": map[string]interface{}{"level": f.Query}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if f.Service != "" {
		clauses = append(clauses, termClause("service.keyword", f.Service))
	}

	if f.Level != "" {
		clauses = append(clauses, termClause("level.keyword", f.Level))
	}

	if f.Start != "" || f.End != "" {
		bounds := map[string]interface{}{}
		if f.Start != "" {
			bounds["gte"] = f.Start
		}
		if f.End != "" {
			bounds["lte"] = f.End
		}
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{"timestamp": bounds},
		})
	}

	// Mandatory role restrictions. These intersect with, never replace, the
	// caller's own filters.
	if levels := role.RestrictedLevels(); levels != nil {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{"level.keyword": levels},
		})
	}
	if window := role.LookbackWindow(); window > 0 {
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": map[string]interface{}{
					"gte": now.Add(-window).UTC().Format(time.RFC3339),
				},
			},
		})
	}

	if len(clauses) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{"filter": clauses},
	}
}

func termClause(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}
