// internal/workers/inventory/search-vehicles/query.go
package searchvehicles

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// buildSearchBody assembles the search request body. Only vehicles still
// marked available are ever returned.
func buildSearchBody(input *Input) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"status": "available"},
		},
	}

	if input.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  input.Keywords,
				"fields": []string{"make^3", "model^3", "description"},
				"type":   "best_fields",
			},
		})
	}

	if input.MaxPrice > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"price": map[string]interface{}{"lte": input.MaxPrice},
			},
		})
	}

	if input.DealerID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"dealerId": input.DealerID},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
		"sort": sortClause(input.Sort),
	}
	return body
}

func sortClause(sort string) []map[string]interface{} {
	switch sort {
	case "price_desc":
		return []map[string]interface{}{{"price": "desc"}}
	case "year_desc":
		return []map[string]interface{}{{"year": "desc"}}
	case "newest":
		return []map[string]interface{}{{"createdAt": "desc"}}
	default:
		return []map[string]interface{}{{"price": "asc"}}
	}
}

func clampPagination(p Pagination) Pagination {
	if p.From < 0 {
		p.From = 0
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}
