package elastic

import "fmt"

const DefaultHighlightTag = "em"

// Query describes one search: exact term filters, an optional free-text
// match on the data field, paging and optional highlighting.
type Query struct {
	Terms     map[string]string
	Text      string
	From      int
	Size      int
	Highlight *Highlight
}

type Highlight struct {
	Tag   string
	Class string
}

func (h Highlight) tag() string {
	if h.Tag == "" {
		return DefaultHighlightTag
	}
	return h.Tag
}

// PreTag renders the opening tag, e.g. <em class="note-highlight">.
func (h Highlight) PreTag() string {
	if h.Class != "" {
		return fmt.Sprintf(`<%s class="%s">`, h.tag(), h.Class)
	}
	return fmt.Sprintf("<%s>", h.tag())
}

func (h Highlight) PostTag() string {
	return fmt.Sprintf("</%s>", h.tag())
}

// body builds the request document sent to the _search endpoint.
func (q Query) body() map[string]interface{} {
	filters := make([]interface{}, 0, len(q.Terms))
	for field, value := range q.Terms {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{field: value},
		})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if q.Text != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"match": map[string]interface{}{"data": q.Text},
			},
		}
	}

	body := map[string]interface{}{
		"from":  q.From,
		"size":  q.Size,
		"query": map[string]interface{}{"bool": boolQuery},
	}

	if q.Highlight != nil {
		// number_of_fragments 0 highlights the whole field instead of snippets
		whole := map[string]interface{}{"number_of_fragments": 0}
		body["highlight"] = map[string]interface{}{
			// the match runs on data, so text and tags are highlighted from
			// the query terms rather than from their own matches
			"require_field_match": false,
			"pre_tags":            []string{q.Highlight.PreTag()},
			"post_tags":           []string{q.Highlight.PostTag()},
			"fields": map[string]interface{}{
				"text": whole,
				"tags": whole,
			},
		}
	}

	return body
}
