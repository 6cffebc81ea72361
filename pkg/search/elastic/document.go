package elastic

// NoteDocument is what gets stored in the index for one annotation. Ranges and
// Tags keep their serialized JSON form; Data is the combined full-text field.
type NoteDocument struct {
	Id             string `json:"id"`
	User           string `json:"user"`
	CourseId       string `json:"course_id"`
	UsageId        string `json:"usage_id"`
	Quote          string `json:"quote"`
	Text           string `json:"text"`
	Ranges         string `json:"ranges"`
	Tags           string `json:"tags,omitempty"`
	PermissionType string `json:"permission_type"`
	Created        string `json:"created,omitempty"`
	Updated        string `json:"updated,omitempty"`
	Data           string `json:"data"`
}

// Hit is one search result with any highlighted fragments keyed by field.
type Hit struct {
	Id        string
	Source    NoteDocument
	Highlight map[string][]string
}

// HighlightedField returns the first fragment for a field, if any.
func (h Hit) HighlightedField(field string) (string, bool) {
	fragments := h.Highlight[field]
	if len(fragments) == 0 {
		return "", false
	}
	return fragments[0], true
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "user":            {"type": "keyword"},
      "course_id":       {"type": "keyword"},
      "usage_id":        {"type": "keyword"},
      "permission_type": {"type": "keyword"},
      "quote":           {"type": "text"},
      "text":            {"type": "text"},
      "tags":            {"type": "text"},
      "data":            {"type": "text"},
      "ranges":          {"type": "text", "index": false},
      "created":         {"type": "date"},
      "updated":         {"type": "date"}
    }
  }
}`
