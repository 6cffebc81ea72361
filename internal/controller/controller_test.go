package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"course-notes-be/internal/pkg/logger"
	"course-notes-be/internal/pkg/serverutils"
	"course-notes-be/internal/pkg/testdb"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/internal/service"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxResults = 3

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	log := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(testdb.New(t))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	publisher := service.NewPublisherService("NOTE_LIFECYCLE", pubSub, nil, log)

	paginator := serverutils.NewPaginator(maxResults)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api/v1")

	NewAnnotationController(service.NewAnnotationService(uowFactory, publisher), paginator, log).RegisterRoutes(api)
	NewReplyController(service.NewReplyService(uowFactory, publisher), paginator, log).RegisterRoutes(api)
	NewSearchController(service.NewSearchService(service.NewDBNoteSearcher(uowFactory), nil), paginator, log).RegisterRoutes(api)

	return app
}

type testResponse struct {
	Status   int
	Body     string
	Location string
}

func (r testResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(r.Body), v), r.Body)
}

func do(t *testing.T, app *fiber.App, method, path, body string) testResponse {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return testResponse{Status: resp.StatusCode, Body: string(data), Location: resp.Header.Get("Location")}
}

func createAnnotation(t *testing.T, app *fiber.App, body string) map[string]interface{} {
	t.Helper()
	res := do(t, app, http.MethodPost, "/api/v1/annotations/", body)
	require.Equal(t, http.StatusCreated, res.Status, res.Body)

	var note map[string]interface{}
	res.decode(t, &note)
	return note
}

const examplePayload = `{"user":"u1","course_id":"c1","usage_id":"x1","ranges":[{"start":0,"end":5}],"text":"hi"}`

func TestCreateAnnotation(t *testing.T) {
	app := newTestApp(t)

	res := do(t, app, http.MethodPost, "/api/v1/annotations/", examplePayload)
	require.Equal(t, http.StatusCreated, res.Status)

	var note map[string]interface{}
	res.decode(t, &note)
	assert.Equal(t, "u1", note["user"])
	assert.Equal(t, "hi", note["text"])
	assert.Equal(t, "personal", note["permission_type"])
	assert.Equal(t, []interface{}{}, note["tags"])
	assert.Contains(t, res.Body, `"ranges":[{"end":5,"start":0}]`)
	assert.Equal(t, "/api/v1/annotations/"+note["id"].(string)+"/", res.Location)

	fetched := do(t, app, http.MethodGet, res.Location+"?user=u1", "")
	assert.Equal(t, http.StatusOK, fetched.Status)
}

func TestCreateAnnotationRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty ranges", body: `{"user":"u1","course_id":"c1","usage_id":"x1","ranges":[],"text":"hi"}`},
		{name: "caller supplied id", body: `{"id":"1","user":"u1","course_id":"c1","usage_id":"x1","ranges":[{"start":0}]}`},
		{name: "empty object", body: `{}`},
		{name: "no body", body: ``},
		{name: "list body", body: `[1,2]`},
		{name: "malformed json", body: `{"user":`},
		{name: "missing usage", body: `{"user":"u1","course_id":"c1","ranges":[{"start":0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			res := do(t, app, http.MethodPost, "/api/v1/annotations/", tt.body)
			assert.Equal(t, http.StatusBadRequest, res.Status)
		})
	}
}

func TestListAnnotations(t *testing.T) {
	app := newTestApp(t)

	createAnnotation(t, app, `{"user":"u1","course_id":"c1","usage_id":"x1","ranges":[{"start":0}],"text":"private","permission_type":"personal"}`)
	createAnnotation(t, app, `{"user":"u1","course_id":"c1","usage_id":"x1","ranges":[{"start":0}],"text":"shared","permission_type":"course"}`)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTexts  []string
	}{
		{name: "missing user", query: "?course_id=c1", wantStatus: http.StatusBadRequest},
		{name: "missing course", query: "?user=u1", wantStatus: http.StatusBadRequest},
		{name: "empty user", query: "?course_id=c1&user=", wantStatus: http.StatusBadRequest},
		{name: "bad limit", query: "?course_id=c1&user=u1&limit=x", wantStatus: http.StatusBadRequest},
		{name: "author sees both", query: "?course_id=c1&user=u1", wantStatus: http.StatusOK, wantTexts: []string{"shared", "private"}},
		{name: "other user sees course note", query: "?course_id=c1&user=u2", wantStatus: http.StatusOK, wantTexts: []string{"shared"}},
		{name: "offset", query: "?course_id=c1&user=u1&offset=1", wantStatus: http.StatusOK, wantTexts: []string{"private"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, app, http.MethodGet, "/api/v1/annotations/"+tt.query, "")
			require.Equal(t, tt.wantStatus, res.Status, res.Body)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var notes []map[string]interface{}
			res.decode(t, &notes)
			texts := make([]string, 0, len(notes))
			for _, n := range notes {
				texts = append(texts, n["text"].(string))
			}
			assert.Equal(t, tt.wantTexts, texts)
		})
	}
}

func TestListAnnotationsLimitIsCapped(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < maxResults+2; i++ {
		createAnnotation(t, app, `{"user":"u1","course_id":"c1","usage_id":"x1","ranges":[{"start":0}],"permission_type":"course"}`)
	}

	for _, query := range []string{"", "&limit=100"} {
		res := do(t, app, http.MethodGet, "/api/v1/annotations/?course_id=c1&user=u1"+query, "")
		require.Equal(t, http.StatusOK, res.Status)

		var notes []map[string]interface{}
		res.decode(t, &notes)
		assert.Len(t, notes, maxResults)
	}

	res := do(t, app, http.MethodGet, "/api/v1/annotations/?course_id=c1&user=u1&limit=2", "")
	var notes []map[string]interface{}
	res.decode(t, &notes)
	assert.Len(t, notes, 2)
}

func TestShowAnnotation(t *testing.T) {
	app := newTestApp(t)
	note := createAnnotation(t, app, examplePayload)
	path := "/api/v1/annotations/" + note["id"].(string) + "/"

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "author", path: path + "?user=u1", wantStatus: http.StatusOK},
		{name: "no user", path: path, wantStatus: http.StatusOK},
		{name: "other user on personal note", path: path + "?user=u2", wantStatus: http.StatusNotFound},
		{name: "unknown id", path: "/api/v1/annotations/1b4e28ba-2fa1-11d2-883f-0016d3cca427/", wantStatus: http.StatusNotFound},
		{name: "malformed id", path: "/api/v1/annotations/not-a-uuid/", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, app, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantStatus == http.StatusNotFound {
				assert.JSONEq(t, `"Annotation not found!"`, res.Body)
			}
		})
	}
}

func TestUpdateAnnotation(t *testing.T) {
	app := newTestApp(t)
	note := createAnnotation(t, app, examplePayload)
	path := "/api/v1/annotations/" + note["id"].(string) + "/"

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "missing tags", path: path, body: `{"user":"u1","text":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "missing text", path: path, body: `{"user":"u1","tags":[]}`, wantStatus: http.StatusBadRequest},
		{name: "tags not a list", path: path, body: `{"user":"u1","text":"x","tags":"a"}`, wantStatus: http.StatusBadRequest},
		{name: "not the author", path: path, body: `{"user":"u2","text":"x","tags":[]}`, wantStatus: http.StatusForbidden},
		{
			name: "unknown id", path: "/api/v1/annotations/1b4e28ba-2fa1-11d2-883f-0016d3cca427/",
			body: `{"user":"u1","text":"x","tags":[]}`, wantStatus: http.StatusNotFound,
			wantBody: `"Annotation not found! No update performed."`,
		},
		{name: "author", path: path, body: `{"user":"u1","text":"updated","tags":["a","b"],"quote":"ignored"}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, app, http.MethodPut, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, res.Status, res.Body)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, res.Body)
			}
		})
	}

	res := do(t, app, http.MethodGet, path, "")
	var updated map[string]interface{}
	res.decode(t, &updated)
	assert.Equal(t, "updated", updated["text"])
	assert.Equal(t, []interface{}{"a", "b"}, updated["tags"])
	assert.Equal(t, "", updated["quote"])
	assert.Equal(t, note["created"], updated["created"])
}

func TestDeleteAnnotation(t *testing.T) {
	app := newTestApp(t)
	note := createAnnotation(t, app, examplePayload)
	path := "/api/v1/annotations/" + note["id"].(string) + "/"

	res := do(t, app, http.MethodDelete, path, `{"user":"u2"}`)
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.JSONEq(t, `"You cannot delete annotations you didn't create."`, res.Body)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, path, "").Status)

	res = do(t, app, http.MethodDelete, path+"?user=u2", "")
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = do(t, app, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = do(t, app, http.MethodDelete, path+"?user=u1", "")
	assert.Equal(t, http.StatusNoContent, res.Status)
	assert.Empty(t, res.Body)

	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, path, "").Status)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodDelete, path, `{"user":"u1"}`).Status)
}

func TestReplies(t *testing.T) {
	app := newTestApp(t)
	parent := createAnnotation(t, app, `{"user":"u1","course_id":"c9","usage_id":"x9","ranges":[{"start":0}],"permission_type":"course"}`)
	repliesPath := "/api/v1/annotations/" + parent["id"].(string) + "/replies/"

	var created []map[string]interface{}
	for _, text := range []string{"first", "second"} {
		res := do(t, app, http.MethodPost, repliesPath, `{"user":"u2","text":"`+text+`","ranges":[{"start":0}]}`)
		require.Equal(t, http.StatusCreated, res.Status, res.Body)

		var reply map[string]interface{}
		res.decode(t, &reply)
		assert.Equal(t, "c9", reply["course_id"])
		assert.Equal(t, "x9", reply["usage_id"])
		assert.NotContains(t, reply, "ranges")
		assert.NotContains(t, reply, "permission_type")
		assert.Equal(t, repliesPath+reply["id"].(string), res.Location)
		created = append(created, reply)
	}

	res := do(t, app, http.MethodGet, repliesPath, "")
	require.Equal(t, http.StatusOK, res.Status)
	var listed []map[string]interface{}
	res.decode(t, &listed)
	require.Len(t, listed, 2)
	assert.Equal(t, "second", listed[0]["text"])
	assert.Equal(t, "first", listed[1]["text"])

	replyPath := repliesPath + created[0]["id"].(string)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, replyPath, "").Status)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPut, replyPath, `{"user":"u2","text":"edited","tags":[]}`).Status)
	assert.Equal(t, http.StatusForbidden, do(t, app, http.MethodDelete, replyPath, `{"user":"u1"}`).Status)
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, replyPath, `{"user":"u2"}`).Status)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, replyPath, "").Status)

	// deleting the parent takes the remaining reply with it
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/api/v1/annotations/"+parent["id"].(string)+"/", `{"user":"u1"}`).Status)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, repliesPath+created[1]["id"].(string), "").Status)
}

func TestCreateReplyRejects(t *testing.T) {
	app := newTestApp(t)
	parent := createAnnotation(t, app, examplePayload)
	repliesPath := "/api/v1/annotations/" + parent["id"].(string) + "/replies/"

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "caller supplied id", path: repliesPath, body: `{"id":"x","user":"u2","ranges":[{"start":0}]}`, wantStatus: http.StatusBadRequest},
		{name: "no ranges", path: repliesPath, body: `{"user":"u2","text":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown parent", path: "/api/v1/annotations/1b4e28ba-2fa1-11d2-883f-0016d3cca427/replies/", body: `{"user":"u2","ranges":[{"start":0}]}`, wantStatus: http.StatusNotFound},
		{name: "malformed parent", path: "/api/v1/annotations/nope/replies/", body: `{"user":"u2","ranges":[{"start":0}]}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, app, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, res.Status, res.Body)
		})
	}
}

func TestSearch(t *testing.T) {
	app := newTestApp(t)
	createAnnotation(t, app, `{"user":"u1","course_id":"c1","usage_id":"x1","ranges":[{"start":0}],"text":"Krebs cycle","tags":["bio"]}`)
	createAnnotation(t, app, `{"user":"u1","course_id":"c1","usage_id":"x1","ranges":[{"start":0}],"text":"Shared","tags":["krebs"],"permission_type":"course"}`)
	createAnnotation(t, app, `{"user":"u2","course_id":"c1","usage_id":"x1","ranges":[{"start":0}],"text":"krebs again"}`)

	tests := []struct {
		name      string
		query     string
		wantTotal int
	}{
		{name: "personal by default", query: "?course_id=c1&user=u1", wantTotal: 1},
		{name: "explicit course", query: "?course_id=c1&perm=course", wantTotal: 1},
		{name: "no user sees course notes only", query: "?text=KREBS", wantTotal: 1},
		{name: "no user with personal perm still sees course notes only", query: "?text=krebs&perm=personal", wantTotal: 1},
		{name: "user sees own personal notes", query: "?text=krebs&user=u2", wantTotal: 1},
		{name: "text matches tags", query: "?text=krebs&perm=course", wantTotal: 1},
		{name: "limit", query: "?limit=1", wantTotal: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, app, http.MethodGet, "/api/v1/search/"+tt.query, "")
			require.Equal(t, http.StatusOK, res.Status)

			var body struct {
				Total int                      `json:"total"`
				Rows  []map[string]interface{} `json:"rows"`
			}
			res.decode(t, &body)
			assert.Equal(t, tt.wantTotal, body.Total)
			assert.Len(t, body.Rows, tt.wantTotal)
		})
	}

	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/api/v1/search/?offset=-2", "").Status)
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, isTruthy(""))
	assert.False(t, isTruthy("false"))
	assert.False(t, isTruthy("0"))
	assert.True(t, isTruthy("true"))
	assert.True(t, isTruthy("1"))
	assert.True(t, isTruthy("yes"))
}
