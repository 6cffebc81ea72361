package integration

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"course-notes-be/internal/bootstrap"
	"course-notes-be/internal/config"
	"course-notes-be/internal/model"
	"course-notes-be/internal/repository/specification"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/internal/server"
	"course-notes-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*server.Server, unitofwork.RepositoryFactory, string) {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(dsn, cfg.Database.Pool())
	require.NoError(t, err, "Failed to connect to DB")
	require.NoError(t, gormDB.AutoMigrate(&model.Note{}))

	cfg.Search.Disabled = true
	cfg.App.NatsURL = ""

	container := bootstrap.NewContainer(gormDB, cfg)
	t.Cleanup(container.Close)

	// unique course id keeps runs isolated on a shared database
	course := "integration-" + uuid.NewString()
	t.Cleanup(func() {
		gormDB.Where("course_id = ?", course).Delete(&model.Note{})
	})

	return server.New(cfg, container), unitofwork.NewRepositoryFactory(gormDB), course
}

func TestNotesAPIAgainstPostgres(t *testing.T) {
	srv, uowFactory, course := setupServer(t)
	app := srv.GetApp()

	do := func(method, path, body string) (*http.Response, []byte) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, respBody
	}

	resp, body := do(http.MethodPost, "/api/v1/annotations", `{
		"user": "u1", "course_id": "`+course+`", "usage_id": "block-1",
		"text": "Krebs cycle", "ranges": [{"start": "/p[1]"}], "tags": ["Biology"],
		"permission_type": "course"
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &created))
	id := created["id"].(string)
	assert.Equal(t, "/api/v1/annotations/"+id+"/", resp.Header.Get("Location"))

	resp, body = do(http.MethodPost, "/api/v1/annotations/"+id+"/replies", `{"user": "u2", "text": "nice", "ranges": [{}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	t.Run("Search matches jsonb tags case-insensitively", func(t *testing.T) {
		resp, body := do(http.MethodGet, "/api/v1/search?course_id="+course+"&perm=course&text=biology", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var res struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(body, &res))
		assert.Equal(t, 1, res.Total)
	})

	t.Run("Deleting the annotation removes its replies", func(t *testing.T) {
		resp, _ := do(http.MethodDelete, "/api/v1/annotations/"+id, `{"user": "u1"}`)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		remaining, err := uowFactory.NewUnitOfWork(context.Background()).NoteRepository().
			FindAll(context.Background(), specification.ByCourseID{CourseID: course})
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}
