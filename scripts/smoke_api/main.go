package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const defaultBaseURL = "http://localhost:3000/api/v1"

var baseURL = defaultBaseURL

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(title, method, url string, body interface{}, wantStatus int) []byte {
	color.Cyan("\n▶ %s  [%s %s]", title, method, url)
	resp, respBody, err := sendRequest(method, url, body)
	if err != nil {
		color.Red("❌ Request failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode != wantStatus {
		color.Red("❌ Expected %d, got %d", wantStatus, resp.StatusCode)
		prettyPrint(respBody)
		os.Exit(1)
	}
	color.Green("✅ %d", resp.StatusCode)
	if loc := resp.Header.Get("Location"); loc != "" {
		color.Yellow("Location: %s", loc)
	}
	if len(respBody) > 0 {
		prettyPrint(respBody)
	}
	return respBody
}

func main() {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		baseURL = url
	}
	color.Magenta("=== Course Notes API smoke run against %s ===", baseURL)

	created := step("Create annotation", http.MethodPost, "/annotations", map[string]interface{}{
		"user":            "smoke-user",
		"course_id":       "smoke-course",
		"usage_id":        "smoke-usage",
		"text":            "Smoke test annotation",
		"quote":           "quoted passage",
		"ranges":          []interface{}{map[string]interface{}{"start": "/p[1]", "end": "/p[1]", "startOffset": 0, "endOffset": 5}},
		"tags":            []string{"smoke"},
		"permission_type": "course",
	}, http.StatusCreated)

	var note struct {
		Id string `json:"id"`
	}
	if err := json.Unmarshal(created, &note); err != nil || note.Id == "" {
		color.Red("❌ No id in create response")
		os.Exit(1)
	}

	step("List annotations", http.MethodGet, "/annotations?course_id=smoke-course&user=smoke-user", nil, http.StatusOK)
	step("Show annotation", http.MethodGet, "/annotations/"+note.Id+"?user=smoke-user", nil, http.StatusOK)
	step("Update annotation", http.MethodPut, "/annotations/"+note.Id, map[string]interface{}{
		"user": "smoke-user",
		"text": "Updated smoke annotation",
		"tags": []string{"smoke", "updated"},
	}, http.StatusOK)
	step("Update by another user", http.MethodPut, "/annotations/"+note.Id, map[string]interface{}{
		"user": "intruder",
		"text": "nope",
		"tags": []string{},
	}, http.StatusForbidden)

	step("Create reply", http.MethodPost, "/annotations/"+note.Id+"/replies", map[string]interface{}{
		"user":   "smoke-peer",
		"text":   "Smoke reply",
		"ranges": []interface{}{map[string]interface{}{"start": "/p[1]"}},
	}, http.StatusCreated)
	step("List replies", http.MethodGet, "/annotations/"+note.Id+"/replies", nil, http.StatusOK)

	step("Search", http.MethodGet, "/search?course_id=smoke-course&user=smoke-user&perm=course&text=smoke&highlight=1", nil, http.StatusOK)

	step("Delete annotation", http.MethodDelete, "/annotations/"+note.Id, map[string]interface{}{"user": "smoke-user"}, http.StatusNoContent)
	step("Show deleted annotation", http.MethodGet, "/annotations/"+note.Id+"?user=smoke-user", nil, http.StatusNotFound)

	color.Magenta("\n=== All smoke steps passed ===")
}
