package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"exam-service/internal/app"
	"exam-service/internal/domain"
	"exam-service/internal/infra/memory"
)

const testAdminKey = "secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	results := app.NewResultsService(store, store)
	handler := NewHandler(
		app.NewCatalogService(store),
		app.NewUserService(store, 4, 10),
		app.NewSessionService(store, results, memory.NewSessionRegistry()),
		results,
		testAdminKey,
	)
	mux := http.NewServeMux()
	handler.Register(mux)
	return httptest.NewServer(mux)
}

func TestAdminKeyGate(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	body := bytes.NewBufferString(`{"name":"Geo"}`)
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/admin/sets", body)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, server.URL+"/api/admin/sets", bytes.NewBufferString(`{"name":"Geo"}`))
	req.Header.Set("X-Admin-Key", "wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", resp.StatusCode)
	}
}

func TestSetCRUDAndErrors(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	var created struct {
		ID int64 `json:"id"`
	}
	status := adminPost(t, server, "/api/admin/sets",
		`{"name":"Geo","questions":[{"prompt":"Capital of France?","answer":"Paris"}]}`, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	if status := adminPost(t, server, "/api/admin/sets", `{"name":"Geo"}`, nil); status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", status)
	}
	if status := adminPost(t, server, "/api/admin/sets", `{"name":""}`, nil); status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty name, got %d", status)
	}

	var sets []domain.Set
	getJSON(t, server, "/api/sets", &sets)
	if len(sets) != 1 || sets[0].Name != "Geo" {
		t.Fatalf("unexpected sets %+v", sets)
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/admin/sets/999", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting unknown set, got %d", resp.StatusCode)
	}
}

func TestSessionOverREST(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	var created struct {
		ID int64 `json:"id"`
	}
	adminPost(t, server, "/api/admin/sets",
		`{"name":"Geo","questions":[{"prompt":"Capital of France?","answer":"Paris"},{"prompt":"Capital of Italy?","answer":"Rome"}]}`, &created)

	var session sessionStateResponse
	resp, err := http.Post(server.URL+"/api/sessions", "application/json",
		bytes.NewBufferString(`{"setId":1,"takerName":"alice"}`))
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	decodeBody(t, resp, &session)
	if resp.StatusCode != http.StatusCreated || session.Total != 2 || session.Prompt != "Capital of France?" {
		t.Fatalf("unexpected session response %d %+v", resp.StatusCode, session)
	}

	var outcome domain.AnswerOutcome
	resp, err = http.Post(server.URL+"/api/sessions/"+session.Token+"/answers", "application/json",
		bytes.NewBufferString(`{"answer":" paris "}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	decodeBody(t, resp, &outcome)
	if !outcome.Correct || outcome.Score != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	resp, err = http.Post(server.URL+"/api/sessions/"+session.Token+"/answers", "application/json",
		bytes.NewBufferString(`{"answer":"ROME"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	decodeBody(t, resp, &outcome)

	var summary domain.Summary
	resp, err = http.Post(server.URL+"/api/sessions/"+session.Token+"/finish", "application/json", nil)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	decodeBody(t, resp, &summary)
	if summary.Score != 2 || summary.Total != 2 {
		t.Fatalf("expected 2/2, got %+v", summary)
	}

	resp, err = http.Post(server.URL+"/api/sessions/"+session.Token+"/finish", "application/json", nil)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on double finish, got %d", resp.StatusCode)
	}

	var history []domain.Result
	getJSON(t, server, "/api/results?taker=alice", &history)
	if len(history) != 1 || history[0].SetName != "Geo" || history[0].Score != 2 {
		t.Fatalf("unexpected history %+v", history)
	}

	var avg struct {
		Display string `json:"display"`
	}
	getJSON(t, server, "/api/sets/1/average", &avg)
	if avg.Display != "100.00%" {
		t.Fatalf("unexpected average %q", avg.Display)
	}
}

func TestAverageNoResults(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	adminPost(t, server, "/api/admin/sets", `{"name":"Empty"}`, nil)

	var avg struct {
		Display string `json:"display"`
	}
	getJSON(t, server, "/api/sets/1/average", &avg)
	if avg.Display != "no results" {
		t.Fatalf("expected no-results sentinel, got %q", avg.Display)
	}
}

func adminPost(t *testing.T, server *httptest.Server, path, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Admin-Key", testAdminKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	if out != nil {
		decodeBody(t, resp, out)
	} else {
		resp.Body.Close()
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, server *httptest.Server, path string, out interface{}) {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	decodeBody(t, resp, out)
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
