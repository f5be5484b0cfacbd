package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobanner/adapters/memory"
	"gobanner/app"
	"gobanner/domain/banner"
	"gobanner/domain/decision"
	"gobanner/domain/run"
	"gobanner/domain/survey"
	"gobanner/internal/testkit"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	runs := app.NewRunService(app.NewPipeline(app.DefaultPipelineConfig(), nil), memory.NewRunRepository(), nil)
	srv := httptest.NewServer(NewServer(DefaultConfig(), runs, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

type runBody struct {
	Status  run.Status        `json:"status"`
	RunID   string            `json:"run_id"`
	Pending *decision.Pending `json:"pending"`
	Table   *banner.Table     `json:"table"`
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, runBody) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out runBody
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func startBody(ds *survey.Dataset, spec banner.Spec) map[string]interface{} {
	return map[string]interface{}{
		"dataset": survey.NewDerivedDataset(ds).Document(),
		"banner":  spec,
	}
}

func TestServer_StartCompletedRun(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/runs", startBody(testkit.WorkedExample(), banner.NewSpec("GROUP")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, run.StatusCompleted, body.Status)
	require.NotNil(t, body.Table)
	assert.Equal(t, []string{"GROUP"}, body.Table.Banners)

	list, err := http.Get(srv.URL + "/api/runs?status=completed")
	require.NoError(t, err)
	defer list.Body.Close()
	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&listed))
	assert.Equal(t, 1, listed.Count)

	for path, contentType := range map[string]string{
		"/":             "application/json",
		"/table.xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"/audit":        "text/html; charset=utf-8",
		"/verification": "application/yaml",
	} {
		got, err := http.Get(srv.URL + "/api/runs/" + body.RunID + path)
		require.NoError(t, err)
		got.Body.Close()
		assert.Equal(t, http.StatusOK, got.StatusCode, path)
		assert.Equal(t, contentType, got.Header.Get("Content-Type"), path)
	}
}

func TestServer_DecisionFlow(t *testing.T) {
	srv := newTestServer(t)
	ds, err := testkit.NewSurveyGenerator(testkit.DefaultSurveyConfig()).Generate()
	require.NoError(t, err)

	resp, body := postJSON(t, srv.URL+"/api/runs", startBody(ds, banner.NewSpec()))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, run.StatusSuspended, body.Status)
	require.NotNil(t, body.Pending)
	assert.Equal(t, decision.KindClassificationReview, body.Pending.Kind)

	resp, _ = postJSON(t, srv.URL+"/api/runs/"+body.RunID+"/decisions", map[string]interface{}{"options": []string{"NOPE:nominal"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	id := body.RunID
	for i := 0; body.Status == run.StatusSuspended && i < 5; i++ {
		resp, body = postJSON(t, srv.URL+"/api/runs/"+id+"/decisions", map[string]interface{}{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, run.StatusCompleted, body.Status)

	resp, _ = postJSON(t, srv.URL+"/api/runs/"+id+"/decisions", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "nothing is pending")
}

func TestServer_Errors(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/api/runs", startBody(testkit.WorkedExample(), banner.NewSpec("NOPE")))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	got, err := http.Get(srv.URL + "/api/runs/missing")
	require.NoError(t, err)
	got.Body.Close()
	assert.Equal(t, http.StatusNotFound, got.StatusCode)

	got, err = http.Get(srv.URL + "/api/runs/missing/table.xlsx")
	require.NoError(t, err)
	got.Body.Close()
	assert.Equal(t, http.StatusNotFound, got.StatusCode)

	bad, err := http.Post(srv.URL+"/api/runs", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func postUpload(t *testing.T, url string, fields map[string]string) runBody {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	data, err := mw.CreateFormFile("data", "survey.csv")
	require.NoError(t, err)
	_, err = data.Write([]byte("Q1,GROUP\n1,1\n2,1\n3,1\n4,2\n5,2\n5,2\n"))
	require.NoError(t, err)
	labels, err := mw.CreateFormFile("labels", "labels.csv")
	require.NoError(t, err)
	_, err = labels.Write([]byte("Q1,1,Very dissatisfied\nQ1,2,Dissatisfied\nQ1,3,Neutral\nQ1,4,Satisfied\nQ1,5,Very satisfied\nGROUP,1,First\nGROUP,2,Second\n"))
	require.NoError(t, err)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/api/runs", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body runBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestServer_MultipartUpload(t *testing.T) {
	srv := newTestServer(t)

	body := postUpload(t, srv.URL, map[string]string{"banners": "GROUP"})
	assert.Equal(t, run.StatusCompleted, body.Status)
	require.NotNil(t, body.Table)
	_, ok := body.Table.Row("Q1_top2")
	assert.True(t, ok)
}

func TestServer_MultipartPlanRecoding(t *testing.T) {
	srv := newTestServer(t)

	plan := `banner:
  variables: [GROUP]
recoding:
  default: {box_size: 2, direction: top}
  overrides:
    Q1: {box_size: 1, direction: bottom}
`
	body := postUpload(t, srv.URL, map[string]string{"plan": plan})
	assert.Equal(t, run.StatusCompleted, body.Status)
	require.NotNil(t, body.Table)

	_, ok := body.Table.Row("Q1_bottom1")
	assert.True(t, ok, "the plan override replaces the server recoding")
	_, ok = body.Table.Row("Q1_top2")
	assert.False(t, ok)
}

func TestServer_PartialBannerKeepsDefaults(t *testing.T) {
	srv := newTestServer(t)
	ds, err := testkit.NewSurveyGenerator(testkit.DefaultSurveyConfig()).Generate()
	require.NoError(t, err)

	resp, body := postJSON(t, srv.URL+"/api/runs", map[string]interface{}{
		"dataset": survey.NewDerivedDataset(ds).Document(),
		"banner":  map[string]interface{}{"variables": []string{"REGION"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	id := body.RunID
	for i := 0; body.Status == run.StatusSuspended && i < 5; i++ {
		resp, body = postJSON(t, srv.URL+"/api/runs/"+id+"/decisions", map[string]interface{}{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.Equal(t, run.StatusCompleted, body.Status)
	require.NotNil(t, body.Table)

	require.NotEmpty(t, body.Table.Columns)
	assert.True(t, body.Table.Columns[0].Total, "Total column is included by default")
	for _, c := range body.Table.Columns {
		assert.False(t, c.Empty, "column %s=%d should be elided", c.Variable, c.CategoryCode)
	}
	require.Len(t, body.Table.ElidedColumns, 1)
	assert.Equal(t, testkit.UnusedRegion, body.Table.ElidedColumns[0].CategoryCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
