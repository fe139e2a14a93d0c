package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-health-innovation-labs/AppDAR/internal/request"
)

// recordedCall captures what the test server saw for one round trip.
type recordedCall struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recordedCall) {
	t.Helper()
	call := &recordedCall{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call.method = r.Method
		call.path = r.URL.Path
		call.query = r.URL.RawQuery
		call.auth = r.Header.Get("Authorization")

		var err error
		call.body, err = io.ReadAll(r.Body)
		require.NoError(t, err)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	return New(server.URL, "test-token"), call
}

func TestFetchCatalogue(t *testing.T) {
	response := `{
		"dbo.Patients": {
			"table_description": "Patient master records",
			"number_of_rows": 12,
			"primary_keys": ["mrn"],
			"table_classification": "data-table",
			"columns": {"ward": {"description": "Current ward", "data_type": "varchar"}}
		}
	}`
	c, call := newTestServer(t, http.StatusOK, response)

	cat, err := c.FetchCatalogue(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/catalogue", call.path)
	assert.Empty(t, call.query)
	assert.Equal(t, "Bearer test-token", call.auth)
	require.Equal(t, 1, cat.Len())

	_, err = c.FetchCatalogue(context.Background(), "ward notes")
	require.NoError(t, err)
	assert.Equal(t, "search=ward+notes", call.query)
}

func TestFetchWorkspaces(t *testing.T) {
	id := uuid.New()
	response := `[{"workspace_uuid": "` + id.String() + `", "workspace_name": "research-ws"}]`
	c, call := newTestServer(t, http.StatusOK, response)

	workspaces, err := c.FetchWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/workspaces", call.path)
	require.Len(t, workspaces, 1)
	assert.Equal(t, id, workspaces[0].UUID)
	assert.Equal(t, "research-ws", workspaces[0].Name)
}

func TestListRequests(t *testing.T) {
	id := uuid.New()
	response := `[{"request_uuid": "` + id.String() + `", "title": "Ward study", "status": "approved"}]`
	c, call := newTestServer(t, http.StatusOK, response)

	requests, err := c.ListRequests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/requests", call.path)
	require.Len(t, requests, 1)
	assert.Equal(t, id, requests[0].UUID)
	assert.Equal(t, request.StatusApproved, requests[0].Status)
}

func TestGetRequest(t *testing.T) {
	id := uuid.New()
	response := `{"request_uuid": "` + id.String() + `", "title": "Ward study", "status": "pending"}`
	c, call := newTestServer(t, http.StatusOK, response)

	req, err := c.GetRequest(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "/request", call.path)
	assert.Equal(t, "request_uuid="+id.String(), call.query)
	assert.Equal(t, id, req.UUID)
	assert.Equal(t, request.StatusPending, req.Status)
}

func TestSubmitRequest(t *testing.T) {
	c, call := newTestServer(t, http.StatusOK, "{}")

	sub := &request.Submission{
		Title:         "Ward study",
		Justification: "Approved study",
		Workspace:     request.Workspace{UUID: uuid.New(), Name: "research-ws"},
		TablesAndColumns: []request.TableEntry{
			{Name: "dbo.Patients", Columns: []request.ColumnEntry{{Name: "ward"}}},
		},
	}
	require.NoError(t, c.SubmitRequest(context.Background(), sub))
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/request", call.path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(call.body, &sent))
	assert.Equal(t, "Ward study", sent["title"])
	assert.Nil(t, sent["comment"])
	assert.Contains(t, sent, "tables_and_columns")
}

func TestSubmitReview(t *testing.T) {
	c, call := newTestServer(t, http.StatusOK, "{}")
	id := uuid.New()

	review := request.Review{Status: request.StatusApproved, Decision: "looks fine", Confirmed: true}
	require.NoError(t, c.SubmitReview(context.Background(), id, review))
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/review-request", call.path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(call.body, &sent))
	assert.Equal(t, id.String(), sent["request_uuid"])
	assert.Equal(t, "approved", sent["status"])
	assert.Equal(t, "looks fine", sent["reviewer_decision"])
}

func TestSubmitReviewValidatesLocally(t *testing.T) {
	c, call := newTestServer(t, http.StatusOK, "{}")

	err := c.SubmitReview(context.Background(), uuid.New(), request.Review{})
	var verr *request.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, call.method, "invalid review must never reach the backend")
}

func TestCommitProvisioning(t *testing.T) {
	id := uuid.New()
	response := `{"request_uuid": "` + id.String() + `", "adf_link": "https://adf.example.net/pipeline/42"}`
	c, call := newTestServer(t, http.StatusOK, response)

	link, err := c.CommitProvisioning(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/request-adf-commit", call.path)
	assert.Equal(t, "request_uuid="+id.String(), call.query)
	assert.Equal(t, "https://adf.example.net/pipeline/42", link)
}

func TestDeleteRequest(t *testing.T) {
	id := uuid.New()
	c, call := newTestServer(t, http.StatusOK, "")

	require.NoError(t, c.DeleteRequest(context.Background(), id))
	assert.Equal(t, http.MethodDelete, call.method)
	assert.Equal(t, "/request", call.path)
	assert.Equal(t, "request_uuid="+id.String(), call.query)
}

func TestBackendError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusForbidden, `{"detail": "not a data manager"}`)

	err := c.SubmitReview(context.Background(), uuid.New(),
		request.Review{Status: request.StatusApproved, Decision: "looks fine", Confirmed: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "not a data manager")
}

func TestContextCancellation(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, "{}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FetchWorkspaces(ctx)
	require.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	c := New("http://localhost", "t").WithTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}
