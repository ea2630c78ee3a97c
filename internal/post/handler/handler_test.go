package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/blogposts/blogposts-api/internal/post"
	"github.com/blogposts/blogposts-api/internal/post/service"
	"github.com/blogposts/blogposts-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(svc service.Service) *gin.Engine {
	g := gin.New()
	RegisterPostRoutes(g.Group("/posts"), svc)
	return g
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPostHandler_CRUD(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))

	// create
	w := do(g, http.MethodPost, "/posts", `{"title":"My Day","content":"It was a great day!","author":"Svetlana"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotEmpty(t, created["created"])
	assert.Equal(t, "Svetlana", created["author"])

	// get
	w = do(g, http.MethodGet, "/posts/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "My Day", got["title"])
	assert.Equal(t, "It was a great day!", got["content"])
	assert.Equal(t, "Svetlana", got["author"])
	assert.Equal(t, created["created"], got["created"])

	// partial update
	w = do(g, http.MethodPut, "/posts/"+id, fmt.Sprintf(`{"id":%q,"title":"fofofofofofofof"}`, id))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(g, http.MethodGet, "/posts/"+id, "")
	got = decode(t, w)
	assert.Equal(t, "fofofofofofofof", got["title"])
	assert.Equal(t, "It was a great day!", got["content"])
	assert.Equal(t, "Svetlana", got["author"])

	// delete
	w = do(g, http.MethodDelete, "/posts/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(g, http.MethodGet, "/posts/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// deleting again still succeeds
	w = do(g, http.MethodDelete, "/posts/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestPostHandler_CreateMissingFields(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))
	cases := map[string]string{
		`{"content":"c","author":"a"}`: "Missing `title` in request body",
		`{"title":"t","author":"a"}`:   "Missing `content` in request body",
		`{"title":"t","content":"c"}`:  "Missing `author` in request body",
		`{}`:                           "Missing `title` in request body",
		``:                             "Missing `title` in request body",
	}
	for body, want := range cases {
		w := do(g, http.MethodPost, "/posts", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, want, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	}

	w := do(g, http.MethodGet, "/posts", "")
	assert.Empty(t, decode(t, w)["results"])
}

func TestPostHandler_CreateAcceptsEmptyValuesAndStructuredAuthor(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))

	w := do(g, http.MethodPost, "/posts", `{"id":"client-id","title":"","content":"","author":""}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEqual(t, "client-id", decode(t, w)["id"])

	w = do(g, http.MethodPost, "/posts", `{"title":"t","content":"c","author":{"firstName":"Ada","lastName":"Lovelace"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ada Lovelace", decode(t, w)["author"])

	w = do(g, http.MethodPost, "/posts", `{"title":"t","content":"c","author":{"lastName":"Lovelace"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Lovelace", decode(t, w)["author"])
}

func TestPostHandler_MalformedBody(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))
	w := do(g, http.MethodPost, "/posts", `{"title":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformed JSON in request body", w.Body.String())

	w = do(g, http.MethodPost, "/posts", `{"title":"t","content":"c","author":17}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "author")
}

func TestPostHandler_NonJSONBodyReadsAsEmpty(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("title=t&content=c&author=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing `title` in request body", w.Body.String())
}

func TestPostHandler_CreateLenientOptionalAndScalarFields(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))

	w := do(g, http.MethodPost, "/posts", `{"title":"t","content":"c","author":"a","publishDate":"2020-01-01"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2020-01-01T00:00:00Z", decode(t, w)["publishDate"])

	w = do(g, http.MethodPost, "/posts", `{"title":"t","content":"c","author":"a","publishDate":"someday"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, decode(t, w), "publishDate")

	w = do(g, http.MethodPost, "/posts", `{"title":42,"content":"c","author":"a"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "42", decode(t, w)["title"])
}

func TestPostHandler_List(t *testing.T) {
	g := newEngine(service.NewMemoryService(3))

	for i := 0; i < 2; i++ {
		w := do(g, http.MethodPost, "/posts", fmt.Sprintf(`{"title":"t%d","content":"c","author":{"firstName":"A","lastName":"B"}}`, i))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(g, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	for _, item := range body.Results {
		for _, k := range []string{"id", "title", "content", "author", "created"} {
			assert.Contains(t, item, k)
		}
		assert.Equal(t, "A B", item["author"])
	}
	assert.Equal(t, "t0", body.Results[0]["title"])

	// capped at the configured limit
	for i := 0; i < 3; i++ {
		do(g, http.MethodPost, "/posts", `{"title":"x","content":"c","author":"a"}`)
	}
	w = do(g, http.MethodGet, "/posts", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Results, 3)
}

func TestPostHandler_UpdateIdMismatch(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))
	w := do(g, http.MethodPost, "/posts", `{"title":"orig","content":"c","author":"a"}`)
	id := decode(t, w)["id"].(string)

	w = do(g, http.MethodPut, "/posts/"+id, `{"id":"other","title":"changed"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, fmt.Sprintf("Request path id (%s) and request body id (other) must match", id), w.Body.String())

	w = do(g, http.MethodPut, "/posts/"+id, `{"title":"changed"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodGet, "/posts/"+id, "")
	assert.Equal(t, "orig", decode(t, w)["title"])
}

func TestPostHandler_UpdateMissingPost(t *testing.T) {
	g := newEngine(service.NewMemoryService(10))
	w := do(g, http.MethodPut, "/posts/nope", `{"id":"nope","title":"t"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

// brokenService fails every storage operation.
type brokenService struct{}

var errDown = errors.New("dial tcp 10.0.0.5:27017: connection refused")

func (brokenService) List(context.Context) ([]*post.Post, error)           { return nil, errDown }
func (brokenService) Get(context.Context, string) (*post.Post, error)      { return nil, errDown }
func (brokenService) Update(context.Context, string, *post.Candidate) error { return errDown }
func (brokenService) Delete(context.Context, string) error                 { return errDown }
func (brokenService) Ping(context.Context) error                           { return errDown }
func (brokenService) Create(_ context.Context, c *post.Candidate) (*post.Post, error) {
	if err := service.ValidateCreate(c); err != nil {
		return nil, err
	}
	return nil, errDown
}

func TestPostHandler_StorageFailuresAreGeneric(t *testing.T) {
	g := newEngine(brokenService{})
	reqs := []struct{ method, path, body string }{
		{http.MethodGet, "/posts", ""},
		{http.MethodGet, "/posts/abc", ""},
		{http.MethodPost, "/posts", `{"title":"t","content":"c","author":"a"}`},
		{http.MethodPut, "/posts/abc", `{"id":"abc","title":"t"}`},
		{http.MethodDelete, "/posts/abc", ""},
	}
	for _, r := range reqs {
		w := do(g, r.method, r.path, r.body)
		require.Equal(t, http.StatusInternalServerError, w.Code, r.method+" "+r.path)
		assert.Equal(t, "Internal server error", decode(t, w)["message"])
		assert.NotContains(t, w.Body.String(), "connection refused")
	}

	// validation still wins over storage
	w := do(g, http.MethodPost, "/posts", `{"title":"t"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostHandler_LogsOperations(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	g := newEngine(service.NewMemoryService(10))
	w := do(g, http.MethodPost, "/posts", `{"title":"t","content":"c","author":"a"}`)
	id := decode(t, w)["id"].(string)
	do(g, http.MethodPut, "/posts/"+id, fmt.Sprintf(`{"id":%q,"title":"u"}`, id))
	do(g, http.MethodDelete, "/posts/"+id, "")

	out := buf.String()
	assert.Contains(t, out, fmt.Sprintf("Created blog post `%s`", id))
	assert.Contains(t, out, fmt.Sprintf("Updating blog post `%s`", id))
	assert.Contains(t, out, fmt.Sprintf("Deleted blog post `%s`", id))
}
