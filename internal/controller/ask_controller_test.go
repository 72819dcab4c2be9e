package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ask-engine-be/internal/dto"
	"ask-engine-be/internal/pkg/serverutils"
	"ask-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAskService struct {
	gotQuery string
	gotOpts  service.AskOptions
	resp     *dto.AskResponse
	err      error
}

func (s *stubAskService) Ask(_ context.Context, query string, opts service.AskOptions) (*dto.AskResponse, error) {
	s.gotQuery = query
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestApp(svc service.IAskService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewAskController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func postAsk(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask/v1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func TestAskDirectQuery(t *testing.T) {
	svc := &stubAskService{resp: &dto.AskResponse{
		Query:   "how long is a work permit valid?",
		Answer:  "answer text",
		Sources: []dto.SourceDTO{},
		Timings: map[string]float64{"total_ms": 12.34},
	}}
	app := newTestApp(svc)

	resp, body := postAsk(t, app, `{"query": "how long is a work permit valid?"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "how long is a work permit valid?", svc.gotQuery)
	assert.Equal(t, "answer text", body["answer"])
	assert.NotNil(t, body["sources"])
	assert.NotNil(t, body["timings"])
}

func TestAskWrappedBody(t *testing.T) {
	svc := &stubAskService{resp: &dto.AskResponse{Answer: "a", Sources: []dto.SourceDTO{}}}
	app := newTestApp(svc)

	resp, _ := postAsk(t, app, `{"body": "{\"query\": \"  wrapped question  \", \"k\": 7, \"use_rerank\": false}"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "wrapped question", svc.gotQuery)
	assert.Equal(t, 7, svc.gotOpts.K)
	require.NotNil(t, svc.gotOpts.UseRerank)
	assert.False(t, *svc.gotOpts.UseRerank)
}

func TestAskMissingQueryBothShapes(t *testing.T) {
	cases := map[string]string{
		"missing":            `{}`,
		"blank direct":       `{"query": "   "}`,
		"blank wrapped":      `{"body": "{\"query\": \"  \"}"}`,
		"missing in wrapped": `{"body": "{\"k\": 3}"}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(&stubAskService{})

			resp, body := postAsk(t, app, payload)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, "error")
		})
	}
}

func TestAskRejectsOutOfRangeK(t *testing.T) {
	app := newTestApp(&stubAskService{})

	resp, body := postAsk(t, app, `{"query": "q", "k": 500}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "error")
}

func TestAskUnparsableWrappedBody(t *testing.T) {
	app := newTestApp(&stubAskService{})

	resp, body := postAsk(t, app, `{"body": "not json at all"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "error")
}

func TestAskServiceErrorMapsTo500(t *testing.T) {
	svc := &stubAskService{err: assert.AnError}
	app := newTestApp(svc)

	resp, body := postAsk(t, app, `{"query": "q"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "error")
}
