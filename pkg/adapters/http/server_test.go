package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/beatbox"
	httpadapter "github.com/aretw0/beatbox/pkg/adapters/http"
	"github.com/aretw0/beatbox/pkg/adapters/memory"
	"github.com/aretw0/beatbox/pkg/observability"
	"github.com/aretw0/beatbox/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = map[string]string{
	"A": "BC",
	"B": "__",
	"C": "-0",
	"E": "AAAA",
	"R": "_R",
}

func newEngine(t *testing.T) *beatbox.Engine {
	t.Helper()
	eng, err := beatbox.New("", beatbox.WithLoader(memory.NewLoader(testRules)), beatbox.WithMaxSteps(1000))
	require.NoError(t, err)
	return eng
}

func newHandler(t *testing.T, opts ...httpadapter.Option) http.Handler {
	t.Helper()
	eng := newEngine(t)
	opts = append([]httpadapter.Option{
		httpadapter.WithSessions(session.NewManager(memory.NewStore(), eng.Table(), session.WithMaxSteps(1000))),
	}, opts...)
	h, err := httpadapter.NewHandler(eng, opts...)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestLoadSpec(t *testing.T) {
	doc, err := httpadapter.LoadSpec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "beatbox", doc.Info.Title)
}

func TestRoutesAreDocumented(t *testing.T) {
	doc, err := httpadapter.LoadSpec(context.Background())
	require.NoError(t, err)

	srv, err := httpadapter.NewServer(newEngine(t),
		httpadapter.WithSessions(session.NewManager(memory.NewStore(), newEngine(t).Table())),
		httpadapter.WithMetrics(prometheus.NewRegistry()),
	)
	require.NoError(t, err)

	router, ok := srv.Routes().(chi.Routes)
	require.True(t, ok)
	err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route == "/swagger" {
			return nil
		}
		route = strings.TrimSuffix(route, "/")
		item := doc.Paths.Find(route)
		if assert.NotNil(t, item, "route %s is not documented", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestGetHealth(t *testing.T) {
	w := do(t, newHandler(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetInfo(t *testing.T) {
	w := do(t, newHandler(t, httpadapter.WithVersion("1.2.3")), http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)

	var info map[string]string
	decodeBody(t, w, &info)
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "0.1.0", info["api_version"])
	assert.Len(t, info["fingerprint"], 64)
}

func TestGetRules(t *testing.T) {
	w := do(t, newHandler(t), http.MethodGet, "/rules", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Lenient bool              `json:"lenient"`
		Rules   map[string]string `json:"rules"`
	}
	decodeBody(t, w, &body)
	assert.False(t, body.Lenient)
	assert.Equal(t, testRules, body.Rules)
}

func TestGetGraph(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD\n"))

	w = do(t, h, http.MethodGet, "/graph?start=A", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "classDef")

	w = do(t, h, http.MethodGet, "/graph?start=a", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpand(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name      string
		body      string
		code      int
		terminals string
		truncated bool
	}{
		{"full", `{"start":"A"}`, http.StatusOK, "__-0", false},
		{"mixed start", `{"start":"_A0"}`, http.StatusOK, "___-00", false},
		{"limit", `{"start":"E","limit":6}`, http.StatusOK, "__-0__", true},
		{"limit equal to length", `{"start":"A","limit":4}`, http.StatusOK, "__-0", false},
		{"malformed start", `{"start":"Z"}`, http.StatusBadRequest, "", false},
		{"lower case", `{"start":"a"}`, http.StatusBadRequest, "", false},
		{"missing start", `{}`, http.StatusBadRequest, "", false},
		{"unknown field", `{"start":"A","steps":1}`, http.StatusBadRequest, "", false},
		{"not json", `start=A`, http.StatusBadRequest, "", false},
		{"budget", `{"start":"R"}`, http.StatusUnprocessableEntity, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/expand", tt.body)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				var e map[string]string
				decodeBody(t, w, &e)
				assert.NotEmpty(t, e["error"])
				return
			}
			var resp struct {
				Terminals string `json:"terminals"`
				Count     int    `json:"count"`
				Truncated bool   `json:"truncated"`
			}
			decodeBody(t, w, &resp)
			assert.Equal(t, tt.terminals, resp.Terminals)
			assert.Equal(t, len(tt.terminals), resp.Count)
			assert.Equal(t, tt.truncated, resp.Truncated)
		})
	}
}

func TestExpand_MaxTerminals(t *testing.T) {
	h := newHandler(t, httpadapter.WithMaxTerminals(3))
	w := do(t, h, http.MethodPost, "/expand", `{"start":"A","limit":10}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"terminals":"__-"`)
	assert.Contains(t, w.Body.String(), `"truncated":true`)
}

func TestCount(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/count", `{"starts":["A","E","_"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Counts map[string]int `json:"counts"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, map[string]int{"A": 4, "E": 16, "_": 1}, resp.Counts)

	w = do(t, h, http.MethodPost, "/count", `{"starts":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/count", `{"starts":["A","R"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRender(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/render", `{"start":"A"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Equal(t, "4", w.Header().Get("X-Beatbox-Samples"))

	data := w.Body.Bytes()
	require.Len(t, data, 44+4)
	assert.Equal(t, []byte("RIFF"), data[:4])
	assert.Equal(t, []byte("WAVE"), data[8:12])
	assert.Equal(t, []byte{112, 112, 144, 128}, data[44:])

	w = do(t, h, http.MethodPost, "/render", `{"start":"?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/render", `{"start":"R"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCountAndRender_MaxTerminals(t *testing.T) {
	h := newHandler(t, httpadapter.WithMaxTerminals(3))

	w := do(t, h, http.MethodPost, "/count", `{"starts":["_"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/count", `{"starts":["A"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/render", `{"start":"A"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestRender_UnboundedTableWithoutStepBudget(t *testing.T) {
	eng, err := beatbox.New("", beatbox.WithLoader(memory.NewLoader(testRules)))
	require.NoError(t, err)
	h, err := httpadapter.NewHandler(eng, httpadapter.WithMaxTerminals(100))
	require.NoError(t, err)

	w := do(t, h, http.MethodPost, "/render", `{"start":"R"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var e map[string]string
	decodeBody(t, w, &e)
	assert.Contains(t, e["error"], "more than 100 terminals")

	w = do(t, h, http.MethodPost, "/count", `{"starts":["R"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSessions_Lifecycle(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/sessions", `{"id":"s1","start":"E"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cp struct {
		ID   string `json:"id"`
		Root string `json:"root"`
		Done bool   `json:"done"`
	}
	decodeBody(t, w, &cp)
	assert.Equal(t, "s1", cp.ID)
	assert.Equal(t, "E", cp.Root)
	assert.False(t, cp.Done)

	var got strings.Builder
	for range 4 {
		w = do(t, h, http.MethodPost, "/sessions/s1/next", `{"count":5}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var step struct {
			Terminals  string `json:"terminals"`
			Checkpoint struct {
				Emitted int  `json:"emitted"`
				Done    bool `json:"done"`
			} `json:"checkpoint"`
		}
		decodeBody(t, w, &step)
		got.WriteString(step.Terminals)
		assert.Equal(t, got.Len(), step.Checkpoint.Emitted)
	}
	assert.Equal(t, strings.Repeat("__-0", 4), got.String())

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &cp)
	assert.True(t, cp.Done)

	w = do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["s1"]`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/sessions", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSessions_GeneratedID(t *testing.T) {
	h := newHandler(t)
	w := do(t, h, http.MethodPost, "/sessions", `{"start":"A"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var cp struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &cp)
	assert.Len(t, cp.ID, 36)
}

func TestSessions_Errors(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodPost, "/sessions/missing/next", `{"count":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/sessions", `{"id":"bad id","start":"A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/sessions", `{"start":"a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/sessions", `{"id":"loop","start":"R"}`).Code)
	w = do(t, h, http.MethodPost, "/sessions/loop/next", `{"count":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodPost, "/sessions/loop/next", `{"count":100000}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSessions_TableMismatch(t *testing.T) {
	store := memory.NewStore()
	eng := newEngine(t)
	other, err := beatbox.New("", beatbox.WithLoader(memory.NewLoader(map[string]string{"A": "0"})))
	require.NoError(t, err)

	first, err := httpadapter.NewHandler(eng, httpadapter.WithSessions(session.NewManager(store, eng.Table())))
	require.NoError(t, err)
	second, err := httpadapter.NewHandler(other, httpadapter.WithSessions(session.NewManager(store, other.Table())))
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, do(t, first, http.MethodPost, "/sessions", `{"id":"s","start":"A"}`).Code)
	w := do(t, second, http.MethodPost, "/sessions/s/next", `{"count":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessions_DisabledWithoutManager(t *testing.T) {
	h, err := httpadapter.NewHandler(newEngine(t))
	require.NoError(t, err)
	w := do(t, h, http.MethodGet, "/sessions", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng, err := beatbox.New("",
		beatbox.WithLoader(memory.NewLoader(testRules)),
		beatbox.WithLifecycleHooks(metrics.Hooks()),
	)
	require.NoError(t, err)
	h, err := httpadapter.NewHandler(eng, httpadapter.WithMetrics(reg))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/expand", `{"start":"A"}`).Code)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "beatbox_terminals_total")
}

func TestOpenAPIAndSwagger(t *testing.T) {
	h := newHandler(t)

	w := do(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("openapi: 3.0.3")))

	w = do(t, h, http.MethodGet, "/swagger", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SwaggerUIBundle")
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newHandler(t), http.MethodOptions, "/expand", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
