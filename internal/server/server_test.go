package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-memora/pkg/album"
	"github.com/goliatone/go-memora/pkg/albums"
	"github.com/goliatone/go-memora/pkg/catalog"
	"github.com/goliatone/go-memora/pkg/formdata"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/request"
	"github.com/goliatone/go-memora/pkg/summary"
)

type testAPI struct {
	t       *testing.T
	srv     *httptest.Server
	repo    *albums.Repository
	tokens  []string
	manager *Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cat := catalog.MustDefault()
	repo := albums.NewRepository()
	renderer, err := summary.New(cat)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	api := &testAPI{t: t, repo: repo}
	mock := gateway.NewMock(gateway.WithLatency(0), gateway.WithRepository(repo), gateway.WithCatalog(cat))
	recording := gateway.Func(func(ctx context.Context, s gateway.Submission) (gateway.Outcome, error) {
		api.tokens = append(api.tokens, s.Token)
		return mock.Submit(ctx, s)
	})

	deps := FlowDeps{Catalog: cat, Gateway: recording, Previews: formdata.NewMemoryPreviews(), Summary: renderer}
	manager := NewManager()
	if err := manager.Register(gateway.FlowAlbum, AlbumFactory(album.DefaultConfig(), deps)); err != nil {
		t.Fatalf("register album: %v", err)
	}
	if err := manager.Register(gateway.FlowRequest, RequestFactory(request.DefaultConfig(), deps)); err != nil {
		t.Fatalf("register request: %v", err)
	}

	s, err := New(Options{Manager: manager, Albums: repo, Catalog: cat, Summary: renderer})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	api.manager = manager
	api.srv = httptest.NewServer(s.Handler())
	t.Cleanup(api.srv.Close)
	return api
}

type apiResponse struct {
	Status  int
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Body    string
}

func (a *testAPI) do(method, path, contentType string, body io.Reader, header ...string) apiResponse {
	a.t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	if err != nil {
		a.t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := apiResponse{Status: resp.StatusCode, Body: string(raw)}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &out); err != nil {
			a.t.Fatalf("decode %s %s: %v\n%s", method, path, err, raw)
		}
	}
	return out
}

func (a *testAPI) json(method, path, body string, header ...string) apiResponse {
	a.t.Helper()
	var reader io.Reader
	contentType := ""
	if body != "" {
		reader = strings.NewReader(body)
		contentType = "application/json"
	}
	return a.do(method, path, contentType, reader, header...)
}

func (a *testAPI) upload(path string, files map[string][]byte) apiResponse {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			a.t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(content)
	}
	if err := mw.Close(); err != nil {
		a.t.Fatalf("close multipart: %v", err)
	}
	return a.do(http.MethodPost, path, mw.FormDataContentType(), &buf)
}

func decodeFlow(t *testing.T, raw json.RawMessage) flowView {
	t.Helper()
	var view flowView
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("decode flow: %v", err)
	}
	return view
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestAlbumFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	created := api.json(http.MethodPost, "/api/flows", `{"kind":"album"}`, "Authorization", "Bearer mock_token_7")
	if created.Status != http.StatusCreated {
		t.Fatalf("start: %d %s", created.Status, created.Body)
	}
	flow := decodeFlow(t, created.Data)
	base := "/api/flows/" + flow.ID
	if flow.CurrentStep != 1 || flow.TotalSteps != 4 || flow.CanProceed {
		t.Fatalf("unexpected initial state: %+v", flow)
	}

	blocked := api.json(http.MethodPost, base+"/advance", "")
	if blocked.Status != http.StatusUnprocessableEntity || blocked.Error != album.MessageTitleRequired {
		t.Fatalf("expected blocked advance, got %d %q", blocked.Status, blocked.Error)
	}

	if resp := api.json(http.MethodPatch, base+"/fields", `{"title":"Sarah's Graduation"}`); resp.Status != http.StatusOK {
		t.Fatalf("patch title: %d %s", resp.Status, resp.Body)
	}
	if resp := api.json(http.MethodPost, base+"/advance", ""); resp.Status != http.StatusOK {
		t.Fatalf("advance to styles: %d %s", resp.Status, resp.Body)
	}
	if resp := api.json(http.MethodPatch, base+"/fields", `{"styles":["graduation_warm_01"]}`); resp.Status != http.StatusOK {
		t.Fatalf("patch styles: %d %s", resp.Status, resp.Body)
	}
	if resp := api.json(http.MethodPost, base+"/advance", ""); resp.Status != http.StatusOK {
		t.Fatalf("advance to photos: %d %s", resp.Status, resp.Body)
	}

	uploaded := api.upload(base+"/files", map[string][]byte{
		"cap.png":   pngHeader,
		"notes.txt": []byte("not a photo at all"),
	})
	if uploaded.Status != http.StatusOK {
		t.Fatalf("upload: %d %s", uploaded.Status, uploaded.Body)
	}
	var intake intakeView
	if err := json.Unmarshal(uploaded.Data, &intake); err != nil {
		t.Fatalf("decode intake: %v", err)
	}
	if len(intake.Rejected) != 1 || intake.Rejected[0].FileName != "notes.txt" || intake.Rejected[0].Error != formdata.MessageInvalidType {
		t.Fatalf("unexpected rejections: %+v", intake.Rejected)
	}

	if resp := api.json(http.MethodPost, base+"/advance", ""); resp.Status != http.StatusOK {
		t.Fatalf("advance to review: %d %s", resp.Status, resp.Body)
	}

	review := api.json(http.MethodGet, base+"/review", "")
	if review.Status != http.StatusOK || !strings.Contains(review.Body, "Sarah's Graduation") {
		t.Fatalf("review: %d %s", review.Status, review.Body)
	}

	submitted := api.json(http.MethodPost, base+"/submit", "")
	if submitted.Status != http.StatusOK {
		t.Fatalf("submit: %d %s", submitted.Status, submitted.Body)
	}
	done := decodeFlow(t, submitted.Data)
	if !done.Completed || done.Outcome == nil || !strings.HasPrefix(done.Outcome.ID, "album_") {
		t.Fatalf("unexpected completion: %+v", done)
	}
	if len(api.tokens) != 1 || api.tokens[0] != "mock_token_7" {
		t.Fatalf("session token not forwarded: %v", api.tokens)
	}

	if resp := api.json(http.MethodPatch, base+"/fields", `{"title":"again"}`); resp.Status != http.StatusConflict {
		t.Fatalf("completed flow must reject edits, got %d", resp.Status)
	}

	listed := api.json(http.MethodGet, "/api/albums", "")
	if listed.Status != http.StatusOK || !strings.Contains(string(listed.Data), done.Outcome.ID) {
		t.Fatalf("dashboard missing new album: %s", listed.Body)
	}
	detail := api.json(http.MethodGet, "/api/albums/"+done.Outcome.ID, "")
	if detail.Status != http.StatusOK || !strings.Contains(string(detail.Data), `"autoRefresh":true`) {
		t.Fatalf("album detail: %d %s", detail.Status, detail.Body)
	}
}

func TestFlowEndpointsRejectBadRequests(t *testing.T) {
	api := newTestAPI(t)

	if resp := api.json(http.MethodPost, "/api/flows", `{"kind":"waitlist"}`); resp.Status != http.StatusBadRequest {
		t.Fatalf("unknown kind: expected 400, got %d", resp.Status)
	}
	if resp := api.json(http.MethodGet, "/api/nothing", ""); resp.Status != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", resp.Status)
	}
	if resp := api.json(http.MethodGet, "/api/flows/missing", ""); resp.Status != http.StatusNotFound {
		t.Fatalf("unknown flow: expected 404, got %d", resp.Status)
	}

	created := api.json(http.MethodPost, "/api/flows", `{"kind":"request"}`)
	base := "/api/flows/" + decodeFlow(t, created.Data).ID

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "unknown field", method: http.MethodPatch, path: "/fields", body: `{"bogus":"x"}`, status: http.StatusBadRequest},
		{name: "album field on request", method: http.MethodPatch, path: "/fields", body: `{"title":"x"}`, status: http.StatusBadRequest},
		{name: "unknown category", method: http.MethodPatch, path: "/fields", body: `{"categories":["nope"]}`, status: http.StatusBadRequest},
		{name: "jump ahead", method: http.MethodPost, path: "/jump", body: `{"step":3}`, status: http.StatusBadRequest},
		{name: "submit early", method: http.MethodPost, path: "/submit", status: http.StatusConflict},
		{name: "missing file", method: http.MethodDelete, path: "/files/nope", status: http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := api.json(tc.method, base+tc.path, tc.body)
		if resp.Status != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.status, resp.Status, resp.Body)
		}
	}

	if resp := api.json(http.MethodDelete, base, ""); resp.Status != http.StatusNoContent {
		t.Fatalf("abandon: expected 204, got %d", resp.Status)
	}
	if resp := api.json(http.MethodGet, base, ""); resp.Status != http.StatusNotFound {
		t.Fatalf("abandoned flow: expected 404, got %d", resp.Status)
	}
	if api.manager.Len() != 0 {
		t.Fatalf("expected no live flows")
	}
}

func TestDiscardDuringSubmitDropsOutcome(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	repo := albums.NewRepository()
	gw := gateway.Func(func(context.Context, gateway.Submission) (gateway.Outcome, error) {
		close(entered)
		<-release
		return gateway.Succeeded("album_late"), nil
	})

	previews := formdata.NewMemoryPreviews()
	manager := NewManager()
	deps := FlowDeps{Catalog: catalog.MustDefault(), Gateway: gw, Previews: previews}
	if err := manager.Register(gateway.FlowAlbum, AlbumFactory(album.DefaultConfig(), deps)); err != nil {
		t.Fatalf("register: %v", err)
	}
	s, err := New(Options{Manager: manager, Albums: repo})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	api := &testAPI{t: t, srv: srv, repo: repo, manager: manager}

	base := "/api/flows/" + decodeFlow(t, api.json(http.MethodPost, "/api/flows", `{"kind":"album"}`).Data).ID
	api.json(http.MethodPatch, base+"/fields", `{"title":"Trip","styles":["graduation_warm_01"]}`)
	api.json(http.MethodPost, base+"/advance", "")
	api.json(http.MethodPost, base+"/advance", "")
	api.upload(base+"/files", map[string][]byte{"cap.png": pngHeader})
	if resp := api.json(http.MethodPost, base+"/advance", ""); resp.Status != http.StatusOK {
		t.Fatalf("advance to review: %d %s", resp.Status, resp.Body)
	}

	submitted := make(chan int, 1)
	go func() {
		resp, err := srv.Client().Post(srv.URL+base+"/submit", "", nil)
		if err != nil {
			submitted <- 0
			return
		}
		resp.Body.Close()
		submitted <- resp.StatusCode
	}()
	<-entered

	if err := manager.Discard(strings.TrimPrefix(base, "/api/flows/")); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if previews.Live() != 0 {
		t.Fatalf("discard must release previews, %d live", previews.Live())
	}
	close(release)

	if status := <-submitted; status != http.StatusConflict {
		t.Fatalf("expected 409 for a discarded flow, got %d", status)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	manager := NewManager()
	s, err := New(Options{Manager: manager})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	listener, err := newLocalListener()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("serve: %v", err)
	}
}

func newLocalListener() (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:0")
}
