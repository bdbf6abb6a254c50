package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/getzenaf/zencoach/internal/chat"
	"github.com/getzenaf/zencoach/internal/config"
	"github.com/getzenaf/zencoach/internal/observability"
	"github.com/getzenaf/zencoach/internal/reliability"
	"github.com/getzenaf/zencoach/internal/speech"
	"github.com/getzenaf/zencoach/internal/usage"
)

// testMetrics gives each test its own metrics namespace so repeated
// registration against the default prometheus registry cannot collide.
func testMetrics(name string) *observability.Metrics {
	return observability.NewMetrics("test_httpapi_" + name + "_" + strconv.FormatInt(time.Now().UnixNano(), 10))
}

func testParams() chat.ModelParams {
	return chat.ModelParams{Model: "gpt-4o-mini", Temperature: 0.8, MaxTokens: 1200}
}

func newTestServer(t *testing.T, name string, chatClient chat.Client, synth speech.Synthesizer, cap int) (*httptest.Server, *http.Client) {
	t.Helper()
	cfg := config.Config{ChatProvider: "mock", SpeechProvider: "mock", AudioMonthlyCap: cap, SpeechWordBudget: 900}
	srv := New(
		cfg,
		chat.NewOrchestrator(chatClient, testParams()),
		speech.NewOrchestrator(synth, cfg.SpeechWordBudget),
		usage.NewTracker(usage.NewInMemoryStore(), cap),
		testMetrics(name),
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return ts, &http.Client{Jar: jar}
}

func TestChatEndpoint(t *testing.T) {
	client := chat.NewMockClient("Small steps still count.")
	ts, hc := newTestServer(t, "chat", client, speech.NewMockSynthesizer(), 1)

	body := `{"messages": [{"role": "user", "content": "I blew my deadline"}], "mode": "Mom"}`
	res, err := hc.Post(ts.URL+"/v1/chat", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/chat error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var got map[string]any
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["reply"] != "Small steps still count." {
		t.Fatalf("reply = %v", got["reply"])
	}
	if got["mode"] != "Mom" {
		t.Fatalf("mode = %v, want Mom", got["mode"])
	}
	if client.LastReq.Messages[0].Role != chat.RoleSystem {
		t.Fatalf("provider request missing leading system prompt")
	}
}

func TestChatEndpointEmptyConversation(t *testing.T) {
	client := chat.NewMockClient("Welcome in.")
	ts, hc := newTestServer(t, "chat_empty", client, speech.NewMockSynthesizer(), 1)

	res, err := hc.Post(ts.URL+"/v1/chat", "application/json", strings.NewReader(`{"messages": [], "mode": "Mom"}`))
	if err != nil {
		t.Fatalf("POST /v1/chat error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	msgs := client.LastReq.Messages
	if len(msgs) != 2 {
		t.Fatalf("provider got %d messages, want exactly system + fallback", len(msgs))
	}
	if msgs[0].Role != chat.RoleSystem || !strings.Contains(msgs[0].Content, "loving mom") {
		t.Fatalf("first message is not the Mom-toned system prompt: %+v", msgs[0])
	}
	if msgs[1].Role != chat.RoleUser {
		t.Fatalf("second message is not the fallback user turn: %+v", msgs[1])
	}
}

func TestChatEndpointUpstreamFailure(t *testing.T) {
	client := chat.NewMockClient("")
	client.Err = reliability.Upstream("model melted down")
	ts, hc := newTestServer(t, "chat_upstream", client, speech.NewMockSynthesizer(), 1)

	res, err := hc.Post(ts.URL+"/v1/chat", "application/json", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	if err != nil {
		t.Fatalf("POST /v1/chat error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", res.StatusCode)
	}

	var got map[string]any
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["error"] != "upstream_error" {
		t.Fatalf("error = %v", got["error"])
	}
	if got["detail"] != "model melted down" {
		t.Fatalf("detail = %v, want raw provider text", got["detail"])
	}
}

func TestTTSEndpointReturnsAudio(t *testing.T) {
	synth := speech.NewMockSynthesizer()
	ts, hc := newTestServer(t, "tts", chat.NewMockClient("x"), synth, 1)

	res, err := hc.Post(ts.URL+"/v1/tts", "application/json", strings.NewReader(`{"text": "Rest now. You earned it.", "mode": "Reset"}`))
	if err != nil {
		t.Fatalf("POST /v1/tts error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); cd != `attachment; filename="get-zen-af-reset.mp3"` {
		t.Fatalf("content disposition = %q", cd)
	}
	if cc := res.Header.Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("cache control = %q", cc)
	}
	audio, _ := io.ReadAll(res.Body)
	if string(audio) != "ID3mock-mp3" {
		t.Fatalf("audio = %q", audio)
	}
}

func TestTTSEndpointMonthlyCap(t *testing.T) {
	synth := speech.NewMockSynthesizer()
	ts, hc := newTestServer(t, "tts_cap", chat.NewMockClient("x"), synth, 1)

	body := `{"text": "Again please.", "mode": "Ambitious"}`
	first, err := hc.Post(ts.URL+"/v1/tts", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("first POST /v1/tts error = %v", err)
	}
	io.Copy(io.Discard, first.Body)
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d", first.StatusCode)
	}
	if synth.Calls != 1 {
		t.Fatalf("provider calls after first request = %d", synth.Calls)
	}

	second, err := hc.Post(ts.URL+"/v1/tts", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("second POST /v1/tts error = %v", err)
	}
	defer second.Body.Close()
	if second.StatusCode != http.StatusOK {
		t.Fatalf("quota notice status = %d, want 200 (not a request failure)", second.StatusCode)
	}
	if ct := second.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("quota notice content type = %q", ct)
	}

	var notice quotaNotice
	if err := json.NewDecoder(second.Body).Decode(&notice); err != nil {
		t.Fatalf("decode notice: %v", err)
	}
	if !notice.QuotaExceeded {
		t.Fatalf("notice = %+v, want quota_exceeded", notice)
	}
	if notice.ResetsOn == "" || !strings.Contains(notice.Notice, notice.ResetsOn) {
		t.Fatalf("notice should state the reset date: %+v", notice)
	}
	if synth.Calls != 1 {
		t.Fatalf("provider called despite exhausted quota: %d calls", synth.Calls)
	}
}

func TestTTSEndpointFailureDoesNotConsumeQuota(t *testing.T) {
	synth := speech.NewMockSynthesizer()
	synth.Err = reliability.Upstream("TTS failed")
	ts, hc := newTestServer(t, "tts_fail", chat.NewMockClient("x"), synth, 1)

	res, err := hc.Post(ts.URL+"/v1/tts", "application/json", strings.NewReader(`{"text": "hello", "mode": "Reset"}`))
	if err != nil {
		t.Fatalf("POST /v1/tts error = %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", res.StatusCode)
	}
	if !strings.Contains(res.Header.Get("Content-Type"), "text/plain") {
		t.Fatalf("speech failure should be plain text, got %q", res.Header.Get("Content-Type"))
	}
	if strings.TrimSpace(string(body)) != "TTS failed" {
		t.Fatalf("error body = %q", body)
	}

	// The failed attempt must not have consumed the month's quota.
	synth.Err = nil
	retry, err := hc.Post(ts.URL+"/v1/tts", "application/json", strings.NewReader(`{"text": "hello", "mode": "Reset"}`))
	if err != nil {
		t.Fatalf("retry POST /v1/tts error = %v", err)
	}
	io.Copy(io.Discard, retry.Body)
	retry.Body.Close()
	if retry.StatusCode != http.StatusOK || retry.Header.Get("Content-Type") != "audio/mpeg" {
		t.Fatalf("retry after failure blocked: status %d, type %q", retry.StatusCode, retry.Header.Get("Content-Type"))
	}
}

func TestTTSEndpointMissingText(t *testing.T) {
	ts, hc := newTestServer(t, "tts_missing", chat.NewMockClient("x"), speech.NewMockSynthesizer(), 1)

	res, err := hc.Post(ts.URL+"/v1/tts", "application/json", strings.NewReader(`{"mode": "Reset"}`))
	if err != nil {
		t.Fatalf("POST /v1/tts error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestUsageEndpoint(t *testing.T) {
	ts, hc := newTestServer(t, "usage", chat.NewMockClient("x"), speech.NewMockSynthesizer(), 1)

	res, err := hc.Get(ts.URL + "/v1/usage")
	if err != nil {
		t.Fatalf("GET /v1/usage error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var got usageResponse
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Count != 0 || got.Cap != 1 {
		t.Fatalf("usage = %+v, want fresh 0/1", got)
	}
	if got.Month != time.Now().UTC().Format("2006-01") {
		t.Fatalf("month = %q", got.Month)
	}
}

func TestClientCookieAssigned(t *testing.T) {
	ts, hc := newTestServer(t, "cookie", chat.NewMockClient("x"), speech.NewMockSynthesizer(), 1)

	res, err := hc.Get(ts.URL + "/v1/usage")
	if err != nil {
		t.Fatalf("GET /v1/usage error = %v", err)
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()

	base, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("parse url %q: %v", ts.URL, err)
	}
	var found bool
	for _, c := range hc.Jar.Cookies(base) {
		if c.Name == clientCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("client cookie not assigned on first contact")
	}
}

func TestHealthAndRootRedirect(t *testing.T) {
	ts, _ := newTestServer(t, "health", chat.NewMockClient("x"), speech.NewMockSynthesizer(), 1)

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", res.StatusCode)
	}

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	rootRes, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer rootRes.Body.Close()
	if rootRes.StatusCode != http.StatusTemporaryRedirect || rootRes.Header.Get("Location") != "/ui/" {
		t.Fatalf("GET / = %d → %q, want redirect to /ui/", rootRes.StatusCode, rootRes.Header.Get("Location"))
	}

	uiRes, err := http.Get(ts.URL + "/ui/")
	if err != nil {
		t.Fatalf("GET /ui/ error = %v", err)
	}
	defer uiRes.Body.Close()
	var body bytes.Buffer
	if _, err := body.ReadFrom(uiRes.Body); err != nil {
		t.Fatalf("reading /ui/ body failed: %v", err)
	}
	if !strings.Contains(body.String(), "Get Zen AF") {
		t.Fatalf("GET /ui/ body missing expected content")
	}
}
