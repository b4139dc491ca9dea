package service

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cifra/internal/cipher"
	"github.com/RowanDark/cifra/internal/dictionary"
	"github.com/RowanDark/cifra/internal/history"
	"github.com/RowanDark/cifra/internal/logging"
)

const portuguese = "O rato roeu a roupa do Rei de Roma"

type harness struct {
	client *Client
	conn   *grpc.ClientConn
	audit  *bytes.Buffer
	words  *dictionary.Holder
	dial   func(opts ...grpc.DialOption) *grpc.ClientConn
}

func startServer(t *testing.T, token string, opts ...Option) *harness {
	t.Helper()
	auditBuf := &bytes.Buffer{}
	audit, err := logging.NewAuditLogger("test", logging.WithoutStdout(), logging.WithWriter(auditBuf))
	require.NoError(t, err)

	words := dictionary.NewHolder(dictionary.New("o", "rato", "roeu", "a", "roupa", "do", "rei", "de", "roma"))
	opts = append([]Option{WithAuditLogger(audit)}, opts...)
	srv := NewServer(words, opts...)

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(token, nil, audit)
	Register(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	dial := func(extra ...grpc.DialOption) *grpc.ClientConn {
		dialOpts := append([]grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, extra...)
		conn, err := grpc.NewClient("passthrough:///bufnet", dialOpts...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}

	var conn *grpc.ClientConn
	if token != "" {
		conn = dial(grpc.WithPerRPCCredentials(TokenCredentials(token)))
	} else {
		conn = dial()
	}
	return &harness{client: NewClient(conn), conn: conn, audit: auditBuf, words: words, dial: dial}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestTransform(t *testing.T) {
	h := startServer(t, "")
	ctx := testContext(t)

	tests := []struct {
		name string
		req  TransformRequest
		want string
	}{
		{"caesar", TransformRequest{Operation: "caesar_encrypt", Text: "Be Wish", Params: cipher.Params{"key": 3}}, "Eh Zlvk"},
		{"caesar decrypt", TransformRequest{Operation: "caesar_decrypt", Text: "Eh Zlvk", Params: cipher.Params{"key": 3}}, "Be Wish"},
		{"vigenere", TransformRequest{Operation: "vigenere_encrypt", Text: "Attack at dawn", Params: cipher.Params{"keyword": "LEMON"}}, "Lxfopv ef rnhr"},
		{"rot13", TransformRequest{Operation: "rot13", Text: "Hello"}, "Uryyb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.client.Transform(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Text)
		})
	}

	assert.NotContains(t, h.audit.String(), "LEMON")
	assert.Contains(t, h.audit.String(), `"event_type":"transform"`)
}

func TestTransformErrors(t *testing.T) {
	h := startServer(t, "")
	ctx := testContext(t)

	tests := []struct {
		name string
		req  TransformRequest
	}{
		{"unknown operation", TransformRequest{Operation: "enigma", Text: "x"}},
		{"missing operation", TransformRequest{Text: "x"}},
		{"missing key", TransformRequest{Operation: "caesar_encrypt", Text: "x"}},
		{"keyword without letters", TransformRequest{Operation: "vigenere_encrypt", Text: "x", Params: cipher.Params{"keyword": "123"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.client.Transform(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestCrack(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := startServer(t, "", WithHistory(store), WithWorkers(4))
	ctx := testContext(t)

	resp, err := h.client.Crack(ctx, CrackRequest{Text: cipher.Caesar(portuguese, 3), Source: "carta_cifrado.txt"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Shift)
	assert.Equal(t, 9, resp.Score)
	assert.Equal(t, portuguese, resp.Plaintext)
	assert.Equal(t, 9, resp.DictionaryWords)
	assert.Empty(t, resp.Warning)

	run, err := store.Get(ctx, resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, "carta_cifrado.txt", run.Source)
	assert.Equal(t, "parallel", run.Mode)
	assert.Equal(t, 3, run.Shift)

	assert.Contains(t, h.audit.String(), resp.RunID)
	assert.NotContains(t, h.audit.String(), "rato", "plaintext must not be audited")
}

func TestCrackConcurrent(t *testing.T) {
	h := startServer(t, "", WithWorkers(4))
	ctx := testContext(t)

	plaintext := strings.Repeat("Ação coração não há mal que sempre dure, o rato roeu a roupa do Rei de Roma. ", 200)
	wordList := []string{"ação", "coração", "não", "há", "mal", "que", "sempre", "dure", "o", "rato", "roeu", "a", "roupa", "do", "rei", "de", "roma"}
	h.words.Store(dictionary.New(wordList...))

	// Keep reloading the dictionary while requests are in flight.
	stop := make(chan struct{})
	reloaded := make(chan struct{})
	go func() {
		defer close(reloaded)
		for {
			select {
			case <-stop:
				return
			default:
				h.words.Store(dictionary.New(wordList...))
				time.Sleep(time.Millisecond)
			}
		}
	}()

	type result struct {
		key  int
		resp CrackResponse
		err  error
	}
	results := make(chan result, 8)
	var wg sync.WaitGroup
	for key := 1; key <= 8; key++ {
		wg.Add(1)
		go func(key int) {
			defer wg.Done()
			resp, err := h.client.Crack(ctx, CrackRequest{Text: cipher.Caesar(plaintext, key)})
			results <- result{key: key, resp: resp, err: err}
		}(key)
	}
	wg.Wait()
	close(stop)
	<-reloaded
	close(results)

	for r := range results {
		require.NoError(t, r.err, "key %d", r.key)
		assert.Equal(t, r.key, r.resp.Shift)
		assert.Equal(t, 17*200, r.resp.Score, "key %d", r.key)
		assert.True(t, r.resp.Plaintext == plaintext, "key %d: plaintext mismatch", r.key)
	}
}

func TestCrackEmptyDictionaryWarns(t *testing.T) {
	h := startServer(t, "")
	h.words.Store(dictionary.WordSet{})
	ctx := testContext(t)

	resp, err := h.client.Crack(ctx, CrackRequest{Text: "Khoor"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Shift)
	assert.Equal(t, 0, resp.Score)
	assert.NotEmpty(t, resp.Warning)
}

func TestCrackWithoutDictionary(t *testing.T) {
	srv := NewServer(nil)
	_, err := srv.Crack(context.Background(), mustStruct(t, CrackRequest{Text: "abc"}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestFrequency(t *testing.T) {
	h := startServer(t, "")
	resp, err := h.client.Frequency(testContext(t), FrequencyRequest{Text: "Banana! Ébano, 123"})
	require.NoError(t, err)

	assert.Equal(t, 11, resp.Histogram.Total)
	require.NotEmpty(t, resp.Histogram.Letters)
	first := resp.Histogram.Letters[0]
	assert.Equal(t, 'a', first.Letter)
	assert.Equal(t, 4, first.Count)
	assert.InDelta(t, 36.36, first.Percent, 0.01)
}

func TestAuthInterceptor(t *testing.T) {
	h := startServer(t, "s3cret-token")
	ctx := testContext(t)

	_, err := h.client.Frequency(ctx, FrequencyRequest{Text: "abc"})
	require.NoError(t, err)

	anonymous := h.dial()
	_, err = NewClient(anonymous).Frequency(ctx, FrequencyRequest{Text: "abc"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	wrong := h.dial(grpc.WithPerRPCCredentials(TokenCredentials("wrong")))
	_, err = NewClient(wrong).Crack(ctx, CrackRequest{Text: "abc"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Contains(t, h.audit.String(), `"event_type":"rpc_denied"`)

	health := healthpb.NewHealthClient(anonymous)
	hr, err := health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hr.GetStatus())
}

func TestAuthorized(t *testing.T) {
	assert.False(t, authorized(context.Background(), "x"))
}

func mustStruct(t *testing.T, req CrackRequest) *structpb.Struct {
	t.Helper()
	s, err := req.encode()
	require.NoError(t, err)
	return s
}

func TestMessageRoundTripKeepsParams(t *testing.T) {
	in, err := TransformRequest{Operation: "caesar_encrypt", Text: "abc", Params: cipher.Params{"key": 25}}.encode()
	require.NoError(t, err)
	req, err := decodeTransformRequest(in)
	require.NoError(t, err)
	key, err := req.Params.Int("key")
	require.NoError(t, err)
	assert.Equal(t, 25, key)
	assert.Equal(t, "caesar_encrypt", req.Operation)
	assert.Equal(t, "abc", req.Text)
}

func TestDecodeTransformRequestRejectsScalarParams(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"operation": "rot13", "params": "key=3"})
	require.NoError(t, err)
	_, err = decodeTransformRequest(in)
	assert.Error(t, err)
}
