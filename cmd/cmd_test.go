package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gugugaga/gugugaga/api"
	"github.com/gugugaga/gugugaga/codec"
	"github.com/gugugaga/gugugaga/codec/wabibabu"
	"github.com/gugugaga/gugugaga/envconfig"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetContext(context.Background())
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeDecode(t *testing.T) {
	cases := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"encode args", "", []string{"encode", "-c", "wabibabu", "A"}, "吧比歪吧卜\n"},
		{"encode joined args", "", []string{"encode", "--codec", "oho", "A", "A"}, "齁齁齁齁齁齁！！！！！卜卜齁齁齁！！卜卜齁齁齁齁齁齁！！！！！\n"},
		{"encode default codec", "", []string{"encode", "A"}, "⚡叮咚鸡嘎嘎\n"},
		{"encode stdin", "A\n", []string{"encode", "-c", "wabibabu"}, "吧比歪吧卜\n"},
		{"encode stdin crlf", "A\r\n", []string{"encode", "-c", "wabibabu"}, "吧比歪吧卜\n"},
		{"decode args", "", []string{"decode", "-c", "wabibabu", "吧比歪吧卜"}, "A\n"},
		{"decode stdin", "⚡叮咚鸡嘎嘎\n", []string{"decode"}, "A\n"},
		{"decode empty", "", []string{"decode", "-c", "oho"}, "\n"},
	}

	t.Setenv("GUGU_CODEC", "")
	envconfig.LoadConfig()

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.stdin, tt.args...)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeFile(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"utf8", []byte("A你\n")},
		{"utf8 bom", []byte("\xef\xbb\xbfA你\n")},
		{"utf16le bom", []byte{0xff, 0xfe, 'A', 0x00, 0x60, 0x4f, '\n', 0x00}},
		{"utf16be bom", []byte{0xfe, 0xff, 0x00, 'A', 0x4f, 0x60, 0x00, '\n'}},
	}

	want := wabibabu.Encode("A你") + "\n"

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "input.txt")
			require.NoError(t, os.WriteFile(p, tt.data, 0o644))

			got, err := run(t, "", "encode", "-c", "wabibabu", "-f", p)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestEncodeNFC(t *testing.T) {
	decomposed := "e\u0301"

	got, err := run(t, "", "encode", "-c", "wabibabu", decomposed)
	require.NoError(t, err)
	assert.Equal(t, wabibabu.Encode(decomposed)+"\n", got)

	got, err = run(t, "", "encode", "-c", "wabibabu", "--nfc", decomposed)
	require.NoError(t, err)
	assert.Equal(t, wabibabu.Encode("\u00e9")+"\n", got)
}

func TestCommandErrors(t *testing.T) {
	t.Run("unknown codec", func(t *testing.T) {
		_, err := run(t, "", "encode", "-c", "morse", "A")
		assert.ErrorIs(t, err, codec.ErrUnknownCodec)
	})

	t.Run("malformed tokens", func(t *testing.T) {
		_, err := run(t, "", "decode", "-c", "wabibabu", "吧比x卜")

		var de *codec.DecodeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "wabibabu", de.Codec)
		assert.Equal(t, 2, de.Pos)
		assert.ErrorIs(t, err, codec.ErrUnknownToken)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "", "encode", "-f", filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestList(t *testing.T) {
	out, err := run(t, "", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "gugugaga"))
	assert.True(t, strings.HasPrefix(lines[2], "oho"))
	assert.True(t, strings.HasPrefix(lines[3], "wabibabu"))
	assert.Contains(t, lines[3], "歪 比 吧 卜")

	out, err = run(t, "", "ls", "WA")
	require.NoError(t, err)

	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "wabibabu"))
}

func TestRemote(t *testing.T) {
	var requests []string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/":
			w.WriteHeader(http.StatusOK)
		case "/api/encode":
			var req api.EncodeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(api.EncodeResponse{Codec: req.Codec, Tokens: "remote:" + req.Text})
		case "/api/decode":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(api.ErrorResponse{
				Message: "oho: decode: malformed block at position 3",
				Code:    api.ErrCodeDecode,
				Data:    map[string]any{"codec": "oho", "position": 3, "excerpt": "卜"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(mockServer.Close)

	t.Setenv("GUGU_HOST", mockServer.URL)
	envconfig.LoadConfig()
	t.Cleanup(envconfig.LoadConfig)

	out, err := run(t, "", "encode", "--remote", "-c", "oho", "A")
	require.NoError(t, err)
	assert.Equal(t, "remote:A\n", out)
	assert.Equal(t, []string{"HEAD /", "POST /api/encode"}, requests)

	_, err = run(t, "", "decode", "--remote", "-c", "oho", "！！！卜")

	var serr api.StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, api.ErrCodeDecode, serr.Code)
	assert.True(t, strings.HasPrefix(err.Error(), `oho decode failed at position 3 near "卜": `), err.Error())
}

func TestRemoteDecodeError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		want    string
		wrapped bool
	}{
		{
			name:    "decode error data",
			wrapped: true,
			err: api.StatusError{
				Status:       "400 Bad Request",
				ErrorMessage: "wabibabu: decode: unknown token at position 2",
				Code:         api.ErrCodeDecode,
				Data:         map[string]any{"codec": "wabibabu", "position": float64(2), "excerpt": "x卜"},
			},
			want: `wabibabu decode failed at position 2 near "x卜": 400 Bad Request: wabibabu: decode: unknown token at position 2`,
		},
		{
			name: "other status error",
			err:  api.StatusError{Status: "404 Not Found", ErrorMessage: "unknown codec", Code: api.ErrCodeUnknownCodec},
			want: "404 Not Found: unknown codec",
		},
		{
			name: "unusable data",
			err: api.StatusError{
				Status: "400 Bad Request",
				Code:   api.ErrCodeDecode,
				Data:   map[string]any{"position": "three"},
			},
			want: "400 Bad Request",
		},
		{
			name: "transport error",
			err:  errors.New("connection refused"),
			want: "connection refused",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := remoteDecodeError(tt.err)
			assert.Equal(t, tt.want, err.Error())
			if tt.wrapped {
				assert.Equal(t, tt.err, errors.Unwrap(err))
			} else {
				assert.Equal(t, tt.err, err)
			}
		})
	}
}

func TestRemoteUnreachable(t *testing.T) {
	mockServer := httptest.NewServer(http.NotFoundHandler())
	addr := mockServer.URL
	mockServer.Close()

	t.Setenv("GUGU_HOST", addr)
	envconfig.LoadConfig()
	t.Cleanup(envconfig.LoadConfig)

	_, err := run(t, "", "list", "--remote")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not connect to gugugaga server")
}

func TestServeUsage(t *testing.T) {
	usage := envUsage()
	for _, name := range []string{"GUGU_CODEC", "GUGU_DEBUG", "GUGU_HOST", "GUGU_MAX_INPUT", "GUGU_ORIGINS"} {
		assert.Contains(t, usage, name)
	}

	assert.Less(t, strings.Index(usage, "GUGU_CODEC"), strings.Index(usage, "GUGU_ORIGINS"))
}
