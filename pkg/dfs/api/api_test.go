package api

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dfs/pkg/dfs"
	"github.com/randalmurphal/dfs/pkg/dfs/config"
	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

func testEngine(t *testing.T) *dfs.Engine {
	t.Helper()
	e, err := dfs.NewEngine(config.DefaultSettings())
	require.NoError(t, err)
	return e
}

func TestHandle(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name      string
		condition string
		want      *dfs.Result
		wantMsg   string
	}{
		{
			name:      "integer",
			condition: "int(ctx.some_var) + 1",
			want:      &dfs.Result{Value: "43", InstanceOf: "integer"},
			wantMsg:   OK,
		},
		{
			name:      "boolean",
			condition: "bool(ctx.something) && sys.timezone == 'US/Eastern'",
			want:      &dfs.Result{Value: "true", InstanceOf: "boolean"},
			wantMsg:   OK,
		},
		{
			name:      "string",
			condition: "ctx.some_var",
			want:      &dfs.Result{Value: "42", InstanceOf: "string"},
			wantMsg:   OK,
		},
		{
			name:      "parse failure",
			condition: "1 +",
			wantMsg:   `failed to evaluate expression "1 +": parse error at column 4: unexpected end of input`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Handle(context.Background(), e, Request{Spec: dfs.Default(), Condition: tt.condition})
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.want, resp.Result)
			assert.Equal(t, tt.want == nil, resp.Error)
		})
	}
}

func TestHandle_MissingSpec(t *testing.T) {
	resp := Handle(context.Background(), nil, Request{Condition: "true"})
	assert.True(t, resp.Error)
	assert.Nil(t, resp.Result)
	assert.Equal(t, ErrMissingSpec.Error(), resp.Message)
}

func TestHandle_DefaultEngine(t *testing.T) {
	resp := Handle(context.Background(), nil, Request{Spec: dfs.Default(), Condition: "2 * 3"})
	require.False(t, resp.Error)
	assert.Equal(t, "6", resp.Result.Value)
}

func TestDecodeRequest(t *testing.T) {
	specJSON, err := dfs.Default().ToJSON()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		body := `{"spec": ` + string(specJSON) + `, "condition": "true"}`
		req, err := DecodeRequest(strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, "true", req.Condition)
		assert.True(t, dfs.Default().Equal(req.Spec))
	})

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "no spec", body: `{"condition": "true"}`, wantErr: ErrMissingSpec},
		{name: "null spec", body: `{"spec": null, "condition": "true"}`, wantErr: ErrMissingSpec},
		{name: "schema violation", body: `{"spec": {"intents": ["a"], "dialogs": {}, "extra": 1}}`, wantErr: dfs.ErrInvalidDocument},
		{
			name:    "undeclared intent",
			body:    `{"spec": {"intents": [], "dialogs": {"a": {"intent": "a", "cases": []}}}}`,
			wantErr: dfserrors.ErrUndeclaredIntent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest(strings.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeRequest(strings.NewReader(`{"spec":`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode request")
	})
}

func TestEncodeResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeResponse(&buf, Success(dfs.Result{Value: "<b>", InstanceOf: "string"})))
	assert.JSONEq(t, `{"message":"ok","result":{"value":"<b>","instanceof":"string"},"error":false}`, buf.String())
	assert.Contains(t, buf.String(), "<b>")

	buf.Reset()
	require.NoError(t, EncodeResponse(&buf, Failure(ErrMissingSpec)))
	assert.JSONEq(t, `{"message":"request has no spec","result":null,"error":true}`, buf.String())
}

func TestServe(t *testing.T) {
	specJSON, err := dfs.Default().ToJSON()
	require.NoError(t, err)

	var out bytes.Buffer
	in := strings.NewReader(`{"spec": ` + string(specJSON) + `, "condition": "1 + 1"}`)
	require.NoError(t, Serve(context.Background(), testEngine(t), in, &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.False(t, resp.Error)
	assert.Equal(t, &dfs.Result{Value: "2", InstanceOf: "integer"}, resp.Result)

	out.Reset()
	require.NoError(t, Serve(context.Background(), nil, strings.NewReader(`not json`), &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Error)
	assert.Nil(t, resp.Result)
}
