// Package api defines the request/response contract for evaluating a
// condition against a spec on behalf of a remote caller.
//
// A transport (HTTP handler, queue consumer) decodes a Request, calls
// Handle, and encodes the Response. The package does not serve anything
// itself.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/randalmurphal/dfs/pkg/dfs"
)

// OK is the message of a successful response.
const OK = "ok"

// ErrMissingSpec is returned by DecodeRequest when the body has no spec.
var ErrMissingSpec = errors.New("request has no spec")

// Request asks for one condition to be evaluated against Spec.
type Request struct {
	Spec      *dfs.Spec `json:"spec"`
	Condition string    `json:"condition"`
}

// Response carries either Result or an error message with Error set.
type Response struct {
	Message string      `json:"message"`
	Result  *dfs.Result `json:"result"`
	Error   bool        `json:"error"`
}

// Success builds the response for a successful evaluation.
func Success(r dfs.Result) Response {
	return Response{Message: OK, Result: &r}
}

// Failure builds the response for a failed request.
func Failure(err error) Response {
	return Response{Message: err.Error(), Error: true}
}

// Handle evaluates req with e. A nil engine means dfs.DefaultEngine().
// Evaluation failures become error responses; Handle itself never fails.
func Handle(ctx context.Context, e *dfs.Engine, req Request) Response {
	if e == nil {
		e = dfs.DefaultEngine()
	}
	if req.Spec == nil {
		return Failure(ErrMissingSpec)
	}
	r, err := e.EvalResult(ctx, req.Spec, req.Condition)
	if err != nil {
		return Failure(err)
	}
	return Success(r)
}

// DecodeRequest reads a JSON request. The embedded spec is validated the
// same way dfs.FromJSON validates a document.
func DecodeRequest(r io.Reader) (Request, error) {
	var wire struct {
		Spec      json.RawMessage `json:"spec"`
		Condition string          `json:"condition"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}

	raw := bytes.TrimSpace(wire.Spec)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Request{}, ErrMissingSpec
	}
	s, err := dfs.FromJSON(raw)
	if err != nil {
		return Request{}, fmt.Errorf("decode request spec: %w", err)
	}
	return Request{Spec: s, Condition: wire.Condition}, nil
}

// EncodeResponse writes resp as a single JSON line.
func EncodeResponse(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}

// Serve decodes one request from r, handles it, and writes the response
// to w. Decoding failures are answered with an error response.
func Serve(ctx context.Context, e *dfs.Engine, r io.Reader, w io.Writer) error {
	req, err := DecodeRequest(r)
	if err != nil {
		return EncodeResponse(w, Failure(err))
	}
	return EncodeResponse(w, Handle(ctx, e, req))
}
