// Package api implements the client-side API for code wishing to interact
// with the gugugaga service. The methods of the [Client] type correspond to
// the gugugaga REST API as served by the server package.
//
// The gugugaga command-line client itself uses this package to talk to a
// running server when invoked with --remote.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/gugugaga/gugugaga/envconfig"
	"github.com/gugugaga/gugugaga/version"
)

const (
	mediaTypeJSON = "application/json"
	mediaTypeCBOR = "application/cbor"
)

// Client encapsulates client state for interacting with the gugugaga
// service. Use [ClientFromEnvironment] to create new Clients.
type Client struct {
	base *url.URL
	http *http.Client
	cbor bool
}

// ClientFromEnvironment creates a new [Client] using configuration from the
// environment variable GUGU_HOST, which points to the network host and
// port on which the gugugaga service is listening.
func ClientFromEnvironment() (*Client, error) {
	return NewClient(envconfig.Host, http.DefaultClient), nil
}

func NewClient(base *url.URL, http *http.Client) *Client {
	return &Client{
		base: base,
		http: http,
	}
}

// WithCBOR returns a copy of c that asks the server for CBOR responses.
func (c *Client) WithCBOR() *Client {
	cc := *c
	cc.cbor = true
	return &cc
}

func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader
	if reqData != nil {
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}

		reqBody = bytes.NewReader(data)
	}

	requestURL := c.base.JoinPath(path)
	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), reqBody)
	if err != nil {
		return err
	}

	accept := mediaTypeJSON
	if c.cbor {
		accept = mediaTypeCBOR
	}

	request.Header.Set("Content-Type", mediaTypeJSON)
	request.Header.Set("Accept", accept)
	request.Header.Set("User-Agent", fmt.Sprintf("gugugaga/%s (%s %s) Go/%s", version.Version, runtime.GOARCH, runtime.GOOS, runtime.Version()))

	respObj, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer respObj.Body.Close()

	respBody, err := io.ReadAll(respObj.Body)
	if err != nil {
		return err
	}

	unmarshal := json.Unmarshal
	if strings.HasPrefix(respObj.Header.Get("Content-Type"), mediaTypeCBOR) {
		unmarshal = cbor.Unmarshal
	}

	if respObj.StatusCode >= http.StatusBadRequest {
		var errorResponse ErrorResponse
		if err := unmarshal(respBody, &errorResponse); err != nil || errorResponse.Message == "" {
			errorResponse.Message = strings.TrimSpace(string(respBody))
		}

		return StatusError{
			StatusCode:   respObj.StatusCode,
			Status:       respObj.Status,
			ErrorMessage: errorResponse.Message,
			Code:         errorResponse.Code,
			Data:         errorResponse.Data,
		}
	}

	if len(respBody) > 0 && respData != nil {
		if err := unmarshal(respBody, respData); err != nil {
			return err
		}
	}

	return nil
}

// Heartbeat checks if the server has started and is responsive; if yes, it
// returns nil, otherwise an error.
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, "/", nil, nil)
}

// Version returns the gugugaga server version as a string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &v); err != nil {
		return "", err
	}

	return v.Version, nil
}

// List lists the codecs the server knows.
func (c *Client) List(ctx context.Context) (*ListResponse, error) {
	var lr ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/codecs", nil, &lr); err != nil {
		return nil, err
	}

	return &lr, nil
}

func (c *Client) Encode(ctx context.Context, req *EncodeRequest) (*EncodeResponse, error) {
	var resp EncodeResponse
	if err := c.do(ctx, http.MethodPost, "/api/encode", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) Decode(ctx context.Context, req *DecodeRequest) (*DecodeResponse, error) {
	var resp DecodeResponse
	if err := c.do(ctx, http.MethodPost, "/api/decode", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Batch encodes or decodes many inputs with one request.
func (c *Client) Batch(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	var resp BatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/batch", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
