package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gugugaga/gugugaga/api"
	"github.com/gugugaga/gugugaga/codec"
	_ "github.com/gugugaga/gugugaga/codec/codecs"
	"github.com/gugugaga/gugugaga/envconfig"
	"github.com/gugugaga/gugugaga/format"
	"github.com/gugugaga/gugugaga/version"
)

const (
	mediaTypeCBOR   = "application/cbor"
	requestIDHeader = "X-Request-Id"
)

type Server struct {
	addr net.Addr

	// codec is used when a request names none
	codec    string
	maxInput int64
}

func (s *Server) GenerateRoutes() http.Handler {
	config := cors.DefaultConfig()
	config.AllowWildcard = true
	config.AllowBrowserExtensions = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
		requestIDHeader,
	}
	config.ExposeHeaders = []string{requestIDHeader}
	config.AllowOrigins = envconfig.AllowOrigins

	r := gin.New()
	r.Use(
		gin.Recovery(),
		cors.New(config),
		requestMiddleware(),
		s.limitMiddleware(),
	)

	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "gugugaga is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "gugugaga is running") })
	r.GET("/api/version", func(c *gin.Context) {
		render(c, http.StatusOK, api.VersionResponse{Version: version.Version})
	})

	r.GET("/api/codecs", s.ListHandler)
	r.POST("/api/encode", s.EncodeHandler)
	r.POST("/api/decode", s.DecodeHandler)
	r.POST("/api/batch", s.BatchHandler)

	return r
}

func Serve(ln net.Listener) error {
	s := &Server{
		addr:     ln.Addr(),
		codec:    envconfig.Codec,
		maxInput: envconfig.MaxInputBytes,
	}

	if _, err := codec.Get(s.codec); err != nil {
		return err
	}

	srvr := &http.Server{
		Handler:           s.GenerateRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Listening on " + s.addr.String() + " (version " + version.Version + ")")
	slog.Info("codecs available", "names", codec.Names(), "default", s.codec, "max_input", format.HumanBytes(s.maxInput))

	// listen for a ctrl+c and shut down
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		srvr.Close()
	}()

	if err := srvr.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) ListHandler(c *gin.Context) {
	var resp api.ListResponse
	for _, info := range codec.List() {
		resp.Codecs = append(resp.Codecs, api.CodecInfo{
			Name:        info.Name,
			Base:        info.Base,
			Alphabet:    info.Alphabet,
			Description: info.Description,
		})
	}

	render(c, http.StatusOK, resp)
}

func (s *Server) EncodeHandler(c *gin.Context) {
	var req api.EncodeRequest
	if err := bind(c, &req); err != nil {
		abort(c, err)
		return
	}

	name, cd, err := s.lookup(req.Codec)
	if err != nil {
		abort(c, err)
		return
	}

	tokens, err := cd.Encode(req.Text)
	if err != nil {
		abort(c, err)
		return
	}

	render(c, http.StatusOK, api.EncodeResponse{Codec: name, Tokens: tokens})
}

func (s *Server) DecodeHandler(c *gin.Context) {
	var req api.DecodeRequest
	if err := bind(c, &req); err != nil {
		abort(c, err)
		return
	}

	name, cd, err := s.lookup(req.Codec)
	if err != nil {
		abort(c, err)
		return
	}

	text, err := cd.Decode(req.Tokens)
	if err != nil {
		abort(c, err)
		return
	}

	render(c, http.StatusOK, api.DecodeResponse{Codec: name, Text: text})
}

// batchError records which input of a batch failed.
type batchError struct {
	index int
	err   error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("input %d: %v", e.index, e.err)
}

func (e *batchError) Unwrap() error {
	return e.err
}

func (s *Server) BatchHandler(c *gin.Context) {
	var req api.BatchRequest
	if err := bind(c, &req); err != nil {
		abort(c, err)
		return
	}

	name, cd, err := s.lookup(req.Codec)
	if err != nil {
		abort(c, err)
		return
	}

	var fn func(string) (string, error)
	switch req.Op {
	case api.OpEncode:
		fn = cd.Encode
	case api.OpDecode:
		fn = cd.Decode
	default:
		abort(c, badRequest(fmt.Errorf("invalid op %q, expected %q or %q", req.Op, api.OpEncode, api.OpDecode)))
		return
	}

	outputs, err := batch(c.Request.Context(), fn, req.Inputs)
	if err != nil {
		abort(c, err)
		return
	}

	render(c, http.StatusOK, api.BatchResponse{Codec: name, Outputs: outputs})
}

func batch(ctx context.Context, fn func(string) (string, error), inputs []string) ([]string, error) {
	outputs := make([]string, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			output, err := fn(input)
			if err != nil {
				return &batchError{index: i, err: err}
			}

			outputs[i] = output
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outputs, nil
}

func (s *Server) lookup(name string) (string, codec.Codec, error) {
	if name == "" {
		name = s.codec
	}

	cd, err := codec.Get(name)
	return name, cd, err
}

type badRequestError struct {
	err error
}

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return badRequestError{err: err}
}

func bind(c *gin.Context, obj any) error {
	err := c.ShouldBindWith(obj, binding.JSON)

	var maxBytesErr *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return badRequest(errors.New("missing request body"))
	case errors.As(err, &maxBytesErr):
		return err
	default:
		return badRequest(err)
	}
}

func abort(c *gin.Context, err error) {
	resp := api.ErrorResponse{Message: err.Error(), Code: api.ErrCodeGeneral}
	status := http.StatusInternalServerError

	var (
		decodeErr   *codec.DecodeError
		encodeErr   *codec.EncodeError
		batchErr    *batchError
		badReqErr   badRequestError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &badReqErr):
		status, resp.Code = http.StatusBadRequest, api.ErrCodeBadRequest
	case errors.As(err, &maxBytesErr):
		status, resp.Code = http.StatusRequestEntityTooLarge, api.ErrCodeInputTooLarge
		resp.Message = "request body exceeds " + format.HumanBytes(maxBytesErr.Limit)
	case errors.Is(err, codec.ErrUnknownCodec):
		status, resp.Code = http.StatusNotFound, api.ErrCodeUnknownCodec
	case errors.As(err, &decodeErr):
		status, resp.Code = http.StatusBadRequest, api.ErrCodeDecode
		resp.Data = map[string]any{
			"codec":    decodeErr.Codec,
			"position": decodeErr.Pos,
			"excerpt":  decodeErr.Excerpt,
		}
	case errors.As(err, &encodeErr):
		resp.Code = api.ErrCodeEncode
		resp.Data = map[string]any{
			"codec":    encodeErr.Codec,
			"position": encodeErr.Pos,
		}
	}

	if errors.As(err, &batchErr) {
		if resp.Data == nil {
			resp.Data = make(map[string]any)
		}
		resp.Data["index"] = batchErr.index
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "request_id", c.GetString("request_id"))
	}

	render(c, status, resp)
	c.Abort()
}

// render writes obj as CBOR when the client prefers it and as JSON
// otherwise.
func render(c *gin.Context, status int, obj any) {
	if c.NegotiateFormat(binding.MIMEJSON, mediaTypeCBOR) != mediaTypeCBOR {
		c.JSON(status, obj)
		return
	}

	bts, err := cbor.Marshal(obj)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error(), Code: api.ErrCodeGeneral})
		return
	}

	c.Data(status, mediaTypeCBOR, bts)
}

func requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", id,
			"latency", time.Since(start),
		)
	}
}

func (s *Server) limitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.maxInput <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > s.maxInput {
			abort(c, &http.MaxBytesError{Limit: s.maxInput})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxInput)
		c.Next()
	}
}
