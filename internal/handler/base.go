package handler

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler carries the shared server dependencies into concrete handlers.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint. Req is a pointer to a request struct.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// File is a streamed download. The pipeline closes Body.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// responder writes a successful result. kind labels the pipeline in logs.
type responder struct {
	kind  string
	write func(c echo.Context, result any) error
	attrs func(txn *newrelic.Transaction, result any)
}

func jsonResponder(status int) responder {
	return responder{
		kind:  "json",
		write: func(c echo.Context, result any) error { return c.JSON(status, result) },
	}
}

func noContentResponder(status int) responder {
	return responder{
		kind:  "no_content",
		write: func(c echo.Context, _ any) error { return c.NoContent(status) },
	}
}

// fileResponder streams a *File as an attachment download.
func fileResponder() responder {
	return responder{
		kind: "file",
		write: func(c echo.Context, result any) error {
			f := result.(*File)
			defer f.Body.Close()

			h := c.Response().Header()
			h.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
			if f.Size > 0 {
				h.Set(echo.HeaderContentLength, strconv.FormatInt(f.Size, 10))
			}
			return c.Stream(http.StatusOK, f.ContentType, f.Body)
		},
		attrs: func(txn *newrelic.Transaction, result any) {
			f := result.(*File)
			txn.AddAttribute("file.name", f.Name)
			txn.AddAttribute("file.content_type", f.ContentType)
			txn.AddAttribute("file.size_bytes", f.Size)
		},
	}
}

// run is the shared pipeline behind Handle, HandleFile and HandleNoContent:
// bind and validate into req, call fn, write the result. Phase timings go to
// the debug log and the New Relic transaction.
func run[Req validation.Validatable](c echo.Context, req Req, fn func(echo.Context, Req) (any, error), out responder) error {
	started := time.Now()
	txn := newrelic.FromContext(c.Request().Context())
	mark := func(key string, value any) {
		if txn != nil {
			txn.AddAttribute(key, value)
		}
	}

	log := middleware.GetLogger(c).With().
		Str("responder", out.kind).
		Str("route", c.Path()).
		Logger()
	mark("handler.name", c.Path())

	if err := validation.BindAndValidate(c, req); err != nil {
		elapsed := time.Since(started)
		log.Warn().Err(err).Dur("validation_duration", elapsed).Msg("rejected request")
		mark("validation.status", "failed")
		mark("validation.duration_ms", elapsed.Milliseconds())
		return err
	}
	validated := time.Now()
	mark("validation.status", "success")
	mark("validation.duration_ms", validated.Sub(started).Milliseconds())

	result, err := fn(c, req)
	took := time.Since(validated)
	mark("handler.duration_ms", took.Milliseconds())

	if err != nil {
		log.Debug().Err(err).Dur("handler_duration", took).Msg("handler returned error")
		mark("handler.status", "error")
		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		return err
	}

	mark("handler.status", "success")
	mark("total.duration_ms", time.Since(started).Milliseconds())
	if txn != nil && out.attrs != nil {
		out.attrs(txn, result)
	}
	log.Debug().Dur("handler_duration", took).Dur("total_duration", time.Since(started)).Msg("handled")

	return out.write(c, result)
}

// Handle registers a typed JSON endpoint. newReq builds a fresh request
// value per call since handlers run concurrently.
func Handle[Req validation.Validatable, Res any](h Handler, fn HandlerFunc[Req, Res], status int, newReq func() Req) echo.HandlerFunc {
	return func(c echo.Context) error {
		return run(c, newReq(), func(c echo.Context, req Req) (any, error) {
			return fn(c, req)
		}, jsonResponder(status))
	}
}

func HandleFile[Req validation.Validatable](h Handler, fn HandlerFunc[Req, *File], newReq func() Req) echo.HandlerFunc {
	return func(c echo.Context) error {
		return run(c, newReq(), func(c echo.Context, req Req) (any, error) {
			return fn(c, req)
		}, fileResponder())
	}
}

func HandleNoContent[Req validation.Validatable](h Handler, fn HandlerFuncNoContent[Req], status int, newReq func() Req) echo.HandlerFunc {
	return func(c echo.Context) error {
		return run(c, newReq(), func(c echo.Context, req Req) (any, error) {
			return nil, fn(c, req)
		}, noContentResponder(status))
	}
}
