package xhttp

import (
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

type RequestCtx = fasthttp.RequestCtx
type RequestHandler = fasthttp.RequestHandler

const StatusNotFound = fasthttp.StatusNotFound

func StatusText(code int) string {
	return fasthttp.StatusMessage(code)
}

type Server struct {
	router *router.Router
	server *fasthttp.Server
}

// CreateServer returns a fasthttp server with a fresh router and sane
// timeouts. Routes are registered through GET/POST before ListenAndServe.
func CreateServer() *Server {
	r := router.New()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = NotFoundHandler
	r.HandleMethodNotAllowed = true

	return &Server{
		router: r,
		server: &fasthttp.Server{
			ReadTimeout:        time.Millisecond * 2500,
			WriteTimeout:       time.Millisecond * 2500,
			IdleTimeout:        time.Second * 10,
			MaxRequestBodySize: 4 * 1024 * 1024,
		},
	}
}

func NotFoundHandler(ctx *RequestCtx) {
	ctx.Error(StatusText(StatusNotFound), StatusNotFound)
}

func (s *Server) GET(path string, handler RequestHandler) {
	s.router.GET(path, handler)
}

func (s *Server) POST(path string, handler RequestHandler) {
	s.router.POST(path, handler)
}

func (s *Server) ListenAndServe(addr string) error {
	s.server.Handler = s.router.Handler
	return s.server.ListenAndServe(addr)
}
