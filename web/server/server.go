package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Server handles web requests for the weekend raytracer
type Server struct {
	port      int
	scenesDir string
	logger    core.Logger
	echo      *echo.Echo
	session   *renderer.Session // Backs /api/rerender and /api/frame
}

// NewServer creates a new web server with all routes registered
func NewServer(port int, logger core.Logger) *Server {
	if logger == nil {
		logger = renderer.NopLogger{}
	}

	s := &Server{
		port:      port,
		scenesDir: "scenes",
		logger:    logger,
		echo:      echo.New(),
		session:   renderer.NewSession(context.Background(), logger),
	}
	s.echo.HideBanner = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Printf("%s %s %d\n", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	s.echo.Use(middleware.CORS())

	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/scenes", s.handleScenes)
	api.GET("/render", s.handleRender)
	api.GET("/render/stream", s.handleRenderStream)
	api.POST("/rerender", s.handleRerender)
	api.GET("/frame", s.handleFrame)
	api.GET("/inspect", s.handleInspect)

	return s
}

// SetScenesDir changes the directory searched for JSON scene files
func (s *Server) SetScenesDir(dir string) {
	s.scenesDir = dir
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the web server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and cancels the background render
func (s *Server) Shutdown(ctx context.Context) error {
	s.session.Close()
	return s.echo.Shutdown(ctx)
}

// HealthResponse is returned by /api/health
type HealthResponse struct {
	Status string             `json:"status"`
	Host   *renderer.HostInfo `json:"host,omitempty"`
}

// handleHealth reports liveness and, when available, the host the renders run on
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if info, err := renderer.GetHostInfo(); err == nil {
		resp.Host = &info
	}
	return c.JSON(http.StatusOK, resp)
}

// handleScenes lists built-in scenes and any JSON scenes on disk
func (s *Server) handleScenes(c echo.Context) error {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, scenes)
}

// handleFrame serves the last frame finished by the re-render session
func (s *Server) handleFrame(c echo.Context) error {
	fb := s.session.Latest()
	if fb == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no frame rendered yet")
	}
	return writePNG(c, fb, "")
}
