package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Parameter limits for render requests
const (
	minWidth   = 16
	maxWidth   = 2000
	maxSamples = 10000
	maxDepth   = 500
	maxPasses  = 100
)

// RenderRequest represents a render request from the client.
// GET handlers bind it from the query string, POST handlers from a JSON body.
type RenderRequest struct {
	Scene     string `json:"scene" query:"scene"`      // Scene ID from /api/scenes
	Width     int    `json:"width" query:"width"`      // Image width; height follows the camera aspect ratio
	Samples   int    `json:"samples" query:"samples"`  // Samples per pixel
	MaxDepth  int    `json:"maxDepth" query:"depth"`   // Maximum bounce depth
	MaxPasses int    `json:"maxPasses" query:"passes"` // Progressive passes (stream only)
	Seed      int64  `json:"seed" query:"seed"`        // Scene layout and sampling seed
	Caption   string `json:"caption" query:"caption"`  // Optional caption drawn on the PNG
}

// defaultRenderRequest returns the values used for omitted parameters
func defaultRenderRequest() RenderRequest {
	return RenderRequest{
		Scene:     "weekend",
		Width:     400,
		Samples:   20,
		MaxDepth:  50,
		MaxPasses: 5,
	}
}

// Validate checks every parameter against the server limits
func (r RenderRequest) Validate() error {
	if r.Scene == "" {
		return fmt.Errorf("scene is required")
	}
	if err := checkRange("width", r.Width, minWidth, maxWidth); err != nil {
		return err
	}
	if err := checkRange("samples", r.Samples, 1, maxSamples); err != nil {
		return err
	}
	if err := checkRange("depth", r.MaxDepth, 0, maxDepth); err != nil {
		return err
	}
	return checkRange("passes", r.MaxPasses, 1, maxPasses)
}

func checkRange(key string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, value)
	}
	return nil
}

// parseRenderRequest binds and validates a request, filling in defaults first
func (s *Server) parseRenderRequest(c echo.Context) (RenderRequest, error) {
	req := defaultRenderRequest()
	if err := c.Bind(&req); err != nil {
		return req, fmt.Errorf("invalid request: %v", err)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	if req.Width > 800 && req.Samples > 100 {
		s.logger.Printf("Render warning: %s at width %d with %d samples may render slowly\n",
			req.Scene, req.Width, req.Samples)
	}
	return req, nil
}

// createScene builds the requested scene. JSON scenes must live in the server's scenes directory.
func (s *Server) createScene(req RenderRequest) (*scene.Scene, error) {
	if strings.HasSuffix(strings.ToLower(req.Scene), ".json") &&
		filepath.Clean(filepath.Dir(req.Scene)) != filepath.Clean(s.scenesDir) {
		return nil, fmt.Errorf("%w %q", scene.ErrUnknownScene, req.Scene)
	}

	sceneObj, err := scene.Create(req.Scene, req.Seed)
	if err != nil {
		return nil, err
	}
	sceneObj.SetWidth(req.Width)
	sceneObj.SamplingConfig.SamplesPerPixel = req.Samples
	sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	return sceneObj, nil
}

// renderConfig derives the renderer configuration for a scene and request
func renderConfig(sceneObj *scene.Scene, req RenderRequest) renderer.Config {
	config := sceneObj.RenderConfig()
	config.Seed = req.Seed
	return config
}

// handleRender renders a whole image in one pass and returns it as PNG
func (s *Server) handleRender(c echo.Context) error {
	req, err := s.parseRenderRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sceneObj, err := s.createScene(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	startTime := time.Now()
	fb, stats, err := renderer.RenderWith(c.Request().Context(), sceneObj.World, sceneObj.Camera,
		sceneObj.Integrator(), renderConfig(sceneObj, req), s.logger)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, fmt.Sprintf("render error: %v", err))
	}
	s.logger.Printf("Rendered %s (%dx%d, %.1f samples/pixel) in %v\n",
		req.Scene, fb.Width, fb.Height, stats.AverageSamples, time.Since(startTime))

	return writePNG(c, fb, req.Caption)
}

// writePNG encodes fb with an optional caption as the response body
func writePNG(c echo.Context, fb *renderer.Framebuffer, caption string) error {
	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, fb, caption); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// ProgressUpdate represents a single progressive pass sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
}

// SSEEvent represents a single server-sent event
type SSEEvent struct {
	Type string // "console", "progress", "error", "complete"
	Data string
}

// handleRenderStream renders progressively, sending every pass as an SSE "progress" event.
// Log lines of the render are forwarded as "console" events.
func (s *Server) handleRenderStream(c echo.Context) error {
	req, err := s.parseRenderRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sceneObj, err := s.createScene(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	setSSEHeaders(c)
	ctx := c.Request().Context()

	// A single goroutine writes to the response; everything else sends events
	events := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeSSEEvents(ctx, c.Response(), events)
	}()

	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		streamConsoleMessages(consoleChan, events)
	}()

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, s.logger, consoleChan)

	s.streamPasses(ctx, sceneObj, req, webLogger, events)

	close(consoleChan)
	<-consoleDone
	close(events)
	<-writerDone
	return nil
}

// streamPasses runs the progressive render and converts each outcome to an event
func (s *Server) streamPasses(ctx context.Context, sceneObj *scene.Scene, req RenderRequest, logger core.Logger, events chan<- SSEEvent) {
	config := renderConfig(sceneObj, req)
	raytracer, err := renderer.NewProgressiveRaytracer(sceneObj.World, sceneObj.Camera, sceneObj.Integrator(),
		config.Width, config.Height, config.Progressive(req.MaxPasses), logger)
	if err != nil {
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: err.Error()})
		return
	}

	startTime := time.Now()
	passChan, errChan := raytracer.RenderProgressive(ctx)

	for result := range passChan {
		update, err := newProgressUpdate(result, req.MaxPasses, req.Caption, startTime)
		if err != nil {
			sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("failed to encode image: %v", err)})
			continue
		}
		data, err := json.Marshal(update)
		if err != nil {
			sendEvent(ctx, events, SSEEvent{Type: "error", Data: err.Error()})
			continue
		}
		sendEvent(ctx, events, SSEEvent{Type: "progress", Data: string(data)})
	}

	if err := <-errChan; err != nil {
		// Client went away; nobody is listening for the error
		if ctx.Err() != nil {
			return
		}
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Render error: %v", err)})
		return
	}
	sendEvent(ctx, events, SSEEvent{Type: "complete", Data: "Rendering completed"})
}

func newProgressUpdate(result renderer.PassResult, totalPasses int, caption string, startTime time.Time) (ProgressUpdate, error) {
	imageData, err := framebufferToBase64PNG(result.Frame, caption)
	if err != nil {
		return ProgressUpdate{}, err
	}
	return ProgressUpdate{
		PassNumber:  result.PassNumber,
		TotalPasses: totalPasses,
		Width:       result.Frame.Width,
		Height:      result.Frame.Height,
		ImageData:   imageData,
		Stats: Stats{
			TotalPixels:    result.Stats.TotalPixels,
			TotalSamples:   result.Stats.TotalSamples,
			AverageSamples: result.Stats.AverageSamples,
			MaxSamples:     result.Stats.MaxSamples,
			MinSamples:     result.Stats.MinSamples,
			MaxSamplesUsed: result.Stats.MaxSamplesUsed,
		},
		IsComplete: result.IsLast,
		ElapsedMs:  time.Since(startTime).Milliseconds(),
	}, nil
}

// framebufferToBase64PNG converts a frame to base64-encoded PNG
func framebufferToBase64PNG(fb *renderer.Framebuffer, caption string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, fb, caption); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set(echo.HeaderCacheControl, "no-cache")
	h.Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
}

// sendEvent queues an event unless the client has disconnected
func sendEvent(ctx context.Context, events chan<- SSEEvent, event SSEEvent) {
	select {
	case events <- event:
	case <-ctx.Done():
	}
}

// writeSSEEvents writes queued events until the channel closes or the client disconnects.
// It keeps draining after a disconnect so senders never block.
func writeSSEEvents(ctx context.Context, resp *echo.Response, events <-chan SSEEvent) {
	connected := true
	for event := range events {
		if !connected || ctx.Err() != nil {
			connected = false
			continue
		}
		if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			connected = false
			continue
		}
		resp.Flush()
	}
}

// streamConsoleMessages forwards console messages as SSE events until consoleChan closes
func streamConsoleMessages(consoleChan <-chan ConsoleMessage, events chan<- SSEEvent) {
	for msg := range consoleChan {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		events <- SSEEvent{Type: "console", Data: string(data)}
	}
}
