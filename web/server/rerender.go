package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// RerenderResponse acknowledges a background render
type RerenderResponse struct {
	Generation int    `json:"generation"` // Identifies this render; later requests cancel it
	Scene      string `json:"scene"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// handleRerender starts a background render, cancelling the one in flight.
// The finished frame is served by /api/frame.
func (s *Server) handleRerender(c echo.Context) error {
	req, err := s.parseRenderRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sceneObj, err := s.createScene(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	config := renderConfig(sceneObj, req)

	generation, done := s.session.Trigger(func(ctx context.Context) (*renderer.Framebuffer, error) {
		fb, _, err := renderer.RenderWith(ctx, sceneObj.World, sceneObj.Camera, sceneObj.Integrator(), config, s.logger)
		return fb, err
	})

	go func() {
		err := <-done
		switch {
		case err == nil:
			s.logger.Printf("Render %d finished\n", generation)
		case errors.Is(err, context.Canceled):
		default:
			s.logger.Printf("Render %d failed: %v\n", generation, err)
		}
	}()

	return c.JSON(http.StatusAccepted, RerenderResponse{
		Generation: generation,
		Scene:      req.Scene,
		Width:      config.Width,
		Height:     config.Height,
	})
}
