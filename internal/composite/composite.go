package composite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"

	// Register decoders for the formats the model returns.
	_ "image/jpeg"

	"github.com/phrazzld/eralens-api/internal/domain"
)

// Common errors returned by the composite package
var (
	// ErrNoArtifacts is returned when Compose is called with nothing to render
	ErrNoArtifacts = errors.New("no artifacts to compose")

	// ErrUndecodableArtifact is returned when an artifact's bytes cannot be
	// decoded as an image
	ErrUndecodableArtifact = errors.New("artifact could not be decoded")
)

// Aggregator renders a set of era artifacts into one page.
type Aggregator interface {
	// Compose renders the artifacts, in the order given, into a single
	// page image.
	Compose(ctx context.Context, results []*domain.ImageResult) (*domain.ImageResult, error)
}

// Layout constants for the composed page.
const (
	gridColumns = 3
	gridMargin  = 16
)

// backdrop is the page background, a near-black studio gray.
var backdrop = color.RGBA{R: 18, G: 18, B: 20, A: 255}

// GridComposer lays artifacts out on a fixed-column grid. Cells share one
// size, the maximum artifact width and height, and each artifact is
// centered in its cell over the backdrop.
type GridComposer struct {
	logger *slog.Logger
}

// NewGridComposer creates a new GridComposer.
func NewGridComposer(logger *slog.Logger) (*GridComposer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &GridComposer{
		logger: logger.With("component", "grid_composer"),
	}, nil
}

// Compose implements the Aggregator interface. The output is always PNG.
func (c *GridComposer) Compose(ctx context.Context, results []*domain.ImageResult) (*domain.ImageResult, error) {
	if len(results) == 0 {
		return nil, ErrNoArtifacts
	}

	c.logger.DebugContext(ctx, "composing page", "artifact_count", len(results))

	images := make([]image.Image, 0, len(results))
	cellW, cellH := 0, 0
	for i, result := range results {
		if result == nil || len(result.Data) == 0 {
			return nil, fmt.Errorf("%w: artifact %d is empty", ErrUndecodableArtifact, i)
		}
		img, format, err := image.Decode(bytes.NewReader(result.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: artifact %d (%s): %v", ErrUndecodableArtifact, i, result.MIMEType, err)
		}
		c.logger.DebugContext(ctx, "decoded artifact",
			"index", i,
			"format", format,
			"width", img.Bounds().Dx(),
			"height", img.Bounds().Dy())

		if w := img.Bounds().Dx(); w > cellW {
			cellW = w
		}
		if h := img.Bounds().Dy(); h > cellH {
			cellH = h
		}
		images = append(images, img)
	}

	columns := gridColumns
	if len(images) < columns {
		columns = len(images)
	}
	rows := (len(images) + columns - 1) / columns

	pageW := columns*cellW + (columns+1)*gridMargin
	pageH := rows*cellH + (rows+1)*gridMargin
	page := image.NewRGBA(image.Rect(0, 0, pageW, pageH))
	draw.Draw(page, page.Bounds(), image.NewUniform(backdrop), image.Point{}, draw.Src)

	for i, img := range images {
		col := i % columns
		row := i / columns
		cellX := gridMargin + col*(cellW+gridMargin)
		cellY := gridMargin + row*(cellH+gridMargin)

		// Center the artifact within its cell
		offsetX := cellX + (cellW-img.Bounds().Dx())/2
		offsetY := cellY + (cellH-img.Bounds().Dy())/2
		target := image.Rect(offsetX, offsetY, offsetX+img.Bounds().Dx(), offsetY+img.Bounds().Dy())
		draw.Draw(page, target, img, img.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}

	c.logger.InfoContext(ctx, "page composed",
		"artifact_count", len(images),
		"width", pageW,
		"height", pageH,
		"bytes", buf.Len())

	return &domain.ImageResult{
		Data:     buf.Bytes(),
		MIMEType: "image/png",
	}, nil
}

// Ensure GridComposer implements Aggregator
var _ Aggregator = (*GridComposer)(nil)
