package floorplan

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gocv.io/x/gocv"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/Syntax-error2/ELECDRAFT/pkg/geometry"
)

// RasterOptions controls wall extraction from a raster floor plan.
type RasterOptions struct {
	// WallThreshold is the grayscale lightness below which a pixel is
	// treated as wall. Scanned plans draw walls in dark ink.
	WallThreshold uint8

	// CellSize is the obstacle grid pitch in scene units (pixels).
	CellSize float64

	// ClearancePx dilates the wall mask by this many pixels so routed
	// wires keep a margin from wall faces.
	ClearancePx int
}

// DefaultRasterOptions returns the thresholds used by the drawing canvas.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		WallThreshold: 120,
		CellSize:      DefaultCellSize,
		ClearancePx:   2,
	}
}

// BuildFromImage extracts a wall mask from a raster floor plan and
// downsamples it onto the obstacle grid. Dark pixels are walls; the mask
// is morphologically closed to seal scan pinholes, then dilated for
// clearance. An image with no dark pixels yields an all-free map.
func BuildFromImage(img image.Image, opts RasterOptions) (*ObstacleMap, error) {
	if img == nil {
		return nil, fmt.Errorf("floorplan: nil image")
	}
	if opts.WallThreshold == 0 {
		opts = DefaultRasterOptions()
	}

	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	// Dark pixels (below threshold) become white mask pixels.
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, float32(opts.WallThreshold), 255, gocv.ThresholdBinaryInv)

	element := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer element.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, element)

	for i := 0; i < opts.ClearancePx; i++ {
		gocv.Dilate(mask, &mask, element)
	}

	maskImg, err := mask.ToImage()
	if err != nil {
		return nil, fmt.Errorf("floorplan: mask conversion: %w", err)
	}

	bounds := img.Bounds()
	m := newGrid(geometry.Rect{
		Width:  float64(bounds.Dx()),
		Height: float64(bounds.Dy()),
	}, opts.CellSize)

	// Downsample the mask to grid resolution. Any wall coverage inside a
	// cell leaves a nonzero gray value after scaling.
	scaled := image.NewGray(image.Rect(0, 0, m.cols, m.rows))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), maskImg, maskImg.Bounds(), xdraw.Over, nil)

	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			if scaled.GrayAt(x, y).Y > 32 {
				m.blocked[y*m.cols+x] = true
			}
		}
	}
	return m, nil
}

// LoadImageMap reads a floor-plan image file (PNG, JPEG, or TIFF) and
// builds its obstacle map.
func LoadImageMap(path string, opts RasterOptions) (*ObstacleMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("floorplan: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("floorplan: decode %s: %w", path, err)
	}
	return BuildFromImage(img, opts)
}

// imageToMat converts a Go image.Image to a gocv.Mat in BGR format.
func imageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}

	return mat, nil
}
