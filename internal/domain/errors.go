package domain

import "errors"

var (
	// ErrRenderSurfaceMissing means the composed document never mounted.
	ErrRenderSurfaceMissing = errors.New("render surface missing")
	// ErrImageLoadTimeout is recorded per image and never aborts a render.
	ErrImageLoadTimeout = errors.New("image load timeout")
	// ErrRasterizationFailure means the capture step produced no usable raster.
	ErrRasterizationFailure = errors.New("rasterization failure")
	// ErrBlankOutputDetected is logged when the raster is entirely white.
	ErrBlankOutputDetected = errors.New("blank output detected")

	ErrInvalidCertificate = errors.New("invalid certificate data")
	ErrSourceUnavailable  = errors.New("certificate source unavailable")
	ErrNotFound           = errors.New("not found")
)
