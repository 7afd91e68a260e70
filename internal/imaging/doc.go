// Package imaging turns decoded artifacts into bytes a viewer can display
// directly. Embedded JPEG thumbnails pass through untouched; raw RGB
// bitmaps are wrapped in a BMP container. It also answers pixel dimension
// queries for artifacts whose dimensions live inside the encoded stream.
package imaging
