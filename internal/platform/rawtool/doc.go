// Package rawtool implements the decode.Decoder interface on top of a
// dcraw-compatible command-line tool. Thumbnail requests extract the JPEG
// embedded in the RAW file; preview requests render the sensor data to a
// PPM bitmap, optionally at half resolution. Sources without an extractable
// thumbnail fall back to a half-size render.
package rawtool
