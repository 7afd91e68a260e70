// Package decode provides the interface and data types for turning RAW
// camera files into displayable artifacts. It abstracts the details of the
// underlying RAW processing tool, allowing the scheduling and caching layers
// to work against a stable boundary without coupling to a specific decoder
// implementation.
package decode
