// Package task schedules RAW decode work across a fixed pool of workers.
// It deduplicates concurrent requests for the same artifact, lets callers
// raise the priority of work they are actively waiting on, and cancels
// work whose results are no longer needed, such as thumbnails scrolled
// out of view before they finished decoding.
package task
