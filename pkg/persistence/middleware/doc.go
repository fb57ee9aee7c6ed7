// Package middleware wraps answer backends with storage-side behavior:
// AES-GCM encryption of answer values and masking of sensitive answers.
package middleware
