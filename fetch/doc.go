// Package fetch retrieves encoded images from their origin over HTTP.
//
// It provides a Fetcher with connect/read deadlines, a redirect cap,
// and pluggable request authorization, plus a Limiter that bounds how
// many origin fetches run at once.
package fetch
