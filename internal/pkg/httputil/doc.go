// Package httputil holds the JSON response helpers shared by the API
// handlers. Errors are written as {"error": ..., "code": ...}.
package httputil
