// Package http exposes the ITA pipeline over HTTP. Handlers stay thin:
// they decode requests, call the service layer, and render JSON or report
// downloads through chi/render with the shared APIError envelope.
package http
