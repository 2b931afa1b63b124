// Package apikit is the Go client kit for the application's HTTP API. It
// bundles a cached query layer, cookie-session logout, a live invalidation
// feed, and translation of request failures into user-facing notification
// text. The package mirrors the TypeScript client shipped with the web
// frontend.
package apikit
