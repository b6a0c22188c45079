// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Catalog listing, search, submission and likes
//   - Games, tags and statistics
//   - Full import/export and upload cache clearing
//   - Admin login and admin mod management
//   - The GameBanana bridge
//   - Health checks and Prometheus metrics
package http
