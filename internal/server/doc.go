// Package server exposes the name-check HTTP API.
//
// POST /check_name runs the full browser automation for one name and
// returns the verdict; POST /conflict-check analyses caller-supplied
// conflict data without touching a browser and caches by payload
// digest. GET /health and GET /docs-info serve operational metadata and
// the optional static frontend is mounted at the root.
//
// Responses use a uniform envelope: {"success": true, "data": ...} or
// {"success": false, "data": null, "error": "..."}. Automation failures
// map onto user-facing messages by error class so the frontend never
// sees raw driver output.
package server
