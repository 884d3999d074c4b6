// Package docs carries the OpenAPI description of the HTTP API so the
// server can publish it without reading from the working directory.
package docs

import _ "embed"

//go:embed api/openapi.yaml
var OpenAPI []byte
