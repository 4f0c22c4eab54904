package api

import _ "embed"

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen --config=cfg.yaml openapi.yaml

//go:embed openapi.yaml
var openapiYAML []byte

// SpecYAML returns the OpenAPI document as written, for the /openapi route.
func SpecYAML() []byte {
	return openapiYAML
}
