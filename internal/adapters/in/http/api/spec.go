package api

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	swaggerOnce sync.Once
	swaggerDoc  *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed and validated OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openapiYAML)
		if err != nil {
			swaggerErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err = doc.Validate(loader.Context); err != nil {
			swaggerErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		swaggerDoc = doc
	})
	return swaggerDoc, swaggerErr
}

type swaggerSpec struct {
	doc string
}

func (s swaggerSpec) ReadDoc() string { return s.doc }

// RegisterSwaggerDoc publishes the document to swag, where echo-swagger reads it.
func RegisterSwaggerDoc() error {
	doc, err := GetSwagger()
	if err != nil {
		return err
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	if swag.GetSwagger(swag.Name) == nil {
		swag.Register(swag.Name, swaggerSpec{doc: string(raw)})
	}
	return nil
}
