package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"certificate-generator/internal/domain"
)

//go:embed certificate.schema.json
var certificateSchema []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(certificateSchema))
	})
	return schema, schemaErr
}

// Validate checks certificate data assembled outside a request body, such as
// rows loaded from the applications database, against the same schema.
func Validate(d domain.CertificateData) error {
	return validate(gojsonschema.NewGoLoader(d))
}

// ParseCertificate validates raw JSON against the certificate schema and
// decodes it. Validation failures wrap domain.ErrInvalidCertificate.
func ParseCertificate(raw []byte) (domain.CertificateData, error) {
	var d domain.CertificateData
	if err := validate(gojsonschema.NewBytesLoader(raw)); err != nil {
		return d, err
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("%w: %v", domain.ErrInvalidCertificate, err)
	}
	return d, nil
}

func validate(doc gojsonschema.JSONLoader) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	res, err := s.Validate(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCertificate, err)
	}
	if res.Valid() {
		return nil
	}
	// collect errors
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: schema validation failed: %s", domain.ErrInvalidCertificate, strings.Join(msgs, "; "))
}
