package metric

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

//go:embed catalog_schema.json
var catalogSchemaJSON []byte

// ErrInvalidCatalog is returned when a catalog document fails schema validation.
var ErrInvalidCatalog = errors.New("invalid metric catalog")

type catalogFile struct {
	Metrics []Definition `yaml:"metrics"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the built-in fleet catalog. It is parsed once per process.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		cat, err := ParseCatalog(defaultCatalogYAML)
		if err != nil {
			panic(fmt.Sprintf("built-in metric catalog: %v", err))
		}

		defaultCatalog = cat
	})

	return defaultCatalog
}

// LoadCatalog reads and validates a YAML or JSON catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return cat, nil
}

// ParseCatalog validates data against the catalog schema and builds a Catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	err = validateCatalogDoc(doc)
	if err != nil {
		return nil, err
	}

	var file catalogFile

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return NewCatalog(file.Metrics...)
}

func validateCatalogDoc(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(catalogSchemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
}
