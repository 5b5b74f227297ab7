package kernel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

// FactoryRegistry maps factory reference names, as used in manifest
// catalogs, to module factories compiled into the embedding application.
type FactoryRegistry map[string]ModuleFactory

// catalogEntry is the on-disk manifest shape. It mirrors ModuleManifest but
// references its factory by name and allows Enabled as a loosely typed
// scalar, since hand-written catalogs say "true", "yes" or 1 as often as a
// proper boolean.
type catalogEntry struct {
	ID             string          `yaml:"id" toml:"id"`
	Name           string          `yaml:"name" toml:"name"`
	Version        string          `yaml:"version" toml:"version"`
	Category       string          `yaml:"category" toml:"category"`
	Icon           string          `yaml:"icon" toml:"icon"`
	ActivationMode string          `yaml:"activationMode" toml:"activationMode"`
	View           *ViewDescriptor `yaml:"view" toml:"view"`
	Factory        string          `yaml:"factory" toml:"factory"`
	Enabled        any             `yaml:"enabled" toml:"enabled"`
}

// catalogFile is the root of a manifest catalog document.
type catalogFile struct {
	Modules []catalogEntry `yaml:"modules" toml:"modules"`
}

// CatalogProvider is a ModuleProvider that reads module manifests from YAML
// or TOML catalog files and binds each entry to a factory from a
// FactoryRegistry. A catalog entry referencing an unknown factory fails the
// load, consistent with the loader's fail-fast policy.
type CatalogProvider struct {
	id        string
	factories FactoryRegistry
	paths     []string
}

// NewCatalogProvider creates a provider over the given catalog files.
// Format is selected per file by extension: .yaml/.yml or .toml.
func NewCatalogProvider(id string, factories FactoryRegistry, paths ...string) *CatalogProvider {
	return &CatalogProvider{id: id, factories: factories, paths: paths}
}

// ProviderID implements ModuleProvider.
func (p *CatalogProvider) ProviderID() string {
	return p.id
}

// Load implements ModuleProvider. Every catalog file is parsed and each
// entry converted to a ModuleDefinition; the first parse, coercion or
// factory-resolution error aborts the load.
func (p *CatalogProvider) Load(_ context.Context) ([]ModuleDefinition, error) {
	var defs []ModuleDefinition
	for _, path := range p.paths {
		file, err := p.parseFile(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range file.Modules {
			def, err := p.toDefinition(entry)
			if err != nil {
				return nil, fmt.Errorf("catalog %s: %w", path, err)
			}
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// parseFile reads and decodes one catalog file by extension.
func (p *CatalogProvider) parseFile(path string) (catalogFile, error) {
	var file catalogFile

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return file, fmt.Errorf("failed to parse YAML catalog %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return file, fmt.Errorf("failed to parse TOML catalog %s: %w", path, err)
		}
	default:
		return file, fmt.Errorf("%w: %s", ErrUnknownManifestFormat, path)
	}
	return file, nil
}

// toDefinition converts a catalog entry into a registrable definition.
func (p *CatalogProvider) toDefinition(entry catalogEntry) (ModuleDefinition, error) {
	factory, ok := p.factories[entry.Factory]
	if !ok {
		return ModuleDefinition{}, fmt.Errorf("%w: %q (module %s)", ErrUnknownFactoryRef, entry.Factory, entry.ID)
	}

	manifest := ModuleManifest{
		ID:             entry.ID,
		Name:           entry.Name,
		Version:        entry.Version,
		Category:       entry.Category,
		Icon:           entry.Icon,
		ActivationMode: ActivationMode(entry.ActivationMode),
		View:           entry.View,
	}

	if entry.Enabled != nil {
		enabled, err := coerceBool(entry.Enabled)
		if err != nil {
			return ModuleDefinition{}, fmt.Errorf("module %s: invalid enabled value: %w", entry.ID, err)
		}
		manifest.Enabled = func(context.Context, ModuleContext) (bool, error) {
			return enabled, nil
		}
	}

	return ModuleDefinition{Manifest: manifest, Factory: factory}, nil
}

// coerceBool converts loosely typed catalog scalars to a boolean.
func coerceBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		converted, err := cast.FromType(v, reflect.TypeOf(true))
		if err != nil {
			return false, fmt.Errorf("cannot interpret %q as bool: %w", v, err)
		}
		b, ok := converted.(bool)
		if !ok {
			return false, fmt.Errorf("cannot interpret %q as bool", v)
		}
		return b, nil
	case int, int64:
		return fmt.Sprintf("%d", v) != "0", nil
	default:
		return false, fmt.Errorf("cannot interpret %T as bool", value)
	}
}
