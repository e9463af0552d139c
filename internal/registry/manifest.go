package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	tomlManifestExtensionConstant       = ".toml"
	manifestReadErrorTemplateConstant   = "failed to read registry manifest %s: %w"
	manifestParseErrorTemplateConstant  = "failed to parse registry manifest %s: %w"
	manifestUnknownKeysTemplateConstant = "registry manifest %s contains unsupported keys: %s"
	manifestKeySeparatorConstant        = ", "
)

// ManifestConfiguration points at an optional registry manifest file.
type ManifestConfiguration struct {
	ManifestPath string `mapstructure:"manifest"`
}

// LoadDeclarations reads repository declarations from a YAML or TOML manifest.
// An empty path yields DefaultDeclarations.
func LoadDeclarations(manifestPath string) (Declarations, error) {
	trimmedPath := strings.TrimSpace(manifestPath)
	if len(trimmedPath) == 0 {
		return DefaultDeclarations(), nil
	}

	if strings.EqualFold(filepath.Ext(trimmedPath), tomlManifestExtensionConstant) {
		return loadTOMLDeclarations(trimmedPath)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Declarations{}, fmt.Errorf(manifestReadErrorTemplateConstant, trimmedPath, readError)
	}

	return decodeYAMLDeclarations(trimmedPath, contentBytes)
}

// decodeYAMLDeclarations rejects unknown keys so a misspelled section cannot drop repositories.
func decodeYAMLDeclarations(manifestPath string, contentBytes []byte) (Declarations, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(contentBytes))
	decoder.KnownFields(true)

	var declarations Declarations
	if decodeError := decoder.Decode(&declarations); decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return Declarations{}, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, decodeError)
	}
	return declarations, nil
}

func loadTOMLDeclarations(manifestPath string) (Declarations, error) {
	var declarations Declarations
	metadata, decodeError := toml.DecodeFile(manifestPath, &declarations)
	if decodeError != nil {
		if os.IsNotExist(decodeError) {
			return Declarations{}, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, decodeError)
		}
		return Declarations{}, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, decodeError)
	}

	undecodedKeys := metadata.Undecoded()
	if len(undecodedKeys) > 0 {
		keyNames := make([]string, 0, len(undecodedKeys))
		for _, undecodedKey := range undecodedKeys {
			keyNames = append(keyNames, undecodedKey.String())
		}
		return Declarations{}, fmt.Errorf(manifestUnknownKeysTemplateConstant, manifestPath, strings.Join(keyNames, manifestKeySeparatorConstant))
	}

	return declarations, nil
}
