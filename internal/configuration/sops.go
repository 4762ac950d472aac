package configuration

import (
	"fmt"
	"os"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"
)

// DecryptSOPSFile decrypts a SOPS encrypted YAML file and returns the
// parsed data. Keys are resolved by SOPS from the environment.
func DecryptSOPSFile(filePath string) (map[string]interface{}, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	cleartext, err := decrypt.File(filePath, "yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt SOPS file: %w", err)
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(cleartext, &data); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted YAML: %w", err)
	}
	return data, nil
}
