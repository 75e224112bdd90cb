package seed

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a seed file
func Load(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := validate(&file); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	return &file, nil
}

func validate(file *File) error {
	for i, category := range file.Categories {
		if strings.TrimSpace(category.Name) == "" {
			return fmt.Errorf("category at index %d has no name", i)
		}
		for j, sub := range category.Subcategories {
			if strings.TrimSpace(sub.Name) == "" {
				return fmt.Errorf("subcategory at index %d of %q has no name", j, category.Name)
			}
			if len(sub.Subcategories) > 0 {
				return fmt.Errorf("subcategory %q of %q cannot be nested further", sub.Name, category.Name)
			}
		}
	}
	return nil
}
