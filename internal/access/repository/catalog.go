package repository

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/allisson/roleguard/internal/access/domain"
	apperrors "github.com/allisson/roleguard/internal/errors"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Subjects  []catalogSubject  `yaml:"subjects"`
	Resources []catalogResource `yaml:"resources"`
}

type catalogSubject struct {
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
	Password    string `yaml:"password"`
	Role        string `yaml:"role"`
	Active      *bool  `yaml:"active"`
}

type catalogResource struct {
	ID        string            `yaml:"id"`
	Type      string            `yaml:"type"`
	Title     string            `yaml:"title"`
	Access    []string          `yaml:"access"`
	Sensitive *bool             `yaml:"sensitive"`
	Metadata  map[string]string `yaml:"metadata"`
}

// ParseCatalog decodes a YAML catalog. Subjects default to active.
// Access lists are kept verbatim; the classifier validates them when seeding.
func ParseCatalog(data []byte) (*domain.Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid catalog: "+err.Error())
	}

	catalog := &domain.Catalog{
		Subjects:  make([]domain.CreateSubjectInput, 0, len(file.Subjects)),
		Resources: make([]domain.RegisterResourceInput, 0, len(file.Resources)),
	}

	for _, s := range file.Subjects {
		active := true
		if s.Active != nil {
			active = *s.Active
		}
		catalog.Subjects = append(catalog.Subjects, domain.CreateSubjectInput{
			Email:       s.Email,
			DisplayName: s.DisplayName,
			Password:    s.Password,
			Role:        s.Role,
			IsActive:    active,
		})
	}

	for _, r := range file.Resources {
		catalog.Resources = append(catalog.Resources, domain.RegisterResourceInput{
			ID:         r.ID,
			Type:       r.Type,
			Title:      r.Title,
			AccessList: r.Access,
			Sensitive:  r.Sensitive,
			Metadata:   r.Metadata,
		})
	}

	return catalog, nil
}

// LoadCatalog reads a catalog file. An empty path yields the built-in catalog.
func LoadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read catalog")
	}
	return ParseCatalog(data)
}
