// Package schema проверяет импортируемые проекты по JSON Schema.
package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"floorplan-engine/internal/planner/models"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed project.schema.json
var projectSchema []byte

var ErrInvalidProject = errors.New("invalid project")

// Validator проверяет данные проекта до того, как они заменят рабочее состояние.
type Validator struct {
	schemaLoader gojsonschema.JSONLoader
}

func NewProjectValidator() *Validator {
	return &Validator{schemaLoader: gojsonschema.NewBytesLoader(projectSchema)}
}

// ValidateBytes проверяет сырой JSON и декодирует проект.
func (v *Validator) ValidateBytes(data []byte) (models.Project, error) {
	result, err := gojsonschema.Validate(v.schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return models.Project{}, fmt.Errorf("%w: %s", ErrInvalidProject, strings.Join(msgs, "; "))
	}

	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	return p, nil
}
