package config

import (
	"fmt"
	"strings"
)

// MissingEnvError reports data-source variables that a deployment must set
// before any upstream request can be attempted.
type MissingEnvError struct {
	Vars        []string
	Diagnostics map[string]any
}

func (e *MissingEnvError) Error() string {
	if len(e.Vars) == 1 {
		return fmt.Sprintf("Missing %s env var", e.Vars[0])
	}
	return fmt.Sprintf("Missing %s env vars", strings.Join(e.Vars, ", "))
}

// Validate checks that the variables required by the selected source are present.
func (s SourceConfig) Validate() error {
	switch s.Kind {
	case SourceGViz, SourceSheetProxy, SourceXLSX:
		if s.GSheet.ID == "" {
			return &MissingEnvError{
				Vars:        []string{"GSHEET_ID"},
				Diagnostics: map[string]any{"source": string(s.Kind), "sheetName": s.GSheet.Name},
			}
		}
		return nil
	case SourceAirtable:
		missing := make([]string, 0, 3)
		if s.Airtable.Token == "" {
			missing = append(missing, "AIRTABLE_TOKEN")
		}
		if s.Airtable.BaseID == "" {
			missing = append(missing, "AIRTABLE_BASE_ID")
		}
		if s.Airtable.Table == "" {
			missing = append(missing, "AIRTABLE_TABLE")
		}
		if len(missing) == 0 {
			return nil
		}
		return &MissingEnvError{
			Vars: missing,
			Diagnostics: map[string]any{
				"source":    string(s.Kind),
				"hasToken":  s.Airtable.Token != "",
				"hasBaseId": s.Airtable.BaseID != "",
				"hasTable":  s.Airtable.Table != "",
				"view":      s.Airtable.View,
			},
		}
	default:
		return fmt.Errorf("unsupported source %q", s.Kind)
	}
}
