package articulation

import (
	"fmt"
	"sort"
)

// FieldType is the JSON type a report field must carry.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field declares one property of a report object.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	// Items is the element type of an array field.
	Items FieldType
	// Fields are the properties of a nested object.
	Fields []Field
}

// Schema is the declared shape of a generated report.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
	// Placeholders are the {{name}} tokens the generator may echo back
	// unfilled. Only these are substituted during recovery.
	Placeholders []string
	// Template is the output skeleton handed to the generator.
	Template string
}

// Field returns the top-level field with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Conform checks v against the schema and returns one warning per missing
// required field or type mismatch, sorted. Unknown fields are allowed.
func (s Schema) Conform(v map[string]any) []string {
	var warnings []string
	conformFields("", s.Fields, v, &warnings)
	sort.Strings(warnings)
	return warnings
}

func conformFields(prefix string, fields []Field, v map[string]any, warnings *[]string) {
	for _, f := range fields {
		path := prefix + f.Name
		val, ok := v[f.Name]
		if !ok || val == nil {
			if f.Required {
				*warnings = append(*warnings, fmt.Sprintf("missing required field %q", path))
			}
			continue
		}
		if !hasType(val, f.Type) {
			*warnings = append(*warnings, fmt.Sprintf("field %q: expected %s, got %s", path, f.Type, typeOf(val)))
			continue
		}
		switch f.Type {
		case TypeObject:
			conformFields(path+".", f.Fields, val.(map[string]any), warnings)
		case TypeArray:
			if f.Items == "" {
				continue
			}
			for i, item := range val.([]any) {
				if !hasType(item, f.Items) {
					*warnings = append(*warnings, fmt.Sprintf("field %q[%d]: expected %s, got %s", path, i, f.Items, typeOf(item)))
				}
			}
		}
	}
}

func hasType(v any, t FieldType) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := v.(float64)
		return ok
	case TypeInteger:
		f, ok := v.(float64)
		return ok && f == float64(int64(f))
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}

func typeOf(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

// =============================================================================
// REPORT SCHEMAS
// =============================================================================

func dataQualityField() Field {
	return Field{
		Name: "data_quality", Type: TypeObject, Required: true,
		Description: "How complete the underlying data is.",
		Fields: []Field{
			{Name: "days_with_data", Type: TypeInteger, Required: true},
			{Name: "total_days", Type: TypeInteger, Required: true},
			{Name: "completeness", Type: TypeNumber, Required: true, Description: "Percent of days with data."},
			{Name: "notes", Type: TypeString},
		},
	}
}

// ActivityReportSchema is the shape of the physical activity report.
var ActivityReportSchema = Schema{
	Name:        "activity_report",
	Description: "Narrative summary of daily step counts over a date window.",
	Fields: []Field{
		{Name: "title", Type: TypeString, Required: true},
		{Name: "activity_level", Type: TypeString, Required: true, Description: "Thresholded level from average daily steps."},
		{Name: "summary", Type: TypeObject, Required: true, Fields: []Field{
			{Name: "total_steps", Type: TypeNumber, Required: true},
			{Name: "average_daily_steps", Type: TypeNumber, Required: true},
			{Name: "max_steps", Type: TypeNumber},
			{Name: "min_steps", Type: TypeNumber},
			{Name: "period", Type: TypeString},
		}},
		{Name: "insights", Type: TypeArray, Items: TypeString, Required: true},
		{Name: "recommendations", Type: TypeArray, Items: TypeString, Required: true},
		dataQualityField(),
	},
	Placeholders: []string{
		"total_steps", "avg_steps", "max_steps", "min_steps",
		"days_with_data", "total_days", "completeness",
		"start_date", "end_date", "assessment",
	},
	Template: `{
  "title": "Physical activity report {{start_date}} to {{end_date}}",
  "activity_level": "{{assessment}}",
  "summary": {
    "total_steps": {{total_steps}},
    "average_daily_steps": {{avg_steps}},
    "max_steps": {{max_steps}},
    "min_steps": {{min_steps}},
    "period": "{{start_date}} to {{end_date}}"
  },
  "insights": ["..."],
  "recommendations": ["..."],
  "data_quality": {
    "days_with_data": {{days_with_data}},
    "total_days": {{total_days}},
    "completeness": {{completeness}},
    "notes": "..."
  }
}`,
}

// SleepReportSchema is the shape of the sleep report.
var SleepReportSchema = Schema{
	Name:        "sleep_report",
	Description: "Narrative summary of nightly sleep minutes over a date window.",
	Fields: []Field{
		{Name: "title", Type: TypeString, Required: true},
		{Name: "sleep_quality", Type: TypeString, Required: true, Description: "Thresholded quality from average minutes per night."},
		{Name: "sleep_assessment", Type: TypeString, Required: true},
		{Name: "summary", Type: TypeObject, Required: true, Fields: []Field{
			{Name: "total_sleep_minutes", Type: TypeNumber, Required: true},
			{Name: "average_sleep_minutes", Type: TypeNumber, Required: true},
			{Name: "longest_sleep_minutes", Type: TypeNumber},
			{Name: "shortest_sleep_minutes", Type: TypeNumber},
			{Name: "period", Type: TypeString},
		}},
		{Name: "insights", Type: TypeArray, Items: TypeString, Required: true},
		{Name: "recommendations", Type: TypeArray, Items: TypeString, Required: true},
		dataQualityField(),
	},
	Placeholders: []string{
		"total_sleep_minutes", "avg_sleep_minutes", "max_sleep_minutes", "min_sleep_minutes",
		"avg_sleep_hours", "days_with_data", "total_days", "completeness",
		"start_date", "end_date", "sleep_quality", "assessment",
	},
	Template: `{
  "title": "Sleep report {{start_date}} to {{end_date}}",
  "sleep_quality": "{{sleep_quality}}",
  "sleep_assessment": "...",
  "summary": {
    "total_sleep_minutes": {{total_sleep_minutes}},
    "average_sleep_minutes": {{avg_sleep_minutes}},
    "longest_sleep_minutes": {{max_sleep_minutes}},
    "shortest_sleep_minutes": {{min_sleep_minutes}},
    "period": "{{start_date}} to {{end_date}}"
  },
  "insights": ["..."],
  "recommendations": ["..."],
  "data_quality": {
    "days_with_data": {{days_with_data}},
    "total_days": {{total_days}},
    "completeness": {{completeness}},
    "notes": "..."
  }
}`,
}
