package services

import (
	"embed"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/careermatch/internal/models"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// sectionSynonyms maps lowercased section names an LLM tends to produce onto
// the CV sections the report knows about.
var sectionSynonyms = map[string]models.CVSection{
	"education":       models.SectionOther,
	"certifications":  models.SectionSkills,
	"certification":   models.SectionSkills,
	"training":        models.SectionSkills,
	"courses":         models.SectionSkills,
	"course":          models.SectionSkills,
	"projects":        models.SectionProjects,
	"project":         models.SectionProjects,
	"work experience": models.SectionExperience,
	"experience":      models.SectionExperience,
	"skills":          models.SectionSkills,
	"summary":         models.SectionSummary,
	"about":           models.SectionSummary,
	"other":           models.SectionOther,
}

// CanonicalSection maps any raw section value onto one of the five CV
// sections. Unknown values and non-strings become "other".
func CanonicalSection(raw any) models.CVSection {
	s, ok := raw.(string)
	if !ok {
		return models.SectionOther
	}
	if section, ok := sectionSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return section
	}
	return models.SectionOther
}

type ResponseValidator interface {
	FitCore(data any) (*models.FitCore, error)
	FitSuggestions(data any) (*models.FitSuggestions, error)
}

type responseValidator struct {
	coreSchema *gojsonschema.Schema
	suggSchema *gojsonschema.Schema
	validate   *validator.Validate
}

func NewResponseValidator() (ResponseValidator, error) {
	coreSchema, err := loadSchema("schemas/fit_core.schema.json")
	if err != nil {
		return nil, err
	}
	suggSchema, err := loadSchema("schemas/fit_suggestions.schema.json")
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &responseValidator{
		coreSchema: coreSchema,
		suggSchema: suggSchema,
		validate:   validate,
	}, nil
}

func loadSchema(path string) (*gojsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", path, err)
	}
	return schema, nil
}

func (v *responseValidator) FitCore(data any) (*models.FitCore, error) {
	var core models.FitCore
	if err := v.run(v.coreSchema, data, &core); err != nil {
		return nil, err
	}

	core.Confidence = normalizeLevel(core.Confidence, "")
	core.MustHaveMatch = normalizeMatches(core.MustHaveMatch)
	core.NiceToHaveMatch = normalizeMatches(core.NiceToHaveMatch)
	if core.Gaps == nil {
		core.Gaps = []models.GapItem{}
	}
	for i := range core.Gaps {
		core.Gaps[i].Impact = normalizeLevel(core.Gaps[i].Impact, "")
		if core.Gaps[i].HowToFix == nil {
			core.Gaps[i].HowToFix = []string{}
		}
	}

	if err := v.check(&core); err != nil {
		return nil, err
	}
	return &core, nil
}

func (v *responseValidator) FitSuggestions(data any) (*models.FitSuggestions, error) {
	var sugg models.FitSuggestions
	if err := v.run(v.suggSchema, data, &sugg); err != nil {
		return nil, err
	}

	NormalizeSuggestions(&sugg)

	if err := v.check(&sugg); err != nil {
		return nil, err
	}
	return &sugg, nil
}

// NormalizeSuggestions applies defaults and canonical sections in place.
func NormalizeSuggestions(sugg *models.FitSuggestions) {
	if sugg.CVSuggestions == nil {
		sugg.CVSuggestions = []models.SuggestionItem{}
	}
	for i := range sugg.CVSuggestions {
		item := &sugg.CVSuggestions[i]
		item.Section = CanonicalSection(string(item.Section))
		item.Priority = normalizeLevel(item.Priority, models.LevelMedium)
	}

	if sugg.LinkedInSuggestions == nil {
		sugg.LinkedInSuggestions = []models.LinkedInSuggestionItem{}
	}
	for i := range sugg.LinkedInSuggestions {
		item := &sugg.LinkedInSuggestions[i]
		if strings.TrimSpace(item.Section) == "" {
			item.Section = string(models.SectionOther)
		}
		item.Priority = normalizeLevel(item.Priority, models.LevelMedium)
	}

	if sugg.ATSKeywords == nil {
		sugg.ATSKeywords = []models.ATSKeywordItem{}
	}
	for i := range sugg.ATSKeywords {
		item := &sugg.ATSKeywords[i]
		item.WhereToAdd = models.KeywordPlacement(strings.ToLower(strings.TrimSpace(string(item.WhereToAdd))))
		if item.WhereToAdd == "" {
			item.WhereToAdd = models.PlacementCV
		}
	}
}

// run checks the JSON shape, then decodes data into out.
func (v *responseValidator) run(schema *gojsonschema.Schema, data any, out any) error {
	if _, ok := data.(map[string]any); !ok {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "expected a JSON object"}}}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if !result.Valid() {
		verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			verr.Errors = append(verr.Errors, FieldError{Field: schemaFieldPath(desc.Field()), Message: desc.Description()})
		}
		return verr
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(sectionHook, enumHook),
		Result:     out,
		TagName:    "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(decode)", Message: err.Error()}}}
	}
	return nil
}

func (v *responseValidator) check(target any) error {
	err := v.validate.Struct(target)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Errors = append(verr.Errors, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: ruleMessage(fe),
		})
	}
	return verr
}

// fieldPath drops the struct name validator prefixes to every namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// schemaFieldPath rewrites gojsonschema's "gaps.0.impact" as "gaps[0].impact",
// the form field rule errors use.
func schemaFieldPath(field string) string {
	if field == "" {
		return "(root)"
	}
	var sb strings.Builder
	for i, part := range strings.Split(field, ".") {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%q is not one of [%s]", fmt.Sprint(fe.Value()), fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

var (
	sectionType     = reflect.TypeOf(models.CVSection(""))
	levelType       = reflect.TypeOf(models.Level(""))
	matchStatusType = reflect.TypeOf(models.MatchStatus(""))
	placementType   = reflect.TypeOf(models.KeywordPlacement(""))
)

// sectionHook accepts any JSON value for a CV section.
func sectionHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != sectionType {
		return data, nil
	}
	return string(CanonicalSection(data)), nil
}

// enumHook trims and lowercases enum strings before they are checked.
func enumHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to {
	case levelType, matchStatusType, placementType:
		return strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String())), nil
	}
	return data, nil
}

func normalizeLevel(l models.Level, fallback models.Level) models.Level {
	l = models.Level(strings.ToLower(strings.TrimSpace(string(l))))
	if l == "" {
		return fallback
	}
	return l
}

func normalizeMatches(items []models.MatchItem) []models.MatchItem {
	if items == nil {
		return []models.MatchItem{}
	}
	for i := range items {
		if items[i].Evidence == nil {
			items[i].Evidence = []string{}
		}
	}
	return items
}
