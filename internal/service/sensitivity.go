package service

import (
	"fmt"
	"regexp"
	"strings"

	"byteneko/internal/model"
)

// Label vocabularies are matched on whole normalized tokens so that
// "correo" matches "Correo_Electronico" but not "recorreo". Order of
// classification is meta, then pii, then demographic: a label hitting
// two buckets takes the most restrictive one.
var (
	metaWords = []string{
		"session", "sesion", "token", "reserva", "folio", "registro",
		"interno", "timestamp", "uuid",
	}
	piiWords = []string{
		"nombre", "name", "apellido", "correo", "email", "mail",
		"telefono", "phone", "celular", "dni", "rut", "curp",
		"pasaporte", "passport", "direccion", "address", "domicilio",
		"huesped", "guest", "cedula", "identificacion",
	}
	demoWords = []string{
		"edad", "age", "genero", "gender", "sexo", "ciudad", "city",
		"pais", "country", "departamento", "department", "area",
		"cargo", "rol", "role", "puesto", "antiguedad", "tenure",
		"carrera", "nacionalidad",
	}
)

// Classify assigns a sensitivity bucket to a question from its label
// and metadata. The result drives redaction downstream: PII and META
// answers never reach a report, DEMO ones get segment-only treatment.
func Classify(q *model.Question) (model.Sensitivity, string) {
	for _, w := range metaWords {
		if ContainsWord(q.Text, w) {
			return model.SensitivityMeta, fmt.Sprintf("label matches system term %q", w)
		}
	}
	// "id" alone is too common inside words; require it as a token.
	if ContainsWord(q.Text, "id") {
		return model.SensitivityMeta, `label matches system term "id"`
	}
	for _, w := range piiWords {
		if ContainsWord(q.Text, w) {
			return model.SensitivityPII, fmt.Sprintf("label matches personal term %q", w)
		}
	}
	if q.IsDemographic {
		return model.SensitivityDemo, "question flagged demographic"
	}
	for _, w := range demoWords {
		if ContainsWord(q.Text, w) {
			return model.SensitivityDemo, fmt.Sprintf("label matches demographic term %q", w)
		}
	}
	return model.SensitivityValid, ""
}

var idShapePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Za-z]{0,4}-?\d{4,}$`),   // RES-10293, 48271
	regexp.MustCompile(`^[0-9a-fA-F]{8,}$`),         // hex tokens
	regexp.MustCompile(`^[0-9a-fA-F-]{32,}$`),       // uuids
	regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`),   // ip addresses
	regexp.MustCompile(`^[A-Z0-9]{6,}$`),            // booking codes
	regexp.MustCompile(`^\S+@\S+\.\S+$`),            // emails
	regexp.MustCompile(`^\+?\d[\d\s().-]{7,}\d$`),   // phone numbers
}

func looksLikeIdentifier(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, re := range idShapePatterns {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// LooksLikeIdentifierColumn hardens classification against labels that
// slipped past the vocabularies: a text column whose values are mostly
// unique and identifier-shaped gets treated as META regardless of its
// label. Needs at least 4 samples to have an opinion.
func LooksLikeIdentifierColumn(values []string) bool {
	var nonEmpty []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(v))
		}
	}
	if len(nonEmpty) < 4 {
		return false
	}
	seen := make(map[string]struct{}, len(nonEmpty))
	idShaped := 0
	for _, v := range nonEmpty {
		seen[v] = struct{}{}
		if looksLikeIdentifier(v) {
			idShaped++
		}
	}
	uniqueRatio := float64(len(seen)) / float64(len(nonEmpty))
	shapeRatio := float64(idShaped) / float64(len(nonEmpty))
	return uniqueRatio >= 0.9 && shapeRatio >= 0.6
}

// DemographicContext maps a demographic label to the template context
// used by the narrative engine.
func DemographicContext(label string) string {
	switch {
	case ContainsAny(label, "genero", "gender", "sexo"):
		return "gender"
	case ContainsAny(label, "ciudad", "city", "pais", "country", "nacionalidad"):
		return "location"
	case ContainsAny(label, "cargo", "rol", "role", "puesto", "departamento", "department", "area", "carrera"):
		return "role"
	case ContainsAny(label, "edad", "age"):
		return "age"
	case ContainsAny(label, "antiguedad", "tenure"):
		return "tenure"
	default:
		return "general"
	}
}
