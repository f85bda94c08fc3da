package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"byteneko/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		label string
		want  model.Sensitivity
	}{
		{"¿Qué tan satisfecho está con su estadía?", model.SensitivityValid},
		{"Nombre_Huesped", model.SensitivityPII},
		{"nombreHuesped", model.SensitivityPII},
		{"Correo electrónico", model.SensitivityPII},
		{"Guest Name", model.SensitivityPII},
		{"Reserva_ID", model.SensitivityMeta},
		{"reservaId", model.SensitivityMeta},
		{"Session Token", model.SensitivityMeta},
		{"Folio interno", model.SensitivityMeta},
		{"Edad", model.SensitivityDemo},
		{"Ciudad de residencia", model.SensitivityDemo},
		{"¿Cuál es su cargo?", model.SensitivityDemo},
		{"Comentarios sobre el servicio", model.SensitivityValid},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			got, reason := Classify(&model.Question{Text: tc.label, Type: model.QuestionTypeText})
			assert.Equal(t, tc.want, got)
			if tc.want != model.SensitivityValid {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestClassifyDemographicFlagWins(t *testing.T) {
	q := &model.Question{Text: "Zona de preferencia", Type: model.QuestionTypeSingle, IsDemographic: true}
	got, _ := Classify(q)
	assert.Equal(t, model.SensitivityDemo, got)
}

func TestClassifyMetaBeatsPII(t *testing.T) {
	// "reserva" (meta) and "huesped" (pii) in one label: meta wins.
	got, _ := Classify(&model.Question{Text: "Reserva del huésped", Type: model.QuestionTypeText})
	assert.Equal(t, model.SensitivityMeta, got)
}

func TestLooksLikeIdentifierColumn(t *testing.T) {
	assert.True(t, LooksLikeIdentifierColumn([]string{"RES-10293", "RES-10294", "RES-10295", "RES-10296", "RES-10297"}))
	assert.True(t, LooksLikeIdentifierColumn([]string{"a@b.com", "c@d.com", "e@f.org", "g@h.net"}))
	assert.False(t, LooksLikeIdentifierColumn([]string{"bueno", "malo", "regular", "bueno", "excelente"}))
	// Too few samples to have an opinion.
	assert.False(t, LooksLikeIdentifierColumn([]string{"RES-10293", "RES-10294"}))
	// Repeated values are categories, not identifiers.
	assert.False(t, LooksLikeIdentifierColumn([]string{"48271", "48271", "48271", "48271"}))
}

func TestDemographicContext(t *testing.T) {
	assert.Equal(t, "gender", DemographicContext("Género"))
	assert.Equal(t, "location", DemographicContext("Ciudad de residencia"))
	assert.Equal(t, "role", DemographicContext("Cargo actual"))
	assert.Equal(t, "age", DemographicContext("Edad"))
	assert.Equal(t, "tenure", DemographicContext("Antigüedad en la empresa"))
	assert.Equal(t, "general", DemographicContext("Turno preferido"))
}
