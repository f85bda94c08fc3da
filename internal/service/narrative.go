package service

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"byteneko/internal/model"
)

// NarrativeContext tracks the last template used per slot so that two
// adjacent questions with the same mood do not read like copy-paste.
// On a collision the picker re-rolls once; switching between bank
// families resets the memory, since the wording no longer overlaps.
type NarrativeContext struct {
	bank string
	last map[string]string
}

func NewNarrativeContext() *NarrativeContext {
	return &NarrativeContext{last: make(map[string]string)}
}

func (c *NarrativeContext) pick(rng *rand.Rand, bank, slot string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	if c.bank != bank {
		c.bank = bank
		c.last = make(map[string]string)
	}
	choice := options[rng.Intn(len(options))]
	if choice == c.last[slot] && len(options) > 1 {
		choice = options[rng.Intn(len(options))]
	}
	c.last[slot] = choice
	return choice
}

// questionRand derives a deterministic source per question, so the same
// data always renders the same prose while different questions vary.
func questionRand(questionID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(questionID))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

var numericOpenings = map[model.Mood][]string{
	model.MoodExcellent: {
		"«{question}» es uno de los puntos más fuertes del periodo.",
		"Los resultados de «{question}» son sobresalientes.",
		"«{question}» muestra un desempeño excelente.",
	},
	model.MoodGood: {
		"«{question}» presenta un desempeño sólido.",
		"Los resultados de «{question}» son positivos en general.",
		"«{question}» se mantiene en un nivel saludable.",
	},
	model.MoodRegular: {
		"«{question}» arroja resultados intermedios que conviene revisar.",
		"El desempeño de «{question}» es aceptable pero mejorable.",
		"«{question}» queda en una zona media, sin destacar ni preocupar en exceso.",
	},
	model.MoodCritical: {
		"«{question}» es el área más débil detectada en este análisis.",
		"Los resultados de «{question}» encienden una alerta clara.",
		"«{question}» presenta un desempeño crítico que requiere acción.",
	},
}

var numericEvidence = map[model.Trend][]string{
	model.TrendUp: {
		"El promedio es {avg} sobre {scaleMax} con {count} respuestas, y las más recientes ({trailing}) muestran una mejora.",
		"Con {count} respuestas el promedio llega a {avg} de {scaleMax}; la tendencia reciente ({trailing}) va al alza.",
	},
	model.TrendDown: {
		"El promedio es {avg} sobre {scaleMax} con {count} respuestas, pero las más recientes ({trailing}) marcan un retroceso.",
		"Con {count} respuestas el promedio es {avg} de {scaleMax}; las últimas respuestas ({trailing}) vienen cayendo.",
	},
	model.TrendStable: {
		"El promedio es {avg} sobre {scaleMax} con {count} respuestas y se mantiene estable en el tramo reciente.",
		"Con {count} respuestas el promedio se sostiene en {avg} de {scaleMax}, sin cambios relevantes en las últimas.",
	},
}

var consensusSentences = map[model.Consensus][]string{
	model.ConsensusHighAgreement: {
		"Las opiniones están muy alineadas: casi todos los respondentes coinciden.",
		"Hay un consenso alto; la dispersión de las respuestas es mínima.",
	},
	model.ConsensusPolarized: {
		"Las opiniones están polarizadas: conviven experiencias muy buenas y muy malas.",
		"La dispersión es alta; el promedio esconde grupos con experiencias opuestas.",
	},
	model.ConsensusNormal: {
		"La dispersión de las respuestas está dentro de lo normal.",
		"Las opiniones muestran una variabilidad típica.",
	},
}

var tierSentences = map[model.Recommendation][]string{
	model.RecommendationMaintain: {
		"Recomendación: mantener lo que se está haciendo y usarlo como referencia interna.",
		"Recomendación: documentar qué funciona aquí y replicarlo en otras áreas.",
	},
	model.RecommendationWatch: {
		"Recomendación: monitorear el indicador en el próximo periodo antes de intervenir.",
		"Recomendación: seguir de cerca la evolución; aún no amerita cambios mayores.",
	},
	model.RecommendationQuickWin: {
		"Recomendación: priorizar mejoras puntuales; es una ganancia rápida con esfuerzo moderado.",
		"Recomendación: atacar este punto pronto, hay margen de mejora alcanzable.",
	},
	model.RecommendationCritical: {
		"Recomendación: intervenir de inmediato; el indicador compromete la experiencia global.",
		"Recomendación: tratar este punto como prioridad máxima del plan de acción.",
	},
}

var scenarioOpenings = map[model.Scenario][]string{
	model.ScenarioAbsoluteMajority: {
		"En «{question}» hay una mayoría absoluta: «{top}» concentra el {topPct}% de las respuestas.",
		"«{top}» domina «{question}» con el {topPct}% de las {count} respuestas.",
	},
	model.ScenarioStrongLead: {
		"«{top}» lidera «{question}» con el {topPct}%, con ventaja clara sobre el resto.",
		"En «{question}» la opción «{top}» encabeza con el {topPct}% y una brecha cómoda.",
	},
	model.ScenarioTightRace: {
		"En «{question}» hay una competencia cerrada: «{top}» ({topPct}%) apenas supera a «{second}» ({secondPct}%).",
		"«{top}» y «{second}» están prácticamente empatadas en «{question}» ({topPct}% frente a {secondPct}%).",
	},
	model.ScenarioFragmented: {
		"Las preferencias en «{question}» están fragmentadas: ninguna opción supera el {topPct}%.",
		"En «{question}» el voto se reparte en muchas opciones; «{top}» apenas alcanza el {topPct}%.",
	},
}

var scenarioHints = map[model.Scenario][]string{
	model.ScenarioAbsoluteMajority: {
		"Sugerencia: con una preferencia tan marcada, conviene concentrar recursos en la opción ganadora.",
		"Sugerencia: la señal es inequívoca; cualquier plan debería partir de «{top}».",
	},
	model.ScenarioStrongLead: {
		"Sugerencia: consolidar la opción líder sin descuidar a los segmentos que eligieron otras.",
		"Sugerencia: el liderazgo de «{top}» es sólido, pero vale validar qué atrae a los demás grupos.",
	},
	model.ScenarioTightRace: {
		"Sugerencia: la diferencia entra en el margen de ruido; recabar más respuestas podría definir el empate.",
		"Sugerencia: considerar una estrategia mixta que cubra ambas opciones punteras.",
	},
	model.ScenarioFragmented: {
		"Sugerencia: no hay un consenso aprovechable; valdría segmentar antes de decidir.",
		"Sugerencia: la fragmentación invita a personalizar en lugar de apostar por una sola opción.",
	},
}

// Demographic questions get clinical, composition-only prose: they
// describe who answered, never grade the group.
var demographicTemplates = map[string][]string{
	"gender": {
		"Composición por género: {breakdown}.",
		"La muestra se distribuye por género así: {breakdown}.",
	},
	"location": {
		"Procedencia de los respondentes: {breakdown}.",
		"Distribución geográfica de la muestra: {breakdown}.",
	},
	"role": {
		"Perfil de los respondentes por cargo o área: {breakdown}.",
		"La muestra se compone, por rol, de: {breakdown}.",
	},
	"age": {
		"Distribución etaria de la muestra: {breakdown}.",
		"Los respondentes se agrupan por edad en: {breakdown}.",
	},
	"tenure": {
		"Antigüedad de los respondentes: {breakdown}.",
		"La muestra, por antigüedad, se reparte en: {breakdown}.",
	},
	"general": {
		"Composición de la muestra para esta variable: {breakdown}.",
		"Distribución de los respondentes: {breakdown}.",
	},
}

func fill(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func fmtScore(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}

// NumericNarrative renders the four-sentence paragraph for a numeric
// question: opening by mood, evidence with figures, consensus and an
// action tier.
func NumericNarrative(ctx *NarrativeContext, q *model.Question, stats *model.NumericStats) string {
	rng := questionRand(q.ID)
	vars := map[string]string{
		"question": q.Text,
		"avg":      fmtScore(stats.Average),
		"scaleMax": fmtScore(stats.ScaleMax),
		"count":    fmt.Sprintf("%d", stats.Count),
		"trailing": fmtScore(stats.TrailingAvg),
	}
	parts := []string{
		fill(ctx.pick(rng, "numeric", "opening", numericOpenings[stats.Mood]), vars),
		fill(ctx.pick(rng, "numeric", "evidence", numericEvidence[stats.Trend]), vars),
		ctx.pick(rng, "numeric", "consensus", consensusSentences[stats.Consensus]),
		ctx.pick(rng, "numeric", "recommendation", tierSentences[stats.Tier]),
	}
	if stats.Inverted {
		parts = append(parts[:1], append([]string{"En esta pregunta un valor bajo es mejor; el puntaje ya refleja esa lectura."}, parts[1:]...)...)
	}
	return strings.Join(parts, " ")
}

// CategoricalNarrative renders the paragraph for a choice question:
// the scenario reading, the literal top answers, and a strategy hint.
func CategoricalNarrative(ctx *NarrativeContext, q *model.Question, dist *model.Distribution) string {
	if dist == nil || len(dist.Items) == 0 {
		return fmt.Sprintf("«%s» no recibió respuestas en el periodo analizado.", q.Text)
	}
	rng := questionRand(q.ID)
	vars := map[string]string{
		"question": q.Text,
		"count":    fmt.Sprintf("%d", dist.Total),
		"top":      dist.Items[0].Label,
		"topPct":   fmtScore(dist.Items[0].Percentage),
	}
	if len(dist.Items) > 1 {
		vars["second"] = dist.Items[1].Label
		vars["secondPct"] = fmtScore(dist.Items[1].Percentage)
	} else {
		vars["second"] = dist.Items[0].Label
		vars["secondPct"] = vars["topPct"]
	}
	opening := fill(ctx.pick(rng, "categorical", "opening", scenarioOpenings[dist.Scenario]), vars)
	ranking := topRanking(dist.Items)
	hint := fill(ctx.pick(rng, "categorical", "hint", scenarioHints[dist.Scenario]), vars)
	return opening + " " + ranking + " " + hint
}

func topRanking(items []model.DistItem) string {
	n := len(items)
	if n > 3 {
		n = 3
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("«%s» (%s%%)", items[i].Label, fmtScore(items[i].Percentage)))
	}
	return "Principales respuestas: " + strings.Join(parts, ", ") + "."
}

// DemographicNarrative renders composition-only prose for a
// demographic question, keyed by the kind of attribute it captures.
func DemographicNarrative(ctx *NarrativeContext, q *model.Question, dist *model.Distribution) string {
	if dist == nil || len(dist.Items) == 0 {
		return fmt.Sprintf("No hay datos de composición para «%s».", q.Text)
	}
	rng := questionRand(q.ID)
	kind := DemographicContext(q.Text)
	templates := demographicTemplates[kind]
	if len(templates) == 0 {
		templates = demographicTemplates["general"]
	}
	n := len(dist.Items)
	if n > 4 {
		n = 4
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("%s %s%%", dist.Items[i].Label, fmtScore(dist.Items[i].Percentage)))
	}
	vars := map[string]string{"breakdown": strings.Join(parts, ", ")}
	return fill(ctx.pick(rng, "demographic", "composition", templates), vars)
}

// TextNarrative summarizes an open-text question from its mined terms.
func TextNarrative(q *model.Question, summary *model.TextSummary) string {
	if summary == nil || summary.Total == 0 {
		return fmt.Sprintf("«%s» no recibió comentarios en el periodo analizado.", q.Text)
	}
	if len(summary.Keywords) == 0 {
		return fmt.Sprintf("«%s» recibió %d comentarios, sin términos dominantes.", q.Text, summary.Total)
	}
	n := len(summary.Keywords)
	if n > 3 {
		n = 3
	}
	terms := make([]string, 0, n)
	for i := 0; i < n; i++ {
		terms = append(terms, fmt.Sprintf("«%s» (%d)", summary.Keywords[i].Label, summary.Keywords[i].Count))
	}
	return fmt.Sprintf("«%s» recibió %d comentarios. Términos más mencionados: %s.", q.Text, summary.Total, strings.Join(terms, ", "))
}
