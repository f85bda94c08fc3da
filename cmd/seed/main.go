package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"byteneko/internal/config"
	"byteneko/internal/model"
	"byteneko/internal/repository"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	surveys := repository.NewSurveyRepo(db)
	questions := repository.NewQuestionRepo(db)
	responses := repository.NewResponseRepo(db)

	survey := &model.Survey{
		Title:       "Satisfacción de Huéspedes",
		Description: "Encuesta post-estadía del hotel demo",
		Status:      "active",
	}
	if err := surveys.Create(ctx, survey); err != nil {
		log.Fatalf("Failed to create survey: %v", err)
	}

	defs := []*model.Question{
		{Text: "¿Qué tan satisfecho está con su estadía?", Type: model.QuestionTypeScale, ScaleMax: 10},
		{Text: "¿Qué tan probable es que recomiende el hotel?", Type: model.QuestionTypeScale, ScaleMax: 10},
		{Text: "Tiempo de espera en el check-in (minutos)", Type: model.QuestionTypeNumber},
		{Text: "¿Cómo conoció el hotel?", Type: model.QuestionTypeSingle, Options: []string{"Recomendación", "Redes sociales", "Agencia", "Publicidad"}},
		{Text: "¿Qué servicios utilizó?", Type: model.QuestionTypeMulti, Options: []string{"Piscina", "Restaurante", "Spa", "Gimnasio"}},
		{Text: "Ciudad de residencia", Type: model.QuestionTypeText, IsDemographic: true},
		{Text: "Comentarios sobre el servicio", Type: model.QuestionTypeText},
		{Text: "Nombre del huésped", Type: model.QuestionTypeText},
	}
	for i, q := range defs {
		q.SurveyID = survey.ID
		q.Order = i
		if err := questions.Create(ctx, q); err != nil {
			log.Fatalf("Failed to create question: %v", err)
		}
	}

	cities := []string{"Bogotá", "Medellín", "Lima", "Quito", "Ciudad de México"}
	channels := []string{"Recomendación", "Redes sociales", "Agencia", "Publicidad"}
	services := []string{"Piscina", "Restaurante", "Piscina, Restaurante", "Spa, Gimnasio", "Restaurante, Spa"}
	comments := []string{
		"El servicio fue excelente, el personal muy atento",
		"Buen servicio aunque el check-in fue lento",
		"Me encantó el desayuno y la atención del personal",
		"La habitación estaba limpia pero el servicio de la piscina puede mejorar",
		"Todo perfecto, volvería sin dudarlo",
	}

	rng := rand.New(rand.NewSource(42))
	base := time.Now().AddDate(0, 0, -30)
	for i := 0; i < 120; i++ {
		sat := float64(6 + rng.Intn(5))
		rec := float64(5 + rng.Intn(6))
		wait := float64(5 + rng.Intn(25))
		resp := &model.SurveyResponse{
			SurveyID:    survey.ID,
			SubmittedAt: base.Add(time.Duration(i) * 6 * time.Hour),
			Answers: []model.AnswerValue{
				{QuestionID: defs[0].ID, NumericValue: &sat},
				{QuestionID: defs[1].ID, NumericValue: &rec},
				{QuestionID: defs[2].ID, NumericValue: &wait},
				{QuestionID: defs[3].ID, OptionText: channels[rng.Intn(len(channels))]},
				{QuestionID: defs[4].ID, OptionText: services[rng.Intn(len(services))]},
				{QuestionID: defs[5].ID, TextValue: cities[rng.Intn(len(cities))]},
				{QuestionID: defs[6].ID, TextValue: comments[rng.Intn(len(comments))]},
				{QuestionID: defs[7].ID, TextValue: fmt.Sprintf("Huésped %03d", i)},
			},
		}
		if err := responses.Create(ctx, resp); err != nil {
			log.Fatalf("Failed to create response: %v", err)
		}
	}

	fmt.Printf("Seeded survey %s with %d questions and 120 responses\n", survey.ID, len(defs))
}
