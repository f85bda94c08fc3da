package repository

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"byteneko/internal/model"
)

// ErrUnsupportedFilter means the response filter cannot be compiled to a
// store query. Callers must fail closed to an empty result, never guess.
var ErrUnsupportedFilter = errors.New("repository: filter cannot be translated")

// NumericAggregate is the batched aggregation result for one numeric question
type NumericAggregate struct {
	Count        int
	Average      float64
	Max          float64
	StdDev       float64
	Distribution []ValueCount
	Recent       []float64 // Most recent values by submission time, capped
}

// ValueCount is one raw value with its occurrence count
type ValueCount struct {
	Value string
	Count int
}

// ResponseStore issues read-only aggregation over an opaque response filter.
// The three per-type passes each run as a single pipeline regardless of how
// many questions they cover.
type ResponseStore interface {
	Create(ctx context.Context, response *model.SurveyResponse) error
	CountAndLastID(ctx context.Context, f *model.ResponseFilter) (int, string, error)
	AggregateNumeric(ctx context.Context, f *model.ResponseFilter, questionIDs []string, window int) (map[string]*NumericAggregate, error)
	AggregateCategorical(ctx context.Context, f *model.ResponseFilter, questionIDs []string) (map[string][]ValueCount, error)
	SampleTexts(ctx context.Context, f *model.ResponseFilter, questionIDs []string, limit int) (map[string][]string, error)
	TextValuesForQuestion(ctx context.Context, f *model.ResponseFilter, questionID string) ([]string, error)
	SubmissionTimes(ctx context.Context, f *model.ResponseFilter) ([]time.Time, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) ResponseStore {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepo) Create(ctx context.Context, response *model.SurveyResponse) error {
	if response.ID == "" {
		response.ID = primitive.NewObjectID().Hex()
	}
	if response.SubmittedAt.IsZero() {
		response.SubmittedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, response)
	return err
}

// compileFilter translates the typed filter into a match document.
func compileFilter(f *model.ResponseFilter) (bson.M, error) {
	if f == nil || f.SurveyID == "" {
		return nil, ErrUnsupportedFilter
	}
	match := bson.M{"surveyId": f.SurveyID}

	if f.Start != nil || f.End != nil {
		rng := bson.M{}
		if f.Start != nil {
			rng["$gte"] = *f.Start
		}
		if f.End != nil {
			rng["$lte"] = *f.End
		}
		match["submittedAt"] = rng
	}

	if f.SegmentQuestionID != "" {
		if f.SegmentValue == "" {
			return nil, ErrUnsupportedFilter
		}
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.SegmentValue), Options: "i"}
		match["answers"] = bson.M{"$elemMatch": bson.M{
			"questionId": f.SegmentQuestionID,
			"$or": bson.A{
				bson.M{"optionText": pattern},
				bson.M{"textValue": pattern},
			},
		}}
	}
	return match, nil
}

// CountAndLastID returns the filtered response count and the highest
// response id. ObjectID hex sorts in creation order, so max(_id) works as
// a data-version marker for the cache fingerprint.
func (r *responseRepo) CountAndLastID(ctx context.Context, f *model.ResponseFilter) (int, string, error) {
	match, err := compileFilter(f)
	if err != nil {
		return 0, "", err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"total":  bson.M{"$sum": 1},
			"lastId": bson.M{"$max": "$_id"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, "", err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total  int    `bson:"total"`
		LastID string `bson:"lastId"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, "", err
	}
	if len(rows) == 0 {
		return 0, "", nil
	}
	return rows[0].Total, rows[0].LastID, nil
}

// AggregateNumeric runs the numeric pass for every given question in one
// pipeline: per-question count/avg/max/stddev, a per-value distribution,
// and the trailing window of the most recent values by recency.
func (r *responseRepo) AggregateNumeric(ctx context.Context, f *model.ResponseFilter, questionIDs []string, window int) (map[string]*NumericAggregate, error) {
	out := make(map[string]*NumericAggregate)
	if len(questionIDs) == 0 {
		return out, nil
	}
	match, err := compileFilter(f)
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		window = 50
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$unwind", Value: "$answers"}},
		bson.D{{Key: "$match", Value: bson.M{
			"answers.questionId":   bson.M{"$in": questionIDs},
			"answers.numericValue": bson.M{"$ne": nil},
		}}},
		bson.D{{Key: "$facet", Value: bson.M{
			"stats": bson.A{
				bson.M{"$group": bson.M{
					"_id":    "$answers.questionId",
					"count":  bson.M{"$sum": 1},
					"avg":    bson.M{"$avg": "$answers.numericValue"},
					"max":    bson.M{"$max": "$answers.numericValue"},
					"stddev": bson.M{"$stdDevPop": "$answers.numericValue"},
				}},
			},
			"dist": bson.A{
				bson.M{"$group": bson.M{
					"_id": bson.M{
						"questionId": "$answers.questionId",
						"value":      "$answers.numericValue",
					},
					"count": bson.M{"$sum": 1},
				}},
				bson.M{"$sort": bson.D{{Key: "_id.value", Value: 1}}},
			},
			"recent": bson.A{
				bson.M{"$sort": bson.D{{Key: "submittedAt", Value: -1}, {Key: "_id", Value: -1}}},
				bson.M{"$group": bson.M{
					"_id":    "$answers.questionId",
					"values": bson.M{"$push": "$answers.numericValue"},
				}},
				bson.M{"$project": bson.M{
					"values": bson.M{"$slice": bson.A{"$values", window}},
				}},
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Stats []struct {
			QuestionID string  `bson:"_id"`
			Count      int     `bson:"count"`
			Avg        float64 `bson:"avg"`
			Max        float64 `bson:"max"`
			StdDev     float64 `bson:"stddev"`
		} `bson:"stats"`
		Dist []struct {
			ID struct {
				QuestionID string  `bson:"questionId"`
				Value      float64 `bson:"value"`
			} `bson:"_id"`
			Count int `bson:"count"`
		} `bson:"dist"`
		Recent []struct {
			QuestionID string    `bson:"_id"`
			Values     []float64 `bson:"values"`
		} `bson:"recent"`
	}
	if err = cursor.All(ctx, &facets); err != nil {
		return nil, err
	}
	if len(facets) == 0 {
		return out, nil
	}

	for _, s := range facets[0].Stats {
		out[s.QuestionID] = &NumericAggregate{
			Count:   s.Count,
			Average: s.Avg,
			Max:     s.Max,
			StdDev:  s.StdDev,
		}
	}
	for _, d := range facets[0].Dist {
		agg := out[d.ID.QuestionID]
		if agg == nil {
			continue
		}
		agg.Distribution = append(agg.Distribution, ValueCount{
			Value: formatNumericLabel(d.ID.Value),
			Count: d.Count,
		})
	}
	for _, rec := range facets[0].Recent {
		if agg := out[rec.QuestionID]; agg != nil {
			agg.Recent = rec.Values
		}
	}
	return out, nil
}

// AggregateCategorical tallies raw answer labels per choice question. The
// label is the selected option text, falling back to the free text value
// for imported surveys; multi-select splitting happens in the service.
func (r *responseRepo) AggregateCategorical(ctx context.Context, f *model.ResponseFilter, questionIDs []string) (map[string][]ValueCount, error) {
	out := make(map[string][]ValueCount)
	if len(questionIDs) == 0 {
		return out, nil
	}
	match, err := compileFilter(f)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$unwind", Value: "$answers"}},
		bson.D{{Key: "$match", Value: bson.M{
			"answers.questionId": bson.M{"$in": questionIDs},
			"$or": bson.A{
				bson.M{"answers.optionText": bson.M{"$nin": bson.A{nil, ""}}},
				bson.M{"answers.textValue": bson.M{"$nin": bson.A{nil, ""}}},
			},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"questionId": "$answers.questionId",
			"label": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{"$answers.optionText", bson.A{nil, ""}}},
				"$answers.textValue",
				"$answers.optionText",
			}},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"questionId": "$questionId", "label": "$label"},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id.label", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			QuestionID string `bson:"questionId"`
			Label      string `bson:"label"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID.QuestionID] = append(out[row.ID.QuestionID], ValueCount{
			Value: row.ID.Label,
			Count: row.Count,
		})
	}
	return out, nil
}

// SampleTexts returns a capped sample of non-blank open-text values per
// question, newest first, in one pipeline.
func (r *responseRepo) SampleTexts(ctx context.Context, f *model.ResponseFilter, questionIDs []string, limit int) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(questionIDs) == 0 {
		return out, nil
	}
	match, err := compileFilter(f)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 150
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$unwind", Value: "$answers"}},
		bson.D{{Key: "$match", Value: bson.M{
			"answers.questionId": bson.M{"$in": questionIDs},
			"answers.textValue":  bson.M{"$nin": bson.A{nil, ""}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "submittedAt", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    "$answers.questionId",
			"values": bson.M{"$push": "$answers.textValue"},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"values": bson.M{"$slice": bson.A{"$values", limit}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		QuestionID string   `bson:"_id"`
		Values     []string `bson:"values"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.QuestionID] = row.Values
	}
	return out, nil
}

// TextValuesForQuestion returns every non-blank raw value of one question,
// used by the timeline to parse date content.
func (r *responseRepo) TextValuesForQuestion(ctx context.Context, f *model.ResponseFilter, questionID string) ([]string, error) {
	match, err := compileFilter(f)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$unwind", Value: "$answers"}},
		bson.D{{Key: "$match", Value: bson.M{
			"answers.questionId": questionID,
			"answers.textValue":  bson.M{"$nin": bson.A{nil, ""}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"value": "$answers.textValue"}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Value string `bson:"value"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Value)
	}
	return values, nil
}

func (r *responseRepo) SubmissionTimes(ctx context.Context, f *model.ResponseFilter) ([]time.Time, error) {
	match, err := compileFilter(f)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetProjection(bson.M{"submittedAt": 1})
	cursor, err := r.collection.Find(ctx, match, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		SubmittedAt time.Time `bson:"submittedAt"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		times = append(times, row.SubmittedAt)
	}
	return times, nil
}

func formatNumericLabel(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
