package service

import (
	"byteneko/internal/model"
)

// ChartRenderer turns labelled counts into an inline image. Rendering
// is best-effort: a failed chart never fails the report.
type ChartRenderer interface {
	RenderBar(labels []string, data []int) ([]byte, error)
	RenderLine(labels []string, data []int) ([]byte, error)
}

// NoopChartRenderer keeps the chart payload data-only, for deployments
// where the frontend draws its own charts.
type NoopChartRenderer struct{}

func (NoopChartRenderer) RenderBar(labels []string, data []int) ([]byte, error)  { return nil, nil }
func (NoopChartRenderer) RenderLine(labels []string, data []int) ([]byte, error) { return nil, nil }

// BuildChart assembles the payload for a distribution, attaching an
// image when the renderer produces one.
func BuildChart(r ChartRenderer, items []model.DistItem) *model.ChartPayload {
	if len(items) == 0 {
		return nil
	}
	payload := &model.ChartPayload{}
	for _, it := range items {
		payload.Labels = append(payload.Labels, it.Label)
		payload.Data = append(payload.Data, it.Count)
	}
	if r != nil {
		if img, err := r.RenderBar(payload.Labels, payload.Data); err == nil {
			payload.Image = img
		}
	}
	return payload
}
