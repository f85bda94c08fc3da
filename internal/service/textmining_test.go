package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMineTextTopKeyword(t *testing.T) {
	values := []string{
		"El servicio fue excelente",
		"Servicio lento pero amable",
		"Me encantó el servicio",
	}
	keywords, _ := MineText(values, 10, 5)
	require.NotEmpty(t, keywords)
	assert.Equal(t, "servicio", keywords[0].Label)
	assert.Equal(t, 3, keywords[0].Count)
}

func TestMineTextDropsShortAndStopWords(t *testing.T) {
	keywords, _ := MineText([]string{"pero esto fue muy bueno para todos"}, 10, 5)
	for _, k := range keywords {
		assert.NotContains(t, []string{"pero", "esto", "para", "todos", "fue", "muy"}, k.Label)
	}
}

func TestMineTextBigrams(t *testing.T) {
	values := []string{
		"atención excelente del personal",
		"atención excelente en recepción",
	}
	_, bigrams := MineText(values, 10, 5)
	require.NotEmpty(t, bigrams)
	assert.Equal(t, "atencion excelente", bigrams[0].Label)
	assert.Equal(t, 2, bigrams[0].Count)
}

func TestSummarizeText(t *testing.T) {
	values := []string{"primer comentario útil", "  ", "segundo comentario útil", ""}
	sum := SummarizeText(values, 1)
	assert.Equal(t, 2, sum.Total)
	assert.Len(t, sum.Samples, 1)
	require.NotEmpty(t, sum.Keywords)
	assert.Equal(t, "comentario", sum.Keywords[0].Label)
}

func TestSummarizeTextEmpty(t *testing.T) {
	sum := SummarizeText(nil, 10)
	assert.Equal(t, 0, sum.Total)
	assert.Empty(t, sum.Keywords)
	assert.Empty(t, sum.Samples)
}
