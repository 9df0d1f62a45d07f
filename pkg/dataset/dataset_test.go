package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zpam/nbspam/pkg/learning"
	"github.com/zpam/nbspam/pkg/textproc"
)

func TestReadCSVSpanishHeader(t *testing.T) {
	input := `id,mensaje,etiqueta
1,Gana dinero rápido,spam
2,"Reunión mañana, sala 3",HAM
3,mensaje sin etiqueta válida,quizas
4,  Oferta exclusiva  , Spam
`
	records, err := ReadCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{ID: "1", Message: "Gana dinero rápido", Label: learning.Spam}, records[0])
	assert.Equal(t, "Reunión mañana, sala 3", records[1].Message)
	assert.Equal(t, learning.Ham, records[1].Label)
	assert.Equal(t, "4", records[2].ID)
	assert.Equal(t, "Oferta exclusiva", records[2].Message)
	assert.Equal(t, learning.Spam, records[2].Label)
}

func TestReadCSVEnglishHeaderWithoutID(t *testing.T) {
	input := "label,message\nham,see you tomorrow\nspam,free prize\n"

	records, err := ReadCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "see you tomorrow", records[0].Message)
	assert.Equal(t, learning.Spam, records[1].Label)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing label column", "id,mensaje\n1,hola\n"},
		{"missing message column", "id,etiqueta\n1,spam\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), nil)
			require.ErrorIs(t, err, learning.ErrInvalidArgument)
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteThenRead(t *testing.T) {
	records := []Record{
		{ID: "1", Message: "Premio, garantizado", Label: learning.Spam},
		{ID: "2", Message: `Informe "final" listo`, Label: learning.Ham},
	}

	path := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, SaveCSV(path, records))

	loaded, err := LoadCSV(path, nil)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records[:1]))
	assert.True(t, strings.HasPrefix(buf.String(), "id,mensaje,etiqueta\n"))
}

func TestSplit(t *testing.T) {
	var records []Record
	for i := 0; i < 10; i++ {
		records = append(records, Record{ID: string(rune('a' + i)), Label: learning.Ham})
	}

	train, test, err := Split(records, 0.8, 42)
	require.NoError(t, err)
	assert.Len(t, train, 8)
	assert.Len(t, test, 2)
	assert.ElementsMatch(t, records, append(append([]Record{}, train...), test...))

	again, _, err := Split(records, 0.8, 42)
	require.NoError(t, err)
	assert.Equal(t, train, again, "same seed gives the same split")

	assert.Equal(t, "a", records[0].ID, "input is not reordered")

	odd, rest, err := Split(records[:3], 0.5, 1)
	require.NoError(t, err)
	assert.Len(t, odd, 1)
	assert.Len(t, rest, 2)
}

func TestSplitRejectsBadRatio(t *testing.T) {
	for _, ratio := range []float64{0, 1, -0.2, 1.5} {
		_, _, err := Split([]Record{{}}, ratio, 1)
		require.ErrorIs(t, err, learning.ErrInvalidArgument)
	}
}

func TestMessagesAndLabels(t *testing.T) {
	records := []Record{
		{Message: "uno", Label: learning.Spam},
		{Message: "dos", Label: learning.Ham},
	}
	assert.Equal(t, []string{"uno", "dos"}, Messages(records))
	assert.Equal(t, []learning.Label{learning.Spam, learning.Ham}, Labels(records))
}

func TestExamples(t *testing.T) {
	records := []Record{
		{Message: "¡Gana DINERO gratis!", Label: learning.Spam},
		{Message: "La reunión de mañana", Label: learning.Ham},
	}

	examples := Examples(records, textproc.Default())
	require.Len(t, examples, 2)
	assert.Equal(t, learning.Example{Tokens: []string{"gana", "dinero", "gratis"}, Label: learning.Spam}, examples[0])
	assert.Equal(t, learning.Example{Tokens: []string{"reunión", "mañana"}, Label: learning.Ham}, examples[1])
}

func TestGenerate(t *testing.T) {
	records := NewGenerator(7).Generate(101)
	require.Len(t, records, 101)

	spam := 0
	ids := map[string]bool{}
	for _, r := range records {
		require.True(t, r.Label.Valid())
		require.NotEmpty(t, r.Message)
		ids[r.ID] = true
		if r.Label == learning.Spam {
			spam++
		}
	}
	assert.Equal(t, 50, spam)
	assert.Len(t, ids, 101)

	assert.Equal(t, records, NewGenerator(7).Generate(101))
	assert.Empty(t, NewGenerator(7).Generate(0))
}

func TestVariations(t *testing.T) {
	g := NewGenerator(3)
	base := "La reunión de equipo será el viernes"

	vs := g.Variations(base, 4)
	require.Len(t, vs, 4)
	assert.Equal(t, base, vs[0])

	baseWords := len(strings.Fields(base))
	for _, v := range vs[1:] {
		n := len(strings.Fields(v))
		// a leading word adds one, a multi-word synonym can add one more
		assert.GreaterOrEqual(t, n, baseWords)
		assert.LessOrEqual(t, n, baseWords+3)
	}

	assert.Equal(t, []string{base}, g.Variations(base, 1))
}

func TestGeneratedDatasetRoundTrips(t *testing.T) {
	records := NewGenerator(42).Generate(40)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	loaded, err := ReadCSV(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}
