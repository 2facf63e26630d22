package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/importer"
	"github.com/pageza/pantrychef/backend/internal/model"
	"github.com/pageza/pantrychef/backend/internal/service"
	"github.com/pageza/pantrychef/backend/internal/testhelpers"
)

const header = "title,ingredients,directions,link,source,NER,site\n"

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "json", raw: `["1 c. sugar", "2 eggs"]`, want: []string{"1 c. sugar", "2 eggs"}},
		{name: "python quotes", raw: `['sugar', 'eggs']`, want: []string{"sugar", "eggs"}},
		{name: "mixed quotes", raw: `["baker's chocolate", 'milk']`, want: []string{"baker's chocolate", "milk"}},
		{name: "escaped quote", raw: `['baker\'s chocolate']`, want: []string{"baker's chocolate"}},
		{name: "trailing comma", raw: `['salt', ]`, want: []string{"salt"}},
		{name: "empty list", raw: `[]`, want: []string{}},
		{name: "empty cell", raw: "  ", want: []string{}},
		{name: "not a list", raw: "sugar, eggs", wantErr: true},
		{name: "unterminated", raw: `['sugar]`, wantErr: true},
		{name: "bare word", raw: `[sugar]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.ParseList(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImport(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	imp := importer.New(db, 2, zap.NewNop())

	csv := header +
		`Pancakes,"['1 c. flour', '1 egg']","['Mix.', 'Fry.']",example.com/p,Gathered,"['flour', 'egg']",example.com` + "\n" +
		`Broken,"['flour'","['Mix.']",example.com/b,Gathered,"['flour']",example.com` + "\n" +
		`Omelette,"[""2 eggs""]","[""Whisk.""]",example.com/o,Gathered,"[""egg""]",example.com` + "\n" +
		`Toast,"['bread']","['Toast it.']",example.com/t,Gathered,"['bread']",example.com` + "\n"

	res, err := imp.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Imported: 3, Failed: 1}, res)

	var recipes []model.Recipe
	require.NoError(t, db.Order("title").Find(&recipes).Error)
	require.Len(t, recipes, 3)
	assert.Equal(t, "Omelette", recipes[0].Title)
	assert.Equal(t, []string{"egg"}, []string(recipes[0].NER))
	assert.Equal(t, "Pancakes", recipes[1].Title)
	assert.Equal(t, []string{"Mix.", "Fry."}, []string(recipes[1].Directions))
	assert.Equal(t, "example.com/p", recipes[1].Link)
}

func TestImportTruncatesTitle(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	imp := importer.New(db, 0, zap.NewNop())

	long := strings.Repeat("é", 300)
	csv := header + long + `,[],[],,,"['salt']",` + "\n"

	res, err := imp.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	var recipe model.Recipe
	require.NoError(t, db.First(&recipe).Error)
	assert.Equal(t, strings.Repeat("é", 255), recipe.Title)
}

func TestImportMissingColumn(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	imp := importer.New(db, 0, zap.NewNop())

	_, err := imp.Import(context.Background(), strings.NewReader("title,ingredients\nx,[]\n"))
	assert.ErrorIs(t, err, importer.ErrMissingColumn)
}

func TestImportFile(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	imp := importer.New(db, 10, zap.NewNop())

	path := filepath.Join(t.TempDir(), "recipes.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+`Salad,"['lettuce']","['Toss.']",,,"['lettuce']",`+"\n"), 0o600))

	res, err := imp.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	_, err = imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSeedUsers(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)

	res, err := importer.SeedUsers(context.Background(), auth, 2, "demo-password", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Imported: 2}, res)

	res, err = importer.SeedUsers(context.Background(), auth, 3, "demo-password", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Imported: 1, Failed: 2}, res)

	_, err = auth.Login(context.Background(), "demo3", "demo-password")
	assert.NoError(t, err)
}
