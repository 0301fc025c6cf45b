package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	"UniPredict/pkg/cache"
	pkgch "UniPredict/pkg/clickhouse"
	"UniPredict/pkg/config"
)

var defaultCols = models.Columns{Program: "Program", Year: "Year", Cutoff: "Merit"}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource([]models.Row{
		{"Program": "BS Computer Science", "Year": "2021", "Merit": "84.2"},
		{"Program": "BS Software Engineering", "Year": "2021"},
	}, defaultCols)

	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "BS Computer Science", *recs[0].Program)
	assert.Equal(t, "2021", *recs[0].Year)
	assert.Equal(t, 84.2, *recs[0].Cutoff)
	assert.Nil(t, recs[1].Cutoff)
}

func TestFileSource_CSV(t *testing.T) {
	path := writeFile(t, "comsats.csv", "\ufeffProgram,Year,Merit\n"+
		"BS Computer Science,2023,82.5\n"+
		"BS Computer Science,2022,\n"+
		"BS Software Engineering,2023,n/a\n"+
		"BS Physics\n")

	recs, err := NewFileSource(path, "", defaultCols).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, 82.5, *recs[0].Cutoff)
	assert.Nil(t, recs[1].Cutoff)
	assert.Nil(t, recs[2].Cutoff)
	assert.Equal(t, "BS Physics", *recs[3].Program)
	assert.Nil(t, recs[3].Year)
}

func TestFileSource_MissingColumn(t *testing.T) {
	path := writeFile(t, "nust.csv", "Program,Closing (%)\nBSCS,78.1\n")

	recs, err := NewFileSource(path, "", defaultCols).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Cutoff)
	assert.Nil(t, recs[0].Year)
}

func TestFileSource_JSON(t *testing.T) {
	path := writeFile(t, "air.json", `[
		{"Program": "BS Cyber Security", "Year": 2023, "Merit": 80.95},
		{"Program": "BS Computer Science", "Year": "2023", "Merit": null}
	]`)

	recs, err := NewFileSource(path, "", defaultCols).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2023", *recs[0].Year)
	assert.Equal(t, 80.95, *recs[0].Cutoff)
	assert.Nil(t, recs[1].Cutoff)
}

func TestFileSource_JSONSchemaViolation(t *testing.T) {
	path := writeFile(t, "bad.json", `{"Program": "BS CS"}`)

	_, err := NewFileSource(path, "", defaultCols).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestFileSource_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Program", "Year", "Merit"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"BS Computer Science", "2023", 86.1}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"BS Computer Science", "2022", 85.4}))
	path := filepath.Join(t.TempDir(), "fast.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := NewFileSource(path, "", defaultCols).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2023", *recs[0].Year)
	assert.InDelta(t, 86.1, *recs[0].Cutoff, 1e-9)
	assert.InDelta(t, 85.4, *recs[1].Cutoff, 1e-9)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.csv"), "", defaultCols).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = NewFileSource("history.parquet", "", defaultCols).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	// Legacy BIFF workbooks are not readable by excelize.
	_, err = NewFileSource("ned_merit_list.xls", "", defaultCols).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestClickHouseSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT program, year, cutoff\s+FROM merit_history\s+WHERE university = \?\s+ORDER BY seq`).
		WithArgs("fast").
		WillReturnRows(sqlmock.NewRows([]string{"program", "year", "cutoff"}).
			AddRow("BS Computer Science", "2023", 82.5).
			AddRow("BS Software Engineering", nil, nil))

	src, err := NewClickHouseSource(pkgch.NewFromDB(db), "merit_history", "fast", nil)
	require.NoError(t, err)

	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2023", *recs[0].Year)
	assert.Equal(t, 82.5, *recs[0].Cutoff)
	assert.Nil(t, recs[1].Year)
	assert.Nil(t, recs[1].Cutoff)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseSource_KeepsSheetOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No year column: the series is indexed by position, so order is part of the result.
	mock.ExpectQuery(`ORDER BY seq`).
		WithArgs("nust").
		WillReturnRows(sqlmock.NewRows([]string{"program", "year", "cutoff"}).
			AddRow("Computer Science", nil, 80.0).
			AddRow("Computer Science", nil, 90.0))

	src, err := NewClickHouseSource(pkgch.NewFromDB(db), "merit_history", "nust", nil)
	require.NoError(t, err)

	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 80.0, *recs[0].Cutoff)
	assert.Equal(t, 90.0, *recs[1].Cutoff)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT program`).WillReturnError(errors.New("connection refused"))

	src, err := NewClickHouseSource(pkgch.NewFromDB(db), "merit_history", "nust", nil)
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}

func TestClickHouseSource_RejectsTableName(t *testing.T) {
	_, err := NewClickHouseSource(pkgch.NewFromDB(nil), "merit; DROP TABLE x", "fast", nil)
	assert.Error(t, err)
}

func TestMeritHistorySchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ddl := MeritHistorySchema("unipredict.merit_history")
	require.Len(t, ddl, 1)
	assert.Contains(t, ddl[0], "seq        UInt32")
	assert.Contains(t, ddl[0], "ORDER BY (university, seq)")

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS unipredict.merit_history`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, pkgch.NewFromDB(db).InitSchema(context.Background(), ddl))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comsats.csv"), []byte("Program,Year,Merit\nBS CS,2023,80\n"), 0o644))

	profiles := []models.UniversityProfile{
		{ID: "comsats", History: models.HistoryRef{Kind: models.HistoryFile, Path: "comsats.csv", Columns: defaultCols}},
		{ID: "iiui", History: models.HistoryRef{Kind: models.HistoryInline, Columns: defaultCols,
			Rows: []models.Row{{"Program": "BS CS", "Year": "2021", "Merit": "84.2"}}}},
		{ID: "ckh", History: models.HistoryRef{Kind: models.HistoryClickHouse, Columns: defaultCols}},
		{ID: "lums"},
	}
	reg, err := NewHistoryRegistry(profiles, WithDataDir(dir))
	require.NoError(t, err)

	src, err := reg.Get("comsats")
	require.NoError(t, err)
	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	src, err = reg.Get("iiui")
	require.NoError(t, err)
	assert.IsType(t, &StaticSource{}, src)

	_, err = reg.Get("lums")
	assert.ErrorIs(t, err, domrepo.ErrNoHistory)

	// ClickHouse disabled degrades to no history.
	_, err = reg.Get("ckh")
	assert.ErrorIs(t, err, domrepo.ErrNoHistory)

	_, err = reg.Get("harvard")
	assert.ErrorIs(t, err, domrepo.ErrUnknownUniversity)
}

func TestProfilesFromConfig(t *testing.T) {
	unis := []config.UniversityConfig{
		{
			ID:           "iiui",
			Name:         "International Islamic University Islamabad",
			Weights:      map[string]float64{"matric": 0.4, "fsc": 0.6},
			Totals:       map[string]float64{"matric": 1100, "fsc": 1100},
			RequiredTest: "",
			History: &config.HistoryConfig{
				Type:          "inline",
				ProgramColumn: "Discipline",
				YearColumn:    "Year",
				CutoffColumn:  "Aggregate",
				Rows: []map[string]interface{}{
					{"Discipline": "BS Computer Science", "Year": 2021, "Aggregate": 84.2},
					{"Discipline": "BS Physics", "Year": 2021, "Aggregate": nil},
				},
			},
		},
		{ID: "lums", RequiredTest: "SAT"},
	}

	got := ProfilesFromConfig(unis)
	require.Len(t, got, 2)

	iiui := got[0]
	assert.Equal(t, "iiui", iiui.ID)
	assert.Equal(t, 0.6, iiui.Weights[models.ComponentFSc])
	assert.Equal(t, models.TestNone, iiui.RequiredTest)
	assert.Equal(t, models.HistoryInline, iiui.History.Kind)
	assert.Equal(t, "Discipline", iiui.History.Columns.Program)
	assert.Equal(t, models.Row{"Discipline": "BS Computer Science", "Year": "2021", "Aggregate": "84.2"}, iiui.History.Rows[0])
	_, hasCutoff := iiui.History.Rows[1]["Aggregate"]
	assert.False(t, hasCutoff)

	lums := got[1]
	assert.Equal(t, "lums", lums.DisplayName)
	assert.Equal(t, models.TestSAT, lums.RequiredTest)
	assert.False(t, lums.HasHistory())
}

func TestSourcesFromConfig(t *testing.T) {
	got := SourcesFromConfig([]config.SourceConfig{
		{ID: "nust_scholarship", URL: "https://nust.edu.pk/admissions/scholarships/", Kind: "scholarship_section", Title: "NUST Scholarships"},
		{ID: "air_fee", Name: "Air University", URL: "https://au.edu.pk/fee", Kind: "fee_sections", SectionTitles: []string{"Undergraduate"}},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "nust_scholarship", got[0].Name)
	assert.Equal(t, models.KindScholarshipSection, got[0].Kind)
	assert.Equal(t, "NUST Scholarships", got[0].Title)
	assert.Equal(t, models.KindFeeSections, got[1].Kind)
	assert.Equal(t, []string{"Undergraduate"}, got[1].SectionTitles)
}

func TestCacheContentStore(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewCacheContentStore(mem, time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "fast_fee")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	snap := &models.ContentSnapshot{
		SourceID:    "fast_fee",
		Source:      "FAST University",
		Kind:        models.KindFeeTables,
		Content:     models.Content{Rows: []map[string]string{{"Program": "BSCS", "Fee": "180,000"}}},
		LastUpdated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, snap))

	got, err := store.Get(ctx, "fast_fee")
	require.NoError(t, err)
	assert.Equal(t, snap.Content, got.Content)
	assert.True(t, snap.LastUpdated.Equal(got.LastUpdated))
}

type recordingPublisher struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	r.topic, r.key, r.value = topic, key, value
	return nil
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func TestKafkaSnapshotPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewKafkaSnapshotPublisher(rec, "unipredict.content.snapshots")
	snap := &models.ContentSnapshot{SourceID: "ned_events"}

	require.NoError(t, pub.PublishSnapshot(context.Background(), snap))
	assert.Equal(t, "unipredict.content.snapshots", rec.topic)
	assert.Equal(t, []byte("ned_events"), rec.key)
	assert.Same(t, snap, rec.value)

	require.NoError(t, pub.Close())
	assert.True(t, rec.closed)
}
