package catalogue

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnClass(t *testing.T) {
	tests := []struct {
		name   string
		column Column
		want   string
	}{
		{
			name:   "free text wins over everything",
			column: Column{FreeText: true, Identifiable: true, ClientID: true},
			want:   "free-text",
		},
		{
			name:   "identifiable wins over client id",
			column: Column{Identifiable: true, ClientID: true},
			want:   "sensitive",
		},
		{
			name:   "client id",
			column: Column{ClientID: true, DateTime: true},
			want:   "client-id",
		},
		{
			name:   "date time before date",
			column: Column{DateTime: true, Date: true},
			want:   "date-time",
		},
		{
			name:   "date",
			column: Column{Date: true},
			want:   "date",
		},
		{
			name:   "no flags",
			column: Column{},
			want:   "n/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.column.Class())
		})
	}
}

func TestClassificationLabel(t *testing.T) {
	assert.Equal(t, "Data table", ClassificationDataTable.Label())
	assert.Equal(t, "Code list", ClassificationCodeList.Label())
	assert.Equal(t, "Code list with identifiables", ClassificationIdentifiableCodeList.Label())
	assert.Equal(t, "Not imported", ClassificationNotImported.Label())
	assert.Equal(t, "n/a", Classification("bogus").Label())
}

func TestTableLookups(t *testing.T) {
	table := Table{
		Name: "dbo.Patients",
		Columns: []Column{
			{Name: "mrn", Identifiable: true},
			{Name: "dob"},
			{Name: "ward"},
		},
	}

	col, ok := table.Column("dob")
	require.True(t, ok)
	assert.Equal(t, "dob", col.Name)

	_, ok = table.Column("missing")
	assert.False(t, ok)

	assert.Equal(t, "Patients", table.ShortName())
	assert.Equal(t, []string{"dob", "ward"}, table.SelectableColumns())
}

func TestCatalogueSearch(t *testing.T) {
	cat := New([]Table{
		{
			Name: "dbo.Patients",
			Columns: []Column{
				{Name: "dob", Description: "Date of birth"},
			},
		},
		{
			Name: "dbo.Admissions",
			Columns: []Column{
				{Name: "admitted_on", Description: "Admission timestamp"},
			},
		},
	})

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"dbo.Patients", "dbo.Admissions"}},
		{query: "patien", want: []string{"dbo.Patients"}},
		{query: "ADMITTED", want: []string{"dbo.Admissions"}},
		{query: "birth", want: []string{"dbo.Patients"}},
		{query: "nothing-matches", want: nil},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			got := cat.Search(tt.query)
			names := make([]string, 0, got.Len())
			for _, table := range got.Tables {
				names = append(names, table.Name)
			}
			if tt.want == nil {
				assert.Empty(t, names)
				return
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestCatalogueJSONDecode(t *testing.T) {
	data := []byte(`{
		"dbo.Patients": {
			"table_description": "Patient master records",
			"number_of_rows": 120543,
			"primary_keys": ["mrn"],
			"table_classification": "data-table",
			"columns": {
				"ward": {"description": "Current ward", "data_type": "varchar", "is_nullable": true},
				"mrn": {"description": "Medical record number", "data_type": "varchar", "is_identifiable": true, "is_client_id": true},
				"dob": {"description": "Date of birth", "data_type": "date", "is_date": true}
			}
		},
		"dbo.Admissions": {
			"table_description": "Hospital admissions",
			"number_of_rows": 89012,
			"primary_keys": ["admission_id"],
			"table_classification": "data-table",
			"columns": {
				"admission_id": {"description": "Admission identifier", "data_type": "int"}
			}
		}
	}`)

	var cat Catalogue
	require.NoError(t, json.Unmarshal(data, &cat))
	require.Equal(t, 2, cat.Len())

	// Tables and columns come out name-sorted regardless of JSON order.
	assert.Equal(t, "dbo.Admissions", cat.Tables[0].Name)
	assert.Equal(t, "dbo.Patients", cat.Tables[1].Name)

	patients, ok := cat.Table("dbo.Patients")
	require.True(t, ok)
	assert.Equal(t, int64(120543), patients.NumberOfRows)
	assert.Equal(t, []string{"mrn"}, patients.PrimaryKeys)
	assert.Equal(t, ClassificationDataTable, patients.Classification)

	names := make([]string, 0, len(patients.Columns))
	for _, col := range patients.Columns {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"dob", "mrn", "ward"}, names)

	mrn, ok := patients.Column("mrn")
	require.True(t, ok)
	assert.True(t, mrn.Identifiable)
	assert.True(t, mrn.ClientID)
	assert.Equal(t, "Medical record number", mrn.Description)
}

func TestCatalogueJSONRoundTrip(t *testing.T) {
	original := New([]Table{
		{
			Name:           "dbo.Patients",
			Description:    "Patient master records",
			NumberOfRows:   42,
			PrimaryKeys:    []string{"mrn"},
			Classification: ClassificationDataTable,
			Columns: []Column{
				{Name: "dob", Description: "Date of birth", DataType: "date", Date: true},
				{Name: "mrn", Description: "Medical record number", DataType: "varchar", Identifiable: true},
			},
		},
	})

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Catalogue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.Tables, decoded.Tables)
}

func TestBuild(t *testing.T) {
	sources := []SourceTable{
		{
			Name: "dbo.Patients",
			Columns: []SourceColumn{
				{Name: "mrn", DataType: "varchar", Nullable: false},
				{Name: "dob", DataType: "date", Nullable: true},
				{Name: "notes", DataType: "text", Nullable: true},
			},
			PrimaryKey:   []string{"mrn"},
			NumberOfRows: 1200,
		},
		{Name: "dbo.Staging", NumberOfRows: 5},
		{Name: "dbo.Audit", NumberOfRows: 9},
	}

	ann := Annotations{
		"dbo.Patients": {
			Description:    "Patient master records",
			Classification: ClassificationDataTable,
			ColumnDescriptions: map[string]string{
				"mrn":   "Medical record number",
				"dob":   "Date of birth",
				"notes": "Clinical notes",
			},
			FreeTextColumns:  []string{"notes"},
			IdentifiableCols: []string{"mrn"},
			ClientIDColumns:  []string{"mrn"},
			DateColumns:      []string{"dob"},
		},
		// dbo.Staging is curated out; dbo.Audit has no annotation at all.
		"dbo.Staging": {Classification: ClassificationNotImported},
	}

	cat := Build(sources, ann)
	require.Equal(t, 1, cat.Len())

	patients, ok := cat.Table("dbo.Patients")
	require.True(t, ok)
	assert.Equal(t, "Patient master records", patients.Description)
	assert.Equal(t, int64(1200), patients.NumberOfRows)
	assert.Equal(t, []string{"mrn"}, patients.PrimaryKeys)

	mrn, ok := patients.Column("mrn")
	require.True(t, ok)
	assert.True(t, mrn.Identifiable)
	assert.True(t, mrn.ClientID)
	assert.False(t, mrn.Nullable)

	notes, ok := patients.Column("notes")
	require.True(t, ok)
	assert.True(t, notes.FreeText)
	assert.False(t, notes.Identifiable)
	assert.Equal(t, "Clinical notes", notes.Description)

	dob, ok := patients.Column("dob")
	require.True(t, ok)
	assert.True(t, dob.Date)
	assert.True(t, dob.Nullable)
}

func TestLoadAnnotations(t *testing.T) {
	doc := `{
		"dbo.Patients": {
			"table_description": "Patient master records",
			"table_classification": "data-table",
			"columns_descriptions": {"mrn": "Medical record number"},
			"other_identifiable_columns": ["mrn"],
			"client_id": ["mrn"],
			"free_text_columns": [],
			"date_time": [],
			"date_of_birth": ["dob"]
		}
	}`

	ann, err := LoadAnnotations(strings.NewReader(doc))
	require.NoError(t, err)
	require.Contains(t, ann, "dbo.Patients")
	assert.Equal(t, []string{"mrn"}, ann["dbo.Patients"].IdentifiableCols)
	assert.Equal(t, []string{"dob"}, ann["dbo.Patients"].DateColumns)

	_, err = LoadAnnotations(strings.NewReader("not json"))
	require.Error(t, err)
}
