package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-health-innovation-labs/AppDAR/internal/request"
)

func TestReviewScriptSingleTable(t *testing.T) {
	where := "dob > '1990-01-01'"
	entries := []request.TableEntry{
		{
			Name:           "dbo.Patients",
			WhereStatement: &where,
			Columns: []request.ColumnEntry{
				{Name: "dob"},
				{Name: "ward"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReviewScriptFormatter(&buf).Format(entries))

	want := `df_Patients = spark.read.format("delta").load(f"wasbs://{SOURCE_BLOB_NAME}@{SOURCE_STORAGE_ACCOUNT_NAME}.blob.core.windows.net/Patients").select(["dob", "ward"]).where("dob > '1990-01-01'")
display(df_Patients)
`
	assert.Equal(t, want, buf.String())
}

func TestReviewScriptNoFilter(t *testing.T) {
	entries := []request.TableEntry{
		{
			Name:    "dbo.Admissions",
			Columns: []request.ColumnEntry{{Name: "admission_id"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReviewScriptFormatter(&buf).Format(entries))

	got := buf.String()
	assert.NotContains(t, got, ".where(")
	assert.Contains(t, got, `.select(["admission_id"])`)
	assert.Contains(t, got, "display(df_Admissions)")
}

func TestReviewScriptMultipleTables(t *testing.T) {
	entries := []request.TableEntry{
		{Name: "dbo.Patients", Columns: []request.ColumnEntry{{Name: "ward"}}},
		{Name: "dbo.Admissions", Columns: []request.ColumnEntry{{Name: "admission_id"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReviewScriptFormatter(&buf).Format(entries))

	blocks := strings.Split(buf.String(), "\n\n")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "df_Patients")
	assert.Contains(t, blocks[1], "df_Admissions")

	// Entry order carries through to the script.
	assert.Less(t,
		strings.Index(buf.String(), "df_Patients"),
		strings.Index(buf.String(), "df_Admissions"))
}

func TestReviewScriptEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReviewScriptFormatter(&buf).Format(nil))
	assert.Empty(t, buf.String())
}
