package validation

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mars-robotics/buildseq/internal/apperr"
)

const workSchema = `{
  "$paths": ["/sequence/work"],
  "type": "object",
  "properties": {
    "initialSituation": {"type": "object"},
    "goalsDefinition": {"type": "object"}
  }
}`

func writeSchema(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirRegistersSchemaUnderEachPath(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "work.schema.json", workSchema)

	v := NewValidator()
	require.NoError(t, v.LoadDir(dir))
	require.True(t, v.HasSchema("/sequence/work"))
	require.False(t, v.HasSchema("/sequence/station"))
}

func TestLoadDirFailsWithoutPathsKey(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "bad.schema.json", `{"type": "object"}`)

	v := NewValidator()
	err := v.LoadDir(dir)
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperr.KindConfigNotConform, appErr.Kind)
}

func TestValidateBodyAcceptsEmptyBodyAsEmptyObject(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "work.schema.json", workSchema)
	v := NewValidator()
	require.NoError(t, v.LoadDir(dir))

	require.NoError(t, v.ValidateBody("/sequence/work", nil))
}

func TestValidateBodyRejectsWrongShape(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "work.schema.json", workSchema)
	v := NewValidator()
	require.NoError(t, v.LoadDir(dir))

	err := v.ValidateBody("/sequence/work", []byte(`{"initialSituation": "not-an-object"}`))
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperr.KindValidationBody, appErr.Kind)
}

func TestValidateBodyRejectsUnregisteredPath(t *testing.T) {
	v := NewValidator()
	err := v.ValidateBody("/sequence/unknown", nil)
	require.Error(t, err)
}

func TestValidateURLQueryRejectsAnyParameter(t *testing.T) {
	require.NoError(t, ValidateURLQuery(url.Values{}))

	err := ValidateURLQuery(url.Values{"foo": {"bar"}})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperr.KindValidationURL, appErr.Kind)
}
