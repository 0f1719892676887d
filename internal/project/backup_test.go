package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ProfileCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup", "data.json")

	config := model.DefaultAppConfig()
	config.DefaultMaxChainSize = 30
	proj := model.NewProject()
	proj.Name = "Greenhouse"

	require.NoError(t, ExportAllData(path, config, []model.Project{proj}))

	backup, err := ImportAllData(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", backup.Version)
	assert.NotEmpty(t, backup.CreatedAt)
	assert.Equal(t, config, backup.Config)
	require.Len(t, backup.Projects, 1)
	assert.Equal(t, "Greenhouse", backup.Projects[0].Name)
}

func TestImportAllData_MissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"config":{}}`), 0644))

	_, err := ImportAllData(path)
	assert.Error(t, err)
}

func TestImportAllData_MissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
