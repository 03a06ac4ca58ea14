package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/admingen/internal/admin"
)

func testDocument(version string) *admin.Document {
	doc := &admin.Document{
		APIRoot: "http://localhost:5656/api",
		About:   admin.About{Date: "January 02, 2024 03:04:05", Version: version},
		Info:    admin.Info{NumberTables: 1},
	}
	doc.Resources.Set("Customer", &admin.ResourceView{
		Type:       "Customer",
		UserKey:    "CompanyName",
		Attributes: []admin.AttributeView{{Name: "CompanyName", Label: " Company Name*", Search: true, Sort: true}},
	})
	return doc
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriter_CreateThenRebuild(t *testing.T) {
	layout := Layout{Dir: t.TempDir()}
	w := NewWriter(layout)

	report, err := w.Write(testDocument("1"), ModeCreate)
	require.NoError(t, err)
	assert.True(t, report.AdminWritten)
	assert.Equal(t, 1, report.NumberTables)
	assert.Equal(t, read(t, layout.AdminYAML()), read(t, layout.AdminCreatedYAML()))
	assert.Contains(t, read(t, layout.AdminYAML()), "version: \"1\"")

	// hand edit, then rebuild
	require.NoError(t, os.WriteFile(layout.AdminYAML(), []byte("edited: true\n"), 0o644))
	report, err = w.Write(testDocument("2"), ModeRebuild)
	require.NoError(t, err)
	assert.False(t, report.AdminWritten)
	assert.Equal(t, "edited: true\n", read(t, layout.AdminYAML()))
	assert.Contains(t, read(t, layout.AdminCreatedYAML()), "version: \"2\"")

	// create overwrites
	_, err = w.Write(testDocument("3"), ModeCreate)
	require.NoError(t, err)
	assert.Contains(t, read(t, layout.AdminYAML()), "version: \"3\"")

	entries, err := os.ReadDir(layout.AdminDir())
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left behind")
}

func TestWriter_RebuildWithoutAdminYAML(t *testing.T) {
	layout := Layout{Dir: t.TempDir()}
	report, err := NewWriter(layout).Write(testDocument("1"), ModeRebuild)
	require.NoError(t, err)
	assert.True(t, report.AdminWritten)
	assert.FileExists(t, layout.AdminYAML())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "create", ModeCreate.String())
	assert.Equal(t, "rebuild", ModeRebuild.String())
}

func prototype(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "js", "main.js"), []byte("main()"), 0o644))
	return dir
}

func TestSeeder_CreateAdminApp(t *testing.T) {
	layout := Layout{Dir: t.TempDir()}
	s := NewSeeder(layout, prototype(t), "")
	require.NoError(t, s.CreateAdminApp(context.Background()))

	assert.Equal(t, "<html></html>", read(t, filepath.Join(layout.SPADir(), "index.html")))
	assert.Equal(t, "main()", read(t, filepath.Join(layout.SPADir(), "static", "js", "main.js")))
	assert.Equal(t, string(defaultHomeJS), read(t, layout.HomeJS()))

	err := s.CreateAdminApp(context.Background())
	assert.ErrorContains(t, err, "already exists")
}

func TestSeeder_CustomHomeJS(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "home.js")
	require.NoError(t, os.WriteFile(custom, []byte("export default 1"), 0o644))

	layout := Layout{Dir: t.TempDir()}
	require.NoError(t, NewSeeder(layout, prototype(t), custom).CreateAdminApp(context.Background()))
	assert.Equal(t, "export default 1", read(t, layout.HomeJS()))
}

func TestSeeder_Errors(t *testing.T) {
	layout := Layout{Dir: t.TempDir()}
	err := NewSeeder(layout, filepath.Join(t.TempDir(), "nope"), "").CreateAdminApp(context.Background())
	assert.ErrorIs(t, err, ErrPrototypeMissing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewSeeder(layout, prototype(t), "").CreateAdminApp(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeeder_EnsureHomeJS(t *testing.T) {
	layout := Layout{Dir: t.TempDir()}
	s := NewSeeder(layout, "", "")
	require.NoError(t, s.EnsureHomeJS())
	assert.Equal(t, string(defaultHomeJS), read(t, layout.HomeJS()))

	require.NoError(t, os.WriteFile(layout.HomeJS(), []byte("custom()"), 0o644))
	require.NoError(t, s.EnsureHomeJS())
	assert.Equal(t, "custom()", read(t, layout.HomeJS()))
	assert.NoDirExists(t, layout.SPADir())
}
