package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testModel = `
resources:
  - name: Customer
    attributes:
      - name: Id
      - name: CompanyName
      - name: Notes
        type: ntext
  - name: Order
    table: Orders
    attributes:
      - name: Id
      - name: CustomerId
      - name: OrderDate
        type: date
relationships:
  - parent: Customer
    child: Order
    keys:
      - child: CustomerId
        parent: Id
`

func setup(t *testing.T) (dir, modelPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	modelPath = filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(modelPath, []byte(testModel), 0o644))
	return dir, modelPath
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCreateThenRebuild(t *testing.T) {
	require := require.New(t)
	dir, modelPath := setup(t)

	proto := filepath.Join(dir, "prototype")
	require.NoError(os.MkdirAll(proto, 0o755))
	require.NoError(os.WriteFile(filepath.Join(proto, "index.html"), []byte("<html></html>"), 0o644))

	projectDir := filepath.Join(dir, "shop")
	err := execRootCmd([]string{"admingen", "create", "-m", modelPath, "-p", projectDir, "--prototype", proto}, "0.1.0")
	require.NoError(err)

	adminYAML := filepath.Join(projectDir, "ui", "admin", "admin.yaml")
	created := readFile(t, adminYAML)
	require.Contains(created, "Customer:")
	require.Contains(created, "Orders:")
	require.Contains(created, "OrderList")
	require.FileExists(filepath.Join(projectDir, "ui", "admin", "home.js"))
	require.FileExists(filepath.Join(projectDir, "ui", "safrs-react-admin", "index.html"))

	require.NoError(os.WriteFile(adminYAML, []byte("edited: true\n"), 0o644))
	err = execRootCmd([]string{"admingen", "rebuild", "-m", modelPath, "-p", projectDir}, "0.1.0")
	require.NoError(err)
	require.Equal("edited: true\n", readFile(t, adminYAML))
	require.Contains(readFile(t, filepath.Join(projectDir, "ui", "admin", "admin-created.yaml")), "Customer:")

	// a second create keeps the copied app and overwrites admin.yaml
	err = execRootCmd([]string{"admingen", "create", "-m", modelPath, "-p", projectDir, "--prototype", proto}, "0.1.0")
	require.NoError(err)
	require.Contains(readFile(t, adminYAML), "Customer:")
}

func TestCreateWithoutPrototype(t *testing.T) {
	require := require.New(t)
	dir, modelPath := setup(t)

	projectDir := filepath.Join(dir, "crm")
	require.NoError(execRootCmd([]string{"admingen", "create", "-m", modelPath, "-p", projectDir}, "0.1.0"))
	require.FileExists(filepath.Join(projectDir, "ui", "admin", "admin.yaml"))
	require.FileExists(filepath.Join(projectDir, "ui", "admin", "home.js"))
	require.NoDirExists(filepath.Join(projectDir, "ui", "safrs-react-admin"))
}

func TestGenerate(t *testing.T) {
	require := require.New(t)
	dir, modelPath := setup(t)

	out := filepath.Join(dir, "out.yaml")
	err := execRootCmd([]string{"admingen", "generate", "-m", modelPath, "--host", "api.example.test", "--port", "8080", "-o", out}, "0.1.0")
	require.NoError(err)

	doc := readFile(t, out)
	require.Contains(doc, "http://api.example.test:8080/api")
	require.Contains(doc, "version: 0.1.0")
	require.NotContains(doc, "Notes", "NTEXT is suppressed")
	require.NoDirExists(filepath.Join(dir, "ui"))
}

func TestValidate(t *testing.T) {
	require := require.New(t)
	dir, modelPath := setup(t)

	require.NoError(execRootCmd([]string{"admingen", "validate", "-m", modelPath}, "0.1.0"))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(os.WriteFile(bad, []byte("resources:\n  - name: Empty\n"), 0o644))
	require.Error(execRootCmd([]string{"admingen", "validate", "-m", bad}, "0.1.0"))

	require.Error(execRootCmd([]string{"admingen", "validate"}, "0.1.0"))
}

func TestConfigFile(t *testing.T) {
	require := require.New(t)
	dir, modelPath := setup(t)

	cfg := "model: " + modelPath + "\nport: \"9000\"\n"
	require.NoError(os.WriteFile(filepath.Join(dir, "admingen.yaml"), []byte(cfg), 0o644))

	out := filepath.Join(dir, "out.yaml")
	require.NoError(execRootCmd([]string{"admingen", "generate", "-o", out}, "0.1.0"))
	require.Contains(readFile(t, out), "localhost:9000/api")

	require.NoError(os.WriteFile(filepath.Join(dir, "admingen.yaml"), []byte("log_level: loud\n"), 0o644))
	require.Error(execRootCmd([]string{"admingen", "generate", "-m", modelPath, "-o", out}, "0.1.0"))
}

func TestMemoryRegistry(t *testing.T) {
	ctx := context.Background()
	store, closeDB, err := memoryRegistry(ctx)
	require.NoError(t, err)

	_, err = store.Add(ctx, "shop", "/srv/shop", "")
	require.NoError(t, err)
	apis, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, apis, 1)

	closeDB()
	_, err = store.List(ctx)
	require.Error(t, err, "database is closed")
}
