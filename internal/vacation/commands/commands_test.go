package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gartstein/vacation/internal/vacation/db"
	e "github.com/gartstein/vacation/internal/vacation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, dbPath: filepath.Join(t.TempDir(), "employees.db")}
}

func (h *harness) run(args ...string) (string, error) {
	app := &App{
		Logger: zaptest.NewLogger(h.t),
		Clock:  fixedClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	defer func() { _ = app.Close() }()

	cmd := New(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", h.dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "args %v: %s", args, out)
	return out
}

func TestAddAdjustAndList(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "--name", "Ana Diaz", "--number", "7", "--anniversary", "2015/01/01")
	assert.Contains(t, out, "1. Ana Diaz")
	assert.Contains(t, out, "days available: 200")

	out = h.mustRun("adjust", "1", "--by", "250")
	assert.Contains(t, out, "days taken:     200")
	assert.Contains(t, out, "days available: 0")

	out = h.mustRun("adjust", "1", "--by", "-5")
	assert.Contains(t, out, "days taken:     195")

	out = h.mustRun("adjust", "1", "--to", "10")
	assert.Contains(t, out, "days taken:     10")

	h.mustRun("add", "--name", "Bo Adams", "--status", "Temp", "--anniversary", "2024/01/01")
	out = h.mustRun("list", "--order", "last_name")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "2. Bo Adams")
	assert.Contains(t, lines[2], "1. Ana Diaz")
}

func TestDuplicateNumberRejected(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--name", "Ana Diaz", "--number", "101", "--anniversary", "2015/01/01")

	_, err := h.run("add", "--name", "Bo Lee", "--number", "101", "--anniversary", "2016/01/01")
	assert.ErrorIs(t, err, e.ErrDuplicateEmployeeNumber)
}

func TestStatusToTempClearsNumber(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--name", "Ana Diaz", "--number", "7", "--anniversary", "2015/01/01")

	out := h.mustRun("status", "1", "Temp")
	assert.Contains(t, out, "status:         Temp")
	assert.Contains(t, out, "number:         \n")
}

func TestCompanyWithoutNumberIsFlagged(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--name", "Bo Adams", "--status", "Temp", "--anniversary", "2024/01/01")

	out := h.mustRun("status", "1", "Company")
	assert.Contains(t, out, "number:         (missing)")

	out = h.mustRun("report")
	assert.Contains(t, out, "(missing)")

	out = h.mustRun("set", "1", "employee_number", "12")
	assert.Contains(t, out, "number:         12")
	assert.NotContains(t, h.mustRun("report"), "(missing)")
}

func TestDocumentCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--name", "Ana Diaz", "--number", "7", "--anniversary", "2015/01/01")

	h.mustRun("attach", "1", "/x/a.pdf")
	out := h.mustRun("attach", "1", "/y/b.jpg")
	assert.Contains(t, out, "document:       b.jpg")

	out = h.mustRun("docs", "1")
	assert.Equal(t, "0\ta.pdf\t/x/a.pdf\n1\tb.jpg\t/y/b.jpg\n", out)

	out = h.mustRun("rename-doc", "1", "leave-form")
	assert.Contains(t, out, "document:       leave-form")

	_, err := h.run("delete-doc", "1", "5")
	assert.ErrorIs(t, err, e.ErrOutOfRange)

	out = h.mustRun("delete-doc", "1", "1")
	assert.Contains(t, out, "document:       a.pdf")
}

func TestSetAndDelete(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--name", "Ana Diaz", "--number", "7", "--anniversary", "2015/01/01")

	out := h.mustRun("set", "1", "name", "Ana Ruiz")
	assert.Contains(t, out, "1. Ana Ruiz")

	_, err := h.run("set", "1", "anniversary", "tomorrow")
	assert.ErrorIs(t, err, e.ErrInvalidDateFormat)

	out = h.mustRun("delete", "1")
	assert.Contains(t, out, "deleted employee 1")

	_, err = h.run("show", "1")
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = h.run("show", "one")
	assert.ErrorIs(t, err, e.ErrValidation)
}

func TestReportAndRefresh(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--name", "Ana Diaz", "--number", "7", "--anniversary", "2015/01/01")

	out := h.mustRun("report")
	assert.True(t, strings.HasPrefix(out, "Employee Database Report\n"))
	assert.Contains(t, out, "1. Ana Diaz")

	out = h.mustRun("refresh")
	assert.Contains(t, out, "200")
}

func TestMissingIdentityColumnIsFatal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	repo, err := db.Open(ctx, &db.Config{Path: h.dbPath}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, repo.Exec(ctx, "CREATE TABLE employees (name TEXT, status TEXT)"))
	require.NoError(t, repo.Close())

	_, err = h.run("list")
	assert.ErrorIs(t, err, e.ErrMissingIdentityColumn)
	assert.True(t, e.IsFatal(err))
}
