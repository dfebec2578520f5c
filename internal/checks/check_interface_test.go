package checks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheck struct {
	id     string
	status CheckStatus
	diags  []Diagnostic
	err    error
	ran    *[]string
}

func (c *stubCheck) ID() string          { return c.id }
func (c *stubCheck) Description() string { return "stub " + c.id }

func (c *stubCheck) Execute(a *Analysis) CheckResult {
	*c.ran = append(*c.ran, c.id)
	result := newResult(c)
	for _, d := range c.diags {
		result.add(d)
	}
	if c.err != nil {
		result.Status = StatusError
		result.Error = c.err
		return result
	}
	result.Status = c.status
	return result.finish()
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name   string
		status CheckStatus
		want   string
	}{
		{"Pass status", StatusPass, "pass"},
		{"Fail status", StatusFail, "fail"},
		{"Skip status", StatusSkip, "skip"},
		{"Error status", StatusError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}

func TestCheckRegistry(t *testing.T) {
	var ran []string
	r := NewCheckRegistry()

	require.NoError(t, r.Register(&stubCheck{id: "b", ran: &ran}))
	require.NoError(t, r.Register(&stubCheck{id: "a", ran: &ran}))
	assert.Error(t, r.Register(&stubCheck{id: "b", ran: &ran}))

	ids := []string{}
	for _, c := range r.List() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"b", "a"}, ids)

	c, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "stub a", c.Description())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestDefaultRegistry_Order(t *testing.T) {
	ids := []string{}
	for _, c := range DefaultRegistry().List() {
		ids = append(ids, c.ID())
		assert.NotEmpty(t, c.Description())
	}

	assert.Equal(t, []string{
		"image-security",
		"import-table",
		"module-policy",
		"crt-runtime",
		"import-symbols",
		"toolset-version",
		"unresolved-modules",
	}, ids)
}

func TestMustRegister_DuplicateIDPanics(t *testing.T) {
	var ran []string
	assert.Panics(t, func() {
		mustRegister(&stubCheck{id: "a", ran: &ran}, &stubCheck{id: "a", ran: &ran})
	})

	r := mustRegister(&stubCheck{id: "a", ran: &ran}, &stubCheck{id: "b", ran: &ran})
	assert.Len(t, r.List(), 2)
}

func TestCheckRunner_RunAll(t *testing.T) {
	var ran []string
	r := NewCheckRegistry()
	_ = r.Register(&stubCheck{id: "first", ran: &ran, diags: []Diagnostic{infof("one")}})
	_ = r.Register(&stubCheck{id: "second", ran: &ran, diags: []Diagnostic{errorf("two"), warnf("three")}})
	_ = r.Register(&stubCheck{id: "third", ran: &ran, status: StatusSkip})

	a := &Analysis{}
	results, err := NewCheckRunner(r).RunAll(a)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, ran)
	require.Len(t, results, 3)
	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, StatusFail, results[1].Status)
	assert.Equal(t, StatusSkip, results[2].Status)

	require.Len(t, a.Diagnostics, 3)
	assert.Equal(t, "one", a.Diagnostics[0].Message)
	assert.Equal(t, "first", a.Diagnostics[0].Check)
	assert.Equal(t, "two", a.Diagnostics[1].Message)
	assert.Equal(t, "second", a.Diagnostics[2].Check)

	summary := calculateSummary(results)
	assert.Equal(t, CheckSummary{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, summary)
}

func TestCheckRunner_StopsOnError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")

	r := NewCheckRegistry()
	_ = r.Register(&stubCheck{id: "first", ran: &ran})
	_ = r.Register(&stubCheck{id: "broken", ran: &ran, err: boom})
	_ = r.Register(&stubCheck{id: "never", ran: &ran})

	results, err := NewCheckRunner(r).RunAll(&Analysis{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"first", "broken"}, ran)
	assert.Len(t, results, 2)
	assert.Equal(t, 1, calculateSummary(results).Errors)
}

func TestDiagnostic_String(t *testing.T) {
	d := errorf("API is not in WINAPI_FAMILY_GAMES").forModule("user32.dll")
	d.Symbol = "MessageBoxW"
	assert.Equal(t, "ERROR: API is not in WINAPI_FAMILY_GAMES (user32.dll!MessageBoxW)", d.String())
	assert.Equal(t, "WARNING: careful (x.dll)", warnf("careful").forModule("x.dll").String())
	assert.Equal(t, "INFO: Found 2 import modules", infof("Found %d import modules", 2).String())

	sev, err := ParseSeverity("warning")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, sev)
	_, err = ParseSeverity("fatal")
	assert.Error(t, err)

	assert.False(t, HasErrors([]Diagnostic{infof("a"), warnf("b")}))
	assert.True(t, HasErrors([]Diagnostic{infof("a"), errorf("b")}))
}
