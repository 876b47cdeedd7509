package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/KaramelBytes/statloom-cli/internal/stats"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	beforeKreport = " 12.50\t1250\t1250\tU\t0\tunclassified\n" +
		" 40.00\t4000\t10\tS\t562\t      Escherichia coli\n" +
		"  7.25\t725\t725\tS\t1280\t      Staphylococcus aureus\n" +
		" 20.00\t2000\t2000\tS\t1639\t      Listeria monocytogenes\n"
	afterKreport = " 30.00\t3000\t3000\tU\t0\tunclassified\n" +
		" 10.00\t1000\t10\tS\t562\t      Escherichia coli\n" +
		" 55.00\t5500\t5500\tS\t1280\t      Staphylococcus aureus\n"
)

var savedID = regexp.MustCompile(`Saved result ([0-9a-f-]{36})`)

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args and require success.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

// isolate points HOME at a temp dir so config and results stay local to the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCLI_CompareAndSave(t *testing.T) {
	home := isolate(t)
	before := writeFile(t, home, "before.kreport", beforeKreport)
	after := writeFile(t, home, "after.kreport", afterKreport)
	chartPath := filepath.Join(home, "barbell.svg")

	out := runCmd(t, "compare", before, after, "--chart", chartPath, "--save")
	assert.Contains(t, out, "Escherichia coli")
	assert.Contains(t, out, "Staphylococcus aureus")
	assert.NotContains(t, out, "Listeria")
	assert.NotContains(t, out, "unclassified")
	assert.Contains(t, out, "-30")
	assert.FileExists(t, chartPath)

	m := savedID.FindStringSubmatch(out)
	require.Len(t, m, 2)

	list := runCmd(t, "results", "list")
	assert.Contains(t, list, m[1])
	assert.Contains(t, list, "compare")

	shown := runCmd(t, "results", "show", m[1])
	assert.Contains(t, shown, `"kind": "compare"`)
	assert.Contains(t, shown, `"label": "Escherichia coli"`)
}

func TestCLI_CompareFromConfigWithTopN(t *testing.T) {
	home := isolate(t)
	before := writeFile(t, home, "before.kreport", beforeKreport)
	after := writeFile(t, home, "after.kreport", afterKreport)
	cfgPath := writeFile(t, home, "config.yaml", "kraken_files:\n"+
		"  before_measurement_file: "+before+"\n"+
		"  after_measurement_file: "+after+"\n"+
		"selected_species:\n  - Staphylococcus aureus\n  - Escherichia coli\n")

	out := runCmd(t, "--config", cfgPath, "compare")
	assert.Contains(t, out, "Escherichia coli")
	assert.Contains(t, out, "Staphylococcus aureus")

	// top-2 of before keeps E. coli and Listeria; after keeps S. aureus and E. coli
	out = runCmd(t, "--config", cfgPath, "compare", "--species", "Escherichia coli", "--species", "Staphylococcus aureus", "--species", "Listeria monocytogenes", "--top-n", "2")
	assert.Contains(t, out, "Escherichia coli")
	assert.NotContains(t, out, "Staphylococcus aureus")
}

func TestCLI_CompareNoSharedTaxa(t *testing.T) {
	home := isolate(t)
	before := writeFile(t, home, "before.kreport", " 40.00\t4000\t10\tS\t562\tEscherichia coli\n")
	after := writeFile(t, home, "after.kreport", " 55.00\t5500\t5500\tS\t1280\tStaphylococcus aureus\n")
	chartPath := filepath.Join(home, "empty.png")

	out := runCmd(t, "compare", before, after, "--chart", chartPath)
	assert.Contains(t, out, "(no shared taxa)")
	assert.NoFileExists(t, chartPath)
}

func TestCLI_CompareRequiresReports(t *testing.T) {
	isolate(t)
	_, err := execute(t, "compare")
	require.Error(t, err)
	_, err = execute(t, "compare", "only-one.kreport")
	require.Error(t, err)
}

func TestCLI_RankSum(t *testing.T) {
	home := isolate(t)
	a := writeFile(t, home, "a.txt", "1 2 3 4 5\n")
	b := writeFile(t, home, "b.txt", "6 7 8 9 10\n")

	out := runCmd(t, "ranksum", a, b, "--alternative", "less")
	assert.Contains(t, out, "H1: eta.1  < eta.2")
	assert.Contains(t, out, "U.1 = 0, U.2 = 25, U = 0")
	assert.Contains(t, out, "Effect size: r")
}

func TestCLI_RankSumInvalidAlternative(t *testing.T) {
	home := isolate(t)
	a := writeFile(t, home, "a.txt", "1 2 3\n")
	b := writeFile(t, home, "b.txt", "4 5 6\n")

	out, err := execute(t, "ranksum", a, b, "--alternative", "sideways")
	require.ErrorIs(t, err, stats.ErrInvalidAlternative)
	assert.Contains(t, out, "Wrong alternative hypothesis chosen!")
	assert.NotContains(t, out, "U.1 =")
}

func TestCLI_AndersonFromCSV(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "obs.csv", "id,value\n1,1\n2,2\n3,3\n4,4\n5,5\n6,6\n7,7\n8,8\n")

	out := runCmd(t, "anderson", p, "--column", "value", "--save")
	assert.Contains(t, out, "Anderson-Darling-test for normality of data:")
	assert.Contains(t, out, "n = 8, alpha = 0.05")
	assert.Contains(t, out, "AD*.crit = 0.753")
	assert.Regexp(t, savedID, out)
}

func TestCLI_AndersonAlphaFromConfig(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "obs.txt", "1 2 3 4 5 6 7 8\n")
	cfgPath := writeFile(t, home, "config.yaml", "alpha: 0.1\n")

	out := runCmd(t, "--config", cfgPath, "anderson", p)
	assert.Contains(t, out, "alpha = 0.1")

	out = runCmd(t, "--config", cfgPath, "anderson", p, "--alpha", "0.01")
	assert.Contains(t, out, "alpha = 0.01")
}

func TestCLI_QQ(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "q.txt", "9 4 2 7 4 5\n")
	chartPath := filepath.Join(home, "qq.png")

	out := runCmd(t, "qq", p, "--chart", chartPath)
	assert.Contains(t, out, "estimation method: robust")
	assert.Contains(t, out, "n = 6, mu = 4.5")
	assert.FileExists(t, chartPath)

	out = runCmd(t, "qq", p, "--est", "preset", "--mu", "5", "--sigma", "2")
	assert.Contains(t, out, "mu = 5, sigma = 2")

	_, err := execute(t, "qq", p, "--est", "preset", "--mu", "5")
	assert.ErrorIs(t, err, stats.ErrMissingPreset)

	_, err = execute(t, "qq", p, "--est", "bayes")
	assert.ErrorIs(t, err, stats.ErrInvalidEstimator)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolate(t)
	runCmd(t, "config", "set", "alpha", "0.01")
	runCmd(t, "config", "set", "selected_species", "Escherichia coli, Staphylococcus aureus")

	b, err := os.ReadFile(filepath.Join(home, ".statloom", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "alpha: 0.01")

	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "alpha: 0.01")
	assert.Contains(t, out, "selected_species: Escherichia coli, Staphylococcus aureus")

	_, err = execute(t, "config", "set", "alpha", "2")
	assert.ErrorIs(t, err, stats.ErrInvalidAlpha)
	_, err = execute(t, "config", "set", "colour", "blue")
	assert.Error(t, err)
}

func TestCLI_ConfigSetUpdatesWorkingDirConfig(t *testing.T) {
	home := isolate(t)
	work := t.TempDir()
	local := writeFile(t, work, "config.yaml", "alpha: 0.05\n")
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(old) })

	runCmd(t, "config", "set", "alpha", "0.2")

	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "alpha: 0.2")
	b, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Contains(t, string(b), "alpha: 0.2")
	assert.NoFileExists(t, filepath.Join(home, ".statloom", "config.yaml"))
}

func TestCLI_ResultsEmptyAndUnknown(t *testing.T) {
	isolate(t)
	out := runCmd(t, "results", "list")
	assert.Equal(t, "(no results)", strings.TrimSpace(out))

	_, err := execute(t, "results", "show", "3b241101-e2bb-4255-8caf-4136c566a962")
	assert.Error(t, err)
}
