package matlab

import (
	"strings"
	"testing"

	"mlcatalog/internal/domain"
)

func TestDetectInputParserMethodStyle(t *testing.T) {
	body := `
p = inputParser;
p.addRequired('signal');
p.addOptional('flip', pi/2);
p.addParameter('sliceThickness', 0);
p.parse(signal, varargin{:});
`
	byParser, nameValues := detectInputParser(body)

	if c, ok := byParser["signal"]; !ok || c.Optional {
		t.Errorf("signal = %+v, want required", c)
	}
	if c, ok := byParser["flip"]; !ok || !c.Optional || c.Default != "pi/2" {
		t.Errorf("flip = %+v, want optional with default pi/2", c)
	}
	if _, ok := byParser["sliceThickness"]; ok {
		t.Error("addParameter registration leaked into positional classifications")
	}
	if len(nameValues) != 1 || nameValues[0].Name != "sliceThickness" || nameValues[0].DefaultValue != "0" {
		t.Errorf("nameValues = %+v", nameValues)
	}
}

func TestDetectInputParserFunctionStyle(t *testing.T) {
	body := `
parser = inputParser;
addRequired(parser, 'grad');
addOptional(parser, 'maxSlew', system.maxSlew);
addParamValue(parser, 'delay', 0);
`
	byParser, nameValues := detectInputParser(body)

	if c, ok := byParser["grad"]; !ok || c.Optional {
		t.Errorf("grad = %+v, want required", c)
	}
	if c, ok := byParser["maxSlew"]; !ok || !c.Optional || c.Default != "system.maxSlew" {
		t.Errorf("maxSlew = %+v, want optional with default system.maxSlew", c)
	}
	if len(nameValues) != 1 || nameValues[0].Name != "delay" {
		t.Errorf("nameValues = %+v", nameValues)
	}
}

func TestDetectInputParserRequiresConstructor(t *testing.T) {
	// addRequired without an inputParser construction is some other API.
	body := `
obj.addRequired('thing');
`
	byParser, nameValues := detectInputParser(body)
	if byParser != nil || nameValues != nil {
		t.Errorf("got %v, %v without inputParser construction", byParser, nameValues)
	}
}

func TestDetectNarginBasic(t *testing.T) {
	lines := strings.Split(`function y = calc(x, tol, maxIter)
if nargin < 3
    maxIter = 100;
end
if nargin < 2
    tol = 1e-6;
end
y = x;
end`, "\n")

	got := detectNargin(lines, []string{"x", "tol", "maxIter"})

	if c, ok := got["maxIter"]; !ok || !c.Optional || c.Default != "100" {
		t.Errorf("maxIter = %+v", c)
	}
	if c, ok := got["tol"]; !ok || !c.Optional || c.Default != "1e-6" {
		t.Errorf("tol = %+v", c)
	}
	if _, ok := got["x"]; ok {
		t.Error("x classified despite no guarded assignment")
	}
}

func TestDetectNarginSingleLineGuard(t *testing.T) {
	lines := []string{
		"function y = scale(x, factor)",
		"if nargin < 2, factor = 1; end",
		"y = x * factor;",
		"end",
	}
	got := detectNargin(lines, []string{"x", "factor"})
	if c, ok := got["factor"]; !ok || !c.Optional || c.Default != "1" {
		t.Errorf("factor = %+v, want optional default 1", c)
	}
}

func TestDetectNarginElseifAndLessEqual(t *testing.T) {
	lines := strings.Split(`function out = run(a, b, c)
if nargin <= 1
    b = 2;
    c = 3;
elseif nargin <= 2
    c = 30;
end
out = a + b + c;
end`, "\n")

	got := detectNargin(lines, []string{"a", "b", "c"})
	if c, ok := got["b"]; !ok || c.Default != "2" {
		t.Errorf("b = %+v", c)
	}
	// First classification wins; the elseif arm must not overwrite it.
	if c, ok := got["c"]; !ok || c.Default != "3" {
		t.Errorf("c = %+v", c)
	}
}

func TestDetectNarginIgnoresUnrelatedAssignments(t *testing.T) {
	lines := strings.Split(`function y = f(x, opt)
scale = 10;
if x > 0
    opt = 99;
end
if nargin < 2
    opt = 1;
end
y = x * opt * scale;
end`, "\n")

	got := detectNargin(lines, []string{"x", "opt"})
	c, ok := got["opt"]
	if !ok {
		t.Fatal("opt not classified")
	}
	if c.Default != "1" {
		t.Errorf("opt default = %q, want the guarded assignment's value 1", c.Default)
	}
}

func TestDetectNarginComparisonNotAssignment(t *testing.T) {
	lines := strings.Split(`function y = f(x, mode)
if nargin < 2
    if mode == 3
        disp('never');
    end
    mode = 'auto';
end
y = x;
end`, "\n")

	got := detectNargin(lines, []string{"x", "mode"})
	if c, ok := got["mode"]; !ok || c.Default != "'auto'" {
		t.Errorf("mode = %+v, want default 'auto'", c)
	}
}

func TestReconcilePrecedence(t *testing.T) {
	params := []string{"a", "b", "c", "d"}
	byParser := map[string]classification{
		"a": {Optional: false},
		"b": {Optional: true, Default: "1"},
	}
	byNargin := map[string]classification{
		"b": {Optional: true, Default: "1"},
		"c": {Optional: true, Default: "eps"},
	}

	records, diags := Reconcile(params, byParser, byNargin, "f", "f.m")
	if len(records) != 4 {
		t.Fatalf("got %d records", len(records))
	}

	if records[0].Name != "a" || !records[0].Required || records[0].DetectionMethod != domain.DetectInputParser {
		t.Errorf("a = %+v", records[0])
	}
	if records[1].Required || records[1].DefaultValue != "1" || records[1].DetectionMethod != domain.DetectInputParser {
		t.Errorf("b = %+v", records[1])
	}
	if records[2].Required || records[2].DefaultValue != "eps" || records[2].DetectionMethod != domain.DetectNargin {
		t.Errorf("c = %+v", records[2])
	}
	if !records[3].Required || records[3].DetectionMethod != domain.DetectNone {
		t.Errorf("d = %+v", records[3])
	}

	var unresolved int
	for _, d := range diags {
		if d.Code == domain.DiagUnresolvedParameter {
			unresolved++
			if d.Param != "d" {
				t.Errorf("unresolved param = %s, want d", d.Param)
			}
		}
	}
	if unresolved != 1 {
		t.Errorf("unresolved diagnostics = %d, want 1", unresolved)
	}
}

func TestReconcileConflictDiagnostics(t *testing.T) {
	params := []string{"x", "y"}
	byParser := map[string]classification{
		"x": {Optional: false},
		"y": {Optional: true, Default: "10"},
	}
	byNargin := map[string]classification{
		"x": {Optional: true, Default: "0"},
		"y": {Optional: true, Default: "20"},
	}

	records, diags := Reconcile(params, byParser, byNargin, "f", "f.m")

	// inputParser wins both times.
	if !records[0].Required {
		t.Error("x should stay required per inputParser")
	}
	if records[1].DefaultValue != "10" {
		t.Errorf("y default = %q, want 10", records[1].DefaultValue)
	}

	conflicts := 0
	for _, d := range diags {
		if d.Code == domain.DiagStrategyConflict {
			conflicts++
		}
	}
	if conflicts != 2 {
		t.Errorf("conflict diagnostics = %d, want 2", conflicts)
	}
}

func TestReconcileAgreementRecordsInputParser(t *testing.T) {
	params := []string{"n"}
	byParser := map[string]classification{"n": {Optional: true, Default: "5"}}
	byNargin := map[string]classification{"n": {Optional: true, Default: "5"}}

	records, diags := Reconcile(params, byParser, byNargin, "f", "f.m")
	if records[0].DetectionMethod != domain.DetectInputParser {
		t.Errorf("detection method = %s, want input_parser", records[0].DetectionMethod)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %+v", diags)
	}
}
