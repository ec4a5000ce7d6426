package matlab

import (
	"testing"

	"mlcatalog/internal/domain"
)

func TestContextFromPath(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		namespace     string
		className     string
		isConstructor bool
		isMethod      bool
	}{
		{
			name: "plain directory",
			path: "/src/matlab/makeTrapezoid.m",
		},
		{
			name:      "single package",
			path:      "/src/+mr/makeTrapezoid.m",
			namespace: "mr",
		},
		{
			name:      "nested packages",
			path:      "/src/+mr/+aux/+quat/multiply.m",
			namespace: "mr.aux.quat",
		},
		{
			name:      "class method",
			path:      "/src/+mr/@Sequence/write.m",
			namespace: "mr",
			className: "Sequence",
			isMethod:  true,
		},
		{
			name:          "class constructor",
			path:          "/src/+mr/@Sequence/Sequence.m",
			namespace:     "mr",
			className:     "Sequence",
			isConstructor: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextFromPath(tt.path)
			if ctx.Namespace != tt.namespace {
				t.Errorf("namespace = %q, want %q", ctx.Namespace, tt.namespace)
			}
			if ctx.Class.ClassName != tt.className {
				t.Errorf("class = %q, want %q", ctx.Class.ClassName, tt.className)
			}
			if ctx.Class.IsConstructor != tt.isConstructor {
				t.Errorf("isConstructor = %v, want %v", ctx.Class.IsConstructor, tt.isConstructor)
			}
			if ctx.Class.IsClassMethod != tt.isMethod {
				t.Errorf("isClassMethod = %v, want %v", ctx.Class.IsClassMethod, tt.isMethod)
			}
		})
	}
}

func TestCallingPattern(t *testing.T) {
	tests := []struct {
		name      string
		fn        string
		namespace string
		class     domain.ClassInfo
		want      string
	}{
		{
			name: "plain function",
			fn:   "calcDuration",
			want: "calcDuration(...)",
		},
		{
			name:      "namespaced function",
			fn:        "makeTrapezoid",
			namespace: "mr",
			want:      "mr.makeTrapezoid(...)",
		},
		{
			name:      "constructor",
			fn:        "Sequence",
			namespace: "mr",
			class: domain.ClassInfo{
				ClassName:     "Sequence",
				IsConstructor: true,
				InstanceVar:   "seq",
			},
			want: "seq = mr.Sequence(...)",
		},
		{
			name: "method",
			fn:   "write",
			class: domain.ClassInfo{
				ClassName:     "Sequence",
				IsClassMethod: true,
				InstanceVar:   "seq",
			},
			want: "seq.write(...)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CallingPattern(tt.fn, tt.namespace, tt.class)
			if got != tt.want {
				t.Errorf("CallingPattern = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyFilenameMatch(t *testing.T) {
	records := []domain.FunctionRecord{
		{Name: "calcAngle"},
		{Name: "normalize"},
		{Name: "innerStep"},
	}
	spans := []Span{
		{},
		{},
		{Nested: true},
	}

	diags := Classify(records, spans, "calcAngle", false, "calcAngle.m")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if records[0].Category != domain.CategoryMain {
		t.Errorf("calcAngle = %s, want main", records[0].Category)
	}
	if records[1].Category != domain.CategoryHelper {
		t.Errorf("normalize = %s, want helper", records[1].Category)
	}
	if records[2].Category != domain.CategoryInternal {
		t.Errorf("innerStep = %s, want internal", records[2].Category)
	}
}

func TestClassifyNoFilenameMatch(t *testing.T) {
	records := []domain.FunctionRecord{
		{Name: "doWork"},
		{Name: "cleanup"},
	}
	spans := []Span{{}, {}}

	diags := Classify(records, spans, "utilities", false, "utilities.m")
	if records[0].Category != domain.CategoryMain {
		t.Errorf("first function = %s, want main by convention", records[0].Category)
	}
	if len(diags) != 1 || diags[0].Code != domain.DiagNoMainFunctionMatch {
		t.Errorf("diagnostics = %+v, want one NoMainFunctionMatch", diags)
	}
}

func TestClassifyEveryFunctionGetsExactlyOneCategory(t *testing.T) {
	records := []domain.FunctionRecord{
		{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"},
	}
	spans := []Span{{}, {Nested: true}, {}, {Nested: true}}

	Classify(records, spans, "a", false, "a.m")
	for _, r := range records {
		switch r.Category {
		case domain.CategoryMain, domain.CategoryHelper, domain.CategoryInternal:
		default:
			t.Errorf("%s has no category", r.Name)
		}
	}
}
