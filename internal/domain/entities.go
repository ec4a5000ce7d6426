package domain

// Category classifies a function's role within its file.
type Category string

const (
	CategoryMain     Category = "main"
	CategoryHelper   Category = "helper"
	CategoryInternal Category = "internal"
)

// DetectionMethod records which strategy decided a parameter's optionality.
type DetectionMethod string

const (
	DetectInputParser DetectionMethod = "input_parser"
	DetectNargin      DetectionMethod = "nargin"
	DetectNone        DetectionMethod = "none"
)

// ParameterRecord describes one declared positional parameter.
type ParameterRecord struct {
	Name            string          `json:"name" yaml:"name"`
	Required        bool            `json:"required" yaml:"required"`
	DefaultValue    string          `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	DetectionMethod DetectionMethod `json:"detection_method" yaml:"detection_method"`
}

// BodySpan is the line range of a function definition, 1-indexed inclusive.
// Used during extraction only; downstream consumers ignore it.
type BodySpan struct {
	StartLine int `json:"start_line" yaml:"start_line"`
	EndLine   int `json:"end_line" yaml:"end_line"`
}

// FunctionRecord is one extracted function with its full metadata.
type FunctionRecord struct {
	Name         string            `json:"name" yaml:"name"`
	Outputs      []string          `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Parameters   []ParameterRecord `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Category     Category          `json:"category" yaml:"category"`
	BodySpan     BodySpan          `json:"body_span" yaml:"body_span"`
	RawSignature string            `json:"raw_signature" yaml:"raw_signature"`
	HasVarargin  bool              `json:"has_varargin,omitempty" yaml:"has_varargin,omitempty"`
	Malformed    bool              `json:"malformed,omitempty" yaml:"malformed,omitempty"`

	// NameValues holds addParameter/addParamValue registrations. These are
	// name-value pairs passed through varargin, not declared positional
	// parameters, so they live outside Parameters.
	NameValues []ParameterRecord `json:"name_values,omitempty" yaml:"name_values,omitempty"`

	HelpText       string `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	CallingPattern string `json:"calling_pattern,omitempty" yaml:"calling_pattern,omitempty"`
	ParentFile     string `json:"parent_file" yaml:"parent_file"`

	// Body is the raw source of the function, kept for documentation
	// generation but never persisted.
	Body string `json:"-" yaml:"-"`
}

// ClassInfo describes class context derived from an @Class path segment or
// a classdef declaration.
type ClassInfo struct {
	ClassName     string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	ParentClass   string `json:"parent_class,omitempty" yaml:"parent_class,omitempty"`
	IsClassMethod bool   `json:"is_class_method,omitempty" yaml:"is_class_method,omitempty"`
	IsConstructor bool   `json:"is_constructor,omitempty" yaml:"is_constructor,omitempty"`
	InstanceVar   string `json:"instance_variable,omitempty" yaml:"instance_variable,omitempty"`
}

// SourceFile is the complete extraction result for one MATLAB file.
// Built fresh per run and discarded after assembly; never cached.
type SourceFile struct {
	Path      string           `json:"path" yaml:"path"`
	Namespace string           `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Class     ClassInfo        `json:"class_info,omitempty" yaml:"class_info,omitempty"`
	IsClass   bool             `json:"is_classdef,omitempty" yaml:"is_classdef,omitempty"`
	Functions []FunctionRecord `json:"functions" yaml:"functions"`
}

// DiagnosticCode identifies a locally-recovered extraction condition.
type DiagnosticCode string

const (
	DiagFileReadError       DiagnosticCode = "FileReadError"
	DiagMalformedSignature  DiagnosticCode = "MalformedSignature"
	DiagUnresolvedParameter DiagnosticCode = "UnresolvedParameter"
	DiagStrategyConflict    DiagnosticCode = "StrategyConflict"
	DiagNoMainFunctionMatch DiagnosticCode = "NoMainFunctionMatch"
	DiagNoFunctionsFound    DiagnosticCode = "NoFunctionsFound"
)

// Diagnostic is a non-fatal finding attached to the run summary.
type Diagnostic struct {
	Code     DiagnosticCode `json:"code" yaml:"code"`
	Path     string         `json:"path,omitempty" yaml:"path,omitempty"`
	Function string         `json:"function,omitempty" yaml:"function,omitempty"`
	Param    string         `json:"param,omitempty" yaml:"param,omitempty"`
	Message  string         `json:"message,omitempty" yaml:"message,omitempty"`
}

// ParameterDoc is the enhancer's documentation for one parameter or output.
type ParameterDoc struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Units       string `json:"units,omitempty" yaml:"units,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Example     string `json:"example,omitempty" yaml:"example,omitempty"`
}

// EnhancedFunction pairs an extracted record with generated documentation.
type EnhancedFunction struct {
	FunctionRecord `yaml:",inline"`

	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	ParamDocs   []ParameterDoc `json:"parameter_docs,omitempty" yaml:"parameter_docs,omitempty"`
	ReturnDocs  []ParameterDoc `json:"return_docs,omitempty" yaml:"return_docs,omitempty"`
	ExampleCall string         `json:"example_call,omitempty" yaml:"example_call,omitempty"`
	Enhanced    bool           `json:"enhanced" yaml:"enhanced"`
}

// Stats summarizes catalog contents.
type Stats struct {
	TotalFiles     int            `json:"total_files"`
	TotalFunctions int            `json:"total_functions"`
	ByCategory     map[string]int `json:"by_category,omitempty"`
}
