package matlab

import (
	"path/filepath"
	"strings"

	"mlcatalog/internal/domain"
)

// Extractor is the extraction record assembler: it runs the boundary
// scanner, signature parser, optional-parameter detector, and classifier
// over one file and merges their outputs into FunctionRecords in original
// declaration order. It holds no state; running it twice on the same input
// yields identical output.
type Extractor struct {
	scanner *Scanner
}

func NewExtractor() *Extractor {
	return &Extractor{scanner: NewScanner()}
}

// Extract parses content read from path. Malformed declarations and
// unresolved parameters degrade to flagged records and diagnostics;
// the only errors are ones the caller raised reading the file.
func (e *Extractor) Extract(path, content string) (domain.SourceFile, []domain.Diagnostic, error) {
	var diags []domain.Diagnostic

	stem := fileStem(path)
	ctx := ContextFromPath(path)

	sf := domain.SourceFile{
		Path:      path,
		Namespace: ctx.Namespace,
		Class:     ctx.Class,
	}

	scan := e.scanner.Scan(content)
	if len(scan.Spans) == 0 && scan.Class == nil {
		diags = append(diags, domain.Diagnostic{
			Code:    domain.DiagNoFunctionsFound,
			Path:    path,
			Message: "no functions found",
		})
		sf.Functions = []domain.FunctionRecord{}
		return sf, diags, nil
	}

	lines := strings.Split(content, "\n")
	base := filepath.Base(path)

	records := make([]domain.FunctionRecord, 0, len(scan.Spans))
	for _, sp := range scan.Spans {
		rec, fnDiags := e.assemble(sp, lines, base, path)
		records = append(records, rec)
		diags = append(diags, fnDiags...)
	}

	if scan.Class != nil {
		sf.IsClass = true
		sf.Class.ClassName = scan.Class.Name
		sf.Class.ParentClass = scan.Class.Parent
		if sf.Class.InstanceVar == "" {
			sf.Class.InstanceVar = instanceVar(scan.Class.Name)
		}
		diags = append(diags, Classify(records, scan.Spans, stem, true, path)...)
		records = e.assembleClass(scan, records, base, lines, sf.Namespace, sf.Class)
	} else {
		diags = append(diags, Classify(records, scan.Spans, stem, false, path)...)
		for i := range records {
			class := domain.ClassInfo{}
			if records[i].Category == domain.CategoryMain {
				class = sf.Class
			}
			records[i].CallingPattern = CallingPattern(records[i].Name, sf.Namespace, class)
		}
	}

	sf.Functions = records
	return sf, diags, nil
}

// assemble builds one FunctionRecord from a span.
func (e *Extractor) assemble(sp Span, lines []string, base, path string) (domain.FunctionRecord, []domain.Diagnostic) {
	rec := domain.FunctionRecord{
		RawSignature: sp.Decl,
		BodySpan:     domain.BodySpan{StartLine: sp.StartLine, EndLine: sp.EndLine},
		ParentFile:   base,
	}

	sig, ok := ParseSignature(sp.Decl)
	if !ok {
		rec.Malformed = true
		rec.Name = declFallbackName(sp.Decl)
		rec.Parameters = []domain.ParameterRecord{}
		rec.Outputs = []string{}
		return rec, []domain.Diagnostic{{
			Code:     domain.DiagMalformedSignature,
			Path:     path,
			Function: rec.Name,
			Message:  "declaration matches no recognized shape: " + sp.Decl,
		}}
	}

	rec.Name = sig.Name
	rec.Outputs = sig.Outputs
	rec.HasVarargin = sig.HasVarargin

	bodyLines := bodySlice(lines, sp.StartLine, sp.EndLine)
	body := strippedBody(bodyLines)

	byParser, nameValues := detectInputParser(body)
	byNargin := detectNargin(bodyLines, sig.Params)

	params, diags := Reconcile(sig.Params, byParser, byNargin, sig.Name, path)
	rec.Parameters = params
	rec.NameValues = nameValues
	rec.HelpText = extractHelp(lines, sp.DeclLine, sp.EndLine)
	rec.Body = strings.Join(bodyLines, "\n")

	return rec, diags
}

// assembleClass prepends the synthetic class entry for a classdef file. The
// constructor's parameters become the class entry's parameters, matching how
// the class is actually called.
func (e *Extractor) assembleClass(scan ScanResult, records []domain.FunctionRecord, base string, lines []string, namespace string, class domain.ClassInfo) []domain.FunctionRecord {
	sig := "classdef " + scan.Class.Name
	if scan.Class.Parent != "" {
		sig += " < " + scan.Class.Parent
	}

	entry := domain.FunctionRecord{
		Name:         scan.Class.Name,
		Category:     domain.CategoryMain,
		RawSignature: sig,
		BodySpan:     domain.BodySpan{StartLine: scan.Class.StartLine, EndLine: scan.Class.EndLine},
		ParentFile:   base,
		Parameters:   []domain.ParameterRecord{},
		Outputs:      []string{},
		HelpText:     extractHelp(lines, scan.Class.DeclLine, scan.Class.EndLine),
	}

	ctorClass := class
	ctorClass.IsConstructor = true
	ctorClass.IsClassMethod = false
	entry.CallingPattern = CallingPattern(scan.Class.Name, namespace, ctorClass)

	for i := range records {
		if records[i].Name == scan.Class.Name && records[i].Category == domain.CategoryHelper {
			entry.Parameters = records[i].Parameters
			records[i].CallingPattern = entry.CallingPattern
		} else if records[i].Category == domain.CategoryHelper {
			methodClass := class
			methodClass.IsClassMethod = true
			methodClass.IsConstructor = false
			records[i].CallingPattern = CallingPattern(records[i].Name, namespace, methodClass)
		}
	}

	return append([]domain.FunctionRecord{entry}, records...)
}

// bodySlice returns the physical lines of a span, 1-indexed inclusive.
func bodySlice(lines []string, start, end int) []string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) || end < start {
		return nil
	}
	return lines[start-1 : end]
}

// strippedBody joins body lines with comments removed but string literals
// intact, the view the inputParser detector matches against.
func strippedBody(bodyLines []string) string {
	var b strings.Builder
	for _, l := range bodyLines {
		code, _ := stripLine(l, false)
		b.WriteString(code)
		b.WriteByte('\n')
	}
	return b.String()
}

// declFallbackName digs a best-effort name out of an unparseable
// declaration so the record is still addressable.
func declFallbackName(decl string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(decl), "function"))
	if idx := strings.Index(rest, "="); idx >= 0 {
		rest = rest[idx+1:]
	}
	rest = strings.TrimSpace(rest)
	end := 0
	for end < len(rest) && isIdentChar(rest[end]) {
		end++
	}
	if end > 0 {
		return rest[:end]
	}
	return "(malformed)"
}
