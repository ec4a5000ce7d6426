package matlab

import (
	"path/filepath"
	"strings"

	"mlcatalog/internal/domain"
)

// PathContext is the namespace and class information derived from a file's
// location inside a MATLAB source tree.
type PathContext struct {
	Namespace string
	Class     domain.ClassInfo
}

// ContextFromPath reads MATLAB package (+pkg) and class (@Class) folders out
// of a path. Package folders accumulate into a dotted namespace; a class
// folder sets class context and ends namespace accumulation, since class
// contents are addressed through the class.
//
//	.../matlab/+mr/makeTrapezoid.m        -> namespace "mr"
//	.../+mr/+aux/+quat/multiply.m         -> namespace "mr.aux.quat"
//	.../+mr/@Sequence/write.m             -> namespace "mr", class Sequence
func ContextFromPath(path string) PathContext {
	var ctx PathContext
	var parts []string

	norm := strings.ReplaceAll(path, "\\", "/")
	segments := strings.Split(norm, "/")
	stem := fileStem(path)

	for _, seg := range segments {
		if strings.HasPrefix(seg, "+") && len(seg) > 1 {
			parts = append(parts, seg[1:])
		} else if strings.HasPrefix(seg, "@") && len(seg) > 1 {
			className := seg[1:]
			ctx.Class = domain.ClassInfo{
				ClassName:   className,
				InstanceVar: instanceVar(className),
			}
			if stem == className {
				ctx.Class.IsConstructor = true
			} else {
				ctx.Class.IsClassMethod = true
			}
			break
		}
	}
	ctx.Namespace = strings.Join(parts, ".")
	return ctx
}

// instanceVar picks a short conventional variable name for class instances,
// e.g. "seq" for Sequence.
func instanceVar(className string) string {
	lower := strings.ToLower(className)
	if len(lower) > 3 {
		return lower[:3]
	}
	return lower
}

// CallingPattern renders the conventional call-site form for a function.
func CallingPattern(name, namespace string, class domain.ClassInfo) string {
	switch {
	case class.IsConstructor:
		v := class.InstanceVar
		if v == "" {
			v = "obj"
		}
		if namespace != "" {
			return v + " = " + namespace + "." + class.ClassName + "(...)"
		}
		return v + " = " + class.ClassName + "(...)"
	case class.IsClassMethod:
		v := class.InstanceVar
		if v == "" {
			v = "obj"
		}
		return v + "." + name + "(...)"
	case namespace != "":
		return namespace + "." + name + "(...)"
	default:
		return name + "(...)"
	}
}

// Classify assigns a category to every span-derived record. Exactly one
// category per function; classification is total.
//
// Regular files: the first function whose name equals the file's base name
// is main (MATLAB's filename convention); other top-level functions are
// helpers; functions nested inside another function's body are internal.
// When no name matches, the first function is main by convention and a
// diagnostic is recorded.
//
// Classdef files: the constructor (or, absent one, the class itself) is the
// main entry, methods-block functions are helpers, and functions after the
// classdef's end are internal.
func Classify(records []domain.FunctionRecord, spans []Span, stem string, isClass bool, path string) []domain.Diagnostic {
	var diags []domain.Diagnostic
	if len(records) == 0 {
		return nil
	}

	if isClass {
		// The synthetic class record assembled by the extractor is main;
		// methods (constructor included) are helpers, and anything outside
		// the classdef block or nested in a method is internal.
		for i := range records {
			switch {
			case spans[i].Nested:
				records[i].Category = domain.CategoryInternal
			case spans[i].InMethods:
				records[i].Category = domain.CategoryHelper
			default:
				records[i].Category = domain.CategoryInternal
			}
		}
		return nil
	}

	mainIdx := -1
	for i := range records {
		if !spans[i].Nested && records[i].Name == stem {
			mainIdx = i
			break
		}
	}
	if mainIdx == -1 {
		for i := range records {
			if !spans[i].Nested {
				mainIdx = i
				break
			}
		}
		if mainIdx == -1 {
			mainIdx = 0
		}
		diags = append(diags, domain.Diagnostic{
			Code:     domain.DiagNoMainFunctionMatch,
			Path:     path,
			Function: records[mainIdx].Name,
			Message:  "no function matches the filename; using first declared function as main",
		})
	}

	for i := range records {
		switch {
		case i == mainIdx:
			records[i].Category = domain.CategoryMain
		case spans[i].Nested:
			records[i].Category = domain.CategoryInternal
		default:
			records[i].Category = domain.CategoryHelper
		}
	}
	return diags
}

// fileStem is the file name without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
