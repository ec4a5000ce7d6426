package port

// FileSelector selects candidate MATLAB files directly inside a directory.
type FileSelector interface {
	// Select returns absolute paths of candidate files in declaration order
	// (lexicographic). Non-recursive.
	Select(dir string) ([]string, error)
}

// FileReader reads file text.
type FileReader interface {
	ReadFile(path string) (string, error)
}
