// Package sourceload loads the primary source file handed to the
// assembler on the command line. It mirrors the teacher's
// internal/lineMap.LoadSource discipline: a Source value, once
// constructed, is guaranteed valid — there is no half-loaded state.
package sourceload

import (
	"errors"
	"os"
	"strings"
)

var (
	osStat     = os.Stat
	osReadFile = os.ReadFile
)

// sourceExtension is the conventional suffix for this dialect's source
// files. Unlike the teacher's hard ".kasm" requirement this is advisory
// only — see DESIGN.md's Open Question on file extensions.
const sourceExtension = ".слово"

// Source is a validated, loaded source file: a path and its UTF-8
// content. Construct it only through Load.
type Source struct {
	path    string
	content string
}

// Load validates path, reads its content, and returns a ready-to-use
// Source. It does not check sourceExtension and accepts a file of any
// name; Warned reports separately whether a path departs from it.
func Load(path string) (Source, error) {
	info, err := osStat(path)
	if err != nil {
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, errors.New("sourceload: source path is a directory, expected a file")
	}

	content, err := osReadFile(path)
	if err != nil {
		return Source{}, err
	}

	return Source{path: path, content: string(content)}, nil
}

// Path returns the file path of the source.
func (s Source) Path() string {
	return s.path
}

// Content returns the loaded file content.
func (s Source) Content() string {
	return s.content
}

// Warned reports whether path departs from the conventional
// sourceExtension — informational only, never an assembly failure.
func Warned(path string) bool {
	return !strings.HasSuffix(path, sourceExtension)
}

// ReadInclude reads the full content of an ВЛОЖИ-referenced file. Include
// paths are resolved relative to the current working directory, matching
// this dialect's lack of any include-search-path concept (spec.md is
// silent on include resolution beyond "reads the named file").
func ReadInclude(path string) ([]byte, error) {
	return osReadFile(path)
}
