package pyast

import "errors"

// ErrNoCGO is returned by Parser when the binary was built without CGO and the
// tree-sitter grammar is unavailable.
var ErrNoCGO = errors.New("python parsing requires CGO (tree-sitter)")
