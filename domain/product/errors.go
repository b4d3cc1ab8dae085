package product

import "errors"

// ErrEmbeddingParse indicates a stored embedding could not be decoded. The
// search path fails fast on this instead of silently skipping the record,
// so corrupt rows surface instead of degrading result quality.
var ErrEmbeddingParse = errors.New("malformed embedding")
