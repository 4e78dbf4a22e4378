// Package formats parses the JSON documents found in resource packs and
// data packs: model definitions, blockstates, tags and language files.
//
// Parsers are lenient about shape. Fields of the wrong JSON type are dropped
// rather than failing the document, and only input that is not a JSON object
// at all yields ErrMalformed.
package formats
