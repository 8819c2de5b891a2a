// Package ranking is the lexical search engine behind the assistant.
//
// Every function here is pure: given the same candidates and question it
// returns the same matches. The pipeline is
//
//	Normalize/Tokenize -> Score -> Select -> BuildSnippet -> BuildContext
//
// and is driven by services.SearchService. HighlightPages applies the same
// anchor policy to a PDF text layer so visual evidence agrees with the
// snippet shown next to it.
package ranking
